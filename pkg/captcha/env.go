package captcha

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ConfigFromEnv starts from DefaultConfig and applies any CAPTCHA_* overrides:
// CAPTCHA_WIDTH, CAPTCHA_HEIGHT, CAPTCHA_CHAR_WIDTH, CAPTCHA_LEFT_MARGIN, CAPTCHA_CHARS,
// CAPTCHA_WHITE_THRESHOLD and CAPTCHA_RANGES. The result is validated.
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()
	ints := []struct {
		key string
		dst *int
	}{
		{"CAPTCHA_WIDTH", &cfg.Width},
		{"CAPTCHA_HEIGHT", &cfg.Height},
		{"CAPTCHA_CHAR_WIDTH", &cfg.CharWidth},
		{"CAPTCHA_LEFT_MARGIN", &cfg.LeftMargin},
		{"CAPTCHA_CHARS", &cfg.Chars},
	}
	for _, it := range ints {
		v, ok := lookup(it.key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", it.key, err)
		}
		*it.dst = n
	}
	if v, ok := lookup("CAPTCHA_WHITE_THRESHOLD"); ok {
		n, err := strconv.ParseUint(v, 10, 8)
		if err != nil {
			return Config{}, fmt.Errorf("CAPTCHA_WHITE_THRESHOLD: %w", err)
		}
		cfg.WhiteThreshold = uint8(n)
	}
	if v, ok := lookup("CAPTCHA_RANGES"); ok {
		rs, err := ParseRanges(v)
		if err != nil {
			return Config{}, fmt.Errorf("CAPTCHA_RANGES: %w", err)
		}
		cfg.Ranges = rs
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}
