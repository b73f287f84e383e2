package envfile

import (
	"os"
	"path/filepath"
	"testing"

	"capsolver/pkg/captcha"
)

func unset(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	os.Unsetenv(key)
}

func TestLoadFeedsCaptchaConfig(t *testing.T) {
	unset(t, "CAPTCHA_WHITE_THRESHOLD")
	unset(t, "CAPTCHA_RANGES")
	path := filepath.Join(t.TempDir(), ".env")
	body := "CAPTCHA_WHITE_THRESHOLD=150\nCAPTCHA_RANGES=0-60:1,61-264:7\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}
	cfg, err := captcha.ConfigFromEnv()
	if err != nil {
		t.Fatalf("ConfigFromEnv: %v", err)
	}
	if cfg.WhiteThreshold != 150 || len(cfg.Ranges) != 2 {
		t.Fatalf("config = %+v", cfg)
	}
}

func TestLoadKeepsExistingValues(t *testing.T) {
	t.Setenv("CAPTCHA_WHITE_THRESHOLD", "180")
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("CAPTCHA_WHITE_THRESHOLD=150\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if v := os.Getenv("CAPTCHA_WHITE_THRESHOLD"); v != "180" {
		t.Fatalf("existing value overridden: %q", v)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if err := Load(filepath.Join(t.TempDir(), "nope.env")); err != nil {
		t.Fatalf("Load(missing) = %v", err)
	}
}
