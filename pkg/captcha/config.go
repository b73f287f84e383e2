package captcha

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// Range maps an inclusive white-pixel count interval to a digit.
type Range struct {
	Min   int
	Max   int
	Digit byte
}

func (r Range) String() string {
	return fmt.Sprintf("%d-%d:%c", r.Min, r.Max, r.Digit)
}

// Config holds the fixed geometry and the count table the recognizer works with.
// The values are the whole of the recognizer's knowledge about the captcha font.
type Config struct {
	Width          int // nominal image width
	Height         int // nominal image height, also the region height
	CharWidth      int
	LeftMargin     int
	Chars          int
	WhiteThreshold uint8 // intensities strictly above this count as glyph pixels
	Ranges         []Range
}

// DefaultRanges returns the count table tuned against the 55x24 five-digit captcha.
func DefaultRanges() []Range {
	return []Range{
		{0, 20, '1'},
		{21, 35, '7'},
		{36, 45, '4'},
		{46, 55, '2'},
		{56, 65, '3'},
		{66, 75, '5'},
		{76, 85, '6'},
		{86, 95, '8'},
		{96, 105, '9'},
		{106, 115, '0'},
	}
}

// DefaultConfig returns the geometry of the 55x24 five-digit captcha.
func DefaultConfig() Config {
	return Config{
		Width:          55,
		Height:         24,
		CharWidth:      11,
		LeftMargin:     5,
		Chars:          5,
		WhiteThreshold: 200,
		Ranges:         DefaultRanges(),
	}
}

// Offset returns the left x coordinate of character slot i.
func (c Config) Offset(i int) int {
	return c.LeftMargin + i*c.CharWidth
}

// Offsets returns the left x coordinate of every character slot.
func (c Config) Offsets() []int {
	out := make([]int, c.Chars)
	for i := range out {
		out[i] = c.Offset(i)
	}
	return out
}

// OverhangingRegions lists the slots whose span runs past the nominal width.
// Those columns are read as black.
func (c Config) OverhangingRegions() []int {
	var out []int
	for i := 0; i < c.Chars; i++ {
		if c.Offset(i)+c.CharWidth > c.Width {
			out = append(out, i)
		}
	}
	return out
}

// Fingerprint is a short digest of everything that affects recognition. Two configs
// with the same fingerprint read every image the same way.
func (c Config) Fingerprint() string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%dx%d/%d/%d/%d/%d/%s",
		c.Width, c.Height, c.CharWidth, c.LeftMargin, c.Chars, c.WhiteThreshold, FormatRanges(c.Ranges))))
	return hex.EncodeToString(sum[:6])
}

// Validate checks the geometry and that Ranges is an ascending, gap-free,
// non-overlapping partition starting at zero.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: image size %dx%d", ErrInvalidConfig, c.Width, c.Height)
	}
	if c.CharWidth <= 0 {
		return fmt.Errorf("%w: char width %d", ErrInvalidConfig, c.CharWidth)
	}
	if c.LeftMargin < 0 {
		return fmt.Errorf("%w: left margin %d", ErrInvalidConfig, c.LeftMargin)
	}
	if c.Chars <= 0 {
		return fmt.Errorf("%w: chars %d", ErrInvalidConfig, c.Chars)
	}
	if len(c.Ranges) == 0 {
		return fmt.Errorf("%w: empty range table", ErrInvalidConfig)
	}
	next := 0
	for i, r := range c.Ranges {
		if r.Digit < '0' || r.Digit > '9' {
			return fmt.Errorf("%w: range %d digit %q", ErrInvalidConfig, i, r.Digit)
		}
		if r.Max < r.Min {
			return fmt.Errorf("%w: range %d is inverted (%s)", ErrInvalidConfig, i, r)
		}
		if r.Min < next {
			return fmt.Errorf("%w: range %d overlaps or is out of order (%s)", ErrInvalidConfig, i, r)
		}
		if r.Min > next {
			return fmt.Errorf("%w: gap before range %d (%s)", ErrInvalidConfig, i, r)
		}
		next = r.Max + 1
	}
	return nil
}

// ParseRanges reads a table written as "min-max:digit" entries separated by commas,
// e.g. "0-20:1,21-35:7". The result is not validated.
func ParseRanges(s string) ([]Range, error) {
	var out []Range
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		span, digit, ok := strings.Cut(part, ":")
		if !ok || len(digit) != 1 {
			return nil, fmt.Errorf("range %q: want min-max:digit", part)
		}
		lo, hi, ok := strings.Cut(span, "-")
		if !ok {
			return nil, fmt.Errorf("range %q: want min-max:digit", part)
		}
		from, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil {
			return nil, fmt.Errorf("range %q min: %w", part, err)
		}
		to, err := strconv.Atoi(strings.TrimSpace(hi))
		if err != nil {
			return nil, fmt.Errorf("range %q max: %w", part, err)
		}
		out = append(out, Range{Min: from, Max: to, Digit: digit[0]})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no ranges in %q", s)
	}
	return out, nil
}

// FormatRanges is the inverse of ParseRanges.
func FormatRanges(rs []Range) string {
	parts := make([]string, len(rs))
	for i, r := range rs {
		parts[i] = r.String()
	}
	return strings.Join(parts, ",")
}
