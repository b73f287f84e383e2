package captcha

import (
	"errors"
	"reflect"
	"testing"
)

func TestValidateRejectsBadTables(t *testing.T) {
	tests := []struct {
		name   string
		ranges []Range
	}{
		{"empty", nil},
		{"overlap", []Range{{0, 20, '1'}, {20, 30, '7'}}},
		{"gap", []Range{{0, 20, '1'}, {22, 30, '7'}}},
		{"not from zero", []Range{{1, 20, '1'}}},
		{"unsorted", []Range{{21, 35, '7'}, {0, 20, '1'}}},
		{"inverted", []Range{{0, 20, '1'}, {30, 21, '7'}}},
		{"bad digit", []Range{{0, 20, 'x'}}},
	}
	for _, tt := range tests {
		cfg := DefaultConfig()
		cfg.Ranges = tt.ranges
		err := cfg.Validate()
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("%s: Validate() = %v, want ErrInvalidConfig", tt.name, err)
		}
	}
}

func TestValidateRejectsBadGeometry(t *testing.T) {
	mutate := []func(*Config){
		func(c *Config) { c.Width = 0 },
		func(c *Config) { c.Height = -1 },
		func(c *Config) { c.CharWidth = 0 },
		func(c *Config) { c.LeftMargin = -2 },
		func(c *Config) { c.Chars = 0 },
	}
	for i, m := range mutate {
		cfg := DefaultConfig()
		m(&cfg)
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("case %d: Validate() = %v, want ErrInvalidConfig", i, err)
		}
	}
}

func TestParseRangesRoundTrip(t *testing.T) {
	s := FormatRanges(DefaultRanges())
	if s != "0-20:1,21-35:7,36-45:4,46-55:2,56-65:3,66-75:5,76-85:6,86-95:8,96-105:9,106-115:0" {
		t.Fatalf("FormatRanges = %q", s)
	}
	got, err := ParseRanges(s)
	if err != nil {
		t.Fatalf("ParseRanges: %v", err)
	}
	if !reflect.DeepEqual(got, DefaultRanges()) {
		t.Fatalf("ParseRanges = %v", got)
	}
}

func TestParseRangesErrors(t *testing.T) {
	for _, in := range []string{"", "0-20", "0:1", "a-20:1", "0-b:1", "0-20:12"} {
		if _, err := ParseRanges(in); err == nil {
			t.Errorf("ParseRanges(%q) accepted", in)
		}
	}
}

func TestOffsetsAndOverhang(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.Offsets(); !reflect.DeepEqual(got, []int{5, 16, 27, 38, 49}) {
		t.Fatalf("Offsets = %v", got)
	}
	if got := cfg.OverhangingRegions(); !reflect.DeepEqual(got, []int{4}) {
		t.Fatalf("OverhangingRegions = %v want [4]", got)
	}
	cfg.LeftMargin = 0
	if got := cfg.OverhangingRegions(); len(got) != 0 {
		t.Fatalf("OverhangingRegions with margin 0 = %v", got)
	}
}

func TestNewSolverCopiesRanges(t *testing.T) {
	cfg := DefaultConfig()
	s, err := NewSolver(cfg)
	if err != nil {
		t.Fatalf("NewSolver: %v", err)
	}
	cfg.Ranges[0].Digit = '9'
	if d, _ := s.Config().Classify(0); d != '1' {
		t.Fatalf("solver shares range table with caller")
	}
	if _, err := NewSolver(Config{}); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("NewSolver(zero) = %v", err)
	}
}

func TestFingerprint(t *testing.T) {
	base := DefaultConfig()
	if base.Fingerprint() != DefaultConfig().Fingerprint() {
		t.Fatalf("fingerprint not stable")
	}
	threshold := DefaultConfig()
	threshold.WhiteThreshold = 201
	table := DefaultConfig()
	table.Ranges[0].Max = 19
	table.Ranges[1].Min = 20
	margin := DefaultConfig()
	margin.LeftMargin = 4
	for name, c := range map[string]Config{"threshold": threshold, "table": table, "margin": margin} {
		if c.Fingerprint() == base.Fingerprint() {
			t.Errorf("%s change kept the fingerprint", name)
		}
	}
	s, err := NewSolver(base)
	if err != nil {
		t.Fatalf("NewSolver: %v", err)
	}
	if s.Fingerprint() != base.Fingerprint() || defaultSolver.Fingerprint() != base.Fingerprint() {
		t.Fatalf("solver fingerprint mismatch")
	}
}
