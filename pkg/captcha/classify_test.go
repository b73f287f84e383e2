package captcha

import (
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
)

func TestClassifyDefaultTable(t *testing.T) {
	cfg := DefaultConfig()
	tests := []struct {
		count int
		want  byte
		ok    bool
	}{
		{0, '1', true},
		{20, '1', true},
		{21, '7', true},
		{35, '7', true},
		{36, '4', true},
		{50, '2', true},
		{60, '3', true},
		{70, '5', true},
		{80, '6', true},
		{90, '8', true},
		{100, '9', true},
		{106, '0', true},
		{115, '0', true},
		{116, 0, false},
		{264, 0, false},
		{-1, 0, false},
	}
	for _, tt := range tests {
		got, ok := cfg.Classify(tt.count)
		if ok != tt.ok || got != tt.want {
			t.Errorf("Classify(%d) = %q,%v want %q,%v", tt.count, got, ok, tt.want, tt.ok)
		}
	}
}

func TestRangePartition(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	for n := 0; n <= 115; n++ {
		hits := 0
		for _, r := range cfg.Ranges {
			if n >= r.Min && n <= r.Max {
				hits++
			}
		}
		if hits != 1 {
			t.Fatalf("count %d is covered by %d ranges", n, hits)
		}
		if _, ok := cfg.Classify(n); !ok {
			t.Fatalf("count %d unrecognized", n)
		}
	}
	for n := 116; n <= 2000; n++ {
		if d, ok := cfg.Classify(n); ok {
			t.Fatalf("count %d classified as %q", n, d)
		}
	}
}

func TestClassifyDeterministic(t *testing.T) {
	cfg := DefaultConfig()
	for n := 0; n < 200; n++ {
		a, okA := cfg.Classify(n)
		b, okB := cfg.Classify(n)
		if a != b || okA != okB {
			t.Fatalf("Classify(%d) not deterministic", n)
		}
	}
}

func TestCountWhiteThresholdIsStrict(t *testing.T) {
	img := imaging.New(4, 1, color.NRGBA{0, 0, 0, 255})
	img.SetNRGBA(0, 0, color.NRGBA{200, 200, 200, 255})
	img.SetNRGBA(1, 0, color.NRGBA{201, 201, 201, 255})
	img.SetNRGBA(2, 0, color.NRGBA{255, 255, 255, 255})
	if got := CountWhite(img, 200); got != 2 {
		t.Fatalf("CountWhite = %d want 2", got)
	}
}

func TestCountWhiteGenericImage(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 3, 3))
	img.SetGray(1, 1, color.Gray{Y: 250})
	img.SetGray(2, 2, color.Gray{Y: 100})
	if got := CountWhite(img, 200); got != 1 {
		t.Fatalf("CountWhite = %d want 1", got)
	}
}

func TestClassifyRegion(t *testing.T) {
	cfg := DefaultConfig()
	regions := cfg.ExtractRegions(ToGray(synthCaptcha(t, []int{40})))
	d, ok := cfg.ClassifyRegion(regions[0])
	if !ok || d != '4' {
		t.Fatalf("ClassifyRegion = %q,%v want '4',true", d, ok)
	}
}
