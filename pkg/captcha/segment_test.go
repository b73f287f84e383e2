package captcha

import (
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
)

func white(w, h int) *image.NRGBA {
	return imaging.New(w, h, color.NRGBA{255, 255, 255, 255})
}

func TestExtractRegionsGeometry(t *testing.T) {
	cfg := DefaultConfig()
	regions := cfg.ExtractRegions(ToGray(white(cfg.Width, cfg.Height)))
	if len(regions) != 5 {
		t.Fatalf("got %d regions want 5", len(regions))
	}
	wantX := []int{5, 16, 27, 38, 49}
	for i, r := range regions {
		if r.Index != i || r.X != wantX[i] {
			t.Errorf("region %d: index=%d x=%d want x=%d", i, r.Index, r.X, wantX[i])
		}
		if b := r.Image.Bounds(); b.Dx() != 11 || b.Dy() != 24 {
			t.Errorf("region %d size %dx%d want 11x24", i, b.Dx(), b.Dy())
		}
	}
}

func TestExtractRegionsLastSlotOverhangIsBlack(t *testing.T) {
	cfg := DefaultConfig()
	regions := cfg.ExtractRegions(ToGray(white(cfg.Width, cfg.Height)))
	for i := 0; i < 4; i++ {
		if n := CountWhite(regions[i].Image, cfg.WhiteThreshold); n != 11*24 {
			t.Errorf("region %d white=%d want %d", i, n, 11*24)
		}
	}
	// x 49..54 are inside the image, 55..59 are not.
	if n := CountWhite(regions[4].Image, cfg.WhiteThreshold); n != 6*24 {
		t.Fatalf("region 4 white=%d want %d", n, 6*24)
	}
	for x := 6; x < 11; x++ {
		if v := regions[4].Image.NRGBAAt(x, 0).R; v != 0 {
			t.Fatalf("region 4 column %d = %d want 0", x, v)
		}
	}
}

func TestExtractRegionsNarrowImage(t *testing.T) {
	cfg := DefaultConfig()
	regions := cfg.ExtractRegions(ToGray(white(20, cfg.Height)))
	if len(regions) != 5 {
		t.Fatalf("got %d regions want 5", len(regions))
	}
	want := []int{11 * 24, 4 * 24, 0, 0, 0}
	for i, r := range regions {
		if n := CountWhite(r.Image, cfg.WhiteThreshold); n != want[i] {
			t.Errorf("region %d white=%d want %d", i, n, want[i])
		}
		if b := r.Image.Bounds(); b.Dx() != 11 || b.Dy() != 24 {
			t.Errorf("region %d size %dx%d", i, b.Dx(), b.Dy())
		}
	}
}

func TestExtractRegionsShortImage(t *testing.T) {
	cfg := DefaultConfig()
	regions := cfg.ExtractRegions(ToGray(white(cfg.Width, 10)))
	if n := CountWhite(regions[0].Image, cfg.WhiteThreshold); n != 11*10 {
		t.Fatalf("region 0 white=%d want %d", n, 11*10)
	}
}

func TestExtractRegionsHonorsBoundsOrigin(t *testing.T) {
	cfg := DefaultConfig()
	full := imaging.New(60, 24, color.NRGBA{0, 0, 0, 255})
	for y := 0; y < 24; y++ {
		full.SetNRGBA(10, y, color.NRGBA{255, 255, 255, 255})
	}
	sub := full.SubImage(image.Rect(5, 0, 60, 24))
	regions := cfg.ExtractRegions(sub)
	if n := CountWhite(regions[0].Image, cfg.WhiteThreshold); n != 24 {
		t.Fatalf("region 0 white=%d want 24", n)
	}
	if v := regions[0].Image.NRGBAAt(0, 0).R; v != 255 {
		t.Fatalf("region 0 column 0 = %d want 255", v)
	}
}

func TestToGrayLuma(t *testing.T) {
	img := imaging.New(1, 1, color.NRGBA{255, 0, 0, 255})
	g := ToGray(img).NRGBAAt(0, 0)
	if g.R != g.G || g.G != g.B {
		t.Fatalf("ToGray not gray: %v", g)
	}
	if g.R != 54 {
		t.Fatalf("luma for pure red = %d want 54", g.R)
	}
}

func TestToGrayGreenTintCountsAsWhite(t *testing.T) {
	// (150,230,150) is 207 in Rec.709 luma but 197 with Rec.601 weights.
	cfg := DefaultConfig()
	img := imaging.New(cfg.Width, cfg.Height, color.NRGBA{0, 0, 0, 255})
	for y := 0; y < cfg.Height; y++ {
		img.SetNRGBA(cfg.Offset(0), y, color.NRGBA{150, 230, 150, 255})
	}
	gray := ToGray(img)
	if v := gray.NRGBAAt(cfg.Offset(0), 0).R; v != 207 {
		t.Fatalf("luma = %d want 207", v)
	}
	regions := cfg.ExtractRegions(gray)
	if n := CountWhite(regions[0].Image, cfg.WhiteThreshold); n != cfg.Height {
		t.Fatalf("white count = %d want %d", n, cfg.Height)
	}
}
