package captcha

import (
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
)

// synthCaptcha draws counts[i] white pixels into slot i of a black 55x24 image,
// column by column, staying inside both the slot and the image.
func synthCaptcha(t *testing.T, counts []int) *image.NRGBA {
	t.Helper()
	cfg := DefaultConfig()
	img := imaging.New(cfg.Width, cfg.Height, color.NRGBA{0, 0, 0, 255})
	for i, n := range counts {
		x0 := cfg.Offset(i)
		left := n
		for x := x0; x < x0+cfg.CharWidth && x < cfg.Width && left > 0; x++ {
			for y := 0; y < cfg.Height && left > 0; y++ {
				img.SetNRGBA(x, y, color.NRGBA{255, 255, 255, 255})
				left--
			}
		}
		if left > 0 {
			t.Fatalf("slot %d cannot hold %d white pixels", i, n)
		}
	}
	return img
}

func dataURL(t *testing.T, img image.Image) string {
	t.Helper()
	s, err := EncodeDataURL(img)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return s
}
