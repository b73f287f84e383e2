package captcha

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Region is one character slot cut from the grayscale captcha.
type Region struct {
	Index int
	X     int // left offset in the source image
	Image *image.NRGBA
}

// ToGray converts img to Rec.709 luma, truncated to 8 bits. The result has R=G=B
// so any channel is the intensity.
func ToGray(img image.Image) *image.NRGBA {
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		l := uint8((2126*int(c.R) + 7152*int(c.G) + 722*int(c.B)) / 10000)
		return color.NRGBA{l, l, l, 255}
	})
}

// ExtractRegions cuts c.Chars regions of CharWidth x Height from gray at the fixed offsets.
// Pixels outside gray are left black, so the result always has c.Chars regions of full size.
func (c Config) ExtractRegions(gray image.Image) []Region {
	b := gray.Bounds()
	out := make([]Region, c.Chars)
	for i := range out {
		x := c.Offset(i)
		dst := imaging.New(c.CharWidth, c.Height, color.NRGBA{0, 0, 0, 255})
		// Crop clips to the source bounds; an empty intersection pastes nothing.
		src := imaging.Crop(gray, image.Rect(b.Min.X+x, b.Min.Y, b.Min.X+x+c.CharWidth, b.Min.Y+c.Height))
		if !src.Bounds().Empty() {
			dst = imaging.Paste(dst, src, image.Pt(0, 0))
		}
		out[i] = Region{Index: i, X: x, Image: dst}
	}
	return out
}
