package captcha

import (
	"image"
	"image/color"
	"sort"
)

// CountWhite counts the pixels of region whose intensity is strictly above threshold.
func CountWhite(region image.Image, threshold uint8) int {
	b := region.Bounds()
	n := 0
	if m, ok := region.(*image.NRGBA); ok {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			row := m.Pix[m.PixOffset(b.Min.X, y):]
			for x := 0; x < b.Dx(); x++ {
				if row[x*4] > threshold {
					n++
				}
			}
		}
		return n
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if color.GrayModel.Convert(region.At(x, y)).(color.Gray).Y > threshold {
				n++
			}
		}
	}
	return n
}

// Classify maps a white-pixel count to its digit. ok is false when no range holds count.
func (c Config) Classify(count int) (digit byte, ok bool) {
	if count < 0 {
		return 0, false
	}
	i := sort.Search(len(c.Ranges), func(i int) bool { return c.Ranges[i].Max >= count })
	if i == len(c.Ranges) || c.Ranges[i].Min > count {
		return 0, false
	}
	return c.Ranges[i].Digit, true
}

// ClassifyRegion counts the glyph pixels of r and classifies the count.
func (c Config) ClassifyRegion(r Region) (byte, bool) {
	return c.Classify(CountWhite(r.Image, c.WhiteThreshold))
}
