package captcha

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"strings"

	"github.com/disintegration/imaging"
)

// DataURLPrefix is the only accepted input prefix.
const DataURLPrefix = "data:image/gif;base64,"

// Decode strips the data URL prefix, base64-decodes the payload and decodes the image.
// Any container imaging can read is accepted, not only GIF.
func Decode(input string) (image.Image, error) {
	payload, ok := strings.CutPrefix(input, DataURLPrefix)
	if !ok {
		return nil, ErrPrefixMismatch
	}
	// the decoder skips line breaks even in strict mode
	if i := strings.IndexAny(payload, "\r\n"); i >= 0 {
		return nil, fmt.Errorf("%w: line break at input byte %d", ErrBase64, i)
	}
	raw, err := base64.StdEncoding.Strict().DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBase64, err)
	}
	img, err := imaging.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageDecode, err)
	}
	return img, nil
}

// EncodeDataURL GIF-encodes img and wraps it in DataURLPrefix.
// Colors are mapped to the nearest Plan9 palette entry without dithering.
func EncodeDataURL(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := gif.Encode(&buf, img, &gif.Options{NumColors: 256, Drawer: draw.Src}); err != nil {
		return "", fmt.Errorf("encode gif: %w", err)
	}
	return DataURLPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
