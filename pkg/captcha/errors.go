package captcha

import "errors"

var (
	// ErrPrefixMismatch is returned when the input is not a base64 GIF data URL.
	ErrPrefixMismatch = errors.New("input is not a gif data url")
	// ErrBase64 is returned when the data URL payload is not valid base64.
	ErrBase64 = errors.New("invalid base64 payload")
	// ErrImageDecode is returned when the decoded bytes are not a readable image.
	ErrImageDecode = errors.New("cannot decode image")
	// ErrRecognitionIncomplete is returned when at least one character slot has no matching range.
	ErrRecognitionIncomplete = errors.New("recognition incomplete")
	// ErrInvalidConfig is returned by Config.Validate.
	ErrInvalidConfig = errors.New("invalid captcha config")
)

// Kind names the failure class of err for logs and stored attempts.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrPrefixMismatch):
		return "prefix_mismatch"
	case errors.Is(err, ErrBase64):
		return "base64_error"
	case errors.Is(err, ErrImageDecode):
		return "image_decode_error"
	case errors.Is(err, ErrRecognitionIncomplete):
		return "recognition_incomplete"
	}
	return "unknown"
}
