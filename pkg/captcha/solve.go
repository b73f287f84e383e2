package captcha

import (
	"fmt"
	"image"
)

// Solver runs the recognition pipeline with a fixed Config.
// It is immutable and safe for concurrent use.
type Solver struct {
	cfg Config
	fp  string
}

// SlotReport describes how one character slot was read.
type SlotReport struct {
	Index int  `json:"index"`
	X     int  `json:"x"`
	Count int  `json:"count"`
	Digit byte `json:"-"`
	OK    bool `json:"ok"`
}

var defaultSolver = &Solver{cfg: DefaultConfig(), fp: DefaultConfig().Fingerprint()}

// NewSolver validates cfg and returns a Solver using it.
func NewSolver(cfg Config) (*Solver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Ranges = append([]Range(nil), cfg.Ranges...)
	return &Solver{cfg: cfg, fp: cfg.Fingerprint()}, nil
}

// Fingerprint returns Config().Fingerprint().
func (s *Solver) Fingerprint() string {
	return s.fp
}

// Config returns a copy of the solver configuration.
func (s *Solver) Config() Config {
	cfg := s.cfg
	cfg.Ranges = append([]Range(nil), s.cfg.Ranges...)
	return cfg
}

// Recognize reads the code from img. Recognition is all-or-nothing: the first slot
// without a matching range fails the whole call with ErrRecognitionIncomplete.
func (s *Solver) Recognize(img image.Image) (string, error) {
	regions := s.cfg.ExtractRegions(ToGray(img))
	code := make([]byte, 0, len(regions))
	for _, r := range regions {
		n := CountWhite(r.Image, s.cfg.WhiteThreshold)
		d, ok := s.cfg.Classify(n)
		if !ok {
			return "", fmt.Errorf("%w: slot %d at x=%d has %d white pixels", ErrRecognitionIncomplete, r.Index, r.X, n)
		}
		code = append(code, d)
	}
	return string(code), nil
}

// RecognizeBase64 decodes a GIF data URL and recognizes it.
func (s *Solver) RecognizeBase64(input string) (string, error) {
	img, err := Decode(input)
	if err != nil {
		return "", err
	}
	return s.Recognize(img)
}

// Solve is Recognize without the failure detail.
func (s *Solver) Solve(img image.Image) (string, bool) {
	code, err := s.Recognize(img)
	return code, err == nil
}

// SolveFromBase64 is RecognizeBase64 without the failure detail.
func (s *Solver) SolveFromBase64(input string) (string, bool) {
	code, err := s.RecognizeBase64(input)
	return code, err == nil
}

// Inspect reports the count and classification of every slot, including failed ones.
func (s *Solver) Inspect(img image.Image) []SlotReport {
	regions := s.cfg.ExtractRegions(ToGray(img))
	out := make([]SlotReport, len(regions))
	for i, r := range regions {
		n := CountWhite(r.Image, s.cfg.WhiteThreshold)
		d, ok := s.cfg.Classify(n)
		out[i] = SlotReport{Index: r.Index, X: r.X, Count: n, Digit: d, OK: ok}
	}
	return out
}

// Solve recognizes img with DefaultConfig.
func Solve(img image.Image) (string, bool) {
	return defaultSolver.Solve(img)
}

// SolveFromBase64 recognizes a GIF data URL with DefaultConfig.
func SolveFromBase64(input string) (string, bool) {
	return defaultSolver.SolveFromBase64(input)
}
