package main

import (
	"bytes"
	"flag"
	"fmt"
	"image"
	"math"
	"path/filepath"
	"sort"
	"strings"

	"capsolver/pkg/captcha"
	"capsolver/pkg/envfile"
	"capsolver/pkg/logger"
	"capsolver/process/batch"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
)

// Reads a directory of labeled captcha samples and prints, per digit, the range of
// white-pixel counts observed. Labels come from the file name when it is all digits
// (e.g. 17423.gif) and from tesseract otherwise. The output is what the count table
// is tuned against.
func main() {
	dir := flag.String("dir", "samples", "directory of captcha samples")
	useOCR := flag.Bool("ocr", true, "label unnamed samples with tesseract")
	scale := flag.Int("scale", 4, "upscale factor before tesseract")
	flag.Parse()
	envErr := envfile.Load()
	log := logger.Get()
	if envErr != nil {
		log.WithError(envErr).Warn("failed to read .env")
	}

	cfg, err := captcha.ConfigFromEnv()
	if err != nil {
		log.WithError(err).Fatal("invalid captcha configuration")
	}
	solver, err := captcha.NewSolver(cfg)
	if err != nil {
		log.WithError(err).Fatal("invalid captcha configuration")
	}
	names, err := batch.ListInputFiles(*dir)
	if err != nil {
		log.WithError(err).Fatal("cannot list samples")
	}

	var client *gosseract.Client
	if *useOCR {
		client = gosseract.NewClient()
		defer client.Close()
		_ = client.SetLanguage("eng")
		_ = client.SetWhitelist("0123456789")
		_ = client.SetPageSegMode(gosseract.PSM_SINGLE_LINE)
	}

	counts := map[byte][]int{}
	labeled, agree := 0, 0
	for _, name := range names {
		img, _, err := batch.LoadImage(filepath.Join(*dir, name))
		if err != nil {
			log.WithError(err).WithField("file", name).Warn("skipping unreadable sample")
			continue
		}
		label := labelFromName(name, cfg.Chars)
		if label == "" && client != nil {
			label, err = labelWithOCR(client, img, *scale, cfg.Chars)
			if err != nil {
				log.WithError(err).WithField("file", name).Warn("tesseract failed")
			}
		}
		if label == "" {
			log.WithField("file", name).Info("skipping unlabeled sample")
			continue
		}
		labeled++
		if code, ok := solver.Solve(img); ok && code == label {
			agree++
		}
		for _, slot := range solver.Inspect(img) {
			d := label[slot.Index]
			counts[d] = append(counts[d], slot.Count)
		}
	}

	fmt.Printf("samples=%d labeled=%d agree=%d\n", len(names), labeled, agree)
	digits := make([]byte, 0, len(counts))
	for d := range counts {
		digits = append(digits, d)
	}
	sort.Slice(digits, func(i, j int) bool { return median(counts[digits[i]]) < median(counts[digits[j]]) })
	for _, d := range digits {
		cs := counts[d]
		sort.Ints(cs)
		fmt.Printf("%c n=%d min=%d median=%.1f max=%d\n", d, len(cs), cs[0], median(cs), cs[len(cs)-1])
	}
	fmt.Printf("current: %s\n", captcha.FormatRanges(cfg.Ranges))
}

func labelFromName(name string, chars int) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	return digitsOfLen(base, chars)
}

func labelWithOCR(client *gosseract.Client, img image.Image, scale, chars int) (string, error) {
	b := img.Bounds()
	big := imaging.Resize(captcha.ToGray(img), b.Dx()*scale, 0, imaging.NearestNeighbor)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, big, imaging.PNG); err != nil {
		return "", err
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", err
	}
	text, err := client.Text()
	if err != nil {
		return "", err
	}
	return digitsOfLen(strings.Join(strings.Fields(text), ""), chars), nil
}

func digitsOfLen(s string, n int) string {
	if len(s) != n {
		return ""
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return ""
		}
	}
	return s
}

func median(xs []int) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	s := append([]int(nil), xs...)
	sort.Ints(s)
	m := len(s) / 2
	if len(s)%2 == 1 {
		return float64(s[m])
	}
	return float64(s[m-1]+s[m]) / 2
}
