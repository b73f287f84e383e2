package main

import (
	"bufio"
	"flag"
	"fmt"
	"image"
	"io"
	"os"
	"strings"

	"capsolver/pkg/captcha"
	"capsolver/pkg/envfile"
	"capsolver/process/batch"
)

// Prints the recognized code for one captcha. Input is -file, a data URL argument,
// or a data URL on stdin. Exits 1 when nothing is recognized.
func main() {
	file := flag.String("file", "", "captcha image or data-url text file")
	verbose := flag.Bool("v", false, "print per-slot white counts to stderr")
	flag.Parse()

	if err := envfile.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: .env: %v\n", err)
	}
	cfg, err := captcha.ConfigFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	solver, err := captcha.NewSolver(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}

	var input string
	switch {
	case *file != "":
	case flag.NArg() > 0:
		input = flag.Arg(0)
	default:
		b, err := io.ReadAll(bufio.NewReader(os.Stdin))
		if err != nil {
			fmt.Fprintf(os.Stderr, "read stdin: %v\n", err)
			os.Exit(2)
		}
		input = strings.TrimSpace(string(b))
	}

	var code string
	if *file != "" {
		img, _, lerr := batch.LoadImage(*file)
		if lerr != nil {
			err = lerr
		} else {
			code, err = solver.Recognize(img)
			if *verbose {
				printSlots(solver, img)
			}
		}
	} else {
		code, err = solver.RecognizeBase64(input)
		if *verbose {
			if img, derr := captcha.Decode(input); derr == nil {
				printSlots(solver, img)
			}
		}
	}
	if err != nil {
		if *verbose {
			fmt.Fprintf(os.Stderr, "%s: %v\n", captcha.Kind(err), err)
		}
		os.Exit(1)
	}
	fmt.Println(code)
}

func printSlots(s *captcha.Solver, img image.Image) {
	for _, r := range s.Inspect(img) {
		d := "-"
		if r.OK {
			d = string(r.Digit)
		}
		fmt.Fprintf(os.Stderr, "slot %d x=%d white=%d digit=%s\n", r.Index, r.X, r.Count, d)
	}
}
