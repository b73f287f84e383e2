package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"capsolver/models"
	"capsolver/pkg/captcha"
	"capsolver/pkg/envfile"
	"capsolver/pkg/logger"
	"capsolver/pkg/store"
	"capsolver/process/batch"
)

// Solves every captcha file in a directory, optionally watching for new ones.
// With DB_DSN set, each result is also stored as a batch attempt.
func main() {
	dir := flag.String("dir", "captchas", "directory with captcha images or data-url text files")
	workers := flag.Int("workers", 0, "worker pool size (default NumCPU)")
	watch := flag.Bool("watch", false, "keep watching the directory for new files")
	persist := flag.Bool("persist", true, "store attempts when DB_DSN is set")
	flag.Parse()

	if err := envfile.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: .env: %v\n", err)
	}
	log := logger.Get()

	cfg, err := captcha.ConfigFromEnv()
	if err != nil {
		log.WithError(err).Fatal("invalid captcha configuration")
	}
	solver, err := captcha.NewSolver(cfg)
	if err != nil {
		log.WithError(err).Fatal("invalid captcha configuration")
	}

	var attempts store.Attempts
	if dsn := os.Getenv("DB_DSN"); dsn != "" && *persist {
		attempts, err = store.Open(dsn, true)
		if err != nil {
			log.WithError(err).Fatal("failed to open attempt store")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := &batch.Processor{Solver: solver, Workers: *workers, Log: log}
	if attempts != nil {
		p.OnResult = func(r batch.Result) {
			a := &models.Attempt{
				Source:      "batch",
				Name:        r.Name,
				InputHash:   r.Digest,
				Code:        r.Code,
				Success:     r.OK,
				FailureKind: r.Kind,
				DurationUS:  r.Duration.Microseconds(),
			}
			a.SetDetail(r.Err)
			if err := attempts.Record(ctx, a); err != nil {
				log.WithError(err).WithField("file", r.Name).Warn("failed to record attempt")
			}
		}
	}

	start := time.Now()
	results, err := p.Run(ctx, *dir)
	if err != nil {
		log.WithError(err).Fatal("batch run failed")
	}
	solved := 0
	for _, r := range results {
		printResult(r)
		if r.OK {
			solved++
		}
	}
	log.WithFields(logger.Fields{
		"files":    len(results),
		"solved":   solved,
		"duration": time.Since(start).String(),
	}).Info("batch finished")

	if !*watch {
		return
	}
	out := make(chan batch.Result, 64)
	go func() {
		for r := range out {
			printResult(r)
		}
	}()
	if err := p.Watch(ctx, *dir, out); err != nil {
		log.WithError(err).Fatal("watch failed")
	}
	close(out)
}

func printResult(r batch.Result) {
	code := r.Code
	if !r.OK {
		code = "-"
	}
	fmt.Printf("%s\t%s\n", r.Name, code)
}
