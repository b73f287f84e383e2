package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"capsolver/pkg/envfile"
	"capsolver/pkg/logger"
	"capsolver/pkg/store"
	"capsolver/process/report"
)

func main() {
	month := flag.String("month", time.Now().UTC().Format("2006-01"), "month to report (YYYY-MM)")
	list := flag.Bool("list", false, "list matching attempts")
	flag.Parse()

	if err := envfile.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
	}
	log := logger.New(logger.OptionsFromEnv())

	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		fmt.Fprintln(os.Stderr, "DB_DSN not set; export DB_DSN and retry")
		os.Exit(2)
	}
	db, err := store.Open(dsn, false)
	if err != nil {
		log.WithError(err).Fatal("failed to open attempt store")
	}
	if err := report.Run(context.Background(), db, os.Stdout, *month, *list); err != nil {
		log.WithError(err).Fatal("report failed")
	}
}
