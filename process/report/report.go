package report

import (
	"context"
	"fmt"
	"io"
	"time"

	"capsolver/models"
	"capsolver/pkg/store"
)

// Source is the slice of the attempt store the report reads.
type Source interface {
	Stats(ctx context.Context, from, to time.Time) ([]store.Stat, error)
	Rows(ctx context.Context, from, to time.Time) ([]models.Attempt, error)
}

// MonthBounds parses a YYYY-MM month into its UTC [start, end) range.
func MonthBounds(month string) (time.Time, time.Time, error) {
	t, err := time.Parse("2006-01", month)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid month %q, expected YYYY-MM: %w", month, err)
	}
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0), nil
}

// Run writes a month-bounded summary of recognition attempts to w and
// optionally lists every matching row.
func Run(ctx context.Context, src Source, w io.Writer, month string, list bool) error {
	start, end, err := MonthBounds(month)
	if err != nil {
		return err
	}
	stats, err := src.Stats(ctx, start, end)
	if err != nil {
		return err
	}

	var total, ok int64
	for _, s := range stats {
		total += s.Count
		if s.Success {
			ok += s.Count
		}
	}
	fmt.Fprintf(w, "Report for month=%s (UTC):\n", month)
	fmt.Fprintf(w, "  attempts=%d recognized=%d rate=%s\n", total, ok, rate(ok, total))
	for _, s := range stats {
		kind := s.FailureKind
		if s.Success {
			kind = "ok"
		}
		fmt.Fprintf(w, "  %-6s %-24s count=%d cached=%d avg=%.0fus\n", s.Source, kind, s.Count, s.Cached, s.AvgUS)
	}

	if !list {
		return nil
	}
	rows, err := src.Rows(ctx, start, end)
	if err != nil {
		return fmt.Errorf("fetch rows: %w", err)
	}
	for _, r := range rows {
		code := r.Code
		if !r.Success {
			code = "-"
		}
		fmt.Fprintf(w, "%d|%s|%s|%s|%s|%s\n", r.ID, r.Source, r.Name, code, r.FailureKind, r.CreatedAt.Format(time.RFC3339))
	}
	return nil
}

func rate(n, total int64) string {
	if total == 0 {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", 100*float64(n)/float64(total))
}
