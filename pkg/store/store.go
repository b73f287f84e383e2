package store

import (
	"context"
	"fmt"
	"time"

	"capsolver/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Attempts persists recognition attempts.
type Attempts interface {
	Record(ctx context.Context, a *models.Attempt) error
	Recent(ctx context.Context, limit int) ([]models.Attempt, error)
}

// MaxRecent caps Recent.
const MaxRecent = 200

// Stat is one row of the attempt report, grouped by source and failure kind.
// FailureKind is empty for successful attempts.
type Stat struct {
	Source      string
	Success     bool
	FailureKind string
	Count       int64
	Cached      int64
	AvgUS       float64
}

// DB is the gorm-backed attempt store.
type DB struct {
	db *gorm.DB
}

// Open connects to Postgres and optionally migrates the attempts table.
func Open(dsn string, migrate bool) (*DB, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if migrate {
		if err := gdb.AutoMigrate(&models.Attempt{}); err != nil {
			return nil, fmt.Errorf("migrate attempts: %w", err)
		}
	}
	return &DB{db: gdb}, nil
}

func (s *DB) Record(ctx context.Context, a *models.Attempt) error {
	return s.db.WithContext(ctx).Create(a).Error
}

func (s *DB) Recent(ctx context.Context, limit int) ([]models.Attempt, error) {
	if limit <= 0 || limit > MaxRecent {
		limit = MaxRecent
	}
	var out []models.Attempt
	if err := s.db.WithContext(ctx).Order("id desc").Limit(limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Stats aggregates attempts created in [from, to).
func (s *DB) Stats(ctx context.Context, from, to time.Time) ([]Stat, error) {
	var out []Stat
	err := s.db.WithContext(ctx).Model(&models.Attempt{}).
		Select(`source, success, failure_kind, COUNT(*) AS count,
			SUM(CASE WHEN cached THEN 1 ELSE 0 END) AS cached,
			COALESCE(AVG(duration_us), 0) AS avg_us`).
		Where("created_at >= ? AND created_at < ?", from, to).
		Group("source, success, failure_kind").
		Order("source, success desc, count desc").
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("attempt stats: %w", err)
	}
	return out, nil
}

// Rows lists the attempts created in [from, to), oldest first.
func (s *DB) Rows(ctx context.Context, from, to time.Time) ([]models.Attempt, error) {
	var out []models.Attempt
	if err := s.db.WithContext(ctx).Where("created_at >= ? AND created_at < ?", from, to).Order("id").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
