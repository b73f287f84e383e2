package models

import (
	"time"
	"unicode/utf8"
)

// Attempt is one recognition call as seen by the API or the batch processor.
// The raw input is not stored, only its digest.
type Attempt struct {
	ID          uint `gorm:"primaryKey"`
	CreatedAt   time.Time
	RequestID   string `gorm:"size:64;index"`
	Source      string `gorm:"size:32;not null"` // http, batch
	Name        string `gorm:"size:255"`         // file name for batch attempts
	InputHash   string `gorm:"size:64;index;not null"`
	Code        string `gorm:"size:16"`
	Success     bool   `gorm:"index"`
	FailureKind string `gorm:"size:64"`
	Detail      string `gorm:"size:255"` // see SetDetail
	Cached      bool
	DurationUS  int64
}

// DetailMax is the size of the detail column.
const DetailMax = 255

// SetDetail stores err's message, cut to DetailMax bytes on a rune boundary.
func (a *Attempt) SetDetail(err error) {
	if err == nil {
		a.Detail = ""
		return
	}
	s := err.Error()
	if len(s) > DetailMax {
		s = s[:DetailMax]
		for len(s) > 0 && !utf8.ValidString(s) {
			s = s[:len(s)-1]
		}
	}
	a.Detail = s
}
