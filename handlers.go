package main

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"capsolver/models"
	"capsolver/pkg/cache"
	"capsolver/pkg/captcha"
	"capsolver/pkg/store"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
	maxBodyBytes    = 1 << 20
	errNoCode       = "no code recognized"
)

// app carries what the handlers share. attempts and results are nil when not configured.
type app struct {
	solver    *captcha.Solver
	attempts  store.Attempts
	results   cache.Results
	log       *logrus.Logger
	jwtSecret []byte
	limiter   *ipLimiter // nil disables rate limiting on /solve
}

func setupRoutes(r *gin.Engine, a *app) {
	r.Use(requestIDMiddleware(), requestLogger(a.log))
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/config", a.configHandler)
	if a.limiter != nil {
		r.POST("/solve", rateLimitMiddleware(a.limiter, a.log), a.solveHandler)
	} else {
		r.POST("/solve", a.solveHandler)
	}
	authGroup := r.Group("")
	authGroup.Use(jwtAuthMiddleware(a.jwtSecret))
	authGroup.GET("/attempts", a.listAttemptsHandler)
}

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func requestLogger(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.FullPath(),
			"status":     c.Writer.Status(),
			"latency":    time.Since(start).String(),
			requestIDKey: c.GetString(requestIDKey),
		}).Info("request")
	}
}

// solveHandler recognizes a GIF data URL. Every failure kind maps to the same 422 body;
// the kind only goes to the log and the attempt store.
func (a *app) solveHandler(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	var req struct {
		Image string `json:"image" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()
	rid := c.GetString(requestIDKey)
	start := time.Now()
	code, cached, err := a.recognize(ctx, req.Image)

	attempt := &models.Attempt{
		RequestID:   rid,
		Source:      "http",
		InputHash:   cache.Key("", req.Image),
		Code:        code,
		Success:     err == nil,
		FailureKind: captcha.Kind(err),
		Cached:      cached,
		DurationUS:  time.Since(start).Microseconds(),
	}
	if err != nil {
		attempt.SetDetail(err)
		a.log.WithFields(logrus.Fields{
			requestIDKey: rid,
			"kind":       attempt.FailureKind,
			"cached":     cached,
		}).WithError(err).Info("captcha not recognized")
	}
	a.record(ctx, attempt)

	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": errNoCode})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": code})
}

// recognize consults the result cache before running the pipeline. Keys carry the
// solver fingerprint, so a changed table never replays old results. Only inputs that
// decoded are cached, so a cached miss is always an incomplete recognition.
func (a *app) recognize(ctx context.Context, input string) (string, bool, error) {
	key := cache.Key(a.solver.Fingerprint()+":", input)
	if a.results != nil {
		code, ok, found, err := a.results.Get(ctx, key)
		switch {
		case err != nil:
			a.log.WithError(err).Warn("result cache read failed")
		case found && ok:
			return code, true, nil
		case found:
			return "", true, fmt.Errorf("%w: cached", captcha.ErrRecognitionIncomplete)
		}
	}
	img, err := captcha.Decode(input)
	if err != nil {
		return "", false, err
	}
	code, err := a.solver.Recognize(img)
	if a.results != nil {
		if perr := a.results.Put(ctx, key, code, err == nil); perr != nil {
			a.log.WithError(perr).Warn("result cache write failed")
		}
	}
	return code, false, err
}

func (a *app) record(ctx context.Context, at *models.Attempt) {
	if a.attempts == nil {
		return
	}
	if err := a.attempts.Record(ctx, at); err != nil {
		a.log.WithError(err).WithField(requestIDKey, at.RequestID).Warn("failed to record attempt")
	}
}

type rangeView struct {
	Min   int    `json:"min"`
	Max   int    `json:"max"`
	Digit string `json:"digit"`
}

func (a *app) configHandler(c *gin.Context) {
	cfg := a.solver.Config()
	ranges := make([]rangeView, len(cfg.Ranges))
	for i, r := range cfg.Ranges {
		ranges[i] = rangeView{Min: r.Min, Max: r.Max, Digit: string(r.Digit)}
	}
	overhang := cfg.OverhangingRegions()
	if overhang == nil {
		overhang = []int{}
	}
	c.JSON(http.StatusOK, gin.H{
		"width":               cfg.Width,
		"height":              cfg.Height,
		"char_width":          cfg.CharWidth,
		"left_margin":         cfg.LeftMargin,
		"chars":               cfg.Chars,
		"white_threshold":     cfg.WhiteThreshold,
		"offsets":             cfg.Offsets(),
		"overhanging_regions": overhang,
		"ranges":              ranges,
	})
}

// listAttemptsHandler returns the most recent attempts, newest first.
func (a *app) listAttemptsHandler(c *gin.Context) {
	if a.attempts == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "attempt store not configured"})
		return
	}
	limit := 50
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}
	items, err := a.attempts.Recent(c.Request.Context(), limit)
	if err != nil {
		a.log.WithError(err).Error("attempt query failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, items)
}
