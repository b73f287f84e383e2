package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"capsolver/pkg/captcha"
	"capsolver/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

func main() {
	bootLog := logrus.StandardLogger()
	loadDotEnv(bootLog)
	log := logger.Get()

	cfg, err := captcha.ConfigFromEnv()
	if err != nil {
		log.WithError(err).Fatal("invalid captcha configuration")
	}
	warnOverhang(log, cfg)
	solver, err := captcha.NewSolver(cfg)
	if err != nil {
		log.WithError(err).Fatal("invalid captcha configuration")
	}
	sc := loadServerConfig(log)

	// `capsolver migrate` creates the attempts table and exits.
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		sc.AutoMigrate = true
		if initDB(sc, log) == nil {
			log.Fatal("migrate requires DB_DSN")
		}
		log.Info("migration completed")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{
		solver:    solver,
		attempts:  initDB(sc, log),
		results:   initCache(ctx, sc, log),
		log:       log,
		jwtSecret: sc.JWTSecret,
	}
	if sc.SolveRate > 0 {
		a.limiter = newIPLimiter(rate.Limit(sc.SolveRate), sc.SolveBurst)
	}

	if sc.Production {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	setupRoutes(r, a)

	srv := &http.Server{Addr: sc.Addr, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		log.WithField("addr", sc.Addr).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}

// warnOverhang reports slots that read past the nominal width. Those columns are
// recognized as black, which is kept as-is until checked against real samples.
func warnOverhang(log *logrus.Logger, cfg captcha.Config) {
	for _, i := range cfg.OverhangingRegions() {
		log.WithFields(logrus.Fields{
			"slot":  i,
			"start": cfg.Offset(i),
			"end":   cfg.Offset(i) + cfg.CharWidth,
			"width": cfg.Width,
		}).Warn("character region extends past the image width")
	}
}
