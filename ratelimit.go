package main

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// ipLimiter hands out one token bucket per client IP.
type ipLimiter struct {
	mu     sync.Mutex
	bucket map[string]*rate.Limiter
	rate   rate.Limit
	burst  int
}

func newIPLimiter(r rate.Limit, burst int) *ipLimiter {
	return &ipLimiter{bucket: make(map[string]*rate.Limiter), rate: r, burst: burst}
}

func (l *ipLimiter) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.bucket[ip]
	if !ok {
		lim = rate.NewLimiter(l.rate, l.burst)
		l.bucket[ip] = lim
	}
	return lim
}

func rateLimitMiddleware(l *ipLimiter, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !l.get(ip).Allow() {
			log.WithField("ip", ip).Warn("too many requests")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}
