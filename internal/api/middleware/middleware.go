package middleware

import (
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/d60-Lab/standup-backend/internal/apperr"
	"github.com/d60-Lab/standup-backend/pkg/logger"
	"github.com/d60-Lab/standup-backend/pkg/response"
)

const requestIDHeader = "X-Request-ID"

// RequestID 为每个请求生成或透传请求标识
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(requestIDHeader, id)
		c.Set("request_id", id)
		c.Next()
	}
}

// AccessLog 请求访问日志
func AccessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", c.GetString("request_id")),
		)
	}
}

// Recovery panic 兜底：上报 sentry 并按 INTERNAL_DB_ERR 应答
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				sentry.CurrentHub().Recover(r)
				logger.Error("panic recovered",
					zap.Any("panic", r),
					zap.String("path", c.Request.URL.Path),
				)
				response.Fail(c, apperr.InternalDB)
				c.Abort()
			}
		}()
		c.Next()
	}
}

const (
	limiterIdleTTL    = 10 * time.Minute
	limiterSweepEvery = time.Minute
)

type ipLimiter struct {
	lim  *rate.Limiter
	seen time.Time
}

// limiterPool 按 IP 维护限流器；空闲条目定期回收，
// 避免长期进程按客户端 IP 无界增长
type limiterPool struct {
	mu        sync.Mutex
	rps       float64
	burst     int
	entries   map[string]*ipLimiter
	lastSweep time.Time
}

func newLimiterPool(rps float64, burst int) *limiterPool {
	return &limiterPool{
		rps:       rps,
		burst:     burst,
		entries:   map[string]*ipLimiter{},
		lastSweep: time.Now(),
	}
}

func (p *limiterPool) get(ip string, now time.Time) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()

	entry, ok := p.entries[ip]
	if !ok {
		entry = &ipLimiter{lim: rate.NewLimiter(rate.Limit(p.rps), p.burst)}
		p.entries[ip] = entry
	}
	entry.seen = now

	if now.Sub(p.lastSweep) > limiterSweepEvery {
		for key, e := range p.entries {
			if now.Sub(e.seen) > limiterIdleTTL {
				delete(p.entries, key)
			}
		}
		p.lastSweep = now
	}
	return entry.lim
}

func (p *limiterPool) size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}

// RateLimit 按客户端 IP 限流；rps<=0 时关闭
func RateLimit(rps float64, burst int) gin.HandlerFunc {
	if rps <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	if burst <= 0 {
		burst = 1
	}

	pool := newLimiterPool(rps, burst)
	return func(c *gin.Context) {
		if !pool.get(c.ClientIP(), time.Now()).Allow() {
			response.Fail(c, apperr.RateLimited)
			c.Abort()
			return
		}
		c.Next()
	}
}
