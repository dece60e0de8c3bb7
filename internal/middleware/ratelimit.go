package middleware

import (
	"context"
	"errors"
	"strconv"

	"bastion/config"
	"bastion/internal/core"
	"bastion/internal/database/redis/repository"
	cErr "bastion/internal/pkg/error"
	"bastion/internal/pkg/response"
	"bastion/internal/telemetry"
	"bastion/utils/validate"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateConsumer 固定視窗計數；超限時回傳 repository.ErrRateLimitExceeded
type RateConsumer interface {
	Consume(ctx context.Context, subject string, windowSeconds int64, limitCount int) (int, int64, error)
}

type RateLimit struct {
	logger  *zap.Logger
	trace   *telemetry.Trace
	metric  *telemetry.Metric
	conf    *config.Configuration
	limiter RateConsumer
}

func NewRateLimit(
	logger *zap.Logger,
	trace *telemetry.Trace,
	metric *telemetry.Metric,
	conf *config.Configuration,
	limiter RateConsumer,
) *RateLimit {
	return &RateLimit{logger: logger, trace: trace, metric: metric, conf: conf, limiter: limiter}
}

// rateSubject 已驗證者以帳號計數，匿名請求以來源 IP 計數
func rateSubject(c *gin.Context) string {
	if p := validate.Principal(c); p != nil && p.Username != "" {
		return "user:" + p.Username
	}
	return "ip:" + c.ClientIP()
}

func (middleware *RateLimit) Guard() gin.HandlerFunc {
	return func(c *gin.Context) {
		setting := middleware.conf.RateLimit
		if !setting.Enabled || setting.Limit <= 0 || setting.WindowSeconds <= 0 {
			c.Next()
			return
		}

		ctx, span, end := middleware.trace.WithSpan(c.Request.Context(), string(core.SpanRateLimitMiddleware))
		subject := rateSubject(c)
		meta := core.TraceRateLimitMiddlewareMeta{Subject: subject, ConfigLimit: setting.Limit}

		remaining, ttlSec, err := middleware.limiter.Consume(ctx, subject, setting.WindowSeconds, setting.Limit)
		blocked := errors.Is(err, repository.ErrRateLimitExceeded)
		if err != nil && !blocked {
			// Redis 不可用時不阻斷主流程
			meta.FailOpen = true
			middleware.trace.ApplyTraceAttributes(span, meta)
			middleware.logger.Warn("[RateLimit] limiter unavailable, fail open",
				zap.String("subject", subject),
				zap.Error(err),
			)
			end(nil)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(setting.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		if ttlSec > 0 {
			c.Header("X-RateLimit-Reset", strconv.FormatInt(ttlSec, 10))
		}

		meta.Remaining, meta.TTLSeconds, meta.Blocked = remaining, ttlSec, blocked
		middleware.trace.ApplyTraceAttributes(span, meta)

		if blocked {
			if ttlSec > 0 {
				c.Header("Retry-After", strconv.FormatInt(ttlSec, 10))
			}
			middleware.metric.IncRateLimited(routeOf(c))
			appErr := cErr.RateLimitExceeded("rate limit exceeded")
			response.AbortWithError(c, appErr)
			end(appErr)
			return
		}
		end(nil)
		c.Next()
	}
}
