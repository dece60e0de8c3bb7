package middleware

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"
	"unicode/utf8"

	"bastion/config"
	"bastion/internal/core"
	"bastion/internal/database/fluentd/model"
	cErr "bastion/internal/pkg/error"
	res "bastion/internal/pkg/response"
	"bastion/internal/telemetry"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ResponseLogger Recovery 與 Response 共用的 fluentd 回應紀錄
type ResponseLogger interface {
	LogResponse(ctx context.Context, resp model.ResponseLog) error
}

type Recovery struct {
	logger            *zap.Logger
	trace             *telemetry.Trace
	metric            *telemetry.Metric
	config            *config.Configuration
	fluentdRepository ResponseLogger
}

func NewRecovery(
	logger *zap.Logger,
	trace *telemetry.Trace,
	metric *telemetry.Metric,
	config *config.Configuration,
	fluentdRepository ResponseLogger,
) *Recovery {
	return &Recovery{
		logger:            logger,
		trace:             trace,
		metric:            metric,
		config:            config,
		fluentdRepository: fluentdRepository,
	}
}

func (middleware *Recovery) ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestTime := time.Now()
		if startTime, exists := c.Get("requestDuration"); exists {
			if t, ok := startTime.(time.Time); ok {
				requestTime = t
			}
		}
		// ---- panic recover 必須在 c.Next() 之前註冊 ----
		defer func() {
			if rec := recover(); rec != nil {
				duration := time.Since(requestTime)
				ctx, span, end := middleware.trace.WithSpan(c.Request.Context(), string(core.SpanRecoveryMiddleware))
				err := cErr.InternalServer("unexpected panic")
				defer end(err)

				meta := core.TracePanicMeta{
					Path:       c.Request.URL.Path,
					Method:     c.Request.Method,
					ClientIP:   c.ClientIP(),
					UserAgent:  c.Request.UserAgent(),
					DurationMs: float64(duration.Milliseconds()),
					Message:    toSafeString(fmt.Sprint(rec)),
					Stack:      toSafeStack(debug.Stack()),
					Status:     http.StatusInternalServerError,
				}
				middleware.trace.ApplyTraceAttributes(span, meta)

				middleware.logger.Error("[PANIC] Recovered",
					zap.String("path", meta.Path),
					zap.String("method", meta.Method),
					zap.String("client_ip", meta.ClientIP),
					zap.String("user_agent", meta.UserAgent),
					zap.Duration("duration", duration),
					zap.String("panic", meta.Message),
					zap.String("stacktrace", meta.Stack),
					zap.String("requestId", requestID(c)),
				)

				// 尚未回寫才輸出
				if !c.Writer.Written() {
					res.FailByErr(c, requestID(c), err)
				}
				middleware.logResponse(ctx, c, err, "panic")
				c.Abort()
			}
		}()

		c.Next()

		// ---- 統一處理非 panic 的 gin errors（若尚未回寫）----
		if len(c.Errors) > 0 && !c.Writer.Written() {
			duration := time.Since(requestTime)
			ctx, span, end := middleware.trace.WithSpan(c.Request.Context(), string(core.SpanRecoveryMiddleware))
			defer end(nil)

			// 找第一個 *cErr.Error
			for _, e := range c.Errors {
				var appErr *cErr.Error
				if errors.As(e.Err, &appErr) {
					middleware.trace.ApplyTraceAttributes(span, core.TraceErrorMeta{
						Code:       appErr.ErrorCode(),
						Message:    appErr.Error(),
						Detail:     appErr.ErrorDesc(),
						DurationMs: float64(duration.Milliseconds()),
						Status:     appErr.HttpCode(),
					})
					fields := []zap.Field{
						zap.Int("code", appErr.ErrorCode()),
						zap.String("data", appErr.ErrorDesc()),
						zap.Duration("duration", duration),
						zap.String("requestId", requestID(c)),
					}
					if cause := appErr.Unwrap(); cause != nil {
						fields = append(fields, zap.NamedError("cause", cause))
					}
					if appErr.HttpCode() >= http.StatusInternalServerError {
						middleware.logger.Error(appErr.Error(), fields...)
					} else {
						middleware.logger.Warn(appErr.Error(), fields...)
					}
					res.FailByErr(c, requestID(c), appErr)
					middleware.logResponse(ctx, c, appErr, appErr.Error())
					c.Abort()
					return
				}
			}

			// 其餘未知錯誤
			unknown := c.Errors.String()
			middleware.trace.ApplyTraceAttributes(span, core.TraceErrorMeta{
				Code:       cErr.INTERNAL_ERROR,
				Message:    "unknown-error",
				Detail:     toSafeString(unknown),
				DurationMs: float64(duration.Milliseconds()),
				Status:     http.StatusInternalServerError,
			})
			middleware.logger.Warn("[ERROR] unknown",
				zap.String("error", unknown),
				zap.Duration("duration", duration),
				zap.String("requestId", requestID(c)),
			)
			res.Fail(c, requestID(c), http.StatusInternalServerError, cErr.INTERNAL_ERROR, "unknown-error", unknown)
			middleware.logResponse(ctx, c, cErr.InternalServer(toSafeString(unknown)), "unknown")
			c.Abort()
			return
		}
	}
}

// logResponse 失敗回應送 fluentd 並計數；送出失敗只記錄
func (middleware *Recovery) logResponse(ctx context.Context, c *gin.Context, appErr *cErr.Error, reason string) {
	middleware.metric.IncResponseFail(reason)
	err := middleware.fluentdRepository.LogResponse(ctx, model.ResponseLog{
		RequestID:   requestID(c),
		ProjectName: middleware.config.App.Name,
		Code:        appErr.ErrorCode(),
		StatusCode:  appErr.HttpCode(),
		Error:       appErr.Error() + ": " + appErr.ErrorDesc(),
		ResponseTS:  time.Now().UTC().Format("2006-01-02 15:04:05.999999 UTC"),
		Version:     middleware.config.App.Version,
	})
	if err != nil {
		middleware.logger.Warn("[Response] fluentd post failed", zap.Error(err))
	}
}

// ---- helpers ----

func toSafeString(s string) string {
	const max = 8000
	if utf8.ValidString(s) {
		if len(s) > max {
			return s[:max] + "…"
		}
		return s
	}
	b := []byte(s)
	if len(b) > max {
		b = b[:max]
	}
	return "b64:" + base64.StdEncoding.EncodeToString(b)
}

func toSafeStack(b []byte) string {
	const max = 16000
	if utf8.Valid(b) {
		if len(b) > max {
			return string(b[:max]) + "…"
		}
		return string(b)
	}
	if len(b) > max {
		b = b[:max]
	}
	return "b64:" + base64.StdEncoding.EncodeToString(b)
}
