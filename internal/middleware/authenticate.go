package middleware

import (
	"fmt"
	"strings"

	"bastion/config"
	"bastion/internal/core"
	cErr "bastion/internal/pkg/error"
	"bastion/internal/pkg/response"
	"bastion/internal/telemetry"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
)

// Authenticate 驗證外部簽發的 Bearer token（HS256），成功後把 Principal 放進 gin.Context。
// 沒有 Authorization header 時直接放行，由 Access.Guard 回應 no principal。
type Authenticate struct {
	logger *zap.Logger
	trace  *telemetry.Trace
	conf   *config.Configuration
}

// 未設定密鑰時所有 token 一律拒絕
func NewAuthenticate(logger *zap.Logger, trace *telemetry.Trace, conf *config.Configuration) *Authenticate {
	if err := conf.Auth.Validate(); err != nil {
		logger.Warn("[Authenticate] every bearer token will be rejected", zap.Error(err))
	}
	return &Authenticate{logger: logger, trace: trace, conf: conf}
}

func (m *Authenticate) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		_, span, end := m.trace.WithSpan(c.Request.Context(), string(core.SpanAuthMiddleware))
		meta := core.TraceAuthMiddlewareMeta{Where: "authorization", ClientIP: c.ClientIP()}

		header := c.GetHeader("Authorization")
		if header == "" {
			meta.Status = "anonymous"
			m.trace.ApplyTraceAttributes(span, meta)
			end(nil)
			c.Next()
			return
		}

		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			meta.Status = "malformed_header"
			m.trace.ApplyTraceAttributes(span, meta)
			err := cErr.Unauthorized("authorization header must be Bearer <token>")
			response.AbortWithError(c, err)
			end(err)
			return
		}

		claims, err := m.parse(strings.TrimSpace(token))
		if err != nil {
			meta.Status = "invalid_token"
			m.trace.ApplyTraceAttributes(span, meta)
			m.logger.Info("[Authenticate] token rejected", zap.String("clientIp", c.ClientIP()), zap.Error(err))
			appErr := cErr.InvalidSession("invalid or expired token").WithCause(err)
			response.AbortWithError(c, appErr)
			end(appErr)
			return
		}

		meta.UserID, meta.RoleID, meta.Status = claims.UserID, claims.RoleID, "success"
		m.trace.ApplyTraceAttributes(span, meta)
		c.Set(core.ContextPrincipalKey, claims.Principal())
		end(nil)
		c.Next()
	}
}

func (m *Authenticate) parse(raw string) (*core.Claims, error) {
	if err := m.conf.Auth.Validate(); err != nil {
		return nil, err
	}
	claims := &core.Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(m.conf.Auth.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}
	if issuer := m.conf.Auth.Issuer; issuer != "" && !claims.VerifyIssuer(issuer, true) {
		return nil, fmt.Errorf("unexpected issuer %q", claims.Issuer)
	}
	return claims, nil
}
