package middleware

import (
	"context"

	"bastion/internal/core"
	"bastion/internal/pkg/response"
	"bastion/internal/telemetry"
	"bastion/utils/validate"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserToucher 確認使用者仍存在且啟用，並回傳以資料庫為準的 Principal
type UserToucher interface {
	Touch(ctx context.Context, principal *core.Principal) (*core.Principal, error)
}

type User struct {
	logger      *zap.Logger
	trace       *telemetry.Trace
	userService UserToucher
}

func NewUser(logger *zap.Logger, trace *telemetry.Trace, userService UserToucher) *User {
	return &User{logger: logger, trace: trace, userService: userService}
}

func (m *User) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := validate.Principal(c)
		if principal == nil {
			c.Next()
			return
		}

		ctx, span, end := m.trace.WithSpan(c.Request.Context(), string(core.SpanUserMiddleware))
		current, err := m.userService.Touch(ctx, principal)
		if err != nil {
			m.trace.ApplyTraceAttributes(span, core.TraceUserMiddlewareMeta{
				UserID: principal.UserID,
				Status: "user_check_failed",
			})
			response.AbortWithError(c, err)
			end(err)
			return
		}

		if current.RoleID != principal.RoleID {
			m.logger.Debug("[User] role refreshed from store",
				zap.String("username", current.Username),
				zap.String("tokenRoleId", principal.RoleID),
				zap.String("roleId", current.RoleID),
			)
		}
		c.Set(core.ContextPrincipalKey, current)
		end(nil)
		c.Next()
	}
}
