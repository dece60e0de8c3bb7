package middleware

import (
	"context"

	"bastion/internal/core"
	cErr "bastion/internal/pkg/error"
	"bastion/internal/pkg/response"
	"bastion/internal/service"
	"bastion/internal/telemetry"
	"bastion/utils/validate"

	"github.com/gin-gonic/gin"
)

type Authorizer interface {
	Authorize(ctx context.Context, principal *core.Principal, resource string) (service.Decision, error)
}

type Access struct {
	trace *telemetry.Trace
	guard Authorizer
}

func NewAccess(trace *telemetry.Trace, guard Authorizer) *Access {
	return &Access{trace: trace, guard: guard}
}

// Guard 以路由樣板作為資源名稱詢問 AccessGuard；拒絕時中止請求
func (m *Access) Guard() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span, end := m.trace.WithSpan(c.Request.Context(), string(core.SpanAccessMiddleware))
		resource := routeOf(c)
		principal := validate.Principal(c)

		decision, err := m.guard.Authorize(ctx, principal, resource)
		if err != nil {
			appErr := cErr.FromMongo(err, "permission lookup failed")
			response.AbortWithError(c, appErr)
			end(appErr)
			return
		}

		meta := core.TraceAccessMeta{Resource: resource, Outcome: string(decision.Outcome), Reason: decision.Reason}
		if principal != nil {
			meta.UserID, meta.Username, meta.RoleID = principal.UserID, principal.Username, principal.RoleID
		}
		m.trace.ApplyTraceAttributes(span, meta)

		if denied := decision.Err(); denied != nil {
			response.AbortWithError(c, denied)
			end(denied)
			return
		}
		end(nil)
		c.Next()
	}
}
