package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"bastion/config"
	"bastion/internal/core"
	"bastion/internal/database/fluentd/model"
	"bastion/internal/pkg/response"
	"bastion/internal/telemetry"
	"bastion/utils/validate"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type recordedResponses struct {
	logs []model.ResponseLog
}

func (r *recordedResponses) LogResponse(_ context.Context, log model.ResponseLog) error {
	r.logs = append(r.logs, log)
	return nil
}

func testConfig() *config.Configuration {
	conf := &config.Configuration{}
	conf.App.Name = "bastion"
	conf.App.Version = "test"
	conf.Auth.JWTSecret = "secret"
	return conf
}

// newTestEngine 套上 Recovery 與 Response，並在 /api/v1/roles/:id 回傳目前的 Principal
func newTestEngine(conf *config.Configuration, responses *recordedResponses, chain ...gin.HandlerFunc) *gin.Engine {
	trace, metric := &telemetry.Trace{}, &telemetry.Metric{}
	r := gin.New()
	r.Use(
		NewRecovery(zap.NewNop(), trace, metric, conf, responses).ErrorHandler(),
		NewResponse(zap.NewNop(), trace, metric, conf, responses).FormatHandler(),
	)
	api := r.Group("/api/v1", chain...)
	api.GET("/roles/:id", func(c *gin.Context) {
		response.Success(c, gin.H{"principal": validate.Principal(c)})
	})
	return r
}

type envelope struct {
	RequestID   string `json:"requestID"`
	Code        int    `json:"code"`
	Message     string `json:"message"`
	Description string `json:"description"`
	Data        struct {
		Principal *core.Principal `json:"principal"`
	} `json:"data"`
}

func serve(t *testing.T, r *gin.Engine, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var body envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return w, body
}

// withPrincipal 模擬 Authenticate 已放入 Principal
func withPrincipal(p *core.Principal) gin.HandlerFunc {
	return func(c *gin.Context) {
		if p != nil {
			c.Set(core.ContextPrincipalKey, p)
		}
		c.Next()
	}
}
