package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"bastion/internal/core"
	"bastion/internal/database/redis/repository"
	cErr "bastion/internal/pkg/error"
	"bastion/internal/telemetry"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type stubConsumer struct {
	remaining int
	ttl       int64
	err       error
	subjects  []string
}

func (s *stubConsumer) Consume(_ context.Context, subject string, _ int64, _ int) (int, int64, error) {
	s.subjects = append(s.subjects, subject)
	return s.remaining, s.ttl, s.err
}

func rateLimited(limiter *stubConsumer, enabled bool, principal *core.Principal) *gin.Engine {
	conf := testConfig()
	conf.RateLimit.Enabled = enabled
	conf.RateLimit.Limit = 10
	conf.RateLimit.WindowSeconds = 60
	m := NewRateLimit(zap.NewNop(), &telemetry.Trace{}, &telemetry.Metric{}, conf, limiter)
	return newTestEngine(conf, &recordedResponses{}, withPrincipal(principal), m.Guard())
}

func TestRateLimitAllows(t *testing.T) {
	limiter := &stubConsumer{remaining: 7, ttl: 42}
	r := rateLimited(limiter, true, &core.Principal{Username: "alice", RoleID: "r1"})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/roles/1", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "10", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "7", w.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "42", w.Header().Get("X-RateLimit-Reset"))
	assert.Equal(t, []string{"user:alice"}, limiter.subjects)
}

func TestRateLimitBlocks(t *testing.T) {
	limiter := &stubConsumer{ttl: 30, err: repository.ErrRateLimitExceeded}
	r := rateLimited(limiter, true, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/roles/1", nil)
	req.RemoteAddr = "10.0.0.8:5123"
	w, body := serve(t, r, req)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, cErr.RATE_LIMIT_EXCEEDED, body.Code)
	assert.Equal(t, "30", w.Header().Get("Retry-After"))
	assert.Equal(t, []string{"ip:10.0.0.8"}, limiter.subjects)
}

func TestRateLimitFailsOpen(t *testing.T) {
	limiter := &stubConsumer{err: errors.New("dial tcp: connection refused")}
	r := rateLimited(limiter, true, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/roles/1", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
}

func TestRateLimitDisabled(t *testing.T) {
	limiter := &stubConsumer{err: repository.ErrRateLimitExceeded}
	r := rateLimited(limiter, false, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/roles/1", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, limiter.subjects)
}
