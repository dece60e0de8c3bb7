package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bastion/internal/core"
	cErr "bastion/internal/pkg/error"
	"bastion/internal/telemetry"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func sign(t *testing.T, method jwt.SigningMethod, key any, claims core.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func aliceClaims(issuer string, expiresIn time.Duration) core.Claims {
	return core.Claims{
		Username: "alice",
		UserID:   "64b7f0c2a1b2c3d4e5f60718",
		RoleID:   "64b7f0c2a1b2c3d4e5f60719",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
		},
	}
}

func authRequest(header string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/roles/42", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	return req
}

func TestAuthenticateValidToken(t *testing.T) {
	conf := testConfig()
	conf.Auth.Issuer = "auth-service"
	r := newTestEngine(conf, &recordedResponses{}, NewAuthenticate(zap.NewNop(), &telemetry.Trace{}, conf).Handler())

	token := sign(t, jwt.SigningMethodHS256, []byte("secret"), aliceClaims("auth-service", time.Hour))
	w, body := serve(t, r, authRequest("Bearer "+token))
	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, body.Data.Principal)
	assert.Equal(t, "alice", body.Data.Principal.Username)
	assert.Equal(t, "64b7f0c2a1b2c3d4e5f60719", body.Data.Principal.RoleID)
}

func TestAuthenticateAnonymousPassesThrough(t *testing.T) {
	conf := testConfig()
	r := newTestEngine(conf, &recordedResponses{}, NewAuthenticate(zap.NewNop(), &telemetry.Trace{}, conf).Handler())

	w, body := serve(t, r, authRequest(""))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, body.Data.Principal)
}

func TestAuthenticateRejects(t *testing.T) {
	conf := testConfig()
	conf.Auth.Issuer = "auth-service"

	cases := map[string]struct {
		header string
		code   int
	}{
		"malformed":    {"Token abc", cErr.UNAUTHORIZED},
		"empty bearer": {"Bearer ", cErr.UNAUTHORIZED},
		"wrong secret": {"Bearer " + sign(t, jwt.SigningMethodHS256, []byte("other"), aliceClaims("auth-service", time.Hour)), cErr.INVALID_SESSION},
		"expired":      {"Bearer " + sign(t, jwt.SigningMethodHS256, []byte("secret"), aliceClaims("auth-service", -time.Minute)), cErr.INVALID_SESSION},
		"wrong issuer": {"Bearer " + sign(t, jwt.SigningMethodHS256, []byte("secret"), aliceClaims("someone-else", time.Hour)), cErr.INVALID_SESSION},
		"alg none":     {"Bearer " + sign(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, aliceClaims("auth-service", time.Hour)), cErr.INVALID_SESSION},
		"garbage":      {"Bearer not.a.jwt", cErr.INVALID_SESSION},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			r := newTestEngine(conf, &recordedResponses{}, NewAuthenticate(zap.NewNop(), &telemetry.Trace{}, conf).Handler())

			w, body := serve(t, r, authRequest(tc.header))
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, tc.code, body.Code)
			assert.Nil(t, body.Data.Principal)
		})
	}
}

func TestAuthenticateEmptySecretRejectsEverything(t *testing.T) {
	conf := testConfig()
	conf.Auth.JWTSecret = ""
	r := newTestEngine(conf, &recordedResponses{}, NewAuthenticate(zap.NewNop(), &telemetry.Trace{}, conf).Handler())

	// 以空字串簽章的 token 不能被接受
	token := sign(t, jwt.SigningMethodHS256, []byte(""), aliceClaims("", time.Hour))
	w, body := serve(t, r, authRequest("Bearer "+token))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, cErr.INVALID_SESSION, body.Code)
	assert.Nil(t, body.Data.Principal)
}
