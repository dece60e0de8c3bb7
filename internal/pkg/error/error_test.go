package error

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestFromMongo(t *testing.T) {
	dup := mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "E11000 duplicate key error"}}}

	tests := []struct {
		name     string
		err      error
		wantHTTP int
		wantCode int
	}{
		{"no documents", mongo.ErrNoDocuments, http.StatusNotFound, NOT_FOUND},
		{"duplicate key", dup, http.StatusConflict, CONFLICT},
		{"deadline", fmt.Errorf("find: %w", context.DeadlineExceeded), http.StatusGatewayTimeout, GATEWAY_TIMEOUT},
		{"opaque", errors.New("connection reset"), http.StatusInternalServerError, DATABASE_ERROR},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromMongo(tt.err, "permission")
			require.NotNil(t, got)
			assert.Equal(t, tt.wantHTTP, got.HttpCode())
			assert.Equal(t, tt.wantCode, got.ErrorCode())
			assert.Equal(t, tt.err, got.Unwrap())
		})
	}

	assert.Nil(t, FromMongo(nil, "x"))

	// 已是應用錯誤則原樣回傳
	nf := NotFound("role not found")
	assert.Same(t, nf, FromMongo(nf, "ignored"))
}

func TestIsDenied(t *testing.T) {
	assert.True(t, IsDenied(AuthorizationError("no principal")))
	assert.True(t, IsDenied(AuthorizationDenied("not permitted")))
	assert.True(t, IsDenied(fmt.Errorf("wrapped: %w", InvalidSession("expired"))))
	assert.False(t, IsDenied(NotFound("x")))
	assert.False(t, IsDenied(errors.New("plain")))

	assert.NotEqual(t, AuthorizationError("").HttpCode(), AuthorizationDenied("").HttpCode())
}

func TestWithCauseDoesNotMutate(t *testing.T) {
	base := DatabaseError("db")
	cause := errors.New("boom")
	wrapped := base.WithCause(cause)

	assert.Nil(t, base.Unwrap())
	assert.Equal(t, cause, wrapped.Unwrap())
	assert.True(t, HasCode(wrapped, DATABASE_ERROR))
}
