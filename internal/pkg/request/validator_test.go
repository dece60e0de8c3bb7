package request

import (
	"errors"
	"testing"

	cErr "bastion/internal/pkg/error"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	RoleID string   `validate:"required"`
	Tags   []string `validate:"dive,min=2"`
}

func (payload) GetMessages() ValidatorMessages {
	return ValidatorMessages{
		"RoleID.required": "roleId is required",
		"Tags.*.min":      "each tag needs at least 2 characters",
	}
}

func TestGetError(t *testing.T) {
	v := validator.New()

	appErr, ok := GetError(payload{}, v.Struct(payload{}))
	require.True(t, ok)
	assert.Equal(t, "roleId is required", appErr.ErrorDesc())
	assert.True(t, cErr.HasCode(appErr, cErr.BAD_REQUEST_BODY))

	appErr, ok = GetError(payload{}, v.Struct(payload{RoleID: "r", Tags: []string{"ok", "x"}}))
	require.True(t, ok)
	assert.Equal(t, "each tag needs at least 2 characters", appErr.ErrorDesc())
}

func TestGetErrorWithoutMessage(t *testing.T) {
	_, ok := GetError(payload{}, errors.New("EOF"))
	assert.False(t, ok)
}
