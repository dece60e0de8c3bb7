package event

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	require.NoError(t, r.Publish(context.Background(), New(RoleCreated, "r1", "u1", nil)))
	require.NoError(t, r.Publish(context.Background(), New(RoleDeleted, "r1", "u1", nil)))

	assert.Equal(t, []Name{RoleCreated, RoleDeleted}, r.Names())
	assert.Equal(t, "u1", r.Events()[0].ActorID)
	assert.False(t, r.Events()[0].OccurredAt.IsZero())

	r.Err = errors.New("down")
	assert.Error(t, r.Publish(context.Background(), New(RoleUpdated, "r1", "", nil)))
}

func TestNoopPublisher(t *testing.T) {
	var p Publisher = NoopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), New(UserCreated, "x", "", nil)))
}
