package repository

import (
	"context"
	"testing"

	"bastion/config"
	"bastion/internal/database/fluentd/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturePoster struct {
	tags     []string
	messages []any
}

func (c *capturePoster) Post(_ context.Context, tag string, message any) error {
	c.tags = append(c.tags, tag)
	c.messages = append(c.messages, message)
	return nil
}

func (c *capturePoster) Close() error { return nil }

func TestLogAccessDecision(t *testing.T) {
	poster := &capturePoster{}
	conf := &config.Configuration{}
	conf.App.Version = "2.3.4"
	repository := NewLogRepository(conf, poster)

	err := repository.LogAccessDecision(context.Background(), model.AccessLog{
		Username: "alice",
		Resource: "/api/v1/roles",
		Outcome:  "allow",
		Reason:   "permitted",
	})
	require.NoError(t, err)

	require.Equal(t, []string{"access_log"}, poster.tags)
	msg, ok := poster.messages[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "alice", msg["username"])
	assert.Equal(t, "2.3.4", msg["version"])
	assert.NotEmpty(t, msg["logged_at"])
	assert.NotContains(t, msg, "permission_id")
}
