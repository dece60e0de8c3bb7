package client

import (
	"context"
	"time"

	"bastion/config"

	"github.com/fluent/fluent-logger-golang/fluent"
	"go.uber.org/zap"
)

// FluentdPoster 讓 repository 可以注入 Noop 或測試用實作
type FluentdPoster interface {
	Post(ctx context.Context, tag string, message any) error
	Close() error
}

// FluentdClient implements FluentdPoster using fluent-logger-golang.
type FluentdClient struct {
	client    *fluent.Fluent
	tagPrefix string
}

// NewFluentdClient 建立 forward client；Host 未設定時回傳 NoopClient
func NewFluentdClient(logger *zap.Logger, config *config.Configuration) (FluentdPoster, func(), error) {
	if config.Fluentd.Host == "" {
		logger.Info("fluentd host not configured, audit records are dropped")
		return &NoopClient{}, func() {}, nil
	}

	prefix := "bastion"
	if config.Fluentd.TagPrefix != "" {
		prefix = config.Fluentd.TagPrefix
	}
	var timeout time.Duration
	if config.Fluentd.Timeout > 0 {
		timeout = time.Duration(config.Fluentd.Timeout) * time.Millisecond
	}

	f, err := fluent.New(fluent.Config{
		FluentHost: config.Fluentd.Host,
		FluentPort: config.Fluentd.Port,
		Timeout:    timeout,
		TagPrefix:  prefix,
		Async:      config.Fluentd.Async,
	})
	if err != nil {
		logger.Error("failed to connect to Fluentd", zap.Error(err))
		return nil, nil, err
	}
	logger.Info("Connected to Fluentd")
	fluentdClient := &FluentdClient{client: f, tagPrefix: prefix}

	cleanup := func() {
		logger.Info("closing the Fluentd resources")
		if err := fluentdClient.Close(); err != nil {
			logger.Error("failed to close Fluentd client", zap.Error(err))
		}
	}
	return fluentdClient, cleanup, nil
}

func (c *FluentdClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// Post sends a record to Fluentd; the prefix is added by fluent-logger-golang.
func (c *FluentdClient) Post(ctx context.Context, tag string, message any) error {
	// fluent-logger-golang 不支援 context，僅在送出前檢查是否已取消
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.client.Post(tag, message)
}

// --------------------
// Noop client (disabled mode)
// --------------------

type NoopClient struct{}

func (n *NoopClient) Post(ctx context.Context, tag string, message any) error { return nil }
func (n *NoopClient) Close() error                                           { return nil }
