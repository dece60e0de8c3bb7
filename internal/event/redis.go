package event

import (
	"context"
	"encoding/json"

	"bastion/config"
	client "bastion/internal/database/client"

	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisPublisher 以 Redis Pub/Sub 發佈 JSON 事件
type RedisPublisher struct {
	client  redis.UniversalClient
	channel string
}

func NewRedisPublisher(c redis.UniversalClient, channel string) *RedisPublisher {
	return &RedisPublisher{client: c, channel: channel}
}

func (p *RedisPublisher) Publish(ctx context.Context, e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, p.channel, payload).Err()
}

// NewPublisher 未設定頻道時不發佈
func NewPublisher(logger *zap.Logger, conf *config.Configuration, redisClient *client.RedisClient) Publisher {
	if conf.Redis.EventChannel == "" {
		logger.Info("event channel not configured, domain events are dropped")
		return NoopPublisher{}
	}
	return NewRedisPublisher(redisClient.Client(), conf.Redis.EventChannel)
}

var ProviderSet = wire.NewSet(NewPublisher)
