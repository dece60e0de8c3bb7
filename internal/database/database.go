package database

import (
	client "bastion/internal/database/client"
	fluentdRepo "bastion/internal/database/fluentd/repository"
	mongoRepo "bastion/internal/database/mongodb/repository"
	redisRepo "bastion/internal/database/redis/repository"

	"github.com/google/wire"
)

// ProviderSet 定義所有 DB Client 的依賴
var ProviderSet = wire.NewSet(
	client.NewMongoClient,
	client.NewRedisClient,
	client.NewFluentdClient,
	mongoRepo.ProviderSet,
	fluentdRepo.ProviderSet,
	redisRepo.ProviderSet,
)
