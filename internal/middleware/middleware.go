package middleware

import (
	fluentdRepository "bastion/internal/database/fluentd/repository"
	redisRepository "bastion/internal/database/redis/repository"
	"bastion/internal/service"

	"github.com/google/wire"
)

var ProviderSet = wire.NewSet(
	NewTraceEntry,
	NewCors,
	NewLogger,
	NewRecovery,
	NewResponse,
	NewAuthenticate,
	NewUser,
	NewRateLimit,
	NewAccess,
	wire.Bind(new(ResponseLogger), new(*fluentdRepository.LogRepository)),
	wire.Bind(new(UserToucher), new(*service.UserService)),
	wire.Bind(new(RateConsumer), new(*redisRepository.RateLimiterRepository)),
	wire.Bind(new(Authorizer), new(*service.AccessGuard)),
)
