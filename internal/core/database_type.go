package core

type MongoDatabaseName string
type MongoCollection string
type RedisKey string
type FluentdSubTag string

// ─── MongoDB ───────────────────────────────────────────────────────────────────
const (
	MongoDBBastion MongoDatabaseName = "bastion"
)

// MongoDB collections
const (
	MongoCollectionUsers       MongoCollection = "users"
	MongoCollectionRoles       MongoCollection = "roles"
	MongoCollectionResources   MongoCollection = "resources"
	MongoCollectionPermissions MongoCollection = "permissions"
)

// ─── Redis Keys ────────────────────────────────────────────────────────────────

const (
	RedisKeyServerName RedisKey = "bastion"   // 伺服器名稱
	RedisKeyRateLimit  RedisKey = "ratelimit" // 每個請求者的固定視窗計數
)

const (
	FluentdRequest  FluentdSubTag = "request_log"
	FluentdResponse FluentdSubTag = "response_log"
	FluentdAccess   FluentdSubTag = "access_log"
)
