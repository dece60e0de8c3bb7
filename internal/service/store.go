package service

import (
	"context"
	"time"

	fluentdModel "bastion/internal/database/fluentd/model"
	fluentdRepo "bastion/internal/database/fluentd/repository"
	"bastion/internal/database/mongodb/model"
	"bastion/internal/database/mongodb/repository"
	"bastion/internal/pkg/query"

	"github.com/google/wire"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// 以下介面由 mongodb repository 實作；service 只依賴介面，測試時以記憶體版本替換

type RoleStore interface {
	Store() query.Store
	Create(ctx context.Context, role *model.Role) (*model.Role, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.Role, error)
	FindByName(ctx context.Context, name string) (*model.Role, error)
	UpdateByID(ctx context.Context, id primitive.ObjectID, setFields bson.M) (*model.Role, error)
	DeleteByID(ctx context.Context, id primitive.ObjectID) error
	ExistingIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]struct{}, error)
}

type ResourceStore interface {
	Store() query.Store
	Create(ctx context.Context, resource *model.Resource) (*model.Resource, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.Resource, error)
	FindByName(ctx context.Context, name string) (*model.Resource, error)
	UpdateByID(ctx context.Context, id primitive.ObjectID, setFields bson.M) (*model.Resource, error)
	DeleteByID(ctx context.Context, id primitive.ObjectID) error
	ExistingIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]struct{}, error)
}

// PermissionLookup 授權判斷只需要這一個查詢
type PermissionLookup interface {
	FindForAccess(ctx context.Context, roleID primitive.ObjectID, resource string) (*model.Permission, error)
}

type PermissionStore interface {
	PermissionLookup
	Store() query.Store
	Create(ctx context.Context, permission *model.Permission) (*model.Permission, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.Permission, error)
	FindByPair(ctx context.Context, roleID, resourceID primitive.ObjectID) (*model.Permission, error)
	UpdateByID(ctx context.Context, id primitive.ObjectID, setFields bson.M) (*model.Permission, error)
	DeleteByID(ctx context.Context, id primitive.ObjectID) error
	SyncRole(ctx context.Context, role *model.Role) (int64, error)
	SyncResource(ctx context.Context, resource *model.Resource) (int64, error)
	DistinctRefs(ctx context.Context) (roleIDs, resourceIDs []primitive.ObjectID, err error)
	FindByRefs(ctx context.Context, roleIDs, resourceIDs []primitive.ObjectID) ([]*model.Permission, error)
}

type UserStore interface {
	Store() query.Store
	Create(ctx context.Context, user *model.User) (*model.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	UpdateByID(ctx context.Context, id primitive.ObjectID, setFields bson.M) (*model.User, error)
	UpdateLastSeen(ctx context.Context, id primitive.ObjectID, at time.Time) (int64, error)
	DeleteByID(ctx context.Context, id primitive.ObjectID) error
}

// AccessAuditor 授權判斷的稽核輸出（fluentd）
type AccessAuditor interface {
	LogAccessDecision(ctx context.Context, record fluentdModel.AccessLog) error
}

var storeBindings = wire.NewSet(
	wire.Bind(new(RoleStore), new(*repository.RoleRepository)),
	wire.Bind(new(ResourceStore), new(*repository.ResourceRepository)),
	wire.Bind(new(PermissionStore), new(*repository.PermissionRepository)),
	wire.Bind(new(PermissionLookup), new(*repository.PermissionRepository)),
	wire.Bind(new(UserStore), new(*repository.UserRepository)),
	wire.Bind(new(AccessAuditor), new(*fluentdRepo.LogRepository)),
)
