package repository

import (
	"context"
	"time"

	"bastion/internal/core"
	client "bastion/internal/database/client"
	"bastion/internal/database/mongodb/model"
	"bastion/internal/pkg/query"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type PermissionRepository struct {
	collection *mongo.Collection
}

func NewPermissionRepository(mongoClient *client.MongoClient) *PermissionRepository {
	repository := &PermissionRepository{
		collection: mongoClient.Collection(core.MongoCollectionPermissions),
	}
	_ = repository.ensureIndexes(context.Background())
	return repository
}

func (repository *PermissionRepository) ensureIndexes(contextValue context.Context) error {
	_, err := repository.collection.Indexes().CreateMany(contextValue, model.PermissionIndexes)
	return err
}

func (repository *PermissionRepository) Store() query.Store {
	return repository.collection
}

// Create (roleId, resourceId) 重複時由唯一索引回傳 duplicate key error
func (repository *PermissionRepository) Create(contextValue context.Context, permission *model.Permission) (_ *model.Permission, returnedError error) {
	nowUTC := time.Now().UTC()
	if permission.ID.IsZero() {
		permission.ID = primitive.NewObjectID()
	}
	permission.CreatedAt = nowUTC
	permission.UpdatedAt = nowUTC
	permission.Revision = 0

	insertResult, insertError := repository.collection.InsertOne(contextValue, permission)
	if insertError != nil {
		return nil, insertError
	}
	if permission.ID, returnedError = insertedID(insertResult); returnedError != nil {
		return nil, returnedError
	}
	return permission, nil
}

func (repository *PermissionRepository) GetByID(contextValue context.Context, permissionIdentifier primitive.ObjectID) (*model.Permission, error) {
	return findOne[model.Permission](contextValue, repository.collection, bson.M{"_id": permissionIdentifier})
}

func (repository *PermissionRepository) FindByPair(contextValue context.Context, roleID, resourceID primitive.ObjectID) (*model.Permission, error) {
	return findOne[model.Permission](contextValue, repository.collection, bson.M{"roleId": roleID, "resourceId": resourceID})
}

// FindForAccess 授權判斷用；resource 為完整字串比對
func (repository *PermissionRepository) FindForAccess(contextValue context.Context, roleID primitive.ObjectID, resource string) (*model.Permission, error) {
	return findOne[model.Permission](contextValue, repository.collection, bson.M{
		"roleId":       roleID,
		"resourceName": resource,
		"isAllowed":    true,
	})
}

func (repository *PermissionRepository) UpdateByID(contextValue context.Context, permissionIdentifier primitive.ObjectID, setFields bson.M) (*model.Permission, error) {
	return updateAndReturn[model.Permission](contextValue, repository.collection, permissionIdentifier, setFields)
}

func (repository *PermissionRepository) DeleteByID(contextValue context.Context, permissionIdentifier primitive.ObjectID) error {
	return deleteByID(contextValue, repository.collection, permissionIdentifier)
}

// SyncRole 角色改名後同步權限上的副本
func (repository *PermissionRepository) SyncRole(contextValue context.Context, role *model.Role) (int64, error) {
	result, err := repository.collection.UpdateMany(contextValue,
		bson.M{"roleId": role.ID},
		setUpdate(bson.M{"roleName": role.Name, "roleAlias": role.Alias}),
	)
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}

// SyncResource 資源改名後同步權限上的副本
func (repository *PermissionRepository) SyncResource(contextValue context.Context, resource *model.Resource) (int64, error) {
	result, err := repository.collection.UpdateMany(contextValue,
		bson.M{"resourceId": resource.ID},
		setUpdate(bson.M{"resourceName": resource.Name, "resourceAlias": resource.Alias}),
	)
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}

// DistinctRefs 權限中出現過的角色與資源 id
func (repository *PermissionRepository) DistinctRefs(contextValue context.Context) (roleIDs, resourceIDs []primitive.ObjectID, returnedError error) {
	if roleIDs, returnedError = repository.distinctIDs(contextValue, "roleId"); returnedError != nil {
		return nil, nil, returnedError
	}
	if resourceIDs, returnedError = repository.distinctIDs(contextValue, "resourceId"); returnedError != nil {
		return nil, nil, returnedError
	}
	return roleIDs, resourceIDs, nil
}

func (repository *PermissionRepository) distinctIDs(contextValue context.Context, field string) ([]primitive.ObjectID, error) {
	values, err := repository.collection.Distinct(contextValue, field, bson.M{})
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(values))
	for _, v := range values {
		if id, ok := v.(primitive.ObjectID); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// FindByRefs 參照到任一指定角色或資源的權限
func (repository *PermissionRepository) FindByRefs(contextValue context.Context, roleIDs, resourceIDs []primitive.ObjectID) (_ []*model.Permission, returnedError error) {
	or := bson.A{}
	if len(roleIDs) > 0 {
		or = append(or, bson.M{"roleId": bson.M{"$in": roleIDs}})
	}
	if len(resourceIDs) > 0 {
		or = append(or, bson.M{"resourceId": bson.M{"$in": resourceIDs}})
	}
	if len(or) == 0 {
		return nil, nil
	}

	cursor, findError := repository.collection.Find(contextValue, bson.M{"$or": or})
	if findError != nil {
		return nil, findError
	}
	defer cursor.Close(contextValue)

	var results []*model.Permission
	if returnedError = cursor.All(contextValue, &results); returnedError != nil {
		return nil, returnedError
	}
	return results, nil
}
