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

type RoleRepository struct {
	collection *mongo.Collection
}

func NewRoleRepository(mongoClient *client.MongoClient) *RoleRepository {
	repository := &RoleRepository{
		collection: mongoClient.Collection(core.MongoCollectionRoles),
	}
	_ = repository.ensureIndexes(context.Background())
	return repository
}

func (repository *RoleRepository) ensureIndexes(contextValue context.Context) error {
	_, err := repository.collection.Indexes().CreateMany(contextValue, model.RoleIndexes)
	return err
}

// Store 提供給列表查詢
func (repository *RoleRepository) Store() query.Store {
	return repository.collection
}

func (repository *RoleRepository) Create(contextValue context.Context, role *model.Role) (_ *model.Role, returnedError error) {
	nowUTC := time.Now().UTC()
	if role.ID.IsZero() {
		role.ID = primitive.NewObjectID()
	}
	role.CreatedAt = nowUTC
	role.UpdatedAt = nowUTC
	role.Revision = 0

	insertResult, insertError := repository.collection.InsertOne(contextValue, role)
	if insertError != nil {
		return nil, insertError
	}
	if role.ID, returnedError = insertedID(insertResult); returnedError != nil {
		return nil, returnedError
	}
	return role, nil
}

func (repository *RoleRepository) GetByID(contextValue context.Context, roleIdentifier primitive.ObjectID) (*model.Role, error) {
	return findOne[model.Role](contextValue, repository.collection, bson.M{"_id": roleIdentifier})
}

func (repository *RoleRepository) FindByName(contextValue context.Context, name string) (*model.Role, error) {
	return findOne[model.Role](contextValue, repository.collection, bson.M{"name": name})
}

// UpdateByID 將呼叫端給的欄位寫入 $set，回傳更新後文件
func (repository *RoleRepository) UpdateByID(contextValue context.Context, roleIdentifier primitive.ObjectID, setFields bson.M) (*model.Role, error) {
	return updateAndReturn[model.Role](contextValue, repository.collection, roleIdentifier, setFields)
}

func (repository *RoleRepository) DeleteByID(contextValue context.Context, roleIdentifier primitive.ObjectID) error {
	return deleteByID(contextValue, repository.collection, roleIdentifier)
}

func (repository *RoleRepository) ExistingIDs(contextValue context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]struct{}, error) {
	return existingIDs(contextValue, repository.collection, ids)
}
