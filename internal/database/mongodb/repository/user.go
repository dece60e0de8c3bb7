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

type UserRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(mongoClient *client.MongoClient) *UserRepository {
	repository := &UserRepository{
		collection: mongoClient.Collection(core.MongoCollectionUsers),
	}
	// 啟動時建立常用索引（冪等、存在即跳過）
	_ = repository.ensureIndexes(context.Background())
	return repository
}

func (repository *UserRepository) ensureIndexes(contextValue context.Context) error {
	_, err := repository.collection.Indexes().CreateMany(contextValue, model.UserIndexes)
	return err
}

func (repository *UserRepository) Store() query.Store {
	return repository.collection
}

// Create：單文件插入
func (repository *UserRepository) Create(
	contextValue context.Context,
	user *model.User,
) (_ *model.User, returnedError error) {

	nowUTC := time.Now().UTC()
	// 若上游未指定 _id，可自己先產生；InsertOne 會沿用
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	user.CreatedAt = nowUTC
	user.UpdatedAt = nowUTC
	user.Revision = 0

	insertResult, insertError := repository.collection.InsertOne(contextValue, user)
	if insertError != nil {
		return nil, insertError
	}
	if user.ID, returnedError = insertedID(insertResult); returnedError != nil {
		return nil, returnedError
	}
	return user, nil
}

// GetByID：單文件讀取
func (repository *UserRepository) GetByID(contextValue context.Context, userIdentifier primitive.ObjectID) (*model.User, error) {
	return findOne[model.User](contextValue, repository.collection, bson.M{"_id": userIdentifier})
}

func (repository *UserRepository) FindByUsername(contextValue context.Context, username string) (*model.User, error) {
	return findOne[model.User](contextValue, repository.collection, bson.M{"username": username})
}

// UpdateLastSeen：只更新 lastSeen，不動 revision
func (repository *UserRepository) UpdateLastSeen(
	contextValue context.Context,
	userIdentifier primitive.ObjectID,
	lastSeenTime time.Time,
) (_ int64, returnedError error) {

	update := bson.M{"$set": bson.M{"lastSeen": lastSeenTime.UTC()}}
	result, updateError := repository.collection.UpdateOne(contextValue, bson.M{"_id": userIdentifier}, update)
	if updateError != nil {
		return 0, updateError
	}
	return result.MatchedCount, nil
}

// UpdateByID：將呼叫端給的欄位寫入 $set（請確認呼叫端只傳「欄位值」，不要傳 $inc 之類 operator）
func (repository *UserRepository) UpdateByID(contextValue context.Context, userIdentifier primitive.ObjectID, setFields bson.M) (*model.User, error) {
	return updateAndReturn[model.User](contextValue, repository.collection, userIdentifier, setFields)
}

// DeleteByID：單文件刪除
func (repository *UserRepository) DeleteByID(contextValue context.Context, userIdentifier primitive.ObjectID) error {
	return deleteByID(contextValue, repository.collection, userIdentifier)
}

func (repository *UserRepository) ExistingIDs(contextValue context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]struct{}, error) {
	return existingIDs(contextValue, repository.collection, ids)
}
