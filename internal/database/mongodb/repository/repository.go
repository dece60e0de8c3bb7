package repository

import (
	"context"
	"errors"

	"github.com/google/wire"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Wire 依賴提供
var ProviderSet = wire.NewSet(
	NewUserRepository,
	NewRoleRepository,
	NewResourceRepository,
	NewPermissionRepository,
)

func withUpdatedAt(update bson.M) bson.M {
	// 確保 $currentDate 存在
	currentDate, ok := update["$currentDate"].(bson.M)
	if !ok || currentDate == nil {
		currentDate = bson.M{}
	}
	currentDate["updatedAt"] = true
	update["$currentDate"] = currentDate
	return update
}

// withRevision 每次寫入 revision +1
func withRevision(update bson.M) bson.M {
	inc, ok := update["$inc"].(bson.M)
	if !ok || inc == nil {
		inc = bson.M{}
	}
	inc["revision"] = 1
	update["$inc"] = inc
	return update
}

// setUpdate 只接受欄位值，不接受 operator；空的 $set 會被 MongoDB 拒絕，因此省略
func setUpdate(setFields bson.M) bson.M {
	update := bson.M{}
	if len(setFields) > 0 {
		update["$set"] = setFields
	}
	return withRevision(withUpdatedAt(update))
}

// updateAndReturn 更新後回傳新文件；找不到時為 mongo.ErrNoDocuments
func updateAndReturn[T any](ctx context.Context, collection *mongo.Collection, id primitive.ObjectID, setFields bson.M) (*T, error) {
	var out T
	err := collection.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		setUpdate(setFields),
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func findOne[T any](ctx context.Context, collection *mongo.Collection, filter bson.M) (*T, error) {
	var out T
	if err := collection.FindOne(ctx, filter).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// deleteByID 沒有刪到任何文件時回傳 mongo.ErrNoDocuments
func deleteByID(ctx context.Context, collection *mongo.Collection, id primitive.ObjectID) error {
	result, err := collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// existingIDs 回傳 ids 中實際存在的部分
func existingIDs(ctx context.Context, collection *mongo.Collection, ids []primitive.ObjectID) (map[primitive.ObjectID]struct{}, error) {
	found := make(map[primitive.ObjectID]struct{}, len(ids))
	if len(ids) == 0 {
		return found, nil
	}
	cursor, err := collection.Find(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetProjection(bson.M{"_id": 1}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var doc struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		found[doc.ID] = struct{}{}
	}
	return found, cursor.Err()
}

func insertedID(result *mongo.InsertOneResult) (primitive.ObjectID, error) {
	id, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("unexpected InsertedID type")
	}
	return id, nil
}
