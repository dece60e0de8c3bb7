package service

import (
	"context"
	"errors"

	"bastion/internal/core"
	"bastion/internal/database/mongodb/model"
	"bastion/internal/event"
	cErr "bastion/internal/pkg/error"
	"bastion/internal/pkg/query"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// populate createdBy/updatedBy 時預設帶出的使用者欄位
const userRefSelect = "username name email"

// mongoErr 將 driver 錯誤轉為對應 entity 的應用錯誤
func mongoErr(err error, entity string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return cErr.NotFound(entity + " not found").WithCause(err)
	case mongo.IsDuplicateKeyError(err):
		return cErr.Conflict(entity + " already exists").WithCause(err)
	}
	return cErr.FromMongo(err, "database "+entity+" error")
}

// listErr Execute 的驗證錯誤原樣回傳，其餘視為資料庫錯誤
func listErr(err error, entity string) error {
	var appErr *cErr.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return mongoErr(err, entity)
}

func actorRef(actor *core.Principal) *model.Ref {
	if actor == nil {
		return nil
	}
	id, err := primitive.ObjectIDFromHex(actor.UserID)
	if err != nil {
		return nil
	}
	return model.NewRef(id)
}

func actorID(actor *core.Principal) string {
	if actor == nil {
		return ""
	}
	return actor.UserID
}

func userRelations(users UserStore) query.Option {
	return query.WithRelations(
		query.Relation{Path: "createdBy", Store: users.Store(), Select: userRefSelect},
		query.Relation{Path: "updatedBy", Store: users.Store(), Select: userRefSelect},
	)
}

// publish 發佈失敗只記錄，不影響已完成的寫入
func publish(ctx context.Context, logger *zap.Logger, publisher event.Publisher, e event.Event) {
	if err := publisher.Publish(ctx, e); err != nil {
		logger.Warn("publish event failed",
			zap.String("event", string(e.Name)),
			zap.String("entityId", e.EntityID),
			zap.Error(err),
		)
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}
