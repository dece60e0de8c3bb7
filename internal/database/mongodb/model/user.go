package model

import (
	"time"

	"bastion/internal/core"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type User struct {
	ID        primitive.ObjectID `json:"id" bson:"_id"`                                // 使用者唯一識別碼
	Username  string             `json:"username" bson:"username"`                     // 登入帳號
	Name      string             `json:"name,omitempty" bson:"name,omitempty"`         // 顯示名稱
	Email     string             `json:"email,omitempty" bson:"email,omitempty"`       // 信箱
	RoleID    primitive.ObjectID `json:"roleId" bson:"roleId"`                         // 角色
	Status    core.Status        `json:"status" bson:"status"`                         // 帳號狀態
	LastSeen  *time.Time         `json:"lastSeen,omitempty" bson:"lastSeen,omitempty"` // 最後使用時間
	CreatedBy *Ref               `json:"createdBy,omitempty" bson:"createdBy,omitempty"`
	UpdatedBy *Ref               `json:"updatedBy,omitempty" bson:"updatedBy,omitempty"`
	Revision  int64              `json:"-" bson:"revision"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"` // 建立時間
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"` // 更新時間
}

var UserIndexes = []mongo.IndexModel{
	{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetName("uniq_username").SetUnique(true),
	},
	{ // 依建立時間倒序查列表
		Keys:    bson.D{{Key: "createdAt", Value: -1}},
		Options: options.Index().SetName("idx_createdAt_desc"),
	},
	{ // 依使用者狀態查詢
		Keys:    bson.D{{Key: "status", Value: 1}},
		Options: options.Index().SetName("idx_status"),
	},
	{
		Keys:    bson.D{{Key: "roleId", Value: 1}},
		Options: options.Index().SetName("idx_roleId"),
	},
}
