package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Permission 角色對資源的授權。
// 角色與資源的名稱/別名在建立時複製一份，授權判斷只需查這個集合。
type Permission struct {
	ID            primitive.ObjectID `json:"id" bson:"_id"`
	RoleID        primitive.ObjectID `json:"roleId" bson:"roleId"`
	RoleName      string             `json:"roleName" bson:"roleName"`
	RoleAlias     string             `json:"roleAlias" bson:"roleAlias"`
	ResourceID    primitive.ObjectID `json:"resourceId" bson:"resourceId"`
	ResourceName  string             `json:"resourceName" bson:"resourceName"`
	ResourceAlias string             `json:"resourceAlias" bson:"resourceAlias"`
	IsAllowed     bool               `json:"isAllowed" bson:"isAllowed"`
	IsDisabled    bool               `json:"isDisabled" bson:"isDisabled"`
	CreatedBy     *Ref               `json:"createdBy,omitempty" bson:"createdBy,omitempty"`
	UpdatedBy     *Ref               `json:"updatedBy,omitempty" bson:"updatedBy,omitempty"`
	Revision      int64              `json:"-" bson:"revision"`
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt" bson:"updatedAt"`
}

var PermissionIndexes = []mongo.IndexModel{
	{
		Keys:    bson.D{{Key: "roleId", Value: 1}, {Key: "resourceId", Value: 1}},
		Options: options.Index().SetName("uniq_roleId_resourceId").SetUnique(true),
	},
	{ // 授權判斷
		Keys:    bson.D{{Key: "roleId", Value: 1}, {Key: "resourceName", Value: 1}, {Key: "isAllowed", Value: 1}},
		Options: options.Index().SetName("idx_roleId_resourceName_isAllowed"),
	},
	{
		Keys:    bson.D{{Key: "resourceId", Value: 1}},
		Options: options.Index().SetName("idx_resourceId"),
	},
}
