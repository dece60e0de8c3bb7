package model

import (
	"time"

	"bastion/internal/core"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Resource 受保護的資源；API 類型的 Name 為路由樣板，例如 /api/v1/roles/:id
type Resource struct {
	ID        primitive.ObjectID `json:"id" bson:"_id"`
	Name      string             `json:"name" bson:"name"`
	Alias     string             `json:"alias" bson:"alias"`
	Type      core.ResourceType  `json:"type" bson:"type"`
	CreatedBy *Ref               `json:"createdBy,omitempty" bson:"createdBy,omitempty"`
	UpdatedBy *Ref               `json:"updatedBy,omitempty" bson:"updatedBy,omitempty"`
	Revision  int64              `json:"-" bson:"revision"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

var ResourceIndexes = []mongo.IndexModel{
	{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetName("uniq_name").SetUnique(true),
	},
	{
		Keys:    bson.D{{Key: "alias", Value: 1}},
		Options: options.Index().SetName("uniq_alias").SetUnique(true),
	},
	{
		Keys:    bson.D{{Key: "type", Value: 1}},
		Options: options.Index().SetName("idx_type"),
	},
}
