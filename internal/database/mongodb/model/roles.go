package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Role struct {
	ID           primitive.ObjectID `json:"id" bson:"_id"`
	Name         string             `json:"name" bson:"name"`
	Alias        string             `json:"alias" bson:"alias"`
	IsSuperAdmin bool               `json:"isSuperAdmin" bson:"isSuperAdmin"`
	IsAdmin      bool               `json:"isAdmin" bson:"isAdmin"`
	CreatedBy    *Ref               `json:"createdBy,omitempty" bson:"createdBy,omitempty"`
	UpdatedBy    *Ref               `json:"updatedBy,omitempty" bson:"updatedBy,omitempty"`
	Revision     int64              `json:"-" bson:"revision"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt" bson:"updatedAt"`
}

var RoleIndexes = []mongo.IndexModel{
	{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetName("uniq_name").SetUnique(true),
	},
	{
		Keys:    bson.D{{Key: "alias", Value: 1}},
		Options: options.Index().SetName("uniq_alias").SetUnique(true),
	},
	{
		Keys:    bson.D{{Key: "createdAt", Value: -1}},
		Options: options.Index().SetName("idx_createdAt_desc"),
	},
}
