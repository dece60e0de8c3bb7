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

type ResourceRepository struct {
	collection *mongo.Collection
}

func NewResourceRepository(mongoClient *client.MongoClient) *ResourceRepository {
	repository := &ResourceRepository{
		collection: mongoClient.Collection(core.MongoCollectionResources),
	}
	_ = repository.ensureIndexes(context.Background())
	return repository
}

func (repository *ResourceRepository) ensureIndexes(contextValue context.Context) error {
	_, err := repository.collection.Indexes().CreateMany(contextValue, model.ResourceIndexes)
	return err
}

func (repository *ResourceRepository) Store() query.Store {
	return repository.collection
}

func (repository *ResourceRepository) Create(contextValue context.Context, resource *model.Resource) (_ *model.Resource, returnedError error) {
	nowUTC := time.Now().UTC()
	if resource.ID.IsZero() {
		resource.ID = primitive.NewObjectID()
	}
	resource.CreatedAt = nowUTC
	resource.UpdatedAt = nowUTC
	resource.Revision = 0

	insertResult, insertError := repository.collection.InsertOne(contextValue, resource)
	if insertError != nil {
		return nil, insertError
	}
	if resource.ID, returnedError = insertedID(insertResult); returnedError != nil {
		return nil, returnedError
	}
	return resource, nil
}

func (repository *ResourceRepository) GetByID(contextValue context.Context, resourceIdentifier primitive.ObjectID) (*model.Resource, error) {
	return findOne[model.Resource](contextValue, repository.collection, bson.M{"_id": resourceIdentifier})
}

func (repository *ResourceRepository) FindByName(contextValue context.Context, name string) (*model.Resource, error) {
	return findOne[model.Resource](contextValue, repository.collection, bson.M{"name": name})
}

func (repository *ResourceRepository) UpdateByID(contextValue context.Context, resourceIdentifier primitive.ObjectID, setFields bson.M) (*model.Resource, error) {
	return updateAndReturn[model.Resource](contextValue, repository.collection, resourceIdentifier, setFields)
}

func (repository *ResourceRepository) DeleteByID(contextValue context.Context, resourceIdentifier primitive.ObjectID) error {
	return deleteByID(contextValue, repository.collection, resourceIdentifier)
}

func (repository *ResourceRepository) ExistingIDs(contextValue context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]struct{}, error) {
	return existingIDs(contextValue, repository.collection, ids)
}
