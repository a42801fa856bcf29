package database

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/beaesthetic/analytics/internal/domain/entities"
	"github.com/beaesthetic/analytics/internal/domain/repositories"
	mongoclient "github.com/beaesthetic/analytics/internal/infrastructure/clients/mongo"
	apperrors "github.com/beaesthetic/analytics/pkg/errors"
)

type customerDocument struct {
	ID      any    `bson:"_id"`
	Name    string `bson:"name"`
	Surname string `bson:"surname"`
}

// MongoCustomerAdapter reads the customers collection
type MongoCustomerAdapter struct {
	collection *mongo.Collection
}

// NewMongoCustomerAdapter creates a new Mongo customer adapter
func NewMongoCustomerAdapter(client *mongoclient.Client) repositories.CustomerRepository {
	return &MongoCustomerAdapter{collection: client.Collection(customersCollection)}
}

// FindAll returns every customer
func (a *MongoCustomerAdapter) FindAll(ctx context.Context) ([]entities.Customer, error) {
	opts := options.Find().SetProjection(bson.D{
		{Key: "_id", Value: 1},
		{Key: "name", Value: 1},
		{Key: "surname", Value: 1},
	})

	cur, err := a.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, apperrors.NewExternalError("failed to query customers", err)
	}

	var docs []customerDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, apperrors.NewExternalError("failed to read customers", err)
	}

	customers := make([]entities.Customer, len(docs))
	for i, d := range docs {
		customers[i] = entities.Customer{ID: idString(d.ID), Name: d.Name, Surname: d.Surname}
	}
	return customers, nil
}
