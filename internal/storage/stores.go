package storage

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/herobront95-prog/limit-planner/internal/models"
	"github.com/herobront95-prog/limit-planner/pkg/errors"
)

// CreateStore inserts a new store.
func (m *Mongo) CreateStore(ctx context.Context, store *models.Store) error {
	if _, err := m.db.Collection(collStores).InsertOne(ctx, store); err != nil {
		return errors.StorageError(errors.CodeWriteFailed, "create store", err)
	}
	return nil
}

// GetStore fetches one store by ID.
func (m *Mongo) GetStore(ctx context.Context, id string) (*models.Store, error) {
	var store models.Store
	err := m.db.Collection(collStores).FindOne(ctx, bson.M{"id": id}).Decode(&store)
	if err == mongo.ErrNoDocuments {
		return nil, errors.NotFoundError("store", id)
	}
	if err != nil {
		return nil, errors.StorageError(errors.CodeConnectionFailed, "get store", err)
	}
	return &store, nil
}

// ListStores returns every store, oldest first.
func (m *Mongo) ListStores(ctx context.Context) ([]*models.Store, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := m.db.Collection(collStores).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.StorageError(errors.CodeConnectionFailed, "list stores", err)
	}

	stores := []*models.Store{}
	if err := cursor.All(ctx, &stores); err != nil {
		return nil, errors.StorageError(errors.CodeConnectionFailed, "decode stores", err)
	}
	return stores, nil
}

// UpdateStore replaces a store document.
func (m *Mongo) UpdateStore(ctx context.Context, store *models.Store) error {
	result, err := m.db.Collection(collStores).ReplaceOne(ctx, bson.M{"id": store.ID}, store)
	if err != nil {
		return errors.StorageError(errors.CodeWriteFailed, "update store", err)
	}
	if result.MatchedCount == 0 {
		return errors.NotFoundError("store", store.ID)
	}
	return nil
}

// DeleteStore removes a store.
func (m *Mongo) DeleteStore(ctx context.Context, id string) error {
	result, err := m.db.Collection(collStores).DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return errors.StorageError(errors.CodeWriteFailed, "delete store", err)
	}
	if result.DeletedCount == 0 {
		return errors.NotFoundError("store", id)
	}
	return nil
}

// CreateFilter inserts a saved filter.
func (m *Mongo) CreateFilter(ctx context.Context, filter *models.Filter) error {
	if _, err := m.db.Collection(collFilters).InsertOne(ctx, filter); err != nil {
		return errors.StorageError(errors.CodeWriteFailed, "create filter", err)
	}
	return nil
}

// ListFilters returns every saved filter, oldest first. Planning applies
// them in this order.
func (m *Mongo) ListFilters(ctx context.Context) ([]models.Filter, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := m.db.Collection(collFilters).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.StorageError(errors.CodeConnectionFailed, "list filters", err)
	}

	filters := []models.Filter{}
	if err := cursor.All(ctx, &filters); err != nil {
		return nil, errors.StorageError(errors.CodeConnectionFailed, "decode filters", err)
	}
	return filters, nil
}

// DeleteFilter removes a saved filter.
func (m *Mongo) DeleteFilter(ctx context.Context, id string) error {
	result, err := m.db.Collection(collFilters).DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return errors.StorageError(errors.CodeWriteFailed, "delete filter", err)
	}
	if result.DeletedCount == 0 {
		return errors.NotFoundError("filter", id)
	}
	return nil
}

// CreateMapping inserts a synonym mapping. The unique index on
// main_product rejects duplicates.
func (m *Mongo) CreateMapping(ctx context.Context, mapping *models.SynonymMapping) error {
	_, err := m.db.Collection(collMappings).InsertOne(ctx, mapping)
	if mongo.IsDuplicateKeyError(err) {
		return errors.ValidationError(errors.CodeDuplicate, "main_product", mapping.MainProduct, err)
	}
	if err != nil {
		return errors.StorageError(errors.CodeWriteFailed, "create mapping", err)
	}
	return nil
}

// ListMappings returns every synonym mapping, oldest first.
func (m *Mongo) ListMappings(ctx context.Context) ([]models.SynonymMapping, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := m.db.Collection(collMappings).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.StorageError(errors.CodeConnectionFailed, "list mappings", err)
	}

	mappings := []models.SynonymMapping{}
	if err := cursor.All(ctx, &mappings); err != nil {
		return nil, errors.StorageError(errors.CodeConnectionFailed, "decode mappings", err)
	}
	return mappings, nil
}

// UpdateMapping replaces a synonym mapping.
func (m *Mongo) UpdateMapping(ctx context.Context, mapping *models.SynonymMapping) error {
	result, err := m.db.Collection(collMappings).ReplaceOne(ctx, bson.M{"id": mapping.ID}, mapping)
	if err != nil {
		return errors.StorageError(errors.CodeWriteFailed, "update mapping", err)
	}
	if result.MatchedCount == 0 {
		return errors.NotFoundError("mapping", mapping.ID)
	}
	return nil
}

// DeleteMapping removes a synonym mapping.
func (m *Mongo) DeleteMapping(ctx context.Context, id string) error {
	result, err := m.db.Collection(collMappings).DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return errors.StorageError(errors.CodeWriteFailed, "delete mapping", err)
	}
	if result.DeletedCount == 0 {
		return errors.NotFoundError("mapping", id)
	}
	return nil
}
