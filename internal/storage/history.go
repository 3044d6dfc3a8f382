package storage

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/herobront95-prog/limit-planner/internal/models"
	"github.com/herobront95-prog/limit-planner/pkg/errors"
)

// SaveOrder persists one completed planning run.
func (m *Mongo) SaveOrder(ctx context.Context, entry *models.OrderHistoryEntry) error {
	if _, err := m.db.Collection(collOrderHistory).InsertOne(ctx, entry); err != nil {
		return errors.StorageError(errors.CodeWriteFailed, "save order", err)
	}
	return nil
}

// GetOrder fetches one planning run by ID.
func (m *Mongo) GetOrder(ctx context.Context, id string) (*models.OrderHistoryEntry, error) {
	var entry models.OrderHistoryEntry
	err := m.db.Collection(collOrderHistory).FindOne(ctx, bson.M{"id": id}).Decode(&entry)
	if err == mongo.ErrNoDocuments {
		return nil, errors.NotFoundError("order", id)
	}
	if err != nil {
		return nil, errors.StorageError(errors.CodeConnectionFailed, "get order", err)
	}
	return &entry, nil
}

// ListOrders returns a store's planning runs, newest first. A zero limit
// means no limit.
func (m *Mongo) ListOrders(ctx context.Context, storeID string, limit int64) ([]*models.OrderHistoryEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	filter := bson.M{}
	if storeID != "" {
		filter["store_id"] = storeID
	}

	cursor, err := m.db.Collection(collOrderHistory).Find(ctx, filter, opts)
	if err != nil {
		return nil, errors.StorageError(errors.CodeConnectionFailed, "list orders", err)
	}

	entries := []*models.OrderHistoryEntry{}
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, errors.StorageError(errors.CodeConnectionFailed, "decode orders", err)
	}
	return entries, nil
}

// SaveStockHistory persists a batch of stock observations.
func (m *Mongo) SaveStockHistory(ctx context.Context, entries []*models.StockHistoryEntry) error {
	if len(entries) == 0 {
		return nil
	}

	docs := make([]interface{}, len(entries))
	for i, entry := range entries {
		docs[i] = entry
	}
	if _, err := m.db.Collection(collStockHistory).InsertMany(ctx, docs); err != nil {
		return errors.StorageError(errors.CodeWriteFailed, "save stock history", err)
	}
	return nil
}

// ListStockHistory returns a store's stock observations recorded since
// the given time, newest first.
func (m *Mongo) ListStockHistory(ctx context.Context, storeID string, since time.Time) ([]*models.StockHistoryEntry, error) {
	filter := bson.M{"store_id": storeID}
	if !since.IsZero() {
		filter["recorded_at"] = bson.M{"$gte": since}
	}

	opts := options.Find().SetSort(bson.D{{Key: "recorded_at", Value: -1}})
	cursor, err := m.db.Collection(collStockHistory).Find(ctx, filter, opts)
	if err != nil {
		return nil, errors.StorageError(errors.CodeConnectionFailed, "list stock history", err)
	}

	entries := []*models.StockHistoryEntry{}
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, errors.StorageError(errors.CodeConnectionFailed, "decode stock history", err)
	}
	return entries, nil
}

// LatestStocks returns the most recent recorded stock per product for a
// store, used to compute change deltas on snapshot uploads.
func (m *Mongo) LatestStocks(ctx context.Context, storeName string) (map[string]decimal.Decimal, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"store_name": storeName}}},
		{{Key: "$sort", Value: bson.D{{Key: "recorded_at", Value: 1}}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$product",
			"stock": bson.M{"$last": "$stock"},
		}}},
	}

	cursor, err := m.db.Collection(collStockHistory).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, errors.StorageError(errors.CodeConnectionFailed, "latest stocks", err)
	}

	var rows []struct {
		Product string          `bson:"_id"`
		Stock   decimal.Decimal `bson:"stock"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, errors.StorageError(errors.CodeConnectionFailed, "decode latest stocks", err)
	}

	latest := make(map[string]decimal.Decimal, len(rows))
	for _, row := range rows {
		latest[row.Product] = row.Stock
	}
	return latest, nil
}

// SaveSnapshot persists a global stock snapshot.
func (m *Mongo) SaveSnapshot(ctx context.Context, snapshot *models.GlobalStockSnapshot) error {
	if _, err := m.db.Collection(collGlobalStock).InsertOne(ctx, snapshot); err != nil {
		return errors.StorageError(errors.CodeWriteFailed, "save snapshot", err)
	}
	return nil
}

// LatestSnapshot returns the most recently uploaded snapshot.
func (m *Mongo) LatestSnapshot(ctx context.Context) (*models.GlobalStockSnapshot, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "uploaded_at", Value: -1}})

	var snapshot models.GlobalStockSnapshot
	err := m.db.Collection(collGlobalStock).FindOne(ctx, bson.M{}, opts).Decode(&snapshot)
	if err == mongo.ErrNoDocuments {
		return nil, errors.NotFoundError("snapshot", "latest")
	}
	if err != nil {
		return nil, errors.StorageError(errors.CodeConnectionFailed, "latest snapshot", err)
	}
	return &snapshot, nil
}

// GetSnapshot fetches one snapshot by ID.
func (m *Mongo) GetSnapshot(ctx context.Context, id string) (*models.GlobalStockSnapshot, error) {
	var snapshot models.GlobalStockSnapshot
	err := m.db.Collection(collGlobalStock).FindOne(ctx, bson.M{"id": id}).Decode(&snapshot)
	if err == mongo.ErrNoDocuments {
		return nil, errors.NotFoundError("snapshot", id)
	}
	if err != nil {
		return nil, errors.StorageError(errors.CodeConnectionFailed, "get snapshot", err)
	}
	return &snapshot, nil
}

// ListSnapshots returns snapshot metadata, newest first, without the
// bulky per-product data.
func (m *Mongo) ListSnapshots(ctx context.Context, limit int64) ([]*models.GlobalStockSnapshot, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "uploaded_at", Value: -1}}).
		SetProjection(bson.M{"data": 0})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := m.db.Collection(collGlobalStock).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.StorageError(errors.CodeConnectionFailed, "list snapshots", err)
	}

	snapshots := []*models.GlobalStockSnapshot{}
	if err := cursor.All(ctx, &snapshots); err != nil {
		return nil, errors.StorageError(errors.CodeConnectionFailed, "decode snapshots", err)
	}
	return snapshots, nil
}
