package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/lineage/pkg/graph"
	"github.com/matzehuels/lineage/pkg/lineage"
)

// Collection names.
const (
	CollectionRecords = "records"
	CollectionLayouts = "layouts"
)

// MongoConfig holds MongoDB connection settings.
type MongoConfig struct {
	URI      string
	Database string
}

// MongoStore stores one document per entity in the records and layouts
// collections, using the entity ID as _id.
type MongoStore struct {
	client  *mongo.Client
	records *mongo.Collection
	layouts *mongo.Collection
}

type recordDoc struct {
	ID        string         `bson:"_id"`
	Record    lineage.Record `bson:"record"`
	UpdatedAt time.Time      `bson:"updated_at"`
}

type layoutDoc struct {
	ID        string       `bson:"_id"`
	Layout    graph.Layout `bson:"layout"`
	UpdatedAt time.Time    `bson:"updated_at"`
}

// NewMongoStore connects to MongoDB and verifies the connection.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("mongo: empty uri")
	}
	if cfg.Database == "" {
		cfg.Database = "lineage"
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return NewMongoStoreFromClient(client, cfg.Database), nil
}

// NewMongoStoreFromClient wraps an existing client.
func NewMongoStoreFromClient(client *mongo.Client, database string) *MongoStore {
	db := client.Database(database)
	return &MongoStore{
		client:  client,
		records: db.Collection(CollectionRecords),
		layouts: db.Collection(CollectionLayouts),
	}
}

func upsert(ctx context.Context, coll *mongo.Collection, id string, doc any) error {
	_, err := coll.ReplaceOne(ctx, bson.M{"_id": id}, doc, options.Replace().SetUpsert(true))
	return err
}

func (s *MongoStore) SaveRecord(ctx context.Context, rec lineage.Record) error {
	if rec.Entity.ID == "" {
		return errMissingID
	}
	doc := recordDoc{ID: rec.Entity.ID, Record: rec, UpdatedAt: time.Now().UTC()}
	if err := upsert(ctx, s.records, doc.ID, doc); err != nil {
		return fmt.Errorf("save record %s: %w", doc.ID, err)
	}
	return nil
}

func (s *MongoStore) Record(ctx context.Context, entityID string) (lineage.Record, error) {
	var doc recordDoc
	err := s.records.FindOne(ctx, bson.M{"_id": entityID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return lineage.Record{}, ErrNotFound
	}
	if err != nil {
		return lineage.Record{}, fmt.Errorf("load record %s: %w", entityID, err)
	}
	return doc.Record, nil
}

func (s *MongoStore) SaveLayout(ctx context.Context, l graph.Layout) error {
	if l.EntityID == "" {
		return errMissingID
	}
	doc := layoutDoc{ID: l.EntityID, Layout: l, UpdatedAt: time.Now().UTC()}
	if err := upsert(ctx, s.layouts, doc.ID, doc); err != nil {
		return fmt.Errorf("save layout %s: %w", doc.ID, err)
	}
	return nil
}

func (s *MongoStore) Layout(ctx context.Context, entityID string) (graph.Layout, error) {
	var doc layoutDoc
	err := s.layouts.FindOne(ctx, bson.M{"_id": entityID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return graph.Layout{}, ErrNotFound
	}
	if err != nil {
		return graph.Layout{}, fmt.Errorf("load layout %s: %w", entityID, err)
	}
	return doc.Layout, nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
