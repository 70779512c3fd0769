// internal/output/mongodb.go
package output

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/valpere/MediaScrapexter/pkg/types"
)

// MongoSink writes each page report as one document, keyed by page id so a
// re-run replaces the previous document instead of duplicating it.
type MongoSink struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoSink connects to MongoDB. collection defaults to "page_reports".
func NewMongoSink(ctx context.Context, uri, database, collection string) (*MongoSink, error) {
	if uri == "" {
		return nil, fmt.Errorf("MongoDB connection URI is required")
	}
	if database == "" {
		return nil, fmt.Errorf("MongoDB database name is required")
	}
	if collection == "" {
		collection = "page_reports"
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return &MongoSink{
		client:     client,
		collection: client.Database(database).Collection(collection),
	}, nil
}

// Name identifies the sink
func (s *MongoSink) Name() string { return "mongodb" }

// WritePage replaces the report document for this page id
func (s *MongoSink) WritePage(ctx context.Context, report *types.PageReport) error {
	filter := bson.M{"page_id": report.PageID}
	opts := options.Replace().SetUpsert(true)

	if _, err := s.collection.ReplaceOne(ctx, filter, report, opts); err != nil {
		return fmt.Errorf("failed to write report for %s: %w", report.PageID, err)
	}
	return nil
}

// Close disconnects from MongoDB
func (s *MongoSink) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
