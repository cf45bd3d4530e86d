package archive

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/octowire/pkg/clock"
	"github.com/matzehuels/octowire/pkg/httputil"
	"github.com/matzehuels/octowire/pkg/integrations/github"
)

// Defaults for MongoConfig.
const (
	DefaultDatabase   = "octowire"
	DefaultCollection = "events"

	storeAttempts = 3
	storeDelay    = 200 * time.Millisecond
)

// MongoConfig configures a MongoArchive.
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

// collection is the subset of *mongo.Collection used for writes.
type collection interface {
	ReplaceOne(ctx context.Context, filter, replacement any, opts ...*options.ReplaceOptions) (*mongo.UpdateResult, error)
}

// MongoArchive upserts events into a MongoDB collection.
type MongoArchive struct {
	client *mongo.Client
	coll   collection
	clock  clock.Clock
	retry  httputil.Backoff
}

// NewMongoArchive connects, pings the server and ensures the query indexes
// exist.
func NewMongoArchive(ctx context.Context, cfg MongoConfig) (*MongoArchive, error) {
	if cfg.URI == "" {
		return nil, errors.New("mongo uri is required")
	}
	if cfg.Database == "" {
		cfg.Database = DefaultDatabase
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	coll := client.Database(cfg.Database).Collection(cfg.Collection)
	_, err = coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "target", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "type", Value: 1}}},
	})
	if err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("create indexes: %w", err)
	}

	return &MongoArchive{
		client: client,
		coll:   coll,
		clock:  clock.Real(),
		retry:  httputil.Backoff{Attempts: storeAttempts, Delay: storeDelay},
	}, nil
}

// Store upserts the event document. Network errors and timeouts are retried.
func (a *MongoArchive) Store(ctx context.Context, target string, ev github.Event) error {
	doc := NewDocument(target, ev, a.clock.Now())
	opts := options.Replace().SetUpsert(true)

	return a.retry.Do(ctx, func() error {
		_, err := a.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts)
		if err == nil {
			return nil
		}
		if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
			return httputil.Transient(fmt.Errorf("store event %s: %w", doc.ID, err))
		}
		return fmt.Errorf("store event %s: %w", doc.ID, err)
	})
}

// Close disconnects from the server.
func (a *MongoArchive) Close(ctx context.Context) error {
	if a.client == nil {
		return nil
	}
	return a.client.Disconnect(ctx)
}

var _ Archive = (*MongoArchive)(nil)
