package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoOptions configures the MongoDB connection.
type MongoOptions struct {
	URI        string
	Database   string // Defaults to "aagen"
	Collection string // Defaults to "checkpoints"
	Timeout    time.Duration
}

// MongoCache stores checkpoints as documents. Expired documents are removed
// by a TTL index on expires_at and are also ignored on read.
type MongoCache struct {
	client *mongo.Client
	coll   *mongo.Collection
}

type mongoEntry struct {
	Key       string     `bson:"_id"`
	Data      []byte     `bson:"data"`
	CreatedAt time.Time  `bson:"created_at"`
	ExpiresAt *time.Time `bson:"expires_at,omitempty"`
}

// NewMongoCache connects to MongoDB and ensures the TTL index exists.
func NewMongoCache(ctx context.Context, opts MongoOptions) (*MongoCache, error) {
	if opts.URI == "" {
		return nil, errors.New("mongo cache: URI is required")
	}
	if opts.Database == "" {
		opts.Database = "aagen"
	}
	if opts.Collection == "" {
		opts.Collection = "checkpoints"
	}
	if opts.Timeout == 0 {
		opts.Timeout = 10 * time.Second
	}

	connectCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(opts.URI))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	coll := client.Database(opts.Database).Collection(opts.Collection)
	_, err = coll.Indexes().CreateOne(connectCtx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("create ttl index: %w", err)
	}
	return &MongoCache{client: client, coll: coll}, nil
}

// Get retrieves a value.
func (c *MongoCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var e mongoEntry
	err := c.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&e)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("mongo get %s: %w", key, err)
	}
	if e.ExpiresAt != nil && time.Now().After(*e.ExpiresAt) {
		return nil, false, nil
	}
	return e.Data, true, nil
}

// Set upserts a value.
func (c *MongoCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	e := mongoEntry{Key: key, Data: data, CreatedAt: time.Now().UTC()}
	if ttl > 0 {
		exp := e.CreatedAt.Add(ttl)
		e.ExpiresAt = &exp
	}
	_, err := c.coll.ReplaceOne(ctx, bson.M{"_id": key}, e, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongo set %s: %w", key, err)
	}
	return nil
}

// Delete removes a value.
func (c *MongoCache) Delete(ctx context.Context, key string) error {
	if _, err := c.coll.DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return fmt.Errorf("mongo delete %s: %w", key, err)
	}
	return nil
}

// Close disconnects the client.
func (c *MongoCache) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return c.client.Disconnect(ctx)
}

var _ Cache = (*MongoCache)(nil)
