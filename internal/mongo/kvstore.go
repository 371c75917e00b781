package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/appetiteclub/apt"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// StateCollection holds the per-user cart and checkout preference entries.
const StateCollection = "client_state"

type stateEntry struct {
	Scope     string    `bson:"scope"`
	Key       string    `bson:"key"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// stateCollection is the part of *mongo.Collection the store uses.
type stateCollection interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult
	ReplaceOne(ctx context.Context, filter interface{}, replacement interface{}, opts ...*options.ReplaceOptions) (*mongo.UpdateResult, error)
	DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error)
	DeleteMany(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error)
}

// KVStore implements storage.Store on a MongoDB collection.
// Entries are identified by the unique (scope, key) index.
type KVStore struct {
	base       *BaseRepo
	collection stateCollection
	now        func() time.Time
	logger     apt.Logger
}

func NewKVStore(config *apt.Config, logger apt.Logger) *KVStore {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &KVStore{
		base:   NewBaseRepo(config, logger),
		now:    time.Now,
		logger: logger,
	}
}

// Start connects and ensures the scope index.
func (s *KVStore) Start(ctx context.Context) error {
	if err := s.base.Start(ctx); err != nil {
		return err
	}
	collection := s.base.GetDatabase().Collection(StateCollection)

	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "scope", Value: 1}, {Key: "key", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := collection.Indexes().CreateOne(ctx, indexModel); err != nil {
		return fmt.Errorf("cannot create scope index: %w", err)
	}

	s.collection = collection
	return nil
}

func (s *KVStore) Stop(ctx context.Context) error {
	return s.base.Stop(ctx)
}

func (s *KVStore) Get(ctx context.Context, scope, key string) (string, bool, error) {
	var entry stateEntry
	err := s.collection.FindOne(ctx, entryFilter(scope, key)).Decode(&entry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("cannot get %s in scope %s: %w", key, scope, err)
	}
	return entry.Value, true, nil
}

func (s *KVStore) Set(ctx context.Context, scope, key, value string) error {
	entry := stateEntry{
		Scope:     scope,
		Key:       key,
		Value:     value,
		UpdatedAt: s.now().UTC(),
	}

	opts := options.Replace().SetUpsert(true)
	if _, err := s.collection.ReplaceOne(ctx, entryFilter(scope, key), entry, opts); err != nil {
		return fmt.Errorf("cannot save %s in scope %s: %w", key, scope, err)
	}
	return nil
}

func (s *KVStore) Delete(ctx context.Context, scope, key string) error {
	if _, err := s.collection.DeleteOne(ctx, entryFilter(scope, key)); err != nil {
		return fmt.Errorf("cannot delete %s in scope %s: %w", key, scope, err)
	}
	return nil
}

// Reset removes every stored entry for every user. The scope index is kept.
func (s *KVStore) Reset(ctx context.Context) (int64, error) {
	result, err := s.collection.DeleteMany(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("cannot reset client state: %w", err)
	}
	return result.DeletedCount, nil
}

func entryFilter(scope, key string) bson.D {
	return bson.D{{Key: "scope", Value: scope}, {Key: "key", Value: key}}
}
