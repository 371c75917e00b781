package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MockCollection is a test mock for stateCollection
type MockCollection struct {
	FindOneFunc    func(ctx context.Context, filter interface{}) *mongo.SingleResult
	ReplaceOneFunc func(ctx context.Context, filter, replacement interface{}, upsert bool) (*mongo.UpdateResult, error)
	DeleteOneFunc  func(ctx context.Context, filter interface{}) (*mongo.DeleteResult, error)
	DeleteManyFunc func(ctx context.Context, filter interface{}) (*mongo.DeleteResult, error)
}

func (m *MockCollection) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult {
	if m.FindOneFunc != nil {
		return m.FindOneFunc(ctx, filter)
	}
	return notFound()
}

func (m *MockCollection) ReplaceOne(ctx context.Context, filter interface{}, replacement interface{}, opts ...*options.ReplaceOptions) (*mongo.UpdateResult, error) {
	if m.ReplaceOneFunc != nil {
		upsert := false
		for _, o := range opts {
			if o != nil && o.Upsert != nil {
				upsert = *o.Upsert
			}
		}
		return m.ReplaceOneFunc(ctx, filter, replacement, upsert)
	}
	return &mongo.UpdateResult{}, nil
}

func (m *MockCollection) DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error) {
	if m.DeleteOneFunc != nil {
		return m.DeleteOneFunc(ctx, filter)
	}
	return &mongo.DeleteResult{}, nil
}

func (m *MockCollection) DeleteMany(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error) {
	if m.DeleteManyFunc != nil {
		return m.DeleteManyFunc(ctx, filter)
	}
	return &mongo.DeleteResult{}, nil
}

func notFound() *mongo.SingleResult {
	return mongo.NewSingleResultFromDocument(bson.D{}, mongo.ErrNoDocuments, nil)
}

func found(entry stateEntry) *mongo.SingleResult {
	return mongo.NewSingleResultFromDocument(entry, nil, nil)
}

func newTestStore(c *MockCollection) *KVStore {
	s := NewKVStore(nil, nil)
	s.collection = c
	return s
}
