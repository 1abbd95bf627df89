package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const sessionCollection = "session_entries"

// Store keeps session entries as one document per key. Expired documents
// are removed by a TTL index and filtered out on read until then.
type Store struct {
	coll *mongo.Collection
	now  func() time.Time
}

// NewStore returns a Store over the session collection of db.
func NewStore(db *mongo.Database) *Store {
	return &Store{coll: db.Collection(sessionCollection), now: time.Now}
}

type mongoEntry struct {
	Key       string     `bson:"_id"`
	Value     string     `bson:"value"`
	ExpiresAt *time.Time `bson:"expires_at,omitempty"`
	UpdatedAt time.Time  `bson:"updated_at"`
}

// EnsureIndexes creates the TTL index on expires_at.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0).SetName("expires_at_ttl"),
	})
	if err != nil {
		return fmt.Errorf("create ttl index: %w", err)
	}
	return nil
}

// live matches key only while it has not expired.
func (s *Store) live(key string) bson.M {
	return bson.M{
		"_id": key,
		"$or": bson.A{
			bson.M{"expires_at": bson.M{"$exists": false}},
			bson.M{"expires_at": bson.M{"$gt": s.now().UTC()}},
		},
	}
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	var e mongoEntry
	if err := s.coll.FindOne(ctx, s.live(key)).Decode(&e); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("find entry: %w", err)
	}
	return e.Value, true, nil
}

func (s *Store) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	now := s.now().UTC()
	e := mongoEntry{Key: key, Value: value, UpdatedAt: now}
	if ttl > 0 {
		exp := now.Add(ttl)
		e.ExpiresAt = &exp
	}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": key}, e, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert entry: %w", err)
	}
	return nil
}

func (s *Store) Take(ctx context.Context, key string) (string, bool, error) {
	var e mongoEntry
	if err := s.coll.FindOneAndDelete(ctx, s.live(key)).Decode(&e); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("take entry: %w", err)
	}
	return e.Value, true, nil
}

func (s *Store) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if _, err := s.coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": keys}}); err != nil {
		return fmt.Errorf("delete entries: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.coll.Database().RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err()
}
