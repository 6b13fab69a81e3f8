package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"go.uber.org/zap"

	"github.com/Yukoval-Dakia/stone/internal/config"
	"github.com/Yukoval-Dakia/stone/internal/domain"
)

const scientistsCollection = "scientists"

type ScientistRepository interface {
	Insert(ctx context.Context, s *domain.Scientist) error
	FindAll(ctx context.Context) ([]domain.Scientist, error)
	FindByID(ctx context.Context, id string) (*domain.Scientist, error)
	Update(ctx context.Context, id string, set bson.M) (*domain.Scientist, error)
	Delete(ctx context.Context, id string) error
}

// MongoStore owns the database link. Connect blocks until a link is
// established, retrying at a fixed interval without limit; Supervise keeps
// pinging at the same interval and re-establishes a dropped link.
type MongoStore struct {
	cfg *config.MongoConfig
	log *zap.Logger

	mu     sync.RWMutex
	client *mongo.Client
}

func NewMongoStore(cfg *config.MongoConfig, log *zap.Logger) *MongoStore {
	return &MongoStore{cfg: cfg, log: log}
}

func (s *MongoStore) Connect(ctx context.Context) error {
	return retry.Do(func() error {
		return s.establish(ctx)
	},
		retry.Context(ctx),
		retry.Attempts(0), // retry until success
		retry.Delay(s.cfg.RetryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.OnRetry(func(n uint, err error) {
			s.log.Error("MongoDB connection failed, retrying",
				zap.Uint("attempt", n),
				zap.Duration("delay", s.cfg.RetryDelay),
				zap.Error(err))
		}))
}

func (s *MongoStore) establish(ctx context.Context) error {
	client, err := mongo.Connect(options.Client().ApplyURI(s.cfg.URI))
	if err != nil {
		return err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return err
	}

	s.mu.Lock()
	old := s.client
	s.client = client
	s.mu.Unlock()

	if old != nil {
		_ = old.Disconnect(ctx)
	}
	s.log.Info("Connected to MongoDB", zap.String("database", s.cfg.Database))
	return nil
}

// Supervise pings at the retry interval and rebuilds a dropped link. One
// re-establish attempt per tick; the next tick retries, so the loop is a
// fixed-delay unbounded retry.
func (s *MongoStore) Supervise(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RetryDelay)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.RLock()
			client := s.client
			s.mu.RUnlock()
			if client == nil {
				continue
			}
			if err := client.Ping(ctx, readpref.Primary()); err != nil {
				s.log.Error("MongoDB link lost, reconnecting", zap.Error(err))
				if err := s.establish(ctx); err != nil {
					s.log.Error("MongoDB reconnect failed", zap.Error(err))
				}
			}
		}
	}
}

func (s *MongoStore) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client == nil {
		return nil
	}
	err := s.client.Disconnect(ctx)
	s.client = nil
	return err
}

func (s *MongoStore) collection() *mongo.Collection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.client.Database(s.cfg.Database).Collection(scientistsCollection)
}

func (s *MongoStore) Insert(ctx context.Context, sc *domain.Scientist) error {
	res, err := s.collection().InsertOne(ctx, sc)
	if err != nil {
		return fmt.Errorf("insert scientist: %w", err)
	}
	if oid, ok := res.InsertedID.(bson.ObjectID); ok {
		sc.ID = oid
	}
	return nil
}

func (s *MongoStore) FindAll(ctx context.Context) ([]domain.Scientist, error) {
	cursor, err := s.collection().Find(ctx, bson.D{},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("find scientists: %w", err)
	}
	scientists := []domain.Scientist{}
	if err := cursor.All(ctx, &scientists); err != nil {
		return nil, fmt.Errorf("decode scientists: %w", err)
	}
	return scientists, nil
}

func (s *MongoStore) FindByID(ctx context.Context, id string) (*domain.Scientist, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("scientist %q: %w", id, domain.ErrNotFound)
	}
	var sc domain.Scientist
	err = s.collection().FindOne(ctx, bson.M{"_id": oid}).Decode(&sc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("scientist %q: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find scientist: %w", err)
	}
	return &sc, nil
}

func (s *MongoStore) Update(ctx context.Context, id string, set bson.M) (*domain.Scientist, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("scientist %q: %w", id, domain.ErrNotFound)
	}
	var sc domain.Scientist
	err = s.collection().FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&sc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("scientist %q: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("update scientist: %w", err)
	}
	return &sc, nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("scientist %q: %w", id, domain.ErrNotFound)
	}
	res, err := s.collection().DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete scientist: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("scientist %q: %w", id, domain.ErrNotFound)
	}
	return nil
}
