package mongo

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	defaultTimeout = 10 * time.Second
	opTimeout      = 5 * time.Second
)

// Config captures the minimal settings required to establish a MongoDB connection.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// Connect establishes a MongoDB client, verifies connectivity with a ping, and
// returns both the client and the selected database. A default timeout is
// applied when none is provided.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	return client, client.Database(cfg.Database), nil
}

// Store is a lazily connected database handle shared by the repositories.
// The first caller connects; a failed attempt is retried by the next caller.
type Store struct {
	cfg Config

	mu     sync.Mutex
	client *mongo.Client
	db     *mongo.Database
}

// NewStore returns a Store that connects on first use.
func NewStore(cfg Config) *Store {
	return &Store{cfg: cfg}
}

// Attach wraps an already connected database. Close does not disconnect it.
func Attach(db *mongo.Database) *Store {
	return &Store{db: db}
}

// Database returns the connected database, connecting if needed.
func (s *Store) Database(ctx context.Context) (*mongo.Database, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return s.db, nil
	}
	if s.cfg.URI == "" {
		return nil, errors.New("mongo: no connection URI configured")
	}

	client, db, err := Connect(ctx, s.cfg)
	if err != nil {
		return nil, err
	}
	s.client, s.db = client, db
	return db, nil
}

func (s *Store) collection(ctx context.Context, name string) (*mongo.Collection, error) {
	db, err := s.Database(ctx)
	if err != nil {
		return nil, err
	}
	return db.Collection(name), nil
}

// Ping connects if needed and checks the server is reachable.
func (s *Store) Ping(ctx context.Context) error {
	db, err := s.Database(ctx)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	return db.Client().Ping(ctx, nil)
}

// Close disconnects a client opened by the store. It is a no-op for attached
// databases or when the store never connected.
func (s *Store) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client == nil {
		return nil
	}
	err := s.client.Disconnect(ctx)
	s.client, s.db = nil, nil
	return err
}

// EnsureIndexes creates the indexes of every collection.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	for name, models := range indexes {
		coll, err := s.collection(ctx, name)
		if err != nil {
			return err
		}
		if _, err := coll.Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("ensure %s indexes: %w", name, err)
		}
	}
	return nil
}

func translateWriteErr(op string, err error, dup error) error {
	if mongo.IsDuplicateKeyError(err) {
		return dup
	}
	return fmt.Errorf("%s: %w", op, err)
}
