package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/wanderlust/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/wanderlust/internal/platform/logger"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Store owns one MongoDB client and the repositories built on it.
type Store struct {
	client   *mongo.Client
	db       *mongo.Database
	listings *ListingRepository
	users    *UserRepository
	reviews  *ReviewRepository
	logger   *logger.Logger
}

// Connect dials uri, pings the server and prepares the repositories.
// The caller must Close the returned store.
func Connect(ctx context.Context, uri, database string, timeout time.Duration, log *logger.Logger) (*Store, error) {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	opts := options.Client().ApplyURI(uri).SetConnectTimeout(timeout)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}
	log.Info("Successfully connected and pinged MongoDB", zap.String("database", database))

	return NewStore(client, database, log), nil
}

// NewStore wraps an already connected client.
func NewStore(client *mongo.Client, database string, log *logger.Logger) *Store {
	db := client.Database(database)
	return &Store{
		client:   client,
		db:       db,
		listings: NewListingRepository(db, log),
		users:    NewUserRepository(db, log),
		reviews:  NewReviewRepository(db, log),
		logger:   log.Named("MongoStore"),
	}
}

func (s *Store) Listings() domain.ListingRepository { return s.listings }
func (s *Store) Users() domain.UserRepository       { return s.users }
func (s *Store) Reviews() domain.ReviewRepository   { return s.reviews }

// Database exposes the underlying database handle.
func (s *Store) Database() *mongo.Database { return s.db }

// Ping checks that the server is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *Store) Close(ctx context.Context) error {
	s.logger.Info("Disconnecting from MongoDB")
	if err := s.client.Disconnect(ctx); err != nil {
		s.logger.Error("Error disconnecting from MongoDB", zap.Error(err))
		return err
	}
	return nil
}
