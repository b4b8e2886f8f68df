package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Store is the storage context handed to the services. It replaces shared
// package level client and collection handles.
type Store struct {
	Orgs       IOrgRepository
	Admins     IAdminRepository
	Partitions IPartitionStore

	ping func(ctx context.Context) error
}

// NewMongoStore wires repositories over one database of a connected client
func NewMongoStore(client *mongo.Client, database string) *Store {
	db := client.Database(database)
	return &Store{
		Orgs:       NewOrgRepository(db),
		Admins:     NewAdminRepository(db),
		Partitions: NewMongoPartitionStore(db),
		ping: func(ctx context.Context) error {
			return client.Ping(ctx, readpref.Primary())
		},
	}
}

// NewMemoryStore wires in-memory repositories (development and tests)
func NewMemoryStore() *Store {
	return &Store{
		Orgs:       NewMemoryOrgRepository(),
		Admins:     NewMemoryAdminRepository(),
		Partitions: NewMemoryPartitionStore(),
	}
}

// EnsureIndexes creates the indexes the repositories rely on
func (s *Store) EnsureIndexes(ctx context.Context) error {
	if err := s.Orgs.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("organizations indexes: %w", err)
	}
	if err := s.Admins.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("admins indexes: %w", err)
	}
	return nil
}

// Ping checks that the backing storage is reachable
func (s *Store) Ping(ctx context.Context) error {
	if s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}
