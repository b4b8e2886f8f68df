package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"orgregistry/internal/config"
	"orgregistry/pkg/util"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// IPartitionStore manages the per-organization collections by name.
type IPartitionStore interface {
	// Provision creates the partition and materializes it with an index so
	// it exists while empty. ErrPartitionExists if it is already there. A
	// failed Provision leaves no partition behind.
	Provision(ctx context.Context, name string) error
	// Rename moves a partition. ErrPartitionNotFound if from is missing,
	// ErrPartitionExists if to is taken.
	Rename(ctx context.Context, from, to string) error
	// Drop removes a partition and reports whether it existed.
	Drop(ctx context.Context, name string) (bool, error)
	Exists(ctx context.Context, name string) (bool, error)
	// List returns every collection in the partition namespace.
	List(ctx context.Context) ([]string, error)
	// ProvisionedAt returns when the partition was provisioned or last
	// renamed. ok is false when no record exists.
	ProvisionedAt(ctx context.Context, name string) (at time.Time, ok bool, err error)
}

// provision runs create, then each setup step. When a setup step fails the
// partition is dropped again, even if ctx is already done.
func provision(ctx context.Context, name string, create func(context.Context) error, setup []func(context.Context) error, drop func(context.Context) error) error {
	if err := create(ctx); err != nil {
		if errors.Is(err, ErrPartitionExists) || hasErrorCode(err, codeNamespaceExists) {
			return fmt.Errorf("%s: %w", name, ErrPartitionExists)
		}
		return fmt.Errorf("create collection %s: %w", name, err)
	}

	for _, step := range setup {
		if err := step(ctx); err != nil {
			err = fmt.Errorf("set up partition %s: %w", name, err)
			if dropErr := drop(context.WithoutCancel(ctx)); dropErr != nil {
				return errors.Join(err, fmt.Errorf("roll back partition %s: %w", name, dropErr))
			}
			return err
		}
	}
	return nil
}

type partitionRecord struct {
	Name          string    `bson:"_id"`
	ProvisionedAt time.Time `bson:"provisioned_at"`
}

// MongoPartitionStore keeps partitions as collections in the master
// database. Provisioning times live in a catalog collection outside the
// partition namespace; catalog entries for absent partitions are ignored.
type MongoPartitionStore struct {
	db      *mongo.Database
	catalog *mongo.Collection
	now     func() time.Time
}

func NewMongoPartitionStore(db *mongo.Database) IPartitionStore {
	return &MongoPartitionStore{
		db:      db,
		catalog: db.Collection(config.PartitionCatalog),
		now:     time.Now,
	}
}

func (p *MongoPartitionStore) record(ctx context.Context, name string) error {
	_, err := p.catalog.ReplaceOne(ctx,
		bson.M{"_id": name},
		partitionRecord{Name: name, ProvisionedAt: p.now().UTC()},
		options.Replace().SetUpsert(true))
	return err
}

func (p *MongoPartitionStore) Provision(ctx context.Context, name string) error {
	return provision(ctx, name,
		func(ctx context.Context) error { return p.db.CreateCollection(ctx, name) },
		[]func(context.Context) error{
			func(ctx context.Context) error {
				_, err := p.db.Collection(name).Indexes().CreateOne(ctx, mongo.IndexModel{
					Keys:    bson.D{{Key: "created_at", Value: 1}},
					Options: options.Index().SetName("created_at"),
				})
				return err
			},
			func(ctx context.Context) error { return p.record(ctx, name) },
		},
		func(ctx context.Context) error {
			if err := p.db.Collection(name).Drop(ctx); err != nil {
				return err
			}
			_, err := p.catalog.DeleteOne(ctx, bson.M{"_id": name})
			return err
		},
	)
}

func (p *MongoPartitionStore) Rename(ctx context.Context, from, to string) error {
	// Record the target first; a stale entry only makes a partition look younger.
	if err := p.record(ctx, to); err != nil {
		return fmt.Errorf("record partition %s: %w", to, err)
	}

	dbName := p.db.Name()
	cmd := bson.D{
		{Key: "renameCollection", Value: dbName + "." + from},
		{Key: "to", Value: dbName + "." + to},
		{Key: "dropTarget", Value: false},
	}
	err := p.db.Client().Database("admin").RunCommand(ctx, cmd).Err()
	switch {
	case err == nil:
		_, _ = p.catalog.DeleteOne(ctx, bson.M{"_id": from})
		return nil
	case hasErrorCode(err, codeNamespaceNotFound):
		return fmt.Errorf("%s: %w", from, ErrPartitionNotFound)
	case hasErrorCode(err, codeNamespaceExists):
		return fmt.Errorf("%s: %w", to, ErrPartitionExists)
	default:
		return fmt.Errorf("rename collection %s to %s: %w", from, to, err)
	}
}

func (p *MongoPartitionStore) Drop(ctx context.Context, name string) (bool, error) {
	exists, err := p.Exists(ctx, name)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, nil
	}
	if err := p.db.Collection(name).Drop(ctx); err != nil {
		return false, fmt.Errorf("drop collection %s: %w", name, err)
	}
	if _, err := p.catalog.DeleteOne(ctx, bson.M{"_id": name}); err != nil {
		return true, fmt.Errorf("forget partition %s: %w", name, err)
	}
	return true, nil
}

func (p *MongoPartitionStore) Exists(ctx context.Context, name string) (bool, error) {
	names, err := p.db.ListCollectionNames(ctx, bson.M{"name": name})
	if err != nil {
		return false, fmt.Errorf("list collections: %w", err)
	}
	return len(names) > 0, nil
}

func (p *MongoPartitionStore) List(ctx context.Context) ([]string, error) {
	filter := bson.M{"name": bson.M{"$regex": "^" + regexp.QuoteMeta(util.PartitionPrefix)}}
	names, err := p.db.ListCollectionNames(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	out := names[:0]
	for _, n := range names {
		if util.IsPartitionName(n) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (p *MongoPartitionStore) ProvisionedAt(ctx context.Context, name string) (time.Time, bool, error) {
	var rec partitionRecord
	err := p.catalog.FindOne(ctx, bson.M{"_id": name}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("read partition catalog: %w", err)
	}
	return rec.ProvisionedAt, true, nil
}
