package repository

import (
	"context"
	"time"

	"orgregistry/internal/config"
	"orgregistry/internal/model"
	"orgregistry/pkg/generic"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// IOrgRepository defines organization persistence. Finders return (nil, nil)
// when nothing matches.
type IOrgRepository interface {
	Create(ctx context.Context, org *model.Organization) (*model.Organization, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.Organization, error)
	FindByName(ctx context.Context, name string) (*model.Organization, error)
	FindByCollection(ctx context.Context, collection string) (*model.Organization, error)
	FindByAdmin(ctx context.Context, adminID primitive.ObjectID) (*model.Organization, error)
	List(ctx context.Context) ([]*model.Organization, error)
	Rename(ctx context.Context, id primitive.ObjectID, name, collection string, at time.Time) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	EnsureIndexes(ctx context.Context) error
}

// OrgRepository implements org persistence on MongoDB
type OrgRepository struct {
	base *generic.MongoBaseRepository[*model.Organization]
}

func NewOrgRepository(db *mongo.Database) IOrgRepository {
	return &OrgRepository{
		base: generic.NewBaseRepository[*model.Organization](db.Collection(config.OrganizationsCollection)),
	}
}

// EnsureIndexes creates the unique indexes that back the name invariants
// across processes.
func (r *OrgRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.base.Collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "organization_name", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_organization_name"),
		},
		{
			Keys:    bson.D{{Key: "collection_name", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_collection_name"),
		},
		{
			Keys:    bson.D{{Key: "admin_id", Value: 1}},
			Options: options.Index().SetName("admin_id"),
		},
	})
	return err
}

func (r *OrgRepository) Create(ctx context.Context, org *model.Organization) (*model.Organization, error) {
	now := time.Now().UTC()
	if org.CreatedAt.IsZero() {
		org.CreatedAt = now
	}
	if org.UpdatedAt.IsZero() {
		org.UpdatedAt = org.CreatedAt
	}
	if err := r.base.Create(ctx, org); err != nil {
		return nil, mapWriteError(err)
	}
	return org, nil
}

func (r *OrgRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Organization, error) {
	return r.base.GetByID(ctx, id)
}

func (r *OrgRepository) FindByName(ctx context.Context, name string) (*model.Organization, error) {
	return r.base.FindOne(ctx, bson.M{"organization_name": name})
}

func (r *OrgRepository) FindByCollection(ctx context.Context, collection string) (*model.Organization, error) {
	return r.base.FindOne(ctx, bson.M{"collection_name": collection})
}

func (r *OrgRepository) FindByAdmin(ctx context.Context, adminID primitive.ObjectID) (*model.Organization, error) {
	return r.base.FindOne(ctx, bson.M{"admin_id": adminID})
}

func (r *OrgRepository) List(ctx context.Context) ([]*model.Organization, error) {
	return r.base.Find(ctx, nil, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
}

// Rename sets organization_name and collection_name in one update so the
// two never disagree.
func (r *OrgRepository) Rename(ctx context.Context, id primitive.ObjectID, name, collection string, at time.Time) error {
	matched, err := r.base.UpdateFields(ctx, id, bson.M{
		"organization_name": name,
		"collection_name":   collection,
		"updated_at":        at,
	})
	if err != nil {
		return mapWriteError(err)
	}
	if !matched {
		return ErrNotFound
	}
	return nil
}

func (r *OrgRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return r.base.Delete(ctx, id)
}
