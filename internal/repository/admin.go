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

// AdminChanges lists the mutable admin fields; nil fields are left alone.
type AdminChanges struct {
	Email        *string
	PasswordHash *string
}

func (c AdminChanges) Empty() bool {
	return c.Email == nil && c.PasswordHash == nil
}

// IAdminRepository defines admin persistence
type IAdminRepository interface {
	Create(ctx context.Context, admin *model.Admin) (*model.Admin, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.Admin, error)
	// FindByEmail returns every admin with that email, oldest first.
	FindByEmail(ctx context.Context, email string) ([]*model.Admin, error)
	List(ctx context.Context) ([]*model.Admin, error)
	Update(ctx context.Context, id primitive.ObjectID, changes AdminChanges, at time.Time) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	EnsureIndexes(ctx context.Context) error
}

// AdminRepository implements admin persistence on MongoDB
type AdminRepository struct {
	base *generic.MongoBaseRepository[*model.Admin]
}

func NewAdminRepository(db *mongo.Database) IAdminRepository {
	return &AdminRepository{
		base: generic.NewBaseRepository[*model.Admin](db.Collection(config.AdminsCollection)),
	}
}

// EnsureIndexes indexes email for login lookups. Email is not unique.
func (r *AdminRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.base.Collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetName("email"),
	})
	return err
}

func (r *AdminRepository) Create(ctx context.Context, admin *model.Admin) (*model.Admin, error) {
	if admin.CreatedAt.IsZero() {
		admin.CreatedAt = time.Now().UTC()
	}
	if admin.UpdatedAt.IsZero() {
		admin.UpdatedAt = admin.CreatedAt
	}
	if admin.Role == "" {
		admin.Role = model.RoleAdmin
	}
	if err := r.base.Create(ctx, admin); err != nil {
		return nil, mapWriteError(err)
	}
	return admin, nil
}

func (r *AdminRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Admin, error) {
	return r.base.GetByID(ctx, id)
}

func (r *AdminRepository) FindByEmail(ctx context.Context, email string) ([]*model.Admin, error) {
	return r.base.Find(ctx, bson.M{"email": email},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}))
}

func (r *AdminRepository) List(ctx context.Context) ([]*model.Admin, error) {
	return r.base.Find(ctx, nil, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
}

func (r *AdminRepository) Update(ctx context.Context, id primitive.ObjectID, changes AdminChanges, at time.Time) error {
	fields := bson.M{"updated_at": at}
	if changes.Email != nil {
		fields["email"] = *changes.Email
	}
	if changes.PasswordHash != nil {
		fields["password_hash"] = *changes.PasswordHash
	}
	matched, err := r.base.UpdateFields(ctx, id, fields)
	if err != nil {
		return mapWriteError(err)
	}
	if !matched {
		return ErrNotFound
	}
	return nil
}

func (r *AdminRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return r.base.Delete(ctx, id)
}
