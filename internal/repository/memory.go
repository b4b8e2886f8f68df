package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"orgregistry/internal/model"
	"orgregistry/pkg/util"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryOrgRepository is an in-memory IOrgRepository. It enforces the same
// uniqueness rules as the Mongo indexes.
type MemoryOrgRepository struct {
	mu   sync.RWMutex
	orgs map[primitive.ObjectID]*model.Organization
}

func NewMemoryOrgRepository() *MemoryOrgRepository {
	return &MemoryOrgRepository{orgs: make(map[primitive.ObjectID]*model.Organization)}
}

func (r *MemoryOrgRepository) EnsureIndexes(ctx context.Context) error { return nil }

func (r *MemoryOrgRepository) Create(ctx context.Context, org *model.Organization) (*model.Organization, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkUniqueLocked(primitive.NilObjectID, org.OrganizationName, org.CollectionName); err != nil {
		return nil, err
	}

	if org.CreatedAt.IsZero() {
		org.CreatedAt = time.Now().UTC()
	}
	if org.UpdatedAt.IsZero() {
		org.UpdatedAt = org.CreatedAt
	}
	org.ID = primitive.NewObjectID()

	stored := *org
	r.orgs[org.ID] = &stored
	return org, nil
}

func (r *MemoryOrgRepository) checkUniqueLocked(self primitive.ObjectID, name, collection string) error {
	for id, o := range r.orgs {
		if id == self {
			continue
		}
		if o.OrganizationName == name {
			return fmt.Errorf("organization_name %q: %w", name, ErrDuplicateKey)
		}
		if o.CollectionName == collection {
			return fmt.Errorf("collection_name %q: %w", collection, ErrDuplicateKey)
		}
	}
	return nil
}

func (r *MemoryOrgRepository) findLocked(match func(*model.Organization) bool) *model.Organization {
	for _, o := range r.orgs {
		if match(o) {
			c := *o
			return &c
		}
	}
	return nil
}

func (r *MemoryOrgRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Organization, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.findLocked(func(o *model.Organization) bool { return o.ID == id }), nil
}

func (r *MemoryOrgRepository) FindByName(ctx context.Context, name string) (*model.Organization, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.findLocked(func(o *model.Organization) bool { return o.OrganizationName == name }), nil
}

func (r *MemoryOrgRepository) FindByCollection(ctx context.Context, collection string) (*model.Organization, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.findLocked(func(o *model.Organization) bool { return o.CollectionName == collection }), nil
}

func (r *MemoryOrgRepository) FindByAdmin(ctx context.Context, adminID primitive.ObjectID) (*model.Organization, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.findLocked(func(o *model.Organization) bool { return o.AdminID == adminID }), nil
}

func (r *MemoryOrgRepository) List(ctx context.Context) ([]*model.Organization, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*model.Organization, 0, len(r.orgs))
	for _, o := range r.orgs {
		c := *o
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *MemoryOrgRepository) Rename(ctx context.Context, id primitive.ObjectID, name, collection string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orgs[id]
	if !ok {
		return ErrNotFound
	}
	if err := r.checkUniqueLocked(id, name, collection); err != nil {
		return err
	}
	o.OrganizationName = name
	o.CollectionName = collection
	o.UpdatedAt = at
	return nil
}

func (r *MemoryOrgRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.orgs, id)
	return nil
}

// MemoryAdminRepository is an in-memory IAdminRepository
type MemoryAdminRepository struct {
	mu     sync.RWMutex
	admins map[primitive.ObjectID]*model.Admin
}

func NewMemoryAdminRepository() *MemoryAdminRepository {
	return &MemoryAdminRepository{admins: make(map[primitive.ObjectID]*model.Admin)}
}

func (r *MemoryAdminRepository) EnsureIndexes(ctx context.Context) error { return nil }

func (r *MemoryAdminRepository) Create(ctx context.Context, admin *model.Admin) (*model.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if admin.CreatedAt.IsZero() {
		admin.CreatedAt = time.Now().UTC()
	}
	if admin.UpdatedAt.IsZero() {
		admin.UpdatedAt = admin.CreatedAt
	}
	if admin.Role == "" {
		admin.Role = model.RoleAdmin
	}
	admin.ID = primitive.NewObjectID()

	stored := *admin
	r.admins[admin.ID] = &stored
	return admin, nil
}

func (r *MemoryAdminRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Admin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.admins[id]
	if !ok {
		return nil, nil
	}
	c := *a
	return &c, nil
}

func (r *MemoryAdminRepository) FindByEmail(ctx context.Context, email string) ([]*model.Admin, error) {
	all, _ := r.List(ctx)
	out := all[:0]
	for _, a := range all {
		if a.Email == email {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *MemoryAdminRepository) List(ctx context.Context) ([]*model.Admin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*model.Admin, 0, len(r.admins))
	for _, a := range r.admins {
		c := *a
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.Hex() < out[j].ID.Hex()
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryAdminRepository) Update(ctx context.Context, id primitive.ObjectID, changes AdminChanges, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.admins[id]
	if !ok {
		return ErrNotFound
	}
	if changes.Email != nil {
		a.Email = *changes.Email
	}
	if changes.PasswordHash != nil {
		a.PasswordHash = *changes.PasswordHash
	}
	a.UpdatedAt = at
	return nil
}

func (r *MemoryAdminRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.admins, id)
	return nil
}

// MemoryPartitionStore tracks partition names and when they were provisioned
type MemoryPartitionStore struct {
	mu         sync.Mutex
	partitions map[string]time.Time
	now        func() time.Time
}

func NewMemoryPartitionStore() *MemoryPartitionStore {
	return &MemoryPartitionStore{partitions: make(map[string]time.Time), now: time.Now}
}

// WithClock replaces the time source for provisioning records.
func (p *MemoryPartitionStore) WithClock(now func() time.Time) *MemoryPartitionStore {
	p.now = now
	return p
}

func (p *MemoryPartitionStore) Provision(ctx context.Context, name string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.partitions[name]; ok {
		return fmt.Errorf("%s: %w", name, ErrPartitionExists)
	}
	p.partitions[name] = p.now().UTC()
	return nil
}

func (p *MemoryPartitionStore) Rename(ctx context.Context, from, to string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.partitions[from]; !ok {
		return fmt.Errorf("%s: %w", from, ErrPartitionNotFound)
	}
	if _, ok := p.partitions[to]; ok {
		return fmt.Errorf("%s: %w", to, ErrPartitionExists)
	}
	delete(p.partitions, from)
	p.partitions[to] = p.now().UTC()
	return nil
}

func (p *MemoryPartitionStore) Drop(ctx context.Context, name string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.partitions[name]; !ok {
		return false, nil
	}
	delete(p.partitions, name)
	return true, nil
}

func (p *MemoryPartitionStore) Exists(ctx context.Context, name string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.partitions[name]
	return ok, nil
}

func (p *MemoryPartitionStore) List(ctx context.Context) ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.partitions))
	for name := range p.partitions {
		if util.IsPartitionName(name) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (p *MemoryPartitionStore) ProvisionedAt(ctx context.Context, name string) (time.Time, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	at, ok := p.partitions[name]
	return at, ok, nil
}
