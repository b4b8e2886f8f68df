package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"orgregistry/internal/model"
	"orgregistry/internal/repository"
	"orgregistry/pkg/timer"
	"orgregistry/pkg/util"

	"github.com/rs/zerolog"
)

// Hasher hashes and verifies admin passwords. The same implementation must
// back the write path and the login path.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// Recorder observes finished lifecycle operations.
type Recorder interface {
	ObserveOperation(op, outcome string, took time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) ObserveOperation(string, string, time.Duration) {}

// OrgService is the organization registry. It keeps organization metadata,
// the admin record and the named partition in step.
type OrgService struct {
	orgs       repository.IOrgRepository
	admins     repository.IAdminRepository
	partitions repository.IPartitionStore
	hasher     Hasher
	locks      *nameLocks
	recorder   Recorder
	now        func() time.Time
}

// NewOrgService creates a new organization registry
func NewOrgService(store *repository.Store, hasher Hasher) *OrgService {
	return &OrgService{
		orgs:       store.Orgs,
		admins:     store.Admins,
		partitions: store.Partitions,
		hasher:     hasher,
		locks:      newNameLocks(),
		recorder:   nopRecorder{},
		now:        time.Now,
	}
}

// WithClock replaces the timestamp source.
func (s *OrgService) WithClock(now func() time.Time) *OrgService {
	s.now = now
	return s
}

// WithRecorder reports operation outcomes to r.
func (s *OrgService) WithRecorder(r Recorder) *OrgService {
	if r != nil {
		s.recorder = r
	}
	return s
}

func (s *OrgService) timestamp() time.Time {
	// Mongo keeps milliseconds; truncate so returned and stored values agree.
	return s.now().UTC().Truncate(time.Millisecond)
}

func (s *OrgService) observe(op string, start time.Time, err *error) {
	s.recorder.ObserveOperation(op, Outcome(*err), time.Since(start))
}

// Create provisions the partition, then inserts the admin, then the
// organization. A failure after provisioning undoes the completed steps.
func (s *OrgService) Create(ctx context.Context, orgName, email, password string) (_ *model.Organization, err error) {
	defer s.observe("create", time.Now(), &err)

	if err := util.ValidateOrganizationName(orgName); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	email = util.NormalizeEmail(email)
	if err := util.ValidateEmail(email); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := util.ValidatePassword(password); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	collection := util.PartitionName(orgName)
	unlock := s.locks.Lock(orgName, collection)
	defer unlock()

	ctx = zerolog.Ctx(ctx).With().
		Str("organization", orgName).
		Str("partition", collection).
		Logger().WithContext(ctx)
	log := zerolog.Ctx(ctx)
	sw := timer.NewStopwatch(ctx)

	existing, err := s.orgs.FindByName(ctx, orgName)
	if err != nil {
		return nil, fmt.Errorf("lookup organization: %w", err)
	}
	if existing != nil {
		return nil, ErrAlreadyExists
	}
	owner, err := s.orgs.FindByCollection(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("lookup partition owner: %w", err)
	}
	if owner != nil {
		return nil, fmt.Errorf("%w: partition %s belongs to %q", ErrAlreadyExists, collection, owner.OrganizationName)
	}

	if err := s.partitions.Provision(ctx, collection); err != nil {
		if errors.Is(err, repository.ErrPartitionExists) {
			return nil, fmt.Errorf("%w: partition %s already exists", ErrAlreadyExists, collection)
		}
		return nil, fmt.Errorf("provision partition: %w", err)
	}
	sw.Lap("provision partition")

	var undo saga
	undo.onFailure("drop partition", func(ctx context.Context) error {
		_, err := s.partitions.Drop(ctx, collection)
		return err
	})

	hash, err := s.hasher.Hash(password)
	if err != nil {
		undo.compensate(ctx)
		return nil, fmt.Errorf("hash password: %w", err)
	}
	sw.Lap("hash password")

	now := s.timestamp()
	admin, err := s.admins.Create(ctx, &model.Admin{
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		undo.compensate(ctx)
		return nil, fmt.Errorf("create admin: %w", err)
	}
	undo.onFailure("delete admin", func(ctx context.Context) error {
		return s.admins.Delete(ctx, admin.ID)
	})
	sw.Lap("create admin")

	org, err := s.orgs.Create(ctx, &model.Organization{
		OrganizationName: orgName,
		CollectionName:   collection,
		AdminID:          admin.ID,
		CreatedAt:        now,
		UpdatedAt:        now,
	})
	if err != nil {
		undo.compensate(ctx)
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: %v", ErrAlreadyExists, err)
		}
		return nil, fmt.Errorf("create organization: %w", err)
	}
	sw.Total("create organization")

	log.Info().Str("org_id", org.ID.Hex()).Str("admin_id", admin.ID.Hex()).Msg("organization created")
	return org, nil
}

// Get returns the organization with the given name
func (s *OrgService) Get(ctx context.Context, orgName string) (_ *model.Organization, err error) {
	defer s.observe("get", time.Now(), &err)

	org, err := s.orgs.FindByName(ctx, orgName)
	if err != nil {
		return nil, fmt.Errorf("lookup organization: %w", err)
	}
	if org == nil {
		return nil, ErrNotFound
	}
	return org, nil
}

// GetByID returns the organization with the given hex id
func (s *OrgService) GetByID(ctx context.Context, id string) (_ *model.Organization, err error) {
	defer s.observe("get", time.Now(), &err)

	oid, err := util.ParseObjectID(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	org, err := s.orgs.FindByID(ctx, oid)
	if err != nil {
		return nil, fmt.Errorf("lookup organization: %w", err)
	}
	if org == nil {
		return nil, ErrNotFound
	}
	return org, nil
}

// Update applies every field present in upd. A rename moves the partition
// and rewrites organization_name and collection_name together; anything
// failing after the rename puts the old name and partition back.
func (s *OrgService) Update(ctx context.Context, orgName string, upd model.OrganizationUpdate) (_ *model.Organization, err error) {
	defer s.observe("update", time.Now(), &err)

	keys := []string{orgName, util.PartitionName(orgName)}
	if upd.OrganizationName != nil {
		if err := util.ValidateOrganizationName(*upd.OrganizationName); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		keys = append(keys, *upd.OrganizationName, util.PartitionName(*upd.OrganizationName))
	}
	var email string
	if upd.AdminEmail != nil {
		email = util.NormalizeEmail(*upd.AdminEmail)
		if err := util.ValidateEmail(email); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
	}
	if upd.AdminPassword != nil {
		if err := util.ValidatePassword(*upd.AdminPassword); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
	}

	unlock := s.locks.Lock(keys...)
	defer unlock()

	ctx = zerolog.Ctx(ctx).With().Str("organization", orgName).Logger().WithContext(ctx)
	log := zerolog.Ctx(ctx)

	org, err := s.orgs.FindByName(ctx, orgName)
	if err != nil {
		return nil, fmt.Errorf("lookup organization: %w", err)
	}
	if org == nil {
		return nil, ErrNotFound
	}

	// Hash before touching anything so a hashing failure leaves no state behind.
	changes := repository.AdminChanges{}
	if upd.AdminEmail != nil {
		changes.Email = &email
	}
	if upd.AdminPassword != nil {
		hash, err := s.hasher.Hash(*upd.AdminPassword)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		changes.PasswordHash = &hash
	}

	now := s.timestamp()
	var undo saga

	if upd.OrganizationName != nil && *upd.OrganizationName != org.OrganizationName {
		if err := s.rename(ctx, org, *upd.OrganizationName, now, &undo); err != nil {
			return nil, err
		}
	}

	if !changes.Empty() {
		if err := s.admins.Update(ctx, org.AdminID, changes, now); err != nil {
			undo.compensate(ctx)
			return nil, fmt.Errorf("update admin: %w", err)
		}
		log.Info().
			Bool("email", changes.Email != nil).
			Bool("password", changes.PasswordHash != nil).
			Msg("admin updated")
	}

	return org, nil
}

// rename moves org to newName, updating org in place on success.
func (s *OrgService) rename(ctx context.Context, org *model.Organization, newName string, now time.Time, undo *saga) error {
	log := zerolog.Ctx(ctx)

	other, err := s.orgs.FindByName(ctx, newName)
	if err != nil {
		return fmt.Errorf("lookup organization: %w", err)
	}
	if other != nil {
		return ErrNameConflict
	}

	oldName, oldCollection := org.OrganizationName, org.CollectionName
	newCollection := util.PartitionName(newName)

	if newCollection != oldCollection {
		owner, err := s.orgs.FindByCollection(ctx, newCollection)
		if err != nil {
			return fmt.Errorf("lookup partition owner: %w", err)
		}
		if owner != nil && owner.ID != org.ID {
			return fmt.Errorf("%w: partition %s belongs to %q", ErrNameConflict, newCollection, owner.OrganizationName)
		}

		err = s.partitions.Rename(ctx, oldCollection, newCollection)
		switch {
		case err == nil:
			undo.onFailure("rename partition back", func(ctx context.Context) error {
				return s.partitions.Rename(ctx, newCollection, oldCollection)
			})
		case errors.Is(err, repository.ErrPartitionNotFound):
			log.Warn().Str("partition", oldCollection).Msg("partition missing, provisioning under new name")
			if err := s.partitions.Provision(ctx, newCollection); err != nil {
				if errors.Is(err, repository.ErrPartitionExists) {
					return fmt.Errorf("%w: partition %s already exists", ErrNameConflict, newCollection)
				}
				return fmt.Errorf("provision partition: %w", err)
			}
			undo.onFailure("drop provisioned partition", func(ctx context.Context) error {
				_, err := s.partitions.Drop(ctx, newCollection)
				return err
			})
		case errors.Is(err, repository.ErrPartitionExists):
			return fmt.Errorf("%w: partition %s already exists", ErrNameConflict, newCollection)
		default:
			return fmt.Errorf("rename partition: %w", err)
		}
	}

	if err := s.orgs.Rename(ctx, org.ID, newName, newCollection, now); err != nil {
		undo.compensate(ctx)
		switch {
		case errors.Is(err, repository.ErrDuplicateKey):
			return fmt.Errorf("%w: %v", ErrNameConflict, err)
		case errors.Is(err, repository.ErrNotFound):
			return ErrNotFound
		default:
			return fmt.Errorf("rename organization: %w", err)
		}
	}
	prevUpdatedAt := org.UpdatedAt
	undo.onFailure("restore organization name", func(ctx context.Context) error {
		return s.orgs.Rename(ctx, org.ID, oldName, oldCollection, prevUpdatedAt)
	})

	org.OrganizationName = newName
	org.CollectionName = newCollection
	org.UpdatedAt = now

	log.Info().
		Str("new_name", newName).
		Str("from_partition", oldCollection).
		Str("to_partition", newCollection).
		Msg("organization renamed")
	return nil
}

// Delete drops the partition (if present), then the admin, then the
// organization record.
func (s *OrgService) Delete(ctx context.Context, orgName string) (err error) {
	defer s.observe("delete", time.Now(), &err)
	defer timer.Track(ctx, "delete organization")()

	unlock := s.locks.Lock(orgName, util.PartitionName(orgName))
	defer unlock()

	org, err := s.orgs.FindByName(ctx, orgName)
	if err != nil {
		return fmt.Errorf("lookup organization: %w", err)
	}
	if org == nil {
		return ErrNotFound
	}

	log := zerolog.Ctx(ctx).With().
		Str("organization", orgName).
		Str("org_id", org.ID.Hex()).
		Logger()

	dropped, err := s.partitions.Drop(ctx, org.CollectionName)
	if err != nil {
		return fmt.Errorf("drop partition: %w", err)
	}
	if !dropped {
		log.Warn().Str("partition", org.CollectionName).Msg("partition already absent")
	}

	if err := s.admins.Delete(ctx, org.AdminID); err != nil {
		return fmt.Errorf("delete admin: %w", err)
	}
	if err := s.orgs.Delete(ctx, org.ID); err != nil {
		return fmt.Errorf("delete organization: %w", err)
	}

	log.Info().Msg("organization deleted")
	return nil
}
