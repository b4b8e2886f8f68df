package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"orgregistry/internal/model"
	"orgregistry/internal/repository"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// DefaultAuditGracePeriod skips admins and partitions younger than this;
// they may belong to a Create that has not inserted its organization yet.
const DefaultAuditGracePeriod = 5 * time.Minute

// AuditReport lists partial state left behind by interrupted operations.
type AuditReport struct {
	OrphanedAdmins        []string `json:"orphaned_admins"`        // admin ids no organization references
	OrphanedPartitions    []string `json:"orphaned_partitions"`    // partitions no organization owns
	MissingPartitions     []string `json:"missing_partitions"`     // organizations whose partition is gone
	DanglingOrganizations []string `json:"dangling_organizations"` // organizations whose admin is gone
	Repaired              bool     `json:"repaired"`
}

// Clean reports whether nothing was found.
func (r *AuditReport) Clean() bool {
	return len(r.OrphanedAdmins) == 0 &&
		len(r.OrphanedPartitions) == 0 &&
		len(r.MissingPartitions) == 0 &&
		len(r.DanglingOrganizations) == 0
}

// AuditService detects, and optionally repairs, inconsistencies between
// organizations, admins and partitions.
type AuditService struct {
	orgs       repository.IOrgRepository
	admins     repository.IAdminRepository
	partitions repository.IPartitionStore
	grace      time.Duration
	now        func() time.Time
}

func NewAuditService(store *repository.Store) *AuditService {
	return &AuditService{
		orgs:       store.Orgs,
		admins:     store.Admins,
		partitions: store.Partitions,
		grace:      DefaultAuditGracePeriod,
		now:        time.Now,
	}
}

// WithGracePeriod overrides DefaultAuditGracePeriod.
func (s *AuditService) WithGracePeriod(d time.Duration) *AuditService {
	s.grace = d
	return s
}

// WithClock replaces the time source used for the grace period.
func (s *AuditService) WithClock(now func() time.Time) *AuditService {
	s.now = now
	return s
}

// recent reports whether a partition was provisioned (or renamed) inside the
// grace period. Partitions without a record count as old.
func (s *AuditService) recent(ctx context.Context, partition string, cutoff time.Time) (bool, error) {
	at, ok, err := s.partitions.ProvisionedAt(ctx, partition)
	if err != nil {
		return false, fmt.Errorf("read provisioning time of %s: %w", partition, err)
	}
	return ok && at.After(cutoff), nil
}

// Run scans storage. With repair it deletes orphaned admins, drops orphaned
// partitions, finishes the deletion of organizations whose admin is gone and
// re-provisions missing partitions. Repair assumes no Update or Delete is
// running at the same time; in-flight Creates are covered by the grace period.
func (s *AuditService) Run(ctx context.Context, repair bool) (*AuditReport, error) {
	var (
		orgs       []*model.Organization
		admins     []*model.Admin
		partitions []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		orgs, err = s.orgs.List(gctx)
		return err
	})
	g.Go(func() (err error) {
		admins, err = s.admins.List(gctx)
		return err
	})
	g.Go(func() (err error) {
		partitions, err = s.partitions.List(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("audit scan: %w", err)
	}

	report := &AuditReport{
		OrphanedAdmins:        []string{},
		OrphanedPartitions:    []string{},
		MissingPartitions:     []string{},
		DanglingOrganizations: []string{},
	}

	knownAdmins := make(map[string]struct{}, len(admins))
	for _, a := range admins {
		knownAdmins[a.ID.Hex()] = struct{}{}
	}
	ownedAdmins := make(map[string]struct{}, len(orgs))
	ownedPartitions := make(map[string]struct{}, len(orgs))
	for _, o := range orgs {
		ownedAdmins[o.AdminID.Hex()] = struct{}{}
		ownedPartitions[o.CollectionName] = struct{}{}
	}
	present := make(map[string]struct{}, len(partitions))
	for _, p := range partitions {
		present[p] = struct{}{}
	}

	cutoff := s.now().Add(-s.grace)
	var orphanAdmins []*model.Admin
	for _, a := range admins {
		if _, ok := ownedAdmins[a.ID.Hex()]; ok {
			continue
		}
		if a.CreatedAt.After(cutoff) {
			continue
		}
		orphanAdmins = append(orphanAdmins, a)
		report.OrphanedAdmins = append(report.OrphanedAdmins, a.ID.Hex())
	}
	for _, p := range partitions {
		if _, ok := ownedPartitions[p]; ok {
			continue
		}
		young, err := s.recent(ctx, p, cutoff)
		if err != nil {
			return nil, err
		}
		if young {
			continue
		}
		report.OrphanedPartitions = append(report.OrphanedPartitions, p)
	}
	var missing, dangling []*model.Organization
	for _, o := range orgs {
		// An organization without its admin is a Delete that stopped
		// halfway; it is finished, not patched.
		if _, ok := knownAdmins[o.AdminID.Hex()]; !ok {
			dangling = append(dangling, o)
			report.DanglingOrganizations = append(report.DanglingOrganizations, o.OrganizationName)
			continue
		}
		if _, ok := present[o.CollectionName]; !ok {
			missing = append(missing, o)
			report.MissingPartitions = append(report.MissingPartitions, o.OrganizationName)
		}
	}

	log := zerolog.Ctx(ctx)
	log.Info().
		Int("organizations", len(orgs)).
		Int("orphaned_admins", len(report.OrphanedAdmins)).
		Int("orphaned_partitions", len(report.OrphanedPartitions)).
		Int("missing_partitions", len(report.MissingPartitions)).
		Int("dangling_organizations", len(report.DanglingOrganizations)).
		Msg("audit scan complete")

	if !repair || report.Clean() {
		return report, nil
	}

	var errs []error
	for _, a := range orphanAdmins {
		if err := s.admins.Delete(ctx, a.ID); err != nil {
			errs = append(errs, fmt.Errorf("delete admin %s: %w", a.ID.Hex(), err))
		}
	}
	for _, p := range report.OrphanedPartitions {
		// Re-check ownership and age right before dropping.
		owner, err := s.orgs.FindByCollection(ctx, p)
		if err != nil {
			errs = append(errs, fmt.Errorf("lookup partition owner %s: %w", p, err))
			continue
		}
		if owner != nil {
			continue
		}
		young, err := s.recent(ctx, p, s.now().Add(-s.grace))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if young {
			continue
		}
		if _, err := s.partitions.Drop(ctx, p); err != nil {
			errs = append(errs, fmt.Errorf("drop partition %s: %w", p, err))
		}
	}
	for _, o := range dangling {
		if err := s.finishDelete(ctx, o); err != nil {
			errs = append(errs, err)
		}
	}
	for _, o := range missing {
		if err := s.partitions.Provision(ctx, o.CollectionName); err != nil && !errors.Is(err, repository.ErrPartitionExists) {
			errs = append(errs, fmt.Errorf("provision partition %s: %w", o.CollectionName, err))
		}
	}

	report.Repaired = len(errs) == 0
	if len(errs) > 0 {
		return report, errors.Join(errs...)
	}
	log.Info().Msg("audit repair complete")
	return report, nil
}

// finishDelete completes a Delete that removed the admin but not the
// organization record.
func (s *AuditService) finishDelete(ctx context.Context, o *model.Organization) error {
	admin, err := s.admins.FindByID(ctx, o.AdminID)
	if err != nil {
		return fmt.Errorf("lookup admin of %s: %w", o.OrganizationName, err)
	}
	if admin != nil {
		return nil
	}
	if _, err := s.partitions.Drop(ctx, o.CollectionName); err != nil {
		return fmt.Errorf("drop partition %s: %w", o.CollectionName, err)
	}
	if err := s.orgs.Delete(ctx, o.ID); err != nil {
		return fmt.Errorf("delete organization %s: %w", o.OrganizationName, err)
	}
	zerolog.Ctx(ctx).Warn().Str("organization", o.OrganizationName).Msg("finished interrupted delete")
	return nil
}
