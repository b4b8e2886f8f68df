package service

import (
	"context"
	"testing"
	"time"

	"orgregistry/internal/model"
	"orgregistry/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newAuditEnv stamps partitions with testNow so the audit clock decides
// what is inside the grace period.
func newAuditEnv(t *testing.T) *testEnv {
	return newTestEnv(t, func(s *repository.Store) {
		s.Partitions = repository.NewMemoryPartitionStore().WithClock(func() time.Time { return testNow })
	})
}

func TestAuditFindsAndRepairs(t *testing.T) {
	e := newAuditEnv(t)
	ctx := context.Background()

	_, err := e.orgs.Create(ctx, "Acme", "a@acme.io", "pw")
	require.NoError(t, err)
	_, err = e.orgs.Create(ctx, "Beta", "b@beta.io", "pw")
	require.NoError(t, err)

	orphan, err := e.store.Admins.Create(ctx, &model.Admin{Email: "o@x.io", CreatedAt: testNow})
	require.NoError(t, err)
	require.NoError(t, e.store.Partitions.Provision(ctx, "org_ghost"))
	_, err = e.store.Partitions.Drop(ctx, "org_beta")
	require.NoError(t, err)

	audit := NewAuditService(e.store).WithClock(func() time.Time { return testNow.Add(time.Hour) })

	report, err := audit.Run(ctx, false)
	require.NoError(t, err)
	assert.False(t, report.Clean())
	assert.False(t, report.Repaired)
	assert.Equal(t, []string{orphan.ID.Hex()}, report.OrphanedAdmins)
	assert.Equal(t, []string{"org_ghost"}, report.OrphanedPartitions)
	assert.Equal(t, []string{"Beta"}, report.MissingPartitions)
	assert.Empty(t, report.DanglingOrganizations)

	report, err = audit.Run(ctx, true)
	require.NoError(t, err)
	assert.True(t, report.Repaired)

	report, err = audit.Run(ctx, false)
	require.NoError(t, err)
	assert.True(t, report.Clean())

	partitions, err := e.store.Partitions.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"org_acme", "org_beta"}, partitions)
}

func TestAuditSkipsRecentAdmins(t *testing.T) {
	e := newAuditEnv(t)
	ctx := context.Background()

	_, err := e.store.Admins.Create(ctx, &model.Admin{Email: "new@x.io", CreatedAt: testNow})
	require.NoError(t, err)

	report, err := NewAuditService(e.store).
		WithClock(func() time.Time { return testNow.Add(time.Minute) }).
		Run(ctx, true)
	require.NoError(t, err)
	assert.True(t, report.Clean())
	assert.False(t, report.Repaired)

	admins, err := e.store.Admins.List(ctx)
	require.NoError(t, err)
	assert.Len(t, admins, 1)
}

func TestAuditSkipsRecentPartitions(t *testing.T) {
	e := newAuditEnv(t)
	ctx := context.Background()

	require.NoError(t, e.store.Partitions.Provision(ctx, "org_pending"))

	report, err := NewAuditService(e.store).
		WithClock(func() time.Time { return testNow.Add(time.Minute) }).
		Run(ctx, true)
	require.NoError(t, err)
	assert.True(t, report.Clean())

	ok, err := e.store.Partitions.Exists(ctx, "org_pending")
	require.NoError(t, err)
	assert.True(t, ok)

	report, err = NewAuditService(e.store).
		WithClock(func() time.Time { return testNow.Add(time.Hour) }).
		Run(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"org_pending"}, report.OrphanedPartitions)
}

func TestAuditFinishesInterruptedDelete(t *testing.T) {
	e := newAuditEnv(t)
	ctx := context.Background()

	acme, err := e.orgs.Create(ctx, "Acme", "a@acme.io", "pw")
	require.NoError(t, err)
	_, err = e.orgs.Create(ctx, "Beta", "b@beta.io", "pw")
	require.NoError(t, err)

	// Delete removed the admin and stopped before the partition and record.
	require.NoError(t, e.store.Admins.Delete(ctx, acme.AdminID))

	audit := NewAuditService(e.store).WithClock(func() time.Time { return testNow.Add(time.Hour) })

	report, err := audit.Run(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"Acme"}, report.DanglingOrganizations)
	assert.Empty(t, report.MissingPartitions)
	assert.Empty(t, report.OrphanedPartitions)

	report, err = audit.Run(ctx, true)
	require.NoError(t, err)
	assert.True(t, report.Repaired)

	report, err = audit.Run(ctx, false)
	require.NoError(t, err)
	assert.True(t, report.Clean())

	_, err = e.orgs.Get(ctx, "Acme")
	assert.ErrorIs(t, err, ErrNotFound)
	orgs, admins, partitions := e.counts(t)
	assert.Equal(t, 1, orgs)
	assert.Equal(t, 1, admins)
	assert.Equal(t, []string{"org_beta"}, partitions)
}

func TestAuditDanglingWithoutPartition(t *testing.T) {
	e := newAuditEnv(t)
	ctx := context.Background()

	acme, err := e.orgs.Create(ctx, "Acme", "a@acme.io", "pw")
	require.NoError(t, err)
	require.NoError(t, e.store.Admins.Delete(ctx, acme.AdminID))
	_, err = e.store.Partitions.Drop(ctx, "org_acme")
	require.NoError(t, err)

	audit := NewAuditService(e.store).WithClock(func() time.Time { return testNow.Add(time.Hour) })
	report, err := audit.Run(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"Acme"}, report.DanglingOrganizations)
	assert.Empty(t, report.MissingPartitions)

	orgs, _, partitions := e.counts(t)
	assert.Zero(t, orgs)
	assert.Empty(t, partitions)
}

func TestAuditCleanStore(t *testing.T) {
	e := newTestEnv(t)
	report, err := NewAuditService(e.store).Run(context.Background(), true)
	require.NoError(t, err)
	assert.True(t, report.Clean())
	assert.NotNil(t, report.OrphanedAdmins)
}
