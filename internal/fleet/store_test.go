package fleet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleetline/internal/domain"
	"fleetline/internal/kv"
)

var testNow = time.Date(2024, 8, 1, 9, 30, 0, 0, time.UTC)

func counterIDs() func(string) string {
	n := 0
	return func(prefix string) string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func newTestStore(t *testing.T, backend kv.Store) *Store {
	t.Helper()
	if backend == nil {
		backend = kv.NewMemory()
	}
	s, err := Open(context.Background(), backend, Options{
		Now:   func() time.Time { return testNow },
		NewID: counterIDs(),
	})
	require.NoError(t, err)
	return s
}

// failingKV refuses writes once armed, to every key or only to onlyKey.
type failingKV struct {
	kv.Store
	fail    bool
	onlyKey string
}

func (f *failingKV) Put(ctx context.Context, key string, value []byte) error {
	if f.fail && (f.onlyKey == "" || f.onlyKey == key) {
		return errors.New("disk full")
	}
	return f.Store.Put(ctx, key, value)
}

func sampleJob(title string) domain.Job {
	return domain.Job{
		ComponentID: "c1", ShipID: "s1", Type: domain.JobRepair, Priority: domain.PriorityLow,
		Status: domain.JobOpen, ScheduledDate: "2024-08-10", Title: title, EstimatedHours: 2,
	}
}

func TestOpenSeedsAbsentCollections(t *testing.T) {
	s := newTestStore(t, nil)
	snap := s.Snapshot()
	assert.Len(t, snap.Ships, 3)
	assert.Len(t, snap.Components, 3)
	assert.Len(t, snap.Jobs, 2)
	require.Len(t, snap.Notifications, 1)
	assert.Equal(t, "2024-08-01T09:30:00.000Z", snap.Notifications[0].CreatedAt)
}

func TestOpenLoadsPersistedVerbatimWithoutMerge(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	require.NoError(t, kv.Save(ctx, mem, kv.KeyShips, []domain.Ship{{ID: "x", Name: "Solo", Status: domain.ShipDocked}}))
	require.NoError(t, kv.Save(ctx, mem, kv.KeyJobs, []domain.Job{}))

	s := newTestStore(t, mem)
	snap := s.Snapshot()
	require.Len(t, snap.Ships, 1)
	assert.Equal(t, "Solo", snap.Ships[0].Name)
	assert.Empty(t, snap.Jobs)
	assert.Len(t, snap.Components, 3, "absent key still seeds")
}

func TestOpenMalformedCollectionPolicy(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	require.NoError(t, mem.Put(ctx, kv.KeyJobs, []byte("{not json")))

	_, err := Open(ctx, mem, Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCorrupt)
	assert.ErrorIs(t, err, kv.ErrMalformed)

	s, err := Open(ctx, mem, Options{OnCorrupt: CorruptSeed})
	require.NoError(t, err)
	assert.Len(t, s.Jobs(), 2)
	raw, _, err := mem.Get(ctx, kv.KeyJobs)
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(raw), "seed policy does not rewrite storage on open")
}

func TestAddAssignsUniqueIDsAndPersists(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	s := newTestStore(t, mem)

	a, err := s.AddShip(ctx, domain.Ship{Name: "A", Status: domain.ShipActive})
	require.NoError(t, err)
	b, err := s.AddShip(ctx, domain.Ship{Name: "B", Status: domain.ShipActive})
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)

	ids := map[string]bool{}
	for _, sh := range s.Ships() {
		assert.False(t, ids[sh.ID], "duplicate id %s", sh.ID)
		ids[sh.ID] = true
	}

	var persisted []domain.Ship
	ok, err := kv.Load(ctx, mem, kv.KeyShips, &persisted)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, s.Ships(), persisted)
}

func TestAddSkipsTakenID(t *testing.T) {
	ctx := context.Background()
	ids := []string{"s1", "s1", "s-fresh"}
	s, err := Open(ctx, kv.NewMemory(), Options{NewID: func(string) string {
		id := ids[0]
		ids = ids[1:]
		return id
	}})
	require.NoError(t, err)
	ship, err := s.AddShip(ctx, domain.Ship{Name: "New", Status: domain.ShipActive})
	require.NoError(t, err)
	assert.Equal(t, "s-fresh", ship.ID)
}

func TestPersistenceRoundTrip(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	s := newTestStore(t, mem)
	_, err := s.AddComponent(ctx, domain.Component{ShipID: "s3", Name: "Ballast Pump", Status: domain.ComponentGood, NextMaintenanceDate: "2025-01-01"})
	require.NoError(t, err)
	_, err = s.AddJob(ctx, sampleJob("Pump check"))
	require.NoError(t, err)

	reopened := newTestStore(t, mem)
	assert.Equal(t, s.Snapshot(), reopened.Snapshot())
}

func TestUpdateMergesOnlySetFields(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, nil)
	found, err := s.UpdateShip(ctx, "s1", domain.ShipPatch{Status: domain.Ptr(domain.ShipDocked)})
	require.NoError(t, err)
	assert.True(t, found)

	ship, ok := s.Ship("s1")
	require.True(t, ok)
	assert.Equal(t, domain.ShipDocked, ship.Status)
	assert.Equal(t, "Ever Given", ship.Name)
	assert.Equal(t, "9811000", ship.IMO)
}

func TestUpdateMissingIDIsNoop(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	s := newTestStore(t, mem)
	before := s.Snapshot()

	found, err := s.UpdateShip(ctx, "nope", domain.ShipPatch{Name: domain.Ptr("Ghost")})
	require.NoError(t, err)
	assert.False(t, found)
	found, err = s.UpdateJob(ctx, "nope", domain.JobPatch{Status: domain.Ptr(domain.JobCompleted)})
	require.NoError(t, err)
	assert.False(t, found)

	assert.Equal(t, before, s.Snapshot())
	_, ok, err := mem.Get(ctx, kv.KeyNotifications)
	require.NoError(t, err)
	assert.False(t, ok, "no notification written for a missing job")
}

func TestDeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, nil)
	found, err := s.DeleteJob(ctx, "j1")
	require.NoError(t, err)
	assert.True(t, found)
	after := s.Snapshot()

	found, err = s.DeleteJob(ctx, "j1")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, after, s.Snapshot())
	assert.Len(t, after.Notifications, 1, "delete emits nothing")
}

func TestDeleteShipDoesNotCascade(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, nil)
	_, err := s.DeleteShip(ctx, "s1")
	require.NoError(t, err)

	assert.Len(t, ComponentsForShip(s.Components(), "s1"), 2)
	assert.Len(t, JobsForShip(s.Jobs(), "s1"), 1)
	orphans := s.Orphans()
	assert.Len(t, orphans.Components, 2)
	assert.Len(t, orphans.Jobs, 1)
}

func TestAddJobEmitsJobCreated(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, nil)
	before := len(s.Notifications())

	_, err := s.AddJob(ctx, sampleJob("X"))
	require.NoError(t, err)

	ns := s.Notifications()
	require.Len(t, ns, before+1)
	assert.Equal(t, domain.NotificationJobCreated, ns[0].Type)
	assert.Contains(t, ns[0].Message, "X")
	assert.False(t, ns[0].Read)
}

func TestUpdateJobStatusNotifications(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, nil)
	job, err := s.AddJob(ctx, sampleJob("Hull survey"))
	require.NoError(t, err)
	base := len(s.Notifications())

	_, err = s.UpdateJob(ctx, job.ID, domain.JobPatch{Status: domain.Ptr(domain.JobCompleted), CompletedDate: domain.Ptr("2024-08-02")})
	require.NoError(t, err)
	ns := s.Notifications()
	require.Len(t, ns, base+1)
	assert.Equal(t, domain.NotificationJobCompleted, ns[0].Type)

	_, err = s.UpdateJob(ctx, job.ID, domain.JobPatch{Status: domain.Ptr(domain.JobCancelled)})
	require.NoError(t, err)
	ns = s.Notifications()
	require.Len(t, ns, base+2)
	assert.Equal(t, domain.NotificationJobUpdated, ns[0].Type)
	assert.Contains(t, ns[0].Message, "Cancelled")

	_, err = s.UpdateJob(ctx, job.ID, domain.JobPatch{Description: domain.Ptr("no status change")})
	require.NoError(t, err)
	assert.Len(t, s.Notifications(), base+2)
}

func TestNotificationsNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, nil)
	first, err := s.AddNotification(ctx, domain.NotificationDraft{Type: domain.NotificationMaintenanceDue, Title: "first"})
	require.NoError(t, err)
	second, err := s.AddNotification(ctx, domain.NotificationDraft{Type: domain.NotificationMaintenanceDue, Title: "second"})
	require.NoError(t, err)

	ns := s.Notifications()
	assert.Equal(t, second.ID, ns[0].ID)
	assert.Equal(t, first.ID, ns[1].ID)
	assert.Equal(t, "n1", ns[2].ID)
}

func TestMarkNotificationAsRead(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, nil)

	found, err := s.MarkNotificationAsRead(ctx, "n1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.True(t, s.Notifications()[0].Read)

	found, err = s.MarkNotificationAsRead(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMarkAllNotificationsRead(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, nil)
	_, err := s.AddJob(ctx, sampleJob("A"))
	require.NoError(t, err)

	n, err := s.MarkAllNotificationsRead(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Zero(t, UnreadCount(s.Notifications()))

	n, err = s.MarkAllNotificationsRead(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestValidationRejectsWithoutChange(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, nil)
	before := s.Snapshot()

	_, err := s.AddShip(ctx, domain.Ship{Name: "", Status: domain.ShipActive})
	assert.ErrorIs(t, err, ErrInvalid)
	_, err = s.AddShip(ctx, domain.Ship{Name: "Bad IMO", IMO: "12ab", Status: domain.ShipActive})
	assert.ErrorIs(t, err, ErrInvalid)
	_, err = s.AddJob(ctx, domain.Job{Title: "x", Type: "Polish", Priority: domain.PriorityLow, Status: domain.JobOpen})
	assert.ErrorIs(t, err, ErrInvalid)
	found, err := s.UpdateComponent(ctx, "c1", domain.ComponentPatch{Status: domain.Ptr(domain.ComponentStatus("Broken"))})
	assert.True(t, found)
	assert.ErrorIs(t, err, ErrInvalid)
	_, err = s.AddNotification(ctx, domain.NotificationDraft{Type: "gossip", Title: "t"})
	assert.ErrorIs(t, err, ErrInvalid)

	assert.Equal(t, before, s.Snapshot())
}

func TestWriteFailureLeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	backend := &failingKV{Store: kv.NewMemory()}
	s := newTestStore(t, backend)
	before := s.Snapshot()
	backend.fail = true

	_, err := s.AddShip(ctx, domain.Ship{Name: "Nope", Status: domain.ShipActive})
	assert.Error(t, err)
	_, err = s.UpdateShip(ctx, "s1", domain.ShipPatch{Name: domain.Ptr("Renamed")})
	assert.Error(t, err)
	_, err = s.DeleteComponent(ctx, "c1")
	assert.Error(t, err)
	_, err = s.AddJob(ctx, sampleJob("Nope"))
	assert.Error(t, err)

	assert.Equal(t, before, s.Snapshot())
}

func TestLostNotificationKeepsCommittedJob(t *testing.T) {
	ctx := context.Background()
	backend := &failingKV{Store: kv.NewMemory(), onlyKey: kv.KeyNotifications}
	s := newTestStore(t, backend)
	backend.fail = true

	j, err := s.AddJob(ctx, sampleJob("Pump overhaul"))
	require.ErrorIs(t, err, ErrNoticeNotSaved)
	require.NotEmpty(t, j.ID)
	got, ok := s.Job(j.ID)
	require.True(t, ok)
	assert.Equal(t, "Pump overhaul", got.Title)
	assert.Len(t, s.Notifications(), 1)

	found, err := s.UpdateJob(ctx, j.ID, domain.JobPatch{Status: domain.Ptr(domain.JobCompleted)})
	assert.True(t, found)
	assert.ErrorIs(t, err, ErrNoticeNotSaved)
	got, _ = s.Job(j.ID)
	assert.Equal(t, domain.JobCompleted, got.Status)

	var stored []domain.Job
	ok, err = kv.Load(ctx, backend, kv.KeyJobs, &stored)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, stored, 3)
}

func TestComponentDateErrorsReportFirstField(t *testing.T) {
	s := newTestStore(t, nil)
	bad := domain.Component{
		ShipID: "s1", Name: "Boiler", Status: domain.ComponentGood,
		InstallDate: "yesterday", LastMaintenanceDate: "soon", NextMaintenanceDate: "later",
	}
	for range 20 {
		_, err := s.AddComponent(context.Background(), bad)
		require.ErrorIs(t, err, ErrInvalid)
		assert.Contains(t, err.Error(), "installDate")
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	s := newTestStore(t, nil)
	snap := s.Snapshot()
	snap.Ships[0].Name = "Mutated"
	ship, _ := s.Ship("s1")
	assert.Equal(t, "Ever Given", ship.Name)
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	s := newTestStore(t, mem)
	_, err := s.DeleteShip(ctx, "s1")
	require.NoError(t, err)
	_, err = s.AddJob(ctx, sampleJob("temp"))
	require.NoError(t, err)

	require.NoError(t, s.Reset(ctx))
	assert.Equal(t, Seed(testNow), s.Snapshot())

	raw, ok, err := mem.Get(ctx, kv.KeyShips)
	require.NoError(t, err)
	require.True(t, ok)
	var ships []domain.Ship
	require.NoError(t, json.Unmarshal(raw, &ships))
	assert.Len(t, ships, 3)
}

func TestNewIDFormat(t *testing.T) {
	id := NewID("s")
	assert.True(t, strings.HasPrefix(id, "s-"))
	assert.NotEqual(t, id, NewID("s"))
}
