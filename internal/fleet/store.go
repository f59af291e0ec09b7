// Package fleet owns the ships, components, jobs and notifications of a
// workspace. Every mutation computes the next collection with a pure
// transition, writes it through to the key-value store and only then
// replaces the in-memory copy.
package fleet

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fleetline/internal/domain"
	"fleetline/internal/kv"
	"fleetline/internal/logging"
	"fleetline/internal/metrics"
)

// ErrCorrupt is returned by Open when a persisted collection cannot be decoded
// and the policy is CorruptFail.
var ErrCorrupt = errors.New("corrupt persisted collection")

// ErrNoticeNotSaved marks a job write that was committed while the
// notification it implies could not be stored.
var ErrNoticeNotSaved = errors.New("job saved but notification not stored")

// Policies for a persisted collection that fails to decode.
const (
	CorruptFail = "fail"
	CorruptSeed = "seed"
)

// Options configure a Store. Zero values fall back to defaults.
type Options struct {
	Logger    *zap.Logger
	Now       func() time.Time
	NewID     func(prefix string) string
	OnCorrupt string
}

type Store struct {
	mu     sync.Mutex
	kv     kv.Store
	logger *zap.Logger
	now    func() time.Time
	newID  func(prefix string) string
	state  State
}

// Open loads every collection from store. A collection that was never
// persisted starts from the seed data and is not written back until its
// first mutation.
func Open(ctx context.Context, store kv.Store, opts Options) (*Store, error) {
	s := &Store{
		kv:     store,
		logger: logging.OrNop(opts.Logger),
		now:    opts.Now,
		newID:  opts.NewID,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = NewID
	}
	policy := opts.OnCorrupt
	if policy == "" {
		policy = CorruptFail
	}
	seed := Seed(s.now())
	var err error
	if s.state.Ships, err = loadCollection(ctx, s, kv.KeyShips, seed.Ships, policy); err != nil {
		return nil, err
	}
	if s.state.Components, err = loadCollection(ctx, s, kv.KeyComponents, seed.Components, policy); err != nil {
		return nil, err
	}
	if s.state.Jobs, err = loadCollection(ctx, s, kv.KeyJobs, seed.Jobs, policy); err != nil {
		return nil, err
	}
	if s.state.Notifications, err = loadCollection(ctx, s, kv.KeyNotifications, seed.Notifications, policy); err != nil {
		return nil, err
	}
	metrics.UnreadNotifications.Set(float64(UnreadCount(s.state.Notifications)))
	return s, nil
}

func loadCollection[T any](ctx context.Context, s *Store, key string, seed []T, policy string) ([]T, error) {
	var items []T
	ok, err := kv.Load(ctx, s.kv, key, &items)
	switch {
	case errors.Is(err, kv.ErrMalformed):
		if policy != CorruptSeed {
			return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
		}
		s.logger.Warn("seeding over malformed collection", zap.String("collection", key), zap.Error(err))
		return seed, nil
	case err != nil:
		return nil, err
	case !ok:
		return seed, nil
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// NewID returns prefix followed by a time-ordered UUID.
func NewID(prefix string) string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return prefix + "-" + id.String()
}

const maxIDAttempts = 16

func uniqueID[T any](s *Store, prefix string, items []T, idOf func(T) string) (string, error) {
	for i := 0; i < maxIDAttempts; i++ {
		id := s.newID(prefix)
		if _, taken := findItem(items, id, idOf); !taken && id != "" {
			return id, nil
		}
	}
	return "", fmt.Errorf("could not allocate a unique %s id", prefix)
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format(domain.TimestampLayout)
}

// Now returns the store's clock reading.
func (s *Store) Now() time.Time {
	return s.now()
}

// Snapshot returns a deep copy of every collection.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

func (s *Store) Ships() []domain.Ship {
	return s.Snapshot().Ships
}

func (s *Store) Components() []domain.Component {
	return s.Snapshot().Components
}

func (s *Store) Jobs() []domain.Job {
	return s.Snapshot().Jobs
}

func (s *Store) Notifications() []domain.Notification {
	return s.Snapshot().Notifications
}

func (s *Store) Ship(id string) (domain.Ship, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return findItem(s.state.Ships, id, shipID)
}

func (s *Store) Component(id string) (domain.Component, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return findItem(s.state.Components, id, componentID)
}

func (s *Store) Job(id string) (domain.Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := findItem(s.state.Jobs, id, jobID)
	if ok && j.CompletedDate != nil {
		d := *j.CompletedDate
		j.CompletedDate = &d
	}
	return j, ok
}

func (s *Store) record(collection, op, id string) {
	metrics.MutationsTotal.WithLabelValues(collection, op).Inc()
	s.logger.Debug("mutation", zap.String("collection", collection), zap.String("op", op), zap.String("id", id))
}

// AddShip assigns an id to ship and appends it.
func (s *Store) AddShip(ctx context.Context, ship domain.Ship) (domain.Ship, error) {
	if err := validateShip(ship); err != nil {
		return domain.Ship{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id, err := uniqueID(s, "s", s.state.Ships, shipID)
	if err != nil {
		return domain.Ship{}, err
	}
	ship.ID = id
	next := appendItem(s.state.Ships, ship)
	if err := kv.Save(ctx, s.kv, kv.KeyShips, next); err != nil {
		return domain.Ship{}, err
	}
	s.state.Ships = next
	s.record(kv.KeyShips, "add", id)
	return ship, nil
}

// UpdateShip merges p into ship id. It reports false, without writing, when
// no ship has that id.
func (s *Store) UpdateShip(ctx context.Context, id string, p domain.ShipPatch) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := findItem(s.state.Ships, id, shipID)
	if !ok {
		return false, nil
	}
	if err := validateShip(p.Apply(cur)); err != nil {
		return true, err
	}
	next, _ := updateItem(s.state.Ships, id, shipID, p.Apply)
	if err := kv.Save(ctx, s.kv, kv.KeyShips, next); err != nil {
		return true, err
	}
	s.state.Ships = next
	s.record(kv.KeyShips, "update", id)
	return true, nil
}

// DeleteShip removes ship id. Components and jobs that reference it are kept.
func (s *Store) DeleteShip(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, found := removeItem(s.state.Ships, id, shipID)
	if !found {
		return false, nil
	}
	if err := kv.Save(ctx, s.kv, kv.KeyShips, next); err != nil {
		return true, err
	}
	s.state.Ships = next
	s.record(kv.KeyShips, "delete", id)
	return true, nil
}

func (s *Store) AddComponent(ctx context.Context, c domain.Component) (domain.Component, error) {
	if err := validateComponent(c); err != nil {
		return domain.Component{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id, err := uniqueID(s, "c", s.state.Components, componentID)
	if err != nil {
		return domain.Component{}, err
	}
	c.ID = id
	next := appendItem(s.state.Components, c)
	if err := kv.Save(ctx, s.kv, kv.KeyComponents, next); err != nil {
		return domain.Component{}, err
	}
	s.state.Components = next
	s.record(kv.KeyComponents, "add", id)
	return c, nil
}

func (s *Store) UpdateComponent(ctx context.Context, id string, p domain.ComponentPatch) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := findItem(s.state.Components, id, componentID)
	if !ok {
		return false, nil
	}
	if err := validateComponent(p.Apply(cur)); err != nil {
		return true, err
	}
	next, _ := updateItem(s.state.Components, id, componentID, p.Apply)
	if err := kv.Save(ctx, s.kv, kv.KeyComponents, next); err != nil {
		return true, err
	}
	s.state.Components = next
	s.record(kv.KeyComponents, "update", id)
	return true, nil
}

func (s *Store) DeleteComponent(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, found := removeItem(s.state.Components, id, componentID)
	if !found {
		return false, nil
	}
	if err := kv.Save(ctx, s.kv, kv.KeyComponents, next); err != nil {
		return true, err
	}
	s.state.Components = next
	s.record(kv.KeyComponents, "delete", id)
	return true, nil
}

// AddJob appends job and emits a job_created notification naming its title.
// An error wrapping ErrNoticeNotSaved comes with the committed job.
func (s *Store) AddJob(ctx context.Context, job domain.Job) (domain.Job, error) {
	if err := validateJob(job); err != nil {
		return domain.Job{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id, err := uniqueID(s, "j", s.state.Jobs, jobID)
	if err != nil {
		return domain.Job{}, err
	}
	job.ID = id
	change := addJob(s.state.Jobs, job)
	err = s.commitJobs(ctx, change)
	if err != nil && !errors.Is(err, ErrNoticeNotSaved) {
		return domain.Job{}, err
	}
	s.record(kv.KeyJobs, "add", id)
	return change.Job, err
}

// UpdateJob merges p into job id. A patch that sets the status emits exactly
// one notification. A missing id writes and emits nothing.
func (s *Store) UpdateJob(ctx context.Context, id string, p domain.JobPatch) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := findItem(s.state.Jobs, id, jobID)
	if !ok {
		return false, nil
	}
	if err := validateJob(p.Apply(cur)); err != nil {
		return true, err
	}
	change := updateJob(s.state.Jobs, id, p)
	err := s.commitJobs(ctx, change)
	if err != nil && !errors.Is(err, ErrNoticeNotSaved) {
		return true, err
	}
	s.record(kv.KeyJobs, "update", id)
	return true, err
}

// DeleteJob removes job id without emitting a notification.
func (s *Store) DeleteJob(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, found := removeItem(s.state.Jobs, id, jobID)
	if !found {
		return false, nil
	}
	if err := kv.Save(ctx, s.kv, kv.KeyJobs, next); err != nil {
		return true, err
	}
	s.state.Jobs = next
	s.record(kv.KeyJobs, "delete", id)
	return true, nil
}

// commitJobs persists jobs first, then the notification it implies. The job
// write stays in place when the notification write fails. Caller holds mu.
func (s *Store) commitJobs(ctx context.Context, change JobChange) error {
	if err := kv.Save(ctx, s.kv, kv.KeyJobs, change.Jobs); err != nil {
		return err
	}
	s.state.Jobs = change.Jobs
	if change.Notice == nil {
		return nil
	}
	if _, err := s.addNotification(ctx, *change.Notice); err != nil {
		return fmt.Errorf("%w: %w", ErrNoticeNotSaved, err)
	}
	return nil
}

// AddNotification stamps d with an id and the current time and puts it first.
func (s *Store) AddNotification(ctx context.Context, d domain.NotificationDraft) (domain.Notification, error) {
	if err := validateDraft(d); err != nil {
		return domain.Notification{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addNotification(ctx, d)
}

func (s *Store) addNotification(ctx context.Context, d domain.NotificationDraft) (domain.Notification, error) {
	id, err := uniqueID(s, "n", s.state.Notifications, notificationID)
	if err != nil {
		return domain.Notification{}, err
	}
	n := newNotification(id, s.timestamp(), d)
	next := prependNotification(s.state.Notifications, n)
	if err := s.saveNotifications(ctx, next); err != nil {
		return domain.Notification{}, err
	}
	metrics.NotificationsEmitted.WithLabelValues(string(n.Type)).Inc()
	s.record(kv.KeyNotifications, "add", id)
	return n, nil
}

func (s *Store) saveNotifications(ctx context.Context, next []domain.Notification) error {
	if err := kv.Save(ctx, s.kv, kv.KeyNotifications, next); err != nil {
		return err
	}
	s.state.Notifications = next
	metrics.UnreadNotifications.Set(float64(UnreadCount(next)))
	return nil
}

// MarkNotificationAsRead flips notification id to read. It reports whether
// the id exists; an already read notification is not rewritten.
func (s *Store) MarkNotificationAsRead(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, found, changed := markRead(s.state.Notifications, id)
	if !changed {
		return found, nil
	}
	if err := s.saveNotifications(ctx, next); err != nil {
		return true, err
	}
	s.record(kv.KeyNotifications, "read", id)
	return true, nil
}

// MarkAllNotificationsRead flips every unread notification and returns how
// many changed.
func (s *Store) MarkAllNotificationsRead(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, count := markAllRead(s.state.Notifications)
	if count == 0 {
		return 0, nil
	}
	if err := s.saveNotifications(ctx, next); err != nil {
		return 0, err
	}
	s.record(kv.KeyNotifications, "read_all", "")
	return count, nil
}

// Reset replaces every collection with fresh seed data and persists it.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	seed := Seed(s.now())
	writes := []struct {
		key string
		v   any
	}{
		{kv.KeyShips, seed.Ships},
		{kv.KeyComponents, seed.Components},
		{kv.KeyJobs, seed.Jobs},
		{kv.KeyNotifications, seed.Notifications},
	}
	for _, w := range writes {
		if err := kv.Save(ctx, s.kv, w.key, w.v); err != nil {
			return err
		}
	}
	s.state = seed
	metrics.UnreadNotifications.Set(float64(UnreadCount(seed.Notifications)))
	s.record("all", "reset", "")
	return nil
}
