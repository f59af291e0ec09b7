package fleet

import (
	"fmt"
	"slices"

	"fleetline/internal/domain"
)

// State is one snapshot of every collection. Transitions never modify a
// State's slices; they return new ones.
type State struct {
	Ships         []domain.Ship         `json:"ships"`
	Components    []domain.Component    `json:"components"`
	Jobs          []domain.Job          `json:"jobs"`
	Notifications []domain.Notification `json:"notifications"`
}

// Clone deep-copies s so callers cannot reach the store's slices.
func (s State) Clone() State {
	jobs := slices.Clone(s.Jobs)
	for i := range jobs {
		if jobs[i].CompletedDate != nil {
			d := *jobs[i].CompletedDate
			jobs[i].CompletedDate = &d
		}
	}
	return State{
		Ships:         slices.Clone(s.Ships),
		Components:    slices.Clone(s.Components),
		Jobs:          jobs,
		Notifications: slices.Clone(s.Notifications),
	}
}

func shipID(s domain.Ship) string           { return s.ID }
func componentID(c domain.Component) string { return c.ID }
func jobID(j domain.Job) string             { return j.ID }
func notificationID(n domain.Notification) string {
	return n.ID
}

func appendItem[T any](items []T, item T) []T {
	out := make([]T, len(items), len(items)+1)
	copy(out, items)
	return append(out, item)
}

func findItem[T any](items []T, id string, idOf func(T) string) (T, bool) {
	for _, it := range items {
		if idOf(it) == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}

// updateItem applies fn to every item with id. The input is returned
// unchanged when nothing matches.
func updateItem[T any](items []T, id string, idOf func(T) string, fn func(T) T) ([]T, bool) {
	if !slices.ContainsFunc(items, func(it T) bool { return idOf(it) == id }) {
		return items, false
	}
	out := slices.Clone(items)
	for i := range out {
		if idOf(out[i]) == id {
			out[i] = fn(out[i])
		}
	}
	return out, true
}

// removeItem drops every item with id. The input is returned unchanged when
// nothing matches.
func removeItem[T any](items []T, id string, idOf func(T) string) ([]T, bool) {
	if !slices.ContainsFunc(items, func(it T) bool { return idOf(it) == id }) {
		return items, false
	}
	out := make([]T, 0, len(items)-1)
	for _, it := range items {
		if idOf(it) != id {
			out = append(out, it)
		}
	}
	return out, true
}

func prependNotification(list []domain.Notification, n domain.Notification) []domain.Notification {
	out := make([]domain.Notification, 0, len(list)+1)
	out = append(out, n)
	return append(out, list...)
}

func jobCreatedNotice(j domain.Job) domain.NotificationDraft {
	return domain.NotificationDraft{
		Type:    domain.NotificationJobCreated,
		Title:   "New Job Created",
		Message: fmt.Sprintf("%s has been scheduled", j.Title),
	}
}

// jobUpdateNotice yields the notification a job patch emits: job_completed
// when the patch sets Completed, job_updated for any other status, none when
// the patch leaves status alone.
func jobUpdateNotice(p domain.JobPatch) *domain.NotificationDraft {
	if p.Status == nil {
		return nil
	}
	if *p.Status == domain.JobCompleted {
		return &domain.NotificationDraft{
			Type:    domain.NotificationJobCompleted,
			Title:   "Job Completed",
			Message: "Job has been marked as completed",
		}
	}
	return &domain.NotificationDraft{
		Type:    domain.NotificationJobUpdated,
		Title:   "Job Updated",
		Message: fmt.Sprintf("Job status updated to %s", *p.Status),
	}
}

// JobChange is the result of a pure job transition.
type JobChange struct {
	Jobs   []domain.Job
	Job    domain.Job
	Found  bool
	Notice *domain.NotificationDraft
}

func addJob(jobs []domain.Job, j domain.Job) JobChange {
	notice := jobCreatedNotice(j)
	return JobChange{Jobs: appendItem(jobs, j), Job: j, Found: true, Notice: &notice}
}

// updateJob merges p into job id. A missing id changes nothing and emits
// nothing.
func updateJob(jobs []domain.Job, id string, p domain.JobPatch) JobChange {
	next, found := updateItem(jobs, id, jobID, p.Apply)
	if !found {
		return JobChange{Jobs: jobs}
	}
	j, _ := findItem(next, id, jobID)
	return JobChange{Jobs: next, Job: j, Found: true, Notice: jobUpdateNotice(p)}
}

func newNotification(id, createdAt string, d domain.NotificationDraft) domain.Notification {
	return domain.Notification{
		ID:        id,
		Type:      d.Type,
		Title:     d.Title,
		Message:   d.Message,
		Read:      d.Read,
		CreatedAt: createdAt,
	}
}

// markRead flips notification id to read. changed is false when the id is
// missing or already read.
func markRead(list []domain.Notification, id string) (next []domain.Notification, found, changed bool) {
	n, ok := findItem(list, id, notificationID)
	if !ok || n.Read {
		return list, ok, false
	}
	next, _ = updateItem(list, id, notificationID, func(n domain.Notification) domain.Notification {
		n.Read = true
		return n
	})
	return next, true, true
}

func markAllRead(list []domain.Notification) ([]domain.Notification, int) {
	count := 0
	out := slices.Clone(list)
	for i := range out {
		if !out[i].Read {
			out[i].Read = true
			count++
		}
	}
	if count == 0 {
		return list, 0
	}
	return out, count
}
