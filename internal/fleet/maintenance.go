package fleet

import (
	"context"
	"fmt"
	"time"

	"fleetline/internal/domain"
	"fleetline/internal/kv"
	"fleetline/internal/metrics"
)

func maintenanceMessage(c domain.Component, shipName string) string {
	if shipName == "" {
		shipName = c.ShipID
	}
	return fmt.Sprintf("%s on %s is overdue for maintenance (due %s)", c.Name, shipName, c.NextMaintenanceDate)
}

// maintenanceDrafts yields one maintenance_due draft per overdue component
// that has no unread notification with the same message.
func maintenanceDrafts(st State, now time.Time) []domain.NotificationDraft {
	names := map[string]string{}
	for _, s := range st.Ships {
		names[s.ID] = s.Name
	}
	pending := map[string]bool{}
	for _, n := range st.Notifications {
		if n.Type == domain.NotificationMaintenanceDue && !n.Read {
			pending[n.Message] = true
		}
	}
	var out []domain.NotificationDraft
	for _, c := range OverdueComponents(st.Components, now) {
		msg := maintenanceMessage(c, names[c.ShipID])
		if pending[msg] {
			continue
		}
		pending[msg] = true
		out = append(out, domain.NotificationDraft{
			Type:    domain.NotificationMaintenanceDue,
			Title:   "Maintenance Due",
			Message: msg,
		})
	}
	return out
}

// ScanMaintenanceDue flags overdue components with maintenance_due
// notifications in a single write. Running it again before the flags are
// read adds nothing.
func (s *Store) ScanMaintenanceDue(ctx context.Context) ([]domain.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	drafts := maintenanceDrafts(s.state, s.now())
	if len(drafts) == 0 {
		return nil, nil
	}
	next := s.state.Notifications
	created := make([]domain.Notification, 0, len(drafts))
	for _, d := range drafts {
		id, err := uniqueID(s, "n", next, notificationID)
		if err != nil {
			return nil, err
		}
		n := newNotification(id, s.timestamp(), d)
		next = prependNotification(next, n)
		created = append(created, n)
	}
	if err := s.saveNotifications(ctx, next); err != nil {
		return nil, err
	}
	for _, n := range created {
		metrics.NotificationsEmitted.WithLabelValues(string(n.Type)).Inc()
		s.record(kv.KeyNotifications, "add", n.ID)
	}
	return created, nil
}
