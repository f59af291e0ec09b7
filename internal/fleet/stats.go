package fleet

import (
	"sort"
	"time"

	"fleetline/internal/domain"
)

// Stats summarises a fleet for the dashboard.
type Stats struct {
	TotalShips                 int `json:"totalShips"`
	ActiveShips                int `json:"activeShips"`
	ShipsUnderMaintenance      int `json:"shipsUnderMaintenance"`
	TotalComponents            int `json:"totalComponents"`
	ComponentsNeedingAttention int `json:"componentsNeedingAttention"`
	TotalJobs                  int `json:"totalJobs"`
	OpenJobs                   int `json:"openJobs"`
	InProgressJobs             int `json:"inProgressJobs"`
	CompletedJobs              int `json:"completedJobs"`
	CancelledJobs              int `json:"cancelledJobs"`
	HighPriorityJobs           int `json:"highPriorityJobs"`
	OverdueMaintenance         int `json:"overdueMaintenance"`
	UnreadNotifications        int `json:"unreadNotifications"`

	JobsByPriority map[domain.Priority]int `json:"jobsByPriority"`

	CompletionRate float64 `json:"completionRate"`
	ComplianceRate float64 `json:"complianceRate"`
}

// ComputeStats derives dashboard figures from st as of now.
func ComputeStats(st State, now time.Time) Stats {
	out := Stats{
		TotalShips:      len(st.Ships),
		TotalComponents: len(st.Components),
		TotalJobs:       len(st.Jobs),
		JobsByPriority:  map[domain.Priority]int{},
	}
	for _, p := range domain.Priorities {
		out.JobsByPriority[p] = 0
	}
	for _, s := range st.Ships {
		switch s.Status {
		case domain.ShipActive:
			out.ActiveShips++
		case domain.ShipUnderMaintenance:
			out.ShipsUnderMaintenance++
		}
	}
	for _, c := range st.Components {
		if c.Status == domain.ComponentNeedsAttention || c.Status == domain.ComponentCritical {
			out.ComponentsNeedingAttention++
		}
	}
	out.OverdueMaintenance = len(OverdueComponents(st.Components, now))
	for _, j := range st.Jobs {
		switch j.Status {
		case domain.JobOpen:
			out.OpenJobs++
		case domain.JobInProgress:
			out.InProgressJobs++
		case domain.JobCompleted:
			out.CompletedJobs++
		case domain.JobCancelled:
			out.CancelledJobs++
		}
		if j.Priority == domain.PriorityHigh || j.Priority == domain.PriorityCritical {
			out.HighPriorityJobs++
		}
		out.JobsByPriority[j.Priority]++
	}
	out.UnreadNotifications = UnreadCount(st.Notifications)
	out.CompletionRate = CompletionRate(st.Jobs)
	out.ComplianceRate = ComplianceRate(st.Components, now)
	return out
}

// CompletionRate is the percentage of jobs completed, 0 with no jobs.
func CompletionRate(jobs []domain.Job) float64 {
	if len(jobs) == 0 {
		return 0
	}
	done := 0
	for _, j := range jobs {
		if j.Status == domain.JobCompleted {
			done++
		}
	}
	return float64(done) / float64(len(jobs)) * 100
}

// ComplianceRate is the percentage of components not overdue, 100 with no
// components.
func ComplianceRate(components []domain.Component, now time.Time) float64 {
	if len(components) == 0 {
		return 100
	}
	overdue := len(OverdueComponents(components, now))
	return float64(len(components)-overdue) / float64(len(components)) * 100
}

// OverdueComponents returns the components whose next maintenance date is
// before now.
func OverdueComponents(components []domain.Component, now time.Time) []domain.Component {
	var out []domain.Component
	for _, c := range components {
		if c.Overdue(now) {
			out = append(out, c)
		}
	}
	return out
}

func UnreadCount(list []domain.Notification) int {
	n := 0
	for _, x := range list {
		if !x.Read {
			n++
		}
	}
	return n
}

// Activity is one line of the dashboard's recent activity feed.
type Activity struct {
	Kind     string `json:"kind"`
	RefID    string `json:"refId"`
	Title    string `json:"title"`
	Detail   string `json:"detail"`
	Status   string `json:"status,omitempty"`
	Priority string `json:"priority,omitempty"`
	Date     string `json:"date"`
}

const (
	ActivityJob          = "job"
	ActivityNotification = "notification"
)

// RecentActivity merges the first three jobs, dated by their scheduled date,
// with the two newest notifications, newest first, capped at five entries.
func RecentActivity(st State) []Activity {
	var out []Activity
	for _, j := range st.Jobs[:min(3, len(st.Jobs))] {
		out = append(out, Activity{
			Kind:     ActivityJob,
			RefID:    j.ID,
			Title:    j.Title,
			Detail:   j.Description,
			Status:   string(j.Status),
			Priority: string(j.Priority),
			Date:     j.ScheduledDate,
		})
	}
	for _, n := range st.Notifications[:min(2, len(st.Notifications))] {
		out = append(out, Activity{
			Kind:   ActivityNotification,
			RefID:  n.ID,
			Title:  n.Title,
			Detail: n.Message,
			Date:   n.CreatedAt,
		})
	}
	sort.SliceStable(out, func(a, b int) bool {
		return activityTime(out[a].Date).After(activityTime(out[b].Date))
	})
	return out[:min(5, len(out))]
}

// activityTime sorts unparseable dates last.
func activityTime(s string) time.Time {
	if t, err := domain.ParseDate(s); err == nil {
		return t
	}
	if t, err := time.Parse(domain.TimestampLayout, s); err == nil {
		return t
	}
	return time.Time{}
}

// CalendarEvent is a dated job or maintenance entry.
type CalendarEvent struct {
	Date     string `json:"date"`
	Kind     string `json:"kind"`
	RefID    string `json:"refId"`
	ShipID   string `json:"shipId"`
	ShipName string `json:"shipName,omitempty"`
	Title    string `json:"title"`
	Status   string `json:"status"`
	Priority string `json:"priority,omitempty"`
}

const (
	EventJob         = "job"
	EventMaintenance = "maintenance"
)

// CalendarEvents lists scheduled jobs and next maintenance dates that fall
// within [from, to], ordered by date. A zero bound is open. Entries with an
// unparseable date are skipped; a missing ship leaves ShipName empty.
func CalendarEvents(st State, from, to time.Time) []CalendarEvent {
	names := map[string]string{}
	for _, s := range st.Ships {
		names[s.ID] = s.Name
	}
	inRange := func(date string) bool {
		t, err := domain.ParseDate(date)
		if err != nil {
			return false
		}
		return (from.IsZero() || !t.Before(from)) && (to.IsZero() || !t.After(to))
	}
	var out []CalendarEvent
	for _, j := range st.Jobs {
		if !inRange(j.ScheduledDate) {
			continue
		}
		out = append(out, CalendarEvent{
			Date:     j.ScheduledDate,
			Kind:     EventJob,
			RefID:    j.ID,
			ShipID:   j.ShipID,
			ShipName: names[j.ShipID],
			Title:    j.Title,
			Status:   string(j.Status),
			Priority: string(j.Priority),
		})
	}
	for _, c := range st.Components {
		if !inRange(c.NextMaintenanceDate) {
			continue
		}
		out = append(out, CalendarEvent{
			Date:     c.NextMaintenanceDate,
			Kind:     EventMaintenance,
			RefID:    c.ID,
			ShipID:   c.ShipID,
			ShipName: names[c.ShipID],
			Title:    c.Name + " maintenance",
			Status:   string(c.Status),
		})
	}
	sort.SliceStable(out, func(a, b int) bool {
		ta, tb := activityTime(out[a].Date), activityTime(out[b].Date)
		if !ta.Equal(tb) {
			return ta.Before(tb)
		}
		return out[a].Title < out[b].Title
	})
	return out
}

// Stats computes dashboard figures for the current state.
func (s *Store) Stats() Stats {
	return ComputeStats(s.Snapshot(), s.now())
}

func (s *Store) RecentActivity() []Activity {
	return RecentActivity(s.Snapshot())
}

func (s *Store) CalendarEvents(from, to time.Time) []CalendarEvent {
	return CalendarEvents(s.Snapshot(), from, to)
}
