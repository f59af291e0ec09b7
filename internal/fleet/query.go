package fleet

import (
	"strings"

	"fleetline/internal/domain"
)

// FilterShips keeps ships whose name or flag contains search (any case) or
// whose IMO contains it, and whose status matches when status is set.
func FilterShips(ships []domain.Ship, search string, status domain.ShipStatus) []domain.Ship {
	q := strings.ToLower(search)
	var out []domain.Ship
	for _, s := range ships {
		if status != "" && s.Status != status {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(s.Name), q) &&
			!strings.Contains(strings.ToLower(s.Flag), q) &&
			!strings.Contains(s.IMO, search) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// FilterComponents narrows by ship, status and a case-insensitive match on
// name, serial number or type. Empty arguments match everything.
func FilterComponents(components []domain.Component, shipID string, status domain.ComponentStatus, search string) []domain.Component {
	q := strings.ToLower(search)
	var out []domain.Component
	for _, c := range components {
		if shipID != "" && c.ShipID != shipID {
			continue
		}
		if status != "" && c.Status != status {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(c.Name), q) &&
			!strings.Contains(strings.ToLower(c.SerialNumber), q) &&
			!strings.Contains(strings.ToLower(c.Type), q) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// FilterJobs matches search against title and description, any case.
func FilterJobs(jobs []domain.Job, search string, status domain.JobStatus, priority domain.Priority) []domain.Job {
	q := strings.ToLower(search)
	var out []domain.Job
	for _, j := range jobs {
		if status != "" && j.Status != status {
			continue
		}
		if priority != "" && j.Priority != priority {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(j.Title), q) &&
			!strings.Contains(strings.ToLower(j.Description), q) {
			continue
		}
		out = append(out, j)
	}
	return out
}

func ComponentsForShip(components []domain.Component, shipID string) []domain.Component {
	return FilterComponents(components, shipID, "", "")
}

func JobsForShip(jobs []domain.Job, shipID string) []domain.Job {
	var out []domain.Job
	for _, j := range jobs {
		if j.ShipID == shipID {
			out = append(out, j)
		}
	}
	return out
}

// ShipSummary counts what hangs off one ship.
type ShipSummary struct {
	Components         int `json:"components"`
	ActiveJobs         int `json:"activeJobs"`
	CriticalComponents int `json:"criticalComponents"`
}

// SummarizeShip counts components, open or in-progress jobs and critical
// components referencing shipID. The ship itself need not exist.
func SummarizeShip(st State, shipID string) ShipSummary {
	var sum ShipSummary
	for _, c := range ComponentsForShip(st.Components, shipID) {
		sum.Components++
		if c.Status == domain.ComponentCritical {
			sum.CriticalComponents++
		}
	}
	for _, j := range JobsForShip(st.Jobs, shipID) {
		if j.Status == domain.JobOpen || j.Status == domain.JobInProgress {
			sum.ActiveJobs++
		}
	}
	return sum
}

// Orphans lists records whose references point at nothing.
type Orphans struct {
	Components []domain.Component `json:"components"`
	Jobs       []domain.Job       `json:"jobs"`
}

func (o Orphans) Empty() bool {
	return len(o.Components) == 0 && len(o.Jobs) == 0
}

// FindOrphans reports components with a missing ship and jobs with a missing
// ship or component.
func FindOrphans(st State) Orphans {
	ships := map[string]bool{}
	for _, s := range st.Ships {
		ships[s.ID] = true
	}
	comps := map[string]bool{}
	var out Orphans
	for _, c := range st.Components {
		comps[c.ID] = true
		if !ships[c.ShipID] {
			out.Components = append(out.Components, c)
		}
	}
	for _, j := range st.Jobs {
		if !ships[j.ShipID] || !comps[j.ComponentID] {
			out.Jobs = append(out.Jobs, j)
		}
	}
	return out
}

func (s *Store) ShipSummary(shipID string) ShipSummary {
	return SummarizeShip(s.Snapshot(), shipID)
}

func (s *Store) Orphans() Orphans {
	return FindOrphans(s.Snapshot())
}
