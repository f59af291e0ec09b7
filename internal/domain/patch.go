package domain

// Patches carry optional fields for partial updates. A nil field leaves the
// target untouched. Apply never mutates its receiver's target in place; it
// returns the merged copy.

type ShipPatch struct {
	Name      *string     `json:"name,omitempty"`
	IMO       *string     `json:"imo,omitempty"`
	Flag      *string     `json:"flag,omitempty"`
	Status    *ShipStatus `json:"status,omitempty"`
	Type      *string     `json:"type,omitempty"`
	YearBuilt *int        `json:"yearBuilt,omitempty"`
	Length    *float64    `json:"length,omitempty"`
	Owner     *string     `json:"owner,omitempty"`
}

func (p ShipPatch) Apply(s Ship) Ship {
	set(&s.Name, p.Name)
	set(&s.IMO, p.IMO)
	set(&s.Flag, p.Flag)
	set(&s.Status, p.Status)
	set(&s.Type, p.Type)
	set(&s.YearBuilt, p.YearBuilt)
	set(&s.Length, p.Length)
	set(&s.Owner, p.Owner)
	return s
}

type ComponentPatch struct {
	ShipID              *string          `json:"shipId,omitempty"`
	Name                *string          `json:"name,omitempty"`
	SerialNumber        *string          `json:"serialNumber,omitempty"`
	InstallDate         *string          `json:"installDate,omitempty"`
	LastMaintenanceDate *string          `json:"lastMaintenanceDate,omitempty"`
	NextMaintenanceDate *string          `json:"nextMaintenanceDate,omitempty"`
	Status              *ComponentStatus `json:"status,omitempty"`
	Type                *string          `json:"type,omitempty"`
}

func (p ComponentPatch) Apply(c Component) Component {
	set(&c.ShipID, p.ShipID)
	set(&c.Name, p.Name)
	set(&c.SerialNumber, p.SerialNumber)
	set(&c.InstallDate, p.InstallDate)
	set(&c.LastMaintenanceDate, p.LastMaintenanceDate)
	set(&c.NextMaintenanceDate, p.NextMaintenanceDate)
	set(&c.Status, p.Status)
	set(&c.Type, p.Type)
	return c
}

type JobPatch struct {
	ComponentID        *string    `json:"componentId,omitempty"`
	ShipID             *string    `json:"shipId,omitempty"`
	Type               *JobType   `json:"type,omitempty"`
	Priority           *Priority  `json:"priority,omitempty"`
	Status             *JobStatus `json:"status,omitempty"`
	AssignedEngineerID *string    `json:"assignedEngineerId,omitempty"`
	ScheduledDate      *string    `json:"scheduledDate,omitempty"`
	CompletedDate      *string    `json:"completedDate,omitempty"`
	Title              *string    `json:"title,omitempty"`
	Description        *string    `json:"description,omitempty"`
	EstimatedHours     *float64   `json:"estimatedHours,omitempty"`
}

func (p JobPatch) Apply(j Job) Job {
	set(&j.ComponentID, p.ComponentID)
	set(&j.ShipID, p.ShipID)
	set(&j.Type, p.Type)
	set(&j.Priority, p.Priority)
	set(&j.Status, p.Status)
	set(&j.AssignedEngineerID, p.AssignedEngineerID)
	set(&j.ScheduledDate, p.ScheduledDate)
	if p.CompletedDate != nil {
		v := *p.CompletedDate
		j.CompletedDate = &v
	}
	set(&j.Title, p.Title)
	set(&j.Description, p.Description)
	set(&j.EstimatedHours, p.EstimatedHours)
	return j
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// Ptr returns a pointer to v. Handy for building patches.
func Ptr[T any](v T) *T {
	return &v
}
