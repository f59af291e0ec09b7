package domain

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar date format used for maintenance and scheduling dates.
const DateLayout = "2006-01-02"

// TimestampLayout is the format of notification timestamps.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

type Role string

const (
	RoleAdmin     Role = "Admin"
	RoleInspector Role = "Inspector"
	RoleEngineer  Role = "Engineer"
)

// Roles lists every role in display order.
var Roles = []Role{RoleAdmin, RoleInspector, RoleEngineer}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleInspector, RoleEngineer:
		return true
	}
	return false
}

// ParseRole accepts a role name in any case.
func ParseRole(s string) (Role, error) {
	for _, r := range Roles {
		if strings.EqualFold(string(r), s) {
			return r, nil
		}
	}
	return "", fmt.Errorf("invalid role %q", s)
}

type ShipStatus string

const (
	ShipActive           ShipStatus = "Active"
	ShipUnderMaintenance ShipStatus = "Under Maintenance"
	ShipDocked           ShipStatus = "Docked"
	ShipOutOfService     ShipStatus = "Out of Service"
)

var ShipStatuses = []ShipStatus{ShipActive, ShipUnderMaintenance, ShipDocked, ShipOutOfService}

func (s ShipStatus) Valid() bool {
	for _, v := range ShipStatuses {
		if v == s {
			return true
		}
	}
	return false
}

type ComponentStatus string

const (
	ComponentGood           ComponentStatus = "Good"
	ComponentNeedsAttention ComponentStatus = "Needs Attention"
	ComponentCritical       ComponentStatus = "Critical"
)

var ComponentStatuses = []ComponentStatus{ComponentGood, ComponentNeedsAttention, ComponentCritical}

func (s ComponentStatus) Valid() bool {
	for _, v := range ComponentStatuses {
		if v == s {
			return true
		}
	}
	return false
}

type JobType string

const (
	JobInspection         JobType = "Inspection"
	JobRepair             JobType = "Repair"
	JobReplacement        JobType = "Replacement"
	JobRoutineMaintenance JobType = "Routine Maintenance"
)

var JobTypes = []JobType{JobInspection, JobRepair, JobReplacement, JobRoutineMaintenance}

func (t JobType) Valid() bool {
	for _, v := range JobTypes {
		if v == t {
			return true
		}
	}
	return false
}

type Priority string

const (
	PriorityLow      Priority = "Low"
	PriorityMedium   Priority = "Medium"
	PriorityHigh     Priority = "High"
	PriorityCritical Priority = "Critical"
)

var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}

func (p Priority) Valid() bool {
	for _, v := range Priorities {
		if v == p {
			return true
		}
	}
	return false
}

type JobStatus string

const (
	JobOpen       JobStatus = "Open"
	JobInProgress JobStatus = "In Progress"
	JobCompleted  JobStatus = "Completed"
	JobCancelled  JobStatus = "Cancelled"
)

var JobStatuses = []JobStatus{JobOpen, JobInProgress, JobCompleted, JobCancelled}

func (s JobStatus) Valid() bool {
	for _, v := range JobStatuses {
		if v == s {
			return true
		}
	}
	return false
}

type NotificationType string

const (
	NotificationJobCreated     NotificationType = "job_created"
	NotificationJobUpdated     NotificationType = "job_updated"
	NotificationJobCompleted   NotificationType = "job_completed"
	NotificationMaintenanceDue NotificationType = "maintenance_due"
)

func (t NotificationType) Valid() bool {
	switch t {
	case NotificationJobCreated, NotificationJobUpdated, NotificationJobCompleted, NotificationMaintenanceDue:
		return true
	}
	return false
}

type Ship struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	IMO       string     `json:"imo"`
	Flag      string     `json:"flag"`
	Status    ShipStatus `json:"status"`
	Type      string     `json:"type"`
	YearBuilt int        `json:"yearBuilt"`
	Length    float64    `json:"length"`
	Owner     string     `json:"owner"`
}

type Component struct {
	ID                  string          `json:"id"`
	ShipID              string          `json:"shipId"`
	Name                string          `json:"name"`
	SerialNumber        string          `json:"serialNumber"`
	InstallDate         string          `json:"installDate"`
	LastMaintenanceDate string          `json:"lastMaintenanceDate"`
	NextMaintenanceDate string          `json:"nextMaintenanceDate"`
	Status              ComponentStatus `json:"status"`
	Type                string          `json:"type"`
}

// Overdue reports whether the next maintenance date lies before now.
// An unparseable date is never overdue.
func (c Component) Overdue(now time.Time) bool {
	next, err := ParseDate(c.NextMaintenanceDate)
	if err != nil {
		return false
	}
	return next.Before(now)
}

type Job struct {
	ID                 string    `json:"id"`
	ComponentID        string    `json:"componentId"`
	ShipID             string    `json:"shipId"`
	Type               JobType   `json:"type"`
	Priority           Priority  `json:"priority"`
	Status             JobStatus `json:"status"`
	AssignedEngineerID string    `json:"assignedEngineerId"`
	ScheduledDate      string    `json:"scheduledDate"`
	CompletedDate      *string   `json:"completedDate,omitempty"`
	Title              string    `json:"title"`
	Description        string    `json:"description"`
	EstimatedHours     float64   `json:"estimatedHours"`
}

type Notification struct {
	ID        string           `json:"id"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Read      bool             `json:"read"`
	CreatedAt string           `json:"createdAt"`
}

// NotificationDraft is a notification before the store assigns id and timestamp.
type NotificationDraft struct {
	Type    NotificationType `json:"type"`
	Title   string           `json:"title"`
	Message string           `json:"message"`
	Read    bool             `json:"read"`
}

// User is the signed-in identity. It never carries a password.
type User struct {
	ID    string `json:"id"`
	Role  Role   `json:"role"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// ParseDate parses a calendar date, falling back to a full timestamp.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
