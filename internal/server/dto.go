package server

import (
	"fleetline/internal/domain"
	"fleetline/internal/fleet"
	"fleetline/internal/guard"
)

// Request payloads

type LoginRequest struct {
	Email    string `json:"email" example:"admin@example-domain"`
	Password string `json:"password" example:"admin123"`
}

type ShipRequest struct {
	Name      string            `json:"name"`
	IMO       string            `json:"imo,omitempty" example:"9811000"`
	Flag      string            `json:"flag,omitempty"`
	Status    domain.ShipStatus `json:"status" enum:"Active,Under Maintenance,Docked,Out of Service"`
	Type      string            `json:"type,omitempty"`
	YearBuilt int               `json:"yearBuilt,omitempty"`
	Length    float64           `json:"length,omitempty"`
	Owner     string            `json:"owner,omitempty"`
}

func (r ShipRequest) ship() domain.Ship {
	return domain.Ship{
		Name:      r.Name,
		IMO:       r.IMO,
		Flag:      r.Flag,
		Status:    r.Status,
		Type:      r.Type,
		YearBuilt: r.YearBuilt,
		Length:    r.Length,
		Owner:     r.Owner,
	}
}

type ComponentRequest struct {
	ShipID              string                 `json:"shipId"`
	Name                string                 `json:"name"`
	SerialNumber        string                 `json:"serialNumber,omitempty"`
	InstallDate         string                 `json:"installDate,omitempty" example:"2024-01-31"`
	LastMaintenanceDate string                 `json:"lastMaintenanceDate,omitempty"`
	NextMaintenanceDate string                 `json:"nextMaintenanceDate,omitempty"`
	Status              domain.ComponentStatus `json:"status" enum:"Good,Needs Attention,Critical"`
	Type                string                 `json:"type,omitempty"`
}

func (r ComponentRequest) component() domain.Component {
	return domain.Component{
		ShipID:              r.ShipID,
		Name:                r.Name,
		SerialNumber:        r.SerialNumber,
		InstallDate:         r.InstallDate,
		LastMaintenanceDate: r.LastMaintenanceDate,
		NextMaintenanceDate: r.NextMaintenanceDate,
		Status:              r.Status,
		Type:                r.Type,
	}
}

type JobRequest struct {
	ComponentID        string           `json:"componentId"`
	ShipID             string           `json:"shipId"`
	Type               domain.JobType   `json:"type" enum:"Inspection,Repair,Replacement,Routine Maintenance"`
	Priority           domain.Priority  `json:"priority" enum:"Low,Medium,High,Critical"`
	Status             domain.JobStatus `json:"status,omitempty" enum:"Open,In Progress,Completed,Cancelled"`
	AssignedEngineerID string           `json:"assignedEngineerId,omitempty"`
	ScheduledDate      string           `json:"scheduledDate,omitempty"`
	Title              string           `json:"title"`
	Description        string           `json:"description,omitempty"`
	EstimatedHours     float64          `json:"estimatedHours,omitempty"`
}

// job defaults the status to Open.
func (r JobRequest) job() domain.Job {
	status := r.Status
	if status == "" {
		status = domain.JobOpen
	}
	return domain.Job{
		ComponentID:        r.ComponentID,
		ShipID:             r.ShipID,
		Type:               r.Type,
		Priority:           r.Priority,
		Status:             status,
		AssignedEngineerID: r.AssignedEngineerID,
		ScheduledDate:      r.ScheduledDate,
		Title:              r.Title,
		Description:        r.Description,
		EstimatedHours:     r.EstimatedHours,
	}
}

// Response payloads

type LoginResponse struct {
	Token     string      `json:"token"`
	ExpiresAt string      `json:"expiresAt"`
	User      domain.User `json:"user"`
}

type RouteResponse struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

type MeResponse struct {
	User   domain.User     `json:"user"`
	Routes []RouteResponse `json:"routes"`
}

type ShipListResponse struct {
	Items []domain.Ship `json:"items"`
}

type ShipDetailResponse struct {
	Ship       domain.Ship        `json:"ship"`
	Summary    fleet.ShipSummary  `json:"summary"`
	Components []domain.Component `json:"components"`
	Jobs       []domain.Job       `json:"jobs"`
}

type ShipUpdateResponse struct {
	Found bool         `json:"found"`
	Ship  *domain.Ship `json:"ship,omitempty"`
}

type ComponentListResponse struct {
	Items []domain.Component `json:"items"`
}

type ComponentUpdateResponse struct {
	Found     bool              `json:"found"`
	Component *domain.Component `json:"component,omitempty"`
}

type JobListResponse struct {
	Items []domain.Job `json:"items"`
}

type JobUpdateResponse struct {
	Found bool        `json:"found"`
	Job   *domain.Job `json:"job,omitempty"`
}

type NotificationListResponse struct {
	Items  []domain.Notification `json:"items"`
	Unread int                   `json:"unread"`
}

type ReadAllResponse struct {
	Updated int `json:"updated"`
}

type ScanResponse struct {
	Created []domain.Notification `json:"created"`
}

type DashboardResponse struct {
	Stats          fleet.Stats      `json:"stats"`
	RecentActivity []fleet.Activity `json:"recentActivity"`
}

type CalendarResponse struct {
	Events []fleet.CalendarEvent `json:"events"`
}

func routeResponses(rs guard.Routes) []RouteResponse {
	out := make([]RouteResponse, 0, len(rs))
	for _, r := range rs {
		out = append(out, RouteResponse{Name: r.Name, Path: r.Path})
	}
	return out
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
