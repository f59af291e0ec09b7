package server

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"fleetline/internal/domain"
	"fleetline/internal/fleet"
	"fleetline/internal/guard"
)

const (
	routeDashboard = "dashboard"
	routeCalendar  = "calendar"
)

// Notifications belong to the signed-in shell, so any role that can see the
// dashboard can read them.
func registerNotifications(api huma.API, store *fleet.Store, routes guard.Routes) {
	huma.Register(api, huma.Operation{
		OperationID: "list-notifications",
		Method:      http.MethodGet,
		Path:        "/notifications",
		Summary:     "List notifications, newest first",
		Errors:      []int{http.StatusUnauthorized, http.StatusForbidden},
	}, func(ctx context.Context, input *struct {
		Unread bool `query:"unread"`
	}) (*struct {
		Body NotificationListResponse `json:"body"`
	}, error) {
		if err := authorize(ctx, routes, routeDashboard); err != nil {
			return nil, handleError(err)
		}
		all := store.Notifications()
		items := all
		if input.Unread {
			items = nil
			for _, n := range all {
				if !n.Read {
					items = append(items, n)
				}
			}
		}
		return &struct {
			Body NotificationListResponse `json:"body"`
		}{Body: NotificationListResponse{Items: nonNil(items), Unread: fleet.UnreadCount(all)}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "read-notification",
		Method:        http.MethodPost,
		Path:          "/notifications/{id}/read",
		Summary:       "Mark notification read; an unknown id changes nothing",
		DefaultStatus: http.StatusNoContent,
		Errors:        []int{http.StatusUnauthorized, http.StatusForbidden, http.StatusInternalServerError},
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct{}, error) {
		if err := authorize(ctx, routes, routeDashboard); err != nil {
			return nil, handleError(err)
		}
		if _, err := store.MarkNotificationAsRead(ctx, input.ID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "read-all-notifications",
		Method:      http.MethodPost,
		Path:        "/notifications/read-all",
		Summary:     "Mark every notification read",
		Errors:      []int{http.StatusUnauthorized, http.StatusForbidden, http.StatusInternalServerError},
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body ReadAllResponse `json:"body"`
	}, error) {
		if err := authorize(ctx, routes, routeDashboard); err != nil {
			return nil, handleError(err)
		}
		n, err := store.MarkAllNotificationsRead(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body ReadAllResponse `json:"body"`
		}{Body: ReadAllResponse{Updated: n}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "scan-maintenance",
		Method:      http.MethodPost,
		Path:        "/maintenance/scan",
		Summary:     "Flag overdue components with maintenance_due notifications",
		Errors:      []int{http.StatusUnauthorized, http.StatusForbidden, http.StatusInternalServerError},
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body ScanResponse `json:"body"`
	}, error) {
		if err := authorize(ctx, routes, routeComponents); err != nil {
			return nil, handleError(err)
		}
		created, err := store.ScanMaintenanceDue(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body ScanResponse `json:"body"`
		}{Body: ScanResponse{Created: nonNil(created)}}, nil
	})
}

func registerDashboard(api huma.API, store *fleet.Store, routes guard.Routes) {
	huma.Register(api, huma.Operation{
		OperationID: "dashboard",
		Method:      http.MethodGet,
		Path:        "/dashboard",
		Summary:     "Fleet statistics and recent activity",
		Errors:      []int{http.StatusUnauthorized, http.StatusForbidden},
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body DashboardResponse `json:"body"`
	}, error) {
		if err := authorize(ctx, routes, routeDashboard); err != nil {
			return nil, handleError(err)
		}
		snap := store.Snapshot()
		return &struct {
			Body DashboardResponse `json:"body"`
		}{Body: DashboardResponse{
			Stats:          fleet.ComputeStats(snap, store.Now()),
			RecentActivity: nonNil(fleet.RecentActivity(snap)),
		}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "calendar",
		Method:      http.MethodGet,
		Path:        "/calendar",
		Summary:     "Scheduled jobs and maintenance dates in a date range",
		Errors:      []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden},
	}, func(ctx context.Context, input *struct {
		From string `query:"from" doc:"YYYY-MM-DD, inclusive"`
		To   string `query:"to" doc:"YYYY-MM-DD, inclusive"`
	}) (*struct {
		Body CalendarResponse `json:"body"`
	}, error) {
		if err := authorize(ctx, routes, routeCalendar); err != nil {
			return nil, handleError(err)
		}
		from, err := parseBound(input.From)
		if err != nil {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "from must be YYYY-MM-DD", nil)
		}
		to, err := parseBound(input.To)
		if err != nil {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "to must be YYYY-MM-DD", nil)
		}
		return &struct {
			Body CalendarResponse `json:"body"`
		}{Body: CalendarResponse{Events: nonNil(store.CalendarEvents(from, to))}}, nil
	})
}

func parseBound(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(domain.DateLayout, s)
}
