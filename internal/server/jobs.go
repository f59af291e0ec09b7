package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"

	"fleetline/internal/domain"
	"fleetline/internal/fleet"
	"fleetline/internal/guard"
)

const routeJobs = "jobs"

// noticeLost reports whether err is only a lost notification after a
// committed job write, logging it if so.
func noticeLost(logger *zap.Logger, err error, id string) bool {
	if !errors.Is(err, fleet.ErrNoticeNotSaved) {
		return false
	}
	logger.Warn("job notification not stored", zap.String("job_id", id), zap.Error(err))
	return true
}

func registerJobs(api huma.API, store *fleet.Store, routes guard.Routes, logger *zap.Logger) {
	huma.Register(api, huma.Operation{
		OperationID: "list-jobs",
		Method:      http.MethodGet,
		Path:        "/jobs",
		Summary:     "List jobs",
		Errors:      []int{http.StatusUnauthorized, http.StatusForbidden},
	}, func(ctx context.Context, input *struct {
		Search   string `query:"search"`
		Status   string `query:"status"`
		Priority string `query:"priority"`
		ShipID   string `query:"ship_id"`
	}) (*struct {
		Body JobListResponse `json:"body"`
	}, error) {
		if err := authorize(ctx, routes, routeJobs); err != nil {
			return nil, handleError(err)
		}
		items := store.Jobs()
		if input.ShipID != "" {
			items = fleet.JobsForShip(items, input.ShipID)
		}
		items = fleet.FilterJobs(items, input.Search, domain.JobStatus(input.Status), domain.Priority(input.Priority))
		return &struct {
			Body JobListResponse `json:"body"`
		}{Body: JobListResponse{Items: nonNil(items)}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-job",
		Method:      http.MethodGet,
		Path:        "/jobs/{id}",
		Summary:     "Get job",
		Errors:      []int{http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct {
		Body domain.Job `json:"body"`
	}, error) {
		if err := authorize(ctx, routes, routeJobs); err != nil {
			return nil, handleError(err)
		}
		j, ok := store.Job(input.ID)
		if !ok {
			return nil, handleError(notFound("job", input.ID))
		}
		return &struct {
			Body domain.Job `json:"body"`
		}{Body: j}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-job",
		Method:        http.MethodPost,
		Path:          "/jobs",
		Summary:       "Create job and emit a job_created notification",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusInternalServerError},
	}, func(ctx context.Context, input *struct {
		Body JobRequest `json:"body"`
	}) (*struct {
		Body domain.Job `json:"body"`
	}, error) {
		if err := authorize(ctx, routes, routeJobs); err != nil {
			return nil, handleError(err)
		}
		j, err := store.AddJob(ctx, input.Body.job())
		if err != nil && !noticeLost(logger, err, j.ID) {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Job `json:"body"`
		}{Body: j}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-job",
		Method:      http.MethodPatch,
		Path:        "/jobs/{id}",
		Summary:     "Update job fields; a status change emits one notification",
		Errors:      []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusInternalServerError},
	}, func(ctx context.Context, input *struct {
		ID   string          `path:"id"`
		Body domain.JobPatch `json:"body"`
	}) (*struct {
		Body JobUpdateResponse `json:"body"`
	}, error) {
		if err := authorize(ctx, routes, routeJobs); err != nil {
			return nil, handleError(err)
		}
		found, err := store.UpdateJob(ctx, input.ID, input.Body)
		if err != nil && !noticeLost(logger, err, input.ID) {
			return nil, handleError(err)
		}
		resp := JobUpdateResponse{Found: found}
		if j, ok := store.Job(input.ID); ok {
			resp.Job = &j
		}
		return &struct {
			Body JobUpdateResponse `json:"body"`
		}{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-job",
		Method:        http.MethodDelete,
		Path:          "/jobs/{id}",
		Summary:       "Delete job",
		DefaultStatus: http.StatusNoContent,
		Errors:        []int{http.StatusUnauthorized, http.StatusForbidden, http.StatusInternalServerError},
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct{}, error) {
		if err := authorize(ctx, routes, routeJobs); err != nil {
			return nil, handleError(err)
		}
		if _, err := store.DeleteJob(ctx, input.ID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})
}
