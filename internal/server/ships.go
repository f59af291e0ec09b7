package server

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"fleetline/internal/domain"
	"fleetline/internal/fleet"
	"fleetline/internal/guard"
)

const (
	routeShips       = "ships"
	routeShipsManage = "ships.manage"
)

func registerShips(api huma.API, store *fleet.Store, routes guard.Routes) {
	huma.Register(api, huma.Operation{
		OperationID: "list-ships",
		Method:      http.MethodGet,
		Path:        "/ships",
		Summary:     "List ships",
		Errors:      []int{http.StatusUnauthorized, http.StatusForbidden},
	}, func(ctx context.Context, input *struct {
		Search string `query:"search"`
		Status string `query:"status"`
	}) (*struct {
		Body ShipListResponse `json:"body"`
	}, error) {
		if err := authorize(ctx, routes, routeShips); err != nil {
			return nil, handleError(err)
		}
		items := fleet.FilterShips(store.Ships(), input.Search, domain.ShipStatus(input.Status))
		return &struct {
			Body ShipListResponse `json:"body"`
		}{Body: ShipListResponse{Items: nonNil(items)}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-ship",
		Method:      http.MethodGet,
		Path:        "/ships/{id}",
		Summary:     "Get ship with its components, jobs and summary",
		Errors:      []int{http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct {
		Body ShipDetailResponse `json:"body"`
	}, error) {
		if err := authorize(ctx, routes, routeShips); err != nil {
			return nil, handleError(err)
		}
		snap := store.Snapshot()
		ship, ok := store.Ship(input.ID)
		if !ok {
			return nil, handleError(notFound("ship", input.ID))
		}
		return &struct {
			Body ShipDetailResponse `json:"body"`
		}{Body: ShipDetailResponse{
			Ship:       ship,
			Summary:    fleet.SummarizeShip(snap, ship.ID),
			Components: nonNil(fleet.ComponentsForShip(snap.Components, ship.ID)),
			Jobs:       nonNil(fleet.JobsForShip(snap.Jobs, ship.ID)),
		}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-ship",
		Method:        http.MethodPost,
		Path:          "/ships",
		Summary:       "Create ship",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusInternalServerError},
	}, func(ctx context.Context, input *struct {
		Body ShipRequest `json:"body"`
	}) (*struct {
		Body domain.Ship `json:"body"`
	}, error) {
		if err := authorize(ctx, routes, routeShipsManage); err != nil {
			return nil, handleError(err)
		}
		ship, err := store.AddShip(ctx, input.Body.ship())
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Ship `json:"body"`
		}{Body: ship}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-ship",
		Method:      http.MethodPatch,
		Path:        "/ships/{id}",
		Summary:     "Update ship fields; an unknown id changes nothing",
		Errors:      []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusInternalServerError},
	}, func(ctx context.Context, input *struct {
		ID   string           `path:"id"`
		Body domain.ShipPatch `json:"body"`
	}) (*struct {
		Body ShipUpdateResponse `json:"body"`
	}, error) {
		if err := authorize(ctx, routes, routeShipsManage); err != nil {
			return nil, handleError(err)
		}
		found, err := store.UpdateShip(ctx, input.ID, input.Body)
		if err != nil {
			return nil, handleError(err)
		}
		resp := ShipUpdateResponse{Found: found}
		if ship, ok := store.Ship(input.ID); ok {
			resp.Ship = &ship
		}
		return &struct {
			Body ShipUpdateResponse `json:"body"`
		}{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-ship",
		Method:        http.MethodDelete,
		Path:          "/ships/{id}",
		Summary:       "Delete ship; components and jobs are kept",
		DefaultStatus: http.StatusNoContent,
		Errors:        []int{http.StatusUnauthorized, http.StatusForbidden, http.StatusInternalServerError},
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct{}, error) {
		if err := authorize(ctx, routes, routeShipsManage); err != nil {
			return nil, handleError(err)
		}
		if _, err := store.DeleteShip(ctx, input.ID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})
}
