package server

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"fleetline/internal/domain"
	"fleetline/internal/fleet"
	"fleetline/internal/guard"
)

const routeComponents = "components"

func registerComponents(api huma.API, store *fleet.Store, routes guard.Routes) {
	huma.Register(api, huma.Operation{
		OperationID: "list-components",
		Method:      http.MethodGet,
		Path:        "/components",
		Summary:     "List components",
		Errors:      []int{http.StatusUnauthorized, http.StatusForbidden},
	}, func(ctx context.Context, input *struct {
		ShipID string `query:"ship_id"`
		Status string `query:"status"`
		Search string `query:"search"`
	}) (*struct {
		Body ComponentListResponse `json:"body"`
	}, error) {
		if err := authorize(ctx, routes, routeComponents); err != nil {
			return nil, handleError(err)
		}
		items := fleet.FilterComponents(store.Components(), input.ShipID, domain.ComponentStatus(input.Status), input.Search)
		return &struct {
			Body ComponentListResponse `json:"body"`
		}{Body: ComponentListResponse{Items: nonNil(items)}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-component",
		Method:      http.MethodGet,
		Path:        "/components/{id}",
		Summary:     "Get component",
		Errors:      []int{http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct {
		Body domain.Component `json:"body"`
	}, error) {
		if err := authorize(ctx, routes, routeComponents); err != nil {
			return nil, handleError(err)
		}
		c, ok := store.Component(input.ID)
		if !ok {
			return nil, handleError(notFound("component", input.ID))
		}
		return &struct {
			Body domain.Component `json:"body"`
		}{Body: c}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-component",
		Method:        http.MethodPost,
		Path:          "/components",
		Summary:       "Create component",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusInternalServerError},
	}, func(ctx context.Context, input *struct {
		Body ComponentRequest `json:"body"`
	}) (*struct {
		Body domain.Component `json:"body"`
	}, error) {
		if err := authorize(ctx, routes, routeComponents); err != nil {
			return nil, handleError(err)
		}
		c, err := store.AddComponent(ctx, input.Body.component())
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Component `json:"body"`
		}{Body: c}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-component",
		Method:      http.MethodPatch,
		Path:        "/components/{id}",
		Summary:     "Update component fields",
		Errors:      []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusInternalServerError},
	}, func(ctx context.Context, input *struct {
		ID   string                `path:"id"`
		Body domain.ComponentPatch `json:"body"`
	}) (*struct {
		Body ComponentUpdateResponse `json:"body"`
	}, error) {
		if err := authorize(ctx, routes, routeComponents); err != nil {
			return nil, handleError(err)
		}
		found, err := store.UpdateComponent(ctx, input.ID, input.Body)
		if err != nil {
			return nil, handleError(err)
		}
		resp := ComponentUpdateResponse{Found: found}
		if c, ok := store.Component(input.ID); ok {
			resp.Component = &c
		}
		return &struct {
			Body ComponentUpdateResponse `json:"body"`
		}{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-component",
		Method:        http.MethodDelete,
		Path:          "/components/{id}",
		Summary:       "Delete component; jobs are kept",
		DefaultStatus: http.StatusNoContent,
		Errors:        []int{http.StatusUnauthorized, http.StatusForbidden, http.StatusInternalServerError},
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct{}, error) {
		if err := authorize(ctx, routes, routeComponents); err != nil {
			return nil, handleError(err)
		}
		if _, err := store.DeleteComponent(ctx, input.ID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})
}
