// Package guard decides whether a user may enter a route.
package guard

import (
	"errors"
	"fmt"
	"slices"

	"fleetline/internal/config"
	"fleetline/internal/domain"
	"fleetline/internal/metrics"
)

const (
	LoginPath = "/login"
	HomePath  = "/"
)

// ForbiddenError indicates the user's role is not allowed on the route.
type ForbiddenError struct {
	Route string
	Role  domain.Role
}

func (e ForbiddenError) Error() string {
	return fmt.Sprintf("role %s may not access %s", e.Role, e.Route)
}

// UnauthenticatedError indicates no user is signed in. From is the location
// to return to after login.
type UnauthenticatedError struct {
	From string
}

func (e UnauthenticatedError) Error() string {
	return "authentication required"
}

var ErrUnknownRoute = errors.New("unknown route")

// CanAccess reports whether a user with role may enter a route allowing
// allowed. A nil role means nobody is signed in. An empty allowed list admits
// every signed-in role.
func CanAccess(role *domain.Role, allowed []domain.Role) bool {
	if role == nil {
		return false
	}
	if len(allowed) == 0 {
		return true
	}
	return slices.Contains(allowed, *role)
}

type Route struct {
	Name   string
	Path   string
	Roles  []domain.Role
	Public bool
	Hidden bool
}

type Routes []Route

// DefaultRoutes returns the routes of the built-in configuration.
func DefaultRoutes() Routes {
	return FromConfig(config.Default().Routes)
}

func FromConfig(entries []config.RouteEntry) Routes {
	rs := make(Routes, 0, len(entries))
	for _, e := range entries {
		rs = append(rs, Route{Name: e.Name, Path: e.Path, Roles: slices.Clone(e.Roles), Public: e.Public, Hidden: e.Hidden})
	}
	return rs
}

func (rs Routes) ByName(name string) (Route, bool) {
	for _, r := range rs {
		if r.Name == name {
			return r, true
		}
	}
	return Route{}, false
}

func (rs Routes) ByPath(path string) (Route, bool) {
	for _, r := range rs {
		if r.Path == path {
			return r, true
		}
	}
	return Route{}, false
}

// Check evaluates the named route for user. It returns nil when access is
// granted, UnauthenticatedError when nobody is signed in and ForbiddenError
// when the role is not allowed.
func (rs Routes) Check(user *domain.User, name string) error {
	r, ok := rs.ByName(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownRoute, name)
	}
	return r.check(user)
}

func (r Route) check(user *domain.User) error {
	if r.Public {
		return nil
	}
	var role *domain.Role
	if user != nil {
		role = &user.Role
	}
	if CanAccess(role, r.Roles) {
		return nil
	}
	if user == nil {
		metrics.AccessDenied.WithLabelValues(r.Name, "unauthenticated").Inc()
		return UnauthenticatedError{From: r.Path}
	}
	metrics.AccessDenied.WithLabelValues(r.Name, "forbidden").Inc()
	return ForbiddenError{Route: r.Name, Role: user.Role}
}

// Decision is the outcome of a navigation. When Allowed is false, Redirect
// names where to send the user; From carries the requested path through a
// login redirect.
type Decision struct {
	Allowed  bool
	Redirect string
	From     string
	NotFound bool
}

// Decide evaluates a navigation to path. Denied signed-out users go to the
// login page with the requested path preserved; denied signed-in users go home.
func (rs Routes) Decide(user *domain.User, path string) Decision {
	r, ok := rs.ByPath(path)
	if !ok {
		return Decision{NotFound: true}
	}
	err := r.check(user)
	var unauth UnauthenticatedError
	switch {
	case err == nil:
		return Decision{Allowed: true}
	case errors.As(err, &unauth):
		return Decision{Redirect: LoginPath, From: unauth.From}
	default:
		return Decision{Redirect: HomePath}
	}
}

// Visible lists the navigable routes user may enter, in table order.
func (rs Routes) Visible(user *domain.User) Routes {
	var out Routes
	for _, r := range rs {
		if r.Public || r.Hidden {
			continue
		}
		var role *domain.Role
		if user != nil {
			role = &user.Role
		}
		if CanAccess(role, r.Roles) {
			out = append(out, r)
		}
	}
	return out
}

// AfterLogin returns where to go once signed in: from if set, else home.
func AfterLogin(from string) string {
	if from == "" || from == LoginPath {
		return HomePath
	}
	return from
}
