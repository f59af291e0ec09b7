package session

import (
	"fleetline/internal/config"
	"fleetline/internal/domain"
)

// Credential is a roster entry: a user plus the plaintext password it signs in with.
type Credential struct {
	User     domain.User
	Password string
}

// Roster is the fixed list of users allowed to sign in.
type Roster []Credential

// RosterFromConfig converts config roster entries.
func RosterFromConfig(entries []config.RosterEntry) Roster {
	r := make(Roster, 0, len(entries))
	for _, e := range entries {
		r = append(r, Credential{
			User:     domain.User{ID: e.ID, Role: e.Role, Email: e.Email, Name: e.Name},
			Password: e.Password,
		})
	}
	return r
}

// Authenticate returns the user whose email and password both match exactly.
func (r Roster) Authenticate(email, password string) (domain.User, bool) {
	for _, c := range r {
		if c.User.Email == email && c.Password == password {
			return c.User, true
		}
	}
	return domain.User{}, false
}

// Lookup finds a user by id.
func (r Roster) Lookup(id string) (domain.User, bool) {
	for _, c := range r {
		if c.User.ID == id {
			return c.User, true
		}
	}
	return domain.User{}, false
}

// ByRole lists roster users holding role, in roster order.
func (r Roster) ByRole(role domain.Role) []domain.User {
	var out []domain.User
	for _, c := range r {
		if c.User.Role == role {
			out = append(out, c.User)
		}
	}
	return out
}
