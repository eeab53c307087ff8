package identity

import (
	"fmt"

	"restaurant-orders/internal/model"
)

// Principal is an authenticated identity. It is either a *Customer or an *Admin; no other
// implementation exists outside this package.
type Principal interface {
	// Profile returns a copy of the profile behind the principal.
	Profile() model.Identity
	UID() string
	Role() model.Role

	sealed()
}

// Customer is a principal with the cliente role. Only customers can check out or
// comment on orders.
type Customer struct {
	profile model.Identity
}

func (c *Customer) Profile() model.Identity { return c.profile }
func (c *Customer) UID() string             { return c.profile.UID }
func (c *Customer) Role() model.Role        { return model.RoleCustomer }
func (c *Customer) sealed()                 {}

// Admin is a principal with the admin role. Only admins can manage the catalogue and
// move orders through the status pipeline.
type Admin struct {
	profile model.Identity
}

func (a *Admin) Profile() model.Identity { return a.profile }
func (a *Admin) UID() string             { return a.profile.UID }
func (a *Admin) Role() model.Role        { return model.RoleAdmin }
func (a *Admin) sealed()                 {}

// NewPrincipal builds the variant matching the profile's role.
func NewPrincipal(profile model.Identity) (Principal, error) {
	switch profile.Role {
	case model.RoleCustomer:
		return &Customer{profile: profile}, nil
	case model.RoleAdmin:
		return &Admin{profile: profile}, nil
	default:
		return nil, fmt.Errorf("unknown role %q for uid %s", profile.Role, profile.UID)
	}
}

// Match dispatches on the principal variant. A nil principal panics; callers check for
// anonymity first.
func Match[T any](p Principal, customer func(*Customer) T, admin func(*Admin) T) T {
	switch v := p.(type) {
	case *Customer:
		return customer(v)
	case *Admin:
		return admin(v)
	default:
		panic(fmt.Sprintf("identity: unexpected principal %T", p))
	}
}

// AsCustomer returns the principal as a customer, or nil when it is anything else.
func AsCustomer(p Principal) *Customer {
	c, _ := p.(*Customer)
	return c
}

// AsAdmin returns the principal as an admin, or nil when it is anything else.
func AsAdmin(p Principal) *Admin {
	a, _ := p.(*Admin)
	return a
}

// HasRole reports whether p is signed in with one of roles. An empty roles list accepts
// any signed-in principal.
func HasRole(p Principal, roles ...model.Role) bool {
	if p == nil {
		return false
	}
	if len(roles) == 0 {
		return true
	}
	for _, role := range roles {
		if p.Role() == role {
			return true
		}
	}
	return false
}
