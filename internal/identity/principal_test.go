package identity

import (
	"testing"

	"restaurant-orders/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustPrincipal(t *testing.T, uid string, role model.Role) Principal {
	t.Helper()
	p, err := NewPrincipal(model.Identity{UID: uid, Email: uid + "@example.com", Role: role})
	require.NoError(t, err)
	return p
}

func TestNewPrincipal(t *testing.T) {
	tests := []struct {
		name    string
		role    model.Role
		want    string
		wantErr bool
	}{
		{name: "customer", role: model.RoleCustomer, want: "customer"},
		{name: "admin", role: model.RoleAdmin, want: "admin"},
		{name: "unknown role", role: "chef", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPrincipal(model.Identity{UID: "uid-1", Role: tt.role})
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, p)
				return
			}
			require.NoError(t, err)

			kind := Match(p,
				func(*Customer) string { return "customer" },
				func(*Admin) string { return "admin" },
			)
			assert.Equal(t, tt.want, kind)
			assert.Equal(t, tt.role, p.Role())
			assert.Equal(t, "uid-1", p.UID())
		})
	}
}

func TestHasRole(t *testing.T) {
	customer := mustPrincipal(t, "c", model.RoleCustomer)
	admin := mustPrincipal(t, "a", model.RoleAdmin)

	assert.False(t, HasRole(nil))
	assert.True(t, HasRole(customer))
	assert.True(t, HasRole(customer, model.RoleCustomer))
	assert.False(t, HasRole(customer, model.RoleAdmin))
	assert.True(t, HasRole(admin, model.RoleCustomer, model.RoleAdmin))
}

func TestAsVariants(t *testing.T) {
	customer := mustPrincipal(t, "c", model.RoleCustomer)
	admin := mustPrincipal(t, "a", model.RoleAdmin)

	assert.NotNil(t, AsCustomer(customer))
	assert.Nil(t, AsCustomer(admin))
	assert.Nil(t, AsCustomer(nil))
	assert.NotNil(t, AsAdmin(admin))
	assert.Nil(t, AsAdmin(customer))
}
