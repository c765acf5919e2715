package navigation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/branch-pos-api/internal/application/identity"
	"github.com/jhoicas/branch-pos-api/internal/application/navigation"
	"github.com/jhoicas/branch-pos-api/internal/domain/entity"
)

func keys(sess *identity.Session) []string {
	var out []string
	for _, it := range navigation.Menu(sess) {
		out = append(out, it.Key)
	}
	return out
}

func TestMenu_UsuarioVeSoloSeccionesBasicas(t *testing.T) {
	user := &identity.Session{Role: entity.RoleUser}
	assert.Equal(t, []string{"list-items", "checkout", "sales-report"}, keys(user))
}

func TestMenu_AdminVeTodo(t *testing.T) {
	admin := &identity.Session{Role: entity.RoleAdmin}
	assert.Len(t, keys(admin), len(navigation.Sections))
}

func TestAllowed(t *testing.T) {
	user := &identity.Session{Role: entity.RoleUser}
	admin := &identity.Session{Role: entity.RoleAdmin}

	for _, key := range []string{"add-user", "add-product", "stock-alert", "update-stock", "modify-user", "manage-branches"} {
		assert.False(t, navigation.Allowed(user, key), key)
		assert.True(t, navigation.Allowed(admin, key), key)
	}
	assert.True(t, navigation.Allowed(user, "checkout"))
	assert.False(t, navigation.Allowed(admin, "inexistente"))
	assert.False(t, navigation.Allowed(nil, "add-user"))
}
