// Package navigation arma el menú visible para cada rol.
package navigation

import (
	"github.com/jhoicas/branch-pos-api/internal/application/dto"
	"github.com/jhoicas/branch-pos-api/internal/application/identity"
)

// Section entrada del menú; AdminOnly la oculta para el rol user.
type Section struct {
	Key       string
	Title     string
	Path      string
	AdminOnly bool
}

// Sections menú completo en orden de aparición.
var Sections = []Section{
	{Key: "list-items", Title: "Productos", Path: "/products"},
	{Key: "add-product", Title: "Agregar producto", Path: "/products/new", AdminOnly: true},
	{Key: "update-stock", Title: "Actualizar stock", Path: "/products/stock", AdminOnly: true},
	{Key: "stock-alert", Title: "Alertas de stock", Path: "/stock-alerts", AdminOnly: true},
	{Key: "checkout", Title: "Caja", Path: "/checkout"},
	{Key: "sales-report", Title: "Reporte de ventas", Path: "/reports/sales"},
	{Key: "add-user", Title: "Agregar usuario", Path: "/users/new", AdminOnly: true},
	{Key: "modify-user", Title: "Modificar usuarios", Path: "/users", AdminOnly: true},
	{Key: "manage-branches", Title: "Sucursales", Path: "/branches", AdminOnly: true},
}

// Menu devuelve las secciones permitidas para la sesión.
func Menu(sess *identity.Session) []dto.MenuItemResponse {
	admin := sess.IsAdmin()
	out := make([]dto.MenuItemResponse, 0, len(Sections))
	for _, s := range Sections {
		if s.AdminOnly && !admin {
			continue
		}
		out = append(out, dto.MenuItemResponse{Key: s.Key, Title: s.Title, Path: s.Path})
	}
	return out
}

// Allowed indica si la sesión puede ver la sección key.
func Allowed(sess *identity.Session, key string) bool {
	for _, s := range Sections {
		if s.Key == key {
			return !s.AdminOnly || sess.IsAdmin()
		}
	}
	return false
}
