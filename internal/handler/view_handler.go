package handler

import (
	"net/http"

	"restaurant-orders/internal/cart"
	"restaurant-orders/internal/guard"
	"restaurant-orders/internal/model"
	"restaurant-orders/internal/service"

	"github.com/rs/zerolog"
)

// ViewHandler serves the view models of the client pages.
type ViewHandler struct {
	catalog        service.CatalogService
	orders         service.OrderService
	carts          *cart.Registry
	googleClientID string
	logger         zerolog.Logger
}

// NewViewHandler creates a new view handler.
func NewViewHandler(catalog service.CatalogService, orders service.OrderService, carts *cart.Registry, googleClientID string, logger zerolog.Logger) *ViewHandler {
	return &ViewHandler{
		catalog:        catalog,
		orders:         orders,
		carts:          carts,
		googleClientID: googleClientID,
		logger:         logger.With().Str("handler", "view").Logger(),
	}
}

type loginView struct {
	View           string `json:"vista"`
	ReturnURL      string `json:"returnUrl,omitempty"`
	GoogleClientID string `json:"googleClientId,omitempty"`
}

type customerView struct {
	View       string          `json:"vista"`
	User       model.Identity  `json:"usuario"`
	Products   []model.Product `json:"productos"`
	Categories []string        `json:"categorias"`
	Cart       cartView        `json:"carrito"`
	Orders     []model.Order   `json:"pedidos"`
}

type adminView struct {
	View     string          `json:"vista"`
	User     model.Identity  `json:"usuario"`
	Products []model.Product `json:"productos"`
	Orders   []model.Order   `json:"pedidos"`
}

type deniedView struct {
	View    string `json:"vista"`
	Message string `json:"mensaje"`
	Home    string `json:"inicio"`
}

// Root handles GET /.
func (h *ViewHandler) Root(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, guard.CustomerHome, http.StatusFound)
}

// NotFound sends unknown paths to the sign-in page.
func (h *ViewHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, guard.LoginPath, http.StatusFound)
}

// Login handles GET /login.
func (h *ViewHandler) Login(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, loginView{
		View:           "login",
		ReturnURL:      r.URL.Query().Get(guard.ReturnURLParam),
		GoogleClientID: h.googleClientID,
	})
}

// Customer handles GET /cliente.
func (h *ViewHandler) Customer(w http.ResponseWriter, r *http.Request) {
	p := currentPrincipal(r)
	if p == nil {
		respondError(w, model.ErrIdentityRequired, h.logger)
		return
	}

	ctx := r.Context()
	writeJSON(w, http.StatusOK, customerView{
		View:       "cliente",
		User:       p.Profile(),
		Products:   h.catalog.List(ctx),
		Categories: h.catalog.Categories(ctx),
		Cart:       newCartView(h.carts.Get(p.UID())),
		Orders:     h.orders.ListByCustomer(ctx, p.UID()),
	})
}

// Admin handles GET /admin.
func (h *ViewHandler) Admin(w http.ResponseWriter, r *http.Request) {
	p := currentPrincipal(r)
	if p == nil {
		respondError(w, model.ErrIdentityRequired, h.logger)
		return
	}

	ctx := r.Context()
	writeJSON(w, http.StatusOK, adminView{
		View:     "admin",
		User:     p.Profile(),
		Products: h.catalog.List(ctx),
		Orders:   h.orders.ListAll(ctx),
	})
}

// Denied handles GET /acceso-denegado.
func (h *ViewHandler) Denied(w http.ResponseWriter, r *http.Request) {
	home := guard.LoginPath
	if p := currentPrincipal(r); p != nil {
		home = guard.HomePath(p)
	}
	writeJSON(w, http.StatusForbidden, deniedView{
		View:    "acceso-denegado",
		Message: "No tienes permisos para acceder a esta página",
		Home:    home,
	})
}
