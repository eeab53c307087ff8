package handler

import (
	"net/http"
	"strconv"

	"restaurant-orders/internal/cart"
	"restaurant-orders/internal/identity"
	"restaurant-orders/internal/model"
	"restaurant-orders/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// CartHandler handles the signed-in customer's cart.
type CartHandler struct {
	carts    *cart.Registry
	catalog  service.CatalogService
	checkout *cart.Checkout
	logger   zerolog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(carts *cart.Registry, catalog service.CatalogService, checkout *cart.Checkout, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		carts:    carts,
		catalog:  catalog,
		checkout: checkout,
		logger:   logger.With().Str("handler", "cart").Logger(),
	}
}

type cartView struct {
	Items []model.OrderLine `json:"items"`
	Total decimal.Decimal   `json:"total"`
}

func newCartView(c *cart.Cart) cartView {
	return cartView{Items: c.Lines(), Total: c.Total()}
}

type addItemRequest struct {
	ProductID string `json:"productoId" validate:"required"`
}

// Get handles GET /api/cart.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	customer, ok := h.customer(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newCartView(h.carts.Get(customer.UID())))
}

// AddItem handles POST /api/cart/items. The product is copied from the catalogue at the time
// it is added.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	customer, ok := h.customer(w, r)
	if !ok {
		return
	}

	var req addItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, err, h.logger)
		return
	}

	product := h.catalog.Get(r.Context(), req.ProductID)
	if product == nil {
		respondError(w, model.ErrProductNotFound, h.logger)
		return
	}

	c := h.carts.Get(customer.UID())
	c.Add(*product)
	writeJSON(w, http.StatusOK, newCartView(c))
}

// RemoveItem handles DELETE /api/cart/items/{index}.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	customer, ok := h.customer(w, r)
	if !ok {
		return
	}

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		respondError(w, model.ErrCartIndex, h.logger)
		return
	}

	c := h.carts.Get(customer.UID())
	if err := c.Remove(index); err != nil {
		respondError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, newCartView(c))
}

// Checkout handles POST /api/cart/checkout.
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	customer, ok := h.customer(w, r)
	if !ok {
		return
	}

	receipt, err := h.checkout.Submit(r.Context(), h.carts.Get(customer.UID()), customer)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, receipt)
}

func (h *CartHandler) customer(w http.ResponseWriter, r *http.Request) (*identity.Customer, bool) {
	customer := identity.AsCustomer(currentPrincipal(r))
	if customer == nil {
		respondError(w, model.ErrIdentityRequired, h.logger)
		return nil, false
	}
	return customer, true
}
