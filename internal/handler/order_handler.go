package handler

import (
	"net/http"

	"restaurant-orders/internal/identity"
	"restaurant-orders/internal/model"
	"restaurant-orders/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// OrderHandler handles order-related HTTP requests.
type OrderHandler struct {
	service service.OrderService
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

type statusRequest struct {
	Status string `json:"estado" validate:"required"`
}

type commentRequest struct {
	Text string `json:"texto" validate:"required"`
}

// ListAll handles GET /api/orders.
func (h *OrderHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.ListAll(r.Context()))
}

// Mine handles GET /api/orders/mine.
func (h *OrderHandler) Mine(w http.ResponseWriter, r *http.Request) {
	p := currentPrincipal(r)
	if p == nil {
		respondError(w, model.ErrIdentityRequired, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, h.service.ListByCustomer(r.Context(), p.UID()))
}

// Update handles PATCH /api/orders/{id}.
func (h *OrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}

	var patch model.OrderPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		respondError(w, err, h.logger)
		return
	}

	if err := h.service.Update(r.Context(), id, patch); err != nil {
		respondError(w, err, h.logger)
		return
	}
	h.writeOrder(w, r, id)
}

// SetStatus handles PATCH /api/orders/{id}/status.
func (h *OrderHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}

	var req statusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, err, h.logger)
		return
	}
	status, err := model.ParseOrderStatus(req.Status)
	if err != nil {
		respondError(w, model.ErrInvalidStatus, h.logger)
		return
	}

	if err := h.service.SetStatus(r.Context(), id, status); err != nil {
		respondError(w, err, h.logger)
		return
	}
	h.writeOrder(w, r, id)
}

// Advance handles POST /api/orders/{id}/advance.
func (h *OrderHandler) Advance(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}

	order, err := h.service.Advance(r.Context(), id)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// Delete handles DELETE /api/orders/{id}.
func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		respondError(w, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Comment handles POST /api/orders/{id}/comment.
func (h *OrderHandler) Comment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}

	customer := identity.AsCustomer(currentPrincipal(r))
	if customer == nil {
		respondError(w, model.ErrIdentityRequired, h.logger)
		return
	}

	var req commentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, withValidationMessage(err, model.ErrCommentRequired.Message), h.logger)
		return
	}

	comment, err := h.service.Comment(r.Context(), customer, id, req.Text)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

func (h *OrderHandler) orderID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeValidation, "Identificador de pedido inválido", h.logger)
		return uuid.Nil, false
	}
	return id, true
}

func (h *OrderHandler) writeOrder(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	order := h.service.Get(r.Context(), id)
	if order == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, order)
}
