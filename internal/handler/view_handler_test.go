package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"restaurant-orders/internal/cart"
	"restaurant-orders/internal/guard"
	"restaurant-orders/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestViewHandler_Redirects(t *testing.T) {
	h := NewViewHandler(new(MockCatalogService), new(MockOrderService), cart.NewRegistry(), "", zerolog.Nop())

	tests := []struct {
		name     string
		handler  http.HandlerFunc
		target   string
		location string
	}{
		{name: "root", handler: h.Root, target: "/", location: guard.CustomerHome},
		{name: "unknown path", handler: h.NotFound, target: "/no-existe", location: guard.LoginPath},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.handler(rec, newRequest(http.MethodGet, tt.target, nil, nil, nil))

			assert.Equal(t, http.StatusFound, rec.Code)
			assert.Equal(t, tt.location, rec.Header().Get("Location"))
		})
	}
}

func TestViewHandler_Login(t *testing.T) {
	h := NewViewHandler(new(MockCatalogService), new(MockOrderService), cart.NewRegistry(), "client-id.apps", zerolog.Nop())

	rec := httptest.NewRecorder()
	h.Login(rec, newRequest(http.MethodGet, "/login?returnUrl=%2Fadmin", nil, nil, nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var view loginView
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&view))
	assert.Equal(t, "login", view.View)
	assert.Equal(t, guard.AdminHome, view.ReturnURL)
	assert.Equal(t, "client-id.apps", view.GoogleClientID)
}

func TestViewHandler_Customer(t *testing.T) {
	catalog := new(MockCatalogService)
	catalog.On("List", mock.Anything).Return(testProducts())
	catalog.On("Categories", mock.Anything).Return([]string{model.CategoryStarters, model.CategoryMains})
	orders := new(MockOrderService)
	orders.On("ListByCustomer", mock.Anything, "uid-1").Return([]model.Order{*testOrder("uid-1", model.OrderStatusPending)})

	carts := cart.NewRegistry()
	carts.Get("uid-1").Add(testProducts()[1])
	h := NewViewHandler(catalog, orders, carts, "", zerolog.Nop())

	rec := httptest.NewRecorder()
	h.Customer(rec, newRequest(http.MethodGet, guard.CustomerHome, nil, newCustomer(t, "uid-1"), nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var view customerView
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&view))
	assert.Equal(t, "cliente", view.View)
	assert.Equal(t, "uid-1", view.User.UID)
	assert.Len(t, view.Products, 2)
	assert.Len(t, view.Categories, 2)
	assert.Len(t, view.Cart.Items, 1)
	assert.Len(t, view.Orders, 1)
	orders.AssertExpectations(t)
}

func TestViewHandler_Admin(t *testing.T) {
	catalog := new(MockCatalogService)
	catalog.On("List", mock.Anything).Return([]model.Product{})
	orders := new(MockOrderService)
	orders.On("ListAll", mock.Anything).Return([]model.Order{
		*testOrder("uid-1", model.OrderStatusPending),
		*testOrder("uid-2", model.OrderStatusDelivered),
	})
	h := NewViewHandler(catalog, orders, cart.NewRegistry(), "", zerolog.Nop())

	rec := httptest.NewRecorder()
	h.Admin(rec, newRequest(http.MethodGet, guard.AdminHome, nil, newAdmin(t, "admin-1"), nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var view adminView
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&view))
	assert.Equal(t, "admin", view.View)
	assert.Empty(t, view.Products)
	assert.Len(t, view.Orders, 2)
}

func TestViewHandler_Denied(t *testing.T) {
	h := NewViewHandler(new(MockCatalogService), new(MockOrderService), cart.NewRegistry(), "", zerolog.Nop())

	tests := []struct {
		name string
		home func(t *testing.T) *http.Request
		want string
	}{
		{
			name: "customer",
			home: func(t *testing.T) *http.Request {
				return newRequest(http.MethodGet, guard.DeniedPath, nil, newCustomer(t, "uid-1"), nil)
			},
			want: guard.CustomerHome,
		},
		{
			name: "admin",
			home: func(t *testing.T) *http.Request {
				return newRequest(http.MethodGet, guard.DeniedPath, nil, newAdmin(t, "admin-1"), nil)
			},
			want: guard.AdminHome,
		},
		{
			name: "anonymous",
			home: func(t *testing.T) *http.Request {
				return newRequest(http.MethodGet, guard.DeniedPath, nil, nil, nil)
			},
			want: guard.LoginPath,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.Denied(rec, tt.home(t))

			assert.Equal(t, http.StatusForbidden, rec.Code)
			var view deniedView
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&view))
			assert.Equal(t, "No tienes permisos para acceder a esta página", view.Message)
			assert.Equal(t, tt.want, view.Home)
		})
	}
}

type stubPinger struct {
	err error
}

func (s stubPinger) Ping(context.Context) error { return s.err }

func TestHealthHandler_Health(t *testing.T) {
	tests := []struct {
		name           string
		checks         map[string]Pinger
		expectedStatus int
		expectedBody   healthResponse
	}{
		{
			name:           "all services up",
			checks:         map[string]Pinger{"postgres": stubPinger{}, "redis": stubPinger{}},
			expectedStatus: http.StatusOK,
			expectedBody: healthResponse{
				Status:   "healthy",
				Services: map[string]string{"postgres": "ok", "redis": "ok"},
			},
		},
		{
			name:           "redis down",
			checks:         map[string]Pinger{"postgres": stubPinger{}, "redis": stubPinger{err: errors.New("dial tcp: refused")}},
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody: healthResponse{
				Status:   "degraded",
				Services: map[string]string{"postgres": "ok", "redis": "unavailable"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(tt.checks, zerolog.Nop())

			rec := httptest.NewRecorder()
			h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.expectedStatus, rec.Code)
			var body healthResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.expectedBody, body)
		})
	}
}

func TestRespondError_StatusMapping(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   string
	}{
		{name: "wrapped domain error", err: errors.Join(errors.New("ctx"), model.ErrStatusConflict), expectedStatus: http.StatusConflict, expectedCode: model.ErrCodeStatusConflict},
		{name: "cart index", err: model.ErrCartIndex, expectedStatus: http.StatusNotFound, expectedCode: model.ErrCodeCartIndex},
		{name: "unknown", err: errors.New("boom"), expectedStatus: http.StatusInternalServerError, expectedCode: model.ErrCodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			respondError(rec, tt.err, zerolog.Nop())

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Equal(t, tt.expectedCode, decodeError(t, rec).Error)
		})
	}
}
