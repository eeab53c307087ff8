package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"restaurant-orders/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testOrder(uid string, status model.OrderStatus) *model.Order {
	lines := []model.OrderLine{{Product: testProducts()[0], Quantity: 2}}
	return &model.Order{
		ID:          uuid.New(),
		CustomerUID: uid,
		Status:      status,
		Items:       lines,
		Total:       model.SumLines(lines),
		CreatedAt:   time.Now().UTC(),
	}
}

func TestOrderHandler_ListAll(t *testing.T) {
	svc := new(MockOrderService)
	svc.On("ListAll", mock.Anything).Return([]model.Order{
		*testOrder("uid-1", model.OrderStatusPending),
		*testOrder("uid-2", model.OrderStatusReady),
	})
	h := NewOrderHandler(svc, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.ListAll(rec, newRequest(http.MethodGet, "/api/orders", nil, newAdmin(t, "admin-1"), nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var orders []model.Order
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&orders))
	assert.Len(t, orders, 2)
	assert.True(t, decimal.NewFromInt(50000).Equal(orders[0].Total))
}

func TestOrderHandler_Mine(t *testing.T) {
	t.Run("lists the caller's orders", func(t *testing.T) {
		svc := new(MockOrderService)
		svc.On("ListByCustomer", mock.Anything, "uid-1").Return([]model.Order{*testOrder("uid-1", model.OrderStatusPending)})
		h := NewOrderHandler(svc, zerolog.Nop())

		rec := httptest.NewRecorder()
		h.Mine(rec, newRequest(http.MethodGet, "/api/orders/mine", nil, newCustomer(t, "uid-1"), nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		svc.AssertExpectations(t)
	})

	t.Run("anonymous", func(t *testing.T) {
		svc := new(MockOrderService)
		h := NewOrderHandler(svc, zerolog.Nop())

		rec := httptest.NewRecorder()
		h.Mine(rec, newRequest(http.MethodGet, "/api/orders/mine", nil, nil, nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, model.ErrCodeIdentityRequired, decodeError(t, rec).Error)
	})
}

func TestOrderHandler_SetStatus(t *testing.T) {
	order := testOrder("uid-1", model.OrderStatusReady)
	id := order.ID.String()

	tests := []struct {
		name           string
		id             string
		body           any
		setup          func(m *MockOrderService)
		expectedStatus int
		expectedCode   string
	}{
		{
			name: "overwrites the status",
			id:   id,
			body: map[string]string{"estado": "listo"},
			setup: func(m *MockOrderService) {
				m.On("SetStatus", mock.Anything, order.ID, model.OrderStatusReady).Return(nil)
				m.On("Get", mock.Anything, order.ID).Return(order)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "unknown status",
			id:             id,
			body:           map[string]string{"estado": "cancelado"},
			setup:          func(m *MockOrderService) {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeInvalidStatus,
		},
		{
			name:           "missing status",
			id:             id,
			body:           map[string]string{},
			setup:          func(m *MockOrderService) {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeValidation,
		},
		{
			name:           "malformed id",
			id:             "PED001",
			body:           map[string]string{"estado": "listo"},
			setup:          func(m *MockOrderService) {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeValidation,
		},
		{
			name: "missing order",
			id:   id,
			body: map[string]string{"estado": "listo"},
			setup: func(m *MockOrderService) {
				m.On("SetStatus", mock.Anything, order.ID, model.OrderStatusReady).Return(model.ErrOrderNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedCode:   model.ErrCodeOrderNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockOrderService)
			tt.setup(svc)
			h := NewOrderHandler(svc, zerolog.Nop())

			rec := httptest.NewRecorder()
			h.SetStatus(rec, newRequest(http.MethodPatch, "/api/orders/"+tt.id+"/status", tt.body,
				newAdmin(t, "admin-1"), map[string]string{"id": tt.id}))

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, decodeError(t, rec).Error)
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestOrderHandler_Advance(t *testing.T) {
	pending := testOrder("uid-1", model.OrderStatusPending)
	advanced := *pending
	advanced.Status = model.OrderStatusPreparing

	tests := []struct {
		name           string
		mockReturn     *model.Order
		mockError      error
		expectedStatus int
		expectedState  model.OrderStatus
	}{
		{name: "next status", mockReturn: &advanced, expectedStatus: http.StatusOK, expectedState: model.OrderStatusPreparing},
		{name: "concurrent change", mockError: model.ErrStatusConflict, expectedStatus: http.StatusConflict},
		{name: "missing order", mockError: model.ErrOrderNotFound, expectedStatus: http.StatusNotFound},
		{name: "storage failure", mockError: errors.New("timeout"), expectedStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockOrderService)
			svc.On("Advance", mock.Anything, pending.ID).Return(tt.mockReturn, tt.mockError)
			h := NewOrderHandler(svc, zerolog.Nop())

			rec := httptest.NewRecorder()
			h.Advance(rec, newRequest(http.MethodPost, "/api/orders/"+pending.ID.String()+"/advance", nil,
				newAdmin(t, "admin-1"), map[string]string{"id": pending.ID.String()}))

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedState != "" {
				var order model.Order
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&order))
				assert.Equal(t, tt.expectedState, order.Status)
			}
		})
	}
}

func TestOrderHandler_Update(t *testing.T) {
	order := testOrder("uid-1", model.OrderStatusPending)

	svc := new(MockOrderService)
	svc.On("Update", mock.Anything, order.ID, mock.MatchedBy(func(p model.OrderPatch) bool {
		return p.Total != nil && p.Total.Equal(decimal.NewFromInt(1)) && p.Status == nil
	})).Return(nil)
	svc.On("Get", mock.Anything, order.ID).Return(order)
	h := NewOrderHandler(svc, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.Update(rec, newRequest(http.MethodPatch, "/api/orders/"+order.ID.String(), map[string]any{"total": 1},
		newAdmin(t, "admin-1"), map[string]string{"id": order.ID.String()}))

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestOrderHandler_Delete(t *testing.T) {
	id := uuid.New()

	svc := new(MockOrderService)
	svc.On("Delete", mock.Anything, id).Return(nil).Once()
	svc.On("Delete", mock.Anything, id).Return(model.ErrOrderNotFound).Once()
	h := NewOrderHandler(svc, zerolog.Nop())

	req := func() *http.Request {
		return newRequest(http.MethodDelete, "/api/orders/"+id.String(), nil, newAdmin(t, "admin-1"),
			map[string]string{"id": id.String()})
	}

	rec := httptest.NewRecorder()
	h.Delete(rec, req())
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	h.Delete(rec, req())
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOrderHandler_Comment(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name           string
		body           any
		setup          func(m *MockOrderService)
		expectedStatus int
		expectedCode   string
	}{
		{
			name: "attached",
			body: map[string]string{"texto": "Muy rico"},
			setup: func(m *MockOrderService) {
				m.On("Comment", mock.Anything, mock.Anything, id, "Muy rico").
					Return(&model.Comment{CustomerUID: "uid-1", Text: "Muy rico", CreatedAt: time.Now()}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "empty text",
			body:           map[string]string{"texto": ""},
			setup:          func(m *MockOrderService) {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeValidation,
		},
		{
			name: "already commented",
			body: map[string]string{"texto": "Otra vez"},
			setup: func(m *MockOrderService) {
				m.On("Comment", mock.Anything, mock.Anything, id, "Otra vez").Return(nil, model.ErrCommentExists)
			},
			expectedStatus: http.StatusConflict,
			expectedCode:   model.ErrCodeCommentExists,
		},
		{
			name: "someone else's order",
			body: map[string]string{"texto": "Hola"},
			setup: func(m *MockOrderService) {
				m.On("Comment", mock.Anything, mock.Anything, id, "Hola").Return(nil, model.ErrNotOrderOwner)
			},
			expectedStatus: http.StatusForbidden,
			expectedCode:   model.ErrCodeForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockOrderService)
			tt.setup(svc)
			h := NewOrderHandler(svc, zerolog.Nop())

			rec := httptest.NewRecorder()
			h.Comment(rec, newRequest(http.MethodPost, "/api/orders/"+id.String()+"/comment", tt.body,
				newCustomer(t, "uid-1"), map[string]string{"id": id.String()}))

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, decodeError(t, rec).Error)
			}
			svc.AssertExpectations(t)
		})
	}

	t.Run("admins cannot comment", func(t *testing.T) {
		svc := new(MockOrderService)
		h := NewOrderHandler(svc, zerolog.Nop())

		rec := httptest.NewRecorder()
		h.Comment(rec, newRequest(http.MethodPost, "/api/orders/"+id.String()+"/comment",
			map[string]string{"texto": "Hola"}, newAdmin(t, "admin-1"), map[string]string{"id": id.String()}))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		svc.AssertNotCalled(t, "Comment", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}
