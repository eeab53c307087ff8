package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"restaurant-orders/internal/identity"
	"restaurant-orders/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockCatalogService is a mock implementation of service.CatalogService.
type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) List(ctx context.Context) []model.Product {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]model.Product)
}

func (m *MockCatalogService) ListByCategory(ctx context.Context, category string) []model.Product {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]model.Product)
}

func (m *MockCatalogService) Get(ctx context.Context, id string) *model.Product {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*model.Product)
}

func (m *MockCatalogService) Categories(ctx context.Context) []string {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]string)
}

func (m *MockCatalogService) Create(ctx context.Context, input model.ProductInput) (*model.Product, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockCatalogService) Update(ctx context.Context, id string, patch model.ProductPatch) error {
	args := m.Called(ctx, id, patch)
	return args.Error(0)
}

func (m *MockCatalogService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCatalogService) UploadImage(ctx context.Context, filename, contentType string, body io.Reader) (string, error) {
	args := m.Called(ctx, filename, contentType, body)
	return args.String(0), args.Error(1)
}

// MockOrderService is a mock implementation of service.OrderService.
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) Create(ctx context.Context, order model.NewOrder) (*model.Order, error) {
	args := m.Called(ctx, order)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) ListAll(ctx context.Context) []model.Order {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]model.Order)
}

func (m *MockOrderService) ListByCustomer(ctx context.Context, customerUID string) []model.Order {
	args := m.Called(ctx, customerUID)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]model.Order)
}

func (m *MockOrderService) Get(ctx context.Context, id uuid.UUID) *model.Order {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*model.Order)
}

func (m *MockOrderService) SetStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockOrderService) Advance(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) Update(ctx context.Context, id uuid.UUID, patch model.OrderPatch) error {
	args := m.Called(ctx, id, patch)
	return args.Error(0)
}

func (m *MockOrderService) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOrderService) Comment(ctx context.Context, customer *identity.Customer, id uuid.UUID, text string) (*model.Comment, error) {
	args := m.Called(ctx, customer, id, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Comment), args.Error(1)
}

// MockIdentityManager is a mock implementation of IdentityManager.
type MockIdentityManager struct {
	mock.Mock
}

func (m *MockIdentityManager) SignInWithPassword(ctx context.Context, s *identity.Session, email, password string) (*identity.Result, error) {
	args := m.Called(ctx, s, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Result), args.Error(1)
}

func (m *MockIdentityManager) Register(ctx context.Context, s *identity.Session, email, password string, role model.Role, fields model.ProfileFields) (*identity.Result, error) {
	args := m.Called(ctx, s, email, password, role, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Result), args.Error(1)
}

func (m *MockIdentityManager) SignInFederated(ctx context.Context, s *identity.Session, idToken string) (*identity.Result, error) {
	args := m.Called(ctx, s, idToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Result), args.Error(1)
}

func (m *MockIdentityManager) SignOut(ctx context.Context, s *identity.Session) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockIdentityManager) GrantAdminRole(ctx context.Context, s *identity.Session, uid string) (*model.Identity, error) {
	args := m.Called(ctx, s, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Identity), args.Error(1)
}

func newCustomer(t *testing.T, uid string) *identity.Customer {
	t.Helper()
	p, err := identity.NewPrincipal(model.Identity{UID: uid, Email: uid + "@example.com", Role: model.RoleCustomer})
	require.NoError(t, err)
	return identity.AsCustomer(p)
}

func newAdmin(t *testing.T, uid string) *identity.Admin {
	t.Helper()
	p, err := identity.NewPrincipal(model.Identity{UID: uid, Email: uid + "@example.com", Role: model.RoleAdmin})
	require.NoError(t, err)
	return identity.AsAdmin(p)
}

// newRequest builds a request carrying a resolved session for p (anonymous when nil) and
// the given chi URL parameters.
func newRequest(method, target string, body any, p identity.Principal, params map[string]string) *http.Request {
	var reader io.Reader = http.NoBody
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")

	ctx := identity.WithSession(req.Context(), identity.NewResolvedSession(p, "token"))
	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for k, v := range params {
			rctx.URLParams.Add(k, v)
		}
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}
	return req.WithContext(ctx)
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) model.ErrorResponse {
	t.Helper()
	var resp model.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}
