package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"restaurant-orders/internal/auth"
	"restaurant-orders/internal/cart"
	"restaurant-orders/internal/config"
	"restaurant-orders/internal/database"
	"restaurant-orders/internal/handler"
	"restaurant-orders/internal/identity"
	"restaurant-orders/internal/metrics"
	"restaurant-orders/internal/model"
	"restaurant-orders/internal/redis"
	"restaurant-orders/internal/repository"
	"restaurant-orders/internal/router"
	"restaurant-orders/internal/service"
	"restaurant-orders/internal/storage"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// adminEmail is on the admin allow-list of the test server.
const adminEmail = "chef@example.com"

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	Config    config.DatabaseConfig
}

// SetupTestDB creates a PostgreSQL test container and a migrated connection pool.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	host, err := postgresContainer.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get container host: %v", err)
	}
	port, err := postgresContainer.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("failed to get container port: %v", err)
	}

	dbConfig := config.DatabaseConfig{
		Host:            host,
		Port:            port.Int(),
		User:            "testuser",
		Password:        "testpass",
		Database:        "testdb",
		MaxConnections:  10,
		MinConnections:  2,
		MaxConnLifetime: 300,
		AutoMigrate:     true,
	}

	pool, err := database.NewPool(ctx, dbConfig, zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		Config:    dbConfig,
	}
}

// SetupTestRedis starts a Redis container and returns a connected client.
func SetupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor: wait.ForLog("Ready to accept connections").
				WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("failed to start redis container: %v", err)
	}

	endpoint, err := container.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("failed to get redis endpoint: %v", err)
	}

	client, err := redis.New(ctx, config.RedisConfig{Address: endpoint}, zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to connect to redis: %v", err)
	}

	t.Cleanup(func() {
		_ = client.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return client
}

// stubVerifier accepts any ID token of the form "<subject>|<email>|<display name>".
type stubVerifier struct{}

func (stubVerifier) Verify(_ context.Context, idToken string) (*auth.FederatedAccount, error) {
	parts := strings.SplitN(idToken, "|", 3)
	if len(parts) != 3 {
		return nil, fmt.Errorf("malformed test token %q", idToken)
	}
	return &auth.FederatedAccount{Subject: parts[0], Email: parts[1], DisplayName: parts[2]}, nil
}

// TestServer is the full HTTP stack wired to real Postgres and Redis.
type TestServer struct {
	Handler  http.Handler
	DB       *TestDB
	Products repository.ProductRepository
	Registry *prometheus.Registry
}

// SetupTestServer wires every layer the way the API binary does, with a stub identity
// provider and local image storage.
func SetupTestServer(t *testing.T) *TestServer {
	t.Helper()

	logger := zerolog.Nop()
	testDB := SetupTestDB(t)
	redisClient := SetupTestRedis(t)

	productRepo := repository.NewProductRepository(testDB.Pool, logger)
	orderRepo := repository.NewOrderRepository(testDB.Pool, logger)
	userRepo := repository.NewUserRepository(testDB.Pool, logger)
	credentialRepo := repository.NewCredentialRepository(testDB.Pool, logger)

	registry := prometheus.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(registry)
	orderMetrics := metrics.NewOrderMetrics(registry)

	sessions, err := auth.NewSessionStore(redisClient, time.Hour)
	require.NoError(t, err)
	backend := auth.NewBackend(
		credentialRepo,
		sessions,
		auth.NewThrottle(redisClient, 5, time.Minute),
		stubVerifier{},
		auth.TokenConfig{Secret: "integration-secret", Issuer: "restaurant-orders-test", TTL: time.Hour},
		logger,
	)
	manager := identity.NewManager(backend, userRepo, []string{adminEmail}, logger)

	mediaDir := t.TempDir()
	uploader := storage.NewLocalUploader(mediaDir, "productos/", "/media", logger)

	catalogService := service.NewCatalogService(productRepo, uploader, logger)
	orderService := service.NewOrderService(orderRepo, orderMetrics, logger)
	carts := cart.NewRegistry()
	checkout := cart.NewCheckout(orderService, logger)

	mux := router.New(
		router.Handlers{
			Health: handler.NewHealthHandler(map[string]handler.Pinger{
				"postgres": testDB.Pool,
				"redis":    redisClient,
			}, logger),
			View:    handler.NewViewHandler(catalogService, orderService, carts, "", logger),
			Auth:    handler.NewAuthHandler(manager, carts, false, logger),
			Product: handler.NewProductHandler(catalogService, logger),
			Order:   handler.NewOrderHandler(orderService, logger),
			Cart:    handler.NewCartHandler(carts, catalogService, checkout, logger),
			User:    handler.NewUserHandler(manager, logger),
		},
		router.Options{
			Sessions:    manager,
			HTTPMetrics: httpMetrics,
			Gatherer:    registry,
			MediaDir:    mediaDir,
		},
		logger,
	)

	return &TestServer{
		Handler:  mux,
		DB:       testDB,
		Products: productRepo,
		Registry: registry,
	}
}

// SeedProducts inserts the starter menu and returns it.
func SeedProducts(t *testing.T, repo repository.ProductRepository) []string {
	t.Helper()

	ctx := context.Background()

	products := []struct {
		id       string
		name     string
		price    int64
		category string
	}{
		{"1", "Bandeja Paisa", 25000, "Platos Principales"},
		{"2", "Ajiaco Santandereano", 18000, "Sopas"},
		{"5", "Empanadas", 5000, "Entradas"},
		{"6", "Arepa con Queso", 4000, "Entradas"},
	}

	ids := make([]string, 0, len(products))
	for _, p := range products {
		product := model.Product{
			ID:       p.id,
			Name:     p.name,
			Price:    decimal.NewFromInt(p.price),
			Category: p.category,
			Icon:     model.DefaultIcon,
		}
		if err := repo.Create(ctx, &product); err != nil {
			t.Fatalf("failed to seed product %s: %v", p.id, err)
		}
		ids = append(ids, p.id)
	}
	return ids
}

// CleanupDB removes all rows from the application tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	tables := []string{"orders", "products", "auth_credentials", "users"}
	for _, table := range tables {
		if _, err := pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table)); err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}

// Do sends a JSON request through the server, authenticated with token when set.
func (s *TestServer) Do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader = http.NoBody
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, req)
	return rec
}

// Register creates a customer account through the API and returns its access token.
func (s *TestServer) Register(t *testing.T, email string) string {
	t.Helper()

	rec := s.Do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    email,
		"password": "secreto1",
		"nombre":   "Ana",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decodeToken(t, rec)
}

// SignInAdmin signs in the allow-listed admin through the identity provider.
func (s *TestServer) SignInAdmin(t *testing.T) string {
	t.Helper()

	rec := s.Do(t, http.MethodPost, "/api/auth/google", "", map[string]string{
		"idToken": "google-chef|" + adminEmail + "|Chef Principal",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decodeToken(t, rec)
}

func decodeToken(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}
