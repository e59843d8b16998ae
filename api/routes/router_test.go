package routes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/records-backend/internal/logins"
	"github.com/angelmondragon/records-backend/internal/orders"
	"github.com/angelmondragon/records-backend/internal/products"
	"github.com/angelmondragon/records-backend/internal/users"
	"github.com/angelmondragon/records-backend/pkg/config"
	"github.com/angelmondragon/records-backend/pkg/db"
	"github.com/angelmondragon/records-backend/pkg/logger"
	"github.com/angelmondragon/records-backend/pkg/migrate"
)

type stubPinger struct {
	err error
}

func (s stubPinger) Ping(context.Context) error {
	return s.err
}

type envelope struct {
	Result  string          `json:"result"`
	Data    json.RawMessage `json:"data"`
	Message json.RawMessage `json:"message"`
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", CORSOrigins: []string{"http://localhost:3000"}},
		RateLimit: config.RateLimitConfig{
			Window:           0,
			WriteIPLimit:     0,
			CreateEmailLimit: 0,
		},
	}
}

func newTestRouter(t *testing.T, mutate func(*Dependencies)) http.Handler {
	t.Helper()
	return newTestRouterWithConfig(t, testConfig(), mutate)
}

func newTestRouterWithConfig(t *testing.T, cfg *config.Config, mutate func(*Dependencies)) http.Handler {
	t.Helper()
	goose.SetLogger(goose.NopLogger())

	dsn := fmt.Sprintf("file:routes_%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	src, err := migrate.Embedded(config.DriverSQLite)
	require.NoError(t, err)
	require.NoError(t, migrate.Up(context.Background(), sqlDB, config.DriverSQLite, src))

	usersSvc, err := users.NewService(users.NewRepository(conn))
	require.NoError(t, err)
	loginsSvc, err := logins.NewService(logins.NewRepository(conn))
	require.NoError(t, err)
	ordersSvc, err := orders.NewService(orders.NewRepository(conn))
	require.NoError(t, err)
	productsSvc, err := products.NewService(products.NewRepository(conn))
	require.NoError(t, err)

	deps := Dependencies{
		DB:       db.NewFromGorm(conn, config.DriverSQLite),
		Registry: prometheus.NewRegistry(),
		Users:    usersSvc,
		Logins:   loginsSvc,
		Orders:   ordersSvc,
		Products: productsSvc,
	}
	if mutate != nil {
		mutate(&deps)
	}
	return NewRouter(cfg, logger.Nop(), deps)
}

func do(t *testing.T, h http.Handler, method, target, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 && strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

func TestUserLifecycle(t *testing.T) {
	h := newTestRouter(t, nil)

	rec, env := do(t, h, http.MethodPost, "/users/add", `{"username":"JohnDoe","email":"john@example.com","password":"secret123"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "success", env.Result)
	var created users.UserDTO
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "JohnDoe", created.Username)
	assert.Nil(t, created.AuthToken)

	rec, env = do(t, h, http.MethodGet, "/users?email=", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"result":"error","message":"Email parameter is missing"}`, rec.Body.String())

	rec, env = do(t, h, http.MethodGet, "/users?email=missing@x.com", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `"User not found"`, string(env.Message))

	rec, env = do(t, h, http.MethodPut, "/users/update?email=john@example.com", `{"username":"JohnUpdated","auth_token":"t1","email":"other@example.com"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated users.UserDTO
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "JohnUpdated", updated.Username)
	assert.Equal(t, "john@example.com", updated.Email)
	require.NotNil(t, updated.AuthToken)
	assert.Equal(t, "t1", *updated.AuthToken)

	rec, _ = do(t, h, http.MethodDelete, "/api/users/delete?email=john@example.com", "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Zero(t, rec.Body.Len())

	rec, _ = do(t, h, http.MethodDelete, "/users/delete?email=john@example.com", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateUserFieldErrors(t *testing.T) {
	h := newTestRouter(t, nil)

	rec, env := do(t, h, http.MethodPost, "/users/add", `{"username":"doron","email":"nope","password":"x"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "error", env.Result)

	var fields map[string][]string
	require.NoError(t, json.Unmarshal(env.Message, &fields), string(env.Message))
	assert.Equal(t, []string{"Enter a valid email address."}, fields["email"])
	assert.Equal(t, []string{"user with this username already exists."}, fields["username"])

	rec, env = do(t, h, http.MethodPost, "/users/add", `{"username":`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, string(env.Message), "JSON parse error")
}

func TestSeededUserIsReachable(t *testing.T) {
	h := newTestRouter(t, nil)

	rec, env := do(t, h, http.MethodGet, "/api/users?email=admin@example.com", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var user users.UserDTO
	require.NoError(t, json.Unmarshal(env.Data, &user))
	assert.Equal(t, "doron", user.Username)
}

func TestLoginsNewestFirstAndBulkDelete(t *testing.T) {
	h := newTestRouter(t, nil)

	for _, name := range []string{"first", "second"} {
		rec, _ := do(t, h, http.MethodPost, "/logins/add", fmt.Sprintf(`{"username":%q,"email":"a@b.co"}`, name))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}
	rec, _ := do(t, h, http.MethodPost, "/logins/add", `{"username":"other","email":"c@d.co"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, env := do(t, h, http.MethodGet, "/logins?email=a@b.co", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []logins.LoginDTO
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Len(t, list, 2)

	rec, _ = do(t, h, http.MethodGet, "/logins?email=", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, h, http.MethodDelete, "/logins/delete?email=a@b.co", "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("X-Deleted-Count"))

	rec, _ = do(t, h, http.MethodDelete, "/logins/delete?email=a@b.co", "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-Deleted-Count"))

	rec, env = do(t, h, http.MethodGet, "/logins", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "other", list[0].Username)
}

func TestOrderLifecycle(t *testing.T) {
	h := newTestRouter(t, nil)

	rec, env := do(t, h, http.MethodPost, "/orders/add", `{"user":"Jane","phone_number":"555-0100","email":"jane@example.com","price":12.5}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var order orders.OrderDTO
	require.NoError(t, json.Unmarshal(env.Data, &order))
	assert.Equal(t, "12.50", order.Price)
	assert.JSONEq(t, `[]`, string(order.Products))

	rec, _ = do(t, h, http.MethodGet, "/orders?id=", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec, _ = do(t, h, http.MethodGet, "/orders?id=not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec, _ = do(t, h, http.MethodGet, "/orders?id="+uuid.NewString(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, env = do(t, h, http.MethodPut, "/orders/update?id="+order.ID.String(), `{"user":"Jane","phone_number":"555-0100","email":"jane@example.com"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, string(env.Message), "price")

	rec, env = do(t, h, http.MethodPut, "/orders/update?id="+order.ID.String(), `{"user":"Jane","phone_number":"555-0100","email":"jane@example.com","products":[{"name":"pavlova"}],"price":"200"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, &order))
	assert.Equal(t, "200.00", order.Price)
	assert.JSONEq(t, `[{"name":"pavlova"}]`, string(order.Products))

	rec, _ = do(t, h, http.MethodDelete, "/orders/delete?id="+order.ID.String(), "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec, _ = do(t, h, http.MethodDelete, "/orders/delete?id="+order.ID.String(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSeededProducts(t *testing.T) {
	h := newTestRouter(t, nil)

	rec, env := do(t, h, http.MethodGet, "/products", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []products.ProductDTO
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 5)

	prices := map[string]string{}
	for _, p := range list {
		prices[p.Name] = p.Price
	}
	assert.Equal(t, "450.00", prices["krokumbush"])
	assert.Equal(t, "200.00", prices["pavlova"])
}

func TestDocsAndHealth(t *testing.T) {
	h := newTestRouter(t, nil)

	rec, _ := do(t, h, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<title>Records REST API</title>")

	rec, _ = do(t, h, http.MethodGet, "/openapi.json", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Contains(t, doc["paths"], "/users/add")

	rec, _ = do(t, h, http.MethodGet, "/health/live", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "test", rec.Header().Get("X-Records-Env"))

	rec, _ = do(t, h, http.MethodGet, "/health/ready", "")
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec, _ = do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")

	rec, env := do(t, h, http.MethodGet, "/nowhere", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "error", env.Result)
}

func TestReadyReportsFailingDependency(t *testing.T) {
	h := newTestRouter(t, func(d *Dependencies) {
		d.DB = stubPinger{err: errors.New("db down")}
	})

	rec, env := do(t, h, http.MethodGet, "/health/ready", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, string(env.Message), "db down")
}

func TestRepeatedLoginsAreNotThrottledByEmail(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = config.RateLimitConfig{Window: time.Minute, WriteIPLimit: 120, CreateEmailLimit: 20}
	h := newTestRouterWithConfig(t, cfg, nil)

	statuses := map[int]int{}
	for i := 0; i < 25; i++ {
		rec, _ := do(t, h, http.MethodPost, "/logins/add", `{"username":"JohnDoe","email":"a@b.co"}`)
		statuses[rec.Code]++
	}
	assert.Equal(t, map[int]int{http.StatusCreated: 25}, statuses)

	cfg.RateLimit.CreateEmailLimit = 1
	h = newTestRouterWithConfig(t, cfg, nil)
	rec, _ := do(t, h, http.MethodPost, "/users/add", `{"username":"one","email":"dup@example.com","password":"pw"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec, env := do(t, h, http.MethodPost, "/users/add", `{"username":"two","email":"DUP@example.com","password":"pw"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.JSONEq(t, `"rate limit exceeded"`, string(env.Message))
}

func TestWrongMethodUsesErrorEnvelope(t *testing.T) {
	h := newTestRouter(t, nil)

	rec, env := do(t, h, http.MethodGet, "/users/add", "")
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "error", env.Result)
	assert.JSONEq(t, `"method not allowed"`, string(env.Message))
}

func TestBlankEmailKeyIsRejected(t *testing.T) {
	h := newTestRouter(t, nil)

	rec, env := do(t, h, http.MethodDelete, "/users/delete?email=%20%20", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `"Email parameter is missing"`, string(env.Message))

	rec, env = do(t, h, http.MethodGet, "/users?email=%20admin@example.com%20", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var user users.UserDTO
	require.NoError(t, json.Unmarshal(env.Data, &user))
	assert.Equal(t, "doron", user.Username)
}
