package web_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/GoServices-Admin/GoServices-Admin/internal/auth"
	"github.com/GoServices-Admin/GoServices-Admin/internal/config"
	"github.com/GoServices-Admin/GoServices-Admin/internal/daemon"
	"github.com/GoServices-Admin/GoServices-Admin/internal/db/controller/siteconfig"
	usercontroller "github.com/GoServices-Admin/GoServices-Admin/internal/db/controller/user"
	"github.com/GoServices-Admin/GoServices-Admin/internal/web"
	"github.com/GoServices-Admin/GoServices-Admin/internal/web/session"
)

// memStorage is an in-memory fiber.Storage used instead of the MySQL backed
// session store.
type memStorage struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func newMemStorage() *memStorage {
	return &memStorage{data: make(map[string][]byte)}
}

func (m *memStorage) Get(key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.data[key], nil
}

func (m *memStorage) Set(key string, val []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = val

	return nil
}

func (m *memStorage) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)

	return nil
}

func (m *memStorage) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data = make(map[string][]byte)

	return nil
}

func (m *memStorage) Close() error { return nil }

// setupService boots a full web service on an in-memory database with the
// startup seed applied.
func setupService(t *testing.T) (*web.Service, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	require.NoError(t, daemon.Migrate(db))
	require.NoError(t, daemon.Seed(db))

	session.Init(newMemStorage())

	cfg := &config.Config{
		DevMode: true,
		Title:   "test",
		Webserver: config.Webserver{
			Port: 8080,
			URL:  "http://localhost:8080",
			Session: config.Session{
				ExpiryTime: time.Hour,
			},
		},
	}

	return web.New(cfg, db), db
}

func doJSON(t *testing.T, app *fiber.App, method, target, cookie string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")

	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: "session", Value: cookie})
	}

	resp, err := app.Test(req, 10000)
	require.NoError(t, err)

	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))

	return out
}

// login returns the session cookie value for the given credentials.
func login(t *testing.T, app *fiber.App, email, password string) string {
	t.Helper()

	resp := doJSON(t, app, fiber.MethodPost, "/login", "", fiber.Map{
		"email":    email,
		"password": password,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	for _, c := range resp.Cookies() {
		if c.Name == "session" {
			return c.Value
		}
	}

	t.Fatal("no session cookie in login response")

	return ""
}

func TestCheckAlive(t *testing.T) {
	service, _ := setupService(t)

	resp := doJSON(t, service.App, fiber.MethodGet, web.CheckAlivePath, "", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestLogin(t *testing.T) {
	service, _ := setupService(t)

	t.Run("seeded admin can log in", func(t *testing.T) {
		resp := doJSON(t, service.App, fiber.MethodPost, "/login", "", fiber.Map{
			"email":    "admin@example.com",
			"password": "changeme",
		})
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, true, body["site_admin"])
	})

	t.Run("wrong password", func(t *testing.T) {
		resp := doJSON(t, service.App, fiber.MethodPost, "/login", "", fiber.Map{
			"email":    "admin@example.com",
			"password": "wrong",
		})
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})
}

func TestInstitutionRoutesAreGuarded(t *testing.T) {
	service, db := setupService(t)

	t.Run("anonymous is unauthenticated", func(t *testing.T) {
		resp := doJSON(t, service.App, fiber.MethodGet, "/institutions", "", nil)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("site admin passes", func(t *testing.T) {
		cookie := login(t, service.App, "admin@example.com", "changeme")

		resp := doJSON(t, service.App, fiber.MethodPost, "/institutions", cookie, fiber.Map{
			"name": "city-lab",
		})
		assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

		resp = doJSON(t, service.App, fiber.MethodGet, "/institutions", cookie, nil)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("regular user is forbidden", func(t *testing.T) {
		_, err := usercontroller.Create(db, usercontroller.Config{
			Username: "citizen",
			Email:    "citizen@example.com",
			Password: "secret123",
		})
		require.NoError(t, err)

		cookie := login(t, service.App, "citizen@example.com", "secret123")

		resp := doJSON(t, service.App, fiber.MethodGet, "/institutions", cookie, nil)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	})
}

func TestMaintenanceMode(t *testing.T) {
	service, db := setupService(t)

	adminCookie := login(t, service.App, "admin@example.com", "changeme")

	_, err := usercontroller.Create(db, usercontroller.Config{
		Username: "citizen",
		Email:    "citizen@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	citizenCookie := login(t, service.App, "citizen@example.com", "secret123")

	active := true
	message := "back soon"
	_, err = siteconfig.Apply(db, siteconfig.Update{
		MaintenanceActive:  &active,
		MaintenanceMessage: &message,
	})
	require.NoError(t, err)

	t.Run("regular traffic gets 503 with the message", func(t *testing.T) {
		resp := doJSON(t, service.App, fiber.MethodGet, "/account", citizenCookie, nil)
		require.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, "back soon", body["message"])
	})

	t.Run("site admins pass through", func(t *testing.T) {
		resp := doJSON(t, service.App, fiber.MethodGet, "/account", adminCookie, nil)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("login stays reachable", func(t *testing.T) {
		resp := doJSON(t, service.App, fiber.MethodPost, "/login", "", fiber.Map{
			"email":    "admin@example.com",
			"password": "changeme",
		})
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})
}

func TestAccountDisabledBoundary(t *testing.T) {
	service, db := setupService(t)

	created, err := usercontroller.Create(db, usercontroller.Config{
		Username: "citizen",
		Email:    "citizen@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	cookie := login(t, service.App, "citizen@example.com", "secret123")

	// disable the account behind the live session
	_, err = usercontroller.ToggleActive(db, created.ID)
	require.NoError(t, err)

	t.Run("guarded routes report the disabled account", func(t *testing.T) {
		resp := doJSON(t, service.App, fiber.MethodGet, "/account", cookie, nil)
		require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, "account_disabled", body["error"])
	})

	t.Run("reactivation is exempt and flips the flag back", func(t *testing.T) {
		resp := doJSON(t, service.App, fiber.MethodPost, "/account/reactivate", cookie, nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		resp = doJSON(t, service.App, fiber.MethodGet, "/account", cookie, nil)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("reactivating an active account is a conflict", func(t *testing.T) {
		resp := doJSON(t, service.App, fiber.MethodPost, "/account/reactivate", cookie, nil)
		assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	})
}

func TestRequestLifecycleOverHTTP(t *testing.T) {
	service, db := setupService(t)

	adminCookie := login(t, service.App, "admin@example.com", "changeme")

	// the admin creates the institution; services and requests are the
	// staff's business, the SITE_ADMIN grant set does not cover them
	resp := doJSON(t, service.App, fiber.MethodPost, "/institutions", adminCookie, fiber.Map{
		"name": "city-lab",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var institution struct {
		ID uint64 `json:"ID"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&institution))
	require.NotZero(t, institution.ID)

	staff, err := usercontroller.Create(db, usercontroller.Config{
		Username: "staff",
		Email:    "staff@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	require.NoError(t, auth.NewService(db).AssignRole(staff.ID, institution.ID, auth.RoleOwner))

	_, err = usercontroller.Create(db, usercontroller.Config{
		Username: "citizen",
		Email:    "citizen@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	staffCookie := login(t, service.App, "staff@example.com", "secret123")
	citizenCookie := login(t, service.App, "citizen@example.com", "secret123")

	t.Run("site admin cannot publish services", func(t *testing.T) {
		resp := doJSON(t, service.App, fiber.MethodPost,
			"/institutions/1/services", adminCookie, fiber.Map{
				"name":    "water analysis",
				"kind":    "analysis",
				"enabled": true,
			})
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	})

	serviceResp := doJSON(t, service.App, fiber.MethodPost,
		"/institutions/1/services", staffCookie, fiber.Map{
			"name":    "water analysis",
			"kind":    "analysis",
			"enabled": true,
		})
	require.Equal(t, fiber.StatusCreated, serviceResp.StatusCode)

	var svc struct {
		ID uint64 `json:"ID"`
	}
	require.NoError(t, json.NewDecoder(serviceResp.Body).Decode(&svc))
	require.NotZero(t, svc.ID)

	t.Run("citizen files and sees their own request", func(t *testing.T) {
		resp := doJSON(t, service.App, fiber.MethodPost, "/requests", citizenCookie, fiber.Map{
			"service_id":  svc.ID,
			"title":       "broken pipe",
			"description": "the pipe is broken",
		})
		require.Equal(t, fiber.StatusCreated, resp.StatusCode)

		resp = doJSON(t, service.App, fiber.MethodGet, "/requests/1", citizenCookie, nil)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		resp = doJSON(t, service.App, fiber.MethodGet, "/requests/mine", citizenCookie, nil)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("citizen cannot transition their request", func(t *testing.T) {
		resp := doJSON(t, service.App, fiber.MethodPut, "/requests/1/status", citizenCookie, fiber.Map{
			"status": "accepted",
		})
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	})

	t.Run("site admin cannot transition either", func(t *testing.T) {
		resp := doJSON(t, service.App, fiber.MethodPut, "/requests/1/status", adminCookie, fiber.Map{
			"status": "accepted",
		})
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	})

	t.Run("staff transitions and history records it", func(t *testing.T) {
		resp := doJSON(t, service.App, fiber.MethodPut, "/requests/1/status", staffCookie, fiber.Map{
			"status":      "accepted",
			"observation": "approved by lab",
		})
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, true, body["changed"])

		resp = doJSON(t, service.App, fiber.MethodGet, "/requests/1/history", staffCookie, nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		history := decodeBody(t, resp)["history"].([]any)
		require.Len(t, history, 1)
	})

	t.Run("staff lists the institution's requests", func(t *testing.T) {
		resp := doJSON(t, service.App, fiber.MethodGet, "/institutions/1/requests", staffCookie, nil)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("citizen cannot read staff notes", func(t *testing.T) {
		resp := doJSON(t, service.App, fiber.MethodGet, "/requests/1/notes", citizenCookie, nil)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	})
}
