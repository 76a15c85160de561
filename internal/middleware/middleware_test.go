package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/segmentio/ksuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"junkmart/web/internal/apiclient"
	"junkmart/web/internal/auth"
	"junkmart/web/internal/clients"
	"junkmart/web/internal/config"
	"junkmart/web/internal/models"
	"junkmart/web/internal/storage"
)

const resolveTimeout = 50 * time.Millisecond

var clientCfg = config.ClientConfig{CookieName: "jm_client", CookieMaxAge: time.Hour}

func init() {
	gin.SetMode(gin.TestMode)
}

type harness struct {
	registry *clients.Registry
	mem      *storage.MemoryStore
	router   *gin.Engine
}

func newHarness(t *testing.T, backend http.Handler) *harness {
	t.Helper()
	if backend == nil {
		backend = http.NotFoundHandler()
	}
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	mem := storage.NewMemoryStore()
	reg := clients.NewRegistry(mem, apiclient.New(srv.URL, time.Second), time.Minute, zerolog.Nop())

	r := gin.New()
	r.Use(RequestID(), Recovery(zerolog.Nop()), Client(reg, clientCfg))

	ok := func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.JSON(http.StatusOK, gin.H{"user": nil})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": user.ID})
	}
	r.GET("/api/orders", RequireRoles(resolveTimeout, models.UserRoleUser), ok)
	r.GET("/api/owner/products", RequireRoles(resolveTimeout, models.UserRoleOwner), ok)
	r.GET("/owner/products", PageGuard(resolveTimeout, models.UserRoleOwner), ok)
	r.GET("/login/:role", PublicOnlyPage(resolveTimeout), ok)
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	return &harness{registry: reg, mem: mem, router: r}
}

// signIn resolves a browser's session and adopts user.
func (h *harness) signIn(t *testing.T, user *models.UserRecord) string {
	t.Helper()
	id := ksuid.New().String()
	c, err := h.registry.Get(context.Background(), id)
	require.NoError(t, err)
	require.NoError(t, c.Session.Wait(context.Background()))
	if user != nil {
		c.Session.Login(user)
	}
	return id
}

func (h *harness) do(method, path, clientID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if clientID != "" {
		req.AddCookie(&http.Cookie{Name: clientCfg.CookieName, Value: clientID})
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestClientCookieIssuedAndReused(t *testing.T) {
	h := newHarness(t, nil)

	w := h.do(http.MethodGet, "/login/user", "")
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	id := cookies[0].Value
	_, err := ksuid.Parse(id)
	require.NoError(t, err)
	assert.True(t, cookies[0].HttpOnly)
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))

	w = h.do(http.MethodGet, "/login/user", id)
	assert.Empty(t, w.Result().Cookies())
	assert.Equal(t, 1, h.registry.Len())

	w = h.do(http.MethodGet, "/login/user", "../../etc/passwd")
	require.Len(t, w.Result().Cookies(), 1)
	assert.NotEqual(t, "../../etc/passwd", w.Result().Cookies()[0].Value)
}

func TestRequireRolesAnonymous(t *testing.T) {
	h := newHarness(t, nil)
	id := h.signIn(t, nil)

	w := h.do(http.MethodGet, "/api/owner/products", id)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "/login/owner", decode(t, w)["login"])
}

func TestRequireRolesWrongRole(t *testing.T) {
	h := newHarness(t, nil)
	id := h.signIn(t, &models.UserRecord{ID: "u1", Role: models.UserRoleUser})

	w := h.do(http.MethodGet, "/api/owner/products", id)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "forbidden", decode(t, w)["error"])

	w = h.do(http.MethodGet, "/api/orders", id)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", decode(t, w)["user"])
}

func TestRequireRolesPendingOwner(t *testing.T) {
	h := newHarness(t, nil)
	approved := false
	id := h.signIn(t, &models.UserRecord{ID: "o1", Role: models.UserRoleOwner, Approved: &approved})

	w := h.do(http.MethodGet, "/api/owner/products", id)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, string(apiclient.CodePendingApproval), decode(t, w)["code"])
}

func TestRequireRolesLoading(t *testing.T) {
	release := make(chan struct{})
	backend := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.WriteHeader(http.StatusUnauthorized)
	})
	h := newHarness(t, backend)
	// registered after the server so it runs before the server closes
	t.Cleanup(func() { close(release) })

	id := ksuid.New().String()
	require.NoError(t, storage.SetJSON(context.Background(), storage.Namespaced(h.mem, id), auth.KeyToken, "tok"))

	w := h.do(http.MethodGet, "/api/orders", id)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))

	w = h.do(http.MethodGet, "/owner/products", id)
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "loading", decode(t, w)["state"])
}

func TestPageGuardRedirects(t *testing.T) {
	h := newHarness(t, nil)

	anon := h.signIn(t, nil)
	w := h.do(http.MethodGet, "/owner/products", anon)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login/owner?from=%2Fowner%2Fproducts", w.Header().Get("Location"))

	admin := h.signIn(t, &models.UserRecord{ID: "a1", Role: models.UserRoleAdmin})
	w = h.do(http.MethodGet, "/owner/products", admin)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/admin/dashboard", w.Header().Get("Location"))

	owner := h.signIn(t, &models.UserRecord{ID: "o1", Role: models.UserRoleOwner})
	w = h.do(http.MethodGet, "/owner/products", owner)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPublicOnlyPage(t *testing.T) {
	h := newHarness(t, nil)

	user := h.signIn(t, &models.UserRecord{ID: "u1", Role: models.UserRoleUser})
	w := h.do(http.MethodGet, "/login/user", user)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/dashboard", w.Header().Get("Location"))

	anon := h.signIn(t, nil)
	w = h.do(http.MethodGet, "/login/user", anon)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRecovery(t *testing.T) {
	h := newHarness(t, nil)
	w := h.do(http.MethodGet, "/panic", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal server error", decode(t, w)["error"])
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"https://shop.example"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://shop.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://shop.example", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
