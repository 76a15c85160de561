package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"junkmart/web/internal/apiclient"
	"junkmart/web/internal/models"
	"junkmart/web/internal/storage"
	"junkmart/web/internal/validate"
)

type backend struct {
	srv     *httptest.Server
	mux     *http.ServeMux
	logouts atomic.Int32
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	b := &backend{mux: http.NewServeMux()}
	b.mux.HandleFunc("/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		b.logouts.Add(1)
		w.WriteHeader(http.StatusNoContent)
	})
	b.srv = httptest.NewServer(b.mux)
	t.Cleanup(b.srv.Close)
	return b
}

func (b *backend) handle(pattern string, status int, body string) {
	b.mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	})
}

func newTestStore(b *backend) (*Store, *storage.MemoryStore) {
	mem := storage.NewMemoryStore()
	api := apiclient.New(b.srv.URL, 2*time.Second)
	return NewStore(mem, api, zerolog.Nop()), mem
}

func TestLoginAsPersistsSession(t *testing.T) {
	b := newBackend(t)
	b.handle("/auth/login/user", http.StatusOK, `{"token":"tok-u","user":{"id":"u1","name":"Ana","email":"ana@example.com"}}`)
	store, _ := newTestStore(b)
	ctx := context.Background()

	assert.False(t, store.IsAuthenticated(ctx))

	user, err := store.LoginAs(ctx, models.UserRoleUser, "ana@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, models.UserRoleUser, user.Role)

	assert.True(t, store.IsAuthenticated(ctx))
	token, err := store.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-u", token)

	stored := store.StoredUser(ctx)
	require.NotNil(t, stored)
	assert.Equal(t, "u1", stored.ID)
	assert.Equal(t, models.UserRoleUser, stored.Role)
}

func TestLoginAsPropagatesBackendError(t *testing.T) {
	b := newBackend(t)
	b.handle("/auth/login/owner", http.StatusForbidden, `{"error":"Your account is pending approval","code":"PENDING_APPROVAL"}`)
	store, mem := newTestStore(b)

	_, err := store.LoginAs(context.Background(), models.UserRoleOwner, "o@example.com", "secret1")
	require.Error(t, err)
	assert.True(t, apiclient.IsPendingApproval(err))
	assert.Equal(t, 0, mem.Len())
}

func TestLoginAsLocalValidation(t *testing.T) {
	b := newBackend(t)
	var hits atomic.Int32
	b.mux.HandleFunc("/auth/login/user", func(w http.ResponseWriter, r *http.Request) { hits.Add(1) })
	store, _ := newTestStore(b)

	_, err := store.LoginAs(context.Background(), models.UserRoleUser, "  ", "secret1")
	var vErr *validate.Error
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "email", vErr.Field)

	_, err = store.LoginAs(context.Background(), models.UserRole("guest"), "a@b.c", "x")
	assert.ErrorIs(t, err, ErrRoleNotSupported)
	assert.Zero(t, hits.Load())
}

func TestRegisterOwnerPendingLeavesNoSession(t *testing.T) {
	b := newBackend(t)
	b.handle("/auth/register/owner", http.StatusCreated, `{"owner":{"id":"o1","businessName":"Scrap Co","approved":false}}`)
	store, mem := newTestStore(b)
	ctx := context.Background()

	res, err := store.RegisterAs(ctx, models.UserRoleOwner, apiclient.RegisterRequest{
		BusinessName:    "Scrap Co",
		Address:         "1 Yard Rd",
		Email:           "scrap@example.com",
		Password:        "secret1",
		ConfirmPassword: "secret1",
	})
	require.NoError(t, err)
	assert.True(t, res.Pending)
	assert.Equal(t, models.UserRoleOwner, res.User.Role)
	assert.False(t, store.IsAuthenticated(ctx))
	assert.Equal(t, 0, mem.Len())
}

func TestRegisterOwnerAutoApprovedPersists(t *testing.T) {
	b := newBackend(t)
	b.handle("/auth/register/owner", http.StatusCreated, `{"token":"tok-o","owner":{"id":"o1","businessName":"Scrap Co","approved":true}}`)
	store, _ := newTestStore(b)
	ctx := context.Background()

	res, err := store.RegisterAs(ctx, models.UserRoleOwner, apiclient.RegisterRequest{
		BusinessName:    "Scrap Co",
		Address:         "1 Yard Rd",
		Email:           "scrap@example.com",
		Password:        "secret1",
		ConfirmPassword: "secret1",
	})
	require.NoError(t, err)
	assert.False(t, res.Pending)
	assert.True(t, store.IsAuthenticated(ctx))
}

func TestRegisterValidationNeverHitsNetwork(t *testing.T) {
	b := newBackend(t)
	var hits atomic.Int32
	b.mux.HandleFunc("/auth/register/user", func(w http.ResponseWriter, r *http.Request) { hits.Add(1) })
	store, _ := newTestStore(b)

	cases := []struct {
		name  string
		req   apiclient.RegisterRequest
		field string
	}{
		{"missing name", apiclient.RegisterRequest{Email: "a@b.co", Password: "secret1", ConfirmPassword: "secret1"}, "name"},
		{"bad email", apiclient.RegisterRequest{Name: "A", Email: "nope", Password: "secret1", ConfirmPassword: "secret1"}, "email"},
		{"short password", apiclient.RegisterRequest{Name: "A", Email: "a@b.co", Password: "123", ConfirmPassword: "123"}, "password"},
		{"mismatch", apiclient.RegisterRequest{Name: "A", Email: "a@b.co", Password: "secret1", ConfirmPassword: "secret2"}, "confirmPassword"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := store.RegisterAs(context.Background(), models.UserRoleUser, tc.req)
			var vErr *validate.Error
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, tc.field, vErr.Field)
		})
	}

	_, err := store.RegisterAs(context.Background(), models.UserRoleAdmin, apiclient.RegisterRequest{})
	assert.ErrorIs(t, err, ErrRoleNotSupported)
	assert.Zero(t, hits.Load())
}

func TestLogoutSwallowsServerErrors(t *testing.T) {
	b := newBackend(t)
	b.handle("/auth/login/user", http.StatusOK, `{"token":"tok-u","user":{"id":"u1"}}`)
	store, mem := newTestStore(b)
	ctx := context.Background()

	_, err := store.LoginAs(ctx, models.UserRoleUser, "a@b.co", "secret1")
	require.NoError(t, err)

	b.srv.Close()

	require.NoError(t, store.Logout(ctx))
	assert.False(t, store.IsAuthenticated(ctx))
	assert.Nil(t, store.StoredUser(ctx))
	assert.Equal(t, 0, mem.Len())
}

func TestLogoutCallsBackend(t *testing.T) {
	b := newBackend(t)
	b.handle("/auth/login/admin", http.StatusOK, `{"token":"tok-a","admin":{"id":"a1"}}`)
	store, _ := newTestStore(b)
	ctx := context.Background()

	_, err := store.LoginAs(ctx, models.UserRoleAdmin, "root@example.com", "secret1")
	require.NoError(t, err)
	require.NoError(t, store.Logout(ctx))
	assert.Equal(t, int32(1), b.logouts.Load())

	// without a token there is nothing to invalidate server side
	require.NoError(t, store.Logout(ctx))
	assert.Equal(t, int32(1), b.logouts.Load())
}

func TestGetCurrentUserKeepsRole(t *testing.T) {
	b := newBackend(t)
	b.handle("/auth/login/owner", http.StatusOK, `{"token":"tok-o","owner":{"id":"o1","businessName":"Old","approved":true}}`)
	b.handle("/auth/me", http.StatusOK, `{"user":{"id":"o1","businessName":"New","approved":true}}`)
	store, _ := newTestStore(b)
	ctx := context.Background()

	_, err := store.GetCurrentUser(ctx)
	assert.ErrorIs(t, err, ErrNoToken)

	_, err = store.LoginAs(ctx, models.UserRoleOwner, "o@example.com", "secret1")
	require.NoError(t, err)

	user, err := store.GetCurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.UserRoleOwner, user.Role)
	assert.Equal(t, "New", user.BusinessName)
	assert.Equal(t, "New", store.StoredUser(ctx).BusinessName)
}

func TestGetCurrentUserRefreshesTokenExpiry(t *testing.T) {
	b := newBackend(t)
	b.handle("/auth/login/user", http.StatusOK, `{"token":"tok-u","user":{"id":"u1","name":"Ana"}}`)
	b.handle("/auth/me", http.StatusOK, `{"user":{"id":"u1","name":"Ana"}}`)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	store := NewStore(storage.NewRedisStore(rdb, "jm", time.Minute), apiclient.New(b.srv.URL, 2*time.Second), zerolog.Nop())
	ctx := context.Background()

	_, err := store.LoginAs(ctx, models.UserRoleUser, "ana@example.com", "secret1")
	require.NoError(t, err)

	mr.FastForward(40 * time.Second)
	_, err = store.GetCurrentUser(ctx)
	require.NoError(t, err)

	mr.FastForward(40 * time.Second)
	assert.True(t, store.IsAuthenticated(ctx))
	assert.NotNil(t, store.StoredUser(ctx))

	mr.FastForward(time.Minute)
	assert.False(t, store.IsAuthenticated(ctx))
	assert.Nil(t, store.StoredUser(ctx))
}

func TestGetCurrentUserSkipsWriteWhenSessionChanged(t *testing.T) {
	b := newBackend(t)
	store, mem := newTestStore(b)
	ctx := context.Background()
	seedSession(t, mem, "tok", &models.UserRecord{ID: "u1", Name: "Old", Role: models.UserRoleUser})

	b.mux.HandleFunc("/auth/me", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, mem.Clear(ctx, KeyToken))
		assert.NoError(t, mem.Clear(ctx, KeyUser))
		_, _ = w.Write([]byte(`{"user":{"id":"u1","name":"Fresh"}}`))
	})

	_, err := store.GetCurrentUser(ctx)
	assert.ErrorIs(t, err, ErrSessionChanged)
	assert.Nil(t, store.StoredUser(ctx))
	assert.Equal(t, 0, mem.Len())
}

func TestStoredUserCorruptIsNil(t *testing.T) {
	b := newBackend(t)
	store, mem := newTestStore(b)
	ctx := context.Background()

	require.NoError(t, mem.Set(ctx, KeyUser, []byte("{broken")))
	assert.Nil(t, store.StoredUser(ctx))
}

func TestInspectToken(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":   "u1",
		"role": "owner",
		"exp":  exp.Unix(),
	}).SignedString([]byte("backend-secret"))
	require.NoError(t, err)

	info, err := InspectToken(signed)
	require.NoError(t, err)
	assert.Equal(t, "u1", info.Subject)
	assert.Equal(t, "owner", info.Role)
	require.NotNil(t, info.ExpiresAt)
	assert.True(t, info.ExpiresAt.Equal(exp))
	assert.False(t, info.Expired(time.Now()))
	assert.True(t, info.Expired(exp.Add(time.Second)))

	_, err = InspectToken("not-a-jwt")
	assert.ErrorIs(t, err, ErrMalformedToken)
}
