package clients

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"junkmart/web/internal/apiclient"
	"junkmart/web/internal/auth"
	"junkmart/web/internal/cart"
	"junkmart/web/internal/models"
	"junkmart/web/internal/storage"
)

func newRegistry(t *testing.T, mux *http.ServeMux) (*Registry, *storage.MemoryStore) {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	mem := storage.NewMemoryStore()
	return NewRegistry(mem, apiclient.New(srv.URL, time.Second), time.Minute, zerolog.Nop()), mem
}

func TestGetReusesClient(t *testing.T) {
	reg, _ := newRegistry(t, http.NewServeMux())
	ctx := context.Background()

	a, err := reg.Get(ctx, "c1")
	require.NoError(t, err)
	b, err := reg.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, 1, reg.Len())

	_, err = reg.Get(ctx, "")
	assert.ErrorIs(t, err, ErrEmptyID)
}

func TestClientsAreIsolated(t *testing.T) {
	reg, _ := newRegistry(t, http.NewServeMux())
	ctx := context.Background()

	a, err := reg.Get(ctx, "c1")
	require.NoError(t, err)
	b, err := reg.Get(ctx, "c2")
	require.NoError(t, err)

	require.NoError(t, a.Cart.Add(ctx, models.Product{ID: "p1", Name: "Wire"}, 1))
	assert.Equal(t, 1, a.Cart.ItemCount())
	assert.Equal(t, 0, b.Cart.ItemCount())
}

func TestClientRestoredFromStorage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/me", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"user":{"id":"u1","role":"user"}}`))
	})
	reg, mem := newRegistry(t, mux)
	ctx := context.Background()

	ns := storage.Namespaced(mem, "c1")
	require.NoError(t, storage.SetJSON(ctx, ns, auth.KeyToken, "tok"))
	require.NoError(t, storage.SetJSON(ctx, ns, cart.Key, []map[string]any{{"productId": "p1", "name": "Wire", "price": 3, "quantity": 2}}))

	c, err := reg.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 2, c.Cart.ItemCount())

	require.NoError(t, c.Session.Wait(ctx))
	st := c.Session.Snapshot()
	require.True(t, st.IsAuthenticated())
	assert.Equal(t, "u1", st.User.ID)
}

func TestSessionChangeResetsResources(t *testing.T) {
	var hits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/orders", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`{"orders":[]}`))
	})
	reg, _ := newRegistry(t, mux)
	ctx := context.Background()

	c, err := reg.Get(ctx, "c1")
	require.NoError(t, err)
	require.NoError(t, c.Session.Wait(ctx))

	_, err = c.Resources.Orders(ctx)
	require.NoError(t, err)
	_, err = c.Resources.Orders(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load())

	c.Session.Login(&models.UserRecord{ID: "u2", Role: models.UserRoleUser})
	_, err = c.Resources.Orders(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())
}

func TestSweepDropsIdleClients(t *testing.T) {
	reg, _ := newRegistry(t, http.NewServeMux())
	now := time.Now()
	reg.now = func() time.Time { return now }
	ctx := context.Background()

	_, err := reg.Get(ctx, "old")
	require.NoError(t, err)
	now = now.Add(time.Hour)
	_, err = reg.Get(ctx, "fresh")
	require.NoError(t, err)

	assert.Equal(t, 1, reg.Sweep(30*time.Minute))
	assert.Equal(t, 1, reg.Len())

	var ids []string
	reg.Each(func(c *Client) { ids = append(ids, c.ID) })
	assert.Equal(t, []string{"fresh"}, ids)
}
