package checkout

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"junkmart/web/internal/apiclient"
	"junkmart/web/internal/cart"
	"junkmart/web/internal/models"
	"junkmart/web/internal/storage"
	"junkmart/web/internal/validate"
)

type staticClients struct {
	api *apiclient.Client
}

func (s staticClients) Client(context.Context) *apiclient.Client {
	return s.api
}

func newService(t *testing.T, handler http.HandlerFunc) (*Service, *cart.Cart) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	ctx := context.Background()
	c := cart.Load(ctx, storage.NewMemoryStore(), zerolog.Nop())
	require.NoError(t, c.Add(ctx, models.Product{ID: "p1", Name: "Copper wire", Price: decimal.RequireFromString("2.50")}, 2))
	require.NoError(t, c.Add(ctx, models.Product{ID: "p2", Name: "Brass tap", Price: decimal.RequireFromString("7")}, 1))

	api := apiclient.New(srv.URL, 2*time.Second).WithToken("tok")
	return New(c, staticClients{api: api}, zerolog.Nop()), c
}

func TestSubmitClearsCartOnSuccess(t *testing.T) {
	svc, c := newService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/orders", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		var req models.CreateOrderRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Items, 2)
		assert.Equal(t, models.OrderItemRequest{ProductID: "p1", Quantity: 2}, req.Items[0])
		assert.Equal(t, models.OrderItemRequest{ProductID: "p2", Quantity: 1}, req.Items[1])
		assert.Equal(t, "9 Scrap Lane", req.ShippingAddress)

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"order":{"id":"ord-1","status":"pending","total":12}}`))
	})

	res, err := svc.Submit(context.Background(), ShippingInfo{Address: " 9 Scrap Lane ", City: "Leeds", Zip: "LS1"})
	require.NoError(t, err)
	assert.Equal(t, "ord-1", res.Order.ID)
	assert.Equal(t, SuccessRedirect, res.Redirect)
	assert.Empty(t, c.Items())
	assert.Equal(t, 0, c.ItemCount())
}

func TestSubmitKeepsCartOnFailure(t *testing.T) {
	svc, c := newService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"Insufficient stock for Brass tap"}`))
	})

	_, err := svc.Submit(context.Background(), ShippingInfo{Address: "9 Scrap Lane", City: "Leeds", Zip: "LS1"})
	require.Error(t, err)
	assert.Equal(t, "Insufficient stock for Brass tap", apiclient.Message(err))
	assert.Len(t, c.Items(), 2)
	assert.True(t, c.Subtotal().Equal(decimal.NewFromInt(12)))
}

func TestSubmitValidatesLocally(t *testing.T) {
	var hits atomic.Int32
	svc, c := newService(t, func(w http.ResponseWriter, r *http.Request) { hits.Add(1) })

	cases := []struct {
		name  string
		info  ShippingInfo
		field string
	}{
		{"address", ShippingInfo{City: "Leeds", Zip: "LS1"}, "shippingAddress"},
		{"city", ShippingInfo{Address: "9 Scrap Lane", City: "  ", Zip: "LS1"}, "shippingCity"},
		{"zip", ShippingInfo{Address: "9 Scrap Lane", City: "Leeds"}, "shippingZip"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Submit(context.Background(), tc.info)
			vErr, ok := validate.As(err)
			require.True(t, ok)
			assert.Equal(t, tc.field, vErr.Field)
		})
	}

	require.NoError(t, c.Clear(context.Background()))
	_, err := svc.Submit(context.Background(), ShippingInfo{Address: "9 Scrap Lane", City: "Leeds", Zip: "LS1"})
	vErr, ok := validate.As(err)
	require.True(t, ok)
	assert.Equal(t, "items", vErr.Field)

	assert.Zero(t, hits.Load())
}
