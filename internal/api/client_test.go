package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/storefront-client/internal/gateway"
	"github.com/pribylovaa/storefront-client/internal/storage/memory"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store := memory.New()
	store.SetTokens("test-token", "")

	gw, err := gateway.New(gateway.Config{BaseURL: srv.URL, Store: store})
	require.NoError(t, err)

	return New(gw)
}

func TestObtainToken_OK(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/token/", r.URL.Path)

		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		require.Equal(t, "alice", in["username"])
		require.Equal(t, "password123", in["password"])

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"access": "a", "refresh": "r"})
	}))

	pair, err := c.ObtainToken(context.Background(), "alice", "password123")
	require.NoError(t, err)
	require.Equal(t, "a", pair.Access)
	require.Equal(t, "r", pair.Refresh)
}

func TestObtainToken_RejectedWithVerbatimDetail(t *testing.T) {
	t.Parallel()

	const detail = "No active account found with the given credentials"

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": detail})
	}))

	_, err := c.ObtainToken(context.Background(), "alice", "wrong")
	require.Error(t, err)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
	// Сообщение сервера доносится дословно, без пересказа.
	require.Equal(t, detail, statusErr.Detail)
}

func TestStatusError_NonJSONBody(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	}))

	err := c.Raw(context.Background(), "/products/", nil)
	require.Error(t, err)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
	require.Empty(t, statusErr.Detail)
	require.Equal(t, "api: status 502", statusErr.Error())
}

func TestProducts_SearchAndPaging(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/products/", r.URL.Path)
		require.Equal(t, "catan", r.URL.Query().Get("search"))
		require.Equal(t, "2", r.URL.Query().Get("page"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[{"id":1,"name":"Catan","final_price":"39.99"}],"count":11}`))
	}))

	items, count, err := c.Products(context.Background(), ProductsParams{Search: "catan", Page: 2})
	require.NoError(t, err)

	require.Equal(t, int64(11), count)
	require.Len(t, items, 1)
	require.Equal(t, "Catan", items[0].Name)
	require.Equal(t, "39.99", items[0].FinalPrice)
}

func TestAddCartItem(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/cart/", r.URL.Path)

		var in map[string]int64
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		require.Equal(t, int64(3), in["product_id"])
		require.Equal(t, int64(2), in["quantity"])

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":5,"quantity":2,"product":{"id":3,"name":"Azul"}}`))
	}))

	item, err := c.AddCartItem(context.Background(), 3, 2)
	require.NoError(t, err)
	require.Equal(t, int64(5), item.ID)
	require.Equal(t, int64(2), item.Quantity)
	require.Equal(t, "Azul", item.Product.Name)
}

func TestMe(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/users/me/", r.URL.Path)
		require.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":1,"username":"alice","email":"alice@example.com"}`))
	}))

	user, err := c.Me(context.Background())
	require.NoError(t, err)
	require.Equal(t, "alice", user.Username)
	require.Equal(t, "alice@example.com", user.Email)
}

func TestUpdateMe_SendsOnlySetFields(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)

		var raw map[string]json.RawMessage
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		require.Contains(t, raw, "first_name")
		require.NotContains(t, raw, "last_name")
		require.NotContains(t, raw, "email")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":1,"username":"alice","first_name":"Alice"}`))
	}))

	first := "Alice"
	user, err := c.UpdateMe(context.Background(), UpdateUserRequest{FirstName: &first})
	require.NoError(t, err)
	require.Equal(t, "Alice", user.FirstName)
}
