package chain

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"token-ledger/internal/core/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGateway(t *testing.T, handler http.HandlerFunc) *HTTPAdapter {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewHTTPAdapter(srv.URL, 2*time.Second, zerolog.Nop())
}

func TestHTTPAdapter_DeriveAddress(t *testing.T) {
	adapter := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/addresses/sub-1", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]string{"address": "tb1qexample"})
	})

	addr, err := adapter.DeriveAddress("sub-1")
	require.NoError(t, err)
	assert.Equal(t, "tb1qexample", addr)
}

func TestHTTPAdapter_DeriveAddressGatewayDown(t *testing.T) {
	adapter := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"maintenance"}`, http.StatusServiceUnavailable)
	})

	_, err := adapter.DeriveAddress("sub-1")
	var ext domain.ErrExternalConnection
	require.ErrorAs(t, err, &ext)
	assert.Equal(t, http.StatusServiceUnavailable, ext.Code)
	assert.Equal(t, "maintenance", ext.Message)
}

func TestHTTPAdapter_ValidateAddress(t *testing.T) {
	adapter := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["address"] == "good" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"message": "bad checksum"})
	})

	assert.NoError(t, adapter.ValidateAddress("good"))

	err := adapter.ValidateAddress("bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad checksum")
}

func TestHTTPAdapter_ListDeposits(t *testing.T) {
	adapter := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "addr-1", r.URL.Query().Get("address"))
		json.NewEncoder(w).Encode([]map[string]any{
			{"ref": "tx-a", "amount": 700},
			{"ref": "tx-b", "amount": 300},
		})
	})

	deposits, err := adapter.ListDeposits(context.Background(), "addr-1")
	require.NoError(t, err)
	require.Len(t, deposits, 2)
	assert.Equal(t, "tx-a", deposits[0].Ref)
	assert.Equal(t, uint64(300), deposits[1].Amount)
}

func TestHTTPAdapter_Submit(t *testing.T) {
	adapter := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/transfers", r.URL.Path)
		var req submitRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "addr-1", req.Address)
		assert.Equal(t, uint64(400), req.Amount)
		json.NewEncoder(w).Encode(map[string]string{"ref": "ext-1"})
	})

	ref, err := adapter.Submit(context.Background(), "addr-1", 400)
	require.NoError(t, err)
	assert.Equal(t, "ext-1", ref)
}

func TestHTTPAdapter_SubmitRejected(t *testing.T) {
	adapter := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"message": "fee too low"})
	})

	_, err := adapter.Submit(context.Background(), "addr-1", 400)
	var ext domain.ErrExternalConnection
	require.ErrorAs(t, err, &ext)
	assert.Equal(t, http.StatusConflict, ext.Code)
	assert.Equal(t, "fee too low", ext.Message)
}

func TestFakeAdapter(t *testing.T) {
	fake := NewFakeAdapter()

	addr, err := fake.DeriveAddress("sub-1")
	require.NoError(t, err)
	assert.Equal(t, "fake:sub-1", addr)

	assert.NoError(t, fake.ValidateAddress(addr))
	assert.Error(t, fake.ValidateAddress("tb1qexample"))

	ref := fake.AddDeposit(addr, 500)
	deposits, err := fake.ListDeposits(context.Background(), addr)
	require.NoError(t, err)
	require.Len(t, deposits, 1)
	assert.Equal(t, ref, deposits[0].Ref)

	subRef, err := fake.Submit(context.Background(), addr, 100)
	require.NoError(t, err)
	subs := fake.Submissions()
	require.Len(t, subs, 1)
	assert.Equal(t, subRef, subs[0].Ref)
	assert.Equal(t, uint64(100), subs[0].Amount)
}
