package httprpc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler func(method string) (string, bool)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     uint64 `json:"id"`
			Method string `json:"method"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		result, ok := handler(req.Method)
		w.Header().Set("Content-Type", "application/json")
		if !ok {
			_, _ = w.Write([]byte(`{"id":` + itoa(req.ID) + `,"error":{"code":-32000,"message":"boom"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"id":` + itoa(req.ID) + `,"result":"` + result + `"}`))
	}))
}

func itoa(id uint64) string {
	b, _ := json.Marshal(id)
	return string(b)
}

func TestGetTransactionCount(t *testing.T) {
	srv := newTestServer(t, func(method string) (string, bool) {
		assert.Equal(t, "eth_getTransactionCount", method)
		return "0x9", true
	})
	defer srv.Close()

	c, err := New(srv.URL, time.Second)
	require.NoError(t, err)

	got, err := c.GetTransactionCount(context.Background(), "0xabc", "latest")
	require.NoError(t, err)
	assert.Equal(t, "0x9", got)
}

func TestCallPropagatesRpcError(t *testing.T) {
	srv := newTestServer(t, func(method string) (string, bool) {
		return "", false
	})
	defer srv.Close()

	c, err := New(srv.URL, time.Second)
	require.NoError(t, err)

	_, err = c.GasPrice(context.Background())
	assert.Error(t, err)
}

func TestGetTransactionReceiptStatusPending(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":1,"result":null}`))
	}))
	defer srv.Close()

	c, err := New(srv.URL, time.Second)
	require.NoError(t, err)

	status, err := c.GetTransactionReceiptStatus(context.Background(), "0xdead")
	require.NoError(t, err)
	assert.Equal(t, "", status)
}

func TestGetTransactionReceiptStatusMined(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":1,"result":{"status":"0x1"}}`))
	}))
	defer srv.Close()

	c, err := New(srv.URL, time.Second)
	require.NoError(t, err)

	status, err := c.GetTransactionReceiptStatus(context.Background(), "0xdead")
	require.NoError(t, err)
	assert.Equal(t, "0x1", status)
}
