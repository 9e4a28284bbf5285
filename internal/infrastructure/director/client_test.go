package director

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siemcac/siemcac/internal/domain/entities"
	"github.com/siemcac/siemcac/internal/domain/values"
)

func testNode() entities.Node {
	return entities.Node{Name: "dn-1", Address: "10.0.0.2", Pool: "pool1", Role: "data_node"}
}

func newTestClient(baseURL string) *Client {
	return NewClient(Config{
		BaseURL:      baseURL,
		Token:        "secret-token",
		PollInterval: 5 * time.Millisecond,
		PollTimeout:  time.Second,
		MaxRetries:   1,
	}, slog.New(slog.DiscardHandler))
}

func Test_Client_FetchConfiguration(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/configapi/pool1/dn-1/repos", r.URL.Path)
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`[{"name": "logs-fra", "retention_days": 90}]`))
	}))
	defer srv.Close()

	resources, err := newTestClient(srv.URL).FetchConfiguration(context.Background(), testNode(), "repos")
	require.NoError(t, err)

	require.Len(t, resources, 1)
	assert.Equal(t, "logs-fra", resources[0]["name"].Text())
	assert.Equal(t, values.KindNumber, resources[0]["retention_days"].Kind())
}

func Test_Client_CreateWaitsForOrder(t *testing.T) {
	t.Parallel()

	var polls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/configapi/pool1/dn-1/repos":
			assert.Equal(t, http.MethodPost, r.Method)
			var payload struct {
				Data map[string]any `json:"data"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			assert.Equal(t, "logs-fra", payload.Data["name"])
			_, _ = w.Write([]byte(`{"message": "accepted", "order_id": "ord-42"}`))
		case "/monitorapi/pool1/dn-1/orders/ord-42":
			if polls.Add(1) < 3 {
				_, _ = w.Write([]byte(`{"done": false}`))
				return
			}
			_, _ = w.Write([]byte(`{"done": true, "success": true}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	resource := entities.Resource{"name": values.Text("logs-fra")}
	err := newTestClient(srv.URL).CreateResource(context.Background(), testNode(), "repos", resource)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, polls.Load(), int32(3))
}

func Test_Client_FailedOrderSurfacesMessage(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPut:
			_, _ = w.Write([]byte(`{"order_id": "ord-7"}`))
		default:
			_, _ = w.Write([]byte(`{"done": true, "success": false, "message": "repo is in use"}`))
		}
	}))
	defer srv.Close()

	resource := entities.Resource{"name": values.Text("logs-fra")}
	err := newTestClient(srv.URL).UpdateResource(context.Background(), testNode(), "repos", "logs-fra", resource)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ord-7")
	assert.Contains(t, err.Error(), "repo is in use")
}

func Test_Client_SynchronousResponseSkipsPolling(t *testing.T) {
	t.Parallel()

	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/configapi/pool1/dn-1/repos/stale", r.URL.Path)
		_, _ = w.Write([]byte(`{"message": "deleted"}`))
	}))
	defer srv.Close()

	err := newTestClient(srv.URL).DeleteResource(context.Background(), testNode(), "repos", "stale")
	require.NoError(t, err)
	assert.Equal(t, int32(1), requests.Load())
}

func Test_Client_Health(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/monitorapi/health", r.URL.Path)
		_, _ = w.Write([]byte(`{"status": "ok"}`))
	}))
	defer srv.Close()

	require.NoError(t, newTestClient(srv.URL).Health(context.Background()))
}

func Test_Client_HTTPErrorIsNotRetried(t *testing.T) {
	t.Parallel()

	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message": "invalid token"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).FetchConfiguration(context.Background(), testNode(), "repos")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 403")
	assert.Equal(t, int32(1), requests.Load(), "a definitive server answer is not retried")
}
