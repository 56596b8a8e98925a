package intake

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/distritask/dashboard/internal/infrastructure/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/submit", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.Empty(t, body)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "abc-123", "message": "Task enqueued successfully!"}`))
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{BaseURL: srv.URL + "/", Logger: logger.NewNop()})
	res, err := client.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "abc-123", res.ID)
	assert.Equal(t, "Task enqueued successfully!", res.Message)
}

func TestSubmitAcceptsAny2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"id":"x"}`))
	}))
	defer srv.Close()

	res, err := NewClient(ClientConfig{BaseURL: srv.URL, Logger: logger.NewNop()}).Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "x", res.ID)
}

func TestSubmitBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Internal error", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewClient(ClientConfig{BaseURL: srv.URL, Logger: logger.NewNop()}).Submit(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestSubmitMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`OK`))
	}))
	defer srv.Close()

	_, err := NewClient(ClientConfig{BaseURL: srv.URL, Logger: logger.NewNop()}).Submit(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse")
}

func TestSubmitNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewClient(ClientConfig{BaseURL: url, Timeout: time.Second, Logger: logger.NewNop()}).Submit(context.Background())
	assert.Error(t, err)
}

func TestSubmitCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient(ClientConfig{BaseURL: "http://127.0.0.1:1", Logger: logger.NewNop()}).Submit(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
