package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWebhookDispatcher_Dispatch(t *testing.T) {
	t.Run("posts the task and returns the reply", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			var req map[string]string
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "summarize this", req["task"])

			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{"content": "a summary"})
		}))
		defer server.Close()

		d := NewWebhookDispatcher(server.URL, 5*time.Second)
		reply, err := d.Dispatch(context.Background(), "summarize this")

		assert.NoError(t, err)
		assert.Equal(t, "a summary", reply)
	})

	t.Run("fails on non-2xx status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		d := NewWebhookDispatcher(server.URL, 5*time.Second)
		_, err := d.Dispatch(context.Background(), "task")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "status 502")
	})

	t.Run("fails on empty content", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]string{})
		}))
		defer server.Close()

		d := NewWebhookDispatcher(server.URL, 5*time.Second)
		_, err := d.Dispatch(context.Background(), "task")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "missing content")
	})

	t.Run("fails on malformed response body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not json"))
		}))
		defer server.Close()

		d := NewWebhookDispatcher(server.URL, 5*time.Second)
		_, err := d.Dispatch(context.Background(), "task")

		assert.Error(t, err)
	})

	t.Run("honors the request timeout", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer server.Close()

		d := NewWebhookDispatcher(server.URL, 50*time.Millisecond)
		_, err := d.Dispatch(context.Background(), "task")

		assert.Error(t, err)
	})
}

func TestExchangeGuard(t *testing.T) {
	t.Run("second acquire fails until release", func(t *testing.T) {
		g := NewExchangeGuard()

		assert.True(t, g.TryAcquire("sess-1"))
		assert.False(t, g.TryAcquire("sess-1"))
		assert.True(t, g.InFlight("sess-1"))

		g.Release("sess-1")
		assert.False(t, g.InFlight("sess-1"))
		assert.True(t, g.TryAcquire("sess-1"))
	})

	t.Run("sessions are independent", func(t *testing.T) {
		g := NewExchangeGuard()

		assert.True(t, g.TryAcquire("sess-1"))
		assert.True(t, g.TryAcquire("sess-2"))
	})
}
