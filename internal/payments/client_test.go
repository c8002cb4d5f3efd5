package payments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tawreed/tawreed/internal/platform/httpx"
)

func TestCreateSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		require.Equal(t, "Bearer key-1", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "shipment:5", body["reference_id"])

		_ = json.NewEncoder(w).Encode(Session{
			ID:          "sess_1",
			RedirectURL: "https://pay.example/s/1",
			Status:      "pending",
			ReferenceID: "shipment:5",
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "key-1")
	session, err := client.CreateSession(context.Background(), 100, "OMR", "shipment:5", "https://app.example.com/return")
	require.NoError(t, err)
	require.Equal(t, "sess_1", session.ID)
	require.Equal(t, "https://pay.example/s/1", session.RedirectURL)
}

func TestCreateSessionUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "internal", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "key-1")
	_, err := client.CreateSession(context.Background(), 100, "OMR", "shipment:5", "")
	require.ErrorIs(t, err, httpx.ErrUpstream)
}

func TestGetSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/checkout/sessions/sess_1", r.URL.Path)
		_ = json.NewEncoder(w).Encode(Session{ID: "sess_1", Status: SessionPaid})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "key-1")
	session, err := client.GetSession(context.Background(), "sess_1")
	require.NoError(t, err)
	require.Equal(t, SessionPaid, session.Status)
}
