package users

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/tawreed/tawreed/internal/roles"
	"github.com/tawreed/tawreed/internal/shared"
)

func newTestRouter(repo *memoryRepo) chi.Router {
	h := NewHandler(slog.Default(), NewService(repo, nil, nil), roles.Middleware{})
	r := chi.NewRouter()
	h.MountRoutes(r)
	return r
}

func TestMeReturnsProfileAndCapabilities(t *testing.T) {
	repo := newMemoryRepo()
	repo.profiles["usr-1"] = Profile{ID: "usr-1", Name: "Khalid", Email: "k@example.com", Role: "employee"}
	r := newTestRouter(repo)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req = req.WithContext(shared.ContextWithPrincipal(req.Context(), shared.Principal{
		UserID: "usr-1",
		Role:   "employee",
	}))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Profile      Profile            `json:"profile"`
		Capabilities roles.Capabilities `json:"capabilities"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "usr-1", body.Profile.ID)
	require.True(t, body.Capabilities.CanCreateOrders)
	require.False(t, body.Capabilities.CanManageUsers)
}

func TestMeWithoutIdentity(t *testing.T) {
	r := newTestRouter(newMemoryRepo())

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
