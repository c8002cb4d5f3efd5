package users

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/tawreed/tawreed/internal/platform/httpx"
	"github.com/tawreed/tawreed/internal/roles"
	"github.com/tawreed/tawreed/internal/shared"
)

type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
	roles    roles.Middleware
}

func NewHandler(logger *slog.Logger, service *Service, rolesMW roles.Middleware) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
		roles:    rolesMW,
	}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/me", h.me)
	r.Group(func(r chi.Router) {
		r.Use(h.roles.Require(func(c roles.Capabilities) bool { return c.CanManageUsers }))
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
		r.Post("/sync", h.sync)
		r.Put("/{id}/role", h.setRole)
		r.Delete("/{id}", h.delete)
	})
}

// me returns the caller's own profile plus resolved capabilities, so the
// client can gate its UI without a second round trip.
func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	if principal.UserID == "" {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "no identity on request")
		return
	}
	profile, err := h.service.Get(r.Context(), principal.UserID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		h.respondErr(w, "get own profile", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"profile":      profile,
		"capabilities": roles.Resolve(roles.Role(principal.Role)),
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := ListFilters{
		Role:   q.Get("role"),
		Search: q.Get("search"),
		Page:   1,
		Limit:  50,
	}
	profiles, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list profiles", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"profiles":   profiles,
		"pagination": shared.NewPagination(filters.Page, filters.Limit, total),
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	profile, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondErr(w, "get profile", err)
		return
	}
	httpx.JSON(w, http.StatusOK, profile)
}

func (h *Handler) sync(w http.ResponseWriter, r *http.Request) {
	var in SyncInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	profile, err := h.service.Sync(r.Context(), in)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Sync Failed", err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, profile)
}

type setRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

func (h *Handler) setRole(w http.ResponseWriter, r *http.Request) {
	var req setRoleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	principal := shared.PrincipalFromContext(r.Context())
	id := chi.URLParam(r, "id")
	if err := h.service.SetRole(r.Context(), principal.UserID, id, req.Role); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "profile not found")
			return
		}
		httpx.Problem(w, http.StatusBadRequest, "Role Change Failed", err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"updated": true})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	purged, err := h.service.Delete(r.Context(), principal.UserID, chi.URLParam(r, "id"))
	if err != nil {
		switch {
		case errors.Is(err, shared.ErrNotFound):
			httpx.Problem(w, http.StatusNotFound, "Not Found", "profile not found")
		case errors.Is(err, shared.ErrConflict):
			httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
		default:
			h.logger.Error("delete profile", slog.Any("error", err))
			httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		}
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": true, "purged_stock_rows": purged})
}

func (h *Handler) respondErr(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, shared.ErrNotFound) {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "profile not found")
		return
	}
	h.logger.Error(op, slog.Any("error", err))
	httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
}
