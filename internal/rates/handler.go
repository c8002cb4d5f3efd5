package rates

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/tawreed/tawreed/internal/platform/httpx"
	"github.com/tawreed/tawreed/internal/roles"
	"github.com/tawreed/tawreed/internal/shared"
)

// Handler exposes rate agreement endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
	roles    roles.Middleware
}

// NewHandler creates a new handler.
func NewHandler(logger *slog.Logger, service *Service, rolesMW roles.Middleware) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
		roles:    rolesMW,
	}
}

// MountRoutes registers routes on the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.roles.Require(func(c roles.Capabilities) bool { return c.CanViewAllOrders }))
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
		r.Get("/lookup", h.lookup)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.roles.Require(func(c roles.Capabilities) bool { return c.CanManageWorkflow }))
		r.Post("/", h.create)
		r.Put("/{id}", h.update)
		r.Post("/{id}/deactivate", h.deactivate)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := ListFilters{
		Origin:      q.Get("origin"),
		Destination: q.Get("destination"),
		ActiveOnly:  q.Get("active") == "true",
		Limit:       20,
	}
	if page, _ := strconv.Atoi(q.Get("page")); page > 1 {
		filters.Page = page
	} else {
		filters.Page = 1
	}
	if rt := q.Get("rate_type"); rt != "" {
		rateType := RateType(rt)
		filters.RateType = &rateType
	}

	agreements, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list agreements", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"agreements": agreements,
		"pagination": shared.NewPagination(filters.Page, filters.Limit, total),
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "id must be numeric")
		return
	}
	a, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondErr(w, "get agreement", err)
		return
	}
	httpx.JSON(w, http.StatusOK, a)
}

// lookup backs the public shipping-rate query: it answers with the sell side
// of the matched lane and never discloses buy prices.
func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	origin := q.Get("origin")
	destination := q.Get("destination")
	rateType := RateType(q.Get("rate_type"))
	if origin == "" || destination == "" || !rateType.IsValid() {
		httpx.Failure(w, http.StatusBadRequest, "origin, destination and rate_type are required")
		return
	}
	a, err := h.service.Match(r.Context(), origin, destination, rateType, time.Now())
	if err != nil {
		if err == ErrNoRateAvailable {
			httpx.Failure(w, http.StatusNotFound, "no rate available")
			return
		}
		h.logger.Error("match rate", slog.Any("error", err))
		httpx.Failure(w, http.StatusInternalServerError, "rate lookup failed")
		return
	}
	httpx.Success(w, map[string]any{
		"origin":      a.Origin,
		"destination": a.Destination,
		"rate_type":   a.RateType,
		"price":       a.SellPrice,
		"min_charge":  a.MinCharge,
		"currency":    a.Currency,
		"valid_until": a.ValidUntil,
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var in CreateInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	a, err := h.service.Create(r.Context(), in)
	if err != nil {
		h.respondErr(w, "create agreement", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, a)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "id must be numeric")
		return
	}
	var in UpdateInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	a, err := h.service.Update(r.Context(), id, in)
	if err != nil {
		h.respondErr(w, "update agreement", err)
		return
	}
	httpx.JSON(w, http.StatusOK, a)
}

func (h *Handler) deactivate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "id must be numeric")
		return
	}
	if err := h.service.Deactivate(r.Context(), id); err != nil {
		h.respondErr(w, "deactivate agreement", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deactivated": true})
}

func (h *Handler) respondErr(w http.ResponseWriter, op string, err error) {
	if err == shared.ErrNotFound {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "agreement not found")
		return
	}
	h.logger.Error(op, slog.Any("error", err))
	httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
}
