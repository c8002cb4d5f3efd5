package quotes

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/tawreed/tawreed/internal/freight"
	"github.com/tawreed/tawreed/internal/platform/httpx"
	"github.com/tawreed/tawreed/internal/rates"
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
	r.Post("/calculate", h.calculate)
	r.Group(func(r chi.Router) {
		r.Use(h.roles.Require(func(c roles.Capabilities) bool { return c.CanCreateOrders }))
		r.Post("/", h.create)
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
		r.Post("/{id}/send", h.transitionTo(StatusSent))
		r.Post("/{id}/accept", h.transitionTo(StatusAccepted))
		r.Post("/{id}/reject", h.transitionTo(StatusRejected))
	})
}

// calculateRequest prices a consignment without persisting anything. The
// public calculator widget posts here.
type calculateRequest struct {
	Mode       freight.Mode        `json:"mode" validate:"required,oneof=sea air"`
	Items      []freight.Item      `json:"items" validate:"required,min=1,dive"`
	Rate       float64             `json:"rate" validate:"min=0"`
	FlatRate   float64             `json:"flat_rate" validate:"min=0"`
	Surcharges []freight.Surcharge `json:"surcharges"`
	Margin     freight.Margin      `json:"margin"`
	MinCharge  float64             `json:"min_charge" validate:"min=0"`
}

func (h *Handler) calculate(w http.ResponseWriter, r *http.Request) {
	var req calculateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Failure(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Failure(w, http.StatusBadRequest, err.Error())
		return
	}
	totals, err := freight.Calculate(req.Items)
	if err != nil {
		httpx.Failure(w, http.StatusBadRequest, err.Error())
		return
	}
	breakdown, err := freight.BuildBreakdown(totals, freight.PriceInput{
		Mode:       req.Mode,
		Rate:       req.Rate,
		FlatRate:   req.FlatRate,
		Surcharges: req.Surcharges,
		Margin:     req.Margin,
		MinCharge:  req.MinCharge,
	})
	if err != nil {
		httpx.Failure(w, http.StatusBadRequest, err.Error())
		return
	}
	httpx.Success(w, breakdown)
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
	principal := shared.PrincipalFromContext(r.Context())
	q, err := h.service.Create(r.Context(), principal.UserID, in)
	if err != nil {
		if errors.Is(err, rates.ErrNoRateAvailable) {
			httpx.Problem(w, http.StatusNotFound, "No Rate Available", "no active rate agreement covers this lane")
			return
		}
		h.logger.Error("create quote", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusCreated, q)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := ListFilters{
		CustomerEmail: q.Get("customer_email"),
		Page:          1,
		Limit:         20,
	}
	if page, _ := strconv.Atoi(q.Get("page")); page > 1 {
		filters.Page = page
	}
	if st := q.Get("status"); st != "" {
		status := Status(st)
		filters.Status = &status
	}
	quotes, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list quotes", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"quotes":     quotes,
		"pagination": shared.NewPagination(filters.Page, filters.Limit, total),
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "id must be numeric")
		return
	}
	q, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "quote not found")
			return
		}
		h.logger.Error("get quote", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, q)
}

func (h *Handler) transitionTo(to Status) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "id must be numeric")
			return
		}
		q, err := h.service.Transition(r.Context(), id, to)
		if err != nil {
			switch {
			case errors.Is(err, shared.ErrNotFound):
				httpx.Problem(w, http.StatusNotFound, "Not Found", "quote not found")
			case errors.Is(err, shared.ErrConflict):
				httpx.Problem(w, http.StatusConflict, "Invalid Transition", err.Error())
			default:
				h.logger.Error("transition quote", slog.Any("error", err))
				httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
			}
			return
		}
		httpx.JSON(w, http.StatusOK, q)
	}
}
