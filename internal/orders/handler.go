package orders

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/tawreed/tawreed/internal/inventory"
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
	r.Group(func(r chi.Router) {
		r.Use(h.roles.Require(func(c roles.Capabilities) bool { return c.CanViewAllOrders }))
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.roles.Require(func(c roles.Capabilities) bool { return c.CanCreateOrders }))
		r.Post("/", h.create)
		r.Post("/{id}/start", h.transitionTo(StatusInProgress))
		r.Post("/{id}/deliver", h.transitionTo(StatusDelivered))
		r.Post("/{id}/cancel", h.transitionTo(StatusCancelled))
	})
	r.Group(func(r chi.Router) {
		r.Use(h.roles.Require(func(c roles.Capabilities) bool { return c.CanApproveOrders }))
		r.Post("/{id}/approve", h.approve)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := ListFilters{
		CustomerID: q.Get("customer_id"),
		Page:       1,
		Limit:      20,
	}
	if page, _ := strconv.Atoi(q.Get("page")); page > 1 {
		filters.Page = page
	}
	if st := q.Get("status"); st != "" {
		status := Status(st)
		filters.Status = &status
	}
	if ot := q.Get("type"); ot != "" {
		orderType := Type(ot)
		filters.Type = &orderType
	}
	orders, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list orders", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"orders":     orders,
		"pagination": shared.NewPagination(filters.Page, filters.Limit, total),
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.paramID(w, r)
	if !ok {
		return
	}
	o, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondErr(w, "get order", err)
		return
	}
	httpx.JSON(w, http.StatusOK, o)
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
	o, err := h.service.Create(r.Context(), principal.UserID, in)
	if err != nil {
		h.respondErr(w, "create order", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, o)
}

func (h *Handler) approve(w http.ResponseWriter, r *http.Request) {
	id, ok := h.paramID(w, r)
	if !ok {
		return
	}
	principal := shared.PrincipalFromContext(r.Context())
	o, err := h.service.Approve(r.Context(), id, principal.UserID)
	if err != nil {
		if errors.Is(err, inventory.ErrInsufficientStock) {
			httpx.Problem(w, http.StatusConflict, "Insufficient Stock", err.Error())
			return
		}
		h.respondErr(w, "approve order", err)
		return
	}
	httpx.JSON(w, http.StatusOK, o)
}

func (h *Handler) transitionTo(to Status) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := h.paramID(w, r)
		if !ok {
			return
		}
		o, err := h.service.Transition(r.Context(), id, to)
		if err != nil {
			h.respondErr(w, "transition order", err)
			return
		}
		httpx.JSON(w, http.StatusOK, o)
	}
}

func (h *Handler) paramID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "id must be numeric")
		return 0, false
	}
	return id, true
}

func (h *Handler) respondErr(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "order not found")
	case errors.Is(err, shared.ErrConflict):
		httpx.Problem(w, http.StatusConflict, "Invalid Transition", err.Error())
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
