package invoices

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

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
	// Customers hit this from the invoice email; no staff capability.
	r.Post("/{id}/viewed", h.markViewed)

	r.Group(func(r chi.Router) {
		r.Use(h.roles.Require(func(c roles.Capabilities) bool { return c.CanViewInvoices }))
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.roles.Require(func(c roles.Capabilities) bool { return c.CanManageInvoices }))
		r.Post("/", h.create)
		r.Post("/{id}/send", h.send)
		r.Post("/{id}/paid", h.markPaid)
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
	invoices, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list invoices", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"invoices":   invoices,
		"pagination": shared.NewPagination(filters.Page, filters.Limit, total),
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.paramID(w, r)
	if !ok {
		return
	}
	inv, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondErr(w, "get invoice", err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
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
	inv, err := h.service.CreateForOrder(r.Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, ErrOrderAlreadyInvoiced):
			httpx.Problem(w, http.StatusConflict, "Already Invoiced", "this order already has an invoice")
		case errors.Is(err, ErrOrderNotApproved):
			httpx.Problem(w, http.StatusConflict, "Order Not Approved", err.Error())
		default:
			h.respondErr(w, "create invoice", err)
		}
		return
	}
	httpx.JSON(w, http.StatusCreated, inv)
}

func (h *Handler) send(w http.ResponseWriter, r *http.Request) {
	id, ok := h.paramID(w, r)
	if !ok {
		return
	}
	inv, err := h.service.Send(r.Context(), id)
	if err != nil {
		h.respondErr(w, "send invoice", err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *Handler) markViewed(w http.ResponseWriter, r *http.Request) {
	id, ok := h.paramID(w, r)
	if !ok {
		return
	}
	inv, err := h.service.MarkViewed(r.Context(), id)
	if err != nil {
		// Already viewed or paid is not worth surfacing to the customer.
		if errors.Is(err, shared.ErrConflict) {
			httpx.JSON(w, http.StatusOK, map[string]any{"recorded": false})
			return
		}
		h.respondErr(w, "mark invoice viewed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"recorded": true, "status": inv.Status})
}

func (h *Handler) markPaid(w http.ResponseWriter, r *http.Request) {
	id, ok := h.paramID(w, r)
	if !ok {
		return
	}
	inv, err := h.service.MarkPaid(r.Context(), id)
	if err != nil {
		h.respondErr(w, "mark invoice paid", err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
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
		httpx.Problem(w, http.StatusNotFound, "Not Found", "invoice not found")
	case errors.Is(err, shared.ErrConflict):
		httpx.Problem(w, http.StatusConflict, "Invalid Transition", err.Error())
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
