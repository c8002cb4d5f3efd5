package shipments

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
	// Public tracking by reference, no capability needed.
	r.Get("/track/{reference}", h.track)

	r.Group(func(r chi.Router) {
		r.Use(h.roles.Require(func(c roles.Capabilities) bool { return c.CanViewAllOrders }))
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.roles.Require(func(c roles.Capabilities) bool { return c.CanCreateOrders }))
		r.Post("/", h.create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.roles.Require(func(c roles.Capabilities) bool { return c.CanManageWorkflow }))
		r.Post("/{id}/advance", h.advance)
		r.Post("/{id}/reject", h.reject)
		r.Post("/{id}/assign", h.assign)
	})
	r.Post("/{id}/accept", h.partnerAccept)
}

func (h *Handler) track(w http.ResponseWriter, r *http.Request) {
	sh, timeline, err := h.service.Track(r.Context(), chi.URLParam(r, "reference"))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "no shipment with this reference")
			return
		}
		h.logger.Error("track shipment", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"reference":   sh.Reference,
		"origin":      sh.Origin,
		"destination": sh.Destination,
		"status":      sh.Status,
		"timeline":    timeline,
	})
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
		stage := Stage(st)
		filters.Status = &stage
	}
	if pid, err := strconv.ParseInt(q.Get("partner_id"), 10, 64); err == nil {
		filters.PartnerID = &pid
	}
	shipments, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list shipments", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"shipments":  shipments,
		"pagination": shared.NewPagination(filters.Page, filters.Limit, total),
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.paramID(w, r)
	if !ok {
		return
	}
	sh, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondErr(w, "get shipment", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"shipment": sh,
		"timeline": sh.Timeline(),
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
	principal := shared.PrincipalFromContext(r.Context())
	sh, err := h.service.Create(r.Context(), principal.UserID, in)
	if err != nil {
		h.respondErr(w, "create shipment", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, sh)
}

func (h *Handler) advance(w http.ResponseWriter, r *http.Request) {
	id, ok := h.paramID(w, r)
	if !ok {
		return
	}
	sh, err := h.service.Advance(r.Context(), id)
	if err != nil {
		h.respondErr(w, "advance shipment", err)
		return
	}
	httpx.JSON(w, http.StatusOK, sh)
}

func (h *Handler) reject(w http.ResponseWriter, r *http.Request) {
	id, ok := h.paramID(w, r)
	if !ok {
		return
	}
	sh, err := h.service.Reject(r.Context(), id)
	if err != nil {
		h.respondErr(w, "reject shipment", err)
		return
	}
	httpx.JSON(w, http.StatusOK, sh)
}

type assignRequest struct {
	PartnerID  int64  `json:"partner_id" validate:"required"`
	DriverName string `json:"driver_name"`
}

func (h *Handler) assign(w http.ResponseWriter, r *http.Request) {
	id, ok := h.paramID(w, r)
	if !ok {
		return
	}
	var req assignRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	sh, err := h.service.AssignPartner(r.Context(), id, req.PartnerID, req.DriverName)
	if err != nil {
		h.respondErr(w, "assign partner", err)
		return
	}
	httpx.JSON(w, http.StatusOK, sh)
}

type acceptRequest struct {
	PartnerID int64 `json:"partner_id" validate:"required"`
}

func (h *Handler) partnerAccept(w http.ResponseWriter, r *http.Request) {
	id, ok := h.paramID(w, r)
	if !ok {
		return
	}
	var req acceptRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	sh, err := h.service.PartnerAccept(r.Context(), id, req.PartnerID)
	if err != nil {
		h.respondErr(w, "partner accept", err)
		return
	}
	httpx.JSON(w, http.StatusOK, sh)
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
		httpx.Problem(w, http.StatusNotFound, "Not Found", "shipment not found")
	case errors.Is(err, shared.ErrConflict):
		httpx.Problem(w, http.StatusConflict, "Invalid Transition", err.Error())
	case errors.Is(err, shared.ErrForbidden):
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "not permitted")
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
