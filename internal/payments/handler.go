package payments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/tawreed/tawreed/internal/invoices"
	"github.com/tawreed/tawreed/internal/platform/httpx"
	"github.com/tawreed/tawreed/internal/shared"
	"github.com/tawreed/tawreed/internal/shipments"
)

// SessionAPI is the provider surface the handlers use.
type SessionAPI interface {
	CreateSession(ctx context.Context, amount float64, currency, referenceID, returnURL string) (Session, error)
	GetSession(ctx context.Context, sessionID string) (Session, error)
}

// ShipmentStore is the slice of the shipments service payments need.
type ShipmentStore interface {
	Get(ctx context.Context, id int64) (shipments.Shipment, error)
	MarkPaid(ctx context.Context, id int64) error
}

// InvoiceStore is the slice of the invoices service payments need.
type InvoiceStore interface {
	Get(ctx context.Context, id int64) (invoices.Invoice, error)
	MarkPaid(ctx context.Context, id int64) (invoices.Invoice, error)
}

// IdempotencyGuard fences duplicate checkout submissions.
type IdempotencyGuard interface {
	CheckAndInsert(ctx context.Context, key, module string) error
}

// Handler exposes the checkout endpoints. Handlers are stateless: every
// request carries the IDs it operates on, and session state lives with the
// provider.
type Handler struct {
	logger    *slog.Logger
	provider  SessionAPI
	shipments ShipmentStore
	invoices  InvoiceStore
	idem      IdempotencyGuard
	returnURL string
	validate  *validator.Validate
}

func NewHandler(logger *slog.Logger, provider SessionAPI, shipmentStore ShipmentStore, invoiceStore InvoiceStore, idem IdempotencyGuard, returnURL string) *Handler {
	return &Handler{
		logger:    logger,
		provider:  provider,
		shipments: shipmentStore,
		invoices:  invoiceStore,
		idem:      idem,
		returnURL: returnURL,
		validate:  validator.New(),
	}
}

// guardIdempotency consumes the Idempotency-Key header when present. A
// replayed key means the client already created a session; creating another
// would double-charge.
func (h *Handler) guardIdempotency(w http.ResponseWriter, r *http.Request) bool {
	key := r.Header.Get("Idempotency-Key")
	if key == "" || h.idem == nil {
		return true
	}
	if err := h.idem.CheckAndInsert(r.Context(), key, "payments"); err != nil {
		if errors.Is(err, shared.ErrIdempotencyConflict) {
			httpx.Failure(w, http.StatusConflict, "duplicate payment request")
			return false
		}
		h.respondErr(w, "idempotency check", err)
		return false
	}
	return true
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/create-payment", h.createPayment)
	r.Post("/verify-payment", h.verifyPayment)
	r.Post("/create-invoice-payment", h.createInvoicePayment)
	r.Post("/verify-invoice-payment", h.verifyInvoicePayment)
}

type createPaymentRequest struct {
	ShipmentID int64 `json:"shipment_id" validate:"required"`
}

func (h *Handler) createPayment(w http.ResponseWriter, r *http.Request) {
	var req createPaymentRequest
	if !h.decode(w, r, &req) {
		return
	}
	if !h.guardIdempotency(w, r) {
		return
	}
	sh, err := h.shipments.Get(r.Context(), req.ShipmentID)
	if err != nil {
		h.respondErr(w, "load shipment", err)
		return
	}
	if sh.Paid {
		httpx.Failure(w, http.StatusConflict, "shipment is already paid")
		return
	}
	if sh.Amount <= 0 {
		httpx.Failure(w, http.StatusConflict, "shipment has no payable amount")
		return
	}
	session, err := h.provider.CreateSession(r.Context(), sh.Amount, sh.Currency, fmt.Sprintf("shipment:%d", sh.ID), h.returnURL)
	if err != nil {
		h.respondErr(w, "create payment session", err)
		return
	}
	httpx.Success(w, map[string]any{
		"session_id":   session.ID,
		"redirect_url": session.RedirectURL,
	})
}

type verifyPaymentRequest struct {
	SessionID  string `json:"session_id" validate:"required"`
	ShipmentID int64  `json:"shipment_id" validate:"required"`
}

func (h *Handler) verifyPayment(w http.ResponseWriter, r *http.Request) {
	var req verifyPaymentRequest
	if !h.decode(w, r, &req) {
		return
	}
	session, err := h.provider.GetSession(r.Context(), req.SessionID)
	if err != nil {
		h.respondErr(w, "verify payment session", err)
		return
	}
	if session.ReferenceID != fmt.Sprintf("shipment:%d", req.ShipmentID) {
		httpx.Failure(w, http.StatusBadRequest, "session does not belong to this shipment")
		return
	}
	if session.Status != SessionPaid {
		httpx.Success(w, map[string]any{"paid": false, "status": session.Status})
		return
	}
	if err := h.shipments.MarkPaid(r.Context(), req.ShipmentID); err != nil {
		h.respondErr(w, "mark shipment paid", err)
		return
	}
	httpx.Success(w, map[string]any{"paid": true})
}

type createInvoicePaymentRequest struct {
	InvoiceID int64 `json:"invoice_id" validate:"required"`
}

func (h *Handler) createInvoicePayment(w http.ResponseWriter, r *http.Request) {
	var req createInvoicePaymentRequest
	if !h.decode(w, r, &req) {
		return
	}
	if !h.guardIdempotency(w, r) {
		return
	}
	inv, err := h.invoices.Get(r.Context(), req.InvoiceID)
	if err != nil {
		h.respondErr(w, "load invoice", err)
		return
	}
	if !invoices.CanTransition(inv.Status, invoices.StatusPaid) {
		httpx.Failure(w, http.StatusConflict, fmt.Sprintf("invoice is %s and cannot be paid", inv.Status))
		return
	}
	session, err := h.provider.CreateSession(r.Context(), inv.Total, inv.Currency, fmt.Sprintf("invoice:%d", inv.ID), h.returnURL)
	if err != nil {
		h.respondErr(w, "create invoice payment session", err)
		return
	}
	httpx.Success(w, map[string]any{
		"session_id":   session.ID,
		"redirect_url": session.RedirectURL,
	})
}

type verifyInvoicePaymentRequest struct {
	SessionID string `json:"session_id" validate:"required"`
	InvoiceID int64  `json:"invoice_id" validate:"required"`
}

func (h *Handler) verifyInvoicePayment(w http.ResponseWriter, r *http.Request) {
	var req verifyInvoicePaymentRequest
	if !h.decode(w, r, &req) {
		return
	}
	session, err := h.provider.GetSession(r.Context(), req.SessionID)
	if err != nil {
		h.respondErr(w, "verify invoice session", err)
		return
	}
	if session.ReferenceID != fmt.Sprintf("invoice:%d", req.InvoiceID) {
		httpx.Failure(w, http.StatusBadRequest, "session does not belong to this invoice")
		return
	}
	if session.Status != SessionPaid {
		httpx.Success(w, map[string]any{"paid": false, "status": session.Status})
		return
	}
	if _, err := h.invoices.MarkPaid(r.Context(), req.InvoiceID); err != nil {
		h.respondErr(w, "mark invoice paid", err)
		return
	}
	httpx.Success(w, map[string]any{"paid": true})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := httpx.DecodeJSON(r, dst); err != nil {
		httpx.Failure(w, http.StatusBadRequest, err.Error())
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		httpx.Failure(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// respondErr keeps provider detail out of client responses: upstream
// failures log the cause and return a generic message.
func (h *Handler) respondErr(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		httpx.Failure(w, http.StatusNotFound, "not found")
	case errors.Is(err, shared.ErrConflict):
		httpx.Failure(w, http.StatusConflict, "conflict")
	case errors.Is(err, httpx.ErrUpstream):
		h.logger.Error(op, slog.Any("error", err))
		httpx.Failure(w, http.StatusBadGateway, "payment provider is unavailable")
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.Failure(w, http.StatusInternalServerError, "internal error")
	}
}
