package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/tawreed/tawreed/internal/invoices"
	"github.com/tawreed/tawreed/internal/platform/httpx"
	"github.com/tawreed/tawreed/internal/shared"
	"github.com/tawreed/tawreed/internal/shipments"
)

type stubProvider struct {
	session Session
	err     error
}

func (s stubProvider) CreateSession(context.Context, float64, string, string, string) (Session, error) {
	return s.session, s.err
}

func (s stubProvider) GetSession(context.Context, string) (Session, error) {
	return s.session, s.err
}

type stubShipments struct {
	shipment shipments.Shipment
	paid     bool
}

func (s *stubShipments) Get(context.Context, int64) (shipments.Shipment, error) {
	return s.shipment, nil
}

func (s *stubShipments) MarkPaid(context.Context, int64) error {
	s.paid = true
	return nil
}

type stubInvoices struct {
	invoice invoices.Invoice
	paid    bool
}

func (s *stubInvoices) Get(context.Context, int64) (invoices.Invoice, error) {
	return s.invoice, nil
}

func (s *stubInvoices) MarkPaid(context.Context, int64) (invoices.Invoice, error) {
	s.paid = true
	s.invoice.Status = invoices.StatusPaid
	return s.invoice, nil
}

type memoryIdem struct {
	seen map[string]bool
}

func (m *memoryIdem) CheckAndInsert(_ context.Context, key, _ string) error {
	if m.seen == nil {
		m.seen = map[string]bool{}
	}
	if m.seen[key] {
		return shared.ErrIdempotencyConflict
	}
	m.seen[key] = true
	return nil
}

func newTestRouter(provider SessionAPI, shipmentStore ShipmentStore, invoiceStore InvoiceStore) chi.Router {
	h := NewHandler(slog.Default(), provider, shipmentStore, invoiceStore, &memoryIdem{}, "https://app.example.com/return")
	r := chi.NewRouter()
	h.MountRoutes(r)
	return r
}

func postJSON(t *testing.T, r chi.Router, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestCreatePaymentReturnsRedirect(t *testing.T) {
	provider := stubProvider{session: Session{ID: "sess_1", RedirectURL: "https://pay.example/s/1"}}
	store := &stubShipments{shipment: shipments.Shipment{ID: 5, Amount: 100, Currency: "OMR"}}
	r := newTestRouter(provider, store, &stubInvoices{})

	rec := postJSON(t, r, "/create-payment", map[string]any{"shipment_id": 5})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	require.Equal(t, true, body["success"])
	data := body["data"].(map[string]any)
	require.Equal(t, "sess_1", data["session_id"])
	require.Equal(t, "https://pay.example/s/1", data["redirect_url"])
}

func TestCreatePaymentReplaysIdempotencyKey(t *testing.T) {
	provider := stubProvider{session: Session{ID: "sess_1", RedirectURL: "https://pay.example/s/1"}}
	store := &stubShipments{shipment: shipments.Shipment{ID: 5, Amount: 100, Currency: "OMR"}}
	r := newTestRouter(provider, store, &stubInvoices{})

	raw, err := json.Marshal(map[string]any{"shipment_id": 5})
	require.NoError(t, err)
	for i, want := range []int{http.StatusOK, http.StatusConflict} {
		req := httptest.NewRequest(http.MethodPost, "/create-payment", bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Idempotency-Key", "idem-1")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		require.Equal(t, want, rec.Code, "attempt %d", i+1)
	}
}

func TestCreatePaymentAlreadyPaid(t *testing.T) {
	store := &stubShipments{shipment: shipments.Shipment{ID: 5, Amount: 100, Currency: "OMR", Paid: true}}
	r := newTestRouter(stubProvider{}, store, &stubInvoices{})

	rec := postJSON(t, r, "/create-payment", map[string]any{"shipment_id": 5})
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, false, decodeBody(t, rec)["success"])
}

func TestVerifyPaymentMarksPaid(t *testing.T) {
	provider := stubProvider{session: Session{ID: "sess_1", Status: SessionPaid, ReferenceID: "shipment:5"}}
	store := &stubShipments{shipment: shipments.Shipment{ID: 5}}
	r := newTestRouter(provider, store, &stubInvoices{})

	rec := postJSON(t, r, "/verify-payment", map[string]any{"session_id": "sess_1", "shipment_id": 5})
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, store.paid)
}

func TestVerifyPaymentPendingDoesNotMark(t *testing.T) {
	provider := stubProvider{session: Session{ID: "sess_1", Status: "pending", ReferenceID: "shipment:5"}}
	store := &stubShipments{shipment: shipments.Shipment{ID: 5}}
	r := newTestRouter(provider, store, &stubInvoices{})

	rec := postJSON(t, r, "/verify-payment", map[string]any{"session_id": "sess_1", "shipment_id": 5})
	require.Equal(t, http.StatusOK, rec.Code)
	require.False(t, store.paid)

	data := decodeBody(t, rec)["data"].(map[string]any)
	require.Equal(t, false, data["paid"])
}

func TestVerifyPaymentWrongReference(t *testing.T) {
	provider := stubProvider{session: Session{ID: "sess_1", Status: SessionPaid, ReferenceID: "shipment:9"}}
	store := &stubShipments{shipment: shipments.Shipment{ID: 5}}
	r := newTestRouter(provider, store, &stubInvoices{})

	rec := postJSON(t, r, "/verify-payment", map[string]any{"session_id": "sess_1", "shipment_id": 5})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.False(t, store.paid)
}

func TestProviderErrorSanitised(t *testing.T) {
	provider := stubProvider{err: errors.Join(httpx.ErrUpstream, errors.New("connect timeout to 10.0.0.3"))}
	store := &stubShipments{shipment: shipments.Shipment{ID: 5, Amount: 100, Currency: "OMR"}}
	r := newTestRouter(provider, store, &stubInvoices{})

	rec := postJSON(t, r, "/create-payment", map[string]any{"shipment_id": 5})
	require.Equal(t, http.StatusBadGateway, rec.Code)
	require.NotContains(t, rec.Body.String(), "10.0.0.3")
}

func TestCreateInvoicePaymentRejectsDraft(t *testing.T) {
	store := &stubInvoices{invoice: invoices.Invoice{ID: 3, Status: invoices.StatusDraft, Total: 105, Currency: "OMR"}}
	r := newTestRouter(stubProvider{}, &stubShipments{}, store)

	rec := postJSON(t, r, "/create-invoice-payment", map[string]any{"invoice_id": 3})
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestVerifyInvoicePaymentMarksPaid(t *testing.T) {
	provider := stubProvider{session: Session{ID: "sess_2", Status: SessionPaid, ReferenceID: "invoice:3"}}
	store := &stubInvoices{invoice: invoices.Invoice{ID: 3, Status: invoices.StatusSent, Total: 105, Currency: "OMR"}}
	r := newTestRouter(provider, &stubShipments{}, store)

	rec := postJSON(t, r, "/verify-invoice-payment", map[string]any{"session_id": "sess_2", "invoice_id": 3})
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, store.paid)
}
