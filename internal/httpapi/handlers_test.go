package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"comanda/backend/internal/export"
	"comanda/backend/internal/service"
	"comanda/backend/internal/store"
	"comanda/backend/internal/store/memory"
	"comanda/backend/internal/suggestion"
)

// newTestAPI builds a full API over the seeded in-memory store so handler
// tests exercise the complete request path.
func newTestAPI(t *testing.T) *API {
	t.Helper()

	repo := store.NewRepository(memory.NewSeeded())
	exporter := export.NewPDFExporter(filepath.Join(t.TempDir(), "exports"))
	svc := service.New(repo, suggestion.NewEngine(5), exporter)

	return New(svc, "*")
}

func doJSON(t *testing.T, handler http.Handler, method string, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var payload []byte
	switch v := body.(type) {
	case nil:
	case string:
		payload = []byte(v)
	default:
		var err error
		payload, err = json.Marshal(v)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body), rec.Body.String())
	return body
}

func createOrder(t *testing.T, handler http.Handler, name string) int64 {
	t.Helper()
	rec := doJSON(t, handler, http.MethodPost, "/api/v1/orders", map[string]any{"name": name})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var body struct {
		Order struct {
			ID int64 `json:"id"`
		} `json:"order"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body.Order.ID
}

func TestHandleHealth(t *testing.T) {
	handler := newTestAPI(t).Handler()

	rec := doJSON(t, handler, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeBody(t, rec)["ok"])
}

func TestOrderLifecycleOverHTTP(t *testing.T) {
	handler := newTestAPI(t).Handler()
	id := createOrder(t, handler, "Mesa 1")
	base := fmt.Sprintf("/api/v1/orders/%d", id)

	rec := doJSON(t, handler, http.MethodPost, base+"/items", map[string]any{"name": "coca cola lata", "quantity": 3})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	order := decodeBody(t, rec)["order"].(map[string]any)
	assert.Equal(t, "18", order["total"])

	rec = doJSON(t, handler, http.MethodPost, base+"/payments", map[string]any{"amount": "10", "payment_method": "Dinheiro"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, handler, http.MethodPost, base+"/payments", map[string]any{"amount": "9", "payment_method": "Dinheiro"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
	assert.Contains(t, decodeBody(t, rec)["error"], "exceeds")

	rec = doJSON(t, handler, http.MethodDelete, base, nil)
	require.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())

	rec = doJSON(t, handler, http.MethodDelete, base+"?confirm=true", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	entry := decodeBody(t, rec)["report_entry"].(map[string]any)
	assert.Equal(t, "10", entry["amountPaid"])

	rec = doJSON(t, handler, http.MethodGet, base, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/reports", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "10", decodeBody(t, rec)["total_paid"])
}

func TestFiadoPaymentOverHTTP(t *testing.T) {
	handler := newTestAPI(t).Handler()
	id := createOrder(t, handler, "Mesa 2")
	base := fmt.Sprintf("/api/v1/orders/%d", id)

	rec := doJSON(t, handler, http.MethodPost, base+"/items", map[string]any{"name": "Prato Feito", "quantity": 2})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, handler, http.MethodPost, base+"/payments", map[string]any{"payment_method": "Fiado", "client_id": 2})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["transferred"])
	assert.Equal(t, true, body["order"].(map[string]any)["isClosed"])

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/clients/2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body = decodeBody(t, rec)
	assert.Equal(t, "50", body["due"])

	rec = doJSON(t, handler, http.MethodPost, fmt.Sprintf("/api/v1/clients/2/orders/%d/settle", id), map[string]any{"payment_method": "pix"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "50", decodeBody(t, rec)["report_entry"].(map[string]any)["amountPaid"])
}

func TestRemoveItemOverHTTP(t *testing.T) {
	handler := newTestAPI(t).Handler()
	id := createOrder(t, handler, "Mesa 3")
	base := fmt.Sprintf("/api/v1/orders/%d", id)

	rec := doJSON(t, handler, http.MethodPost, base+"/items", map[string]any{"name": "Coxinha", "quantity": 2})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, handler, http.MethodPost, base+"/items/remove", map[string]any{"name": "Coxinha", "quantity": 3})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())

	rec = doJSON(t, handler, http.MethodPost, base+"/items/remove", map[string]any{"name": "coxinha", "quantity": 1})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "7", decodeBody(t, rec)["order"].(map[string]any)["total"])
}

func TestRequestValidation(t *testing.T) {
	handler := newTestAPI(t).Handler()
	id := createOrder(t, handler, "Mesa 4")

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/orders", map[string]any{"name": ""})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["error"], "name is required")

	rec = doJSON(t, handler, http.MethodPost, fmt.Sprintf("/api/v1/orders/%d/items", id), map[string]any{"name": "Coxinha", "quantity": 0})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, handler, http.MethodPost, fmt.Sprintf("/api/v1/orders/%d/payments", id), map[string]any{"amount": "5", "payment_method": "cheque"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/orders", `{"name":"Mesa","table":3}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/orders/abc", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, handler, http.MethodPut, "/api/v1/orders", nil)
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestProductEndpoints(t *testing.T) {
	handler := newTestAPI(t).Handler()

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/products", map[string]any{"name": "caipirinha", "price": "18.5"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	product := decodeBody(t, rec)["product"].(map[string]any)
	assert.Equal(t, "Caipirinha", product["name"])
	id := int(product["id"].(float64))

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/products", map[string]any{"name": "Brinde", "price": "0"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/products/search?q=caip", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody(t, rec)["products"], 1)

	rec = doJSON(t, handler, http.MethodPatch, fmt.Sprintf("/api/v1/products/%d", id), map[string]any{"name": "Caipirinha de limão", "price": "20"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, handler, http.MethodDelete, fmt.Sprintf("/api/v1/products/%d", id), nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, handler, http.MethodDelete, fmt.Sprintf("/api/v1/products/%d", id), nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestClientEndpoints(t *testing.T) {
	handler := newTestAPI(t).Handler()

	rec := doJSON(t, handler, http.MethodGet, "/api/v1/clients", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody(t, rec)["clients"], 3)

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/clients", map[string]any{"name": "Ana Lima", "phone": "3333-4444"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, handler, http.MethodPatch, "/api/v1/clients/4", map[string]any{"name": "Ana Lima", "phone": "5555-6666"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "5555-6666", decodeBody(t, rec)["client"].(map[string]any)["phone"])

	rec = doJSON(t, handler, http.MethodDelete, "/api/v1/clients/4", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/clients/4", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCashEndpoints(t *testing.T) {
	handler := newTestAPI(t).Handler()

	rec := doJSON(t, handler, http.MethodGet, "/api/v1/cash/report", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/cash/transactions", map[string]any{"bucket": "cash", "amount": "5"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/cash/open", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/cash/open", nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/cash/transactions", map[string]any{"bucket": "pix", "amount": "12.5"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/cash/transactions", map[string]any{"bucket": "cash", "amount": "-1"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/cash", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "12.5", decodeBody(t, rec)["grand_total"])

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/cash/close", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Contains(t, body["export_path"], "relatorio-caixa-")

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/cash/report?format=pdf", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))
}

func TestReportFormats(t *testing.T) {
	handler := newTestAPI(t).Handler()
	id := createOrder(t, handler, "Mesa 5")
	base := fmt.Sprintf("/api/v1/orders/%d", id)

	rec := doJSON(t, handler, http.MethodPost, base+"/items", map[string]any{"name": "Pudim", "quantity": 1})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, handler, http.MethodPost, base+"/payments", map[string]any{"amount": "9", "payment_method": "Débito"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/reports?format=csv", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "section,key,value\n"))
	assert.Contains(t, rec.Body.String(), "payment,Débito_total,9.00")

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/reports?format=html", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Relatório de Pagamentos")

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/reports?from=2000-01-01&to=2000-01-02", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0", decodeBody(t, rec)["total_paid"])

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/reports?from=19/10/2026", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
