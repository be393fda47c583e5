package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pieroLaos18/System-sales/internal/domain"
	"github.com/pieroLaos18/System-sales/internal/service"
	"github.com/pieroLaos18/System-sales/internal/store/memory"
)

// newTestAPI builds a full API with an in-memory store, real AuthManager and
// real Service so handler tests exercise the complete request path.
func newTestAPI(t *testing.T) (*API, *memory.Store) {
	t.Helper()

	repo := memory.NewSeeded()
	svc := service.New(repo, nil, 0)
	auth := NewAuthManager("test-secret-key", time.Hour, repo)

	return New(svc, auth, "*"), repo
}

func seedProduct(t *testing.T, repo *memory.Store, priceCents int64, stock int) domain.Product {
	t.Helper()
	product, err := repo.CreateProduct(context.Background(), domain.Product{
		Name:       "Producto HTTP",
		Category:   "pruebas",
		PriceCents: priceCents,
		Stock:      stock,
		Active:     true,
	})
	if err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return *product
}

func TestHandleHealth(t *testing.T) {
	api, _ := newTestAPI(t)
	handler := api.Handler()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["ok"] != true {
		t.Fatalf("expected ok:true, got %v", body["ok"])
	}
}

func TestHandleLogin_Success(t *testing.T) {
	api, _ := newTestAPI(t)
	handler := api.Handler()

	payload, _ := json.Marshal(map[string]string{
		"username": "admin",
		"password": "admin123",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["access_token"] == "" || body["access_token"] == nil {
		t.Fatalf("expected access_token in response, got %v", body)
	}
}

func TestHandleLogin_InvalidCredentials(t *testing.T) {
	api, _ := newTestAPI(t)
	handler := api.Handler()

	payload, _ := json.Marshal(map[string]string{
		"username": "admin",
		"password": "wrongpassword",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d (body: %s)", rec.Code, rec.Body.String())
	}
}

func TestHandleProducts_RequiresAuth(t *testing.T) {
	api, _ := newTestAPI(t)
	handler := api.Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/productos", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestHandleProducts_ListWithValidToken(t *testing.T) {
	api, _ := newTestAPI(t)
	handler := api.Handler()
	token := loginAsAdmin(t, api)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/productos", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	var body struct {
		Productos []domain.Product `json:"productos"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.Productos) == 0 {
		t.Fatalf("expected seeded products in listing")
	}
}

func TestHandleSales_FullLifecycle(t *testing.T) {
	api, repo := newTestAPI(t)
	handler := api.Handler()
	product := seedProduct(t, repo, 10000, 5)
	token := loginAsAdmin(t, api)
	csrf := fetchCSRFToken(t, api)

	payload, _ := json.Marshal(map[string]any{
		"cliente":     "María Quispe",
		"metodo_pago": "efectivo",
		"productos": []map[string]any{
			{"id": product.ID, "cantidad": 2},
		},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ventas", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-CSRF-Token", csrf)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	var created domain.SaleCreateResponse
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if created.SaleID < 1 {
		t.Fatalf("expected venta_id in response, got %+v", created)
	}

	// Detail carries the computed totals.
	detailReq := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/ventas/%d", created.SaleID), nil)
	detailReq.Header.Set("Authorization", "Bearer "+token)
	detailRec := httptest.NewRecorder()
	handler.ServeHTTP(detailRec, detailReq)
	if detailRec.Code != http.StatusOK {
		t.Fatalf("expected 200 for detail, got %d", detailRec.Code)
	}
	var sale domain.Sale
	if err := json.NewDecoder(detailRec.Body).Decode(&sale); err != nil {
		t.Fatalf("decode sale: %v", err)
	}
	if sale.SubtotalCents != 20000 || sale.TaxCents != 3600 || sale.TotalCents != 23600 {
		t.Fatalf("unexpected totals %+v", sale)
	}

	// Receipt defaults to a boleta numbered from the sale id.
	receiptReq := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/ventas/%d/comprobante", created.SaleID), nil)
	receiptReq.Header.Set("Authorization", "Bearer "+token)
	receiptRec := httptest.NewRecorder()
	handler.ServeHTTP(receiptRec, receiptReq)
	if receiptRec.Code != http.StatusOK {
		t.Fatalf("expected 200 for receipt, got %d", receiptRec.Code)
	}
	var receipt domain.Receipt
	if err := json.NewDecoder(receiptRec.Body).Decode(&receipt); err != nil {
		t.Fatalf("decode receipt: %v", err)
	}
	if receipt.Type != "boleta" {
		t.Fatalf("expected boleta, got %q", receipt.Type)
	}
	if want := fmt.Sprintf("B%06d", created.SaleID); receipt.Number != want {
		t.Fatalf("expected number %q, got %q", want, receipt.Number)
	}

	// Cancellation restores stock and confirms with a fixed message.
	cancelBody, _ := json.Marshal(map[string]string{"motivo": "producto dañado"})
	cancelReq := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/v1/ventas/%d/anular", created.SaleID), bytes.NewReader(cancelBody))
	cancelReq.Header.Set("Content-Type", "application/json")
	cancelReq.Header.Set("Authorization", "Bearer "+token)
	cancelReq.Header.Set("X-CSRF-Token", csrf)
	cancelRec := httptest.NewRecorder()
	handler.ServeHTTP(cancelRec, cancelReq)
	if cancelRec.Code != http.StatusOK {
		t.Fatalf("expected 200 for cancel, got %d (body: %s)", cancelRec.Code, cancelRec.Body.String())
	}
	var cancelResp domain.SaleCancelResponse
	if err := json.NewDecoder(cancelRec.Body).Decode(&cancelResp); err != nil {
		t.Fatalf("decode cancel response: %v", err)
	}
	if cancelResp.Message != domain.CancelConfirmationMessage {
		t.Fatalf("unexpected cancel message %q", cancelResp.Message)
	}

	// A second cancellation conflicts.
	retryReq := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/v1/ventas/%d/anular", created.SaleID), bytes.NewReader(cancelBody))
	retryReq.Header.Set("Content-Type", "application/json")
	retryReq.Header.Set("Authorization", "Bearer "+token)
	retryReq.Header.Set("X-CSRF-Token", csrf)
	retryRec := httptest.NewRecorder()
	handler.ServeHTTP(retryRec, retryReq)
	if retryRec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for double cancel, got %d", retryRec.Code)
	}
}

func TestHandleSales_InsufficientStockConflicts(t *testing.T) {
	api, repo := newTestAPI(t)
	handler := api.Handler()
	product := seedProduct(t, repo, 500, 2)
	token := loginAsAdmin(t, api)
	csrf := fetchCSRFToken(t, api)

	payload, _ := json.Marshal(map[string]any{
		"cliente": "Cliente",
		"productos": []map[string]any{
			{"id": product.ID, "cantidad": 5},
		},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ventas", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-CSRF-Token", csrf)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	after, err := repo.GetProductByID(context.Background(), product.ID)
	if err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if after.Stock != 2 {
		t.Fatalf("expected stock unchanged at 2, got %d", after.Stock)
	}
}

func TestHandleSales_UnknownProductNotFound(t *testing.T) {
	api, _ := newTestAPI(t)
	handler := api.Handler()
	token := loginAsAdmin(t, api)
	csrf := fetchCSRFToken(t, api)

	payload, _ := json.Marshal(map[string]any{
		"cliente": "Cliente",
		"productos": []map[string]any{
			{"id": 999999, "cantidad": 1},
		},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ventas", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-CSRF-Token", csrf)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d (body: %s)", rec.Code, rec.Body.String())
	}
}

func TestHandleReports_ForbiddenForVendedor(t *testing.T) {
	api, _ := newTestAPI(t)
	handler := api.Handler()
	token := loginAsVendedor(t, api)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reportes/resumen", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestHandleReports_SummaryForAdmin(t *testing.T) {
	api, _ := newTestAPI(t)
	handler := api.Handler()
	token := loginAsAdmin(t, api)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reportes/resumen", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	var summary domain.SalesSummary
	if err := json.NewDecoder(rec.Body).Decode(&summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
}

func TestHandleWeekdayReport_ReturnsSevenDays(t *testing.T) {
	api, _ := newTestAPI(t)
	handler := api.Handler()
	token := loginAsAdmin(t, api)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reportes/dias?semana=anterior", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	var body struct {
		Dias []domain.WeekdayTotal `json:"dias"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.Dias) != 7 {
		t.Fatalf("expected 7 weekday rows, got %d", len(body.Dias))
	}
}

func TestHandleUsers_CreateSeller(t *testing.T) {
	api, _ := newTestAPI(t)
	handler := api.Handler()
	token := loginAsAdmin(t, api)
	csrf := fetchCSRFToken(t, api)

	payload, _ := json.Marshal(map[string]string{
		"username": "vendedor2",
		"nombre":   "Segundo Vendedor",
		"password": "clave123",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/usuarios", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-CSRF-Token", csrf)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	var user domain.UserView
	if err := json.NewDecoder(rec.Body).Decode(&user); err != nil {
		t.Fatalf("decode user: %v", err)
	}
	if user.Username != "vendedor2" || user.Role != domain.RoleVendedor {
		t.Fatalf("unexpected user %+v", user)
	}
}
