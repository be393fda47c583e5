package postgres

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/pieroLaos18/System-sales/internal/domain"
	"github.com/pieroLaos18/System-sales/internal/store"
)

// Requires a scratch database; skipped unless SYSTEMSALES_TEST_DATABASE_URL
// is set. The schema must already be applied.
func openTestStore(t *testing.T) *Store {
	t.Helper()

	dsn := os.Getenv("SYSTEMSALES_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("SYSTEMSALES_TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	st, err := New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestSaleLifecycleIntegration(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	product, err := st.CreateProduct(ctx, domain.Product{
		Name:       "Integration Arroz " + time.Now().Format("150405.000"),
		PriceCents: 10000,
		Stock:      2,
		StockMin:   1,
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	sale, err := st.CreateSale(ctx, domain.Sale{
		Customer:      "Cliente Integración",
		PaymentMethod: domain.PaymentCash,
		Items: []domain.SaleDetail{
			{ProductID: product.ID, Qty: 2},
		},
	}, "Tester")
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}
	if sale.SubtotalCents != 20000 || sale.TaxCents != 3600 || sale.TotalCents != 23600 {
		t.Fatalf("unexpected totals: %+v", sale)
	}

	after, err := st.GetProductByID(ctx, product.ID)
	if err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if after.Stock != 0 {
		t.Fatalf("expected stock 0 after sale, got %d", after.Stock)
	}

	// Stock is exhausted; another sale against the same product must fail
	// without touching anything.
	_, err = st.CreateSale(ctx, domain.Sale{
		Customer:      "Cliente Integración",
		PaymentMethod: domain.PaymentCash,
		Items: []domain.SaleDetail{
			{ProductID: product.ID, Qty: 1},
		},
	}, "Tester")
	var stockErr *store.InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}
	if stockErr.ProductID != product.ID {
		t.Fatalf("expected offending product %d, got %d", product.ID, stockErr.ProductID)
	}

	if err := st.CancelSale(ctx, sale.ID, "prueba de integración", 0); err != nil {
		t.Fatalf("cancel sale: %v", err)
	}

	restored, err := st.GetProductByID(ctx, product.ID)
	if err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if restored.Stock != 2 {
		t.Fatalf("expected stock restored to 2, got %d", restored.Stock)
	}

	err = st.CancelSale(ctx, sale.ID, "otra vez", 0)
	var cancelledErr *store.SaleCancelledError
	if !errors.As(err, &cancelledErr) {
		t.Fatalf("expected already cancelled, got %v", err)
	}

	final, err := st.GetProductByID(ctx, product.ID)
	if err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if final.Stock != 2 {
		t.Fatalf("expected stock unchanged at 2 after double cancel, got %d", final.Stock)
	}
}

func TestCancelUnknownSaleIntegration(t *testing.T) {
	st := openTestStore(t)

	err := st.CancelSale(context.Background(), 999999999, "no existe", 0)
	var notFound *store.SaleNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected sale not found, got %v", err)
	}
}
