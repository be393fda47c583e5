package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pieroLaos18/System-sales/internal/domain"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

// The sale errors below are typed rather than plain sentinels because the
// HTTP layer and the audit trail both need the offending id.

type ProductNotFoundError struct {
	ProductID int64
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("producto %d no encontrado", e.ProductID)
}

type InsufficientStockError struct {
	ProductID int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para el producto %d", e.ProductID)
}

type SaleNotFoundError struct {
	SaleID int64
}

func (e *SaleNotFoundError) Error() string {
	return fmt.Sprintf("venta %d no encontrada", e.SaleID)
}

type SaleCancelledError struct {
	SaleID int64
}

func (e *SaleCancelledError) Error() string {
	return fmt.Sprintf("la venta %d ya está anulada", e.SaleID)
}

type Repository interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProductByID(ctx context.Context, id int64) (*domain.Product, error)
	CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	UpdateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	DeactivateProduct(ctx context.Context, id int64) error
	TopSellingProducts(ctx context.Context, limit int) ([]domain.TopProduct, error)

	// CreateSale persists the sale header, its detail lines, the stock
	// decrements, and one activity record in a single atomic transaction.
	// Unit prices come from the catalog inside that transaction; the ones
	// on the draft are ignored.
	CreateSale(ctx context.Context, draft domain.Sale, actorName string) (*domain.Sale, error)
	// CancelSale flips the anulada flag, restores stock for every detail
	// line, and appends one activity record, atomically.
	CancelSale(ctx context.Context, saleID int64, reason string, userID int64) error
	GetSaleByID(ctx context.Context, saleID int64) (*domain.Sale, error)
	ListSales(ctx context.Context, limit int) ([]domain.Sale, error)

	GetSalesSummary(ctx context.Context, now time.Time) (domain.SalesSummary, error)
	GetWeekdayTotals(ctx context.Context, now time.Time, daysBack int, daysBackEnd int) ([]domain.WeekdayTotal, error)
	GetPaymentMethodTotals(ctx context.Context) ([]domain.PaymentMethodTotal, error)

	CreateActivity(ctx context.Context, entry domain.ActivityRecord) error
	ListActivities(ctx context.Context, limit int) ([]domain.ActivityRecord, error)

	CreateUser(ctx context.Context, user domain.UserAccount) (*domain.UserAccount, error)
	ListUsers(ctx context.Context) ([]domain.UserAccount, error)
	UpdateUserPassword(ctx context.Context, username string, password string) error
}
