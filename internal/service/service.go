package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/pieroLaos18/System-sales/internal/cache"
	"github.com/pieroLaos18/System-sales/internal/domain"
	"github.com/pieroLaos18/System-sales/internal/store"
	"github.com/pieroLaos18/System-sales/internal/xid"
)

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

type Service struct {
	repo           store.Repository
	reportCache    cache.ReportCache
	reportCacheTTL time.Duration
}

func New(repo store.Repository, reportCache cache.ReportCache, reportCacheTTL time.Duration) *Service {
	if reportCache == nil {
		reportCache = cache.NoopReportCache{}
	}
	if reportCacheTTL <= 0 {
		reportCacheTTL = 30 * time.Second
	}

	return &Service{
		repo:           repo,
		reportCache:    reportCache,
		reportCacheTTL: reportCacheTTL,
	}
}

func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.repo.ListProducts(ctx)
}

func (s *Service) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	product, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	return *product, nil
}

func (s *Service) TopSellingProducts(ctx context.Context, limit int) ([]domain.TopProduct, error) {
	return s.repo.TopSellingProducts(ctx, limit)
}

func (s *Service) CreateProduct(ctx context.Context, req domain.ProductCreateRequest) (domain.Product, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != domain.RoleAdmin {
		return domain.Product{}, fmt.Errorf("admin role required")
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Category = strings.TrimSpace(req.Category)
	if req.Name == "" || req.PriceCents < 1 || req.Stock < 0 || req.StockMin < 0 {
		return domain.Product{}, store.ErrInvalidInput
	}

	created, err := s.repo.CreateProduct(ctx, domain.Product{
		Name:        req.Name,
		Description: strings.TrimSpace(req.Description),
		Category:    req.Category,
		PriceCents:  req.PriceCents,
		Stock:       req.Stock,
		StockMin:    req.StockMin,
		Active:      true,
	})
	if err != nil {
		return domain.Product{}, err
	}

	s.logActivity(ctx, fmt.Sprintf("Producto %q agregado al catálogo", created.Name))
	return *created, nil
}

// UpdateProduct applies only the fields present in the request, each one
// validated against the same rules as creation.
func (s *Service) UpdateProduct(ctx context.Context, id int64, req domain.ProductUpdateRequest) (domain.Product, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != domain.RoleAdmin {
		return domain.Product{}, fmt.Errorf("admin role required")
	}
	if id < 1 {
		return domain.Product{}, store.ErrInvalidInput
	}

	existing, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}

	updated := *existing
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Product{}, store.ErrInvalidInput
		}
		updated.Name = name
	}
	if req.Description != nil {
		updated.Description = strings.TrimSpace(*req.Description)
	}
	if req.Category != nil {
		updated.Category = strings.TrimSpace(*req.Category)
	}
	if req.PriceCents != nil {
		if *req.PriceCents < 1 {
			return domain.Product{}, store.ErrInvalidInput
		}
		updated.PriceCents = *req.PriceCents
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			return domain.Product{}, store.ErrInvalidInput
		}
		updated.Stock = *req.Stock
	}
	if req.StockMin != nil {
		if *req.StockMin < 0 {
			return domain.Product{}, store.ErrInvalidInput
		}
		updated.StockMin = *req.StockMin
	}
	if req.Active != nil {
		updated.Active = *req.Active
	}

	saved, err := s.repo.UpdateProduct(ctx, updated)
	if err != nil {
		return domain.Product{}, err
	}

	s.logActivity(ctx, fmt.Sprintf("Producto %q actualizado", saved.Name))
	return *saved, nil
}

func (s *Service) DeactivateProduct(ctx context.Context, id int64) error {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != domain.RoleAdmin {
		return fmt.Errorf("admin role required")
	}
	if id < 1 {
		return store.ErrInvalidInput
	}

	product, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeactivateProduct(ctx, id); err != nil {
		return err
	}

	s.logActivity(ctx, fmt.Sprintf("Producto %q retirado del catálogo", product.Name))
	return nil
}

// CreateSale registers a sale atomically. Any storage failure comes back
// wrapped with a registration prefix so callers can show one message while
// errors.As still reaches the underlying cause.
func (s *Service) CreateSale(ctx context.Context, req domain.SaleCreateRequest) (domain.SaleCreateResponse, error) {
	if len(req.Lines) == 0 {
		return domain.SaleCreateResponse{}, store.ErrInvalidInput
	}
	for _, line := range req.Lines {
		if line.ProductID < 1 || line.Qty < 1 {
			return domain.SaleCreateResponse{}, store.ErrInvalidInput
		}
	}

	req.Customer = strings.TrimSpace(req.Customer)
	req.PaymentMethod = strings.TrimSpace(req.PaymentMethod)
	if req.PaymentMethod == "" {
		req.PaymentMethod = domain.PaymentCash
	}

	actor, _ := ActorFromContext(ctx)
	actorName := actor.Name
	if actorName == "" {
		actorName = domain.UnknownActor
	}
	userID := req.UserID
	if userID == 0 {
		userID = actor.UserID
	}

	items := make([]domain.SaleDetail, 0, len(req.Lines))
	for _, line := range req.Lines {
		items = append(items, domain.SaleDetail{ProductID: line.ProductID, Qty: line.Qty})
	}

	sale, err := s.repo.CreateSale(ctx, domain.Sale{
		Customer:      req.Customer,
		PaymentMethod: req.PaymentMethod,
		UserID:        userID,
		Items:         items,
	}, actorName)
	if err != nil {
		return domain.SaleCreateResponse{}, fmt.Errorf("error al registrar venta: %w", err)
	}

	return domain.SaleCreateResponse{SaleID: sale.ID}, nil
}

// CancelSale errors are returned as-is; the storage layer already produces
// the user-facing messages.
func (s *Service) CancelSale(ctx context.Context, saleID int64, req domain.SaleCancelRequest) (domain.SaleCancelResponse, error) {
	if saleID < 1 {
		return domain.SaleCancelResponse{}, store.ErrInvalidInput
	}

	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		reason = "Sin motivo"
	}
	userID := req.UserID
	if userID == 0 {
		if actor, ok := ActorFromContext(ctx); ok {
			userID = actor.UserID
		}
	}

	if err := s.repo.CancelSale(ctx, saleID, reason, userID); err != nil {
		return domain.SaleCancelResponse{}, err
	}

	return domain.SaleCancelResponse{Message: domain.CancelConfirmationMessage}, nil
}

func (s *Service) GetSale(ctx context.Context, saleID int64) (domain.Sale, error) {
	sale, err := s.repo.GetSaleByID(ctx, saleID)
	if err != nil {
		return domain.Sale{}, err
	}
	return *sale, nil
}

func (s *Service) ListSales(ctx context.Context, limit int) ([]domain.Sale, error) {
	return s.repo.ListSales(ctx, limit)
}

// GenerateReceipt projects a persisted sale into a printable document.
// Missing type and number fall back to a boleta numbered from the sale id.
func (s *Service) GenerateReceipt(ctx context.Context, saleID int64, receiptType string, receiptNumber string) (domain.Receipt, error) {
	sale, err := s.repo.GetSaleByID(ctx, saleID)
	if err != nil {
		return domain.Receipt{}, err
	}

	receiptType = strings.TrimSpace(receiptType)
	if receiptType == "" {
		receiptType = sale.ReceiptType
	}
	if receiptType == "" {
		receiptType = domain.ReceiptTypeDefault
	}

	receiptNumber = strings.TrimSpace(receiptNumber)
	if receiptNumber == "" {
		receiptNumber = sale.ReceiptNumber
	}
	if receiptNumber == "" {
		receiptNumber = fmt.Sprintf("B%06d", sale.ID)
	}

	return domain.Receipt{
		Type:          receiptType,
		Number:        receiptNumber,
		Date:          sale.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
		Customer:      sale.Customer,
		PaymentMethod: sale.PaymentMethod,
		Items:         sale.Items,
		SubtotalCents: sale.SubtotalCents,
		TaxCents:      sale.TaxCents,
		TotalCents:    sale.TotalCents,
	}, nil
}

func (s *Service) SalesSummary(ctx context.Context) (domain.SalesSummary, error) {
	now := time.Now().UTC()
	key := fmt.Sprintf("reportes:resumen:%s", now.Format("2006-01-02"))

	if cached, hit, err := s.reportCache.Get(ctx, key); err != nil {
		log.Printf("[service] WARN: report cache read failed: %v", err)
	} else if hit {
		return *cached, nil
	}

	summary, err := s.repo.GetSalesSummary(ctx, now)
	if err != nil {
		return domain.SalesSummary{}, err
	}

	if err := s.reportCache.Set(ctx, key, &summary, s.reportCacheTTL); err != nil {
		log.Printf("[service] WARN: report cache write failed: %v", err)
	}
	return summary, nil
}

// WeekdayTotals reports the last seven days by default, or the seven days
// before those when previousWeek is set.
func (s *Service) WeekdayTotals(ctx context.Context, previousWeek bool) ([]domain.WeekdayTotal, error) {
	daysBack, daysBackEnd := 7, 0
	if previousWeek {
		daysBack, daysBackEnd = 14, 7
	}
	return s.repo.GetWeekdayTotals(ctx, time.Now().UTC(), daysBack, daysBackEnd)
}

func (s *Service) PaymentMethodTotals(ctx context.Context) ([]domain.PaymentMethodTotal, error) {
	return s.repo.GetPaymentMethodTotals(ctx)
}

func (s *Service) ListActivities(ctx context.Context, limit int) ([]domain.ActivityRecord, error) {
	return s.repo.ListActivities(ctx, limit)
}

// logActivity records catalog housekeeping best-effort. Sale registration
// and cancellation write their activity rows inside the storage transaction
// instead, so a lost row there aborts the whole sale.
func (s *Service) logActivity(ctx context.Context, description string) {
	actorName := domain.UnknownActor
	if actor, ok := ActorFromContext(ctx); ok && actor.Name != "" {
		actorName = actor.Name
	}

	err := s.repo.CreateActivity(ctx, domain.ActivityRecord{
		ID:          xid.New("act"),
		Description: description,
		Actor:       actorName,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		log.Printf("[service] WARN: failed to record activity: %v", err)
	}
}
