package memory

import (
	"context"
	"fmt"
	"log"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/pieroLaos18/System-sales/internal/domain"
	"github.com/pieroLaos18/System-sales/internal/pricing"
	"github.com/pieroLaos18/System-sales/internal/store"
	"github.com/pieroLaos18/System-sales/internal/xid"
)

type Store struct {
	mu              sync.RWMutex
	products        map[int64]domain.Product
	salesByID       map[int64]*domain.Sale
	activities      []domain.ActivityRecord
	usersByUsername map[string]domain.UserAccount

	nextProductID int64
	nextSaleID    int64
	nextUserID    int64
}

// seedUsers builds the initial in-memory accounts for dev/demo mode.
// Credentials come from SEED_ADMIN_PASSWORD and SEED_VENDEDOR_PASSWORD; if
// unset, hardcoded dev defaults are used with a warning. These are never used
// in production (the server uses PostgreSQL when DATABASE_URL is set).
func seedUsers() (map[string]domain.UserAccount, int64) {
	adminPwd := envOr("SEED_ADMIN_PASSWORD", "admin123")
	vendedorPwd := envOr("SEED_VENDEDOR_PASSWORD", "vendedor123")
	if os.Getenv("SEED_ADMIN_PASSWORD") == "" || os.Getenv("SEED_VENDEDOR_PASSWORD") == "" {
		log.Println("[memory-store] WARNING: using default dev credentials. Set SEED_ADMIN_PASSWORD and SEED_VENDEDOR_PASSWORD to override.")
	}

	now := time.Now().UTC()
	users := map[string]domain.UserAccount{}
	var id int64
	for _, u := range []struct {
		username string
		name     string
		password string
		role     string
	}{
		{"admin", "Administrador", adminPwd, domain.RoleAdmin},
		{"vendedor", "Vendedor de Turno", vendedorPwd, domain.RoleVendedor},
	} {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("[memory-store] failed to hash seed password for %s: %v", u.username, err)
		}
		id++
		users[u.username] = domain.UserAccount{
			ID:        id,
			Username:  u.username,
			Name:      u.name,
			Password:  string(hash),
			Role:      u.role,
			Active:    true,
			CreatedAt: now,
		}
	}
	return users, id
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func NewSeeded() *Store {
	products := []domain.Product{
		{Name: "Arroz Costeño 5kg", Category: "abarrotes", PriceCents: 2890, Stock: 120, StockMin: 10, Active: true},
		{Name: "Aceite Primor 1L", Category: "abarrotes", PriceCents: 1250, Stock: 80, StockMin: 8, Active: true},
		{Name: "Leche Gloria Evaporada", Category: "lácteos", PriceCents: 490, Stock: 200, StockMin: 20, Active: true},
		{Name: "Pan de Molde Bimbo", Category: "panadería", PriceCents: 890, Stock: 40, StockMin: 5, Active: true},
		{Name: "Gaseosa Inca Kola 1.5L", Category: "bebidas", PriceCents: 750, Stock: 90, StockMin: 12, Active: true},
		{Name: "Agua Cielo 625ml", Category: "bebidas", PriceCents: 150, Stock: 150, StockMin: 15, Active: true},
		{Name: "Galletas Soda Field", Category: "snacks", PriceCents: 180, Stock: 130, StockMin: 10, Active: true},
		{Name: "Atún Florida en Filete", Category: "conservas", PriceCents: 680, Stock: 60, StockMin: 6, Active: true},
		{Name: "Detergente Bolívar 780g", Category: "limpieza", PriceCents: 1190, Stock: 50, StockMin: 5, Active: true},
		{Name: "Papel Higiénico Elite x4", Category: "limpieza", PriceCents: 980, Stock: 70, StockMin: 8, Active: true},
	}

	productMap := make(map[int64]domain.Product, len(products))
	var nextID int64
	for _, p := range products {
		nextID++
		p.ID = nextID
		p.LowStock = p.Stock <= p.StockMin
		productMap[p.ID] = p
	}

	users, lastUserID := seedUsers()

	return &Store{
		products:        productMap,
		salesByID:       make(map[int64]*domain.Sale),
		activities:      make([]domain.ActivityRecord, 0, 128),
		usersByUsername: users,
		nextProductID:   nextID,
		nextUserID:      lastUserID,
	}
}

func (s *Store) ListProducts(_ context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		if !p.Active {
			continue
		}
		p.LowStock = p.Stock <= p.StockMin
		products = append(products, p)
	}

	slices.SortFunc(products, func(a, b domain.Product) int {
		if a.Category == b.Category {
			return strings.Compare(a.Name, b.Name)
		}
		return strings.Compare(a.Category, b.Category)
	})

	return products, nil
}

func (s *Store) GetProductByID(_ context.Context, id int64) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	product, exists := s.products[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	product.LowStock = product.Stock <= product.StockMin
	copyProduct := product
	return &copyProduct, nil
}

func (s *Store) CreateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if product.Name == "" || product.PriceCents < 1 || product.Stock < 0 || product.StockMin < 0 {
		return nil, store.ErrInvalidInput
	}

	s.nextProductID++
	product.ID = s.nextProductID
	product.Active = true
	product.LowStock = product.Stock <= product.StockMin
	s.products[product.ID] = product
	created := product
	return &created, nil
}

func (s *Store) UpdateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if product.ID < 1 || product.Name == "" || product.PriceCents < 1 || product.Stock < 0 || product.StockMin < 0 {
		return nil, store.ErrInvalidInput
	}
	if _, exists := s.products[product.ID]; !exists {
		return nil, store.ErrNotFound
	}

	product.LowStock = product.Stock <= product.StockMin
	s.products[product.ID] = product
	updated := product
	return &updated, nil
}

func (s *Store) DeactivateProduct(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	product, exists := s.products[id]
	if !exists {
		return store.ErrNotFound
	}
	product.Active = false
	s.products[id] = product
	return nil
}

func (s *Store) TopSellingProducts(_ context.Context, limit int) ([]domain.TopProduct, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit < 1 {
		limit = 5
	}

	soldByProduct := make(map[int64]int64)
	for _, sale := range s.salesByID {
		for _, item := range sale.Items {
			soldByProduct[item.ProductID] += int64(item.Qty)
		}
	}

	top := make([]domain.TopProduct, 0, len(soldByProduct))
	for id, units := range soldByProduct {
		product, exists := s.products[id]
		if !exists {
			continue
		}
		top = append(top, domain.TopProduct{
			ID:        id,
			Name:      product.Name,
			UnitsSold: units,
			Stock:     product.Stock,
		})
	}

	slices.SortFunc(top, func(a, b domain.TopProduct) int {
		if a.UnitsSold == b.UnitsSold {
			return strings.Compare(a.Name, b.Name)
		}
		if a.UnitsSold > b.UnitsSold {
			return -1
		}
		return 1
	})

	if len(top) > limit {
		top = top[:limit]
	}
	return top, nil
}

func (s *Store) CreateSale(_ context.Context, draft domain.Sale, actorName string) (*domain.Sale, error) {
	if len(draft.Items) == 0 {
		return nil, store.ErrInvalidInput
	}
	for _, item := range draft.Items {
		if item.ProductID < 1 || item.Qty < 1 {
			return nil, store.ErrInvalidInput
		}
	}
	if actorName == "" {
		actorName = domain.UnknownActor
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Validate everything before mutating anything so a failed sale leaves
	// stock exactly as it was. Requested quantities accumulate per product
	// so repeated lines cannot oversell combined.
	requested := make(map[int64]int, len(draft.Items))
	lines := make([]pricing.Line, 0, len(draft.Items))
	for _, item := range draft.Items {
		product, exists := s.products[item.ProductID]
		if !exists || !product.Active {
			return nil, &store.ProductNotFoundError{ProductID: item.ProductID}
		}
		requested[item.ProductID] += item.Qty
		if requested[item.ProductID] > product.Stock {
			return nil, &store.InsufficientStockError{ProductID: item.ProductID}
		}
		lines = append(lines, pricing.Line{Qty: item.Qty, UnitPriceCents: product.PriceCents})
	}
	totals := pricing.Compute(lines)

	for id, qty := range requested {
		product := s.products[id]
		product.Stock -= qty
		product.LowStock = product.Stock <= product.StockMin
		s.products[id] = product
	}

	if draft.CreatedAt.IsZero() {
		draft.CreatedAt = time.Now().UTC()
	}
	s.nextSaleID++
	draft.ID = s.nextSaleID
	draft.SubtotalCents = totals.SubtotalCents
	draft.TaxCents = totals.TaxCents
	draft.TotalCents = totals.TotalCents
	draft.Cancelled = false

	items := make([]domain.SaleDetail, len(draft.Items))
	for i, item := range draft.Items {
		items[i] = domain.SaleDetail{
			ProductID:      item.ProductID,
			ProductName:    s.products[item.ProductID].Name,
			Qty:            item.Qty,
			UnitPriceCents: lines[i].UnitPriceCents,
		}
	}
	draft.Items = items

	saved := draft
	s.salesByID[saved.ID] = &saved

	s.activities = append(s.activities, domain.ActivityRecord{
		ID:          xid.New("act"),
		Description: fmt.Sprintf("Venta registrada para el cliente %q por S/ %d.%02d", draft.Customer, totals.TotalCents/100, totals.TotalCents%100),
		Actor:       actorName,
		CreatedAt:   draft.CreatedAt,
	})

	result := saved
	result.Items = slices.Clone(saved.Items)
	return &result, nil
}

func (s *Store) CancelSale(_ context.Context, saleID int64, reason string, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sale, exists := s.salesByID[saleID]
	if !exists {
		return &store.SaleNotFoundError{SaleID: saleID}
	}
	if sale.Cancelled {
		return &store.SaleCancelledError{SaleID: saleID}
	}

	sale.Cancelled = true
	sale.CancelReason = reason

	for _, item := range sale.Items {
		product, ok := s.products[item.ProductID]
		if !ok {
			continue
		}
		product.Stock += item.Qty
		product.LowStock = product.Stock <= product.StockMin
		s.products[item.ProductID] = product
	}

	actorName := domain.UnknownActor
	if userID > 0 {
		for _, user := range s.usersByUsername {
			if user.ID == userID && strings.TrimSpace(user.Name) != "" {
				actorName = user.Name
				break
			}
		}
	}

	s.activities = append(s.activities, domain.ActivityRecord{
		ID:          xid.New("act"),
		Description: fmt.Sprintf("Venta N°%d anulada. Motivo: %s", saleID, reason),
		Actor:       actorName,
		CreatedAt:   time.Now().UTC(),
	})

	return nil
}

func (s *Store) GetSaleByID(_ context.Context, saleID int64) (*domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sale, exists := s.salesByID[saleID]
	if !exists {
		return nil, &store.SaleNotFoundError{SaleID: saleID}
	}
	copySale := *sale
	copySale.Items = slices.Clone(sale.Items)
	return &copySale, nil
}

func (s *Store) ListSales(_ context.Context, limit int) ([]domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit < 1 {
		limit = 50
	}

	sales := make([]domain.Sale, 0, len(s.salesByID))
	for _, sale := range s.salesByID {
		copySale := *sale
		copySale.Items = slices.Clone(sale.Items)
		sales = append(sales, copySale)
	}

	slices.SortFunc(sales, func(a, b domain.Sale) int {
		if a.CreatedAt.Equal(b.CreatedAt) {
			return int(b.ID - a.ID)
		}
		if a.CreatedAt.After(b.CreatedAt) {
			return -1
		}
		return 1
	})

	if len(sales) > limit {
		sales = sales[:limit]
	}
	return sales, nil
}

func (s *Store) GetSalesSummary(_ context.Context, now time.Time) (domain.SalesSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	nowUTC := now.UTC()
	dayStart := time.Date(nowUTC.Year(), nowUTC.Month(), nowUTC.Day(), 0, 0, 0, 0, time.UTC)
	monthStart := time.Date(nowUTC.Year(), nowUTC.Month(), 1, 0, 0, 0, 0, time.UTC)

	var summary domain.SalesSummary
	for _, sale := range s.salesByID {
		if sale.Cancelled {
			continue
		}
		created := sale.CreatedAt.UTC()
		if !created.Before(dayStart) && created.Before(dayStart.AddDate(0, 0, 1)) {
			summary.TodayCents += sale.TotalCents
		}
		if !created.Before(monthStart) && created.Before(monthStart.AddDate(0, 1, 0)) {
			summary.MonthCents += sale.TotalCents
		}
	}
	return summary, nil
}

func (s *Store) GetWeekdayTotals(_ context.Context, now time.Time, daysBack int, daysBackEnd int) ([]domain.WeekdayTotal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	from := now.UTC().AddDate(0, 0, -daysBack)
	to := now.UTC().AddDate(0, 0, -daysBackEnd)

	totalsByDay := make(map[int]int64, 7)
	for _, sale := range s.salesByID {
		if sale.Cancelled {
			continue
		}
		created := sale.CreatedAt.UTC()
		if created.Before(from) || !created.Before(to) {
			continue
		}
		totalsByDay[isoWeekday(created)] += sale.TotalCents
	}

	result := make([]domain.WeekdayTotal, 0, len(domain.WeekdayNames))
	for i, name := range domain.WeekdayNames {
		result = append(result, domain.WeekdayTotal{Day: name, TotalCents: totalsByDay[i+1]})
	}
	return result, nil
}

func (s *Store) GetPaymentMethodTotals(_ context.Context) ([]domain.PaymentMethodTotal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	totalsByMethod := make(map[string]int64, 4)
	for _, sale := range s.salesByID {
		if sale.Cancelled {
			continue
		}
		totalsByMethod[sale.PaymentMethod] += sale.TotalCents
	}

	methods := make([]string, 0, len(totalsByMethod))
	for method := range totalsByMethod {
		methods = append(methods, method)
	}
	slices.Sort(methods)

	result := make([]domain.PaymentMethodTotal, 0, len(methods))
	for _, method := range methods {
		result = append(result, domain.PaymentMethodTotal{Method: method, TotalCents: totalsByMethod[method]})
	}
	return result, nil
}

func (s *Store) CreateActivity(_ context.Context, entry domain.ActivityRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.ID == "" {
		entry.ID = xid.New("act")
	}
	if entry.Actor == "" {
		entry.Actor = domain.UnknownActor
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	s.activities = append(s.activities, entry)
	return nil
}

func (s *Store) ListActivities(_ context.Context, limit int) ([]domain.ActivityRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit < 1 {
		limit = 100
	}

	activities := slices.Clone(s.activities)
	slices.SortFunc(activities, func(a, b domain.ActivityRecord) int {
		if a.CreatedAt.Equal(b.CreatedAt) {
			return strings.Compare(b.ID, a.ID)
		}
		if a.CreatedAt.After(b.CreatedAt) {
			return -1
		}
		return 1
	})

	if len(activities) > limit {
		activities = activities[:limit]
	}
	return activities, nil
}

func (s *Store) CreateUser(_ context.Context, user domain.UserAccount) (*domain.UserAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user.Username = strings.ToLower(strings.TrimSpace(user.Username))
	if user.Username == "" || strings.TrimSpace(user.Password) == "" {
		return nil, store.ErrInvalidInput
	}
	if _, exists := s.usersByUsername[user.Username]; exists {
		return nil, store.ErrInvalidInput
	}
	if user.Name == "" {
		user.Name = user.Username
	}
	if user.Role == "" {
		user.Role = domain.RoleVendedor
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	s.nextUserID++
	user.ID = s.nextUserID
	s.usersByUsername[user.Username] = user
	created := user
	return &created, nil
}

func (s *Store) ListUsers(_ context.Context) ([]domain.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]domain.UserAccount, 0, len(s.usersByUsername))
	for _, user := range s.usersByUsername {
		users = append(users, user)
	}
	slices.SortFunc(users, func(a, b domain.UserAccount) int {
		return strings.Compare(a.Username, b.Username)
	})
	return users, nil
}

func (s *Store) UpdateUserPassword(_ context.Context, username string, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || strings.TrimSpace(password) == "" {
		return store.ErrInvalidInput
	}
	user, exists := s.usersByUsername[username]
	if !exists {
		return store.ErrNotFound
	}
	user.Password = password
	s.usersByUsername[username] = user
	return nil
}

// isoWeekday maps Go's Sunday-first weekday onto ISO numbering, Monday=1.
func isoWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}
