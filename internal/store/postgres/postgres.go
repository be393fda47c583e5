package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/pieroLaos18/System-sales/internal/domain"
	"github.com/pieroLaos18/System-sales/internal/pricing"
	"github.com/pieroLaos18/System-sales/internal/store"
	"github.com/pieroLaos18/System-sales/internal/xid"
)

// txTimeout bounds every sale transaction so callers waiting on a saturated
// pool fail instead of queuing forever.
const txTimeout = 8 * time.Second

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(5)
	db.SetMaxOpenConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, COALESCE(description,''), COALESCE(category,''), price_cents, stock, stock_min, active
		FROM products
		WHERE active = true
		ORDER BY category, name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]domain.Product, 0, 128)
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Category, &p.PriceCents, &p.Stock, &p.StockMin, &p.Active); err != nil {
			return nil, err
		}
		p.LowStock = p.Stock <= p.StockMin
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return products, nil
}

func (s *Store) GetProductByID(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, COALESCE(description,''), COALESCE(category,''), price_cents, stock, stock_min, active
		FROM products
		WHERE id = $1
	`, id).Scan(&p.ID, &p.Name, &p.Description, &p.Category, &p.PriceCents, &p.Stock, &p.StockMin, &p.Active)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	p.LowStock = p.Stock <= p.StockMin
	return &p, nil
}

func (s *Store) CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	if product.Name == "" || product.PriceCents < 1 || product.Stock < 0 || product.StockMin < 0 {
		return nil, store.ErrInvalidInput
	}

	product.Active = true
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO products (name, description, category, price_cents, stock, stock_min, active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,now(),now())
		RETURNING id
	`, product.Name, nullIfEmpty(product.Description), nullIfEmpty(product.Category),
		product.PriceCents, product.Stock, product.StockMin, product.Active).Scan(&product.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrInvalidInput
		}
		return nil, err
	}

	product.LowStock = product.Stock <= product.StockMin
	created := product
	return &created, nil
}

func (s *Store) UpdateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	if product.ID < 1 || product.Name == "" || product.PriceCents < 1 || product.Stock < 0 || product.StockMin < 0 {
		return nil, store.ErrInvalidInput
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE products
		SET name = $2, description = $3, category = $4, price_cents = $5,
			stock = $6, stock_min = $7, active = $8, updated_at = now()
		WHERE id = $1
	`, product.ID, product.Name, nullIfEmpty(product.Description), nullIfEmpty(product.Category),
		product.PriceCents, product.Stock, product.StockMin, product.Active)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, store.ErrNotFound
	}

	product.LowStock = product.Stock <= product.StockMin
	updated := product
	return &updated, nil
}

func (s *Store) DeactivateProduct(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE products
		SET active = false, updated_at = now()
		WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) TopSellingProducts(ctx context.Context, limit int) ([]domain.TopProduct, error) {
	if limit < 1 {
		limit = 5
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.name, COALESCE(SUM(dv.cantidad),0)::bigint AS vendidos, p.stock
		FROM detalle_ventas dv
		JOIN products p ON p.id = dv.producto_id
		GROUP BY p.id, p.name, p.stock
		ORDER BY vendidos DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	top := make([]domain.TopProduct, 0, limit)
	for rows.Next() {
		var t domain.TopProduct
		if err := rows.Scan(&t.ID, &t.Name, &t.UnitsSold, &t.Stock); err != nil {
			return nil, err
		}
		top = append(top, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return top, nil
}

func (s *Store) CreateSale(ctx context.Context, draft domain.Sale, actorName string) (*domain.Sale, error) {
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

	ctx, cancel := context.WithTimeout(ctx, txTimeout)
	defer cancel()

	pgTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = pgTx.Rollback() }()

	// Lock the product rows while reading prices so neither the price nor
	// the stock can drift between here and the decrement below. Ids are
	// sorted to keep the lock order consistent across concurrent sales.
	ids := uniqueProductIDs(draft.Items)
	priceRows, err := pgTx.QueryContext(ctx, `
		SELECT id, price_cents
		FROM products
		WHERE active = true AND id = ANY($1)
		FOR UPDATE
	`, ids)
	if err != nil {
		return nil, err
	}
	priceByID := make(map[int64]int64, len(ids))
	for priceRows.Next() {
		var id int64
		var priceCents int64
		if err := priceRows.Scan(&id, &priceCents); err != nil {
			_ = priceRows.Close()
			return nil, err
		}
		priceByID[id] = priceCents
	}
	if err := priceRows.Err(); err != nil {
		_ = priceRows.Close()
		return nil, err
	}
	_ = priceRows.Close()

	lines := make([]pricing.Line, 0, len(draft.Items))
	for _, item := range draft.Items {
		priceCents, exists := priceByID[item.ProductID]
		if !exists {
			return nil, &store.ProductNotFoundError{ProductID: item.ProductID}
		}
		lines = append(lines, pricing.Line{Qty: item.Qty, UnitPriceCents: priceCents})
	}
	totals := pricing.Compute(lines)

	if draft.CreatedAt.IsZero() {
		draft.CreatedAt = time.Now().UTC()
	}

	var saleID int64
	err = pgTx.QueryRowContext(ctx, `
		INSERT INTO ventas (cliente, fecha, subtotal_cents, tax_cents, total_cents, user_id, metodo_pago, anulada)
		VALUES ($1,$2,$3,$4,$5,$6,$7,false)
		RETURNING id
	`, draft.Customer, draft.CreatedAt, totals.SubtotalCents, totals.TaxCents, totals.TotalCents,
		nullIfZero(draft.UserID), draft.PaymentMethod).Scan(&saleID)
	if err != nil {
		return nil, err
	}

	savedItems := make([]domain.SaleDetail, 0, len(draft.Items))
	for i, item := range draft.Items {
		res, err := pgTx.ExecContext(ctx, `
			UPDATE products
			SET stock = stock - $1, updated_at = now()
			WHERE id = $2 AND stock >= $1
		`, item.Qty, item.ProductID)
		if err != nil {
			return nil, err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return nil, err
		}
		if affected == 0 {
			return nil, &store.InsufficientStockError{ProductID: item.ProductID}
		}

		_, err = pgTx.ExecContext(ctx, `
			INSERT INTO detalle_ventas (venta_id, producto_id, cantidad, precio_unitario_cents)
			VALUES ($1,$2,$3,$4)
		`, saleID, item.ProductID, item.Qty, lines[i].UnitPriceCents)
		if err != nil {
			return nil, err
		}

		savedItems = append(savedItems, domain.SaleDetail{
			ProductID:      item.ProductID,
			Qty:            item.Qty,
			UnitPriceCents: lines[i].UnitPriceCents,
		})
	}

	// The activity row commits or rolls back with the sale itself.
	_, err = pgTx.ExecContext(ctx, `
		INSERT INTO activities (id, descripcion, usuario, created_at)
		VALUES ($1,$2,$3,$4)
	`, xid.New("act"),
		fmt.Sprintf("Venta registrada para el cliente %q por S/ %s", draft.Customer, soles(totals.TotalCents)),
		actorName, draft.CreatedAt)
	if err != nil {
		return nil, err
	}

	if err := pgTx.Commit(); err != nil {
		return nil, err
	}

	draft.ID = saleID
	draft.SubtotalCents = totals.SubtotalCents
	draft.TaxCents = totals.TaxCents
	draft.TotalCents = totals.TotalCents
	draft.Cancelled = false
	draft.Items = savedItems
	return &draft, nil
}

func (s *Store) CancelSale(ctx context.Context, saleID int64, reason string, userID int64) error {
	ctx, cancel := context.WithTimeout(ctx, txTimeout)
	defer cancel()

	pgTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return err
	}
	defer func() { _ = pgTx.Rollback() }()

	var cancelled bool
	err = pgTx.QueryRowContext(ctx, `
		SELECT anulada
		FROM ventas
		WHERE id = $1
		FOR UPDATE
	`, saleID).Scan(&cancelled)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &store.SaleNotFoundError{SaleID: saleID}
		}
		return err
	}
	if cancelled {
		return &store.SaleCancelledError{SaleID: saleID}
	}

	_, err = pgTx.ExecContext(ctx, `
		UPDATE ventas
		SET anulada = true, motivo_anulacion = $2
		WHERE id = $1
	`, saleID, reason)
	if err != nil {
		return err
	}

	detailRows, err := pgTx.QueryContext(ctx, `
		SELECT producto_id, cantidad
		FROM detalle_ventas
		WHERE venta_id = $1
		ORDER BY id ASC
	`, saleID)
	if err != nil {
		return err
	}
	type restock struct {
		productID int64
		qty       int
	}
	restocks := make([]restock, 0, 8)
	for detailRows.Next() {
		var r restock
		if err := detailRows.Scan(&r.productID, &r.qty); err != nil {
			_ = detailRows.Close()
			return err
		}
		restocks = append(restocks, r)
	}
	if err := detailRows.Err(); err != nil {
		_ = detailRows.Close()
		return err
	}
	_ = detailRows.Close()

	for _, r := range restocks {
		_, err := pgTx.ExecContext(ctx, `
			UPDATE products
			SET stock = stock + $1, updated_at = now()
			WHERE id = $2
		`, r.qty, r.productID)
		if err != nil {
			return err
		}
	}

	actorName := domain.UnknownActor
	if userID > 0 {
		var name string
		err := pgTx.QueryRowContext(ctx, `
			SELECT nombre FROM app_users WHERE id = $1
		`, userID).Scan(&name)
		if err == nil && strings.TrimSpace(name) != "" {
			actorName = name
		} else if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return err
		}
	}

	_, err = pgTx.ExecContext(ctx, `
		INSERT INTO activities (id, descripcion, usuario, created_at)
		VALUES ($1,$2,$3,$4)
	`, xid.New("act"),
		fmt.Sprintf("Venta N°%d anulada. Motivo: %s", saleID, reason),
		actorName, time.Now().UTC())
	if err != nil {
		return err
	}

	return pgTx.Commit()
}

func (s *Store) GetSaleByID(ctx context.Context, saleID int64) (*domain.Sale, error) {
	var sale domain.Sale
	var reason sql.NullString
	var receiptType sql.NullString
	var receiptNumber sql.NullString
	var userID sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
		SELECT id, cliente, fecha, subtotal_cents, tax_cents, total_cents,
			user_id, metodo_pago, anulada, motivo_anulacion, tipo_comprobante, numero_comprobante
		FROM ventas
		WHERE id = $1
	`, saleID).Scan(
		&sale.ID,
		&sale.Customer,
		&sale.CreatedAt,
		&sale.SubtotalCents,
		&sale.TaxCents,
		&sale.TotalCents,
		&userID,
		&sale.PaymentMethod,
		&sale.Cancelled,
		&reason,
		&receiptType,
		&receiptNumber,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &store.SaleNotFoundError{SaleID: saleID}
		}
		return nil, err
	}
	if userID.Valid {
		sale.UserID = userID.Int64
	}
	if reason.Valid {
		sale.CancelReason = reason.String
	}
	if receiptType.Valid {
		sale.ReceiptType = receiptType.String
	}
	if receiptNumber.Valid {
		sale.ReceiptNumber = receiptNumber.String
	}
	sale.CreatedAt = sale.CreatedAt.UTC()

	items, err := s.saleDetails(ctx, []int64{saleID})
	if err != nil {
		return nil, err
	}
	sale.Items = items[saleID]
	if sale.Items == nil {
		sale.Items = []domain.SaleDetail{}
	}

	return &sale, nil
}

func (s *Store) ListSales(ctx context.Context, limit int) ([]domain.Sale, error) {
	if limit < 1 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, cliente, fecha, subtotal_cents, tax_cents, total_cents,
			user_id, metodo_pago, anulada, motivo_anulacion, tipo_comprobante, numero_comprobante
		FROM ventas
		ORDER BY fecha DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sales := make([]domain.Sale, 0, limit)
	ids := make([]int64, 0, limit)
	for rows.Next() {
		var sale domain.Sale
		var reason sql.NullString
		var receiptType sql.NullString
		var receiptNumber sql.NullString
		var userID sql.NullInt64
		if err := rows.Scan(
			&sale.ID,
			&sale.Customer,
			&sale.CreatedAt,
			&sale.SubtotalCents,
			&sale.TaxCents,
			&sale.TotalCents,
			&userID,
			&sale.PaymentMethod,
			&sale.Cancelled,
			&reason,
			&receiptType,
			&receiptNumber,
		); err != nil {
			return nil, err
		}
		if userID.Valid {
			sale.UserID = userID.Int64
		}
		if reason.Valid {
			sale.CancelReason = reason.String
		}
		if receiptType.Valid {
			sale.ReceiptType = receiptType.String
		}
		if receiptNumber.Valid {
			sale.ReceiptNumber = receiptNumber.String
		}
		sale.CreatedAt = sale.CreatedAt.UTC()
		sales = append(sales, sale)
		ids = append(ids, sale.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(ids) == 0 {
		return sales, nil
	}

	detailsBySale, err := s.saleDetails(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range sales {
		sales[i].Items = detailsBySale[sales[i].ID]
		if sales[i].Items == nil {
			sales[i].Items = []domain.SaleDetail{}
		}
	}

	return sales, nil
}

func (s *Store) saleDetails(ctx context.Context, saleIDs []int64) (map[int64][]domain.SaleDetail, error) {
	result := make(map[int64][]domain.SaleDetail, len(saleIDs))
	if len(saleIDs) == 0 {
		return result, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT dv.venta_id, dv.producto_id, p.name, dv.cantidad, dv.precio_unitario_cents
		FROM detalle_ventas dv
		JOIN products p ON p.id = dv.producto_id
		WHERE dv.venta_id = ANY($1)
		ORDER BY dv.id ASC
	`, saleIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var saleID int64
		var detail domain.SaleDetail
		if err := rows.Scan(&saleID, &detail.ProductID, &detail.ProductName, &detail.Qty, &detail.UnitPriceCents); err != nil {
			return nil, err
		}
		result[saleID] = append(result[saleID], detail)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Store) GetSalesSummary(ctx context.Context, now time.Time) (domain.SalesSummary, error) {
	var summary domain.SalesSummary

	dayStart := dateUTC(now)
	dayEnd := dayStart.AddDate(0, 0, 1)
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(total_cents),0)::bigint
		FROM ventas
		WHERE fecha >= $1 AND fecha < $2 AND anulada = false
	`, dayStart, dayEnd).Scan(&summary.TodayCents)
	if err != nil {
		return summary, err
	}

	monthStart := time.Date(now.UTC().Year(), now.UTC().Month(), 1, 0, 0, 0, 0, time.UTC)
	nextMonth := monthStart.AddDate(0, 1, 0)
	err = s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(total_cents),0)::bigint
		FROM ventas
		WHERE fecha >= $1 AND fecha < $2 AND anulada = false
	`, monthStart, nextMonth).Scan(&summary.MonthCents)
	if err != nil {
		return summary, err
	}

	return summary, nil
}

func (s *Store) GetWeekdayTotals(ctx context.Context, now time.Time, daysBack int, daysBackEnd int) ([]domain.WeekdayTotal, error) {
	from := now.UTC().AddDate(0, 0, -daysBack)
	to := now.UTC().AddDate(0, 0, -daysBackEnd)

	rows, err := s.db.QueryContext(ctx, `
		SELECT EXTRACT(ISODOW FROM fecha)::int AS dia, COALESCE(SUM(total_cents),0)::bigint
		FROM ventas
		WHERE fecha >= $1 AND fecha < $2 AND anulada = false
		GROUP BY dia
	`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totalsByDay := make(map[int]int64, 7)
	for rows.Next() {
		var day int
		var total int64
		if err := rows.Scan(&day, &total); err != nil {
			return nil, err
		}
		totalsByDay[day] = total
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	result := make([]domain.WeekdayTotal, 0, len(domain.WeekdayNames))
	for i, name := range domain.WeekdayNames {
		result = append(result, domain.WeekdayTotal{Day: name, TotalCents: totalsByDay[i+1]})
	}
	return result, nil
}

func (s *Store) GetPaymentMethodTotals(ctx context.Context) ([]domain.PaymentMethodTotal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT metodo_pago, COALESCE(SUM(total_cents),0)::bigint
		FROM ventas
		WHERE anulada = false
		GROUP BY metodo_pago
		ORDER BY metodo_pago
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := make([]domain.PaymentMethodTotal, 0, 4)
	for rows.Next() {
		var row domain.PaymentMethodTotal
		if err := rows.Scan(&row.Method, &row.TotalCents); err != nil {
			return nil, err
		}
		totals = append(totals, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return totals, nil
}

func (s *Store) CreateActivity(ctx context.Context, entry domain.ActivityRecord) error {
	if entry.ID == "" {
		entry.ID = xid.New("act")
	}
	if entry.Actor == "" {
		entry.Actor = domain.UnknownActor
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO activities (id, descripcion, usuario, created_at)
		VALUES ($1,$2,$3,$4)
	`, entry.ID, entry.Description, entry.Actor, entry.CreatedAt)
	return err
}

func (s *Store) ListActivities(ctx context.Context, limit int) ([]domain.ActivityRecord, error) {
	if limit < 1 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, descripcion, usuario, created_at
		FROM activities
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	activities := make([]domain.ActivityRecord, 0, limit)
	for rows.Next() {
		var entry domain.ActivityRecord
		if err := rows.Scan(&entry.ID, &entry.Description, &entry.Actor, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entry.CreatedAt = entry.CreatedAt.UTC()
		activities = append(activities, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return activities, nil
}

func (s *Store) CreateUser(ctx context.Context, user domain.UserAccount) (*domain.UserAccount, error) {
	user.Username = strings.ToLower(strings.TrimSpace(user.Username))
	if user.Username == "" || strings.TrimSpace(user.Password) == "" {
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

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO app_users (username, nombre, password, role, active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,now())
		RETURNING id
	`, user.Username, user.Name, user.Password, user.Role, user.Active, user.CreatedAt).Scan(&user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrInvalidInput
		}
		return nil, err
	}
	created := user
	return &created, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.UserAccount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, username, nombre, password, role, active, created_at
		FROM app_users
		ORDER BY username ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.UserAccount, 0, 16)
	for rows.Next() {
		var user domain.UserAccount
		if err := rows.Scan(&user.ID, &user.Username, &user.Name, &user.Password, &user.Role, &user.Active, &user.CreatedAt); err != nil {
			return nil, err
		}
		user.CreatedAt = user.CreatedAt.UTC()
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Store) UpdateUserPassword(ctx context.Context, username string, password string) error {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || strings.TrimSpace(password) == "" {
		return store.ErrInvalidInput
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE app_users
		SET password = $2, updated_at = now()
		WHERE username = $1
	`, username, password)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func uniqueProductIDs(items []domain.SaleDetail) []int64 {
	set := make(map[int64]struct{}, len(items))
	for _, item := range items {
		if item.ProductID < 1 {
			continue
		}
		set[item.ProductID] = struct{}{}
	}

	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func dateUTC(t time.Time) time.Time {
	return time.Date(t.UTC().Year(), t.UTC().Month(), t.UTC().Day(), 0, 0, 0, 0, time.UTC)
}

// soles renders integer cents as a decimal amount, e.g. 23600 -> "236.00".
func soles(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}

func nullIfEmpty(val string) any {
	if val == "" {
		return nil
	}
	return val
}

func nullIfZero(val int64) any {
	if val == 0 {
		return nil
	}
	return val
}
