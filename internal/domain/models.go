package domain

import "time"

type Product struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	PriceCents  int64  `json:"price_cents"`
	Stock       int    `json:"stock"`
	StockMin    int    `json:"stock_min"`
	LowStock    bool   `json:"low_stock"`
	Active      bool   `json:"active"`
}

type ProductCreateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	PriceCents  int64  `json:"price_cents"`
	Stock       int    `json:"stock"`
	StockMin    int    `json:"stock_min"`
}

type ProductUpdateRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Category    *string `json:"category,omitempty"`
	PriceCents  *int64  `json:"price_cents,omitempty"`
	Stock       *int    `json:"stock,omitempty"`
	StockMin    *int    `json:"stock_min,omitempty"`
	Active      *bool   `json:"active,omitempty"`
}

type TopProduct struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	UnitsSold int64  `json:"vendidos"`
	Stock     int    `json:"stock"`
}

// SaleLineInput is the client-supplied cart line. Prices are never taken
// from the client; only id and quantity are trusted after validation.
type SaleLineInput struct {
	ProductID int64 `json:"id"`
	Qty       int   `json:"cantidad"`
}

type SaleCreateRequest struct {
	Customer      string          `json:"cliente"`
	PaymentMethod string          `json:"metodo_pago"`
	UserID        int64           `json:"user_id"`
	Lines         []SaleLineInput `json:"productos"`
}

type SaleCreateResponse struct {
	SaleID int64 `json:"venta_id"`
}

type SaleCancelRequest struct {
	Reason string `json:"motivo"`
	UserID int64  `json:"user_id"`
}

type SaleCancelResponse struct {
	Message string `json:"message"`
}

// SaleDetail is one persisted line of a sale. The unit price is the
// authoritative catalog price captured at sale time, never recomputed.
type SaleDetail struct {
	ProductID      int64  `json:"producto_id"`
	ProductName    string `json:"name,omitempty"`
	Qty            int    `json:"cantidad"`
	UnitPriceCents int64  `json:"unit_price_cents"`
}

type Sale struct {
	ID            int64        `json:"id"`
	Customer      string       `json:"cliente"`
	CreatedAt     time.Time    `json:"fecha"`
	SubtotalCents int64        `json:"subtotal_cents"`
	TaxCents      int64        `json:"tax_cents"`
	TotalCents    int64        `json:"total_cents"`
	PaymentMethod string       `json:"metodo_pago"`
	UserID        int64        `json:"user_id"`
	Cancelled     bool         `json:"anulada"`
	CancelReason  string       `json:"motivo_anulacion,omitempty"`
	ReceiptType   string       `json:"tipo_comprobante,omitempty"`
	ReceiptNumber string       `json:"numero_comprobante,omitempty"`
	Items         []SaleDetail `json:"productos,omitempty"`
}

// Receipt is a read-only projection of a persisted sale for printing.
type Receipt struct {
	Type          string       `json:"tipo"`
	Number        string       `json:"numero"`
	Date          string       `json:"fecha"`
	Customer      string       `json:"cliente"`
	PaymentMethod string       `json:"metodo_pago"`
	Items         []SaleDetail `json:"productos"`
	SubtotalCents int64        `json:"subtotal_cents"`
	TaxCents      int64        `json:"tax_cents"`
	TotalCents    int64        `json:"total_cents"`
}

type SalesSummary struct {
	TodayCents int64 `json:"hoy_cents"`
	MonthCents int64 `json:"mes_cents"`
}

type WeekdayTotal struct {
	Day        string `json:"dia"`
	TotalCents int64  `json:"total_cents"`
}

type PaymentMethodTotal struct {
	Method     string `json:"metodo_pago"`
	TotalCents int64  `json:"total_cents"`
}

type ActivityRecord struct {
	ID          string    `json:"id"`
	Description string    `json:"descripcion"`
	Actor       string    `json:"usuario"`
	CreatedAt   time.Time `json:"fecha"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"role"`
	Name        string `json:"name"`
	ExpiresAt   string `json:"expires_at"`
}

type Actor struct {
	UserID   int64
	Username string
	Name     string
	Role     string
}

type UserCreateRequest struct {
	Username string `json:"username"`
	Name     string `json:"nombre"`
	Password string `json:"password"`
}

type UserView struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Name      string    `json:"nombre"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// UserAccount is an internal persistence model for auth credentials.
type UserAccount struct {
	ID        int64
	Username  string
	Name      string
	Password  string
	Role      string
	Active    bool
	CreatedAt time.Time
}

const (
	RoleAdmin    = "admin"
	RoleVendedor = "vendedor"
)

// WeekdayNames indexes ISO weekday numbers minus one (Monday first), the
// order the weekday report is presented in.
var WeekdayNames = []string{"Lunes", "Martes", "Miércoles", "Jueves", "Viernes", "Sábado", "Domingo"}

const (
	PaymentCash     = "efectivo"
	PaymentCard     = "tarjeta"
	PaymentTransfer = "transferencia"
	PaymentYape     = "yape"
)

const (
	ReceiptTypeDefault        = "boleta"
	UnknownActor              = "Desconocido"
	CancelConfirmationMessage = "Venta anulada correctamente y stock recuperado"
)
