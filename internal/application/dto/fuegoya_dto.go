package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateFuegoYaProductRequest entrada para crear un producto FuegoYa.
type CreateFuegoYaProductRequest struct {
	Type      string          `json:"type" validate:"required,min=1,max=100"`
	UnitPrice decimal.Decimal `json:"unit_price" validate:"gte=0"`
	Stock     int             `json:"stock" validate:"gte=0"`
	MinStock  int             `json:"min_stock" validate:"gte=0"`
	Photo     *FileUpload     `json:"-"`
}

// UpdateFuegoYaProductRequest entrada para actualizar un producto FuegoYa.
type UpdateFuegoYaProductRequest struct {
	Type      *string          `json:"type" validate:"omitempty,min=1,max=100"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
	Stock     *int             `json:"stock" validate:"omitempty,gte=0"`
	MinStock  *int             `json:"min_stock" validate:"omitempty,gte=0"`
	Photo     *FileUpload      `json:"-"`
}

// FuegoYaProductResponse salida de un producto FuegoYa.
type FuegoYaProductResponse struct {
	ID        int64           `json:"id"`
	Type      string          `json:"type"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Stock     int             `json:"stock"`
	MinStock  int             `json:"min_stock"`
	PhotoRef  string          `json:"photo_ref,omitempty"`
}

// CreateSaleRequest entrada para registrar una venta FuegoYa.
// TotalPrice por defecto es precio unitario por bultos; State por defecto credito.
type CreateSaleRequest struct {
	ClientID   int64            `json:"client_id" validate:"required,gt=0"`
	ProductID  int64            `json:"product_id" validate:"required,gt=0"`
	BagCount   int              `json:"bag_count" validate:"gt=0"`
	TotalPrice *decimal.Decimal `json:"total_price"`
	Date       *time.Time       `json:"date"`
	State      string           `json:"state" validate:"omitempty,oneof=credito pago"`
	Photo      *FileUpload      `json:"-"`
}

// UpdateSaleRequest entrada para modificar una venta FuegoYa.
type UpdateSaleRequest struct {
	ClientID   *int64           `json:"client_id" validate:"omitempty,gt=0"`
	ProductID  *int64           `json:"product_id" validate:"omitempty,gt=0"`
	BagCount   *int             `json:"bag_count" validate:"omitempty,gt=0"`
	TotalPrice *decimal.Decimal `json:"total_price"`
	Date       *time.Time       `json:"date"`
	Photo      *FileUpload      `json:"-"`
}

// SetSaleStateRequest cambio manual de estado.
type SetSaleStateRequest struct {
	State string `json:"state" validate:"required,oneof=credito pago"`
}

// SaleResponse salida de una venta con su saldo.
type SaleResponse struct {
	ID          int64           `json:"id"`
	Date        time.Time       `json:"date"`
	TotalPrice  decimal.Decimal `json:"total_price"`
	ClientID    int64           `json:"client_id"`
	ProductID   int64           `json:"product_id"`
	BagCount    int             `json:"bag_count"`
	State       string          `json:"state"`
	PaidAt      *time.Time      `json:"paid_at,omitempty"`
	PhotoRef    string          `json:"photo_ref,omitempty"`
	Allocated   decimal.Decimal `json:"allocated"`
	Outstanding decimal.Decimal `json:"outstanding"`
	AutoApplied decimal.Decimal `json:"auto_applied"`
}

// CreatePaymentRequest entrada para registrar un abono.
type CreatePaymentRequest struct {
	ClientID int64           `json:"client_id" validate:"required,gt=0"`
	Amount   decimal.Decimal `json:"amount" validate:"gt=0"`
	Method   string          `json:"method" validate:"max=50"`
	Note     string          `json:"note"`
	PaidAt   *time.Time      `json:"paid_at"`
}

// AllocationResponse aplicación de un pago a una venta.
type AllocationResponse struct {
	ID        int64           `json:"id"`
	PaymentID int64           `json:"payment_id"`
	SaleID    int64           `json:"sale_id"`
	Amount    decimal.Decimal `json:"amount"`
	AppliedAt time.Time       `json:"applied_at"`
}

// PaymentResponse salida de un pago con su capacidad libre.
type PaymentResponse struct {
	ID        int64           `json:"id"`
	ClientID  int64           `json:"client_id"`
	Amount    decimal.Decimal `json:"amount"`
	PaidAt    time.Time       `json:"paid_at"`
	Method    string          `json:"method,omitempty"`
	Note      string          `json:"note,omitempty"`
	Allocated decimal.Decimal `json:"allocated"`
	Remaining decimal.Decimal `json:"remaining"`
}

// RegisterPaymentResponse resultado de registrar un abono.
type RegisterPaymentResponse struct {
	Payment     PaymentResponse      `json:"payment"`
	Applied     decimal.Decimal      `json:"applied"`
	Unapplied   decimal.Decimal      `json:"unapplied"`
	Allocations []AllocationResponse `json:"allocations"`
}

// ReallocationResponse resultado de liberar las aplicaciones de una venta (borrado o pago forzado).
type ReallocationResponse struct {
	Released   decimal.Decimal `json:"released"`
	Reassigned decimal.Decimal `json:"reassigned"`
	Free       decimal.Decimal `json:"free"`
}

// ClientStatementResponse estado de cuenta FuegoYa de un cliente.
type ClientStatementResponse struct {
	ClientID        int64             `json:"client_id"`
	TotalSales      decimal.Decimal   `json:"total_sales"`
	TotalPaid       decimal.Decimal   `json:"total_paid"`
	Outstanding     decimal.Decimal   `json:"outstanding"`
	UnappliedCredit decimal.Decimal   `json:"unapplied_credit"`
	Sales           []SaleResponse    `json:"sales"`
	Payments        []PaymentResponse `json:"payments"`
}
