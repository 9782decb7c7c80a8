package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateCustomerRequest entrada para crear un cliente.
type CreateCustomerRequest struct {
	Name    string `json:"name" validate:"required,min=1,max=200"`
	TaxID   string `json:"tax_id" validate:"max=50"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// CustomerResponse salida de un cliente.
type CustomerResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	TaxID     string    `json:"tax_id,omitempty"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateSupplierRequest entrada para crear un proveedor.
type CreateSupplierRequest struct {
	Name  string `json:"name" validate:"required,min=1,max=200"`
	TaxID string `json:"tax_id" validate:"max=50"`
	Email string `json:"email" validate:"omitempty,email"`
	Phone string `json:"phone"`
}

// SupplierResponse salida de un proveedor.
type SupplierResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	TaxID     string    `json:"tax_id,omitempty"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// PurchaseOrderLineRequest línea de encargo.
type PurchaseOrderLineRequest struct {
	MaterialID int64           `json:"material_id" validate:"required,gt=0"`
	Quantity   int             `json:"quantity" validate:"gt=0"`
	UnitCost   decimal.Decimal `json:"unit_cost" validate:"gte=0"`
}

// CreatePurchaseOrderRequest entrada para crear un encargo.
type CreatePurchaseOrderRequest struct {
	SupplierID int64                      `json:"supplier_id" validate:"required,gt=0"`
	Notes      string                     `json:"notes"`
	Lines      []PurchaseOrderLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// PurchaseOrderLineResponse línea de encargo.
type PurchaseOrderLineResponse struct {
	MaterialID int64           `json:"material_id"`
	Quantity   int             `json:"quantity"`
	UnitCost   decimal.Decimal `json:"unit_cost"`
}

// PurchaseOrderResponse salida de un encargo.
type PurchaseOrderResponse struct {
	ID              int64                       `json:"id"`
	SupplierID      int64                       `json:"supplier_id"`
	Status          string                      `json:"status"`
	OrderedAt       time.Time                   `json:"ordered_at"`
	ReceivedAt      *time.Time                  `json:"received_at,omitempty"`
	Notes           string                      `json:"notes,omitempty"`
	Total           decimal.Decimal             `json:"total"`
	Lines           []PurchaseOrderLineResponse `json:"lines"`
	AlreadyReceived bool                        `json:"already_received,omitempty"`
}

// SalesOrderLineRequest línea de pedido.
type SalesOrderLineRequest struct {
	PrototypeID int64 `json:"prototype_id" validate:"required,gt=0"`
	Quantity    int   `json:"quantity" validate:"gt=0"`
}

// SalesOrderRequest entrada para crear o reemplazar un pedido.
type SalesOrderRequest struct {
	ClientID     int64                   `json:"client_id" validate:"required,gt=0"`
	DeliveryDate *time.Time              `json:"delivery_date"`
	Notes        string                  `json:"notes"`
	Lines        []SalesOrderLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// SalesOrderLineResponse línea de pedido con su costo de materiales.
type SalesOrderLineResponse struct {
	PrototypeID int64           `json:"prototype_id"`
	Quantity    int             `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// SalesOrderResponse salida de un pedido.
type SalesOrderResponse struct {
	ID           int64                    `json:"id"`
	ClientID     int64                    `json:"client_id"`
	OrderedAt    time.Time                `json:"ordered_at"`
	DeliveryDate *time.Time               `json:"delivery_date,omitempty"`
	Notes        string                   `json:"notes,omitempty"`
	Total        decimal.Decimal          `json:"total"`
	Lines        []SalesOrderLineResponse `json:"lines"`
}
