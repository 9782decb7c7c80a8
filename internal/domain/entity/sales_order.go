package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// SalesOrder (pedido) de estibas de un cliente. Total se recalcula en cada cambio.
type SalesOrder struct {
	ID           int64
	ClientID     int64
	OrderedAt    time.Time
	DeliveryDate *time.Time
	Notes        string
	Total        decimal.Decimal
	Lines        []SalesOrderLine
}

// SalesOrderLine línea de pedido; UnitCost es el costo de materiales del prototipo al recalcular.
type SalesOrderLine struct {
	PrototypeID int64
	Quantity    int
	UnitCost    decimal.Decimal
}
