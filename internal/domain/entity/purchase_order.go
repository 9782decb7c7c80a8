package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un encargo a proveedor.
const (
	PurchaseOrderPending  = "pendiente"
	PurchaseOrderReceived = "recibido"
)

// PurchaseOrder (encargo) pedido de materia prima a un proveedor.
type PurchaseOrder struct {
	ID         int64
	SupplierID int64
	Status     string
	OrderedAt  time.Time
	ReceivedAt *time.Time
	Notes      string
	Lines      []PurchaseOrderLine
}

// PurchaseOrderLine línea de encargo.
type PurchaseOrderLine struct {
	MaterialID int64
	Quantity   int
	UnitCost   decimal.Decimal
}

// Total suma de cantidad por costo unitario.
func (o *PurchaseOrder) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range o.Lines {
		total = total.Add(l.UnitCost.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}
