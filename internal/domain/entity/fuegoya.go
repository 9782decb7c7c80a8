package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleState estado de pago de una venta FuegoYa.
type SaleState string

const (
	SaleCredit SaleState = "credito"
	SalePaid   SaleState = "pago"
)

// Valid indica si el estado es conocido.
func (s SaleState) Valid() bool {
	return s == SaleCredit || s == SalePaid
}

// FuegoYaProduct producto de la línea de encendedores FuegoYa.
type FuegoYaProduct struct {
	ID        int64
	Type      string
	UnitPrice decimal.Decimal
	Stock     int
	MinStock  int
	PhotoRef  string
	CreatedAt time.Time
}

// FuegoYaSale venta a un cliente; a crédito mientras tenga saldo pendiente.
type FuegoYaSale struct {
	ID         int64
	Date       time.Time
	TotalPrice decimal.Decimal
	ClientID   int64
	ProductID  int64
	BagCount   int
	State      SaleState
	PaidAt     *time.Time
	PhotoRef   string
	// Allocated suma de aplicaciones de pago sobre esta venta (calculado al leer).
	Allocated decimal.Decimal
}

// Outstanding saldo pendiente: max(0, total - aplicado). Una venta en pago no debe nada.
func (s *FuegoYaSale) Outstanding() decimal.Decimal {
	if s.State == SalePaid {
		return decimal.Zero
	}
	return decimal.Max(decimal.Zero, s.TotalPrice.Sub(s.Allocated))
}

// FuegoYaPayment abono de un cliente.
type FuegoYaPayment struct {
	ID       int64
	ClientID int64
	Amount   decimal.Decimal
	PaidAt   time.Time
	Method   string
	Note     string
	// Allocated suma de aplicaciones hechas desde este pago (calculado al leer).
	Allocated decimal.Decimal
}

// Remaining capacidad libre: max(0, monto - aplicado).
func (p *FuegoYaPayment) Remaining() decimal.Decimal {
	return decimal.Max(decimal.Zero, p.Amount.Sub(p.Allocated))
}

// Allocation enlace monetario de un pago a una venta. Inmutable: solo se borra al revertir.
type Allocation struct {
	ID        int64
	PaymentID int64
	SaleID    int64
	Amount    decimal.Decimal
	AppliedAt time.Time
}
