// Package credit contiene el reparto puro de pagos sobre ventas a crédito.
package credit

import "github.com/shopspring/decimal"

// Bucket capacidad disponible de una venta (saldo pendiente) o de un pago (capacidad libre).
// Los buckets llegan ya ordenados del más antiguo al más reciente, por (fecha, id).
type Bucket struct {
	ID        int64
	Available decimal.Decimal
}

// Portion monto asignado a un bucket.
type Portion struct {
	ID     int64
	Amount decimal.Decimal
}

// Distribute reparte amount sobre los buckets en orden, tomando min(restante, disponible) de cada uno,
// hasta agotar el monto o los buckets. Devuelve las porciones no nulas y el sobrante.
func Distribute(amount decimal.Decimal, buckets []Bucket) ([]Portion, decimal.Decimal) {
	remaining := decimal.Max(decimal.Zero, amount)
	var out []Portion
	for _, b := range buckets {
		if !remaining.IsPositive() {
			break
		}
		if !b.Available.IsPositive() {
			continue
		}
		take := decimal.Min(remaining, b.Available)
		out = append(out, Portion{ID: b.ID, Amount: take})
		remaining = remaining.Sub(take)
	}
	return out, remaining
}

// Sum suma los montos de las porciones.
func Sum(portions []Portion) decimal.Decimal {
	total := decimal.Zero
	for _, p := range portions {
		total = total.Add(p.Amount)
	}
	return total
}

// Release recorre los buckets en el orden dado y libera hasta amount de ellos.
// Se usa para soltar aplicaciones de la más reciente a la más antigua cuando baja el precio de una venta.
func Release(amount decimal.Decimal, buckets []Bucket) []Portion {
	portions, _ := Distribute(amount, buckets)
	return portions
}
