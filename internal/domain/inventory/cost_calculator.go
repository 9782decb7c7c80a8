package inventory

import "github.com/shopspring/decimal"

// CostLine cantidad por unidad y precio unitario de un componente.
type CostLine struct {
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
}

// MaterialCost costo de materiales de un prototipo (servicio de dominio):
// Costo = patines * precioPatin + Σ(cantidad * precio) de las líneas de la lista de materiales.
func MaterialCost(skidCount int, skidPrice decimal.Decimal, lines []CostLine) decimal.Decimal {
	total := decimal.Zero
	if skidCount > 0 {
		total = skidPrice.Mul(decimal.NewFromInt(int64(skidCount)))
	}
	for _, l := range lines {
		if l.Quantity.LessThanOrEqual(decimal.Zero) {
			continue
		}
		total = total.Add(l.Quantity.Mul(l.UnitPrice))
	}
	return total
}

// OrderTotal total de un pedido: Σ(cantidad * costo de materiales del prototipo).
func OrderTotal(quantities []int, unitCosts []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for i, q := range quantities {
		if i >= len(unitCosts) || q <= 0 {
			continue
		}
		total = total.Add(unitCosts[i].Mul(decimal.NewFromInt(int64(q))))
	}
	return total
}
