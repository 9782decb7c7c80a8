package inventory

import "github.com/shopspring/decimal"

// KerfMargin espacio perdido por corte, en centímetros. Política única para todas las derivaciones.
var KerfMargin = decimal.NewFromFloat(0.5)

// Relación fija de un tipo_patin: una tipo_tabla y tres tipo_tacos por unidad.
const (
	PlanksPerSkid = 1
	PegsPerSkid   = 3
)

// PiecesPerParent piezas enteras que salen de una pieza madre:
// floor(largoMadre / (largoHija + KerfMargin)). Un largo de hija no positivo da 0.
func PiecesPerParent(parentLength, childLength decimal.Decimal) int {
	if !childLength.IsPositive() || !parentLength.IsPositive() {
		return 0
	}
	return int(parentLength.Div(childLength.Add(KerfMargin)).Floor().IntPart())
}

// ParentsRequired piezas madre necesarias para obtener qty hijas: ceil(qty / ppp).
// ParentsRequired(0, *) = 0. Con ppp < 1 devuelve -1, el llamador debe validar antes.
func ParentsRequired(qty, piecesPerParent int) int {
	if qty <= 0 {
		return 0
	}
	if piecesPerParent < 1 {
		return -1
	}
	return (qty + piecesPerParent - 1) / piecesPerParent
}

// SkidPrice precio de un tipo_patin según la relación fija 1:3.
func SkidPrice(plankPrice, pegPrice decimal.Decimal) decimal.Decimal {
	return plankPrice.Mul(decimal.NewFromInt(PlanksPerSkid)).
		Add(pegPrice.Mul(decimal.NewFromInt(PegsPerSkid)))
}
