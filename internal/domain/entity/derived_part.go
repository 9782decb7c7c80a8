package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DerivedPart pieza cortada a partir de una materia prima: tipo_tabla (desde tabla)
// o tipo_taco (desde poste). Kind solo admite StockPlankType o StockPegType.
type DerivedPart struct {
	ID        int64
	Kind      StockKind
	ParentID  int64
	Length    decimal.Decimal
	Width     decimal.Decimal
	Thickness decimal.Decimal
	UnitPrice decimal.Decimal
	Stock     int
	MinStock  int
	PhotoRef  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ParentCategory categoría de materia prima de la que se corta la pieza.
func ParentCategory(kind StockKind) MaterialCategory {
	if kind == StockPegType {
		return CategoryPost
	}
	return CategoryPlank
}

// Label descripción corta por medidas (largo x ancho x espesor).
func (p *DerivedPart) Label() string {
	return fmt.Sprintf("%s x %s x %s", p.Length.String(), p.Width.String(), p.Thickness.String())
}
