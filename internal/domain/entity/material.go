package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaterialCategory categoría de materia prima.
type MaterialCategory string

const (
	CategoryPlank MaterialCategory = "tabla"
	CategoryPost  MaterialCategory = "poste"
	CategoryNail  MaterialCategory = "clavo"
	CategoryFiber MaterialCategory = "fibra"
)

// Valid indica si la categoría es conocida.
func (c MaterialCategory) Valid() bool {
	switch c {
	case CategoryPlank, CategoryPost, CategoryNail, CategoryFiber:
		return true
	}
	return false
}

// HasDimensions tablas y postes se cortan, por eso requieren largo.
func (c MaterialCategory) HasDimensions() bool {
	return c == CategoryPlank || c == CategoryPost
}

// CategoryFromPath traduce el segmento plural de la ruta (tablas, postes, clavos, fibras).
func CategoryFromPath(s string) (MaterialCategory, bool) {
	switch s {
	case "tablas":
		return CategoryPlank, true
	case "postes":
		return CategoryPost, true
	case "clavos":
		return CategoryNail, true
	case "fibras":
		return CategoryFiber, true
	}
	return "", false
}

// Material representa una materia prima (tabla, poste, clavo o fibra).
// Las dimensiones están en centímetros y solo aplican a tablas y postes.
type Material struct {
	ID        int64
	Category  MaterialCategory
	Title     string
	UnitPrice decimal.Decimal
	Stock     int // unidades en existencia, nunca negativo
	MinStock  int
	Length    decimal.Decimal
	Width     decimal.Decimal
	Thickness decimal.Decimal
	PhotoRef  string
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
