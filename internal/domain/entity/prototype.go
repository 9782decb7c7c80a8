package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// BOMKind tipo de componente de una línea de lista de materiales.
type BOMKind string

const (
	BOMPlankType BOMKind = "tablas"
	BOMPegType   BOMKind = "tacos"
	BOMNail      BOMKind = "clavos"
	BOMFiber     BOMKind = "fibras"
)

// Valid indica si el tipo de línea es conocido.
func (k BOMKind) Valid() bool {
	switch k {
	case BOMPlankType, BOMPegType, BOMNail, BOMFiber:
		return true
	}
	return false
}

// BOMLine componente usado por unidad de prototipo.
type BOMLine struct {
	Kind            BOMKind
	ComponentID     int64
	QuantityPerUnit decimal.Decimal
	Notes           string
}

// Prototype diseño de estiba con su lista de materiales. Nunca se borra: Active=false.
type Prototype struct {
	ID         int64
	Title      string
	Dimensions string
	SkidTypeID *int64
	SkidCount  int
	ClientID   *int64
	PhotoRef   string
	Active     bool
	Lines      []BOMLine
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
