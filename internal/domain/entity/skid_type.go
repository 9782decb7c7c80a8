package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// SkidType (tipo_patin) se arma con una tipo_tabla y tres tipo_tacos.
// UnitPrice es una foto del precio de sus partes al momento de escribir.
type SkidType struct {
	ID          int64
	PlankTypeID int64
	PegTypeID   int64
	Title       string
	Dimensions  string
	UnitPrice   decimal.Decimal
	Stock       int
	MinStock    int
	LogoRef     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
