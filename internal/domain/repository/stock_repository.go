package repository

import (
	"context"

	"github.com/jhoicas/imanod-api/internal/domain/entity"
)

// StockLedger primitiva de existencias: incrementos y descuentos atómicos por fila.
// No conoce políticas de suficiencia; esas viven en los casos de uso.
type StockLedger interface {
	// LockAndRead bloquea la fila (SELECT FOR UPDATE) y devuelve la existencia actual.
	LockAndRead(ctx context.Context, kind entity.StockKind, id int64) (int, error)
	// Debit descuenta qty solo si hay existencia suficiente; si no afecta filas devuelve ErrConcurrencyConflict.
	Debit(ctx context.Context, kind entity.StockKind, id int64, qty int) error
	// Credit suma qty a la existencia.
	Credit(ctx context.Context, kind entity.StockKind, id int64, qty int) error
}

// AlertRepository consulta de filas por debajo de su existencia mínima.
type AlertRepository interface {
	ListBelowMinimum(ctx context.Context) ([]entity.StockAlert, error)
}
