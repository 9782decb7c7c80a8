package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/imanod-api/internal/domain"
	"github.com/jhoicas/imanod-api/internal/domain/entity"
	"github.com/jhoicas/imanod-api/internal/domain/repository"
)

var _ repository.StockLedger = (*StockLedger)(nil)

// StockLedger incrementos y descuentos atómicos sobre la columna stock de cada tabla.
type StockLedger struct {
	q Querier
}

// NewStockLedger construye el adaptador. Pasar pool o tx (Querier).
func NewStockLedger(q Querier) *StockLedger {
	return &StockLedger{q: q}
}

// stockTable el nombre de tabla sale de un conjunto cerrado, nunca del request.
func stockTable(kind entity.StockKind) (string, error) {
	switch kind {
	case entity.StockMaterial:
		return "materiales", nil
	case entity.StockPlankType:
		return "tipo_tablas", nil
	case entity.StockPegType:
		return "tipo_tacos", nil
	case entity.StockSkidType:
		return "tipo_patines", nil
	case entity.StockFuegoYa:
		return "fuegoya_productos", nil
	}
	return "", fmt.Errorf("%w: tipo de existencia %q", domain.ErrInvalidInput, kind)
}

// LockAndRead obtiene la existencia y bloquea la fila (SELECT FOR UPDATE).
func (l *StockLedger) LockAndRead(ctx context.Context, kind entity.StockKind, id int64) (int, error) {
	table, err := stockTable(kind)
	if err != nil {
		return 0, err
	}
	var stock int
	err = l.q.QueryRow(ctx, `SELECT stock FROM `+table+` WHERE id = $1 FOR UPDATE`, id).Scan(&stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("%s %d: %w", table, id, domain.ErrNotFound)
		}
		return 0, fmt.Errorf("lock stock %s: %w", table, err)
	}
	return stock, nil
}

// Debit descuento condicional: si ninguna fila cumple stock >= qty es una carrera perdida.
func (l *StockLedger) Debit(ctx context.Context, kind entity.StockKind, id int64, qty int) error {
	if qty < 0 {
		return fmt.Errorf("%w: cantidad negativa", domain.ErrInvalidInput)
	}
	table, err := stockTable(kind)
	if err != nil {
		return err
	}
	tag, err := l.q.Exec(ctx,
		`UPDATE `+table+` SET stock = stock - $2, updated_at = now() WHERE id = $1 AND stock >= $2`, id, qty)
	if err != nil {
		return fmt.Errorf("debit stock %s: %w", table, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConcurrencyConflict
	}
	return nil
}

// Credit incremento atómico.
func (l *StockLedger) Credit(ctx context.Context, kind entity.StockKind, id int64, qty int) error {
	if qty < 0 {
		return fmt.Errorf("%w: cantidad negativa", domain.ErrInvalidInput)
	}
	table, err := stockTable(kind)
	if err != nil {
		return err
	}
	tag, err := l.q.Exec(ctx,
		`UPDATE `+table+` SET stock = stock + $2, updated_at = now() WHERE id = $1`, id, qty)
	if err != nil {
		return fmt.Errorf("credit stock %s: %w", table, err)
	}
	return notFoundIfNone(tag, fmt.Sprintf("%s %d", table, id))
}
