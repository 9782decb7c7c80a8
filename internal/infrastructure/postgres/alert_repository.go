package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/imanod-api/internal/domain/entity"
	"github.com/jhoicas/imanod-api/internal/domain/repository"
)

var _ repository.AlertRepository = (*AlertRepo)(nil)

// AlertRepo consulta de existencias bajo mínimo sobre todas las tablas con stock.
type AlertRepo struct {
	q Querier
}

// NewAlertRepository construye el adaptador. Acepta pool o tx (Querier).
func NewAlertRepository(q Querier) *AlertRepo {
	return &AlertRepo{q: q}
}

// ListBelowMinimum filas con stock < stock_minimo, mayor déficit primero.
func (r *AlertRepo) ListBelowMinimum(ctx context.Context) ([]entity.StockAlert, error) {
	query := `
		SELECT kind, id, label, largo, ancho, espesor, stock, stock_minimo FROM (
			SELECT 'materiales' AS kind, id, titulo AS label,
			       NULL::numeric AS largo, NULL::numeric AS ancho, NULL::numeric AS espesor,
			       stock, stock_minimo
			FROM materiales WHERE stock < stock_minimo
			UNION ALL
			SELECT 'tipo_tablas', id, '', largo, ancho, espesor, stock, stock_minimo
			FROM tipo_tablas WHERE stock < stock_minimo
			UNION ALL
			SELECT 'tipo_tacos', id, '', largo, ancho, espesor, stock, stock_minimo
			FROM tipo_tacos WHERE stock < stock_minimo
			UNION ALL
			SELECT 'tipo_patines', id, titulo, NULL, NULL, NULL, stock, stock_minimo
			FROM tipo_patines WHERE stock < stock_minimo
			UNION ALL
			SELECT 'fuegoya_productos', id, tipo, NULL, NULL, NULL, stock, stock_minimo
			FROM fuegoya_productos WHERE stock < stock_minimo
		) bajo
		ORDER BY (stock_minimo - stock) DESC, kind, id`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list stock below minimum: %w", err)
	}
	defer rows.Close()

	var alerts []entity.StockAlert
	for rows.Next() {
		var (
			a                        entity.StockAlert
			kind                     string
			length, width, thickness decimal.NullDecimal
		)
		if err := rows.Scan(&kind, &a.ID, &a.Label, &length, &width, &thickness, &a.Stock, &a.MinStock); err != nil {
			return nil, fmt.Errorf("scan stock alert: %w", err)
		}
		a.Kind = entity.StockKind(kind)
		if length.Valid {
			part := entity.DerivedPart{Length: length.Decimal, Width: width.Decimal, Thickness: thickness.Decimal}
			a.Label = part.Label()
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}
