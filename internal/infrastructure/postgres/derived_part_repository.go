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

var _ repository.DerivedPartRepository = (*DerivedPartRepo)(nil)

// DerivedPartRepo adaptador de tipo_tablas o tipo_tacos; ambas tablas tienen la misma forma.
type DerivedPartRepo struct {
	q     Querier
	kind  entity.StockKind
	table string
	// bomTable y bomColumn líneas de prototipo que apuntan a esta pieza.
	bomTable  string
	bomColumn string
	// skidColumn columna de tipo_patines que apunta a esta pieza.
	skidColumn string
}

// NewDerivedPartRepository construye el adaptador para StockPlankType o StockPegType.
func NewDerivedPartRepository(q Querier, kind entity.StockKind) *DerivedPartRepo {
	if kind == entity.StockPegType {
		return &DerivedPartRepo{q: q, kind: kind, table: "tipo_tacos",
			bomTable: "prototipo_tacos", bomColumn: "tipo_taco_id", skidColumn: "tipo_taco_id"}
	}
	return &DerivedPartRepo{q: q, kind: entity.StockPlankType, table: "tipo_tablas",
		bomTable: "prototipo_tablas", bomColumn: "tipo_tabla_id", skidColumn: "tipo_tabla_id"}
}

const partColumns = `id, material_id, largo, ancho, espesor, precio_unitario, stock, stock_minimo,
	foto, created_at, updated_at`

var partFilters = columns{
	"id":          "id",
	"material_id": "material_id",
	"largo":       "largo",
	"stock":       "stock",
}

func (r *DerivedPartRepo) scan(row pgx.Row) (*entity.DerivedPart, error) {
	p := entity.DerivedPart{Kind: r.kind}
	err := row.Scan(&p.ID, &p.ParentID, &p.Length, &p.Width, &p.Thickness, &p.UnitPrice,
		&p.Stock, &p.MinStock, &p.PhotoRef, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create persiste la pieza con su existencia inicial.
func (r *DerivedPartRepo) Create(ctx context.Context, p *entity.DerivedPart) error {
	query := `
		INSERT INTO ` + r.table + ` (material_id, largo, ancho, espesor, precio_unitario, stock, stock_minimo, foto)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`
	err := r.q.QueryRow(ctx, query,
		p.ParentID, p.Length, p.Width, p.Thickness, p.UnitPrice, p.Stock, p.MinStock, p.PhotoRef,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("material %d: %w", p.ParentID, domain.ErrNotFound)
		}
		return fmt.Errorf("insert %s: %w", r.table, err)
	}
	p.Kind = r.kind
	return nil
}

func (r *DerivedPartRepo) get(ctx context.Context, id int64, lock bool) (*entity.DerivedPart, error) {
	query := `SELECT ` + partColumns + ` FROM ` + r.table + ` WHERE id = $1`
	if lock {
		query += ` FOR UPDATE`
	}
	p, err := r.scan(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s %d: %w", r.table, id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get %s: %w", r.table, err)
	}
	return p, nil
}

// GetByID obtiene la pieza por ID.
func (r *DerivedPartRepo) GetByID(ctx context.Context, id int64) (*entity.DerivedPart, error) {
	return r.get(ctx, id, false)
}

// GetForUpdate obtiene la pieza y bloquea la fila.
func (r *DerivedPartRepo) GetForUpdate(ctx context.Context, id int64) (*entity.DerivedPart, error) {
	return r.get(ctx, id, true)
}

func (r *DerivedPartRepo) List(ctx context.Context, q repository.ListQuery) ([]*entity.DerivedPart, error) {
	where, args, err := buildWhere(q, partFilters, nil)
	if err != nil {
		return nil, err
	}
	page, args := pageClause(q, "id", args)
	rows, err := r.q.Query(ctx, `SELECT `+partColumns+` FROM `+r.table+` WHERE TRUE`+where+page, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", r.table, err)
	}
	defer rows.Close()
	var list []*entity.DerivedPart
	for rows.Next() {
		p, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", r.table, err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// Update escribe medidas, precio, existencia y foto. La pieza madre no cambia.
func (r *DerivedPartRepo) Update(ctx context.Context, p *entity.DerivedPart) error {
	query := `
		UPDATE ` + r.table + ` SET largo = $2, ancho = $3, espesor = $4, precio_unitario = $5,
			stock = $6, stock_minimo = $7, foto = $8, updated_at = now()
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		p.ID, p.Length, p.Width, p.Thickness, p.UnitPrice, p.Stock, p.MinStock, p.PhotoRef)
	if err != nil {
		return fmt.Errorf("update %s: %w", r.table, err)
	}
	return notFoundIfNone(tag, fmt.Sprintf("%s %d", r.table, p.ID))
}

func (r *DerivedPartRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM `+r.table+` WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrReferenced
		}
		return fmt.Errorf("delete %s: %w", r.table, err)
	}
	return notFoundIfNone(tag, fmt.Sprintf("%s %d", r.table, id))
}

// ReferencingTitles prototipos (activos o no) y tipo_patines que usan la pieza.
func (r *DerivedPartRepo) ReferencingTitles(ctx context.Context, id int64) ([]string, error) {
	query := `
		SELECT titulo FROM (
			SELECT 1 AS grupo, p.id, p.titulo FROM prototipos p
			WHERE EXISTS (SELECT 1 FROM ` + r.bomTable + ` l WHERE l.prototipo_id = p.id AND l.` + r.bomColumn + ` = $1)
			UNION ALL
			SELECT 2, s.id, s.titulo FROM tipo_patines s WHERE s.` + r.skidColumn + ` = $1
		) refs
		ORDER BY grupo, id
		LIMIT $2`
	return queryTitles(ctx, r.q, query, id, domain.MaxReferencingTitles)
}
