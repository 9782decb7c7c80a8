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

var _ repository.SkidTypeRepository = (*SkidTypeRepo)(nil)

// SkidTypeRepo implementación de SkidTypeRepository sobre tipo_patines.
type SkidTypeRepo struct {
	q Querier
}

// NewSkidTypeRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSkidTypeRepository(q Querier) *SkidTypeRepo {
	return &SkidTypeRepo{q: q}
}

const skidColumns = `id, tipo_tabla_id, tipo_taco_id, titulo, dimensiones, precio_unitario,
	stock, stock_minimo, logo, created_at, updated_at`

var skidFilters = columns{
	"id":            "id",
	"titulo":        "titulo",
	"tipo_tabla_id": "tipo_tabla_id",
	"tipo_taco_id":  "tipo_taco_id",
}

func scanSkid(row pgx.Row) (*entity.SkidType, error) {
	var s entity.SkidType
	err := row.Scan(&s.ID, &s.PlankTypeID, &s.PegTypeID, &s.Title, &s.Dimensions, &s.UnitPrice,
		&s.Stock, &s.MinStock, &s.LogoRef, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SkidTypeRepo) Create(ctx context.Context, s *entity.SkidType) error {
	query := `
		INSERT INTO tipo_patines (tipo_tabla_id, tipo_taco_id, titulo, dimensiones, precio_unitario,
			stock, stock_minimo, logo)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`
	err := r.q.QueryRow(ctx, query,
		s.PlankTypeID, s.PegTypeID, s.Title, s.Dimensions, s.UnitPrice, s.Stock, s.MinStock, s.LogoRef,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("pieza del patín: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("insert tipo_patin: %w", err)
	}
	return nil
}

func (r *SkidTypeRepo) get(ctx context.Context, id int64, lock bool) (*entity.SkidType, error) {
	query := `SELECT ` + skidColumns + ` FROM tipo_patines WHERE id = $1`
	if lock {
		query += ` FOR UPDATE`
	}
	s, err := scanSkid(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("tipo_patin %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get tipo_patin: %w", err)
	}
	return s, nil
}

func (r *SkidTypeRepo) GetByID(ctx context.Context, id int64) (*entity.SkidType, error) {
	return r.get(ctx, id, false)
}

func (r *SkidTypeRepo) GetForUpdate(ctx context.Context, id int64) (*entity.SkidType, error) {
	return r.get(ctx, id, true)
}

func (r *SkidTypeRepo) List(ctx context.Context, q repository.ListQuery) ([]*entity.SkidType, error) {
	where, args, err := buildWhere(q, skidFilters, nil)
	if err != nil {
		return nil, err
	}
	page, args := pageClause(q, "id", args)
	rows, err := r.q.Query(ctx, `SELECT `+skidColumns+` FROM tipo_patines WHERE TRUE`+where+page, args...)
	if err != nil {
		return nil, fmt.Errorf("list tipo_patines: %w", err)
	}
	defer rows.Close()
	var list []*entity.SkidType
	for rows.Next() {
		s, err := scanSkid(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tipo_patin: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// Update escribe todos los campos, incluidas la existencia y las piezas de origen.
func (r *SkidTypeRepo) Update(ctx context.Context, s *entity.SkidType) error {
	query := `
		UPDATE tipo_patines SET tipo_tabla_id = $2, tipo_taco_id = $3, titulo = $4, dimensiones = $5,
			precio_unitario = $6, stock = $7, stock_minimo = $8, logo = $9, updated_at = now()
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		s.ID, s.PlankTypeID, s.PegTypeID, s.Title, s.Dimensions, s.UnitPrice, s.Stock, s.MinStock, s.LogoRef)
	if err != nil {
		return fmt.Errorf("update tipo_patin: %w", err)
	}
	return notFoundIfNone(tag, fmt.Sprintf("tipo_patin %d", s.ID))
}

func (r *SkidTypeRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM tipo_patines WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrReferenced
		}
		return fmt.Errorf("delete tipo_patin: %w", err)
	}
	return notFoundIfNone(tag, fmt.Sprintf("tipo_patin %d", id))
}

// ReferencingTitles prototipos que usan el patín.
func (r *SkidTypeRepo) ReferencingTitles(ctx context.Context, id int64) ([]string, error) {
	return queryTitles(ctx, r.q,
		`SELECT titulo FROM prototipos WHERE tipo_patin_id = $1 ORDER BY id LIMIT $2`,
		id, domain.MaxReferencingTitles)
}
