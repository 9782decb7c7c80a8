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

var _ repository.PrototypeRepository = (*PrototypeRepo)(nil)

// PrototypeRepo prototipos y sus cuatro tablas de lista de materiales.
type PrototypeRepo struct {
	q Querier
}

// NewPrototypeRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPrototypeRepository(q Querier) *PrototypeRepo {
	return &PrototypeRepo{q: q}
}

// bomTable tabla y columna de componente por tipo de línea.
type bomTable struct {
	kind   entity.BOMKind
	table  string
	column string
}

var bomTables = []bomTable{
	{entity.BOMPlankType, "prototipo_tablas", "tipo_tabla_id"},
	{entity.BOMPegType, "prototipo_tacos", "tipo_taco_id"},
	{entity.BOMNail, "prototipo_clavos", "material_id"},
	{entity.BOMFiber, "prototipo_fibras", "material_id"},
}

func bomTableFor(kind entity.BOMKind) (bomTable, error) {
	for _, t := range bomTables {
		if t.kind == kind {
			return t, nil
		}
	}
	return bomTable{}, fmt.Errorf("%w: tipo de línea %q", domain.ErrInvalidInput, kind)
}

const prototypeColumns = `id, titulo, dimensiones, tipo_patin_id, cantidad_patines, cliente_id,
	foto, activo, created_at, updated_at`

var prototypeFilters = columns{
	"id":         "id",
	"titulo":     "titulo",
	"activo":     "activo",
	"cliente_id": "COALESCE(cliente_id, 0)",
}

func scanPrototype(row pgx.Row) (*entity.Prototype, error) {
	var p entity.Prototype
	err := row.Scan(&p.ID, &p.Title, &p.Dimensions, &p.SkidTypeID, &p.SkidCount, &p.ClientID,
		&p.PhotoRef, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create persiste el prototipo y sus líneas.
func (r *PrototypeRepo) Create(ctx context.Context, p *entity.Prototype) error {
	query := `
		INSERT INTO prototipos (titulo, dimensiones, tipo_patin_id, cantidad_patines, cliente_id, foto, activo)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`
	err := r.q.QueryRow(ctx, query,
		p.Title, p.Dimensions, p.SkidTypeID, p.SkidCount, p.ClientID, p.PhotoRef, p.Active,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("referencia del prototipo: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("insert prototipo: %w", err)
	}
	return r.insertLines(ctx, p.ID, p.Lines)
}

func (r *PrototypeRepo) insertLines(ctx context.Context, prototypeID int64, lines []entity.BOMLine) error {
	for _, l := range lines {
		t, err := bomTableFor(l.Kind)
		if err != nil {
			return err
		}
		_, err = r.q.Exec(ctx,
			`INSERT INTO `+t.table+` (prototipo_id, `+t.column+`, cantidad, notas) VALUES ($1, $2, $3, $4)`,
			prototypeID, l.ComponentID, l.QuantityPerUnit, l.Notes)
		if err != nil {
			if isForeignKeyViolation(err) {
				return fmt.Errorf("%s %d: %w", l.Kind, l.ComponentID, domain.ErrNotFound)
			}
			return fmt.Errorf("insert %s: %w", t.table, err)
		}
	}
	return nil
}

// loadLines completa las líneas de varios prototipos con una sola consulta.
func (r *PrototypeRepo) loadLines(ctx context.Context, list []*entity.Prototype) error {
	if len(list) == 0 {
		return nil
	}
	byID := make(map[int64]*entity.Prototype, len(list))
	ids := make([]int64, 0, len(list))
	for _, p := range list {
		byID[p.ID] = p
		ids = append(ids, p.ID)
	}
	query := `
		SELECT prototipo_id, kind, componente, cantidad, notas FROM (
			SELECT 1 AS orden, id, prototipo_id, 'tablas' AS kind, tipo_tabla_id AS componente, cantidad, notas
			FROM prototipo_tablas WHERE prototipo_id = ANY($1)
			UNION ALL
			SELECT 2, id, prototipo_id, 'tacos', tipo_taco_id, cantidad, notas
			FROM prototipo_tacos WHERE prototipo_id = ANY($1)
			UNION ALL
			SELECT 3, id, prototipo_id, 'clavos', material_id, cantidad, notas
			FROM prototipo_clavos WHERE prototipo_id = ANY($1)
			UNION ALL
			SELECT 4, id, prototipo_id, 'fibras', material_id, cantidad, notas
			FROM prototipo_fibras WHERE prototipo_id = ANY($1)
		) lineas
		ORDER BY prototipo_id, orden, id`
	rows, err := r.q.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("list bom lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			protoID int64
			kind    string
			l       entity.BOMLine
		)
		if err := rows.Scan(&protoID, &kind, &l.ComponentID, &l.QuantityPerUnit, &l.Notes); err != nil {
			return fmt.Errorf("scan bom line: %w", err)
		}
		l.Kind = entity.BOMKind(kind)
		p := byID[protoID]
		p.Lines = append(p.Lines, l)
	}
	return rows.Err()
}

// GetByID obtiene el prototipo con su lista de materiales.
func (r *PrototypeRepo) GetByID(ctx context.Context, id int64) (*entity.Prototype, error) {
	p, err := scanPrototype(r.q.QueryRow(ctx, `SELECT `+prototypeColumns+` FROM prototipos WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("prototipo %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get prototipo: %w", err)
	}
	if err := r.loadLines(ctx, []*entity.Prototype{p}); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PrototypeRepo) List(ctx context.Context, q repository.ListQuery) ([]*entity.Prototype, error) {
	where, args, err := buildWhere(q, prototypeFilters, nil)
	if err != nil {
		return nil, err
	}
	page, args := pageClause(q, "id", args)
	rows, err := r.q.Query(ctx, `SELECT `+prototypeColumns+` FROM prototipos WHERE TRUE`+where+page, args...)
	if err != nil {
		return nil, fmt.Errorf("list prototipos: %w", err)
	}
	var list []*entity.Prototype
	for rows.Next() {
		p, err := scanPrototype(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan prototipo: %w", err)
		}
		list = append(list, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list prototipos: %w", err)
	}
	if err := r.loadLines(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// Update reemplaza campos y líneas.
func (r *PrototypeRepo) Update(ctx context.Context, p *entity.Prototype) error {
	query := `
		UPDATE prototipos SET titulo = $2, dimensiones = $3, tipo_patin_id = $4, cantidad_patines = $5,
			cliente_id = $6, foto = $7, activo = $8, updated_at = now()
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		p.ID, p.Title, p.Dimensions, p.SkidTypeID, p.SkidCount, p.ClientID, p.PhotoRef, p.Active)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("referencia del prototipo: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("update prototipo: %w", err)
	}
	if err := notFoundIfNone(tag, fmt.Sprintf("prototipo %d", p.ID)); err != nil {
		return err
	}
	for _, t := range bomTables {
		if _, err := r.q.Exec(ctx, `DELETE FROM `+t.table+` WHERE prototipo_id = $1`, p.ID); err != nil {
			return fmt.Errorf("delete %s: %w", t.table, err)
		}
	}
	return r.insertLines(ctx, p.ID, p.Lines)
}

// SetActive borrado lógico (o reactivación).
func (r *PrototypeRepo) SetActive(ctx context.Context, id int64, active bool) error {
	tag, err := r.q.Exec(ctx, `UPDATE prototipos SET activo = $2, updated_at = now() WHERE id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("set prototipo activo: %w", err)
	}
	return notFoundIfNone(tag, fmt.Sprintf("prototipo %d", id))
}
