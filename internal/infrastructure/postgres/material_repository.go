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

var _ repository.MaterialRepository = (*MaterialRepo)(nil)

// MaterialRepo implementación de MaterialRepository (usable con pool o tx).
type MaterialRepo struct {
	q Querier
}

// NewMaterialRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMaterialRepository(q Querier) *MaterialRepo {
	return &MaterialRepo{q: q}
}

const materialColumns = `id, categoria, titulo, precio_unitario, stock, stock_minimo,
	largo, ancho, espesor, foto, notas, created_at, updated_at`

var materialFilters = columns{
	"id":        "id",
	"categoria": "categoria",
	"titulo":    "titulo",
	"stock":     "stock",
}

func scanMaterial(row pgx.Row) (*entity.Material, error) {
	var m entity.Material
	var category string
	err := row.Scan(&m.ID, &category, &m.Title, &m.UnitPrice, &m.Stock, &m.MinStock,
		&m.Length, &m.Width, &m.Thickness, &m.PhotoRef, &m.Notes, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	m.Category = entity.MaterialCategory(category)
	return &m, nil
}

// Create persiste la materia prima y asigna ID y fechas.
func (r *MaterialRepo) Create(ctx context.Context, m *entity.Material) error {
	query := `
		INSERT INTO materiales (categoria, titulo, precio_unitario, stock, stock_minimo,
			largo, ancho, espesor, foto, notas)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`
	err := r.q.QueryRow(ctx, query,
		string(m.Category), m.Title, m.UnitPrice, m.Stock, m.MinStock,
		m.Length, m.Width, m.Thickness, m.PhotoRef, m.Notes,
	).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert material: %w", err)
	}
	return nil
}

func (r *MaterialRepo) get(ctx context.Context, id int64, lock bool) (*entity.Material, error) {
	query := `SELECT ` + materialColumns + ` FROM materiales WHERE id = $1`
	if lock {
		query += ` FOR UPDATE`
	}
	m, err := scanMaterial(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("material %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get material: %w", err)
	}
	return m, nil
}

// GetByID obtiene una materia prima por ID.
func (r *MaterialRepo) GetByID(ctx context.Context, id int64) (*entity.Material, error) {
	return r.get(ctx, id, false)
}

// GetForUpdate obtiene la materia prima y bloquea la fila.
func (r *MaterialRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Material, error) {
	return r.get(ctx, id, true)
}

// List materias primas filtradas y paginadas por id.
func (r *MaterialRepo) List(ctx context.Context, q repository.ListQuery) ([]*entity.Material, error) {
	where, args, err := buildWhere(q, materialFilters, nil)
	if err != nil {
		return nil, err
	}
	page, args := pageClause(q, "id", args)
	rows, err := r.q.Query(ctx, `SELECT `+materialColumns+` FROM materiales WHERE TRUE`+where+page, args...)
	if err != nil {
		return nil, fmt.Errorf("list materials: %w", err)
	}
	defer rows.Close()
	var list []*entity.Material
	for rows.Next() {
		m, err := scanMaterial(rows)
		if err != nil {
			return nil, fmt.Errorf("scan material: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// Update escribe todo excepto stock, que solo mueve StockLedger.
func (r *MaterialRepo) Update(ctx context.Context, m *entity.Material) error {
	query := `
		UPDATE materiales SET categoria = $2, titulo = $3, precio_unitario = $4, stock_minimo = $5,
			largo = $6, ancho = $7, espesor = $8, foto = $9, notas = $10, updated_at = now()
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		m.ID, string(m.Category), m.Title, m.UnitPrice, m.MinStock,
		m.Length, m.Width, m.Thickness, m.PhotoRef, m.Notes,
	)
	if err != nil {
		return fmt.Errorf("update material: %w", err)
	}
	return notFoundIfNone(tag, fmt.Sprintf("material %d", m.ID))
}

// Delete elimina la materia prima. Las FK RESTRICT cubren referencias no detectadas antes.
func (r *MaterialRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM materiales WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrReferenced
		}
		return fmt.Errorf("delete material: %w", err)
	}
	return notFoundIfNone(tag, fmt.Sprintf("material %d", id))
}

// ReferencingTitles piezas derivadas, prototipos (clavos/fibras) y encargos que usan la materia prima.
func (r *MaterialRepo) ReferencingTitles(ctx context.Context, id int64) ([]string, error) {
	query := `
		SELECT titulo FROM (
			SELECT 1 AS grupo, id, 'tipo_tablas ' || largo || ' x ' || ancho || ' x ' || espesor AS titulo
			FROM tipo_tablas WHERE material_id = $1
			UNION ALL
			SELECT 2, id, 'tipo_tacos ' || largo || ' x ' || ancho || ' x ' || espesor
			FROM tipo_tacos WHERE material_id = $1
			UNION ALL
			SELECT 3, p.id, p.titulo FROM prototipos p
			WHERE EXISTS (SELECT 1 FROM prototipo_clavos c WHERE c.prototipo_id = p.id AND c.material_id = $1)
			   OR EXISTS (SELECT 1 FROM prototipo_fibras f WHERE f.prototipo_id = p.id AND f.material_id = $1)
			UNION ALL
			SELECT 4, e.id, 'encargo #' || e.id FROM encargos e
			WHERE EXISTS (SELECT 1 FROM encargo_items i WHERE i.encargo_id = e.id AND i.material_id = $1)
		) refs
		ORDER BY grupo, id
		LIMIT $2`
	return queryTitles(ctx, r.q, query, id, domain.MaxReferencingTitles)
}

// queryTitles lee una columna de texto por fila.
func queryTitles(ctx context.Context, q Querier, query string, args ...any) ([]string, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("referencing titles: %w", err)
	}
	defer rows.Close()
	var titles []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scan title: %w", err)
		}
		titles = append(titles, t)
	}
	return titles, rows.Err()
}
