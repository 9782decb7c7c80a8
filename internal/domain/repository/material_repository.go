package repository

import (
	"context"

	"github.com/jhoicas/imanod-api/internal/domain/entity"
)

// MaterialRepository puerto de persistencia de materia prima.
// Update no modifica Stock: la existencia solo se mueve por StockLedger.
type MaterialRepository interface {
	Create(ctx context.Context, m *entity.Material) error
	GetByID(ctx context.Context, id int64) (*entity.Material, error)
	GetForUpdate(ctx context.Context, id int64) (*entity.Material, error)
	List(ctx context.Context, q ListQuery) ([]*entity.Material, error)
	Update(ctx context.Context, m *entity.Material) error
	Delete(ctx context.Context, id int64) error
	// ReferencingTitles piezas derivadas y prototipos que usan la materia prima.
	ReferencingTitles(ctx context.Context, id int64) ([]string, error)
}
