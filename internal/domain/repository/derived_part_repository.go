package repository

import (
	"context"

	"github.com/jhoicas/imanod-api/internal/domain/entity"
)

// DerivedPartRepository puerto de tipo_tablas o tipo_tacos (una instancia por tipo).
// Update escribe todos los campos, incluida la existencia de la pieza.
type DerivedPartRepository interface {
	Create(ctx context.Context, p *entity.DerivedPart) error
	GetByID(ctx context.Context, id int64) (*entity.DerivedPart, error)
	GetForUpdate(ctx context.Context, id int64) (*entity.DerivedPart, error)
	List(ctx context.Context, q ListQuery) ([]*entity.DerivedPart, error)
	Update(ctx context.Context, p *entity.DerivedPart) error
	Delete(ctx context.Context, id int64) error
	// ReferencingTitles prototipos (activos o no) y tipo_patines que usan la pieza.
	ReferencingTitles(ctx context.Context, id int64) ([]string, error)
}

// SkidTypeRepository puerto de tipo_patines.
type SkidTypeRepository interface {
	Create(ctx context.Context, s *entity.SkidType) error
	GetByID(ctx context.Context, id int64) (*entity.SkidType, error)
	GetForUpdate(ctx context.Context, id int64) (*entity.SkidType, error)
	List(ctx context.Context, q ListQuery) ([]*entity.SkidType, error)
	Update(ctx context.Context, s *entity.SkidType) error
	Delete(ctx context.Context, id int64) error
	ReferencingTitles(ctx context.Context, id int64) ([]string, error)
}

// PrototypeRepository puerto de prototipos con su lista de materiales.
type PrototypeRepository interface {
	Create(ctx context.Context, p *entity.Prototype) error
	GetByID(ctx context.Context, id int64) (*entity.Prototype, error)
	List(ctx context.Context, q ListQuery) ([]*entity.Prototype, error)
	// Update reemplaza los campos y las líneas de la lista de materiales.
	Update(ctx context.Context, p *entity.Prototype) error
	SetActive(ctx context.Context, id int64, active bool) error
}
