package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/imanod-api/internal/application/dto"
	"github.com/jhoicas/imanod-api/internal/application/media"
	"github.com/jhoicas/imanod-api/internal/application/ports"
	"github.com/jhoicas/imanod-api/internal/domain"
	"github.com/jhoicas/imanod-api/internal/domain/entity"
	"github.com/jhoicas/imanod-api/internal/domain/repository"
)

// MaterialUseCase CRUD de materia prima. La existencia solo cambia por el libro de existencias.
type MaterialUseCase struct {
	txRunner ports.TxRunner
	photos   *media.Photos
}

// NewMaterialUseCase construye el caso de uso.
func NewMaterialUseCase(txRunner ports.TxRunner, photos *media.Photos) *MaterialUseCase {
	return &MaterialUseCase{txRunner: txRunner, photos: photos}
}

// Create crea materia prima de la categoría indicada. Tablas y postes requieren largo.
func (uc *MaterialUseCase) Create(ctx context.Context, in dto.CreateMaterialRequest) (*dto.MaterialResponse, error) {
	category := entity.MaterialCategory(in.Category)
	if !category.Valid() || in.Title == "" || in.Stock < 0 || in.MinStock < 0 || in.UnitPrice.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	if category.HasDimensions() && !in.Length.IsPositive() {
		return nil, domain.ErrInvalidLength
	}
	photoRef, err := uc.photos.Upload(ctx, media.FolderMaterials, in.Photo)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	m := &entity.Material{
		Category:  category,
		Title:     in.Title,
		UnitPrice: in.UnitPrice,
		Stock:     in.Stock,
		MinStock:  in.MinStock,
		Length:    in.Length,
		Width:     in.Width,
		Thickness: in.Thickness,
		PhotoRef:  photoRef,
		Notes:     in.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err = uc.photos.Guard(ctx, photoRef, func() error {
		return uc.txRunner.Run(ctx, func(r *repository.Repos) error {
			return r.Materials.Create(ctx, m)
		})
	})
	if err != nil {
		return nil, err
	}
	return toMaterialResponse(m), nil
}

// Update actualiza datos de la materia prima. Si viene Stock, la diferencia se aplica como
// ajuste por el libro de existencias bajo bloqueo.
func (uc *MaterialUseCase) Update(ctx context.Context, id int64, in dto.UpdateMaterialRequest) (*dto.MaterialResponse, error) {
	if (in.Title != nil && *in.Title == "") ||
		(in.Stock != nil && *in.Stock < 0) ||
		(in.MinStock != nil && *in.MinStock < 0) ||
		(in.UnitPrice != nil && in.UnitPrice.IsNegative()) {
		return nil, domain.ErrInvalidInput
	}
	photoRef, err := uc.photos.Upload(ctx, media.FolderMaterials, in.Photo)
	if err != nil {
		return nil, err
	}
	var out *dto.MaterialResponse
	err = uc.photos.Guard(ctx, photoRef, func() error {
		return uc.txRunner.Run(ctx, func(r *repository.Repos) error {
			m, err := r.Materials.GetForUpdate(ctx, id)
			if err != nil {
				return err
			}
			if in.Title != nil {
				m.Title = *in.Title
			}
			if in.UnitPrice != nil {
				m.UnitPrice = *in.UnitPrice
			}
			if in.MinStock != nil {
				m.MinStock = *in.MinStock
			}
			if in.Length != nil {
				m.Length = *in.Length
			}
			if in.Width != nil {
				m.Width = *in.Width
			}
			if in.Thickness != nil {
				m.Thickness = *in.Thickness
			}
			if in.Notes != nil {
				m.Notes = *in.Notes
			}
			if m.Category.HasDimensions() && !m.Length.IsPositive() {
				return domain.ErrInvalidLength
			}
			if photoRef != "" {
				uc.photos.DiscardAfterCommit(r, m.PhotoRef)
				m.PhotoRef = photoRef
			}
			m.UpdatedAt = time.Now()
			if err := r.Materials.Update(ctx, m); err != nil {
				return err
			}
			if in.Stock != nil {
				switch diff := *in.Stock - m.Stock; {
				case diff > 0:
					err = r.Ledger.Credit(ctx, entity.StockMaterial, id, diff)
				case diff < 0:
					err = r.Ledger.Debit(ctx, entity.StockMaterial, id, -diff)
				}
				if err != nil {
					return err
				}
				m.Stock = *in.Stock
			}
			out = toMaterialResponse(m)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete borra la materia prima si ninguna pieza derivada, prototipo ni encargo la usa.
func (uc *MaterialUseCase) Delete(ctx context.Context, id int64) error {
	return uc.txRunner.Run(ctx, func(r *repository.Repos) error {
		m, err := r.Materials.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		titles, err := r.Materials.ReferencingTitles(ctx, id)
		if err != nil {
			return err
		}
		if len(titles) > 0 {
			return domain.NewReferencedError(string(entity.StockMaterial), titles)
		}
		if err := r.Materials.Delete(ctx, id); err != nil {
			return err
		}
		uc.photos.DiscardAfterCommit(r, m.PhotoRef)
		return nil
	})
}

// GetByID obtiene una materia prima.
func (uc *MaterialUseCase) GetByID(ctx context.Context, id int64) (*dto.MaterialResponse, error) {
	var out *dto.MaterialResponse
	err := uc.txRunner.Run(ctx, func(r *repository.Repos) error {
		m, err := r.Materials.GetByID(ctx, id)
		if err != nil {
			return err
		}
		out = toMaterialResponse(m)
		return nil
	})
	return out, err
}

// List lista materia prima; category vacío lista todas.
func (uc *MaterialUseCase) List(ctx context.Context, category string, page dto.PageRequest) ([]*dto.MaterialResponse, error) {
	page = normalizePage(page)
	q := repository.ListQuery{Limit: page.Limit, Offset: page.Offset}
	if category != "" {
		if !entity.MaterialCategory(category).Valid() {
			return nil, domain.ErrInvalidInput
		}
		q = q.Where("categoria", repository.OpEq, category)
	}
	var out []*dto.MaterialResponse
	err := uc.txRunner.Run(ctx, func(r *repository.Repos) error {
		items, err := r.Materials.List(ctx, q)
		if err != nil {
			return err
		}
		out = make([]*dto.MaterialResponse, 0, len(items))
		for _, m := range items {
			out = append(out, toMaterialResponse(m))
		}
		return nil
	})
	return out, err
}

func toMaterialResponse(m *entity.Material) *dto.MaterialResponse {
	return &dto.MaterialResponse{
		ID:        m.ID,
		Category:  string(m.Category),
		Title:     m.Title,
		UnitPrice: dto.Money(m.UnitPrice),
		Stock:     m.Stock,
		MinStock:  m.MinStock,
		Length:    m.Length,
		Width:     m.Width,
		Thickness: m.Thickness,
		PhotoRef:  m.PhotoRef,
		Notes:     m.Notes,
		CreatedAt: m.CreatedAt,
	}
}
