package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/imanod-api/internal/application/dto"
	"github.com/jhoicas/imanod-api/internal/application/media"
	"github.com/jhoicas/imanod-api/internal/application/ports"
	"github.com/jhoicas/imanod-api/internal/domain"
	"github.com/jhoicas/imanod-api/internal/domain/entity"
	"github.com/jhoicas/imanod-api/internal/domain/inventory"
	"github.com/jhoicas/imanod-api/internal/domain/repository"
)

// DerivedPartUseCase crea, actualiza y borra tipo_tablas o tipo_tacos descontando la materia prima
// madre dentro de una transacción con bloqueo de fila (SELECT FOR UPDATE).
type DerivedPartUseCase struct {
	txRunner ports.TxRunner
	photos   *media.Photos
	kind     entity.StockKind
	opts     Options
}

// NewDerivedPartUseCase construye el caso de uso para un tipo de pieza (StockPlankType o StockPegType).
func NewDerivedPartUseCase(txRunner ports.TxRunner, photos *media.Photos, kind entity.StockKind, opts Options) *DerivedPartUseCase {
	return &DerivedPartUseCase{txRunner: txRunner, photos: photos, kind: kind, opts: opts}
}

// Create bloquea la materia prima, calcula piezas por unidad madre y unidades necesarias,
// verifica existencia, inserta la pieza con Stock = cantidad deseada y descuenta la madre.
func (uc *DerivedPartUseCase) Create(ctx context.Context, in dto.CreateDerivedPartRequest) (*dto.DerivedPartResponse, error) {
	if in.MaterialID <= 0 || !in.Length.IsPositive() || in.Quantity < 0 || in.MinStock < 0 ||
		in.Width.IsNegative() || in.Thickness.IsNegative() || in.UnitPrice.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	photoRef, err := uc.photos.Upload(ctx, media.FolderParts, in.Photo)
	if err != nil {
		return nil, err
	}

	var out *dto.DerivedPartResponse
	err = uc.photos.Guard(ctx, photoRef, func() error {
		return uc.txRunner.Run(ctx, func(r *repository.Repos) error {
			// Bloquea la fila de la materia prima para serializar descuentos concurrentes
			parent, err := r.Materials.GetForUpdate(ctx, in.MaterialID)
			if err != nil {
				return err
			}
			if parent.Category != entity.ParentCategory(uc.kind) {
				return fmt.Errorf("%w: la materia prima %d no es de categoría %s",
					domain.ErrInvalidInput, parent.ID, entity.ParentCategory(uc.kind))
			}
			ppp := inventory.PiecesPerParent(parent.Length, in.Length)
			if ppp < 1 {
				return domain.ErrInvalidLength
			}
			needed := inventory.ParentsRequired(in.Quantity, ppp)
			if parent.Stock < needed {
				return fmt.Errorf("%w: se requieren %d unidades de %q y hay %d",
					domain.ErrInsufficientStock, needed, parent.Title, parent.Stock)
			}
			now := time.Now()
			part := &entity.DerivedPart{
				Kind:      uc.kind,
				ParentID:  parent.ID,
				Length:    in.Length,
				Width:     in.Width,
				Thickness: in.Thickness,
				UnitPrice: in.UnitPrice,
				Stock:     in.Quantity,
				MinStock:  in.MinStock,
				PhotoRef:  photoRef,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := r.Parts(uc.kind).Create(ctx, part); err != nil {
				return err
			}
			if err := r.Ledger.Debit(ctx, entity.StockMaterial, parent.ID, needed); err != nil {
				return err
			}
			out = toDerivedPartResponse(part, ppp)
			out.ParentsConsumed = needed
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Update recalcula el consumo con las medidas y cantidades nuevas y aplica solo la diferencia
// sobre la materia prima. La madre de la pieza no cambia.
func (uc *DerivedPartUseCase) Update(ctx context.Context, id int64, in dto.UpdateDerivedPartRequest) (*dto.DerivedPartResponse, error) {
	if (in.Length != nil && !in.Length.IsPositive()) ||
		(in.Width != nil && in.Width.IsNegative()) ||
		(in.Thickness != nil && in.Thickness.IsNegative()) ||
		(in.UnitPrice != nil && in.UnitPrice.IsNegative()) ||
		(in.Quantity != nil && *in.Quantity < 0) ||
		(in.MinStock != nil && *in.MinStock < 0) {
		return nil, domain.ErrInvalidInput
	}
	photoRef, err := uc.photos.Upload(ctx, media.FolderParts, in.Photo)
	if err != nil {
		return nil, err
	}

	var out *dto.DerivedPartResponse
	err = uc.photos.Guard(ctx, photoRef, func() error {
		return uc.txRunner.Run(ctx, func(r *repository.Repos) error {
			parts := r.Parts(uc.kind)
			part, err := parts.GetForUpdate(ctx, id)
			if err != nil {
				return err
			}
			parent, err := r.Materials.GetForUpdate(ctx, part.ParentID)
			if err != nil {
				return err
			}

			newLength := part.Length
			if in.Length != nil {
				newLength = *in.Length
			}
			newQty := part.Stock
			if in.Quantity != nil {
				newQty = *in.Quantity
			}

			pOld := inventory.PiecesPerParent(parent.Length, part.Length)
			pNew := inventory.PiecesPerParent(parent.Length, newLength)
			if pNew < 1 {
				return domain.ErrInvalidLength
			}
			usedOld := 0
			if pOld >= 1 {
				usedOld = inventory.ParentsRequired(part.Stock, pOld)
			}
			usedNew := inventory.ParentsRequired(newQty, pNew)
			delta := usedNew - usedOld

			switch {
			case delta > 0:
				if parent.Stock < delta {
					return fmt.Errorf("%w: se requieren %d unidades más de %q y hay %d",
						domain.ErrInsufficientStock, delta, parent.Title, parent.Stock)
				}
				if err := r.Ledger.Debit(ctx, entity.StockMaterial, parent.ID, delta); err != nil {
					return err
				}
			case delta < 0 && uc.opts.CreditBack:
				if err := r.Ledger.Credit(ctx, entity.StockMaterial, parent.ID, -delta); err != nil {
					return err
				}
			}

			part.Length = newLength
			part.Stock = newQty
			if in.Width != nil {
				part.Width = *in.Width
			}
			if in.Thickness != nil {
				part.Thickness = *in.Thickness
			}
			if in.UnitPrice != nil {
				part.UnitPrice = *in.UnitPrice
			}
			if in.MinStock != nil {
				part.MinStock = *in.MinStock
			}
			if photoRef != "" {
				uc.photos.DiscardAfterCommit(r, part.PhotoRef)
				part.PhotoRef = photoRef
			}
			part.UpdatedAt = time.Now()
			if err := parts.Update(ctx, part); err != nil {
				return err
			}
			out = toDerivedPartResponse(part, pNew)
			if delta > 0 {
				out.ParentsConsumed = delta
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete borra la pieza si ningún prototipo ni tipo_patin la referencia. No devuelve
// existencia a la materia prima. La foto se borra después del commit.
func (uc *DerivedPartUseCase) Delete(ctx context.Context, id int64) error {
	return uc.txRunner.Run(ctx, func(r *repository.Repos) error {
		parts := r.Parts(uc.kind)
		part, err := parts.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		titles, err := parts.ReferencingTitles(ctx, id)
		if err != nil {
			return err
		}
		if len(titles) > 0 {
			return domain.NewReferencedError(string(uc.kind), titles)
		}
		if err := parts.Delete(ctx, id); err != nil {
			return err
		}
		uc.photos.DiscardAfterCommit(r, part.PhotoRef)
		return nil
	})
}

// GetByID obtiene una pieza con su rendimiento actual respecto a la madre.
func (uc *DerivedPartUseCase) GetByID(ctx context.Context, id int64) (*dto.DerivedPartResponse, error) {
	var out *dto.DerivedPartResponse
	err := uc.txRunner.Run(ctx, func(r *repository.Repos) error {
		part, err := r.Parts(uc.kind).GetByID(ctx, id)
		if err != nil {
			return err
		}
		ppp := 0
		if parent, err := r.Materials.GetByID(ctx, part.ParentID); err == nil {
			ppp = inventory.PiecesPerParent(parent.Length, part.Length)
		}
		out = toDerivedPartResponse(part, ppp)
		return nil
	})
	return out, err
}

// List lista piezas; materialID > 0 filtra por materia prima madre.
func (uc *DerivedPartUseCase) List(ctx context.Context, materialID int64, page dto.PageRequest) ([]*dto.DerivedPartResponse, error) {
	page = normalizePage(page)
	q := repository.ListQuery{Limit: page.Limit, Offset: page.Offset}
	if materialID > 0 {
		q = q.Where("material_id", repository.OpEq, materialID)
	}
	var out []*dto.DerivedPartResponse
	err := uc.txRunner.Run(ctx, func(r *repository.Repos) error {
		parts, err := r.Parts(uc.kind).List(ctx, q)
		if err != nil {
			return err
		}
		out = make([]*dto.DerivedPartResponse, 0, len(parts))
		for _, p := range parts {
			out = append(out, toDerivedPartResponse(p, 0))
		}
		return nil
	})
	return out, err
}

func toDerivedPartResponse(p *entity.DerivedPart, ppp int) *dto.DerivedPartResponse {
	return &dto.DerivedPartResponse{
		ID:              p.ID,
		Kind:            string(p.Kind),
		MaterialID:      p.ParentID,
		Length:          p.Length,
		Width:           p.Width,
		Thickness:       p.Thickness,
		UnitPrice:       dto.Money(p.UnitPrice),
		Stock:           p.Stock,
		MinStock:        p.MinStock,
		PiecesPerParent: ppp,
		PhotoRef:        p.PhotoRef,
		CreatedAt:       p.CreatedAt,
	}
}
