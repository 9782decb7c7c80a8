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

// SkidTypeUseCase administra tipo_patines. Cada unidad consume una tipo_tabla y tres tipo_tacos.
type SkidTypeUseCase struct {
	txRunner ports.TxRunner
	photos   *media.Photos
	opts     Options
}

// NewSkidTypeUseCase construye el caso de uso.
func NewSkidTypeUseCase(txRunner ports.TxRunner, photos *media.Photos, opts Options) *SkidTypeUseCase {
	return &SkidTypeUseCase{txRunner: txRunner, photos: photos, opts: opts}
}

// Create bloquea la tipo_tabla y la tipo_taco madre, valida existencia para la relación fija 1:3,
// fija el precio unitario y descuenta ambas.
func (uc *SkidTypeUseCase) Create(ctx context.Context, in dto.CreateSkidTypeRequest) (*dto.SkidTypeResponse, error) {
	if in.PlankTypeID <= 0 || in.PegTypeID <= 0 || in.Title == "" || in.Quantity < 0 || in.MinStock < 0 {
		return nil, domain.ErrInvalidInput
	}
	logoRef, err := uc.photos.Upload(ctx, media.FolderSkids, in.Logo)
	if err != nil {
		return nil, err
	}

	var out *dto.SkidTypeResponse
	err = uc.photos.Guard(ctx, logoRef, func() error {
		return uc.txRunner.Run(ctx, func(r *repository.Repos) error {
			plank, peg, err := lockSkidParents(ctx, r, in.PlankTypeID, in.PegTypeID)
			if err != nil {
				return err
			}
			if err := consumeSkidParents(ctx, r, plank, peg, in.Quantity); err != nil {
				return err
			}
			now := time.Now()
			skid := &entity.SkidType{
				PlankTypeID: plank.ID,
				PegTypeID:   peg.ID,
				Title:       in.Title,
				Dimensions:  in.Dimensions,
				UnitPrice:   inventory.SkidPrice(plank.UnitPrice, peg.UnitPrice),
				Stock:       in.Quantity,
				MinStock:    in.MinStock,
				LogoRef:     logoRef,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if err := r.SkidTypes.Create(ctx, skid); err != nil {
				return err
			}
			out = toSkidTypeResponse(skid)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Update aplica la diferencia de cantidad sobre las piezas madre y vuelve a fijar el precio
// con los precios vigentes de las piezas.
func (uc *SkidTypeUseCase) Update(ctx context.Context, id int64, in dto.UpdateSkidTypeRequest) (*dto.SkidTypeResponse, error) {
	if (in.Title != nil && *in.Title == "") ||
		(in.Quantity != nil && *in.Quantity < 0) ||
		(in.MinStock != nil && *in.MinStock < 0) {
		return nil, domain.ErrInvalidInput
	}
	logoRef, err := uc.photos.Upload(ctx, media.FolderSkids, in.Logo)
	if err != nil {
		return nil, err
	}

	var out *dto.SkidTypeResponse
	err = uc.photos.Guard(ctx, logoRef, func() error {
		return uc.txRunner.Run(ctx, func(r *repository.Repos) error {
			skid, err := r.SkidTypes.GetForUpdate(ctx, id)
			if err != nil {
				return err
			}
			plank, peg, err := lockSkidParents(ctx, r, skid.PlankTypeID, skid.PegTypeID)
			if err != nil {
				return err
			}
			newQty := skid.Stock
			if in.Quantity != nil {
				newQty = *in.Quantity
			}
			delta := newQty - skid.Stock
			switch {
			case delta > 0:
				if err := consumeSkidParents(ctx, r, plank, peg, delta); err != nil {
					return err
				}
			case delta < 0 && uc.opts.CreditBack:
				if err := r.Ledger.Credit(ctx, entity.StockPlankType, plank.ID, -delta*inventory.PlanksPerSkid); err != nil {
					return err
				}
				if err := r.Ledger.Credit(ctx, entity.StockPegType, peg.ID, -delta*inventory.PegsPerSkid); err != nil {
					return err
				}
			}

			skid.Stock = newQty
			skid.UnitPrice = inventory.SkidPrice(plank.UnitPrice, peg.UnitPrice)
			if in.Title != nil {
				skid.Title = *in.Title
			}
			if in.Dimensions != nil {
				skid.Dimensions = *in.Dimensions
			}
			if in.MinStock != nil {
				skid.MinStock = *in.MinStock
			}
			if logoRef != "" {
				uc.photos.DiscardAfterCommit(r, skid.LogoRef)
				skid.LogoRef = logoRef
			}
			skid.UpdatedAt = time.Now()
			if err := r.SkidTypes.Update(ctx, skid); err != nil {
				return err
			}
			out = toSkidTypeResponse(skid)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete borra el tipo_patin si ningún prototipo lo usa. No devuelve existencia a las piezas.
func (uc *SkidTypeUseCase) Delete(ctx context.Context, id int64) error {
	return uc.txRunner.Run(ctx, func(r *repository.Repos) error {
		skid, err := r.SkidTypes.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		titles, err := r.SkidTypes.ReferencingTitles(ctx, id)
		if err != nil {
			return err
		}
		if len(titles) > 0 {
			return domain.NewReferencedError(string(entity.StockSkidType), titles)
		}
		if err := r.SkidTypes.Delete(ctx, id); err != nil {
			return err
		}
		uc.photos.DiscardAfterCommit(r, skid.LogoRef)
		return nil
	})
}

// GetByID obtiene un tipo_patin.
func (uc *SkidTypeUseCase) GetByID(ctx context.Context, id int64) (*dto.SkidTypeResponse, error) {
	var out *dto.SkidTypeResponse
	err := uc.txRunner.Run(ctx, func(r *repository.Repos) error {
		skid, err := r.SkidTypes.GetByID(ctx, id)
		if err != nil {
			return err
		}
		out = toSkidTypeResponse(skid)
		return nil
	})
	return out, err
}

// List lista tipo_patines.
func (uc *SkidTypeUseCase) List(ctx context.Context, page dto.PageRequest) ([]*dto.SkidTypeResponse, error) {
	page = normalizePage(page)
	var out []*dto.SkidTypeResponse
	err := uc.txRunner.Run(ctx, func(r *repository.Repos) error {
		skids, err := r.SkidTypes.List(ctx, repository.ListQuery{Limit: page.Limit, Offset: page.Offset})
		if err != nil {
			return err
		}
		out = make([]*dto.SkidTypeResponse, 0, len(skids))
		for _, s := range skids {
			out = append(out, toSkidTypeResponse(s))
		}
		return nil
	})
	return out, err
}

// lockSkidParents bloquea primero la tipo_tabla y luego la tipo_taco; el orden fijo evita interbloqueos.
func lockSkidParents(ctx context.Context, r *repository.Repos, plankID, pegID int64) (*entity.DerivedPart, *entity.DerivedPart, error) {
	plank, err := r.PlankTypes.GetForUpdate(ctx, plankID)
	if err != nil {
		return nil, nil, fmt.Errorf("tipo_tabla %d: %w", plankID, err)
	}
	peg, err := r.PegTypes.GetForUpdate(ctx, pegID)
	if err != nil {
		return nil, nil, fmt.Errorf("tipo_taco %d: %w", pegID, err)
	}
	return plank, peg, nil
}

func consumeSkidParents(ctx context.Context, r *repository.Repos, plank, peg *entity.DerivedPart, units int) error {
	needPlanks := units * inventory.PlanksPerSkid
	needPegs := units * inventory.PegsPerSkid
	if plank.Stock < needPlanks {
		return fmt.Errorf("%w: se requieren %d tipo_tablas y hay %d", domain.ErrInsufficientStock, needPlanks, plank.Stock)
	}
	if peg.Stock < needPegs {
		return fmt.Errorf("%w: se requieren %d tipo_tacos y hay %d", domain.ErrInsufficientStock, needPegs, peg.Stock)
	}
	if err := r.Ledger.Debit(ctx, entity.StockPlankType, plank.ID, needPlanks); err != nil {
		return err
	}
	return r.Ledger.Debit(ctx, entity.StockPegType, peg.ID, needPegs)
}

func toSkidTypeResponse(s *entity.SkidType) *dto.SkidTypeResponse {
	return &dto.SkidTypeResponse{
		ID:          s.ID,
		PlankTypeID: s.PlankTypeID,
		PegTypeID:   s.PegTypeID,
		Title:       s.Title,
		Dimensions:  s.Dimensions,
		UnitPrice:   dto.Money(s.UnitPrice),
		Stock:       s.Stock,
		MinStock:    s.MinStock,
		LogoRef:     s.LogoRef,
		CreatedAt:   s.CreatedAt,
	}
}
