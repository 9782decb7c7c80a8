package credit

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/imanod-api/internal/application/dto"
	"github.com/jhoicas/imanod-api/internal/application/media"
	"github.com/jhoicas/imanod-api/internal/application/ports"
	"github.com/jhoicas/imanod-api/internal/domain"
	"github.com/jhoicas/imanod-api/internal/domain/entity"
	"github.com/jhoicas/imanod-api/internal/domain/repository"
)

// ProductUseCase CRUD de productos FuegoYa.
type ProductUseCase struct {
	txRunner ports.TxRunner
	photos   *media.Photos
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(txRunner ports.TxRunner, photos *media.Photos) *ProductUseCase {
	return &ProductUseCase{txRunner: txRunner, photos: photos}
}

// Create crea un producto con su existencia inicial de bultos.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateFuegoYaProductRequest) (*dto.FuegoYaProductResponse, error) {
	if in.Type == "" || in.UnitPrice.IsNegative() || in.Stock < 0 || in.MinStock < 0 {
		return nil, domain.ErrInvalidInput
	}
	photoRef, err := uc.photos.Upload(ctx, media.FolderFuegoYa, in.Photo)
	if err != nil {
		return nil, err
	}
	p := &entity.FuegoYaProduct{
		Type:      in.Type,
		UnitPrice: in.UnitPrice,
		Stock:     in.Stock,
		MinStock:  in.MinStock,
		PhotoRef:  photoRef,
		CreatedAt: time.Now(),
	}
	err = uc.photos.Guard(ctx, photoRef, func() error {
		return uc.txRunner.Run(ctx, func(r *repository.Repos) error {
			return r.Products.Create(ctx, p)
		})
	})
	if err != nil {
		return nil, err
	}
	return toProductResponse(p), nil
}

// Update actualiza el producto; Stock se aplica como ajuste por el libro de existencias.
func (uc *ProductUseCase) Update(ctx context.Context, id int64, in dto.UpdateFuegoYaProductRequest) (*dto.FuegoYaProductResponse, error) {
	if (in.Type != nil && *in.Type == "") ||
		(in.UnitPrice != nil && in.UnitPrice.IsNegative()) ||
		(in.Stock != nil && *in.Stock < 0) ||
		(in.MinStock != nil && *in.MinStock < 0) {
		return nil, domain.ErrInvalidInput
	}
	photoRef, err := uc.photos.Upload(ctx, media.FolderFuegoYa, in.Photo)
	if err != nil {
		return nil, err
	}
	var out *dto.FuegoYaProductResponse
	err = uc.photos.Guard(ctx, photoRef, func() error {
		return uc.txRunner.Run(ctx, func(r *repository.Repos) error {
			stock, err := r.Ledger.LockAndRead(ctx, entity.StockFuegoYa, id)
			if err != nil {
				return err
			}
			p, err := r.Products.GetByID(ctx, id)
			if err != nil {
				return err
			}
			if in.Type != nil {
				p.Type = *in.Type
			}
			if in.UnitPrice != nil {
				p.UnitPrice = *in.UnitPrice
			}
			if in.MinStock != nil {
				p.MinStock = *in.MinStock
			}
			if photoRef != "" {
				uc.photos.DiscardAfterCommit(r, p.PhotoRef)
				p.PhotoRef = photoRef
			}
			if err := r.Products.Update(ctx, p); err != nil {
				return err
			}
			if in.Stock != nil {
				switch diff := *in.Stock - stock; {
				case diff > 0:
					err = r.Ledger.Credit(ctx, entity.StockFuegoYa, id, diff)
				case diff < 0:
					err = r.Ledger.Debit(ctx, entity.StockFuegoYa, id, -diff)
				}
				if err != nil {
					return err
				}
				p.Stock = *in.Stock
			}
			out = toProductResponse(p)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete borra el producto si ninguna venta lo referencia.
func (uc *ProductUseCase) Delete(ctx context.Context, id int64) error {
	return uc.txRunner.Run(ctx, func(r *repository.Repos) error {
		p, err := r.Products.GetByID(ctx, id)
		if err != nil {
			return err
		}
		n, err := r.Products.CountSales(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return domain.NewReferencedError(string(entity.StockFuegoYa), []string{fmt.Sprintf("%d ventas", n)})
		}
		if err := r.Products.Delete(ctx, id); err != nil {
			return err
		}
		uc.photos.DiscardAfterCommit(r, p.PhotoRef)
		return nil
	})
}

// List lista productos.
func (uc *ProductUseCase) List(ctx context.Context, page dto.PageRequest) ([]*dto.FuegoYaProductResponse, error) {
	page.DefaultPage()
	var out []*dto.FuegoYaProductResponse
	err := uc.txRunner.Run(ctx, func(r *repository.Repos) error {
		items, err := r.Products.List(ctx, repository.ListQuery{Limit: page.Limit, Offset: page.Offset})
		if err != nil {
			return err
		}
		out = make([]*dto.FuegoYaProductResponse, 0, len(items))
		for _, p := range items {
			out = append(out, toProductResponse(p))
		}
		return nil
	})
	return out, err
}

func toProductResponse(p *entity.FuegoYaProduct) *dto.FuegoYaProductResponse {
	return &dto.FuegoYaProductResponse{
		ID:        p.ID,
		Type:      p.Type,
		UnitPrice: dto.Money(p.UnitPrice),
		Stock:     p.Stock,
		MinStock:  p.MinStock,
		PhotoRef:  p.PhotoRef,
	}
}
