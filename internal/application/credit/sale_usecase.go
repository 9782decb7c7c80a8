package credit

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/imanod-api/internal/application/dto"
	"github.com/jhoicas/imanod-api/internal/application/media"
	"github.com/jhoicas/imanod-api/internal/application/ports"
	"github.com/jhoicas/imanod-api/internal/domain"
	"github.com/jhoicas/imanod-api/internal/domain/entity"
	"github.com/jhoicas/imanod-api/internal/domain/repository"
)

// LedgerUseCase ventas y abonos FuegoYa. Toda operación corre en una sola transacción
// con bloqueo de las ventas y pagos que toca.
type LedgerUseCase struct {
	txRunner ports.TxRunner
	photos   *media.Photos
	now      func() time.Time
}

// NewLedgerUseCase construye el caso de uso.
func NewLedgerUseCase(txRunner ports.TxRunner, photos *media.Photos) *LedgerUseCase {
	return &LedgerUseCase{txRunner: txRunner, photos: photos, now: time.Now}
}

// CreateSale registra la venta, descuenta los bultos del producto y, si queda a crédito,
// le aplica la capacidad libre de los abonos del cliente.
func (uc *LedgerUseCase) CreateSale(ctx context.Context, in dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	state := entity.SaleCredit
	if in.State != "" {
		state = entity.SaleState(in.State)
	}
	if in.ClientID <= 0 || in.ProductID <= 0 || in.BagCount <= 0 || !state.Valid() ||
		(in.TotalPrice != nil && in.TotalPrice.IsNegative()) {
		return nil, domain.ErrInvalidInput
	}
	photoRef, err := uc.photos.Upload(ctx, media.FolderFuegoYa, in.Photo)
	if err != nil {
		return nil, err
	}

	var out *dto.SaleResponse
	err = uc.photos.Guard(ctx, photoRef, func() error {
		return uc.txRunner.Run(ctx, func(r *repository.Repos) error {
			now := uc.now()
			if _, err := r.Customers.GetByID(ctx, in.ClientID); err != nil {
				return fmt.Errorf("cliente %d: %w", in.ClientID, err)
			}
			product, err := r.Products.GetByID(ctx, in.ProductID)
			if err != nil {
				return fmt.Errorf("producto %d: %w", in.ProductID, err)
			}
			if err := debitBags(ctx, r, product, in.BagCount); err != nil {
				return err
			}
			total := product.UnitPrice.Mul(decimal.NewFromInt(int64(in.BagCount)))
			if in.TotalPrice != nil {
				total = *in.TotalPrice
			}
			date := now
			if in.Date != nil {
				date = *in.Date
			}
			sale := &entity.FuegoYaSale{
				Date:       date,
				TotalPrice: total,
				ClientID:   in.ClientID,
				ProductID:  product.ID,
				BagCount:   in.BagCount,
				State:      state,
				PhotoRef:   photoRef,
				Allocated:  decimal.Zero,
			}
			if state == entity.SalePaid {
				sale.PaidAt = &now
			}
			if err := r.Sales.Create(ctx, sale); err != nil {
				return err
			}
			applied, _, err := autoApply(ctx, r, sale, now)
			if err != nil {
				return err
			}
			out = toSaleResponse(sale)
			out.AutoApplied = dto.Money(applied)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateSale modifica producto, bultos, precio, cliente o fecha. Los bultos se ajustan contra
// la existencia del producto; las aplicaciones que excedan el nuevo precio vuelven a las
// demás ventas del cliente y, si la venta sigue a crédito, se le aplica la capacidad libre.
func (uc *LedgerUseCase) UpdateSale(ctx context.Context, id int64, in dto.UpdateSaleRequest) (*dto.SaleResponse, error) {
	if (in.ClientID != nil && *in.ClientID <= 0) ||
		(in.ProductID != nil && *in.ProductID <= 0) ||
		(in.BagCount != nil && *in.BagCount <= 0) ||
		(in.TotalPrice != nil && in.TotalPrice.IsNegative()) {
		return nil, domain.ErrInvalidInput
	}
	photoRef, err := uc.photos.Upload(ctx, media.FolderFuegoYa, in.Photo)
	if err != nil {
		return nil, err
	}

	var out *dto.SaleResponse
	err = uc.photos.Guard(ctx, photoRef, func() error {
		return uc.txRunner.Run(ctx, func(r *repository.Repos) error {
			now := uc.now()
			sale, err := r.Sales.GetForUpdate(ctx, id)
			if err != nil {
				return err
			}
			settledByPayments := sale.State == entity.SalePaid && sale.Allocated.IsPositive()
			oldTotal := sale.TotalPrice

			// Existencia: el producto anterior recupera sus bultos, el nuevo los entrega
			newProductID, newBags := sale.ProductID, sale.BagCount
			if in.ProductID != nil {
				newProductID = *in.ProductID
			}
			if in.BagCount != nil {
				newBags = *in.BagCount
			}
			priceChanged := in.TotalPrice != nil
			if newProductID != sale.ProductID {
				product, err := r.Products.GetByID(ctx, newProductID)
				if err != nil {
					return fmt.Errorf("producto %d: %w", newProductID, err)
				}
				if err := r.Ledger.Credit(ctx, entity.StockFuegoYa, sale.ProductID, sale.BagCount); err != nil {
					return err
				}
				if err := debitBags(ctx, r, product, newBags); err != nil {
					return err
				}
				if !priceChanged {
					sale.TotalPrice = product.UnitPrice.Mul(decimal.NewFromInt(int64(newBags)))
				}
			} else if delta := newBags - sale.BagCount; delta != 0 {
				product, err := r.Products.GetByID(ctx, sale.ProductID)
				if err != nil {
					return fmt.Errorf("producto %d: %w", sale.ProductID, err)
				}
				if delta > 0 {
					if err := debitBags(ctx, r, product, delta); err != nil {
						return err
					}
				} else if err := r.Ledger.Credit(ctx, entity.StockFuegoYa, product.ID, -delta); err != nil {
					return err
				}
				if !priceChanged {
					sale.TotalPrice = product.UnitPrice.Mul(decimal.NewFromInt(int64(newBags)))
				}
			}
			sale.ProductID = newProductID
			sale.BagCount = newBags
			if priceChanged {
				sale.TotalPrice = *in.TotalPrice
			}
			if in.Date != nil {
				sale.Date = *in.Date
			}
			if photoRef != "" {
				uc.photos.DiscardAfterCommit(r, sale.PhotoRef)
				sale.PhotoRef = photoRef
			}

			// Cambio de cliente: los abonos del cliente anterior dejan de cubrir esta venta
			var res *releaseResult
			clientChanged := in.ClientID != nil && *in.ClientID != sale.ClientID
			if clientChanged {
				if _, err := r.Customers.GetByID(ctx, *in.ClientID); err != nil {
					return fmt.Errorf("cliente %d: %w", *in.ClientID, err)
				}
				if res, err = releaseAll(ctx, r, sale, now); err != nil {
					return err
				}
				sale.ClientID = *in.ClientID
			} else if res, err = releaseExcess(ctx, r, sale, now); err != nil {
				return err
			}
			// Una venta saldada con abonos se reabre solo si la edición le quitó cobertura;
			// un pago manual parcial se conserva en ediciones que no tocan precio ni aplicaciones.
			coverageLost := clientChanged || res.Released.IsPositive() || sale.TotalPrice.GreaterThan(oldTotal)
			if settledByPayments && coverageLost && sale.Allocated.LessThan(sale.TotalPrice) {
				sale.State = entity.SaleCredit
				sale.PaidAt = nil
			}
			if err := r.Sales.Update(ctx, sale); err != nil {
				return err
			}
			applied, _, err := autoApply(ctx, r, sale, now)
			if err != nil {
				return err
			}
			out = toSaleResponse(sale)
			out.AutoApplied = dto.Money(applied)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteSale reasigna lo aplicado a la venta sobre las demás ventas a crédito del cliente,
// borra la venta y devuelve los bultos al producto. Lo no reasignado queda libre en los pagos.
func (uc *LedgerUseCase) DeleteSale(ctx context.Context, id int64) (*dto.ReallocationResponse, error) {
	var out *dto.ReallocationResponse
	err := uc.txRunner.Run(ctx, func(r *repository.Repos) error {
		sale, err := r.Sales.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		res, err := releaseAll(ctx, r, sale, uc.now())
		if err != nil {
			return err
		}
		if err := r.Sales.Delete(ctx, id); err != nil {
			return err
		}
		if err := r.Ledger.Credit(ctx, entity.StockFuegoYa, sale.ProductID, sale.BagCount); err != nil {
			return err
		}
		uc.photos.DiscardAfterCommit(r, sale.PhotoRef)
		out = toReallocationResponse(res)
		return nil
	})
	return out, err
}

// ForcePay marca la venta como pagada sin abonos. Lo que tenía aplicado se reasigna a las
// demás ventas del cliente y las aplicaciones de la venta se borran.
func (uc *LedgerUseCase) ForcePay(ctx context.Context, id int64) (*dto.ReallocationResponse, error) {
	var out *dto.ReallocationResponse
	err := uc.txRunner.Run(ctx, func(r *repository.Repos) error {
		now := uc.now()
		sale, err := r.Sales.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if sale.State == entity.SalePaid {
			return fmt.Errorf("%w: la venta %d ya está pagada", domain.ErrInvalidState, id)
		}
		res, err := releaseAll(ctx, r, sale, now)
		if err != nil {
			return err
		}
		if err := markPaid(ctx, r, sale, now); err != nil {
			return err
		}
		out = toReallocationResponse(res)
		return nil
	})
	return out, err
}

// SetState cambio manual de estado. No crea ni revierte aplicaciones.
func (uc *LedgerUseCase) SetState(ctx context.Context, id int64, in dto.SetSaleStateRequest) (*dto.SaleResponse, error) {
	state := entity.SaleState(in.State)
	if !state.Valid() {
		return nil, domain.ErrInvalidState
	}
	var out *dto.SaleResponse
	err := uc.txRunner.Run(ctx, func(r *repository.Repos) error {
		sale, err := r.Sales.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		var paidAt *time.Time
		if state == entity.SalePaid {
			now := uc.now()
			paidAt = &now
		}
		if err := r.Sales.SetState(ctx, id, state, paidAt); err != nil {
			return err
		}
		sale.State = state
		sale.PaidAt = paidAt
		out = toSaleResponse(sale)
		return nil
	})
	return out, err
}

// GetSale obtiene una venta con su saldo.
func (uc *LedgerUseCase) GetSale(ctx context.Context, id int64) (*dto.SaleResponse, error) {
	var out *dto.SaleResponse
	err := uc.txRunner.Run(ctx, func(r *repository.Repos) error {
		sale, err := r.Sales.GetByID(ctx, id)
		if err != nil {
			return err
		}
		out = toSaleResponse(sale)
		return nil
	})
	return out, err
}

// ListSales lista ventas; clientID > 0 y state filtran.
func (uc *LedgerUseCase) ListSales(ctx context.Context, clientID int64, state string, page dto.PageRequest) ([]*dto.SaleResponse, error) {
	page.DefaultPage()
	q := repository.ListQuery{Limit: page.Limit, Offset: page.Offset}
	if clientID > 0 {
		q = q.Where("cliente_id", repository.OpEq, clientID)
	}
	if state != "" {
		if !entity.SaleState(state).Valid() {
			return nil, domain.ErrInvalidState
		}
		q = q.Where("estado", repository.OpEq, state)
	}
	var out []*dto.SaleResponse
	err := uc.txRunner.Run(ctx, func(r *repository.Repos) error {
		sales, err := r.Sales.List(ctx, q)
		if err != nil {
			return err
		}
		out = make([]*dto.SaleResponse, 0, len(sales))
		for _, s := range sales {
			out = append(out, toSaleResponse(s))
		}
		return nil
	})
	return out, err
}

func debitBags(ctx context.Context, r *repository.Repos, product *entity.FuegoYaProduct, bags int) error {
	stock, err := r.Ledger.LockAndRead(ctx, entity.StockFuegoYa, product.ID)
	if err != nil {
		return err
	}
	if stock < bags {
		return fmt.Errorf("%w: se requieren %d bultos de %q y hay %d",
			domain.ErrInsufficientStock, bags, product.Type, stock)
	}
	return r.Ledger.Debit(ctx, entity.StockFuegoYa, product.ID, bags)
}

func toSaleResponse(s *entity.FuegoYaSale) *dto.SaleResponse {
	return &dto.SaleResponse{
		ID:          s.ID,
		Date:        s.Date,
		TotalPrice:  dto.Money(s.TotalPrice),
		ClientID:    s.ClientID,
		ProductID:   s.ProductID,
		BagCount:    s.BagCount,
		State:       string(s.State),
		PaidAt:      s.PaidAt,
		PhotoRef:    s.PhotoRef,
		Allocated:   dto.Money(s.Allocated),
		Outstanding: dto.Money(s.Outstanding()),
		AutoApplied: decimal.Zero,
	}
}

func toReallocationResponse(res *releaseResult) *dto.ReallocationResponse {
	return &dto.ReallocationResponse{
		Released:   dto.Money(res.Released),
		Reassigned: dto.Money(res.Reassigned),
		Free:       dto.Money(res.Free()),
	}
}
