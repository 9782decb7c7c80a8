package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/imanod-api/internal/application/dto"
	"github.com/jhoicas/imanod-api/internal/application/ports"
	"github.com/jhoicas/imanod-api/internal/domain"
	"github.com/jhoicas/imanod-api/internal/domain/entity"
	"github.com/jhoicas/imanod-api/internal/domain/repository"
)

// PurchaseOrderUseCase encargos de materia prima a proveedores.
type PurchaseOrderUseCase struct {
	txRunner ports.TxRunner
}

// NewPurchaseOrderUseCase construye el caso de uso.
func NewPurchaseOrderUseCase(txRunner ports.TxRunner) *PurchaseOrderUseCase {
	return &PurchaseOrderUseCase{txRunner: txRunner}
}

// Create registra un encargo pendiente. La existencia no cambia hasta recibirlo.
func (uc *PurchaseOrderUseCase) Create(ctx context.Context, in dto.CreatePurchaseOrderRequest) (*dto.PurchaseOrderResponse, error) {
	if in.SupplierID <= 0 || len(in.Lines) == 0 {
		return nil, domain.ErrInvalidInput
	}
	lines := make([]entity.PurchaseOrderLine, 0, len(in.Lines))
	for _, l := range in.Lines {
		if l.MaterialID <= 0 || l.Quantity <= 0 || l.UnitCost.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		lines = append(lines, entity.PurchaseOrderLine{MaterialID: l.MaterialID, Quantity: l.Quantity, UnitCost: l.UnitCost})
	}
	order := &entity.PurchaseOrder{
		SupplierID: in.SupplierID,
		Status:     entity.PurchaseOrderPending,
		OrderedAt:  time.Now(),
		Notes:      in.Notes,
		Lines:      lines,
	}
	err := uc.txRunner.Run(ctx, func(r *repository.Repos) error {
		if _, err := r.Suppliers.GetByID(ctx, in.SupplierID); err != nil {
			return fmt.Errorf("proveedor %d: %w", in.SupplierID, err)
		}
		for _, l := range lines {
			if _, err := r.Materials.GetByID(ctx, l.MaterialID); err != nil {
				return fmt.Errorf("materia prima %d: %w", l.MaterialID, err)
			}
		}
		return r.PurchaseOrders.Create(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	return toPurchaseOrderResponse(order), nil
}

// Receive marca el encargo como recibido y suma cada línea a su materia prima.
// Recibir un encargo ya recibido no cambia existencias y responde AlreadyReceived.
func (uc *PurchaseOrderUseCase) Receive(ctx context.Context, id int64) (*dto.PurchaseOrderResponse, error) {
	var out *dto.PurchaseOrderResponse
	err := uc.txRunner.Run(ctx, func(r *repository.Repos) error {
		order, err := r.PurchaseOrders.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if order.Status == entity.PurchaseOrderReceived {
			out = toPurchaseOrderResponse(order)
			out.AlreadyReceived = true
			return nil
		}
		for _, l := range order.Lines {
			if err := r.Ledger.Credit(ctx, entity.StockMaterial, l.MaterialID, l.Quantity); err != nil {
				return fmt.Errorf("materia prima %d: %w", l.MaterialID, err)
			}
		}
		now := time.Now()
		if err := r.PurchaseOrders.MarkReceived(ctx, id, now); err != nil {
			return err
		}
		order.Status = entity.PurchaseOrderReceived
		order.ReceivedAt = &now
		out = toPurchaseOrderResponse(order)
		return nil
	})
	return out, err
}

// Delete borra un encargo pendiente; uno recibido ya movió existencias y no se borra.
func (uc *PurchaseOrderUseCase) Delete(ctx context.Context, id int64) error {
	return uc.txRunner.Run(ctx, func(r *repository.Repos) error {
		order, err := r.PurchaseOrders.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if order.Status != entity.PurchaseOrderPending {
			return fmt.Errorf("%w: el encargo %d ya fue recibido", domain.ErrInvalidState, id)
		}
		return r.PurchaseOrders.Delete(ctx, id)
	})
}

// GetByID obtiene un encargo.
func (uc *PurchaseOrderUseCase) GetByID(ctx context.Context, id int64) (*dto.PurchaseOrderResponse, error) {
	var out *dto.PurchaseOrderResponse
	err := uc.txRunner.Run(ctx, func(r *repository.Repos) error {
		order, err := r.PurchaseOrders.GetByID(ctx, id)
		if err != nil {
			return err
		}
		out = toPurchaseOrderResponse(order)
		return nil
	})
	return out, err
}

// List lista encargos; status y supplierID > 0 filtran.
func (uc *PurchaseOrderUseCase) List(ctx context.Context, status string, supplierID int64, page dto.PageRequest) ([]*dto.PurchaseOrderResponse, error) {
	page.DefaultPage()
	q := repository.ListQuery{Limit: page.Limit, Offset: page.Offset}
	if status != "" {
		if status != entity.PurchaseOrderPending && status != entity.PurchaseOrderReceived {
			return nil, domain.ErrInvalidState
		}
		q = q.Where("estado", repository.OpEq, status)
	}
	if supplierID > 0 {
		q = q.Where("proveedor_id", repository.OpEq, supplierID)
	}
	var out []*dto.PurchaseOrderResponse
	err := uc.txRunner.Run(ctx, func(r *repository.Repos) error {
		list, err := r.PurchaseOrders.List(ctx, q)
		if err != nil {
			return err
		}
		out = make([]*dto.PurchaseOrderResponse, 0, len(list))
		for _, o := range list {
			out = append(out, toPurchaseOrderResponse(o))
		}
		return nil
	})
	return out, err
}

func toPurchaseOrderResponse(o *entity.PurchaseOrder) *dto.PurchaseOrderResponse {
	lines := make([]dto.PurchaseOrderLineResponse, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, dto.PurchaseOrderLineResponse{
			MaterialID: l.MaterialID,
			Quantity:   l.Quantity,
			UnitCost:   dto.Money(l.UnitCost),
		})
	}
	return &dto.PurchaseOrderResponse{
		ID:         o.ID,
		SupplierID: o.SupplierID,
		Status:     o.Status,
		OrderedAt:  o.OrderedAt,
		ReceivedAt: o.ReceivedAt,
		Notes:      o.Notes,
		Total:      dto.Money(o.Total()),
		Lines:      lines,
	}
}
