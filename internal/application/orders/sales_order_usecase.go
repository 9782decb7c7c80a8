package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/imanod-api/internal/application/dto"
	appinventory "github.com/jhoicas/imanod-api/internal/application/inventory"
	"github.com/jhoicas/imanod-api/internal/application/ports"
	"github.com/jhoicas/imanod-api/internal/domain"
	"github.com/jhoicas/imanod-api/internal/domain/entity"
	"github.com/jhoicas/imanod-api/internal/domain/inventory"
	"github.com/jhoicas/imanod-api/internal/domain/repository"
)

// SalesOrderUseCase pedidos de estibas. El total se recalcula con el costo de materiales
// vigente de cada prototipo en cada cambio, dentro de la misma transacción.
type SalesOrderUseCase struct {
	txRunner ports.TxRunner
}

// NewSalesOrderUseCase construye el caso de uso.
func NewSalesOrderUseCase(txRunner ports.TxRunner) *SalesOrderUseCase {
	return &SalesOrderUseCase{txRunner: txRunner}
}

// Create registra un pedido.
func (uc *SalesOrderUseCase) Create(ctx context.Context, in dto.SalesOrderRequest) (*dto.SalesOrderResponse, error) {
	if err := validateSalesOrder(in); err != nil {
		return nil, err
	}
	var out *dto.SalesOrderResponse
	err := uc.txRunner.Run(ctx, func(r *repository.Repos) error {
		order := &entity.SalesOrder{OrderedAt: time.Now()}
		if err := applySalesOrder(ctx, r, order, in); err != nil {
			return err
		}
		if err := r.SalesOrders.Create(ctx, order); err != nil {
			return err
		}
		out = toSalesOrderResponse(order)
		return nil
	})
	return out, err
}

// Update reemplaza cliente, fecha de entrega, notas y líneas, y recalcula el total.
func (uc *SalesOrderUseCase) Update(ctx context.Context, id int64, in dto.SalesOrderRequest) (*dto.SalesOrderResponse, error) {
	if err := validateSalesOrder(in); err != nil {
		return nil, err
	}
	var out *dto.SalesOrderResponse
	err := uc.txRunner.Run(ctx, func(r *repository.Repos) error {
		order, err := r.SalesOrders.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := applySalesOrder(ctx, r, order, in); err != nil {
			return err
		}
		if err := r.SalesOrders.Update(ctx, order); err != nil {
			return err
		}
		out = toSalesOrderResponse(order)
		return nil
	})
	return out, err
}

// Delete borra un pedido.
func (uc *SalesOrderUseCase) Delete(ctx context.Context, id int64) error {
	return uc.txRunner.Run(ctx, func(r *repository.Repos) error {
		if _, err := r.SalesOrders.GetForUpdate(ctx, id); err != nil {
			return err
		}
		return r.SalesOrders.Delete(ctx, id)
	})
}

// GetByID obtiene un pedido.
func (uc *SalesOrderUseCase) GetByID(ctx context.Context, id int64) (*dto.SalesOrderResponse, error) {
	var out *dto.SalesOrderResponse
	err := uc.txRunner.Run(ctx, func(r *repository.Repos) error {
		order, err := r.SalesOrders.GetByID(ctx, id)
		if err != nil {
			return err
		}
		out = toSalesOrderResponse(order)
		return nil
	})
	return out, err
}

// List lista pedidos; clientID > 0 filtra por cliente.
func (uc *SalesOrderUseCase) List(ctx context.Context, clientID int64, page dto.PageRequest) ([]*dto.SalesOrderResponse, error) {
	page.DefaultPage()
	q := repository.ListQuery{Limit: page.Limit, Offset: page.Offset}
	if clientID > 0 {
		q = q.Where("cliente_id", repository.OpEq, clientID)
	}
	var out []*dto.SalesOrderResponse
	err := uc.txRunner.Run(ctx, func(r *repository.Repos) error {
		list, err := r.SalesOrders.List(ctx, q)
		if err != nil {
			return err
		}
		out = make([]*dto.SalesOrderResponse, 0, len(list))
		for _, o := range list {
			out = append(out, toSalesOrderResponse(o))
		}
		return nil
	})
	return out, err
}

func validateSalesOrder(in dto.SalesOrderRequest) error {
	if in.ClientID <= 0 || len(in.Lines) == 0 {
		return domain.ErrInvalidInput
	}
	for _, l := range in.Lines {
		if l.PrototypeID <= 0 || l.Quantity <= 0 {
			return domain.ErrInvalidInput
		}
	}
	return nil
}

// applySalesOrder valida referencias, toma el costo vigente de cada prototipo y recalcula el total.
func applySalesOrder(ctx context.Context, r *repository.Repos, order *entity.SalesOrder, in dto.SalesOrderRequest) error {
	if _, err := r.Customers.GetByID(ctx, in.ClientID); err != nil {
		return fmt.Errorf("cliente %d: %w", in.ClientID, err)
	}
	lines := make([]entity.SalesOrderLine, 0, len(in.Lines))
	quantities := make([]int, 0, len(in.Lines))
	costs := make([]decimal.Decimal, 0, len(in.Lines))
	for _, l := range in.Lines {
		proto, err := r.Prototypes.GetByID(ctx, l.PrototypeID)
		if err != nil {
			return fmt.Errorf("prototipo %d: %w", l.PrototypeID, err)
		}
		if !proto.Active {
			return fmt.Errorf("%w: el prototipo %q está inactivo", domain.ErrInvalidState, proto.Title)
		}
		cost, _, err := appinventory.PrototypeCost(ctx, r, proto)
		if err != nil {
			return err
		}
		lines = append(lines, entity.SalesOrderLine{PrototypeID: proto.ID, Quantity: l.Quantity, UnitCost: cost})
		quantities = append(quantities, l.Quantity)
		costs = append(costs, cost)
	}
	order.ClientID = in.ClientID
	order.DeliveryDate = in.DeliveryDate
	order.Notes = in.Notes
	order.Lines = lines
	order.Total = inventory.OrderTotal(quantities, costs)
	return nil
}

func toSalesOrderResponse(o *entity.SalesOrder) *dto.SalesOrderResponse {
	lines := make([]dto.SalesOrderLineResponse, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, dto.SalesOrderLineResponse{
			PrototypeID: l.PrototypeID,
			Quantity:    l.Quantity,
			UnitCost:    dto.Money(l.UnitCost),
			Subtotal:    dto.Money(l.UnitCost.Mul(decimal.NewFromInt(int64(l.Quantity)))),
		})
	}
	return &dto.SalesOrderResponse{
		ID:           o.ID,
		ClientID:     o.ClientID,
		OrderedAt:    o.OrderedAt,
		DeliveryDate: o.DeliveryDate,
		Notes:        o.Notes,
		Total:        dto.Money(o.Total),
		Lines:        lines,
	}
}
