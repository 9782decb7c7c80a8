package repository

import (
	"context"
	"time"

	"github.com/jhoicas/imanod-api/internal/domain/entity"
)

// PurchaseOrderRepository puerto de encargos a proveedores.
type PurchaseOrderRepository interface {
	Create(ctx context.Context, o *entity.PurchaseOrder) error
	GetByID(ctx context.Context, id int64) (*entity.PurchaseOrder, error)
	GetForUpdate(ctx context.Context, id int64) (*entity.PurchaseOrder, error)
	List(ctx context.Context, q ListQuery) ([]*entity.PurchaseOrder, error)
	MarkReceived(ctx context.Context, id int64, at time.Time) error
	Delete(ctx context.Context, id int64) error
}

// SalesOrderRepository puerto de pedidos de clientes.
type SalesOrderRepository interface {
	Create(ctx context.Context, o *entity.SalesOrder) error
	GetByID(ctx context.Context, id int64) (*entity.SalesOrder, error)
	GetForUpdate(ctx context.Context, id int64) (*entity.SalesOrder, error)
	List(ctx context.Context, q ListQuery) ([]*entity.SalesOrder, error)
	// Update reemplaza líneas y total.
	Update(ctx context.Context, o *entity.SalesOrder) error
	Delete(ctx context.Context, id int64) error
}
