package repository

import (
	"context"
	"time"

	"github.com/jhoicas/imanod-api/internal/domain/entity"
)

// FuegoYaProductRepository puerto de productos FuegoYa.
type FuegoYaProductRepository interface {
	Create(ctx context.Context, p *entity.FuegoYaProduct) error
	GetByID(ctx context.Context, id int64) (*entity.FuegoYaProduct, error)
	List(ctx context.Context, q ListQuery) ([]*entity.FuegoYaProduct, error)
	Update(ctx context.Context, p *entity.FuegoYaProduct) error
	Delete(ctx context.Context, id int64) error
	CountSales(ctx context.Context, id int64) (int, error)
}

// FuegoYaSaleRepository puerto de ventas FuegoYa. Las lecturas devuelven Allocated calculado.
type FuegoYaSaleRepository interface {
	Create(ctx context.Context, s *entity.FuegoYaSale) error
	GetByID(ctx context.Context, id int64) (*entity.FuegoYaSale, error)
	// GetForUpdate bloquea la venta para serializar aplicaciones concurrentes.
	GetForUpdate(ctx context.Context, id int64) (*entity.FuegoYaSale, error)
	List(ctx context.Context, q ListQuery) ([]*entity.FuegoYaSale, error)
	// ListOutstandingForUpdate ventas a crédito del cliente con saldo, bloqueadas y ordenadas por (fecha, id).
	// excludeID = 0 no excluye ninguna.
	ListOutstandingForUpdate(ctx context.Context, clientID, excludeID int64) ([]*entity.FuegoYaSale, error)
	Update(ctx context.Context, s *entity.FuegoYaSale) error
	SetState(ctx context.Context, id int64, state entity.SaleState, paidAt *time.Time) error
	Delete(ctx context.Context, id int64) error
}

// FuegoYaPaymentRepository puerto de pagos FuegoYa.
type FuegoYaPaymentRepository interface {
	Create(ctx context.Context, p *entity.FuegoYaPayment) error
	GetForUpdate(ctx context.Context, id int64) (*entity.FuegoYaPayment, error)
	List(ctx context.Context, q ListQuery) ([]*entity.FuegoYaPayment, error)
	// ListWithCapacityForUpdate pagos del cliente con capacidad libre, bloqueados y ordenados por (fecha, id).
	ListWithCapacityForUpdate(ctx context.Context, clientID int64) ([]*entity.FuegoYaPayment, error)
	Delete(ctx context.Context, id int64) error
}

// AllocationRepository puerto de aplicaciones pago→venta.
type AllocationRepository interface {
	Create(ctx context.Context, a *entity.Allocation) error
	// ListBySale aplicaciones de la venta ordenadas por (fecha de aplicación, id).
	ListBySale(ctx context.Context, saleID int64) ([]*entity.Allocation, error)
	ListByPayment(ctx context.Context, paymentID int64) ([]*entity.Allocation, error)
	Delete(ctx context.Context, id int64) error
	DeleteBySale(ctx context.Context, saleID int64) error
}
