package repository

import (
	"context"

	"github.com/jhoicas/imanod-api/internal/domain/entity"
)

// Repos agrupa los repositorios atados a una misma transacción y los efectos
// que deben ejecutarse solo después del commit.
type Repos struct {
	Ledger         StockLedger
	Materials      MaterialRepository
	PlankTypes     DerivedPartRepository
	PegTypes       DerivedPartRepository
	SkidTypes      SkidTypeRepository
	Prototypes     PrototypeRepository
	Customers      CustomerRepository
	Suppliers      SupplierRepository
	PurchaseOrders PurchaseOrderRepository
	SalesOrders    SalesOrderRepository
	Products       FuegoYaProductRepository
	Sales          FuegoYaSaleRepository
	Payments       FuegoYaPaymentRepository
	Allocations    AllocationRepository

	afterCommit []func(context.Context)
}

// Parts devuelve el repositorio de piezas derivadas según el tipo.
func (r *Repos) Parts(kind entity.StockKind) DerivedPartRepository {
	if kind == entity.StockPegType {
		return r.PegTypes
	}
	return r.PlankTypes
}

// AfterCommit registra un efecto posterior al commit. Si la transacción falla no se ejecuta.
func (r *Repos) AfterCommit(fn func(context.Context)) {
	r.afterCommit = append(r.afterCommit, fn)
}

// RunAfterCommit ejecuta los efectos registrados; lo llama el TxRunner tras un commit exitoso.
func (r *Repos) RunAfterCommit(ctx context.Context) {
	for _, fn := range r.afterCommit {
		fn(ctx)
	}
	r.afterCommit = nil
}
