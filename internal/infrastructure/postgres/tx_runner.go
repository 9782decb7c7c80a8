package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/imanod-api/internal/application/ports"
	"github.com/jhoicas/imanod-api/internal/domain/entity"
	"github.com/jhoicas/imanod-api/internal/domain/repository"
)

var _ ports.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// txAttempts intentos ante deadlock o fallo de serialización.
const txAttempts = 3

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// Los efectos AfterCommit corren solo si el commit fue exitoso. Si Postgres aborta la
// transacción por deadlock, fn se vuelve a ejecutar completa en una transacción nueva.
func (r *TxRunner) Run(ctx context.Context, fn func(r *repository.Repos) error) error {
	var err error
	for attempt := 1; attempt <= txAttempts; attempt++ {
		err = r.runOnce(ctx, fn)
		if !isRetryableTxError(err) || ctx.Err() != nil {
			return err
		}
		log.Warn().Err(err).Int("intento", attempt).Msg("postgres: transacción abortada, reintentando")
	}
	return err
}

func (r *TxRunner) runOnce(ctx context.Context, fn func(r *repository.Repos) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	repos := NewRepos(tx)
	if err := fn(repos); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	repos.RunAfterCommit(ctx)
	return nil
}

// NewRepos arma todos los repositorios sobre el mismo Querier.
func NewRepos(q Querier) *repository.Repos {
	return &repository.Repos{
		Ledger:         NewStockLedger(q),
		Materials:      NewMaterialRepository(q),
		PlankTypes:     NewDerivedPartRepository(q, entity.StockPlankType),
		PegTypes:       NewDerivedPartRepository(q, entity.StockPegType),
		SkidTypes:      NewSkidTypeRepository(q),
		Prototypes:     NewPrototypeRepository(q),
		Customers:      NewCustomerRepository(q),
		Suppliers:      NewSupplierRepository(q),
		PurchaseOrders: NewPurchaseOrderRepository(q),
		SalesOrders:    NewSalesOrderRepository(q),
		Products:       NewFuegoYaProductRepository(q),
		Sales:          NewFuegoYaSaleRepository(q),
		Payments:       NewFuegoYaPaymentRepository(q),
		Allocations:    NewAllocationRepository(q),
	}
}
