// Package credit orquesta el libro de crédito FuegoYa: aplicación FIFO de abonos sobre
// ventas a crédito y reasignación cuando una venta se borra o se paga a la fuerza.
package credit

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/imanod-api/internal/domain/credit"
	"github.com/jhoicas/imanod-api/internal/domain/entity"
	"github.com/jhoicas/imanod-api/internal/domain/repository"
)

// released monto liberado de un pago que debe volver a repartirse.
type released struct {
	PaymentID int64
	Amount    decimal.Decimal
}

// autoApply aplica la capacidad libre de los pagos del cliente (más antiguo primero) al saldo de la venta.
// Si el saldo queda en cero la venta pasa a pago. Solo actúa sobre ventas a crédito.
func autoApply(ctx context.Context, r *repository.Repos, sale *entity.FuegoYaSale, now time.Time) (decimal.Decimal, []*entity.Allocation, error) {
	if sale.State != entity.SaleCredit {
		return decimal.Zero, nil, nil
	}
	outstanding := sale.Outstanding()
	var created []*entity.Allocation
	if outstanding.IsPositive() {
		payments, err := r.Payments.ListWithCapacityForUpdate(ctx, sale.ClientID)
		if err != nil {
			return decimal.Zero, nil, err
		}
		buckets := make([]credit.Bucket, 0, len(payments))
		for _, p := range payments {
			buckets = append(buckets, credit.Bucket{ID: p.ID, Available: p.Remaining()})
		}
		portions, _ := credit.Distribute(outstanding, buckets)
		for _, portion := range portions {
			a := &entity.Allocation{PaymentID: portion.ID, SaleID: sale.ID, Amount: portion.Amount, AppliedAt: now}
			if err := r.Allocations.Create(ctx, a); err != nil {
				return decimal.Zero, nil, err
			}
			created = append(created, a)
			sale.Allocated = sale.Allocated.Add(portion.Amount)
		}
	}
	applied := sum(created)
	if !sale.Outstanding().IsPositive() {
		if err := markPaid(ctx, r, sale, now); err != nil {
			return decimal.Zero, nil, err
		}
	}
	return applied, created, nil
}

// redistribute reparte los montos liberados sobre las demás ventas a crédito del cliente,
// más antigua primero, con nuevas aplicaciones desde el mismo pago. Devuelve lo reasignado.
func redistribute(ctx context.Context, r *repository.Repos, clientID, excludeID int64, items []released, now time.Time) (decimal.Decimal, error) {
	if len(items) == 0 {
		return decimal.Zero, nil
	}
	sales, err := r.Sales.ListOutstandingForUpdate(ctx, clientID, excludeID)
	if err != nil {
		return decimal.Zero, err
	}
	buckets := make([]credit.Bucket, 0, len(sales))
	for _, s := range sales {
		buckets = append(buckets, credit.Bucket{ID: s.ID, Available: s.Outstanding()})
	}
	byID := make(map[int64]*entity.FuegoYaSale, len(sales))
	for _, s := range sales {
		byID[s.ID] = s
	}

	reassigned := decimal.Zero
	for _, item := range items {
		portions, _ := credit.Distribute(item.Amount, buckets)
		for _, portion := range portions {
			a := &entity.Allocation{PaymentID: item.PaymentID, SaleID: portion.ID, Amount: portion.Amount, AppliedAt: now}
			if err := r.Allocations.Create(ctx, a); err != nil {
				return decimal.Zero, err
			}
			byID[portion.ID].Allocated = byID[portion.ID].Allocated.Add(portion.Amount)
			reassigned = reassigned.Add(portion.Amount)
			for i := range buckets {
				if buckets[i].ID == portion.ID {
					buckets[i].Available = buckets[i].Available.Sub(portion.Amount)
				}
			}
		}
	}
	for _, s := range sales {
		if !s.Outstanding().IsPositive() {
			if err := markPaid(ctx, r, s, now); err != nil {
				return decimal.Zero, err
			}
		}
	}
	return reassigned, nil
}

// releaseAll libera todas las aplicaciones de la venta hacia las demás ventas del cliente y las borra.
func releaseAll(ctx context.Context, r *repository.Repos, sale *entity.FuegoYaSale, now time.Time) (*releaseResult, error) {
	allocs, err := r.Allocations.ListBySale(ctx, sale.ID)
	if err != nil {
		return nil, err
	}
	items := make([]released, 0, len(allocs))
	total := decimal.Zero
	for _, a := range allocs {
		items = append(items, released{PaymentID: a.PaymentID, Amount: a.Amount})
		total = total.Add(a.Amount)
	}
	reassigned, err := redistribute(ctx, r, sale.ClientID, sale.ID, items, now)
	if err != nil {
		return nil, err
	}
	if err := r.Allocations.DeleteBySale(ctx, sale.ID); err != nil {
		return nil, err
	}
	sale.Allocated = decimal.Zero
	return &releaseResult{Released: total, Reassigned: reassigned}, nil
}

// releaseExcess suelta las aplicaciones que exceden el nuevo total, de la más reciente a la más antigua.
// Una aplicación recortada se reemplaza por otra con el monto que queda y la fecha original.
func releaseExcess(ctx context.Context, r *repository.Repos, sale *entity.FuegoYaSale, now time.Time) (*releaseResult, error) {
	excess := sale.Allocated.Sub(sale.TotalPrice)
	if !excess.IsPositive() {
		return &releaseResult{}, nil
	}
	allocs, err := r.Allocations.ListBySale(ctx, sale.ID)
	if err != nil {
		return nil, err
	}
	buckets := make([]credit.Bucket, 0, len(allocs))
	byID := make(map[int64]*entity.Allocation, len(allocs))
	for i := len(allocs) - 1; i >= 0; i-- {
		buckets = append(buckets, credit.Bucket{ID: allocs[i].ID, Available: allocs[i].Amount})
		byID[allocs[i].ID] = allocs[i]
	}
	var items []released
	total := decimal.Zero
	for _, portion := range credit.Release(excess, buckets) {
		a := byID[portion.ID]
		if err := r.Allocations.Delete(ctx, a.ID); err != nil {
			return nil, err
		}
		if keep := a.Amount.Sub(portion.Amount); keep.IsPositive() {
			trimmed := &entity.Allocation{PaymentID: a.PaymentID, SaleID: a.SaleID, Amount: keep, AppliedAt: a.AppliedAt}
			if err := r.Allocations.Create(ctx, trimmed); err != nil {
				return nil, err
			}
		}
		items = append(items, released{PaymentID: a.PaymentID, Amount: portion.Amount})
		total = total.Add(portion.Amount)
	}
	sale.Allocated = sale.Allocated.Sub(total)
	reassigned, err := redistribute(ctx, r, sale.ClientID, sale.ID, items, now)
	if err != nil {
		return nil, err
	}
	return &releaseResult{Released: total, Reassigned: reassigned}, nil
}

type releaseResult struct {
	Released   decimal.Decimal
	Reassigned decimal.Decimal
}

func (rr *releaseResult) Free() decimal.Decimal {
	return rr.Released.Sub(rr.Reassigned)
}

func markPaid(ctx context.Context, r *repository.Repos, sale *entity.FuegoYaSale, now time.Time) error {
	at := now
	if err := r.Sales.SetState(ctx, sale.ID, entity.SalePaid, &at); err != nil {
		return err
	}
	sale.State = entity.SalePaid
	sale.PaidAt = &at
	return nil
}

func sum(allocs []*entity.Allocation) decimal.Decimal {
	total := decimal.Zero
	for _, a := range allocs {
		total = total.Add(a.Amount)
	}
	return total
}
