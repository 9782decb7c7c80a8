package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/imanod-api/internal/domain"
	"github.com/jhoicas/imanod-api/internal/domain/entity"
	"github.com/jhoicas/imanod-api/internal/domain/repository"
)

// ─── productos ───────────────────────────────────────────────────────────────

type productRepo struct{ d *data }

func (r *productRepo) Create(_ context.Context, p *entity.FuegoYaProduct) error {
	p.ID = r.d.next("fuegoya_productos")
	r.d.products[p.ID] = *p
	return nil
}

func (r *productRepo) GetByID(_ context.Context, id int64) (*entity.FuegoYaProduct, error) {
	p, ok := r.d.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (r *productRepo) List(_ context.Context, q repository.ListQuery) ([]*entity.FuegoYaProduct, error) {
	var out []*entity.FuegoYaProduct
	for _, p := range r.d.products {
		ok, err := matches(q, fields{"id": p.ID, "tipo": p.Type})
		if err != nil {
			return nil, err
		}
		if ok {
			c := p
			out = append(out, &c)
		}
	}
	return page(out, func(p *entity.FuegoYaProduct) int64 { return p.ID }, q), nil
}

func (r *productRepo) Update(_ context.Context, p *entity.FuegoYaProduct) error {
	cur, ok := r.d.products[p.ID]
	if !ok {
		return domain.ErrNotFound
	}
	upd := *p
	upd.Stock = cur.Stock
	upd.CreatedAt = cur.CreatedAt
	r.d.products[p.ID] = upd
	return nil
}

func (r *productRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.d.products[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.d.products, id)
	return nil
}

func (r *productRepo) CountSales(_ context.Context, id int64) (int, error) {
	n := 0
	for _, s := range r.d.sales {
		if s.ProductID == id {
			n++
		}
	}
	return n, nil
}

// ─── ventas ──────────────────────────────────────────────────────────────────

type saleRepo struct{ d *data }

func (r *saleRepo) withAllocated(s entity.FuegoYaSale) *entity.FuegoYaSale {
	s.PaidAt = ptr(s.PaidAt)
	s.Allocated = decimal.Zero
	for _, a := range r.d.allocations {
		if a.SaleID == s.ID {
			s.Allocated = s.Allocated.Add(a.Amount)
		}
	}
	return &s
}

func (r *saleRepo) Create(_ context.Context, s *entity.FuegoYaSale) error {
	s.ID = r.d.next("fuegoya_ventas")
	row := *s
	row.PaidAt = ptr(s.PaidAt)
	row.Allocated = decimal.Zero
	r.d.sales[s.ID] = row
	return nil
}

func (r *saleRepo) GetByID(_ context.Context, id int64) (*entity.FuegoYaSale, error) {
	s, ok := r.d.sales[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return r.withAllocated(s), nil
}

func (r *saleRepo) GetForUpdate(ctx context.Context, id int64) (*entity.FuegoYaSale, error) {
	return r.GetByID(ctx, id)
}

func (r *saleRepo) List(_ context.Context, q repository.ListQuery) ([]*entity.FuegoYaSale, error) {
	var out []*entity.FuegoYaSale
	for _, s := range r.d.sales {
		ok, err := matches(q, fields{
			"id": s.ID, "cliente_id": s.ClientID, "producto_id": s.ProductID,
			"estado": string(s.State), "fecha": s.Date,
		})
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, r.withAllocated(s))
		}
	}
	return page(out, func(s *entity.FuegoYaSale) int64 { return s.ID }, q), nil
}

func (r *saleRepo) ListOutstandingForUpdate(_ context.Context, clientID, excludeID int64) ([]*entity.FuegoYaSale, error) {
	var out []*entity.FuegoYaSale
	for _, s := range r.d.sales {
		if s.ClientID != clientID || s.ID == excludeID || s.State != entity.SaleCredit {
			continue
		}
		full := r.withAllocated(s)
		if full.Outstanding().IsPositive() {
			out = append(out, full)
		}
	}
	sort.Slice(out, func(i, j int) bool { return fifoLess(out[i].Date, out[i].ID, out[j].Date, out[j].ID) })
	return out, nil
}

func (r *saleRepo) Update(_ context.Context, s *entity.FuegoYaSale) error {
	if _, ok := r.d.sales[s.ID]; !ok {
		return domain.ErrNotFound
	}
	row := *s
	row.PaidAt = ptr(s.PaidAt)
	row.Allocated = decimal.Zero
	r.d.sales[s.ID] = row
	return nil
}

func (r *saleRepo) SetState(_ context.Context, id int64, state entity.SaleState, paidAt *time.Time) error {
	s, ok := r.d.sales[id]
	if !ok {
		return domain.ErrNotFound
	}
	s.State = state
	s.PaidAt = ptr(paidAt)
	r.d.sales[id] = s
	return nil
}

func (r *saleRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.d.sales[id]; !ok {
		return domain.ErrNotFound
	}
	for _, a := range r.d.allocations {
		if a.SaleID == id {
			return domain.ErrReferenced
		}
	}
	delete(r.d.sales, id)
	return nil
}

// ─── pagos ───────────────────────────────────────────────────────────────────

type paymentRepo struct{ d *data }

func (r *paymentRepo) withAllocated(p entity.FuegoYaPayment) *entity.FuegoYaPayment {
	p.Allocated = decimal.Zero
	for _, a := range r.d.allocations {
		if a.PaymentID == p.ID {
			p.Allocated = p.Allocated.Add(a.Amount)
		}
	}
	return &p
}

func (r *paymentRepo) Create(_ context.Context, p *entity.FuegoYaPayment) error {
	p.ID = r.d.next("fuegoya_pagos")
	row := *p
	row.Allocated = decimal.Zero
	r.d.payments[p.ID] = row
	return nil
}

func (r *paymentRepo) GetForUpdate(_ context.Context, id int64) (*entity.FuegoYaPayment, error) {
	p, ok := r.d.payments[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return r.withAllocated(p), nil
}

func (r *paymentRepo) List(_ context.Context, q repository.ListQuery) ([]*entity.FuegoYaPayment, error) {
	var out []*entity.FuegoYaPayment
	for _, p := range r.d.payments {
		ok, err := matches(q, fields{"id": p.ID, "cliente_id": p.ClientID, "fecha": p.PaidAt, "metodo": p.Method})
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, r.withAllocated(p))
		}
	}
	return page(out, func(p *entity.FuegoYaPayment) int64 { return p.ID }, q), nil
}

func (r *paymentRepo) ListWithCapacityForUpdate(_ context.Context, clientID int64) ([]*entity.FuegoYaPayment, error) {
	var out []*entity.FuegoYaPayment
	for _, p := range r.d.payments {
		if p.ClientID != clientID {
			continue
		}
		full := r.withAllocated(p)
		if full.Remaining().IsPositive() {
			out = append(out, full)
		}
	}
	sort.Slice(out, func(i, j int) bool { return fifoLess(out[i].PaidAt, out[i].ID, out[j].PaidAt, out[j].ID) })
	return out, nil
}

func (r *paymentRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.d.payments[id]; !ok {
		return domain.ErrNotFound
	}
	for _, a := range r.d.allocations {
		if a.PaymentID == id {
			return domain.ErrReferenced
		}
	}
	delete(r.d.payments, id)
	return nil
}

// ─── aplicaciones ────────────────────────────────────────────────────────────

type allocationRepo struct{ d *data }

func (r *allocationRepo) Create(_ context.Context, a *entity.Allocation) error {
	if !a.Amount.IsPositive() {
		return domain.ErrInvalidInput
	}
	if _, ok := r.d.payments[a.PaymentID]; !ok {
		return domain.ErrNotFound
	}
	if _, ok := r.d.sales[a.SaleID]; !ok {
		return domain.ErrNotFound
	}
	a.ID = r.d.next("fuegoya_aplicaciones")
	r.d.allocations[a.ID] = *a
	return nil
}

func (r *allocationRepo) list(keep func(entity.Allocation) bool) []*entity.Allocation {
	var out []*entity.Allocation
	for _, a := range r.d.allocations {
		if keep(a) {
			c := a
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return fifoLess(out[i].AppliedAt, out[i].ID, out[j].AppliedAt, out[j].ID) })
	return out
}

func (r *allocationRepo) ListBySale(_ context.Context, saleID int64) ([]*entity.Allocation, error) {
	return r.list(func(a entity.Allocation) bool { return a.SaleID == saleID }), nil
}

func (r *allocationRepo) ListByPayment(_ context.Context, paymentID int64) ([]*entity.Allocation, error) {
	return r.list(func(a entity.Allocation) bool { return a.PaymentID == paymentID }), nil
}

func (r *allocationRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.d.allocations[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.d.allocations, id)
	return nil
}

func (r *allocationRepo) DeleteBySale(_ context.Context, saleID int64) error {
	for id, a := range r.d.allocations {
		if a.SaleID == saleID {
			delete(r.d.allocations, id)
		}
	}
	return nil
}

// fifoLess orden estricto por (fecha ASC, id ASC).
func fifoLess(at time.Time, aID int64, bt time.Time, bID int64) bool {
	if !at.Equal(bt) {
		return at.Before(bt)
	}
	return aID < bID
}
