package memory

import (
	"context"
	"slices"
	"time"

	"github.com/jhoicas/imanod-api/internal/domain"
	"github.com/jhoicas/imanod-api/internal/domain/entity"
	"github.com/jhoicas/imanod-api/internal/domain/repository"
)

// ─── clientes / proveedores ──────────────────────────────────────────────────

type customerRepo struct{ d *data }

func (r *customerRepo) Create(_ context.Context, c *entity.Customer) error {
	for _, cur := range r.d.customers {
		if c.TaxID != "" && cur.TaxID == c.TaxID {
			return domain.ErrDuplicate
		}
	}
	c.ID = r.d.next("clientes")
	r.d.customers[c.ID] = *c
	return nil
}

func (r *customerRepo) GetByID(_ context.Context, id int64) (*entity.Customer, error) {
	c, ok := r.d.customers[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

func (r *customerRepo) List(_ context.Context, q repository.ListQuery) ([]*entity.Customer, error) {
	var out []*entity.Customer
	for _, c := range r.d.customers {
		ok, err := matches(q, fields{"id": c.ID, "nombre": c.Name, "nit": c.TaxID})
		if err != nil {
			return nil, err
		}
		if ok {
			cc := c
			out = append(out, &cc)
		}
	}
	return page(out, func(c *entity.Customer) int64 { return c.ID }, q), nil
}

type supplierRepo struct{ d *data }

func (r *supplierRepo) Create(_ context.Context, s *entity.Supplier) error {
	for _, cur := range r.d.suppliers {
		if s.TaxID != "" && cur.TaxID == s.TaxID {
			return domain.ErrDuplicate
		}
	}
	s.ID = r.d.next("proveedores")
	r.d.suppliers[s.ID] = *s
	return nil
}

func (r *supplierRepo) GetByID(_ context.Context, id int64) (*entity.Supplier, error) {
	s, ok := r.d.suppliers[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &s, nil
}

func (r *supplierRepo) List(_ context.Context, q repository.ListQuery) ([]*entity.Supplier, error) {
	var out []*entity.Supplier
	for _, s := range r.d.suppliers {
		ok, err := matches(q, fields{"id": s.ID, "nombre": s.Name, "nit": s.TaxID})
		if err != nil {
			return nil, err
		}
		if ok {
			ss := s
			out = append(out, &ss)
		}
	}
	return page(out, func(s *entity.Supplier) int64 { return s.ID }, q), nil
}

// ─── encargos ────────────────────────────────────────────────────────────────

type purchaseOrderRepo struct{ d *data }

func clonePO(o entity.PurchaseOrder) entity.PurchaseOrder {
	o.ReceivedAt = ptr(o.ReceivedAt)
	o.Lines = slices.Clone(o.Lines)
	return o
}

func (r *purchaseOrderRepo) Create(_ context.Context, o *entity.PurchaseOrder) error {
	o.ID = r.d.next("encargos")
	r.d.purchaseOrders[o.ID] = clonePO(*o)
	return nil
}

func (r *purchaseOrderRepo) GetByID(_ context.Context, id int64) (*entity.PurchaseOrder, error) {
	o, ok := r.d.purchaseOrders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := clonePO(o)
	return &c, nil
}

func (r *purchaseOrderRepo) GetForUpdate(ctx context.Context, id int64) (*entity.PurchaseOrder, error) {
	return r.GetByID(ctx, id)
}

func (r *purchaseOrderRepo) List(_ context.Context, q repository.ListQuery) ([]*entity.PurchaseOrder, error) {
	var out []*entity.PurchaseOrder
	for _, o := range r.d.purchaseOrders {
		ok, err := matches(q, fields{"id": o.ID, "estado": string(o.Status), "proveedor_id": o.SupplierID})
		if err != nil {
			return nil, err
		}
		if ok {
			c := clonePO(o)
			out = append(out, &c)
		}
	}
	return page(out, func(o *entity.PurchaseOrder) int64 { return o.ID }, q), nil
}

func (r *purchaseOrderRepo) MarkReceived(_ context.Context, id int64, at time.Time) error {
	o, ok := r.d.purchaseOrders[id]
	if !ok {
		return domain.ErrNotFound
	}
	o.Status = entity.PurchaseOrderReceived
	o.ReceivedAt = &at
	r.d.purchaseOrders[id] = o
	return nil
}

func (r *purchaseOrderRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.d.purchaseOrders[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.d.purchaseOrders, id)
	return nil
}

// ─── pedidos ─────────────────────────────────────────────────────────────────

type salesOrderRepo struct{ d *data }

func cloneSO(o entity.SalesOrder) entity.SalesOrder {
	o.DeliveryDate = ptr(o.DeliveryDate)
	o.Lines = slices.Clone(o.Lines)
	return o
}

func (r *salesOrderRepo) Create(_ context.Context, o *entity.SalesOrder) error {
	o.ID = r.d.next("pedidos")
	r.d.salesOrders[o.ID] = cloneSO(*o)
	return nil
}

func (r *salesOrderRepo) GetByID(_ context.Context, id int64) (*entity.SalesOrder, error) {
	o, ok := r.d.salesOrders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := cloneSO(o)
	return &c, nil
}

func (r *salesOrderRepo) GetForUpdate(ctx context.Context, id int64) (*entity.SalesOrder, error) {
	return r.GetByID(ctx, id)
}

func (r *salesOrderRepo) List(_ context.Context, q repository.ListQuery) ([]*entity.SalesOrder, error) {
	var out []*entity.SalesOrder
	for _, o := range r.d.salesOrders {
		ok, err := matches(q, fields{"id": o.ID, "cliente_id": o.ClientID, "fecha": o.OrderedAt})
		if err != nil {
			return nil, err
		}
		if ok {
			c := cloneSO(o)
			out = append(out, &c)
		}
	}
	return page(out, func(o *entity.SalesOrder) int64 { return o.ID }, q), nil
}

func (r *salesOrderRepo) Update(_ context.Context, o *entity.SalesOrder) error {
	if _, ok := r.d.salesOrders[o.ID]; !ok {
		return domain.ErrNotFound
	}
	r.d.salesOrders[o.ID] = cloneSO(*o)
	return nil
}

func (r *salesOrderRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.d.salesOrders[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.d.salesOrders, id)
	return nil
}
