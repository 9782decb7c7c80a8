package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"

	"github.com/jhoicas/imanod-api/internal/domain"
	"github.com/jhoicas/imanod-api/internal/domain/entity"
	"github.com/jhoicas/imanod-api/internal/domain/repository"
)

func stockOf(d *data, kind entity.StockKind, id int64) (int, bool) {
	switch kind {
	case entity.StockMaterial:
		m, ok := d.materials[id]
		return m.Stock, ok
	case entity.StockPlankType, entity.StockPegType:
		p, ok := d.parts[kind][id]
		return p.Stock, ok
	case entity.StockSkidType:
		s, ok := d.skids[id]
		return s.Stock, ok
	case entity.StockFuegoYa:
		p, ok := d.products[id]
		return p.Stock, ok
	}
	return 0, false
}

func setStock(d *data, kind entity.StockKind, id int64, qty int) {
	switch kind {
	case entity.StockMaterial:
		m := d.materials[id]
		m.Stock = qty
		d.materials[id] = m
	case entity.StockPlankType, entity.StockPegType:
		p := d.parts[kind][id]
		p.Stock = qty
		d.parts[kind][id] = p
	case entity.StockSkidType:
		s := d.skids[id]
		s.Stock = qty
		d.skids[id] = s
	case entity.StockFuegoYa:
		p := d.products[id]
		p.Stock = qty
		d.products[id] = p
	}
}

type ledger struct{ d *data }

func (l *ledger) LockAndRead(_ context.Context, kind entity.StockKind, id int64) (int, error) {
	n, ok := stockOf(l.d, kind, id)
	if !ok {
		return 0, fmt.Errorf("%s %d: %w", kind, id, domain.ErrNotFound)
	}
	return n, nil
}

func (l *ledger) Debit(_ context.Context, kind entity.StockKind, id int64, qty int) error {
	if qty < 0 {
		return domain.ErrInvalidInput
	}
	n, ok := stockOf(l.d, kind, id)
	if !ok || n < qty {
		return domain.ErrConcurrencyConflict
	}
	setStock(l.d, kind, id, n-qty)
	return nil
}

func (l *ledger) Credit(_ context.Context, kind entity.StockKind, id int64, qty int) error {
	if qty < 0 {
		return domain.ErrInvalidInput
	}
	n, ok := stockOf(l.d, kind, id)
	if !ok {
		return fmt.Errorf("%s %d: %w", kind, id, domain.ErrNotFound)
	}
	setStock(l.d, kind, id, n+qty)
	return nil
}

// ─── materiales ───────────────────────────────────────────────────────────────

type materialRepo struct{ d *data }

func (r *materialRepo) Create(_ context.Context, m *entity.Material) error {
	m.ID = r.d.next("materiales")
	r.d.materials[m.ID] = *m
	return nil
}

func (r *materialRepo) GetByID(_ context.Context, id int64) (*entity.Material, error) {
	m, ok := r.d.materials[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &m, nil
}

func (r *materialRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Material, error) {
	return r.GetByID(ctx, id)
}

func (r *materialRepo) List(_ context.Context, q repository.ListQuery) ([]*entity.Material, error) {
	var out []*entity.Material
	for _, m := range r.d.materials {
		ok, err := matches(q, fields{"id": m.ID, "categoria": string(m.Category), "titulo": m.Title, "stock": m.Stock})
		if err != nil {
			return nil, err
		}
		if ok {
			c := m
			out = append(out, &c)
		}
	}
	return page(out, func(m *entity.Material) int64 { return m.ID }, q), nil
}

func (r *materialRepo) Update(_ context.Context, m *entity.Material) error {
	cur, ok := r.d.materials[m.ID]
	if !ok {
		return domain.ErrNotFound
	}
	upd := *m
	upd.Stock = cur.Stock
	upd.CreatedAt = cur.CreatedAt
	r.d.materials[m.ID] = upd
	return nil
}

func (r *materialRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.d.materials[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.d.materials, id)
	return nil
}

func (r *materialRepo) ReferencingTitles(_ context.Context, id int64) ([]string, error) {
	var titles []string
	for _, kind := range []entity.StockKind{entity.StockPlankType, entity.StockPegType} {
		for _, p := range sortedParts(r.d.parts[kind]) {
			if p.ParentID == id {
				titles = append(titles, fmt.Sprintf("%s %s", kind, p.Label()))
			}
		}
	}
	for _, p := range sortedPrototypes(r.d.prototypes) {
		if usesComponent(p, entity.BOMNail, id) || usesComponent(p, entity.BOMFiber, id) {
			titles = append(titles, p.Title)
		}
	}
	ids := make([]int64, 0, len(r.d.purchaseOrders))
	for oid := range r.d.purchaseOrders {
		ids = append(ids, oid)
	}
	slices.Sort(ids)
	for _, oid := range ids {
		for _, l := range r.d.purchaseOrders[oid].Lines {
			if l.MaterialID == id {
				titles = append(titles, fmt.Sprintf("encargo #%d", oid))
				break
			}
		}
	}
	return titles, nil
}

// ─── tipo_tablas / tipo_tacos ────────────────────────────────────────────────

type partRepo struct {
	d    *data
	kind entity.StockKind
}

func (r *partRepo) rows() map[int64]entity.DerivedPart { return r.d.parts[r.kind] }

func (r *partRepo) Create(_ context.Context, p *entity.DerivedPart) error {
	p.ID = r.d.next(string(r.kind))
	p.Kind = r.kind
	r.rows()[p.ID] = *p
	return nil
}

func (r *partRepo) GetByID(_ context.Context, id int64) (*entity.DerivedPart, error) {
	p, ok := r.rows()[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (r *partRepo) GetForUpdate(ctx context.Context, id int64) (*entity.DerivedPart, error) {
	return r.GetByID(ctx, id)
}

func (r *partRepo) List(_ context.Context, q repository.ListQuery) ([]*entity.DerivedPart, error) {
	var out []*entity.DerivedPart
	for _, p := range r.rows() {
		ok, err := matches(q, fields{"id": p.ID, "material_id": p.ParentID, "largo": p.Length, "stock": p.Stock})
		if err != nil {
			return nil, err
		}
		if ok {
			c := p
			out = append(out, &c)
		}
	}
	return page(out, func(p *entity.DerivedPart) int64 { return p.ID }, q), nil
}

func (r *partRepo) Update(_ context.Context, p *entity.DerivedPart) error {
	cur, ok := r.rows()[p.ID]
	if !ok {
		return domain.ErrNotFound
	}
	upd := *p
	upd.Kind = r.kind
	upd.ParentID = cur.ParentID
	upd.CreatedAt = cur.CreatedAt
	r.rows()[p.ID] = upd
	return nil
}

func (r *partRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.rows()[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.rows(), id)
	return nil
}

func (r *partRepo) ReferencingTitles(_ context.Context, id int64) ([]string, error) {
	line := entity.BOMPlankType
	if r.kind == entity.StockPegType {
		line = entity.BOMPegType
	}
	var titles []string
	for _, p := range sortedPrototypes(r.d.prototypes) {
		if usesComponent(p, line, id) {
			titles = append(titles, p.Title)
		}
	}
	for _, s := range sortedSkids(r.d.skids) {
		if (r.kind == entity.StockPlankType && s.PlankTypeID == id) || (r.kind == entity.StockPegType && s.PegTypeID == id) {
			titles = append(titles, s.Title)
		}
	}
	return titles, nil
}

// ─── tipo_patines ────────────────────────────────────────────────────────────

type skidRepo struct{ d *data }

func (r *skidRepo) Create(_ context.Context, s *entity.SkidType) error {
	s.ID = r.d.next("tipo_patines")
	r.d.skids[s.ID] = *s
	return nil
}

func (r *skidRepo) GetByID(_ context.Context, id int64) (*entity.SkidType, error) {
	s, ok := r.d.skids[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &s, nil
}

func (r *skidRepo) GetForUpdate(ctx context.Context, id int64) (*entity.SkidType, error) {
	return r.GetByID(ctx, id)
}

func (r *skidRepo) List(_ context.Context, q repository.ListQuery) ([]*entity.SkidType, error) {
	var out []*entity.SkidType
	for _, s := range r.d.skids {
		ok, err := matches(q, fields{"id": s.ID, "titulo": s.Title, "tipo_tabla_id": s.PlankTypeID, "tipo_taco_id": s.PegTypeID})
		if err != nil {
			return nil, err
		}
		if ok {
			c := s
			out = append(out, &c)
		}
	}
	return page(out, func(s *entity.SkidType) int64 { return s.ID }, q), nil
}

func (r *skidRepo) Update(_ context.Context, s *entity.SkidType) error {
	cur, ok := r.d.skids[s.ID]
	if !ok {
		return domain.ErrNotFound
	}
	upd := *s
	upd.CreatedAt = cur.CreatedAt
	r.d.skids[s.ID] = upd
	return nil
}

func (r *skidRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.d.skids[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.d.skids, id)
	return nil
}

func (r *skidRepo) ReferencingTitles(_ context.Context, id int64) ([]string, error) {
	var titles []string
	for _, p := range sortedPrototypes(r.d.prototypes) {
		if p.SkidTypeID != nil && *p.SkidTypeID == id {
			titles = append(titles, p.Title)
		}
	}
	return titles, nil
}

// ─── prototipos ──────────────────────────────────────────────────────────────

type prototypeRepo struct{ d *data }

func cloneProto(p entity.Prototype) entity.Prototype {
	p.SkidTypeID = ptr(p.SkidTypeID)
	p.ClientID = ptr(p.ClientID)
	p.Lines = slices.Clone(p.Lines)
	return p
}

func (r *prototypeRepo) Create(_ context.Context, p *entity.Prototype) error {
	p.ID = r.d.next("prototipos")
	r.d.prototypes[p.ID] = cloneProto(*p)
	return nil
}

func (r *prototypeRepo) GetByID(_ context.Context, id int64) (*entity.Prototype, error) {
	p, ok := r.d.prototypes[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := cloneProto(p)
	return &c, nil
}

func (r *prototypeRepo) List(_ context.Context, q repository.ListQuery) ([]*entity.Prototype, error) {
	var out []*entity.Prototype
	for _, p := range r.d.prototypes {
		f := fields{"id": p.ID, "titulo": p.Title, "activo": p.Active}
		if p.ClientID != nil {
			f["cliente_id"] = *p.ClientID
		} else {
			f["cliente_id"] = int64(0)
		}
		ok, err := matches(q, f)
		if err != nil {
			return nil, err
		}
		if ok {
			c := cloneProto(p)
			out = append(out, &c)
		}
	}
	return page(out, func(p *entity.Prototype) int64 { return p.ID }, q), nil
}

func (r *prototypeRepo) Update(_ context.Context, p *entity.Prototype) error {
	cur, ok := r.d.prototypes[p.ID]
	if !ok {
		return domain.ErrNotFound
	}
	upd := cloneProto(*p)
	upd.CreatedAt = cur.CreatedAt
	r.d.prototypes[p.ID] = upd
	return nil
}

func (r *prototypeRepo) SetActive(_ context.Context, id int64, active bool) error {
	p, ok := r.d.prototypes[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Active = active
	r.d.prototypes[id] = p
	return nil
}

func usesComponent(p entity.Prototype, kind entity.BOMKind, id int64) bool {
	for _, l := range p.Lines {
		if l.Kind == kind && l.ComponentID == id {
			return true
		}
	}
	return false
}

func sortedPrototypes(m map[int64]entity.Prototype) []entity.Prototype {
	out := make([]entity.Prototype, 0, len(m))
	for _, p := range m {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func sortedSkids(m map[int64]entity.SkidType) []entity.SkidType {
	out := make([]entity.SkidType, 0, len(m))
	for _, s := range m {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func sortedParts(m map[int64]entity.DerivedPart) []entity.DerivedPart {
	out := make([]entity.DerivedPart, 0, len(m))
	for _, p := range m {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
