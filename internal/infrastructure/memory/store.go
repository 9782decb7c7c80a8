// Package memory implementa los puertos de repositorio en memoria. Cada Run trabaja sobre
// una copia del estado y la publica solo si fn no falla, así un error equivale a Rollback.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/jhoicas/imanod-api/internal/application/ports"
	"github.com/jhoicas/imanod-api/internal/domain/entity"
	"github.com/jhoicas/imanod-api/internal/domain/repository"
)

var (
	_ ports.TxRunner             = (*Store)(nil)
	_ repository.AlertRepository = (*Store)(nil)
)

type data struct {
	seq            map[string]int64
	materials      map[int64]entity.Material
	parts          map[entity.StockKind]map[int64]entity.DerivedPart
	skids          map[int64]entity.SkidType
	prototypes     map[int64]entity.Prototype
	customers      map[int64]entity.Customer
	suppliers      map[int64]entity.Supplier
	purchaseOrders map[int64]entity.PurchaseOrder
	salesOrders    map[int64]entity.SalesOrder
	products       map[int64]entity.FuegoYaProduct
	sales          map[int64]entity.FuegoYaSale
	payments       map[int64]entity.FuegoYaPayment
	allocations    map[int64]entity.Allocation
}

func newData() *data {
	return &data{
		seq:       map[string]int64{},
		materials: map[int64]entity.Material{},
		parts: map[entity.StockKind]map[int64]entity.DerivedPart{
			entity.StockPlankType: {},
			entity.StockPegType:   {},
		},
		skids:          map[int64]entity.SkidType{},
		prototypes:     map[int64]entity.Prototype{},
		customers:      map[int64]entity.Customer{},
		suppliers:      map[int64]entity.Supplier{},
		purchaseOrders: map[int64]entity.PurchaseOrder{},
		salesOrders:    map[int64]entity.SalesOrder{},
		products:       map[int64]entity.FuegoYaProduct{},
		sales:          map[int64]entity.FuegoYaSale{},
		payments:       map[int64]entity.FuegoYaPayment{},
		allocations:    map[int64]entity.Allocation{},
	}
}

func copyMap[V any](m map[int64]V) map[int64]V {
	out := make(map[int64]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// clone copia superficial de cada mapa; las entidades se guardan por valor y
// sus slices se reemplazan, nunca se modifican en sitio.
func (d *data) clone() *data {
	seq := make(map[string]int64, len(d.seq))
	for k, v := range d.seq {
		seq[k] = v
	}
	parts := make(map[entity.StockKind]map[int64]entity.DerivedPart, len(d.parts))
	for k, m := range d.parts {
		parts[k] = copyMap(m)
	}
	return &data{
		seq:            seq,
		materials:      copyMap(d.materials),
		parts:          parts,
		skids:          copyMap(d.skids),
		prototypes:     copyMap(d.prototypes),
		customers:      copyMap(d.customers),
		suppliers:      copyMap(d.suppliers),
		purchaseOrders: copyMap(d.purchaseOrders),
		salesOrders:    copyMap(d.salesOrders),
		products:       copyMap(d.products),
		sales:          copyMap(d.sales),
		payments:       copyMap(d.payments),
		allocations:    copyMap(d.allocations),
	}
}

func (d *data) next(table string) int64 {
	d.seq[table]++
	return d.seq[table]
}

// Store base de datos en memoria con transacciones serializadas.
type Store struct {
	mu sync.Mutex
	d  *data
}

// NewStore construye un almacén vacío.
func NewStore() *Store {
	return &Store{d: newData()}
}

// Run serializa las transacciones con un mutex; equivale a nivel SERIALIZABLE.
func (s *Store) Run(ctx context.Context, fn func(r *repository.Repos) error) error {
	s.mu.Lock()
	work := s.d.clone()
	r := reposFor(work)
	if err := fn(r); err != nil {
		s.mu.Unlock()
		return err
	}
	s.d = work
	s.mu.Unlock()
	r.RunAfterCommit(ctx)
	return nil
}

func reposFor(d *data) *repository.Repos {
	return &repository.Repos{
		Ledger:         &ledger{d: d},
		Materials:      &materialRepo{d: d},
		PlankTypes:     &partRepo{d: d, kind: entity.StockPlankType},
		PegTypes:       &partRepo{d: d, kind: entity.StockPegType},
		SkidTypes:      &skidRepo{d: d},
		Prototypes:     &prototypeRepo{d: d},
		Customers:      &customerRepo{d: d},
		Suppliers:      &supplierRepo{d: d},
		PurchaseOrders: &purchaseOrderRepo{d: d},
		SalesOrders:    &salesOrderRepo{d: d},
		Products:       &productRepo{d: d},
		Sales:          &saleRepo{d: d},
		Payments:       &paymentRepo{d: d},
		Allocations:    &allocationRepo{d: d},
	}
}

// ListBelowMinimum filas con existencia menor a su mínimo, mayor déficit primero.
func (s *Store) ListBelowMinimum(_ context.Context) ([]entity.StockAlert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.StockAlert
	for _, m := range s.d.materials {
		out = append(out, entity.StockAlert{Kind: entity.StockMaterial, ID: m.ID, Label: m.Title, Stock: m.Stock, MinStock: m.MinStock})
	}
	for kind, parts := range s.d.parts {
		for _, p := range parts {
			out = append(out, entity.StockAlert{Kind: kind, ID: p.ID, Label: p.Label(), Stock: p.Stock, MinStock: p.MinStock})
		}
	}
	for _, sk := range s.d.skids {
		out = append(out, entity.StockAlert{Kind: entity.StockSkidType, ID: sk.ID, Label: sk.Title, Stock: sk.Stock, MinStock: sk.MinStock})
	}
	for _, p := range s.d.products {
		out = append(out, entity.StockAlert{Kind: entity.StockFuegoYa, ID: p.ID, Label: p.Type, Stock: p.Stock, MinStock: p.MinStock})
	}
	below := out[:0]
	for _, a := range out {
		if a.Stock < a.MinStock {
			below = append(below, a)
		}
	}
	sort.SliceStable(below, func(i, j int) bool {
		if below[i].Deficit() != below[j].Deficit() {
			return below[i].Deficit() > below[j].Deficit()
		}
		if below[i].Kind != below[j].Kind {
			return below[i].Kind < below[j].Kind
		}
		return below[i].ID < below[j].ID
	})
	return below, nil
}

// Stock existencia confirmada de una fila, o -1 si no existe. Pensado para pruebas.
func (s *Store) Stock(kind entity.StockKind, id int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := stockOf(s.d, kind, id)
	if !ok {
		return -1
	}
	return n
}
