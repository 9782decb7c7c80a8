package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/imanod-api/internal/domain"
	"github.com/jhoicas/imanod-api/internal/domain/entity"
	"github.com/jhoicas/imanod-api/internal/domain/repository"
)

var (
	_ repository.FuegoYaProductRepository = (*FuegoYaProductRepo)(nil)
	_ repository.FuegoYaSaleRepository    = (*FuegoYaSaleRepo)(nil)
	_ repository.FuegoYaPaymentRepository = (*FuegoYaPaymentRepo)(nil)
	_ repository.AllocationRepository     = (*AllocationRepo)(nil)
)

// ─── productos ──────────────────────────────────────────────────────────────

// FuegoYaProductRepo implementación de FuegoYaProductRepository (usable con pool o tx).
type FuegoYaProductRepo struct {
	q Querier
}

// NewFuegoYaProductRepository construye el adaptador. Pasar pool o tx (Querier).
func NewFuegoYaProductRepository(q Querier) *FuegoYaProductRepo {
	return &FuegoYaProductRepo{q: q}
}

const productColumns = `id, tipo, precio_unitario, stock, stock_minimo, foto, created_at`

var productFilters = columns{"id": "id", "tipo": "tipo"}

func scanProduct(row pgx.Row) (*entity.FuegoYaProduct, error) {
	var p entity.FuegoYaProduct
	if err := row.Scan(&p.ID, &p.Type, &p.UnitPrice, &p.Stock, &p.MinStock, &p.PhotoRef, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// Create persiste el producto con su existencia inicial.
func (r *FuegoYaProductRepo) Create(ctx context.Context, p *entity.FuegoYaProduct) error {
	query := `
		INSERT INTO fuegoya_productos (tipo, precio_unitario, stock, stock_minimo, foto, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	err := r.q.QueryRow(ctx, query, p.Type, p.UnitPrice, p.Stock, p.MinStock, p.PhotoRef, p.CreatedAt).Scan(&p.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert fuegoya producto: %w", err)
	}
	return nil
}

// GetByID obtiene un producto por ID.
func (r *FuegoYaProductRepo) GetByID(ctx context.Context, id int64) (*entity.FuegoYaProduct, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, `SELECT `+productColumns+` FROM fuegoya_productos WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("producto %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get fuegoya producto: %w", err)
	}
	return p, nil
}

func (r *FuegoYaProductRepo) List(ctx context.Context, q repository.ListQuery) ([]*entity.FuegoYaProduct, error) {
	where, args, err := buildWhere(q, productFilters, nil)
	if err != nil {
		return nil, err
	}
	page, args := pageClause(q, "id", args)
	rows, err := r.q.Query(ctx, `SELECT `+productColumns+` FROM fuegoya_productos WHERE TRUE`+where+page, args...)
	if err != nil {
		return nil, fmt.Errorf("list fuegoya productos: %w", err)
	}
	defer rows.Close()
	var list []*entity.FuegoYaProduct
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan fuegoya producto: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// Update escribe todo excepto stock.
func (r *FuegoYaProductRepo) Update(ctx context.Context, p *entity.FuegoYaProduct) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE fuegoya_productos SET tipo = $2, precio_unitario = $3, stock_minimo = $4, foto = $5, updated_at = now() WHERE id = $1`,
		p.ID, p.Type, p.UnitPrice, p.MinStock, p.PhotoRef)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update fuegoya producto: %w", err)
	}
	return notFoundIfNone(tag, fmt.Sprintf("producto %d", p.ID))
}

func (r *FuegoYaProductRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM fuegoya_productos WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrReferenced
		}
		return fmt.Errorf("delete fuegoya producto: %w", err)
	}
	return notFoundIfNone(tag, fmt.Sprintf("producto %d", id))
}

// CountSales ventas que referencian el producto.
func (r *FuegoYaProductRepo) CountSales(ctx context.Context, id int64) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM fuegoya_ventas WHERE producto_id = $1`, id).Scan(&n); err != nil {
		return 0, fmt.Errorf("count fuegoya ventas: %w", err)
	}
	return n, nil
}

// ─── ventas ─────────────────────────────────────────────────────────────────

// FuegoYaSaleRepo ventas FuegoYa; Allocated se calcula con la suma de sus aplicaciones.
type FuegoYaSaleRepo struct {
	q Querier
}

// NewFuegoYaSaleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewFuegoYaSaleRepository(q Querier) *FuegoYaSaleRepo {
	return &FuegoYaSaleRepo{q: q}
}

const saleAllocated = `COALESCE((SELECT SUM(a.monto) FROM fuegoya_aplicaciones a WHERE a.venta_id = v.id), 0)`

const saleColumns = `v.id, v.fecha, v.precio_total, v.cliente_id, v.producto_id, v.bolsas, v.estado,
	v.pagado_en, v.foto, ` + saleAllocated

var saleFilters = columns{
	"id":          "v.id",
	"cliente_id":  "v.cliente_id",
	"producto_id": "v.producto_id",
	"estado":      "v.estado",
	"fecha":       "v.fecha",
}

func scanSale(row pgx.Row) (*entity.FuegoYaSale, error) {
	var s entity.FuegoYaSale
	var state string
	err := row.Scan(&s.ID, &s.Date, &s.TotalPrice, &s.ClientID, &s.ProductID, &s.BagCount, &state,
		&s.PaidAt, &s.PhotoRef, &s.Allocated)
	if err != nil {
		return nil, err
	}
	s.State = entity.SaleState(state)
	return &s, nil
}

func scanSales(rows pgx.Rows) ([]*entity.FuegoYaSale, error) {
	defer rows.Close()
	var list []*entity.FuegoYaSale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("scan fuegoya venta: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

func (r *FuegoYaSaleRepo) Create(ctx context.Context, s *entity.FuegoYaSale) error {
	query := `
		INSERT INTO fuegoya_ventas (fecha, precio_total, cliente_id, producto_id, bolsas, estado, pagado_en, foto)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		s.Date, s.TotalPrice, s.ClientID, s.ProductID, s.BagCount, string(s.State), s.PaidAt, s.PhotoRef,
	).Scan(&s.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("cliente o producto de la venta: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("insert fuegoya venta: %w", err)
	}
	return nil
}

func (r *FuegoYaSaleRepo) GetByID(ctx context.Context, id int64) (*entity.FuegoYaSale, error) {
	s, err := scanSale(r.q.QueryRow(ctx, `SELECT `+saleColumns+` FROM fuegoya_ventas v WHERE v.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("venta %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get fuegoya venta: %w", err)
	}
	return s, nil
}

// GetForUpdate bloquea la fila y luego la lee con la suma de aplicaciones vigente.
func (r *FuegoYaSaleRepo) GetForUpdate(ctx context.Context, id int64) (*entity.FuegoYaSale, error) {
	ids, err := lockIDs(ctx, r.q, `SELECT id FROM fuegoya_ventas WHERE id = $1 FOR UPDATE`, id)
	if err != nil {
		return nil, fmt.Errorf("lock fuegoya venta: %w", err)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("venta %d: %w", id, domain.ErrNotFound)
	}
	return r.GetByID(ctx, id)
}

func (r *FuegoYaSaleRepo) List(ctx context.Context, q repository.ListQuery) ([]*entity.FuegoYaSale, error) {
	where, args, err := buildWhere(q, saleFilters, nil)
	if err != nil {
		return nil, err
	}
	page, args := pageClause(q, "v.id", args)
	rows, err := r.q.Query(ctx, `SELECT `+saleColumns+` FROM fuegoya_ventas v WHERE TRUE`+where+page, args...)
	if err != nil {
		return nil, fmt.Errorf("list fuegoya ventas: %w", err)
	}
	return scanSales(rows)
}

// ListOutstandingForUpdate bloquea las ventas a crédito del cliente en orden (fecha, id) y
// devuelve las que tienen saldo, con la suma leída después del bloqueo.
func (r *FuegoYaSaleRepo) ListOutstandingForUpdate(ctx context.Context, clientID, excludeID int64) ([]*entity.FuegoYaSale, error) {
	ids, err := lockIDs(ctx, r.q, `
		SELECT id FROM fuegoya_ventas
		WHERE cliente_id = $1 AND id <> $2 AND estado = 'credito'
		ORDER BY fecha, id
		FOR UPDATE`, clientID, excludeID)
	if err != nil {
		return nil, fmt.Errorf("lock ventas a crédito: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	query := `
		SELECT ` + saleColumns + `
		FROM fuegoya_ventas v
		WHERE v.id = ANY($1) AND v.precio_total > ` + saleAllocated + `
		ORDER BY v.fecha, v.id`
	rows, err := r.q.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("list outstanding ventas: %w", err)
	}
	return scanSales(rows)
}

// Update escribe todos los campos de la venta, estado y fecha de pago incluidos.
func (r *FuegoYaSaleRepo) Update(ctx context.Context, s *entity.FuegoYaSale) error {
	query := `
		UPDATE fuegoya_ventas SET fecha = $2, precio_total = $3, cliente_id = $4, producto_id = $5,
			bolsas = $6, estado = $7, pagado_en = $8, foto = $9
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		s.ID, s.Date, s.TotalPrice, s.ClientID, s.ProductID, s.BagCount, string(s.State), s.PaidAt, s.PhotoRef)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("cliente o producto de la venta: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("update fuegoya venta: %w", err)
	}
	return notFoundIfNone(tag, fmt.Sprintf("venta %d", s.ID))
}

func (r *FuegoYaSaleRepo) SetState(ctx context.Context, id int64, state entity.SaleState, paidAt *time.Time) error {
	tag, err := r.q.Exec(ctx, `UPDATE fuegoya_ventas SET estado = $2, pagado_en = $3 WHERE id = $1`,
		id, string(state), paidAt)
	if err != nil {
		return fmt.Errorf("set estado venta: %w", err)
	}
	return notFoundIfNone(tag, fmt.Sprintf("venta %d", id))
}

// Delete falla con ErrReferenced si quedan aplicaciones (FK RESTRICT).
func (r *FuegoYaSaleRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM fuegoya_ventas WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrReferenced
		}
		return fmt.Errorf("delete fuegoya venta: %w", err)
	}
	return notFoundIfNone(tag, fmt.Sprintf("venta %d", id))
}

// ─── pagos ──────────────────────────────────────────────────────────────────

// FuegoYaPaymentRepo abonos de clientes; Allocated se calcula al leer.
type FuegoYaPaymentRepo struct {
	q Querier
}

// NewFuegoYaPaymentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewFuegoYaPaymentRepository(q Querier) *FuegoYaPaymentRepo {
	return &FuegoYaPaymentRepo{q: q}
}

const paymentAllocated = `COALESCE((SELECT SUM(a.monto) FROM fuegoya_aplicaciones a WHERE a.pago_id = p.id), 0)`

const paymentColumns = `p.id, p.cliente_id, p.monto, p.fecha, p.metodo, p.nota, ` + paymentAllocated

var paymentFilters = columns{
	"id":         "p.id",
	"cliente_id": "p.cliente_id",
	"fecha":      "p.fecha",
	"metodo":     "p.metodo",
}

func scanPayments(rows pgx.Rows) ([]*entity.FuegoYaPayment, error) {
	defer rows.Close()
	var list []*entity.FuegoYaPayment
	for rows.Next() {
		var p entity.FuegoYaPayment
		if err := rows.Scan(&p.ID, &p.ClientID, &p.Amount, &p.PaidAt, &p.Method, &p.Note, &p.Allocated); err != nil {
			return nil, fmt.Errorf("scan fuegoya pago: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}

func (r *FuegoYaPaymentRepo) Create(ctx context.Context, p *entity.FuegoYaPayment) error {
	query := `
		INSERT INTO fuegoya_pagos (cliente_id, monto, fecha, metodo, nota)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	err := r.q.QueryRow(ctx, query, p.ClientID, p.Amount, p.PaidAt, p.Method, p.Note).Scan(&p.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("cliente %d: %w", p.ClientID, domain.ErrNotFound)
		}
		return fmt.Errorf("insert fuegoya pago: %w", err)
	}
	return nil
}

// GetForUpdate bloquea el pago y luego lo lee con la suma de aplicaciones vigente.
func (r *FuegoYaPaymentRepo) GetForUpdate(ctx context.Context, id int64) (*entity.FuegoYaPayment, error) {
	ids, err := lockIDs(ctx, r.q, `SELECT id FROM fuegoya_pagos WHERE id = $1 FOR UPDATE`, id)
	if err != nil {
		return nil, fmt.Errorf("lock fuegoya pago: %w", err)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("pago %d: %w", id, domain.ErrNotFound)
	}
	var p entity.FuegoYaPayment
	err = r.q.QueryRow(ctx, `SELECT `+paymentColumns+` FROM fuegoya_pagos p WHERE p.id = $1`, id).Scan(
		&p.ID, &p.ClientID, &p.Amount, &p.PaidAt, &p.Method, &p.Note, &p.Allocated)
	if err != nil {
		return nil, fmt.Errorf("get fuegoya pago: %w", err)
	}
	return &p, nil
}

func (r *FuegoYaPaymentRepo) List(ctx context.Context, q repository.ListQuery) ([]*entity.FuegoYaPayment, error) {
	where, args, err := buildWhere(q, paymentFilters, nil)
	if err != nil {
		return nil, err
	}
	page, args := pageClause(q, "p.id", args)
	rows, err := r.q.Query(ctx, `SELECT `+paymentColumns+` FROM fuegoya_pagos p WHERE TRUE`+where+page, args...)
	if err != nil {
		return nil, fmt.Errorf("list fuegoya pagos: %w", err)
	}
	return scanPayments(rows)
}

// ListWithCapacityForUpdate bloquea los pagos del cliente en orden (fecha, id) y devuelve los
// que tienen monto libre, con la suma leída después del bloqueo.
func (r *FuegoYaPaymentRepo) ListWithCapacityForUpdate(ctx context.Context, clientID int64) ([]*entity.FuegoYaPayment, error) {
	ids, err := lockIDs(ctx, r.q, `
		SELECT id FROM fuegoya_pagos
		WHERE cliente_id = $1
		ORDER BY fecha, id
		FOR UPDATE`, clientID)
	if err != nil {
		return nil, fmt.Errorf("lock pagos del cliente: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	query := `
		SELECT ` + paymentColumns + `
		FROM fuegoya_pagos p
		WHERE p.id = ANY($1) AND p.monto > ` + paymentAllocated + `
		ORDER BY p.fecha, p.id`
	rows, err := r.q.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("list pagos con saldo: %w", err)
	}
	return scanPayments(rows)
}

// Delete falla con ErrReferenced si quedan aplicaciones (FK RESTRICT).
func (r *FuegoYaPaymentRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM fuegoya_pagos WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrReferenced
		}
		return fmt.Errorf("delete fuegoya pago: %w", err)
	}
	return notFoundIfNone(tag, fmt.Sprintf("pago %d", id))
}

// ─── aplicaciones ───────────────────────────────────────────────────────────

// AllocationRepo enlaces pago→venta.
type AllocationRepo struct {
	q Querier
}

// NewAllocationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAllocationRepository(q Querier) *AllocationRepo {
	return &AllocationRepo{q: q}
}

func (r *AllocationRepo) Create(ctx context.Context, a *entity.Allocation) error {
	query := `
		INSERT INTO fuegoya_aplicaciones (pago_id, venta_id, monto, aplicado_en)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	err := r.q.QueryRow(ctx, query, a.PaymentID, a.SaleID, a.Amount, a.AppliedAt).Scan(&a.ID)
	if err != nil {
		switch {
		case isCheckViolation(err):
			return fmt.Errorf("%w: monto de aplicación", domain.ErrInvalidInput)
		case isForeignKeyViolation(err):
			return fmt.Errorf("pago o venta de la aplicación: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("insert aplicación: %w", err)
	}
	return nil
}

func (r *AllocationRepo) list(ctx context.Context, column string, id int64) ([]*entity.Allocation, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, pago_id, venta_id, monto, aplicado_en
		FROM fuegoya_aplicaciones WHERE `+column+` = $1
		ORDER BY aplicado_en, id`, id)
	if err != nil {
		return nil, fmt.Errorf("list aplicaciones: %w", err)
	}
	defer rows.Close()
	var list []*entity.Allocation
	for rows.Next() {
		var a entity.Allocation
		if err := rows.Scan(&a.ID, &a.PaymentID, &a.SaleID, &a.Amount, &a.AppliedAt); err != nil {
			return nil, fmt.Errorf("scan aplicación: %w", err)
		}
		list = append(list, &a)
	}
	return list, rows.Err()
}

func (r *AllocationRepo) ListBySale(ctx context.Context, saleID int64) ([]*entity.Allocation, error) {
	return r.list(ctx, "venta_id", saleID)
}

func (r *AllocationRepo) ListByPayment(ctx context.Context, paymentID int64) ([]*entity.Allocation, error) {
	return r.list(ctx, "pago_id", paymentID)
}

func (r *AllocationRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM fuegoya_aplicaciones WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete aplicación: %w", err)
	}
	return notFoundIfNone(tag, fmt.Sprintf("aplicación %d", id))
}

func (r *AllocationRepo) DeleteBySale(ctx context.Context, saleID int64) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM fuegoya_aplicaciones WHERE venta_id = $1`, saleID); err != nil {
		return fmt.Errorf("delete aplicaciones de venta: %w", err)
	}
	return nil
}
