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
	_ repository.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)
	_ repository.SalesOrderRepository    = (*SalesOrderRepo)(nil)
)

// ─── encargos ───────────────────────────────────────────────────────────────

// PurchaseOrderRepo encargos a proveedores con sus ítems.
type PurchaseOrderRepo struct {
	q Querier
}

// NewPurchaseOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPurchaseOrderRepository(q Querier) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{q: q}
}

const purchaseOrderColumns = `id, proveedor_id, estado, fecha, recibido_en, notas`

var purchaseOrderFilters = columns{
	"id":           "id",
	"estado":       "estado",
	"proveedor_id": "proveedor_id",
}

func scanPurchaseOrder(row pgx.Row) (*entity.PurchaseOrder, error) {
	var o entity.PurchaseOrder
	if err := row.Scan(&o.ID, &o.SupplierID, &o.Status, &o.OrderedAt, &o.ReceivedAt, &o.Notes); err != nil {
		return nil, err
	}
	return &o, nil
}

// Create persiste la cabecera y los ítems del encargo.
func (r *PurchaseOrderRepo) Create(ctx context.Context, o *entity.PurchaseOrder) error {
	query := `
		INSERT INTO encargos (proveedor_id, estado, fecha, recibido_en, notas)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	err := r.q.QueryRow(ctx, query, o.SupplierID, o.Status, o.OrderedAt, o.ReceivedAt, o.Notes).Scan(&o.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("proveedor %d: %w", o.SupplierID, domain.ErrNotFound)
		}
		return fmt.Errorf("insert encargo: %w", err)
	}
	for _, l := range o.Lines {
		_, err := r.q.Exec(ctx,
			`INSERT INTO encargo_items (encargo_id, material_id, cantidad, costo_unitario) VALUES ($1, $2, $3, $4)`,
			o.ID, l.MaterialID, l.Quantity, l.UnitCost)
		if err != nil {
			if isForeignKeyViolation(err) {
				return fmt.Errorf("material %d: %w", l.MaterialID, domain.ErrNotFound)
			}
			return fmt.Errorf("insert encargo item: %w", err)
		}
	}
	return nil
}

func (r *PurchaseOrderRepo) loadLines(ctx context.Context, list []*entity.PurchaseOrder) error {
	if len(list) == 0 {
		return nil
	}
	byID := make(map[int64]*entity.PurchaseOrder, len(list))
	ids := make([]int64, 0, len(list))
	for _, o := range list {
		byID[o.ID] = o
		ids = append(ids, o.ID)
	}
	rows, err := r.q.Query(ctx, `
		SELECT encargo_id, material_id, cantidad, costo_unitario
		FROM encargo_items WHERE encargo_id = ANY($1) ORDER BY encargo_id, id`, ids)
	if err != nil {
		return fmt.Errorf("list encargo items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			orderID int64
			l       entity.PurchaseOrderLine
		)
		if err := rows.Scan(&orderID, &l.MaterialID, &l.Quantity, &l.UnitCost); err != nil {
			return fmt.Errorf("scan encargo item: %w", err)
		}
		o := byID[orderID]
		o.Lines = append(o.Lines, l)
	}
	return rows.Err()
}

func (r *PurchaseOrderRepo) get(ctx context.Context, id int64, lock bool) (*entity.PurchaseOrder, error) {
	query := `SELECT ` + purchaseOrderColumns + ` FROM encargos WHERE id = $1`
	if lock {
		query += ` FOR UPDATE`
	}
	o, err := scanPurchaseOrder(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("encargo %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get encargo: %w", err)
	}
	if err := r.loadLines(ctx, []*entity.PurchaseOrder{o}); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *PurchaseOrderRepo) GetByID(ctx context.Context, id int64) (*entity.PurchaseOrder, error) {
	return r.get(ctx, id, false)
}

// GetForUpdate bloquea la cabecera: dos recepciones simultáneas se serializan aquí.
func (r *PurchaseOrderRepo) GetForUpdate(ctx context.Context, id int64) (*entity.PurchaseOrder, error) {
	return r.get(ctx, id, true)
}

func (r *PurchaseOrderRepo) List(ctx context.Context, q repository.ListQuery) ([]*entity.PurchaseOrder, error) {
	where, args, err := buildWhere(q, purchaseOrderFilters, nil)
	if err != nil {
		return nil, err
	}
	page, args := pageClause(q, "id", args)
	rows, err := r.q.Query(ctx, `SELECT `+purchaseOrderColumns+` FROM encargos WHERE TRUE`+where+page, args...)
	if err != nil {
		return nil, fmt.Errorf("list encargos: %w", err)
	}
	var list []*entity.PurchaseOrder
	for rows.Next() {
		o, err := scanPurchaseOrder(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan encargo: %w", err)
		}
		list = append(list, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list encargos: %w", err)
	}
	if err := r.loadLines(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// MarkReceived pasa el encargo a recibido.
func (r *PurchaseOrderRepo) MarkReceived(ctx context.Context, id int64, at time.Time) error {
	tag, err := r.q.Exec(ctx, `UPDATE encargos SET estado = $2, recibido_en = $3 WHERE id = $1`,
		id, entity.PurchaseOrderReceived, at)
	if err != nil {
		return fmt.Errorf("mark encargo received: %w", err)
	}
	return notFoundIfNone(tag, fmt.Sprintf("encargo %d", id))
}

// Delete elimina el encargo; los ítems caen por ON DELETE CASCADE.
func (r *PurchaseOrderRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM encargos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete encargo: %w", err)
	}
	return notFoundIfNone(tag, fmt.Sprintf("encargo %d", id))
}

// ─── pedidos ────────────────────────────────────────────────────────────────

// SalesOrderRepo pedidos de clientes con sus ítems.
type SalesOrderRepo struct {
	q Querier
}

// NewSalesOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSalesOrderRepository(q Querier) *SalesOrderRepo {
	return &SalesOrderRepo{q: q}
}

const salesOrderColumns = `id, cliente_id, fecha, fecha_entrega, notas, total`

var salesOrderFilters = columns{
	"id":         "id",
	"cliente_id": "cliente_id",
	"fecha":      "fecha",
}

func scanSalesOrder(row pgx.Row) (*entity.SalesOrder, error) {
	var o entity.SalesOrder
	if err := row.Scan(&o.ID, &o.ClientID, &o.OrderedAt, &o.DeliveryDate, &o.Notes, &o.Total); err != nil {
		return nil, err
	}
	return &o, nil
}

// Create persiste cabecera e ítems del pedido.
func (r *SalesOrderRepo) Create(ctx context.Context, o *entity.SalesOrder) error {
	query := `
		INSERT INTO pedidos (cliente_id, fecha, fecha_entrega, notas, total)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	err := r.q.QueryRow(ctx, query, o.ClientID, o.OrderedAt, o.DeliveryDate, o.Notes, o.Total).Scan(&o.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("cliente %d: %w", o.ClientID, domain.ErrNotFound)
		}
		return fmt.Errorf("insert pedido: %w", err)
	}
	return r.insertLines(ctx, o)
}

func (r *SalesOrderRepo) insertLines(ctx context.Context, o *entity.SalesOrder) error {
	for _, l := range o.Lines {
		_, err := r.q.Exec(ctx,
			`INSERT INTO pedido_items (pedido_id, prototipo_id, cantidad, costo_unitario) VALUES ($1, $2, $3, $4)`,
			o.ID, l.PrototypeID, l.Quantity, l.UnitCost)
		if err != nil {
			if isForeignKeyViolation(err) {
				return fmt.Errorf("prototipo %d: %w", l.PrototypeID, domain.ErrNotFound)
			}
			return fmt.Errorf("insert pedido item: %w", err)
		}
	}
	return nil
}

func (r *SalesOrderRepo) loadLines(ctx context.Context, list []*entity.SalesOrder) error {
	if len(list) == 0 {
		return nil
	}
	byID := make(map[int64]*entity.SalesOrder, len(list))
	ids := make([]int64, 0, len(list))
	for _, o := range list {
		byID[o.ID] = o
		ids = append(ids, o.ID)
	}
	rows, err := r.q.Query(ctx, `
		SELECT pedido_id, prototipo_id, cantidad, costo_unitario
		FROM pedido_items WHERE pedido_id = ANY($1) ORDER BY pedido_id, id`, ids)
	if err != nil {
		return fmt.Errorf("list pedido items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			orderID int64
			l       entity.SalesOrderLine
		)
		if err := rows.Scan(&orderID, &l.PrototypeID, &l.Quantity, &l.UnitCost); err != nil {
			return fmt.Errorf("scan pedido item: %w", err)
		}
		o := byID[orderID]
		o.Lines = append(o.Lines, l)
	}
	return rows.Err()
}

func (r *SalesOrderRepo) get(ctx context.Context, id int64, lock bool) (*entity.SalesOrder, error) {
	query := `SELECT ` + salesOrderColumns + ` FROM pedidos WHERE id = $1`
	if lock {
		query += ` FOR UPDATE`
	}
	o, err := scanSalesOrder(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("pedido %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get pedido: %w", err)
	}
	if err := r.loadLines(ctx, []*entity.SalesOrder{o}); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *SalesOrderRepo) GetByID(ctx context.Context, id int64) (*entity.SalesOrder, error) {
	return r.get(ctx, id, false)
}

func (r *SalesOrderRepo) GetForUpdate(ctx context.Context, id int64) (*entity.SalesOrder, error) {
	return r.get(ctx, id, true)
}

func (r *SalesOrderRepo) List(ctx context.Context, q repository.ListQuery) ([]*entity.SalesOrder, error) {
	where, args, err := buildWhere(q, salesOrderFilters, nil)
	if err != nil {
		return nil, err
	}
	page, args := pageClause(q, "id", args)
	rows, err := r.q.Query(ctx, `SELECT `+salesOrderColumns+` FROM pedidos WHERE TRUE`+where+page, args...)
	if err != nil {
		return nil, fmt.Errorf("list pedidos: %w", err)
	}
	var list []*entity.SalesOrder
	for rows.Next() {
		o, err := scanSalesOrder(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan pedido: %w", err)
		}
		list = append(list, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list pedidos: %w", err)
	}
	if err := r.loadLines(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// Update reemplaza cabecera, ítems y total.
func (r *SalesOrderRepo) Update(ctx context.Context, o *entity.SalesOrder) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE pedidos SET cliente_id = $2, fecha_entrega = $3, notas = $4, total = $5 WHERE id = $1`,
		o.ID, o.ClientID, o.DeliveryDate, o.Notes, o.Total)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("cliente %d: %w", o.ClientID, domain.ErrNotFound)
		}
		return fmt.Errorf("update pedido: %w", err)
	}
	if err := notFoundIfNone(tag, fmt.Sprintf("pedido %d", o.ID)); err != nil {
		return err
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM pedido_items WHERE pedido_id = $1`, o.ID); err != nil {
		return fmt.Errorf("delete pedido items: %w", err)
	}
	return r.insertLines(ctx, o)
}

func (r *SalesOrderRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM pedidos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete pedido: %w", err)
	}
	return notFoundIfNone(tag, fmt.Sprintf("pedido %d", id))
}
