package orders_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/imanod-api/internal/application/dto"
	"github.com/jhoicas/imanod-api/internal/application/inventory"
	"github.com/jhoicas/imanod-api/internal/application/orders"
	"github.com/jhoicas/imanod-api/internal/domain"
	"github.com/jhoicas/imanod-api/internal/domain/entity"
	"github.com/jhoicas/imanod-api/internal/infrastructure/memory"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fixture struct {
	store      *memory.Store
	customers  *orders.CustomerUseCase
	purchases  *orders.PurchaseOrderUseCase
	sales      *orders.SalesOrderUseCase
	materials  *inventory.MaterialUseCase
	prototypes *inventory.PrototypeUseCase
}

func newFixture() *fixture {
	store := memory.NewStore()
	return &fixture{
		store:      store,
		customers:  orders.NewCustomerUseCase(store),
		purchases:  orders.NewPurchaseOrderUseCase(store),
		sales:      orders.NewSalesOrderUseCase(store),
		materials:  inventory.NewMaterialUseCase(store, nil),
		prototypes: inventory.NewPrototypeUseCase(store, nil),
	}
}

// ─── Clientes y proveedores ──────────────────────────────────────────────────

func TestCustomer_NITDuplicado(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	_, err := f.customers.CreateCustomer(ctx, dto.CreateCustomerRequest{Name: "A", TaxID: "900123"})
	require.NoError(t, err)
	_, err = f.customers.CreateCustomer(ctx, dto.CreateCustomerRequest{Name: "B", TaxID: "900123"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	list, err := f.customers.ListCustomers(ctx, "a", dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "A", list[0].Name)
}

// ─── Encargos ────────────────────────────────────────────────────────────────

func TestPurchaseOrder_RecibirEsIdempotente(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	sup, err := f.customers.CreateSupplier(ctx, dto.CreateSupplierRequest{Name: "Aserrío El Roble"})
	require.NoError(t, err)
	tabla, err := f.materials.Create(ctx, dto.CreateMaterialRequest{Category: "tabla", Title: "Tabla", Stock: 2, Length: d("200")})
	require.NoError(t, err)

	po, err := f.purchases.Create(ctx, dto.CreatePurchaseOrderRequest{
		SupplierID: sup.ID,
		Lines:      []dto.PurchaseOrderLineRequest{{MaterialID: tabla.ID, Quantity: 50, UnitCost: d("7000")}},
	})
	require.NoError(t, err)
	assert.Equal(t, "pendiente", po.Status)
	assert.True(t, po.Total.Equal(d("350000")))
	assert.Equal(t, 2, f.store.Stock(entity.StockMaterial, tabla.ID))

	got, err := f.purchases.Receive(ctx, po.ID)
	require.NoError(t, err)
	assert.Equal(t, "recibido", got.Status)
	assert.False(t, got.AlreadyReceived)
	assert.Equal(t, 52, f.store.Stock(entity.StockMaterial, tabla.ID))

	again, err := f.purchases.Receive(ctx, po.ID)
	require.NoError(t, err)
	assert.True(t, again.AlreadyReceived)
	assert.Equal(t, 52, f.store.Stock(entity.StockMaterial, tabla.ID))

	assert.ErrorIs(t, f.purchases.Delete(ctx, po.ID), domain.ErrInvalidState)
}

func TestPurchaseOrder_MaterialInexistente(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	sup, err := f.customers.CreateSupplier(ctx, dto.CreateSupplierRequest{Name: "Aserrío"})
	require.NoError(t, err)

	_, err = f.purchases.Create(ctx, dto.CreatePurchaseOrderRequest{
		SupplierID: sup.ID,
		Lines:      []dto.PurchaseOrderLineRequest{{MaterialID: 77, Quantity: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPurchaseOrder_BorrarPendiente(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	sup, err := f.customers.CreateSupplier(ctx, dto.CreateSupplierRequest{Name: "Aserrío"})
	require.NoError(t, err)
	clavo, err := f.materials.Create(ctx, dto.CreateMaterialRequest{Category: "clavo", Title: "Clavo"})
	require.NoError(t, err)
	po, err := f.purchases.Create(ctx, dto.CreatePurchaseOrderRequest{
		SupplierID: sup.ID,
		Lines:      []dto.PurchaseOrderLineRequest{{MaterialID: clavo.ID, Quantity: 1000, UnitCost: d("8")}},
	})
	require.NoError(t, err)

	require.NoError(t, f.purchases.Delete(ctx, po.ID))
	_, err = f.purchases.GetByID(ctx, po.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ─── Pedidos ─────────────────────────────────────────────────────────────────

func TestSalesOrder_TotalSeRecalcula(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	client, err := f.customers.CreateCustomer(ctx, dto.CreateCustomerRequest{Name: "Ferretería"})
	require.NoError(t, err)
	clavo, err := f.materials.Create(ctx, dto.CreateMaterialRequest{Category: "clavo", Title: "Clavo", UnitPrice: d("10")})
	require.NoError(t, err)
	proto, err := f.prototypes.Create(ctx, dto.PrototypeRequest{
		Title: "Estiba liviana",
		Nails: []dto.BOMLineRequest{{ComponentID: clavo.ID, Quantity: d("40")}},
	})
	require.NoError(t, err)

	order, err := f.sales.Create(ctx, dto.SalesOrderRequest{
		ClientID: client.ID,
		Lines:    []dto.SalesOrderLineRequest{{PrototypeID: proto.ID, Quantity: 5}},
	})
	require.NoError(t, err)
	assert.True(t, order.Total.Equal(d("2000")), order.Total.String())

	// Sube el precio del clavo: el total se recalcula al actualizar el pedido
	price := d("12")
	_, err = f.materials.Update(ctx, clavo.ID, dto.UpdateMaterialRequest{UnitPrice: &price})
	require.NoError(t, err)
	upd, err := f.sales.Update(ctx, order.ID, dto.SalesOrderRequest{
		ClientID: client.ID,
		Lines:    []dto.SalesOrderLineRequest{{PrototypeID: proto.ID, Quantity: 2}},
	})
	require.NoError(t, err)
	assert.True(t, upd.Total.Equal(d("960")), upd.Total.String())
	require.Len(t, upd.Lines, 1)
	assert.True(t, upd.Lines[0].Subtotal.Equal(d("960")))
}

func TestSalesOrder_PrototipoInactivo(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	client, err := f.customers.CreateCustomer(ctx, dto.CreateCustomerRequest{Name: "Ferretería"})
	require.NoError(t, err)
	proto, err := f.prototypes.Create(ctx, dto.PrototypeRequest{Title: "Vieja"})
	require.NoError(t, err)
	require.NoError(t, f.prototypes.Deactivate(ctx, proto.ID))

	_, err = f.sales.Create(ctx, dto.SalesOrderRequest{
		ClientID: client.ID,
		Lines:    []dto.SalesOrderLineRequest{{PrototypeID: proto.ID, Quantity: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

// ─── PDF ─────────────────────────────────────────────────────────────────────

type fakeGenerator struct {
	lines []orders.SalesOrderLineForPDF
}

func (g *fakeGenerator) GenerateSalesOrderPDF(_ context.Context, _ *entity.SalesOrder, _ *entity.Customer, lines []orders.SalesOrderLineForPDF) ([]byte, error) {
	g.lines = lines
	return []byte("%PDF-1.3"), nil
}

func TestPDF_EnriqueceLineas(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	client, err := f.customers.CreateCustomer(ctx, dto.CreateCustomerRequest{Name: "Ferretería"})
	require.NoError(t, err)
	proto, err := f.prototypes.Create(ctx, dto.PrototypeRequest{Title: "Estiba exportación"})
	require.NoError(t, err)
	order, err := f.sales.Create(ctx, dto.SalesOrderRequest{
		ClientID: client.ID,
		Lines:    []dto.SalesOrderLineRequest{{PrototypeID: proto.ID, Quantity: 3}},
	})
	require.NoError(t, err)

	gen := &fakeGenerator{}
	data, name, err := orders.NewPDFUseCase(f.store, gen).DownloadSalesOrderPDF(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.3", string(data))
	assert.Equal(t, "pedido_1.pdf", name)
	require.Len(t, gen.lines, 1)
	assert.Equal(t, "Estiba exportación", gen.lines[0].PrototypeTitle)

	_, _, err = orders.NewPDFUseCase(f.store, gen).DownloadSalesOrderPDF(ctx, 99)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
