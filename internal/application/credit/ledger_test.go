package credit_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/imanod-api/internal/application/credit"
	"github.com/jhoicas/imanod-api/internal/application/dto"
	"github.com/jhoicas/imanod-api/internal/domain"
	"github.com/jhoicas/imanod-api/internal/domain/entity"
	"github.com/jhoicas/imanod-api/internal/domain/repository"
	"github.com/jhoicas/imanod-api/internal/infrastructure/memory"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func dp(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

var base = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func day(n int) *time.Time {
	t := base.AddDate(0, 0, n)
	return &t
}

type fixture struct {
	store    *memory.Store
	ledger   *credit.LedgerUseCase
	products *credit.ProductUseCase
	client   int64
	product  int64
}

// newFixture cliente con un producto de 10 por bulto y 100 bultos en existencia.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	f := &fixture{
		store:    store,
		ledger:   credit.NewLedgerUseCase(store, nil),
		products: credit.NewProductUseCase(store, nil),
	}
	f.client = f.customer(t, "Ferretería La 14")
	p, err := f.products.Create(ctx, dto.CreateFuegoYaProductRequest{Type: "Encendedor x50", UnitPrice: d("10"), Stock: 100})
	require.NoError(t, err)
	f.product = p.ID
	return f
}

func (f *fixture) customer(t *testing.T, name string) int64 {
	t.Helper()
	var id int64
	err := f.store.Run(context.Background(), func(r *repository.Repos) error {
		c := &entity.Customer{Name: name, CreatedAt: base}
		if err := r.Customers.Create(context.Background(), c); err != nil {
			return err
		}
		id = c.ID
		return nil
	})
	require.NoError(t, err)
	return id
}

func (f *fixture) sale(t *testing.T, total string, when *time.Time) *dto.SaleResponse {
	t.Helper()
	s, err := f.ledger.CreateSale(context.Background(), dto.CreateSaleRequest{
		ClientID: f.client, ProductID: f.product, BagCount: 1, TotalPrice: dp(total), Date: when,
	})
	require.NoError(t, err)
	return s
}

func (f *fixture) pay(t *testing.T, amount string, when *time.Time) *dto.RegisterPaymentResponse {
	t.Helper()
	p, err := f.ledger.RegisterPayment(context.Background(), dto.CreatePaymentRequest{
		ClientID: f.client, Amount: d(amount), PaidAt: when,
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) get(t *testing.T, id int64) *dto.SaleResponse {
	t.Helper()
	s, err := f.ledger.GetSale(context.Background(), id)
	require.NoError(t, err)
	return s
}

func assertMoney(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, got.Equal(d(want)), "esperado %s, obtenido %s", want, got)
}

// ─── RegisterPayment ─────────────────────────────────────────────────────────

func TestRegisterPayment_FIFO(t *testing.T) {
	f := newFixture(t)
	s1 := f.sale(t, "100", day(1))
	s2 := f.sale(t, "50", day(2))

	res := f.pay(t, "120", day(3))
	assertMoney(t, "120", res.Applied)
	assertMoney(t, "0", res.Unapplied)
	require.Len(t, res.Allocations, 2)
	assert.Equal(t, s1.ID, res.Allocations[0].SaleID)

	got1 := f.get(t, s1.ID)
	assert.Equal(t, "pago", got1.State)
	assert.NotNil(t, got1.PaidAt)
	got2 := f.get(t, s2.ID)
	assert.Equal(t, "credito", got2.State)
	assertMoney(t, "30", got2.Outstanding)
}

func TestRegisterPayment_SobranteQuedaLibre(t *testing.T) {
	f := newFixture(t)
	s1 := f.sale(t, "40", day(1))

	res := f.pay(t, "100", day(2))
	assertMoney(t, "40", res.Applied)
	assertMoney(t, "60", res.Unapplied)
	assertMoney(t, "60", res.Payment.Remaining)
	assert.Equal(t, "pago", f.get(t, s1.ID).State)
}

func TestRegisterPayment_MontoInvalido(t *testing.T) {
	f := newFixture(t)
	_, err := f.ledger.RegisterPayment(context.Background(), dto.CreatePaymentRequest{ClientID: f.client, Amount: d("0")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.ledger.RegisterPayment(context.Background(), dto.CreatePaymentRequest{ClientID: 999, Amount: d("5")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ─── CreateSale ──────────────────────────────────────────────────────────────

func TestCreateSale_AplicaCreditoLibre(t *testing.T) {
	f := newFixture(t)
	f.pay(t, "50", day(1))

	s1 := f.sale(t, "30", day(2))
	assertMoney(t, "30", s1.AutoApplied)
	assert.Equal(t, "pago", s1.State)

	s2 := f.sale(t, "40", day(3))
	assertMoney(t, "20", s2.AutoApplied)
	assertMoney(t, "20", s2.Outstanding)
	assert.Equal(t, "credito", s2.State)
}

func TestCreateSale_DescuentaBultos(t *testing.T) {
	f := newFixture(t)
	s, err := f.ledger.CreateSale(context.Background(), dto.CreateSaleRequest{
		ClientID: f.client, ProductID: f.product, BagCount: 7,
	})
	require.NoError(t, err)
	assertMoney(t, "70", s.TotalPrice)
	assert.Equal(t, 93, f.store.Stock(entity.StockFuegoYa, f.product))
}

func TestCreateSale_BultosInsuficientes(t *testing.T) {
	f := newFixture(t)
	_, err := f.ledger.CreateSale(context.Background(), dto.CreateSaleRequest{
		ClientID: f.client, ProductID: f.product, BagCount: 101,
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 100, f.store.Stock(entity.StockFuegoYa, f.product))
}

func TestCreateSale_PagadaNoConsumeCredito(t *testing.T) {
	f := newFixture(t)
	p := f.pay(t, "50", day(1))
	s, err := f.ledger.CreateSale(context.Background(), dto.CreateSaleRequest{
		ClientID: f.client, ProductID: f.product, BagCount: 2, State: "pago",
	})
	require.NoError(t, err)
	assert.Equal(t, "pago", s.State)
	assertMoney(t, "0", s.AutoApplied)

	payments, err := f.ledger.ListPayments(context.Background(), f.client, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, p.Payment.ID, payments[0].ID)
	assertMoney(t, "50", payments[0].Remaining)
}

// ─── DeleteSale ──────────────────────────────────────────────────────────────

func TestDeleteSale_ReasignaAplicaciones(t *testing.T) {
	f := newFixture(t)
	s1 := f.sale(t, "100", day(1))
	f.pay(t, "100", day(2))
	s2 := f.sale(t, "40", day(3))
	require.Equal(t, "pago", f.get(t, s1.ID).State)
	require.Equal(t, "credito", f.get(t, s2.ID).State)

	res, err := f.ledger.DeleteSale(context.Background(), s1.ID)
	require.NoError(t, err)
	assertMoney(t, "100", res.Released)
	assertMoney(t, "40", res.Reassigned)
	assertMoney(t, "60", res.Free)

	assert.Equal(t, "pago", f.get(t, s2.ID).State)
	_, err = f.ledger.GetSale(context.Background(), s1.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	st, err := f.ledger.Statement(context.Background(), f.client)
	require.NoError(t, err)
	assertMoney(t, "60", st.UnappliedCredit)
	assertMoney(t, "0", st.Outstanding)
	// Los dos bultos vendidos: uno devuelto al borrar
	assert.Equal(t, 99, f.store.Stock(entity.StockFuegoYa, f.product))
}

// ─── ForcePay ────────────────────────────────────────────────────────────────

func TestForcePay_LiberaHaciaOtrasVentas(t *testing.T) {
	f := newFixture(t)
	s1 := f.sale(t, "100", day(1))
	f.pay(t, "60", day(2))
	s2 := f.sale(t, "50", day(3))

	res, err := f.ledger.ForcePay(context.Background(), s1.ID)
	require.NoError(t, err)
	assertMoney(t, "60", res.Released)
	assertMoney(t, "50", res.Reassigned)
	assertMoney(t, "10", res.Free)

	got1 := f.get(t, s1.ID)
	assert.Equal(t, "pago", got1.State)
	assertMoney(t, "0", got1.Allocated)
	assert.Equal(t, "pago", f.get(t, s2.ID).State)

	_, err = f.ledger.ForcePay(context.Background(), s1.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

// ─── DeletePayment ───────────────────────────────────────────────────────────

func TestDeletePayment_VentasVuelvenACredito(t *testing.T) {
	f := newFixture(t)
	s1 := f.sale(t, "100", day(1))
	p1 := f.pay(t, "100", day(2))
	f.pay(t, "30", day(3))
	require.Equal(t, "pago", f.get(t, s1.ID).State)

	require.NoError(t, f.ledger.DeletePayment(context.Background(), p1.Payment.ID))

	got := f.get(t, s1.ID)
	assert.Equal(t, "credito", got.State)
	assert.Nil(t, got.PaidAt)
	assertMoney(t, "30", got.Allocated)
	assertMoney(t, "70", got.Outstanding)
}

func TestDeletePayment_Inexistente(t *testing.T) {
	f := newFixture(t)
	assert.ErrorIs(t, f.ledger.DeletePayment(context.Background(), 42), domain.ErrNotFound)
}

// ─── UpdateSale ──────────────────────────────────────────────────────────────

func TestUpdateSale_BajaDePrecioLiberaExceso(t *testing.T) {
	f := newFixture(t)
	s1 := f.sale(t, "100", day(1))
	f.pay(t, "100", day(2))
	s2 := f.sale(t, "50", day(3))

	upd, err := f.ledger.UpdateSale(context.Background(), s1.ID, dto.UpdateSaleRequest{TotalPrice: dp("60")})
	require.NoError(t, err)
	assertMoney(t, "60", upd.Allocated)
	assert.Equal(t, "pago", upd.State)

	got2 := f.get(t, s2.ID)
	assertMoney(t, "40", got2.Allocated)
	assertMoney(t, "10", got2.Outstanding)
}

func TestUpdateSale_CambioDeBultosAjustaExistencia(t *testing.T) {
	f := newFixture(t)
	s, err := f.ledger.CreateSale(context.Background(), dto.CreateSaleRequest{
		ClientID: f.client, ProductID: f.product, BagCount: 5,
	})
	require.NoError(t, err)
	require.Equal(t, 95, f.store.Stock(entity.StockFuegoYa, f.product))

	bags := 2
	upd, err := f.ledger.UpdateSale(context.Background(), s.ID, dto.UpdateSaleRequest{BagCount: &bags})
	require.NoError(t, err)
	assertMoney(t, "20", upd.TotalPrice)
	assert.Equal(t, 98, f.store.Stock(entity.StockFuegoYa, f.product))

	bags = 200
	_, err = f.ledger.UpdateSale(context.Background(), s.ID, dto.UpdateSaleRequest{BagCount: &bags})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 98, f.store.Stock(entity.StockFuegoYa, f.product))
}

func TestUpdateSale_CambioDeCliente(t *testing.T) {
	f := newFixture(t)
	s1 := f.sale(t, "100", day(1))
	f.pay(t, "100", day(2))
	other := f.customer(t, "Depósito El Sol")

	upd, err := f.ledger.UpdateSale(context.Background(), s1.ID, dto.UpdateSaleRequest{ClientID: &other})
	require.NoError(t, err)
	assert.Equal(t, other, upd.ClientID)
	assertMoney(t, "0", upd.Allocated)
	assertMoney(t, "100", upd.Outstanding)

	st, err := f.ledger.Statement(context.Background(), f.client)
	require.NoError(t, err)
	assertMoney(t, "100", st.UnappliedCredit)
}

// ─── SetState ────────────────────────────────────────────────────────────────

func TestSetState_NoRevierteAplicaciones(t *testing.T) {
	f := newFixture(t)
	s1 := f.sale(t, "100", day(1))
	f.pay(t, "100", day(2))

	got, err := f.ledger.SetState(context.Background(), s1.ID, dto.SetSaleStateRequest{State: "credito"})
	require.NoError(t, err)
	assert.Equal(t, "credito", got.State)
	assertMoney(t, "100", got.Allocated)
	assertMoney(t, "0", got.Outstanding)

	_, err = f.ledger.SetState(context.Background(), s1.ID, dto.SetSaleStateRequest{State: "anulada"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUpdateSale_PagoManualParcialSeConserva(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s1 := f.sale(t, "100", day(1))
	f.pay(t, "30", day(2))
	_, err := f.ledger.SetState(ctx, s1.ID, dto.SetSaleStateRequest{State: "pago"})
	require.NoError(t, err)

	got, err := f.ledger.UpdateSale(ctx, s1.ID, dto.UpdateSaleRequest{Date: day(5)})
	require.NoError(t, err)
	assert.Equal(t, "pago", got.State, "una edición de fecha no reabre la venta")
	assert.NotNil(t, got.PaidAt)
	assertMoney(t, "30", got.Allocated)
	assert.True(t, got.Date.Equal(*day(5)))
}

func TestUpdateSale_AlzaDePrecioReabrePagoParcial(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s1 := f.sale(t, "100", day(1))
	f.pay(t, "30", day(2))
	_, err := f.ledger.SetState(ctx, s1.ID, dto.SetSaleStateRequest{State: "pago"})
	require.NoError(t, err)

	got, err := f.ledger.UpdateSale(ctx, s1.ID, dto.UpdateSaleRequest{TotalPrice: dp("120")})
	require.NoError(t, err)
	assert.Equal(t, "credito", got.State)
	assert.Nil(t, got.PaidAt)
	assertMoney(t, "90", got.Outstanding)
}

// ─── Conservación ────────────────────────────────────────────────────────────

// Lo aplicado más lo libre siempre suma lo abonado, y lo aplicado más el saldo suma lo vendido
// (para ventas a crédito).
func TestLedger_Conservacion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s1 := f.sale(t, "80", day(1))
	f.sale(t, "45.50", day(2))
	f.pay(t, "30", day(3))
	s3 := f.sale(t, "25", day(4))
	f.pay(t, "100", day(5))
	_, err := f.ledger.DeleteSale(ctx, s1.ID)
	require.NoError(t, err)
	_, err = f.ledger.UpdateSale(ctx, s3.ID, dto.UpdateSaleRequest{TotalPrice: dp("60")})
	require.NoError(t, err)

	st, err := f.ledger.Statement(ctx, f.client)
	require.NoError(t, err)
	allocated := decimal.Zero
	for _, p := range st.Payments {
		assert.True(t, p.Allocated.LessThanOrEqual(p.Amount))
		allocated = allocated.Add(p.Allocated)
	}
	assertMoney(t, st.TotalPaid.String(), allocated.Add(st.UnappliedCredit))
	assertMoney(t, st.TotalSales.String(), allocated.Add(st.Outstanding))
}

// ─── Productos ───────────────────────────────────────────────────────────────

func TestProduct_DeleteBloqueadoPorVentas(t *testing.T) {
	f := newFixture(t)
	f.sale(t, "10", day(1))

	err := f.products.Delete(context.Background(), f.product)
	var refErr *domain.ReferencedError
	require.ErrorAs(t, err, &refErr)
	assert.Equal(t, []string{"1 ventas"}, refErr.Titles)
}

func TestProduct_UpdateAjustaExistencia(t *testing.T) {
	f := newFixture(t)
	stock := 40
	p, err := f.products.Update(context.Background(), f.product, dto.UpdateFuegoYaProductRequest{Stock: &stock})
	require.NoError(t, err)
	assert.Equal(t, 40, p.Stock)
	assert.Equal(t, 40, f.store.Stock(entity.StockFuegoYa, f.product))
}
