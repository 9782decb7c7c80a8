package inventory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/imanod-api/internal/domain/inventory"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// ──────────────────────────────────────────────────────────────────────────────
// PiecesPerParent
// ──────────────────────────────────────────────────────────────────────────────

// Tabla de 200 cm, pieza de 48 cm: floor(200 / 48.5) = 4.
func TestPiecesPerParent_EjemploTabla(t *testing.T) {
	assert.Equal(t, 4, inventory.PiecesPerParent(d("200"), d("48")))
}

func TestPiecesPerParent_HijaMasLargaQueMadre(t *testing.T) {
	assert.Equal(t, 0, inventory.PiecesPerParent(d("100"), d("100")),
		"100 / 100.5 debe dar 0 por el margen de corte")
	assert.Equal(t, 0, inventory.PiecesPerParent(d("100"), d("150")))
}

func TestPiecesPerParent_LargoNoPositivo(t *testing.T) {
	assert.Equal(t, 0, inventory.PiecesPerParent(d("200"), decimal.Zero))
	assert.Equal(t, 0, inventory.PiecesPerParent(d("200"), d("-3")))
	assert.Equal(t, 0, inventory.PiecesPerParent(decimal.Zero, d("10")))
}

func TestPiecesPerParent_MargenExacto(t *testing.T) {
	// 3 piezas de 9.5 + 0.5 caben justo en 30.
	assert.Equal(t, 3, inventory.PiecesPerParent(d("30"), d("9.5")))
}

// La producción no crece cuando la pieza hija se alarga.
func TestPiecesPerParent_Monotonia(t *testing.T) {
	for _, parent := range []string{"50", "120", "200", "244"} {
		L := d(parent)
		prev := inventory.PiecesPerParent(L, d("0.1"))
		for child := 1; child <= 250; child++ {
			cur := inventory.PiecesPerParent(L, decimal.NewFromInt(int64(child)))
			assert.LessOrEqual(t, cur, prev, "largo madre %s, hija %d", parent, child)
			prev = cur
		}
		assert.GreaterOrEqual(t,
			inventory.PiecesPerParent(L, d("0.1")),
			inventory.PiecesPerParent(L, d("5.0")))
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// ParentsRequired
// ──────────────────────────────────────────────────────────────────────────────

func TestParentsRequired(t *testing.T) {
	cases := []struct {
		qty, ppp, want int
	}{
		{30, 4, 8},
		{32, 4, 8},
		{33, 4, 9},
		{1, 4, 1},
		{0, 4, 0},
		{0, 0, 0},
		{7, 1, 7},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, inventory.ParentsRequired(c.qty, c.ppp), "qty=%d ppp=%d", c.qty, c.ppp)
	}
}

func TestParentsRequired_YieldInvalido(t *testing.T) {
	assert.Negative(t, inventory.ParentsRequired(5, 0))
}

// ──────────────────────────────────────────────────────────────────────────────
// Precios
// ──────────────────────────────────────────────────────────────────────────────

func TestSkidPrice_RelacionUnoTres(t *testing.T) {
	got := inventory.SkidPrice(d("1500"), d("400.50"))
	assert.True(t, got.Equal(d("2701.50")), "got %s", got)
}

func TestMaterialCost(t *testing.T) {
	got := inventory.MaterialCost(3, d("2700"), []inventory.CostLine{
		{Quantity: d("5"), UnitPrice: d("1000")},
		{Quantity: d("9"), UnitPrice: d("300")},
		{Quantity: d("0.25"), UnitPrice: d("80")},
		{Quantity: d("0"), UnitPrice: d("99999")},
	})
	// 8100 + 5000 + 2700 + 20
	assert.True(t, got.Equal(d("15820")), "got %s", got)
}

func TestMaterialCost_SinPatines(t *testing.T) {
	got := inventory.MaterialCost(0, d("2700"), nil)
	assert.True(t, got.IsZero())
}

func TestOrderTotal(t *testing.T) {
	got := inventory.OrderTotal([]int{2, 10}, []decimal.Decimal{d("15820"), d("1000.5")})
	assert.True(t, got.Equal(d("41645")), "got %s", got)
}
