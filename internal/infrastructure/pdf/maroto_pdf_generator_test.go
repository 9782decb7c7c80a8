package pdf

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/imanod-api/internal/application/orders"
	"github.com/jhoicas/imanod-api/internal/domain/entity"
)

func TestFormatMoney(t *testing.T) {
	cases := map[string]string{
		"0":        "0",
		"950":      "950",
		"25000":    "25.000",
		"1000000":  "1.000.000",
		"-1000000": "-1.000.000",
	}
	for in, want := range cases {
		assert.Equal(t, want, formatMoney(in), in)
	}
}

func TestGenerateSalesOrderPDF(t *testing.T) {
	g := NewMarotoPDFGenerator("")
	order := &entity.SalesOrder{
		ID:        12,
		ClientID:  3,
		OrderedAt: time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC),
		Total:     decimal.NewFromInt(251000),
	}
	lines := []orders.SalesOrderLineForPDF{{
		SalesOrderLine: entity.SalesOrderLine{PrototypeID: 1, Quantity: 10, UnitCost: decimal.NewFromInt(25100)},
		PrototypeTitle: "Estiba 120x100",
	}}
	out, err := g.GenerateSalesOrderPDF(context.Background(), order, &entity.Customer{Name: "Ferretería"}, lines)
	require.NoError(t, err)
	require.Greater(t, len(out), 4)
	assert.Equal(t, "%PDF", string(out[:4]))
}
