package credit_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/imanod-api/internal/domain/credit"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestDistribute_FIFO(t *testing.T) {
	// S1 pendiente 100 (más antigua), S2 pendiente 50; pago de 120.
	portions, rest := credit.Distribute(d("120"), []credit.Bucket{
		{ID: 1, Available: d("100")},
		{ID: 2, Available: d("50")},
	})
	require.Len(t, portions, 2)
	assert.Equal(t, int64(1), portions[0].ID)
	assert.True(t, portions[0].Amount.Equal(d("100")))
	assert.Equal(t, int64(2), portions[1].ID)
	assert.True(t, portions[1].Amount.Equal(d("20")))
	assert.True(t, rest.IsZero())
}

func TestDistribute_Sobrante(t *testing.T) {
	portions, rest := credit.Distribute(d("200"), []credit.Bucket{
		{ID: 7, Available: d("30.25")},
	})
	require.Len(t, portions, 1)
	assert.True(t, portions[0].Amount.Equal(d("30.25")))
	assert.True(t, rest.Equal(d("169.75")))
}

func TestDistribute_OmiteBucketsSinCapacidad(t *testing.T) {
	portions, rest := credit.Distribute(d("10"), []credit.Bucket{
		{ID: 1, Available: decimal.Zero},
		{ID: 2, Available: d("-5")},
		{ID: 3, Available: d("4")},
		{ID: 4, Available: d("100")},
	})
	require.Len(t, portions, 2)
	assert.Equal(t, int64(3), portions[0].ID)
	assert.Equal(t, int64(4), portions[1].ID)
	assert.True(t, portions[1].Amount.Equal(d("6")))
	assert.True(t, rest.IsZero())
}

func TestDistribute_MontoNoPositivo(t *testing.T) {
	portions, rest := credit.Distribute(d("-3"), []credit.Bucket{{ID: 1, Available: d("10")}})
	assert.Empty(t, portions)
	assert.True(t, rest.IsZero())
}

// La suma repartida más el sobrante siempre es igual al monto de entrada.
func TestDistribute_Conservacion(t *testing.T) {
	buckets := []credit.Bucket{
		{ID: 1, Available: d("33.33")},
		{ID: 2, Available: d("0.01")},
		{ID: 3, Available: d("12")},
	}
	for _, amount := range []string{"0", "0.01", "33.34", "45.34", "45.35", "1000"} {
		portions, rest := credit.Distribute(d(amount), buckets)
		assert.True(t, credit.Sum(portions).Add(rest).Equal(d(amount)), "monto %s", amount)
		for i, p := range portions {
			assert.True(t, p.Amount.LessThanOrEqual(buckets[p.ID-1].Available), "porción %d", i)
		}
	}
}
