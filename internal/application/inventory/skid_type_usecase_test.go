package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/imanod-api/internal/application/dto"
	"github.com/jhoicas/imanod-api/internal/application/inventory"
	"github.com/jhoicas/imanod-api/internal/domain"
	"github.com/jhoicas/imanod-api/internal/domain/entity"
)

type skidParents struct {
	plank, peg *dto.DerivedPartResponse
}

// parentsFor crea una tipo_tabla y un tipo_taco con las existencias indicadas.
func (f *fixture) parentsFor(t *testing.T, planks, pegs int) skidParents {
	t.Helper()
	ctx := context.Background()
	tabla := f.material(t, "tabla", "Tabla 120", 100, "120", "6000")
	poste := f.material(t, "poste", "Poste 240", 100, "240", "9000")
	plank, err := f.planks.Create(ctx, dto.CreateDerivedPartRequest{
		MaterialID: tabla.ID, Length: d("100"), UnitPrice: d("2000"), Quantity: planks,
	})
	require.NoError(t, err)
	peg, err := f.pegs.Create(ctx, dto.CreateDerivedPartRequest{
		MaterialID: poste.ID, Length: d("9.5"), UnitPrice: d("500"), Quantity: pegs,
	})
	require.NoError(t, err)
	return skidParents{plank: plank, peg: peg}
}

func TestSkidType_Create_ConsumeUnoATres(t *testing.T) {
	f := newFixture(inventory.Options{})
	p := f.parentsFor(t, 10, 30)

	skid, err := f.skids.Create(context.Background(), dto.CreateSkidTypeRequest{
		PlankTypeID: p.plank.ID,
		PegTypeID:   p.peg.ID,
		Title:       "Patín estándar",
		Quantity:    4,
	})
	require.NoError(t, err)
	assert.Equal(t, 4, skid.Stock)
	assert.True(t, skid.UnitPrice.Equal(d("3500")), skid.UnitPrice.String())
	assert.Equal(t, 6, f.store.Stock(entity.StockPlankType, p.plank.ID))
	assert.Equal(t, 18, f.store.Stock(entity.StockPegType, p.peg.ID))
}

func TestSkidType_Create_TacosInsuficientes(t *testing.T) {
	f := newFixture(inventory.Options{})
	p := f.parentsFor(t, 20, 30)

	_, err := f.skids.Create(context.Background(), dto.CreateSkidTypeRequest{
		PlankTypeID: p.plank.ID,
		PegTypeID:   p.peg.ID,
		Title:       "Patín grande",
		Quantity:    11,
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 20, f.store.Stock(entity.StockPlankType, p.plank.ID))
	assert.Equal(t, 30, f.store.Stock(entity.StockPegType, p.peg.ID))
}

func TestSkidType_Update_AjustaDiferencia(t *testing.T) {
	f := newFixture(inventory.Options{CreditBack: true})
	ctx := context.Background()
	p := f.parentsFor(t, 10, 30)
	skid, err := f.skids.Create(ctx, dto.CreateSkidTypeRequest{
		PlankTypeID: p.plank.ID, PegTypeID: p.peg.ID, Title: "Patín", Quantity: 4,
	})
	require.NoError(t, err)

	qty := 6
	_, err = f.skids.Update(ctx, skid.ID, dto.UpdateSkidTypeRequest{Quantity: &qty})
	require.NoError(t, err)
	assert.Equal(t, 4, f.store.Stock(entity.StockPlankType, p.plank.ID))
	assert.Equal(t, 12, f.store.Stock(entity.StockPegType, p.peg.ID))

	qty = 1
	_, err = f.skids.Update(ctx, skid.ID, dto.UpdateSkidTypeRequest{Quantity: &qty})
	require.NoError(t, err)
	assert.Equal(t, 9, f.store.Stock(entity.StockPlankType, p.plank.ID))
	assert.Equal(t, 27, f.store.Stock(entity.StockPegType, p.peg.ID))
}

func TestSkidType_Delete_BloqueaPiezaMadre(t *testing.T) {
	f := newFixture(inventory.Options{})
	ctx := context.Background()
	p := f.parentsFor(t, 10, 30)
	_, err := f.skids.Create(ctx, dto.CreateSkidTypeRequest{
		PlankTypeID: p.plank.ID, PegTypeID: p.peg.ID, Title: "Patín", Quantity: 1,
	})
	require.NoError(t, err)

	err = f.pegs.Delete(ctx, p.peg.ID)
	var refErr *domain.ReferencedError
	require.ErrorAs(t, err, &refErr)
	assert.Equal(t, []string{"Patín"}, refErr.Titles)
}
