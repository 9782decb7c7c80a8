package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/imanod-api/internal/application/dto"
	"github.com/jhoicas/imanod-api/internal/application/inventory"
	"github.com/jhoicas/imanod-api/internal/domain"
)

func TestPrototype_Create_CostoDeMateriales(t *testing.T) {
	f := newFixture(inventory.Options{})
	ctx := context.Background()
	p := f.parentsFor(t, 10, 30)
	skid, err := f.skids.Create(ctx, dto.CreateSkidTypeRequest{
		PlankTypeID: p.plank.ID, PegTypeID: p.peg.ID, Title: "Patín", Quantity: 1,
	})
	require.NoError(t, err)
	clavo := f.material(t, "clavo", "Clavo 2\"", 1000, "", "10")

	proto, err := f.prototypes.Create(ctx, dto.PrototypeRequest{
		Title:      "Estiba 120x100",
		SkidTypeID: &skid.ID,
		SkidCount:  3,
		Planks:     []dto.BOMLineRequest{{ComponentID: p.plank.ID, Quantity: d("7")}},
		Nails:      []dto.BOMLineRequest{{ComponentID: clavo.ID, Quantity: d("60")}},
	})
	require.NoError(t, err)
	// 3 patines x 3500 + 7 tablas x 2000 + 60 clavos x 10
	assert.True(t, proto.MaterialCost.Equal(d("25100")), proto.MaterialCost.String())
	assert.True(t, proto.Active)
	require.Len(t, proto.Planks, 1)
	require.Len(t, proto.Nails, 1)
	assert.Empty(t, proto.Fibers)
}

func TestPrototype_Create_ComponenteDeCategoriaIncorrecta(t *testing.T) {
	f := newFixture(inventory.Options{})
	tabla := f.material(t, "tabla", "Tabla", 10, "200", "8000")

	_, err := f.prototypes.Create(context.Background(), dto.PrototypeRequest{
		Title: "Estiba",
		Nails: []dto.BOMLineRequest{{ComponentID: tabla.ID, Quantity: d("1")}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPrototype_Create_PatinesSinTipo(t *testing.T) {
	f := newFixture(inventory.Options{})
	_, err := f.prototypes.Create(context.Background(), dto.PrototypeRequest{Title: "Estiba", SkidCount: 2})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPrototype_Deactivate_OcultaDeLaLista(t *testing.T) {
	f := newFixture(inventory.Options{})
	ctx := context.Background()
	a, err := f.prototypes.Create(ctx, dto.PrototypeRequest{Title: "A"})
	require.NoError(t, err)
	_, err = f.prototypes.Create(ctx, dto.PrototypeRequest{Title: "B"})
	require.NoError(t, err)

	require.NoError(t, f.prototypes.Deactivate(ctx, a.ID))

	active, err := f.prototypes.List(ctx, false, 0, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "B", active[0].Title)

	all, err := f.prototypes.List(ctx, true, 0, dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	got, err := f.prototypes.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)
}
