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

func TestReplenishment_PrioridadPorDeficit(t *testing.T) {
	f := newFixture(inventory.Options{})
	ctx := context.Background()
	for _, in := range []dto.CreateMaterialRequest{
		{Category: "clavo", Title: "Clavo", Stock: 5, MinStock: 10},
		{Category: "fibra", Title: "Fibra", Stock: 0, MinStock: 2},
		{Category: "clavo", Title: "Grapa", Stock: 50, MinStock: 10},
		{Category: "clavo", Title: "Tornillo", Stock: 90, MinStock: 100},
	} {
		_, err := f.materials.Create(ctx, in)
		require.NoError(t, err)
	}

	uc := inventory.NewReplenishmentUseCase(f.store)
	alerts, err := uc.GenerateReplenishmentList(ctx, "")
	require.NoError(t, err)
	require.Len(t, alerts, 3)
	assert.Equal(t, "Fibra", alerts[0].Label)
	assert.Equal(t, "Clavo", alerts[1].Label)
	assert.Equal(t, 5, alerts[1].Deficit)
	assert.Equal(t, "Tornillo", alerts[2].Label)

	only, err := uc.GenerateReplenishmentList(ctx, "tipo_tacos")
	require.NoError(t, err)
	assert.Empty(t, only)

	_, err = uc.GenerateReplenishmentList(ctx, "bodegas")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
