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

func TestMaterial_Create_TablaSinLargo(t *testing.T) {
	f := newFixture(inventory.Options{})
	_, err := f.materials.Create(context.Background(), dto.CreateMaterialRequest{
		Category: "tabla", Title: "Tabla sin medida", Stock: 1,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidLength)
}

func TestMaterial_Create_ClavoSinLargo(t *testing.T) {
	f := newFixture(inventory.Options{})
	m, err := f.materials.Create(context.Background(), dto.CreateMaterialRequest{
		Category: "clavo", Title: "Clavo 2 pulgadas", Stock: 5000, UnitPrice: d("12.5"),
	})
	require.NoError(t, err)
	assert.Equal(t, "clavo", m.Category)
	assert.Equal(t, 5000, f.store.Stock(entity.StockMaterial, m.ID))
}

func TestMaterial_Update_AjusteDeExistencia(t *testing.T) {
	f := newFixture(inventory.Options{})
	ctx := context.Background()
	m := f.material(t, "tabla", "Tabla", 10, "200", "8000")

	stock := 4
	title := "Tabla pino"
	out, err := f.materials.Update(ctx, m.ID, dto.UpdateMaterialRequest{Stock: &stock, Title: &title})
	require.NoError(t, err)
	assert.Equal(t, 4, out.Stock)
	assert.Equal(t, "Tabla pino", out.Title)
	assert.Equal(t, 4, f.store.Stock(entity.StockMaterial, m.ID))

	stock = 12
	_, err = f.materials.Update(ctx, m.ID, dto.UpdateMaterialRequest{Stock: &stock})
	require.NoError(t, err)
	assert.Equal(t, 12, f.store.Stock(entity.StockMaterial, m.ID))
}

func TestMaterial_Delete_BloqueadoPorPiezaDerivada(t *testing.T) {
	f := newFixture(inventory.Options{})
	ctx := context.Background()
	m := f.material(t, "tabla", "Tabla", 10, "200", "8000")
	_, err := f.planks.Create(ctx, dto.CreateDerivedPartRequest{
		MaterialID: m.ID, Length: d("48"), Width: d("10"), Thickness: d("2"), Quantity: 1,
	})
	require.NoError(t, err)

	err = f.materials.Delete(ctx, m.ID)
	var refErr *domain.ReferencedError
	require.ErrorAs(t, err, &refErr)
	assert.Equal(t, []string{"tipo_tablas 48 x 10 x 2"}, refErr.Titles)
}

func TestMaterial_List_PorCategoria(t *testing.T) {
	f := newFixture(inventory.Options{})
	ctx := context.Background()
	f.material(t, "tabla", "Tabla", 10, "200", "8000")
	f.material(t, "clavo", "Clavo", 10, "", "10")
	f.material(t, "clavo", "Grapa", 10, "", "5")

	clavos, err := f.materials.List(ctx, "clavo", dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, clavos, 2)
	assert.Equal(t, "Clavo", clavos[0].Title)

	_, err = f.materials.List(ctx, "madera", dto.PageRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
