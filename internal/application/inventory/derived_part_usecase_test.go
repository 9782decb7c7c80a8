package inventory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/imanod-api/internal/application/dto"
	"github.com/jhoicas/imanod-api/internal/application/inventory"
	"github.com/jhoicas/imanod-api/internal/domain"
	"github.com/jhoicas/imanod-api/internal/domain/entity"
)

// ─── Create ──────────────────────────────────────────────────────────────────

func TestDerivedPart_Create_DescuentaMadre(t *testing.T) {
	f := newFixture(inventory.Options{})
	ctx := context.Background()
	tabla := f.material(t, "tabla", "Tabla pino 200", 10, "200", "8000")

	part, err := f.planks.Create(ctx, dto.CreateDerivedPartRequest{
		MaterialID: tabla.ID,
		Length:     d("48"),
		Width:      d("10"),
		Thickness:  d("2"),
		UnitPrice:  d("1500"),
		Quantity:   30,
	})
	require.NoError(t, err)
	assert.Equal(t, 4, part.PiecesPerParent)
	assert.Equal(t, 8, part.ParentsConsumed)
	assert.Equal(t, 30, part.Stock)
	assert.Equal(t, 2, f.store.Stock(entity.StockMaterial, tabla.ID))
	assert.Equal(t, 30, f.store.Stock(entity.StockPlankType, part.ID))
}

func TestDerivedPart_Create_StockInsuficienteNoModifica(t *testing.T) {
	f := newFixture(inventory.Options{})
	ctx := context.Background()
	tabla := f.material(t, "tabla", "Tabla corta", 1, "100", "5000")

	_, err := f.planks.Create(ctx, dto.CreateDerivedPartRequest{
		MaterialID: tabla.ID,
		Length:     d("48"),
		Quantity:   5,
		Photo:      photo("tabla.jpg"),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
	assert.Equal(t, 1, f.store.Stock(entity.StockMaterial, tabla.ID))

	list, err := f.planks.List(ctx, tabla.ID, dto.PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, list)

	// La foto subida antes de la transacción se descarta
	assert.Equal(t, []string{"tipos/1-tabla.jpg"}, f.queue.Keys())
}

func TestDerivedPart_Create_LargoInvalido(t *testing.T) {
	f := newFixture(inventory.Options{})
	tabla := f.material(t, "tabla", "Tabla 100", 10, "100", "5000")

	_, err := f.planks.Create(context.Background(), dto.CreateDerivedPartRequest{
		MaterialID: tabla.ID,
		Length:     d("99.6"),
		Quantity:   1,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidLength)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, 10, f.store.Stock(entity.StockMaterial, tabla.ID))
}

func TestDerivedPart_Create_CategoriaIncorrecta(t *testing.T) {
	f := newFixture(inventory.Options{})
	poste := f.material(t, "poste", "Poste eucalipto", 10, "240", "9000")

	_, err := f.planks.Create(context.Background(), dto.CreateDerivedPartRequest{
		MaterialID: poste.ID,
		Length:     d("10"),
		Quantity:   1,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDerivedPart_Create_MadreInexistente(t *testing.T) {
	f := newFixture(inventory.Options{})
	_, err := f.pegs.Create(context.Background(), dto.CreateDerivedPartRequest{
		MaterialID: 99,
		Length:     d("10"),
		Quantity:   1,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDerivedPart_Create_CantidadCeroNoConsume(t *testing.T) {
	f := newFixture(inventory.Options{})
	poste := f.material(t, "poste", "Poste 240", 3, "240", "9000")

	part, err := f.pegs.Create(context.Background(), dto.CreateDerivedPartRequest{
		MaterialID: poste.ID,
		Length:     d("9.5"),
		Quantity:   0,
	})
	require.NoError(t, err)
	assert.Equal(t, 24, part.PiecesPerParent)
	assert.Equal(t, 3, f.store.Stock(entity.StockMaterial, poste.ID))
}

// ─── Update ──────────────────────────────────────────────────────────────────

func TestDerivedPart_Update_AumentoDescuentaDiferencia(t *testing.T) {
	f := newFixture(inventory.Options{})
	ctx := context.Background()
	tabla := f.material(t, "tabla", "Tabla pino 200", 10, "200", "8000")
	part, err := f.planks.Create(ctx, dto.CreateDerivedPartRequest{MaterialID: tabla.ID, Length: d("48"), Quantity: 30})
	require.NoError(t, err)

	qty := 40
	out, err := f.planks.Update(ctx, part.ID, dto.UpdateDerivedPartRequest{Quantity: &qty})
	require.NoError(t, err)
	assert.Equal(t, 2, out.ParentsConsumed)
	assert.Equal(t, 0, f.store.Stock(entity.StockMaterial, tabla.ID))
	assert.Equal(t, 40, f.store.Stock(entity.StockPlankType, part.ID))
}

func TestDerivedPart_Update_AumentoSinExistencia(t *testing.T) {
	f := newFixture(inventory.Options{})
	ctx := context.Background()
	tabla := f.material(t, "tabla", "Tabla pino 200", 10, "200", "8000")
	part, err := f.planks.Create(ctx, dto.CreateDerivedPartRequest{MaterialID: tabla.ID, Length: d("48"), Quantity: 30})
	require.NoError(t, err)

	qty := 60
	_, err = f.planks.Update(ctx, part.ID, dto.UpdateDerivedPartRequest{Quantity: &qty})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 2, f.store.Stock(entity.StockMaterial, tabla.ID))
	assert.Equal(t, 30, f.store.Stock(entity.StockPlankType, part.ID))
}

func TestDerivedPart_Update_ReduccionSinDevolucionPorDefecto(t *testing.T) {
	f := newFixture(inventory.Options{})
	ctx := context.Background()
	tabla := f.material(t, "tabla", "Tabla pino 200", 10, "200", "8000")
	part, err := f.planks.Create(ctx, dto.CreateDerivedPartRequest{MaterialID: tabla.ID, Length: d("48"), Quantity: 30})
	require.NoError(t, err)

	qty := 20
	_, err = f.planks.Update(ctx, part.ID, dto.UpdateDerivedPartRequest{Quantity: &qty})
	require.NoError(t, err)
	assert.Equal(t, 2, f.store.Stock(entity.StockMaterial, tabla.ID))
	assert.Equal(t, 20, f.store.Stock(entity.StockPlankType, part.ID))
}

func TestDerivedPart_Update_ReduccionConDevolucion(t *testing.T) {
	f := newFixture(inventory.Options{CreditBack: true})
	ctx := context.Background()
	tabla := f.material(t, "tabla", "Tabla pino 200", 10, "200", "8000")
	part, err := f.planks.Create(ctx, dto.CreateDerivedPartRequest{MaterialID: tabla.ID, Length: d("48"), Quantity: 30})
	require.NoError(t, err)

	// 30 piezas usan 8 tablas; 20 piezas usan 5: se devuelven 3
	qty := 20
	_, err = f.planks.Update(ctx, part.ID, dto.UpdateDerivedPartRequest{Quantity: &qty})
	require.NoError(t, err)
	assert.Equal(t, 5, f.store.Stock(entity.StockMaterial, tabla.ID))
}

func TestDerivedPart_Update_CambioDeLargo(t *testing.T) {
	f := newFixture(inventory.Options{})
	ctx := context.Background()
	tabla := f.material(t, "tabla", "Tabla pino 200", 20, "200", "8000")
	part, err := f.planks.Create(ctx, dto.CreateDerivedPartRequest{MaterialID: tabla.ID, Length: d("48"), Quantity: 8})
	require.NoError(t, err)
	require.Equal(t, 18, f.store.Stock(entity.StockMaterial, tabla.ID))

	// 99 cm: 2 piezas por tabla, 8 piezas usan 4 tablas (antes 2)
	length := d("99")
	out, err := f.planks.Update(ctx, part.ID, dto.UpdateDerivedPartRequest{Length: &length})
	require.NoError(t, err)
	assert.Equal(t, 2, out.PiecesPerParent)
	assert.Equal(t, 16, f.store.Stock(entity.StockMaterial, tabla.ID))
}

func TestDerivedPart_Update_FotoAnteriorSeBorraTrasCommit(t *testing.T) {
	f := newFixture(inventory.Options{})
	ctx := context.Background()
	tabla := f.material(t, "tabla", "Tabla pino 200", 10, "200", "8000")
	part, err := f.planks.Create(ctx, dto.CreateDerivedPartRequest{
		MaterialID: tabla.ID, Length: d("48"), Quantity: 4, Photo: photo("a.jpg"),
	})
	require.NoError(t, err)
	require.Empty(t, f.queue.Keys())

	out, err := f.planks.Update(ctx, part.ID, dto.UpdateDerivedPartRequest{Photo: photo("b.jpg")})
	require.NoError(t, err)
	assert.Equal(t, "tipos/2-b.jpg", out.PhotoRef)
	assert.Equal(t, []string{"tipos/1-a.jpg"}, f.queue.Keys())
}

func TestDerivedPart_Create_FalloDeAlmacenamiento(t *testing.T) {
	f := newFixture(inventory.Options{})
	f.storage.fail = true
	tabla := f.material(t, "tabla", "Tabla pino 200", 10, "200", "8000")

	_, err := f.planks.Create(context.Background(), dto.CreateDerivedPartRequest{
		MaterialID: tabla.ID, Length: d("48"), Quantity: 4, Photo: photo("a.jpg"),
	})
	assert.ErrorIs(t, err, domain.ErrStorage)
	assert.Equal(t, 10, f.store.Stock(entity.StockMaterial, tabla.ID))
}

// ─── Delete ──────────────────────────────────────────────────────────────────

func TestDerivedPart_Delete_BloqueadoPorPrototipo(t *testing.T) {
	f := newFixture(inventory.Options{})
	ctx := context.Background()
	tabla := f.material(t, "tabla", "Tabla pino 200", 10, "200", "8000")
	part, err := f.planks.Create(ctx, dto.CreateDerivedPartRequest{MaterialID: tabla.ID, Length: d("48"), Quantity: 4})
	require.NoError(t, err)

	_, err = f.prototypes.Create(ctx, dto.PrototypeRequest{
		Title:  "Estiba americana",
		Planks: []dto.BOMLineRequest{{ComponentID: part.ID, Quantity: d("7")}},
	})
	require.NoError(t, err)

	err = f.planks.Delete(ctx, part.ID)
	var refErr *domain.ReferencedError
	require.ErrorAs(t, err, &refErr)
	assert.ErrorIs(t, err, domain.ErrReferenced)
	assert.Equal(t, []string{"Estiba americana"}, refErr.Titles)
	assert.Equal(t, 4, f.store.Stock(entity.StockPlankType, part.ID))
}

func TestDerivedPart_Delete_NoDevuelveExistencia(t *testing.T) {
	f := newFixture(inventory.Options{CreditBack: true})
	ctx := context.Background()
	tabla := f.material(t, "tabla", "Tabla pino 200", 10, "200", "8000")
	part, err := f.planks.Create(ctx, dto.CreateDerivedPartRequest{
		MaterialID: tabla.ID, Length: d("48"), Quantity: 4, Photo: photo("a.jpg"),
	})
	require.NoError(t, err)

	require.NoError(t, f.planks.Delete(ctx, part.ID))
	assert.Equal(t, 9, f.store.Stock(entity.StockMaterial, tabla.ID))
	assert.Equal(t, -1, f.store.Stock(entity.StockPlankType, part.ID))
	assert.Equal(t, []string{"tipos/1-a.jpg"}, f.queue.Keys())

	_, err = f.planks.GetByID(ctx, part.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
