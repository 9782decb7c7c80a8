package inventory_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/imanod-api/internal/application/dto"
	"github.com/jhoicas/imanod-api/internal/application/inventory"
	"github.com/jhoicas/imanod-api/internal/application/media"
	"github.com/jhoicas/imanod-api/internal/infrastructure/memory"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// fakeStorage guarda llaves secuenciales sin tocar disco.
type fakeStorage struct {
	mu   sync.Mutex
	n    int
	fail bool
}

func (s *fakeStorage) Put(_ context.Context, folder, filename string, _ []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return "", fmt.Errorf("bucket caído")
	}
	s.n++
	return fmt.Sprintf("%s/%d-%s", folder, s.n, filename), nil
}

func (s *fakeStorage) Delete(context.Context, string) error { return nil }

// fakeQueue registra las llaves encoladas para borrado.
type fakeQueue struct {
	mu   sync.Mutex
	keys []string
}

func (q *fakeQueue) Enqueue(_ context.Context, key string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.keys = append(q.keys, key)
}

func (q *fakeQueue) Keys() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]string(nil), q.keys...)
}

type fixture struct {
	store      *memory.Store
	queue      *fakeQueue
	storage    *fakeStorage
	materials  *inventory.MaterialUseCase
	planks     *inventory.DerivedPartUseCase
	pegs       *inventory.DerivedPartUseCase
	skids      *inventory.SkidTypeUseCase
	prototypes *inventory.PrototypeUseCase
}

func newFixture(opts inventory.Options) *fixture {
	store := memory.NewStore()
	queue := &fakeQueue{}
	storage := &fakeStorage{}
	photos := media.NewPhotos(storage, queue)
	return &fixture{
		store:      store,
		queue:      queue,
		storage:    storage,
		materials:  inventory.NewMaterialUseCase(store, photos),
		planks:     inventory.NewDerivedPartUseCase(store, photos, "tipo_tablas", opts),
		pegs:       inventory.NewDerivedPartUseCase(store, photos, "tipo_tacos", opts),
		skids:      inventory.NewSkidTypeUseCase(store, photos, opts),
		prototypes: inventory.NewPrototypeUseCase(store, photos),
	}
}

func (f *fixture) material(t *testing.T, category, title string, stock int, length, price string) *dto.MaterialResponse {
	t.Helper()
	in := dto.CreateMaterialRequest{
		Category:  category,
		Title:     title,
		UnitPrice: d(price),
		Stock:     stock,
	}
	if length != "" {
		in.Length = d(length)
	}
	m, err := f.materials.Create(context.Background(), in)
	require.NoError(t, err)
	return m
}

func photo(name string) *dto.FileUpload {
	return &dto.FileUpload{Filename: name, Data: []byte{0xFF, 0xD8, 0xFF}}
}
