// Package media coordina la subida de fotos con las transacciones: la subida ocurre antes
// de la transacción y los borrados se encolan solo después del commit.
package media

import (
	"context"
	"fmt"

	"github.com/jhoicas/imanod-api/internal/application/dto"
	"github.com/jhoicas/imanod-api/internal/application/ports"
	"github.com/jhoicas/imanod-api/internal/domain"
	"github.com/jhoicas/imanod-api/internal/domain/repository"
)

// Carpetas de almacenamiento por tipo de registro.
const (
	FolderMaterials  = "materiales"
	FolderParts      = "tipos"
	FolderSkids      = "patines"
	FolderPrototypes = "prototipos"
	FolderFuegoYa    = "fuegoya"
)

// Photos sube archivos y programa su limpieza. Un *Photos nil no sube ni borra nada.
type Photos struct {
	storage ports.ObjectStorage
	cleanup ports.CleanupQueue
}

// NewPhotos construye el coordinador.
func NewPhotos(storage ports.ObjectStorage, cleanup ports.CleanupQueue) *Photos {
	return &Photos{storage: storage, cleanup: cleanup}
}

// Upload guarda el archivo y devuelve su llave; sin archivo devuelve "".
// Un fallo aquí es fatal para la operación: el registro apuntaría a un objeto inexistente.
func (p *Photos) Upload(ctx context.Context, folder string, f *dto.FileUpload) (string, error) {
	if f == nil || len(f.Data) == 0 {
		return "", nil
	}
	if p == nil || p.storage == nil {
		return "", fmt.Errorf("%w: almacenamiento no configurado", domain.ErrStorage)
	}
	key, err := p.storage.Put(ctx, folder, f.Filename, f.Data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	return key, nil
}

// Discard encola el borrado inmediato de una llave, ej. la foto recién subida de una transacción fallida.
func (p *Photos) Discard(ctx context.Context, key string) {
	if p == nil || p.cleanup == nil || key == "" {
		return
	}
	p.cleanup.Enqueue(ctx, key)
}

// DiscardAfterCommit encola el borrado de la llave cuando la transacción confirme.
func (p *Photos) DiscardAfterCommit(r *repository.Repos, key string) {
	if p == nil || key == "" {
		return
	}
	r.AfterCommit(func(ctx context.Context) { p.Discard(ctx, key) })
}

// Guard ejecuta run y, si falla, descarta la llave subida antes de la transacción.
func (p *Photos) Guard(ctx context.Context, uploaded string, run func() error) error {
	err := run()
	if err != nil {
		p.Discard(ctx, uploaded)
	}
	return err
}
