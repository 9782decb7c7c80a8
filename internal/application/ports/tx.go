package ports

import (
	"context"

	"github.com/jhoicas/imanod-api/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una transacción, pasando repositorios atados a ella.
// Si fn devuelve error se hace Rollback; si no, Commit y luego los efectos AfterCommit.
type TxRunner interface {
	Run(ctx context.Context, fn func(r *repository.Repos) error) error
}
