package inventory

import (
	"context"
	"sort"

	"github.com/jhoicas/imanod-api/internal/application/dto"
	"github.com/jhoicas/imanod-api/internal/domain"
	"github.com/jhoicas/imanod-api/internal/domain/entity"
	"github.com/jhoicas/imanod-api/internal/domain/repository"
)

// ReplenishmentUseCase genera la lista de reposición: filas de cualquier tabla de existencias
// por debajo de su mínimo, priorizadas por déficit relativo.
type ReplenishmentUseCase struct {
	alertRepo repository.AlertRepository
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(alertRepo repository.AlertRepository) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{alertRepo: alertRepo}
}

// GenerateReplenishmentList devuelve las alertas de existencia. kind vacío incluye todas las tablas.
func (uc *ReplenishmentUseCase) GenerateReplenishmentList(ctx context.Context, kind string) ([]dto.StockAlertResponse, error) {
	if kind != "" && !entity.StockKind(kind).Valid() {
		return nil, domain.ErrInvalidInput
	}

	// 1. Filas bajo mínimo
	rawItems, err := uc.alertRepo.ListBelowMinimum(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]dto.StockAlertResponse, 0, len(rawItems))
	for _, a := range rawItems {
		if kind != "" && string(a.Kind) != kind {
			continue
		}
		out = append(out, dto.StockAlertResponse{
			Kind:     string(a.Kind),
			ID:       a.ID,
			Label:    a.Label,
			Stock:    a.Stock,
			MinStock: a.MinStock,
			Deficit:  a.Deficit(),
		})
	}

	// 2. Ordenar: primero las filas agotadas, luego mayor déficit relativo,
	//    finalmente mayor déficit absoluto.
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if (a.Stock == 0) != (b.Stock == 0) {
			return a.Stock == 0
		}
		// a.Deficit/a.MinStock > b.Deficit/b.MinStock sin divisiones
		ra, rb := a.Deficit*b.MinStock, b.Deficit*a.MinStock
		if ra != rb {
			return ra > rb
		}
		return a.Deficit > b.Deficit
	})
	return out, nil
}
