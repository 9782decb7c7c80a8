package inventory

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/imanod-api/internal/domain"
	"github.com/jhoicas/imanod-api/internal/domain/entity"
	"github.com/jhoicas/imanod-api/internal/domain/inventory"
	"github.com/jhoicas/imanod-api/internal/domain/repository"
)

// PricedLine línea de lista de materiales con el precio vigente del componente.
type PricedLine struct {
	entity.BOMLine
	UnitPrice decimal.Decimal
}

// PrototypeCost calcula el costo de materiales con los precios vigentes de cada componente.
// Valida además que cada componente exista y sea de la categoría correcta.
func PrototypeCost(ctx context.Context, r *repository.Repos, p *entity.Prototype) (decimal.Decimal, []PricedLine, error) {
	skidPrice := decimal.Zero
	if p.SkidTypeID != nil {
		skid, err := r.SkidTypes.GetByID(ctx, *p.SkidTypeID)
		if err != nil {
			return decimal.Zero, nil, fmt.Errorf("tipo_patin %d: %w", *p.SkidTypeID, err)
		}
		skidPrice = skid.UnitPrice
	}
	priced := make([]PricedLine, 0, len(p.Lines))
	costLines := make([]inventory.CostLine, 0, len(p.Lines))
	for _, l := range p.Lines {
		price, err := componentPrice(ctx, r, l)
		if err != nil {
			return decimal.Zero, nil, err
		}
		priced = append(priced, PricedLine{BOMLine: l, UnitPrice: price})
		costLines = append(costLines, inventory.CostLine{Quantity: l.QuantityPerUnit, UnitPrice: price})
	}
	return inventory.MaterialCost(p.SkidCount, skidPrice, costLines), priced, nil
}

func componentPrice(ctx context.Context, r *repository.Repos, l entity.BOMLine) (decimal.Decimal, error) {
	switch l.Kind {
	case entity.BOMPlankType, entity.BOMPegType:
		kind := entity.StockPlankType
		if l.Kind == entity.BOMPegType {
			kind = entity.StockPegType
		}
		part, err := r.Parts(kind).GetByID(ctx, l.ComponentID)
		if err != nil {
			return decimal.Zero, fmt.Errorf("%s %d: %w", kind, l.ComponentID, err)
		}
		return part.UnitPrice, nil
	case entity.BOMNail, entity.BOMFiber:
		want := entity.CategoryNail
		if l.Kind == entity.BOMFiber {
			want = entity.CategoryFiber
		}
		m, err := r.Materials.GetByID(ctx, l.ComponentID)
		if err != nil {
			return decimal.Zero, fmt.Errorf("materia prima %d: %w", l.ComponentID, err)
		}
		if m.Category != want {
			return decimal.Zero, fmt.Errorf("%w: la materia prima %d no es de categoría %s", domain.ErrInvalidInput, m.ID, want)
		}
		return m.UnitPrice, nil
	}
	return decimal.Zero, domain.ErrInvalidInput
}
