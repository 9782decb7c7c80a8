package inventory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/imanod-api/internal/application/dto"
	"github.com/jhoicas/imanod-api/internal/application/media"
	"github.com/jhoicas/imanod-api/internal/application/ports"
	"github.com/jhoicas/imanod-api/internal/domain"
	"github.com/jhoicas/imanod-api/internal/domain/entity"
	"github.com/jhoicas/imanod-api/internal/domain/repository"
)

// PrototypeUseCase administra prototipos de estiba. Los prototipos nunca se borran: se desactivan.
type PrototypeUseCase struct {
	txRunner ports.TxRunner
	photos   *media.Photos
}

// NewPrototypeUseCase construye el caso de uso.
func NewPrototypeUseCase(txRunner ports.TxRunner, photos *media.Photos) *PrototypeUseCase {
	return &PrototypeUseCase{txRunner: txRunner, photos: photos}
}

// Create valida los componentes y crea el prototipo activo.
func (uc *PrototypeUseCase) Create(ctx context.Context, in dto.PrototypeRequest) (*dto.PrototypeResponse, error) {
	lines, err := linesFromRequest(in)
	if err != nil {
		return nil, err
	}
	photoRef, err := uc.photos.Upload(ctx, media.FolderPrototypes, in.Photo)
	if err != nil {
		return nil, err
	}
	var out *dto.PrototypeResponse
	err = uc.photos.Guard(ctx, photoRef, func() error {
		return uc.txRunner.Run(ctx, func(r *repository.Repos) error {
			if in.ClientID != nil {
				if _, err := r.Customers.GetByID(ctx, *in.ClientID); err != nil {
					return err
				}
			}
			now := time.Now()
			p := &entity.Prototype{
				Title:      in.Title,
				Dimensions: in.Dimensions,
				SkidTypeID: in.SkidTypeID,
				SkidCount:  in.SkidCount,
				ClientID:   in.ClientID,
				PhotoRef:   photoRef,
				Active:     true,
				Lines:      lines,
				CreatedAt:  now,
				UpdatedAt:  now,
			}
			cost, priced, err := PrototypeCost(ctx, r, p)
			if err != nil {
				return err
			}
			if err := r.Prototypes.Create(ctx, p); err != nil {
				return err
			}
			out = toPrototypeResponse(p, priced, cost)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Update reemplaza los datos y la lista de materiales; conserva el estado activo.
func (uc *PrototypeUseCase) Update(ctx context.Context, id int64, in dto.PrototypeRequest) (*dto.PrototypeResponse, error) {
	lines, err := linesFromRequest(in)
	if err != nil {
		return nil, err
	}
	photoRef, err := uc.photos.Upload(ctx, media.FolderPrototypes, in.Photo)
	if err != nil {
		return nil, err
	}
	var out *dto.PrototypeResponse
	err = uc.photos.Guard(ctx, photoRef, func() error {
		return uc.txRunner.Run(ctx, func(r *repository.Repos) error {
			p, err := r.Prototypes.GetByID(ctx, id)
			if err != nil {
				return err
			}
			if in.ClientID != nil {
				if _, err := r.Customers.GetByID(ctx, *in.ClientID); err != nil {
					return err
				}
			}
			p.Title = in.Title
			p.Dimensions = in.Dimensions
			p.SkidTypeID = in.SkidTypeID
			p.SkidCount = in.SkidCount
			p.ClientID = in.ClientID
			p.Lines = lines
			if photoRef != "" {
				uc.photos.DiscardAfterCommit(r, p.PhotoRef)
				p.PhotoRef = photoRef
			}
			p.UpdatedAt = time.Now()
			cost, priced, err := PrototypeCost(ctx, r, p)
			if err != nil {
				return err
			}
			if err := r.Prototypes.Update(ctx, p); err != nil {
				return err
			}
			out = toPrototypeResponse(p, priced, cost)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Deactivate borrado lógico (active=false). La lista de materiales y las referencias se conservan.
func (uc *PrototypeUseCase) Deactivate(ctx context.Context, id int64) error {
	return uc.txRunner.Run(ctx, func(r *repository.Repos) error {
		return r.Prototypes.SetActive(ctx, id, false)
	})
}

// GetByID obtiene un prototipo con su costo de materiales vigente.
func (uc *PrototypeUseCase) GetByID(ctx context.Context, id int64) (*dto.PrototypeResponse, error) {
	var out *dto.PrototypeResponse
	err := uc.txRunner.Run(ctx, func(r *repository.Repos) error {
		p, err := r.Prototypes.GetByID(ctx, id)
		if err != nil {
			return err
		}
		cost, priced, err := PrototypeCost(ctx, r, p)
		if err != nil {
			return err
		}
		out = toPrototypeResponse(p, priced, cost)
		return nil
	})
	return out, err
}

// List lista prototipos; includeInactive incluye los desactivados, clientID > 0 filtra por cliente.
func (uc *PrototypeUseCase) List(ctx context.Context, includeInactive bool, clientID int64, page dto.PageRequest) ([]*dto.PrototypeResponse, error) {
	page = normalizePage(page)
	q := repository.ListQuery{Limit: page.Limit, Offset: page.Offset}
	if !includeInactive {
		q = q.Where("activo", repository.OpEq, true)
	}
	if clientID > 0 {
		q = q.Where("cliente_id", repository.OpEq, clientID)
	}
	var out []*dto.PrototypeResponse
	err := uc.txRunner.Run(ctx, func(r *repository.Repos) error {
		items, err := r.Prototypes.List(ctx, q)
		if err != nil {
			return err
		}
		out = make([]*dto.PrototypeResponse, 0, len(items))
		for _, p := range items {
			cost, priced, err := PrototypeCost(ctx, r, p)
			if err != nil {
				return err
			}
			out = append(out, toPrototypeResponse(p, priced, cost))
		}
		return nil
	})
	return out, err
}

func linesFromRequest(in dto.PrototypeRequest) ([]entity.BOMLine, error) {
	if in.Title == "" || in.SkidCount < 0 {
		return nil, domain.ErrInvalidInput
	}
	if in.SkidCount > 0 && in.SkidTypeID == nil {
		return nil, domain.ErrInvalidInput
	}
	var lines []entity.BOMLine
	groups := []struct {
		kind  entity.BOMKind
		items []dto.BOMLineRequest
	}{
		{entity.BOMPlankType, in.Planks},
		{entity.BOMPegType, in.Pegs},
		{entity.BOMNail, in.Nails},
		{entity.BOMFiber, in.Fibers},
	}
	for _, g := range groups {
		for _, l := range g.items {
			if l.ComponentID <= 0 || !l.Quantity.IsPositive() {
				return nil, domain.ErrInvalidInput
			}
			lines = append(lines, entity.BOMLine{
				Kind:            g.kind,
				ComponentID:     l.ComponentID,
				QuantityPerUnit: l.Quantity,
				Notes:           l.Notes,
			})
		}
	}
	return lines, nil
}

func toPrototypeResponse(p *entity.Prototype, priced []PricedLine, cost decimal.Decimal) *dto.PrototypeResponse {
	out := &dto.PrototypeResponse{
		ID:         p.ID,
		Title:      p.Title,
		Dimensions: p.Dimensions,
		SkidTypeID: p.SkidTypeID,
		SkidCount:  p.SkidCount,
		ClientID:   p.ClientID,
		PhotoRef:   p.PhotoRef,
		Active:     p.Active,
		Planks:     []dto.BOMLineResponse{},
		Pegs:       []dto.BOMLineResponse{},
		Nails:      []dto.BOMLineResponse{},
		Fibers:     []dto.BOMLineResponse{},
		CreatedAt:  p.CreatedAt,
	}
	out.MaterialCost = dto.Money(cost)
	for _, l := range priced {
		line := dto.BOMLineResponse{
			ComponentID: l.ComponentID,
			Quantity:    l.QuantityPerUnit,
			UnitPrice:   dto.Money(l.UnitPrice),
			Notes:       l.Notes,
		}
		switch l.Kind {
		case entity.BOMPlankType:
			out.Planks = append(out.Planks, line)
		case entity.BOMPegType:
			out.Pegs = append(out.Pegs, line)
		case entity.BOMNail:
			out.Nails = append(out.Nails, line)
		case entity.BOMFiber:
			out.Fibers = append(out.Fibers, line)
		}
	}
	return out
}
