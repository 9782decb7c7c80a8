package orders

import (
	"context"
	"time"

	"github.com/jhoicas/imanod-api/internal/application/dto"
	"github.com/jhoicas/imanod-api/internal/application/ports"
	"github.com/jhoicas/imanod-api/internal/domain"
	"github.com/jhoicas/imanod-api/internal/domain/entity"
	"github.com/jhoicas/imanod-api/internal/domain/repository"
)

// CustomerUseCase casos de uso para clientes y proveedores.
type CustomerUseCase struct {
	txRunner ports.TxRunner
}

// NewCustomerUseCase construye el caso de uso.
func NewCustomerUseCase(txRunner ports.TxRunner) *CustomerUseCase {
	return &CustomerUseCase{txRunner: txRunner}
}

// CreateCustomer crea un nuevo cliente. El NIT, si viene, es único.
func (uc *CustomerUseCase) CreateCustomer(ctx context.Context, in dto.CreateCustomerRequest) (*dto.CustomerResponse, error) {
	if in.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	customer := &entity.Customer{
		Name:      in.Name,
		TaxID:     in.TaxID,
		Email:     in.Email,
		Phone:     in.Phone,
		Address:   in.Address,
		CreatedAt: time.Now(),
	}
	err := uc.txRunner.Run(ctx, func(r *repository.Repos) error {
		return r.Customers.Create(ctx, customer)
	})
	if err != nil {
		return nil, err
	}
	return toCustomerResponse(customer), nil
}

// GetCustomer obtiene un cliente.
func (uc *CustomerUseCase) GetCustomer(ctx context.Context, id int64) (*dto.CustomerResponse, error) {
	var out *dto.CustomerResponse
	err := uc.txRunner.Run(ctx, func(r *repository.Repos) error {
		c, err := r.Customers.GetByID(ctx, id)
		if err != nil {
			return err
		}
		out = toCustomerResponse(c)
		return nil
	})
	return out, err
}

// ListCustomers lista clientes; search filtra por nombre.
func (uc *CustomerUseCase) ListCustomers(ctx context.Context, search string, page dto.PageRequest) ([]*dto.CustomerResponse, error) {
	page.DefaultPage()
	q := repository.ListQuery{Limit: page.Limit, Offset: page.Offset}
	if search != "" {
		q = q.Where("nombre", repository.OpLike, search)
	}
	var out []*dto.CustomerResponse
	err := uc.txRunner.Run(ctx, func(r *repository.Repos) error {
		list, err := r.Customers.List(ctx, q)
		if err != nil {
			return err
		}
		out = make([]*dto.CustomerResponse, 0, len(list))
		for _, c := range list {
			out = append(out, toCustomerResponse(c))
		}
		return nil
	})
	return out, err
}

// CreateSupplier crea un nuevo proveedor.
func (uc *CustomerUseCase) CreateSupplier(ctx context.Context, in dto.CreateSupplierRequest) (*dto.SupplierResponse, error) {
	if in.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	supplier := &entity.Supplier{
		Name:      in.Name,
		TaxID:     in.TaxID,
		Email:     in.Email,
		Phone:     in.Phone,
		CreatedAt: time.Now(),
	}
	err := uc.txRunner.Run(ctx, func(r *repository.Repos) error {
		return r.Suppliers.Create(ctx, supplier)
	})
	if err != nil {
		return nil, err
	}
	return toSupplierResponse(supplier), nil
}

// ListSuppliers lista proveedores.
func (uc *CustomerUseCase) ListSuppliers(ctx context.Context, search string, page dto.PageRequest) ([]*dto.SupplierResponse, error) {
	page.DefaultPage()
	q := repository.ListQuery{Limit: page.Limit, Offset: page.Offset}
	if search != "" {
		q = q.Where("nombre", repository.OpLike, search)
	}
	var out []*dto.SupplierResponse
	err := uc.txRunner.Run(ctx, func(r *repository.Repos) error {
		list, err := r.Suppliers.List(ctx, q)
		if err != nil {
			return err
		}
		out = make([]*dto.SupplierResponse, 0, len(list))
		for _, s := range list {
			out = append(out, toSupplierResponse(s))
		}
		return nil
	})
	return out, err
}

func toCustomerResponse(c *entity.Customer) *dto.CustomerResponse {
	return &dto.CustomerResponse{
		ID:        c.ID,
		Name:      c.Name,
		TaxID:     c.TaxID,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
		CreatedAt: c.CreatedAt,
	}
}

func toSupplierResponse(s *entity.Supplier) *dto.SupplierResponse {
	return &dto.SupplierResponse{
		ID:        s.ID,
		Name:      s.Name,
		TaxID:     s.TaxID,
		Email:     s.Email,
		Phone:     s.Phone,
		CreatedAt: s.CreatedAt,
	}
}
