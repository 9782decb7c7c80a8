package credit

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/imanod-api/internal/application/dto"
	"github.com/jhoicas/imanod-api/internal/domain"
	"github.com/jhoicas/imanod-api/internal/domain/credit"
	"github.com/jhoicas/imanod-api/internal/domain/entity"
	"github.com/jhoicas/imanod-api/internal/domain/repository"
)

// RegisterPayment registra un abono y lo reparte sobre las ventas a crédito del cliente,
// de la más antigua a la más reciente. Lo que sobra queda libre en el pago.
func (uc *LedgerUseCase) RegisterPayment(ctx context.Context, in dto.CreatePaymentRequest) (*dto.RegisterPaymentResponse, error) {
	if in.ClientID <= 0 || !in.Amount.IsPositive() {
		return nil, domain.ErrInvalidInput
	}
	var out *dto.RegisterPaymentResponse
	err := uc.txRunner.Run(ctx, func(r *repository.Repos) error {
		now := uc.now()
		if _, err := r.Customers.GetByID(ctx, in.ClientID); err != nil {
			return fmt.Errorf("cliente %d: %w", in.ClientID, err)
		}
		paidAt := now
		if in.PaidAt != nil {
			paidAt = *in.PaidAt
		}
		payment := &entity.FuegoYaPayment{
			ClientID:  in.ClientID,
			Amount:    in.Amount,
			PaidAt:    paidAt,
			Method:    in.Method,
			Note:      in.Note,
			Allocated: decimal.Zero,
		}
		if err := r.Payments.Create(ctx, payment); err != nil {
			return err
		}

		sales, err := r.Sales.ListOutstandingForUpdate(ctx, in.ClientID, 0)
		if err != nil {
			return err
		}
		buckets := make([]credit.Bucket, 0, len(sales))
		for _, s := range sales {
			buckets = append(buckets, credit.Bucket{ID: s.ID, Available: s.Outstanding()})
		}
		portions, unapplied := credit.Distribute(in.Amount, buckets)

		out = &dto.RegisterPaymentResponse{Allocations: make([]dto.AllocationResponse, 0, len(portions))}
		paid := make(map[int64]decimal.Decimal, len(portions))
		for _, portion := range portions {
			a := &entity.Allocation{PaymentID: payment.ID, SaleID: portion.ID, Amount: portion.Amount, AppliedAt: now}
			if err := r.Allocations.Create(ctx, a); err != nil {
				return err
			}
			paid[portion.ID] = portion.Amount
			out.Allocations = append(out.Allocations, toAllocationResponse(a))
		}
		for _, s := range sales {
			amount, ok := paid[s.ID]
			if !ok {
				continue
			}
			s.Allocated = s.Allocated.Add(amount)
			if !s.Outstanding().IsPositive() {
				if err := markPaid(ctx, r, s, now); err != nil {
					return err
				}
			}
		}

		payment.Allocated = credit.Sum(portions)
		out.Payment = toPaymentResponse(payment)
		out.Applied = dto.Money(payment.Allocated)
		out.Unapplied = dto.Money(unapplied)
		return nil
	})
	return out, err
}

// DeletePayment borra el abono y sus aplicaciones. Las ventas que cubría vuelven a crédito
// si quedan con saldo y reciben la capacidad libre de los demás abonos del cliente.
func (uc *LedgerUseCase) DeletePayment(ctx context.Context, id int64) error {
	return uc.txRunner.Run(ctx, func(r *repository.Repos) error {
		now := uc.now()
		if _, err := r.Payments.GetForUpdate(ctx, id); err != nil {
			return err
		}
		allocs, err := r.Allocations.ListByPayment(ctx, id)
		if err != nil {
			return err
		}
		affected := make(map[int64]struct{}, len(allocs))
		for _, a := range allocs {
			if err := r.Allocations.Delete(ctx, a.ID); err != nil {
				return err
			}
			affected[a.SaleID] = struct{}{}
		}
		if err := r.Payments.Delete(ctx, id); err != nil {
			return err
		}

		sales := make([]*entity.FuegoYaSale, 0, len(affected))
		for saleID := range affected {
			s, err := r.Sales.GetForUpdate(ctx, saleID)
			if err != nil {
				return err
			}
			sales = append(sales, s)
		}
		sort.Slice(sales, func(i, j int) bool {
			if !sales[i].Date.Equal(sales[j].Date) {
				return sales[i].Date.Before(sales[j].Date)
			}
			return sales[i].ID < sales[j].ID
		})
		for _, s := range sales {
			if s.State == entity.SalePaid && s.TotalPrice.GreaterThan(s.Allocated) {
				if err := r.Sales.SetState(ctx, s.ID, entity.SaleCredit, nil); err != nil {
					return err
				}
				s.State = entity.SaleCredit
				s.PaidAt = nil
			}
			if _, _, err := autoApply(ctx, r, s, now); err != nil {
				return err
			}
		}
		return nil
	})
}

// ListPayments lista abonos; clientID > 0 filtra por cliente.
func (uc *LedgerUseCase) ListPayments(ctx context.Context, clientID int64, page dto.PageRequest) ([]*dto.PaymentResponse, error) {
	page.DefaultPage()
	q := repository.ListQuery{Limit: page.Limit, Offset: page.Offset}
	if clientID > 0 {
		q = q.Where("cliente_id", repository.OpEq, clientID)
	}
	var out []*dto.PaymentResponse
	err := uc.txRunner.Run(ctx, func(r *repository.Repos) error {
		payments, err := r.Payments.List(ctx, q)
		if err != nil {
			return err
		}
		out = make([]*dto.PaymentResponse, 0, len(payments))
		for _, p := range payments {
			resp := toPaymentResponse(p)
			out = append(out, &resp)
		}
		return nil
	})
	return out, err
}

// Statement estado de cuenta FuegoYa del cliente: ventas, abonos, saldo y crédito sin aplicar.
func (uc *LedgerUseCase) Statement(ctx context.Context, clientID int64) (*dto.ClientStatementResponse, error) {
	var out *dto.ClientStatementResponse
	err := uc.txRunner.Run(ctx, func(r *repository.Repos) error {
		if _, err := r.Customers.GetByID(ctx, clientID); err != nil {
			return err
		}
		q := repository.ListQuery{}.Where("cliente_id", repository.OpEq, clientID)
		sales, err := r.Sales.List(ctx, q)
		if err != nil {
			return err
		}
		payments, err := r.Payments.List(ctx, q)
		if err != nil {
			return err
		}
		totalSales, totalPaid := decimal.Zero, decimal.Zero
		outstanding, unapplied := decimal.Zero, decimal.Zero
		out = &dto.ClientStatementResponse{
			ClientID: clientID,
			Sales:    make([]dto.SaleResponse, 0, len(sales)),
			Payments: make([]dto.PaymentResponse, 0, len(payments)),
		}
		for _, s := range sales {
			totalSales = totalSales.Add(s.TotalPrice)
			outstanding = outstanding.Add(s.Outstanding())
			out.Sales = append(out.Sales, *toSaleResponse(s))
		}
		for _, p := range payments {
			totalPaid = totalPaid.Add(p.Amount)
			unapplied = unapplied.Add(p.Remaining())
			out.Payments = append(out.Payments, toPaymentResponse(p))
		}
		out.TotalSales = dto.Money(totalSales)
		out.TotalPaid = dto.Money(totalPaid)
		out.Outstanding = dto.Money(outstanding)
		out.UnappliedCredit = dto.Money(unapplied)
		return nil
	})
	return out, err
}

func toPaymentResponse(p *entity.FuegoYaPayment) dto.PaymentResponse {
	return dto.PaymentResponse{
		ID:        p.ID,
		ClientID:  p.ClientID,
		Amount:    dto.Money(p.Amount),
		PaidAt:    p.PaidAt,
		Method:    p.Method,
		Note:      p.Note,
		Allocated: dto.Money(p.Allocated),
		Remaining: dto.Money(p.Remaining()),
	}
}

func toAllocationResponse(a *entity.Allocation) dto.AllocationResponse {
	return dto.AllocationResponse{
		ID:        a.ID,
		PaymentID: a.PaymentID,
		SaleID:    a.SaleID,
		Amount:    dto.Money(a.Amount),
		AppliedAt: a.AppliedAt,
	}
}
