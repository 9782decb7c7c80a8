package orders

import (
	"context"
	"fmt"

	"github.com/jhoicas/imanod-api/internal/application/ports"
	"github.com/jhoicas/imanod-api/internal/domain/entity"
	"github.com/jhoicas/imanod-api/internal/domain/repository"
)

// PDFUseCase genera el PDF de un pedido con su cliente y los títulos de los prototipos.
type PDFUseCase struct {
	txRunner  ports.TxRunner
	generator SalesOrderPDFGenerator
}

// NewPDFUseCase construye el caso de uso inyectando todas sus dependencias.
func NewPDFUseCase(txRunner ports.TxRunner, generator SalesOrderPDFGenerator) *PDFUseCase {
	return &PDFUseCase{txRunner: txRunner, generator: generator}
}

// DownloadSalesOrderPDF devuelve los bytes del PDF y el nombre de archivo sugerido.
func (uc *PDFUseCase) DownloadSalesOrderPDF(ctx context.Context, id int64) (pdfBytes []byte, filename string, err error) {
	var (
		order    *entity.SalesOrder
		customer *entity.Customer
		lines    []SalesOrderLineForPDF
	)
	err = uc.txRunner.Run(ctx, func(r *repository.Repos) error {
		// ── 1. Cargar pedido ──────────────────────────────────────────────────
		order, err = r.SalesOrders.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("pdf: obtener pedido: %w", err)
		}

		// ── 2. Cargar cliente ─────────────────────────────────────────────────
		customer, err = r.Customers.GetByID(ctx, order.ClientID)
		if err != nil {
			return fmt.Errorf("pdf: obtener cliente: %w", err)
		}

		// ── 3. Enriquecer líneas con el título del prototipo ──────────────────
		lines = make([]SalesOrderLineForPDF, 0, len(order.Lines))
		for _, l := range order.Lines {
			title := fmt.Sprintf("Prototipo %d", l.PrototypeID)
			if p, pErr := r.Prototypes.GetByID(ctx, l.PrototypeID); pErr == nil {
				title = p.Title
			}
			lines = append(lines, SalesOrderLineForPDF{SalesOrderLine: l, PrototypeTitle: title})
		}
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	// ── 4. Generar PDF ────────────────────────────────────────────────────────
	pdfBytes, err = uc.generator.GenerateSalesOrderPDF(ctx, order, customer, lines)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}
	return pdfBytes, fmt.Sprintf("pedido_%d.pdf", order.ID), nil
}
