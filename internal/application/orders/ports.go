package orders

import (
	"context"

	"github.com/jhoicas/imanod-api/internal/domain/entity"
)

// SalesOrderLineForPDF línea de pedido con el título del prototipo.
type SalesOrderLineForPDF struct {
	entity.SalesOrderLine
	PrototypeTitle string
}

// SalesOrderPDFGenerator genera la representación impresa de un pedido.
type SalesOrderPDFGenerator interface {
	GenerateSalesOrderPDF(
		ctx context.Context,
		order *entity.SalesOrder,
		customer *entity.Customer,
		lines []SalesOrderLineForPDF,
	) ([]byte, error)
}
