package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/imanod-api/internal/application/dto"
	"github.com/jhoicas/imanod-api/internal/application/orders"
)

// OrderHandler encargos a proveedores y pedidos de clientes.
type OrderHandler struct {
	purchases *orders.PurchaseOrderUseCase
	sales     *orders.SalesOrderUseCase
	pdf       *orders.PDFUseCase
}

// NewOrderHandler construye el handler.
func NewOrderHandler(purchases *orders.PurchaseOrderUseCase, sales *orders.SalesOrderUseCase, pdf *orders.PDFUseCase) *OrderHandler {
	return &OrderHandler{purchases: purchases, sales: sales, pdf: pdf}
}

// ── Encargos ──────────────────────────────────────────────────────────────

// CreatePurchase POST /api/encargos
func (h *OrderHandler) CreatePurchase(c *fiber.Ctx) error {
	var in dto.CreatePurchaseOrderRequest
	if ok, err := bindAndValidate(c, &in); !ok {
		return err
	}
	out, err := h.purchases.Create(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListPurchases GET /api/encargos?estado=pendiente&proveedor_id=
func (h *OrderHandler) ListPurchases(c *fiber.Ctx) error {
	list, err := h.purchases.List(c.UserContext(), c.Query("estado"), queryInt64(c, "proveedor_id"), pageFromQuery(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

func (h *OrderHandler) GetPurchase(c *fiber.Ctx) error {
	id, ok, err := paramID(c)
	if !ok {
		return err
	}
	out, err := h.purchases.GetByID(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ReceivePurchase godoc
// @Summary      Recibir encargo
// @Description  Suma las cantidades de cada línea al stock del material. Repetir la
//
//	recepción no vuelve a sumar (already_received=true).
//
// @Tags         encargos
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID del encargo"
// @Success      200  {object}  dto.PurchaseOrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/encargos/{id}/recibir [post]
func (h *OrderHandler) ReceivePurchase(c *fiber.Ctx) error {
	id, ok, err := paramID(c)
	if !ok {
		return err
	}
	out, err := h.purchases.Receive(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

func (h *OrderHandler) DeletePurchase(c *fiber.Ctx) error {
	id, ok, err := paramID(c)
	if !ok {
		return err
	}
	if err := h.purchases.Delete(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ── Pedidos ───────────────────────────────────────────────────────────────

// CreateSale POST /api/pedidos
func (h *OrderHandler) CreateSale(c *fiber.Ctx) error {
	var in dto.SalesOrderRequest
	if ok, err := bindAndValidate(c, &in); !ok {
		return err
	}
	out, err := h.sales.Create(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListSales GET /api/pedidos?cliente_id=
func (h *OrderHandler) ListSales(c *fiber.Ctx) error {
	list, err := h.sales.List(c.UserContext(), queryInt64(c, "cliente_id"), pageFromQuery(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

func (h *OrderHandler) GetSale(c *fiber.Ctx) error {
	id, ok, err := paramID(c)
	if !ok {
		return err
	}
	out, err := h.sales.GetByID(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// UpdateSale PUT /api/pedidos/:id reemplaza las líneas y recalcula el total.
func (h *OrderHandler) UpdateSale(c *fiber.Ctx) error {
	id, ok, err := paramID(c)
	if !ok {
		return err
	}
	var in dto.SalesOrderRequest
	if ok, err := bindAndValidate(c, &in); !ok {
		return err
	}
	out, err := h.sales.Update(c.UserContext(), id, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

func (h *OrderHandler) DeleteSale(c *fiber.Ctx) error {
	id, ok, err := paramID(c)
	if !ok {
		return err
	}
	if err := h.sales.Delete(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SalePDF godoc
// @Summary      Descargar pedido en PDF
// @Tags         pedidos
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  int  true  "ID del pedido"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/pedidos/{id}/pdf [get]
func (h *OrderHandler) SalePDF(c *fiber.Ctx) error {
	id, ok, err := paramID(c)
	if !ok {
		return err
	}
	data, filename, err := h.pdf.DownloadSalesOrderPDF(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, "attachment; filename="+strconv.Quote(filename))
	return c.Send(data)
}
