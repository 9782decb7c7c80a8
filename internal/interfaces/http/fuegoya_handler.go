package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/imanod-api/internal/application/credit"
	"github.com/jhoicas/imanod-api/internal/application/dto"
)

// FuegoYaHandler productos, ventas a crédito y pagos de FuegoYa.
type FuegoYaHandler struct {
	products *credit.ProductUseCase
	ledger   *credit.LedgerUseCase
}

// NewFuegoYaHandler construye el handler.
func NewFuegoYaHandler(products *credit.ProductUseCase, ledger *credit.LedgerUseCase) *FuegoYaHandler {
	return &FuegoYaHandler{products: products, ledger: ledger}
}

// ─── Productos ──────────────────────────────────────────────────────────────

func (h *FuegoYaHandler) CreateProduct(c *fiber.Ctx) error {
	var in dto.CreateFuegoYaProductRequest
	photo, ok, err := bindWithUpload(c, &in, "foto")
	if !ok {
		return err
	}
	in.Photo = photo
	out, err := h.products.Create(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

func (h *FuegoYaHandler) ListProducts(c *fiber.Ctx) error {
	list, err := h.products.List(c.UserContext(), pageFromQuery(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

func (h *FuegoYaHandler) UpdateProduct(c *fiber.Ctx) error {
	id, ok, err := paramID(c)
	if !ok {
		return err
	}
	var in dto.UpdateFuegoYaProductRequest
	photo, ok, err := bindWithUpload(c, &in, "foto")
	if !ok {
		return err
	}
	in.Photo = photo
	out, err := h.products.Update(c.UserContext(), id, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

func (h *FuegoYaHandler) DeleteProduct(c *fiber.Ctx) error {
	id, ok, err := paramID(c)
	if !ok {
		return err
	}
	if err := h.products.Delete(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ─── Ventas ─────────────────────────────────────────────────────────────────

// CreateSale godoc
// @Summary      Registrar venta FuegoYa
// @Description  Descuenta los bultos del producto. Si la venta queda a crédito se le aplica
//
//	el crédito libre del cliente en orden FIFO.
//
// @Tags         fuegoya
// @Security     Bearer
// @Accept       json,mpfd
// @Produce      json
// @Param        body  body  dto.CreateSaleRequest  true  "total_price opcional: precio unitario × bultos"
// @Success      201   {object}  dto.SaleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/fuegoya/ventas [post]
func (h *FuegoYaHandler) CreateSale(c *fiber.Ctx) error {
	var in dto.CreateSaleRequest
	photo, ok, err := bindWithUpload(c, &in, "foto")
	if !ok {
		return err
	}
	in.Photo = photo
	out, err := h.ledger.CreateSale(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListSales GET /api/fuegoya/ventas?cliente_id=&estado=credito
func (h *FuegoYaHandler) ListSales(c *fiber.Ctx) error {
	list, err := h.ledger.ListSales(c.UserContext(), queryInt64(c, "cliente_id"), c.Query("estado"), pageFromQuery(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

func (h *FuegoYaHandler) GetSale(c *fiber.Ctx) error {
	id, ok, err := paramID(c)
	if !ok {
		return err
	}
	out, err := h.ledger.GetSale(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

func (h *FuegoYaHandler) UpdateSale(c *fiber.Ctx) error {
	id, ok, err := paramID(c)
	if !ok {
		return err
	}
	var in dto.UpdateSaleRequest
	photo, ok, err := bindWithUpload(c, &in, "foto")
	if !ok {
		return err
	}
	in.Photo = photo
	out, err := h.ledger.UpdateSale(c.UserContext(), id, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// DeleteSale godoc
// @Summary      Eliminar venta FuegoYa
// @Description  Libera sus aplicaciones y las reasigna a otras ventas a crédito del cliente.
// @Tags         fuegoya
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID de la venta"
// @Success      200  {object}  dto.ReallocationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/fuegoya/ventas/{id} [delete]
func (h *FuegoYaHandler) DeleteSale(c *fiber.Ctx) error {
	id, ok, err := paramID(c)
	if !ok {
		return err
	}
	out, err := h.ledger.DeleteSale(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ForcePay POST /api/fuegoya/ventas/:id/pagar (solo admin)
func (h *FuegoYaHandler) ForcePay(c *fiber.Ctx) error {
	id, ok, err := paramID(c)
	if !ok {
		return err
	}
	out, err := h.ledger.ForcePay(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// SetState PATCH /api/fuegoya/ventas/:id/estado (solo admin). No toca las aplicaciones.
func (h *FuegoYaHandler) SetState(c *fiber.Ctx) error {
	id, ok, err := paramID(c)
	if !ok {
		return err
	}
	var in dto.SetSaleStateRequest
	if ok, err := bindAndValidate(c, &in); !ok {
		return err
	}
	out, err := h.ledger.SetState(c.UserContext(), id, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ─── Pagos ──────────────────────────────────────────────────────────────────

// RegisterPayment godoc
// @Summary      Registrar pago
// @Description  Aplica el monto a las ventas a crédito del cliente de la más antigua a la más
//
//	reciente. El sobrante queda como crédito libre.
//
// @Tags         fuegoya
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreatePaymentRequest  true  "client_id, amount > 0"
// @Success      201   {object}  dto.RegisterPaymentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/fuegoya/pagos [post]
func (h *FuegoYaHandler) RegisterPayment(c *fiber.Ctx) error {
	var in dto.CreatePaymentRequest
	if ok, err := bindAndValidate(c, &in); !ok {
		return err
	}
	out, err := h.ledger.RegisterPayment(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListPayments GET /api/fuegoya/pagos?cliente_id=
func (h *FuegoYaHandler) ListPayments(c *fiber.Ctx) error {
	list, err := h.ledger.ListPayments(c.UserContext(), queryInt64(c, "cliente_id"), pageFromQuery(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

// DeletePayment DELETE /api/fuegoya/pagos/:id (solo admin)
func (h *FuegoYaHandler) DeletePayment(c *fiber.Ctx) error {
	id, ok, err := paramID(c)
	if !ok {
		return err
	}
	if err := h.ledger.DeletePayment(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
