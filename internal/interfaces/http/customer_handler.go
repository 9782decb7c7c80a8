package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/imanod-api/internal/application/credit"
	"github.com/jhoicas/imanod-api/internal/application/dto"
	"github.com/jhoicas/imanod-api/internal/application/orders"
)

// CustomerHandler maneja las peticiones HTTP de clientes y proveedores (protegido).
type CustomerHandler struct {
	uc     *orders.CustomerUseCase
	ledger *credit.LedgerUseCase
}

// NewCustomerHandler construye el handler.
func NewCustomerHandler(uc *orders.CustomerUseCase, ledger *credit.LedgerUseCase) *CustomerHandler {
	return &CustomerHandler{uc: uc, ledger: ledger}
}

// Create POST /api/clientes
func (h *CustomerHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateCustomerRequest
	if ok, err := bindAndValidate(c, &in); !ok {
		return err
	}
	customer, err := h.uc.CreateCustomer(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(customer)
}

// List GET /api/clientes?q=&limit=20&offset=0
func (h *CustomerHandler) List(c *fiber.Ctx) error {
	list, err := h.uc.ListCustomers(c.UserContext(), c.Query("q"), pageFromQuery(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

// GetByID GET /api/clientes/:id
func (h *CustomerHandler) GetByID(c *fiber.Ctx) error {
	id, ok, err := paramID(c)
	if !ok {
		return err
	}
	customer, err := h.uc.GetCustomer(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(customer)
}

// Statement godoc
// @Summary      Estado de cuenta FuegoYa del cliente
// @Tags         clientes
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID del cliente"
// @Success      200  {object}  dto.ClientStatementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/clientes/{id}/estado-cuenta [get]
func (h *CustomerHandler) Statement(c *fiber.Ctx) error {
	id, ok, err := paramID(c)
	if !ok {
		return err
	}
	out, err := h.ledger.Statement(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// CreateSupplier POST /api/proveedores
func (h *CustomerHandler) CreateSupplier(c *fiber.Ctx) error {
	var in dto.CreateSupplierRequest
	if ok, err := bindAndValidate(c, &in); !ok {
		return err
	}
	supplier, err := h.uc.CreateSupplier(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(supplier)
}

// ListSuppliers GET /api/proveedores?q=
func (h *CustomerHandler) ListSuppliers(c *fiber.Ctx) error {
	list, err := h.uc.ListSuppliers(c.UserContext(), c.Query("q"), pageFromQuery(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}
