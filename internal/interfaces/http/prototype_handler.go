package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/imanod-api/internal/application/dto"
	"github.com/jhoicas/imanod-api/internal/application/inventory"
)

// PrototypeHandler prototipos de estiba con su lista de materiales.
type PrototypeHandler struct {
	uc *inventory.PrototypeUseCase
}

// NewPrototypeHandler construye el handler.
func NewPrototypeHandler(uc *inventory.PrototypeUseCase) *PrototypeHandler {
	return &PrototypeHandler{uc: uc}
}

// Create godoc
// @Summary      Crear prototipo
// @Tags         prototipos
// @Security     Bearer
// @Accept       json,mpfd
// @Produce      json
// @Param        body  body  dto.PrototypeRequest  true  "planks, pegs, nails, fibers: líneas {component_id, quantity}"
// @Success      201   {object}  dto.PrototypeResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/prototipos [post]
func (h *PrototypeHandler) Create(c *fiber.Ctx) error {
	var in dto.PrototypeRequest
	photo, ok, err := bindWithUpload(c, &in, "foto")
	if !ok {
		return err
	}
	in.Photo = photo
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List GET /api/prototipos?cliente_id=&inactivos=true
func (h *PrototypeHandler) List(c *fiber.Ctx) error {
	list, err := h.uc.List(c.UserContext(), c.QueryBool("inactivos", false), queryInt64(c, "cliente_id"), pageFromQuery(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

func (h *PrototypeHandler) GetByID(c *fiber.Ctx) error {
	id, ok, err := paramID(c)
	if !ok {
		return err
	}
	out, err := h.uc.GetByID(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Update PUT /api/prototipos/:id reemplaza las líneas de materiales.
func (h *PrototypeHandler) Update(c *fiber.Ctx) error {
	id, ok, err := paramID(c)
	if !ok {
		return err
	}
	var in dto.PrototypeRequest
	photo, ok, err := bindWithUpload(c, &in, "foto")
	if !ok {
		return err
	}
	in.Photo = photo
	out, err := h.uc.Update(c.UserContext(), id, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Delete DELETE /api/prototipos/:id desactiva el prototipo.
func (h *PrototypeHandler) Delete(c *fiber.Ctx) error {
	id, ok, err := paramID(c)
	if !ok {
		return err
	}
	if err := h.uc.Deactivate(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
