package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/imanod-api/internal/application/dto"
	"github.com/jhoicas/imanod-api/internal/application/inventory"
)

// DerivedPartHandler tipos de tabla y de taco; una instancia por tipo.
type DerivedPartHandler struct {
	uc *inventory.DerivedPartUseCase
}

// NewDerivedPartHandler construye el handler.
func NewDerivedPartHandler(uc *inventory.DerivedPartUseCase) *DerivedPartHandler {
	return &DerivedPartHandler{uc: uc}
}

// Create godoc
// @Summary      Crear piezas derivadas
// @Description  Corta piezas del material madre: descuenta ceil(cantidad / piezas por madre).
// @Tags         tipos
// @Security     Bearer
// @Accept       json,mpfd
// @Produce      json
// @Param        body  body  dto.CreateDerivedPartRequest  true  "material_id, length, quantity"
// @Success      201   {object}  dto.DerivedPartResponse
// @Failure      400   {object}  dto.ErrorResponse  "largo inválido o stock insuficiente"
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/tipo-tablas [post]
// @Router       /api/tipo-tacos [post]
func (h *DerivedPartHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateDerivedPartRequest
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

// List GET ?material_id=&limit=&offset=
func (h *DerivedPartHandler) List(c *fiber.Ctx) error {
	list, err := h.uc.List(c.UserContext(), queryInt64(c, "material_id"), pageFromQuery(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

func (h *DerivedPartHandler) GetByID(c *fiber.Ctx) error {
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

func (h *DerivedPartHandler) Update(c *fiber.Ctx) error {
	id, ok, err := paramID(c)
	if !ok {
		return err
	}
	var in dto.UpdateDerivedPartRequest
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

func (h *DerivedPartHandler) Delete(c *fiber.Ctx) error {
	id, ok, err := paramID(c)
	if !ok {
		return err
	}
	if err := h.uc.Delete(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
