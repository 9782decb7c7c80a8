package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/imanod-api/internal/application/dto"
	"github.com/jhoicas/imanod-api/internal/application/inventory"
)

// SkidTypeHandler tipos de patín (una tabla y tres tacos por unidad).
type SkidTypeHandler struct {
	uc *inventory.SkidTypeUseCase
}

// NewSkidTypeHandler construye el handler.
func NewSkidTypeHandler(uc *inventory.SkidTypeUseCase) *SkidTypeHandler {
	return &SkidTypeHandler{uc: uc}
}

// Create POST /api/tipo-patines (multipart: data + logo)
func (h *SkidTypeHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateSkidTypeRequest
	logo, ok, err := bindWithUpload(c, &in, "logo")
	if !ok {
		return err
	}
	in.Logo = logo
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

func (h *SkidTypeHandler) List(c *fiber.Ctx) error {
	list, err := h.uc.List(c.UserContext(), pageFromQuery(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

func (h *SkidTypeHandler) GetByID(c *fiber.Ctx) error {
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

func (h *SkidTypeHandler) Update(c *fiber.Ctx) error {
	id, ok, err := paramID(c)
	if !ok {
		return err
	}
	var in dto.UpdateSkidTypeRequest
	logo, ok, err := bindWithUpload(c, &in, "logo")
	if !ok {
		return err
	}
	in.Logo = logo
	out, err := h.uc.Update(c.UserContext(), id, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

func (h *SkidTypeHandler) Delete(c *fiber.Ctx) error {
	id, ok, err := paramID(c)
	if !ok {
		return err
	}
	if err := h.uc.Delete(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
