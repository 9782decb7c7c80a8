package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/imanod-api/internal/application/dto"
	"github.com/jhoicas/imanod-api/internal/application/inventory"
	"github.com/jhoicas/imanod-api/internal/domain/entity"
)

// MaterialHandler materias primas: tablas, postes, clavos y fibras.
type MaterialHandler struct {
	uc *inventory.MaterialUseCase
}

// NewMaterialHandler construye el handler.
func NewMaterialHandler(uc *inventory.MaterialUseCase) *MaterialHandler {
	return &MaterialHandler{uc: uc}
}

// Create godoc
// @Summary      Crear materia prima
// @Tags         materiales
// @Security     Bearer
// @Accept       json,mpfd
// @Produce      json
// @Param        body  body  dto.CreateMaterialRequest  true  "category: tabla|poste|clavo|fibra. En multipart: campo data (JSON) y foto"
// @Success      201   {object}  dto.MaterialResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/materiales [post]
func (h *MaterialHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateMaterialRequest
	// POST /materiales/:categoria: la categoría de la ruta manda sobre la del cuerpo
	var pathCategory string
	if seg := c.Params("categoria"); seg != "" {
		cat, ok := entity.CategoryFromPath(seg)
		if !ok {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "categoría desconocida: " + seg})
		}
		pathCategory = string(cat)
		in.Category = pathCategory
	}
	photo, ok, err := bindWithUpload(c, &in, "foto")
	if !ok {
		return err
	}
	in.Photo = photo
	if pathCategory != "" {
		in.Category = pathCategory
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List GET /api/materiales?categoria=tabla&limit=20&offset=0
func (h *MaterialHandler) List(c *fiber.Ctx) error {
	category := c.Query("categoria")
	if cat, ok := entity.CategoryFromPath(category); ok {
		category = string(cat)
	}
	list, err := h.uc.List(c.UserContext(), category, pageFromQuery(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

// GetByID GET /api/materiales/:id
func (h *MaterialHandler) GetByID(c *fiber.Ctx) error {
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

// Update godoc
// @Summary      Actualizar materia prima
// @Description  Un cambio de stock se registra como ajuste de existencia.
// @Tags         materiales
// @Security     Bearer
// @Accept       json,mpfd
// @Produce      json
// @Param        id    path  int                        true  "ID"
// @Param        body  body  dto.UpdateMaterialRequest  true  "campos a modificar"
// @Success      200   {object}  dto.MaterialResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/materiales/{id} [put]
func (h *MaterialHandler) Update(c *fiber.Ctx) error {
	id, ok, err := paramID(c)
	if !ok {
		return err
	}
	var in dto.UpdateMaterialRequest
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

// Delete godoc
// @Summary      Eliminar materia prima
// @Tags         materiales
// @Security     Bearer
// @Param        id  path  int  true  "ID"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse  "referencing_titles lista los registros que la usan"
// @Router       /api/materiales/{id} [delete]
func (h *MaterialHandler) Delete(c *fiber.Ctx) error {
	id, ok, err := paramID(c)
	if !ok {
		return err
	}
	if err := h.uc.Delete(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
