package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/imanod-api/internal/application/inventory"
)

// InventoryHandler consultas transversales de existencias (protegido).
type InventoryHandler struct {
	replenishment *inventory.ReplenishmentUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(replenishment *inventory.ReplenishmentUseCase) *InventoryHandler {
	return &InventoryHandler{replenishment: replenishment}
}

// GetReplenishmentList godoc
// @Summary      Alertas de existencia
// @Description  Devuelve las filas con stock por debajo del mínimo, primero las agotadas
//
//	y luego por mayor déficit relativo.
//
// @Tags         alertas
// @Security     Bearer
// @Produce      json
// @Param        tipo  query  string  false  "materiales | tipo_tablas | tipo_tacos | tipo_patines | fuegoya_productos"
// @Success      200  {array}   dto.StockAlertResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/alertas/stock [get]
func (h *InventoryHandler) GetReplenishmentList(c *fiber.Ctx) error {
	list, err := h.replenishment.GenerateReplenishmentList(c.UserContext(), c.Query("tipo"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"total":  len(list),
		"alerts": list,
	})
}
