package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Almacen-api/internal/application/dto"
	"github.com/jhoicas/Almacen-api/internal/application/movement"
)

// MovementLineHandler maneja las peticiones HTTP de líneas de movimiento (protegido).
type MovementLineHandler struct {
	gw *movement.Gateway
}

// NewMovementLineHandler construye el handler.
func NewMovementLineHandler(gw *movement.Gateway) *MovementLineHandler {
	return &MovementLineHandler{gw: gw}
}

// Create godoc
// @Summary      Agregar línea a un movimiento editable
// @Tags         movement-lines
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateLineRequest  true  "movement_id, item_id, requested_qty > 0"
// @Success      201   {object}  dto.LineResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/movement-lines [post]
func (h *MovementLineHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateLineRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.gw.AddLine(c.Context(), GetCompanyID(c), in)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update godoc
// @Summary      Editar línea (solo con el movimiento en DRAFT/PENDING)
// @Tags         movement-lines
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID de la línea"
// @Param        body  body  dto.UpdateLineRequest  true  "campos a modificar"
// @Success      200   {object}  dto.LineResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/movement-lines/{id} [put]
func (h *MovementLineHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateLineRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.gw.UpdateLine(c.Context(), GetCompanyID(c), c.Params("id"), in)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(out)
}

// Advance godoc
// @Summary      Avanzar línea en su ciclo de vida (movimiento IN_PROGRESS)
// @Description  El avance es estrictamente hacia adelante; actual_qty solo se
//
//	acepta con destino COMPLETED y se registra una única vez.
//
// @Tags         movement-lines
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID de la línea"
// @Param        body  body  dto.AdvanceLineRequest  true  "target_status, actual_qty opcional"
// @Success      200   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/movement-lines/{id}/advance [post]
func (h *MovementLineHandler) Advance(c *fiber.Ctx) error {
	var in dto.AdvanceLineRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.gw.AdvanceLine(c.Context(), GetCompanyID(c), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(out)
}

// Cancel godoc
// @Summary      Cancelar línea y reconciliar el movimiento
// @Tags         movement-lines
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string             true  "ID de la línea"
// @Param        body  body  dto.ReasonRequest  true  "motivo de la cancelación"
// @Success      200   {object}  dto.MovementResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/movement-lines/{id}/cancel [post]
func (h *MovementLineHandler) Cancel(c *fiber.Ctx) error {
	var in dto.ReasonRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.gw.CancelLine(c.Context(), GetCompanyID(c), c.Params("id"), in.Reason)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(out)
}
