package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Almacen-api/internal/application/dto"
	"github.com/jhoicas/Almacen-api/internal/application/movement"
)

// MovementHandler maneja las peticiones HTTP del ciclo de vida de movimientos (protegido).
type MovementHandler struct {
	gw *movement.Gateway
}

// NewMovementHandler construye el handler.
func NewMovementHandler(gw *movement.Gateway) *MovementHandler {
	return &MovementHandler{gw: gw}
}

// Create godoc
// @Summary      Crear movimiento con sus líneas
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateMovementRequest  true  "warehouse_id, type, lines (mínimo una)"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/movements [post]
func (h *MovementHandler) Create(c *fiber.Ctx) error {
	companyID, userID := GetCompanyID(c), GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CreateMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.gw.CreateMovement(c.Context(), companyID, userID, in)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar movimientos
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query  string  false  "Filtrar por bodega"
// @Param        status        query  string  false  "Filtrar por estado"
// @Param        type          query  string  false  "Filtrar por tipo"
// @Param        from          query  string  false  "Fecha mínima (RFC3339)"
// @Param        to            query  string  false  "Fecha máxima (RFC3339)"
// @Param        page          query  int     false  "Página (0-based)"
// @Param        size          query  int     false  "Tamaño de página"
// @Success      200  {object}  dto.Page
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/movements [get]
func (h *MovementHandler) List(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	q := movement.MovementListQuery{
		WarehouseID: c.Query("warehouse_id"),
		Status:      c.Query("status"),
		Type:        c.Query("type"),
	}
	if err := c.QueryParser(&q.Page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	var err error
	if q.From, err = parseTimeQuery(c, "from"); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from debe ser RFC3339"})
	}
	if q.To, err = parseTimeQuery(c, "to"); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to debe ser RFC3339"})
	}
	out, err := h.gw.ListMovements(c.Context(), companyID, q)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener movimiento con líneas, tareas y progreso
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del movimiento"
// @Success      200  {object}  dto.MovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/movements/{id} [get]
func (h *MovementHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.gw.GetMovement(c.Context(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Editar cabecera (solo DRAFT/PENDING)
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "ID del movimiento"
// @Param        body  body  dto.UpdateMovementRequest  true  "campos a modificar"
// @Success      200   {object}  dto.MovementResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/movements/{id} [put]
func (h *MovementHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.gw.UpdateMovement(c.Context(), GetCompanyID(c), c.Params("id"), in)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Borrar movimiento (solo DRAFT/PENDING; cascada completa)
// @Tags         movements
// @Security     Bearer
// @Param        id  path  string  true  "ID del movimiento"
// @Success      204
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/movements/{id} [delete]
func (h *MovementHandler) Delete(c *fiber.Ctx) error {
	if err := h.gw.DeleteMovement(c.Context(), GetCompanyID(c), c.Params("id")); err != nil {
		return errorJSON(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Start godoc
// @Summary      Activar movimiento (DRAFT/PENDING -> IN_PROGRESS)
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del movimiento"
// @Success      200  {object}  dto.MovementResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/movements/{id}/start [post]
func (h *MovementHandler) Start(c *fiber.Ctx) error {
	out, err := h.gw.StartMovement(c.Context(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(out)
}

// Hold godoc
// @Summary      Pausar movimiento (requiere motivo)
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string             true  "ID del movimiento"
// @Param        body  body  dto.ReasonRequest  true  "motivo de la pausa"
// @Success      200   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/movements/{id}/hold [post]
func (h *MovementHandler) Hold(c *fiber.Ctx) error {
	var in dto.ReasonRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.gw.HoldMovement(c.Context(), GetCompanyID(c), c.Params("id"), in.Reason)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(out)
}

// Release godoc
// @Summary      Reanudar movimiento pausado (vuelve al estado previo)
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del movimiento"
// @Success      200  {object}  dto.MovementResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/movements/{id}/release [post]
func (h *MovementHandler) Release(c *fiber.Ctx) error {
	out, err := h.gw.ReleaseMovement(c.Context(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(out)
}

// Cancel godoc
// @Summary      Cancelar movimiento con cascada a líneas y tareas abiertas
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string             true  "ID del movimiento"
// @Param        body  body  dto.ReasonRequest  true  "motivo de la cancelación"
// @Success      200   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/movements/{id}/cancel [post]
func (h *MovementHandler) Cancel(c *fiber.Ctx) error {
	var in dto.ReasonRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.gw.CancelMovement(c.Context(), GetCompanyID(c), c.Params("id"), in.Reason)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(out)
}

// Complete godoc
// @Summary      Cierre forzado por operador (cancela lo abierto y deriva el estado final)
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string             true  "ID del movimiento"
// @Param        body  body  dto.ReasonRequest  true  "motivo del cierre forzado"
// @Success      200   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/movements/{id}/complete [post]
func (h *MovementHandler) Complete(c *fiber.Ctx) error {
	var in dto.ReasonRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.gw.CompleteMovement(c.Context(), GetCompanyID(c), GetUserID(c), c.Params("id"), in.Reason)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(out)
}

// Document godoc
// @Summary      Hoja de picking en PDF
// @Tags         movements
// @Security     Bearer
// @Produce      application/pdf
// @Param        id  path  string  true  "ID del movimiento"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/movements/{id}/document [get]
func (h *MovementHandler) Document(c *fiber.Ctx) error {
	pdfBytes, err := h.gw.PickingSheet(c.Context(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return errorJSON(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="picking-`+c.Params("id")+`.pdf"`)
	return c.Send(pdfBytes)
}

// parseTimeQuery lee un query param de fecha en RFC3339; nil si está vacío.
func parseTimeQuery(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
