package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Almacen-api/internal/application/dto"
	"github.com/jhoicas/Almacen-api/internal/application/movement"
)

// MovementTaskHandler maneja las peticiones HTTP de tareas de movimiento (protegido).
type MovementTaskHandler struct {
	gw *movement.Gateway
}

// NewMovementTaskHandler construye el handler.
func NewMovementTaskHandler(gw *movement.Gateway) *MovementTaskHandler {
	return &MovementTaskHandler{gw: gw}
}

// Create godoc
// @Summary      Crear tarea para un movimiento no terminal
// @Tags         movement-tasks
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateTaskRequest  true  "movement_id, task_type; priority 1..10 (default 5)"
// @Success      201   {object}  dto.TaskResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/movement-tasks [post]
func (h *MovementTaskHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateTaskRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.gw.CreateTask(c.Context(), GetCompanyID(c), in)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar tareas con filtros
// @Tags         movement-tasks
// @Security     Bearer
// @Produce      json
// @Param        movement_id       query  string  false  "Filtrar por movimiento"
// @Param        assigned_user_id  query  string  false  "Filtrar por usuario asignado"
// @Param        status            query  string  false  "Filtrar por estado"
// @Param        overdue           query  bool    false  "Solo tareas vencidas (cómputo de lectura)"
// @Param        page              query  int     false  "Página (0-based)"
// @Param        size              query  int     false  "Tamaño de página"
// @Success      200  {object}  dto.Page
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/movement-tasks [get]
func (h *MovementTaskHandler) List(c *fiber.Ctx) error {
	q := movement.TaskListQuery{
		MovementID:     c.Query("movement_id"),
		AssignedUserID: c.Query("assigned_user_id"),
		Status:         c.Query("status"),
		OverdueOnly:    c.QueryBool("overdue"),
	}
	if err := c.QueryParser(&q.Page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	out, err := h.gw.ListTasks(c.Context(), GetCompanyID(c), q)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(out)
}

// Queue godoc
// @Summary      Cola de tareas sin asignar en orden de despacho
// @Description  Prioridad descendente, fecha esperada ascendente (sin fecha al
//
//	final) y orden de creación como desempate.
//
// @Tags         movement-tasks
// @Security     Bearer
// @Produce      json
// @Param        movement_id  query  string  false  "Limitar a un movimiento"
// @Success      200  {array}   dto.TaskResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/movement-tasks/queue [get]
func (h *MovementTaskHandler) Queue(c *fiber.Ctx) error {
	out, err := h.gw.TaskQueue(c.Context(), GetCompanyID(c), c.Query("movement_id"))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Editar campos de planificación de una tarea no terminal
// @Tags         movement-tasks
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID de la tarea"
// @Param        body  body  dto.UpdateTaskRequest  true  "campos a modificar"
// @Success      200   {object}  dto.TaskResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/movement-tasks/{id} [put]
func (h *MovementTaskHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateTaskRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.gw.UpdateTask(c.Context(), GetCompanyID(c), c.Params("id"), in)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(out)
}

// Assign godoc
// @Summary      Asignar tarea a un usuario activo de la empresa
// @Description  Bajo concurrencia gana exactamente un assign; el perdedor
//
//	recibe 409 TASK_ALREADY_ASSIGNED.
//
// @Tags         movement-tasks
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID de la tarea"
// @Param        body  body  dto.AssignTaskRequest  true  "user_id del asignado"
// @Success      200   {object}  dto.TaskResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/movement-tasks/{id}/assign [post]
func (h *MovementTaskHandler) Assign(c *fiber.Ctx) error {
	var in dto.AssignTaskRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.gw.AssignTask(c.Context(), GetCompanyID(c), c.Params("id"), in.UserID)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(out)
}

// Unassign godoc
// @Summary      Liberar tarea asignada de vuelta al pool
// @Tags         movement-tasks
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la tarea"
// @Success      200  {object}  dto.TaskResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/movement-tasks/{id}/unassign [post]
func (h *MovementTaskHandler) Unassign(c *fiber.Ctx) error {
	out, err := h.gw.UnassignTask(c.Context(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(out)
}

// Start godoc
// @Summary      Iniciar tarea asignada (sella inicio real)
// @Tags         movement-tasks
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la tarea"
// @Success      200  {object}  dto.TaskResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/movement-tasks/{id}/start [post]
func (h *MovementTaskHandler) Start(c *fiber.Ctx) error {
	out, err := h.gw.StartTask(c.Context(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(out)
}

// Complete godoc
// @Summary      Completar tarea en curso (sella fin real y reconcilia)
// @Tags         movement-tasks
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la tarea"
// @Success      200  {object}  dto.TaskResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/movement-tasks/{id}/complete [post]
func (h *MovementTaskHandler) Complete(c *fiber.Ctx) error {
	out, err := h.gw.CompleteTask(c.Context(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(out)
}

// Cancel godoc
// @Summary      Cancelar tarea no terminal
// @Tags         movement-tasks
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string             true  "ID de la tarea"
// @Param        body  body  dto.ReasonRequest  true  "motivo (opcional)"
// @Success      200   {object}  dto.TaskResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/movement-tasks/{id}/cancel [post]
func (h *MovementTaskHandler) Cancel(c *fiber.Ctx) error {
	var in dto.ReasonRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.gw.CancelTask(c.Context(), GetCompanyID(c), c.Params("id"), in.Reason)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(out)
}
