package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Almacen-api/internal/application/dto"
	"github.com/jhoicas/Almacen-api/internal/domain"
)

// errorJSON traduce un error de dominio a su respuesta HTTP. Los rechazos de
// transición llevan 409 con el estado actual y el intentado para que la UI
// explique el conflicto al operador.
func errorJSON(c *fiber.Ctx, err error) error {
	var transErr *domain.InvalidTransitionError
	if errors.As(err, &transErr) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code:            "INVALID_TRANSITION",
			Message:         transErr.Error(),
			CurrentStatus:   transErr.From,
			AttemptedStatus: transErr.To,
		})
	}
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	case errors.Is(err, domain.ErrEmptyMovement):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "EMPTY_MOVEMENT", Message: "el movimiento requiere al menos una línea"})
	case errors.Is(err, domain.ErrQuantityOutOfRange):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "QUANTITY_OUT_OF_RANGE", Message: "cantidad fuera de rango"})
	case errors.Is(err, domain.ErrReasonRequired):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "REASON_REQUIRED", Message: "se requiere un motivo"})
	case errors.Is(err, domain.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "no autorizado"})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado al recurso"})
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrUserNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"})
	case errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: "recurso duplicado"})
	case errors.Is(err, domain.ErrTaskAlreadyAssigned):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "TASK_ALREADY_ASSIGNED", Message: "la tarea ya tiene un usuario asignado"})
	case errors.Is(err, domain.ErrTaskNotAssigned):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "TASK_NOT_ASSIGNED", Message: "la tarea no está asignada"})
	case errors.Is(err, domain.ErrAlreadyTerminal):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "ALREADY_TERMINAL", Message: "el estado es terminal y no admite cambios"})
	case errors.Is(err, domain.ErrQuantityAlreadySet):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "QUANTITY_ALREADY_SET", Message: "la cantidad real ya fue registrada y es inmutable"})
	case errors.Is(err, domain.ErrConcurrentModification):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONCURRENT_MODIFICATION", Message: "el registro fue modificado por otra operación, reintente"})
	case errors.Is(err, domain.ErrInvalidTransition):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INVALID_TRANSITION", Message: "transición de estado inválida"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}
