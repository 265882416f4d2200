package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound               = errors.New("recurso no encontrado")
	ErrUserNotFound           = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists     = errors.New("el email ya está registrado")
	ErrInvalidInput           = errors.New("entrada inválida")
	ErrDuplicate              = errors.New("recurso duplicado")
	ErrUnauthorized           = errors.New("no autorizado")
	ErrForbidden              = errors.New("acceso denegado")
	ErrEmptyMovement          = errors.New("el movimiento no tiene líneas")
	ErrQuantityOutOfRange     = errors.New("cantidad fuera de rango")
	ErrQuantityAlreadySet     = errors.New("la cantidad real ya fue registrada y es inmutable")
	ErrTaskAlreadyAssigned    = errors.New("la tarea ya tiene un usuario asignado")
	ErrTaskNotAssigned        = errors.New("la tarea no está asignada")
	ErrAlreadyTerminal        = errors.New("el estado es terminal y no admite cambios")
	ErrReasonRequired         = errors.New("se requiere un motivo")
	ErrConcurrentModification = errors.New("el registro fue modificado por otra operación, reintente")
	ErrInvalidTransition      = errors.New("transición de estado inválida")
)

// InvalidTransitionError indica una transición ilegal e incluye el estado actual
// y el intentado, para que la UI pueda explicar el rechazo al operador.
type InvalidTransitionError struct {
	Entity string // "movement", "line", "task"
	From   string
	To     string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("transición inválida de %s: %s -> %s", e.Entity, e.From, e.To)
}

// Is permite errors.Is(err, ErrInvalidTransition) sobre el error tipado.
func (e *InvalidTransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// NewInvalidTransition construye el error tipado para la entidad dada.
func NewInvalidTransition(entity, from, to string) error {
	return &InvalidTransitionError{Entity: entity, From: from, To: to}
}
