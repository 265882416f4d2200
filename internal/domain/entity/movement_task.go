package entity

import "time"

// Tipos de tarea física asociada a un movimiento.
const (
	TaskTypePICK   = "PICK"
	TaskTypePACK   = "PACK"
	TaskTypeLOAD   = "LOAD"
	TaskTypeUNLOAD = "UNLOAD"
	TaskTypeCOUNT  = "COUNT"
)

// Estados de una tarea.
const (
	TaskStatusPENDING    = "PENDING"
	TaskStatusASSIGNED   = "ASSIGNED"
	TaskStatusINPROGRESS = "IN_PROGRESS"
	TaskStatusCOMPLETED  = "COMPLETED"
	TaskStatusCANCELLED  = "CANCELLED"
)

// Límites de prioridad numérica de tareas (10 = más urgente).
const (
	TaskPriorityMin = 1
	TaskPriorityMax = 10
)

// MovementTask es una unidad de trabajo asignable (pick, pack, load, ...)
// ligada a un movimiento y opcionalmente a una de sus líneas. Tiene a lo sumo
// un usuario asignado a la vez; la reasignación pasa siempre por comandos
// explícitos (assign/unassign) para que el historial sea auditable.
type MovementTask struct {
	ID                 string
	MovementID         string
	LineID             string // opcional
	TaskType           string
	Status             string
	Priority           int // 1..10, 10 = más urgente
	AssignedUserID     string
	ScheduledStart     *time.Time
	ExpectedCompletion *time.Time
	ActualStart        *time.Time
	ActualCompletion   *time.Time
	LocationID         string
	Instructions       string
	Notes              string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// IsTerminal indica si la tarea llegó a COMPLETED o CANCELLED.
func (t *MovementTask) IsTerminal() bool {
	return t.Status == TaskStatusCOMPLETED || t.Status == TaskStatusCANCELLED
}

// IsOverdue es una consulta pura en tiempo de lectura: vencida si la fecha
// esperada ya pasó y la tarea sigue sin resolverse. No requiere ningún daemon.
func (t *MovementTask) IsOverdue(now time.Time) bool {
	if t.ExpectedCompletion == nil || t.IsTerminal() {
		return false
	}
	return now.After(*t.ExpectedCompletion)
}

// DurationMinutes devuelve la duración real en minutos una vez registrados
// inicio y fin reales; (0, false) si falta alguno.
func (t *MovementTask) DurationMinutes() (float64, bool) {
	if t.ActualStart == nil || t.ActualCompletion == nil {
		return 0, false
	}
	return t.ActualCompletion.Sub(*t.ActualStart).Minutes(), true
}

// ValidTaskType valida el tipo contra el conjunto cerrado.
func ValidTaskType(tt string) bool {
	switch tt {
	case TaskTypePICK, TaskTypePACK, TaskTypeLOAD, TaskTypeUNLOAD, TaskTypeCOUNT:
		return true
	}
	return false
}
