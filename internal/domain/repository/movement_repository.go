package repository

import (
	"time"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// MovementFilter filtros para listados de movimientos.
type MovementFilter struct {
	CompanyID   string
	WarehouseID string
	Status      string
	Type        string
	From        *time.Time
	To          *time.Time
	Limit       int
	Offset      int
}

// TaskFilter filtros para listados de tareas. OverdueOnly filtra las tareas
// vencidas recomputando el vencimiento en el momento de la lectura.
type TaskFilter struct {
	CompanyID      string
	MovementID     string
	AssignedUserID string
	Status         string
	OverdueOnly    bool
	Limit          int
	Offset         int
}

// MovementRepository define el puerto de persistencia del agregado Movement
// (movimiento + líneas + tareas, una frontera de consistencia por movimiento).
//
// Save aplica el check-and-increment del token de concurrencia optimista:
// devuelve domain.ErrConcurrentModification si la versión leída ya no es la
// vigente. ClaimTask es el compare-and-set a nivel de tarea que garantiza que
// de dos assign concurrentes gane exactamente uno, independiente de la versión
// del movimiento.
type MovementRepository interface {
	Create(m *entity.Movement) error
	GetByID(id string) (*entity.Movement, error)
	List(f MovementFilter) ([]*entity.Movement, int, error)
	Save(m *entity.Movement) error
	Delete(id string) error

	CreateLine(l *entity.MovementLine) error
	GetLine(id string) (*entity.MovementLine, error)
	UpdateLine(l *entity.MovementLine) error

	CreateTask(t *entity.MovementTask) error
	GetTask(id string) (*entity.MovementTask, error)
	ListTasks(f TaskFilter) ([]*entity.MovementTask, int, error)
	UpdateTask(t *entity.MovementTask) error
	ClaimTask(taskID, userID string, now time.Time) (bool, error)
}
