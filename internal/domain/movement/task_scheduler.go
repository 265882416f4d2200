package movement

import (
	"sort"
	"time"

	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// Ciclo de vida de tarea: PENDING -> ASSIGNED -> IN_PROGRESS -> COMPLETED,
// con CANCELLED alcanzable desde cualquier estado no terminal.

// AssignTask asigna la tarea a un usuario. Legal solo con estado PENDING y sin
// asignado previo: una tarea tiene a lo sumo un usuario activo y la
// reasignación exige pasar por unassign (auditable). La garantía contra dos
// asignaciones concurrentes la da además el compare-and-set de la capa de
// persistencia; esta función cubre la regla sobre el agregado en memoria.
func AssignTask(t *entity.MovementTask, userID string, now time.Time) error {
	if t.AssignedUserID != "" {
		return domain.ErrTaskAlreadyAssigned
	}
	if t.Status != entity.TaskStatusPENDING {
		return domain.NewInvalidTransition("task", t.Status, entity.TaskStatusASSIGNED)
	}
	t.AssignedUserID = userID
	t.Status = entity.TaskStatusASSIGNED
	t.UpdatedAt = now
	return nil
}

// UnassignTask libera una tarea ASSIGNED de vuelta a PENDING. No es legal desde
// IN_PROGRESS: una tarea empezada se cancela y se recrea, para no perder en
// silencio trabajo en curso.
func UnassignTask(t *entity.MovementTask, now time.Time) error {
	if t.Status != entity.TaskStatusASSIGNED {
		return domain.NewInvalidTransition("task", t.Status, entity.TaskStatusPENDING)
	}
	t.AssignedUserID = ""
	t.Status = entity.TaskStatusPENDING
	t.UpdatedAt = now
	return nil
}

// StartTask inicia una tarea ASSIGNED estampando la hora real de inicio.
func StartTask(t *entity.MovementTask, now time.Time) error {
	if t.Status != entity.TaskStatusASSIGNED {
		return domain.ErrTaskNotAssigned
	}
	start := now
	t.ActualStart = &start
	t.Status = entity.TaskStatusINPROGRESS
	t.UpdatedAt = now
	return nil
}

// CompleteTask completa una tarea IN_PROGRESS estampando la hora real de fin.
// El caller debe disparar la reconciliación del movimiento tras el éxito.
func CompleteTask(t *entity.MovementTask, now time.Time) error {
	if t.Status != entity.TaskStatusINPROGRESS {
		return domain.NewInvalidTransition("task", t.Status, entity.TaskStatusCOMPLETED)
	}
	end := now
	t.ActualCompletion = &end
	t.Status = entity.TaskStatusCOMPLETED
	t.UpdatedAt = now
	return nil
}

// CancelTask cancela una tarea no terminal.
func CancelTask(t *entity.MovementTask, reason string, now time.Time) error {
	if t.IsTerminal() {
		return domain.ErrAlreadyTerminal
	}
	t.Status = entity.TaskStatusCANCELLED
	if reason != "" {
		t.Notes = appendNote(t.Notes, reason)
	}
	t.UpdatedAt = now
	return nil
}

// OrderCandidates devuelve las tareas PENDING sin asignar en el orden total
// estricto que usa cualquier rutina de asignación por lotes: prioridad
// descendente, luego fecha esperada ascendente (sin fecha al final), luego
// orden de creación, con el ID como último desempate.
func OrderCandidates(tasks []*entity.MovementTask) []*entity.MovementTask {
	candidates := make([]*entity.MovementTask, 0, len(tasks))
	for _, t := range tasks {
		if t.Status == entity.TaskStatusPENDING && t.AssignedUserID == "" {
			candidates = append(candidates, t)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		switch {
		case a.ExpectedCompletion == nil && b.ExpectedCompletion != nil:
			return false
		case a.ExpectedCompletion != nil && b.ExpectedCompletion == nil:
			return true
		case a.ExpectedCompletion != nil && b.ExpectedCompletion != nil:
			if !a.ExpectedCompletion.Equal(*b.ExpectedCompletion) {
				return a.ExpectedCompletion.Before(*b.ExpectedCompletion)
			}
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	return candidates
}
