package movement

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Almacen-api/internal/application/dto"
	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/movement"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

// CreateTask agrega una tarea a un movimiento no terminal. Las tareas pueden
// agregarse en cualquier momento antes del estado terminal.
func (g *Gateway) CreateTask(ctx context.Context, companyID string, in dto.CreateTaskRequest) (*dto.TaskResponse, error) {
	if in.MovementID == "" || !entity.ValidTaskType(in.TaskType) {
		return nil, domain.ErrInvalidInput
	}
	priority := in.Priority
	if priority == 0 {
		priority = 5
	}
	if priority < entity.TaskPriorityMin || priority > entity.TaskPriorityMax {
		return nil, domain.ErrInvalidInput
	}
	if in.LocationID != "" {
		if err := g.checkLocations(companyID, in.LocationID); err != nil {
			return nil, err
		}
	}

	var out *dto.TaskResponse
	err := g.txRunner.Run(ctx, func(movRepo repository.MovementRepository) error {
		m, err := g.loadOwned(movRepo, companyID, in.MovementID)
		if err != nil {
			return err
		}
		if m.IsTerminal() {
			return domain.ErrAlreadyTerminal
		}
		if in.LineID != "" && m.LineByID(in.LineID) == nil {
			return domain.ErrNotFound
		}
		now := time.Now()
		t := &entity.MovementTask{
			ID:                 uuid.New().String(),
			MovementID:         m.ID,
			LineID:             in.LineID,
			TaskType:           in.TaskType,
			Status:             entity.TaskStatusPENDING,
			Priority:           priority,
			ScheduledStart:     in.ScheduledStart,
			ExpectedCompletion: in.ExpectedCompletion,
			LocationID:         in.LocationID,
			Instructions:       in.Instructions,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		if err := movRepo.CreateTask(t); err != nil {
			return err
		}
		out = toTaskResponse(t, now)
		return nil
	})
	return out, err
}

// UpdateTask edita campos de planificación de una tarea no terminal.
func (g *Gateway) UpdateTask(ctx context.Context, companyID, taskID string, in dto.UpdateTaskRequest) (*dto.TaskResponse, error) {
	if in.Priority != nil && (*in.Priority < entity.TaskPriorityMin || *in.Priority > entity.TaskPriorityMax) {
		return nil, domain.ErrInvalidInput
	}
	var out *dto.TaskResponse
	err := g.txRunner.Run(ctx, func(movRepo repository.MovementRepository) error {
		t, _, err := g.loadTask(movRepo, companyID, taskID)
		if err != nil {
			return err
		}
		if t.IsTerminal() {
			return domain.ErrAlreadyTerminal
		}
		now := time.Now()
		if in.Priority != nil {
			t.Priority = *in.Priority
		}
		if in.ScheduledStart != nil {
			t.ScheduledStart = in.ScheduledStart
		}
		if in.ExpectedCompletion != nil {
			t.ExpectedCompletion = in.ExpectedCompletion
		}
		if in.LocationID != nil {
			t.LocationID = *in.LocationID
		}
		if in.Instructions != nil {
			t.Instructions = *in.Instructions
		}
		if in.Notes != nil {
			t.Notes = *in.Notes
		}
		t.UpdatedAt = now
		if err := movRepo.UpdateTask(t); err != nil {
			return err
		}
		out = toTaskResponse(t, now)
		return nil
	})
	return out, err
}

// AssignTask asigna la tarea a un usuario del directorio. La exclusividad bajo
// concurrencia la garantiza el compare-and-set de ClaimTask sobre el par
// (estado, asignado) de la propia tarea: de dos assign simultáneos gana
// exactamente uno y el otro recibe TaskAlreadyAssigned.
func (g *Gateway) AssignTask(ctx context.Context, companyID, taskID, assigneeID string) (*dto.TaskResponse, error) {
	if assigneeID == "" {
		return nil, domain.ErrInvalidInput
	}
	assignee, err := g.userRepo.GetByID(assigneeID)
	if err != nil {
		return nil, err
	}
	if assignee == nil {
		return nil, domain.ErrUserNotFound
	}
	if assignee.CompanyID != companyID || assignee.Status != "active" {
		return nil, domain.ErrForbidden
	}

	var out *dto.TaskResponse
	err = g.txRunner.Run(ctx, func(movRepo repository.MovementRepository) error {
		t, m, err := g.loadTask(movRepo, companyID, taskID)
		if err != nil {
			return err
		}
		if m.IsTerminal() {
			return domain.ErrAlreadyTerminal
		}
		now := time.Now()
		claimed, err := movRepo.ClaimTask(taskID, assigneeID, now)
		if err != nil {
			return err
		}
		if !claimed {
			// Distinguir el motivo con el estado vigente.
			cur, err := movRepo.GetTask(taskID)
			if err != nil {
				return err
			}
			if cur != nil && cur.AssignedUserID != "" {
				return domain.ErrTaskAlreadyAssigned
			}
			status := t.Status
			if cur != nil {
				status = cur.Status
			}
			return domain.NewInvalidTransition("task", status, entity.TaskStatusASSIGNED)
		}
		t.AssignedUserID = assigneeID
		t.Status = entity.TaskStatusASSIGNED
		t.UpdatedAt = now
		out = toTaskResponse(t, now)
		return nil
	})
	return out, err
}

// UnassignTask libera una tarea ASSIGNED de vuelta al pool PENDING.
func (g *Gateway) UnassignTask(ctx context.Context, companyID, taskID string) (*dto.TaskResponse, error) {
	return g.taskTransition(ctx, companyID, taskID, func(t *entity.MovementTask, _ *entity.Movement, now time.Time) error {
		return movement.UnassignTask(t, now)
	})
}

// StartTask inicia una tarea asignada.
func (g *Gateway) StartTask(ctx context.Context, companyID, taskID string) (*dto.TaskResponse, error) {
	return g.taskTransition(ctx, companyID, taskID, func(t *entity.MovementTask, _ *entity.Movement, now time.Time) error {
		return movement.StartTask(t, now)
	})
}

// CompleteTask completa la tarea y reconcilia el movimiento en el mismo commit.
func (g *Gateway) CompleteTask(ctx context.Context, companyID, taskID string) (*dto.TaskResponse, error) {
	var out *dto.TaskResponse
	err := g.txRunner.Run(ctx, func(movRepo repository.MovementRepository) error {
		t, m, err := g.loadTask(movRepo, companyID, taskID)
		if err != nil {
			return err
		}
		now := time.Now()
		if err := movement.CompleteTask(t, now); err != nil {
			return err
		}
		if err := movRepo.UpdateTask(t); err != nil {
			return err
		}
		if movement.Reconcile(m, now) {
			if err := movRepo.Save(m); err != nil {
				return err
			}
		}
		out = toTaskResponse(t, now)
		return nil
	})
	return out, err
}

// CancelTask cancela una tarea no terminal.
func (g *Gateway) CancelTask(ctx context.Context, companyID, taskID, reason string) (*dto.TaskResponse, error) {
	return g.taskTransition(ctx, companyID, taskID, func(t *entity.MovementTask, _ *entity.Movement, now time.Time) error {
		return movement.CancelTask(t, reason, now)
	})
}

// taskTransition ejecuta una transición simple de tarea dentro de la tx.
func (g *Gateway) taskTransition(ctx context.Context, companyID, taskID string, fn func(*entity.MovementTask, *entity.Movement, time.Time) error) (*dto.TaskResponse, error) {
	var out *dto.TaskResponse
	err := g.txRunner.Run(ctx, func(movRepo repository.MovementRepository) error {
		t, m, err := g.loadTask(movRepo, companyID, taskID)
		if err != nil {
			return err
		}
		now := time.Now()
		if err := fn(t, m, now); err != nil {
			return err
		}
		if err := movRepo.UpdateTask(t); err != nil {
			return err
		}
		out = toTaskResponse(t, now)
		return nil
	})
	return out, err
}

// loadTask carga la tarea y su movimiento verificando pertenencia.
func (g *Gateway) loadTask(movRepo repository.MovementRepository, companyID, taskID string) (*entity.MovementTask, *entity.Movement, error) {
	t, err := movRepo.GetTask(taskID)
	if err != nil {
		return nil, nil, err
	}
	if t == nil {
		return nil, nil, domain.ErrNotFound
	}
	m, err := g.loadOwned(movRepo, companyID, t.MovementID)
	if err != nil {
		return nil, nil, err
	}
	return t, m, nil
}
