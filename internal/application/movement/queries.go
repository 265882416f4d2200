package movement

import (
	"context"
	"time"

	"github.com/jhoicas/Almacen-api/internal/application/dto"
	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/movement"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

// MovementListQuery filtros del listado de movimientos.
type MovementListQuery struct {
	WarehouseID string
	Status      string
	Type        string
	From        *time.Time
	To          *time.Time
	Page        dto.PageRequest
}

// TaskListQuery filtros del listado de tareas.
type TaskListQuery struct {
	MovementID     string
	AssignedUserID string
	Status         string
	OverdueOnly    bool
	Page           dto.PageRequest
}

// Las consultas no bloquean escrituras: leen el agregado tal cual está y
// pueden observar estado levemente desactualizado entre la lectura de versión
// y un commit concurrente; la ruta de escritura siempre re-valida.

// ListMovements lista movimientos con el sobre de paginación de la consola.
func (g *Gateway) ListMovements(_ context.Context, companyID string, q MovementListQuery) (*dto.Page, error) {
	if q.Status != "" && !validMovementStatus(q.Status) {
		return nil, domain.ErrInvalidInput
	}
	if q.Type != "" && !entity.ValidMovementType(q.Type) {
		return nil, domain.ErrInvalidInput
	}
	q.Page.Normalize()
	list, total, err := g.movementRepo.List(repository.MovementFilter{
		CompanyID:   companyID,
		WarehouseID: q.WarehouseID,
		Status:      q.Status,
		Type:        q.Type,
		From:        q.From,
		To:          q.To,
		Limit:       q.Page.Size,
		Offset:      q.Page.Offset(),
	})
	if err != nil {
		return nil, err
	}
	now := time.Now()
	content := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		content = append(content, *toMovementResponse(m, now, false))
	}
	page := dto.NewPage(content, total, q.Page)
	return &page, nil
}

// GetMovement devuelve el agregado completo con líneas, tareas y progreso.
func (g *Gateway) GetMovement(_ context.Context, companyID, id string) (*dto.MovementResponse, error) {
	m, err := g.loadOwned(g.movementRepo, companyID, id)
	if err != nil {
		return nil, err
	}
	return toMovementResponse(m, time.Now(), true), nil
}

// ListTasks lista tareas con filtros (asignado, estado, vencidas).
func (g *Gateway) ListTasks(_ context.Context, companyID string, q TaskListQuery) (*dto.Page, error) {
	if q.Status != "" && !validTaskStatus(q.Status) {
		return nil, domain.ErrInvalidInput
	}
	q.Page.Normalize()
	list, total, err := g.movementRepo.ListTasks(repository.TaskFilter{
		CompanyID:      companyID,
		MovementID:     q.MovementID,
		AssignedUserID: q.AssignedUserID,
		Status:         q.Status,
		OverdueOnly:    q.OverdueOnly,
		Limit:          q.Page.Size,
		Offset:         q.Page.Offset(),
	})
	if err != nil {
		return nil, err
	}
	now := time.Now()
	content := make([]dto.TaskResponse, 0, len(list))
	for _, t := range list {
		content = append(content, *toTaskResponse(t, now))
	}
	page := dto.NewPage(content, total, q.Page)
	return &page, nil
}

// TaskQueue devuelve las tareas sin asignar en el orden total estricto del
// planificador (prioridad desc, fecha esperada asc, orden de creación), listas
// para una rutina de asignación por lotes o para la cola de trabajo de la UI.
func (g *Gateway) TaskQueue(_ context.Context, companyID, movementID string) ([]dto.TaskResponse, error) {
	list, _, err := g.movementRepo.ListTasks(repository.TaskFilter{
		CompanyID:  companyID,
		MovementID: movementID,
		Status:     entity.TaskStatusPENDING,
		Limit:      500,
	})
	if err != nil {
		return nil, err
	}
	now := time.Now()
	ordered := movement.OrderCandidates(list)
	out := make([]dto.TaskResponse, 0, len(ordered))
	for _, t := range ordered {
		out = append(out, *toTaskResponse(t, now))
	}
	return out, nil
}

// PickingSheet genera el PDF de la hoja de picking del movimiento.
func (g *Gateway) PickingSheet(ctx context.Context, companyID, id string) ([]byte, error) {
	m, err := g.loadOwned(g.movementRepo, companyID, id)
	if err != nil {
		return nil, err
	}
	wh, err := g.warehouseRepo.GetByID(m.WarehouseID)
	if err != nil {
		return nil, err
	}
	itemIDs := make([]string, 0, len(m.Lines))
	for _, l := range m.Lines {
		itemIDs = append(itemIDs, l.ItemID)
	}
	items, err := g.itemRepo.GetByIDs(itemIDs)
	if err != nil {
		return nil, err
	}
	return g.pdf.GeneratePickingSheet(ctx, m, wh, items)
}

func validMovementStatus(s string) bool {
	switch s {
	case entity.MovementStatusDRAFT, entity.MovementStatusPENDING,
		entity.MovementStatusINPROGRESS, entity.MovementStatusPARTIALLYCOMPLETED,
		entity.MovementStatusCOMPLETED, entity.MovementStatusCANCELLED,
		entity.MovementStatusONHOLD:
		return true
	}
	return false
}

func validTaskStatus(s string) bool {
	switch s {
	case entity.TaskStatusPENDING, entity.TaskStatusASSIGNED,
		entity.TaskStatusINPROGRESS, entity.TaskStatusCOMPLETED,
		entity.TaskStatusCANCELLED:
		return true
	}
	return false
}
