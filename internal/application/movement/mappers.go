package movement

import (
	"time"

	"github.com/jhoicas/Almacen-api/internal/application/dto"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/movement"
)

// toMovementResponse mapea el agregado con sus campos derivados (progreso).
func toMovementResponse(m *entity.Movement, now time.Time, withDetail bool) *dto.MovementResponse {
	s := movement.Summarize(m)
	out := &dto.MovementResponse{
		ID:                    m.ID,
		CompanyID:             m.CompanyID,
		WarehouseID:           m.WarehouseID,
		ReferenceNumber:       m.ReferenceNumber,
		Type:                  m.Type,
		Status:                m.Status,
		Priority:              m.Priority,
		MovementDate:          m.MovementDate,
		ExpectedDate:          m.ExpectedDate,
		ScheduledDate:         m.ScheduledDate,
		SourceLocationID:      m.SourceLocationID,
		DestinationLocationID: m.DestinationLocationID,
		SourceUserID:          m.SourceUserID,
		DestinationUserID:     m.DestinationUserID,
		Notes:                 m.Notes,
		Reason:                m.Reason,
		CreatedBy:             m.CreatedBy,
		CreatedAt:             m.CreatedAt,
		CompletedBy:           m.CompletedBy,
		CompletedAt:           m.CompletedAt,
		UpdatedAt:             m.UpdatedAt,
		Version:               m.Version,
		TotalLines:            s.TotalLines,
		CompletedLines:        s.CompletedLines,
		ProgressPct:           s.ProgressPct,
	}
	if withDetail {
		for _, l := range m.Lines {
			out.Lines = append(out.Lines, *toLineResponse(l))
		}
		for _, t := range m.Tasks {
			out.Tasks = append(out.Tasks, *toTaskResponse(t, now))
		}
	}
	return out
}

func toLineResponse(l *entity.MovementLine) *dto.LineResponse {
	out := &dto.LineResponse{
		ID:             l.ID,
		MovementID:     l.MovementID,
		LineNumber:     l.LineNumber,
		ItemID:         l.ItemID,
		RequestedQty:   l.RequestedQty,
		ActualQty:      l.ActualQty,
		UnitOfMeasure:  l.UnitOfMeasure,
		LotNumber:      l.LotNumber,
		SerialNumber:   l.SerialNumber,
		FromLocationID: l.FromLocationID,
		ToLocationID:   l.ToLocationID,
		Status:         l.Status,
		Notes:          l.Notes,
		Reason:         l.Reason,
	}
	if v, ok := l.Variance(); ok {
		out.Variance = &v
	}
	return out
}

func toTaskResponse(t *entity.MovementTask, now time.Time) *dto.TaskResponse {
	out := &dto.TaskResponse{
		ID:                 t.ID,
		MovementID:         t.MovementID,
		LineID:             t.LineID,
		TaskType:           t.TaskType,
		Status:             t.Status,
		Priority:           t.Priority,
		AssignedUserID:     t.AssignedUserID,
		ScheduledStart:     t.ScheduledStart,
		ExpectedCompletion: t.ExpectedCompletion,
		ActualStart:        t.ActualStart,
		ActualCompletion:   t.ActualCompletion,
		LocationID:         t.LocationID,
		Instructions:       t.Instructions,
		Notes:              t.Notes,
		IsOverdue:          t.IsOverdue(now),
		CreatedAt:          t.CreatedAt,
	}
	if mins, ok := t.DurationMinutes(); ok {
		out.DurationMinutes = &mins
	}
	return out
}
