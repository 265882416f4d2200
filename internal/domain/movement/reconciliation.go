package movement

import (
	"time"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// Summary es el progreso derivado de un movimiento para la UI. Una línea
// "resuelta" es COMPLETED o CANCELLED; solo las COMPLETED cuentan para el
// porcentaje de avance.
type Summary struct {
	TotalLines     int
	CompletedLines int
	CancelledLines int
	AllResolved    bool
	ProgressPct    float64
}

// Summarize calcula el progreso derivado del movimiento.
func Summarize(m *entity.Movement) Summary {
	s := Summary{TotalLines: len(m.Lines)}
	for _, l := range m.Lines {
		switch l.Status {
		case entity.LineStatusCOMPLETED:
			s.CompletedLines++
		case entity.LineStatusCANCELLED:
			s.CancelledLines++
		}
	}
	s.AllResolved = s.TotalLines > 0 && s.CompletedLines+s.CancelledLines == s.TotalLines
	if s.TotalLines > 0 {
		s.ProgressPct = float64(s.CompletedLines) / float64(s.TotalLines) * 100
	}
	return s
}

// Reconcile deriva el estado del movimiento a partir del estado agregado de
// sus líneas. Corre después de cada transición terminal de línea o tarea:
//
//   - todas resueltas y todas COMPLETED        -> COMPLETED
//   - todas resueltas, mezcla con CANCELLED    -> PARTIALLY_COMPLETED
//   - todas CANCELLED y ninguna COMPLETED      -> CANCELLED
//
// Nunca transiciona un movimiento ON_HOLD, CANCELLED o COMPLETED (no-op
// idempotente): así una actualización de línea tardía no resucita un
// movimiento cancelado. Devuelve true si el estado cambió.
func Reconcile(m *entity.Movement, now time.Time) bool {
	switch m.Status {
	case entity.MovementStatusONHOLD, entity.MovementStatusCANCELLED, entity.MovementStatusCOMPLETED:
		return false
	}
	s := Summarize(m)
	if !s.AllResolved {
		return false
	}

	var derived string
	switch {
	case s.CompletedLines > 0 && s.CancelledLines == 0:
		derived = entity.MovementStatusCOMPLETED
	case s.CompletedLines > 0:
		derived = entity.MovementStatusPARTIALLYCOMPLETED
	default:
		derived = entity.MovementStatusCANCELLED
	}
	if derived == m.Status {
		return false
	}
	m.Status = derived
	m.UpdatedAt = now
	if derived != entity.MovementStatusCANCELLED && m.CompletedAt == nil {
		completed := now
		m.CompletedAt = &completed
	}
	return true
}
