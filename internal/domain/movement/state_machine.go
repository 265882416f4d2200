// Package movement contiene el núcleo de orquestación de movimientos de stock:
// las máquinas de estado de movimiento, línea y tarea, y la reconciliación que
// deriva el estado del movimiento a partir de sus líneas. Todas las funciones
// son puras sobre el agregado en memoria; la persistencia y la concurrencia
// optimista viven en las capas de aplicación e infraestructura.
package movement

import (
	"time"

	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// Ciclo de vida del movimiento:
//
//	DRAFT -> PENDING -> IN_PROGRESS -> {PARTIALLY_COMPLETED | COMPLETED}
//	PENDING/IN_PROGRESS -> ON_HOLD -> (release) -> estado previo
//	cualquier no terminal -> CANCELLED
//
// COMPLETED y CANCELLED son terminales. COMPLETED/PARTIALLY_COMPLETED solo los
// fija Reconcile, nunca un comando directo.

// Start activa el movimiento: legal desde PENDING, o desde DRAFT promoviendo
// primero a PENDING. Exige al menos una línea.
func Start(m *entity.Movement, now time.Time) error {
	if len(m.Lines) == 0 {
		return domain.ErrEmptyMovement
	}
	switch m.Status {
	case entity.MovementStatusDRAFT, entity.MovementStatusPENDING:
		m.Status = entity.MovementStatusINPROGRESS
		m.UpdatedAt = now
		return nil
	default:
		return domain.NewInvalidTransition("movement", m.Status, entity.MovementStatusINPROGRESS)
	}
}

// Hold pausa un movimiento PENDING o IN_PROGRESS recordando el estado previo
// para que Release pueda volver exactamente a él. El motivo es obligatorio.
func Hold(m *entity.Movement, reason string, now time.Time) error {
	if reason == "" {
		return domain.ErrReasonRequired
	}
	switch m.Status {
	case entity.MovementStatusPENDING, entity.MovementStatusINPROGRESS:
		m.HeldFrom = m.Status
		m.Status = entity.MovementStatusONHOLD
		m.Reason = reason
		m.UpdatedAt = now
		return nil
	default:
		return domain.NewInvalidTransition("movement", m.Status, entity.MovementStatusONHOLD)
	}
}

// Release reanuda un movimiento ON_HOLD devolviéndolo al estado recordado.
func Release(m *entity.Movement, now time.Time) error {
	if m.Status != entity.MovementStatusONHOLD {
		return domain.NewInvalidTransition("movement", m.Status, m.HeldFrom)
	}
	prior := m.HeldFrom
	if prior == "" {
		// Un ON_HOLD sin estado previo no debería existir; volver a PENDING.
		prior = entity.MovementStatusPENDING
	}
	m.Status = prior
	m.HeldFrom = ""
	m.UpdatedAt = now
	return nil
}

// Cancel cancela un movimiento no terminal y cascada: toda línea y tarea no
// terminal pasa a CANCELLED en el mismo commit. El motivo es obligatorio y
// queda en el agregado para auditoría.
func Cancel(m *entity.Movement, reason string, now time.Time) error {
	if reason == "" {
		return domain.ErrReasonRequired
	}
	if m.IsTerminal() {
		return domain.NewInvalidTransition("movement", m.Status, entity.MovementStatusCANCELLED)
	}
	m.Status = entity.MovementStatusCANCELLED
	m.Reason = reason
	m.HeldFrom = ""
	m.UpdatedAt = now
	for _, l := range m.Lines {
		if !l.IsTerminal() {
			l.Status = entity.LineStatusCANCELLED
			l.Reason = reason
			l.UpdatedAt = now
		}
	}
	for _, t := range m.Tasks {
		if !t.IsTerminal() {
			t.Status = entity.TaskStatusCANCELLED
			t.Notes = appendNote(t.Notes, "cancelada por cancelación del movimiento: "+reason)
			t.UpdatedAt = now
		}
	}
	return nil
}

// ForceComplete es el cierre forzado por operador: legal solo desde
// IN_PROGRESS. Cancela las líneas y tareas aún abiertas con el motivo dado y
// deja el agregado listo para que el caller vuelva a correr Reconcile, que es
// quien deriva el estado final. La operación queda auditada en CompletedBy.
func ForceComplete(m *entity.Movement, userID, reason string, now time.Time) error {
	if m.Status != entity.MovementStatusINPROGRESS {
		return domain.NewInvalidTransition("movement", m.Status, entity.MovementStatusCOMPLETED)
	}
	if reason == "" {
		reason = "cierre forzado por operador"
	}
	for _, l := range m.Lines {
		if !l.IsTerminal() {
			l.Status = entity.LineStatusCANCELLED
			l.Reason = reason
			l.UpdatedAt = now
		}
	}
	for _, t := range m.Tasks {
		if !t.IsTerminal() {
			t.Status = entity.TaskStatusCANCELLED
			t.Notes = appendNote(t.Notes, reason)
			t.UpdatedAt = now
		}
	}
	m.CompletedBy = userID
	m.UpdatedAt = now
	return nil
}

func appendNote(notes, extra string) string {
	if notes == "" {
		return extra
	}
	return notes + "; " + extra
}
