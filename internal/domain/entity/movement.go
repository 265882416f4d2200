package entity

import "time"

// Tipos de movimiento de stock.
const (
	MovementTypeINBOUND    = "INBOUND"
	MovementTypeOUTBOUND   = "OUTBOUND"
	MovementTypeTRANSFER   = "TRANSFER"
	MovementTypeADJUSTMENT = "ADJUSTMENT"
	MovementTypeRETURN     = "RETURN"
)

// Estados del ciclo de vida de un movimiento.
// COMPLETED y PARTIALLY_COMPLETED son derivados: solo los fija la reconciliación,
// nunca un comando directo del cliente.
const (
	MovementStatusDRAFT              = "DRAFT"
	MovementStatusPENDING            = "PENDING"
	MovementStatusINPROGRESS         = "IN_PROGRESS"
	MovementStatusPARTIALLYCOMPLETED = "PARTIALLY_COMPLETED"
	MovementStatusCOMPLETED          = "COMPLETED"
	MovementStatusCANCELLED          = "CANCELLED"
	MovementStatusONHOLD             = "ON_HOLD"
)

// Prioridades de movimiento.
const (
	MovementPriorityLOW    = "LOW"
	MovementPriorityNORMAL = "NORMAL"
	MovementPriorityHIGH   = "HIGH"
)

// Movement representa una unidad de trabajo de stock: traslado, recepción,
// salida, ajuste o devolución. Es el agregado raíz: posee sus líneas (1..N,
// numeradas contiguas) y opcionalmente sus tareas. La columna Version es el
// token de concurrencia optimista por agregado.
type Movement struct {
	ID                    string
	CompanyID             string
	WarehouseID           string
	ReferenceNumber       string // opcional; único si está presente
	Type                  string
	Status                string
	Priority              string
	MovementDate          time.Time
	ExpectedDate          *time.Time
	ScheduledDate         *time.Time
	SourceLocationID      string
	DestinationLocationID string
	SourceUserID          string
	DestinationUserID     string
	Notes                 string
	Reason                string // motivo de hold/cancel, requerido en esos comandos
	HeldFrom              string // estado previo recordado mientras está ON_HOLD
	CreatedBy             string
	CreatedAt             time.Time
	CompletedBy           string
	CompletedAt           *time.Time
	UpdatedAt             time.Time
	Version               int64

	Lines []*MovementLine
	Tasks []*MovementTask
}

// IsTerminal indica si el movimiento ya no admite transiciones.
func (m *Movement) IsTerminal() bool {
	return m.Status == MovementStatusCOMPLETED || m.Status == MovementStatusCANCELLED
}

// IsEditable indica si la cabecera y el conjunto de líneas aún pueden editarse.
// Después de la activación el conjunto de líneas es inmutable.
func (m *Movement) IsEditable() bool {
	return m.Status == MovementStatusDRAFT || m.Status == MovementStatusPENDING
}

// LineByID busca una línea del agregado por su ID. Devuelve nil si no existe.
func (m *Movement) LineByID(lineID string) *MovementLine {
	for _, l := range m.Lines {
		if l.ID == lineID {
			return l
		}
	}
	return nil
}

// TaskByID busca una tarea del agregado por su ID. Devuelve nil si no existe.
func (m *Movement) TaskByID(taskID string) *MovementTask {
	for _, t := range m.Tasks {
		if t.ID == taskID {
			return t
		}
	}
	return nil
}

// ValidMovementType valida el tipo contra el conjunto cerrado.
func ValidMovementType(t string) bool {
	switch t {
	case MovementTypeINBOUND, MovementTypeOUTBOUND, MovementTypeTRANSFER,
		MovementTypeADJUSTMENT, MovementTypeRETURN:
		return true
	}
	return false
}

// ValidMovementPriority valida la prioridad contra el conjunto cerrado.
func ValidMovementPriority(p string) bool {
	switch p {
	case MovementPriorityLOW, MovementPriorityNORMAL, MovementPriorityHIGH:
		return true
	}
	return false
}
