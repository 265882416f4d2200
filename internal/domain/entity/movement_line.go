package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una línea de movimiento. El avance es estrictamente hacia adelante
// en este orden (se permiten saltos); CANCELLED es alcanzable desde cualquier
// estado no terminal.
const (
	LineStatusPENDING   = "PENDING"
	LineStatusALLOCATED = "ALLOCATED"
	LineStatusPICKED    = "PICKED"
	LineStatusINTRANSIT = "IN_TRANSIT"
	LineStatusCOMPLETED = "COMPLETED"
	LineStatusCANCELLED = "CANCELLED"
)

// MovementLine es un renglón del movimiento: un ítem con cantidad solicitada y
// origen/destino. ActualQty se fija una sola vez (al completar o cumplir
// parcialmente) y es inmutable: una corrección exige una línea nueva o un
// movimiento de ajuste, nunca una sobreescritura silenciosa.
type MovementLine struct {
	ID             string
	MovementID     string
	LineNumber     int // 1..N, único y contiguo dentro del movimiento
	ItemID         string
	RequestedQty   decimal.Decimal // > 0
	ActualQty      *decimal.Decimal
	UnitOfMeasure  string
	LotNumber      string
	SerialNumber   string
	FromLocationID string
	ToLocationID   string
	Status         string
	Notes          string
	Reason         string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsTerminal indica si la línea llegó a COMPLETED o CANCELLED (nunca retrocede).
func (l *MovementLine) IsTerminal() bool {
	return l.Status == LineStatusCOMPLETED || l.Status == LineStatusCANCELLED
}

// Variance devuelve actual - solicitada cuando ActualQty está presente;
// (cero, false) cuando aún no se registró cantidad real.
func (l *MovementLine) Variance() (decimal.Decimal, bool) {
	if l.ActualQty == nil {
		return decimal.Zero, false
	}
	return l.ActualQty.Sub(l.RequestedQty), true
}
