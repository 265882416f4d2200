package movement

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// Orden estricto de avance de una línea. Se permiten saltos (p.ej. PENDING ->
// COMPLETED para ajustes simples) pero nunca retrocesos.
var lineStatusRank = map[string]int{
	entity.LineStatusPENDING:   0,
	entity.LineStatusALLOCATED: 1,
	entity.LineStatusPICKED:    2,
	entity.LineStatusINTRANSIT: 3,
	entity.LineStatusCOMPLETED: 4,
}

// ValidLineStatus valida un estado de línea contra el conjunto cerrado.
func ValidLineStatus(s string) bool {
	if s == entity.LineStatusCANCELLED {
		return true
	}
	_, ok := lineStatusRank[s]
	return ok
}

// AdvanceLine mueve una línea al estado destino. Reglas:
//   - una línea terminal nunca re-entra a un estado anterior;
//   - el destino no puede preceder (ni igualar) al estado actual;
//   - la cantidad real solo se acepta al completar, se fija una única vez y
//     no puede ser negativa.
//
// Devuelve resolved=true cuando la línea quedó terminal, señal para que el
// caller dispare la reconciliación del movimiento.
func AdvanceLine(l *entity.MovementLine, target string, actualQty *decimal.Decimal, now time.Time) (resolved bool, err error) {
	if !ValidLineStatus(target) {
		return false, domain.ErrInvalidInput
	}
	if l.IsTerminal() {
		return false, domain.NewInvalidTransition("line", l.Status, target)
	}
	if target == entity.LineStatusCANCELLED {
		l.Status = entity.LineStatusCANCELLED
		l.UpdatedAt = now
		return true, nil
	}
	if lineStatusRank[target] <= lineStatusRank[l.Status] {
		return false, domain.NewInvalidTransition("line", l.Status, target)
	}
	if actualQty != nil {
		if target != entity.LineStatusCOMPLETED {
			return false, domain.ErrInvalidInput
		}
		if l.ActualQty != nil {
			return false, domain.ErrQuantityAlreadySet
		}
		if actualQty.LessThan(decimal.Zero) {
			return false, domain.ErrQuantityOutOfRange
		}
		qty := *actualQty
		l.ActualQty = &qty
	}
	l.Status = target
	l.UpdatedAt = now
	return target == entity.LineStatusCOMPLETED, nil
}

// CancelLine cancela una línea no terminal con motivo. Falla con
// ErrAlreadyTerminal si la línea ya quedó COMPLETED o CANCELLED.
func CancelLine(l *entity.MovementLine, reason string, now time.Time) error {
	if l.IsTerminal() {
		return domain.ErrAlreadyTerminal
	}
	l.Status = entity.LineStatusCANCELLED
	l.Reason = reason
	l.UpdatedAt = now
	return nil
}
