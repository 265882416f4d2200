package movement

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almacen-api/internal/application/dto"
	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/movement"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

// AddLine agrega una línea a un movimiento aún editable (DRAFT/PENDING).
// Después de la activación el set de líneas es inmutable: una corrección exige
// un movimiento de ajuste.
func (g *Gateway) AddLine(ctx context.Context, companyID string, in dto.CreateLineRequest) (*dto.LineResponse, error) {
	if in.MovementID == "" || in.ItemID == "" {
		return nil, domain.ErrInvalidInput
	}
	if !in.RequestedQty.GreaterThan(decimal.Zero) {
		return nil, domain.ErrQuantityOutOfRange
	}
	item, err := g.itemRepo.GetByID(in.ItemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	if item.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}

	var out *dto.LineResponse
	err = g.txRunner.Run(ctx, func(movRepo repository.MovementRepository) error {
		m, err := g.loadOwned(movRepo, companyID, in.MovementID)
		if err != nil {
			return err
		}
		if !m.IsEditable() {
			return domain.ErrInvalidTransition
		}
		now := time.Now()
		uom := in.UnitOfMeasure
		if uom == "" {
			uom = item.UnitOfMeasure
		}
		l := &entity.MovementLine{
			ID:             uuid.New().String(),
			MovementID:     m.ID,
			LineNumber:     len(m.Lines) + 1, // numeración contigua 1..N
			ItemID:         in.ItemID,
			RequestedQty:   in.RequestedQty,
			UnitOfMeasure:  uom,
			LotNumber:      in.LotNumber,
			SerialNumber:   in.SerialNumber,
			FromLocationID: in.FromLocationID,
			ToLocationID:   in.ToLocationID,
			Status:         entity.LineStatusPENDING,
			Notes:          in.Notes,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := movRepo.CreateLine(l); err != nil {
			return err
		}
		// Toca la versión del agregado: agregar una línea es una edición.
		m.UpdatedAt = now
		if err := movRepo.Save(m); err != nil {
			return err
		}
		out = toLineResponse(l)
		return nil
	})
	return out, err
}

// UpdateLine edita una línea pre-activación. La cantidad real nunca se edita
// por esta vía.
func (g *Gateway) UpdateLine(ctx context.Context, companyID, lineID string, in dto.UpdateLineRequest) (*dto.LineResponse, error) {
	if in.RequestedQty != nil && !in.RequestedQty.GreaterThan(decimal.Zero) {
		return nil, domain.ErrQuantityOutOfRange
	}
	var out *dto.LineResponse
	err := g.txRunner.Run(ctx, func(movRepo repository.MovementRepository) error {
		l, err := movRepo.GetLine(lineID)
		if err != nil {
			return err
		}
		if l == nil {
			return domain.ErrNotFound
		}
		m, err := g.loadOwned(movRepo, companyID, l.MovementID)
		if err != nil {
			return err
		}
		if !m.IsEditable() {
			return domain.ErrInvalidTransition
		}
		now := time.Now()
		if in.RequestedQty != nil {
			l.RequestedQty = *in.RequestedQty
		}
		if in.UnitOfMeasure != nil {
			l.UnitOfMeasure = *in.UnitOfMeasure
		}
		if in.LotNumber != nil {
			l.LotNumber = *in.LotNumber
		}
		if in.SerialNumber != nil {
			l.SerialNumber = *in.SerialNumber
		}
		if in.FromLocationID != nil {
			l.FromLocationID = *in.FromLocationID
		}
		if in.ToLocationID != nil {
			l.ToLocationID = *in.ToLocationID
		}
		if in.Notes != nil {
			l.Notes = *in.Notes
		}
		l.UpdatedAt = now
		if err := movRepo.UpdateLine(l); err != nil {
			return err
		}
		m.UpdatedAt = now
		if err := movRepo.Save(m); err != nil {
			return err
		}
		out = toLineResponse(l)
		return nil
	})
	return out, err
}

// AdvanceLine mueve una línea hacia adelante en su ciclo de vida. Legal solo
// con el movimiento IN_PROGRESS. Si la línea queda resuelta se dispara la
// reconciliación del movimiento en el mismo commit.
func (g *Gateway) AdvanceLine(ctx context.Context, companyID, userID, lineID string, in dto.AdvanceLineRequest) (*dto.MovementResponse, error) {
	var out *dto.MovementResponse
	err := g.txRunner.Run(ctx, func(movRepo repository.MovementRepository) error {
		ref, err := movRepo.GetLine(lineID)
		if err != nil {
			return err
		}
		if ref == nil {
			return domain.ErrNotFound
		}
		m, err := g.loadOwned(movRepo, companyID, ref.MovementID)
		if err != nil {
			return err
		}
		if m.Status != entity.MovementStatusINPROGRESS {
			return domain.NewInvalidTransition("movement", m.Status, entity.MovementStatusINPROGRESS)
		}
		l := m.LineByID(lineID)
		if l == nil {
			return domain.ErrNotFound
		}
		now := time.Now()
		resolved, err := movement.AdvanceLine(l, in.TargetStatus, in.ActualQty, now)
		if err != nil {
			return err
		}
		if err := movRepo.UpdateLine(l); err != nil {
			return err
		}
		if resolved {
			if movement.Reconcile(m, now) && m.Status != entity.MovementStatusCANCELLED && m.CompletedBy == "" {
				m.CompletedBy = userID
			}
		}
		if err := movRepo.Save(m); err != nil {
			return err
		}
		out = toMovementResponse(m, now, true)
		return nil
	})
	return out, err
}

// CancelLine cancela una línea no terminal y reconcilia el movimiento.
func (g *Gateway) CancelLine(ctx context.Context, companyID, lineID, reason string) (*dto.MovementResponse, error) {
	var out *dto.MovementResponse
	err := g.txRunner.Run(ctx, func(movRepo repository.MovementRepository) error {
		ref, err := movRepo.GetLine(lineID)
		if err != nil {
			return err
		}
		if ref == nil {
			return domain.ErrNotFound
		}
		m, err := g.loadOwned(movRepo, companyID, ref.MovementID)
		if err != nil {
			return err
		}
		if m.IsTerminal() || m.Status == entity.MovementStatusONHOLD {
			return domain.NewInvalidTransition("line", ref.Status, entity.LineStatusCANCELLED)
		}
		l := m.LineByID(lineID)
		if l == nil {
			return domain.ErrNotFound
		}
		now := time.Now()
		if err := movement.CancelLine(l, reason, now); err != nil {
			return err
		}
		if err := movRepo.UpdateLine(l); err != nil {
			return err
		}
		movement.Reconcile(m, now)
		if err := movRepo.Save(m); err != nil {
			return err
		}
		out = toMovementResponse(m, now, true)
		return nil
	})
	return out, err
}
