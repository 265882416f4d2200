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

// Gateway es la puerta de entrada única de todos los comandos sobre
// movimientos, líneas y tareas. Valida estructura y referencias antes de
// delegar en los motores de dominio (los motores asumen entrada bien tipada),
// relee el agregado dentro de la transacción, aplica la cascada de
// reconciliación y persiste con check de versión optimista.
type Gateway struct {
	txRunner      TxRunner
	movementRepo  repository.MovementRepository // lecturas fuera de tx
	itemRepo      repository.ItemRepository
	locationRepo  repository.LocationRepository
	warehouseRepo repository.WarehouseRepository
	userRepo      repository.UserRepository
	pdf           PickingSheetGenerator
}

// NewGateway construye la puerta de comandos.
func NewGateway(
	txRunner TxRunner,
	movementRepo repository.MovementRepository,
	itemRepo repository.ItemRepository,
	locationRepo repository.LocationRepository,
	warehouseRepo repository.WarehouseRepository,
	userRepo repository.UserRepository,
	pdf PickingSheetGenerator,
) *Gateway {
	return &Gateway{
		txRunner:      txRunner,
		movementRepo:  movementRepo,
		itemRepo:      itemRepo,
		locationRepo:  locationRepo,
		warehouseRepo: warehouseRepo,
		userRepo:      userRepo,
		pdf:           pdf,
	}
}

// ── Comandos de movimiento ────────────────────────────────────────────────────

// CreateMovement crea el movimiento con su set completo de líneas en un solo
// commit. Las líneas se numeran 1..N contiguas en el orden recibido; un
// movimiento sin líneas es rechazado.
func (g *Gateway) CreateMovement(ctx context.Context, companyID, userID string, in dto.CreateMovementRequest) (*dto.MovementResponse, error) {
	if in.WarehouseID == "" || !entity.ValidMovementType(in.Type) {
		return nil, domain.ErrInvalidInput
	}
	if len(in.Lines) == 0 {
		return nil, domain.ErrEmptyMovement
	}
	status := in.Status
	if status == "" {
		status = entity.MovementStatusDRAFT
	}
	if status != entity.MovementStatusDRAFT && status != entity.MovementStatusPENDING {
		return nil, domain.ErrInvalidInput
	}
	priority := in.Priority
	if priority == "" {
		priority = entity.MovementPriorityNORMAL
	}
	if !entity.ValidMovementPriority(priority) {
		return nil, domain.ErrInvalidInput
	}

	wh, err := g.warehouseRepo.GetByID(in.WarehouseID)
	if err != nil {
		return nil, err
	}
	if wh == nil {
		return nil, domain.ErrNotFound
	}
	if wh.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}

	itemIDs := make([]string, 0, len(in.Lines))
	for _, l := range in.Lines {
		if l.ItemID == "" {
			return nil, domain.ErrInvalidInput
		}
		if !l.RequestedQty.GreaterThan(decimal.Zero) {
			return nil, domain.ErrQuantityOutOfRange
		}
		itemIDs = append(itemIDs, l.ItemID)
	}
	items, err := g.itemRepo.GetByIDs(itemIDs)
	if err != nil {
		return nil, err
	}
	for _, id := range itemIDs {
		item, ok := items[id]
		if !ok {
			return nil, domain.ErrNotFound
		}
		if item.CompanyID != companyID {
			return nil, domain.ErrForbidden
		}
	}
	if err := g.checkLocations(companyID, in.SourceLocationID, in.DestinationLocationID); err != nil {
		return nil, err
	}

	now := time.Now()
	movDate := now
	if in.MovementDate != nil {
		movDate = *in.MovementDate
	}
	m := &entity.Movement{
		ID:                    uuid.New().String(),
		CompanyID:             companyID,
		WarehouseID:           in.WarehouseID,
		ReferenceNumber:       in.ReferenceNumber,
		Type:                  in.Type,
		Status:                status,
		Priority:              priority,
		MovementDate:          movDate,
		ExpectedDate:          in.ExpectedDate,
		ScheduledDate:         in.ScheduledDate,
		SourceLocationID:      in.SourceLocationID,
		DestinationLocationID: in.DestinationLocationID,
		SourceUserID:          in.SourceUserID,
		DestinationUserID:     in.DestinationUserID,
		Notes:                 in.Notes,
		CreatedBy:             userID,
		CreatedAt:             now,
		UpdatedAt:             now,
		Version:               1,
	}
	for i, l := range in.Lines {
		uom := l.UnitOfMeasure
		if uom == "" {
			uom = items[l.ItemID].UnitOfMeasure
		}
		m.Lines = append(m.Lines, &entity.MovementLine{
			ID:             uuid.New().String(),
			MovementID:     m.ID,
			LineNumber:     i + 1,
			ItemID:         l.ItemID,
			RequestedQty:   l.RequestedQty,
			UnitOfMeasure:  uom,
			LotNumber:      l.LotNumber,
			SerialNumber:   l.SerialNumber,
			FromLocationID: l.FromLocationID,
			ToLocationID:   l.ToLocationID,
			Status:         entity.LineStatusPENDING,
			Notes:          l.Notes,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
	}

	err = g.txRunner.Run(ctx, func(movRepo repository.MovementRepository) error {
		return movRepo.Create(m)
	})
	if err != nil {
		return nil, err
	}
	return toMovementResponse(m, now, true), nil
}

// UpdateMovement edita la cabecera, solo mientras el movimiento sigue en
// DRAFT/PENDING.
func (g *Gateway) UpdateMovement(ctx context.Context, companyID, id string, in dto.UpdateMovementRequest) (*dto.MovementResponse, error) {
	if in.Priority != nil && !entity.ValidMovementPriority(*in.Priority) {
		return nil, domain.ErrInvalidInput
	}
	var out *dto.MovementResponse
	err := g.txRunner.Run(ctx, func(movRepo repository.MovementRepository) error {
		m, err := g.loadOwned(movRepo, companyID, id)
		if err != nil {
			return err
		}
		if !m.IsEditable() {
			return domain.ErrInvalidTransition
		}
		now := time.Now()
		if in.ReferenceNumber != nil {
			m.ReferenceNumber = *in.ReferenceNumber
		}
		if in.Priority != nil {
			m.Priority = *in.Priority
		}
		if in.MovementDate != nil {
			m.MovementDate = *in.MovementDate
		}
		if in.ExpectedDate != nil {
			m.ExpectedDate = in.ExpectedDate
		}
		if in.ScheduledDate != nil {
			m.ScheduledDate = in.ScheduledDate
		}
		if in.SourceLocationID != nil {
			m.SourceLocationID = *in.SourceLocationID
		}
		if in.DestinationLocationID != nil {
			m.DestinationLocationID = *in.DestinationLocationID
		}
		if in.Notes != nil {
			m.Notes = *in.Notes
		}
		if err := g.checkLocations(companyID, m.SourceLocationID, m.DestinationLocationID); err != nil {
			return err
		}
		m.UpdatedAt = now
		if err := movRepo.Save(m); err != nil {
			return err
		}
		out = toMovementResponse(m, now, true)
		return nil
	})
	return out, err
}

// DeleteMovement borra el agregado completo en cascada, solo pre-activación.
// Un movimiento ya activo se cancela, no se borra.
func (g *Gateway) DeleteMovement(ctx context.Context, companyID, id string) error {
	return g.txRunner.Run(ctx, func(movRepo repository.MovementRepository) error {
		m, err := g.loadOwned(movRepo, companyID, id)
		if err != nil {
			return err
		}
		if !m.IsEditable() {
			return domain.ErrInvalidTransition
		}
		return movRepo.Delete(id)
	})
}

// StartMovement activa el movimiento (DRAFT/PENDING -> IN_PROGRESS).
func (g *Gateway) StartMovement(ctx context.Context, companyID, id string) (*dto.MovementResponse, error) {
	return g.transition(ctx, companyID, id, func(m *entity.Movement, now time.Time) error {
		return movement.Start(m, now)
	})
}

// HoldMovement pausa el movimiento recordando el estado previo.
func (g *Gateway) HoldMovement(ctx context.Context, companyID, id, reason string) (*dto.MovementResponse, error) {
	return g.transition(ctx, companyID, id, func(m *entity.Movement, now time.Time) error {
		return movement.Hold(m, reason, now)
	})
}

// ReleaseMovement reanuda un movimiento ON_HOLD y re-ejecuta la reconciliación:
// si todas las líneas se resolvieron durante la pausa, el movimiento se deriva
// de inmediato.
func (g *Gateway) ReleaseMovement(ctx context.Context, companyID, id string) (*dto.MovementResponse, error) {
	return g.transition(ctx, companyID, id, func(m *entity.Movement, now time.Time) error {
		if err := movement.Release(m, now); err != nil {
			return err
		}
		movement.Reconcile(m, now)
		return nil
	})
}

// CancelMovement cancela el movimiento con cascada a líneas y tareas, todo en
// un único commit.
func (g *Gateway) CancelMovement(ctx context.Context, companyID, id, reason string) (*dto.MovementResponse, error) {
	return g.transition(ctx, companyID, id, func(m *entity.Movement, now time.Time) error {
		return movement.Cancel(m, reason, now)
	})
}

// CompleteMovement es el cierre forzado por operador (la completación normal
// la deriva la reconciliación al resolverse la última línea). Cancela lo
// abierto, audita quién forzó y re-corre la reconciliación para que los campos
// derivados queden consistentes.
func (g *Gateway) CompleteMovement(ctx context.Context, companyID, userID, id, reason string) (*dto.MovementResponse, error) {
	return g.transition(ctx, companyID, id, func(m *entity.Movement, now time.Time) error {
		if err := movement.ForceComplete(m, userID, reason, now); err != nil {
			return err
		}
		movement.Reconcile(m, now)
		return nil
	})
}

// transition ejecuta un comando de ciclo de vida dentro de la transacción:
// relee el agregado, aplica el motor y persiste con check de versión.
func (g *Gateway) transition(ctx context.Context, companyID, id string, fn func(*entity.Movement, time.Time) error) (*dto.MovementResponse, error) {
	var out *dto.MovementResponse
	err := g.txRunner.Run(ctx, func(movRepo repository.MovementRepository) error {
		m, err := g.loadOwned(movRepo, companyID, id)
		if err != nil {
			return err
		}
		now := time.Now()
		if err := fn(m, now); err != nil {
			return err
		}
		if err := movRepo.Save(m); err != nil {
			return err
		}
		for _, t := range m.Tasks {
			if err := movRepo.UpdateTask(t); err != nil {
				return err
			}
		}
		out = toMovementResponse(m, now, true)
		return nil
	})
	return out, err
}

// loadOwned relee el agregado y verifica pertenencia a la empresa.
func (g *Gateway) loadOwned(movRepo repository.MovementRepository, companyID, id string) (*entity.Movement, error) {
	m, err := movRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.ErrNotFound
	}
	if m.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	return m, nil
}

// checkLocations valida que las ubicaciones referenciadas existan y sean de la
// empresa. IDs vacíos se ignoran.
func (g *Gateway) checkLocations(companyID string, ids ...string) error {
	for _, id := range ids {
		if id == "" {
			continue
		}
		loc, err := g.locationRepo.GetByID(id)
		if err != nil {
			return err
		}
		if loc == nil {
			return domain.ErrNotFound
		}
		if loc.CompanyID != companyID {
			return domain.ErrForbidden
		}
	}
	return nil
}
