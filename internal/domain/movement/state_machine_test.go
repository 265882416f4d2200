package movement_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/movement"
)

var testNow = time.Date(2025, 11, 3, 10, 0, 0, 0, time.UTC)

// buildMovement construye un movimiento de prueba con n líneas PENDING.
func buildMovement(status string, lineQtys ...int64) *entity.Movement {
	m := &entity.Movement{
		ID:           "mov-1",
		CompanyID:    "co-1",
		WarehouseID:  "wh-1",
		Type:         entity.MovementTypeTRANSFER,
		Status:       status,
		Priority:     entity.MovementPriorityNORMAL,
		MovementDate: testNow,
		CreatedAt:    testNow,
	}
	for i, q := range lineQtys {
		m.Lines = append(m.Lines, &entity.MovementLine{
			ID:           "line-" + string(rune('a'+i)),
			MovementID:   m.ID,
			LineNumber:   i + 1,
			ItemID:       "item-1",
			RequestedQty: decimal.NewFromInt(q),
			Status:       entity.LineStatusPENDING,
			CreatedAt:    testNow,
		})
	}
	return m
}

func TestStart_DesdePendingPasaAInProgress(t *testing.T) {
	m := buildMovement(entity.MovementStatusPENDING, 10)
	require.NoError(t, movement.Start(m, testNow))
	assert.Equal(t, entity.MovementStatusINPROGRESS, m.Status)
}

func TestStart_DesdeDraftAutoPromueve(t *testing.T) {
	m := buildMovement(entity.MovementStatusDRAFT, 10)
	require.NoError(t, movement.Start(m, testNow))
	assert.Equal(t, entity.MovementStatusINPROGRESS, m.Status)
}

// Escenario: start() sobre un movimiento sin líneas falla con EmptyMovement y
// el estado no cambia.
func TestStart_SinLineasFallaEmptyMovement(t *testing.T) {
	m := buildMovement(entity.MovementStatusPENDING)
	err := movement.Start(m, testNow)
	require.ErrorIs(t, err, domain.ErrEmptyMovement)
	assert.Equal(t, entity.MovementStatusPENDING, m.Status, "el estado no debe cambiar tras el fallo")
}

func TestStart_EstadosIlegales(t *testing.T) {
	for _, status := range []string{
		entity.MovementStatusINPROGRESS,
		entity.MovementStatusONHOLD,
		entity.MovementStatusCOMPLETED,
		entity.MovementStatusCANCELLED,
	} {
		m := buildMovement(status, 10)
		err := movement.Start(m, testNow)
		require.ErrorIs(t, err, domain.ErrInvalidTransition, "start desde %s debe fallar", status)

		var ite *domain.InvalidTransitionError
		require.ErrorAs(t, err, &ite)
		assert.Equal(t, status, ite.From, "el error debe reportar el estado actual")
	}
}

func TestHold_RecuerdaEstadoPrevio(t *testing.T) {
	m := buildMovement(entity.MovementStatusINPROGRESS, 10)
	require.NoError(t, movement.Hold(m, "auditoría de bodega", testNow))
	assert.Equal(t, entity.MovementStatusONHOLD, m.Status)
	assert.Equal(t, entity.MovementStatusINPROGRESS, m.HeldFrom)
	assert.Equal(t, "auditoría de bodega", m.Reason)
}

func TestHold_SinMotivoFalla(t *testing.T) {
	m := buildMovement(entity.MovementStatusPENDING, 10)
	assert.ErrorIs(t, movement.Hold(m, "", testNow), domain.ErrReasonRequired)
}

func TestHold_DesdeDraftFalla(t *testing.T) {
	m := buildMovement(entity.MovementStatusDRAFT, 10)
	assert.ErrorIs(t, movement.Hold(m, "x", testNow), domain.ErrInvalidTransition)
}

func TestRelease_VuelveAlEstadoRecordado(t *testing.T) {
	m := buildMovement(entity.MovementStatusINPROGRESS, 10)
	require.NoError(t, movement.Hold(m, "pausa", testNow))
	require.NoError(t, movement.Release(m, testNow))
	assert.Equal(t, entity.MovementStatusINPROGRESS, m.Status)
	assert.Empty(t, m.HeldFrom)
}

func TestRelease_SoloDesdeOnHold(t *testing.T) {
	m := buildMovement(entity.MovementStatusPENDING, 10)
	assert.ErrorIs(t, movement.Release(m, testNow), domain.ErrInvalidTransition)
}

// Escenario: cancel() sobre un movimiento IN_PROGRESS con una línea PICKED y
// una tarea PENDING cancela línea, tarea y movimiento en cascada.
func TestCancel_CascadaLineasYTareas(t *testing.T) {
	m := buildMovement(entity.MovementStatusINPROGRESS, 10)
	m.Lines[0].Status = entity.LineStatusPICKED
	m.Tasks = append(m.Tasks, &entity.MovementTask{
		ID:         "task-1",
		MovementID: m.ID,
		TaskType:   entity.TaskTypePICK,
		Status:     entity.TaskStatusPENDING,
		Priority:   5,
		CreatedAt:  testNow,
	})

	require.NoError(t, movement.Cancel(m, "pedido anulado por el cliente", testNow))

	assert.Equal(t, entity.MovementStatusCANCELLED, m.Status)
	assert.Equal(t, entity.LineStatusCANCELLED, m.Lines[0].Status)
	assert.Equal(t, entity.TaskStatusCANCELLED, m.Tasks[0].Status)
	assert.Equal(t, "pedido anulado por el cliente", m.Reason)
}

func TestCancel_NoTocaLineasYaResueltas(t *testing.T) {
	qty := decimal.NewFromInt(10)
	m := buildMovement(entity.MovementStatusINPROGRESS, 10, 5)
	m.Lines[0].Status = entity.LineStatusCOMPLETED
	m.Lines[0].ActualQty = &qty

	require.NoError(t, movement.Cancel(m, "faltante", testNow))

	assert.Equal(t, entity.LineStatusCOMPLETED, m.Lines[0].Status, "una línea terminal no re-entra")
	assert.Equal(t, entity.LineStatusCANCELLED, m.Lines[1].Status)
}

func TestCancel_TerminalFalla(t *testing.T) {
	m := buildMovement(entity.MovementStatusCOMPLETED, 10)
	assert.ErrorIs(t, movement.Cancel(m, "tarde", testNow), domain.ErrInvalidTransition)

	m = buildMovement(entity.MovementStatusCANCELLED, 10)
	assert.ErrorIs(t, movement.Cancel(m, "doble", testNow), domain.ErrInvalidTransition)
}

func TestCancel_SinMotivoFalla(t *testing.T) {
	m := buildMovement(entity.MovementStatusINPROGRESS, 10)
	assert.ErrorIs(t, movement.Cancel(m, "", testNow), domain.ErrReasonRequired)
}

func TestForceComplete_CierraLineasAbiertasYAudita(t *testing.T) {
	qty := decimal.NewFromInt(10)
	m := buildMovement(entity.MovementStatusINPROGRESS, 10, 5)
	m.Lines[0].Status = entity.LineStatusCOMPLETED
	m.Lines[0].ActualQty = &qty

	require.NoError(t, movement.ForceComplete(m, "user-op", "inventario físico agotado", testNow))
	assert.Equal(t, entity.LineStatusCANCELLED, m.Lines[1].Status)
	assert.Equal(t, "user-op", m.CompletedBy)

	// El estado final lo deriva la reconciliación, no el comando.
	changed := movement.Reconcile(m, testNow)
	assert.True(t, changed)
	assert.Equal(t, entity.MovementStatusPARTIALLYCOMPLETED, m.Status)
}

func TestForceComplete_SoloDesdeInProgress(t *testing.T) {
	m := buildMovement(entity.MovementStatusPENDING, 10)
	assert.ErrorIs(t, movement.ForceComplete(m, "u", "", testNow), domain.ErrInvalidTransition)
}
