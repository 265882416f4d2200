package movement_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Almacen-api/internal/application/dto"
	"github.com/jhoicas/Almacen-api/internal/application/movement"
	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria
//
// fakeStore implementa repository.MovementRepository con el mismo contrato que
// el adaptador de PostgreSQL: Save es check-and-increment sobre Version y
// ClaimTask es compare-and-set sobre (status, assigned_user_id). GetByID
// devuelve copias para que el check de versión sea significativo.
// ──────────────────────────────────────────────────────────────────────────────

type fakeStore struct {
	mu        sync.Mutex
	movements map[string]*entity.Movement
	lines     map[string]*entity.MovementLine
	tasks     map[string]*entity.MovementTask
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		movements: make(map[string]*entity.Movement),
		lines:     make(map[string]*entity.MovementLine),
		tasks:     make(map[string]*entity.MovementTask),
	}
}

// refTaken replica la restricción UNIQUE nullable de reference_number: solo
// colisionan referencias presentes; la ausencia (vacío/NULL) nunca colisiona.
func (s *fakeStore) refTaken(ref, selfID string) bool {
	if ref == "" {
		return false
	}
	for _, other := range s.movements {
		if other.ID != selfID && other.ReferenceNumber == ref {
			return true
		}
	}
	return false
}

func (s *fakeStore) Create(m *entity.Movement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.refTaken(m.ReferenceNumber, m.ID) {
		return domain.ErrDuplicate
	}
	header := *m
	header.Lines, header.Tasks = nil, nil
	s.movements[m.ID] = &header
	for _, l := range m.Lines {
		cp := *l
		s.lines[l.ID] = &cp
	}
	for _, t := range m.Tasks {
		cp := *t
		s.tasks[t.ID] = &cp
	}
	return nil
}

func (s *fakeStore) GetByID(id string) (*entity.Movement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.movements[id]
	if !ok {
		return nil, nil
	}
	m := *stored
	for _, l := range s.lines {
		if l.MovementID == id {
			cp := *l
			m.Lines = append(m.Lines, &cp)
		}
	}
	sort.Slice(m.Lines, func(i, j int) bool { return m.Lines[i].LineNumber < m.Lines[j].LineNumber })
	for _, t := range s.tasks {
		if t.MovementID == id {
			cp := *t
			m.Tasks = append(m.Tasks, &cp)
		}
	}
	sort.Slice(m.Tasks, func(i, j int) bool {
		if !m.Tasks[i].CreatedAt.Equal(m.Tasks[j].CreatedAt) {
			return m.Tasks[i].CreatedAt.Before(m.Tasks[j].CreatedAt)
		}
		return m.Tasks[i].ID < m.Tasks[j].ID
	})
	return &m, nil
}

func (s *fakeStore) List(f repository.MovementFilter) ([]*entity.Movement, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []*entity.Movement
	for _, m := range s.movements {
		if f.CompanyID != "" && m.CompanyID != f.CompanyID {
			continue
		}
		if f.WarehouseID != "" && m.WarehouseID != f.WarehouseID {
			continue
		}
		if f.Status != "" && m.Status != f.Status {
			continue
		}
		if f.Type != "" && m.Type != f.Type {
			continue
		}
		if f.From != nil && m.MovementDate.Before(*f.From) {
			continue
		}
		if f.To != nil && m.MovementDate.After(*f.To) {
			continue
		}
		cp := *m
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].MovementDate.After(all[j].MovementDate) })
	total := len(all)
	if f.Offset > len(all) {
		return nil, total, nil
	}
	all = all[f.Offset:]
	if f.Limit > 0 && len(all) > f.Limit {
		all = all[:f.Limit]
	}
	return all, total, nil
}

func (s *fakeStore) Save(m *entity.Movement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.movements[m.ID]
	if !ok || stored.Version != m.Version {
		return domain.ErrConcurrentModification
	}
	if s.refTaken(m.ReferenceNumber, m.ID) {
		return domain.ErrDuplicate
	}
	header := *m
	header.Lines, header.Tasks = nil, nil
	header.Version = m.Version + 1
	s.movements[m.ID] = &header
	m.Version++
	for _, l := range m.Lines {
		cp := *l
		s.lines[l.ID] = &cp
	}
	return nil
}

func (s *fakeStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for lid, l := range s.lines {
		if l.MovementID == id {
			delete(s.lines, lid)
		}
	}
	for tid, t := range s.tasks {
		if t.MovementID == id {
			delete(s.tasks, tid)
		}
	}
	delete(s.movements, id)
	return nil
}

func (s *fakeStore) CreateLine(l *entity.MovementLine) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *l
	s.lines[l.ID] = &cp
	return nil
}

func (s *fakeStore) GetLine(id string) (*entity.MovementLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.lines[id]
	if !ok {
		return nil, nil
	}
	cp := *l
	return &cp, nil
}

func (s *fakeStore) UpdateLine(l *entity.MovementLine) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *l
	s.lines[l.ID] = &cp
	return nil
}

func (s *fakeStore) CreateTask(t *entity.MovementTask) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *t
	s.tasks[t.ID] = &cp
	return nil
}

func (s *fakeStore) GetTask(id string) (*entity.MovementTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (s *fakeStore) ListTasks(f repository.TaskFilter) ([]*entity.MovementTask, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	var all []*entity.MovementTask
	for _, t := range s.tasks {
		m, ok := s.movements[t.MovementID]
		if !ok || (f.CompanyID != "" && m.CompanyID != f.CompanyID) {
			continue
		}
		if f.MovementID != "" && t.MovementID != f.MovementID {
			continue
		}
		if f.AssignedUserID != "" && t.AssignedUserID != f.AssignedUserID {
			continue
		}
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		if f.OverdueOnly && !t.IsOverdue(now) {
			continue
		}
		cp := *t
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Priority != all[j].Priority {
			return all[i].Priority > all[j].Priority
		}
		return all[i].ID < all[j].ID
	})
	total := len(all)
	if f.Offset > len(all) {
		return nil, total, nil
	}
	all = all[f.Offset:]
	if f.Limit > 0 && len(all) > f.Limit {
		all = all[:f.Limit]
	}
	return all, total, nil
}

func (s *fakeStore) UpdateTask(t *entity.MovementTask) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *t
	s.tasks[t.ID] = &cp
	return nil
}

func (s *fakeStore) ClaimTask(taskID, userID string, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[taskID]
	if !ok || t.Status != entity.TaskStatusPENDING || t.AssignedUserID != "" {
		return false, nil
	}
	t.AssignedUserID = userID
	t.Status = entity.TaskStatusASSIGNED
	t.UpdatedAt = now
	return true, nil
}

// fakeTxRunner ejecuta el closure directamente contra el store compartido.
type fakeTxRunner struct{ store *fakeStore }

func (r *fakeTxRunner) Run(_ context.Context, fn func(repository.MovementRepository) error) error {
	return fn(r.store)
}

type fakeItemRepo struct{ items map[string]*entity.Item }

func (r *fakeItemRepo) Create(item *entity.Item) error { r.items[item.ID] = item; return nil }
func (r *fakeItemRepo) GetByID(id string) (*entity.Item, error) {
	return r.items[id], nil
}
func (r *fakeItemRepo) GetByIDs(ids []string) (map[string]*entity.Item, error) {
	out := make(map[string]*entity.Item)
	for _, id := range ids {
		if it, ok := r.items[id]; ok {
			out[id] = it
		}
	}
	return out, nil
}
func (r *fakeItemRepo) ListByCompany(string, int, int) ([]*entity.Item, int, error) {
	return nil, 0, nil
}

type fakeLocationRepo struct{ locs map[string]*entity.Location }

func (r *fakeLocationRepo) Create(l *entity.Location) error { r.locs[l.ID] = l; return nil }
func (r *fakeLocationRepo) GetByID(id string) (*entity.Location, error) {
	return r.locs[id], nil
}
func (r *fakeLocationRepo) ListByWarehouse(string, int, int) ([]*entity.Location, int, error) {
	return nil, 0, nil
}

type fakeWarehouseRepo struct{ whs map[string]*entity.Warehouse }

func (r *fakeWarehouseRepo) Create(w *entity.Warehouse) error { r.whs[w.ID] = w; return nil }
func (r *fakeWarehouseRepo) GetByID(id string) (*entity.Warehouse, error) {
	return r.whs[id], nil
}
func (r *fakeWarehouseRepo) ListByCompany(string, int, int) ([]*entity.Warehouse, int, error) {
	return nil, 0, nil
}

type fakeUserRepo struct{ users map[string]*entity.User }

func (r *fakeUserRepo) Create(u *entity.User) error { r.users[u.ID] = u; return nil }
func (r *fakeUserRepo) GetByID(id string) (*entity.User, error) {
	return r.users[id], nil
}
func (r *fakeUserRepo) FindByEmail(email string) (*entity.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Fixture
// ──────────────────────────────────────────────────────────────────────────────

const (
	companyID  = "co-1"
	otherCo    = "co-2"
	warehouse1 = "wh-1"
	warehouse2 = "wh-ajena"
	item1      = "item-1"
	item2      = "item-2"
	location1  = "loc-1"
	user1      = "user-1"
	user2      = "user-2"
	inactiveU  = "user-inactivo"
)

type fixture struct {
	gw    *movement.Gateway
	store *fakeStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := newFakeStore()
	items := &fakeItemRepo{items: map[string]*entity.Item{
		item1: {ID: item1, CompanyID: companyID, SKU: "SKU-1", Name: "Cajas", UnitOfMeasure: "UN", Active: true},
		item2: {ID: item2, CompanyID: companyID, SKU: "SKU-2", Name: "Harina", UnitOfMeasure: "KG", Active: true},
	}}
	locs := &fakeLocationRepo{locs: map[string]*entity.Location{
		location1: {ID: location1, CompanyID: companyID, WarehouseID: warehouse1, Code: "A-01"},
	}}
	whs := &fakeWarehouseRepo{whs: map[string]*entity.Warehouse{
		warehouse1: {ID: warehouse1, CompanyID: companyID, Name: "Bodega Central"},
		warehouse2: {ID: warehouse2, CompanyID: otherCo, Name: "Bodega Ajena"},
	}}
	users := &fakeUserRepo{users: map[string]*entity.User{
		user1:     {ID: user1, CompanyID: companyID, Email: "op1@test.cl", Role: entity.RoleOperario, Status: "active"},
		user2:     {ID: user2, CompanyID: companyID, Email: "op2@test.cl", Role: entity.RoleOperario, Status: "active"},
		inactiveU: {ID: inactiveU, CompanyID: companyID, Email: "baja@test.cl", Role: entity.RoleOperario, Status: "inactive"},
	}}
	gw := movement.NewGateway(&fakeTxRunner{store: store}, store, items, locs, whs, users, nil)
	return &fixture{gw: gw, store: store}
}

func qty(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// createDraft crea un movimiento DRAFT de transferencia con las cantidades dadas.
func (f *fixture) createDraft(t *testing.T, quantities ...string) *dto.MovementResponse {
	t.Helper()
	var lines []dto.CreateLineRequest
	items := []string{item1, item2}
	for i, q := range quantities {
		lines = append(lines, dto.CreateLineRequest{
			ItemID:       items[i%len(items)],
			RequestedQty: qty(q),
		})
	}
	out, err := f.gw.CreateMovement(context.Background(), companyID, user1, dto.CreateMovementRequest{
		WarehouseID: warehouse1,
		Type:        entity.MovementTypeTRANSFER,
		Lines:       lines,
	})
	require.NoError(t, err, "la creación del movimiento no debe fallar")
	return out
}

// createTask agrega una tarea PICK al movimiento dado.
func (f *fixture) createTask(t *testing.T, movementID string, priority int) *dto.TaskResponse {
	t.Helper()
	out, err := f.gw.CreateTask(context.Background(), companyID, dto.CreateTaskRequest{
		MovementID: movementID,
		TaskType:   entity.TaskTypePICK,
		Priority:   priority,
	})
	require.NoError(t, err, "la creación de la tarea no debe fallar")
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Creación y edición de movimientos
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateMovement_NumeraLineasYVersionInicial(t *testing.T) {
	f := newFixture(t)
	out := f.createDraft(t, "10", "2.5")

	assert.Equal(t, entity.MovementStatusDRAFT, out.Status, "el estado inicial por defecto es DRAFT")
	assert.Equal(t, int64(1), out.Version, "la versión inicial debe ser 1")
	require.Len(t, out.Lines, 2)
	assert.Equal(t, 1, out.Lines[0].LineNumber, "las líneas se numeran contiguas desde 1")
	assert.Equal(t, 2, out.Lines[1].LineNumber)
	assert.Equal(t, "UN", out.Lines[0].UnitOfMeasure, "la UM se hereda del artículo si no viene en la línea")
	assert.Equal(t, "KG", out.Lines[1].UnitOfMeasure)
	assert.Equal(t, user1, out.CreatedBy)
}

func TestCreateMovement_ReferenciaOpcionalNoColisiona(t *testing.T) {
	f := newFixture(t)
	// Dos movimientos sin referencia: la ausencia nunca es un duplicado.
	f.createDraft(t, "1")
	f.createDraft(t, "2")

	// Una referencia presente sí es única.
	_, err := f.gw.CreateMovement(context.Background(), companyID, user1, dto.CreateMovementRequest{
		WarehouseID:     warehouse1,
		ReferenceNumber: "OC-2026-001",
		Type:            entity.MovementTypeINBOUND,
		Lines:           []dto.CreateLineRequest{{ItemID: item1, RequestedQty: qty("1")}},
	})
	require.NoError(t, err)

	_, err = f.gw.CreateMovement(context.Background(), companyID, user1, dto.CreateMovementRequest{
		WarehouseID:     warehouse1,
		ReferenceNumber: "OC-2026-001",
		Type:            entity.MovementTypeINBOUND,
		Lines:           []dto.CreateLineRequest{{ItemID: item1, RequestedQty: qty("1")}},
	})
	assert.ErrorIs(t, err, domain.ErrDuplicate, "una referencia presente repetida debe rechazarse como duplicado")
}

func TestCreateMovement_SinLineasRechazado(t *testing.T) {
	f := newFixture(t)
	_, err := f.gw.CreateMovement(context.Background(), companyID, user1, dto.CreateMovementRequest{
		WarehouseID: warehouse1,
		Type:        entity.MovementTypeINBOUND,
	})
	assert.ErrorIs(t, err, domain.ErrEmptyMovement, "un movimiento sin líneas debe ser rechazado")
}

func TestCreateMovement_TipoInvalido(t *testing.T) {
	f := newFixture(t)
	_, err := f.gw.CreateMovement(context.Background(), companyID, user1, dto.CreateMovementRequest{
		WarehouseID: warehouse1,
		Type:        "TELEPORT",
		Lines:       []dto.CreateLineRequest{{ItemID: item1, RequestedQty: qty("1")}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreateMovement_CantidadNoPositiva(t *testing.T) {
	f := newFixture(t)
	_, err := f.gw.CreateMovement(context.Background(), companyID, user1, dto.CreateMovementRequest{
		WarehouseID: warehouse1,
		Type:        entity.MovementTypeOUTBOUND,
		Lines:       []dto.CreateLineRequest{{ItemID: item1, RequestedQty: qty("0")}},
	})
	assert.ErrorIs(t, err, domain.ErrQuantityOutOfRange, "cantidad solicitada cero debe ser rechazada")
}

func TestCreateMovement_BodegaDeOtraEmpresa(t *testing.T) {
	f := newFixture(t)
	_, err := f.gw.CreateMovement(context.Background(), companyID, user1, dto.CreateMovementRequest{
		WarehouseID: warehouse2,
		Type:        entity.MovementTypeTRANSFER,
		Lines:       []dto.CreateLineRequest{{ItemID: item1, RequestedQty: qty("1")}},
	})
	assert.ErrorIs(t, err, domain.ErrForbidden, "no se puede crear contra una bodega de otra empresa")
}

func TestUpdateMovement_RechazadoTrasActivar(t *testing.T) {
	f := newFixture(t)
	m := f.createDraft(t, "5")
	_, err := f.gw.StartMovement(context.Background(), companyID, m.ID)
	require.NoError(t, err)

	notes := "cambio tardío"
	_, err = f.gw.UpdateMovement(context.Background(), companyID, m.ID, dto.UpdateMovementRequest{Notes: &notes})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "la cabecera es inmutable tras la activación")
}

func TestDeleteMovement_SoloPreActivacion(t *testing.T) {
	f := newFixture(t)
	draft := f.createDraft(t, "5")
	require.NoError(t, f.gw.DeleteMovement(context.Background(), companyID, draft.ID))
	_, err := f.gw.GetMovement(context.Background(), companyID, draft.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound, "el borrado elimina el agregado completo")

	active := f.createDraft(t, "5")
	_, err = f.gw.StartMovement(context.Background(), companyID, active.ID)
	require.NoError(t, err)
	err = f.gw.DeleteMovement(context.Background(), companyID, active.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "un movimiento activo se cancela, no se borra")
}

// ──────────────────────────────────────────────────────────────────────────────
// Ciclo de vida del movimiento
// ──────────────────────────────────────────────────────────────────────────────

func TestStartMovement_ActivaYSubeVersion(t *testing.T) {
	f := newFixture(t)
	m := f.createDraft(t, "3")

	out, err := f.gw.StartMovement(context.Background(), companyID, m.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.MovementStatusINPROGRESS, out.Status)
	assert.Equal(t, int64(2), out.Version, "cada escritura incrementa el token de versión")
}

func TestHoldRelease_VuelveAlEstadoPrevio(t *testing.T) {
	f := newFixture(t)
	m := f.createDraft(t, "3")
	_, err := f.gw.StartMovement(context.Background(), companyID, m.ID)
	require.NoError(t, err)

	held, err := f.gw.HoldMovement(context.Background(), companyID, m.ID, "espera de camión")
	require.NoError(t, err)
	assert.Equal(t, entity.MovementStatusONHOLD, held.Status)

	released, err := f.gw.ReleaseMovement(context.Background(), companyID, m.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.MovementStatusINPROGRESS, released.Status,
		"release debe volver exactamente al estado previo al hold")
}

func TestHoldMovement_SinMotivoRechazado(t *testing.T) {
	f := newFixture(t)
	m := f.createDraft(t, "3")
	_, err := f.gw.StartMovement(context.Background(), companyID, m.ID)
	require.NoError(t, err)

	_, err = f.gw.HoldMovement(context.Background(), companyID, m.ID, "")
	assert.ErrorIs(t, err, domain.ErrReasonRequired)
}

func TestCancelMovement_CascadaLineasYTareas(t *testing.T) {
	f := newFixture(t)
	m := f.createDraft(t, "3", "7")
	task := f.createTask(t, m.ID, 5)
	_, err := f.gw.StartMovement(context.Background(), companyID, m.ID)
	require.NoError(t, err)

	out, err := f.gw.CancelMovement(context.Background(), companyID, m.ID, "pedido anulado")
	require.NoError(t, err)
	assert.Equal(t, entity.MovementStatusCANCELLED, out.Status)
	for _, l := range out.Lines {
		assert.Equal(t, entity.LineStatusCANCELLED, l.Status, "la cancelación cascada a todas las líneas abiertas")
	}

	// La cascada de tareas también queda persistida.
	stored, err := f.store.GetTask(task.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TaskStatusCANCELLED, stored.Status, "la cascada a tareas debe persistirse en el mismo commit")
}

func TestCancelMovement_SinMotivoRechazado(t *testing.T) {
	f := newFixture(t)
	m := f.createDraft(t, "3")
	_, err := f.gw.CancelMovement(context.Background(), companyID, m.ID, "")
	assert.ErrorIs(t, err, domain.ErrReasonRequired, "cancelar exige motivo")
}

func TestCompleteMovement_CierreForzado(t *testing.T) {
	f := newFixture(t)
	m := f.createDraft(t, "3", "7")
	_, err := f.gw.StartMovement(context.Background(), companyID, m.ID)
	require.NoError(t, err)

	// Una línea completada, la otra queda abierta y será cancelada por el cierre.
	_, err = f.gw.AdvanceLine(context.Background(), companyID, user1, m.Lines[0].ID, dto.AdvanceLineRequest{
		TargetStatus: entity.LineStatusCOMPLETED,
	})
	require.NoError(t, err)

	out, err := f.gw.CompleteMovement(context.Background(), companyID, user2, m.ID, "inventario físico cerrado")
	require.NoError(t, err)
	assert.Equal(t, entity.MovementStatusPARTIALLYCOMPLETED, out.Status,
		"con mezcla de completadas y canceladas el estado derivado es PARTIALLY_COMPLETED")
	assert.Equal(t, user2, out.CompletedBy, "el cierre forzado audita quién lo ejecutó")
}

// ──────────────────────────────────────────────────────────────────────────────
// Líneas y reconciliación
// ──────────────────────────────────────────────────────────────────────────────

func TestAdvanceLine_CompletaYReconcilia(t *testing.T) {
	f := newFixture(t)
	m := f.createDraft(t, "10")
	_, err := f.gw.StartMovement(context.Background(), companyID, m.ID)
	require.NoError(t, err)

	actual := qty("8")
	out, err := f.gw.AdvanceLine(context.Background(), companyID, user1, m.Lines[0].ID, dto.AdvanceLineRequest{
		TargetStatus: entity.LineStatusCOMPLETED,
		ActualQty:    &actual,
	})
	require.NoError(t, err)

	assert.Equal(t, entity.MovementStatusCOMPLETED, out.Status,
		"al resolverse la última línea la reconciliación deriva el estado final")
	assert.Equal(t, user1, out.CompletedBy, "quien resolvió la última línea queda auditado")
	assert.NotNil(t, out.CompletedAt)
	assert.Equal(t, float64(100), out.ProgressPct)
	require.Len(t, out.Lines, 1)
	require.NotNil(t, out.Lines[0].Variance)
	assert.True(t, out.Lines[0].Variance.Equal(qty("-2")), "varianza = real - solicitado")
}

func TestAdvanceLine_RequiereMovimientoActivo(t *testing.T) {
	f := newFixture(t)
	m := f.createDraft(t, "10")

	_, err := f.gw.AdvanceLine(context.Background(), companyID, user1, m.Lines[0].ID, dto.AdvanceLineRequest{
		TargetStatus: entity.LineStatusPICKED,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "las líneas solo avanzan con el movimiento IN_PROGRESS")
}

func TestAdvanceLine_RetrocesoRechazado(t *testing.T) {
	f := newFixture(t)
	m := f.createDraft(t, "10")
	_, err := f.gw.StartMovement(context.Background(), companyID, m.ID)
	require.NoError(t, err)

	_, err = f.gw.AdvanceLine(context.Background(), companyID, user1, m.Lines[0].ID, dto.AdvanceLineRequest{
		TargetStatus: entity.LineStatusPICKED,
	})
	require.NoError(t, err)

	_, err = f.gw.AdvanceLine(context.Background(), companyID, user1, m.Lines[0].ID, dto.AdvanceLineRequest{
		TargetStatus: entity.LineStatusALLOCATED,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "una línea nunca retrocede")

	var typed *domain.InvalidTransitionError
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, entity.LineStatusPICKED, typed.From)
	assert.Equal(t, entity.LineStatusALLOCATED, typed.To)
}

func TestCancelLine_MezclaDerivaParcial(t *testing.T) {
	f := newFixture(t)
	m := f.createDraft(t, "4", "6")
	_, err := f.gw.StartMovement(context.Background(), companyID, m.ID)
	require.NoError(t, err)

	_, err = f.gw.AdvanceLine(context.Background(), companyID, user1, m.Lines[0].ID, dto.AdvanceLineRequest{
		TargetStatus: entity.LineStatusCOMPLETED,
	})
	require.NoError(t, err)

	out, err := f.gw.CancelLine(context.Background(), companyID, m.Lines[1].ID, "sin stock")
	require.NoError(t, err)
	assert.Equal(t, entity.MovementStatusPARTIALLYCOMPLETED, out.Status)
	assert.Equal(t, 1, out.CompletedLines)
	assert.InDelta(t, 50, out.ProgressPct, 0.001, "solo las líneas COMPLETED cuentan para el avance")
}

func TestCancelLine_LineaInexistente(t *testing.T) {
	f := newFixture(t)
	_, err := f.gw.CancelLine(context.Background(), companyID, "no-existe", "motivo")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCancelLine_ReferenciaDesalineadaDelAgregado(t *testing.T) {
	f := newFixture(t)
	m := f.createDraft(t, "4")
	_, err := f.gw.StartMovement(context.Background(), companyID, m.ID)
	require.NoError(t, err)

	// Entrada de índice cuyo ID no coincide con ninguna línea del agregado:
	// debe resolverse como no encontrada, nunca como pánico.
	f.store.lines["linea-huerfana"] = &entity.MovementLine{
		ID:         "otro-id",
		MovementID: m.ID,
		Status:     entity.LineStatusPENDING,
	}
	_, err = f.gw.CancelLine(context.Background(), companyID, "linea-huerfana", "motivo")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAddLine_SoloPreActivacion(t *testing.T) {
	f := newFixture(t)
	m := f.createDraft(t, "4")

	l, err := f.gw.AddLine(context.Background(), companyID, dto.CreateLineRequest{
		MovementID:   m.ID,
		ItemID:       item2,
		RequestedQty: qty("1.5"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, l.LineNumber, "la numeración sigue contigua")

	_, err = f.gw.StartMovement(context.Background(), companyID, m.ID)
	require.NoError(t, err)

	_, err = f.gw.AddLine(context.Background(), companyID, dto.CreateLineRequest{
		MovementID:   m.ID,
		ItemID:       item1,
		RequestedQty: qty("1"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "el set de líneas es inmutable tras la activación")
}

// ──────────────────────────────────────────────────────────────────────────────
// Tareas
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateTask_PrioridadPorDefecto(t *testing.T) {
	f := newFixture(t)
	m := f.createDraft(t, "4")
	task := f.createTask(t, m.ID, 0)
	assert.Equal(t, 5, task.Priority, "sin prioridad explícita se usa 5")
	assert.Equal(t, entity.TaskStatusPENDING, task.Status)
}

func TestCreateTask_MovimientoTerminalRechazado(t *testing.T) {
	f := newFixture(t)
	m := f.createDraft(t, "4")
	_, err := f.gw.CancelMovement(context.Background(), companyID, m.ID, "anulado")
	require.NoError(t, err)

	_, err = f.gw.CreateTask(context.Background(), companyID, dto.CreateTaskRequest{
		MovementID: m.ID,
		TaskType:   entity.TaskTypePICK,
	})
	assert.ErrorIs(t, err, domain.ErrAlreadyTerminal)
}

func TestAssignStartComplete_FlujoCompleto(t *testing.T) {
	f := newFixture(t)
	m := f.createDraft(t, "4")
	task := f.createTask(t, m.ID, 7)

	assigned, err := f.gw.AssignTask(context.Background(), companyID, task.ID, user1)
	require.NoError(t, err)
	assert.Equal(t, entity.TaskStatusASSIGNED, assigned.Status)
	assert.Equal(t, user1, assigned.AssignedUserID)

	started, err := f.gw.StartTask(context.Background(), companyID, task.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TaskStatusINPROGRESS, started.Status)
	assert.NotNil(t, started.ActualStart, "start sella la hora real de inicio")

	done, err := f.gw.CompleteTask(context.Background(), companyID, task.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TaskStatusCOMPLETED, done.Status)
	assert.NotNil(t, done.ActualCompletion)
	assert.NotNil(t, done.DurationMinutes, "con inicio y fin reales la duración queda derivada")
}

func TestAssignTask_UsuarioInexistente(t *testing.T) {
	f := newFixture(t)
	m := f.createDraft(t, "4")
	task := f.createTask(t, m.ID, 5)

	_, err := f.gw.AssignTask(context.Background(), companyID, task.ID, "fantasma")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestAssignTask_UsuarioInactivoRechazado(t *testing.T) {
	f := newFixture(t)
	m := f.createDraft(t, "4")
	task := f.createTask(t, m.ID, 5)

	_, err := f.gw.AssignTask(context.Background(), companyID, task.ID, inactiveU)
	assert.ErrorIs(t, err, domain.ErrForbidden, "solo usuarios activos reciben tareas")
}

func TestAssignTask_YaAsignadaRechazada(t *testing.T) {
	f := newFixture(t)
	m := f.createDraft(t, "4")
	task := f.createTask(t, m.ID, 5)

	_, err := f.gw.AssignTask(context.Background(), companyID, task.ID, user1)
	require.NoError(t, err)

	_, err = f.gw.AssignTask(context.Background(), companyID, task.ID, user2)
	assert.ErrorIs(t, err, domain.ErrTaskAlreadyAssigned,
		"la reasignación exige pasar por unassign")
}

func TestAssignTask_ConcurrenciaGanaExactamenteUno(t *testing.T) {
	f := newFixture(t)
	m := f.createDraft(t, "4")
	task := f.createTask(t, m.ID, 5)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, uid := range []string{user1, user2} {
		wg.Add(1)
		go func(i int, uid string) {
			defer wg.Done()
			_, errs[i] = f.gw.AssignTask(context.Background(), companyID, task.ID, uid)
		}(i, uid)
	}
	wg.Wait()

	var wins, losses int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, domain.ErrTaskAlreadyAssigned):
			losses++
		default:
			t.Fatalf("error inesperado en assign concurrente: %v", err)
		}
	}
	assert.Equal(t, 1, wins, "bajo concurrencia debe ganar exactamente un assign")
	assert.Equal(t, 1, losses, "el perdedor debe recibir TaskAlreadyAssigned")

	stored, err := f.store.GetTask(task.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TaskStatusASSIGNED, stored.Status)
	assert.NotEmpty(t, stored.AssignedUserID, "la tarea queda asignada al ganador")
}

func TestUnassignTask_VuelveAlPool(t *testing.T) {
	f := newFixture(t)
	m := f.createDraft(t, "4")
	task := f.createTask(t, m.ID, 5)

	_, err := f.gw.AssignTask(context.Background(), companyID, task.ID, user1)
	require.NoError(t, err)

	out, err := f.gw.UnassignTask(context.Background(), companyID, task.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TaskStatusPENDING, out.Status)
	assert.Empty(t, out.AssignedUserID)

	// Liberada, puede reclamarla otro usuario.
	again, err := f.gw.AssignTask(context.Background(), companyID, task.ID, user2)
	require.NoError(t, err)
	assert.Equal(t, user2, again.AssignedUserID)
}

func TestStartTask_SinAsignarRechazado(t *testing.T) {
	f := newFixture(t)
	m := f.createDraft(t, "4")
	task := f.createTask(t, m.ID, 5)

	_, err := f.gw.StartTask(context.Background(), companyID, task.ID)
	assert.ErrorIs(t, err, domain.ErrTaskNotAssigned)
}

func TestTaskQueue_OrdenDeDespacho(t *testing.T) {
	f := newFixture(t)
	m := f.createDraft(t, "4")

	soon := time.Now().Add(1 * time.Hour)
	later := time.Now().Add(6 * time.Hour)

	low := f.createTask(t, m.ID, 2)
	urgent := f.createTask(t, m.ID, 9)
	midLater, err := f.gw.CreateTask(context.Background(), companyID, dto.CreateTaskRequest{
		MovementID: m.ID, TaskType: entity.TaskTypePACK, Priority: 5, ExpectedCompletion: &later,
	})
	require.NoError(t, err)
	midSoon, err := f.gw.CreateTask(context.Background(), companyID, dto.CreateTaskRequest{
		MovementID: m.ID, TaskType: entity.TaskTypePACK, Priority: 5, ExpectedCompletion: &soon,
	})
	require.NoError(t, err)

	// Una tarea ya asignada no debe aparecer en la cola.
	assigned := f.createTask(t, m.ID, 10)
	_, err = f.gw.AssignTask(context.Background(), companyID, assigned.ID, user1)
	require.NoError(t, err)

	queue, err := f.gw.TaskQueue(context.Background(), companyID, m.ID)
	require.NoError(t, err)
	require.Len(t, queue, 4)
	assert.Equal(t, urgent.ID, queue[0].ID, "prioridad más alta primero")
	assert.Equal(t, midSoon.ID, queue[1].ID, "a igual prioridad, fecha esperada más cercana primero")
	assert.Equal(t, midLater.ID, queue[2].ID)
	assert.Equal(t, low.ID, queue[3].ID, "sin fecha esperada van al final de su prioridad")
}

// ──────────────────────────────────────────────────────────────────────────────
// Concurrencia optimista y consultas
// ──────────────────────────────────────────────────────────────────────────────

func TestSave_VersionObsoletaRechazada(t *testing.T) {
	f := newFixture(t)
	m := f.createDraft(t, "4")

	stale, err := f.store.GetByID(m.ID)
	require.NoError(t, err)

	// Otra escritura gana la carrera y sube la versión.
	_, err = f.gw.StartMovement(context.Background(), companyID, m.ID)
	require.NoError(t, err)

	err = f.store.Save(stale)
	assert.ErrorIs(t, err, domain.ErrConcurrentModification,
		"guardar con versión obsoleta debe fallar con ConcurrentModification")
}

func TestListMovements_FiltraPorEstado(t *testing.T) {
	f := newFixture(t)
	a := f.createDraft(t, "1")
	f.createDraft(t, "2")
	_, err := f.gw.StartMovement(context.Background(), companyID, a.ID)
	require.NoError(t, err)

	page, err := f.gw.ListMovements(context.Background(), companyID, movement.MovementListQuery{
		Status: entity.MovementStatusINPROGRESS,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, page.TotalElements)

	_, err = f.gw.ListMovements(context.Background(), companyID, movement.MovementListQuery{Status: "MUTANTE"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "un estado desconocido en el filtro es error de entrada")
}

func TestGetMovement_DeOtraEmpresaProhibido(t *testing.T) {
	f := newFixture(t)
	m := f.createDraft(t, "1")

	_, err := f.gw.GetMovement(context.Background(), otherCo, m.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden, "el aislamiento por empresa aplica también a las lecturas")
}
