package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo implementación del puerto MovementRepository sobre PostgreSQL
// (usable con pool o tx). El agregado se materializa completo: cabecera +
// líneas ordenadas por line_number + tareas.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

const movementColumns = `id, company_id, warehouse_id, reference_number, type, status, priority,
	movement_date, expected_date, scheduled_date, source_location_id, destination_location_id,
	source_user_id, destination_user_id, notes, reason, held_from,
	created_by, created_at, completed_by, completed_at, updated_at, version`

// reference_number es único pero opcional: se escribe NULL cuando viene vacío
// (NULLIF) para que la restricción UNIQUE solo aplique a referencias presentes,
// y se lee con COALESCE para mantener el campo como string en la entidad.
const movementSelectColumns = `id, company_id, warehouse_id, COALESCE(reference_number, ''), type, status, priority,
	movement_date, expected_date, scheduled_date, source_location_id, destination_location_id,
	source_user_id, destination_user_id, notes, reason, held_from,
	created_by, created_at, completed_by, completed_at, updated_at, version`

const lineColumns = `id, movement_id, line_number, item_id, requested_qty, actual_qty,
	unit_of_measure, lot_number, serial_number, from_location_id, to_location_id,
	status, notes, reason, created_at, updated_at`

const taskColumns = `id, movement_id, line_id, task_type, status, priority, assigned_user_id,
	scheduled_start, expected_completion, actual_start, actual_completion,
	location_id, instructions, notes, created_at, updated_at`

// Create persiste el movimiento con todas sus líneas y tareas en el mismo Querier.
func (r *MovementRepo) Create(m *entity.Movement) error {
	query := `
		INSERT INTO movements (` + movementColumns + `)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)`
	_, err := r.q.Exec(context.Background(), query,
		m.ID, m.CompanyID, m.WarehouseID, m.ReferenceNumber, m.Type, m.Status, m.Priority,
		m.MovementDate, m.ExpectedDate, m.ScheduledDate, m.SourceLocationID, m.DestinationLocationID,
		m.SourceUserID, m.DestinationUserID, m.Notes, m.Reason, m.HeldFrom,
		m.CreatedBy, m.CreatedAt, m.CompletedBy, m.CompletedAt, m.UpdatedAt, m.Version,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert movement: %w", err)
	}
	for _, l := range m.Lines {
		if err := r.CreateLine(l); err != nil {
			return err
		}
	}
	for _, t := range m.Tasks {
		if err := r.CreateTask(t); err != nil {
			return err
		}
	}
	return nil
}

// GetByID obtiene el agregado completo: movimiento, líneas y tareas.
func (r *MovementRepo) GetByID(id string) (*entity.Movement, error) {
	query := `SELECT ` + movementSelectColumns + ` FROM movements WHERE id = $1`
	var m entity.Movement
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&m.ID, &m.CompanyID, &m.WarehouseID, &m.ReferenceNumber, &m.Type, &m.Status, &m.Priority,
		&m.MovementDate, &m.ExpectedDate, &m.ScheduledDate, &m.SourceLocationID, &m.DestinationLocationID,
		&m.SourceUserID, &m.DestinationUserID, &m.Notes, &m.Reason, &m.HeldFrom,
		&m.CreatedBy, &m.CreatedAt, &m.CompletedBy, &m.CompletedAt, &m.UpdatedAt, &m.Version,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	if m.Lines, err = r.linesOf(id); err != nil {
		return nil, err
	}
	if m.Tasks, err = r.tasksOf(id); err != nil {
		return nil, err
	}
	return &m, nil
}

// List lista movimientos (solo cabeceras) con filtros y paginación. Devuelve
// también el total sin paginar para el sobre de paginación.
func (r *MovementRepo) List(f repository.MovementFilter) ([]*entity.Movement, int, error) {
	where := ` WHERE company_id = $1`
	args := []any{f.CompanyID}
	pos := 2
	if f.WarehouseID != "" {
		where += fmt.Sprintf(" AND warehouse_id = $%d", pos)
		args = append(args, f.WarehouseID)
		pos++
	}
	if f.Status != "" {
		where += fmt.Sprintf(" AND status = $%d", pos)
		args = append(args, f.Status)
		pos++
	}
	if f.Type != "" {
		where += fmt.Sprintf(" AND type = $%d", pos)
		args = append(args, f.Type)
		pos++
	}
	if f.From != nil {
		where += fmt.Sprintf(" AND movement_date >= $%d", pos)
		args = append(args, *f.From)
		pos++
	}
	if f.To != nil {
		where += fmt.Sprintf(" AND movement_date <= $%d", pos)
		args = append(args, *f.To)
		pos++
	}

	var total int
	if err := r.q.QueryRow(context.Background(), `SELECT count(*) FROM movements`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count movements: %w", err)
	}

	query := `SELECT ` + movementSelectColumns + ` FROM movements` + where +
		fmt.Sprintf(" ORDER BY movement_date DESC, created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, f.Limit, f.Offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.Movement
	for rows.Next() {
		var m entity.Movement
		if err := rows.Scan(
			&m.ID, &m.CompanyID, &m.WarehouseID, &m.ReferenceNumber, &m.Type, &m.Status, &m.Priority,
			&m.MovementDate, &m.ExpectedDate, &m.ScheduledDate, &m.SourceLocationID, &m.DestinationLocationID,
			&m.SourceUserID, &m.DestinationUserID, &m.Notes, &m.Reason, &m.HeldFrom,
			&m.CreatedBy, &m.CreatedAt, &m.CompletedBy, &m.CompletedAt, &m.UpdatedAt, &m.Version,
		); err != nil {
			return nil, 0, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, &m)
	}
	return list, total, rows.Err()
}

// Save persiste la cabecera con check-and-increment del token de versión y
// actualiza todas las líneas del agregado. Si la versión leída ya no es la
// vigente devuelve ErrConcurrentModification y no escribe nada (el caller
// corre dentro de una tx que hace rollback).
func (r *MovementRepo) Save(m *entity.Movement) error {
	query := `
		UPDATE movements SET reference_number = NULLIF($2, ''), status = $3, priority = $4, movement_date = $5,
			expected_date = $6, scheduled_date = $7, source_location_id = $8, destination_location_id = $9,
			notes = $10, reason = $11, held_from = $12, completed_by = $13, completed_at = $14,
			updated_at = $15, version = version + 1
		WHERE id = $1 AND version = $16`
	cmd, err := r.q.Exec(context.Background(), query,
		m.ID, m.ReferenceNumber, m.Status, m.Priority, m.MovementDate,
		m.ExpectedDate, m.ScheduledDate, m.SourceLocationID, m.DestinationLocationID,
		m.Notes, m.Reason, m.HeldFrom, m.CompletedBy, m.CompletedAt,
		m.UpdatedAt, m.Version,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("save movement: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrConcurrentModification
	}
	m.Version++
	for _, l := range m.Lines {
		if err := r.UpdateLine(l); err != nil {
			return err
		}
	}
	return nil
}

// Delete borra el agregado completo (tareas, líneas, cabecera).
func (r *MovementRepo) Delete(id string) error {
	ctx := context.Background()
	if _, err := r.q.Exec(ctx, `DELETE FROM movement_tasks WHERE movement_id = $1`, id); err != nil {
		return fmt.Errorf("delete movement tasks: %w", err)
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM movement_lines WHERE movement_id = $1`, id); err != nil {
		return fmt.Errorf("delete movement lines: %w", err)
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM movements WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete movement: %w", err)
	}
	return nil
}

// ── Líneas ────────────────────────────────────────────────────────────────────

// CreateLine persiste una línea.
func (r *MovementRepo) CreateLine(l *entity.MovementLine) error {
	query := `
		INSERT INTO movement_lines (` + lineColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err := r.q.Exec(context.Background(), query,
		l.ID, l.MovementID, l.LineNumber, l.ItemID, l.RequestedQty, l.ActualQty,
		l.UnitOfMeasure, l.LotNumber, l.SerialNumber, l.FromLocationID, l.ToLocationID,
		l.Status, l.Notes, l.Reason, l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert movement line: %w", err)
	}
	return nil
}

// GetLine obtiene una línea por ID.
func (r *MovementRepo) GetLine(id string) (*entity.MovementLine, error) {
	query := `SELECT ` + lineColumns + ` FROM movement_lines WHERE id = $1`
	var l entity.MovementLine
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&l.ID, &l.MovementID, &l.LineNumber, &l.ItemID, &l.RequestedQty, &l.ActualQty,
		&l.UnitOfMeasure, &l.LotNumber, &l.SerialNumber, &l.FromLocationID, &l.ToLocationID,
		&l.Status, &l.Notes, &l.Reason, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement line: %w", err)
	}
	return &l, nil
}

// UpdateLine actualiza una línea existente. La cantidad real se escribe aquí
// una sola vez; la inmutabilidad la garantiza el motor de dominio antes de llegar.
func (r *MovementRepo) UpdateLine(l *entity.MovementLine) error {
	query := `
		UPDATE movement_lines SET requested_qty = $2, actual_qty = $3, unit_of_measure = $4,
			lot_number = $5, serial_number = $6, from_location_id = $7, to_location_id = $8,
			status = $9, notes = $10, reason = $11, updated_at = $12
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		l.ID, l.RequestedQty, l.ActualQty, l.UnitOfMeasure,
		l.LotNumber, l.SerialNumber, l.FromLocationID, l.ToLocationID,
		l.Status, l.Notes, l.Reason, l.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update movement line: %w", err)
	}
	return nil
}

func (r *MovementRepo) linesOf(movementID string) ([]*entity.MovementLine, error) {
	query := `SELECT ` + lineColumns + ` FROM movement_lines WHERE movement_id = $1 ORDER BY line_number`
	rows, err := r.q.Query(context.Background(), query, movementID)
	if err != nil {
		return nil, fmt.Errorf("list movement lines: %w", err)
	}
	defer rows.Close()
	var list []*entity.MovementLine
	for rows.Next() {
		var l entity.MovementLine
		if err := rows.Scan(
			&l.ID, &l.MovementID, &l.LineNumber, &l.ItemID, &l.RequestedQty, &l.ActualQty,
			&l.UnitOfMeasure, &l.LotNumber, &l.SerialNumber, &l.FromLocationID, &l.ToLocationID,
			&l.Status, &l.Notes, &l.Reason, &l.CreatedAt, &l.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan movement line: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}

// ── Tareas ────────────────────────────────────────────────────────────────────

// CreateTask persiste una tarea.
func (r *MovementRepo) CreateTask(t *entity.MovementTask) error {
	query := `
		INSERT INTO movement_tasks (` + taskColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err := r.q.Exec(context.Background(), query,
		t.ID, t.MovementID, t.LineID, t.TaskType, t.Status, t.Priority, t.AssignedUserID,
		t.ScheduledStart, t.ExpectedCompletion, t.ActualStart, t.ActualCompletion,
		t.LocationID, t.Instructions, t.Notes, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert movement task: %w", err)
	}
	return nil
}

// GetTask obtiene una tarea por ID.
func (r *MovementRepo) GetTask(id string) (*entity.MovementTask, error) {
	query := `SELECT ` + taskColumns + ` FROM movement_tasks WHERE id = $1`
	var t entity.MovementTask
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&t.ID, &t.MovementID, &t.LineID, &t.TaskType, &t.Status, &t.Priority, &t.AssignedUserID,
		&t.ScheduledStart, &t.ExpectedCompletion, &t.ActualStart, &t.ActualCompletion,
		&t.LocationID, &t.Instructions, &t.Notes, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement task: %w", err)
	}
	return &t, nil
}

// ListTasks lista tareas con filtros y paginación. OverdueOnly se evalúa contra
// now() en la propia consulta: el vencimiento es siempre un cómputo de lectura.
func (r *MovementRepo) ListTasks(f repository.TaskFilter) ([]*entity.MovementTask, int, error) {
	where := ` WHERE m.company_id = $1`
	args := []any{f.CompanyID}
	pos := 2
	if f.MovementID != "" {
		where += fmt.Sprintf(" AND t.movement_id = $%d", pos)
		args = append(args, f.MovementID)
		pos++
	}
	if f.AssignedUserID != "" {
		where += fmt.Sprintf(" AND t.assigned_user_id = $%d", pos)
		args = append(args, f.AssignedUserID)
		pos++
	}
	if f.Status != "" {
		where += fmt.Sprintf(" AND t.status = $%d", pos)
		args = append(args, f.Status)
		pos++
	}
	if f.OverdueOnly {
		where += ` AND t.expected_completion IS NOT NULL AND t.expected_completion < now()
			AND t.status NOT IN ('COMPLETED', 'CANCELLED')`
	}

	base := ` FROM movement_tasks t JOIN movements m ON m.id = t.movement_id` + where

	var total int
	if err := r.q.QueryRow(context.Background(), `SELECT count(*)`+base, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
	}

	query := `SELECT t.id, t.movement_id, t.line_id, t.task_type, t.status, t.priority, t.assigned_user_id,
		t.scheduled_start, t.expected_completion, t.actual_start, t.actual_completion,
		t.location_id, t.instructions, t.notes, t.created_at, t.updated_at` + base +
		fmt.Sprintf(" ORDER BY t.priority DESC, t.expected_completion ASC NULLS LAST, t.created_at ASC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, f.Limit, f.Offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()
	var list []*entity.MovementTask
	for rows.Next() {
		var t entity.MovementTask
		if err := rows.Scan(
			&t.ID, &t.MovementID, &t.LineID, &t.TaskType, &t.Status, &t.Priority, &t.AssignedUserID,
			&t.ScheduledStart, &t.ExpectedCompletion, &t.ActualStart, &t.ActualCompletion,
			&t.LocationID, &t.Instructions, &t.Notes, &t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan task: %w", err)
		}
		list = append(list, &t)
	}
	return list, total, rows.Err()
}

// UpdateTask actualiza una tarea existente.
func (r *MovementRepo) UpdateTask(t *entity.MovementTask) error {
	query := `
		UPDATE movement_tasks SET task_type = $2, status = $3, priority = $4, assigned_user_id = $5,
			scheduled_start = $6, expected_completion = $7, actual_start = $8, actual_completion = $9,
			location_id = $10, instructions = $11, notes = $12, updated_at = $13
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		t.ID, t.TaskType, t.Status, t.Priority, t.AssignedUserID,
		t.ScheduledStart, t.ExpectedCompletion, t.ActualStart, t.ActualCompletion,
		t.LocationID, t.Instructions, t.Notes, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update movement task: %w", err)
	}
	return nil
}

// ClaimTask es el compare-and-set de asignación: solo gana si la tarea sigue
// PENDING y sin asignado. Devuelve false sin error cuando otro ganó la carrera.
func (r *MovementRepo) ClaimTask(taskID, userID string, now time.Time) (bool, error) {
	query := `
		UPDATE movement_tasks SET assigned_user_id = $2, status = 'ASSIGNED', updated_at = $3
		WHERE id = $1 AND status = 'PENDING' AND assigned_user_id = ''`
	cmd, err := r.q.Exec(context.Background(), query, taskID, userID, now)
	if err != nil {
		return false, fmt.Errorf("claim task: %w", err)
	}
	return cmd.RowsAffected() == 1, nil
}

func (r *MovementRepo) tasksOf(movementID string) ([]*entity.MovementTask, error) {
	query := `SELECT ` + taskColumns + ` FROM movement_tasks WHERE movement_id = $1 ORDER BY created_at`
	rows, err := r.q.Query(context.Background(), query, movementID)
	if err != nil {
		return nil, fmt.Errorf("list movement tasks: %w", err)
	}
	defer rows.Close()
	var list []*entity.MovementTask
	for rows.Next() {
		var t entity.MovementTask
		if err := rows.Scan(
			&t.ID, &t.MovementID, &t.LineID, &t.TaskType, &t.Status, &t.Priority, &t.AssignedUserID,
			&t.ScheduledStart, &t.ExpectedCompletion, &t.ActualStart, &t.ActualCompletion,
			&t.LocationID, &t.Instructions, &t.Notes, &t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan movement task: %w", err)
		}
		list = append(list, &t)
	}
	return list, rows.Err()
}
