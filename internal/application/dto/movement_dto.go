package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateMovementRequest body para POST /api/movements. Las líneas viajan
// atómicamente con el movimiento y no pueden ser vacías.
type CreateMovementRequest struct {
	WarehouseID           string              `json:"warehouse_id"`
	ReferenceNumber       string              `json:"reference_number,omitempty"`
	Type                  string              `json:"type"`
	Status                string              `json:"status,omitempty"` // DRAFT o PENDING; default DRAFT
	Priority              string              `json:"priority,omitempty"`
	MovementDate          *time.Time          `json:"movement_date,omitempty"`
	ExpectedDate          *time.Time          `json:"expected_date,omitempty"`
	ScheduledDate         *time.Time          `json:"scheduled_date,omitempty"`
	SourceLocationID      string              `json:"source_location_id,omitempty"`
	DestinationLocationID string              `json:"destination_location_id,omitempty"`
	SourceUserID          string              `json:"source_user_id,omitempty"`
	DestinationUserID     string              `json:"destination_user_id,omitempty"`
	Notes                 string              `json:"notes,omitempty"`
	Lines                 []CreateLineRequest `json:"lines"`
}

// UpdateMovementRequest body para PUT /api/movements/:id (solo DRAFT/PENDING).
type UpdateMovementRequest struct {
	ReferenceNumber       *string    `json:"reference_number,omitempty"`
	Priority              *string    `json:"priority,omitempty"`
	MovementDate          *time.Time `json:"movement_date,omitempty"`
	ExpectedDate          *time.Time `json:"expected_date,omitempty"`
	ScheduledDate         *time.Time `json:"scheduled_date,omitempty"`
	SourceLocationID      *string    `json:"source_location_id,omitempty"`
	DestinationLocationID *string    `json:"destination_location_id,omitempty"`
	Notes                 *string    `json:"notes,omitempty"`
}

// ReasonRequest body para comandos que exigen motivo (cancel, hold).
type ReasonRequest struct {
	Reason string `json:"reason"`
}

// CreateLineRequest línea dentro de CreateMovementRequest o body para
// POST /api/movement-lines (con MovementID).
type CreateLineRequest struct {
	MovementID     string          `json:"movement_id,omitempty"`
	ItemID         string          `json:"item_id"`
	RequestedQty   decimal.Decimal `json:"requested_qty"`
	UnitOfMeasure  string          `json:"unit_of_measure,omitempty"`
	LotNumber      string          `json:"lot_number,omitempty"`
	SerialNumber   string          `json:"serial_number,omitempty"`
	FromLocationID string          `json:"from_location_id,omitempty"`
	ToLocationID   string          `json:"to_location_id,omitempty"`
	Notes          string          `json:"notes,omitempty"`
}

// UpdateLineRequest body para PUT /api/movement-lines/:id (pre-activación).
type UpdateLineRequest struct {
	RequestedQty   *decimal.Decimal `json:"requested_qty,omitempty"`
	UnitOfMeasure  *string          `json:"unit_of_measure,omitempty"`
	LotNumber      *string          `json:"lot_number,omitempty"`
	SerialNumber   *string          `json:"serial_number,omitempty"`
	FromLocationID *string          `json:"from_location_id,omitempty"`
	ToLocationID   *string          `json:"to_location_id,omitempty"`
	Notes          *string          `json:"notes,omitempty"`
}

// AdvanceLineRequest body para POST /api/movement-lines/:id/advance.
// ActualQty solo se acepta cuando el destino es COMPLETED.
type AdvanceLineRequest struct {
	TargetStatus string           `json:"target_status"`
	ActualQty    *decimal.Decimal `json:"actual_qty,omitempty"`
}

// CreateTaskRequest body para POST /api/movement-tasks.
type CreateTaskRequest struct {
	MovementID         string     `json:"movement_id"`
	LineID             string     `json:"line_id,omitempty"`
	TaskType           string     `json:"task_type"`
	Priority           int        `json:"priority,omitempty"` // 1..10, default 5
	ScheduledStart     *time.Time `json:"scheduled_start,omitempty"`
	ExpectedCompletion *time.Time `json:"expected_completion,omitempty"`
	LocationID         string     `json:"location_id,omitempty"`
	Instructions       string     `json:"instructions,omitempty"`
}

// UpdateTaskRequest body para PUT /api/movement-tasks/:id.
type UpdateTaskRequest struct {
	Priority           *int       `json:"priority,omitempty"`
	ScheduledStart     *time.Time `json:"scheduled_start,omitempty"`
	ExpectedCompletion *time.Time `json:"expected_completion,omitempty"`
	LocationID         *string    `json:"location_id,omitempty"`
	Instructions       *string    `json:"instructions,omitempty"`
	Notes              *string    `json:"notes,omitempty"`
}

// AssignTaskRequest body para POST /api/movement-tasks/:id/assign.
type AssignTaskRequest struct {
	UserID string `json:"user_id"`
}

// MovementResponse salida de un movimiento con su progreso derivado.
type MovementResponse struct {
	ID                    string         `json:"id"`
	CompanyID             string         `json:"company_id"`
	WarehouseID           string         `json:"warehouse_id"`
	ReferenceNumber       string         `json:"reference_number,omitempty"`
	Type                  string         `json:"type"`
	Status                string         `json:"status"`
	Priority              string         `json:"priority"`
	MovementDate          time.Time      `json:"movement_date"`
	ExpectedDate          *time.Time     `json:"expected_date,omitempty"`
	ScheduledDate         *time.Time     `json:"scheduled_date,omitempty"`
	SourceLocationID      string         `json:"source_location_id,omitempty"`
	DestinationLocationID string         `json:"destination_location_id,omitempty"`
	SourceUserID          string         `json:"source_user_id,omitempty"`
	DestinationUserID     string         `json:"destination_user_id,omitempty"`
	Notes                 string         `json:"notes,omitempty"`
	Reason                string         `json:"reason,omitempty"`
	CreatedBy             string         `json:"created_by"`
	CreatedAt             time.Time      `json:"created_at"`
	CompletedBy           string         `json:"completed_by,omitempty"`
	CompletedAt           *time.Time     `json:"completed_at,omitempty"`
	UpdatedAt             time.Time      `json:"updated_at"`
	Version               int64          `json:"version"`
	TotalLines            int            `json:"total_lines"`
	CompletedLines        int            `json:"completed_lines"`
	ProgressPct           float64        `json:"progress_pct"`
	Lines                 []LineResponse `json:"lines,omitempty"`
	Tasks                 []TaskResponse `json:"tasks,omitempty"`
}

// LineResponse salida de una línea con su varianza derivada.
type LineResponse struct {
	ID             string           `json:"id"`
	MovementID     string           `json:"movement_id"`
	LineNumber     int              `json:"line_number"`
	ItemID         string           `json:"item_id"`
	RequestedQty   decimal.Decimal  `json:"requested_qty"`
	ActualQty      *decimal.Decimal `json:"actual_qty,omitempty"`
	Variance       *decimal.Decimal `json:"variance,omitempty"`
	UnitOfMeasure  string           `json:"unit_of_measure,omitempty"`
	LotNumber      string           `json:"lot_number,omitempty"`
	SerialNumber   string           `json:"serial_number,omitempty"`
	FromLocationID string           `json:"from_location_id,omitempty"`
	ToLocationID   string           `json:"to_location_id,omitempty"`
	Status         string           `json:"status"`
	Notes          string           `json:"notes,omitempty"`
	Reason         string           `json:"reason,omitempty"`
}

// TaskResponse salida de una tarea con sus campos derivados (vencida, duración).
type TaskResponse struct {
	ID                 string     `json:"id"`
	MovementID         string     `json:"movement_id"`
	LineID             string     `json:"line_id,omitempty"`
	TaskType           string     `json:"task_type"`
	Status             string     `json:"status"`
	Priority           int        `json:"priority"`
	AssignedUserID     string     `json:"assigned_user_id,omitempty"`
	ScheduledStart     *time.Time `json:"scheduled_start,omitempty"`
	ExpectedCompletion *time.Time `json:"expected_completion,omitempty"`
	ActualStart        *time.Time `json:"actual_start,omitempty"`
	ActualCompletion   *time.Time `json:"actual_completion,omitempty"`
	LocationID         string     `json:"location_id,omitempty"`
	Instructions       string     `json:"instructions,omitempty"`
	Notes              string     `json:"notes,omitempty"`
	IsOverdue          bool       `json:"is_overdue"`
	DurationMinutes    *float64   `json:"duration_minutes,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}
