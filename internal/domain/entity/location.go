package entity

import "time"

// Location representa una ubicación dentro de una bodega (pasillo, estante,
// muelle). El núcleo solo la referencia; la geometría del layout queda fuera.
type Location struct {
	ID          string
	CompanyID   string
	WarehouseID string
	Code        string
	Name        string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
