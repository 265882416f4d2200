package entity

import "time"

// Item representa una referencia de artículo consultada por el núcleo de
// movimientos (resolución de referencias de solo lectura).
type Item struct {
	ID            string
	CompanyID     string
	SKU           string
	Name          string
	UnitOfMeasure string
	Active        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
