package dto

import "time"

// CreateItemRequest entrada para crear un artículo del catálogo.
type CreateItemRequest struct {
	SKU           string `json:"sku"`
	Name          string `json:"name"`
	UnitOfMeasure string `json:"unit_of_measure,omitempty"`
}

// ItemResponse salida de un artículo.
type ItemResponse struct {
	ID            string    `json:"id"`
	CompanyID     string    `json:"company_id"`
	SKU           string    `json:"sku"`
	Name          string    `json:"name"`
	UnitOfMeasure string    `json:"unit_of_measure,omitempty"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"created_at"`
}

// CreateLocationRequest entrada para crear una ubicación.
type CreateLocationRequest struct {
	WarehouseID string `json:"warehouse_id"`
	Code        string `json:"code"`
	Name        string `json:"name,omitempty"`
}

// LocationResponse salida de una ubicación.
type LocationResponse struct {
	ID          string    `json:"id"`
	CompanyID   string    `json:"company_id"`
	WarehouseID string    `json:"warehouse_id"`
	Code        string    `json:"code"`
	Name        string    `json:"name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateWarehouseRequest entrada para crear una bodega.
type CreateWarehouseRequest struct {
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
}

// WarehouseResponse salida de una bodega.
type WarehouseResponse struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"company_id"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
