package repository

import "github.com/jhoicas/Almacen-api/internal/domain/entity"

// LocationRepository define el puerto de resolución de ubicaciones (DIP).
type LocationRepository interface {
	Create(location *entity.Location) error
	GetByID(id string) (*entity.Location, error)
	ListByWarehouse(warehouseID string, limit, offset int) ([]*entity.Location, int, error)
}
