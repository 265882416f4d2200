package repository

import "github.com/jhoicas/Almacen-api/internal/domain/entity"

// ItemRepository define el puerto de resolución de referencias de artículos (DIP).
type ItemRepository interface {
	Create(item *entity.Item) error
	GetByID(id string) (*entity.Item, error)
	GetByIDs(ids []string) (map[string]*entity.Item, error)
	ListByCompany(companyID string, limit, offset int) ([]*entity.Item, int, error)
}
