package movement

import (
	"context"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando un
// repositorio del agregado atado a esa tx. Cada comando aplica su transición
// más la cascada de reconciliación, o falla completo, dentro de esa frontera.
type TxRunner interface {
	Run(ctx context.Context, fn func(movRepo repository.MovementRepository) error) error
}

// PickingSheetGenerator genera el documento PDF de picking de un movimiento
// (hoja imprimible con las líneas y cantidades para el operario de bodega).
type PickingSheetGenerator interface {
	GeneratePickingSheet(
		ctx context.Context,
		m *entity.Movement,
		warehouse *entity.Warehouse,
		items map[string]*entity.Item,
	) ([]byte, error)
}
