package repository

import (
	"time"

	"github.com/jhoicas/facturacion-api/internal/domain/entity"
)

// InventoryMovementRepository define el puerto de persistencia para la
// bitácora de movimientos. Solo inserta y lee: la tabla es append-only.
type InventoryMovementRepository interface {
	Create(movement *entity.InventoryMovement) error
	ListByProduct(productID string, from, to *time.Time, limit, offset int) ([]*entity.InventoryMovement, error)
}
