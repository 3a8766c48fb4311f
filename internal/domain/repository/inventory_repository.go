package repository

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/facturacion-api/internal/domain/entity"
)

// InventoryLevelRow es el modelo de lectura del listado de inventario:
// la fila de stock junto con los datos del producto que el dashboard muestra.
type InventoryLevelRow struct {
	Inventory   entity.Inventory
	ProductCode string
	ProductName string
	Price       decimal.Decimal
	Category    string
}

// InventoryStats agregados del inventario activo.
type InventoryStats struct {
	Total      int
	LowStock   int
	OutOfStock int
	TotalValue decimal.Decimal // Σ quantity * price
}

// InventoryRepository define el puerto para consultar/actualizar stock.
// Las escrituras solo ocurren dentro de transacciones, acompañadas del
// movimiento correspondiente.
type InventoryRepository interface {
	Get(productID string) (*entity.Inventory, error)
	// GetForUpdate bloquea la fila para update (SELECT FOR UPDATE); es la
	// unidad de serialización entre creaciones de factura concurrentes.
	GetForUpdate(productID string) (*entity.Inventory, error)
	Create(inv *entity.Inventory) error
	UpdateQuantity(productID string, quantity int64) error
	// List retorna niveles con datos de producto; status filtra por
	// in_stock/low_stock/out_of_stock (vacío = todos).
	List(search, status string, limit, offset int) ([]*InventoryLevelRow, error)
	Stats() (*InventoryStats, error)
}
