package entity

import "time"

// Estados de stock calculados contra MinStock.
const (
	StockStatusOut = "out_of_stock"
	StockStatusLow = "low_stock"
	StockStatusIn  = "in_stock"
)

// Inventory representa el stock actual de un producto (una fila por producto).
// Quantity nunca es negativa; toda mutación pasa por el registro de movimientos.
type Inventory struct {
	ProductID string
	Quantity  int64
	MinStock  int64
	UpdatedAt time.Time
}

// StockStatus clasifica la cantidad actual contra el umbral mínimo.
func (i *Inventory) StockStatus() string {
	switch {
	case i.Quantity <= 0:
		return StockStatusOut
	case i.Quantity <= i.MinStock:
		return StockStatusLow
	default:
		return StockStatusIn
	}
}
