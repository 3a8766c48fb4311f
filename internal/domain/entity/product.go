package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo. Code es la identidad de cara al
// negocio y no cambia una vez referenciado por facturas; el stock vive en
// Inventory y solo se muta vía movimientos.
type Product struct {
	ID          string
	Code        string // código único
	Name        string
	Description string
	CategoryID  string // vacío si no tiene categoría
	Price       decimal.Decimal // precio de venta
	Cost        decimal.Decimal
	TaxRate     decimal.Decimal // porcentaje: 0, 5, 19, ...
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
