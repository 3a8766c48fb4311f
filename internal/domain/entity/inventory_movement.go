package entity

import "time"

// Tipos de movimiento de inventario. Conjunto canónico único: las variantes
// in/out/adjustment de rutas antiguas se normalizan a adjustment_in/adjustment_out.
const (
	MovementTypeSale          = "sale"           // venta (referencia a la factura)
	MovementTypeAdjustmentIn  = "adjustment_in"  // ajuste manual que suma
	MovementTypeAdjustmentOut = "adjustment_out" // ajuste manual que resta
	MovementTypeSet           = "set"            // fija la cantidad en un valor absoluto
)

// Tipos de referencia para movimientos.
const (
	ReferenceTypeInvoice = "invoice"
)

// InventoryMovement es una entrada inmutable de la bitácora de stock: registra
// el delta con signo y las cantidades antes/después. Es la única fuente de
// verdad de cómo el stock llegó a su valor actual; nunca se actualiza ni borra.
type InventoryMovement struct {
	ID               string
	ProductID        string
	Quantity         int64 // delta con signo: positivo entra, negativo sale
	PreviousQuantity int64
	NewQuantity      int64
	Type             string
	ReferenceType    string // "invoice" para ventas; vacío en ajustes manuales
	ReferenceID      string
	Notes            string
	CreatedBy        string // UserID del actor
	CreatedAt        time.Time
}
