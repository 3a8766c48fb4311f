package entity

import "github.com/shopspring/decimal"

// InvoiceItem es una línea de factura: snapshot del producto al momento de la
// venta (código, nombre, precio, tarifa), no un join vivo contra el catálogo.
// Inmutable una vez creada.
type InvoiceItem struct {
	ID          string
	InvoiceID   string
	ProductID   string
	ProductCode string
	ProductName string
	Quantity    int64
	UnitPrice   decimal.Decimal
	TaxRate     decimal.Decimal
	TaxAmount   decimal.Decimal
	Subtotal    decimal.Decimal
}
