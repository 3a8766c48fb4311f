package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una factura. Transiciones válidas:
// pending -> paid | cancelled | partial; partial -> paid | cancelled.
const (
	InvoiceStatusPending   = "pending"
	InvoiceStatusPaid      = "paid"
	InvoiceStatusCancelled = "cancelled"
	InvoiceStatusPartial   = "partial"
)

// Tipos de descuento sobre el subtotal (se aplica una sola vez, nunca por línea).
const (
	DiscountTypeFixed      = "fixed"
	DiscountTypePercentage = "percentage"
)

// Invoice representa la cabecera de una factura de venta. Los totales se
// calculan una sola vez al crearla y nunca se recalculan desde el catálogo.
type Invoice struct {
	ID            string
	InvoiceNumber string // único, estrictamente creciente: INV-000001
	ClientID      string // vacío en ventas de mostrador
	UserID        string // quien creó la factura
	Subtotal      decimal.Decimal
	TaxTotal      decimal.Decimal
	Discount      decimal.Decimal // monto ya resuelto (no el porcentaje)
	DiscountType  string
	Total         decimal.Decimal
	Status        string
	PaymentMethod string
	Notes         string
	DueDate       *time.Time
	PaidAt        *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CanTransitionTo valida la máquina de estados de la factura.
func (i *Invoice) CanTransitionTo(status string) bool {
	switch i.Status {
	case InvoiceStatusPending:
		return status == InvoiceStatusPaid || status == InvoiceStatusCancelled || status == InvoiceStatusPartial
	case InvoiceStatusPartial:
		return status == InvoiceStatusPaid || status == InvoiceStatusCancelled
	default:
		// paid y cancelled son terminales
		return false
	}
}
