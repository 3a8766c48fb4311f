package repository

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/facturacion-api/internal/domain/entity"
)

// InvoiceFilter filtros del listado de facturas.
type InvoiceFilter struct {
	Status    string
	ClientID  string
	StartDate *time.Time
	EndDate   *time.Time
	Limit     int
	Offset    int
}

// InvoiceListRow fila del listado: cabecera más datos del cliente y conteo de líneas.
type InvoiceListRow struct {
	Invoice    entity.Invoice
	ClientName string
	ItemsCount int
}

// InvoiceStats agregados para la cabecera del listado.
type InvoiceStats struct {
	Total         int
	Pending       int
	Paid          int
	Cancelled     int
	TotalAmount   decimal.Decimal // excluye canceladas
	PaidAmount    decimal.Decimal
	PendingAmount decimal.Decimal
}

// InvoiceRepository define el puerto de persistencia para facturas y líneas.
type InvoiceRepository interface {
	Create(invoice *entity.Invoice) error
	CreateItem(item *entity.InvoiceItem) error
	GetByID(id string) (*entity.Invoice, error)
	GetItemsByInvoiceID(invoiceID string) ([]*entity.InvoiceItem, error)
	// GetLastNumberForUpdate lee el mayor invoice_number bloqueando la fila
	// (SELECT ... FOR UPDATE) para serializar la numeración entre creaciones
	// concurrentes. Retorna "" si no hay facturas.
	GetLastNumberForUpdate() (string, error)
	// UpdateStatus actualiza solo status/paid_at/updated_at, condicionado a
	// que el estado actual siga siendo fromStatus (ErrConflict si otra
	// transición ganó la carrera); los totales nunca se recalculan después
	// de la creación.
	UpdateStatus(invoice *entity.Invoice, fromStatus string) error
	List(filter InvoiceFilter) ([]*InvoiceListRow, int, error)
	Stats() (*InvoiceStats, error)
}
