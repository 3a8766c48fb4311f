package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateInvoiceRequest body para POST /api/invoices.
// ClientID vacío = venta de mostrador. Discount se interpreta según
// DiscountType (fixed | percentage) y se aplica una vez sobre el subtotal.
type CreateInvoiceRequest struct {
	ClientID      string               `json:"client_id,omitempty"`
	Items         []InvoiceItemRequest `json:"items"`
	Discount      decimal.Decimal      `json:"discount"`
	DiscountType  string               `json:"discount_type,omitempty"`
	PaymentMethod string               `json:"payment_method,omitempty"`
	Notes         string               `json:"notes,omitempty"`
	DueDate       *time.Time           `json:"due_date,omitempty"`
}

// InvoiceItemRequest línea de factura. UnitPrice opcional: cero = precio de lista.
type InvoiceItemRequest struct {
	ProductID string          `json:"product_id"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price,omitempty"`
}

// UpdateInvoiceStatusRequest body para PUT /api/invoices/:id.
type UpdateInvoiceStatusRequest struct {
	Status string `json:"status"`
}

// InvoiceResponse factura con detalle completo.
type InvoiceResponse struct {
	ID            string                `json:"id"`
	InvoiceNumber string                `json:"invoice_number"`
	ClientID      string                `json:"client_id,omitempty"`
	ClientName    string                `json:"client_name,omitempty"`
	Subtotal      decimal.Decimal       `json:"subtotal"`
	TaxTotal      decimal.Decimal       `json:"tax_total"`
	Discount      decimal.Decimal       `json:"discount"`
	DiscountType  string                `json:"discount_type"`
	Total         decimal.Decimal       `json:"total"`
	Status        string                `json:"status"`
	PaymentMethod string                `json:"payment_method,omitempty"`
	Notes         string                `json:"notes,omitempty"`
	DueDate       *time.Time            `json:"due_date,omitempty"`
	PaidAt        *time.Time            `json:"paid_at,omitempty"`
	CreatedBy     string                `json:"created_by"`
	CreatedAt     time.Time             `json:"created_at"`
	Items         []InvoiceItemResponse `json:"items"`
}

// InvoiceItemResponse línea en la respuesta.
type InvoiceItemResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	ProductCode string          `json:"product_code"`
	ProductName string          `json:"product_name"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	TaxAmount   decimal.Decimal `json:"tax_amount"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// InvoiceListItem fila del listado de facturas.
type InvoiceListItem struct {
	ID            string          `json:"id"`
	InvoiceNumber string          `json:"invoice_number"`
	ClientName    string          `json:"client_name,omitempty"`
	Total         decimal.Decimal `json:"total"`
	Status        string          `json:"status"`
	ItemsCount    int             `json:"items_count"`
	CreatedAt     time.Time       `json:"created_at"`
}

// InvoiceStatsResponse agregados del listado.
type InvoiceStatsResponse struct {
	Total         int             `json:"total"`
	Pending       int             `json:"pending"`
	Paid          int             `json:"paid"`
	Cancelled     int             `json:"cancelled"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	PendingAmount decimal.Decimal `json:"pending_amount"`
}

// InvoiceListResponse listado paginado con estadísticas.
type InvoiceListResponse struct {
	Invoices []InvoiceListItem    `json:"invoices"`
	Stats    InvoiceStatsResponse `json:"stats"`
	Page     PageResponse         `json:"page"`
}
