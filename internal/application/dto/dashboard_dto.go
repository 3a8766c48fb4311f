package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// DashboardSummaryDTO resumen del dashboard principal.
type DashboardSummaryDTO struct {
	Products        DashboardProductsDTO   `json:"products"`
	Inventory       DashboardInventoryDTO  `json:"inventory"`
	Invoices        DashboardInvoicesDTO   `json:"invoices"`
	Clients         DashboardClientsDTO    `json:"clients"`
	RecentInvoices  []RecentInvoiceDTO     `json:"recent_invoices"`
	LowStockProducts []LowStockProductDTO  `json:"low_stock_products"`
	SalesByDay      []DailySalesDTO        `json:"sales_by_day"`
}

// DashboardProductsDTO conteo de productos.
type DashboardProductsDTO struct {
	Total  int `json:"total"`
	Active int `json:"active"`
}

// DashboardInventoryDTO agregados de inventario.
type DashboardInventoryDTO struct {
	TotalValue decimal.Decimal `json:"total_value"`
	LowStock   int             `json:"low_stock"`
	OutOfStock int             `json:"out_of_stock"`
}

// DashboardInvoicesDTO facturación del mes en curso.
type DashboardInvoicesDTO struct {
	Total       int             `json:"total"`
	Pending     int             `json:"pending"`
	Paid        int             `json:"paid"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	PaidAmount  decimal.Decimal `json:"paid_amount"`
}

// DashboardClientsDTO conteo de clientes activos.
type DashboardClientsDTO struct {
	Total int `json:"total"`
}

// RecentInvoiceDTO factura reciente.
type RecentInvoiceDTO struct {
	ID            string          `json:"id"`
	InvoiceNumber string          `json:"invoice_number"`
	ClientName    string          `json:"client_name,omitempty"`
	Total         decimal.Decimal `json:"total"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
}

// LowStockProductDTO producto por debajo del mínimo.
type LowStockProductDTO struct {
	ProductID   string `json:"product_id"`
	ProductCode string `json:"product_code"`
	ProductName string `json:"product_name"`
	Quantity    int64  `json:"quantity"`
	MinStock    int64  `json:"min_stock"`
}

// DailySalesDTO ventas por día (últimos 7 días).
type DailySalesDTO struct {
	Date   time.Time       `json:"date"`
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}
