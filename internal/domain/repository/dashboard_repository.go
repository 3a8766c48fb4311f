package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// ProductCounts conteo de productos.
type ProductCounts struct {
	Total  int
	Active int
}

// MonthInvoiceStats facturación del mes en curso.
type MonthInvoiceStats struct {
	Total       int
	Pending     int
	Paid        int
	TotalAmount decimal.Decimal
	PaidAmount  decimal.Decimal
}

// RecentInvoiceRow factura reciente para el widget del dashboard.
type RecentInvoiceRow struct {
	ID            string
	InvoiceNumber string
	ClientName    string
	Total         decimal.Decimal
	Status        string
	CreatedAt     time.Time
}

// LowStockRow producto por debajo del umbral mínimo.
type LowStockRow struct {
	ProductID   string
	ProductCode string
	ProductName string
	Quantity    int64
	MinStock    int64
}

// DailySalesRow ventas agregadas por día.
type DailySalesRow struct {
	Date   time.Time
	Count  int
	Amount decimal.Decimal
}

// DashboardRepository consultas read-only para el resumen del dashboard.
type DashboardRepository interface {
	GetProductCounts(ctx context.Context) (*ProductCounts, error)
	GetInventoryStats(ctx context.Context) (*InventoryStats, error)
	GetMonthInvoiceStats(ctx context.Context, monthStart time.Time) (*MonthInvoiceStats, error)
	GetRecentInvoices(ctx context.Context, limit int) ([]*RecentInvoiceRow, error)
	GetLowStockProducts(ctx context.Context, limit int) ([]*LowStockRow, error)
	GetSalesByDay(ctx context.Context, since time.Time) ([]*DailySalesRow, error)
	GetClientCount(ctx context.Context) (int, error)
}
