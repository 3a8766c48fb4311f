package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/facturacion-api/internal/domain/repository"
)

var _ repository.DashboardRepository = (*DashboardRepo)(nil)

// DashboardRepo consultas read-only del dashboard. Corre siempre contra el
// pool (nunca dentro de transacciones), por eso sus métodos sí toman contexto.
type DashboardRepo struct {
	q Querier
}

// NewDashboardRepository construye el adaptador.
func NewDashboardRepository(q Querier) *DashboardRepo {
	return &DashboardRepo{q: q}
}

// GetProductCounts cuenta productos totales y activos.
func (r *DashboardRepo) GetProductCounts(ctx context.Context) (*repository.ProductCounts, error) {
	query := `SELECT count(*), count(*) FILTER (WHERE active) FROM products`
	var counts repository.ProductCounts
	if err := r.q.QueryRow(ctx, query).Scan(&counts.Total, &counts.Active); err != nil {
		return nil, fmt.Errorf("product counts: %w", err)
	}
	return &counts, nil
}

// GetInventoryStats agregados de inventario activo.
func (r *DashboardRepo) GetInventoryStats(ctx context.Context) (*repository.InventoryStats, error) {
	query := `
		SELECT count(*),
		       count(*) FILTER (WHERE i.quantity > 0 AND i.quantity <= i.min_stock),
		       count(*) FILTER (WHERE i.quantity <= 0),
		       COALESCE(sum(i.quantity * p.price), 0)
		FROM inventory i
		JOIN products p ON p.id = i.product_id
		WHERE p.active`
	var stats repository.InventoryStats
	err := r.q.QueryRow(ctx, query).Scan(&stats.Total, &stats.LowStock, &stats.OutOfStock, &stats.TotalValue)
	if err != nil {
		return nil, fmt.Errorf("inventory stats: %w", err)
	}
	return &stats, nil
}

// GetMonthInvoiceStats facturación desde el inicio del mes.
func (r *DashboardRepo) GetMonthInvoiceStats(ctx context.Context, monthStart time.Time) (*repository.MonthInvoiceStats, error) {
	query := `
		SELECT count(*),
		       count(*) FILTER (WHERE status = 'pending'),
		       count(*) FILTER (WHERE status = 'paid'),
		       COALESCE(sum(total) FILTER (WHERE status <> 'cancelled'), 0),
		       COALESCE(sum(total) FILTER (WHERE status = 'paid'), 0)
		FROM invoices
		WHERE created_at >= $1`
	var stats repository.MonthInvoiceStats
	err := r.q.QueryRow(ctx, query, monthStart).Scan(
		&stats.Total, &stats.Pending, &stats.Paid, &stats.TotalAmount, &stats.PaidAmount,
	)
	if err != nil {
		return nil, fmt.Errorf("month invoice stats: %w", err)
	}
	return &stats, nil
}

// GetRecentInvoices últimas facturas emitidas.
func (r *DashboardRepo) GetRecentInvoices(ctx context.Context, limit int) ([]*repository.RecentInvoiceRow, error) {
	query := `
		SELECT i.id, i.invoice_number, COALESCE(c.name, ''), i.total, i.status, i.created_at
		FROM invoices i
		LEFT JOIN clients c ON c.id = i.client_id
		ORDER BY i.created_at DESC
		LIMIT $1`
	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("recent invoices: %w", err)
	}
	defer rows.Close()
	var list []*repository.RecentInvoiceRow
	for rows.Next() {
		var row repository.RecentInvoiceRow
		if err := rows.Scan(&row.ID, &row.InvoiceNumber, &row.ClientName, &row.Total, &row.Status, &row.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan recent invoice: %w", err)
		}
		list = append(list, &row)
	}
	return list, rows.Err()
}

// GetLowStockProducts productos activos en o por debajo del umbral mínimo.
func (r *DashboardRepo) GetLowStockProducts(ctx context.Context, limit int) ([]*repository.LowStockRow, error) {
	query := `
		SELECT p.id, p.code, p.name, i.quantity, i.min_stock
		FROM inventory i
		JOIN products p ON p.id = i.product_id
		WHERE p.active AND i.quantity <= i.min_stock
		ORDER BY i.quantity ASC
		LIMIT $1`
	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("low stock products: %w", err)
	}
	defer rows.Close()
	var list []*repository.LowStockRow
	for rows.Next() {
		var row repository.LowStockRow
		if err := rows.Scan(&row.ProductID, &row.ProductCode, &row.ProductName, &row.Quantity, &row.MinStock); err != nil {
			return nil, fmt.Errorf("scan low stock row: %w", err)
		}
		list = append(list, &row)
	}
	return list, rows.Err()
}

// GetSalesByDay ventas agregadas por día desde la fecha dada (canceladas excluidas).
func (r *DashboardRepo) GetSalesByDay(ctx context.Context, since time.Time) ([]*repository.DailySalesRow, error) {
	query := `
		SELECT date_trunc('day', created_at) AS day, count(*), COALESCE(sum(total), 0)
		FROM invoices
		WHERE created_at >= $1 AND status <> 'cancelled'
		GROUP BY day
		ORDER BY day`
	rows, err := r.q.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("sales by day: %w", err)
	}
	defer rows.Close()
	var list []*repository.DailySalesRow
	for rows.Next() {
		var row repository.DailySalesRow
		if err := rows.Scan(&row.Date, &row.Count, &row.Amount); err != nil {
			return nil, fmt.Errorf("scan sales row: %w", err)
		}
		list = append(list, &row)
	}
	return list, rows.Err()
}

// GetClientCount cuenta clientes activos.
func (r *DashboardRepo) GetClientCount(ctx context.Context) (int, error) {
	var count int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM clients WHERE active`).Scan(&count); err != nil {
		return 0, fmt.Errorf("client count: %w", err)
	}
	return count, nil
}
