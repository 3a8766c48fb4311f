// Package analytics contiene el caso de uso de lectura para el resumen del
// dashboard: conteos de catálogo, valor de inventario, facturación del mes y
// ventas de los últimos días.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/facturacion-api/internal/application/dto"
	"github.com/jhoicas/facturacion-api/internal/domain/repository"
)

const (
	dashboardRecentInvoices = 5
	dashboardLowStockLimit  = 10
	dashboardSalesDays      = 7
)

// DashboardUseCase genera el resumen del dashboard principal.
//
// Fuente de datos: DashboardRepository (consultas read-only). No accede
// directamente a las tablas; delega todo en el repositorio.
type DashboardUseCase struct {
	repo repository.DashboardRepository
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(repo repository.DashboardRepository) *DashboardUseCase {
	return &DashboardUseCase{repo: repo}
}

// GetSummary construye el DashboardSummaryDTO.
//
// Las siete consultas corren en paralelo; son lecturas independientes y el
// dashboard tolera el desfase de milisegundos entre ellas.
func (uc *DashboardUseCase) GetSummary(ctx context.Context) (*dto.DashboardSummaryDTO, error) {
	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	salesSince := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).
		AddDate(0, 0, -(dashboardSalesDays - 1))

	type result struct {
		products  *repository.ProductCounts
		inventory *repository.InventoryStats
		invoices  *repository.MonthInvoiceStats
		recent    []*repository.RecentInvoiceRow
		lowStock  []*repository.LowStockRow
		sales     []*repository.DailySalesRow
		clients   int
		err       error
	}

	productsCh := make(chan result, 1)
	inventoryCh := make(chan result, 1)
	invoicesCh := make(chan result, 1)
	recentCh := make(chan result, 1)
	lowStockCh := make(chan result, 1)
	salesCh := make(chan result, 1)
	clientsCh := make(chan result, 1)

	go func() {
		counts, err := uc.repo.GetProductCounts(ctx)
		productsCh <- result{products: counts, err: err}
	}()
	go func() {
		stats, err := uc.repo.GetInventoryStats(ctx)
		inventoryCh <- result{inventory: stats, err: err}
	}()
	go func() {
		stats, err := uc.repo.GetMonthInvoiceStats(ctx, monthStart)
		invoicesCh <- result{invoices: stats, err: err}
	}()
	go func() {
		rows, err := uc.repo.GetRecentInvoices(ctx, dashboardRecentInvoices)
		recentCh <- result{recent: rows, err: err}
	}()
	go func() {
		rows, err := uc.repo.GetLowStockProducts(ctx, dashboardLowStockLimit)
		lowStockCh <- result{lowStock: rows, err: err}
	}()
	go func() {
		rows, err := uc.repo.GetSalesByDay(ctx, salesSince)
		salesCh <- result{sales: rows, err: err}
	}()
	go func() {
		count, err := uc.repo.GetClientCount(ctx)
		clientsCh <- result{clients: count, err: err}
	}()

	products := <-productsCh
	inventory := <-inventoryCh
	invoices := <-invoicesCh
	recent := <-recentCh
	lowStock := <-lowStockCh
	sales := <-salesCh
	clients := <-clientsCh

	if products.err != nil {
		return nil, fmt.Errorf("dashboard: conteo de productos: %w", products.err)
	}
	if inventory.err != nil {
		return nil, fmt.Errorf("dashboard: inventario: %w", inventory.err)
	}
	if invoices.err != nil {
		return nil, fmt.Errorf("dashboard: facturación del mes: %w", invoices.err)
	}
	if recent.err != nil {
		return nil, fmt.Errorf("dashboard: facturas recientes: %w", recent.err)
	}
	if lowStock.err != nil {
		return nil, fmt.Errorf("dashboard: stock bajo: %w", lowStock.err)
	}
	if sales.err != nil {
		return nil, fmt.Errorf("dashboard: ventas por día: %w", sales.err)
	}
	if clients.err != nil {
		return nil, fmt.Errorf("dashboard: conteo de clientes: %w", clients.err)
	}

	summary := &dto.DashboardSummaryDTO{
		Products: dto.DashboardProductsDTO{
			Total:  products.products.Total,
			Active: products.products.Active,
		},
		Inventory: dto.DashboardInventoryDTO{
			TotalValue: inventory.inventory.TotalValue.Round(2),
			LowStock:   inventory.inventory.LowStock,
			OutOfStock: inventory.inventory.OutOfStock,
		},
		Invoices: dto.DashboardInvoicesDTO{
			Total:       invoices.invoices.Total,
			Pending:     invoices.invoices.Pending,
			Paid:        invoices.invoices.Paid,
			TotalAmount: invoices.invoices.TotalAmount.Round(2),
			PaidAmount:  invoices.invoices.PaidAmount.Round(2),
		},
		Clients:          dto.DashboardClientsDTO{Total: clients.clients},
		RecentInvoices:   make([]dto.RecentInvoiceDTO, 0, len(recent.recent)),
		LowStockProducts: make([]dto.LowStockProductDTO, 0, len(lowStock.lowStock)),
		SalesByDay:       make([]dto.DailySalesDTO, 0, len(sales.sales)),
	}
	for _, row := range recent.recent {
		summary.RecentInvoices = append(summary.RecentInvoices, dto.RecentInvoiceDTO{
			ID:            row.ID,
			InvoiceNumber: row.InvoiceNumber,
			ClientName:    row.ClientName,
			Total:         row.Total,
			Status:        row.Status,
			CreatedAt:     row.CreatedAt,
		})
	}
	for _, row := range lowStock.lowStock {
		summary.LowStockProducts = append(summary.LowStockProducts, dto.LowStockProductDTO{
			ProductID:   row.ProductID,
			ProductCode: row.ProductCode,
			ProductName: row.ProductName,
			Quantity:    row.Quantity,
			MinStock:    row.MinStock,
		})
	}
	for _, row := range sales.sales {
		summary.SalesByDay = append(summary.SalesByDay, dto.DailySalesDTO{
			Date:   row.Date,
			Count:  row.Count,
			Amount: row.Amount,
		})
	}
	return summary, nil
}
