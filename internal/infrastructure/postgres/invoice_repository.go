package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/facturacion-api/internal/domain"
	"github.com/jhoicas/facturacion-api/internal/domain/entity"
	"github.com/jhoicas/facturacion-api/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

// Create persiste la cabecera de la factura. La constraint UNIQUE de
// invoice_number es el respaldo del bloqueo de numeración: si dos
// transacciones llegan aquí con el mismo número, la segunda recibe ErrDuplicate.
func (r *InvoiceRepo) Create(invoice *entity.Invoice) error {
	query := `
		INSERT INTO invoices
			(id, invoice_number, client_id, user_id, subtotal, tax_total, discount, discount_type,
			 total, status, payment_method, notes, due_date, paid_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err := r.q.Exec(context.Background(), query,
		invoice.ID, invoice.InvoiceNumber, nullIfEmpty(invoice.ClientID), invoice.UserID,
		invoice.Subtotal, invoice.TaxTotal, invoice.Discount, invoice.DiscountType,
		invoice.Total, invoice.Status, nullIfEmpty(invoice.PaymentMethod), nullIfEmpty(invoice.Notes),
		invoice.DueDate, invoice.PaidAt, invoice.CreatedAt, invoice.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

// CreateItem persiste una línea de factura (snapshot del producto).
func (r *InvoiceRepo) CreateItem(item *entity.InvoiceItem) error {
	query := `
		INSERT INTO invoice_items
			(id, invoice_id, product_id, product_code, product_name, quantity, unit_price, tax_rate, tax_amount, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(context.Background(), query,
		item.ID, item.InvoiceID, item.ProductID, item.ProductCode, item.ProductName,
		item.Quantity, item.UnitPrice, item.TaxRate, item.TaxAmount, item.Subtotal,
	)
	if err != nil {
		return fmt.Errorf("insert invoice item: %w", err)
	}
	return nil
}

// GetByID obtiene la cabecera de una factura. Retorna nil si no existe.
func (r *InvoiceRepo) GetByID(id string) (*entity.Invoice, error) {
	query := `
		SELECT id, invoice_number, COALESCE(client_id::text, ''), user_id,
		       subtotal, tax_total, discount, discount_type, total, status,
		       COALESCE(payment_method, ''), COALESCE(notes, ''),
		       due_date, paid_at, created_at, updated_at
		FROM invoices WHERE id = $1`
	var inv entity.Invoice
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&inv.ID, &inv.InvoiceNumber, &inv.ClientID, &inv.UserID,
		&inv.Subtotal, &inv.TaxTotal, &inv.Discount, &inv.DiscountType, &inv.Total, &inv.Status,
		&inv.PaymentMethod, &inv.Notes,
		&inv.DueDate, &inv.PaidAt, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return &inv, nil
}

// GetItemsByInvoiceID obtiene todas las líneas de una factura.
func (r *InvoiceRepo) GetItemsByInvoiceID(invoiceID string) ([]*entity.InvoiceItem, error) {
	query := `
		SELECT id, invoice_id, product_id, product_code, product_name,
		       quantity, unit_price, tax_rate, tax_amount, subtotal
		FROM invoice_items WHERE invoice_id = $1 ORDER BY id`
	rows, err := r.q.Query(context.Background(), query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list invoice items: %w", err)
	}
	defer rows.Close()
	var list []*entity.InvoiceItem
	for rows.Next() {
		var item entity.InvoiceItem
		err := rows.Scan(
			&item.ID, &item.InvoiceID, &item.ProductID, &item.ProductCode, &item.ProductName,
			&item.Quantity, &item.UnitPrice, &item.TaxRate, &item.TaxAmount, &item.Subtotal,
		)
		if err != nil {
			return nil, fmt.Errorf("scan invoice item: %w", err)
		}
		list = append(list, &item)
	}
	return list, rows.Err()
}

// GetLastNumberForUpdate lee el mayor invoice_number bloqueando la fila.
// Serializa contra transacciones en vuelo, pero no garantiza unicidad por sí
// solo: bajo READ COMMITTED la transacción que esperó el lock puede seguir
// viendo el máximo anterior (y con tabla vacía no hay fila que bloquear). La
// constraint UNIQUE de invoice_number es la garantía; el caso de uso trata la
// violación como señal de reintento.
func (r *InvoiceRepo) GetLastNumberForUpdate() (string, error) {
	query := `
		SELECT invoice_number FROM invoices
		ORDER BY invoice_number DESC
		LIMIT 1
		FOR UPDATE`
	var number string
	err := r.q.QueryRow(context.Background(), query).Scan(&number)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("get last invoice number: %w", err)
	}
	return number, nil
}

// UpdateStatus actualiza solo status, paid_at y updated_at, condicionado al
// estado leído por el caller (compare-and-set): dos transiciones concurrentes
// sobre la misma factura no pueden ganar ambas. Los totales de una factura
// nunca cambian después de creada.
func (r *InvoiceRepo) UpdateStatus(invoice *entity.Invoice, fromStatus string) error {
	query := `UPDATE invoices SET status = $2, paid_at = $3, updated_at = $4 WHERE id = $1 AND status = $5`
	tag, err := r.q.Exec(context.Background(), query,
		invoice.ID, invoice.Status, invoice.PaidAt, invoice.UpdatedAt, fromStatus,
	)
	if err != nil {
		return fmt.Errorf("update invoice status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// La factura existe (el caller ya la leyó): otra transacción cambió
		// el estado entre la lectura y este UPDATE.
		return domain.ErrConflict
	}
	return nil
}

// List lista facturas con filtros y paginación, incluyendo nombre del cliente
// y conteo de líneas.
func (r *InvoiceRepo) List(filter repository.InvoiceFilter) ([]*repository.InvoiceListRow, int, error) {
	args := []any{}
	where := `WHERE TRUE`
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += fmt.Sprintf(` AND i.status = $%d`, len(args))
	}
	if filter.ClientID != "" {
		args = append(args, filter.ClientID)
		where += fmt.Sprintf(` AND i.client_id = $%d`, len(args))
	}
	if filter.StartDate != nil {
		args = append(args, *filter.StartDate)
		where += fmt.Sprintf(` AND i.created_at >= $%d`, len(args))
	}
	if filter.EndDate != nil {
		args = append(args, *filter.EndDate)
		where += fmt.Sprintf(` AND i.created_at <= $%d`, len(args))
	}

	var total int
	countQuery := `SELECT count(*) FROM invoices i ` + where
	if err := r.q.QueryRow(context.Background(), countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count invoices: %w", err)
	}

	args = append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf(`
		SELECT i.id, i.invoice_number, COALESCE(i.client_id::text, ''), i.user_id,
		       i.subtotal, i.tax_total, i.discount, i.discount_type, i.total, i.status,
		       COALESCE(i.payment_method, ''), COALESCE(i.notes, ''),
		       i.due_date, i.paid_at, i.created_at, i.updated_at,
		       COALESCE(c.name, ''),
		       (SELECT count(*) FROM invoice_items it WHERE it.invoice_id = i.id)
		FROM invoices i
		LEFT JOIN clients c ON c.id = i.client_id
		%s
		ORDER BY i.created_at DESC
		LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	var list []*repository.InvoiceListRow
	for rows.Next() {
		var row repository.InvoiceListRow
		inv := &row.Invoice
		err := rows.Scan(
			&inv.ID, &inv.InvoiceNumber, &inv.ClientID, &inv.UserID,
			&inv.Subtotal, &inv.TaxTotal, &inv.Discount, &inv.DiscountType, &inv.Total, &inv.Status,
			&inv.PaymentMethod, &inv.Notes,
			&inv.DueDate, &inv.PaidAt, &inv.CreatedAt, &inv.UpdatedAt,
			&row.ClientName, &row.ItemsCount,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("scan invoice row: %w", err)
		}
		list = append(list, &row)
	}
	return list, total, rows.Err()
}

// Stats calcula los agregados del listado de facturas.
func (r *InvoiceRepo) Stats() (*repository.InvoiceStats, error) {
	query := `
		SELECT count(*),
		       count(*) FILTER (WHERE status = 'pending'),
		       count(*) FILTER (WHERE status = 'paid'),
		       count(*) FILTER (WHERE status = 'cancelled'),
		       COALESCE(sum(total) FILTER (WHERE status <> 'cancelled'), 0),
		       COALESCE(sum(total) FILTER (WHERE status = 'paid'), 0),
		       COALESCE(sum(total) FILTER (WHERE status IN ('pending', 'partial')), 0)
		FROM invoices`
	var stats repository.InvoiceStats
	err := r.q.QueryRow(context.Background(), query).Scan(
		&stats.Total, &stats.Pending, &stats.Paid, &stats.Cancelled,
		&stats.TotalAmount, &stats.PaidAmount, &stats.PendingAmount,
	)
	if err != nil {
		return nil, fmt.Errorf("invoice stats: %w", err)
	}
	return &stats, nil
}
