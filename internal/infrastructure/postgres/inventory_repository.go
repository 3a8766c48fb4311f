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

var _ repository.InventoryRepository = (*InventoryRepo)(nil)

// InventoryRepo implementación de InventoryRepository (usable con pool o tx).
type InventoryRepo struct {
	q Querier
}

// NewInventoryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryRepository(q Querier) *InventoryRepo {
	return &InventoryRepo{q: q}
}

// Get obtiene el stock actual de un producto. Retorna nil si no hay fila.
func (r *InventoryRepo) Get(productID string) (*entity.Inventory, error) {
	query := `SELECT product_id, quantity, min_stock, updated_at FROM inventory WHERE product_id = $1`
	var inv entity.Inventory
	err := r.q.QueryRow(context.Background(), query, productID).Scan(
		&inv.ProductID, &inv.Quantity, &inv.MinStock, &inv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get inventory: %w", err)
	}
	return &inv, nil
}

// GetForUpdate obtiene el stock y bloquea la fila (SELECT FOR UPDATE). Es la
// unidad de serialización entre ventas y ajustes concurrentes sobre el mismo
// producto. ErrNotFound si el producto no tiene fila de inventario.
func (r *InventoryRepo) GetForUpdate(productID string) (*entity.Inventory, error) {
	query := `
		SELECT product_id, quantity, min_stock, updated_at
		FROM inventory WHERE product_id = $1
		FOR UPDATE`
	var inv entity.Inventory
	err := r.q.QueryRow(context.Background(), query, productID).Scan(
		&inv.ProductID, &inv.Quantity, &inv.MinStock, &inv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get inventory for update: %w", err)
	}
	return &inv, nil
}

// Create inserta la fila de inventario de un producto nuevo.
func (r *InventoryRepo) Create(inv *entity.Inventory) error {
	query := `
		INSERT INTO inventory (product_id, quantity, min_stock, updated_at)
		VALUES ($1, $2, $3, $4)`
	_, err := r.q.Exec(context.Background(), query,
		inv.ProductID, inv.Quantity, inv.MinStock, inv.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert inventory: %w", err)
	}
	return nil
}

// UpdateQuantity fija la cantidad de un producto. Solo se llama dentro de
// transacciones, después de GetForUpdate y junto con su movimiento.
func (r *InventoryRepo) UpdateQuantity(productID string, quantity int64) error {
	query := `UPDATE inventory SET quantity = $2, updated_at = now() WHERE product_id = $1`
	tag, err := r.q.Exec(context.Background(), query, productID, quantity)
	if err != nil {
		return fmt.Errorf("update inventory quantity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List retorna los niveles de inventario con datos del producto.
// status filtra por out_of_stock / low_stock / in_stock (vacío = todos).
func (r *InventoryRepo) List(search, status string, limit, offset int) ([]*repository.InventoryLevelRow, error) {
	args := []any{}
	where := `WHERE p.active`
	if search != "" {
		args = append(args, "%"+search+"%")
		where += fmt.Sprintf(` AND (p.code ILIKE $%d OR p.name ILIKE $%d)`, len(args), len(args))
	}
	switch status {
	case entity.StockStatusOut:
		where += ` AND i.quantity <= 0`
	case entity.StockStatusLow:
		where += ` AND i.quantity > 0 AND i.quantity <= i.min_stock`
	case entity.StockStatusIn:
		where += ` AND i.quantity > i.min_stock`
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(`
		SELECT i.product_id, i.quantity, i.min_stock, i.updated_at,
		       p.code, p.name, p.price, COALESCE(c.name, '')
		FROM inventory i
		JOIN products p ON p.id = i.product_id
		LEFT JOIN categories c ON c.id = p.category_id
		%s
		ORDER BY p.name
		LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list inventory: %w", err)
	}
	defer rows.Close()

	var list []*repository.InventoryLevelRow
	for rows.Next() {
		var row repository.InventoryLevelRow
		err := rows.Scan(
			&row.Inventory.ProductID, &row.Inventory.Quantity, &row.Inventory.MinStock, &row.Inventory.UpdatedAt,
			&row.ProductCode, &row.ProductName, &row.Price, &row.Category,
		)
		if err != nil {
			return nil, fmt.Errorf("scan inventory row: %w", err)
		}
		list = append(list, &row)
	}
	return list, rows.Err()
}

// Stats calcula los agregados del inventario activo.
func (r *InventoryRepo) Stats() (*repository.InventoryStats, error) {
	query := `
		SELECT count(*),
		       count(*) FILTER (WHERE i.quantity > 0 AND i.quantity <= i.min_stock),
		       count(*) FILTER (WHERE i.quantity <= 0),
		       COALESCE(sum(i.quantity * p.price), 0)
		FROM inventory i
		JOIN products p ON p.id = i.product_id
		WHERE p.active`
	var stats repository.InventoryStats
	err := r.q.QueryRow(context.Background(), query).Scan(
		&stats.Total, &stats.LowStock, &stats.OutOfStock, &stats.TotalValue,
	)
	if err != nil {
		return nil, fmt.Errorf("inventory stats: %w", err)
	}
	return &stats, nil
}
