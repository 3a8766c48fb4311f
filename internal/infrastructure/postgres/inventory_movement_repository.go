package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/facturacion-api/internal/domain/entity"
	"github.com/jhoicas/facturacion-api/internal/domain/repository"
)

var _ repository.InventoryMovementRepository = (*InventoryMovementRepo)(nil)

// InventoryMovementRepo implementación de InventoryMovementRepository.
// La tabla es append-only: solo INSERT y SELECT.
type InventoryMovementRepo struct {
	q Querier
}

// NewInventoryMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryMovementRepository(q Querier) *InventoryMovementRepo {
	return &InventoryMovementRepo{q: q}
}

// Create inserta un movimiento en la bitácora.
func (r *InventoryMovementRepo) Create(movement *entity.InventoryMovement) error {
	query := `
		INSERT INTO inventory_movements
			(id, product_id, quantity, previous_quantity, new_quantity, movement_type,
			 reference_type, reference_id, notes, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(context.Background(), query,
		movement.ID, movement.ProductID, movement.Quantity,
		movement.PreviousQuantity, movement.NewQuantity, movement.Type,
		nullIfEmpty(movement.ReferenceType), nullIfEmpty(movement.ReferenceID),
		nullIfEmpty(movement.Notes), nullIfEmpty(movement.CreatedBy), movement.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert movimiento: %w", err)
	}
	return nil
}

// ListByProduct lista los movimientos de un producto, más recientes primero,
// con rango de fechas opcional.
func (r *InventoryMovementRepo) ListByProduct(productID string, from, to *time.Time, limit, offset int) ([]*entity.InventoryMovement, error) {
	args := []any{productID}
	where := `WHERE product_id = $1`
	if from != nil {
		args = append(args, *from)
		where += fmt.Sprintf(` AND created_at >= $%d`, len(args))
	}
	if to != nil {
		args = append(args, *to)
		where += fmt.Sprintf(` AND created_at <= $%d`, len(args))
	}
	args = append(args, limit, offset)
	query := fmt.Sprintf(`
		SELECT id, product_id, quantity, previous_quantity, new_quantity, movement_type,
		       COALESCE(reference_type, ''), COALESCE(reference_id::text, ''),
		       COALESCE(notes, ''), COALESCE(created_by::text, ''), created_at
		FROM inventory_movements
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movimientos: %w", err)
	}
	defer rows.Close()

	var list []*entity.InventoryMovement
	for rows.Next() {
		var m entity.InventoryMovement
		err := rows.Scan(
			&m.ID, &m.ProductID, &m.Quantity, &m.PreviousQuantity, &m.NewQuantity, &m.Type,
			&m.ReferenceType, &m.ReferenceID, &m.Notes, &m.CreatedBy, &m.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan movimiento: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}
