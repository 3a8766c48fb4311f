package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/facturacion-api/internal/application/dto"
	"github.com/jhoicas/facturacion-api/internal/domain"
	"github.com/jhoicas/facturacion-api/internal/domain/entity"
	"github.com/jhoicas/facturacion-api/internal/domain/repository"
)

// Modos de ajuste manual de stock.
const (
	ModeAdd      = "add"
	ModeSubtract = "subtract"
	ModeSet      = "set"
)

// StockUseCase es el único camino sancionado para mutar inventory.quantity:
// bloquea la fila (SELECT FOR UPDATE), valida que la cantidad no quede
// negativa y escribe cantidad + movimiento en la misma transacción.
type StockUseCase struct {
	txRunner    TxRunner
	invRepo     repository.InventoryRepository
	movRepo     repository.InventoryMovementRepository
	productRepo repository.ProductRepository
}

// NewStockUseCase construye el caso de uso. Los repos inyectados (atados al
// pool) se usan solo para lecturas; las escrituras pasan por el TxRunner.
func NewStockUseCase(
	txRunner TxRunner,
	invRepo repository.InventoryRepository,
	movRepo repository.InventoryMovementRepository,
	productRepo repository.ProductRepository,
) *StockUseCase {
	return &StockUseCase{
		txRunner:    txRunner,
		invRepo:     invRepo,
		movRepo:     movRepo,
		productRepo: productRepo,
	}
}

// AdjustInput entrada de un ajuste manual.
type AdjustInput struct {
	UserID    string
	ProductID string
	Quantity  int64
	Mode      string // add | subtract | set
	Notes     string
}

// AdjustStock aplica un ajuste manual de inventario de forma transaccional.
// add/subtract son relativos (cantidad > 0); set fija un valor absoluto >= 0.
// subtract falla con ErrInsufficientStock si dejaría la cantidad negativa.
func (uc *StockUseCase) AdjustStock(ctx context.Context, in AdjustInput) (*dto.AdjustStockResponse, error) {
	switch in.Mode {
	case ModeAdd, ModeSubtract:
		if in.Quantity <= 0 {
			return nil, domain.ErrInvalidInput
		}
	case ModeSet:
		if in.Quantity < 0 {
			return nil, domain.ErrInvalidInput
		}
	default:
		return nil, domain.ErrInvalidInput
	}
	if in.ProductID == "" {
		return nil, domain.ErrInvalidInput
	}

	product, err := uc.productRepo.GetByID(in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}

	now := time.Now()
	var out *dto.AdjustStockResponse
	err = uc.txRunner.Run(ctx, func(
		movRepo repository.InventoryMovementRepository,
		invRepo repository.InventoryRepository,
		_ repository.ProductRepository,
	) error {
		// Bloquea la fila de inventario para serializar contra ventas concurrentes
		stock, err := invRepo.GetForUpdate(in.ProductID)
		if err != nil {
			return err
		}

		// Se captura antes de escribir: el movimiento describe el estado
		// previo aunque la implementación del repo comparta el struct.
		prevQty := stock.Quantity

		var newQty int64
		var movType string
		switch in.Mode {
		case ModeAdd:
			newQty = prevQty + in.Quantity
			movType = entity.MovementTypeAdjustmentIn
		case ModeSubtract:
			newQty = prevQty - in.Quantity
			movType = entity.MovementTypeAdjustmentOut
		case ModeSet:
			newQty = in.Quantity
			movType = entity.MovementTypeSet
		}
		if newQty < 0 {
			return domain.ErrInsufficientStock
		}

		if err := invRepo.UpdateQuantity(in.ProductID, newQty); err != nil {
			return err
		}
		mov := &entity.InventoryMovement{
			ID:               uuid.New().String(),
			ProductID:        in.ProductID,
			Quantity:         newQty - prevQty,
			PreviousQuantity: prevQty,
			NewQuantity:      newQty,
			Type:             movType,
			Notes:            in.Notes,
			CreatedBy:        in.UserID,
			CreatedAt:        now,
		}
		if err := movRepo.Create(mov); err != nil {
			return err
		}
		out = &dto.AdjustStockResponse{
			ProductID:        in.ProductID,
			PreviousQuantity: prevQty,
			NewQuantity:      newQty,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SaleOutInTx descuenta stock por una venta usando los repositorios del caller
// (misma transacción de la factura). Registra el movimiento tipo "sale" con
// referencia a la factura. ErrInsufficientStock si la venta dejaría la
// cantidad negativa: el caller debe hacer rollback completo.
func (uc *StockUseCase) SaleOutInTx(
	movRepo repository.InventoryMovementRepository,
	invRepo repository.InventoryRepository,
	productID string,
	quantity int64,
	now time.Time,
	invoiceID, invoiceNumber, userID string,
) error {
	stock, err := invRepo.GetForUpdate(productID)
	if err != nil {
		return err
	}
	prevQty := stock.Quantity
	if prevQty < quantity {
		return domain.ErrInsufficientStock
	}
	newQty := prevQty - quantity
	if err := invRepo.UpdateQuantity(productID, newQty); err != nil {
		return err
	}
	mov := &entity.InventoryMovement{
		ID:               uuid.New().String(),
		ProductID:        productID,
		Quantity:         -quantity,
		PreviousQuantity: prevQty,
		NewQuantity:      newQty,
		Type:             entity.MovementTypeSale,
		ReferenceType:    entity.ReferenceTypeInvoice,
		ReferenceID:      invoiceID,
		Notes:            fmt.Sprintf("Venta - Factura %s", invoiceNumber),
		CreatedBy:        userID,
		CreatedAt:        now,
	}
	return movRepo.Create(mov)
}

// RestockInTx devuelve stock al cancelar una factura (política configurable).
// Movimiento tipo adjustment_in con referencia a la factura cancelada.
func (uc *StockUseCase) RestockInTx(
	movRepo repository.InventoryMovementRepository,
	invRepo repository.InventoryRepository,
	productID string,
	quantity int64,
	now time.Time,
	invoiceID, invoiceNumber, userID string,
) error {
	stock, err := invRepo.GetForUpdate(productID)
	if err != nil {
		return err
	}
	prevQty := stock.Quantity
	newQty := prevQty + quantity
	if err := invRepo.UpdateQuantity(productID, newQty); err != nil {
		return err
	}
	mov := &entity.InventoryMovement{
		ID:               uuid.New().String(),
		ProductID:        productID,
		Quantity:         quantity,
		PreviousQuantity: prevQty,
		NewQuantity:      newQty,
		Type:             entity.MovementTypeAdjustmentIn,
		ReferenceType:    entity.ReferenceTypeInvoice,
		ReferenceID:      invoiceID,
		Notes:            fmt.Sprintf("Cancelación - Factura %s", invoiceNumber),
		CreatedBy:        userID,
		CreatedAt:        now,
	}
	return movRepo.Create(mov)
}

// ListLevels lista niveles de inventario con datos de producto y estadísticas.
func (uc *StockUseCase) ListLevels(search, status string, limit, offset int) (*dto.InventoryListResponse, error) {
	rows, err := uc.invRepo.List(search, status, limit, offset)
	if err != nil {
		return nil, err
	}
	stats, err := uc.invRepo.Stats()
	if err != nil {
		return nil, err
	}
	items := make([]dto.InventoryLevelResponse, 0, len(rows))
	for _, row := range rows {
		items = append(items, dto.InventoryLevelResponse{
			ProductID:   row.Inventory.ProductID,
			ProductCode: row.ProductCode,
			ProductName: row.ProductName,
			Category:    row.Category,
			Price:       row.Price,
			Quantity:    row.Inventory.Quantity,
			MinStock:    row.Inventory.MinStock,
			StockStatus: row.Inventory.StockStatus(),
			UpdatedAt:   row.Inventory.UpdatedAt,
		})
	}
	return &dto.InventoryListResponse{
		Inventory: items,
		Stats: dto.InventoryStatsResponse{
			Total:      stats.Total,
			LowStock:   stats.LowStock,
			OutOfStock: stats.OutOfStock,
			TotalValue: stats.TotalValue,
		},
		Page: dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// ListMovements lista la bitácora de un producto (más reciente primero).
func (uc *StockUseCase) ListMovements(productID string, from, to *time.Time, limit, offset int) ([]dto.MovementResponse, error) {
	if productID == "" {
		return nil, domain.ErrInvalidInput
	}
	list, err := uc.movRepo.ListByProduct(productID, from, to, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, dto.MovementResponse{
			ID:               m.ID,
			ProductID:        m.ProductID,
			Quantity:         m.Quantity,
			PreviousQuantity: m.PreviousQuantity,
			NewQuantity:      m.NewQuantity,
			Type:             m.Type,
			ReferenceType:    m.ReferenceType,
			ReferenceID:      m.ReferenceID,
			Notes:            m.Notes,
			CreatedBy:        m.CreatedBy,
			CreatedAt:        m.CreatedAt,
		})
	}
	return out, nil
}
