package billing

import (
	"context"
	"time"

	"github.com/jhoicas/facturacion-api/internal/domain/repository"
)

// BillingTxRunner ejecuta una función dentro de una transacción que incluye
// los repos de inventario y facturación. Rollback si fn retorna error.
type BillingTxRunner interface {
	RunBilling(ctx context.Context, fn func(
		movRepo repository.InventoryMovementRepository,
		invRepo repository.InventoryRepository,
		productRepo repository.ProductRepository,
		invoiceRepo repository.InvoiceRepository,
	) error) error
}

// StockService integra facturación con inventario dentro de la transacción del
// caller. Si retorna error (ej: ErrInsufficientStock) el caller debe hacer
// rollback: no queda factura, ni líneas, ni movimientos.
type StockService interface {
	SaleOutInTx(
		movRepo repository.InventoryMovementRepository,
		invRepo repository.InventoryRepository,
		productID string,
		quantity int64,
		now time.Time,
		invoiceID, invoiceNumber, userID string,
	) error
	RestockInTx(
		movRepo repository.InventoryMovementRepository,
		invRepo repository.InventoryRepository,
		productID string,
		quantity int64,
		now time.Time,
		invoiceID, invoiceNumber, userID string,
	) error
}
