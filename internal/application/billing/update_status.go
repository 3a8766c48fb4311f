package billing

import (
	"context"
	"time"

	"github.com/jhoicas/facturacion-api/internal/application/dto"
	"github.com/jhoicas/facturacion-api/internal/domain"
	"github.com/jhoicas/facturacion-api/internal/domain/entity"
	"github.com/jhoicas/facturacion-api/internal/domain/repository"
)

// UpdateStatus cambia el estado de una factura validando la máquina de
// estados. paid estampa paid_at; cancelled, con la política de reposición
// activa, devuelve el stock de cada línea en la misma transacción.
func (uc *InvoiceUseCase) UpdateStatus(ctx context.Context, id, userID string, in dto.UpdateInvoiceStatusRequest) (*dto.InvoiceResponse, error) {
	switch in.Status {
	case entity.InvoiceStatusPaid, entity.InvoiceStatusCancelled, entity.InvoiceStatusPartial:
	default:
		return nil, domain.ErrInvalidInput
	}

	inv, err := uc.invoiceRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	if !inv.CanTransitionTo(in.Status) {
		return nil, domain.ErrConflict
	}

	// El estado leído condiciona el UPDATE: si otra transición gana la
	// carrera entre esta lectura y la escritura, el repo retorna ErrConflict
	// y (en el camino con reposición) la transacción completa se revierte.
	fromStatus := inv.Status

	now := time.Now()
	inv.Status = in.Status
	inv.UpdatedAt = now
	if in.Status == entity.InvoiceStatusPaid {
		inv.PaidAt = &now
	}

	restock := in.Status == entity.InvoiceStatusCancelled && uc.cfg.RestockOnCancel
	if restock {
		err = uc.txRunner.RunBilling(ctx, func(
			movRepo repository.InventoryMovementRepository,
			invRepo repository.InventoryRepository,
			_ repository.ProductRepository,
			invoiceRepo repository.InvoiceRepository,
		) error {
			items, err := invoiceRepo.GetItemsByInvoiceID(id)
			if err != nil {
				return err
			}
			for _, item := range items {
				if err := uc.stockSvc.RestockInTx(
					movRepo, invRepo,
					item.ProductID, item.Quantity,
					now, inv.ID, inv.InvoiceNumber, userID,
				); err != nil {
					return err
				}
			}
			return invoiceRepo.UpdateStatus(inv, fromStatus)
		})
	} else {
		err = uc.invoiceRepo.UpdateStatus(inv, fromStatus)
	}
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("invoice_id", inv.ID).
		Str("status", inv.Status).
		Bool("restock", restock).
		Msg("estado de factura actualizado")

	return uc.GetInvoice(ctx, id)
}
