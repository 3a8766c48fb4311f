package billing

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/facturacion-api/internal/application/dto"
	"github.com/jhoicas/facturacion-api/internal/domain"
	domainbilling "github.com/jhoicas/facturacion-api/internal/domain/billing"
	"github.com/jhoicas/facturacion-api/internal/domain/entity"
	"github.com/jhoicas/facturacion-api/internal/domain/repository"
	"github.com/jhoicas/facturacion-api/pkg/logger"
)

// invoiceCreateAttempts acota los reintentos cuando dos transacciones
// calculan el mismo consecutivo y la constraint UNIQUE revierte a una.
const invoiceCreateAttempts = 3

// Config políticas de facturación.
type Config struct {
	// RestockOnCancel: al cancelar una factura, devolver el stock descontado.
	// Apagado por defecto: una venta cancelada ya consumió inventario.
	RestockOnCancel bool
}

// InvoiceUseCase crea facturas y descuenta el inventario en una sola
// transacción, y maneja las transiciones de estado posteriores.
type InvoiceUseCase struct {
	txRunner    BillingTxRunner
	stockSvc    StockService
	clientRepo  repository.ClientRepository
	invoiceRepo repository.InvoiceRepository
	cfg         Config
	log         *logger.Logger
}

// NewInvoiceUseCase construye el caso de uso.
func NewInvoiceUseCase(
	txRunner BillingTxRunner,
	stockSvc StockService,
	clientRepo repository.ClientRepository,
	invoiceRepo repository.InvoiceRepository,
	cfg Config,
	log *logger.Logger,
) *InvoiceUseCase {
	return &InvoiceUseCase{
		txRunner:    txRunner,
		stockSvc:    stockSvc,
		clientRepo:  clientRepo,
		invoiceRepo: invoiceRepo,
		cfg:         cfg,
		log:         log,
	}
}

// CreateInvoice crea la factura como una unidad atómica:
//
//  1. valida líneas y cliente
//  2. resuelve productos y calcula totales (aritmética decimal)
//  3. genera el consecutivo bajo bloqueo de fila
//  4. inserta cabecera en estado pending
//  5. por cada línea: snapshot + salida de inventario con movimiento "sale"
//
// Cualquier fallo en 3-5 hace rollback completo: no queda factura, ni líneas,
// ni cambio de inventario.
func (uc *InvoiceUseCase) CreateInvoice(ctx context.Context, userID string, in dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if len(in.Items) == 0 {
		return nil, domain.ErrEmptyInvoice
	}
	for _, item := range in.Items {
		if item.ProductID == "" || item.Quantity <= 0 {
			return nil, domain.ErrInvalidInput
		}
	}

	// Cliente opcional (venta de mostrador si va vacío)
	var clientName string
	if in.ClientID != "" {
		client, err := uc.clientRepo.GetByID(in.ClientID)
		if err != nil {
			return nil, err
		}
		if client == nil {
			return nil, domain.ErrNotFound
		}
		clientName = client.Name
	}

	discountType := in.DiscountType
	if discountType == "" {
		discountType = entity.DiscountTypeFixed
	}

	now := time.Now()
	invoiceID := uuid.New().String()
	var inv *entity.Invoice
	var items []*entity.InvoiceItem

	// Bajo READ COMMITTED una transacción concurrente puede leer el máximo
	// anterior aun después de esperar el lock (el número recién confirmado no
	// está en su snapshot) y calcular el mismo consecutivo; la constraint
	// UNIQUE la revierte completa. Se reintenta la factura desde cero: la
	// segunda vuelta ya ve el número confirmado.
	var err error
	for attempt := 1; attempt <= invoiceCreateAttempts; attempt++ {
		inv = nil
		items = nil
		err = uc.createInvoiceTx(ctx, userID, invoiceID, discountType, now, in, &inv, &items)
		if !errors.Is(err, domain.ErrDuplicate) {
			break
		}
		uc.log.Warn().
			Int("attempt", attempt).
			Msg("consecutivo de factura en conflicto, reintentando")
	}
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("invoice_id", inv.ID).
		Str("invoice_number", inv.InvoiceNumber).
		Str("total", inv.Total.StringFixed(2)).
		Msg("factura creada")

	return uc.toResponse(inv, clientName, items), nil
}

// createInvoiceTx ejecuta un intento completo de creación dentro de una
// transacción; un error revierte cabecera, líneas y movimientos.
func (uc *InvoiceUseCase) createInvoiceTx(
	ctx context.Context,
	userID, invoiceID, discountType string,
	now time.Time,
	in dto.CreateInvoiceRequest,
	invOut **entity.Invoice,
	itemsOut *[]*entity.InvoiceItem,
) error {
	return uc.txRunner.RunBilling(ctx, func(
		movRepo repository.InventoryMovementRepository,
		invRepo repository.InventoryRepository,
		productRepo repository.ProductRepository,
		invoiceRepo repository.InvoiceRepository,
	) error {
		// 1) Resolver productos dentro de la tx: precio y tarifa autoritativos
		lines := make([]domainbilling.LineInput, 0, len(in.Items))
		for _, item := range in.Items {
			product, err := productRepo.GetActiveByID(item.ProductID)
			if err != nil {
				return err
			}
			if product == nil {
				return domain.ErrProductNotFound
			}
			unitPrice := item.UnitPrice
			if unitPrice.IsZero() {
				unitPrice = product.Price
			}
			lines = append(lines, domainbilling.LineInput{
				Product:   product,
				Quantity:  item.Quantity,
				UnitPrice: unitPrice,
			})
		}

		// 2) Totales: descuento una sola vez sobre el subtotal
		totals, err := domainbilling.ComputeTotals(lines, in.Discount, discountType)
		if err != nil {
			return err
		}

		// 3) Consecutivo: el SELECT FOR UPDATE serializa contra transacciones
		// en vuelo; la constraint UNIQUE más el reintento del caller cubren
		// la lectura desfasada posterior al commit.
		number, err := uc.nextNumber(invoiceRepo)
		if err != nil {
			return err
		}

		// 4) Cabecera en pending
		inv := &entity.Invoice{
			ID:            invoiceID,
			InvoiceNumber: number,
			ClientID:      in.ClientID,
			UserID:        userID,
			Subtotal:      totals.Subtotal,
			TaxTotal:      totals.TaxTotal,
			Discount:      totals.DiscountAmount,
			DiscountType:  discountType,
			Total:         totals.Total,
			Status:        entity.InvoiceStatusPending,
			PaymentMethod: in.PaymentMethod,
			Notes:         in.Notes,
			DueDate:       in.DueDate,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := invoiceRepo.Create(inv); err != nil {
			return err
		}
		*invOut = inv

		// 5) Líneas snapshot + salida de inventario con movimiento "sale"
		for i := range totals.Items {
			item := totals.Items[i]
			item.ID = uuid.New().String()
			item.InvoiceID = invoiceID
			if err := invoiceRepo.CreateItem(&item); err != nil {
				return err
			}
			*itemsOut = append(*itemsOut, &item)

			if err := uc.stockSvc.SaleOutInTx(
				movRepo, invRepo,
				item.ProductID, item.Quantity,
				now, invoiceID, number, userID,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

// nextNumber genera el consecutivo siguiente. Si el último número persistido
// es ilegible (datos corruptos), cae a un número basado en tiempo en lugar de
// tumbar la venta, y lo deja registrado.
func (uc *InvoiceUseCase) nextNumber(invoiceRepo repository.InvoiceRepository) (string, error) {
	last, err := invoiceRepo.GetLastNumberForUpdate()
	if err != nil {
		return "", err
	}
	number, err := domainbilling.NextInvoiceNumber(last)
	if err != nil {
		if !errors.Is(err, domain.ErrInvoiceNumbering) {
			return "", err
		}
		number = domainbilling.InvoiceNumberPrefix + "-" + time.Now().UTC().Format("20060102150405")
		uc.log.Warn().
			Str("last_number", last).
			Str("fallback", number).
			Msg("último número de factura ilegible, usando consecutivo de respaldo")
	}
	return number, nil
}

// GetInvoice obtiene una factura por ID con su detalle completo. Lectura pura:
// retorna los valores persistidos, nunca recalcula totales.
func (uc *InvoiceUseCase) GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	inv, err := uc.invoiceRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	items, err := uc.invoiceRepo.GetItemsByInvoiceID(id)
	if err != nil {
		return nil, err
	}
	clientName := ""
	if inv.ClientID != "" {
		client, _ := uc.clientRepo.GetByID(inv.ClientID)
		if client != nil {
			clientName = client.Name
		}
	}
	return uc.toResponse(inv, clientName, items), nil
}

// ListInvoices lista facturas con filtros, paginación y estadísticas.
func (uc *InvoiceUseCase) ListInvoices(ctx context.Context, filter repository.InvoiceFilter) (*dto.InvoiceListResponse, error) {
	rows, total, err := uc.invoiceRepo.List(filter)
	if err != nil {
		return nil, err
	}
	stats, err := uc.invoiceRepo.Stats()
	if err != nil {
		return nil, err
	}
	list := make([]dto.InvoiceListItem, 0, len(rows))
	for _, row := range rows {
		list = append(list, dto.InvoiceListItem{
			ID:            row.Invoice.ID,
			InvoiceNumber: row.Invoice.InvoiceNumber,
			ClientName:    row.ClientName,
			Total:         row.Invoice.Total,
			Status:        row.Invoice.Status,
			ItemsCount:    row.ItemsCount,
			CreatedAt:     row.Invoice.CreatedAt,
		})
	}
	return &dto.InvoiceListResponse{
		Invoices: list,
		Stats: dto.InvoiceStatsResponse{
			Total:         stats.Total,
			Pending:       stats.Pending,
			Paid:          stats.Paid,
			Cancelled:     stats.Cancelled,
			TotalAmount:   stats.TotalAmount,
			PaidAmount:    stats.PaidAmount,
			PendingAmount: stats.PendingAmount,
		},
		Page: dto.PageResponse{Limit: filter.Limit, Offset: filter.Offset, Total: total},
	}, nil
}

func (uc *InvoiceUseCase) toResponse(inv *entity.Invoice, clientName string, items []*entity.InvoiceItem) *dto.InvoiceResponse {
	resp := &dto.InvoiceResponse{
		ID:            inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		ClientID:      inv.ClientID,
		ClientName:    clientName,
		Subtotal:      inv.Subtotal,
		TaxTotal:      inv.TaxTotal,
		Discount:      inv.Discount,
		DiscountType:  inv.DiscountType,
		Total:         inv.Total,
		Status:        inv.Status,
		PaymentMethod: inv.PaymentMethod,
		Notes:         inv.Notes,
		DueDate:       inv.DueDate,
		PaidAt:        inv.PaidAt,
		CreatedBy:     inv.UserID,
		CreatedAt:     inv.CreatedAt,
		Items:         make([]dto.InvoiceItemResponse, 0, len(items)),
	}
	for _, item := range items {
		resp.Items = append(resp.Items, dto.InvoiceItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductCode: item.ProductCode,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TaxRate:     item.TaxRate,
			TaxAmount:   item.TaxAmount,
			Subtotal:    item.Subtotal,
		})
	}
	return resp
}
