package billing_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/facturacion-api/internal/application/billing"
	"github.com/jhoicas/facturacion-api/internal/application/dto"
	"github.com/jhoicas/facturacion-api/internal/application/inventory"
	"github.com/jhoicas/facturacion-api/internal/domain"
	"github.com/jhoicas/facturacion-api/internal/domain/entity"
	"github.com/jhoicas/facturacion-api/pkg/logger"
)

func newInvoiceUseCase(s *store, cfg billing.Config) *billing.InvoiceUseCase {
	stockSvc := inventory.NewStockUseCase(nil, nil, nil, nil)
	return billing.NewInvoiceUseCase(
		&fakeTxRunner{s},
		stockSvc,
		&fakeClientRepo{s},
		&fakeInvoiceRepo{s},
		cfg,
		logger.Nop(),
	)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCreateInvoice_VentaSencilla(t *testing.T) {
	s := newStore()
	s.addProduct("p1", "SKU-001", "Café molido", dec("10.00"), dec("16"), 5)
	uc := newInvoiceUseCase(s, billing.Config{})

	resp, err := uc.CreateInvoice(context.Background(), "user-1", dto.CreateInvoiceRequest{
		Items: []dto.InvoiceItemRequest{{ProductID: "p1", Quantity: 2}},
	})
	require.NoError(t, err)

	assert.Equal(t, "INV-000001", resp.InvoiceNumber)
	assert.Equal(t, entity.InvoiceStatusPending, resp.Status)
	assert.True(t, resp.Subtotal.Equal(dec("20.00")), "subtotal: %s", resp.Subtotal)
	assert.True(t, resp.TaxTotal.Equal(dec("3.20")), "tax: %s", resp.TaxTotal)
	assert.True(t, resp.Total.Equal(dec("23.20")), "total: %s", resp.Total)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "SKU-001", resp.Items[0].ProductCode)
	assert.Equal(t, "Café molido", resp.Items[0].ProductName)

	// stock descontado
	assert.Equal(t, int64(3), s.stock["p1"].Quantity)

	// movimiento de venta con referencia a la factura
	require.Len(t, s.movements, 1)
	mov := s.movements[0]
	assert.Equal(t, entity.MovementTypeSale, mov.Type)
	assert.Equal(t, int64(-2), mov.Quantity)
	assert.Equal(t, int64(5), mov.PreviousQuantity)
	assert.Equal(t, int64(3), mov.NewQuantity)
	assert.Equal(t, entity.ReferenceTypeInvoice, mov.ReferenceType)
	assert.Equal(t, resp.ID, mov.ReferenceID)
	assert.Equal(t, "user-1", mov.CreatedBy)
}

func TestCreateInvoice_DescuentoFijo(t *testing.T) {
	s := newStore()
	s.addProduct("p1", "SKU-001", "Café molido", dec("10.00"), dec("16"), 5)
	uc := newInvoiceUseCase(s, billing.Config{})

	resp, err := uc.CreateInvoice(context.Background(), "user-1", dto.CreateInvoiceRequest{
		Items:        []dto.InvoiceItemRequest{{ProductID: "p1", Quantity: 2}},
		Discount:     dec("5.00"),
		DiscountType: entity.DiscountTypeFixed,
	})
	require.NoError(t, err)
	assert.True(t, resp.Discount.Equal(dec("5.00")))
	assert.True(t, resp.Total.Equal(dec("18.20")), "total: %s", resp.Total)
}

func TestCreateInvoice_DescuentoPorcentaje(t *testing.T) {
	s := newStore()
	s.addProduct("p1", "SKU-001", "Café molido", dec("10.00"), dec("16"), 5)
	uc := newInvoiceUseCase(s, billing.Config{})

	resp, err := uc.CreateInvoice(context.Background(), "user-1", dto.CreateInvoiceRequest{
		Items:        []dto.InvoiceItemRequest{{ProductID: "p1", Quantity: 2}},
		Discount:     dec("10"),
		DiscountType: entity.DiscountTypePercentage,
	})
	require.NoError(t, err)
	// 10% del subtotal (20.00), no del total
	assert.True(t, resp.Discount.Equal(dec("2.00")), "descuento: %s", resp.Discount)
	assert.True(t, resp.Total.Equal(dec("21.20")), "total: %s", resp.Total)
}

func TestCreateInvoice_PrecioOverride(t *testing.T) {
	s := newStore()
	s.addProduct("p1", "SKU-001", "Café molido", dec("10.00"), dec("0"), 5)
	uc := newInvoiceUseCase(s, billing.Config{})

	resp, err := uc.CreateInvoice(context.Background(), "user-1", dto.CreateInvoiceRequest{
		Items: []dto.InvoiceItemRequest{{ProductID: "p1", Quantity: 1, UnitPrice: dec("8.50")}},
	})
	require.NoError(t, err)
	assert.True(t, resp.Total.Equal(dec("8.50")))
	// el snapshot guarda el precio efectivo, no el de lista
	assert.True(t, resp.Items[0].UnitPrice.Equal(dec("8.50")))
}

func TestCreateInvoice_SinLineas(t *testing.T) {
	uc := newInvoiceUseCase(newStore(), billing.Config{})
	_, err := uc.CreateInvoice(context.Background(), "user-1", dto.CreateInvoiceRequest{})
	assert.Equal(t, domain.ErrEmptyInvoice, err)
}

func TestCreateInvoice_CantidadInvalida(t *testing.T) {
	s := newStore()
	s.addProduct("p1", "SKU-001", "Café molido", dec("10.00"), dec("16"), 5)
	uc := newInvoiceUseCase(s, billing.Config{})

	_, err := uc.CreateInvoice(context.Background(), "user-1", dto.CreateInvoiceRequest{
		Items: []dto.InvoiceItemRequest{{ProductID: "p1", Quantity: 0}},
	})
	assert.Equal(t, domain.ErrInvalidInput, err)
}

func TestCreateInvoice_ProductoInexistente(t *testing.T) {
	s := newStore()
	uc := newInvoiceUseCase(s, billing.Config{})

	_, err := uc.CreateInvoice(context.Background(), "user-1", dto.CreateInvoiceRequest{
		Items: []dto.InvoiceItemRequest{{ProductID: "no-existe", Quantity: 1}},
	})
	assert.Equal(t, domain.ErrProductNotFound, err)
	assert.Empty(t, s.invoices)
	assert.Empty(t, s.movements)
}

func TestCreateInvoice_ProductoInactivo(t *testing.T) {
	s := newStore()
	s.addProduct("p1", "SKU-001", "Café molido", dec("10.00"), dec("16"), 5)
	s.products["p1"].Active = false
	uc := newInvoiceUseCase(s, billing.Config{})

	_, err := uc.CreateInvoice(context.Background(), "user-1", dto.CreateInvoiceRequest{
		Items: []dto.InvoiceItemRequest{{ProductID: "p1", Quantity: 1}},
	})
	assert.Equal(t, domain.ErrProductNotFound, err)
}

func TestCreateInvoice_ClienteInexistente(t *testing.T) {
	s := newStore()
	s.addProduct("p1", "SKU-001", "Café molido", dec("10.00"), dec("16"), 5)
	uc := newInvoiceUseCase(s, billing.Config{})

	_, err := uc.CreateInvoice(context.Background(), "user-1", dto.CreateInvoiceRequest{
		ClientID: "no-existe",
		Items:    []dto.InvoiceItemRequest{{ProductID: "p1", Quantity: 1}},
	})
	assert.Equal(t, domain.ErrNotFound, err)
}

func TestCreateInvoice_StockInsuficienteNoDejaRastro(t *testing.T) {
	s := newStore()
	s.addProduct("p1", "SKU-001", "Café molido", dec("10.00"), dec("16"), 5)
	uc := newInvoiceUseCase(s, billing.Config{})

	_, err := uc.CreateInvoice(context.Background(), "user-1", dto.CreateInvoiceRequest{
		Items: []dto.InvoiceItemRequest{{ProductID: "p1", Quantity: 10}},
	})
	assert.Equal(t, domain.ErrInsufficientStock, err)

	// rollback completo: ni factura, ni líneas, ni movimientos, ni cambio de stock
	assert.Empty(t, s.invoices)
	assert.Empty(t, s.items)
	assert.Empty(t, s.movements)
	assert.Equal(t, int64(5), s.stock["p1"].Quantity)
}

func TestCreateInvoice_FallaEnSegundaLineaRevierteLaPrimera(t *testing.T) {
	s := newStore()
	s.addProduct("p1", "SKU-001", "Café molido", dec("10.00"), dec("16"), 5)
	s.addProduct("p2", "SKU-002", "Azúcar", dec("3.00"), dec("16"), 1)
	uc := newInvoiceUseCase(s, billing.Config{})

	_, err := uc.CreateInvoice(context.Background(), "user-1", dto.CreateInvoiceRequest{
		Items: []dto.InvoiceItemRequest{
			{ProductID: "p1", Quantity: 2}, // alcanza
			{ProductID: "p2", Quantity: 3}, // no alcanza
		},
	})
	assert.Equal(t, domain.ErrInsufficientStock, err)

	// el descuento de p1 también se revierte
	assert.Equal(t, int64(5), s.stock["p1"].Quantity)
	assert.Equal(t, int64(1), s.stock["p2"].Quantity)
	assert.Empty(t, s.invoices)
	assert.Empty(t, s.movements)
}

func TestCreateInvoice_FallaDeMovimientoRevierteTodo(t *testing.T) {
	s := newStore()
	s.addProduct("p1", "SKU-001", "Café molido", dec("10.00"), dec("16"), 5)
	s.failMovementCreate = true
	uc := newInvoiceUseCase(s, billing.Config{})

	_, err := uc.CreateInvoice(context.Background(), "user-1", dto.CreateInvoiceRequest{
		Items: []dto.InvoiceItemRequest{{ProductID: "p1", Quantity: 2}},
	})
	require.Error(t, err)
	assert.Empty(t, s.invoices)
	assert.Equal(t, int64(5), s.stock["p1"].Quantity)
}

func TestCreateInvoice_NumeracionConsecutiva(t *testing.T) {
	s := newStore()
	s.addProduct("p1", "SKU-001", "Café molido", dec("10.00"), dec("16"), 100)
	uc := newInvoiceUseCase(s, billing.Config{})

	for i := 1; i <= 3; i++ {
		resp, err := uc.CreateInvoice(context.Background(), "user-1", dto.CreateInvoiceRequest{
			Items: []dto.InvoiceItemRequest{{ProductID: "p1", Quantity: 1}},
		})
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("INV-%06d", i), resp.InvoiceNumber)
	}
}

func TestCreateInvoice_NumeracionConcurrenteSinDuplicados(t *testing.T) {
	s := newStore()
	s.addProduct("p1", "SKU-001", "Café molido", dec("10.00"), dec("16"), 1000)
	uc := newInvoiceUseCase(s, billing.Config{})

	const n = 20
	var wg sync.WaitGroup
	numbers := make(chan string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := uc.CreateInvoice(context.Background(), "user-1", dto.CreateInvoiceRequest{
				Items: []dto.InvoiceItemRequest{{ProductID: "p1", Quantity: 1}},
			})
			if err == nil {
				numbers <- resp.InvoiceNumber
			}
		}()
	}
	wg.Wait()
	close(numbers)

	seen := make(map[string]bool)
	count := 0
	for num := range numbers {
		assert.False(t, seen[num], "número duplicado: %s", num)
		seen[num] = true
		count++
	}
	assert.Equal(t, n, count)
	// el stock refleja exactamente las ventas emitidas
	assert.Equal(t, int64(1000-n), s.stock["p1"].Quantity)
}

func TestCreateInvoice_PrefijoHistoricoContinuaSecuencia(t *testing.T) {
	s := newStore()
	s.addProduct("p1", "SKU-001", "Café molido", dec("10.00"), dec("16"), 5)
	s.invoices["old"] = &entity.Invoice{ID: "old", InvoiceNumber: "FAC-000007"}
	uc := newInvoiceUseCase(s, billing.Config{})

	resp, err := uc.CreateInvoice(context.Background(), "user-1", dto.CreateInvoiceRequest{
		Items: []dto.InvoiceItemRequest{{ProductID: "p1", Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, "INV-000008", resp.InvoiceNumber)
}

func TestCreateInvoice_NumeroIlegibleUsaRespaldo(t *testing.T) {
	s := newStore()
	s.addProduct("p1", "SKU-001", "Café molido", dec("10.00"), dec("16"), 5)
	s.invoices["old"] = &entity.Invoice{ID: "old", InvoiceNumber: "SINFORMATO"}
	uc := newInvoiceUseCase(s, billing.Config{})

	resp, err := uc.CreateInvoice(context.Background(), "user-1", dto.CreateInvoiceRequest{
		Items: []dto.InvoiceItemRequest{{ProductID: "p1", Quantity: 1}},
	})
	require.NoError(t, err)
	// consecutivo de respaldo basado en tiempo, la venta no se pierde
	assert.True(t, strings.HasPrefix(resp.InvoiceNumber, "INV-"), "número: %s", resp.InvoiceNumber)
	assert.NotEqual(t, "INV-000001", resp.InvoiceNumber)
}

// Bajo READ COMMITTED una transacción que esperó el lock del último número
// puede seguir viendo el máximo anterior y calcular un consecutivo ya tomado.
// La constraint UNIQUE revierte ese intento completo y la factura se vuelve a
// armar con el número confirmado: la venta no se pierde con un 409.
func TestCreateInvoice_ConsecutivoDesfasadoReintentaSinPerderLaVenta(t *testing.T) {
	s := newStore()
	s.addProduct("p1", "SKU-001", "Café molido", dec("10.00"), dec("16"), 5)
	s.invoices["prev"] = &entity.Invoice{ID: "prev", InvoiceNumber: "INV-000005"}
	// Primera lectura desfasada: todavía ve el máximo anterior al commit
	// de la otra transacción, igual que tras esperar su lock.
	s.staleLastNumber = "INV-000004"
	uc := newInvoiceUseCase(s, billing.Config{})

	resp, err := uc.CreateInvoice(context.Background(), "user-1", dto.CreateInvoiceRequest{
		Items: []dto.InvoiceItemRequest{{ProductID: "p1", Quantity: 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, "INV-000006", resp.InvoiceNumber)

	// el intento revertido no dejó rastro: una factura nueva, una línea,
	// un movimiento, stock descontado una sola vez
	assert.Len(t, s.invoices, 2)
	require.Len(t, s.items[resp.ID], 1)
	require.Len(t, s.movements, 1)
	assert.Equal(t, int64(3), s.stock["p1"].Quantity)
}

func TestCreateInvoice_TotalesCuadranAlReleer(t *testing.T) {
	s := newStore()
	s.addProduct("p1", "SKU-001", "Café molido", dec("3.33"), dec("19"), 100)
	s.addProduct("p2", "SKU-002", "Azúcar", dec("1.11"), dec("5"), 100)
	uc := newInvoiceUseCase(s, billing.Config{})

	created, err := uc.CreateInvoice(context.Background(), "user-1", dto.CreateInvoiceRequest{
		Items: []dto.InvoiceItemRequest{
			{ProductID: "p1", Quantity: 3},
			{ProductID: "p2", Quantity: 7},
		},
		Discount:     dec("3.5"),
		DiscountType: entity.DiscountTypePercentage,
	})
	require.NoError(t, err)

	got, err := uc.GetInvoice(context.Background(), created.ID)
	require.NoError(t, err)

	// los totales persistidos cumplen la identidad con sus propios componentes
	want := got.Subtotal.Add(got.TaxTotal).Sub(got.Discount)
	assert.True(t, got.Total.Equal(want), "total %s != %s", got.Total, want)
	assert.True(t, got.Total.Equal(created.Total))
}
