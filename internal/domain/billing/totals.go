package billing

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/facturacion-api/internal/domain"
	"github.com/jhoicas/facturacion-api/internal/domain/entity"
)

// LineInput es una línea a totalizar: producto ya resuelto del catálogo,
// cantidad y precio unitario efectivo (override o precio de lista).
type LineInput struct {
	Product   *entity.Product
	Quantity  int64
	UnitPrice decimal.Decimal
}

// Totals es el resultado del cálculo: líneas con subtotal/impuesto y los
// acumulados de la cabecera. Los campos monetarios van redondeados a 2
// decimales (precisión de las columnas NUMERIC(12,2)).
type Totals struct {
	Items          []entity.InvoiceItem
	Subtotal       decimal.Decimal
	TaxTotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	Total          decimal.Decimal
}

var hundred = decimal.NewFromInt(100)

// ComputeTotals calcula subtotal, impuesto y total de una factura.
//
//	item.subtotal = unit_price * quantity
//	item.tax      = item.subtotal * tax_rate / 100
//	total         = Σ subtotal + Σ tax - descuento
//
// El descuento se aplica una sola vez sobre el subtotal acumulado: monto fijo o
// porcentaje del subtotal (no del total). Toda la aritmética es decimal; el
// redondeo a 2 decimales ocurre al final, no entre operaciones.
func ComputeTotals(lines []LineInput, discount decimal.Decimal, discountType string) (*Totals, error) {
	if len(lines) == 0 {
		return nil, domain.ErrEmptyInvoice
	}
	if discount.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	switch discountType {
	case "", entity.DiscountTypeFixed, entity.DiscountTypePercentage:
	default:
		return nil, domain.ErrInvalidInput
	}

	var subtotal, taxTotal decimal.Decimal
	items := make([]entity.InvoiceItem, 0, len(lines))
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, domain.ErrInvalidInput
		}
		if line.Product == nil || !line.Product.Active {
			return nil, domain.ErrProductNotFound
		}
		if line.UnitPrice.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		lineSubtotal := line.UnitPrice.Mul(decimal.NewFromInt(line.Quantity))
		lineTax := lineSubtotal.Mul(line.Product.TaxRate).Div(hundred)
		subtotal = subtotal.Add(lineSubtotal)
		taxTotal = taxTotal.Add(lineTax)
		items = append(items, entity.InvoiceItem{
			ProductID:   line.Product.ID,
			ProductCode: line.Product.Code,
			ProductName: line.Product.Name,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice.Round(2),
			TaxRate:     line.Product.TaxRate,
			TaxAmount:   lineTax.Round(2),
			Subtotal:    lineSubtotal.Round(2),
		})
	}

	discountAmount := discount
	if discountType == entity.DiscountTypePercentage {
		discountAmount = subtotal.Mul(discount).Div(hundred)
	}

	// El total se deriva de los valores ya redondeados que se persisten, para
	// que total == round(subtotal + tax_total - discount, 2) se cumpla exacto
	// también al releer la factura de la base.
	t := &Totals{
		Items:          items,
		Subtotal:       subtotal.Round(2),
		TaxTotal:       taxTotal.Round(2),
		DiscountAmount: discountAmount.Round(2),
	}
	t.Total = t.Subtotal.Add(t.TaxTotal).Sub(t.DiscountAmount)
	return t, nil
}
