// Package billing contiene los servicios de dominio de facturación: numeración
// consecutiva y cálculo de totales. Sin dependencias de infraestructura.
package billing

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jhoicas/facturacion-api/internal/domain"
)

// Formato del consecutivo: prefijo fijo + 6 dígitos con ceros a la izquierda.
const (
	InvoiceNumberPrefix = "INV"
	invoiceNumberWidth  = 6
)

// FormatInvoiceNumber formatea un consecutivo: 1 -> "INV-000001".
func FormatInvoiceNumber(n int64) string {
	return fmt.Sprintf("%s-%0*d", InvoiceNumberPrefix, invoiceNumberWidth, n)
}

// ParseInvoiceNumber extrae el sufijo numérico de un número de factura.
// Acepta cualquier prefijo (datos históricos pueden usar otro); el sufijo es lo
// que sigue al último guion. Retorna ErrInvoiceNumbering si no es parseable.
func ParseInvoiceNumber(number string) (int64, error) {
	idx := strings.LastIndex(number, "-")
	if idx < 0 || idx == len(number)-1 {
		return 0, fmt.Errorf("%w: %q", domain.ErrInvoiceNumbering, number)
	}
	n, err := strconv.ParseInt(number[idx+1:], 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %q", domain.ErrInvoiceNumbering, number)
	}
	return n, nil
}

// NextInvoiceNumber calcula el consecutivo siguiente al último número emitido.
// Con last vacío (sin facturas) arranca en INV-000001. El último número debe
// leerse dentro de la misma transacción del insert y bajo bloqueo de fila, o
// dos creaciones concurrentes calculan el mismo "siguiente".
func NextInvoiceNumber(last string) (string, error) {
	if last == "" {
		return FormatInvoiceNumber(1), nil
	}
	n, err := ParseInvoiceNumber(last)
	if err != nil {
		return "", err
	}
	return FormatInvoiceNumber(n + 1), nil
}
