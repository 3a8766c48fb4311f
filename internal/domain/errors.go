package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")

	// Reglas de negocio de facturación e inventario.
	ErrEmptyInvoice      = errors.New("la factura debe tener al menos un item")
	ErrProductNotFound   = errors.New("producto no encontrado o inactivo")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrInvoiceNumbering  = errors.New("número de factura ilegible")
)
