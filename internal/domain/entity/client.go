package entity

import "time"

// Client representa un cliente de facturación. En ventas de mostrador la
// factura puede no tener cliente asociado.
type Client struct {
	ID             string
	Name           string
	Email          string
	Phone          string
	Address        string
	DocumentType   string // CC, NIT, CE, etc.
	DocumentNumber string
	Active         bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
