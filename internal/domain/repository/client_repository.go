package repository

import "github.com/jhoicas/facturacion-api/internal/domain/entity"

// ClientRepository define el puerto de persistencia para Client (facturación).
type ClientRepository interface {
	Create(client *entity.Client) error
	GetByID(id string) (*entity.Client, error)
	Update(client *entity.Client) error
	// List filtra por nombre/email/documento (search vacío = todos los activos).
	List(search string, limit, offset int) ([]*entity.Client, int, error)
	// Deactivate marca el cliente como inactivo (borrado lógico).
	Deactivate(id string) error
}
