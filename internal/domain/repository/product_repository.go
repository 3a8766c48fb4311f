package repository

import "github.com/jhoicas/facturacion-api/internal/domain/entity"

// ProductFilter filtros del listado de productos.
type ProductFilter struct {
	Search     string // ILIKE sobre code y name
	CategoryID string
	Limit      int
	Offset     int
}

// ProductRepository define el puerto de persistencia para Product (DIP).
type ProductRepository interface {
	Create(product *entity.Product) error
	GetByID(id string) (*entity.Product, error)
	GetByCode(code string) (*entity.Product, error)
	// GetActiveByID retorna nil si el producto no existe o está inactivo;
	// es la resolución autoritativa usada al facturar.
	GetActiveByID(id string) (*entity.Product, error)
	Update(product *entity.Product) error
	List(filter ProductFilter) ([]*entity.Product, int, error)
	// Deactivate marca el producto como inactivo (borrado lógico).
	Deactivate(id string) error
}
