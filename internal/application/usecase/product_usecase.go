package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/facturacion-api/internal/application/dto"
	"github.com/jhoicas/facturacion-api/internal/application/inventory"
	"github.com/jhoicas/facturacion-api/internal/domain"
	"github.com/jhoicas/facturacion-api/internal/domain/entity"
	"github.com/jhoicas/facturacion-api/internal/domain/repository"
)

// ProductUseCase casos de uso CRUD para productos. El stock no se edita aquí:
// nace con el producto (movimiento "set" inicial) y después solo cambia vía
// ajustes y ventas.
type ProductUseCase struct {
	repo     repository.ProductRepository
	invRepo  repository.InventoryRepository
	txRunner inventory.TxRunner
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository, invRepo repository.InventoryRepository, txRunner inventory.TxRunner) *ProductUseCase {
	return &ProductUseCase{repo: repo, invRepo: invRepo, txRunner: txRunner}
}

// Create crea un producto junto con su fila de inventario. Si InitialStock > 0
// queda registrado un movimiento "set" inicial, para que la bitácora explique
// el stock desde el día cero.
func (uc *ProductUseCase) Create(ctx context.Context, userID string, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if in.Code == "" || in.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.Price.IsNegative() || in.Cost.IsNegative() || in.TaxRate.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	if in.InitialStock < 0 || in.MinStock < 0 {
		return nil, domain.ErrInvalidInput
	}
	existing, _ := uc.repo.GetByCode(in.Code)
	if existing != nil {
		return nil, domain.ErrDuplicate
	}

	now := time.Now()
	product := &entity.Product{
		ID:          uuid.New().String(),
		Code:        in.Code,
		Name:        in.Name,
		Description: in.Description,
		CategoryID:  in.CategoryID,
		Price:       in.Price,
		Cost:        in.Cost,
		TaxRate:     in.TaxRate,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := uc.txRunner.Run(ctx, func(
		movRepo repository.InventoryMovementRepository,
		invRepo repository.InventoryRepository,
		productRepo repository.ProductRepository,
	) error {
		if err := productRepo.Create(product); err != nil {
			return err
		}
		stock := &entity.Inventory{
			ProductID: product.ID,
			Quantity:  in.InitialStock,
			MinStock:  in.MinStock,
			UpdatedAt: now,
		}
		if err := invRepo.Create(stock); err != nil {
			return err
		}
		if in.InitialStock > 0 {
			mov := &entity.InventoryMovement{
				ID:          uuid.New().String(),
				ProductID:   product.ID,
				Quantity:    in.InitialStock,
				NewQuantity: in.InitialStock,
				Type:        entity.MovementTypeSet,
				Notes:       "Stock inicial",
				CreatedBy:   userID,
				CreatedAt:   now,
			}
			return movRepo.Create(mov)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return toProductResponse(product, in.InitialStock, in.MinStock), nil
}

// GetByID obtiene un producto con su stock actual.
func (uc *ProductUseCase) GetByID(id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return uc.withStock(product)
}

// Update actualiza un producto. Code es inmutable y el stock no se toca aquí.
func (uc *ProductUseCase) Update(id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if in.Name != nil {
		if *in.Name == "" {
			return nil, domain.ErrInvalidInput
		}
		product.Name = *in.Name
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.CategoryID != nil {
		product.CategoryID = *in.CategoryID
	}
	if in.Price != nil {
		if in.Price.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		product.Price = *in.Price
	}
	if in.Cost != nil {
		if in.Cost.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		product.Cost = *in.Cost
	}
	if in.TaxRate != nil {
		if in.TaxRate.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		product.TaxRate = *in.TaxRate
	}
	product.UpdatedAt = time.Now()
	if err := uc.repo.Update(product); err != nil {
		return nil, err
	}
	return uc.withStock(product)
}

// List lista productos con paginación y su stock.
func (uc *ProductUseCase) List(filter repository.ProductFilter) (*dto.ProductListResponse, error) {
	list, total, err := uc.repo.List(filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		resp, err := uc.withStock(p)
		if err != nil {
			return nil, err
		}
		items = append(items, *resp)
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: filter.Limit, Offset: filter.Offset, Total: total},
	}, nil
}

// Delete desactiva el producto (borrado lógico). Las facturas que lo
// referencian conservan su snapshot; el producto solo deja de ser vendible.
func (uc *ProductUseCase) Delete(id string) error {
	product, err := uc.repo.GetByID(id)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrNotFound
	}
	return uc.repo.Deactivate(id)
}

func (uc *ProductUseCase) withStock(p *entity.Product) (*dto.ProductResponse, error) {
	stock, err := uc.invRepo.Get(p.ID)
	if err != nil {
		return nil, err
	}
	var qty, minStock int64
	if stock != nil {
		qty = stock.Quantity
		minStock = stock.MinStock
	}
	return toProductResponse(p, qty, minStock), nil
}

func toProductResponse(p *entity.Product, stock, minStock int64) *dto.ProductResponse {
	inv := entity.Inventory{Quantity: stock, MinStock: minStock}
	return &dto.ProductResponse{
		ID:          p.ID,
		Code:        p.Code,
		Name:        p.Name,
		Description: p.Description,
		CategoryID:  p.CategoryID,
		Price:       p.Price,
		Cost:        p.Cost,
		TaxRate:     p.TaxRate,
		Active:      p.Active,
		Stock:       stock,
		StockStatus: inv.StockStatus(),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
