package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/facturacion-api/internal/application/inventory"
	"github.com/jhoicas/facturacion-api/internal/domain"
	"github.com/jhoicas/facturacion-api/internal/domain/entity"
	"github.com/jhoicas/facturacion-api/internal/domain/repository"
)

// estado compartido de los fakes; el runner restaura el snapshot si la
// función transaccional falla, como haría el rollback real.
type memState struct {
	products  map[string]*entity.Product
	stock     map[string]*entity.Inventory
	movements []*entity.InventoryMovement
}

func newMemState() *memState {
	return &memState{
		products: make(map[string]*entity.Product),
		stock:    make(map[string]*entity.Inventory),
	}
}

func (m *memState) addProduct(id string, qty, minStock int64) {
	m.products[id] = &entity.Product{ID: id, Code: "SKU-" + id, Name: "Producto " + id, Active: true}
	m.stock[id] = &entity.Inventory{ProductID: id, Quantity: qty, MinStock: minStock}
}

func (m *memState) snapshot() *memState {
	snap := newMemState()
	for k, v := range m.products {
		p := *v
		snap.products[k] = &p
	}
	for k, v := range m.stock {
		inv := *v
		snap.stock[k] = &inv
	}
	for _, mov := range m.movements {
		mv := *mov
		snap.movements = append(snap.movements, &mv)
	}
	return snap
}

type memProductRepo struct{ m *memState }

// Los getters devuelven copias: los repos reales escanean structs nuevos en
// cada consulta y el caso de uso no debe depender de aliasing del fake.
func (r *memProductRepo) Create(p *entity.Product) error { r.m.products[p.ID] = p; return nil }
func (r *memProductRepo) GetByID(id string) (*entity.Product, error) {
	p := r.m.products[id]
	if p == nil {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}
func (r *memProductRepo) GetByCode(string) (*entity.Product, error) { return nil, nil }
func (r *memProductRepo) GetActiveByID(id string) (*entity.Product, error) {
	p := r.m.products[id]
	if p == nil || !p.Active {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}
func (r *memProductRepo) Update(p *entity.Product) error { r.m.products[p.ID] = p; return nil }
func (r *memProductRepo) List(repository.ProductFilter) ([]*entity.Product, int, error) {
	return nil, 0, nil
}
func (r *memProductRepo) Deactivate(string) error { return nil }

type memInventoryRepo struct{ m *memState }

func (r *memInventoryRepo) Get(id string) (*entity.Inventory, error) {
	inv := r.m.stock[id]
	if inv == nil {
		return nil, nil
	}
	cp := *inv
	return &cp, nil
}
func (r *memInventoryRepo) GetForUpdate(id string) (*entity.Inventory, error) {
	inv := r.m.stock[id]
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	cp := *inv
	return &cp, nil
}
func (r *memInventoryRepo) Create(inv *entity.Inventory) error {
	r.m.stock[inv.ProductID] = inv
	return nil
}
func (r *memInventoryRepo) UpdateQuantity(id string, qty int64) error {
	inv := r.m.stock[id]
	if inv == nil {
		return domain.ErrNotFound
	}
	inv.Quantity = qty
	return nil
}
func (r *memInventoryRepo) List(string, string, int, int) ([]*repository.InventoryLevelRow, error) {
	rows := make([]*repository.InventoryLevelRow, 0, len(r.m.stock))
	for id, inv := range r.m.stock {
		p := r.m.products[id]
		rows = append(rows, &repository.InventoryLevelRow{
			Inventory:   *inv,
			ProductCode: p.Code,
			ProductName: p.Name,
			Price:       p.Price,
		})
	}
	return rows, nil
}
func (r *memInventoryRepo) Stats() (*repository.InventoryStats, error) {
	stats := &repository.InventoryStats{}
	for _, inv := range r.m.stock {
		stats.Total++
		switch inv.StockStatus() {
		case entity.StockStatusOut:
			stats.OutOfStock++
		case entity.StockStatusLow:
			stats.LowStock++
		}
	}
	return stats, nil
}

type memMovementRepo struct{ m *memState }

func (r *memMovementRepo) Create(mov *entity.InventoryMovement) error {
	r.m.movements = append(r.m.movements, mov)
	return nil
}
func (r *memMovementRepo) ListByProduct(id string, _, _ *time.Time, _, _ int) ([]*entity.InventoryMovement, error) {
	var out []*entity.InventoryMovement
	for _, mov := range r.m.movements {
		if mov.ProductID == id {
			out = append(out, mov)
		}
	}
	return out, nil
}

type memTxRunner struct{ m *memState }

func (tr *memTxRunner) Run(_ context.Context, fn func(
	repository.InventoryMovementRepository,
	repository.InventoryRepository,
	repository.ProductRepository,
) error) error {
	snap := tr.m.snapshot()
	err := fn(&memMovementRepo{tr.m}, &memInventoryRepo{tr.m}, &memProductRepo{tr.m})
	if err != nil {
		tr.m.products = snap.products
		tr.m.stock = snap.stock
		tr.m.movements = snap.movements
	}
	return err
}

func newStockUseCase(m *memState) *inventory.StockUseCase {
	return inventory.NewStockUseCase(
		&memTxRunner{m},
		&memInventoryRepo{m},
		&memMovementRepo{m},
		&memProductRepo{m},
	)
}

func TestAdjustStock_Add(t *testing.T) {
	m := newMemState()
	m.addProduct("p1", 10, 2)
	uc := newStockUseCase(m)

	out, err := uc.AdjustStock(context.Background(), inventory.AdjustInput{
		UserID: "u1", ProductID: "p1", Quantity: 5, Mode: inventory.ModeAdd,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(10), out.PreviousQuantity)
	assert.Equal(t, int64(15), out.NewQuantity)
	assert.Equal(t, int64(15), m.stock["p1"].Quantity)

	require.Len(t, m.movements, 1)
	mov := m.movements[0]
	assert.Equal(t, entity.MovementTypeAdjustmentIn, mov.Type)
	assert.Equal(t, int64(5), mov.Quantity)
	assert.Equal(t, int64(10), mov.PreviousQuantity)
	assert.Equal(t, int64(15), mov.NewQuantity)
	assert.Equal(t, "u1", mov.CreatedBy)
}

func TestAdjustStock_Subtract(t *testing.T) {
	m := newMemState()
	m.addProduct("p1", 10, 2)
	uc := newStockUseCase(m)

	out, err := uc.AdjustStock(context.Background(), inventory.AdjustInput{
		UserID: "u1", ProductID: "p1", Quantity: 4, Mode: inventory.ModeSubtract,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(6), out.NewQuantity)
	assert.Equal(t, entity.MovementTypeAdjustmentOut, m.movements[0].Type)
	assert.Equal(t, int64(-4), m.movements[0].Quantity)
}

func TestAdjustStock_SubtractNuncaDejaNegativo(t *testing.T) {
	m := newMemState()
	m.addProduct("p1", 3, 0)
	uc := newStockUseCase(m)

	_, err := uc.AdjustStock(context.Background(), inventory.AdjustInput{
		UserID: "u1", ProductID: "p1", Quantity: 5, Mode: inventory.ModeSubtract,
	})
	assert.Equal(t, domain.ErrInsufficientStock, err)
	// rollback: ni cantidad ni movimiento
	assert.Equal(t, int64(3), m.stock["p1"].Quantity)
	assert.Empty(t, m.movements)
}

func TestAdjustStock_Set(t *testing.T) {
	m := newMemState()
	m.addProduct("p1", 10, 2)
	uc := newStockUseCase(m)

	out, err := uc.AdjustStock(context.Background(), inventory.AdjustInput{
		UserID: "u1", ProductID: "p1", Quantity: 0, Mode: inventory.ModeSet,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), out.NewQuantity)

	mov := m.movements[0]
	assert.Equal(t, entity.MovementTypeSet, mov.Type)
	// delta con signo: de 10 a 0
	assert.Equal(t, int64(-10), mov.Quantity)
}

func TestAdjustStock_Validaciones(t *testing.T) {
	m := newMemState()
	m.addProduct("p1", 10, 2)
	uc := newStockUseCase(m)

	cases := []struct {
		name string
		in   inventory.AdjustInput
	}{
		{"modo desconocido", inventory.AdjustInput{ProductID: "p1", Quantity: 1, Mode: "increment"}},
		{"add con cantidad cero", inventory.AdjustInput{ProductID: "p1", Quantity: 0, Mode: inventory.ModeAdd}},
		{"subtract negativo", inventory.AdjustInput{ProductID: "p1", Quantity: -2, Mode: inventory.ModeSubtract}},
		{"set negativo", inventory.AdjustInput{ProductID: "p1", Quantity: -1, Mode: inventory.ModeSet}},
		{"sin producto", inventory.AdjustInput{Quantity: 1, Mode: inventory.ModeAdd}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.AdjustStock(context.Background(), tc.in)
			assert.Equal(t, domain.ErrInvalidInput, err)
		})
	}
}

func TestAdjustStock_ProductoInexistente(t *testing.T) {
	uc := newStockUseCase(newMemState())
	_, err := uc.AdjustStock(context.Background(), inventory.AdjustInput{
		ProductID: "nope", Quantity: 1, Mode: inventory.ModeAdd,
	})
	assert.Equal(t, domain.ErrNotFound, err)
}

func TestListMovements_SoloDelProducto(t *testing.T) {
	m := newMemState()
	m.addProduct("p1", 10, 2)
	m.addProduct("p2", 10, 2)
	uc := newStockUseCase(m)

	_, err := uc.AdjustStock(context.Background(), inventory.AdjustInput{
		UserID: "u1", ProductID: "p1", Quantity: 1, Mode: inventory.ModeAdd,
	})
	require.NoError(t, err)
	_, err = uc.AdjustStock(context.Background(), inventory.AdjustInput{
		UserID: "u1", ProductID: "p2", Quantity: 2, Mode: inventory.ModeAdd,
	})
	require.NoError(t, err)

	movs, err := uc.ListMovements("p1", nil, nil, 50, 0)
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, "p1", movs[0].ProductID)

	_, err = uc.ListMovements("", nil, nil, 50, 0)
	assert.Equal(t, domain.ErrInvalidInput, err)
}
