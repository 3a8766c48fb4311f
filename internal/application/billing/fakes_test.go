package billing_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/facturacion-api/internal/domain"
	"github.com/jhoicas/facturacion-api/internal/domain/entity"
	"github.com/jhoicas/facturacion-api/internal/domain/repository"
)

// store es el estado compartido de los fakes en memoria. El runner de
// transacciones toma un snapshot antes de ejecutar y lo restaura si la
// función retorna error, emulando el rollback de PostgreSQL.
type store struct {
	mu        sync.Mutex
	products  map[string]*entity.Product
	clients   map[string]*entity.Client
	stock     map[string]*entity.Inventory
	movements []*entity.InventoryMovement
	invoices  map[string]*entity.Invoice
	items     map[string][]*entity.InvoiceItem

	// inyección de fallas
	failMovementCreate bool
	failItemCreate     bool

	// staleLastNumber, si no está vacío, se devuelve una sola vez como
	// último consecutivo: emula la lectura desfasada del máximo que se da
	// bajo READ COMMITTED cuando otra transacción acaba de confirmar.
	staleLastNumber string

	// afterInvoiceRead corre después de cada GetByID de factura; permite
	// intercalar una escritura concurrente entre la lectura y el update.
	afterInvoiceRead func()
}

func newStore() *store {
	return &store{
		products: make(map[string]*entity.Product),
		clients:  make(map[string]*entity.Client),
		stock:    make(map[string]*entity.Inventory),
		invoices: make(map[string]*entity.Invoice),
		items:    make(map[string][]*entity.InvoiceItem),
	}
}

func (s *store) addProduct(id, code, name string, price, taxRate decimal.Decimal, qty int64) {
	s.products[id] = &entity.Product{
		ID: id, Code: code, Name: name,
		Price: price, TaxRate: taxRate, Active: true,
	}
	s.stock[id] = &entity.Inventory{ProductID: id, Quantity: qty}
}

func (s *store) snapshot() *store {
	snap := newStore()
	for k, v := range s.products {
		p := *v
		snap.products[k] = &p
	}
	for k, v := range s.clients {
		c := *v
		snap.clients[k] = &c
	}
	for k, v := range s.stock {
		inv := *v
		snap.stock[k] = &inv
	}
	for _, m := range s.movements {
		mv := *m
		snap.movements = append(snap.movements, &mv)
	}
	for k, v := range s.invoices {
		inv := *v
		snap.invoices[k] = &inv
	}
	for k, list := range s.items {
		cp := make([]*entity.InvoiceItem, 0, len(list))
		for _, it := range list {
			item := *it
			cp = append(cp, &item)
		}
		snap.items[k] = cp
	}
	return snap
}

func (s *store) restore(snap *store) {
	s.products = snap.products
	s.clients = snap.clients
	s.stock = snap.stock
	s.movements = snap.movements
	s.invoices = snap.invoices
	s.items = snap.items
}

// --- repos fake ---

type fakeProductRepo struct{ s *store }

// Los getters devuelven copias: los repos pgx escanean un struct nuevo por
// consulta, y el caso de uso no debe depender de aliasing del fake.
func (r *fakeProductRepo) Create(p *entity.Product) error { r.s.products[p.ID] = p; return nil }
func (r *fakeProductRepo) GetByID(id string) (*entity.Product, error) {
	p := r.s.products[id]
	if p == nil {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}
func (r *fakeProductRepo) GetByCode(code string) (*entity.Product, error) {
	for _, p := range r.s.products {
		if p.Code == code {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}
func (r *fakeProductRepo) GetActiveByID(id string) (*entity.Product, error) {
	p := r.s.products[id]
	if p == nil || !p.Active {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}
func (r *fakeProductRepo) Update(p *entity.Product) error { r.s.products[p.ID] = p; return nil }
func (r *fakeProductRepo) List(repository.ProductFilter) ([]*entity.Product, int, error) {
	return nil, 0, nil
}
func (r *fakeProductRepo) Deactivate(id string) error {
	if p := r.s.products[id]; p != nil {
		p.Active = false
	}
	return nil
}

type fakeClientRepo struct{ s *store }

func (r *fakeClientRepo) Create(c *entity.Client) error { r.s.clients[c.ID] = c; return nil }
func (r *fakeClientRepo) GetByID(id string) (*entity.Client, error) {
	c := r.s.clients[id]
	if c == nil {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}
func (r *fakeClientRepo) Update(c *entity.Client) error { r.s.clients[c.ID] = c; return nil }
func (r *fakeClientRepo) List(string, int, int) ([]*entity.Client, int, error) {
	return nil, 0, nil
}
func (r *fakeClientRepo) Deactivate(string) error { return nil }

type fakeInventoryRepo struct{ s *store }

func (r *fakeInventoryRepo) Get(productID string) (*entity.Inventory, error) {
	inv := r.s.stock[productID]
	if inv == nil {
		return nil, nil
	}
	cp := *inv
	return &cp, nil
}
func (r *fakeInventoryRepo) GetForUpdate(productID string) (*entity.Inventory, error) {
	inv := r.s.stock[productID]
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	cp := *inv
	return &cp, nil
}
func (r *fakeInventoryRepo) Create(inv *entity.Inventory) error {
	r.s.stock[inv.ProductID] = inv
	return nil
}
func (r *fakeInventoryRepo) UpdateQuantity(productID string, quantity int64) error {
	inv := r.s.stock[productID]
	if inv == nil {
		return domain.ErrNotFound
	}
	inv.Quantity = quantity
	return nil
}
func (r *fakeInventoryRepo) List(string, string, int, int) ([]*repository.InventoryLevelRow, error) {
	return nil, nil
}
func (r *fakeInventoryRepo) Stats() (*repository.InventoryStats, error) {
	return &repository.InventoryStats{}, nil
}

type fakeMovementRepo struct{ s *store }

func (r *fakeMovementRepo) Create(m *entity.InventoryMovement) error {
	if r.s.failMovementCreate {
		return domain.ErrConflict
	}
	r.s.movements = append(r.s.movements, m)
	return nil
}
func (r *fakeMovementRepo) ListByProduct(productID string, _, _ *time.Time, _, _ int) ([]*entity.InventoryMovement, error) {
	var out []*entity.InventoryMovement
	for _, m := range r.s.movements {
		if m.ProductID == productID {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeInvoiceRepo struct{ s *store }

func (r *fakeInvoiceRepo) Create(inv *entity.Invoice) error {
	for _, existing := range r.s.invoices {
		if existing.InvoiceNumber == inv.InvoiceNumber {
			return domain.ErrDuplicate
		}
	}
	cp := *inv
	r.s.invoices[inv.ID] = &cp
	return nil
}
func (r *fakeInvoiceRepo) CreateItem(item *entity.InvoiceItem) error {
	if r.s.failItemCreate {
		return domain.ErrConflict
	}
	r.s.items[item.InvoiceID] = append(r.s.items[item.InvoiceID], item)
	return nil
}
func (r *fakeInvoiceRepo) GetByID(id string) (*entity.Invoice, error) {
	inv := r.s.invoices[id]
	if inv == nil {
		return nil, nil
	}
	cp := *inv
	if r.s.afterInvoiceRead != nil {
		r.s.afterInvoiceRead()
	}
	return &cp, nil
}
func (r *fakeInvoiceRepo) GetItemsByInvoiceID(invoiceID string) ([]*entity.InvoiceItem, error) {
	list := r.s.items[invoiceID]
	out := make([]*entity.InvoiceItem, 0, len(list))
	for _, it := range list {
		cp := *it
		out = append(out, &cp)
	}
	return out, nil
}
func (r *fakeInvoiceRepo) GetLastNumberForUpdate() (string, error) {
	if r.s.staleLastNumber != "" {
		stale := r.s.staleLastNumber
		r.s.staleLastNumber = ""
		return stale, nil
	}
	numbers := make([]string, 0, len(r.s.invoices))
	for _, inv := range r.s.invoices {
		numbers = append(numbers, inv.InvoiceNumber)
	}
	if len(numbers) == 0 {
		return "", nil
	}
	sort.Strings(numbers)
	return numbers[len(numbers)-1], nil
}
func (r *fakeInvoiceRepo) UpdateStatus(inv *entity.Invoice, fromStatus string) error {
	existing := r.s.invoices[inv.ID]
	if existing == nil {
		return domain.ErrNotFound
	}
	// Mismo contrato que el UPDATE condicionado: si el estado ya no es el
	// leído, otra transacción ganó la carrera.
	if existing.Status != fromStatus {
		return domain.ErrConflict
	}
	existing.Status = inv.Status
	existing.PaidAt = inv.PaidAt
	existing.UpdatedAt = inv.UpdatedAt
	return nil
}
func (r *fakeInvoiceRepo) List(repository.InvoiceFilter) ([]*repository.InvoiceListRow, int, error) {
	rows := make([]*repository.InvoiceListRow, 0, len(r.s.invoices))
	for _, inv := range r.s.invoices {
		rows = append(rows, &repository.InvoiceListRow{
			Invoice:    *inv,
			ItemsCount: len(r.s.items[inv.ID]),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Invoice.InvoiceNumber < rows[j].Invoice.InvoiceNumber
	})
	return rows, len(rows), nil
}
func (r *fakeInvoiceRepo) Stats() (*repository.InvoiceStats, error) {
	stats := &repository.InvoiceStats{}
	for _, inv := range r.s.invoices {
		stats.Total++
		switch inv.Status {
		case entity.InvoiceStatusPending:
			stats.Pending++
			stats.PendingAmount = stats.PendingAmount.Add(inv.Total)
		case entity.InvoiceStatusPaid:
			stats.Paid++
			stats.PaidAmount = stats.PaidAmount.Add(inv.Total)
		case entity.InvoiceStatusCancelled:
			stats.Cancelled++
		}
		if inv.Status != entity.InvoiceStatusCancelled {
			stats.TotalAmount = stats.TotalAmount.Add(inv.Total)
		}
	}
	return stats, nil
}

// fakeTxRunner serializa transacciones con un mutex y restaura el snapshot
// del estado si la función falla, igual que haría el rollback real.
type fakeTxRunner struct{ s *store }

func (tr *fakeTxRunner) RunBilling(_ context.Context, fn func(
	repository.InventoryMovementRepository,
	repository.InventoryRepository,
	repository.ProductRepository,
	repository.InvoiceRepository,
) error) error {
	tr.s.mu.Lock()
	defer tr.s.mu.Unlock()
	snap := tr.s.snapshot()
	err := fn(
		&fakeMovementRepo{tr.s},
		&fakeInventoryRepo{tr.s},
		&fakeProductRepo{tr.s},
		&fakeInvoiceRepo{tr.s},
	)
	if err != nil {
		tr.s.restore(snap)
	}
	return err
}
