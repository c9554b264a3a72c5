package repository

import (
	"context"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"medorder/internal/catalog"
	"medorder/internal/domain"
)

// memoryData is the full state of a MemoryStore. Values are stored without
// their associations so a shallow map clone is a complete snapshot.
type memoryData struct {
	nextMedicineID int64
	nextCustomerID int64
	nextOrderID    int64
	nextLineID     int64
	nextInvoiceID  int64

	medicines map[int64]domain.Medicine
	customers map[int64]domain.Customer
	orders    map[int64]domain.Order
	lines     map[int64]domain.OrderLine
	invoices  map[int64]domain.Invoice
}

func (d memoryData) clone() memoryData {
	d.medicines = maps.Clone(d.medicines)
	d.customers = maps.Clone(d.customers)
	d.orders = maps.Clone(d.orders)
	d.lines = maps.Clone(d.lines)
	d.invoices = maps.Clone(d.invoices)
	return d
}

// MemoryStore is an in-process store with transactional rollback. A
// transaction holds the write lock for its whole duration, which serializes
// stock checks and decrements.
type MemoryStore struct {
	mu   sync.RWMutex
	data memoryData
	now  func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: memoryData{
			nextMedicineID: 1,
			nextCustomerID: 1,
			nextOrderID:    1,
			nextLineID:     1,
			nextInvoiceID:  1,
			medicines:      make(map[int64]domain.Medicine),
			customers:      make(map[int64]domain.Customer),
			orders:         make(map[int64]domain.Order),
			lines:          make(map[int64]domain.OrderLine),
			invoices:       make(map[int64]domain.Invoice),
		},
		now: func() time.Time { return time.Now().UTC() },
	}
}

// NewMemoryRepositories wires every repository onto one fresh MemoryStore.
func NewMemoryRepositories() Repositories {
	store := NewMemoryStore()
	return Repositories{
		Medicines: store,
		Customers: NewMemoryCustomers(store),
		Orders:    NewMemoryOrders(store),
		Invoices:  NewMemoryInvoices(store),
		Tx:        NewMemoryTx(store),
	}
}

// transaction-aware locking helpers
type txKey struct{}

func isTx(ctx context.Context) bool {
	v := ctx.Value(txKey{})
	if v == nil {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}

func (m *MemoryStore) rlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.RLock()
	}
}
func (m *MemoryStore) runlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.RUnlock()
	}
}
func (m *MemoryStore) wlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.Lock()
	}
}
func (m *MemoryStore) wunlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.Unlock()
	}
}

var _ MedicineRepository = (*MemoryStore)(nil)

func (m *MemoryStore) Create(ctx context.Context, med *domain.Medicine) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	med.ID = m.data.nextMedicineID
	m.data.nextMedicineID++
	med.CreatedAt = m.now()
	med.UpdatedAt = med.CreatedAt
	m.data.medicines[med.ID] = *med
	return nil
}

func (m *MemoryStore) GetByID(ctx context.Context, id int64) (*domain.Medicine, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	med, ok := m.data.medicines[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &med, nil
}

// LockByID is GetByID: inside a transaction the store is already locked.
func (m *MemoryStore) LockByID(ctx context.Context, id int64) (*domain.Medicine, error) {
	return m.GetByID(ctx, id)
}

func (m *MemoryStore) Update(ctx context.Context, med *domain.Medicine) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	cur, ok := m.data.medicines[med.ID]
	if !ok {
		return ErrNotFound
	}
	med.CreatedAt = cur.CreatedAt
	med.UpdatedAt = m.now()
	m.data.medicines[med.ID] = *med
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, id int64) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	if _, ok := m.data.medicines[id]; !ok {
		return ErrNotFound
	}
	for _, l := range m.data.lines {
		if l.MedicineID == id {
			return ErrReferenced
		}
	}
	delete(m.data.medicines, id)
	return nil
}

func (m *MemoryStore) sortedMedicines() []domain.Medicine {
	out := make([]domain.Medicine, 0, len(m.data.medicines))
	for _, med := range m.data.medicines {
		out = append(out, med)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *MemoryStore) List(ctx context.Context, f MedicineFilter) ([]domain.Medicine, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	out := make([]domain.Medicine, 0)
	for _, med := range m.sortedMedicines() {
		if !catalog.Contains(med.Name, f.NameSubstring) {
			continue
		}
		if f.MinPrice != nil && med.UnitPrice.LessThan(*f.MinPrice) {
			continue
		}
		if f.MaxPrice != nil && med.UnitPrice.GreaterThan(*f.MaxPrice) {
			continue
		}
		if f.LowStockOnly && !med.LowStock() {
			continue
		}
		out = append(out, med)
	}
	from, to := page(len(out), f.Offset, f.Limit)
	return out[from:to], nil
}

func (m *MemoryStore) Search(ctx context.Context, query string, limit int) ([]domain.Medicine, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	ranked := catalog.Rank(m.sortedMedicines(), query)
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

func (m *MemoryStore) AdjustStock(ctx context.Context, id int64, delta int64) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	med, ok := m.data.medicines[id]
	if !ok {
		return ErrNotFound
	}
	if med.StockQuantity+delta < 0 {
		return ErrInsufficientStock
	}
	med.StockQuantity += delta
	med.UpdatedAt = m.now()
	m.data.medicines[id] = med
	return nil
}

// MemoryCustomers implements CustomerRepository on a MemoryStore.
type MemoryCustomers struct{ store *MemoryStore }

func NewMemoryCustomers(store *MemoryStore) *MemoryCustomers { return &MemoryCustomers{store: store} }

var _ CustomerRepository = (*MemoryCustomers)(nil)

func (mc *MemoryCustomers) phoneTaken(phone string, exceptID int64) bool {
	for _, c := range mc.store.data.customers {
		if c.Phone == phone && c.ID != exceptID {
			return true
		}
	}
	return false
}

func (mc *MemoryCustomers) Create(ctx context.Context, c *domain.Customer) error {
	mc.store.wlock(ctx)
	defer mc.store.wunlock(ctx)
	if mc.phoneTaken(c.Phone, 0) {
		return ErrDuplicate
	}
	c.ID = mc.store.data.nextCustomerID
	mc.store.data.nextCustomerID++
	c.CreatedAt = mc.store.now()
	c.UpdatedAt = c.CreatedAt
	mc.store.data.customers[c.ID] = *c
	return nil
}

func (mc *MemoryCustomers) GetByID(ctx context.Context, id int64) (*domain.Customer, error) {
	mc.store.rlock(ctx)
	defer mc.store.runlock(ctx)
	c, ok := mc.store.data.customers[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (mc *MemoryCustomers) GetByPhone(ctx context.Context, phone string) (*domain.Customer, error) {
	mc.store.rlock(ctx)
	defer mc.store.runlock(ctx)
	for _, c := range mc.store.data.customers {
		if c.Phone == phone {
			cp := c
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (mc *MemoryCustomers) LockByPhone(ctx context.Context, phone string) (*domain.Customer, error) {
	return mc.GetByPhone(ctx, phone)
}

func (mc *MemoryCustomers) AddTotals(ctx context.Context, id int64, orders int64, amount decimal.Decimal) error {
	mc.store.wlock(ctx)
	defer mc.store.wunlock(ctx)
	c, ok := mc.store.data.customers[id]
	if !ok {
		return ErrNotFound
	}
	c.TotalOrders = max(c.TotalOrders+orders, 0)
	c.TotalAmountSpent = c.TotalAmountSpent.Add(amount)
	if c.TotalAmountSpent.IsNegative() {
		c.TotalAmountSpent = decimal.Zero
	}
	c.UpdatedAt = mc.store.now()
	mc.store.data.customers[id] = c
	return nil
}

func (mc *MemoryCustomers) Update(ctx context.Context, c *domain.Customer) error {
	mc.store.wlock(ctx)
	defer mc.store.wunlock(ctx)
	cur, ok := mc.store.data.customers[c.ID]
	if !ok {
		return ErrNotFound
	}
	if mc.phoneTaken(c.Phone, c.ID) {
		return ErrDuplicate
	}
	c.CreatedAt = cur.CreatedAt
	c.UpdatedAt = mc.store.now()
	mc.store.data.customers[c.ID] = *c
	return nil
}

func (mc *MemoryCustomers) List(ctx context.Context, offset, limit int) ([]domain.Customer, error) {
	mc.store.rlock(ctx)
	defer mc.store.runlock(ctx)
	out := make([]domain.Customer, 0, len(mc.store.data.customers))
	for _, c := range mc.store.data.customers {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	from, to := page(len(out), offset, limit)
	return out[from:to], nil
}

// MemoryOrders implements OrderRepository on a MemoryStore.
type MemoryOrders struct{ store *MemoryStore }

func NewMemoryOrders(store *MemoryStore) *MemoryOrders { return &MemoryOrders{store: store} }

var _ OrderRepository = (*MemoryOrders)(nil)

func (mo *MemoryOrders) Create(ctx context.Context, o *domain.Order) error {
	mo.store.wlock(ctx)
	defer mo.store.wunlock(ctx)
	for _, cur := range mo.store.data.orders {
		if cur.OrderNumber == o.OrderNumber {
			return ErrDuplicate
		}
		if o.IdempotencyKey != nil && cur.IdempotencyKey != nil && *cur.IdempotencyKey == *o.IdempotencyKey {
			return ErrDuplicate
		}
	}
	o.ID = mo.store.data.nextOrderID
	mo.store.data.nextOrderID++
	o.CreatedAt = mo.store.now()
	o.UpdatedAt = o.CreatedAt
	mo.store.data.orders[o.ID] = bare(*o)
	return nil
}

func bare(o domain.Order) domain.Order {
	o.Customer = nil
	o.Lines = nil
	o.Invoice = nil
	return o
}

func (mo *MemoryOrders) Update(ctx context.Context, o *domain.Order) error {
	mo.store.wlock(ctx)
	defer mo.store.wunlock(ctx)
	cur, ok := mo.store.data.orders[o.ID]
	if !ok {
		return ErrNotFound
	}
	o.CreatedAt = cur.CreatedAt
	o.UpdatedAt = mo.store.now()
	mo.store.data.orders[o.ID] = bare(*o)
	return nil
}

func (mo *MemoryOrders) AddLine(ctx context.Context, l *domain.OrderLine) error {
	mo.store.wlock(ctx)
	defer mo.store.wunlock(ctx)
	if _, ok := mo.store.data.orders[l.OrderID]; !ok {
		return ErrNotFound
	}
	if _, ok := mo.store.data.medicines[l.MedicineID]; !ok {
		return ErrNotFound
	}
	l.ID = mo.store.data.nextLineID
	mo.store.data.nextLineID++
	l.CreatedAt = mo.store.now()
	l.Medicine = nil
	mo.store.data.lines[l.ID] = *l
	return nil
}

// assemble attaches customer, lines and invoice. Caller holds a lock.
func (mo *MemoryOrders) assemble(o domain.Order) *domain.Order {
	if c, ok := mo.store.data.customers[o.CustomerID]; ok {
		o.Customer = &c
	}
	for _, l := range mo.store.data.lines {
		if l.OrderID == o.ID {
			o.Lines = append(o.Lines, l)
		}
	}
	sort.Slice(o.Lines, func(i, j int) bool { return o.Lines[i].ID < o.Lines[j].ID })
	for _, inv := range mo.store.data.invoices {
		if inv.OrderID == o.ID {
			cp := inv
			o.Invoice = &cp
			break
		}
	}
	return &o
}

func (mo *MemoryOrders) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	mo.store.rlock(ctx)
	defer mo.store.runlock(ctx)
	o, ok := mo.store.data.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	return mo.assemble(o), nil
}

// LockByID is GetByID: inside a transaction the store is already locked.
func (mo *MemoryOrders) LockByID(ctx context.Context, id int64) (*domain.Order, error) {
	return mo.GetByID(ctx, id)
}

func (mo *MemoryOrders) findOne(ctx context.Context, match func(domain.Order) bool) (*domain.Order, error) {
	mo.store.rlock(ctx)
	defer mo.store.runlock(ctx)
	for _, o := range mo.store.data.orders {
		if match(o) {
			return mo.assemble(o), nil
		}
	}
	return nil, ErrNotFound
}

func (mo *MemoryOrders) GetByNumber(ctx context.Context, number string) (*domain.Order, error) {
	return mo.findOne(ctx, func(o domain.Order) bool { return o.OrderNumber == number })
}

func (mo *MemoryOrders) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Order, error) {
	return mo.findOne(ctx, func(o domain.Order) bool {
		return o.IdempotencyKey != nil && *o.IdempotencyKey == key
	})
}

func (mo *MemoryOrders) List(ctx context.Context, offset, limit int) ([]domain.Order, error) {
	mo.store.rlock(ctx)
	defer mo.store.runlock(ctx)
	out := make([]domain.Order, 0, len(mo.store.data.orders))
	for _, o := range mo.store.data.orders {
		out = append(out, o)
	}
	// newest first
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	from, to := page(len(out), offset, limit)
	out = out[from:to]
	for i := range out {
		if c, ok := mo.store.data.customers[out[i].CustomerID]; ok {
			out[i].Customer = &c
		}
	}
	return out, nil
}

// MemoryInvoices implements InvoiceRepository on a MemoryStore.
type MemoryInvoices struct{ store *MemoryStore }

func NewMemoryInvoices(store *MemoryStore) *MemoryInvoices { return &MemoryInvoices{store: store} }

var _ InvoiceRepository = (*MemoryInvoices)(nil)

func (mi *MemoryInvoices) Create(ctx context.Context, inv *domain.Invoice) error {
	mi.store.wlock(ctx)
	defer mi.store.wunlock(ctx)
	if _, ok := mi.store.data.orders[inv.OrderID]; !ok {
		return ErrNotFound
	}
	for _, cur := range mi.store.data.invoices {
		if cur.InvoiceNumber == inv.InvoiceNumber || cur.OrderID == inv.OrderID {
			return ErrDuplicate
		}
	}
	inv.ID = mi.store.data.nextInvoiceID
	mi.store.data.nextInvoiceID++
	inv.CreatedAt = mi.store.now()
	if inv.InvoiceDate.IsZero() {
		inv.InvoiceDate = inv.CreatedAt
	}
	mi.store.data.invoices[inv.ID] = *inv
	return nil
}

func (mi *MemoryInvoices) Update(ctx context.Context, inv *domain.Invoice) error {
	mi.store.wlock(ctx)
	defer mi.store.wunlock(ctx)
	cur, ok := mi.store.data.invoices[inv.ID]
	if !ok {
		return ErrNotFound
	}
	inv.CreatedAt = cur.CreatedAt
	mi.store.data.invoices[inv.ID] = *inv
	return nil
}

func (mi *MemoryInvoices) GetByID(ctx context.Context, id int64) (*domain.Invoice, error) {
	mi.store.rlock(ctx)
	defer mi.store.runlock(ctx)
	inv, ok := mi.store.data.invoices[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &inv, nil
}

func (mi *MemoryInvoices) find(ctx context.Context, match func(domain.Invoice) bool) (*domain.Invoice, error) {
	mi.store.rlock(ctx)
	defer mi.store.runlock(ctx)
	for _, inv := range mi.store.data.invoices {
		if match(inv) {
			cp := inv
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (mi *MemoryInvoices) GetByNumber(ctx context.Context, number string) (*domain.Invoice, error) {
	return mi.find(ctx, func(inv domain.Invoice) bool { return inv.InvoiceNumber == number })
}

func (mi *MemoryInvoices) GetByOrderID(ctx context.Context, orderID int64) (*domain.Invoice, error) {
	return mi.find(ctx, func(inv domain.Invoice) bool { return inv.OrderID == orderID })
}

// MemoryTx emulates a transaction with the store's write lock and a
// snapshot that is restored on failure.
type MemoryTx struct{ store *MemoryStore }

func NewMemoryTx(store *MemoryStore) *MemoryTx { return &MemoryTx{store: store} }

var _ TxManager = (*MemoryTx)(nil)

func (tx *MemoryTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if isTx(ctx) {
		return fn(ctx)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()

	snapshot := tx.store.data.clone()
	defer func() {
		if r := recover(); r != nil {
			tx.store.data = snapshot
			panic(r)
		}
		if err != nil {
			tx.store.data = snapshot
		}
	}()

	err = fn(context.WithValue(ctx, txKey{}, true))
	if err == nil {
		// a transaction that outlived its deadline is not committed
		err = ctx.Err()
	}
	return err
}
