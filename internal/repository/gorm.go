package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	pkgerrors "github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"medorder/internal/catalog"
	"medorder/internal/domain"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// OpenPostgres connects to dsn and routes GORM's own logging through zl.
func OpenPostgres(dsn string, maxConns int, zl *zap.Logger) (*gorm.DB, error) {
	gormLogger := logger.New(
		zap.NewStdLog(zl.Named("gorm")),
		logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, pkgerrors.Wrap(err, "open postgres")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, pkgerrors.Wrap(err, "postgres pool")
	}
	if maxConns > 0 {
		sqlDB.SetMaxOpenConns(maxConns)
		sqlDB.SetMaxIdleConns(maxConns)
	}
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

// Migrate creates or updates the schema.
func Migrate(db *gorm.DB) error {
	return pkgerrors.Wrap(db.AutoMigrate(domain.Tables...), "auto-migrate")
}

// NewGormRepositories wires every repository onto db.
func NewGormRepositories(db *gorm.DB) Repositories {
	store := &GormStore{db: db}
	return Repositories{
		Medicines: &GormMedicines{store},
		Customers: &GormCustomers{store},
		Orders:    &GormOrders{store},
		Invoices:  &GormInvoices{store},
		Tx:        &GormTx{store},
	}
}

type ctxTxKey struct{}

// GormStore hands out the transaction bound to a context, or the pool.
type GormStore struct {
	db *gorm.DB
}

func (s *GormStore) conn(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(ctxTxKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return s.db.WithContext(ctx)
}

func mapErr(err error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return ErrReferenced
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return ErrDuplicate
		case pgForeignKeyViolation:
			return ErrReferenced
		}
	}
	return pkgerrors.Wrap(err, op)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern builds an ILIKE pattern matching s anywhere.
func likePattern(s string) string {
	return "%" + likeEscaper.Replace(strings.TrimSpace(s)) + "%"
}

func paged(db *gorm.DB, offset, limit int) *gorm.DB {
	if offset > 0 {
		db = db.Offset(offset)
	}
	if limit > 0 {
		db = db.Limit(limit)
	}
	return db
}

// GormTx runs read-committed transactions; row locks taken inside protect
// stock from concurrent decrements.
type GormTx struct{ *GormStore }

func (t *GormTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(ctxTxKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, ctxTxKey{}, tx))
	}, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
}

type GormMedicines struct{ *GormStore }

func (r *GormMedicines) Create(ctx context.Context, m *domain.Medicine) error {
	return mapErr(r.conn(ctx).Create(m).Error, "create medicine")
}

func (r *GormMedicines) GetByID(ctx context.Context, id int64) (*domain.Medicine, error) {
	var m domain.Medicine
	if err := r.conn(ctx).First(&m, id).Error; err != nil {
		return nil, mapErr(err, "get medicine")
	}
	return &m, nil
}

func (r *GormMedicines) LockByID(ctx context.Context, id int64) (*domain.Medicine, error) {
	var m domain.Medicine
	err := r.conn(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&m, id).Error
	if err != nil {
		return nil, mapErr(err, "lock medicine")
	}
	return &m, nil
}

func (r *GormMedicines) Update(ctx context.Context, m *domain.Medicine) error {
	res := r.conn(ctx).Model(m).Select("*").Omit("id", "created_at").Updates(m)
	if res.Error != nil {
		return mapErr(res.Error, "update medicine")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormMedicines) Delete(ctx context.Context, id int64) error {
	res := r.conn(ctx).Delete(&domain.Medicine{}, id)
	if res.Error != nil {
		return mapErr(res.Error, "delete medicine")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormMedicines) List(ctx context.Context, f MedicineFilter) ([]domain.Medicine, error) {
	q := r.conn(ctx).Model(&domain.Medicine{})
	if strings.TrimSpace(f.NameSubstring) != "" {
		q = q.Where("name ILIKE ?", likePattern(f.NameSubstring))
	}
	if f.MinPrice != nil {
		q = q.Where("unit_price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("unit_price <= ?", *f.MaxPrice)
	}
	if f.LowStockOnly {
		q = q.Where("stock_quantity <= reorder_level")
	}
	out := make([]domain.Medicine, 0)
	if err := paged(q.Order("id"), f.Offset, f.Limit).Find(&out).Error; err != nil {
		return nil, mapErr(err, "list medicines")
	}
	return out, nil
}

// Search narrows candidates in SQL and ranks them with catalog.Rank so
// ordering matches the in-memory store.
func (r *GormMedicines) Search(ctx context.Context, query string, limit int) ([]domain.Medicine, error) {
	if strings.TrimSpace(query) == "" {
		return []domain.Medicine{}, nil
	}
	p := likePattern(query)
	var candidates []domain.Medicine
	err := r.conn(ctx).
		Where("name ILIKE ? OR localized_name ILIKE ? OR generic_name ILIKE ?", p, p, p).
		Order("id").
		Find(&candidates).Error
	if err != nil {
		return nil, mapErr(err, "search medicines")
	}
	ranked := catalog.Rank(candidates, query)
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// AdjustStock applies delta in a single conditional UPDATE so stock never
// goes negative even without a prior row lock.
func (r *GormMedicines) AdjustStock(ctx context.Context, id int64, delta int64) error {
	db := r.conn(ctx)
	res := db.Model(&domain.Medicine{}).
		Where("id = ? AND stock_quantity + ? >= 0", id, delta).
		Updates(map[string]any{
			"stock_quantity": gorm.Expr("stock_quantity + ?", delta),
			"updated_at":     time.Now().UTC(),
		})
	if res.Error != nil {
		return mapErr(res.Error, "adjust stock")
	}
	if res.RowsAffected == 1 {
		return nil
	}
	var n int64
	if err := db.Model(&domain.Medicine{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return mapErr(err, "adjust stock")
	}
	if n == 0 {
		return ErrNotFound
	}
	return ErrInsufficientStock
}

type GormCustomers struct{ *GormStore }

// Create inserts c. A taken phone yields ErrDuplicate without aborting the
// surrounding transaction; a concurrent insert of the same phone is waited
// for first.
func (r *GormCustomers) Create(ctx context.Context, c *domain.Customer) error {
	res := r.conn(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "phone"}}, DoNothing: true}).
		Create(c)
	if res.Error != nil {
		return mapErr(res.Error, "create customer")
	}
	if res.RowsAffected == 0 {
		return ErrDuplicate
	}
	return nil
}

func (r *GormCustomers) GetByID(ctx context.Context, id int64) (*domain.Customer, error) {
	var c domain.Customer
	if err := r.conn(ctx).First(&c, id).Error; err != nil {
		return nil, mapErr(err, "get customer")
	}
	return &c, nil
}

func (r *GormCustomers) GetByPhone(ctx context.Context, phone string) (*domain.Customer, error) {
	var c domain.Customer
	if err := r.conn(ctx).Where("phone = ?", phone).First(&c).Error; err != nil {
		return nil, mapErr(err, "get customer by phone")
	}
	return &c, nil
}

func (r *GormCustomers) LockByPhone(ctx context.Context, phone string) (*domain.Customer, error) {
	var c domain.Customer
	err := r.conn(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("phone = ?", phone).
		First(&c).Error
	if err != nil {
		return nil, mapErr(err, "lock customer")
	}
	return &c, nil
}

func (r *GormCustomers) AddTotals(ctx context.Context, id int64, orders int64, amount decimal.Decimal) error {
	res := r.conn(ctx).Model(&domain.Customer{}).Where("id = ?", id).Updates(map[string]any{
		"total_orders":       gorm.Expr("GREATEST(total_orders + ?, 0)", orders),
		"total_amount_spent": gorm.Expr("GREATEST(total_amount_spent + ?, 0)", amount),
		"updated_at":         time.Now().UTC(),
	})
	if res.Error != nil {
		return mapErr(res.Error, "add customer totals")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormCustomers) Update(ctx context.Context, c *domain.Customer) error {
	res := r.conn(ctx).Model(c).Select("*").Omit("id", "created_at").Updates(c)
	if res.Error != nil {
		return mapErr(res.Error, "update customer")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormCustomers) List(ctx context.Context, offset, limit int) ([]domain.Customer, error) {
	out := make([]domain.Customer, 0)
	if err := paged(r.conn(ctx).Order("id"), offset, limit).Find(&out).Error; err != nil {
		return nil, mapErr(err, "list customers")
	}
	return out, nil
}

type GormOrders struct{ *GormStore }

func (r *GormOrders) Create(ctx context.Context, o *domain.Order) error {
	return mapErr(r.conn(ctx).Omit(clause.Associations).Create(o).Error, "create order")
}

func (r *GormOrders) Update(ctx context.Context, o *domain.Order) error {
	res := r.conn(ctx).Model(o).Select("*").Omit("id", "created_at", clause.Associations).Updates(o)
	if res.Error != nil {
		return mapErr(res.Error, "update order")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormOrders) AddLine(ctx context.Context, l *domain.OrderLine) error {
	return mapErr(r.conn(ctx).Omit(clause.Associations).Create(l).Error, "add order line")
}

func (r *GormOrders) full(ctx context.Context) *gorm.DB {
	return r.conn(ctx).
		Preload("Customer").
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Invoice")
}

func (r *GormOrders) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	var o domain.Order
	if err := r.full(ctx).First(&o, id).Error; err != nil {
		return nil, mapErr(err, "get order")
	}
	return &o, nil
}

// LockByID locks the order row, then loads it with its associations.
func (r *GormOrders) LockByID(ctx context.Context, id int64) (*domain.Order, error) {
	var head domain.Order
	err := r.conn(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		First(&head, id).Error
	if err != nil {
		return nil, mapErr(err, "lock order")
	}
	return r.GetByID(ctx, id)
}

func (r *GormOrders) GetByNumber(ctx context.Context, number string) (*domain.Order, error) {
	var o domain.Order
	if err := r.full(ctx).Where("order_number = ?", number).First(&o).Error; err != nil {
		return nil, mapErr(err, "get order by number")
	}
	return &o, nil
}

func (r *GormOrders) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Order, error) {
	var o domain.Order
	if err := r.full(ctx).Where("idempotency_key = ?", key).First(&o).Error; err != nil {
		return nil, mapErr(err, "get order by idempotency key")
	}
	return &o, nil
}

func (r *GormOrders) List(ctx context.Context, offset, limit int) ([]domain.Order, error) {
	out := make([]domain.Order, 0)
	q := r.conn(ctx).Preload("Customer").Order("id DESC")
	if err := paged(q, offset, limit).Find(&out).Error; err != nil {
		return nil, mapErr(err, "list orders")
	}
	return out, nil
}

type GormInvoices struct{ *GormStore }

func (r *GormInvoices) Create(ctx context.Context, inv *domain.Invoice) error {
	if inv.InvoiceDate.IsZero() {
		inv.InvoiceDate = time.Now().UTC()
	}
	return mapErr(r.conn(ctx).Create(inv).Error, "create invoice")
}

func (r *GormInvoices) Update(ctx context.Context, inv *domain.Invoice) error {
	res := r.conn(ctx).Model(inv).Select("*").Omit("id", "created_at").Updates(inv)
	if res.Error != nil {
		return mapErr(res.Error, "update invoice")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormInvoices) get(ctx context.Context, where string, arg any) (*domain.Invoice, error) {
	var inv domain.Invoice
	if err := r.conn(ctx).Where(where, arg).First(&inv).Error; err != nil {
		return nil, mapErr(err, "get invoice")
	}
	return &inv, nil
}

func (r *GormInvoices) GetByID(ctx context.Context, id int64) (*domain.Invoice, error) {
	return r.get(ctx, "id = ?", id)
}

func (r *GormInvoices) GetByNumber(ctx context.Context, number string) (*domain.Invoice, error) {
	return r.get(ctx, "invoice_number = ?", number)
}

func (r *GormInvoices) GetByOrderID(ctx context.Context, orderID int64) (*domain.Invoice, error) {
	return r.get(ctx, "order_id = ?", orderID)
}

var (
	_ MedicineRepository = (*GormMedicines)(nil)
	_ CustomerRepository = (*GormCustomers)(nil)
	_ OrderRepository    = (*GormOrders)(nil)
	_ InvoiceRepository  = (*GormInvoices)(nil)
	_ TxManager          = (*GormTx)(nil)
)
