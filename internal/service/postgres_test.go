package service

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"medorder/internal/normalize"
	"medorder/internal/repository"
)

// newPostgresHarness runs the service against DATABASE_URL on empty tables.
func newPostgresHarness(t *testing.T) *harness {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}
	db, err := repository.OpenPostgres(dsn, 20, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	require.NoError(t, repository.Migrate(db))
	require.NoError(t, db.Exec("TRUNCATE invoices, order_lines, orders, customers, medicines RESTART IDENTITY CASCADE").Error)
	return newHarnessWith(t, repository.NewGormRepositories(db))
}

func TestPostgres_ConcurrentOrdersFromNewPhone(t *testing.T) {
	ctx := context.Background()
	h := newPostgresHarness(t)
	med := h.addMedicine(t, "Dolo 650", "", "30", 10)

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.orch.CreateManualOrder(ctx, ManualOrder{
				CustomerName:  "Walk-in",
				CustomerPhone: "+910000000009",
				Items:         []ManualItem{{MedicineID: med.ID, Quantity: 3}},
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, ErrStockConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, successes)
	assert.Equal(t, workers-3, conflicts)
	assert.Equal(t, int64(1), h.stock(t, med.ID))
	assert.Equal(t, 3, h.orderCount(t))

	customers, err := h.repos.Customers.List(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, customers, 1)
	assert.Equal(t, int64(3), customers[0].TotalOrders)
	assert.Equal(t, "270.00", customers[0].TotalAmountSpent.StringFixed(2))
}

func TestPostgres_ConcurrentReplay(t *testing.T) {
	ctx := context.Background()
	h := newPostgresHarness(t)
	med := h.addMedicine(t, "Dolo 650", "", "30", 10)
	in := normalize.VoiceOrder{
		CustomerPhone:  "9876543210",
		Medicines:      []map[string]any{{"name": "dolo", "quantity": "2"}},
		IdempotencyKey: "call-7",
	}

	const callers = 4
	results := make([]*Result, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := h.orch.CreateVoiceOrder(ctx, in)
			if err != nil {
				t.Errorf("caller %d: %v", i, err)
				return
			}
			results[i] = res
		}(i)
	}
	wg.Wait()

	created := 0
	for _, res := range results {
		require.NotNil(t, res)
		if !res.Replayed {
			created++
		}
		assert.Equal(t, results[0].OrderNumber, res.OrderNumber)
		assert.Equal(t, "60.00", res.FinalAmount.String())
	}
	assert.Equal(t, 1, created)
	assert.Equal(t, int64(8), h.stock(t, med.ID))
	assert.Equal(t, 1, h.orderCount(t))
}

func TestPostgres_CancelRestoresOnce(t *testing.T) {
	ctx := context.Background()
	h := newPostgresHarness(t)
	med := h.addMedicine(t, "Dolo 650", "", "30", 10)
	res, err := h.orch.CreateManualOrder(ctx, ManualOrder{
		CustomerName: "A", CustomerPhone: "+911111111111",
		Items: []ManualItem{{MedicineID: med.ID, Quantity: 4}},
	})
	require.NoError(t, err)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		cancelled int
	)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.orders.CancelOrder(ctx, res.OrderID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				cancelled++
			case errors.Is(err, ErrInvalidState):
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, cancelled)
	assert.Equal(t, int64(10), h.stock(t, med.ID))
	c, err := h.orders.GetCustomerByPhone(ctx, "+911111111111")
	require.NoError(t, err)
	assert.Zero(t, c.TotalOrders)
	assert.True(t, c.TotalAmountSpent.IsZero())
}
