package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"medorder/internal/document"
	"medorder/internal/domain"
	"medorder/internal/repository"
)

// OrderService реализует чтение заказов, счетов и покупателей, а также
// административную отмену заказа
type OrderService struct {
	repos repository.Repositories
	log   *zap.Logger
}

func NewOrderService(repos repository.Repositories, log *zap.Logger) *OrderService {
	if log == nil {
		log = zap.NewNop()
	}
	return &OrderService{repos: repos, log: log}
}

// GetOrder возвращает заказ по id вместе с позициями и счётом
func (s *OrderService) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	if id <= 0 {
		return nil, validationf("invalid id")
	}
	return s.repos.Orders.GetByID(ctx, id)
}

func (s *OrderService) GetOrderByNumber(ctx context.Context, number string) (*domain.Order, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, validationf("order number is required")
	}
	return s.repos.Orders.GetByNumber(ctx, number)
}

// ListOrders returns orders newest first.
func (s *OrderService) ListOrders(ctx context.Context, offset, limit int) ([]domain.Order, error) {
	return s.repos.Orders.List(ctx, offset, limit)
}

func (s *OrderService) GetInvoice(ctx context.Context, id int64) (*domain.Invoice, error) {
	if id <= 0 {
		return nil, validationf("invalid id")
	}
	return s.repos.Invoices.GetByID(ctx, id)
}

func (s *OrderService) GetInvoiceByNumber(ctx context.Context, number string) (*domain.Invoice, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, validationf("invoice number is required")
	}
	return s.repos.Invoices.GetByNumber(ctx, number)
}

func (s *OrderService) GetInvoiceByOrder(ctx context.Context, orderID int64) (*domain.Invoice, error) {
	if orderID <= 0 {
		return nil, validationf("invalid id")
	}
	return s.repos.Invoices.GetByOrderID(ctx, orderID)
}

// InvoiceDocument reads back the rendered document of an invoice.
// ErrNotFound means the invoice has no document or the file is gone.
func (s *OrderService) InvoiceDocument(ctx context.Context, id int64) (*document.Snapshot, error) {
	inv, err := s.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv.DocumentRef == "" {
		return nil, fmt.Errorf("invoice %s document: %w", inv.InvoiceNumber, repository.ErrNotFound)
	}
	snap, err := document.Load(inv.DocumentRef)
	if errors.Is(err, fs.ErrNotExist) {
		s.log.Warn("invoice document missing",
			zap.String("invoice_number", inv.InvoiceNumber), zap.String("path", inv.DocumentRef))
		return nil, fmt.Errorf("invoice %s document: %w", inv.InvoiceNumber, repository.ErrNotFound)
	}
	if err != nil {
		return nil, classify(err)
	}
	return &snap, nil
}

// CreateCustomer регистрирует покупателя вручную; телефон должен быть уникальным
func (s *OrderService) CreateCustomer(ctx context.Context, name, phone, address string) (*domain.Customer, error) {
	c := &domain.Customer{
		Name:             strings.TrimSpace(name),
		Phone:            strings.TrimSpace(phone),
		Address:          strings.TrimSpace(address),
		TotalAmountSpent: decimal.Zero,
	}
	if c.Name == "" || c.Phone == "" {
		return nil, validationf("customer name and phone are required")
	}
	if err := s.repos.Customers.Create(ctx, c); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("phone %s is already registered: %w", c.Phone, err)
		}
		return nil, classify(err)
	}
	return c, nil
}

func (s *OrderService) GetCustomer(ctx context.Context, id int64) (*domain.Customer, error) {
	if id <= 0 {
		return nil, validationf("invalid id")
	}
	return s.repos.Customers.GetByID(ctx, id)
}

func (s *OrderService) GetCustomerByPhone(ctx context.Context, phone string) (*domain.Customer, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, validationf("phone is required")
	}
	return s.repos.Customers.GetByPhone(ctx, phone)
}

func (s *OrderService) ListCustomers(ctx context.Context, offset, limit int) ([]domain.Customer, error) {
	return s.repos.Customers.List(ctx, offset, limit)
}

// CancelOrder если Confirmed, возвращаем товары на склад, откатываем
// счётчики покупателя и ставим Cancelled. Счёт остаётся выставленным.
func (s *OrderService) CancelOrder(ctx context.Context, id int64) (*domain.Order, error) {
	if id <= 0 {
		return nil, validationf("invalid id")
	}
	var updated *domain.Order
	err := s.repos.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		o, err := s.repos.Orders.LockByID(ctx, id)
		if err != nil {
			return err
		}
		if o.Status != domain.OrderStatusConfirmed {
			return ErrInvalidState
		}
		// customer before medicines, the same order Fulfill takes them in
		owner, err := s.repos.Customers.GetByID(ctx, o.CustomerID)
		if err != nil {
			return err
		}
		if _, err := s.repos.Customers.LockByPhone(ctx, owner.Phone); err != nil {
			return err
		}
		// return stock
		for _, l := range o.Lines {
			if _, err := s.repos.Medicines.LockByID(ctx, l.MedicineID); err != nil {
				return err
			}
			if err := s.repos.Medicines.AdjustStock(ctx, l.MedicineID, l.Quantity); err != nil {
				return err
			}
		}

		if err := s.repos.Customers.AddTotals(ctx, o.CustomerID, -1, o.FinalAmount.Neg()); err != nil {
			return err
		}
		c, err := s.repos.Customers.GetByID(ctx, o.CustomerID)
		if err != nil {
			return err
		}

		o.Status = domain.OrderStatusCancelled
		if err := s.repos.Orders.Update(ctx, o); err != nil {
			return err
		}
		o.Customer = c
		updated = o
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		return nil, classify(err)
	}
	s.log.Info("order cancelled", zap.String("order_number", updated.OrderNumber))
	return updated, nil
}
