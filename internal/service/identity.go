package service

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"medorder/internal/domain"
	"medorder/internal/repository"
)

// IdentityResolver находит покупателя по телефону или создаёт нового
type IdentityResolver struct {
	customers repository.CustomerRepository
}

func NewIdentityResolver(customers repository.CustomerRepository) *IdentityResolver {
	return &IdentityResolver{customers: customers}
}

// Resolve returns the customer owning phone. An existing customer gets a
// non-empty differing name and a non-empty address written over the stored
// values; blanks never clear anything. Phone is matched exactly.
//
// Inside a transaction the customer row stays locked until it ends, so
// concurrent orders for one phone queue up instead of racing on the
// insert or on the counters.
func (r *IdentityResolver) Resolve(ctx context.Context, name, phone, address string) (*domain.Customer, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, validationf("customer phone is required")
	}
	name = strings.TrimSpace(name)
	address = strings.TrimSpace(address)

	c, err := r.customers.LockByPhone(ctx, phone)
	if errors.Is(err, repository.ErrNotFound) {
		c = &domain.Customer{
			Name:             name,
			Phone:            phone,
			Address:          address,
			TotalAmountSpent: decimal.Zero,
		}
		err = r.customers.Create(ctx, c)
		if err == nil {
			return c, nil
		}
		if errors.Is(err, repository.ErrDuplicate) {
			// inserted concurrently, now committed
			c, err = r.customers.LockByPhone(ctx, phone)
		}
	}
	if err != nil {
		return nil, err
	}
	return r.refresh(ctx, c, name, address)
}

func (r *IdentityResolver) refresh(ctx context.Context, c *domain.Customer, name, address string) (*domain.Customer, error) {
	changed := false
	if name != "" && name != c.Name {
		c.Name = name
		changed = true
	}
	if address != "" && address != c.Address {
		c.Address = address
		changed = true
	}
	if !changed {
		return c, nil
	}
	if err := r.customers.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}
