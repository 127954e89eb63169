package services

import (
	"fmt"

	"github.com/google/uuid"
)

// BillingProvider provisions a billing customer for a newly created user.
// Injected so the core can run against a stub instead of a payment API.
type BillingProvider interface {
	CreateCustomer(email string) (customerID string, err error)
}

// LocalBillingProvider issues opaque customer ids without calling out to a
// payment processor. Used in development and tests.
type LocalBillingProvider struct{}

func NewLocalBillingProvider() *LocalBillingProvider {
	return &LocalBillingProvider{}
}

func (p *LocalBillingProvider) CreateCustomer(email string) (string, error) {
	return fmt.Sprintf("cus_%s", uuid.NewString()), nil
}
