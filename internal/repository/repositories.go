package repository

import (
	"github.com/deppfellow/go-commerce/internal/server"
)

// Repositories is a container for all repository instances.
type Repositories struct {
	TaxRate   *TaxRateRepository
	Customer  *CustomerRepository
	Attribute *AttributeRepository
	Wishlist  *WishlistRepository
	Reports   *ReportsRepository
	Order     *OrderRepository
}

// NewRepositories constructs the repository container. Every repository
// uses the pool on s.DB.
func NewRepositories(s *server.Server) *Repositories {
	return &Repositories{
		TaxRate:   NewTaxRateRepository(s),
		Customer:  NewCustomerRepository(s),
		Attribute: NewAttributeRepository(s),
		Wishlist:  NewWishlistRepository(s),
		Reports:   NewReportsRepository(s),
		Order:     NewOrderRepository(s),
	}
}
