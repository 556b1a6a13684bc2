package service

import (
	"github.com/deppfellow/go-commerce/internal/lib/job"
	"github.com/deppfellow/go-commerce/internal/repository"
	"github.com/deppfellow/go-commerce/internal/server"
)

type Services struct {
	Auth      *AuthService
	Job       *job.JobService
	Tax       *TaxService
	Customer  *CustomerService
	Attribute *AttributeService
	Reports   *ReportsService
	Wishlist  *WishlistService
	Messages  *MessageService
	Order     *OrderService
}

// NewService builds every service on top of repos and registers the
// repositories the background jobs need.
func NewService(s *server.Server, repos *repository.Repositories) (*Services, error) {
	authService := NewAuthService(s)

	s.Job.InitHandlers(repos.Reports)

	return &Services{
		Job:       s.Job,
		Auth:      authService,
		Tax:       NewTaxService(repos.TaxRate, s.Flash, s.Logger),
		Customer:  NewCustomerService(repos.Customer, s.Flash, s.Logger),
		Attribute: NewAttributeService(repos.Attribute, s.Flash, s.Logger),
		Reports:   NewReportsService(s.Job.Client, repos.Reports, s.Flash, s.Logger),
		Wishlist:  NewWishlistService(repos.Wishlist, s.Logger),
		Messages:  NewMessageService(s.Flash),
		Order:     NewOrderService(repos.Order, repos.Customer, s.Quotes, s.Flash, s.Logger),
	}, nil
}
