// Package handler is the HTTP layer between the router and the services.
//
// It binds requests, validates them through the validation package and
// calls the service layer. Admin actions answer with the flash redirect
// the service produced.
package handler

import (
	"github.com/deppfellow/go-commerce/internal/server"
	"github.com/deppfellow/go-commerce/internal/service"
)

// Handlers groups every HTTP handler.
type Handlers struct {
	Health    *HealthHandler
	OpenAPI   *OpenAPIHandler
	Tax       *TaxHandler
	Customer  *CustomerHandler
	Attribute *AttributeHandler
	Reports   *ReportsHandler
	Messages  *MessagesHandler
	Wishlist  *WishlistHandler
	Order     *OrderCreateHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Health:    NewHealthHandler(s),
		OpenAPI:   NewOpenAPIHandler(s),
		Tax:       NewTaxHandler(s, services.Tax),
		Customer:  NewCustomerHandler(s, services.Customer),
		Attribute: NewAttributeHandler(s, services.Attribute),
		Reports:   NewReportsHandler(s, services.Reports),
		Messages:  NewMessagesHandler(s, services.Messages),
		Wishlist:  NewWishlistHandler(s, services.Wishlist),
		Order:     NewOrderCreateHandler(s, services.Order),
	}
}
