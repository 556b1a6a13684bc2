package handler

import (
	"github.com/deppfellow/go-commerce/internal/customer"
	"github.com/deppfellow/go-commerce/internal/lib/flash"
	"github.com/deppfellow/go-commerce/internal/middleware"
	"github.com/deppfellow/go-commerce/internal/server"
	"github.com/deppfellow/go-commerce/internal/service"
	"github.com/deppfellow/go-commerce/internal/validation"
	"github.com/labstack/echo/v4"
)

// MassActionRequest is the customer grid selection. An empty selection
// is reported as a flash message, not rejected here.
type MassActionRequest struct {
	CustomerIDs []int64 `json:"customer_ids" validate:"dive,gt=0"`
}

func (r *MassActionRequest) Validate() error {
	return validation.Struct(r)
}

type MassAssignGroupRequest struct {
	CustomerIDs []int64 `json:"customer_ids" validate:"dive,gt=0"`
	GroupID     int64   `json:"group_id" validate:"required,gt=0"`
}

func (r *MassAssignGroupRequest) Validate() error {
	return validation.Struct(r)
}

// SaveCustomerRequest is the customer edit form. Field rules live in the
// customer model so failures come back as flash messages.
type SaveCustomerRequest struct {
	CustomerID   int64          `json:"customer_id" validate:"gte=0"`
	Account      map[string]any `json:"account" validate:"required"`
	Subscription bool           `json:"subscription"`
	Back         bool           `json:"back"`
}

func (r *SaveCustomerRequest) Validate() error {
	return validation.Struct(r)
}

type CustomerRequest struct {
	ID int64 `param:"customer" json:"-" validate:"required,gt=0"`
}

func (r *CustomerRequest) Validate() error {
	return validation.Struct(r)
}

// ValidateCustomerRequest checks an account form; ID is 0 for a new
// customer.
type ValidateCustomerRequest struct {
	ID      int64          `json:"customer_id" validate:"gte=0"`
	Account map[string]any `json:"account" validate:"required"`
}

func (r *ValidateCustomerRequest) Validate() error {
	return validation.Struct(r)
}

type CustomerHandler struct {
	Handler
	customers *service.CustomerService
}

func NewCustomerHandler(s *server.Server, customers *service.CustomerService) *CustomerHandler {
	return &CustomerHandler{Handler: NewHandler(s), customers: customers}
}

// MassAction returns the endpoint running action over the selection.
func (h *CustomerHandler) MassAction(action customer.Action) HandlerFunc[*MassActionRequest, *flash.Redirect] {
	return func(c echo.Context, req *MassActionRequest) (*flash.Redirect, error) {
		return h.customers.MassAction(c.Request().Context(), middleware.GetSessionID(c), action, req.CustomerIDs, 0)
	}
}

func (h *CustomerHandler) MassAssignGroup(c echo.Context, req *MassAssignGroupRequest) (*flash.Redirect, error) {
	return h.customers.MassAction(c.Request().Context(), middleware.GetSessionID(c), customer.ActionAssignGroup, req.CustomerIDs, req.GroupID)
}

func (h *CustomerHandler) SaveCustomer(c echo.Context, req *SaveCustomerRequest) (*flash.Redirect, error) {
	return h.customers.SaveCustomer(c.Request().Context(), middleware.GetSessionID(c), service.SaveCustomerInput{
		CustomerID:   req.CustomerID,
		Account:      req.Account,
		Subscription: req.Subscription,
		Back:         req.Back,
		Post: map[string]any{
			"customer_id":  req.CustomerID,
			"account":      withoutPasswords(req.Account),
			"subscription": req.Subscription,
		},
	})
}

func (h *CustomerHandler) DeleteCustomer(c echo.Context, req *CustomerRequest) (*flash.Redirect, error) {
	return h.customers.DeleteCustomer(c.Request().Context(), middleware.GetSessionID(c), req.ID)
}

func (h *CustomerHandler) ValidateCustomer(c echo.Context, req *ValidateCustomerRequest) (*service.CustomerValidation, error) {
	return h.customers.ValidateCustomer(c.Request().Context(), middleware.GetSessionID(c), req.ID, req.Account)
}

// withoutPasswords drops password fields so they are never kept as form
// data.
func withoutPasswords(account map[string]any) map[string]any {
	out := make(map[string]any, len(account))
	for k, v := range account {
		switch k {
		case "password", "new_password", "current_password":
			continue
		}
		out[k] = v
	}
	return out
}
