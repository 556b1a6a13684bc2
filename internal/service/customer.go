package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/deppfellow/go-commerce/internal/customer"
	"github.com/deppfellow/go-commerce/internal/lib/flash"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// CustomersPath is the admin customer grid.
const CustomersPath = "/admin/customers"

// CustomerEditPath is the edit page of the customer with id, or the new
// customer page for id 0.
func CustomerEditPath(id int64) string {
	if id == 0 {
		return CustomersPath + "/new"
	}
	return fmt.Sprintf("%s/%d/edit", CustomersPath, id)
}

// CustomerStore persists customers one at a time and in bulk.
type CustomerStore interface {
	customer.Store
	GetCustomer(ctx context.Context, id int64) (*customer.Customer, error)
	GetCustomerByEmail(ctx context.Context, email string, websiteID int64) (*customer.Customer, error)
	SaveCustomer(ctx context.Context, c *customer.Customer) error
}

type CustomerService struct {
	customers CustomerStore
	flash     *flash.Store
	logger    *zerolog.Logger
}

func NewCustomerService(customers CustomerStore, store *flash.Store, logger *zerolog.Logger) *CustomerService {
	return &CustomerService{customers: customers, flash: store, logger: logger}
}

// MassAction runs action over ids and flashes the outcome. Every outcome,
// failures included, sends the admin back to the customer grid.
func (s *CustomerService) MassAction(ctx context.Context, session string, action customer.Action, ids []int64, groupID int64) (*flash.Redirect, error) {
	sess := s.flash.Session(session)

	notice, err := customer.MassAction(ctx, s.customers, action, ids, groupID)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("action", string(action)).
			Int("selected", len(ids)).
			Msg("customer mass action failed")

		if err := sess.AddError(ctx, userMessage(err, "An error occurred while updating the customers.")); err != nil {
			return nil, err
		}
		return sess.Redirect(CustomersPath), nil
	}

	if err := sess.AddSuccess(ctx, notice); err != nil {
		return nil, err
	}
	return sess.Redirect(CustomersPath), nil
}

// SaveCustomerInput is the customer edit form as posted.
type SaveCustomerInput struct {
	CustomerID int64

	// Account holds the account fields plus "password" for new customers
	// and "new_password" for existing ones.
	Account map[string]any

	// Subscription is whether the newsletter box was ticked.
	Subscription bool

	// Back keeps the admin on the edit page after a successful save.
	Back bool

	// Post is the whole form, kept as form data when the save fails.
	Post map[string]any
}

// loadCustomer returns the customer with id, or a new customer when id is
// 0 or matches no row.
func (s *CustomerService) loadCustomer(ctx context.Context, id int64) (*customer.Customer, error) {
	if id == 0 {
		return customer.New(nil), nil
	}
	c, err := s.customers.GetCustomer(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return customer.New(nil), nil
	}
	return c, err
}

// emailTaken reports whether an account other than c uses c's email on
// c's website.
func (s *CustomerService) emailTaken(ctx context.Context, c *customer.Customer) (bool, error) {
	other, err := s.customers.GetCustomerByEmail(ctx, c.Email(), c.WebsiteID())
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return other.CustomerID() != c.CustomerID(), nil
}

// SaveCustomer creates or updates a customer from the edit form.
//
// Form errors and failed saves flash their messages, keep the post as
// form data and send the admin back to the edit page. New customers need
// a password; "auto" generates one.
func (s *CustomerService) SaveCustomer(ctx context.Context, session string, in SaveCustomerInput) (*flash.Redirect, error) {
	sess := s.flash.Session(session)

	c, err := s.loadCustomer(ctx, in.CustomerID)
	if err != nil {
		return nil, err
	}

	backToForm := func() (*flash.Redirect, error) {
		if err := sess.SetFormData(ctx, in.Post); err != nil {
			return nil, err
		}
		return sess.Redirect(CustomerEditPath(c.CustomerID())), nil
	}

	c.ImportAccount(in.Account)
	if problems := c.ValidateAccount(); len(problems) > 0 {
		for _, p := range problems {
			if err := sess.AddError(ctx, p); err != nil {
				return nil, err
			}
		}
		return backToForm()
	}
	c.SetIsSubscribed(in.Subscription)

	err = s.prepareAndSave(ctx, c, in.Account)
	if err != nil {
		s.logger.Warn().Err(err).Int64("customer_id", c.CustomerID()).Msg("customer not saved")

		if err := sess.AddError(ctx, userMessage(err, "An error occurred while saving the customer.")); err != nil {
			return nil, err
		}
		return backToForm()
	}

	if err := sess.AddSuccess(ctx, "The customer has been saved."); err != nil {
		return nil, err
	}
	if in.Back {
		return sess.Redirect(CustomerEditPath(c.CustomerID())), nil
	}
	return sess.Redirect(CustomersPath), nil
}

func (s *CustomerService) prepareAndSave(ctx context.Context, c *customer.Customer, account map[string]any) error {
	taken, err := s.emailTaken(ctx, c)
	if err != nil {
		return err
	}
	if taken {
		return customer.ErrDuplicateEmail
	}

	password, key := "", "new_password"
	if c.IsNew() {
		key = "password"
	}
	if v, ok := account[key].(string); ok {
		password = v
	}
	if c.IsNew() || password != "" {
		if _, err := c.SetPassword(password); err != nil {
			return err
		}
	}

	return s.customers.SaveCustomer(ctx, c)
}

// DeleteCustomer removes the customer with id. An unknown id is ignored;
// either way the admin goes back to the customer grid.
func (s *CustomerService) DeleteCustomer(ctx context.Context, session string, id int64) (*flash.Redirect, error) {
	sess := s.flash.Session(session)

	if _, err := s.customers.GetCustomer(ctx, id); err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return sess.Redirect(CustomersPath), nil
	}

	if err := s.customers.Delete(ctx, []int64{id}); err != nil {
		s.logger.Error().Err(err).Int64("customer_id", id).Msg("customer not deleted")

		if err := sess.AddError(ctx, userMessage(err, "An error occurred while deleting the customer.")); err != nil {
			return nil, err
		}
		return sess.Redirect(CustomersPath), nil
	}

	if err := sess.AddSuccess(ctx, "The customer has been deleted."); err != nil {
		return nil, err
	}
	return sess.Redirect(CustomersPath), nil
}

// CustomerValidation is the answer to an edit form check.
type CustomerValidation struct {
	Error    bool            `json:"error"`
	Messages []flash.Message `json:"messages"`
}

// ValidateCustomer checks the account form of the customer with id (0
// for a new one) without saving it. Problems are flashed and echoed back.
func (s *CustomerService) ValidateCustomer(ctx context.Context, session string, id int64, account map[string]any) (*CustomerValidation, error) {
	sess := s.flash.Session(session)

	c, err := s.loadCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	c.ImportAccount(account)

	problems := c.ValidateAccount()
	if len(problems) == 0 {
		taken, err := s.emailTaken(ctx, c)
		if err != nil {
			return nil, err
		}
		if taken {
			problems = append(problems, "Customer with the same email already exists.")
		}
	}

	for _, p := range problems {
		if err := sess.AddError(ctx, p); err != nil {
			return nil, err
		}
	}

	result := &CustomerValidation{Error: len(problems) > 0, Messages: []flash.Message{}}
	if result.Error {
		result.Messages = sess.Added()
	}
	return result, nil
}
