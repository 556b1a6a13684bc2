// Package customer holds the customer model, its account form rules and
// the admin mass actions that act on a selection of customers.
package customer

import (
	"context"
	"fmt"

	"github.com/deppfellow/go-commerce/internal/dataobject"
	"github.com/deppfellow/go-commerce/internal/errs"
	"github.com/spf13/cast"
)

// IDField is the primary key of customer_entity.
const IDField = "entity_id"

// Columns an admin mass action may change.
var MutableFields = []string{"group_id", "is_subscribed"}

// Customer is a customer_entity row.
type Customer struct {
	*dataobject.Object
}

// New wraps loaded data and snapshots it so later changes can be diffed.
func New(data map[string]any) *Customer {
	obj := dataobject.FromMap(data)
	obj.SetIDFieldName(IDField)
	obj.SnapshotOrigData()
	return &Customer{Object: obj}
}

func (c *Customer) CustomerID() int64 {
	return cast.ToInt64(c.ID())
}

func (c *Customer) Email() string {
	return cast.ToString(c.Get("email"))
}

func (c *Customer) GroupID() int64 {
	return cast.ToInt64(c.Get("group_id"))
}

func (c *Customer) SetGroupID(id int64) *Customer {
	c.Set("group_id", id)
	return c
}

func (c *Customer) IsSubscribed() bool {
	return cast.ToBool(c.Get("is_subscribed"))
}

func (c *Customer) SetIsSubscribed(v bool) *Customer {
	c.Set("is_subscribed", v)
	return c
}

// ChangedFields returns the mutable columns whose value differs from the
// loaded row, in MutableFields order.
func (c *Customer) ChangedFields() []string {
	var changed []string
	for _, f := range MutableFields {
		if c.Has(f) && c.DataHasChangedFor(f) {
			changed = append(changed, f)
		}
	}
	return changed
}

// Mutation changes one loaded customer.
type Mutation func(*Customer) error

// Action names a mass action.
type Action string

const (
	ActionDelete      Action = "delete"
	ActionSubscribe   Action = "subscribe"
	ActionUnsubscribe Action = "unsubscribe"
	ActionAssignGroup Action = "assign_group"
)

// Store persists customers. Update and Delete run over all ids in one
// transaction and fail if any id does not exist.
type Store interface {
	Update(ctx context.Context, ids []int64, mutate Mutation) error
	Delete(ctx context.Context, ids []int64) error
}

// ErrNoSelection is returned for an empty id list.
var ErrNoSelection = errs.NewException("Please select customer(s).")

// ErrDuplicateEmail is returned when another account of the same website
// already uses the email.
var ErrDuplicateEmail = errs.NewException("This customer email already exists")

// NotFoundError reports a selected id with no customer behind it.
func NotFoundError(id int64) error {
	return errs.NewException("Customer with ID %d does not exist.", id)
}

// MassAction applies action to ids and returns the success notice.
func MassAction(ctx context.Context, store Store, action Action, ids []int64, groupID int64) (string, error) {
	if len(ids) == 0 {
		return "", ErrNoSelection
	}

	var err error
	switch action {
	case ActionDelete:
		if err = store.Delete(ctx, ids); err == nil {
			return fmt.Sprintf("Total of %d record(s) were deleted.", len(ids)), nil
		}
	case ActionSubscribe, ActionUnsubscribe:
		subscribed := action == ActionSubscribe
		err = store.Update(ctx, ids, func(c *Customer) error {
			c.SetIsSubscribed(subscribed)
			return nil
		})
	case ActionAssignGroup:
		err = store.Update(ctx, ids, func(c *Customer) error {
			c.SetGroupID(groupID)
			return nil
		})
	default:
		return "", errs.NewException("Unknown mass action %q.", string(action))
	}
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("Total of %d record(s) were updated.", len(ids)), nil
}
