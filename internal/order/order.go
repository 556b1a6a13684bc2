// Package order models admin order creation: the quote an admin builds
// in a session, the checks it must pass and the orders it turns into.
package order

import (
	"regexp"

	"github.com/deppfellow/go-commerce/internal/dataobject"
	"github.com/spf13/cast"
)

// IDField is the primary key of sales_order.
const IDField = "entity_id"

// Order states.
const (
	StateNew           = "new"
	StateProcessing    = "processing"
	StateHolded        = "holded"
	StatePaymentReview = "payment_review"
	StateCanceled      = "canceled"
)

// Order is a sales_order row with its items.
type Order struct {
	*dataobject.Object

	Items []*OrderItem
}

// OrderItem is a sales_order_item row.
type OrderItem struct {
	*dataobject.Object
}

// New wraps order data.
func New(data map[string]any) *Order {
	obj := dataobject.FromMap(data)
	obj.SetIDFieldName(IDField)
	return &Order{Object: obj}
}

// NewItem wraps order item data.
func NewItem(data map[string]any) *OrderItem {
	obj := dataobject.FromMap(data)
	obj.SetIDFieldName("item_id")
	return &OrderItem{Object: obj}
}

func (o *Order) OrderID() int64 {
	return cast.ToInt64(o.ID())
}

func (o *Order) IncrementID() string {
	return cast.ToString(o.Get("increment_id"))
}

func (o *Order) State() string {
	return cast.ToString(o.Get("state"))
}

func (o *Order) CustomerID() int64 {
	return cast.ToInt64(o.Get("customer_id"))
}

// CanReorder reports whether the order may seed a new one: it must belong
// to a customer and be neither on hold nor under payment review.
func (o *Order) CanReorder() bool {
	switch o.State() {
	case StateHolded, StatePaymentReview:
		return false
	}
	return o.CustomerID() != 0
}

func (i *OrderItem) ProductID() int64 {
	return cast.ToInt64(i.Get("product_id"))
}

func (i *OrderItem) QtyOrdered() float64 {
	return cast.ToFloat64(i.Get("qty_ordered"))
}

// BuyRequest returns the request the item was ordered with.
func (i *OrderItem) BuyRequest() map[string]any {
	if m, ok := i.Get("buy_request").(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// HasTags reports whether s contains markup.
func HasTags(s string) bool {
	return tagPattern.MatchString(s)
}
