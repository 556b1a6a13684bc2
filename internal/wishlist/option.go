package wishlist

import (
	"github.com/deppfellow/go-commerce/internal/dataobject"
	"github.com/spf13/cast"
)

// OptionIDField is the primary key of wishlist_item_option.
const OptionIDField = "option_id"

// Option is a wishlist_item_option row: one code/value pair of an item's
// configuration.
type Option struct {
	*dataobject.Object

	item    *Item
	product *Product
}

// NewOption wraps option data.
func NewOption(data map[string]any) *Option {
	obj := dataobject.FromMap(data)
	obj.SetIDFieldName(OptionIDField)
	return &Option{Object: obj}
}

func (o *Option) OptionID() int64 {
	return cast.ToInt64(o.ID())
}

func (o *Option) Code() string {
	return cast.ToString(o.Get("code"))
}

// Value returns the raw value, nil when unset.
func (o *Option) Value() any {
	return o.Get("value")
}

func (o *Option) SetValue(v any) *Option {
	o.Set("value", v)
	return o
}

func (o *Option) ProductID() int64 {
	return cast.ToInt64(o.Get("product_id"))
}

// Item returns the item the option belongs to.
func (o *Option) Item() *Item {
	return o.item
}

func (o *Option) setItem(item *Item) {
	o.item = item
	if item != nil && !o.Has("product_id") {
		o.Set("product_id", item.ProductID())
	}
}

// Product returns the product the option was built from, if any.
func (o *Option) Product() *Product {
	return o.product
}

// SetProduct attaches the product the option describes.
func (o *Option) SetProduct(p *Product) *Option {
	o.product = p
	if p != nil {
		o.Set("product_id", p.ProductID())
	}
	return o
}
