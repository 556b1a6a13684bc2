package order

import (
	"strings"

	"github.com/deppfellow/go-commerce/internal/customer"
	"github.com/deppfellow/go-commerce/internal/dataobject"
	"github.com/deppfellow/go-commerce/internal/wishlist"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// DefaultCurrency is used when the admin picked none.
const DefaultCurrency = "USD"

// Item is a product line of the quote.
type Item struct {
	ItemID int64 `json:"item_id"`
	wishlist.CartLine

	SKU   string          `json:"sku"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// RowTotal is the line price times its quantity.
func (i Item) RowTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromFloat(i.Qty))
}

// Quote is the order an admin is building. It is kept per admin session
// until it is placed or cancelled.
type Quote struct {
	CustomerID      int64          `json:"customer_id"`
	CustomerIsGuest bool           `json:"customer_is_guest"`
	CustomerGroupID int64          `json:"customer_group_id"`
	StoreID         int64          `json:"store_id"`
	CurrencyCode    string         `json:"currency_code"`
	Recollect       bool           `json:"recollect"`
	ReorderedID     int64          `json:"reordered_id"`
	Email           string         `json:"email"`
	CustomerNote    string         `json:"customer_note"`
	CouponCode      string         `json:"coupon_code"`
	Payment         map[string]any `json:"payment"`
	Items           []Item         `json:"items"`
	NextItemID      int64          `json:"next_item_id"`
}

// NewQuote returns an empty quote.
func NewQuote() *Quote {
	return &Quote{CurrencyCode: DefaultCurrency, Payment: map[string]any{}, Items: []Item{}}
}

// InitParams identify who the order is for and where it is placed. Zero
// values leave the quote unchanged.
type InitParams struct {
	CustomerID      int64
	CustomerIsGuest bool
	StoreID         int64
	CurrencyID      string
}

// Init applies params to the quote.
func (q *Quote) Init(p InitParams) {
	if p.CustomerID != 0 {
		q.CustomerID = p.CustomerID
	}
	if p.CustomerIsGuest {
		q.CustomerGroupID = customer.NotLoggedInGroupID
		q.CustomerIsGuest = true
	}
	if p.StoreID != 0 {
		q.StoreID = p.StoreID
	}
	if p.CurrencyID != "" {
		q.CurrencyCode = p.CurrencyID
		q.Recollect = true
	}
}

// InitFromOrder copies the buyer, store and payment of o onto the quote
// and remembers o as the reordered order. Items are added separately, as
// they need their current products.
func (q *Quote) InitFromOrder(o *Order) {
	q.ReorderedID = o.OrderID()
	q.CustomerID = o.CustomerID()
	q.CustomerIsGuest = cast.ToBool(o.Get("customer_is_guest"))
	q.CustomerGroupID = cast.ToInt64(o.Get("customer_group_id"))
	q.StoreID = cast.ToInt64(o.Get("store_id"))
	q.Email = cast.ToString(o.Get("customer_email"))
	q.CouponCode = cast.ToString(o.Get("coupon_code"))
	if currency := cast.ToString(o.Get("order_currency_code")); currency != "" {
		q.CurrencyCode = currency
	}
	if method := cast.ToString(o.Get("payment_method")); method != "" {
		q.AddPaymentData(map[string]any{"method": method})
	}
}

// AddProduct puts product on the quote as configured by buyRequest. A
// product already on the quote with the same options has its quantity
// raised instead.
func (q *Quote) AddProduct(product *wishlist.Product, buyRequest map[string]any) error {
	cart := wishlist.NewCart(q.CustomerID)
	if err := cart.AddProduct(product, dataobject.FromMap(buyRequest)); err != nil {
		return err
	}
	line := cart.Lines[0]
	if q.StoreID != 0 {
		line.StoreID = q.StoreID
	}

	for i := range q.Items {
		item := &q.Items[i]
		if item.ProductID == line.ProductID && sameConfiguration(item.BuyRequest, line.BuyRequest) {
			item.Qty += line.Qty
			item.BuyRequest["qty"] = item.Qty
			return nil
		}
	}

	price, err := decimal.NewFromString(cast.ToString(product.Get("price")))
	if err != nil {
		price = decimal.Zero
	}

	q.NextItemID++
	q.Items = append(q.Items, Item{
		ItemID:   q.NextItemID,
		CartLine: line,
		SKU:      cast.ToString(product.Get("sku")),
		Name:     cast.ToString(product.Get("name")),
		Price:    price,
	})
	return nil
}

// Keys of a buy request that tell two configurations of a product apart.
var configurationKeys = []string{"options", "super_group", "super_attribute", "bundle_option"}

func sameConfiguration(a, b map[string]any) bool {
	for _, k := range configurationKeys {
		if !dataobject.LooseEqual(a[k], b[k]) {
			return false
		}
	}
	return true
}

// Item returns the quote item with id, or nil.
func (q *Quote) Item(id int64) *Item {
	for i := range q.Items {
		if q.Items[i].ItemID == id {
			return &q.Items[i]
		}
	}
	return nil
}

// RemoveItem drops the quote item with id and reports whether it existed.
func (q *Quote) RemoveItem(id int64) bool {
	for i := range q.Items {
		if q.Items[i].ItemID == id {
			q.Items = append(q.Items[:i], q.Items[i+1:]...)
			return true
		}
	}
	return false
}

// UpdateItems applies the item grid: an "action" of "remove" drops the
// item, otherwise "qty" is set, with anything below 1 read as 1. Unknown
// ids are skipped.
func (q *Quote) UpdateItems(items map[int64]map[string]any) {
	for id, info := range items {
		if cast.ToString(info["action"]) == "remove" {
			q.RemoveItem(id)
			continue
		}
		item := q.Item(id)
		if item == nil {
			continue
		}
		qty := cast.ToFloat64(info["qty"])
		if qty <= 0 {
			qty = 1
		}
		item.Qty = qty
		if item.BuyRequest == nil {
			item.BuyRequest = map[string]any{}
		}
		item.BuyRequest["qty"] = qty
	}
}

// ImportPostData reads the "order" form: the buyer's account (email and
// group) and the order comment. Coupons are applied separately.
func (q *Quote) ImportPostData(data map[string]any) {
	if account, ok := data["account"].(map[string]any); ok {
		if email, ok := account["email"]; ok {
			q.Email = strings.TrimSpace(cast.ToString(email))
		}
		if group, ok := account["group_id"]; ok {
			q.CustomerGroupID = cast.ToInt64(group)
		}
	}
	if comment, ok := data["comment"].(map[string]any); ok {
		if note, ok := comment["customer_note"]; ok {
			q.CustomerNote = cast.ToString(note)
		}
	}
}

// CouponCode returns the trimmed order[coupon][code] of an order form and
// whether one was posted.
func CouponCode(data map[string]any) (string, bool) {
	coupon, ok := data["coupon"].(map[string]any)
	if !ok {
		return "", false
	}
	code, ok := coupon["code"]
	if !ok {
		return "", false
	}
	return strings.TrimSpace(cast.ToString(code)), true
}

// AddPaymentData merges data into the payment, key by key.
func (q *Quote) AddPaymentData(data map[string]any) {
	if q.Payment == nil {
		q.Payment = map[string]any{}
	}
	for k, v := range data {
		q.Payment[k] = v
	}
}

func (q *Quote) PaymentMethod() string {
	return cast.ToString(q.Payment["method"])
}

// Subtotal is the sum of the row totals.
func (q *Quote) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range q.Items {
		total = total.Add(item.RowTotal())
	}
	return total
}

// TotalQty is the sum of the item quantities.
func (q *Quote) TotalQty() float64 {
	var qty float64
	for _, item := range q.Items {
		qty += item.Qty
	}
	return qty
}

// InvalidError lists why a quote cannot be placed.
type InvalidError struct {
	Problems []string
}

func (e *InvalidError) Error() string {
	return "invalid quote: " + strings.Join(e.Problems, "; ")
}

// Validate checks the quote can be placed: a buyer, a store, at least one
// item, a valid email and a payment method.
func (q *Quote) Validate() error {
	var problems []string
	if q.CustomerID == 0 && !q.CustomerIsGuest {
		problems = append(problems, "Please select a customer.")
	}
	if q.StoreID == 0 {
		problems = append(problems, "Please select a store.")
	}
	if len(q.Items) == 0 {
		problems = append(problems, "You need to specify order items.")
	}
	switch {
	case q.Email == "":
		problems = append(problems, `"Email" is a required value.`)
	case !customer.IsValidEmail(q.Email):
		problems = append(problems, `"Email" is not a valid email address.`)
	}
	if q.PaymentMethod() == "" {
		problems = append(problems, "Payment method instance is not available.")
	}
	if len(problems) > 0 {
		return &InvalidError{Problems: problems}
	}
	return nil
}
