// Package wishlist holds the wishlist item model: its options, the buy
// request it was added with, how it compares to a requested product and
// how it moves into the cart.
package wishlist

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/deppfellow/go-commerce/internal/dataobject"
	"github.com/deppfellow/go-commerce/internal/errs"
	pkgerrors "github.com/pkg/errors"
	"github.com/spf13/cast"
)

const (
	// ItemIDField is the primary key of wishlist_item.
	ItemIDField = "wishlist_item_id"

	// BuyRequestOptionCode stores the request the item was added with.
	BuyRequestOptionCode = "info_buyRequest"

	// OptionIDsCode lists the ids of the item's custom options.
	OptionIDsCode = "option_ids"

	// DefaultStoreID is used for items saved without a store.
	DefaultStoreID int64 = 1
)

// Exception codes raised while moving an item to the cart.
const (
	ErrCodeNotSalable          = 901
	ErrCodeHasRequiredOptions  = 902
	ErrCodeIsGroupedProduct    = 903
	ErrCodeNotSpecifiedProduct = 904
)

var (
	// ErrProductNotLoaded means the item has a product id but no product
	// was attached with SetProduct.
	ErrProductNotLoaded = errors.New("wishlist: item product not loaded")

	// Buy request keys ignored when comparing two requests.
	buyRequestSkipKeys = map[string]bool{"id": true, "qty": true, "return_url": true}

	// Option codes ignored when comparing item options with a product.
	notRepresentOptions = map[string]bool{BuyRequestOptionCode: true}
)

// Item is a wishlist_item row with its options.
type Item struct {
	*dataobject.Object

	options       []*Option
	optionsByCode map[string]*Option
	product       *Product
}

// NewItem wraps item data.
func NewItem(data map[string]any) *Item {
	obj := dataobject.FromMap(data)
	obj.SetIDFieldName(ItemIDField)
	return &Item{Object: obj, optionsByCode: map[string]*Option{}}
}

func (i *Item) ItemID() int64 {
	return cast.ToInt64(i.ID())
}

func (i *Item) WishlistID() int64 {
	return cast.ToInt64(i.Get("wishlist_id"))
}

func (i *Item) ProductID() int64 {
	return cast.ToInt64(i.Get("product_id"))
}

func (i *Item) StoreID() int64 {
	return cast.ToInt64(i.Get("store_id"))
}

func (i *Item) Qty() float64 {
	return cast.ToFloat64(i.Get("qty"))
}

// SetQty stores qty; negative quantities become 1.
func (i *Item) SetQty(qty float64) *Item {
	if qty < 0 {
		qty = 1
	}
	i.Set("qty", qty)
	return i
}

// AddOption attaches an option given as *Option, a map of option data
// or a *dataobject.Object. An option whose code is already present is
// merged into the existing one.
func (i *Item) AddOption(option any) error {
	var opt *Option
	switch v := option.(type) {
	case *Option:
		opt = v
	case map[string]any:
		opt = NewOption(v)
	case *dataobject.Object:
		opt = NewOption(v.ToMap())
		opt.Unset("product")
		if p, ok := v.Get("product").(*Product); ok {
			opt.SetProduct(p)
		}
	default:
		return errs.NewException("Invalid item option format.")
	}
	opt.setItem(i)

	if existing := i.OptionByCode(opt.Code()); existing != nil {
		existing.AddData(opt.ToMap())
		return nil
	}

	// A deleted option still holds its code until the item is saved.
	if _, taken := i.optionsByCode[opt.Code()]; taken {
		return errs.NewException("An item option with code %s already exists.", opt.Code())
	}

	i.optionsByCode[opt.Code()] = opt
	i.options = append(i.options, opt)
	return nil
}

// SetOptions adds every option in order.
func (i *Item) SetOptions(options []*Option) error {
	for _, opt := range options {
		if err := i.AddOption(opt); err != nil {
			return err
		}
	}
	return nil
}

// Options returns all options, including ones marked deleted.
func (i *Item) Options() []*Option {
	return i.options
}

// OptionsByCode returns a copy of the code index.
func (i *Item) OptionsByCode() map[string]*Option {
	out := make(map[string]*Option, len(i.optionsByCode))
	for code, opt := range i.optionsByCode {
		out[code] = opt
	}
	return out
}

// OptionByCode returns the live option with code, or nil.
func (i *Item) OptionByCode(code string) *Option {
	if opt, ok := i.optionsByCode[code]; ok && !opt.IsDeleted() {
		return opt
	}
	return nil
}

// RemoveOption marks the option with code deleted. It is removed from
// storage on the next save.
func (i *Item) RemoveOption(code string) *Item {
	if opt := i.OptionByCode(code); opt != nil {
		opt.MarkDeleted(true)
	}
	return i
}

// PruneDeletedOptions forgets options marked deleted. Repositories call
// it once the deletions are stored.
func (i *Item) PruneDeletedOptions() {
	kept := i.options[:0]
	for _, opt := range i.options {
		if opt.IsDeleted() {
			delete(i.optionsByCode, opt.Code())
			continue
		}
		kept = append(kept, opt)
	}
	i.options = kept
}

// SetProduct attaches the item's product.
func (i *Item) SetProduct(p *Product) *Item {
	i.product = p
	if p != nil && i.ProductID() == 0 {
		i.Set("product_id", p.ProductID())
	}
	return i
}

// Product returns the item's product configured with the item's options.
// The returned value is a copy; the attached product is not modified.
func (i *Item) Product() (*Product, error) {
	if i.product == nil {
		if i.ProductID() == 0 {
			return nil, errs.NewCodedException(ErrCodeNotSpecifiedProduct, "Cannot specify product.")
		}
		return nil, ErrProductNotLoaded
	}

	p := *i.product
	p.CustomOptions = i.OptionsByCode()
	return &p, nil
}

// BuyRequest decodes the stored buy request. original_qty carries the
// quantity it was made with and qty the item's current quantity.
func (i *Item) BuyRequest() *dataobject.Object {
	request := dataobject.New()
	if opt := i.OptionByCode(BuyRequestOptionCode); opt != nil {
		if decoded, err := dataobject.FromJSON([]byte(dataobject.Stringify(opt.Value()))); err == nil {
			request = decoded
		}
	}

	request.Set("original_qty", request.Get("qty"))
	request.Set("qty", i.Qty())
	return request
}

// MergeBuyRequest stores the union of request and the current buy
// request. Every key present in request wins, empty values and nested
// maps included; the current request only fills keys request lacks.
// request may be a *dataobject.Object or a map.
func (i *Item) MergeBuyRequest(request any) error {
	var data map[string]any
	switch v := request.(type) {
	case *dataobject.Object:
		if v != nil {
			data = v.ToMap()
		}
	case map[string]any:
		data = make(map[string]any, len(v))
		for k, val := range v {
			data[k] = val
		}
	}
	if len(data) == 0 {
		return nil
	}

	for k, v := range i.BuyRequest().ToMap() {
		if _, ok := data[k]; !ok {
			data[k] = v
		}
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return pkgerrors.Wrap(err, "encode buy request")
	}

	if opt := i.OptionByCode(BuyRequestOptionCode); opt != nil {
		opt.SetValue(string(payload))
		return nil
	}
	return i.AddOption(map[string]any{
		"code":  BuyRequestOptionCode,
		"value": string(payload),
	})
}

// IsRepresent reports whether the item was added for product with an
// equivalent buy request.
func (i *Item) IsRepresent(product *Product, buyRequest *dataobject.Object) bool {
	if product == nil || i.ProductID() != product.ProductID() {
		return false
	}

	self := i.BuyRequest().ToMap()
	requestEmpty := buyRequest == nil || buyRequest.IsEmpty()

	if requestEmpty && len(self) > 0 {
		return false
	}
	if len(self) == 0 && !requestEmpty {
		return !product.IsComposite()
	}
	if requestEmpty {
		return true
	}

	request := buyRequest.ToMap()
	return compareBuyRequests(request, self) && compareBuyRequests(self, request)
}

func compareBuyRequests(a, b map[string]any) bool {
	for key, value := range a {
		if buyRequestSkipKeys[key] {
			continue
		}
		other, ok := b[key]
		if !ok || other == nil || !dataobject.LooseEqual(other, value) {
			return false
		}
	}
	return true
}

// RepresentProduct reports whether the item holds product configured
// with the same options.
func (i *Item) RepresentProduct(product *Product) (bool, error) {
	itemProduct, err := i.Product()
	if err != nil {
		return false, err
	}
	if product == nil || itemProduct.ProductID() != product.ProductID() {
		return false, nil
	}

	itemOptions := i.OptionsByCode()
	return CompareOptions(itemOptions, product.CustomOptions) &&
		CompareOptions(product.CustomOptions, itemOptions), nil
}

// CompareOptions reports whether every option in a, other than the buy
// request, has a non-nil equal value in b.
func CompareOptions(a, b map[string]*Option) bool {
	for code, opt := range a {
		if notRepresentOptions[code] {
			continue
		}
		other, ok := b[code]
		if !ok || other == nil || other.Value() == nil || !dataobject.LooseEqual(other.Value(), opt.Value()) {
			return false
		}
	}
	return true
}

// Validate checks the item references a wishlist and a product.
func (i *Item) Validate() error {
	if i.WishlistID() == 0 {
		return errs.NewException("Cannot specify wishlist.")
	}
	if i.ProductID() == 0 {
		return errs.NewException("Cannot specify product.")
	}
	return nil
}

// BeforeSave validates the item and fills store_id and added_at.
func (i *Item) BeforeSave(now time.Time) error {
	if err := i.Validate(); err != nil {
		return err
	}
	if i.Get("store_id") == nil {
		i.Set("store_id", DefaultStoreID)
	}
	if i.Get("added_at") == nil {
		i.Set("added_at", now.UTC())
	}
	return nil
}

// AddToCart adds the item's product to cart with the item's buy request.
//
// It returns false, without error, for disabled products and for
// products hidden in the item's store. A product that cannot be sold
// fails with ErrCodeNotSalable. With remove set the item is marked
// deleted once added.
func (i *Item) AddToCart(cart *Cart, remove bool) (bool, error) {
	product, err := i.Product()
	if err != nil {
		return false, err
	}

	if !product.IsEnabled() {
		return false, nil
	}
	if !product.IsVisibleInSiteVisibility() && product.StoreID() == i.StoreID() {
		return false, nil
	}
	if !product.IsSalable() {
		return false, errs.NewCodedException(ErrCodeNotSalable, "")
	}

	if err := cart.AddProduct(product, i.BuyRequest()); err != nil {
		return false, err
	}
	// A product hidden from the catalog is bought in the store the item
	// was wished from.
	if !product.IsVisibleInSiteVisibility() {
		cart.Lines[len(cart.Lines)-1].StoreID = i.StoreID()
	}

	if remove {
		i.MarkDeleted(true)
	}
	return true, nil
}

// CanHaveQty reports whether the item's quantity is meaningful; grouped
// products carry quantities on their children.
func (i *Item) CanHaveQty() (bool, error) {
	product, err := i.Product()
	if err != nil {
		return false, err
	}
	return product.TypeID() != TypeGrouped, nil
}
