package wishlist

import (
	"github.com/deppfellow/go-commerce/internal/dataobject"
	"github.com/deppfellow/go-commerce/internal/errs"
	"github.com/spf13/cast"
)

// CartLine is a product added to the customer's cart.
type CartLine struct {
	ProductID  int64          `json:"product_id"`
	StoreID    int64          `json:"store_id"`
	Qty        float64        `json:"qty"`
	BuyRequest map[string]any `json:"buy_request"`
}

// Cart collects the lines added from a wishlist until they are persisted.
type Cart struct {
	CustomerID int64
	Lines      []CartLine
}

// NewCart returns an empty cart for customerID.
func NewCart(customerID int64) *Cart {
	return &Cart{CustomerID: customerID}
}

// AddProduct adds product configured by buyRequest.
//
// Products with required options need an "options" entry and grouped
// products a "super_group" entry, as neither can be bought bare.
func (c *Cart) AddProduct(product *Product, buyRequest *dataobject.Object) error {
	if product == nil {
		return errs.NewCodedException(ErrCodeNotSpecifiedProduct, "Cannot specify product.")
	}
	if product.TypeID() == TypeGrouped && !buyRequest.Has("super_group") {
		return errs.NewCodedException(ErrCodeIsGroupedProduct, "Please specify the quantity of product(s).")
	}
	if product.HasRequiredOptions() && !buyRequest.Has("options") {
		return errs.NewCodedException(ErrCodeHasRequiredOptions, "Please specify the product's option(s).")
	}

	qty := cast.ToFloat64(buyRequest.Get("qty"))
	if qty <= 0 {
		qty = 1
	}

	c.Lines = append(c.Lines, CartLine{
		ProductID:  product.ProductID(),
		StoreID:    product.StoreID(),
		Qty:        qty,
		BuyRequest: buyRequest.ToMap(),
	})
	return nil
}
