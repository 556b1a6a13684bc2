package order

import (
	"strconv"
	"testing"

	"github.com/deppfellow/go-commerce/internal/errs"
	"github.com/deppfellow/go-commerce/internal/wishlist"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProduct(id int64, overrides map[string]any) *wishlist.Product {
	data := map[string]any{
		"entity_id": id,
		"sku":       "sku-" + strconv.FormatInt(id, 10),
		"name":      "Product",
		"type_id":   wishlist.TypeSimple,
		"status":    wishlist.StatusEnabled,
		"price":     "10.00",
		"store_id":  int64(0),
	}
	for k, v := range overrides {
		data[k] = v
	}
	return wishlist.NewProduct(data)
}

func TestQuote_Init(t *testing.T) {
	q := NewQuote()
	q.Init(InitParams{CustomerID: 4, StoreID: 2})
	assert.Equal(t, int64(4), q.CustomerID)
	assert.Equal(t, int64(2), q.StoreID)
	assert.Equal(t, DefaultCurrency, q.CurrencyCode)
	assert.False(t, q.Recollect)

	q.CustomerGroupID = 3
	q.Init(InitParams{CustomerIsGuest: true, CurrencyID: "EUR"})
	assert.True(t, q.CustomerIsGuest)
	assert.Zero(t, q.CustomerGroupID)
	assert.Equal(t, int64(4), q.CustomerID)
	assert.Equal(t, "EUR", q.CurrencyCode)
	assert.True(t, q.Recollect)
}

func TestQuote_AddProduct(t *testing.T) {
	t.Run("new lines and merged quantities", func(t *testing.T) {
		q := NewQuote()
		q.Init(InitParams{StoreID: 1})

		require.NoError(t, q.AddProduct(testProduct(5, nil), map[string]any{"qty": 2}))
		require.NoError(t, q.AddProduct(testProduct(5, nil), map[string]any{"qty": 1}))
		require.NoError(t, q.AddProduct(testProduct(5, nil), map[string]any{"qty": 1, "options": map[string]any{"3": "L"}}))
		require.NoError(t, q.AddProduct(testProduct(6, map[string]any{"price": "2.5"}), map[string]any{}))

		require.Len(t, q.Items, 3)
		assert.Equal(t, []int64{1, 2, 3}, []int64{q.Items[0].ItemID, q.Items[1].ItemID, q.Items[2].ItemID})
		assert.Equal(t, float64(3), q.Items[0].Qty)
		assert.Equal(t, float64(3), q.Items[0].BuyRequest["qty"])
		assert.Equal(t, int64(1), q.Items[0].StoreID)
		assert.Equal(t, "sku-5", q.Items[0].SKU)
		assert.Equal(t, float64(1), q.Items[2].Qty)

		assert.True(t, decimal.RequireFromString("42.5").Equal(q.Subtotal()), q.Subtotal().String())
		assert.Equal(t, float64(5), q.TotalQty())
	})

	t.Run("grouped product without quantities", func(t *testing.T) {
		q := NewQuote()
		err := q.AddProduct(testProduct(7, map[string]any{"type_id": wishlist.TypeGrouped}), map[string]any{})

		assert.Equal(t, "Please specify the quantity of product(s).", errs.UserMessage(err, ""))
		assert.Empty(t, q.Items)
	})

	t.Run("unparsable price counts as zero", func(t *testing.T) {
		q := NewQuote()
		require.NoError(t, q.AddProduct(testProduct(8, map[string]any{"price": nil}), map[string]any{"qty": 4}))
		assert.True(t, q.Subtotal().IsZero())
	})
}

func TestQuote_UpdateItems(t *testing.T) {
	q := NewQuote()
	require.NoError(t, q.AddProduct(testProduct(5, nil), map[string]any{"qty": 2}))
	require.NoError(t, q.AddProduct(testProduct(6, nil), map[string]any{"qty": 2}))
	require.NoError(t, q.AddProduct(testProduct(7, nil), map[string]any{"qty": 2}))

	q.UpdateItems(map[int64]map[string]any{
		1:  {"qty": "5"},
		2:  {"qty": 0},
		3:  {"action": "remove"},
		99: {"qty": 4},
	})

	require.Len(t, q.Items, 2)
	assert.Equal(t, float64(5), q.Item(1).Qty)
	assert.Equal(t, float64(5), q.Item(1).BuyRequest["qty"])
	assert.Equal(t, float64(1), q.Item(2).Qty)
	assert.Nil(t, q.Item(3))

	assert.True(t, q.RemoveItem(2))
	assert.False(t, q.RemoveItem(2))
}

func TestQuote_ImportPostData(t *testing.T) {
	q := NewQuote()
	q.ImportPostData(map[string]any{
		"account": map[string]any{"email": " buyer@example.com ", "group_id": "2"},
		"comment": map[string]any{"customer_note": "leave at the door"},
	})

	assert.Equal(t, "buyer@example.com", q.Email)
	assert.Equal(t, int64(2), q.CustomerGroupID)
	assert.Equal(t, "leave at the door", q.CustomerNote)

	q.ImportPostData(map[string]any{"comment": "not a form"})
	assert.Equal(t, "leave at the door", q.CustomerNote)
}

func TestCouponCode(t *testing.T) {
	code, posted := CouponCode(map[string]any{"coupon": map[string]any{"code": " SAVE10 "}})
	assert.True(t, posted)
	assert.Equal(t, "SAVE10", code)

	code, posted = CouponCode(map[string]any{"coupon": map[string]any{"code": ""}})
	assert.True(t, posted)
	assert.Empty(t, code)

	_, posted = CouponCode(map[string]any{"coupon": map[string]any{}})
	assert.False(t, posted)

	_, posted = CouponCode(nil)
	assert.False(t, posted)
}

func TestQuote_Validate(t *testing.T) {
	var invalid *InvalidError
	require.ErrorAs(t, NewQuote().Validate(), &invalid)
	assert.Equal(t, []string{
		"Please select a customer.",
		"Please select a store.",
		"You need to specify order items.",
		`"Email" is a required value.`,
		"Payment method instance is not available.",
	}, invalid.Problems)

	q := NewQuote()
	q.Init(InitParams{CustomerIsGuest: true, StoreID: 1})
	q.Email = "guest@"
	q.AddPaymentData(map[string]any{"method": "checkmo"})
	require.NoError(t, q.AddProduct(testProduct(5, nil), map[string]any{}))

	require.ErrorAs(t, q.Validate(), &invalid)
	assert.Equal(t, []string{`"Email" is not a valid email address.`}, invalid.Problems)

	q.Email = "guest@example.com"
	assert.NoError(t, q.Validate())
}

func TestQuote_InitFromOrder(t *testing.T) {
	o := New(map[string]any{
		IDField:               int64(12),
		"customer_id":         int64(4),
		"customer_group_id":   int64(2),
		"store_id":            int64(1),
		"customer_email":      "buyer@example.com",
		"order_currency_code": "EUR",
		"payment_method":      "checkmo",
	})

	q := NewQuote()
	q.InitFromOrder(o)

	assert.Equal(t, int64(12), q.ReorderedID)
	assert.Equal(t, int64(4), q.CustomerID)
	assert.Equal(t, int64(2), q.CustomerGroupID)
	assert.Equal(t, "buyer@example.com", q.Email)
	assert.Equal(t, "EUR", q.CurrencyCode)
	assert.Equal(t, "checkmo", q.PaymentMethod())
	assert.Empty(t, q.CouponCode)
}
