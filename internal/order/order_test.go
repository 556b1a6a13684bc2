package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrder_CanReorder(t *testing.T) {
	tests := []struct {
		name     string
		data     map[string]any
		expected bool
	}{
		{"new order", map[string]any{"state": StateNew, "customer_id": 4}, true},
		{"complete order", map[string]any{"state": "complete", "customer_id": 4}, true},
		{"on hold", map[string]any{"state": StateHolded, "customer_id": 4}, false},
		{"payment review", map[string]any{"state": StatePaymentReview, "customer_id": 4}, false},
		{"guest order", map[string]any{"state": StateNew}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, New(tt.data).CanReorder())
		})
	}
}

func TestOrderItem_BuyRequest(t *testing.T) {
	item := NewItem(map[string]any{"product_id": 5, "qty_ordered": 2.0, "buy_request": map[string]any{"options": map[string]any{"3": "L"}}})
	assert.Equal(t, int64(5), item.ProductID())
	assert.Equal(t, float64(2), item.QtyOrdered())
	assert.Equal(t, map[string]any{"options": map[string]any{"3": "L"}}, item.BuyRequest())

	assert.Equal(t, map[string]any{}, NewItem(nil).BuyRequest())
}

func TestHasTags(t *testing.T) {
	assert.True(t, HasTags("<script>alert(1)</script>"))
	assert.True(t, HasTags("100<b>0</b>"))
	assert.False(t, HasTags("100000001"))
	assert.False(t, HasTags("a < b"))
}
