package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/deppfellow/go-commerce/internal/errs"
	"github.com/deppfellow/go-commerce/internal/wishlist"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWishlistStore struct {
	wishlists map[int64]*wishlist.Wishlist
	products  map[int64]*wishlist.Product
	items     map[int64]*wishlist.Item
	nextID    int64
	carts     []*wishlist.Cart
	savedAt   time.Time
}

func newFakeWishlistStore() *fakeWishlistStore {
	return &fakeWishlistStore{
		wishlists: map[int64]*wishlist.Wishlist{1: {ID: 1, CustomerID: 42}},
		products:  map[int64]*wishlist.Product{},
		items:     map[int64]*wishlist.Item{},
		nextID:    10,
	}
}

func (f *fakeWishlistStore) GetWishlist(_ context.Context, id int64) (*wishlist.Wishlist, error) {
	w, ok := f.wishlists[id]
	if !ok {
		return nil, errs.NewNotFoundError("Wishlist not found", true, nil)
	}
	return w, nil
}

func (f *fakeWishlistStore) GetProduct(_ context.Context, id, storeID int64) (*wishlist.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, errs.NewNotFoundError("Product not found", true, nil)
	}
	p.Set("store_id", storeID)
	return p, nil
}

func (f *fakeWishlistStore) GetItem(_ context.Context, id int64) (*wishlist.Item, error) {
	item, ok := f.items[id]
	if !ok {
		return nil, errs.NewNotFoundError("Wishlist Item not found", true, nil)
	}
	return item, nil
}

func (f *fakeWishlistStore) ItemsByProduct(_ context.Context, wishlistID, productID int64) ([]*wishlist.Item, error) {
	var out []*wishlist.Item
	for _, item := range f.items {
		if item.WishlistID() == wishlistID && item.ProductID() == productID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (f *fakeWishlistStore) SaveItem(_ context.Context, item *wishlist.Item, now time.Time) error {
	if err := item.BeforeSave(now); err != nil {
		return err
	}
	if item.ItemID() == 0 {
		f.nextID++
		item.SetID(f.nextID)
	}
	item.PruneDeletedOptions()
	f.items[item.ItemID()] = item
	f.savedAt = now
	return nil
}

func (f *fakeWishlistStore) AddToCart(_ context.Context, cart *wishlist.Cart, items []*wishlist.Item, _ time.Time) error {
	f.carts = append(f.carts, cart)
	for _, item := range items {
		if item.IsDeleted() {
			delete(f.items, item.ItemID())
		}
	}
	return nil
}

func simpleProduct(id int64, extra map[string]any) *wishlist.Product {
	data := map[string]any{
		"entity_id":  id,
		"type_id":    wishlist.TypeSimple,
		"status":     wishlist.StatusEnabled,
		"visibility": 4,
		"is_salable": true,
	}
	for k, v := range extra {
		data[k] = v
	}
	return wishlist.NewProduct(data)
}

func newTestWishlistService(store *fakeWishlistStore) *WishlistService {
	svc := NewWishlistService(store, newTestLogger())
	svc.clock = fixedClock(time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC))
	return svc
}

func TestWishlistService_AddItem(t *testing.T) {
	ctx := context.Background()

	t.Run("new item", func(t *testing.T) {
		store := newFakeWishlistStore()
		store.products[5] = simpleProduct(5, nil)
		svc := newTestWishlistService(store)

		view, err := svc.AddItem(ctx, 1, AddItemInput{
			ProductID:  5,
			Qty:        2,
			BuyRequest: map[string]any{"product": 5, "options": map[string]any{"12": "red"}},
		})
		require.NoError(t, err)

		assert.Equal(t, int64(11), view.Item[wishlist.ItemIDField])
		assert.Equal(t, float64(2), view.BuyRequest.Get("qty"))
		assert.Equal(t, "red", view.BuyRequest.Get("options/12"))
		assert.True(t, view.CanHaveQty)

		item := store.items[11]
		require.NotNil(t, item)
		assert.Equal(t, wishlist.DefaultStoreID, item.StoreID())
		assert.Equal(t, "red", item.OptionByCode("option_12").Value())
		assert.Equal(t, "12", item.OptionByCode(wishlist.OptionIDsCode).Value())
		assert.NotNil(t, item.OptionByCode(wishlist.BuyRequestOptionCode))
		assert.Equal(t, store.savedAt, item.Get("added_at"))
	})

	t.Run("same options grow the existing item", func(t *testing.T) {
		store := newFakeWishlistStore()
		store.products[5] = simpleProduct(5, nil)
		svc := newTestWishlistService(store)

		in := AddItemInput{ProductID: 5, Qty: 1, BuyRequest: map[string]any{"options": map[string]any{"12": "red"}}}
		_, err := svc.AddItem(ctx, 1, in)
		require.NoError(t, err)

		in.BuyRequest = map[string]any{"options": map[string]any{"12": "red"}, "note": "gift"}
		in.Qty = 3
		view, err := svc.AddItem(ctx, 1, in)
		require.NoError(t, err)

		require.Len(t, store.items, 1)
		assert.Equal(t, float64(4), store.items[11].Qty())
		assert.Equal(t, "gift", view.BuyRequest.Get("note"))
	})

	t.Run("different options add a second item", func(t *testing.T) {
		store := newFakeWishlistStore()
		store.products[5] = simpleProduct(5, nil)
		svc := newTestWishlistService(store)

		_, err := svc.AddItem(ctx, 1, AddItemInput{ProductID: 5, BuyRequest: map[string]any{"options": map[string]any{"12": "red"}}})
		require.NoError(t, err)
		_, err = svc.AddItem(ctx, 1, AddItemInput{ProductID: 5, BuyRequest: map[string]any{"options": map[string]any{"12": "blue"}}})
		require.NoError(t, err)

		assert.Len(t, store.items, 2)
	})

	t.Run("disabled product", func(t *testing.T) {
		store := newFakeWishlistStore()
		store.products[5] = simpleProduct(5, map[string]any{"status": 2})
		svc := newTestWishlistService(store)

		_, err := svc.AddItem(ctx, 1, AddItemInput{ProductID: 5})

		var httpErr *errs.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusUnprocessableEntity, httpErr.Status)
		assert.Equal(t, "WISHLIST_ITEM_PRODUCT_REQUIRED", httpErr.Code)
		assert.Empty(t, store.items)
	})

	t.Run("unknown wishlist", func(t *testing.T) {
		svc := newTestWishlistService(newFakeWishlistStore())

		_, err := svc.AddItem(ctx, 2, AddItemInput{ProductID: 5})
		assert.Equal(t, "Wishlist not found", errs.UserMessage(err, ""))
	})
}

func TestRequestOptions(t *testing.T) {
	assert.Empty(t, requestOptions(map[string]any{"qty": 1}))
	assert.Empty(t, requestOptions(map[string]any{"options": map[string]any{}}))

	opts := requestOptions(map[string]any{"options": map[string]any{"12": "red", "9": "large", "100": "gift"}})
	require.Len(t, opts, 4)
	assert.Equal(t, "9,12,100", opts[wishlist.OptionIDsCode].Value())
	assert.Equal(t, "large", opts["option_9"].Value())
	assert.Equal(t, wishlist.OptionIDsCode, opts[wishlist.OptionIDsCode].Code())
}

func TestWishlistService_GetItem(t *testing.T) {
	store := newFakeWishlistStore()
	store.products[5] = simpleProduct(5, nil)
	svc := newTestWishlistService(store)

	_, err := svc.AddItem(context.Background(), 1, AddItemInput{ProductID: 5, BuyRequest: map[string]any{"options": map[string]any{"3": "L"}}})
	require.NoError(t, err)

	view, err := svc.GetItem(context.Background(), 1, 11)
	require.NoError(t, err)
	assert.Len(t, view.Options, 3)

	_, err = svc.GetItem(context.Background(), 2, 11)
	var httpErr *errs.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.Status)
}

func TestWishlistService_MoveToCart(t *testing.T) {
	ctx := context.Background()

	addItem := func(t *testing.T, store *fakeWishlistStore, product *wishlist.Product, buyRequest map[string]any) int64 {
		t.Helper()
		store.products[product.ProductID()] = product
		view, err := newTestWishlistService(store).AddItem(ctx, 1, AddItemInput{ProductID: product.ProductID(), Qty: 2, BuyRequest: buyRequest})
		require.NoError(t, err)
		return view.Item[wishlist.ItemIDField].(int64)
	}

	t.Run("added and removed", func(t *testing.T) {
		store := newFakeWishlistStore()
		id := addItem(t, store, simpleProduct(5, nil), map[string]any{"product": 5})

		result, err := newTestWishlistService(store).MoveToCart(ctx, 1, id, true)
		require.NoError(t, err)

		assert.True(t, result.Added)
		assert.True(t, result.ItemRemoved)
		require.Len(t, result.Lines, 1)
		assert.Equal(t, int64(5), result.Lines[0].ProductID)
		assert.Equal(t, float64(2), result.Lines[0].Qty)
		require.Len(t, store.carts, 1)
		assert.Equal(t, int64(42), store.carts[0].CustomerID)
		assert.Empty(t, store.items)
	})

	t.Run("kept on the wishlist", func(t *testing.T) {
		store := newFakeWishlistStore()
		id := addItem(t, store, simpleProduct(5, nil), nil)

		result, err := newTestWishlistService(store).MoveToCart(ctx, 1, id, false)
		require.NoError(t, err)
		assert.True(t, result.Added)
		assert.False(t, result.ItemRemoved)
		assert.Contains(t, store.items, id)
	})

	t.Run("disabled after adding", func(t *testing.T) {
		store := newFakeWishlistStore()
		product := simpleProduct(5, nil)
		id := addItem(t, store, product, nil)
		product.Set("status", 2)

		result, err := newTestWishlistService(store).MoveToCart(ctx, 1, id, true)
		require.NoError(t, err)
		assert.False(t, result.Added)
		assert.Empty(t, result.Lines)
		assert.Empty(t, store.carts)
	})

	tests := []struct {
		name    string
		product *wishlist.Product
		code    string
		message string
	}{
		{"out of stock", simpleProduct(6, map[string]any{"is_salable": false}), "WISHLIST_ITEM_NOT_SALABLE", "This product(s) is out of stock."},
		{"required options", simpleProduct(7, map[string]any{"has_required_options": true}), "WISHLIST_ITEM_OPTIONS_REQUIRED", "Please specify the product's option(s)."},
		{"grouped", simpleProduct(8, map[string]any{"type_id": wishlist.TypeGrouped}), "WISHLIST_ITEM_QTY_REQUIRED", "Please specify the quantity of product(s)."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeWishlistStore()
			id := addItem(t, store, tt.product, nil)

			_, err := newTestWishlistService(store).MoveToCart(ctx, 1, id, true)

			var httpErr *errs.HTTPError
			require.ErrorAs(t, err, &httpErr)
			assert.Equal(t, http.StatusUnprocessableEntity, httpErr.Status)
			assert.Equal(t, tt.code, httpErr.Code)
			assert.Equal(t, tt.message, httpErr.Message)
			assert.Contains(t, store.items, id)
		})
	}
}
