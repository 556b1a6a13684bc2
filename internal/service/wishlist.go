package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/deppfellow/go-commerce/internal/dataobject"
	"github.com/deppfellow/go-commerce/internal/errs"
	"github.com/deppfellow/go-commerce/internal/wishlist"
	"github.com/rs/zerolog"
)

// WishlistStore loads and stores wishlists, their items and products.
type WishlistStore interface {
	GetWishlist(ctx context.Context, id int64) (*wishlist.Wishlist, error)
	GetProduct(ctx context.Context, id, storeID int64) (*wishlist.Product, error)
	GetItem(ctx context.Context, id int64) (*wishlist.Item, error)
	ItemsByProduct(ctx context.Context, wishlistID, productID int64) ([]*wishlist.Item, error)
	SaveItem(ctx context.Context, item *wishlist.Item, now time.Time) error
	AddToCart(ctx context.Context, cart *wishlist.Cart, items []*wishlist.Item, now time.Time) error
}

type WishlistService struct {
	wishlists WishlistStore
	logger    *zerolog.Logger
	clock     clock
}

func NewWishlistService(wishlists WishlistStore, logger *zerolog.Logger) *WishlistService {
	return &WishlistService{wishlists: wishlists, logger: logger}
}

// ItemView is a wishlist item as returned by the API.
type ItemView struct {
	Item       map[string]any     `json:"item"`
	Options    []map[string]any   `json:"options"`
	BuyRequest *dataobject.Object `json:"buy_request"`
	CanHaveQty bool               `json:"can_have_qty"`
}

func newItemView(item *wishlist.Item) (*ItemView, error) {
	canHaveQty, err := item.CanHaveQty()
	if err != nil {
		return nil, err
	}

	options := make([]map[string]any, 0, len(item.Options()))
	for _, opt := range item.Options() {
		if opt.IsDeleted() {
			continue
		}
		options = append(options, opt.ToMap())
	}

	return &ItemView{
		Item:       item.ToMap(),
		Options:    options,
		BuyRequest: item.BuyRequest(),
		CanHaveQty: canHaveQty,
	}, nil
}

// itemOf loads itemID and checks it belongs to wishlistID.
func (s *WishlistService) itemOf(ctx context.Context, wishlistID, itemID int64) (*wishlist.Item, error) {
	item, err := s.wishlists.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.WishlistID() != wishlistID {
		return nil, errs.NewNotFoundError("Wishlist Item not found", true, nil)
	}
	return item, nil
}

// GetItem returns the item with its options and decoded buy request.
func (s *WishlistService) GetItem(ctx context.Context, wishlistID, itemID int64) (*ItemView, error) {
	item, err := s.itemOf(ctx, wishlistID, itemID)
	if err != nil {
		return nil, err
	}
	return newItemView(item)
}

// AddItemInput is a product to put on a wishlist.
type AddItemInput struct {
	ProductID  int64
	StoreID    int64
	Qty        float64
	BuyRequest map[string]any
}

// requestOptions turns the buy request's "options" entry into item
// options keyed "option_<id>", plus an "option_ids" option listing the ids
// in ascending order, comma separated.
func requestOptions(buyRequest map[string]any) map[string]*wishlist.Option {
	out := map[string]*wishlist.Option{}
	options, ok := buyRequest["options"].(map[string]any)
	if !ok || len(options) == 0 {
		return out
	}
	ids := make([]string, 0, len(options))
	for id, value := range options {
		code := "option_" + id
		out[code] = wishlist.NewOption(map[string]any{"code": code, "value": value})
		ids = append(ids, id)
	}
	sort.Slice(ids, func(a, b int) bool {
		if len(ids[a]) != len(ids[b]) {
			return len(ids[a]) < len(ids[b])
		}
		return ids[a] < ids[b]
	})
	out[wishlist.OptionIDsCode] = wishlist.NewOption(map[string]any{
		"code":  wishlist.OptionIDsCode,
		"value": strings.Join(ids, ","),
	})
	return out
}

// AddItem adds a product to the wishlist. When an item already holds the
// product with the same options its quantity grows and the buy requests
// are merged; otherwise a new item is created.
func (s *WishlistService) AddItem(ctx context.Context, wishlistID int64, in AddItemInput) (*ItemView, error) {
	w, err := s.wishlists.GetWishlist(ctx, wishlistID)
	if err != nil {
		return nil, err
	}

	storeID := in.StoreID
	if storeID == 0 {
		storeID = wishlist.DefaultStoreID
	}

	product, err := s.wishlists.GetProduct(ctx, in.ProductID, storeID)
	if err != nil {
		return nil, err
	}
	if !product.IsEnabled() || !product.IsVisibleInSiteVisibility() {
		return nil, cartError(errs.NewCodedException(wishlist.ErrCodeNotSpecifiedProduct, "Cannot specify product."))
	}

	qty := in.Qty
	if qty <= 0 {
		qty = 1
	}

	candidate := *product
	candidate.CustomOptions = requestOptions(in.BuyRequest)

	existing, err := s.wishlists.ItemsByProduct(ctx, w.ID, product.ProductID())
	if err != nil {
		return nil, err
	}

	var target *wishlist.Item
	for _, item := range existing {
		same, err := item.RepresentProduct(&candidate)
		if err != nil {
			return nil, err
		}
		if same {
			target = item
			break
		}
	}

	if target != nil {
		target.SetQty(target.Qty() + qty)
	} else {
		target = wishlist.NewItem(map[string]any{
			"wishlist_id": w.ID,
			"store_id":    storeID,
		})
		target.SetProduct(product)
		target.SetQty(qty)

		codes := make([]string, 0, len(candidate.CustomOptions))
		for code := range candidate.CustomOptions {
			codes = append(codes, code)
		}
		sort.Strings(codes)
		for _, code := range codes {
			if err := target.AddOption(candidate.CustomOptions[code].ToMap()); err != nil {
				return nil, err
			}
		}
	}

	if err := target.MergeBuyRequest(in.BuyRequest); err != nil {
		return nil, err
	}
	if err := s.wishlists.SaveItem(ctx, target, s.clock.now()); err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("wishlist_id", w.ID).
		Int64("item_id", target.ItemID()).
		Int64("product_id", product.ProductID()).
		Float64("qty", target.Qty()).
		Msg("wishlist item saved")

	return newItemView(target)
}

// CartResult reports what moving an item to the cart did.
type CartResult struct {
	Added       bool                `json:"added"`
	ItemRemoved bool                `json:"item_removed"`
	Lines       []wishlist.CartLine `json:"lines"`
}

// MoveToCart adds the item to its owner's cart, removing it from the
// wishlist when remove is set. Products that cannot be added answer 422.
func (s *WishlistService) MoveToCart(ctx context.Context, wishlistID, itemID int64, remove bool) (*CartResult, error) {
	item, err := s.itemOf(ctx, wishlistID, itemID)
	if err != nil {
		return nil, err
	}
	w, err := s.wishlists.GetWishlist(ctx, wishlistID)
	if err != nil {
		return nil, err
	}

	cart := wishlist.NewCart(w.CustomerID)
	added, err := item.AddToCart(cart, remove)
	if err != nil {
		return nil, cartError(err)
	}
	if !added {
		return &CartResult{Lines: []wishlist.CartLine{}}, nil
	}

	if err := s.wishlists.AddToCart(ctx, cart, []*wishlist.Item{item}, s.clock.now()); err != nil {
		return nil, err
	}

	return &CartResult{Added: true, ItemRemoved: remove, Lines: cart.Lines}, nil
}

// cartError maps coded item exceptions to 422 responses.
func cartError(err error) error {
	message := errs.UserMessage(err, "")
	switch errs.CodeOf(err) {
	case wishlist.ErrCodeNotSalable:
		return errs.NewUnprocessableError("This product(s) is out of stock.", "WISHLIST_ITEM_NOT_SALABLE")
	case wishlist.ErrCodeHasRequiredOptions:
		return errs.NewUnprocessableError(message, "WISHLIST_ITEM_OPTIONS_REQUIRED")
	case wishlist.ErrCodeIsGroupedProduct:
		return errs.NewUnprocessableError(message, "WISHLIST_ITEM_QTY_REQUIRED")
	case wishlist.ErrCodeNotSpecifiedProduct:
		return errs.NewUnprocessableError(message, "WISHLIST_ITEM_PRODUCT_REQUIRED")
	}
	return err
}
