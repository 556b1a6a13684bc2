package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/deppfellow/go-commerce/internal/server"
	"github.com/deppfellow/go-commerce/internal/wishlist"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
)

const (
	wishlistTable     = "wishlist"
	wishlistItemTable = "wishlist_item"
	productTable      = "catalog_product_entity"
)

const wishlistItemColumns = `wishlist_item_id, wishlist_id, product_id, store_id, added_at, description,
	qty::float8 AS qty`

// WishlistRepository loads and stores wishlist items with their options
// and products.
type WishlistRepository struct {
	server *server.Server
}

func NewWishlistRepository(s *server.Server) *WishlistRepository {
	return &WishlistRepository{server: s}
}

// GetWishlist loads the wishlist with id.
func (r *WishlistRepository) GetWishlist(ctx context.Context, id int64) (*wishlist.Wishlist, error) {
	w := &wishlist.Wishlist{}
	err := r.server.DB.Pool.QueryRow(ctx,
		`SELECT wishlist_id, customer_id, shared FROM wishlist WHERE wishlist_id = $1`, id).
		Scan(&w.ID, &w.CustomerID, &w.Shared)
	if err != nil {
		return nil, wrapMissing(err, wishlistTable, "get wishlist")
	}
	return w, nil
}

// GetProduct loads the product with id as seen from storeID.
func (r *WishlistRepository) GetProduct(ctx context.Context, id, storeID int64) (*wishlist.Product, error) {
	return getProduct(ctx, r.server.DB.Pool, id, storeID)
}

func getProduct(ctx context.Context, q querier, id, storeID int64) (*wishlist.Product, error) {
	data, err := collectOne(ctx, q,
		`SELECT entity_id, sku, name, type_id, status, visibility, is_salable, has_required_options,
			price::text AS price, $2::bigint AS store_id
		FROM catalog_product_entity WHERE entity_id = $1`, id, storeID)
	if err != nil {
		return nil, wrapMissing(err, productTable, "get product")
	}
	return wishlist.NewProduct(data), nil
}

// GetItem loads the item with id, its options and its product.
func (r *WishlistRepository) GetItem(ctx context.Context, id int64) (*wishlist.Item, error) {
	data, err := collectOne(ctx, r.server.DB.Pool,
		`SELECT `+wishlistItemColumns+` FROM wishlist_item WHERE wishlist_item_id = $1`, id)
	if err != nil {
		return nil, wrapMissing(err, wishlistItemTable, "get wishlist item")
	}

	items, err := r.hydrate(ctx, []map[string]any{data})
	if err != nil {
		return nil, err
	}
	return items[0], nil
}

// ItemsByProduct loads the items of wishlistID that hold productID.
func (r *WishlistRepository) ItemsByProduct(ctx context.Context, wishlistID, productID int64) ([]*wishlist.Item, error) {
	rows, err := collectAll(ctx, r.server.DB.Pool,
		`SELECT `+wishlistItemColumns+` FROM wishlist_item
		WHERE wishlist_id = $1 AND product_id = $2 ORDER BY wishlist_item_id`, wishlistID, productID)
	if err != nil {
		return nil, errors.Wrap(err, "list wishlist items")
	}
	return r.hydrate(ctx, rows)
}

// hydrate builds items from rows and attaches their options and products.
func (r *WishlistRepository) hydrate(ctx context.Context, rows []map[string]any) ([]*wishlist.Item, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	items := make([]*wishlist.Item, len(rows))
	byID := make(map[int64]*wishlist.Item, len(rows))
	ids := make([]int64, len(rows))
	for i, row := range rows {
		item := wishlist.NewItem(row)
		items[i] = item
		byID[item.ItemID()] = item
		ids[i] = item.ItemID()
	}

	options, err := collectAll(ctx, r.server.DB.Pool,
		`SELECT option_id, wishlist_item_id, product_id, code, value
		FROM wishlist_item_option WHERE wishlist_item_id = ANY($1) ORDER BY option_id`, ids)
	if err != nil {
		return nil, errors.Wrap(err, "list wishlist item options")
	}
	for _, data := range options {
		item := byID[cast.ToInt64(data["wishlist_item_id"])]
		if item == nil {
			continue
		}
		if err := item.AddOption(wishlist.NewOption(data)); err != nil {
			return nil, err
		}
	}

	for _, item := range items {
		product, err := getProduct(ctx, r.server.DB.Pool, item.ProductID(), item.StoreID())
		if err != nil {
			return nil, err
		}
		item.SetProduct(product)
	}
	return items, nil
}

// SaveItem inserts or updates the item and syncs its options in one
// transaction: options marked deleted are removed, the others upserted by
// code. An item marked deleted is removed with its options.
func (r *WishlistRepository) SaveItem(ctx context.Context, item *wishlist.Item, now time.Time) error {
	pending := trackNewIDs([]*wishlist.Item{item})
	err := pgx.BeginFunc(ctx, r.server.DB.Pool, func(tx pgx.Tx) error {
		return saveItem(ctx, tx, item, now)
	})
	if err != nil {
		pending.reset()
		return err
	}
	item.PruneDeletedOptions()
	return nil
}

func saveItem(ctx context.Context, tx pgx.Tx, item *wishlist.Item, now time.Time) error {
	if item.IsDeleted() {
		if item.ItemID() == 0 {
			return nil
		}
		_, err := tx.Exec(ctx, `DELETE FROM wishlist_item WHERE wishlist_item_id = $1`, item.ItemID())
		return errors.Wrapf(err, "delete wishlist item %d", item.ItemID())
	}

	if err := item.BeforeSave(now); err != nil {
		return err
	}

	args := pgx.NamedArgs{
		"wishlist_id": item.WishlistID(),
		"product_id":  item.ProductID(),
		"store_id":    item.StoreID(),
		"added_at":    item.Get("added_at"),
		"description": item.Get("description"),
		"qty":         item.Qty(),
	}

	if item.ItemID() == 0 {
		var id int64
		err := tx.QueryRow(ctx,
			`INSERT INTO wishlist_item (wishlist_id, product_id, store_id, added_at, description, qty)
			VALUES (@wishlist_id, @product_id, @store_id, @added_at, @description, @qty)
			RETURNING wishlist_item_id`, args).Scan(&id)
		if err != nil {
			return errors.Wrap(err, "insert wishlist item")
		}
		item.SetID(id)
	} else {
		args["id"] = item.ItemID()
		tag, err := tx.Exec(ctx,
			`UPDATE wishlist_item SET wishlist_id = @wishlist_id, product_id = @product_id, store_id = @store_id,
				added_at = @added_at, description = @description, qty = @qty
			WHERE wishlist_item_id = @id`, args)
		if err != nil {
			return errors.Wrap(err, "update wishlist item")
		}
		if tag.RowsAffected() == 0 {
			return notFound(wishlistItemTable, "update wishlist item %d", item.ItemID())
		}
	}

	for _, opt := range item.Options() {
		if opt.IsDeleted() {
			if _, err := tx.Exec(ctx,
				`DELETE FROM wishlist_item_option WHERE wishlist_item_id = $1 AND code = $2`,
				item.ItemID(), opt.Code()); err != nil {
				return errors.Wrapf(err, "delete option %s", opt.Code())
			}
			continue
		}

		productID := opt.ProductID()
		if productID == 0 {
			productID = item.ProductID()
		}

		var id int64
		err := tx.QueryRow(ctx,
			`INSERT INTO wishlist_item_option (wishlist_item_id, product_id, code, value)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (wishlist_item_id, code) DO UPDATE SET product_id = EXCLUDED.product_id, value = EXCLUDED.value
			RETURNING option_id`,
			item.ItemID(), productID, opt.Code(), optionValue(opt.Value())).Scan(&id)
		if err != nil {
			return errors.Wrapf(err, "save option %s", opt.Code())
		}
		opt.SetID(id)
		opt.Set("wishlist_item_id", item.ItemID())
	}
	return nil
}

// optionValue stores strings as is and anything else as JSON.
func optionValue(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		return t
	}
	encoded, err := json.Marshal(v)
	if err != nil {
		return cast.ToString(v)
	}
	return string(encoded)
}

// AddToCart writes the cart's lines to sales_quote_item and saves the
// given items (removing those marked deleted) in one transaction.
func (r *WishlistRepository) AddToCart(ctx context.Context, cart *wishlist.Cart, items []*wishlist.Item, now time.Time) error {
	pending := trackNewIDs(items)
	err := pgx.BeginFunc(ctx, r.server.DB.Pool, func(tx pgx.Tx) error {
		for _, line := range cart.Lines {
			buyRequest, err := json.Marshal(line.BuyRequest)
			if err != nil {
				return errors.Wrap(err, "encode buy request")
			}
			if _, err := tx.Exec(ctx,
				`INSERT INTO sales_quote_item (customer_id, product_id, store_id, qty, buy_request)
				VALUES ($1, $2, $3, $4, $5)`,
				cart.CustomerID, line.ProductID, line.StoreID, line.Qty, string(buyRequest)); err != nil {
				return errors.Wrapf(err, "add product %d to cart", line.ProductID)
			}
		}
		for _, item := range items {
			if err := saveItem(ctx, tx, item, now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		pending.reset()
		return err
	}
	for _, item := range items {
		item.PruneDeletedOptions()
	}
	return nil
}

// newIDs remembers the unsaved items and options of a transaction so the
// ids assigned inside it can be taken back when it rolls back.
type newIDs struct {
	items   []*wishlist.Item
	options []pendingOption
}

type pendingOption struct {
	opt       *wishlist.Option
	itemID    any
	hadItemID bool
}

func trackNewIDs(items []*wishlist.Item) *newIDs {
	pending := &newIDs{}
	for _, item := range items {
		if item.ItemID() == 0 {
			pending.items = append(pending.items, item)
		}
		for _, opt := range item.Options() {
			if opt.OptionID() != 0 {
				continue
			}
			p := pendingOption{opt: opt, hadItemID: opt.Has("wishlist_item_id")}
			p.itemID = opt.Get("wishlist_item_id")
			pending.options = append(pending.options, p)
		}
	}
	return pending
}

func (p *newIDs) reset() {
	for _, item := range p.items {
		item.Unset(item.IDFieldName())
	}
	for _, o := range p.options {
		o.opt.Unset(o.opt.IDFieldName())
		if o.hadItemID {
			o.opt.Set("wishlist_item_id", o.itemID)
		} else {
			o.opt.Unset("wishlist_item_id")
		}
	}
}
