package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/deppfellow/go-commerce/internal/order"
	"github.com/deppfellow/go-commerce/internal/server"
	"github.com/deppfellow/go-commerce/internal/wishlist"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

const orderTable = "sales_order"

const orderColumns = `entity_id, increment_id, state, status, store_id, customer_id, customer_is_guest,
	customer_group_id, customer_email, order_currency_code, coupon_code, customer_note, payment_method,
	subtotal::text AS subtotal, grand_total::text AS grand_total, created_at`

// OrderRepository reads orders for reordering and writes the orders
// created from admin quotes.
type OrderRepository struct {
	server *server.Server
}

func NewOrderRepository(s *server.Server) *OrderRepository {
	return &OrderRepository{server: s}
}

// GetOrder loads the order with id and its items.
func (r *OrderRepository) GetOrder(ctx context.Context, id int64) (*order.Order, error) {
	data, err := collectOne(ctx, r.server.DB.Pool,
		`SELECT `+orderColumns+` FROM sales_order WHERE entity_id = $1`, id)
	if err != nil {
		return nil, wrapMissing(err, orderTable, "get order")
	}
	o := order.New(data)

	rows, err := collectAll(ctx, r.server.DB.Pool,
		`SELECT item_id, order_id, product_id, store_id, sku, name, qty_ordered::float8 AS qty_ordered,
			price::text AS price, buy_request
		FROM sales_order_item WHERE order_id = $1 ORDER BY item_id`, id)
	if err != nil {
		return nil, errors.Wrapf(err, "get items of order %d", id)
	}
	for _, row := range rows {
		o.Items = append(o.Items, order.NewItem(row))
	}
	return o, nil
}

// GetProduct loads the product with id as seen from storeID.
func (r *OrderRepository) GetProduct(ctx context.Context, id, storeID int64) (*wishlist.Product, error) {
	return getProduct(ctx, r.server.DB.Pool, id, storeID)
}

// CouponIsValid reports whether code names an active, unexpired coupon
// with uses left.
func (r *OrderRepository) CouponIsValid(ctx context.Context, code string) (bool, error) {
	var valid bool
	err := r.server.DB.Pool.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM salesrule_coupon
			WHERE code = $1 AND is_active
				AND (expires_at IS NULL OR expires_at > NOW())
				AND (usage_limit = 0 OR times_used < usage_limit)
		)`, code).Scan(&valid)
	if err != nil {
		return false, errors.Wrap(err, "check coupon")
	}
	return valid, nil
}

// CreateOrder places q: the order row, one row per quote item and a use
// of its coupon, all in one transaction.
func (r *OrderRepository) CreateOrder(ctx context.Context, q *order.Quote) (*order.Order, error) {
	var created *order.Order
	err := pgx.BeginFunc(ctx, r.server.DB.Pool, func(tx pgx.Tx) error {
		var seq int64
		if err := tx.QueryRow(ctx, `SELECT nextval('sales_order_increment_seq')`).Scan(&seq); err != nil {
			return errors.Wrap(err, "reserve increment id")
		}
		incrementID := fmt.Sprintf("%09d", seq)

		var customerID any
		if q.CustomerID != 0 && !q.CustomerIsGuest {
			customerID = q.CustomerID
		}
		var coupon any
		if q.CouponCode != "" {
			coupon = q.CouponCode
		}
		subtotal := q.Subtotal().String()

		var id int64
		err := tx.QueryRow(ctx,
			`INSERT INTO sales_order (increment_id, state, status, store_id, customer_id, customer_is_guest,
				customer_group_id, customer_email, order_currency_code, coupon_code, customer_note, payment_method,
				subtotal, grand_total, total_qty_ordered)
			VALUES (@increment_id, @state, 'pending', @store_id, @customer_id, @customer_is_guest,
				@customer_group_id, @customer_email, @currency, @coupon_code, @customer_note, @payment_method,
				@subtotal::numeric, @subtotal::numeric, @total_qty)
			RETURNING entity_id`,
			pgx.NamedArgs{
				"increment_id":      incrementID,
				"state":             order.StateNew,
				"store_id":          q.StoreID,
				"customer_id":       customerID,
				"customer_is_guest": q.CustomerIsGuest,
				"customer_group_id": q.CustomerGroupID,
				"customer_email":    q.Email,
				"currency":          q.CurrencyCode,
				"coupon_code":       coupon,
				"customer_note":     q.CustomerNote,
				"payment_method":    q.PaymentMethod(),
				"subtotal":          subtotal,
				"total_qty":         q.TotalQty(),
			}).Scan(&id)
		if err != nil {
			return errors.Wrap(err, "insert order")
		}

		batch := &pgx.Batch{}
		for _, item := range q.Items {
			buyRequest, err := json.Marshal(item.BuyRequest)
			if err != nil {
				return errors.Wrap(err, "encode buy request")
			}
			batch.Queue(
				`INSERT INTO sales_order_item (order_id, product_id, store_id, sku, name, qty_ordered, price, row_total, buy_request)
				VALUES ($1, $2, $3, $4, $5, $6, $7::numeric, $8::numeric, $9)`,
				id, item.ProductID, item.StoreID, item.SKU, item.Name, item.Qty,
				item.Price.String(), item.RowTotal().String(), string(buyRequest))
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return errors.Wrapf(err, "insert items of order %s", incrementID)
		}

		if q.CouponCode != "" {
			if _, err := tx.Exec(ctx,
				`UPDATE salesrule_coupon SET times_used = times_used + 1 WHERE code = $1`, q.CouponCode); err != nil {
				return errors.Wrap(err, "use coupon")
			}
		}

		created = order.New(map[string]any{
			order.IDField:  id,
			"increment_id": incrementID,
			"state":        order.StateNew,
			"subtotal":     subtotal,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}
