package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"sort"

	"github.com/deppfellow/go-commerce/internal/customer"
	"github.com/deppfellow/go-commerce/internal/errs"
	"github.com/deppfellow/go-commerce/internal/lib/flash"
	"github.com/deppfellow/go-commerce/internal/lib/quote"
	"github.com/deppfellow/go-commerce/internal/order"
	"github.com/deppfellow/go-commerce/internal/wishlist"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

const (
	// OrderCreatePath is the admin order creation page.
	OrderCreatePath = "/admin/sales/order-create"

	// OrdersPath is the admin order grid.
	OrdersPath = "/admin/sales/orders"
)

// OrderViewPath is the admin page of the order with id.
func OrderViewPath(id int64) string {
	return fmt.Sprintf("%s/%d", OrdersPath, id)
}

// OrderStore reads orders and products and places orders.
type OrderStore interface {
	GetOrder(ctx context.Context, id int64) (*order.Order, error)
	GetProduct(ctx context.Context, id, storeID int64) (*wishlist.Product, error)
	CouponIsValid(ctx context.Context, code string) (bool, error)
	CreateOrder(ctx context.Context, q *order.Quote) (*order.Order, error)
}

// CustomerLookup loads the customer an order is created for.
type CustomerLookup interface {
	GetCustomer(ctx context.Context, id int64) (*customer.Customer, error)
}

type OrderService struct {
	orders    OrderStore
	customers CustomerLookup
	quotes    *quote.Store
	flash     *flash.Store
	logger    *zerolog.Logger
}

func NewOrderService(orders OrderStore, customers CustomerLookup, quotes *quote.Store, store *flash.Store, logger *zerolog.Logger) *OrderService {
	return &OrderService{orders: orders, customers: customers, quotes: quotes, flash: store, logger: logger}
}

// OrderDataInput is everything an order create request may carry. Only
// the parts that are set are applied.
type OrderDataInput struct {
	Init order.InitParams

	// Order is the "order" form: account, comment and coupon.
	Order map[string]any

	// AddProduct adds one product configured by BuyRequest.
	AddProduct int64
	BuyRequest map[string]any

	// Items maps product ids to buy requests to add, or quote item ids
	// to changes when UpdateItems is set.
	Items       map[int64]map[string]any
	UpdateItems bool

	// RemoveItem drops a quote item; RemoveFrom names where it lives.
	RemoveItem int64
	RemoveFrom string

	Payment map[string]any
}

// QuoteView is the order create page.
type QuoteView struct {
	Quote    *order.Quote    `json:"quote"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Messages []flash.Message `json:"messages"`
}

// initSession applies params and fills the buyer's email and group from
// the selected customer.
func (s *OrderService) initSession(ctx context.Context, q *order.Quote, params order.InitParams) error {
	q.Init(params)
	if q.CustomerID == 0 || q.CustomerIsGuest || q.Email != "" {
		return nil
	}

	c, err := s.customers.GetCustomer(ctx, q.CustomerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return customer.NotFoundError(q.CustomerID)
	}
	if err != nil {
		return err
	}
	q.Email = c.Email()
	q.CustomerGroupID = c.GroupID()
	return nil
}

// Start drops the session's quote and opens the create page for
// customerID.
func (s *OrderService) Start(ctx context.Context, session string, customerID int64) (*flash.Redirect, error) {
	if err := s.quotes.Clear(ctx, session); err != nil {
		return nil, err
	}
	path := OrderCreatePath
	if customerID != 0 {
		path = fmt.Sprintf("%s?customer_id=%d", OrderCreatePath, customerID)
	}
	return s.flash.Session(session).Redirect(path), nil
}

// Index applies params to the session's quote and returns the page.
func (s *OrderService) Index(ctx context.Context, session string, params order.InitParams) (*QuoteView, error) {
	q, err := s.quotes.Get(ctx, session)
	if err != nil {
		return nil, err
	}

	if err := s.initSession(ctx, q, params); err != nil {
		var ex *errs.Exception
		if !errors.As(err, &ex) {
			return nil, err
		}
		if err := s.flash.Session(session).AddError(ctx, ex.Message); err != nil {
			return nil, err
		}
	}
	if err := s.quotes.Save(ctx, session, q); err != nil {
		return nil, err
	}
	return s.view(ctx, session, q)
}

func (s *OrderService) view(ctx context.Context, session string, q *order.Quote) (*QuoteView, error) {
	messages, err := s.flash.Pop(ctx, session)
	if err != nil {
		return nil, err
	}
	return &QuoteView{Quote: q, Subtotal: q.Subtotal(), Messages: messages}, nil
}

// processActionData applies in to q and stores q. Items posted for
// adding are skipped when placing the order, as they are already on the
// quote. A posted coupon is applied and its outcome flashed.
func (s *OrderService) processActionData(ctx context.Context, sess *flash.Session, q *order.Quote, in OrderDataInput, placing bool) error {
	if in.Order != nil {
		q.ImportPostData(withoutReservedOrderID(in.Order))
	}

	if in.AddProduct != 0 {
		if err := s.addProduct(ctx, q, in.AddProduct, in.BuyRequest); err != nil {
			return err
		}
	}

	if len(in.Items) > 0 && !in.UpdateItems && !placing {
		ids := make([]int64, 0, len(in.Items))
		for id := range in.Items {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(a, b int) bool { return ids[a] < ids[b] })
		for _, id := range ids {
			if err := s.addProduct(ctx, q, id, in.Items[id]); err != nil {
				return err
			}
		}
	}

	if in.UpdateItems {
		q.UpdateItems(in.Items)
	}

	if in.RemoveItem != 0 && in.RemoveFrom != "" {
		if in.RemoveFrom != "quote" {
			return errs.NewException("Items cannot be removed from %s here.", in.RemoveFrom)
		}
		q.RemoveItem(in.RemoveItem)
	}

	if in.Payment != nil {
		q.AddPaymentData(in.Payment)
	}

	code, posted := order.CouponCode(in.Order)
	if posted {
		q.CouponCode = ""
		if code != "" {
			valid, err := s.orders.CouponIsValid(ctx, code)
			if err != nil {
				return err
			}
			if valid {
				q.CouponCode = code
			}
		}
	}

	if err := s.quotes.Save(ctx, sess.ID(), q); err != nil {
		return err
	}

	if code == "" {
		return nil
	}
	if q.CouponCode != code {
		return sess.AddError(ctx, fmt.Sprintf(`"%s" coupon code is not valid.`, html.EscapeString(code)))
	}
	return sess.AddSuccess(ctx, "The coupon code has been accepted.")
}

func (s *OrderService) addProduct(ctx context.Context, q *order.Quote, productID int64, buyRequest map[string]any) error {
	product, err := s.orders.GetProduct(ctx, productID, q.StoreID)
	if errors.Is(err, pgx.ErrNoRows) {
		return errs.NewException("Product with ID %d does not exist.", productID)
	}
	if err != nil {
		return err
	}
	if buyRequest == nil {
		buyRequest = map[string]any{}
	}
	return q.AddProduct(product, buyRequest)
}

// withoutReservedOrderID copies an order form without
// comment.reserved_order_id, which admins may not set.
func withoutReservedOrderID(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = v
	}
	if comment, ok := data["comment"].(map[string]any); ok {
		if _, has := comment["reserved_order_id"]; has {
			trimmed := make(map[string]any, len(comment))
			for k, v := range comment {
				if k != "reserved_order_id" {
					trimmed[k] = v
				}
			}
			out["comment"] = trimmed
		}
	}
	return out
}

// apply loads the session's quote and runs in against it. On failure the
// stored quote is left as it was.
func (s *OrderService) apply(ctx context.Context, sess *flash.Session, in OrderDataInput) (*order.Quote, error) {
	q, err := s.quotes.Get(ctx, sess.ID())
	if err != nil {
		return nil, err
	}
	if err := s.initSession(ctx, q, in.Init); err != nil {
		return nil, err
	}
	if err := s.processActionData(ctx, sess, q, in, false); err != nil {
		return nil, err
	}
	return q, nil
}

// ProcessData applies in to the session's quote and returns the page.
// Failures are flashed and the stored quote is kept unchanged.
func (s *OrderService) ProcessData(ctx context.Context, session string, in OrderDataInput) (*QuoteView, error) {
	sess := s.flash.Session(session)

	q, err := s.apply(ctx, sess, in)
	if err != nil {
		s.logger.Warn().Err(err).Msg("order create data not applied")

		if err := sess.AddError(ctx, userMessage(err, "An error occurred while updating the order.")); err != nil {
			return nil, err
		}
		if q, err = s.quotes.Get(ctx, session); err != nil {
			return nil, err
		}
	}
	return s.view(ctx, session, q)
}

// ConfiguredResult answers the product configuration popup.
type ConfiguredResult struct {
	OK      bool   `json:"ok,omitempty"`
	Error   bool   `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// AddConfigured adds a configured product to the session's quote.
func (s *OrderService) AddConfigured(ctx context.Context, session string, in OrderDataInput) (*ConfiguredResult, error) {
	if _, err := s.apply(ctx, s.flash.Session(session), in); err != nil {
		s.logger.Warn().Err(err).Int64("product_id", in.AddProduct).Msg("configured product not added")
		return &ConfiguredResult{Error: true, Message: userMessage(err, "An error occurred while adding the product.")}, nil
	}
	return &ConfiguredResult{OK: true}, nil
}

// Reorder starts a new quote from the order with id. A missing order
// sends the admin to the order grid; an order that cannot be reordered
// answers 404.
func (s *OrderService) Reorder(ctx context.Context, session string, id int64) (*flash.Redirect, error) {
	sess := s.flash.Session(session)
	if err := s.quotes.Clear(ctx, session); err != nil {
		return nil, err
	}

	o, err := s.orders.GetOrder(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return sess.Redirect(OrdersPath), nil
	}
	if err != nil {
		return nil, err
	}

	notReorderable := errs.NewNotFoundError("Order cannot be reordered", true, nil)
	if !o.CanReorder() {
		return nil, notReorderable
	}

	q := order.NewQuote()
	q.InitFromOrder(o)
	for _, item := range o.Items {
		product, err := s.orders.GetProduct(ctx, item.ProductID(), q.StoreID)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notReorderable
		}
		if err != nil {
			return nil, err
		}

		buyRequest := item.BuyRequest()
		buyRequest["qty"] = item.QtyOrdered()
		if err := q.AddProduct(product, buyRequest); err != nil {
			if err := sess.AddError(ctx, userMessage(err, "An error occurred while adding the product.")); err != nil {
				return nil, err
			}
		}
	}

	if err := s.quotes.Save(ctx, session, q); err != nil {
		return nil, err
	}
	return sess.Redirect(OrderCreatePath), nil
}

// Cancel drops the session's quote. A reorder goes back to the original
// order, anything else to a fresh create page.
func (s *OrderService) Cancel(ctx context.Context, session string) (*flash.Redirect, error) {
	sess := s.flash.Session(session)

	q, err := s.quotes.Get(ctx, session)
	if err != nil {
		return nil, err
	}
	if err := s.quotes.Clear(ctx, session); err != nil {
		return nil, err
	}

	if q.ReorderedID != 0 {
		return sess.Redirect(OrderViewPath(q.ReorderedID)), nil
	}
	return sess.Redirect(OrderCreatePath), nil
}

// Save applies in to the session's quote and places it.
//
// Admin-facing failures are flashed and send the admin back to the
// create page with the quote kept; unexpected ones are flashed as an
// order saving error.
func (s *OrderService) Save(ctx context.Context, session string, in OrderDataInput) (*flash.Redirect, error) {
	sess := s.flash.Session(session)

	created, err := s.place(ctx, sess, in)
	if err != nil {
		s.logger.Warn().Err(err).Msg("order not created")

		var invalid *order.InvalidError
		var ex *errs.Exception
		switch {
		case errors.As(err, &invalid):
			for _, p := range invalid.Problems {
				if err := sess.AddError(ctx, p); err != nil {
					return nil, err
				}
			}
		case errors.As(err, &ex):
			if ex.Message != "" {
				if err := sess.AddError(ctx, ex.Message); err != nil {
					return nil, err
				}
			}
		default:
			msg := fmt.Sprintf("Order saving error: %s", userMessage(err, "unexpected error"))
			if err := sess.AddError(ctx, msg); err != nil {
				return nil, err
			}
		}
		return sess.Redirect(OrderCreatePath), nil
	}

	s.logger.Info().
		Int64("order_id", created.OrderID()).
		Str("increment_id", created.IncrementID()).
		Msg("order created")

	if err := sess.AddSuccess(ctx, "The order has been created."); err != nil {
		return nil, err
	}
	return sess.Redirect(OrderViewPath(created.OrderID())), nil
}

func (s *OrderService) place(ctx context.Context, sess *flash.Session, in OrderDataInput) (*order.Order, error) {
	if comment, ok := in.Order["comment"].(map[string]any); ok {
		if reserved, has := comment["reserved_order_id"]; has && order.HasTags(cast.ToString(reserved)) {
			return nil, errs.NewException("Invalid order data.")
		}
	}

	q, err := s.quotes.Get(ctx, sess.ID())
	if err != nil {
		return nil, err
	}
	if err := s.initSession(ctx, q, in.Init); err != nil {
		return nil, err
	}
	if err := s.processActionData(ctx, sess, q, in, true); err != nil {
		return nil, err
	}

	if err := q.Validate(); err != nil {
		return nil, err
	}

	created, err := s.orders.CreateOrder(ctx, q)
	if err != nil {
		return nil, err
	}
	if err := s.quotes.Clear(ctx, sess.ID()); err != nil {
		return nil, err
	}
	return created, nil
}
