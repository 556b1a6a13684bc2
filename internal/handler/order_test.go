package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/deppfellow/go-commerce/internal/config"
	"github.com/deppfellow/go-commerce/internal/customer"
	"github.com/deppfellow/go-commerce/internal/lib/flash"
	"github.com/deppfellow/go-commerce/internal/lib/quote"
	"github.com/deppfellow/go-commerce/internal/middleware"
	"github.com/deppfellow/go-commerce/internal/order"
	"github.com/deppfellow/go-commerce/internal/server"
	"github.com/deppfellow/go-commerce/internal/service"
	"github.com/deppfellow/go-commerce/internal/wishlist"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
	pkgerrors "github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type orderStore struct{}

func (orderStore) GetOrder(_ context.Context, _ int64) (*order.Order, error) {
	return nil, pkgerrors.Wrap(pgx.ErrNoRows, "table:sales_order: get order")
}

func (orderStore) GetProduct(_ context.Context, id, _ int64) (*wishlist.Product, error) {
	if id != 5 {
		return nil, pkgerrors.Wrap(pgx.ErrNoRows, "table:catalog_product_entity: get product")
	}
	return wishlist.NewProduct(map[string]any{
		"entity_id": id,
		"type_id":   wishlist.TypeSimple,
		"status":    wishlist.StatusEnabled,
		"price":     "4.50",
	}), nil
}

func (orderStore) CouponIsValid(_ context.Context, _ string) (bool, error) {
	return false, nil
}

func (orderStore) CreateOrder(_ context.Context, _ *order.Quote) (*order.Order, error) {
	return order.New(map[string]any{order.IDField: int64(1)}), nil
}

type customerLookup struct{}

func (customerLookup) GetCustomer(_ context.Context, id int64) (*customer.Customer, error) {
	return nil, customer.NotFoundError(id)
}

type orderEnv struct {
	*testEnv
	quotes *quote.Store
}

func newOrderEnv(t *testing.T) *orderEnv {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	logger := zerolog.Nop()
	s := &server.Server{
		Config: &config.Config{
			Primary: config.Primary{Env: "test"},
			Session: config.DefaultSessionConfig(),
		},
		Logger: &logger,
		Flash:  flash.NewStore(client, time.Minute),
		Quotes: quote.NewStore(client, time.Hour),
	}

	env := &orderEnv{testEnv: &testEnv{echo: echo.New(), flash: s.Flash}, quotes: s.Quotes}
	env.echo.HTTPErrorHandler = middleware.NewGlobalMiddlewares(s).GlobalErrorHandler

	h := NewOrderCreateHandler(s, service.NewOrderService(orderStore{}, customerLookup{}, s.Quotes, s.Flash, &logger))
	orders := env.echo.Group("/admin/sales/order-create", func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(middleware.SessionIDKey, testSession)
			return next(c)
		}
	})
	orders.GET("", Handle(h.Handler, h.Index, http.StatusOK, Request[OrderSessionRequest]()))
	orders.POST("/process", Handle(h.Handler, h.ProcessData, http.StatusOK, Request[OrderDataRequest]()))
	orders.POST("/reorder/:order", Handle(h.Handler, h.Reorder, http.StatusOK, Request[ReorderRequest]()))
	orders.POST("/cancel", Handle(h.Handler, h.Cancel, http.StatusOK, Request[EmptyRequest]()))

	return env
}

func TestOrderCreateHandler_ProcessData(t *testing.T) {
	env := newOrderEnv(t)

	rec := env.do(t, http.MethodPost, "/admin/sales/order-create/process",
		`{"customer_is_guest":true,"store_id":1,"item":{"5":{"qty":2}}}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	view := decode[service.QuoteView](t, rec)
	require.Len(t, view.Quote.Items, 1)
	assert.Equal(t, int64(5), view.Quote.Items[0].ProductID)
	assert.Equal(t, "9", view.Subtotal.String())

	stored, err := env.quotes.Get(context.Background(), testSession)
	require.NoError(t, err)
	assert.True(t, stored.CustomerIsGuest)
	assert.Len(t, stored.Items, 1)
}

func TestOrderCreateHandler_Index(t *testing.T) {
	t.Run("query picks the session", func(t *testing.T) {
		env := newOrderEnv(t)

		rec := env.do(t, http.MethodGet, "/admin/sales/order-create?store_id=2&currency_id=EUR", "")

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		view := decode[service.QuoteView](t, rec)
		assert.Equal(t, int64(2), view.Quote.StoreID)
		assert.Equal(t, "EUR", view.Quote.CurrencyCode)
	})

	t.Run("bad currency is a bad request", func(t *testing.T) {
		env := newOrderEnv(t)

		rec := env.do(t, http.MethodGet, "/admin/sales/order-create?currency_id=EURO", "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestOrderCreateHandler_ReorderAndCancel(t *testing.T) {
	env := newOrderEnv(t)

	rec := env.do(t, http.MethodPost, "/admin/sales/order-create/reorder/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/admin/sales/order-create/reorder/7", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, service.OrdersPath, decode[flash.Redirect](t, rec).Redirect)

	rec = env.do(t, http.MethodPost, "/admin/sales/order-create/cancel", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, service.OrderCreatePath, decode[flash.Redirect](t, rec).Redirect)
}
