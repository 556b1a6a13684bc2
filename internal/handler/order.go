package handler

import (
	"github.com/deppfellow/go-commerce/internal/lib/flash"
	"github.com/deppfellow/go-commerce/internal/middleware"
	"github.com/deppfellow/go-commerce/internal/order"
	"github.com/deppfellow/go-commerce/internal/server"
	"github.com/deppfellow/go-commerce/internal/service"
	"github.com/deppfellow/go-commerce/internal/validation"
	"github.com/labstack/echo/v4"
)

// OrderSessionRequest picks the buyer, store and currency of the order
// being created. Zero values keep the current choice.
type OrderSessionRequest struct {
	CustomerID      int64  `query:"customer_id" json:"customer_id" validate:"gte=0"`
	CustomerIsGuest bool   `query:"customer_is_guest" json:"customer_is_guest"`
	StoreID         int64  `query:"store_id" json:"store_id" validate:"gte=0"`
	CurrencyID      string `query:"currency_id" json:"currency_id" validate:"omitempty,len=3"`
}

func (r *OrderSessionRequest) Validate() error {
	return validation.Struct(r)
}

func (r *OrderSessionRequest) params() order.InitParams {
	return order.InitParams{
		CustomerID:      r.CustomerID,
		CustomerIsGuest: r.CustomerIsGuest,
		StoreID:         r.StoreID,
		CurrencyID:      r.CurrencyID,
	}
}

// OrderDataRequest is an order create form post. "item" maps product ids
// to buy requests, or quote item ids to changes with update_items.
type OrderDataRequest struct {
	OrderSessionRequest

	Order       map[string]any           `json:"order"`
	AddProduct  int64                    `json:"add_product" validate:"gte=0"`
	BuyRequest  map[string]any           `json:"buy_request"`
	Items       map[int64]map[string]any `json:"item"`
	UpdateItems bool                     `json:"update_items"`
	RemoveItem  int64                    `json:"remove_item" validate:"gte=0"`
	RemoveFrom  string                   `json:"from"`
	Payment     map[string]any           `json:"payment"`
}

func (r *OrderDataRequest) Validate() error {
	return validation.Struct(r)
}

func (r *OrderDataRequest) input() service.OrderDataInput {
	return service.OrderDataInput{
		Init:        r.params(),
		Order:       r.Order,
		AddProduct:  r.AddProduct,
		BuyRequest:  r.BuyRequest,
		Items:       r.Items,
		UpdateItems: r.UpdateItems,
		RemoveItem:  r.RemoveItem,
		RemoveFrom:  r.RemoveFrom,
		Payment:     r.Payment,
	}
}

type ReorderRequest struct {
	OrderID int64 `param:"order" json:"-" validate:"required,gt=0"`
}

func (r *ReorderRequest) Validate() error {
	return validation.Struct(r)
}

type OrderCreateHandler struct {
	Handler
	orders *service.OrderService
}

func NewOrderCreateHandler(s *server.Server, orders *service.OrderService) *OrderCreateHandler {
	return &OrderCreateHandler{Handler: NewHandler(s), orders: orders}
}

func (h *OrderCreateHandler) Start(c echo.Context, req *OrderSessionRequest) (*flash.Redirect, error) {
	return h.orders.Start(c.Request().Context(), middleware.GetSessionID(c), req.CustomerID)
}

func (h *OrderCreateHandler) Index(c echo.Context, req *OrderSessionRequest) (*service.QuoteView, error) {
	return h.orders.Index(c.Request().Context(), middleware.GetSessionID(c), req.params())
}

func (h *OrderCreateHandler) ProcessData(c echo.Context, req *OrderDataRequest) (*service.QuoteView, error) {
	return h.orders.ProcessData(c.Request().Context(), middleware.GetSessionID(c), req.input())
}

func (h *OrderCreateHandler) AddConfigured(c echo.Context, req *OrderDataRequest) (*service.ConfiguredResult, error) {
	return h.orders.AddConfigured(c.Request().Context(), middleware.GetSessionID(c), req.input())
}

func (h *OrderCreateHandler) Reorder(c echo.Context, req *ReorderRequest) (*flash.Redirect, error) {
	return h.orders.Reorder(c.Request().Context(), middleware.GetSessionID(c), req.OrderID)
}

func (h *OrderCreateHandler) Cancel(c echo.Context, _ *EmptyRequest) (*flash.Redirect, error) {
	return h.orders.Cancel(c.Request().Context(), middleware.GetSessionID(c))
}

func (h *OrderCreateHandler) Save(c echo.Context, req *OrderDataRequest) (*flash.Redirect, error) {
	return h.orders.Save(c.Request().Context(), middleware.GetSessionID(c), req.input())
}
