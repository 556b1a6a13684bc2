// Package router builds the Echo instance.
//
// It registers the global middleware chain and maps each API route
// group to its handlers.
package router

import (
	"net/http"

	"github.com/deppfellow/go-commerce/internal/customer"
	"github.com/deppfellow/go-commerce/internal/handler"
	"github.com/deppfellow/go-commerce/internal/middleware"
	"github.com/deppfellow/go-commerce/internal/server"
	"github.com/labstack/echo/v4"
)

// NewRouter wires middleware and routes into a new Echo instance.
func NewRouter(s *server.Server, h *handler.Handlers) *echo.Echo {
	mw := middleware.NewMiddlewares(s)

	router := echo.New()
	router.HideBanner = true
	router.HTTPErrorHandler = mw.Global.GlobalErrorHandler

	// Order matters: the request id must exist before tracing and the
	// request logger read it.
	router.Use(
		mw.Global.Recover(),
		mw.Global.Secure(),
		middleware.RequestID(),
		mw.Tracing.NewRelicMiddleware(),
		mw.Tracing.EnhanceTracing(),
		mw.ContextEnhancer.EnhanceContext(),
		mw.Global.CORS(),
		mw.Global.RequestLogger(),
	)

	registerSystemRoutes(router, h)

	v1 := router.Group("/api/v1")
	registerAdminRoutes(v1.Group("/admin", mw.Auth.RequireAuth), h)
	registerWishlistRoutes(v1.Group("/wishlists", mw.Auth.RequireAuth), h)
	registerCatalogRoutes(v1.Group("/catalog"), h, mw)

	return router
}

func registerAdminRoutes(admin *echo.Group, h *handler.Handlers) {
	tax := admin.Group("/tax/rates")
	tax.POST("", handler.Handle(h.Tax.Handler, h.Tax.SaveRate, http.StatusOK, handler.Request[handler.SaveTaxRateRequest]()))
	tax.GET("/:rate", handler.Handle(h.Tax.Handler, h.Tax.EditRate, http.StatusOK, handler.Request[handler.TaxRateRequest]()))
	tax.DELETE("/:rate", handler.Handle(h.Tax.Handler, h.Tax.DeleteRate, http.StatusOK, handler.Request[handler.TaxRateRequest]()))

	customers := admin.Group("/customers")
	for path, action := range map[string]customer.Action{
		"/mass-delete":      customer.ActionDelete,
		"/mass-subscribe":   customer.ActionSubscribe,
		"/mass-unsubscribe": customer.ActionUnsubscribe,
	} {
		customers.POST(path, handler.Handle(h.Customer.Handler, h.Customer.MassAction(action), http.StatusOK, handler.Request[handler.MassActionRequest]()))
	}
	customers.POST("/mass-assign-group", handler.Handle(h.Customer.Handler, h.Customer.MassAssignGroup, http.StatusOK, handler.Request[handler.MassAssignGroupRequest]()))
	customers.POST("", handler.Handle(h.Customer.Handler, h.Customer.SaveCustomer, http.StatusOK, handler.Request[handler.SaveCustomerRequest]()))
	customers.POST("/validate", handler.Handle(h.Customer.Handler, h.Customer.ValidateCustomer, http.StatusOK, handler.Request[handler.ValidateCustomerRequest]()))
	customers.DELETE("/:customer", handler.Handle(h.Customer.Handler, h.Customer.DeleteCustomer, http.StatusOK, handler.Request[handler.CustomerRequest]()))

	attributes := admin.Group("/eav/attributes")
	attributes.POST("", handler.Handle(h.Attribute.Handler, h.Attribute.SaveAttribute, http.StatusOK, handler.Request[handler.SaveAttributeRequest]()))
	attributes.GET("/:attribute", handler.Handle(h.Attribute.Handler, h.Attribute.GetAttribute, http.StatusOK, handler.Request[handler.GetAttributeRequest]()))

	admin.POST("/reports/rating", handler.Handle(h.Reports.Handler, h.Reports.RefreshRatings, http.StatusOK, handler.Request[handler.RefreshRatingsRequest]()))

	admin.GET("/messages", handler.Handle(h.Messages.Handler, h.Messages.Pop, http.StatusOK, handler.Request[handler.EmptyRequest]()))

	orders := admin.Group("/sales/order-create")
	orders.GET("", handler.Handle(h.Order.Handler, h.Order.Index, http.StatusOK, handler.Request[handler.OrderSessionRequest]()))
	orders.POST("/start", handler.Handle(h.Order.Handler, h.Order.Start, http.StatusOK, handler.Request[handler.OrderSessionRequest]()))
	orders.POST("/process", handler.Handle(h.Order.Handler, h.Order.ProcessData, http.StatusOK, handler.Request[handler.OrderDataRequest]()))
	orders.POST("/add-configured", handler.Handle(h.Order.Handler, h.Order.AddConfigured, http.StatusOK, handler.Request[handler.OrderDataRequest]()))
	orders.POST("/reorder/:order", handler.Handle(h.Order.Handler, h.Order.Reorder, http.StatusOK, handler.Request[handler.ReorderRequest]()))
	orders.POST("/cancel", handler.Handle(h.Order.Handler, h.Order.Cancel, http.StatusOK, handler.Request[handler.EmptyRequest]()))
	orders.POST("/save", handler.Handle(h.Order.Handler, h.Order.Save, http.StatusOK, handler.Request[handler.OrderDataRequest]()))
}

func registerWishlistRoutes(wishlists *echo.Group, h *handler.Handlers) {
	wishlists.GET("/:wishlist/items/:item", handler.Handle(h.Wishlist.Handler, h.Wishlist.GetItem, http.StatusOK, handler.Request[handler.WishlistItemRequest]()))
	wishlists.POST("/:wishlist/items", handler.Handle(h.Wishlist.Handler, h.Wishlist.AddItem, http.StatusOK, handler.Request[handler.AddWishlistItemRequest]()))
	wishlists.POST("/:wishlist/items/:item/cart", handler.Handle(h.Wishlist.Handler, h.Wishlist.MoveToCart, http.StatusOK, handler.Request[handler.MoveToCartRequest]()))
}

func registerCatalogRoutes(catalog *echo.Group, h *handler.Handlers, mw *middleware.Middlewares) {
	catalog.POST("/products/:product/views",
		handler.HandleNoContent(h.Reports.Handler, h.Reports.RecordProductView, http.StatusNoContent, handler.Request[handler.ProductViewRequest]()),
		mw.RateLimit.Storefront(),
	)
}
