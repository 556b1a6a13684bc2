package handler

import (
	"github.com/deppfellow/go-commerce/internal/server"
	"github.com/deppfellow/go-commerce/internal/service"
	"github.com/deppfellow/go-commerce/internal/validation"
	"github.com/labstack/echo/v4"
)

type WishlistItemRequest struct {
	WishlistID int64 `param:"wishlist" json:"-" validate:"required,gt=0"`
	ItemID     int64 `param:"item" json:"-" validate:"required,gt=0"`
}

func (r *WishlistItemRequest) Validate() error {
	return validation.Struct(r)
}

// AddWishlistItemRequest adds a product. BuyRequest is the configuration
// the product was chosen with; its "options" entry maps custom option
// ids to values.
type AddWishlistItemRequest struct {
	WishlistID int64          `param:"wishlist" json:"-" validate:"required,gt=0"`
	ProductID  int64          `json:"product_id" validate:"required,gt=0"`
	StoreID    int64          `json:"store_id" validate:"gte=0"`
	Qty        float64        `json:"qty" validate:"gte=0"`
	BuyRequest map[string]any `json:"buy_request"`
}

func (r *AddWishlistItemRequest) Validate() error {
	return validation.Struct(r)
}

type MoveToCartRequest struct {
	WishlistID int64 `param:"wishlist" json:"-" validate:"required,gt=0"`
	ItemID     int64 `param:"item" json:"-" validate:"required,gt=0"`
	Remove     bool  `json:"remove"`
}

func (r *MoveToCartRequest) Validate() error {
	return validation.Struct(r)
}

type WishlistHandler struct {
	Handler
	wishlists *service.WishlistService
}

func NewWishlistHandler(s *server.Server, wishlists *service.WishlistService) *WishlistHandler {
	return &WishlistHandler{Handler: NewHandler(s), wishlists: wishlists}
}

func (h *WishlistHandler) GetItem(c echo.Context, req *WishlistItemRequest) (*service.ItemView, error) {
	return h.wishlists.GetItem(c.Request().Context(), req.WishlistID, req.ItemID)
}

func (h *WishlistHandler) AddItem(c echo.Context, req *AddWishlistItemRequest) (*service.ItemView, error) {
	return h.wishlists.AddItem(c.Request().Context(), req.WishlistID, service.AddItemInput{
		ProductID:  req.ProductID,
		StoreID:    req.StoreID,
		Qty:        req.Qty,
		BuyRequest: req.BuyRequest,
	})
}

func (h *WishlistHandler) MoveToCart(c echo.Context, req *MoveToCartRequest) (*service.CartResult, error) {
	return h.wishlists.MoveToCart(c.Request().Context(), req.WishlistID, req.ItemID, req.Remove)
}
