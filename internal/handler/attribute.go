package handler

import (
	"github.com/deppfellow/go-commerce/internal/eav"
	"github.com/deppfellow/go-commerce/internal/lib/flash"
	"github.com/deppfellow/go-commerce/internal/middleware"
	"github.com/deppfellow/go-commerce/internal/server"
	"github.com/deppfellow/go-commerce/internal/service"
	"github.com/deppfellow/go-commerce/internal/validation"
	"github.com/labstack/echo/v4"
)

// SaveAttributeRequest is the attribute form. Labels, when sent, replace
// the per-store labels and are keyed by store id.
type SaveAttributeRequest struct {
	Attribute map[string]any   `json:"attribute" validate:"required"`
	Labels    map[int64]string `json:"labels"`
}

func (r *SaveAttributeRequest) Validate() error {
	return validation.Struct(r)
}

type GetAttributeRequest struct {
	ID      int64 `param:"attribute" json:"-" validate:"required,gt=0"`
	StoreID int64 `query:"store" validate:"gte=0"`
}

func (r *GetAttributeRequest) Validate() error {
	return validation.Struct(r)
}

type AttributeHandler struct {
	Handler
	attributes *service.AttributeService
}

func NewAttributeHandler(s *server.Server, attributes *service.AttributeService) *AttributeHandler {
	return &AttributeHandler{Handler: NewHandler(s), attributes: attributes}
}

func (h *AttributeHandler) SaveAttribute(c echo.Context, req *SaveAttributeRequest) (*flash.Redirect, error) {
	return h.attributes.SaveAttribute(c.Request().Context(), middleware.GetSessionID(c), req.Attribute, req.Labels)
}

func (h *AttributeHandler) GetAttribute(c echo.Context, req *GetAttributeRequest) (*eav.Attribute, error) {
	return h.attributes.GetAttribute(c.Request().Context(), req.ID, req.StoreID)
}
