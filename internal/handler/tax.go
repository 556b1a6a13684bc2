package handler

import (
	"github.com/deppfellow/go-commerce/internal/lib/flash"
	"github.com/deppfellow/go-commerce/internal/middleware"
	"github.com/deppfellow/go-commerce/internal/server"
	"github.com/deppfellow/go-commerce/internal/service"
	"github.com/deppfellow/go-commerce/internal/validation"
	"github.com/labstack/echo/v4"
)

// SaveTaxRateRequest carries the rate form as posted. Field rules live
// in the rate model so failures come back as flash messages.
type SaveTaxRateRequest struct {
	Rate map[string]any `json:"rate" validate:"required"`
}

func (r *SaveTaxRateRequest) Validate() error {
	return validation.Struct(r)
}

type TaxRateRequest struct {
	ID int64 `param:"rate" json:"-" validate:"required,gt=0"`
}

func (r *TaxRateRequest) Validate() error {
	return validation.Struct(r)
}

type TaxHandler struct {
	Handler
	tax *service.TaxService
}

func NewTaxHandler(s *server.Server, tax *service.TaxService) *TaxHandler {
	return &TaxHandler{Handler: NewHandler(s), tax: tax}
}

func (h *TaxHandler) SaveRate(c echo.Context, req *SaveTaxRateRequest) (*flash.Redirect, error) {
	return h.tax.SaveRate(c.Request().Context(), middleware.GetSessionID(c), req.Rate, c.Request().Referer())
}

func (h *TaxHandler) DeleteRate(c echo.Context, req *TaxRateRequest) (*flash.Redirect, error) {
	return h.tax.DeleteRate(c.Request().Context(), middleware.GetSessionID(c), req.ID, c.Request().Referer())
}

// EditRate answers with the rate form, or with a redirect when the rate
// does not exist.
func (h *TaxHandler) EditRate(c echo.Context, req *TaxRateRequest) (any, error) {
	form, redirect, err := h.tax.EditRate(c.Request().Context(), middleware.GetSessionID(c), req.ID)
	if err != nil {
		return nil, err
	}
	if redirect != nil {
		return redirect, nil
	}
	return form, nil
}
