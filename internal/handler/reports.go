package handler

import (
	"github.com/deppfellow/go-commerce/internal/lib/flash"
	"github.com/deppfellow/go-commerce/internal/middleware"
	"github.com/deppfellow/go-commerce/internal/reports"
	"github.com/deppfellow/go-commerce/internal/server"
	"github.com/deppfellow/go-commerce/internal/service"
	"github.com/deppfellow/go-commerce/internal/validation"
	"github.com/labstack/echo/v4"
)

// RefreshRatingsRequest names the periods to refresh; none means all.
type RefreshRatingsRequest struct {
	Periods []string `json:"periods" validate:"dive,oneof=day month year"`
}

func (r *RefreshRatingsRequest) Validate() error {
	return validation.Struct(r)
}

// ProductViewRequest records a storefront product page view. Anonymous
// views are keyed by the visitor id.
type ProductViewRequest struct {
	ProductID  int64 `param:"product" json:"-" validate:"required,gt=0"`
	StoreID    int64 `json:"store_id" validate:"required,gt=0"`
	CustomerID int64 `json:"customer_id" validate:"gte=0"`
	VisitorID  int64 `json:"visitor_id" validate:"required_without=CustomerID,gte=0"`
}

func (r *ProductViewRequest) Validate() error {
	return validation.Struct(r)
}

type ReportsHandler struct {
	Handler
	reports *service.ReportsService
}

func NewReportsHandler(s *server.Server, reports *service.ReportsService) *ReportsHandler {
	return &ReportsHandler{Handler: NewHandler(s), reports: reports}
}

func (h *ReportsHandler) RefreshRatings(c echo.Context, req *RefreshRatingsRequest) (*flash.Redirect, error) {
	periods := make([]reports.Period, 0, len(req.Periods))
	for _, p := range req.Periods {
		period, err := reports.ParsePeriod(p)
		if err != nil {
			return nil, err
		}
		periods = append(periods, period)
	}
	return h.reports.RefreshRatings(c.Request().Context(), middleware.GetSessionID(c), periods)
}

func (h *ReportsHandler) RecordProductView(c echo.Context, req *ProductViewRequest) error {
	return h.reports.RecordProductView(c.Request().Context(), service.ProductView{
		ProductID:  req.ProductID,
		StoreID:    req.StoreID,
		CustomerID: req.CustomerID,
		VisitorID:  req.VisitorID,
	})
}
