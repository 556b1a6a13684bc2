package repository

import (
	"context"

	"github.com/deppfellow/go-commerce/internal/reports"
	"github.com/deppfellow/go-commerce/internal/server"
	"github.com/pkg/errors"
)

// ReportsRepository runs the report index statements.
type ReportsRepository struct {
	server *server.Server
}

func NewReportsRepository(s *server.Server) *ReportsRepository {
	return &ReportsRepository{server: s}
}

// MergeVisitorProductIndex upserts data into table, matching existing rows
// on matchFields.
func (r *ReportsRepository) MergeVisitorProductIndex(ctx context.Context, table string, data map[string]any, matchFields []string) error {
	sql, args, err := reports.MergeStatement(table, data, matchFields)
	if err != nil {
		return err
	}
	_, err = r.server.DB.Pool.Exec(ctx, sql, args...)
	return errors.Wrapf(err, "merge into %s", table)
}

// UpdateReportRatingPos recomputes rating positions of aggregationTable
// from mainTable for period.
func (r *ReportsRepository) UpdateReportRatingPos(ctx context.Context, period reports.Period, column, mainTable, aggregationTable string) error {
	sql, args, err := reports.RatingPosStatement(period, column, mainTable, aggregationTable)
	if err != nil {
		return err
	}
	_, err = r.server.DB.Pool.Exec(ctx, sql, args...)
	return errors.Wrapf(err, "update rating positions of %s", aggregationTable)
}

// RefreshRatings updates the rating positions of every report target for
// period.
func (r *ReportsRepository) RefreshRatings(ctx context.Context, period reports.Period) error {
	for _, target := range reports.Targets {
		table, ok := target.Tables[period]
		if !ok {
			return errors.Wrapf(reports.ErrUnknownPeriod, "%s has no %s table", target.Name, period)
		}
		if err := r.UpdateReportRatingPos(ctx, period, target.Column, target.MainTable, table); err != nil {
			return err
		}
	}
	return nil
}
