package reports

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeStatement(t *testing.T) {
	sql, args, err := MergeStatement("report_viewed_product_index", map[string]any{
		"visitor_id": int64(7),
		"product_id": int64(5),
		"store_id":   int64(1),
	}, []string{"visitor_id", "product_id"})
	require.NoError(t, err)

	assert.Equal(t,
		`INSERT INTO "report_viewed_product_index" ("product_id", "store_id", "visitor_id") VALUES ($1, $2, $3) `+
			`ON CONFLICT ("visitor_id", "product_id") DO UPDATE SET "store_id" = EXCLUDED."store_id"`,
		sql)
	assert.Equal(t, []any{int64(5), int64(1), int64(7)}, args)
}

func TestMergeStatement_OnlyMatchFields(t *testing.T) {
	sql, _, err := MergeStatement("report_viewed_product_index",
		map[string]any{"customer_id": 1, "product_id": 2},
		[]string{"customer_id", "product_id"})
	require.NoError(t, err)
	assert.Contains(t, sql, "DO NOTHING")
}

func TestMergeStatement_Errors(t *testing.T) {
	_, _, err := MergeStatement("t", nil, []string{"a"})
	assert.ErrorIs(t, err, ErrEmptyData)

	_, _, err = MergeStatement("t", map[string]any{"a": 1}, nil)
	assert.ErrorIs(t, err, ErrNoMatchFields)

	_, _, err = MergeStatement("t; drop table x", map[string]any{"a": 1}, []string{"a"})
	assert.Error(t, err)

	_, _, err = MergeStatement("t", map[string]any{"a": 1}, []string{"b"})
	assert.Error(t, err)
}

func TestRatingPosStatement_Bestsellers(t *testing.T) {
	sql, args, err := RatingPosStatement(PeriodMonth, ColumnQtyOrdered,
		"sales_bestsellers_aggregated_daily", "sales_bestsellers_aggregated_monthly")
	require.NoError(t, err)

	assert.Equal(t,
		`INSERT INTO "sales_bestsellers_aggregated_monthly" `+
			`(period, store_id, product_id, product_name, product_price, product_type_id, "qty_ordered", rating_pos) `+
			`SELECT r.period, r.store_id, r.product_id, r.product_name, r.product_price, r.product_type_id, r.total_qty, `+
			`ROW_NUMBER() OVER (PARTITION BY r.store_id, r.period ORDER BY CASE WHEN r.product_type_id = ANY($1) THEN 1 ELSE 0 END, r.total_qty DESC, r.product_id) AS rating_pos `+
			`FROM (SELECT date_trunc('month', t.period)::date AS period, t.store_id, t.product_id, `+
			`MAX(t.product_name) AS product_name, MAX(t.product_price) AS product_price, `+
			`MAX(t.product_type_id) AS product_type_id, SUM(t."qty_ordered") AS total_qty `+
			`FROM "sales_bestsellers_aggregated_daily" AS t `+
			`GROUP BY t.store_id, date_trunc('month', t.period)::date, t.product_id) AS r `+
			`ON CONFLICT (period, store_id, product_id) DO UPDATE SET `+
			`product_name = EXCLUDED.product_name, product_price = EXCLUDED.product_price, `+
			`product_type_id = EXCLUDED.product_type_id, "qty_ordered" = EXCLUDED."qty_ordered", `+
			`rating_pos = EXCLUDED.rating_pos`,
		sql)
	assert.Equal(t, []any{CompositeProductTypes}, args)
}

func TestRatingPosStatement_Views(t *testing.T) {
	sql, args, err := RatingPosStatement(PeriodDay, "views_num",
		"report_viewed_product_aggregated_daily", "report_viewed_product_aggregated_daily")
	require.NoError(t, err)

	assert.Empty(t, args)
	assert.NotContains(t, sql, "product_type_id")
	assert.Contains(t, sql, "SELECT t.period AS period")
	assert.Contains(t, sql, "GROUP BY t.store_id, t.period, t.product_id")
	assert.Contains(t, sql, "ORDER BY r.total_qty DESC, r.product_id")
}

func TestRatingPosStatement_Year(t *testing.T) {
	sql, _, err := RatingPosStatement(PeriodYear, "views_num", "a", "b")
	require.NoError(t, err)
	assert.Contains(t, sql, "date_trunc('year', t.period)::date AS period")
}

func TestRatingPosStatement_Errors(t *testing.T) {
	_, _, err := RatingPosStatement("week", "views_num", "a", "b")
	assert.ErrorIs(t, err, ErrUnknownPeriod)

	_, _, err = RatingPosStatement(PeriodDay, "views_num; --", "a", "b")
	assert.Error(t, err)
}

func TestParsePeriod(t *testing.T) {
	p, err := ParsePeriod(" Month ")
	require.NoError(t, err)
	assert.Equal(t, PeriodMonth, p)

	_, err = ParsePeriod("quarter")
	assert.ErrorIs(t, err, ErrUnknownPeriod)
}

func TestTargets(t *testing.T) {
	for _, target := range Targets {
		for _, p := range Periods {
			table, ok := target.Tables[p]
			require.True(t, ok, "%s %s", target.Name, p)

			_, _, err := RatingPosStatement(p, target.Column, target.MainTable, table)
			assert.NoError(t, err)
		}
	}
}
