// Package reports builds the PostgreSQL statements behind the report
// indexes: the viewed-product index upsert and the rating position
// refresh of the aggregated report tables.
package reports

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

// Period is the granularity of an aggregated report table.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

// Periods lists every period in refresh order.
var Periods = []Period{PeriodDay, PeriodMonth, PeriodYear}

// ColumnQtyOrdered is the measured column of the bestsellers report. When
// rating it, composite products rank after simple ones.
const ColumnQtyOrdered = "qty_ordered"

// CompositeProductTypes are ranked last when rating qty_ordered.
var CompositeProductTypes = []string{"grouped", "configurable", "bundle"}

var (
	ErrUnknownPeriod = errors.New("reports: unknown period")
	ErrEmptyData     = errors.New("reports: no data to merge")
	ErrNoMatchFields = errors.New("reports: no match fields")

	identifierPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)
)

// ParsePeriod returns the Period named s.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case PeriodDay, PeriodMonth, PeriodYear:
		return p, nil
	}
	return "", errors.Wrapf(ErrUnknownPeriod, "%q", s)
}

// periodExpr truncates t.period to the first day of the period.
func periodExpr(p Period) (string, error) {
	switch p {
	case PeriodDay:
		return "t.period", nil
	case PeriodMonth:
		return "date_trunc('month', t.period)::date", nil
	case PeriodYear:
		return "date_trunc('year', t.period)::date", nil
	}
	return "", errors.Wrapf(ErrUnknownPeriod, "%q", string(p))
}

func ident(name string) (string, error) {
	if !identifierPattern.MatchString(name) {
		return "", errors.Errorf("reports: invalid identifier %q", name)
	}
	return pgx.Identifier{name}.Sanitize(), nil
}

func idents(names []string) ([]string, error) {
	out := make([]string, len(names))
	for i, n := range names {
		q, err := ident(n)
		if err != nil {
			return nil, err
		}
		out[i] = q
	}
	return out, nil
}

// MergeStatement builds an upsert of data into table. A row conflicting on
// matchFields has every other column of data overwritten.
func MergeStatement(table string, data map[string]any, matchFields []string) (string, []any, error) {
	if len(data) == 0 {
		return "", nil, ErrEmptyData
	}
	if len(matchFields) == 0 {
		return "", nil, ErrNoMatchFields
	}

	qTable, err := ident(table)
	if err != nil {
		return "", nil, err
	}

	columns := make([]string, 0, len(data))
	for k := range data {
		columns = append(columns, k)
	}
	sort.Strings(columns)

	qColumns, err := idents(columns)
	if err != nil {
		return "", nil, err
	}
	qMatch, err := idents(matchFields)
	if err != nil {
		return "", nil, err
	}

	match := make(map[string]bool, len(matchFields))
	for _, f := range matchFields {
		if _, ok := data[f]; !ok {
			return "", nil, errors.Errorf("reports: match field %q missing from data", f)
		}
		match[f] = true
	}

	args := make([]any, len(columns))
	placeholders := make([]string, len(columns))
	var updates []string
	for i, c := range columns {
		args[i] = data[c]
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		if !match[c] {
			updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", qColumns[i], qColumns[i]))
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s)",
		qTable, strings.Join(qColumns, ", "), strings.Join(placeholders, ", "), strings.Join(qMatch, ", "))
	if len(updates) == 0 {
		b.WriteString(" DO NOTHING")
	} else {
		b.WriteString(" DO UPDATE SET ")
		b.WriteString(strings.Join(updates, ", "))
	}
	return b.String(), args, nil
}

// RatingPosStatement builds the statement that sums column per store,
// period and product from mainTable and upserts the totals with their
// rating position into aggregationTable. Positions restart at 1 for each
// store and period, highest total first.
func RatingPosStatement(period Period, column, mainTable, aggregationTable string) (string, []any, error) {
	pExpr, err := periodExpr(period)
	if err != nil {
		return "", nil, err
	}
	qColumn, err := ident(column)
	if err != nil {
		return "", nil, err
	}
	qMain, err := ident(mainTable)
	if err != nil {
		return "", nil, err
	}
	qAgg, err := ident(aggregationTable)
	if err != nil {
		return "", nil, err
	}

	withType := column == ColumnQtyOrdered

	inner := []string{
		pExpr + " AS period",
		"t.store_id",
		"t.product_id",
		"MAX(t.product_name) AS product_name",
		"MAX(t.product_price) AS product_price",
	}
	outer := []string{"r.period", "r.store_id", "r.product_id", "r.product_name", "r.product_price"}
	insert := []string{"period", "store_id", "product_id", "product_name", "product_price"}
	if withType {
		inner = append(inner, "MAX(t.product_type_id) AS product_type_id")
		outer = append(outer, "r.product_type_id")
		insert = append(insert, "product_type_id")
	}
	inner = append(inner, fmt.Sprintf("SUM(t.%s) AS total_qty", qColumn))
	outer = append(outer, "r.total_qty")
	insert = append(insert, qColumn, "rating_pos")

	order := "r.total_qty DESC, r.product_id"
	var args []any
	if withType {
		order = "CASE WHEN r.product_type_id = ANY($1) THEN 1 ELSE 0 END, " + order
		args = append(args, CompositeProductTypes)
	}
	outer = append(outer, "ROW_NUMBER() OVER (PARTITION BY r.store_id, r.period ORDER BY "+order+") AS rating_pos")

	var updates []string
	for _, c := range insert[3:] {
		updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", c, c))
	}

	sql := fmt.Sprintf(
		"INSERT INTO %s (%s) SELECT %s FROM (SELECT %s FROM %s AS t GROUP BY t.store_id, %s, t.product_id) AS r "+
			"ON CONFLICT (period, store_id, product_id) DO UPDATE SET %s",
		qAgg,
		strings.Join(insert, ", "),
		strings.Join(outer, ", "),
		strings.Join(inner, ", "),
		qMain,
		pExpr,
		strings.Join(updates, ", "),
	)
	return sql, args, nil
}

// Target names one report whose rating positions are refreshed: its
// measured column, the daily table it is summed from and the table per
// period it is written to.
type Target struct {
	Name      string
	Column    string
	MainTable string
	Tables    map[Period]string
}

// Targets are the reports refreshed by the rating job.
var Targets = []Target{
	{
		Name:      "bestsellers",
		Column:    ColumnQtyOrdered,
		MainTable: "sales_bestsellers_aggregated_daily",
		Tables: map[Period]string{
			PeriodDay:   "sales_bestsellers_aggregated_daily",
			PeriodMonth: "sales_bestsellers_aggregated_monthly",
			PeriodYear:  "sales_bestsellers_aggregated_yearly",
		},
	},
	{
		Name:      "viewed",
		Column:    "views_num",
		MainTable: "report_viewed_product_aggregated_daily",
		Tables: map[Period]string{
			PeriodDay:   "report_viewed_product_aggregated_daily",
			PeriodMonth: "report_viewed_product_aggregated_monthly",
			PeriodYear:  "report_viewed_product_aggregated_yearly",
		},
	},
}
