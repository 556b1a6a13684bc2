package repository

import (
	"context"

	"github.com/deppfellow/go-commerce/internal/server"
	"github.com/deppfellow/go-commerce/internal/tax"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

const taxRateTable = "tax_calculation_rate"

const taxRateColumns = `tax_calculation_rate_id, code, tax_country_id, tax_region_id, tax_postcode,
	rate::text AS rate, zip_is_range, zip_from, zip_to`

// TaxRateRepository stores tax_calculation_rate rows.
type TaxRateRepository struct {
	server *server.Server
}

func NewTaxRateRepository(s *server.Server) *TaxRateRepository {
	return &TaxRateRepository{server: s}
}

// GetRate loads the rate with id.
func (r *TaxRateRepository) GetRate(ctx context.Context, id int64) (*tax.Rate, error) {
	data, err := collectOne(ctx, r.server.DB.Pool,
		`SELECT `+taxRateColumns+` FROM tax_calculation_rate WHERE tax_calculation_rate_id = $1`, id)
	if err != nil {
		return nil, wrapMissing(err, taxRateTable, "get rate")
	}
	return tax.NewRate(data), nil
}

// SaveRate inserts a new rate or updates an existing one. New rates get
// their id set.
func (r *TaxRateRepository) SaveRate(ctx context.Context, rate *tax.Rate) error {
	cols := columnSet(tax.Fields[1:])
	args := pgx.NamedArgs{}
	for _, col := range cols {
		args[col] = rate.Get(col)
	}

	if rate.RateID() == 0 {
		var id int64
		err := r.server.DB.Pool.QueryRow(ctx,
			`INSERT INTO tax_calculation_rate (`+cols.names()+`) VALUES (`+cols.params()+`)
			RETURNING tax_calculation_rate_id`, args).Scan(&id)
		if err != nil {
			return errors.Wrap(err, "insert rate")
		}
		rate.SetID(id)
		return nil
	}

	args["id"] = rate.RateID()
	tag, err := r.server.DB.Pool.Exec(ctx,
		`UPDATE tax_calculation_rate SET `+cols.assignments()+` WHERE tax_calculation_rate_id = @id`, args)
	if err != nil {
		return errors.Wrap(err, "update rate")
	}
	if tag.RowsAffected() == 0 {
		return notFound(taxRateTable, "update rate %d", rate.RateID())
	}
	return nil
}

// DeleteRate removes the rate with id.
func (r *TaxRateRepository) DeleteRate(ctx context.Context, id int64) error {
	tag, err := r.server.DB.Pool.Exec(ctx,
		`DELETE FROM tax_calculation_rate WHERE tax_calculation_rate_id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "delete rate")
	}
	if tag.RowsAffected() == 0 {
		return notFound(taxRateTable, "delete rate %d", id)
	}
	return nil
}
