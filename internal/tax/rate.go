// Package tax holds the tax calculation rate model.
package tax

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/deppfellow/go-commerce/internal/dataobject"
	"github.com/deppfellow/go-commerce/internal/errs"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// IDField is the primary key of tax_calculation_rate.
const IDField = "tax_calculation_rate_id"

// Fields lists the persisted columns in table order.
var Fields = []string{
	IDField,
	"code",
	"tax_country_id",
	"tax_region_id",
	"tax_postcode",
	"rate",
	"zip_is_range",
	"zip_from",
	"zip_to",
}

var (
	maxRate = decimal.NewFromInt(100)

	// MaxPostcodeLength bounds tax_postcode, including the range dash.
	MaxPostcodeLength = 21
)

// Rate is a tax_calculation_rate row.
type Rate struct {
	*dataobject.Object
}

// NewRate wraps posted or loaded data.
func NewRate(data map[string]any) *Rate {
	obj := dataobject.FromMap(data)
	obj.SetIDFieldName(IDField)
	return &Rate{Object: obj}
}

// RateID returns the primary key, 0 for new rates.
func (r *Rate) RateID() int64 {
	return cast.ToInt64(r.ID())
}

func (r *Rate) Code() string {
	return strings.TrimSpace(cast.ToString(r.Get("code")))
}

func (r *Rate) CountryID() string {
	return strings.ToUpper(strings.TrimSpace(cast.ToString(r.Get("tax_country_id"))))
}

func (r *Rate) ZipIsRange() bool {
	return cast.ToBool(r.Get("zip_is_range"))
}

// Value returns the parsed rate percentage.
func (r *Rate) Value() (decimal.Decimal, error) {
	return decimal.NewFromString(strings.TrimSpace(cast.ToString(r.Get("rate"))))
}

// FillPostcodeFromRange sets tax_postcode to "from-to" for zip ranges
// that have no explicit postcode.
func (r *Rate) FillPostcodeFromRange() {
	if r.ZipIsRange() && !r.Has("tax_postcode") {
		r.Set("tax_postcode", fmt.Sprintf("%s-%s", dataobject.Stringify(r.Get("zip_from")), dataobject.Stringify(r.Get("zip_to"))))
	}
}

// Prepare validates the rate and normalizes it for storage.
func (r *Rate) Prepare() error {
	if r.Code() == "" || r.CountryID() == "" || dataobject.Stringify(r.Get("rate")) == "" {
		return errs.NewException("Please fill all required fields with valid information.")
	}

	value, err := r.Value()
	if err != nil {
		return errs.NewException("Rate Percent should be a positive number.")
	}
	if value.IsNegative() {
		return errs.NewException("Rate Percent should be a positive number.")
	}
	if value.GreaterThan(maxRate) {
		return errs.NewException("Rate Percent should not exceed 100.")
	}

	r.Set("code", r.Code())
	r.Set("tax_country_id", r.CountryID())
	r.Set("rate", value.String())
	r.Set("tax_region_id", cast.ToInt64(r.Get("tax_region_id")))

	if r.ZipIsRange() {
		from, fromErr := parseZip(r.Get("zip_from"))
		to, toErr := parseZip(r.Get("zip_to"))
		if fromErr != nil || toErr != nil || from < 0 || to < 0 {
			return errs.NewException("Zip code range must contain numbers only.")
		}
		if from > to {
			return errs.NewException("Range To should be equal or greater than Range From.")
		}
		r.Set("zip_from", from)
		r.Set("zip_to", to)
		r.Set("zip_is_range", true)
		r.Unset("tax_postcode")
		r.FillPostcodeFromRange()
	} else {
		r.Set("zip_is_range", false)
		r.Set("zip_from", nil)
		r.Set("zip_to", nil)
		postcode := strings.TrimSpace(dataobject.Stringify(r.Get("tax_postcode")))
		if postcode == "" {
			postcode = "*"
		}
		r.Set("tax_postcode", postcode)
	}

	if len(dataobject.Stringify(r.Get("tax_postcode"))) > MaxPostcodeLength {
		return errs.NewException("Maximum zip code length is %d.", MaxPostcodeLength)
	}

	return nil
}

// parseZip reads a zip bound in base 10; "01001" is 1001, not octal.
func parseZip(v any) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(dataobject.Stringify(v)), 10, 64)
}
