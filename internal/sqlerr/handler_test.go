package sqlerr

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/deppfellow/go-commerce/internal/errs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleError_UniqueViolation(t *testing.T) {
	err := errors.Wrap(&pgconn.PgError{
		Code:           "23505",
		Severity:       "ERROR",
		TableName:      "tax_calculation_rate",
		ConstraintName: "tax_calculation_rate_code_key",
	}, "save rate")

	var httpErr *errs.HTTPError
	require.ErrorAs(t, HandleError(err), &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	assert.Equal(t, "TAX_CALCULATION_RATE_ALREADY_EXISTS", httpErr.Code)
	assert.Equal(t, "A Tax Rate with this Code already exists", httpErr.Message)
	assert.True(t, httpErr.Override)
}

func TestHandleError_ForeignKeyViolation(t *testing.T) {
	err := &pgconn.PgError{Code: "23503", TableName: "customer_entity", ColumnName: "group_id"}

	var httpErr *errs.HTTPError
	require.ErrorAs(t, HandleError(err), &httpErr)
	assert.Equal(t, "The referenced Group does not exist", httpErr.Message)
	assert.Equal(t, "CUSTOMER_ENTITY_NOT_FOUND", httpErr.Code)
}

func TestHandleError_NotNullViolation(t *testing.T) {
	err := &pgconn.PgError{Code: "23502", TableName: "eav_attribute", ColumnName: "attribute_code"}

	var httpErr *errs.HTTPError
	require.ErrorAs(t, HandleError(err), &httpErr)
	assert.Equal(t, "The Attribute Code is required", httpErr.Message)
	require.Len(t, httpErr.Errors, 1)
	assert.Equal(t, "attribute_code", httpErr.Errors[0].Field)
}

func TestHandleError_NoRows(t *testing.T) {
	err := fmt.Errorf("table:tax_calculation_rate: %w", pgx.ErrNoRows)

	var httpErr *errs.HTTPError
	require.ErrorAs(t, HandleError(err), &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.Status)
	assert.Equal(t, "Tax Rate not found", httpErr.Message)

	require.ErrorAs(t, HandleError(pgx.ErrNoRows), &httpErr)
	assert.Equal(t, "Resource not found", httpErr.Message)
}

func TestHandleError_PassThroughAndFallback(t *testing.T) {
	notFound := errs.NewNotFoundError("gone", true, nil)
	assert.Same(t, notFound, HandleError(notFound))

	var httpErr *errs.HTTPError
	require.ErrorAs(t, HandleError(errors.New("boom")), &httpErr)
	assert.Equal(t, http.StatusInternalServerError, httpErr.Status)
}

func TestErrCode(t *testing.T) {
	converted := ConvertPgError(&pgconn.PgError{Code: "23514", Severity: "ERROR"})

	assert.Equal(t, CheckViolation, ErrCode(errors.Wrap(converted, "ctx")))
	assert.Equal(t, Other, ErrCode(errors.New("x")))
	assert.Equal(t, SeverityError, converted.Severity)
}
