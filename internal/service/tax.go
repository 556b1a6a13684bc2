package service

import (
	"context"
	"errors"

	"github.com/deppfellow/go-commerce/internal/errs"
	"github.com/deppfellow/go-commerce/internal/lib/flash"
	"github.com/deppfellow/go-commerce/internal/tax"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// TaxRatesPath is the admin page listing tax rates.
const TaxRatesPath = "/admin/tax/rates"

// TaxRateStore persists tax rates.
type TaxRateStore interface {
	GetRate(ctx context.Context, id int64) (*tax.Rate, error)
	SaveRate(ctx context.Context, rate *tax.Rate) error
	DeleteRate(ctx context.Context, id int64) error
}

type TaxService struct {
	rates  TaxRateStore
	flash  *flash.Store
	logger *zerolog.Logger
}

func NewTaxService(rates TaxRateStore, store *flash.Store, logger *zerolog.Logger) *TaxService {
	return &TaxService{rates: rates, flash: store, logger: logger}
}

// SaveRate creates or updates a rate from posted form data. A posted id
// that matches no rate is dropped so the rate is created.
//
// On failure the admin is sent back to referer (or the rate list) with
// the error flashed; rejected input is kept as form data when the error
// was a validation failure.
func (s *TaxService) SaveRate(ctx context.Context, session string, post map[string]any, referer string) (*flash.Redirect, error) {
	sess := s.flash.Session(session)
	rate := tax.NewRate(post)

	if id := rate.RateID(); id != 0 {
		if _, err := s.rates.GetRate(ctx, id); err != nil {
			if !errors.Is(err, pgx.ErrNoRows) {
				return nil, err
			}
			rate.Unset(tax.IDField)
		}
	}

	err := rate.Prepare()
	if err == nil {
		err = s.rates.SaveRate(ctx, rate)
	}
	if err == nil {
		if err := sess.AddSuccess(ctx, "The tax rate has been saved."); err != nil {
			return nil, err
		}
		return sess.Redirect(TaxRatesPath), nil
	}

	s.logger.Warn().Err(err).Str("code", rate.Code()).Msg("tax rate not saved")

	var ex *errs.Exception
	if errors.As(err, &ex) {
		if err := sess.SetFormData(ctx, post); err != nil {
			return nil, err
		}
	}
	if err := sess.AddError(ctx, userMessage(err, "An error occurred while saving this rate.")); err != nil {
		return nil, err
	}

	if referer == "" {
		referer = TaxRatesPath
	}
	return sess.Redirect(referer), nil
}

// DeleteRate removes the rate with id.
func (s *TaxService) DeleteRate(ctx context.Context, session string, id int64, referer string) (*flash.Redirect, error) {
	sess := s.flash.Session(session)

	if _, err := s.rates.GetRate(ctx, id); err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		if err := sess.AddError(ctx, "An error occurred while deleting this rate. Incorrect rate ID."); err != nil {
			return nil, err
		}
		return sess.Redirect(TaxRatesPath), nil
	}

	if err := s.rates.DeleteRate(ctx, id); err != nil {
		s.logger.Error().Err(err).Int64("rate_id", id).Msg("tax rate not deleted")

		if err := sess.AddError(ctx, userMessage(err, "An error occurred while deleting this rate.")); err != nil {
			return nil, err
		}
		if referer == "" {
			referer = TaxRatesPath
		}
		return sess.Redirect(referer), nil
	}

	if err := sess.AddSuccess(ctx, "The tax rate has been deleted."); err != nil {
		return nil, err
	}
	return sess.Redirect(TaxRatesPath), nil
}

// RateForm is the data behind the rate edit page.
type RateForm struct {
	Rate     map[string]any  `json:"rate"`
	Messages []flash.Message `json:"messages"`
}

// EditRate returns the rate with id for editing. Form data left by a
// failed save for the same rate takes precedence over the stored row. A
// missing rate yields a redirect to the rate list instead.
func (s *TaxService) EditRate(ctx context.Context, session string, id int64) (*RateForm, *flash.Redirect, error) {
	sess := s.flash.Session(session)

	formData, err := sess.FormData(ctx, true)
	if err != nil {
		return nil, nil, err
	}

	rate := tax.NewRate(formData)
	if rate.RateID() != id {
		rate, err = s.rates.GetRate(ctx, id)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sess.Redirect(TaxRatesPath), nil
		}
		if err != nil {
			return nil, nil, err
		}
	}

	rate.FillPostcodeFromRange()

	messages, err := s.flash.Pop(ctx, session)
	if err != nil {
		return nil, nil, err
	}
	if messages == nil {
		messages = []flash.Message{}
	}

	return &RateForm{Rate: rate.ToMap(), Messages: messages}, nil, nil
}
