package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/deppfellow/go-commerce/internal/reports"
	"github.com/hibiken/asynq"
)

// RatingRefresher recomputes report rating positions for one period.
type RatingRefresher interface {
	RefreshRatings(ctx context.Context, period reports.Period) error
}

// ErrNoRefresher is returned when a rating task runs before
// InitHandlers.
var ErrNoRefresher = errors.New("job: rating refresher not configured")

// InitHandlers sets the dependencies used by task handlers.
func (j *JobService) InitHandlers(refresher RatingRefresher) {
	j.ratings = refresher
}

// handleRatingPosTask refreshes every requested period in order.
func (j *JobService) handleRatingPosTask(ctx context.Context, t *asynq.Task) error {
	var p RatingPosPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("failed to unmarshal rating payload: %w: %w", err, asynq.SkipRetry)
	}

	if j.ratings == nil {
		return ErrNoRefresher
	}

	periods := p.Periods
	if len(periods) == 0 {
		periods = reports.Periods
	}

	for _, period := range periods {
		if _, err := reports.ParsePeriod(string(period)); err != nil {
			return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
		}

		j.logger.Info().
			Str("type", TaskReportsRatingPos).
			Str("period", string(period)).
			Msg("Refreshing report rating positions")

		if err := j.ratings.RefreshRatings(ctx, period); err != nil {
			j.logger.Error().
				Str("type", TaskReportsRatingPos).
				Str("period", string(period)).
				Err(err).
				Msg("Failed to refresh report rating positions")
			return err
		}
	}

	j.logger.Info().
		Str("type", TaskReportsRatingPos).
		Int("periods", len(periods)).
		Msg("Successfully refreshed report rating positions")

	return nil
}
