package job

import (
	"encoding/json"
	"time"

	"github.com/deppfellow/go-commerce/internal/reports"
	"github.com/hibiken/asynq"
)

const (
	// TaskReportsRatingPos refreshes report rating positions.
	TaskReportsRatingPos = "reports:rating_pos"
)

// RatingPosPayload lists the periods to refresh. Empty means all.
type RatingPosPayload struct {
	Periods []reports.Period `json:"periods"`
}

// NewRatingPosTask builds a rating refresh task for periods.
//
// Only one such task may be queued at a time; a second enqueue within
// the uniqueness window fails with asynq.ErrDuplicateTask.
func NewRatingPosTask(periods ...reports.Period) (*asynq.Task, error) {
	payload, err := json.Marshal(RatingPosPayload{Periods: periods})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskReportsRatingPos,
		payload,
		asynq.MaxRetry(3),
		asynq.Queue("low"),
		asynq.Timeout(10*time.Minute),
		asynq.Unique(time.Hour),
	), nil
}
