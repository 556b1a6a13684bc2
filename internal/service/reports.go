package service

import (
	"context"
	"errors"

	"github.com/deppfellow/go-commerce/internal/lib/flash"
	"github.com/deppfellow/go-commerce/internal/lib/job"
	"github.com/deppfellow/go-commerce/internal/reports"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

const (
	// ReportsPath is the admin reports page.
	ReportsPath = "/admin/reports"

	viewedProductIndexTable = "report_viewed_product_index"
)

// TaskEnqueuer queues background tasks; *asynq.Client satisfies it.
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// ProductIndexer writes the viewed product index.
type ProductIndexer interface {
	MergeVisitorProductIndex(ctx context.Context, table string, data map[string]any, matchFields []string) error
}

type ReportsService struct {
	queue  TaskEnqueuer
	index  ProductIndexer
	flash  *flash.Store
	logger *zerolog.Logger
	clock  clock
}

func NewReportsService(queue TaskEnqueuer, index ProductIndexer, store *flash.Store, logger *zerolog.Logger) *ReportsService {
	return &ReportsService{queue: queue, index: index, flash: store, logger: logger}
}

// RefreshRatings queues a rating position refresh for periods, all
// periods when none are given.
func (s *ReportsService) RefreshRatings(ctx context.Context, session string, periods []reports.Period) (*flash.Redirect, error) {
	sess := s.flash.Session(session)

	task, err := job.NewRatingPosTask(periods...)
	if err != nil {
		return nil, err
	}

	info, err := s.queue.EnqueueContext(ctx, task)
	switch {
	case errors.Is(err, asynq.ErrDuplicateTask):
		err = sess.AddNotice(ctx, "A report rating refresh is already queued.")
	case err != nil:
		return nil, err
	default:
		s.logger.Info().Str("task_id", info.ID).Str("queue", info.Queue).Msg("queued report rating refresh")
		err = sess.AddSuccess(ctx, "The report rating refresh has been queued.")
	}
	if err != nil {
		return nil, err
	}
	return sess.Redirect(ReportsPath), nil
}

// ProductView is one product page view.
type ProductView struct {
	ProductID  int64
	StoreID    int64
	CustomerID int64
	VisitorID  int64
}

// RecordProductView upserts the view into the viewed product index,
// keyed by customer when known and by visitor otherwise.
func (s *ReportsService) RecordProductView(ctx context.Context, view ProductView) error {
	data := map[string]any{
		"product_id": view.ProductID,
		"store_id":   view.StoreID,
		"added_at":   s.clock.now().UTC(),
	}

	var match []string
	if view.CustomerID != 0 {
		data["customer_id"] = view.CustomerID
		match = []string{"customer_id", "product_id"}
	} else {
		data["visitor_id"] = view.VisitorID
		match = []string{"visitor_id", "product_id"}
	}

	return s.index.MergeVisitorProductIndex(ctx, viewedProductIndexTable, data, match)
}
