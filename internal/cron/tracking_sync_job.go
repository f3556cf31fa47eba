package cron

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/dzorders-backend/internal/carriers"
	"github.com/angelmondragon/dzorders-backend/internal/orders"
	"github.com/angelmondragon/dzorders-backend/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/multierr"
)

const (
	TrackingSyncJobName      = "tracking-sync"
	defaultTrackingSyncBatch = 200
)

type trackableLister interface {
	ListTrackable(ctx context.Context, limit int) ([]orders.OrderDTO, error)
	MarkTracked(ctx context.Context, orderIDs []uuid.UUID) error
}

type bulkTracker interface {
	BulkTrack(ctx context.Context, trackingIDs []string, serviceOverride string) carriers.BulkTrackResult
}

type TrackingSyncJobParams struct {
	Logger    *logger.Logger
	Orders    trackableLister
	Tracker   bulkTracker
	BatchSize int
}

// trackingSyncJob polls carriers for shipped orders and lets the tracker move
// them along.
type trackingSyncJob struct {
	logg    *logger.Logger
	orders  trackableLister
	tracker bulkTracker
	batch   int
}

func NewTrackingSyncJob(params TrackingSyncJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("order lister required")
	}
	if params.Tracker == nil {
		return nil, fmt.Errorf("tracker required")
	}
	batch := params.BatchSize
	if batch <= 0 {
		batch = defaultTrackingSyncBatch
	}
	return &trackingSyncJob{
		logg:    params.Logger,
		orders:  params.Orders,
		tracker: params.Tracker,
		batch:   batch,
	}, nil
}

func (j *trackingSyncJob) Name() string { return TrackingSyncJobName }

// Run fails only when every shipment failed to track. Partial failures are
// logged. Every listed order is stamped as tracked, whatever the outcome, so
// the next run starts with orders that waited longest.
func (j *trackingSyncJob) Run(ctx context.Context) error {
	rows, err := j.orders.ListTrackable(ctx, j.batch)
	if err != nil {
		return fmt.Errorf("list trackable orders: %w", err)
	}
	ids := make([]string, 0, len(rows))
	orderIDs := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		if row.ShippingTrackingID == nil {
			continue
		}
		if id := strings.TrimSpace(*row.ShippingTrackingID); id != "" {
			ids = append(ids, id)
			orderIDs = append(orderIDs, row.ID)
		}
	}
	if len(ids) == 0 {
		j.logg.Info(ctx, "tracking_sync.nothing_to_track")
		return nil
	}

	res := j.tracker.BulkTrack(ctx, ids, "")
	if err := j.orders.MarkTracked(ctx, orderIDs); err != nil {
		j.logg.Error(ctx, "tracking_sync.mark_tracked_failed", err)
	}
	updated := 0
	var failures error
	for _, outcome := range res.Results {
		if outcome.OrderUpdated {
			updated++
		}
		if !outcome.Result.Success {
			failures = multierr.Append(failures, errors.New(outcome.TrackingNumber+": "+outcome.Result.Message))
		}
	}

	ctx = j.logg.WithFields(ctx, map[string]any{
		"total":      res.Total,
		"successful": res.Successful,
		"failed":     res.Failed,
		"updated":    updated,
	})
	if res.Successful == 0 && failures != nil {
		return fmt.Errorf("all %d shipments failed to track: %w", res.Failed, failures)
	}
	if failures != nil {
		j.logg.Warn(j.logg.WithField(ctx, "errors", failures.Error()), "tracking_sync.partial_failure")
	}
	j.logg.Info(ctx, "tracking_sync.completed")
	return nil
}
