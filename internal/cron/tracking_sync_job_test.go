package cron

import (
	"context"
	"errors"
	"testing"

	"github.com/angelmondragon/dzorders-backend/internal/carriers"
	"github.com/angelmondragon/dzorders-backend/internal/orders"
	"github.com/google/uuid"
)

type stubLister struct {
	rows    []orders.OrderDTO
	err     error
	limit   int
	tracked []uuid.UUID
}

func (s *stubLister) ListTrackable(_ context.Context, limit int) ([]orders.OrderDTO, error) {
	s.limit = limit
	return s.rows, s.err
}

func (s *stubLister) MarkTracked(_ context.Context, ids []uuid.UUID) error {
	s.tracked = append(s.tracked, ids...)
	return nil
}

type stubTracker struct {
	failing map[string]bool
	ids     []string
}

func (s *stubTracker) BulkTrack(_ context.Context, ids []string, _ string) carriers.BulkTrackResult {
	s.ids = ids
	res := carriers.BulkTrackResult{Total: len(ids)}
	for _, id := range ids {
		out := carriers.TrackOutcome{TrackingNumber: id}
		if s.failing[id] {
			out.Result = carriers.TrackingResult{Result: carriers.Failure("carrier down")}
			res.Failed++
		} else {
			out.Result = carriers.TrackingResult{Result: carriers.Result{Success: true}}
			out.OrderUpdated = true
			res.Successful++
		}
		res.Results = append(res.Results, out)
	}
	return res
}

func trackable(ids ...string) []orders.OrderDTO {
	rows := make([]orders.OrderDTO, 0, len(ids))
	for _, id := range ids {
		id := id
		rows = append(rows, orders.OrderDTO{ID: uuid.New(), ShippingTrackingID: &id})
	}
	return rows
}

func newJob(t *testing.T, lister *stubLister, tracker *stubTracker) Job {
	t.Helper()
	job, err := NewTrackingSyncJob(TrackingSyncJobParams{Logger: testLogger(), Orders: lister, Tracker: tracker})
	if err != nil {
		t.Fatalf("new job: %v", err)
	}
	return job
}

func TestTrackingSyncTracksShippedOrders(t *testing.T) {
	rows := trackable("T1", "T2", " ")
	rows = append(rows, orders.OrderDTO{ID: uuid.New()})
	lister := &stubLister{rows: rows}
	tracker := &stubTracker{failing: map[string]bool{"T2": true}}
	job := newJob(t, lister, tracker)

	if job.Name() != TrackingSyncJobName {
		t.Fatalf("unexpected name %q", job.Name())
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("partial failure must not fail the job: %v", err)
	}
	if lister.limit != defaultTrackingSyncBatch {
		t.Fatalf("expected default batch, got %d", lister.limit)
	}
	if len(tracker.ids) != 2 || tracker.ids[0] != "T1" || tracker.ids[1] != "T2" {
		t.Fatalf("unexpected tracked ids %v", tracker.ids)
	}
	if len(lister.tracked) != 2 || lister.tracked[0] != rows[0].ID || lister.tracked[1] != rows[1].ID {
		t.Fatalf("expected failed and successful orders stamped, got %v", lister.tracked)
	}
}

func TestTrackingSyncFailsWhenEverythingFails(t *testing.T) {
	tracker := &stubTracker{failing: map[string]bool{"T1": true, "T2": true}}
	job := newJob(t, &stubLister{rows: trackable("T1", "T2")}, tracker)
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error when all shipments fail")
	}
}

func TestTrackingSyncNoopAndListError(t *testing.T) {
	tracker := &stubTracker{}
	if err := newJob(t, &stubLister{}, tracker).Run(context.Background()); err != nil {
		t.Fatalf("empty run: %v", err)
	}
	if tracker.ids != nil {
		t.Fatal("tracker must not be called without ids")
	}
	if err := newJob(t, &stubLister{err: errors.New("db down")}, tracker).Run(context.Background()); err == nil {
		t.Fatal("expected list error")
	}
}
