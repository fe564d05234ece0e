package load

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/i474232898/air-quality-etl/internal/airquality"
	"github.com/i474232898/air-quality-etl/internal/retry"
	"github.com/i474232898/air-quality-etl/internal/store"
)

// rejectingStore wraps the memory store and rejects every batch whose first
// row belongs to the poisoned city.
type rejectingStore struct {
	*store.MemoryStore
	poisoned string
	calls    map[string]int
}

func newRejectingStore(poisoned string) *rejectingStore {
	return &rejectingStore{
		MemoryStore: store.NewMemoryStore(),
		poisoned:    poisoned,
		calls:       make(map[string]int),
	}
}

func (s *rejectingStore) InsertRows(ctx context.Context, rows []airquality.ObservationRow) error {
	city := rows[0].City
	s.calls[city]++
	if city == s.poisoned {
		return errors.New("insert failure")
	}
	return s.MemoryStore.InsertRows(ctx, rows)
}

// makeDataset builds n rows per city, in city order, so batch boundaries
// align with cities when n equals the batch size.
func makeDataset(perCity int, cities ...string) airquality.Dataset {
	var ds airquality.Dataset
	for _, c := range cities {
		for i := 0; i < perCity; i++ {
			ds = append(ds, airquality.ObservationRow{City: c})
		}
	}
	return ds
}

func noSleep() retry.Policy {
	return retry.Policy{MaxAttempts: 3, Delay: 2 * time.Second, Sleep: func(time.Duration) {}}
}

func TestLoadAllBatchesSucceed(t *testing.T) {
	st := newRejectingStore("none")
	l := NewLoader(st, 200, noSleep())

	report, err := l.Load(context.Background(), makeDataset(150, "Delhi", "Mumbai", "Kolkata"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !report.Complete() {
		t.Fatal("expected a complete report")
	}
	if report.UploadedCount != 450 {
		t.Fatalf("uploaded %d rows, want 450", report.UploadedCount)
	}
	if report.TotalBatches != 3 {
		t.Fatalf("got %d batches, want 3", report.TotalBatches)
	}
	if st.Len() != 450 {
		t.Fatalf("store holds %d rows, want 450 (round trip preserves count)", st.Len())
	}
}

// One permanently failing batch out of N: the loader keeps going and the
// report accounts for exactly the rows of the surviving batches.
func TestLoadContinuesPastFailedBatch(t *testing.T) {
	st := newRejectingStore("Mumbai")
	l := NewLoader(st, 200, noSleep())

	// Three batches of 200; the middle one is poisoned.
	report, err := l.Load(context.Background(), makeDataset(200, "Delhi", "Mumbai", "Kolkata"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.Complete() {
		t.Fatal("report should not be complete")
	}
	if len(report.FailedBatches) != 1 || report.FailedBatches[0] != 1 {
		t.Fatalf("failed batches = %v, want [1]", report.FailedBatches)
	}
	if report.UploadedCount != 400 {
		t.Fatalf("uploaded %d rows, want (N-1)*batch_size = 400", report.UploadedCount)
	}
	if report.TotalBatches != 3 {
		t.Fatalf("attempted %d batches, want all 3 (no short circuit)", report.TotalBatches)
	}
	if got := st.calls["Mumbai"]; got != 3 {
		t.Fatalf("failing batch tried %d times, want 3", got)
	}
	if got := st.calls["Kolkata"]; got != 1 {
		t.Fatalf("batch after the failure tried %d times, want 1", got)
	}
}

func TestLoadRetriesTransientFailure(t *testing.T) {
	attempts := 0
	st := &retryThenOK{MemoryStore: store.NewMemoryStore(), failUntil: 3, attempts: &attempts}
	l := NewLoader(st, 200, noSleep())

	report, err := l.Load(context.Background(), makeDataset(100, "Delhi"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !report.Complete() {
		t.Fatal("expected success after transient retries")
	}
	if attempts != 3 {
		t.Fatalf("made %d attempts, want 3", attempts)
	}
	if report.UploadedCount != 100 {
		t.Fatalf("uploaded %d rows, want 100", report.UploadedCount)
	}
}

// retryThenOK fails the first failUntil-1 insert attempts, then accepts.
type retryThenOK struct {
	*store.MemoryStore
	failUntil int
	attempts  *int
}

func (s *retryThenOK) InsertRows(ctx context.Context, rows []airquality.ObservationRow) error {
	*s.attempts++
	if *s.attempts < s.failUntil {
		return errors.New("transient insert failure")
	}
	return s.MemoryStore.InsertRows(ctx, rows)
}
