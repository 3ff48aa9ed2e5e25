package tradedata

import (
	"context"
	"errors"
	"testing"

	"github.com/opencustoms/tradeflow/internal/store"
)

// fakeBulkStore implements bulkStore for testing, failing the documents whose
// absolute submission position is listed in failAt.
type fakeBulkStore struct {
	calls      int
	chunkSizes []int
	submitted  int
	failAt     map[int]bool
	err        error
}

func (f *fakeBulkStore) Bulk(ctx context.Context, index string, docs []any) ([]store.BulkItem, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.calls++
	f.chunkSizes = append(f.chunkSizes, len(docs))

	items := make([]store.BulkItem, len(docs))
	for i := range docs {
		if f.failAt[f.submitted+i] {
			items[i] = store.BulkItem{
				Status:      400,
				Failed:      true,
				ErrorType:   "mapper_parsing_exception",
				ErrorReason: "failed to parse field [date]",
			}
		} else {
			items[i] = store.BulkItem{Status: 201}
		}
	}
	f.submitted += len(docs)
	return items, nil
}

func TestLoadPartialFailure(t *testing.T) {
	failAt := make(map[int]bool)
	for i := 500; i < 510; i++ {
		failAt[i] = true
	}
	fake := &fakeBulkStore{failAt: failAt}
	loader := NewLoader(fake, "customs_data", 500)

	records := make([]CanonicalRecord, 1000)
	outcome, err := loader.Load(context.Background(), records)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if fake.calls != 2 {
		t.Errorf("expected 2 bulk calls, got %d", fake.calls)
	}
	if outcome.Submitted != 1000 {
		t.Errorf("submitted = %d, want 1000", outcome.Submitted)
	}
	if outcome.Succeeded != 990 {
		t.Errorf("succeeded = %d, want 990", outcome.Succeeded)
	}
	if outcome.Failed != 10 {
		t.Errorf("failed = %d, want 10", outcome.Failed)
	}
	// Only the first 5 failures are retained verbatim.
	if len(outcome.Failures) != 5 {
		t.Errorf("retained failures = %d, want 5", len(outcome.Failures))
	}
	for _, failure := range outcome.Failures {
		if failure.ErrorType != "mapper_parsing_exception" {
			t.Errorf("failure error type = %q", failure.ErrorType)
		}
		if failure.Document == nil {
			t.Error("failure document not captured")
		}
	}
}

func TestLoadChunking(t *testing.T) {
	fake := &fakeBulkStore{}
	loader := NewLoader(fake, "customs_data", 500)

	records := make([]CanonicalRecord, 1250)
	outcome, err := loader.Load(context.Background(), records)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	want := []int{500, 500, 250}
	if len(fake.chunkSizes) != len(want) {
		t.Fatalf("chunk count = %d, want %d", len(fake.chunkSizes), len(want))
	}
	for i, size := range want {
		if fake.chunkSizes[i] != size {
			t.Errorf("chunk %d size = %d, want %d", i, fake.chunkSizes[i], size)
		}
	}
	if outcome.Succeeded != 1250 {
		t.Errorf("succeeded = %d, want 1250", outcome.Succeeded)
	}
}

func TestLoadConnectivityErrorIsTerminal(t *testing.T) {
	fake := &fakeBulkStore{err: store.ErrUnavailable}
	loader := NewLoader(fake, "customs_data", 0) // zero falls back to the default

	_, err := loader.Load(context.Background(), make([]CanonicalRecord, 10))
	if err == nil {
		t.Fatal("expected connectivity error to propagate")
	}
	if !errors.Is(err, store.ErrUnavailable) {
		t.Errorf("error = %v, want ErrUnavailable", err)
	}
}

func TestLoadEmpty(t *testing.T) {
	fake := &fakeBulkStore{}
	loader := NewLoader(fake, "customs_data", 500)

	outcome, err := loader.Load(context.Background(), nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if fake.calls != 0 {
		t.Errorf("expected no bulk calls for empty input, got %d", fake.calls)
	}
	if outcome.Submitted != 0 || outcome.Succeeded != 0 || outcome.Failed != 0 {
		t.Errorf("unexpected outcome for empty input: %+v", outcome)
	}
}
