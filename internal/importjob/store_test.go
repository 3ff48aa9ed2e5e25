package importjob

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewInMemoryStore()
	if err != nil {
		t.Fatalf("failed to create in-memory store: %v", err)
	}
	return store
}

func TestCreateAndGetJob(t *testing.T) {
	store := newTestStore(t)

	job, err := store.Create("january.xlsx")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if job.ID == uuid.Nil {
		t.Error("job ID not assigned")
	}
	if job.Status != StatusPending {
		t.Errorf("status = %q, want %q", job.Status, StatusPending)
	}

	fetched, err := store.Get(job.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if fetched.Filename != "january.xlsx" {
		t.Errorf("filename = %q", fetched.Filename)
	}
	if fetched.Status != StatusPending {
		t.Errorf("status = %q, want %q", fetched.Status, StatusPending)
	}
}

func TestGetMissingJob(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.Get(uuid.New()); err == nil {
		t.Fatal("expected error for unknown job ID")
	}
}

func TestStatusTransitions(t *testing.T) {
	store := newTestStore(t)

	job, err := store.Create("february.xlsx")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := store.MarkRunning(job.ID); err != nil {
		t.Fatalf("MarkRunning failed: %v", err)
	}
	fetched, _ := store.Get(job.ID)
	if fetched.Status != StatusRunning {
		t.Errorf("status = %q, want %q", fetched.Status, StatusRunning)
	}

	outcome := json.RawMessage(`{"succeeded":990,"failed":10}`)
	if err := store.MarkCompleted(job.ID, outcome); err != nil {
		t.Fatalf("MarkCompleted failed: %v", err)
	}
	fetched, _ = store.Get(job.ID)
	if fetched.Status != StatusCompleted {
		t.Errorf("status = %q, want %q", fetched.Status, StatusCompleted)
	}
	if string(fetched.Outcome) != string(outcome) {
		t.Errorf("outcome = %s", fetched.Outcome)
	}
}

func TestMarkFailedRecordsReason(t *testing.T) {
	store := newTestStore(t)

	job, err := store.Create("march.xlsx")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := store.MarkFailed(job.ID, "store unavailable"); err != nil {
		t.Fatalf("MarkFailed failed: %v", err)
	}

	fetched, _ := store.Get(job.ID)
	if fetched.Status != StatusFailed {
		t.Errorf("status = %q, want %q", fetched.Status, StatusFailed)
	}
	if fetched.Error != "store unavailable" {
		t.Errorf("error = %q", fetched.Error)
	}
}

func TestMarkMissingJob(t *testing.T) {
	store := newTestStore(t)

	if err := store.MarkRunning(uuid.New()); err == nil {
		t.Fatal("expected error marking unknown job")
	}
}
