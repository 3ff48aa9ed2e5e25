package importjob

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/opencustoms/tradeflow/internal/tradedata"
)

// Importer runs one cleaned-and-loaded import to completion.
type Importer interface {
	ImportRows(ctx context.Context, rows []tradedata.RawRow, columns []string) (*tradedata.ImportOutcome, error)
}

// Runner executes imports asynchronously, one goroutine per submission.
//
// The triggering request gets the job ID back immediately; the final
// ImportOutcome lands in the ledger, where the caller may poll for it. There
// is no mid-run progress or cancellation.
type Runner struct {
	jobs     *Store
	importer Importer
	wg       sync.WaitGroup
}

func NewRunner(jobs *Store, importer Importer) *Runner {
	return &Runner{jobs: jobs, importer: importer}
}

// Submit registers a job and starts the import in the background.
func (r *Runner) Submit(filename string, rows []tradedata.RawRow, columns []string) (uuid.UUID, error) {
	job, err := r.jobs.Create(filename)
	if err != nil {
		return uuid.Nil, err
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.run(job.ID, filename, rows, columns)
	}()

	return job.ID, nil
}

// Wait blocks until all in-flight imports finish. Called during shutdown so
// accepted imports are not cut off mid-chunk.
func (r *Runner) Wait() {
	r.wg.Wait()
}

func (r *Runner) run(id uuid.UUID, filename string, rows []tradedata.RawRow, columns []string) {
	if err := r.jobs.MarkRunning(id); err != nil {
		slog.Error("failed to mark import job running", "job_id", id, "error", err)
		return
	}

	outcome, err := r.importer.ImportRows(context.Background(), rows, columns)
	if err != nil {
		slog.Error("import job failed", "job_id", id, "filename", filename, "error", err)
		if markErr := r.jobs.MarkFailed(id, err.Error()); markErr != nil {
			slog.Error("failed to mark import job failed", "job_id", id, "error", markErr)
		}
		return
	}

	serialized, err := json.Marshal(outcome)
	if err != nil {
		slog.Error("failed to serialize import outcome", "job_id", id, "error", err)
		serialized = nil
	}
	if err := r.jobs.MarkCompleted(id, serialized); err != nil {
		slog.Error("failed to mark import job completed", "job_id", id, "error", err)
		return
	}

	slog.Info("import job completed",
		"job_id", id,
		"filename", filename,
		"succeeded", outcome.Succeeded,
		"failed", outcome.Failed,
	)
}
