package tradedata

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/opencustoms/tradeflow/internal/store"
)

// DefaultChunkSize is the number of records submitted per bulk request.
const DefaultChunkSize = 500

// maxRetainedFailures caps the per-failure detail kept verbatim in the
// outcome; failures beyond the cap are counted but not detailed.
const maxRetainedFailures = 5

// ImportFailure is one rejected document kept for operator inspection.
type ImportFailure struct {
	Document  json.RawMessage `json:"document"`
	ErrorType string          `json:"error_type"`
	Reason    string          `json:"reason"`
}

// ImportOutcome is the aggregate result of one import run. It is returned to
// the caller and not persisted as an entity of its own (the job ledger stores
// a serialized copy alongside the job row).
type ImportOutcome struct {
	RowsRead    int             `json:"rows_read"`
	RowsCleaned int             `json:"rows_cleaned"`
	Submitted   int             `json:"submitted"`
	Succeeded   int             `json:"succeeded"`
	Failed      int             `json:"failed"`
	Failures    []ImportFailure `json:"failures,omitempty"`
}

type bulkStore interface {
	Bulk(ctx context.Context, index string, docs []any) ([]store.BulkItem, error)
}

// Loader submits canonical records to the store in fixed-size chunks.
//
// A rejected document never aborts its chunk or the chunks after it; every
// rejection is folded into the outcome. Only store connectivity errors are
// terminal, and they propagate as an error with nothing retried.
type Loader struct {
	store     bulkStore
	index     string
	chunkSize int
}

func NewLoader(s bulkStore, index string, chunkSize int) *Loader {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Loader{store: s, index: index, chunkSize: chunkSize}
}

// Load runs the whole record set to completion and returns the aggregate
// outcome. The outcome's row counts are filled in by the caller, which knows
// how many raw rows were read.
func (l *Loader) Load(ctx context.Context, records []CanonicalRecord) (*ImportOutcome, error) {
	outcome := &ImportOutcome{Submitted: len(records)}

	for start := 0; start < len(records); start += l.chunkSize {
		end := min(start+l.chunkSize, len(records))
		chunk := records[start:end]

		docs := make([]any, len(chunk))
		for i := range chunk {
			docs[i] = &chunk[i]
		}

		items, err := l.store.Bulk(ctx, l.index, docs)
		if err != nil {
			return nil, fmt.Errorf("bulk load aborted at record %d: %w", start, err)
		}

		for i, item := range items {
			if !item.Failed {
				outcome.Succeeded++
				continue
			}
			outcome.Failed++
			if len(outcome.Failures) < maxRetainedFailures {
				doc, marshalErr := json.Marshal(&chunk[i])
				if marshalErr != nil {
					doc = nil
				}
				outcome.Failures = append(outcome.Failures, ImportFailure{
					Document:  doc,
					ErrorType: item.ErrorType,
					Reason:    item.ErrorReason,
				})
			}
		}
	}

	slog.Info("bulk load completed",
		"submitted", outcome.Submitted,
		"succeeded", outcome.Succeeded,
		"failed", outcome.Failed,
	)
	return outcome, nil
}
