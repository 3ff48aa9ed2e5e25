package importjob

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Status is the lifecycle state of one import job. Transitions are monotonic:
// pending -> running -> completed | failed.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Job is one import submission tracked in the ledger. Outcome holds the
// serialized ImportOutcome once the job completes.
type Job struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Filename  string          `gorm:"type:varchar(255);not null" json:"filename"`
	Status    Status          `gorm:"type:varchar(20);not null;index" json:"status"`
	Outcome   json.RawMessage `gorm:"type:json" json:"outcome,omitempty"`
	Error     string          `gorm:"type:text" json:"error,omitempty"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName returns the table name for Job
func (Job) TableName() string {
	return "import_jobs"
}

// Store handles database operations for the import-job ledger
type Store struct {
	db *gorm.DB
}

// NewStore creates a Store backed by a SQLite database
func NewStore(dbPath string) (*Store, error) {
	if dbPath == "" {
		dbPath = "importjobs.db"
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to job database: %w", err)
	}

	if err := db.AutoMigrate(&Job{}); err != nil {
		return nil, fmt.Errorf("failed to migrate job database: %w", err)
	}

	return &Store{db: db}, nil
}

// NewInMemoryStore creates a Store with an in-memory database (useful for testing)
func NewInMemoryStore() (*Store, error) {
	return NewStore(":memory:")
}

// Create registers a new pending job and returns it.
func (s *Store) Create(filename string) (*Job, error) {
	job := &Job{
		ID:       uuid.New(),
		Filename: filename,
		Status:   StatusPending,
	}
	if err := s.db.Create(job).Error; err != nil {
		return nil, fmt.Errorf("failed to create import job: %w", err)
	}
	return job, nil
}

// Get fetches a job by ID.
func (s *Store) Get(id uuid.UUID) (*Job, error) {
	var job Job
	if err := s.db.First(&job, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch import job %s: %w", id, err)
	}
	return &job, nil
}

// MarkRunning transitions a job to running.
func (s *Store) MarkRunning(id uuid.UUID) error {
	return s.setStatus(id, StatusRunning, nil, "")
}

// MarkCompleted transitions a job to completed with its serialized outcome.
func (s *Store) MarkCompleted(id uuid.UUID, outcome json.RawMessage) error {
	return s.setStatus(id, StatusCompleted, outcome, "")
}

// MarkFailed transitions a job to failed with the terminal error.
func (s *Store) MarkFailed(id uuid.UUID, reason string) error {
	return s.setStatus(id, StatusFailed, nil, reason)
}

func (s *Store) setStatus(id uuid.UUID, status Status, outcome json.RawMessage, reason string) error {
	updates := map[string]any{"status": status}
	if outcome != nil {
		updates["outcome"] = outcome
	}
	if reason != "" {
		updates["error"] = reason
	}
	result := s.db.Model(&Job{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update import job %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("import job not found: %s", id)
	}
	return nil
}
