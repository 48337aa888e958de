package exec

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/jamesainslie/reclaim/pkg/reclaim/plan"
)

// LogVersion is the transaction log format version.
const LogVersion = "1.0"

// Status is the lifecycle state of a transaction log.
type Status string

const (
	// StatusInProgress marks an execution that has started and not
	// yet finished.
	StatusInProgress Status = "in_progress"

	// StatusCompleted marks an execution where no operation failed.
	StatusCompleted Status = "completed"

	// StatusFailed marks an execution with at least one failed
	// operation.
	StatusFailed Status = "failed"

	// StatusAborted marks an execution halted by the user.
	StatusAborted Status = "aborted"
)

// LogOptions records the execution options in force, for the audit
// trail.
type LogOptions struct {
	DryRun        bool   `yaml:"dry_run"`
	BackupDir     string `yaml:"backup_dir,omitempty"`
	UseRecycleBin bool   `yaml:"use_recycle_bin"`
	FailFast      bool   `yaml:"fail_fast"`
	Parallel      bool   `yaml:"parallel"`
	BatchSize     int    `yaml:"batch_size,omitempty"`
}

// LoggedOperation is one recorded operation attempt.
type LoggedOperation struct {
	Path      string    `yaml:"path"`
	Action    string    `yaml:"action"`
	Status    string    `yaml:"status"`
	SizeFreed int64     `yaml:"size_freed"`
	Error     string    `yaml:"error,omitempty"`
	Timestamp time.Time `yaml:"timestamp"`
}

// LogSummary is the final summary recorded at finalization.
type LogSummary struct {
	TotalOperations int     `yaml:"total_operations"`
	Successful      int     `yaml:"successful"`
	Failed          int     `yaml:"failed"`
	Skipped         int     `yaml:"skipped"`
	SpaceFreed      int64   `yaml:"space_freed"`
	DurationSeconds float64 `yaml:"duration_seconds"`
}

// Log is the durable record of one execution attempt.
type Log struct {
	Version     string            `yaml:"version"`
	ExecutionID string            `yaml:"execution_id"`
	PlanFile    string            `yaml:"plan_file"`
	StartedAt   time.Time         `yaml:"started_at"`
	CompletedAt *time.Time        `yaml:"completed_at"`
	Status      Status            `yaml:"status"`
	Mode        string            `yaml:"mode"`
	Options     LogOptions        `yaml:"options"`
	Operations  []LoggedOperation `yaml:"operations"`
	Summary     *LogSummary       `yaml:"summary"`
}

// ErrAlreadyFinalized indicates a second finalization attempt.
var ErrAlreadyFinalized = errors.New("transaction log already finalized")

// TransactionLogger durably records every attempted operation of an
// execution. The log is persisted with the same atomic-write
// discipline as plan files after every mutation, so a crash
// mid-execution leaves an inspectable partial record. Safe for
// concurrent use by parallel workers.
type TransactionLogger struct {
	mu        sync.Mutex
	path      string
	log       Log
	finalized bool
}

// NewTransactionLogger creates a logger for one execution attempt and
// persists the initial in-progress record.
func NewTransactionLogger(planFile, logPath string, mode Mode, opts LogOptions) (*TransactionLogger, error) {
	l := &TransactionLogger{
		path: logPath,
		log: Log{
			Version:     LogVersion,
			ExecutionID: uuid.NewString(),
			PlanFile:    planFile,
			StartedAt:   time.Now().UTC(),
			Status:      StatusInProgress,
			Mode:        string(mode),
			Options:     opts,
		},
	}

	if err := l.persistLocked(); err != nil {
		return nil, err
	}
	return l, nil
}

// ExecutionID returns the unique identifier of this execution.
func (l *TransactionLogger) ExecutionID() string {
	return l.log.ExecutionID
}

// LogOperation appends one completed operation and persists the log.
func (l *TransactionLogger) LogOperation(op OperationResult) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.log.Operations = append(l.log.Operations, LoggedOperation{
		Path:      op.Path,
		Action:    string(op.Action),
		Status:    string(op.Status),
		SizeFreed: op.SizeFreed,
		Error:     op.Error,
		Timestamp: op.Timestamp,
	})

	return l.persistLocked()
}

// Finalize sets the completion timestamp, terminal status, and
// summary, then performs one last durable write. Finalization happens
// exactly once; later calls fail.
func (l *TransactionLogger) Finalize(summary Summary, status Status) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.finalized {
		return ErrAlreadyFinalized
	}

	now := time.Now().UTC()
	l.log.CompletedAt = &now
	l.log.Status = status
	l.log.Summary = &LogSummary{
		TotalOperations: summary.TotalOperations,
		Successful:      summary.Successful,
		Failed:          summary.Failed,
		Skipped:         summary.Skipped,
		SpaceFreed:      summary.SpaceFreed,
		DurationSeconds: summary.Duration.Seconds(),
	}

	if err := l.persistLocked(); err != nil {
		return err
	}
	l.finalized = true
	return nil
}

// persistLocked writes the log atomically. Caller holds l.mu.
func (l *TransactionLogger) persistLocked() error {
	data, err := yaml.Marshal(&l.log)
	if err != nil {
		return fmt.Errorf("serialize transaction log: %w", err)
	}
	return plan.WriteFileAtomic(l.path, data)
}

// ReadLog reads a transaction log from disk.
func ReadLog(path string) (*Log, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read transaction log: %w", err)
	}

	var log Log
	if err := yaml.Unmarshal(data, &log); err != nil {
		return nil, fmt.Errorf("parse transaction log %s: %w", path, err)
	}
	return &log, nil
}
