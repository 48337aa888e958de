// Package exec carries out a cleanup plan's Delete entries,
// sequentially or in parallel batches, with backup, recycle-bin, and
// dry-run variants. Every attempted operation yields a result record,
// and an optional transaction logger persists an audit trail as the
// run progresses. A plan-file lock prevents two processes from
// executing the same plan concurrently.
package exec

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/jamesainslie/reclaim/pkg/reclaim/plan"
	"github.com/jamesainslie/reclaim/pkg/reclaim/progress"
	"github.com/jamesainslie/reclaim/pkg/reclaim/trash"
)

// Mode selects how a plan is executed.
type Mode string

const (
	// ModeDryRun simulates execution without touching the filesystem.
	ModeDryRun Mode = "dry_run"

	// ModeInteractive prompts per entry before acting.
	ModeInteractive Mode = "interactive"

	// ModeBatch executes every Delete entry without prompting.
	ModeBatch Mode = "batch"
)

// Action is the operation performed on an entry.
type Action string

const (
	ActionDelete        Action = "delete"
	ActionMoveToBackup  Action = "move_to_backup"
	ActionMoveToRecycle Action = "move_to_recycle_bin"
	ActionSkip          Action = "skip"
)

// OpStatus is the outcome of one operation.
type OpStatus string

const (
	StatusSuccess  OpStatus = "success"
	StatusFailedOp OpStatus = "failed"
	StatusSkipped  OpStatus = "skipped"
	StatusDryRun   OpStatus = "dry_run"
)

// Choice is a user's answer to an interactive prompt.
type Choice int

const (
	// ChoiceYes approves the operation.
	ChoiceYes Choice = iota

	// ChoiceNo skips this entry without side effects.
	ChoiceNo

	// ChoiceAbort terminates the whole run immediately.
	ChoiceAbort
)

// ParseChoice maps prompt input to a choice. Unrecognized input skips
// the entry.
func ParseChoice(input string) Choice {
	switch input {
	case "y", "yes":
		return ChoiceYes
	case "a", "abort", "q", "quit":
		return ChoiceAbort
	default:
		return ChoiceNo
	}
}

// Prompter is the synchronous confirmation mechanism used in
// interactive mode. Implemented outside the engine.
type Prompter interface {
	// Confirm asks about one plan entry and blocks for the answer.
	Confirm(entry plan.Entry) (Choice, error)
}

// Config controls execution behavior.
type Config struct {
	// Mode is the execution mode.
	Mode Mode

	// BackupDir, when set, receives entries instead of deleting them,
	// with their relative directory structure recreated beneath it.
	BackupDir string

	// UseRecycleBin moves entries to the system trash instead of
	// deleting. Takes priority over BackupDir.
	UseRecycleBin bool

	// FailFast stops the run after the first failed operation. In
	// parallel mode the check happens at batch boundaries.
	FailFast bool

	// Parallel processes Delete entries in concurrent batches.
	// Incompatible with ModeInteractive.
	Parallel bool

	// BatchSize is the number of entries per parallel batch.
	BatchSize int

	// Workers is the worker pool size within a batch.
	Workers int

	// PlanFile is the source plan's path. When set, a sibling lock
	// file guards against concurrent executions of the same plan.
	PlanFile string

	// Prompter supplies interactive confirmation. Required in
	// ModeInteractive.
	Prompter Prompter

	// Tracker receives per-operation progress updates. Optional.
	Tracker *progress.Tracker

	// Logger, when set, durably records every operation and is
	// finalized when the run ends.
	Logger *TransactionLogger
}

// DefaultBatchSize is used when Config.BatchSize is unset.
const DefaultBatchSize = 100

// Configuration errors, reported before any operation begins.
var (
	// ErrInteractiveParallel rejects the parallel + interactive
	// combination: prompting is inherently sequential.
	ErrInteractiveParallel = errors.New("parallel execution is not compatible with interactive mode")

	// ErrNoPrompter rejects interactive mode without a prompter.
	ErrNoPrompter = errors.New("interactive mode requires a prompter")
)

// ErrUserAborted reports a run halted by the user. Operations
// completed before the abort are preserved in the result.
var ErrUserAborted = errors.New("execution aborted by user")

// OperationResult records one attempted operation.
type OperationResult struct {
	// Path is the absolute path operated on.
	Path string

	// Action is what was done (or simulated).
	Action Action

	// Status is the outcome.
	Status OpStatus

	// SizeFreed is the bytes freed, when known.
	SizeFreed int64

	// Error is the failure text, if any.
	Error string

	// Timestamp is when the operation was attempted.
	Timestamp time.Time
}

// Summary aggregates operation results. It is a pure reduction over
// the operation list and can always be recomputed from it.
type Summary struct {
	TotalOperations int
	Successful      int
	Failed          int
	Skipped         int
	SpaceFreed      int64
	Duration        time.Duration
}

// Summarize reduces operation results to a summary. Dry-run
// operations count as successful.
func Summarize(operations []OperationResult, duration time.Duration) Summary {
	s := Summary{TotalOperations: len(operations), Duration: duration}
	for _, op := range operations {
		switch op.Status {
		case StatusSuccess, StatusDryRun:
			s.Successful++
			s.SpaceFreed += op.SizeFreed
		case StatusFailedOp:
			s.Failed++
		case StatusSkipped:
			s.Skipped++
		}
	}
	return s
}

// Result is the outcome of an execution attempt.
type Result struct {
	Operations []OperationResult
	Summary    Summary
}

// Engine executes cleanup plans.
type Engine struct {
	cfg Config

	// trashFn moves a path to the recycle bin; replaceable in tests.
	trashFn func(string) error
}

// NewEngine creates an execution engine. Defaults are applied for
// unset batch size and worker count.
func NewEngine(cfg Config) *Engine {
	if cfg.BatchSize < 1 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.Workers < 1 {
		cfg.Workers = runtime.NumCPU()
	}
	return &Engine{cfg: cfg, trashFn: trash.MoveToTrash}
}

// Execute carries out the plan's Delete entries. Keep and Review
// entries are never acted upon and produce no operations. The
// configuration is validated before any filesystem access.
//
// On user abort the partial result is returned together with
// ErrUserAborted.
func (e *Engine) Execute(p *plan.Plan) (*Result, error) {
	if e.cfg.Parallel && e.cfg.Mode == ModeInteractive {
		return nil, ErrInteractiveParallel
	}
	if e.cfg.Mode == ModeInteractive && e.cfg.Prompter == nil {
		return nil, ErrNoPrompter
	}

	if e.cfg.PlanFile != "" && e.cfg.Mode != ModeDryRun {
		release, err := acquirePlanLock(e.cfg.PlanFile)
		if err != nil {
			return nil, err
		}
		defer release()
	}

	start := time.Now()
	targets := deleteEntries(p)
	if e.cfg.Tracker != nil {
		e.cfg.Tracker.SetTotal(int64(len(targets)))
	}

	var operations []OperationResult
	var runErr error
	if e.cfg.Parallel {
		operations, runErr = e.runParallel(p.BasePath, targets)
	} else {
		operations, runErr = e.runSequential(p.BasePath, targets)
	}

	result := &Result{
		Operations: operations,
		Summary:    Summarize(operations, time.Since(start)),
	}

	if err := e.finalizeLog(result, runErr); err != nil && runErr == nil {
		runErr = err
	}

	return result, runErr
}

// finalizeLog closes out the transaction log with the terminal status.
func (e *Engine) finalizeLog(result *Result, runErr error) error {
	if e.cfg.Logger == nil {
		return nil
	}

	status := StatusCompleted
	switch {
	case errors.Is(runErr, ErrUserAborted):
		status = StatusAborted
	case result.Summary.Failed > 0:
		status = StatusFailed
	}

	return e.cfg.Logger.Finalize(result.Summary, status)
}

// runSequential processes entries in order. Fail-fast is
// entry-granular: the run stops immediately after the first failure,
// which is included in the results.
func (e *Engine) runSequential(basePath string, entries []plan.Entry) ([]OperationResult, error) {
	var operations []OperationResult

	for _, entry := range entries {
		fullPath := resolve(basePath, entry.Path)

		if e.cfg.Mode == ModeInteractive {
			choice, err := e.cfg.Prompter.Confirm(entry)
			if err != nil {
				return operations, fmt.Errorf("prompt: %w", err)
			}
			switch choice {
			case ChoiceNo:
				op := OperationResult{
					Path:      fullPath,
					Action:    ActionSkip,
					Status:    StatusSkipped,
					Timestamp: time.Now().UTC(),
				}
				if err := e.record(&operations, op); err != nil {
					return operations, err
				}
				continue
			case ChoiceAbort:
				return operations, ErrUserAborted
			}
		}

		op := e.executeSingle(fullPath, entry)
		if err := e.record(&operations, op); err != nil {
			return operations, err
		}

		if e.cfg.FailFast && op.Status == StatusFailedOp {
			break
		}
	}

	return operations, nil
}

// runParallel partitions entries into fixed-size batches and processes
// each batch concurrently. Fail-fast is batch-granular: a failure
// observed in a finished batch stops the run before the next batch
// starts, but never cancels in-flight workers.
func (e *Engine) runParallel(basePath string, entries []plan.Entry) ([]OperationResult, error) {
	var operations []OperationResult
	var recordErr error
	aborted := false

	for from := 0; from < len(entries) && !aborted; from += e.cfg.BatchSize {
		to := from + e.cfg.BatchSize
		if to > len(entries) {
			to = len(entries)
		}
		batch := entries[from:to]

		batchOps := make([]OperationResult, len(batch))
		jobs := make(chan int)
		var wg sync.WaitGroup

		for w := 0; w < e.cfg.Workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range jobs {
					entry := batch[i]
					batchOps[i] = e.executeSingle(resolve(basePath, entry.Path), entry)
				}
			}()
		}
		for i := range batch {
			jobs <- i
		}
		close(jobs)
		wg.Wait()

		for _, op := range batchOps {
			if err := e.record(&operations, op); err != nil && recordErr == nil {
				recordErr = err
			}
			if e.cfg.FailFast && op.Status == StatusFailedOp {
				aborted = true
			}
		}
		if recordErr != nil {
			return operations, recordErr
		}
	}

	return operations, nil
}

// record appends an operation, updates progress, and writes it to the
// transaction log when one is configured.
func (e *Engine) record(operations *[]OperationResult, op OperationResult) error {
	*operations = append(*operations, op)
	if e.cfg.Tracker != nil {
		e.cfg.Tracker.Increment()
	}
	if e.cfg.Logger != nil {
		if err := e.cfg.Logger.LogOperation(op); err != nil {
			return err
		}
	}
	return nil
}

// executeSingle performs one operation. Action selection is mutually
// exclusive, in priority order: dry-run, recycle bin, backup, delete.
func (e *Engine) executeSingle(fullPath string, entry plan.Entry) OperationResult {
	timestamp := time.Now().UTC()

	if e.cfg.Mode == ModeDryRun {
		return OperationResult{
			Path:      fullPath,
			Action:    ActionDelete,
			Status:    StatusDryRun,
			SizeFreed: entry.Size,
			Timestamp: timestamp,
		}
	}

	var action Action
	var err error
	switch {
	case e.cfg.UseRecycleBin:
		action = ActionMoveToRecycle
		err = e.trashFn(fullPath)
	case e.cfg.BackupDir != "":
		action = ActionMoveToBackup
		err = moveToBackup(fullPath, entry.Path, e.cfg.BackupDir)
	default:
		action = ActionDelete
		err = deletePath(fullPath)
	}

	if err != nil {
		return OperationResult{
			Path:      fullPath,
			Action:    action,
			Status:    StatusFailedOp,
			Error:     err.Error(),
			Timestamp: timestamp,
		}
	}

	return OperationResult{
		Path:      fullPath,
		Action:    action,
		Status:    StatusSuccess,
		SizeFreed: entry.Size,
		Timestamp: timestamp,
	}
}

// deletePath removes a file or, recursively, a directory.
func deletePath(path string) error {
	info, err := os.Lstat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return os.RemoveAll(path)
	}
	return os.Remove(path)
}

// moveToBackup renames the entry beneath the backup root, recreating
// its plan-relative directory structure.
func moveToBackup(fullPath, relPath, backupDir string) error {
	dest := filepath.Join(backupDir, relPath)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	return os.Rename(fullPath, dest)
}

// deleteEntries filters the plan down to its Delete entries.
func deleteEntries(p *plan.Plan) []plan.Entry {
	var out []plan.Entry
	for _, e := range p.Entries {
		if e.Action == plan.ActionDelete {
			out = append(out, e)
		}
	}
	return out
}

// resolve joins a plan-relative entry path onto the base path.
func resolve(basePath, entryPath string) string {
	if entryPath == plan.Sentinel {
		return basePath
	}
	return filepath.Join(basePath, entryPath)
}
