package exec

import (
	"errors"
	"fmt"

	"github.com/gofrs/flock"
)

// ErrPlanLocked indicates another process is executing the same plan.
var ErrPlanLocked = errors.New("plan is locked by another execution")

// acquirePlanLock takes an advisory lock on a sibling of the plan file
// so two processes cannot execute the same plan concurrently. The lock
// file outlives the run; only the lock itself is released.
func acquirePlanLock(planFile string) (release func(), err error) {
	lock := flock.New(planFile + ".lock")

	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock plan %s: %w", planFile, err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrPlanLocked, planFile)
	}

	return func() { _ = lock.Unlock() }, nil
}
