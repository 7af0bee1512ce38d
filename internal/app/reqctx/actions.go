package reqctx

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jsamuelsen/library-circulation/internal/platform/logging"
)

// Action represents a staged write operation.
type Action interface {
	// Execute performs the action.
	Execute(ctx context.Context) error

	// Rollback compensates a successfully executed action.
	Rollback(ctx context.Context) error

	// Description returns a human-readable description for logging.
	Description() string
}

// Step is an Action assembled from functions. A nil undo means the step
// needs no compensation.
type Step struct {
	description string
	do          func(ctx context.Context) error
	undo        func(ctx context.Context) error
}

// NewStep creates a Step.
func NewStep(description string, do, undo func(ctx context.Context) error) *Step {
	return &Step{description: description, do: do, undo: undo}
}

// Execute implements Action.
func (s *Step) Execute(ctx context.Context) error {
	return s.do(ctx)
}

// Rollback implements Action.
func (s *Step) Rollback(ctx context.Context) error {
	if s.undo == nil {
		return nil
	}

	return s.undo(ctx)
}

// Description implements Action.
func (s *Step) Description() string {
	return s.description
}

// AddAction stages an action for later execution.
func (rc *RequestContext) AddAction(action Action) error {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if rc.committed {
		return ErrAlreadyCommitted
	}

	rc.actions = append(rc.actions, action)

	return nil
}

// Commit executes all staged actions in order.
// On failure, executed actions are rolled back in reverse order. Rollback
// failures are logged and joined into the returned error, since they leave
// the store inconsistent.
func (rc *RequestContext) Commit(ctx context.Context) error {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if rc.committed {
		return ErrAlreadyCommitted
	}

	var executed []Action

	for _, action := range rc.actions {
		if err := action.Execute(ctx); err != nil {
			failure := fmt.Errorf("action %q failed: %w", action.Description(), err)

			return errors.Join(failure, rollback(ctx, executed))
		}

		executed = append(executed, action)
	}

	rc.committed = true

	return nil
}

func rollback(ctx context.Context, executed []Action) error {
	var errs []error

	for i := len(executed) - 1; i >= 0; i-- {
		if err := executed[i].Rollback(ctx); err != nil {
			logging.FromContext(ctx).ErrorContext(ctx, "rollback failed",
				slog.String("action", executed[i].Description()),
				slog.String("error", err.Error()),
			)

			errs = append(errs, fmt.Errorf("rollback %q: %w", executed[i].Description(), err))
		}
	}

	return errors.Join(errs...)
}
