package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jsamuelsen/library-circulation/internal/domain"
	"github.com/jsamuelsen/library-circulation/internal/platform/logging"
)

// Step names one stage of a gateway operation. Stages run in order and
// the first failure stops the operation:
//
//	validate  checks inputs and loan state; the gateway is not touched
//	perform   calls the gateway
//	verify    turns a refusal in the gateway's reply into an error
//	respond   builds the caller's receipt
type Step string

const (
	StepValidate Step = "validate"
	StepPerform  Step = "perform"
	StepVerify   Step = "verify"
	StepRespond  Step = "respond"
)

// StepError records the operation and stage where a failure happened. The
// domain error stays in the chain for domain.KindOf and errors.Is.
type StepError struct {
	Operation string
	Step      Step
	Err       error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Operation, e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Executor runs gateway operations and logs each outcome once.
type Executor struct {
	logger *slog.Logger
}

// NewExecutor creates an executor. The context logger wins over logger.
func NewExecutor(logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}

	return &Executor{logger: logger}
}

// Operation is one gateway call: I is the request, R the gateway reply and
// O the receipt handed back to the caller. Nil stages are skipped.
type Operation[I, R, O any] struct {
	Name string

	Validate func(ctx context.Context, in I) error
	Perform  func(ctx context.Context, in I) (R, error)
	Verify   func(ctx context.Context, in I, reply R) error
	Respond  func(ctx context.Context, in I, reply R) (O, error)

	// OnPanic converts a panic raised by Perform into an error. When nil
	// the panic propagates.
	OnPanic func(recovered any) error
}

// Execute runs op on in.
func Execute[I, R, O any](ctx context.Context, exec *Executor, op Operation[I, R, O], in I) (out O, err error) {
	logger := logging.FromContextOr(ctx, exec.logger).With(slog.String("operation", op.Name))
	start := time.Now()

	var (
		step  = StepValidate
		reply R
	)

	defer func() {
		if err == nil {
			logger.InfoContext(ctx, "operation completed", slog.Duration("duration", time.Since(start)))
			return
		}

		logFailure(ctx, logger, step, err)
		err = &StepError{Operation: op.Name, Step: step, Err: err}
	}()

	if op.Validate != nil {
		if err = op.Validate(ctx, in); err != nil {
			return out, err
		}
	}

	step = StepPerform
	if op.Perform != nil {
		if reply, err = perform(ctx, op, in); err != nil {
			return out, err
		}
	}

	step = StepVerify
	if op.Verify != nil {
		if err = op.Verify(ctx, in, reply); err != nil {
			return out, err
		}
	}

	step = StepRespond
	if op.Respond != nil {
		return op.Respond(ctx, in, reply)
	}

	return out, nil
}

func perform[I, R, O any](ctx context.Context, op Operation[I, R, O], in I) (reply R, err error) {
	if op.OnPanic != nil {
		defer func() {
			if r := recover(); r != nil {
				err = op.OnPanic(r)
			}
		}()
	}

	return op.Perform(ctx, in)
}

// logFailure logs refusals caught before the gateway at info, gateway
// refusals at warn and everything else at error.
func logFailure(ctx context.Context, logger *slog.Logger, step Step, err error) {
	attrs := []any{
		slog.String("step", string(step)),
		slog.String("kind", string(domain.KindOf(err))),
		slog.Any("error", err),
	}

	switch {
	case step == StepValidate:
		logger.InfoContext(ctx, "operation refused", attrs...)
	case step == StepVerify && domain.IsPaymentDeclined(err):
		logger.WarnContext(ctx, "gateway declined", attrs...)
	default:
		logger.ErrorContext(ctx, "operation failed", attrs...)
	}
}
