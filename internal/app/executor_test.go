package app

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/library-circulation/internal/domain"
)

// stepOf reports the stage at which err stopped an operation.
func stepOf(err error) (Step, bool) {
	var stepErr *StepError
	if errors.As(err, &stepErr) {
		return stepErr.Step, true
	}

	return "", false
}

func TestExecute_StepsRunInOrder(t *testing.T) {
	var calls []Step

	op := Operation[int, int, string]{
		Name: "double",
		Validate: func(context.Context, int) error {
			calls = append(calls, StepValidate)
			return nil
		},
		Perform: func(_ context.Context, in int) (int, error) {
			calls = append(calls, StepPerform)
			return in * 2, nil
		},
		Verify: func(_ context.Context, _ int, reply int) error {
			calls = append(calls, StepVerify)
			if reply != 42 {
				return errors.New("unexpected reply")
			}

			return nil
		},
		Respond: func(_ context.Context, in, reply int) (string, error) {
			calls = append(calls, StepRespond)
			if in == 21 && reply == 42 {
				return "ok", nil
			}

			return "unexpected", nil
		},
	}

	out, err := Execute(context.Background(), NewExecutor(discardLogger()), op, 21)
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, []Step{StepValidate, StepPerform, StepVerify, StepRespond}, calls)
}

func TestExecute_FailureStops(t *testing.T) {
	boom := domain.NewConflictError(domain.KindNoFeeDue, "late fee", "nothing owed")

	tests := []struct {
		name     string
		op       Operation[int, int, int]
		wantStep Step
	}{
		{
			name: "validate",
			op: Operation[int, int, int]{
				Validate: func(context.Context, int) error { return boom },
				Perform:  func(context.Context, int) (int, error) { panic("perform must not run") },
			},
			wantStep: StepValidate,
		},
		{
			name: "perform",
			op: Operation[int, int, int]{
				Perform: func(context.Context, int) (int, error) { return 0, boom },
				Verify:  func(context.Context, int, int) error { panic("verify must not run") },
			},
			wantStep: StepPerform,
		},
		{
			name: "verify",
			op: Operation[int, int, int]{
				Verify:  func(context.Context, int, int) error { return boom },
				Respond: func(context.Context, int, int) (int, error) { panic("respond must not run") },
			},
			wantStep: StepVerify,
		},
		{
			name: "respond",
			op: Operation[int, int, int]{
				Respond: func(context.Context, int, int) (int, error) { return 0, boom },
			},
			wantStep: StepRespond,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.op.Name = tt.name

			_, err := Execute(context.Background(), NewExecutor(nil), tt.op, 1)

			require.Error(t, err)
			assert.ErrorIs(t, err, boom)
			assert.Equal(t, domain.KindNoFeeDue, domain.KindOf(err))
			assert.Equal(t, "late fee conflict: nothing owed", domain.Describe(err))

			var stepErr *StepError
			require.ErrorAs(t, err, &stepErr)
			assert.Equal(t, tt.name, stepErr.Operation)

			step, ok := stepOf(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantStep, step)
		})
	}
}

func TestExecute_PerformPanic(t *testing.T) {
	op := Operation[string, domain.ChargeResult, string]{
		Name: "charge",
		Perform: func(context.Context, string) (domain.ChargeResult, error) {
			panic("card reader exploded")
		},
		Verify: func(context.Context, string, domain.ChargeResult) error {
			panic("verify must not run")
		},
		OnPanic: gatewayPanic,
	}

	_, err := Execute(context.Background(), NewExecutor(discardLogger()), op, "123456")

	require.Error(t, err)
	assert.Equal(t, domain.KindPaymentGatewayError, domain.KindOf(err))
	assert.Contains(t, domain.Describe(err), "card reader exploded")

	step, _ := stepOf(err)
	assert.Equal(t, StepPerform, step)
}

func TestExecute_PanicWithoutHandlerPropagates(t *testing.T) {
	op := Operation[int, int, int]{
		Perform: func(context.Context, int) (int, error) { panic("unhandled") },
	}

	assert.PanicsWithValue(t, "unhandled", func() {
		_, _ = Execute(context.Background(), NewExecutor(discardLogger()), op, 1)
	})
}

func TestExecute_LogLevels(t *testing.T) {
	tests := []struct {
		name      string
		op        Operation[int, int, int]
		wantLevel string
		wantMsg   string
	}{
		{
			name:      "refused before the gateway",
			op:        Operation[int, int, int]{Validate: func(context.Context, int) error { return domain.NewValidationErrorWithValue(domain.KindInvalidPatronID, "patron_id", "bad", "x") }},
			wantLevel: "INFO",
			wantMsg:   "operation refused",
		},
		{
			name:      "declined by the gateway",
			op:        Operation[int, int, int]{Verify: func(context.Context, int, int) error { return domain.NewPaymentDeclinedError("insufficient funds") }},
			wantLevel: "WARN",
			wantMsg:   "gateway declined",
		},
		{
			name:      "gateway down",
			op:        Operation[int, int, int]{Perform: func(context.Context, int) (int, error) { return 0, domain.NewUnavailableError("payment-gateway", "timeout") }},
			wantLevel: "ERROR",
			wantMsg:   "operation failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			logger := slog.New(slog.NewTextHandler(&buf, nil))

			_, err := Execute(context.Background(), NewExecutor(logger), tt.op, 1)
			require.Error(t, err)

			out := buf.String()
			assert.Contains(t, out, "level="+tt.wantLevel)
			assert.Contains(t, out, tt.wantMsg)
			assert.Contains(t, out, "kind="+string(domain.KindOf(err)))
		})
	}
}

func TestStepError_ForeignError(t *testing.T) {
	_, ok := stepOf(errors.New("plain"))
	assert.False(t, ok)
}
