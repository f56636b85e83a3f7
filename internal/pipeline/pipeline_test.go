package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"testing"

	"github.com/nao1215/planecrash/internal/model"
)

// mockStep is a test helper that implements the Step interface.
type mockStep struct {
	name      string
	doFunc    func(ctx context.Context, incident *model.Incident) error
	callCount int
}

// Do implements Step.Do.
func (m *mockStep) Do(ctx context.Context, incident *model.Incident) error {
	m.callCount++
	if m.doFunc != nil {
		return m.doFunc(ctx, incident)
	}
	return nil
}

// Name implements Step.Name.
func (m *mockStep) Name() string {
	return m.name
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestPipelineNew tests the Pipeline constructor.
func TestPipelineNew(t *testing.T) {
	t.Parallel()

	t.Run("creates pipeline with default settings", func(t *testing.T) {
		t.Parallel()

		p := New()

		if p == nil {
			t.Fatal("expected non-nil pipeline")
		}
		if p.StepCount() != 0 {
			t.Errorf("expected 0 steps, got %d", p.StepCount())
		}
		if p.logger == nil {
			t.Error("expected default logger")
		}
	})

	t.Run("applies WithContinueOnError option", func(t *testing.T) {
		t.Parallel()

		p := New(WithContinueOnError(true))

		if !p.continueOnError {
			t.Error("expected continueOnError to be true")
		}
	})
}

// TestPipelineStepNames tests step registration order.
func TestPipelineStepNames(t *testing.T) {
	t.Parallel()

	p := New()
	p.AddStep(&mockStep{name: "extract"})
	p.AddFinalStep(&mockStep{name: "ledger"})
	p.AddSteps(&mockStep{name: "write"})

	want := []string{"extract", "write", "ledger"}
	if got := p.StepNames(); !reflect.DeepEqual(got, want) {
		t.Errorf("StepNames() = %v, want %v", got, want)
	}
	if p.StepCount() != 3 {
		t.Errorf("expected 3 steps, got %d", p.StepCount())
	}
}

// TestPipelineExecute tests step execution.
func TestPipelineExecute(t *testing.T) {
	t.Parallel()

	t.Run("executes steps in order", func(t *testing.T) {
		t.Parallel()

		var order []string
		step := func(name string) *mockStep {
			return &mockStep{name: name, doFunc: func(context.Context, *model.Incident) error {
				order = append(order, name)
				return nil
			}}
		}

		p := New(WithLogger(quietLogger()))
		p.AddSteps(step("a"), step("b"))
		p.AddFinalStep(step("c"))

		incident := model.NewIncident("1922/1922-1.htm", "1922")
		if err := p.Execute(context.Background(), incident); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := []string{"a", "b", "c"}
		if !reflect.DeepEqual(order, want) {
			t.Errorf("order = %v, want %v", order, want)
		}
		if !reflect.DeepEqual(incident.PerformedSteps, want) {
			t.Errorf("performed = %v, want %v", incident.PerformedSteps, want)
		}
		if incident.Failed() {
			t.Error("incident should not be failed")
		}
	})

	t.Run("stops on error but runs final steps", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("boom")
		failing := &mockStep{name: "extract", doFunc: func(context.Context, *model.Incident) error {
			return boom
		}}
		skipped := &mockStep{name: "write"}
		final := &mockStep{name: "ledger"}

		p := New(WithLogger(quietLogger()))
		p.AddSteps(failing, skipped)
		p.AddFinalStep(final)

		incident := model.NewIncident("1922/1922-1.htm", "1922")
		err := p.Execute(context.Background(), incident)
		if !errors.Is(err, boom) {
			t.Fatalf("expected boom, got %v", err)
		}

		if skipped.callCount != 0 {
			t.Error("step after failure should not run")
		}
		if final.callCount != 1 {
			t.Error("final step should run after failure")
		}
		if !errors.Is(incident.Error, boom) || incident.ErrorMessage != "boom" {
			t.Errorf("incident error not recorded: %v", incident.Error)
		}
		if !reflect.DeepEqual(incident.PerformedSteps, []string{"ledger"}) {
			t.Errorf("performed = %v", incident.PerformedSteps)
		}
	})

	t.Run("continue on error runs remaining steps", func(t *testing.T) {
		t.Parallel()

		first := errors.New("first")
		second := errors.New("second")
		a := &mockStep{name: "a", doFunc: func(context.Context, *model.Incident) error { return first }}
		b := &mockStep{name: "b", doFunc: func(context.Context, *model.Incident) error { return second }}

		p := New(WithLogger(quietLogger()), WithContinueOnError(true))
		p.AddSteps(a, b)

		incident := model.NewIncident("x.htm", "")
		err := p.Execute(context.Background(), incident)
		if !errors.Is(err, first) {
			t.Errorf("expected first error, got %v", err)
		}
		if b.callCount != 1 {
			t.Error("second step should run")
		}
		if !errors.Is(incident.Error, first) {
			t.Errorf("incident should keep the first error, got %v", incident.Error)
		}
	})

	t.Run("final step error is returned", func(t *testing.T) {
		t.Parallel()

		ledgerErr := errors.New("disk full")
		p := New(WithLogger(quietLogger()))
		p.AddStep(&mockStep{name: "extract"})
		p.AddFinalStep(&mockStep{name: "ledger", doFunc: func(context.Context, *model.Incident) error {
			return ledgerErr
		}})

		err := p.Execute(context.Background(), model.NewIncident("x.htm", ""))
		if !errors.Is(err, ledgerErr) {
			t.Errorf("expected ledger error, got %v", err)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		step := &mockStep{name: "extract"}
		final := &mockStep{name: "ledger"}
		p := New(WithLogger(quietLogger()))
		p.AddStep(step)
		p.AddFinalStep(final)

		err := p.Execute(ctx, model.NewIncident("x.htm", ""))
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if step.callCount != 0 || final.callCount != 0 {
			t.Error("no step should run after cancellation")
		}
	})
}
