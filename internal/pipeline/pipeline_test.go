package pipeline

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/nao1215/biomail/internal/model"
)

// mockStep is a test helper that implements the Step interface.
type mockStep struct {
	name      string
	doFunc    func(ctx context.Context, job *model.HandleJob) error
	callCount int
}

// Do implements Step.Do.
func (m *mockStep) Do(ctx context.Context, job *model.HandleJob) error {
	m.callCount++
	if m.doFunc != nil {
		return m.doFunc(ctx, job)
	}
	return nil
}

// Name implements Step.Name.
func (m *mockStep) Name() string {
	return m.name
}

// TestPipelineNew tests the Pipeline constructor.
func TestPipelineNew(t *testing.T) {
	t.Parallel()

	p := New()
	if p.StepCount() != 0 {
		t.Errorf("expected 0 steps, got %d", p.StepCount())
	}
	if p.logger == nil {
		t.Error("expected default logger")
	}
}

// TestPipelineAddStep tests adding steps to the pipeline.
func TestPipelineAddStep(t *testing.T) {
	t.Parallel()

	t.Run("adds single step", func(t *testing.T) {
		t.Parallel()

		p := New()
		p.AddStep(&mockStep{name: "a"})
		if p.StepCount() != 1 {
			t.Errorf("expected 1 step, got %d", p.StepCount())
		}
	})

	t.Run("maintains step order", func(t *testing.T) {
		t.Parallel()

		p := New()
		p.AddSteps(&mockStep{name: "a"}, &mockStep{name: "b"})
		p.AddStep(&mockStep{name: "c"})

		if diff := cmp.Diff([]string{"a", "b", "c"}, p.StepNames()); diff != "" {
			t.Errorf("step names mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("empty pipeline has no names", func(t *testing.T) {
		t.Parallel()

		if names := New().StepNames(); len(names) != 0 {
			t.Errorf("expected no names, got %v", names)
		}
	})
}

// TestPipelineExecute tests step execution.
func TestPipelineExecute(t *testing.T) {
	t.Parallel()

	t.Run("executes all steps in order", func(t *testing.T) {
		t.Parallel()

		var order []string
		record := func(name string) *mockStep {
			return &mockStep{name: name, doFunc: func(context.Context, *model.HandleJob) error {
				order = append(order, name)
				return nil
			}}
		}

		p := New()
		p.AddSteps(record("first"), record("second"), record("third"))
		job := model.NewHandleJob("alice", model.SourceProfileBio)

		if err := p.Execute(context.Background(), job); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if diff := cmp.Diff([]string{"first", "second", "third"}, order); diff != "" {
			t.Errorf("order mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff(order, job.PerformedSteps); diff != "" {
			t.Errorf("performed steps mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("stops after a step skips the job", func(t *testing.T) {
		t.Parallel()

		skipper := &mockStep{name: "skipper", doFunc: func(_ context.Context, job *model.HandleJob) error {
			job.Skip(model.StatusNotFound, "gone")
			return nil
		}}
		after := &mockStep{name: "after"}

		p := New()
		p.AddSteps(skipper, after)
		job := model.NewHandleJob("bob", model.SourceProfileBio)

		if err := p.Execute(context.Background(), job); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if after.callCount != 0 {
			t.Error("expected step after skip not to run")
		}
		if job.Status != model.StatusNotFound {
			t.Errorf("expected status not-found, got %v", job.Status)
		}
	})

	t.Run("stops on error and marks the job failed", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("boom")
		failing := &mockStep{name: "failing", doFunc: func(context.Context, *model.HandleJob) error {
			return boom
		}}
		after := &mockStep{name: "after"}

		p := New()
		p.AddSteps(failing, after)
		job := model.NewHandleJob("carol", model.SourceProfileBio)

		err := p.Execute(context.Background(), job)
		if !errors.Is(err, boom) {
			t.Fatalf("expected boom, got %v", err)
		}
		if after.callCount != 0 {
			t.Error("expected step after failure not to run")
		}
		if job.Status != model.StatusFailed || job.Reason != "boom" {
			t.Errorf("expected failed status with reason, got %v %q", job.Status, job.Reason)
		}
		if len(job.PerformedSteps) != 0 {
			t.Errorf("expected failed step not to be recorded, got %v", job.PerformedSteps)
		}
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancelling := &mockStep{name: "cancelling", doFunc: func(context.Context, *model.HandleJob) error {
			cancel()
			return nil
		}}
		after := &mockStep{name: "after"}

		p := New()
		p.AddSteps(cancelling, after)

		err := p.Execute(ctx, model.NewHandleJob("dave", model.SourceProfileBio))
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if after.callCount != 0 {
			t.Error("expected no step after cancellation")
		}
	})
}

// TestPipelineWithLogger tests that the configured logger is used.
func TestPipelineWithLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	p := New(WithLogger(logger))
	p.AddStep(&mockStep{name: "logged"})

	if err := p.Execute(context.Background(), model.NewHandleJob("erin", model.SourceProfileBio)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte("step=logged")) {
		t.Errorf("expected step to be logged, got %q", buf.String())
	}
}
