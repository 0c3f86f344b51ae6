package agent

import (
	"testing"

	"github.com/leakwatch/assistant/internal/core/domain"
)

func TestTraceStepLifecycle(t *testing.T) {
	trace := NewTrace()

	id := trace.Begin(domain.RoleAnalytics, "query_leaks", "querying leaks")
	if id == "" {
		t.Fatal("expected a step id")
	}
	steps := trace.Steps()
	if len(steps) != 1 {
		t.Fatalf("expected 1 step, got %d", len(steps))
	}
	if steps[0].Status != domain.StepRunning {
		t.Fatalf("expected running status, got %s", steps[0].Status)
	}

	trace.Complete(id, "3 leaks found")
	steps = trace.Steps()
	if len(steps) != 1 {
		t.Fatalf("expected 1 collapsed step, got %d", len(steps))
	}
	if steps[0].Status != domain.StepCompleted {
		t.Fatalf("expected completed status, got %s", steps[0].Status)
	}
	if steps[0].Result != "3 leaks found" {
		t.Fatalf("unexpected result: %q", steps[0].Result)
	}
}

func TestTraceTerminalStateIsFinal(t *testing.T) {
	trace := NewTrace()

	id := trace.Begin(domain.RoleKnowledge, "search_knowledge", "searching")
	trace.Fail(id, "provider down")
	trace.Complete(id, "late success must be ignored")

	steps := trace.Steps()
	if len(steps) != 1 {
		t.Fatalf("expected 1 step, got %d", len(steps))
	}
	if steps[0].Status != domain.StepError {
		t.Fatalf("expected error status, got %s", steps[0].Status)
	}
	if steps[0].Result != "provider down" {
		t.Fatalf("unexpected result: %q", steps[0].Result)
	}
}

func TestTracePreservesBeginOrder(t *testing.T) {
	trace := NewTrace()

	first := trace.Begin(domain.RoleAnalytics, "query_leaks", "a")
	second := trace.Begin(domain.RoleMonitoring, "list_sellers", "b")
	third := trace.Begin(domain.RoleAudit, "list_reports", "c")

	// Close out of order: the rendered order must still follow Begin.
	trace.Complete(third, "done")
	trace.Fail(first, "boom")
	trace.Complete(second, "done")

	steps := trace.Steps()
	if len(steps) != 3 {
		t.Fatalf("expected 3 steps, got %d", len(steps))
	}
	if steps[0].Action != "query_leaks" || steps[1].Action != "list_sellers" || steps[2].Action != "list_reports" {
		t.Fatalf("unexpected order: %s, %s, %s", steps[0].Action, steps[1].Action, steps[2].Action)
	}
	if steps[0].Status != domain.StepError {
		t.Fatalf("expected first step failed, got %s", steps[0].Status)
	}
	if trace.Len() != 3 {
		t.Fatalf("expected Len 3, got %d", trace.Len())
	}
}

func TestTraceFinishUnknownIDIsNoop(t *testing.T) {
	trace := NewTrace()
	trace.Begin(domain.RoleExecutive, "model_invocation", "invoking")

	trace.Complete("missing-id", "ignored")

	steps := trace.Steps()
	if len(steps) != 1 {
		t.Fatalf("expected 1 step, got %d", len(steps))
	}
	if steps[0].Status != domain.StepRunning {
		t.Fatalf("expected running status, got %s", steps[0].Status)
	}
}
