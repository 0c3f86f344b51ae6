package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/leakwatch/assistant/internal/core/domain"
)

func testCatalog() []domain.ToolDescriptor {
	return []domain.ToolDescriptor{
		{
			Name:        "probe",
			Description: "test probe",
			Role:        domain.RoleAnalytics,
			Display:     "probing",
			Parameters:  map[string]any{"type": "object"},
		},
	}
}

func TestNewDispatcherRejectsMissingHandler(t *testing.T) {
	_, err := NewDispatcher(testCatalog(), map[string]Handler{})
	if err == nil {
		t.Fatal("expected error for catalog entry without handler")
	}
	if !strings.Contains(err.Error(), "probe") {
		t.Fatalf("expected offending tool name in error, got %q", err.Error())
	}
}

func TestNewDispatcherRejectsOrphanHandler(t *testing.T) {
	handlers := map[string]Handler{
		"probe": func(context.Context, map[string]any) (any, string, error) { return nil, "", nil },
		"ghost": func(context.Context, map[string]any) (any, string, error) { return nil, "", nil },
	}
	_, err := NewDispatcher(testCatalog(), handlers)
	if err == nil {
		t.Fatal("expected error for handler without catalog entry")
	}
	if !strings.Contains(err.Error(), "ghost") {
		t.Fatalf("expected orphan handler name in error, got %q", err.Error())
	}
}

func TestNewDispatcherRejectsDuplicateTool(t *testing.T) {
	catalog := append(testCatalog(), testCatalog()...)
	handlers := map[string]Handler{
		"probe": func(context.Context, map[string]any) (any, string, error) { return nil, "", nil },
	}
	if _, err := NewDispatcher(catalog, handlers); err == nil {
		t.Fatal("expected error for duplicate tool name")
	}
}

func TestDispatcherAcceptsFullCatalog(t *testing.T) {
	catalog := Catalog()
	handlers := make(map[string]Handler, len(catalog))
	for _, descriptor := range catalog {
		handlers[descriptor.Name] = func(context.Context, map[string]any) (any, string, error) {
			return nil, "", nil
		}
	}
	dispatcher, err := NewDispatcher(catalog, handlers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := len(dispatcher.Catalog()); got != len(catalog) {
		t.Fatalf("expected %d catalog entries, got %d", len(catalog), got)
	}
}

func TestExecuteUnknownToolYieldsErrorPayload(t *testing.T) {
	handlers := map[string]Handler{
		"probe": func(context.Context, map[string]any) (any, string, error) { return nil, "", nil },
	}
	dispatcher, err := NewDispatcher(testCatalog(), handlers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	trace := NewTrace()
	result := dispatcher.Execute(context.Background(), domain.ToolCallRequest{Name: "drop_tables"}, trace)

	if result.Tool != "drop_tables" {
		t.Fatalf("unexpected tool name: %q", result.Tool)
	}
	payload, ok := result.Payload.(map[string]string)
	if !ok || payload["error"] == "" {
		t.Fatalf("expected error payload, got %#v", result.Payload)
	}

	steps := trace.Steps()
	if len(steps) != 1 {
		t.Fatalf("expected 1 step, got %d", len(steps))
	}
	if steps[0].Status != domain.StepError {
		t.Fatalf("expected error step, got %s", steps[0].Status)
	}
	if steps[0].Role != domain.RoleExecutive {
		t.Fatalf("unknown tools are attributed to the executive role, got %s", steps[0].Role)
	}
}

func TestExecuteHandlerFailureYieldsErrorPayload(t *testing.T) {
	handlers := map[string]Handler{
		"probe": func(context.Context, map[string]any) (any, string, error) {
			return nil, "", errors.New("backend unavailable")
		},
	}
	dispatcher, err := NewDispatcher(testCatalog(), handlers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	trace := NewTrace()
	result := dispatcher.Execute(context.Background(), domain.ToolCallRequest{Name: "probe"}, trace)

	payload, ok := result.Payload.(map[string]string)
	if !ok {
		t.Fatalf("expected error payload, got %#v", result.Payload)
	}
	if !strings.Contains(payload["error"], "backend unavailable") {
		t.Fatalf("expected cause in error payload, got %q", payload["error"])
	}

	steps := trace.Steps()
	if len(steps) != 1 || steps[0].Status != domain.StepError {
		t.Fatalf("expected exactly one failed step, got %#v", steps)
	}
}

func TestExecuteSuccessRecordsOneCompletedStep(t *testing.T) {
	handlers := map[string]Handler{
		"probe": func(_ context.Context, args map[string]any) (any, string, error) {
			return map[string]any{"echo": args["value"]}, "1 probe found", nil
		},
	}
	dispatcher, err := NewDispatcher(testCatalog(), handlers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	trace := NewTrace()
	result := dispatcher.Execute(context.Background(), domain.ToolCallRequest{
		Name:      "probe",
		Arguments: map[string]any{"value": "x"},
	}, trace)

	payload, ok := result.Payload.(map[string]any)
	if !ok || payload["echo"] != "x" {
		t.Fatalf("expected echoed payload, got %#v", result.Payload)
	}

	steps := trace.Steps()
	if len(steps) != 1 {
		t.Fatalf("expected 1 step, got %d", len(steps))
	}
	if steps[0].Status != domain.StepCompleted {
		t.Fatalf("expected completed step, got %s", steps[0].Status)
	}
	if steps[0].Role != domain.RoleAnalytics {
		t.Fatalf("expected the catalog-bound role, got %s", steps[0].Role)
	}
	if steps[0].Result != "1 probe found" {
		t.Fatalf("unexpected step result: %q", steps[0].Result)
	}
}
