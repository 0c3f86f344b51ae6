package agent

import (
	"context"
	"fmt"
	"sort"

	"github.com/leakwatch/assistant/internal/core/domain"
)

// Handler executes one tool call. It returns the structured payload echoed
// back to the model and a short human-readable summary for the trace.
// Handlers are plain data-in/data-out functions: no retries, no sleeps, no
// state shared across tools.
type Handler func(ctx context.Context, args map[string]any) (any, string, error)

// Dispatcher maps the closed tool catalog onto handlers. The mapping is
// validated to be a bijection at construction, so an unknown tool at run
// time can only come from the model, never from wiring drift.
type Dispatcher struct {
	catalog  []domain.ToolDescriptor
	byName   map[string]domain.ToolDescriptor
	handlers map[string]Handler
}

func NewDispatcher(catalog []domain.ToolDescriptor, handlers map[string]Handler) (*Dispatcher, error) {
	byName := make(map[string]domain.ToolDescriptor, len(catalog))
	for _, descriptor := range catalog {
		if descriptor.Name == "" {
			return nil, fmt.Errorf("tool dispatcher: descriptor with empty name")
		}
		if _, dup := byName[descriptor.Name]; dup {
			return nil, fmt.Errorf("tool dispatcher: duplicate tool %q", descriptor.Name)
		}
		if _, ok := handlers[descriptor.Name]; !ok {
			return nil, fmt.Errorf("tool dispatcher: no handler registered for %q", descriptor.Name)
		}
		byName[descriptor.Name] = descriptor
	}
	if len(handlers) != len(catalog) {
		extra := make([]string, 0)
		for name := range handlers {
			if _, ok := byName[name]; !ok {
				extra = append(extra, name)
			}
		}
		sort.Strings(extra)
		return nil, fmt.Errorf("tool dispatcher: handlers without catalog entry: %v", extra)
	}

	return &Dispatcher{
		catalog:  catalog,
		byName:   byName,
		handlers: handlers,
	}, nil
}

func (d *Dispatcher) Catalog() []domain.ToolDescriptor {
	out := make([]domain.ToolDescriptor, len(d.catalog))
	copy(out, d.catalog)
	return out
}

// Execute runs one tool call and records exactly one terminal thinking step
// for it. Every call yields a result: unknown tools and handler failures
// become structured error payloads so the session can continue.
func (d *Dispatcher) Execute(ctx context.Context, call domain.ToolCallRequest, trace *Trace) domain.ToolResult {
	descriptor, ok := d.byName[call.Name]
	if !ok {
		stepID := trace.Begin(domain.RoleExecutive, call.Name, "أداة غير معروفة / unknown tool")
		message := domain.WrapError(domain.ErrUnknownTool, "dispatch", fmt.Errorf("%q is not in the catalog", call.Name)).Error()
		trace.Fail(stepID, message)
		return domain.ToolResult{
			Tool:    call.Name,
			Payload: map[string]string{"error": message},
		}
	}

	stepID := trace.Begin(descriptor.Role, call.Name, descriptor.Display)
	payload, summary, err := d.handlers[call.Name](ctx, call.Arguments)
	if err != nil {
		message := domain.WrapError(domain.ErrToolExecution, call.Name, err).Error()
		trace.Fail(stepID, message)
		return domain.ToolResult{
			Tool:    call.Name,
			Payload: map[string]string{"error": message},
		}
	}

	trace.Complete(stepID, summary)
	return domain.ToolResult{Tool: call.Name, Payload: payload}
}
