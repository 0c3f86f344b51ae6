package agent

import (
	"time"

	"github.com/google/uuid"

	"github.com/leakwatch/assistant/internal/core/domain"
)

// Trace is the append-only reasoning log for one conversation turn. Every
// dispatch records two immutable events: a running record when the step
// begins and a terminal record when it completes or fails. Steps are never
// re-opened; Steps() renders the latest record per step in begin order.
//
// A Trace is owned by a single orchestrator turn and is not safe for
// concurrent use.
type Trace struct {
	records []domain.ThinkingStep
	order   []string
}

func NewTrace() *Trace {
	return &Trace{}
}

// Begin appends a running record and returns the step id used to close it.
func (t *Trace) Begin(role domain.AgentRole, action, description string) string {
	id := uuid.NewString()
	t.order = append(t.order, id)
	t.records = append(t.records, domain.ThinkingStep{
		ID:          id,
		Role:        role,
		Action:      action,
		Description: description,
		Status:      domain.StepRunning,
		Timestamp:   time.Now().UTC(),
	})
	return id
}

// Complete appends the terminal completed record for a step with a short
// human-readable result summary.
func (t *Trace) Complete(id, result string) {
	t.finish(id, domain.StepCompleted, result)
}

// Fail appends the terminal error record for a step.
func (t *Trace) Fail(id, message string) {
	t.finish(id, domain.StepError, message)
}

func (t *Trace) finish(id string, status domain.StepStatus, result string) {
	for i := len(t.records) - 1; i >= 0; i-- {
		if t.records[i].ID != id {
			continue
		}
		if t.records[i].Status != domain.StepRunning {
			// Terminal states are final.
			return
		}
		record := t.records[i]
		record.Status = status
		record.Result = result
		record.Timestamp = time.Now().UTC()
		t.records = append(t.records, record)
		return
	}
}

// Steps returns one step per id with its latest status, ordered by when the
// step was begun. Timestamps are non-decreasing in record order.
func (t *Trace) Steps() []domain.ThinkingStep {
	latest := make(map[string]domain.ThinkingStep, len(t.order))
	for _, record := range t.records {
		latest[record.ID] = record
	}
	out := make([]domain.ThinkingStep, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, latest[id])
	}
	return out
}

// Len reports the number of distinct steps begun so far.
func (t *Trace) Len() int {
	return len(t.order)
}
