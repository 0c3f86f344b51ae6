package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/leakwatch/assistant/internal/core/domain"
	"github.com/leakwatch/assistant/internal/core/ports"
)

const (
	// apologyAnswer is returned whenever the turn cannot produce real
	// content: model failure, empty final content, or an exhausted budget
	// without any candidate answer. The turn always completes with text.
	apologyAnswer = "عذراً، لم أتمكن من معالجة طلبك الآن. حاول مرة أخرى لاحقاً. / Sorry, I could not process your request right now. Please try again later."

	// limitAnswer is the circuit-breaker text when the iteration budget is
	// spent and the model never produced content.
	limitAnswer = "وصلت إلى حدود التنفيذ لهذا الطلب، يرجى إعادة صياغته. / I reached the execution limits for this request. Please rephrase it and try again."

	auditQueryMaxChars = 500
)

// Governor drives the bounded model/tool loop for one conversation turn.
type Governor struct {
	model      ports.ChatModel
	dispatcher *Dispatcher
	searcher   ports.KnowledgeSearcher
	leaks      ports.LeakDirectory
	audit      ports.AuditSink
	limits     domain.Limits
}

func NewGovernor(
	model ports.ChatModel,
	dispatcher *Dispatcher,
	searcher ports.KnowledgeSearcher,
	leaks ports.LeakDirectory,
	audit ports.AuditSink,
	limits domain.Limits,
) *Governor {
	if limits.MaxIterations <= 0 {
		limits.MaxIterations = 8
	}
	if limits.Timeout <= 0 {
		limits.Timeout = 90 * time.Second
	}
	if limits.ModelTimeout <= 0 {
		limits.ModelTimeout = 20 * time.Second
	}
	if limits.ToolTimeout <= 0 {
		limits.ToolTimeout = 15 * time.Second
	}
	if limits.MaxToolResultChars <= 0 {
		limits.MaxToolResultChars = 8000
	}
	if limits.KnowledgeTopK <= 0 {
		limits.KnowledgeTopK = 3
	}

	return &Governor{
		model:      model,
		dispatcher: dispatcher,
		searcher:   searcher,
		leaks:      leaks,
		audit:      audit,
		limits:     limits,
	}
}

// Respond runs one turn: build the system prompt from live platform state,
// loop model calls and sequential tool execution under the iteration cap
// and the wall-clock budget, then finalize. Model failures and exhausted
// budgets degrade to fixed texts; the caller always gets a reply.
func (g *Governor) Respond(ctx context.Context, req domain.AssistantRequest) (*domain.AssistantReply, error) {
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "assistant respond", fmt.Errorf("user_id is required"))
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "assistant respond", fmt.Errorf("message is required"))
	}

	turnCtx, cancel := context.WithTimeout(ctx, g.limits.Timeout)
	defer cancel()

	trace := NewTrace()
	toolsUsed := make([]string, 0, g.limits.MaxIterations)
	system := g.buildSystemPrompt(turnCtx, req)

	messages := make([]domain.ChatMessage, 0, len(req.History)+1)
	for _, msg := range req.History {
		role := strings.ToLower(strings.TrimSpace(msg.Role))
		if role != "user" && role != "assistant" {
			continue
		}
		if strings.TrimSpace(msg.Content) == "" {
			continue
		}
		messages = append(messages, domain.ChatMessage{Role: role, Content: msg.Content})
	}
	messages = append(messages, domain.ChatMessage{Role: "user", Content: message})

	lastContent := ""
	iterations := 0
	exhausted := true

	for i := 1; i <= g.limits.MaxIterations; i++ {
		iterations = i

		modelCtx, modelCancel := context.WithTimeout(turnCtx, g.limits.ModelTimeout)
		response, err := g.model.Complete(modelCtx, domain.ModelRequest{
			System:   system,
			Messages: messages,
			Tools:    g.dispatcher.Catalog(),
		})
		modelCancel()
		if err != nil {
			stepID := trace.Begin(domain.RoleExecutive, "model_invocation", "استدعاء النموذج / invoking the model")
			trace.Fail(stepID, domain.WrapError(domain.ErrModelInvocation, "complete", err).Error())
			slog.Error("assistant_model_failure", "user_id", userID, "iteration", i, "error", err)
			g.publishAudit(ctx, req, message, toolsUsed, trace)
			return &domain.AssistantReply{
				Answer:     apologyAnswer,
				ToolsUsed:  toolsUsed,
				Steps:      trace.Steps(),
				Iterations: iterations,
			}, nil
		}

		if strings.TrimSpace(response.Content) != "" {
			lastContent = strings.TrimSpace(response.Content)
		}
		if len(response.ToolCalls) == 0 {
			exhausted = false
			break
		}

		// Tool calls run one at a time, in the order the model requested
		// them. Each result is truncated before being echoed back so the
		// context cannot grow without bound.
		for _, call := range response.ToolCalls {
			toolCtx, toolCancel := context.WithTimeout(turnCtx, g.limits.ToolTimeout)
			result := g.dispatcher.Execute(toolCtx, call, trace)
			toolCancel()

			toolsUsed = append(toolsUsed, call.Name)
			messages = append(messages, domain.ChatMessage{
				Role:    "tool",
				Content: fmt.Sprintf("%s: %s", result.Tool, renderToolPayload(result.Payload, g.limits.MaxToolResultChars)),
			})
		}
	}

	answer := lastContent
	if answer == "" {
		if exhausted {
			answer = limitAnswer
		} else {
			answer = apologyAnswer
		}
	}

	g.publishAudit(ctx, req, message, toolsUsed, trace)

	return &domain.AssistantReply{
		Answer:     answer,
		ToolsUsed:  toolsUsed,
		Steps:      trace.Steps(),
		Iterations: iterations,
	}, nil
}

func (g *Governor) buildSystemPrompt(ctx context.Context, req domain.AssistantRequest) string {
	var b strings.Builder
	b.WriteString("You are the internal analyst assistant of a data-leak-monitoring platform.\n")
	b.WriteString("Answer in the language the analyst used. Use the available tools to read platform data; never invent records.\n\n")
	fmt.Fprintf(&b, "Current date: %s\n", time.Now().UTC().Format("2006-01-02"))
	if name := strings.TrimSpace(req.UserName); name != "" {
		fmt.Fprintf(&b, "Analyst: %s\n", name)
	}

	if stats, err := g.leaks.DashboardStats(ctx); err == nil && stats != nil {
		b.WriteString("\nPlatform summary:\n")
		fmt.Fprintf(&b, "- total leaks: %d (confirmed: %d, new last 7 days: %d)\n", stats.TotalLeaks, stats.ConfirmedLeaks, stats.NewLeaksLast7Days)
		fmt.Fprintf(&b, "- active sellers: %d, monitored channels: %d\n", stats.ActiveSellers, stats.MonitoredChannels)
		fmt.Fprintf(&b, "- open reports: %d, records exposed: %d\n", stats.OpenReports, stats.TotalRecordsExposed)
	} else if err != nil {
		slog.Warn("assistant_stats_unavailable", "error", err)
	}

	if knowledge := g.knowledgeContext(ctx, req.Message); knowledge != "" {
		b.WriteString("\nRelevant knowledge base context:\n")
		b.WriteString(knowledge)
	}
	return b.String()
}

func (g *Governor) knowledgeContext(ctx context.Context, message string) string {
	results, err := g.searcher.Search(ctx, message, domain.SearchOptions{TopK: g.limits.KnowledgeTopK})
	if err != nil {
		slog.Warn("assistant_knowledge_context_unavailable", "error", err)
		return ""
	}
	if len(results) == 0 {
		return ""
	}

	lines := make([]string, 0, len(results))
	for _, result := range results {
		title := result.Entry.Title
		if title == "" {
			title = result.Entry.TitleAr
		}
		lines = append(lines, fmt.Sprintf("- [%s] %s: %s", result.Entry.Category, title, snippet(result.Entry.Content, 300)))
	}
	return strings.Join(lines, "\n")
}

// publishAudit emits one event per completed turn. The sink is
// fire-and-forget: failures are logged, never surfaced.
func (g *Governor) publishAudit(ctx context.Context, req domain.AssistantRequest, message string, toolsUsed []string, trace *Trace) {
	if g.audit == nil {
		return
	}

	auditCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	turn := domain.AuditTurn{
		ID:        uuid.NewString(),
		UserID:    strings.TrimSpace(req.UserID),
		UserName:  strings.TrimSpace(req.UserName),
		Query:     snippet(message, auditQueryMaxChars),
		ToolsUsed: append([]string(nil), toolsUsed...),
		StepCount: trace.Len(),
		CreatedAt: time.Now().UTC(),
	}
	if err := g.audit.PublishTurn(auditCtx, turn); err != nil {
		slog.Warn("assistant_audit_publish_failed", "user_id", turn.UserID, "error", err)
	}
}

func renderToolPayload(payload any, maxChars int) string {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Sprintf(`{"error":"unencodable tool payload: %s"}`, err)
	}
	return snippet(string(encoded), maxChars)
}

func snippet(s string, maxChars int) string {
	if maxChars <= 0 || len(s) <= maxChars {
		return s
	}
	cut := s[:maxChars]
	// Do not cut through a multi-byte sequence.
	for len(cut) > 0 && !utf8.ValidString(cut) {
		cut = cut[:len(cut)-1]
	}
	return cut
}
