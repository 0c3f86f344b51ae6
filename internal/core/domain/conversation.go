package domain

import "time"

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// AssistantRequest is one conversation turn as received from the platform.
// It is immutable once built; persistence of the conversation itself is the
// platform's concern, not ours.
type AssistantRequest struct {
	UserID   string        `json:"user_id"`
	UserName string        `json:"user_name"`
	Message  string        `json:"message"`
	History  []ChatMessage `json:"history,omitempty"`
}

// AgentRole identifies which logical sub-agent handled a thinking step. The
// role is bound to each tool at catalog registration time so the display
// labels cannot drift from the tool list.
type AgentRole string

const (
	RoleExecutive  AgentRole = "executive"
	RoleAnalytics  AgentRole = "analytics"
	RoleKnowledge  AgentRole = "knowledge"
	RoleMonitoring AgentRole = "monitoring"
	RoleAudit      AgentRole = "audit"
)

// Label returns the Arabic display label used by the operator UI.
func (r AgentRole) Label() string {
	switch r {
	case RoleExecutive:
		return "الوكيل التنفيذي"
	case RoleAnalytics:
		return "وكيل التحليلات"
	case RoleKnowledge:
		return "وكيل المعرفة"
	case RoleMonitoring:
		return "وكيل المراقبة"
	case RoleAudit:
		return "وكيل التدقيق"
	default:
		return string(r)
	}
}

type StepStatus string

const (
	StepRunning   StepStatus = "running"
	StepCompleted StepStatus = "completed"
	StepError     StepStatus = "error"
)

// ThinkingStep is one recorded unit of the orchestrator's reasoning trace.
type ThinkingStep struct {
	ID          string     `json:"id"`
	Role        AgentRole  `json:"agent"`
	Action      string     `json:"action"`
	Description string     `json:"description"`
	Status      StepStatus `json:"status"`
	Timestamp   time.Time  `json:"timestamp"`
	Result      string     `json:"result,omitempty"`
}

// ToolCallRequest is a single tool invocation parsed from a model response.
type ToolCallRequest struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments,omitempty"`
}

// ToolResult is the outcome of exactly one ToolCallRequest. Failures are
// encoded as data ({"error": ...} payloads), never thrown past the
// dispatcher.
type ToolResult struct {
	Tool    string `json:"tool"`
	Payload any    `json:"payload"`
}

// ToolDescriptor describes one catalog entry as exposed to the model.
// Role and Display drive the thinking trace and are bound here at
// registration so the labels cannot drift from the tool list.
type ToolDescriptor struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
	Role        AgentRole      `json:"-"`
	Display     string         `json:"-"`
}

// ModelRequest is one chat-completion request against the language model.
type ModelRequest struct {
	System   string
	Messages []ChatMessage
	Tools    []ToolDescriptor
}

// ModelResponse carries either plain content, tool calls, or both. Tool
// calls take precedence in the loop; content is kept as the latest answer
// candidate.
type ModelResponse struct {
	Content   string
	ToolCalls []ToolCallRequest
}

type AssistantReply struct {
	Answer     string         `json:"answer"`
	ToolsUsed  []string       `json:"tools_used,omitempty"`
	Steps      []ThinkingStep `json:"steps,omitempty"`
	Iterations int            `json:"iterations"`
}

// Limits bounds one orchestrator turn. The iteration cap bounds the count
// of model round-trips; the timeouts bound elapsed time.
type Limits struct {
	MaxIterations      int
	Timeout            time.Duration
	ModelTimeout       time.Duration
	ToolTimeout        time.Duration
	MaxToolResultChars int
	KnowledgeTopK      int
}
