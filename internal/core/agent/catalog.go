package agent

import "github.com/leakwatch/assistant/internal/core/domain"

// CatalogVersion identifies the tool schema surface exposed to the model.
// Adding or removing a tool changes prompt behavior and bumps this value.
const CatalogVersion = "v1"

const (
	ToolQueryLeaks         = "query_leaks"
	ToolGetLeakDetails     = "get_leak_details"
	ToolGetDashboardStats  = "get_dashboard_stats"
	ToolSearchKnowledge    = "search_knowledge"
	ToolListSellers        = "list_sellers"
	ToolListChannels       = "list_channels"
	ToolListMonitoringJobs = "list_monitoring_jobs"
	ToolListEvidence       = "list_evidence"
	ToolListAuditLogs      = "list_audit_logs"
	ToolListReports        = "list_reports"
	ToolListUsers          = "list_users"
)

// Catalog returns the closed set of tools the model may request. The slice
// is rebuilt per call so callers cannot mutate the registered schemas.
func Catalog() []domain.ToolDescriptor {
	limitProperty := map[string]any{
		"type":        "integer",
		"description": "Maximum number of rows to return",
	}

	return []domain.ToolDescriptor{
		{
			Name:        ToolQueryLeaks,
			Description: "Query detected data leaks with optional status, severity, source and free-text filters.",
			Role:        domain.RoleAnalytics,
			Display:     "الاستعلام عن التسريبات / querying leaks",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"status": map[string]any{
						"type": "string",
						"enum": []string{"new", "triaged", "confirmed", "dismissed"},
					},
					"severity": map[string]any{
						"type": "string",
						"enum": []string{"critical", "high", "medium", "low"},
					},
					"source": map[string]any{
						"type":        "string",
						"description": "Leak source, e.g. forum, telegram, darkweb, paste",
					},
					"query": map[string]any{
						"type":        "string",
						"description": "Free-text match against leak titles",
					},
					"limit": limitProperty,
				},
			},
		},
		{
			Name:        ToolGetLeakDetails,
			Description: "Fetch one leak with its description, affected domains and captured evidence.",
			Role:        domain.RoleAnalytics,
			Display:     "تفاصيل التسريب / fetching leak details",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"leak_id": map[string]any{
						"type":        "string",
						"description": "Leak identifier",
					},
				},
				"required": []string{"leak_id"},
			},
		},
		{
			Name:        ToolGetDashboardStats,
			Description: "Fetch the live platform summary statistics.",
			Role:        domain.RoleAnalytics,
			Display:     "إحصائيات المنصة / fetching dashboard stats",
			Parameters: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
		},
		{
			Name:        ToolSearchKnowledge,
			Description: "Semantic search over the internal knowledge base (regulations, playbooks, threat intel, FAQ).",
			Role:        domain.RoleKnowledge,
			Display:     "البحث في قاعدة المعرفة / searching the knowledge base",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"query": map[string]any{
						"type":        "string",
						"description": "Natural-language search query",
					},
					"category": map[string]any{
						"type": "string",
						"enum": []string{"regulation", "playbook", "threat_intel", "faq", "platform"},
					},
					"limit": limitProperty,
				},
				"required": []string{"query"},
			},
		},
		{
			Name:        ToolListSellers,
			Description: "List known data sellers with marketplace and reputation data.",
			Role:        domain.RoleMonitoring,
			Display:     "قائمة البائعين / listing sellers",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"limit": limitProperty,
				},
			},
		},
		{
			Name:        ToolListChannels,
			Description: "List monitored channels and their leak counts.",
			Role:        domain.RoleMonitoring,
			Display:     "قائمة القنوات / listing channels",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"limit": limitProperty,
				},
			},
		},
		{
			Name:        ToolListMonitoringJobs,
			Description: "List scheduled monitoring jobs and their last run state.",
			Role:        domain.RoleMonitoring,
			Display:     "قائمة مهام المراقبة / listing monitoring jobs",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"limit": limitProperty,
				},
			},
		},
		{
			Name:        ToolListEvidence,
			Description: "List captured evidence artifacts for one leak.",
			Role:        domain.RoleAnalytics,
			Display:     "قائمة الأدلة / listing evidence",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"leak_id": map[string]any{
						"type":        "string",
						"description": "Leak identifier",
					},
				},
				"required": []string{"leak_id"},
			},
		},
		{
			Name:        ToolListAuditLogs,
			Description: "List assistant audit records, optionally filtered by user.",
			Role:        domain.RoleAudit,
			Display:     "سجل التدقيق / listing audit records",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"user_id": map[string]any{
						"type":        "string",
						"description": "Filter to one platform user",
					},
					"limit": limitProperty,
				},
			},
		},
		{
			Name:        ToolListReports,
			Description: "List generated report metadata.",
			Role:        domain.RoleAudit,
			Display:     "قائمة التقارير / listing reports",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"limit": limitProperty,
				},
			},
		},
		{
			Name:        ToolListUsers,
			Description: "List platform users.",
			Role:        domain.RoleAudit,
			Display:     "قائمة المستخدمين / listing users",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"limit": limitProperty,
				},
			},
		},
	}
}
