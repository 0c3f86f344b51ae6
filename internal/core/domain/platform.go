package domain

import "time"

type LeakSeverity string

const (
	SeverityCritical LeakSeverity = "critical"
	SeverityHigh     LeakSeverity = "high"
	SeverityMedium   LeakSeverity = "medium"
	SeverityLow      LeakSeverity = "low"
)

type LeakStatus string

const (
	LeakStatusNew       LeakStatus = "new"
	LeakStatusTriaged   LeakStatus = "triaged"
	LeakStatusConfirmed LeakStatus = "confirmed"
	LeakStatusDismissed LeakStatus = "dismissed"
)

type Leak struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	Source       string       `json:"source"`
	Severity     LeakSeverity `json:"severity"`
	Status       LeakStatus   `json:"status"`
	RecordCount  int64        `json:"record_count"`
	SellerHandle string       `json:"seller_handle,omitempty"`
	DiscoveredAt time.Time    `json:"discovered_at"`
}

type LeakDetail struct {
	Leak
	Description     string     `json:"description,omitempty"`
	AffectedDomains []string   `json:"affected_domains,omitempty"`
	Evidence        []Evidence `json:"evidence,omitempty"`
}

type LeakFilter struct {
	Status   LeakStatus
	Severity LeakSeverity
	Source   string
	Query    string
	Limit    int
}

type Seller struct {
	ID           string    `json:"id"`
	Handle       string    `json:"handle"`
	Marketplace  string    `json:"marketplace"`
	Reputation   float64   `json:"reputation"`
	ListingCount int       `json:"listing_count"`
	FirstSeenAt  time.Time `json:"first_seen_at"`
	LastSeenAt   time.Time `json:"last_seen_at"`
}

type Channel struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Platform  string `json:"platform"`
	Monitored bool   `json:"monitored"`
	LeakCount int    `json:"leak_count"`
}

type MonitoringJob struct {
	ID        string     `json:"id"`
	ChannelID string     `json:"channel_id"`
	Schedule  string     `json:"schedule"`
	Status    string     `json:"status"`
	LastRunAt *time.Time `json:"last_run_at,omitempty"`
}

type Evidence struct {
	ID         string    `json:"id"`
	LeakID     string    `json:"leak_id"`
	Kind       string    `json:"kind"`
	SHA256     string    `json:"sha256"`
	CapturedAt time.Time `json:"captured_at"`
}

type Report struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Kind        string    `json:"kind"`
	Status      string    `json:"status"`
	RequestedBy string    `json:"requested_by"`
	CreatedAt   time.Time `json:"created_at"`
}

type PlatformUser struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	RoleName     string     `json:"role"`
	LastActiveAt *time.Time `json:"last_active_at,omitempty"`
}

// DashboardStats is the live platform summary embedded into the system
// prompt and returned by the get_dashboard_stats tool.
type DashboardStats struct {
	TotalLeaks          int64 `json:"total_leaks"`
	NewLeaksLast7Days   int64 `json:"new_leaks_last_7_days"`
	ConfirmedLeaks      int64 `json:"confirmed_leaks"`
	ActiveSellers       int64 `json:"active_sellers"`
	MonitoredChannels   int64 `json:"monitored_channels"`
	OpenReports         int64 `json:"open_reports"`
	TotalRecordsExposed int64 `json:"total_records_exposed"`
}

// AuditTurn is the per-turn audit event: published fire-and-forget when a
// turn completes and persisted by the audit worker.
type AuditTurn struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name"`
	Query     string    `json:"query"`
	ToolsUsed []string  `json:"tools_used,omitempty"`
	StepCount int       `json:"step_count"`
	CreatedAt time.Time `json:"created_at"`
}

type AuditFilter struct {
	UserID string
	Limit  int
}
