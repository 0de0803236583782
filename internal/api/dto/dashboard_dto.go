package dto

// DashboardResponse bundles role-conditioned aggregates.
type DashboardResponse struct {
	Stats          map[string]int64 `json:"stats"`
	RecentTickets  []TicketSummary  `json:"recent_tickets"`
	CategoryCounts map[string]int64 `json:"category_counts,omitempty"`
}
