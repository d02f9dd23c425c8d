package dto

// DashboardStatsRequest represents query parameters for aggregate stats
type DashboardStatsRequest struct {
	StartDate *string `query:"start_date" example:"2026-02-01"`
	EndDate   *string `query:"end_date" example:"2026-02-28"`
	AgentID   *uint   `query:"agent_id" example:"12"`
}

// DashboardStatsResponse represents the aggregated daily statistics
type DashboardStatsResponse struct {
	TotalCalls       int64            `json:"total_calls" example:"134"`
	UpsellsClosed    int64            `json:"upsells_closed" example:"27"`
	ConversionRate   string           `json:"conversion_rate" example:"20.15"`
	TotalRevenue     string           `json:"total_revenue" example:"8100.00"`
	StatusBreakdown  map[string]int64 `json:"status_breakdown"`
	RevenueTrend     []RevenuePoint   `json:"revenue_trend"`
	WindowStart      string           `json:"window_start" example:"2026-02-01T00:00:00Z"`
	WindowEnd        string           `json:"window_end" example:"2026-02-28T23:59:59Z"`
}

// RevenuePoint represents one day in the revenue trend series
type RevenuePoint struct {
	Day     string `json:"day" example:"2026-02-03"`
	Revenue string `json:"revenue" example:"1200.00"`
}

// AgentPerformanceDTO represents one row of the agent leaderboard
type AgentPerformanceDTO struct {
	AgentID            uint   `json:"agent_id" example:"12"`
	Username           string `json:"username" example:"agent.sara"`
	CallsHandled       int64  `json:"calls_handled" example:"58"`
	UpsellsClosed      int64  `json:"upsells_closed" example:"14"`
	ConversionRate     string `json:"conversion_rate" example:"24.14"`
	TotalRevenue       string `json:"total_revenue" example:"4200.00"`
	AvgHandlingMinutes string `json:"avg_handling_minutes" example:"5.20"`
}

// AgentPerformanceResponse represents the data section of the leaderboard response
type AgentPerformanceResponse struct {
	Agents []AgentPerformanceDTO `json:"agents"`
}
