package transport

// DashboardQuery selects the reporting window.
type DashboardQuery struct {
	TimeRange string `form:"time_range" validate:"omitempty,oneof=7d 30d 90d"`
}

// ProfileViewStats summarizes profile view counts.
type ProfileViewStats struct {
	Total     int `json:"total"`
	ThisMonth int `json:"thisMonth"`
	LastMonth int `json:"lastMonth"`
}

// LeadStats summarizes lead volume and outcomes.
type LeadStats struct {
	Total          int            `json:"total"`
	ThisMonth      int            `json:"thisMonth"`
	ConversionRate float64        `json:"conversionRate"`
	ByStatus       map[string]int `json:"byStatus"`
}

// RevenueStats estimates earnings from booked leads.
type RevenueStats struct {
	EstimatedTotal int `json:"estimatedTotal"`
	ThisMonth      int `json:"thisMonth"`
}

// PerformanceStats carries provider quality indicators. Response time and
// rating are fixed placeholders until reviews ship.
type PerformanceStats struct {
	ResponseTime   float64 `json:"responseTime"`
	Rating         float64 `json:"rating"`
	CompletionRate float64 `json:"completionRate"`
}

// ActivityItem is one entry in the recent activity feed.
type ActivityItem struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Status      string `json:"status,omitempty"`
	CreatedAt   string `json:"createdAt"`
}

// DashboardResponse is the provider analytics dashboard.
type DashboardResponse struct {
	TimeRange      string           `json:"timeRange"`
	ProfileViews   ProfileViewStats `json:"profileViews"`
	Leads          LeadStats        `json:"leads"`
	Revenue        RevenueStats     `json:"revenue"`
	Performance    PerformanceStats `json:"performance"`
	RecentActivity []ActivityItem   `json:"recentActivity"`
}
