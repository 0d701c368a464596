package transport

import "github.com/google/uuid"

// Lead lifecycle states. Forward-only in the UI; the API validates against
// the closed set.
const (
	StatusNew       = "new"
	StatusContacted = "contacted"
	StatusBooked    = "booked"
)

// CreateLeadRequest is a contact request from a planner to a provider.
type CreateLeadRequest struct {
	ProviderID uuid.UUID  `json:"providerId" validate:"required"`
	EventID    uuid.UUID  `json:"eventId" validate:"required"`
	StepID     *uuid.UUID `json:"stepId"`
	Message    string     `json:"message" validate:"omitempty,max=2000"`
}

// UpdateLeadRequest mutates a lead's status or message.
type UpdateLeadRequest struct {
	Status  *string `json:"status" validate:"omitempty,oneof=new contacted booked"`
	Message *string `json:"message" validate:"omitempty,max=2000"`
}

// ListLeadsQuery narrows a role-scoped lead listing.
type ListLeadsQuery struct {
	Status  string     `form:"status" validate:"omitempty,oneof=new contacted booked"`
	EventID *uuid.UUID `form:"event_id"`
	Limit   int        `form:"limit" validate:"omitempty,min=1,max=100"`
	Offset  int        `form:"offset" validate:"omitempty,min=0"`
}

// LeadProvider is the provider summary embedded in a lead.
type LeadProvider struct {
	ID               uuid.UUID `json:"id"`
	BusinessName     string    `json:"businessName"`
	ProviderType     string    `json:"providerType"`
	LocationCity     string    `json:"locationCity"`
	LocationProvince string    `json:"locationProvince"`
}

// LeadEvent is the event summary embedded in a lead.
type LeadEvent struct {
	ID        uuid.UUID `json:"id"`
	EventType string    `json:"eventType"`
	Prompt    string    `json:"prompt"`
}

// LeadStep is the optional checklist step embedded in a lead.
type LeadStep struct {
	ID          uuid.UUID `json:"id"`
	StepTitle   string    `json:"stepTitle"`
	Description string    `json:"description"`
}

// LeadRequester is the planner who created the lead.
type LeadRequester struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// LeadResponse represents a lead in API responses.
type LeadResponse struct {
	ID        uuid.UUID     `json:"id"`
	Status    string        `json:"status"`
	Message   *string       `json:"message,omitempty"`
	Provider  LeadProvider  `json:"provider"`
	Event     LeadEvent     `json:"event"`
	Step      *LeadStep     `json:"step,omitempty"`
	Requester LeadRequester `json:"requester"`
	CreatedAt string        `json:"createdAt"`
	UpdatedAt string        `json:"updatedAt"`
}

// LeadListResponse wraps a page of leads.
type LeadListResponse struct {
	Leads  []LeadResponse `json:"leads"`
	Total  int            `json:"total"`
	Offset int            `json:"offset"`
	Limit  int            `json:"limit"`
}

// LeadStatsResponse aggregates lead counts by status.
type LeadStatsResponse struct {
	Total     int `json:"total"`
	New       int `json:"new"`
	Contacted int `json:"contacted"`
	Booked    int `json:"booked"`
}
