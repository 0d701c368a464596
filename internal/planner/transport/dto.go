package transport

import (
	"github.com/google/uuid"
)

// GeneratePlanRequest asks the planner to build a checklist for an event.
type GeneratePlanRequest struct {
	EventType string `json:"eventType" validate:"required,min=1,max=100"`
	Prompt    string `json:"prompt" validate:"required,min=1,max=4000"`
}

// RefineStepRequest asks the planner to rework one checklist step.
type RefineStepRequest struct {
	EventID          uuid.UUID `json:"eventId" validate:"required"`
	StepID           uuid.UUID `json:"stepId" validate:"required"`
	RefinementPrompt string    `json:"refinementPrompt" validate:"required,min=1,max=2000"`
}

// MatchedProvider is a provider suggestion attached to a checklist step.
type MatchedProvider struct {
	ID               uuid.UUID `json:"id"`
	BusinessName     string    `json:"businessName"`
	ProviderType     string    `json:"providerType"`
	LocationCity     string    `json:"locationCity"`
	LocationProvince string    `json:"locationProvince"`
	Description      string    `json:"description"`
	Tags             []string  `json:"tags"`
	LogoURL          *string   `json:"logoUrl,omitempty"`
	OwnerName        string    `json:"ownerName"`
	OwnerEmail       string    `json:"ownerEmail"`
	RelevanceScore   int       `json:"relevanceScore"`
}

// StepResponse is one checklist step with its provider suggestions.
type StepResponse struct {
	ID                uuid.UUID         `json:"id"`
	EventID           uuid.UUID         `json:"eventId"`
	StepTitle         string            `json:"stepTitle"`
	Description       string            `json:"description"`
	OrderNumber       int               `json:"orderNumber"`
	Tags              []string          `json:"tags"`
	RefinementPrompt  *string           `json:"refinementPrompt,omitempty"`
	MatchingProviders []MatchedProvider `json:"matchingProviders"`
}

// EventResponse is a generated plan.
type EventResponse struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	EventType string    `json:"eventType"`
	Prompt    string    `json:"prompt"`
	CreatedAt string    `json:"createdAt"`
}

// GeneratePlanResponse is the full result of plan generation.
type GeneratePlanResponse struct {
	Event     EventResponse  `json:"event"`
	Checklist []StepResponse `json:"checklist"`
}

// RefineStepResponse is the result of step refinement.
type RefineStepResponse struct {
	UpdatedStep       StepResponse      `json:"updatedStep"`
	MatchingProviders []MatchedProvider `json:"matchingProviders"`
}

// EventListResponse wraps a user's generated plans.
type EventListResponse struct {
	Events []EventResponse `json:"events"`
	Total  int             `json:"total"`
}

// EventDetailResponse is one plan with its full checklist.
type EventDetailResponse struct {
	Event     EventResponse  `json:"event"`
	Checklist []StepResponse `json:"checklist"`
}
