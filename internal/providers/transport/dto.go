package transport

import "github.com/google/uuid"

// ProviderTypes is the closed vocabulary of provider categories.
var ProviderTypes = []string{
	"venue", "catering", "photographer", "videographer", "florist",
	"decorator", "music", "transportation", "makeup", "clothing",
	"jewelry", "invitations", "other",
}

// CreateProviderRequest contains data for provider onboarding.
type CreateProviderRequest struct {
	BusinessName     string   `json:"businessName" validate:"required,min=1,max=200"`
	ProviderType     string   `json:"providerType" validate:"required,oneof=venue catering photographer videographer florist decorator music transportation makeup clothing jewelry invitations other"`
	Phone            string   `json:"phone" validate:"omitempty,max=30"`
	LocationCity     string   `json:"locationCity" validate:"omitempty,max=100"`
	LocationProvince string   `json:"locationProvince" validate:"omitempty,max=100"`
	LocationLat      *float64 `json:"locationLat" validate:"omitempty,min=-90,max=90"`
	LocationLng      *float64 `json:"locationLng" validate:"omitempty,min=-180,max=180"`
	Description      string   `json:"description" validate:"omitempty,max=5000"`
	Tags             []string `json:"tags" validate:"omitempty,max=20,dive,min=1,max=50"`
	LogoURL          *string  `json:"logoUrl" validate:"omitempty,url"`
	SampleImages     []string `json:"sampleImages" validate:"omitempty,max=20,dive,url"`
}

// UpdateProviderRequest contains partial updates for a provider profile.
type UpdateProviderRequest struct {
	BusinessName     *string  `json:"businessName" validate:"omitempty,min=1,max=200"`
	ProviderType     *string  `json:"providerType" validate:"omitempty,oneof=venue catering photographer videographer florist decorator music transportation makeup clothing jewelry invitations other"`
	Phone            *string  `json:"phone" validate:"omitempty,max=30"`
	LocationCity     *string  `json:"locationCity" validate:"omitempty,max=100"`
	LocationProvince *string  `json:"locationProvince" validate:"omitempty,max=100"`
	LocationLat      *float64 `json:"locationLat" validate:"omitempty,min=-90,max=90"`
	LocationLng      *float64 `json:"locationLng" validate:"omitempty,min=-180,max=180"`
	Description      *string  `json:"description" validate:"omitempty,max=5000"`
	Tags             []string `json:"tags" validate:"omitempty,max=20,dive,min=1,max=50"`
	LogoURL          *string  `json:"logoUrl" validate:"omitempty,url"`
	SampleImages     []string `json:"sampleImages" validate:"omitempty,max=20,dive,url"`
}

// ListProvidersQuery contains directory search filters.
type ListProvidersQuery struct {
	Type     string   `form:"type" validate:"omitempty,oneof=venue catering photographer videographer florist decorator music transportation makeup clothing jewelry invitations other"`
	City     string   `form:"city" validate:"omitempty,max=100"`
	Province string   `form:"province" validate:"omitempty,max=100"`
	Tags     []string `form:"tags" validate:"omitempty,max=10"`
	Search   string   `form:"search" validate:"omitempty,max=200"`
	Lat      *float64 `form:"lat" validate:"omitempty,min=-90,max=90"`
	Lng      *float64 `form:"lng" validate:"omitempty,min=-180,max=180"`
	Radius   float64  `form:"radius" validate:"omitempty,min=0,max=20000"`
	Limit    int      `form:"limit" validate:"omitempty,min=1,max=100"`
	Offset   int      `form:"offset" validate:"omitempty,min=0"`
}

// OwnerResponse is the account behind a provider profile.
type OwnerResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// ProviderResponse represents a provider profile in API responses.
type ProviderResponse struct {
	ID                 uuid.UUID     `json:"id"`
	BusinessName       string        `json:"businessName"`
	ProviderType       string        `json:"providerType"`
	Phone              string        `json:"phone"`
	LocationCity       string        `json:"locationCity"`
	LocationProvince   string        `json:"locationProvince"`
	LocationLat        *float64      `json:"locationLat,omitempty"`
	LocationLng        *float64      `json:"locationLng,omitempty"`
	Description        string        `json:"description"`
	Tags               []string      `json:"tags"`
	LogoURL            *string       `json:"logoUrl,omitempty"`
	SampleImages       []string      `json:"sampleImages"`
	IsActive           bool          `json:"isActive"`
	SubscriptionStatus string        `json:"subscriptionStatus"`
	Distance           *float64      `json:"distance,omitempty"`
	Owner              OwnerResponse `json:"owner"`
	CreatedAt          string        `json:"createdAt"`
	UpdatedAt          string        `json:"updatedAt"`
}

// ProviderListResponse wraps a provider directory page.
type ProviderListResponse struct {
	Providers []ProviderResponse `json:"providers"`
	Total     int                `json:"total"`
	Offset    int                `json:"offset"`
	Limit     int                `json:"limit"`
}
