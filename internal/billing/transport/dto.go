package transport

// CheckoutSessionRequest starts a hosted subscription checkout.
type CheckoutSessionRequest struct {
	SuccessURL string `json:"successUrl" validate:"omitempty,url"`
	CancelURL  string `json:"cancelUrl" validate:"omitempty,url"`
}

// CheckoutSessionResponse carries the hosted checkout redirect.
type CheckoutSessionResponse struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

// CustomerPortalResponse carries the billing portal redirect.
type CustomerPortalResponse struct {
	URL string `json:"url"`
}

// CreateSubscriptionRequest subscribes the caller directly.
type CreateSubscriptionRequest struct {
	PriceID         string `json:"priceId" validate:"omitempty,max=200"`
	PaymentMethodID string `json:"paymentMethodId" validate:"omitempty,max=200"`
}

// CreateSubscriptionResponse reports the new subscription.
type CreateSubscriptionResponse struct {
	SubscriptionID string `json:"subscriptionId"`
	Status         string `json:"status"`
}

// CancelSubscriptionRequest schedules a cancellation.
type CancelSubscriptionRequest struct {
	SubscriptionID string `json:"subscriptionId" validate:"required,max=200"`
}

// CancelSubscriptionResponse reports the scheduled cancellation.
type CancelSubscriptionResponse struct {
	SubscriptionID    string `json:"subscriptionId"`
	Status            string `json:"status"`
	CancelAtPeriodEnd bool   `json:"cancelAtPeriodEnd"`
	CurrentPeriodEnd  int64  `json:"currentPeriodEnd"`
}

// SubscriptionStatusResponse reports the provider's subscription standing.
type SubscriptionStatusResponse struct {
	SubscriptionStatus    string `json:"subscriptionStatus"`
	HasActiveSubscription bool   `json:"hasActiveSubscription"`
}

// WebhookAck acknowledges a processed webhook delivery.
type WebhookAck struct {
	Received bool `json:"received"`
}
