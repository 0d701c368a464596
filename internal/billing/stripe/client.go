// Package stripe provides a minimal Stripe API client and webhook signature
// verification. Only the endpoints the billing module needs are covered.
package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.stripe.com/v1"

// Client talks to the Stripe REST API with form-encoded requests.
type Client struct {
	secretKey  string
	baseURL    string
	httpClient *http.Client
}

// Config configures the Stripe client.
type Config struct {
	SecretKey string
	BaseURL   string
	Timeout   time.Duration
}

// NewClient creates a Stripe API client.
func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		secretKey:  cfg.SecretKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Customer is a Stripe customer.
type Customer struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// CheckoutSession is a Stripe Checkout session.
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// PortalSession is a customer billing portal session.
type PortalSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Subscription is a Stripe subscription.
type Subscription struct {
	ID                string `json:"id"`
	Customer          string `json:"customer"`
	Status            string `json:"status"`
	CancelAtPeriodEnd bool   `json:"cancel_at_period_end"`
	CurrentPeriodEnd  int64  `json:"current_period_end"`
}

type subscriptionList struct {
	Data []Subscription `json:"data"`
}

// APIError is a structured error returned by the Stripe API.
type APIError struct {
	StatusCode int
	Type       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("stripe: %s (%d)", e.Message, e.StatusCode)
}

type apiErrorEnvelope struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, form url.Values, out interface{}) error {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("stripe request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var envelope apiErrorEnvelope
		_ = json.Unmarshal(data, &envelope)
		return &APIError{
			StatusCode: resp.StatusCode,
			Type:       envelope.Error.Type,
			Message:    envelope.Error.Message,
		}
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// CreateCustomer creates a customer carrying the application user ID in its
// metadata.
func (c *Client) CreateCustomer(ctx context.Context, email, userID string) (Customer, error) {
	form := url.Values{}
	form.Set("email", email)
	form.Set("metadata[user_id]", userID)

	var customer Customer
	err := c.do(ctx, http.MethodPost, "/customers", form, &customer)
	return customer, err
}

// CheckoutSessionParams configures a subscription checkout session.
type CheckoutSessionParams struct {
	Customer   string
	PriceID    string
	SuccessURL string
	CancelURL  string
	UserID     string
}

// CreateCheckoutSession starts a hosted subscription checkout.
func (c *Client) CreateCheckoutSession(ctx context.Context, params CheckoutSessionParams) (CheckoutSession, error) {
	form := url.Values{}
	form.Set("customer", params.Customer)
	form.Set("mode", "subscription")
	form.Set("payment_method_types[0]", "card")
	form.Set("line_items[0][price]", params.PriceID)
	form.Set("line_items[0][quantity]", "1")
	form.Set("success_url", params.SuccessURL)
	form.Set("cancel_url", params.CancelURL)
	form.Set("metadata[user_id]", params.UserID)

	var session CheckoutSession
	err := c.do(ctx, http.MethodPost, "/checkout/sessions", form, &session)
	return session, err
}

// CreatePortalSession opens the customer billing portal.
func (c *Client) CreatePortalSession(ctx context.Context, customer, returnURL string) (PortalSession, error) {
	form := url.Values{}
	form.Set("customer", customer)
	form.Set("return_url", returnURL)

	var session PortalSession
	err := c.do(ctx, http.MethodPost, "/billing_portal/sessions", form, &session)
	return session, err
}

// AttachPaymentMethod attaches a payment method to a customer and makes it
// the default for invoices.
func (c *Client) AttachPaymentMethod(ctx context.Context, paymentMethodID, customer string) error {
	form := url.Values{}
	form.Set("customer", customer)
	if err := c.do(ctx, http.MethodPost, "/payment_methods/"+paymentMethodID+"/attach", form, nil); err != nil {
		return err
	}

	update := url.Values{}
	update.Set("invoice_settings[default_payment_method]", paymentMethodID)
	return c.do(ctx, http.MethodPost, "/customers/"+customer, update, nil)
}

// CreateSubscription subscribes a customer to a price.
func (c *Client) CreateSubscription(ctx context.Context, customer, priceID, paymentMethodID string) (Subscription, error) {
	form := url.Values{}
	form.Set("customer", customer)
	form.Set("items[0][price]", priceID)
	if paymentMethodID != "" {
		form.Set("default_payment_method", paymentMethodID)
	}

	var sub Subscription
	err := c.do(ctx, http.MethodPost, "/subscriptions", form, &sub)
	return sub, err
}

// RetrieveSubscription fetches one subscription.
func (c *Client) RetrieveSubscription(ctx context.Context, id string) (Subscription, error) {
	var sub Subscription
	err := c.do(ctx, http.MethodGet, "/subscriptions/"+id, nil, &sub)
	return sub, err
}

// CancelAtPeriodEnd schedules a subscription to end with the current period.
func (c *Client) CancelAtPeriodEnd(ctx context.Context, id string) (Subscription, error) {
	form := url.Values{}
	form.Set("cancel_at_period_end", "true")

	var sub Subscription
	err := c.do(ctx, http.MethodPost, "/subscriptions/"+id, form, &sub)
	return sub, err
}

// ListActiveSubscriptions returns the customer's active subscriptions, most
// recent first.
func (c *Client) ListActiveSubscriptions(ctx context.Context, customer string) ([]Subscription, error) {
	path := "/subscriptions?customer=" + url.QueryEscape(customer) + "&status=active&limit=1"

	var list subscriptionList
	if err := c.do(ctx, http.MethodGet, path, nil, &list); err != nil {
		return nil, err
	}
	return list.Data, nil
}
