package adapters

import (
	"context"

	"github.com/google/uuid"

	authrepo "eventcraft_backend/internal/auth/repository"
	billingsvc "eventcraft_backend/internal/billing/service"
	providerrepo "eventcraft_backend/internal/providers/repository"
)

// CustomerStoreAdapter links user accounts to Stripe customers.
type CustomerStoreAdapter struct {
	users authrepo.Repository
}

// NewCustomerStoreAdapter creates the customer store adapter.
func NewCustomerStoreAdapter(users authrepo.Repository) *CustomerStoreAdapter {
	return &CustomerStoreAdapter{users: users}
}

// StripeCustomerID returns the stored Stripe customer reference, nil when
// the account has none yet.
func (a *CustomerStoreAdapter) StripeCustomerID(ctx context.Context, userID uuid.UUID) (*string, error) {
	user, err := a.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.StripeCustomerID, nil
}

// SetStripeCustomerID stores the Stripe customer reference on the account.
func (a *CustomerStoreAdapter) SetStripeCustomerID(ctx context.Context, userID uuid.UUID, customerID string) error {
	return a.users.SetStripeCustomerID(ctx, userID, customerID)
}

// UserIDForCustomer resolves the account behind a Stripe customer reference.
func (a *CustomerStoreAdapter) UserIDForCustomer(ctx context.Context, customerID string) (uuid.UUID, error) {
	user, err := a.users.GetByStripeCustomerID(ctx, customerID)
	if err != nil {
		return uuid.Nil, err
	}
	return user.ID, nil
}

var _ billingsvc.CustomerStore = (*CustomerStoreAdapter)(nil)

// SubscriptionStoreAdapter lets billing sync provider subscription standing.
type SubscriptionStoreAdapter struct {
	providers providerrepo.Repository
}

// NewSubscriptionStoreAdapter creates the subscription store adapter.
func NewSubscriptionStoreAdapter(providers providerrepo.Repository) *SubscriptionStoreAdapter {
	return &SubscriptionStoreAdapter{providers: providers}
}

// SubscriptionForUser returns the provider profile owned by a user.
func (a *SubscriptionStoreAdapter) SubscriptionForUser(ctx context.Context, userID uuid.UUID) (billingsvc.ProviderSubscription, error) {
	p, err := a.providers.GetByUserID(ctx, userID)
	if err != nil {
		return billingsvc.ProviderSubscription{}, err
	}
	return billingsvc.ProviderSubscription{
		ProviderID: p.ID,
		UserID:     p.UserID,
		Status:     p.SubscriptionStatus,
	}, nil
}

// UpdateSubscriptionStatus assigns the provider's subscription status.
func (a *SubscriptionStoreAdapter) UpdateSubscriptionStatus(ctx context.Context, userID uuid.UUID, status string) (billingsvc.ProviderSubscription, error) {
	p, err := a.providers.UpdateSubscriptionStatus(ctx, userID, status)
	if err != nil {
		return billingsvc.ProviderSubscription{}, err
	}
	return billingsvc.ProviderSubscription{
		ProviderID: p.ID,
		UserID:     p.UserID,
		Status:     p.SubscriptionStatus,
	}, nil
}

var _ billingsvc.SubscriptionStore = (*SubscriptionStoreAdapter)(nil)
