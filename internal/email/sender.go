// Package email renders and delivers transactional email.
package email

import "context"

// Sender delivers the application's transactional emails.
type Sender interface {
	SendWelcomeEmail(ctx context.Context, toEmail, name string) error
	SendNewLeadEmail(ctx context.Context, toEmail, ownerName, businessName, requesterName, eventType, message, dashboardURL string) error
	SendLeadBookedEmail(ctx context.Context, toEmail, plannerName, businessName, eventType string) error
	SendLeadReminderEmail(ctx context.Context, toEmail, ownerName, requesterName, eventType, dashboardURL string) error
}

// NoopSender drops all email. Used when SMTP is not configured.
type NoopSender struct{}

func (NoopSender) SendWelcomeEmail(context.Context, string, string) error {
	return nil
}

func (NoopSender) SendNewLeadEmail(context.Context, string, string, string, string, string, string, string) error {
	return nil
}

func (NoopSender) SendLeadBookedEmail(context.Context, string, string, string, string) error {
	return nil
}

func (NoopSender) SendLeadReminderEmail(context.Context, string, string, string, string, string) error {
	return nil
}

var _ Sender = NoopSender{}
