package email

import (
	"context"
	"fmt"
	"net"
	"time"

	gomail "github.com/wneessen/go-mail"

	"eventcraft_backend/platform/config"
)

// SMTPSender implements Sender over a direct SMTP connection via go-mail.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
}

// NewSMTPSender creates a new SMTPSender from the SMTP configuration.
func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	return &SMTPSender{
		host:      cfg.GetSMTPHost(),
		port:      cfg.GetSMTPPort(),
		username:  cfg.GetSMTPUsername(),
		password:  cfg.GetSMTPPassword(),
		fromName:  cfg.GetEmailFromName(),
		fromEmail: cfg.GetEmailFromAddress(),
	}
}

func (s *SMTPSender) send(ctx context.Context, toEmail, subject, htmlContent string) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlContent)

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func (s *SMTPSender) SendWelcomeEmail(ctx context.Context, toEmail, name string) error {
	content, err := renderEmailTemplate("welcome.html", welcomeEmailData{
		baseEmailData: baseEmailData{
			Title:   subjectWelcome,
			Heading: "Welcome aboard",
		},
		Name: name,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectWelcome, content)
}

func (s *SMTPSender) SendNewLeadEmail(ctx context.Context, toEmail, ownerName, businessName, requesterName, eventType, message, dashboardURL string) error {
	subject := fmt.Sprintf(subjectNewLeadFmt, businessName)
	content, err := renderEmailTemplate("new_lead.html", newLeadEmailData{
		baseEmailData: baseEmailData{
			Title:    subject,
			Heading:  "You have a new lead",
			CTALabel: "View lead",
			CTAURL:   dashboardURL,
		},
		OwnerName:     ownerName,
		BusinessName:  businessName,
		RequesterName: requesterName,
		EventType:     eventType,
		Message:       message,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subject, content)
}

func (s *SMTPSender) SendLeadBookedEmail(ctx context.Context, toEmail, plannerName, businessName, eventType string) error {
	subject := fmt.Sprintf(subjectLeadBookedFmt, businessName)
	content, err := renderEmailTemplate("lead_booked.html", leadBookedEmailData{
		baseEmailData: baseEmailData{
			Title:   subject,
			Heading: "Booking confirmed",
		},
		PlannerName:  plannerName,
		BusinessName: businessName,
		EventType:    eventType,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subject, content)
}

func (s *SMTPSender) SendLeadReminderEmail(ctx context.Context, toEmail, ownerName, requesterName, eventType, dashboardURL string) error {
	subject := fmt.Sprintf(subjectLeadReminderFmt, requesterName)
	content, err := renderEmailTemplate("lead_reminder.html", leadReminderEmailData{
		baseEmailData: baseEmailData{
			Title:    subject,
			Heading:  "A lead is waiting for you",
			CTALabel: "Reply now",
			CTAURL:   dashboardURL,
		},
		OwnerName:     ownerName,
		RequesterName: requesterName,
		EventType:     eventType,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subject, content)
}

var _ Sender = (*SMTPSender)(nil)
