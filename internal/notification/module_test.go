package notification

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"eventcraft_backend/internal/events"
	leadrepo "eventcraft_backend/internal/leads/repository"
	"eventcraft_backend/platform/apperr"
	"eventcraft_backend/platform/logger"
)

type sentEmail struct {
	kind string
	to   string
	args []string
}

type fakeSender struct {
	sent []sentEmail
}

func (f *fakeSender) SendWelcomeEmail(_ context.Context, toEmail, name string) error {
	f.sent = append(f.sent, sentEmail{kind: "welcome", to: toEmail, args: []string{name}})
	return nil
}

func (f *fakeSender) SendNewLeadEmail(_ context.Context, toEmail, ownerName, businessName, requesterName, eventType, message, dashboardURL string) error {
	f.sent = append(f.sent, sentEmail{kind: "new_lead", to: toEmail, args: []string{ownerName, businessName, requesterName, eventType, message, dashboardURL}})
	return nil
}

func (f *fakeSender) SendLeadBookedEmail(_ context.Context, toEmail, plannerName, businessName, eventType string) error {
	f.sent = append(f.sent, sentEmail{kind: "booked", to: toEmail, args: []string{plannerName, businessName, eventType}})
	return nil
}

func (f *fakeSender) SendLeadReminderEmail(_ context.Context, toEmail, ownerName, requesterName, eventType, dashboardURL string) error {
	f.sent = append(f.sent, sentEmail{kind: "reminder", to: toEmail, args: []string{ownerName, requesterName, eventType, dashboardURL}})
	return nil
}

type fakeLeads struct {
	leads map[uuid.UUID]leadrepo.Lead
}

func (f *fakeLeads) GetByID(_ context.Context, id uuid.UUID) (leadrepo.Lead, error) {
	if l, ok := f.leads[id]; ok {
		return l, nil
	}
	return leadrepo.Lead{}, apperr.NotFound("Lead not found")
}

type testConfig struct{}

func (testConfig) GetAppBaseURL() string { return "https://app.example.com" }

func testLead(id uuid.UUID) leadrepo.Lead {
	msg := "We need catering for 80 guests"
	return leadrepo.Lead{
		ID:             id,
		UserID:         uuid.New(),
		ProviderID:     uuid.New(),
		Status:         "new",
		Message:        &msg,
		BusinessName:   "Tasty Bites",
		OwnerName:      "Olga",
		OwnerEmail:     "olga@tastybites.example",
		EventType:      "wedding",
		RequesterName:  "Priya",
		RequesterEmail: "priya@example.com",
	}
}

func newModule(lead leadrepo.Lead) (*Module, *fakeSender) {
	sender := &fakeSender{}
	leads := &fakeLeads{leads: map[uuid.UUID]leadrepo.Lead{lead.ID: lead}}
	m := New(leads, sender, testConfig{}, logger.New("development"))
	return m, sender
}

func TestHandle_WelcomeEmailOnSignup(t *testing.T) {
	m, sender := newModule(testLead(uuid.New()))

	err := m.Handle(context.Background(), events.UserSignedUp{
		BaseEvent: events.NewBaseEvent(),
		UserID:    uuid.New(),
		Email:     "new@example.com",
		Name:      "Noor",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(sender.sent) != 1 || sender.sent[0].kind != "welcome" {
		t.Fatalf("expected one welcome email, got %+v", sender.sent)
	}
	if sender.sent[0].to != "new@example.com" || sender.sent[0].args[0] != "Noor" {
		t.Errorf("unexpected recipient or name: %+v", sender.sent[0])
	}
}

func TestHandle_NewLeadEmailsProviderOwner(t *testing.T) {
	leadID := uuid.New()
	m, sender := newModule(testLead(leadID))

	err := m.Handle(context.Background(), events.LeadCreated{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    leadID,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(sender.sent) != 1 || sender.sent[0].kind != "new_lead" {
		t.Fatalf("expected one new lead email, got %+v", sender.sent)
	}
	mail := sender.sent[0]
	if mail.to != "olga@tastybites.example" {
		t.Errorf("recipient = %q, want provider owner", mail.to)
	}
	if mail.args[2] != "Priya" || mail.args[3] != "wedding" {
		t.Errorf("unexpected email args: %v", mail.args)
	}
	if mail.args[5] != "https://app.example.com/provider-dashboard?tab=leads" {
		t.Errorf("dashboard url = %q", mail.args[5])
	}
}

func TestHandle_BookedStatusEmailsPlanner(t *testing.T) {
	leadID := uuid.New()
	m, sender := newModule(testLead(leadID))

	err := m.Handle(context.Background(), events.LeadStatusChanged{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    leadID,
		OldStatus: "contacted",
		NewStatus: "booked",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(sender.sent) != 1 || sender.sent[0].kind != "booked" {
		t.Fatalf("expected one booking email, got %+v", sender.sent)
	}
	if sender.sent[0].to != "priya@example.com" {
		t.Errorf("recipient = %q, want planner", sender.sent[0].to)
	}
}

func TestHandle_NonBookedTransitionsStaySilent(t *testing.T) {
	leadID := uuid.New()
	m, sender := newModule(testLead(leadID))

	err := m.Handle(context.Background(), events.LeadStatusChanged{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    leadID,
		OldStatus: "new",
		NewStatus: "contacted",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sender.sent) != 0 {
		t.Fatalf("contacted transition must not email anyone, got %+v", sender.sent)
	}
}

func TestHandle_MissingLeadReturnsError(t *testing.T) {
	m, _ := newModule(testLead(uuid.New()))

	err := m.Handle(context.Background(), events.LeadCreated{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    uuid.New(),
	})
	if err == nil {
		t.Fatal("expected error for missing lead")
	}
}
