package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"

	"eventcraft_backend/internal/events"
	"eventcraft_backend/internal/planner/matching"
	"eventcraft_backend/internal/planner/repository"
	"eventcraft_backend/internal/planner/transport"
	"eventcraft_backend/internal/planner/vocabulary"
	"eventcraft_backend/platform/apperr"
	"eventcraft_backend/platform/httpkit"
	"eventcraft_backend/platform/logger"
)

type fakeIdentity struct {
	id uuid.UUID
}

func (f fakeIdentity) UserID() uuid.UUID     { return f.id }
func (f fakeIdentity) Email() string         { return "planner@example.com" }
func (f fakeIdentity) AccountType() string   { return httpkit.AccountTypeUser }
func (f fakeIdentity) IsProvider() bool      { return false }
func (f fakeIdentity) IsAuthenticated() bool { return true }

type fakeLLM struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeLLM) Complete(_ context.Context, _, userPrompt string, _ float64) (string, error) {
	f.prompts = append(f.prompts, userPrompt)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

type fakeCatalog struct {
	candidates []matching.Provider
	lastTypes  []string
	lastCity   string
}

func (f *fakeCatalog) Candidates(_ context.Context, types []string, city string, _ int) ([]matching.Provider, error) {
	f.lastTypes = types
	f.lastCity = city
	return f.candidates, nil
}

type fakeRepo struct {
	events  map[uuid.UUID]repository.Event
	tasks   map[uuid.UUID]repository.Task
	matches map[uuid.UUID][]uuid.UUID
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		events:  make(map[uuid.UUID]repository.Event),
		tasks:   make(map[uuid.UUID]repository.Task),
		matches: make(map[uuid.UUID][]uuid.UUID),
	}
}

func (f *fakeRepo) CreateEventWithTasks(_ context.Context, params repository.CreateEventParams) (repository.Event, []repository.Task, error) {
	event := repository.Event{
		ID:            uuid.New(),
		UserID:        params.UserID,
		EventType:     params.EventType,
		Prompt:        params.Prompt,
		ChecklistJSON: params.ChecklistJSON,
	}
	f.events[event.ID] = event

	tasks := make([]repository.Task, 0, len(params.Steps))
	for i, step := range params.Steps {
		task := repository.Task{
			ID:          uuid.New(),
			EventID:     event.ID,
			StepTitle:   step.StepTitle,
			Description: step.Description,
			OrderNumber: i + 1,
		}
		f.tasks[task.ID] = task
		tasks = append(tasks, task)
	}
	return event, tasks, nil
}

func (f *fakeRepo) GetEvent(_ context.Context, id uuid.UUID) (repository.Event, error) {
	if e, ok := f.events[id]; ok {
		return e, nil
	}
	return repository.Event{}, apperr.NotFound("Event not found")
}

func (f *fakeRepo) GetEventForUser(_ context.Context, id, userID uuid.UUID) (repository.Event, error) {
	if e, ok := f.events[id]; ok && e.UserID == userID {
		return e, nil
	}
	return repository.Event{}, apperr.NotFound("Event not found")
}

func (f *fakeRepo) ListEventsForUser(_ context.Context, userID uuid.UUID) ([]repository.Event, error) {
	out := make([]repository.Event, 0)
	for _, e := range f.events {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeRepo) GetTaskInEvent(_ context.Context, taskID, eventID uuid.UUID) (repository.Task, error) {
	if t, ok := f.tasks[taskID]; ok && t.EventID == eventID {
		return t, nil
	}
	return repository.Task{}, apperr.NotFound("Step not found")
}

func (f *fakeRepo) ListTasks(_ context.Context, eventID uuid.UUID) ([]repository.Task, error) {
	out := make([]repository.Task, 0)
	for _, t := range f.tasks {
		if t.EventID == eventID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeRepo) UpdateTaskRefinement(_ context.Context, taskID uuid.UUID, description, refinementPrompt string) (repository.Task, error) {
	t, ok := f.tasks[taskID]
	if !ok {
		return repository.Task{}, apperr.NotFound("Step not found")
	}
	t.Description = description
	t.RefinementPrompt = &refinementPrompt
	f.tasks[taskID] = t
	return t, nil
}

func (f *fakeRepo) SetTaskMatches(_ context.Context, taskID uuid.UUID, providerIDs []uuid.UUID) error {
	f.matches[taskID] = providerIDs
	return nil
}

func newTestService(t *testing.T, repo repository.Repository, catalog ProviderCatalog, llm Completer) *Service {
	t.Helper()
	vocab, err := vocabulary.Load()
	if err != nil {
		t.Fatalf("load vocabulary: %v", err)
	}
	log := logger.New("development")
	return New(repo, catalog, llm, vocab, events.NewInMemoryBus(log), log)
}

func validChecklist(n int) string {
	steps := make([]ChecklistStep, n)
	for i := range steps {
		steps[i] = ChecklistStep{
			StepTitle:   "Book a Venue",
			Description: "Find a wedding venue for the guests",
			Tags:        []string{"venue"},
		}
	}
	raw, _ := json.Marshal(steps)
	return string(raw)
}

func TestGeneratePlan_PersistsEventAndAttachesProviders(t *testing.T) {
	repo := newFakeRepo()
	catalog := &fakeCatalog{candidates: []matching.Provider{
		{ID: uuid.New(), BusinessName: "Grand Hall", ProviderType: "venue", Description: "wedding venue"},
		{ID: uuid.New(), BusinessName: "Flower Power", ProviderType: "florist"},
	}}
	llm := &fakeLLM{response: validChecklist(5)}
	svc := newTestService(t, repo, catalog, llm)

	resp, err := svc.GeneratePlan(context.Background(), fakeIdentity{id: uuid.New()}, transport.GeneratePlanRequest{
		EventType: "wedding",
		Prompt:    "Wedding for 200 guests in Toronto, halal catering required",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(repo.events) != 1 {
		t.Fatalf("expected 1 persisted event, got %d", len(repo.events))
	}
	if len(resp.Checklist) != 5 {
		t.Fatalf("expected 5 steps, got %d", len(resp.Checklist))
	}
	for i, step := range resp.Checklist {
		if step.OrderNumber != i+1 {
			t.Fatalf("expected order %d, got %d", i+1, step.OrderNumber)
		}
		if len(step.MatchingProviders) != 2 {
			t.Fatalf("expected 2 matched providers, got %d", len(step.MatchingProviders))
		}
		if step.MatchingProviders[0].BusinessName != "Grand Hall" {
			t.Fatalf("expected venue ranked first, got %s", step.MatchingProviders[0].BusinessName)
		}
	}
	if catalog.lastCity != "toronto" {
		t.Fatalf("expected city extracted from prompt, got %q", catalog.lastCity)
	}
	if len(repo.matches) != 5 {
		t.Fatalf("expected matches stored per task, got %d", len(repo.matches))
	}
}

func TestGeneratePlan_BadJSONPersistsNothing(t *testing.T) {
	repo := newFakeRepo()
	llm := &fakeLLM{response: "sorry, I cannot help with that"}
	svc := newTestService(t, repo, &fakeCatalog{}, llm)

	_, err := svc.GeneratePlan(context.Background(), fakeIdentity{id: uuid.New()}, transport.GeneratePlanRequest{
		EventType: "wedding",
		Prompt:    "a party",
	})
	if !apperr.Is(err, apperr.KindInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}
	if len(repo.events) != 0 || len(repo.tasks) != 0 {
		t.Fatal("expected nothing persisted on parse failure")
	}
}

func TestGeneratePlan_StepCountOutOfBoundsRejected(t *testing.T) {
	repo := newFakeRepo()
	for _, n := range []int{4, 9} {
		llm := &fakeLLM{response: validChecklist(n)}
		svc := newTestService(t, repo, &fakeCatalog{}, llm)

		_, err := svc.GeneratePlan(context.Background(), fakeIdentity{id: uuid.New()}, transport.GeneratePlanRequest{
			EventType: "wedding",
			Prompt:    "a party",
		})
		if err == nil {
			t.Fatalf("expected error for %d steps", n)
		}
	}
	if len(repo.events) != 0 {
		t.Fatal("expected nothing persisted")
	}
}

func TestGeneratePlan_FencedJSONAccepted(t *testing.T) {
	repo := newFakeRepo()
	llm := &fakeLLM{response: "```json\n" + validChecklist(6) + "\n```"}
	svc := newTestService(t, repo, &fakeCatalog{}, llm)

	resp, err := svc.GeneratePlan(context.Background(), fakeIdentity{id: uuid.New()}, transport.GeneratePlanRequest{
		EventType: "wedding",
		Prompt:    "a party",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Checklist) != 6 {
		t.Fatalf("expected 6 steps, got %d", len(resp.Checklist))
	}
}

func TestRefineStep_ForeignEventReadsAsNotFound(t *testing.T) {
	repo := newFakeRepo()
	owner := uuid.New()
	event, tasks, _ := repo.CreateEventWithTasks(context.Background(), repository.CreateEventParams{
		UserID:    owner,
		EventType: "wedding",
		Prompt:    "a party",
		Steps:     []repository.CreateTaskParams{{StepTitle: "Book a Venue"}},
	})
	svc := newTestService(t, repo, &fakeCatalog{}, &fakeLLM{})

	_, err := svc.RefineStep(context.Background(), fakeIdentity{id: uuid.New()}, transport.RefineStepRequest{
		EventID:          event.ID,
		StepID:           tasks[0].ID,
		RefinementPrompt: "make it outdoor",
	})
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found for foreign event, got %v", err)
	}
}

func TestRefineStep_UpdatesDescriptionAndMatchesWithCombinedContext(t *testing.T) {
	repo := newFakeRepo()
	owner := uuid.New()
	event, tasks, _ := repo.CreateEventWithTasks(context.Background(), repository.CreateEventParams{
		UserID:    owner,
		EventType: "wedding",
		Prompt:    "Wedding for 200 guests",
		Steps:     []repository.CreateTaskParams{{StepTitle: "Arrange Catering", Description: "old description"}},
	})

	catalog := &fakeCatalog{candidates: []matching.Provider{
		{ID: uuid.New(), BusinessName: "Halal Kitchen", ProviderType: "catering", Tags: []string{"halal"}},
	}}
	refinement := `{"updated_description": "Serve a halal buffet", "provider_tags": ["catering"], "search_criteria": {"city": "Toronto"}}`
	svc := newTestService(t, repo, catalog, &fakeLLM{response: refinement})

	resp, err := svc.RefineStep(context.Background(), fakeIdentity{id: owner}, transport.RefineStepRequest{
		EventID:          event.ID,
		StepID:           tasks[0].ID,
		RefinementPrompt: "halal food only",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.UpdatedStep.Description != "Serve a halal buffet" {
		t.Fatalf("expected refined description, got %q", resp.UpdatedStep.Description)
	}
	if resp.UpdatedStep.RefinementPrompt == nil || *resp.UpdatedStep.RefinementPrompt != "halal food only" {
		t.Fatal("expected raw refinement prompt stored")
	}
	if catalog.lastCity != "Toronto" {
		t.Fatalf("expected city from search criteria, got %q", catalog.lastCity)
	}
	if len(resp.MatchingProviders) != 1 {
		t.Fatalf("expected 1 matched provider, got %d", len(resp.MatchingProviders))
	}
	// Type match plus the "halal" tag appearing in the combined context.
	if resp.MatchingProviders[0].RelevanceScore != 15 {
		t.Fatalf("expected score 15, got %d", resp.MatchingProviders[0].RelevanceScore)
	}
}

func TestRefineStep_FallsBackToPriorDescription(t *testing.T) {
	repo := newFakeRepo()
	owner := uuid.New()
	event, tasks, _ := repo.CreateEventWithTasks(context.Background(), repository.CreateEventParams{
		UserID:    owner,
		EventType: "wedding",
		Prompt:    "a party",
		Steps:     []repository.CreateTaskParams{{StepTitle: "Arrange Catering", Description: "old description"}},
	})
	svc := newTestService(t, repo, &fakeCatalog{}, &fakeLLM{response: `{"provider_tags": ["catering"]}`})

	resp, err := svc.RefineStep(context.Background(), fakeIdentity{id: owner}, transport.RefineStepRequest{
		EventID:          event.ID,
		StepID:           tasks[0].ID,
		RefinementPrompt: "keep it simple",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.UpdatedStep.Description != "old description" {
		t.Fatalf("expected fallback to prior description, got %q", resp.UpdatedStep.Description)
	}
}
