// Package service implements the AI checklist generation and refinement
// pipelines.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"eventcraft_backend/internal/events"
	"eventcraft_backend/internal/planner/matching"
	"eventcraft_backend/internal/planner/repository"
	"eventcraft_backend/internal/planner/transport"
	"eventcraft_backend/internal/planner/vocabulary"
	"eventcraft_backend/platform/apperr"
	"eventcraft_backend/platform/httpkit"
	"eventcraft_backend/platform/logger"
)

// Completer is the text-generation port. Satisfied by the OpenAI client.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float64) (string, error)
}

// ProviderCatalog supplies matching candidates from the provider directory.
type ProviderCatalog interface {
	Candidates(ctx context.Context, types []string, city string, limit int) ([]matching.Provider, error)
}

// Service implements plan generation and step refinement.
type Service struct {
	repo    repository.Repository
	catalog ProviderCatalog
	llm     Completer
	vocab   *vocabulary.Vocabulary
	bus     events.Bus
	log     *logger.Logger
}

// New creates a new planner service.
func New(repo repository.Repository, catalog ProviderCatalog, llm Completer, vocab *vocabulary.Vocabulary, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		repo:    repo,
		catalog: catalog,
		llm:     llm,
		vocab:   vocab,
		bus:     bus,
		log:     log,
	}
}

// GeneratePlan runs the full checklist pipeline: prompt the model, parse the
// checklist, persist the event with all of its steps atomically, then attach
// provider suggestions per step.
func (s *Service) GeneratePlan(ctx context.Context, identity httpkit.Identity, req transport.GeneratePlanRequest) (transport.GeneratePlanResponse, error) {
	started := time.Now()
	systemPrompt := fmt.Sprintf(generateSystemPromptFormat, s.vocab.TypeList())

	raw, err := s.llm.Complete(ctx, systemPrompt, generateUserPrompt(req.EventType, req.Prompt), generateTemperature)
	s.log.AICompletion("generate_plan", float64(time.Since(started).Milliseconds()), err)
	if err != nil {
		return transport.GeneratePlanResponse{}, apperr.Wrap(apperr.KindUnavailable, "Failed to generate plan", err)
	}

	steps, err := parseChecklist(raw, s.vocab)
	if err != nil {
		s.log.Warn("checklist rejected", "error", err)
		return transport.GeneratePlanResponse{}, apperr.Wrap(apperr.KindInternal, "Failed to parse AI response", err)
	}

	checklistJSON, err := json.Marshal(steps)
	if err != nil {
		return transport.GeneratePlanResponse{}, apperr.Wrap(apperr.KindInternal, "Failed to generate plan", err)
	}

	createParams := repository.CreateEventParams{
		UserID:        identity.UserID(),
		EventType:     req.EventType,
		Prompt:        req.Prompt,
		ChecklistJSON: checklistJSON,
	}
	for _, step := range steps {
		createParams.Steps = append(createParams.Steps, repository.CreateTaskParams{
			StepTitle:   step.StepTitle,
			Description: step.Description,
		})
	}

	event, tasks, err := s.repo.CreateEventWithTasks(ctx, createParams)
	if err != nil {
		return transport.GeneratePlanResponse{}, err
	}

	matches, err := s.matchSteps(ctx, steps, req.Prompt)
	if err != nil {
		return transport.GeneratePlanResponse{}, err
	}

	checklist := make([]transport.StepResponse, len(tasks))
	for i, task := range tasks {
		checklist[i] = toStepResponse(task, steps[i].Tags, matches[i])

		ids := make([]uuid.UUID, len(matches[i]))
		for j, m := range matches[i] {
			ids[j] = m.ID
		}
		if err := s.repo.SetTaskMatches(ctx, task.ID, ids); err != nil {
			s.log.Warn("failed to store task matches", "task_id", task.ID, "error", err)
		}
	}

	s.log.Info("plan generated",
		"event_id", event.ID,
		"user_id", identity.UserID(),
		"event_type", event.EventType,
		"steps", len(tasks),
	)
	s.bus.Publish(ctx, events.PlanGenerated{
		BaseEvent: events.NewBaseEvent(),
		EventID:   event.ID,
		UserID:    identity.UserID(),
		EventType: event.EventType,
		StepCount: len(tasks),
	})

	return transport.GeneratePlanResponse{
		Event:     toEventResponse(event),
		Checklist: checklist,
	}, nil
}

// matchSteps ranks provider suggestions for every step concurrently.
func (s *Service) matchSteps(ctx context.Context, steps []ChecklistStep, prompt string) ([][]transport.MatchedProvider, error) {
	city := matching.ExtractCity(prompt)
	matches := make([][]transport.MatchedProvider, len(steps))

	g, gctx := errgroup.WithContext(ctx)
	for i, step := range steps {
		g.Go(func() error {
			ranked, err := s.matchProviders(gctx, step.Tags, prompt, city)
			if err != nil {
				return err
			}
			matches[i] = ranked
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return matches, nil
}

// matchProviders fetches candidates and ranks them for one step.
func (s *Service) matchProviders(ctx context.Context, tags []string, matchContext, city string) ([]transport.MatchedProvider, error) {
	types := make([]string, 0, len(tags))
	for _, t := range tags {
		if s.vocab.ContainsType(t) {
			types = append(types, t)
		}
	}

	candidates, err := s.catalog.Candidates(ctx, types, city, matching.TopSearch)
	if err != nil {
		return nil, err
	}

	ranked := matching.Rank(candidates, tags, matchContext, matching.TopChecklist)
	result := make([]transport.MatchedProvider, len(ranked))
	for i, r := range ranked {
		result[i] = toMatchedProvider(r)
	}
	return result, nil
}

// RefineStep reworks one checklist step from a refinement request. Ownership
// mismatches read as not found so foreign events stay invisible.
func (s *Service) RefineStep(ctx context.Context, identity httpkit.Identity, req transport.RefineStepRequest) (transport.RefineStepResponse, error) {
	event, err := s.repo.GetEventForUser(ctx, req.EventID, identity.UserID())
	if err != nil {
		return transport.RefineStepResponse{}, err
	}
	task, err := s.repo.GetTaskInEvent(ctx, req.StepID, req.EventID)
	if err != nil {
		return transport.RefineStepResponse{}, err
	}

	started := time.Now()
	systemPrompt := fmt.Sprintf(refineSystemPromptFormat, s.vocab.TypeList())
	userPrompt := refineUserPrompt(event.Prompt, task.StepTitle, task.Description, req.RefinementPrompt)

	raw, err := s.llm.Complete(ctx, systemPrompt, userPrompt, generateTemperature)
	s.log.AICompletion("refine_step", float64(time.Since(started).Milliseconds()), err)
	if err != nil {
		return transport.RefineStepResponse{}, apperr.Wrap(apperr.KindUnavailable, "Failed to refine step", err)
	}

	refinement, err := parseRefinement(raw)
	if err != nil {
		s.log.Warn("refinement rejected", "error", err)
		return transport.RefineStepResponse{}, apperr.Wrap(apperr.KindInternal, "Failed to parse AI response", err)
	}

	description := refinement.UpdatedDescription
	if description == "" {
		description = task.Description
	}

	updated, err := s.repo.UpdateTaskRefinement(ctx, task.ID, description, req.RefinementPrompt)
	if err != nil {
		return transport.RefineStepResponse{}, err
	}

	matchContext := event.Prompt + " " + req.RefinementPrompt
	city := criteriaCity(refinement.SearchCriteria)
	if city == "" {
		city = matching.ExtractCity(matchContext)
	}
	matched, err := s.matchProviders(ctx, refinement.ProviderTags, matchContext, city)
	if err != nil {
		return transport.RefineStepResponse{}, err
	}

	ids := make([]uuid.UUID, len(matched))
	for i, m := range matched {
		ids[i] = m.ID
	}
	if err := s.repo.SetTaskMatches(ctx, updated.ID, ids); err != nil {
		s.log.Warn("failed to store task matches", "task_id", updated.ID, "error", err)
	}

	s.log.Info("step refined", "event_id", event.ID, "step_id", updated.ID, "user_id", identity.UserID())
	s.bus.Publish(ctx, events.StepRefined{
		BaseEvent: events.NewBaseEvent(),
		EventID:   event.ID,
		StepID:    updated.ID,
		UserID:    identity.UserID(),
	})

	return transport.RefineStepResponse{
		UpdatedStep:       toStepResponse(updated, refinement.ProviderTags, matched),
		MatchingProviders: matched,
	}, nil
}

// ListEvents returns the caller's generated plans.
func (s *Service) ListEvents(ctx context.Context, identity httpkit.Identity) (transport.EventListResponse, error) {
	list, err := s.repo.ListEventsForUser(ctx, identity.UserID())
	if err != nil {
		return transport.EventListResponse{}, err
	}

	out := make([]transport.EventResponse, len(list))
	for i, e := range list {
		out[i] = toEventResponse(e)
	}
	return transport.EventListResponse{Events: out, Total: len(out)}, nil
}

// GetEvent returns one plan with its full checklist.
func (s *Service) GetEvent(ctx context.Context, identity httpkit.Identity, id uuid.UUID) (transport.EventDetailResponse, error) {
	event, err := s.repo.GetEventForUser(ctx, id, identity.UserID())
	if err != nil {
		return transport.EventDetailResponse{}, err
	}
	tasks, err := s.repo.ListTasks(ctx, event.ID)
	if err != nil {
		return transport.EventDetailResponse{}, err
	}

	var steps []ChecklistStep
	if err := json.Unmarshal(event.ChecklistJSON, &steps); err != nil {
		s.log.Warn("stored checklist unreadable", "event_id", event.ID, "error", err)
	}

	checklist := make([]transport.StepResponse, len(tasks))
	for i, task := range tasks {
		var tags []string
		if idx := task.OrderNumber - 1; idx >= 0 && idx < len(steps) {
			tags = steps[idx].Tags
		}
		checklist[i] = toStepResponse(task, tags, []transport.MatchedProvider{})
	}

	return transport.EventDetailResponse{
		Event:     toEventResponse(event),
		Checklist: checklist,
	}, nil
}

func toEventResponse(e repository.Event) transport.EventResponse {
	return transport.EventResponse{
		ID:        e.ID,
		UserID:    e.UserID,
		EventType: e.EventType,
		Prompt:    e.Prompt,
		CreatedAt: e.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toStepResponse(t repository.Task, tags []string, matched []transport.MatchedProvider) transport.StepResponse {
	if tags == nil {
		tags = []string{}
	}
	if matched == nil {
		matched = []transport.MatchedProvider{}
	}
	return transport.StepResponse{
		ID:                t.ID,
		EventID:           t.EventID,
		StepTitle:         t.StepTitle,
		Description:       t.Description,
		OrderNumber:       t.OrderNumber,
		Tags:              tags,
		RefinementPrompt:  t.RefinementPrompt,
		MatchingProviders: matched,
	}
}

func toMatchedProvider(r matching.Scored) transport.MatchedProvider {
	tags := r.Tags
	if tags == nil {
		tags = []string{}
	}
	return transport.MatchedProvider{
		ID:               r.ID,
		BusinessName:     r.BusinessName,
		ProviderType:     r.ProviderType,
		LocationCity:     r.LocationCity,
		LocationProvince: r.LocationProvince,
		Description:      r.Description,
		Tags:             tags,
		LogoURL:          r.LogoURL,
		OwnerName:        r.OwnerName,
		OwnerEmail:       r.OwnerEmail,
		RelevanceScore:   r.Score,
	}
}
