package service

import (
	"encoding/json"
	"fmt"
	"strings"

	"eventcraft_backend/internal/planner/vocabulary"
)

// ChecklistStep is one entry of a generated checklist.
type ChecklistStep struct {
	StepTitle   string   `json:"step_title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// Refinement is the structured result of a step refinement.
type Refinement struct {
	UpdatedDescription string          `json:"updated_description"`
	ProviderTags       []string        `json:"provider_tags"`
	SearchCriteria     json.RawMessage `json:"search_criteria"`
}

// stripCodeFence removes a surrounding markdown code fence when the model
// wraps its JSON in one.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		s = s[idx+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// parseChecklist decodes and validates a generated checklist. Any violation
// fails the whole generation; nothing is persisted on a bad checklist.
func parseChecklist(raw string, vocab *vocabulary.Vocabulary) ([]ChecklistStep, error) {
	var steps []ChecklistStep
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &steps); err != nil {
		return nil, fmt.Errorf("decode checklist: %w", err)
	}

	if len(steps) < vocab.MinSteps || len(steps) > vocab.MaxSteps {
		return nil, fmt.Errorf("checklist has %d steps, want %d to %d", len(steps), vocab.MinSteps, vocab.MaxSteps)
	}
	for i, step := range steps {
		if strings.TrimSpace(step.StepTitle) == "" {
			return nil, fmt.Errorf("step %d has an empty title", i+1)
		}
	}
	return steps, nil
}

// parseRefinement decodes a step refinement result.
func parseRefinement(raw string) (Refinement, error) {
	var result Refinement
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &result); err != nil {
		return Refinement{}, fmt.Errorf("decode refinement: %w", err)
	}
	return result, nil
}

// criteriaCity pulls a city out of the model's free-form search criteria.
// The model is not reliable about the shape here, so anything unusable
// simply yields "".
func criteriaCity(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var obj struct {
		City string `json:"city"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return ""
	}
	return strings.TrimSpace(obj.City)
}
