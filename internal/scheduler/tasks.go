// Package scheduler provides delayed task scheduling backed by asynq.
package scheduler

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

// TaskLeadFollowupReminder nudges a provider about an unanswered lead.
const TaskLeadFollowupReminder = "leads.followup_reminder"

// FollowupDelay is how long a lead may sit in 'new' before the provider is
// reminded.
const FollowupDelay = 48 * time.Hour

// LeadFollowupPayload identifies the lead to check when the reminder fires.
type LeadFollowupPayload struct {
	LeadID string `json:"leadId"`
}

// NewLeadFollowupTask builds the asynq task for one follow-up reminder.
func NewLeadFollowupTask(payload LeadFollowupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLeadFollowupReminder, data), nil
}

// ParseLeadFollowupPayload decodes a follow-up reminder task.
func ParseLeadFollowupPayload(task *asynq.Task) (LeadFollowupPayload, error) {
	var payload LeadFollowupPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return LeadFollowupPayload{}, err
	}
	return payload, nil
}
