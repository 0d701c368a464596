package scheduler

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"eventcraft_backend/internal/email"
	leadrepo "eventcraft_backend/internal/leads/repository"
	"eventcraft_backend/platform/apperr"
	"eventcraft_backend/platform/config"
	"eventcraft_backend/platform/logger"
)

// Worker consumes scheduled tasks and acts on them.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	leads  leadrepo.Repository
	sender email.Sender
	appURL string
	log    *logger.Logger
}

// WorkerConfig is the configuration surface the worker needs.
type WorkerConfig interface {
	config.SchedulerConfig
	config.NotificationConfig
}

// NewWorker creates the asynq worker.
func NewWorker(cfg WorkerConfig, pool *pgxpool.Pool, sender email.Sender, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		leads:  leadrepo.New(pool),
		sender: sender,
		appURL: cfg.GetAppBaseURL(),
		log:    log,
	}

	mux.HandleFunc(TaskLeadFollowupReminder, w.handleLeadFollowup)

	return w, nil
}

// Run serves tasks until the context is cancelled.
func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

// handleLeadFollowup re-checks the lead when the reminder fires. Leads that
// were answered or deleted in the meantime are dropped silently.
func (w *Worker) handleLeadFollowup(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseLeadFollowupPayload(task)
	if err != nil {
		return err
	}

	leadID, err := uuid.Parse(payload.LeadID)
	if err != nil {
		return err
	}

	lead, err := w.leads.GetByID(ctx, leadID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil
		}
		return err
	}

	if lead.Status != "new" {
		return nil
	}

	err = w.sender.SendLeadReminderEmail(ctx,
		lead.OwnerEmail,
		lead.OwnerName,
		lead.RequesterName,
		lead.EventType,
		w.appURL+"/provider-dashboard?tab=leads",
	)
	if err != nil {
		return fmt.Errorf("send reminder email: %w", err)
	}

	w.log.Info("lead follow-up reminder sent", "lead_id", lead.ID, "provider_id", lead.ProviderID)
	return nil
}
