package handlers

import (
	"context"

	"github.com/certifiedcode/memberguard/internal/alerts"
	"github.com/certifiedcode/memberguard/internal/emailcheck"
	"github.com/certifiedcode/memberguard/internal/repository"
	"github.com/certifiedcode/memberguard/internal/toggles"
	"github.com/certifiedcode/memberguard/internal/wix"
)

// WebhookProcessor runs the guard pipelines for one raw webhook body
type WebhookProcessor interface {
	HandleWebhook(ctx context.Context, body []byte) (string, error)
}

// EmailChecker classifies an email address or domain
type EmailChecker interface {
	Check(ctx context.Context, emailOrDomain string) emailcheck.Result
}

// Handlers contains all HTTP handlers for the API
type Handlers struct {
	platform wix.Platform
	toggles  *toggles.Store
	webhooks WebhookProcessor
	emails   EmailChecker
	alerts   alerts.Sender
	activity repository.ActivityRepository
}

// NewHandlers creates a new handlers instance
func NewHandlers(platform wix.Platform, toggleStore *toggles.Store) *Handlers {
	return &Handlers{
		platform: platform,
		toggles:  toggleStore,
		alerts:   alerts.Noop{},
	}
}

// SetWebhookProcessor sets the pipeline behind POST /api/webhook
func (h *Handlers) SetWebhookProcessor(p WebhookProcessor) {
	h.webhooks = p
}

// SetEmailChecker sets the disposable email lookup
func (h *Handlers) SetEmailChecker(checker EmailChecker) {
	h.emails = checker
}

// SetAlertSender sets the provider used by the manual alert endpoint
func (h *Handlers) SetAlertSender(sender alerts.Sender) {
	h.alerts = sender
}

// SetActivityRepository enables the activity log endpoint
func (h *Handlers) SetActivityRepository(repo repository.ActivityRepository) {
	h.activity = repo
}
