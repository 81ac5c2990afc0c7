// Package guard reacts to Wix webhook events: it blocks members signing up
// with disposable email domains, fills in missing avatars from Gravatar and
// flags suspicious inbox messages.
package guard

import (
	"context"
	"fmt"
	"time"

	"github.com/certifiedcode/memberguard/internal/alerts"
	"github.com/certifiedcode/memberguard/internal/emailcheck"
	"github.com/certifiedcode/memberguard/internal/logger"
	"github.com/certifiedcode/memberguard/internal/metrics"
	"github.com/certifiedcode/memberguard/internal/models"
	"github.com/certifiedcode/memberguard/internal/moderation"
	"github.com/certifiedcode/memberguard/internal/toggles"
	"github.com/certifiedcode/memberguard/internal/wix"
	"go.uber.org/zap"
)

// PipelineTimeout bounds one webhook pipeline end to end
const PipelineTimeout = 30 * time.Second

// Outcomes reported per webhook event
const (
	OutcomeSkipped   = "skipped"
	OutcomeIgnored   = "ignored"
	OutcomeBlocked   = "blocked"
	OutcomeAvatarSet = "avatar_set"
	OutcomeFlagged   = "flagged"
	OutcomeClean     = "clean"
	OutcomeFailed    = "failed"
)

// WebhookParser verifies and decodes a raw webhook body
type WebhookParser interface {
	ParseWebhook(body []byte) (*wix.Event, error)
}

// EmailChecker classifies an email address or domain
type EmailChecker interface {
	Check(ctx context.Context, emailOrDomain string) emailcheck.Result
}

// ActivityLog records side effects for the dashboard
type ActivityLog interface {
	Record(ctx context.Context, activity *models.Activity) error
}

// Deps wires a Guard. Alerts, Moderator and Activity are optional.
type Deps struct {
	Platform  wix.Platform
	Webhooks  WebhookParser
	Toggles   *toggles.Store
	Emails    EmailChecker
	Alerts    alerts.Sender
	Moderator moderation.Moderator
	Activity  ActivityLog

	// FallbackAlertEmail receives alerts when the site owner email is unknown
	FallbackAlertEmail string
}

// Guard runs the webhook pipelines
type Guard struct {
	platform      wix.Platform
	webhooks      WebhookParser
	toggles       *toggles.Store
	emails        EmailChecker
	alerts        alerts.Sender
	moderator     moderation.Moderator
	activity      ActivityLog
	fallbackEmail string
	timeout       time.Duration
}

// New creates a Guard
func New(d Deps) *Guard {
	g := &Guard{
		platform:      d.Platform,
		webhooks:      d.Webhooks,
		toggles:       d.Toggles,
		emails:        d.Emails,
		alerts:        d.Alerts,
		moderator:     d.Moderator,
		activity:      d.Activity,
		fallbackEmail: d.FallbackAlertEmail,
		timeout:       PipelineTimeout,
	}
	if g.alerts == nil {
		g.alerts = alerts.Noop{}
	}
	return g
}

// HandleWebhook verifies body and dispatches it to the matching pipeline.
// It returns the outcome for logging; the error is set only when the
// body itself could not be verified or decoded.
func (g *Guard) HandleWebhook(ctx context.Context, body []byte) (string, error) {
	evt, err := g.webhooks.ParseWebhook(body)
	if err != nil {
		metrics.RecordWebhookEvent("unknown", OutcomeFailed)
		return OutcomeFailed, fmt.Errorf("parse webhook: %w", err)
	}

	log := logger.Log.With(logger.WithEventType(evt.EventType), logger.WithInstanceID(evt.InstanceID))

	var outcome string
	switch evt.EventType {
	case wix.EventMemberCreated:
		member, err := evt.MemberCreated()
		if err != nil {
			metrics.RecordWebhookEvent(evt.EventType, OutcomeFailed)
			return OutcomeFailed, err
		}
		outcome = g.OnMemberCreated(ctx, evt.InstanceID, member)
	case wix.EventMessageSentToBusiness:
		msg, err := evt.InboxMessage()
		if err != nil {
			metrics.RecordWebhookEvent(evt.EventType, OutcomeFailed)
			return OutcomeFailed, err
		}
		outcome = g.OnMessageReceived(ctx, evt.InstanceID, msg)
	default:
		log.Debug("Ignoring webhook event")
		outcome = OutcomeIgnored
	}

	metrics.RecordWebhookEvent(evt.EventType, outcome)
	log.Info("Webhook processed", zap.String("outcome", outcome))
	return outcome, nil
}

func (g *Guard) record(ctx context.Context, instanceID string, kind models.ActivityKind, memberID, detail string) {
	if g.activity == nil {
		return
	}
	err := g.activity.Record(ctx, &models.Activity{
		InstanceID: instanceID,
		Kind:       kind,
		MemberID:   memberID,
		Detail:     detail,
	})
	if err != nil {
		logger.Log.Warn("Failed to record activity",
			logger.WithInstanceID(instanceID),
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
	}
}
