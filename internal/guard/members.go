package guard

import (
	"context"
	"errors"
	"strings"

	"github.com/certifiedcode/memberguard/internal/gravatar"
	"github.com/certifiedcode/memberguard/internal/logger"
	"github.com/certifiedcode/memberguard/internal/metrics"
	"github.com/certifiedcode/memberguard/internal/models"
	"github.com/certifiedcode/memberguard/internal/telemetry"
	"github.com/certifiedcode/memberguard/internal/toggles"
	"github.com/certifiedcode/memberguard/internal/wix"
	"go.uber.org/zap"
)

// OnMemberCreated blocks the member when their email domain is disposable
// and otherwise gives them a Gravatar photo, each step gated by its toggle.
func (g *Guard) OnMemberCreated(ctx context.Context, instanceID string, member *wix.Member) string {
	if instanceID == "" {
		logger.Log.Error("No instance ID found in event metadata")
		return OutcomeSkipped
	}
	if member == nil {
		logger.Log.Error("No member data found in event", logger.WithInstanceID(instanceID))
		return OutcomeSkipped
	}
	if member.ID == "" {
		logger.Log.Error("No member ID found in event", logger.WithInstanceID(instanceID))
		return OutcomeSkipped
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	ctx, span := telemetry.GetBusinessEvents().TraceMemberCreated(ctx, instanceID, member.ID)
	defer span.End()

	log := logger.Log.With(logger.WithInstanceID(instanceID), logger.WithMemberID(member.ID))
	api := g.platform.ForInstance(instanceID)
	email := member.Email()

	if blocked := g.blockIfFake(ctx, log, api, instanceID, member.ID, email); blocked {
		telemetry.RecordOutcome(span, OutcomeBlocked)
		return OutcomeBlocked
	}

	outcome := g.applyGravatar(ctx, log, api, instanceID, member, email)
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		log.Error("Member processing timed out", zap.Duration("timeout", g.timeout))
	}
	telemetry.RecordOutcome(span, outcome)
	return outcome
}

func (g *Guard) blockIfFake(ctx context.Context, log *zap.Logger, api wix.InstanceAPI, instanceID, memberID, email string) bool {
	if !g.toggles.EnabledOrFalse(ctx, toggles.FakeEmailBlock, instanceID) {
		return false
	}
	if email == "" || g.emails == nil {
		return false
	}

	result := g.emails.Check(ctx, email)
	if result.Error != "" {
		log.Warn("Email check failed, letting member through", zap.String("error", result.Error))
		return false
	}
	if !result.IsFake {
		return false
	}

	log.Info("Disposable email domain detected, blocking member", zap.String("domain", result.Domain))
	if err := api.BlockMember(ctx, memberID); err != nil {
		log.Error("Failed to block member", zap.Error(err))
		return false
	}
	metrics.RecordMemberBlocked()
	g.record(ctx, instanceID, models.ActivityMemberBlocked, memberID, "disposable domain "+result.Domain)

	g.alertOwner(ctx, log, api, instanceID, memberID, email)
	return true
}

func (g *Guard) alertOwner(ctx context.Context, log *zap.Logger, api wix.InstanceAPI, instanceID, memberID, email string) {
	recipient := g.fallbackEmail
	if app, err := api.GetAppInstance(ctx); err != nil {
		log.Warn("Could not look up site owner email", zap.Error(err))
	} else if owner := strings.TrimSpace(app.OwnerEmail); owner != "" {
		recipient = owner
	}
	if recipient == "" {
		log.Warn("No alert recipient for site; skipping fake member alert")
		return
	}

	sent, err := g.alerts.SendFakeMemberAlert(ctx, email, recipient)
	if err != nil {
		log.Warn("Fake member alert not delivered", zap.Error(err))
		return
	}
	if sent {
		g.record(ctx, instanceID, models.ActivityAlertSent, memberID, "alert sent to "+recipient)
	}
}

func (g *Guard) applyGravatar(ctx context.Context, log *zap.Logger, api wix.InstanceAPI, instanceID string, member *wix.Member, email string) string {
	if !g.toggles.EnabledOrFalse(ctx, toggles.Gravatar, instanceID) {
		log.Info("Gravatar auto-populate is disabled, skipping")
		return OutcomeSkipped
	}
	if email == "" {
		log.Info("No email found for member, skipping Gravatar update")
		return OutcomeSkipped
	}
	if member.HasPhoto() {
		log.Info("Member already has a profile photo, skipping Gravatar update", zap.String("photo_url", member.PhotoURL()))
		return OutcomeSkipped
	}

	url := gravatar.URL(email, gravatar.DefaultOptions)
	if _, err := api.UpdateMemberPhoto(ctx, member.ID, wix.Photo{URL: url}); err != nil {
		log.Error("Error updating member profile photo", zap.Error(err))
		return OutcomeFailed
	}

	log.Info("Updated member profile photo with Gravatar", zap.String("gravatar_url", url))
	metrics.RecordAvatarSet("webhook")
	g.record(ctx, instanceID, models.ActivityAvatarSet, member.ID, url)
	return OutcomeAvatarSet
}
