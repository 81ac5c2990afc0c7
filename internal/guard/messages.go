package guard

import (
	"context"

	"github.com/certifiedcode/memberguard/internal/logger"
	"github.com/certifiedcode/memberguard/internal/metrics"
	"github.com/certifiedcode/memberguard/internal/models"
	"github.com/certifiedcode/memberguard/internal/moderation"
	"github.com/certifiedcode/memberguard/internal/telemetry"
	"github.com/certifiedcode/memberguard/internal/toggles"
	"github.com/certifiedcode/memberguard/internal/wix"
	"go.uber.org/zap"
)

// OnMessageReceived screens a visitor message and, when it is flagged,
// leaves a business-only note in the conversation.
func (g *Guard) OnMessageReceived(ctx context.Context, instanceID string, msg *wix.InboxMessage) string {
	if instanceID == "" || msg == nil || msg.ConversationID == "" {
		logger.Log.Warn("Inbox event without instance or conversation, skipping")
		return OutcomeSkipped
	}
	if g.moderator == nil {
		return OutcomeSkipped
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	log := logger.Log.With(logger.WithInstanceID(instanceID), logger.WithConversationID(msg.ConversationID))

	if !g.toggles.EnabledOrFalse(ctx, toggles.MessageModeration, instanceID) {
		return OutcomeSkipped
	}
	if !msg.FromParticipant() || msg.Text == "" {
		return OutcomeSkipped
	}

	ctx, span := telemetry.GetBusinessEvents().TraceMessageReceived(ctx, instanceID, msg.ConversationID)
	defer span.End()

	verdict, err := g.moderator.Moderate(ctx, msg.Text)
	if err != nil {
		log.Error("Message moderation failed", zap.Error(err))
		telemetry.RecordOutcome(span, OutcomeFailed)
		return OutcomeFailed
	}
	if !verdict.Flagged {
		telemetry.RecordOutcome(span, OutcomeClean)
		return OutcomeClean
	}

	log.Info("Suspicious message flagged",
		zap.String("reason", verdict.Reason),
		zap.String("provider", verdict.Provider),
	)
	metrics.RecordMessageFlagged(verdict.Provider)

	detail := verdict.Reason + ": " + moderation.Preview(msg.Text, moderation.PreviewLength)
	reply := moderation.FlagReply(verdict, msg.Text)
	if err := g.platform.ForInstance(instanceID).SendMessage(ctx, msg.ConversationID, reply); err != nil {
		log.Error("Failed to post flag note", zap.Error(err))
		g.record(ctx, instanceID, models.ActivityMessageFlagged, "", detail+" (note not delivered)")
		telemetry.RecordOutcome(span, OutcomeFailed)
		return OutcomeFailed
	}
	g.record(ctx, instanceID, models.ActivityMessageFlagged, "", detail)

	telemetry.RecordOutcome(span, OutcomeFlagged)
	return OutcomeFlagged
}
