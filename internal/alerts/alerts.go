// Package alerts notifies site owners when a member with a disposable email is blocked.
package alerts

import (
	"context"
	"errors"
	"strings"

	"github.com/certifiedcode/memberguard/internal/logger"
	"github.com/certifiedcode/memberguard/internal/metrics"
	"go.uber.org/zap"
)

// FakeMemberSubject is the subject line of every fake member alert
const FakeMemberSubject = "🚨 Fake Email Member Detected"

// ErrNoRecipient is returned when there is nobody to alert
var ErrNoRecipient = errors.New("alerts: no recipient email")

// Sender delivers a fake member alert. sent is false when the provider
// accepted the call but declined to send.
type Sender interface {
	SendFakeMemberAlert(ctx context.Context, memberEmail, adminEmail string) (sent bool, err error)
}

// From identifies the alert sender
type From struct {
	Name  string
	Email string
}

// Noop drops alerts. Used when ALERT_PROVIDER=none.
type Noop struct{}

func (Noop) SendFakeMemberAlert(_ context.Context, memberEmail, _ string) (bool, error) {
	logger.Log.Info("Alert delivery disabled, dropping fake member alert", zap.String("member_email", memberEmail))
	return false, nil
}

// Recorded wraps a Sender with logging and metrics under provider
func Recorded(provider string, next Sender) Sender {
	return &recorded{provider: provider, next: next}
}

type recorded struct {
	provider string
	next     Sender
}

func (r *recorded) SendFakeMemberAlert(ctx context.Context, memberEmail, adminEmail string) (bool, error) {
	if strings.TrimSpace(adminEmail) == "" {
		metrics.RecordAlert(r.provider, false)
		return false, ErrNoRecipient
	}

	sent, err := r.next.SendFakeMemberAlert(ctx, memberEmail, adminEmail)
	metrics.RecordAlert(r.provider, sent && err == nil)

	switch {
	case err != nil:
		logger.Log.Error("Failed to send fake member alert",
			zap.String("provider", r.provider),
			zap.String("member_email", memberEmail),
			zap.Error(err),
		)
	case !sent:
		logger.Log.Warn("Fake member alert was not accepted",
			zap.String("provider", r.provider),
			zap.String("member_email", memberEmail),
		)
	default:
		logger.Log.Info("Sent fake member alert",
			zap.String("provider", r.provider),
			zap.String("member_email", memberEmail),
		)
	}
	return sent, err
}
