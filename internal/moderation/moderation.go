// Package moderation screens inbox messages for scams, phishing and abuse.
package moderation

import (
	"context"
	"fmt"

	"github.com/certifiedcode/memberguard/internal/util"
)

// PreviewLength is how many characters of a flagged message are quoted back
const PreviewLength = 100

// Verdict is the outcome of screening one message
type Verdict struct {
	Flagged    bool
	Reason     string
	Categories []string
	// Provider names the moderator that produced the verdict
	Provider string
}

// Moderator screens text
type Moderator interface {
	Moderate(ctx context.Context, text string) (Verdict, error)
	Name() string
}

// Preview shortens text to max characters, appending "…" when cut
func Preview(text string, max int) string {
	return util.TruncateRunes(text, max)
}

// FlagReply is the business-only note appended to a flagged conversation
func FlagReply(v Verdict, text string) string {
	return fmt.Sprintf("🚩 Suspicious message flagged (%s): \"%s\"", v.Reason, Preview(text, PreviewLength))
}

// Chain runs moderators in order; the first flag wins. A failing moderator
// is skipped so one outage does not hide a flag from the others.
type Chain struct {
	moderators []Moderator
}

// NewChain builds a chain, dropping nil entries
func NewChain(moderators ...Moderator) *Chain {
	c := &Chain{}
	for _, m := range moderators {
		if m != nil {
			c.moderators = append(c.moderators, m)
		}
	}
	return c
}

func (c *Chain) Name() string {
	return "chain"
}

// Moderate returns the first flagged verdict. The error is the last one seen,
// reported only when no moderator produced a verdict at all.
func (c *Chain) Moderate(ctx context.Context, text string) (Verdict, error) {
	var lastErr error
	answered := false
	for _, m := range c.moderators {
		v, err := m.Moderate(ctx, text)
		if err != nil {
			lastErr = fmt.Errorf("%s: %w", m.Name(), err)
			continue
		}
		answered = true
		if v.Flagged {
			if v.Provider == "" {
				v.Provider = m.Name()
			}
			return v, nil
		}
	}
	if !answered && lastErr != nil {
		return Verdict{}, lastErr
	}
	return Verdict{}, nil
}
