package moderation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/certifiedcode/memberguard/internal/telemetry"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
)

const classifierPrompt = `You are a content moderator for a small business website inbox.
Decide whether the message below is a scam, phishing attempt, spam, harassment or otherwise abusive.
Answer with a single JSON object and nothing else:
{"flagged": true|false, "category": "<scam|phishing|spam|harassment|other|none>", "reason": "<short reason>"}

Message:
"""
%s
"""`

// LLM classifies messages with a language model
type LLM struct {
	model llms.Model
	name  string
}

// NewGemini creates an LLM moderator backed by Google Gemini
func NewGemini(ctx context.Context, apiKey, model string) (*LLM, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini moderation: api key is required")
	}
	if model == "" {
		model = "gemini-1.5-flash"
	}
	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("gemini moderation: %w", err)
	}
	return NewLLM("gemini", llm), nil
}

// NewLLM wraps any langchaingo model
func NewLLM(name string, model llms.Model) *LLM {
	return &LLM{model: model, name: name}
}

func (l *LLM) Name() string {
	return l.name
}

func (l *LLM) Moderate(ctx context.Context, text string) (v Verdict, err error) {
	ctx, span := telemetry.TraceExternalCall(ctx, telemetry.ExternalServiceCallAttrs{
		Service:   l.name,
		Operation: "classify",
	})
	defer func() { telemetry.EndExternalCall(span, 0, err) }()

	completion, err := llms.GenerateFromSinglePrompt(ctx, l.model,
		fmt.Sprintf(classifierPrompt, text),
		llms.WithTemperature(0),
	)
	if err != nil {
		return Verdict{}, fmt.Errorf("%s moderation: %w", l.name, err)
	}

	v, err = parseLLMVerdict(completion)
	if err != nil {
		return Verdict{}, fmt.Errorf("%s moderation: %w", l.name, err)
	}
	v.Provider = l.name
	return v, nil
}

type llmAnswer struct {
	Flagged  bool   `json:"flagged"`
	Category string `json:"category"`
	Reason   string `json:"reason"`
}

// parseLLMVerdict extracts the JSON object from a completion, tolerating
// code fences and chatter around it.
func parseLLMVerdict(completion string) (Verdict, error) {
	start := strings.Index(completion, "{")
	end := strings.LastIndex(completion, "}")
	if start < 0 || end < start {
		return Verdict{}, fmt.Errorf("no JSON object in completion %q", Preview(completion, 80))
	}

	var ans llmAnswer
	if err := json.Unmarshal([]byte(completion[start:end+1]), &ans); err != nil {
		return Verdict{}, fmt.Errorf("decode completion: %w", err)
	}
	if !ans.Flagged {
		return Verdict{}, nil
	}

	category := strings.ToLower(strings.TrimSpace(ans.Category))
	if category == "" || category == "none" {
		category = "other"
	}
	reason := category
	if r := strings.TrimSpace(ans.Reason); r != "" {
		reason = category + ": " + r
	}
	return Verdict{Flagged: true, Reason: reason, Categories: []string{category}}, nil
}
