package moderation

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/certifiedcode/memberguard/internal/telemetry"
	"github.com/go-resty/resty/v2"
)

// OpenAI calls the OpenAI moderation endpoint
type OpenAI struct {
	http  *resty.Client
	model string
}

type openAIRequest struct {
	Model string `json:"model,omitempty"`
	Input string `json:"input"`
}

type openAIResponse struct {
	Results []struct {
		Flagged    bool            `json:"flagged"`
		Categories map[string]bool `json:"categories"`
	} `json:"results"`
}

type openAIError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// NewOpenAI creates an OpenAI moderator
func NewOpenAI(baseURL, apiKey, model string) (*OpenAI, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai moderation: api key is required")
	}
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}
	client := telemetry.NewRestyClient(telemetry.HTTPClientConfig{
		ServiceName: "openai",
		BaseURL:     strings.TrimRight(baseURL, "/"),
		Timeout:     15 * time.Second,
	}).SetAuthToken(apiKey)

	return &OpenAI{http: client, model: model}, nil
}

func (o *OpenAI) Name() string {
	return "openai"
}

func (o *OpenAI) Moderate(ctx context.Context, text string) (v Verdict, err error) {
	ctx, span := telemetry.TraceExternalCall(ctx, telemetry.ExternalServiceCallAttrs{
		Service:   "openai",
		Operation: "moderations",
	})
	status := 0
	defer func() { telemetry.EndExternalCall(span, status, err) }()

	var out openAIResponse
	resp, err := o.http.R().
		SetContext(ctx).
		SetBody(openAIRequest{Model: o.model, Input: text}).
		SetResult(&out).
		SetError(&openAIError{}).
		Post("/v1/moderations")
	if err != nil {
		return Verdict{}, fmt.Errorf("openai moderation: %w", err)
	}
	status = resp.StatusCode()
	if resp.IsError() {
		msg := resp.Status()
		if e, ok := resp.Error().(*openAIError); ok && e.Error.Message != "" {
			msg = e.Error.Message
		}
		return Verdict{}, fmt.Errorf("openai moderation: %s", msg)
	}

	for _, r := range out.Results {
		if !r.Flagged {
			continue
		}
		var cats []string
		for name, hit := range r.Categories {
			if hit {
				cats = append(cats, name)
			}
		}
		sort.Strings(cats)
		reason := strings.Join(cats, ", ")
		if reason == "" {
			reason = "flagged"
		}
		return Verdict{Flagged: true, Reason: reason, Categories: cats, Provider: o.Name()}, nil
	}
	return Verdict{Provider: o.Name()}, nil
}
