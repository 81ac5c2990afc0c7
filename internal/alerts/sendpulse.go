package alerts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/certifiedcode/memberguard/internal/telemetry"
	"github.com/go-resty/resty/v2"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// SendPulseConfig configures the SendPulse SMTP API sender
type SendPulseConfig struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	TemplateID   int
	From         From
}

type sendPulseAddress struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type sendPulseEmail struct {
	Subject  string `json:"subject"`
	Template struct {
		ID        int               `json:"id"`
		Variables map[string]string `json:"variables"`
	} `json:"template"`
	From sendPulseAddress   `json:"from"`
	To   []sendPulseAddress `json:"to"`
}

type sendPulseResult struct {
	Result  bool   `json:"result"`
	ID      string `json:"id,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// SendPulse sends templated alerts through the SendPulse SMTP API.
// Access tokens come from the client-credentials grant and are reused until expiry.
type SendPulse struct {
	cfg  SendPulseConfig
	http *resty.Client
}

// NewSendPulse creates a SendPulse sender
func NewSendPulse(cfg SendPulseConfig) (*SendPulse, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("sendpulse: client id and secret are required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.sendpulse.com"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	httpCfg := telemetry.HTTPClientConfig{
		ServiceName: "sendpulse",
		BaseURL:     cfg.BaseURL,
		Timeout:     15 * time.Second,
	}
	cc := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.BaseURL + "/oauth/access_token",
		AuthStyle:    oauth2.AuthStyleInParams,
	}
	// Token requests go through the instrumented client as well
	tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, telemetry.NewInstrumentedHTTPClient(httpCfg))
	authed := cc.Client(tokenCtx)
	authed.Timeout = httpCfg.Timeout

	return &SendPulse{
		cfg:  cfg,
		http: telemetry.NewRestyClientWith(authed, httpCfg),
	}, nil
}

// SendFakeMemberAlert emails adminEmail using the configured template
func (s *SendPulse) SendFakeMemberAlert(ctx context.Context, memberEmail, adminEmail string) (sent bool, err error) {
	ctx, span := telemetry.TraceExternalCall(ctx, telemetry.ExternalServiceCallAttrs{
		Service:   "sendpulse",
		Operation: "send_email",
	})
	status := 0
	defer func() { telemetry.EndExternalCall(span, status, err) }()

	var email sendPulseEmail
	email.Subject = FakeMemberSubject
	email.Template.ID = s.cfg.TemplateID
	email.Template.Variables = map[string]string{"member_email": memberEmail}
	email.From = sendPulseAddress{Name: s.cfg.From.Name, Email: s.cfg.From.Email}
	email.To = []sendPulseAddress{{Email: adminEmail}}

	var out sendPulseResult
	resp, err := s.http.R().
		SetContext(ctx).
		SetBody(map[string]any{"email": email}).
		SetResult(&out).
		Post("/smtp/emails")
	if err != nil {
		return false, fmt.Errorf("sendpulse send: %w", err)
	}
	status = resp.StatusCode()
	if !resp.IsSuccess() {
		return false, fmt.Errorf("sendpulse send: %s - %s", resp.Status(), strings.TrimSpace(resp.String()))
	}
	return out.Result, nil
}
