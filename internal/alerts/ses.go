package alerts

import (
	"context"
	"fmt"
	"html"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/certifiedcode/memberguard/internal/telemetry"
)

// sesAPI is the slice of the SES client used here
type sesAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SES sends alerts through Amazon SES
type SES struct {
	client sesAPI
	from   From
}

// NewSES loads the default AWS credential chain for region
func NewSES(region string, from From) (*SES, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
		config.WithHTTPClient(telemetry.NewInstrumentedHTTPClient(telemetry.HTTPClientConfig{ServiceName: "ses"})),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &SES{client: ses.NewFromConfig(cfg), from: from}, nil
}

func (s *SES) SendFakeMemberAlert(ctx context.Context, memberEmail, adminEmail string) (sent bool, err error) {
	ctx, span := telemetry.TraceExternalCall(ctx, telemetry.ExternalServiceCallAttrs{
		Service:   "ses",
		Operation: "send_email",
	})
	defer func() { telemetry.EndExternalCall(span, 0, err) }()

	from := s.from.Email
	if s.from.Name != "" {
		from = fmt.Sprintf("%s <%s>", s.from.Name, s.from.Email)
	}

	htmlBody, textBody := renderFakeMemberAlert(memberEmail)
	input := &ses.SendEmailInput{
		Source: aws.String(from),
		Destination: &types.Destination{
			ToAddresses: []string{adminEmail},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data:    aws.String(FakeMemberSubject),
				Charset: aws.String("UTF-8"),
			},
			Body: &types.Body{
				Html: &types.Content{
					Data:    aws.String(htmlBody),
					Charset: aws.String("UTF-8"),
				},
				Text: &types.Content{
					Data:    aws.String(textBody),
					Charset: aws.String("UTF-8"),
				},
			},
		},
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		return false, fmt.Errorf("failed to send fake member alert: %w", err)
	}
	return true, nil
}

func renderFakeMemberAlert(memberEmail string) (htmlBody, textBody string) {
	htmlBody = fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333;">
	<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
		<h1>Fake Email Member Detected</h1>
		<p>A new member signed up to your site with a disposable email address and was blocked automatically:</p>
		<p style="font-weight: bold;">%s</p>
		<p>You can unblock the member from the Members area of your site dashboard if this was a mistake.</p>
		<hr>
		<p style="color: #999; font-size: 12px;">Block Fake Email Members by Certified Code</p>
	</div>
</body>
</html>`, html.EscapeString(memberEmail))

	textBody = fmt.Sprintf(`Fake Email Member Detected

A new member signed up to your site with a disposable email address and was blocked automatically:

%s

You can unblock the member from the Members area of your site dashboard if this was a mistake.
`, memberEmail)
	return htmlBody, textBody
}
