package api

import (
	"errors"

	"github.com/certifiedcode/memberguard/cli/pkg/client"
	"github.com/certifiedcode/memberguard/cli/pkg/logger"
)

type alertResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// SendTestAlert sends a fake member alert for memberEmail to adminEmail.
// An empty adminEmail lets the server pick its fallback recipient.
func SendTestAlert(memberEmail, adminEmail string) (string, error) {
	logger.Debug("Sending test alert", "member_email", memberEmail, "admin_email", adminEmail)

	var out alertResponse
	resp, err := client.GetClient().R().
		SetBody(map[string]string{"memberEmail": memberEmail, "adminEmail": adminEmail}).
		SetResult(&out).
		SetError(&out).
		Post("/api/sendpulse-email")
	if err != nil {
		return "", err
	}
	if resp.IsSuccess() && out.Success {
		return out.Message, nil
	}
	if out.Message != "" {
		return "", errors.New(out.Message)
	}
	return "", ParseError(resp)
}
