package api

import (
	"strings"

	"github.com/certifiedcode/memberguard/cli/pkg/client"
	"github.com/certifiedcode/memberguard/cli/pkg/logger"
)

// EmailCheck is the disposable-domain verdict for an email or domain
type EmailCheck struct {
	IsFake bool   `json:"isFake"`
	Domain string `json:"domain"`
	Email  string `json:"email,omitempty"`
	Error  string `json:"error,omitempty"`
}

// CheckEmail classifies an email address, or a bare domain when it has no @
func CheckEmail(emailOrDomain string) (*EmailCheck, error) {
	logger.Debug("Checking email", "value", emailOrDomain)

	param := "domain"
	if strings.Contains(emailOrDomain, "@") {
		param = "email"
	}

	var out EmailCheck
	resp, err := client.GetClient().R().
		SetQueryParam(param, emailOrDomain).
		SetResult(&out).
		Get("/api/check-email")
	if err := CheckResponse(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}
