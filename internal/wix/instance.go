package wix

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"

	"github.com/certifiedcode/memberguard/internal/logger"
	"go.uber.org/zap"
)

// ErrMissingInstance means neither token-info nor the signed instance produced a site
var ErrMissingInstance = errors.New("Missing required instance context: provide Authorization header or instance query param")

type tokenInfoResponse struct {
	Active     bool   `json:"active"`
	InstanceID string `json:"instanceId"`
	SiteID     string `json:"siteId"`
	ClientID   string `json:"clientId"`
}

// ResolveInstance maps a dashboard access token or signed instance to its instance ID
func (c *Client) ResolveInstance(ctx context.Context, token string) (string, error) {
	token = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(token), "Bearer "))
	if token == "" {
		return "", ErrMissingInstance
	}

	var info tokenInfoResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"token": token}).
		SetResult(&info).
		SetError(&errorBody{}).
		Post("/oauth2/token-info")
	if err := checkResponse("token info", resp, err); err != nil {
		logger.Log.Debug("Token info lookup failed, trying signed instance", zap.Error(err))
	} else if info.InstanceID != "" {
		return info.InstanceID, nil
	}

	if id, err := c.verifySignedInstance(token); err == nil && id != "" {
		return id, nil
	}
	return "", ErrMissingInstance
}

type signedInstance struct {
	InstanceID string `json:"instanceId"`
	AppDefID   string `json:"appDefId"`
	SignDate   string `json:"signDate"`
	UID        string `json:"uid"`
}

var errBadSignature = errors.New("signed instance: bad signature")

// verifySignedInstance checks the legacy "<sig>.<payload>" instance parameter,
// where sig is base64url(HMAC-SHA256(appSecret, payload)).
func (c *Client) verifySignedInstance(token string) (string, error) {
	sigPart, payloadPart, ok := strings.Cut(token, ".")
	if !ok || sigPart == "" || payloadPart == "" {
		return "", errBadSignature
	}

	sig, err := decodeSegment(sigPart)
	if err != nil {
		return "", errBadSignature
	}
	mac := hmac.New(sha256.New, []byte(c.cfg.AppSecret))
	mac.Write([]byte(payloadPart))
	if !hmac.Equal(sig, mac.Sum(nil)) {
		return "", errBadSignature
	}

	raw, err := decodeSegment(payloadPart)
	if err != nil {
		return "", err
	}
	var inst signedInstance
	if err := json.Unmarshal(raw, &inst); err != nil {
		return "", err
	}
	return inst.InstanceID, nil
}

func decodeSegment(s string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(strings.TrimRight(s, "="))
}

// SignInstance produces a signed instance for instanceID. Used by tests and the CLI's dev mode.
func SignInstance(secret, instanceID string) string {
	payload, _ := json.Marshal(signedInstance{InstanceID: instanceID})
	payloadPart := base64.RawURLEncoding.EncodeToString(payload)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payloadPart))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil)) + "." + payloadPart
}
