package api

import (
	"github.com/certifiedcode/memberguard/cli/pkg/client"
	"github.com/certifiedcode/memberguard/cli/pkg/logger"
)

// Feature names accepted by the toggle endpoints
var Features = []string{"gravatar", "fake-email-block", "message-moderation"}

type toggleState struct {
	IsEnabled bool `json:"isEnabled"`
}

// GetToggle reads a feature switch for the configured site
func GetToggle(feature string) (bool, error) {
	logger.Debug("Fetching toggle", "feature", feature)

	var state toggleState
	resp, err := client.Site().
		SetQueryParam("feature", feature).
		SetResult(&state).
		Get("/api/toggle-state")
	if err := CheckResponse(resp, err); err != nil {
		return false, err
	}
	return state.IsEnabled, nil
}

// SetToggle flips a feature switch and returns the stored value
func SetToggle(feature string, enabled bool) (bool, error) {
	logger.Debug("Updating toggle", "feature", feature, "enabled", enabled)

	var state toggleState
	resp, err := client.Site().
		SetQueryParam("feature", feature).
		SetBody(map[string]bool{"isEnabled": enabled}).
		SetResult(&state).
		Post("/api/toggle-state")
	if err := CheckResponse(resp, err); err != nil {
		return false, err
	}
	return state.IsEnabled, nil
}
