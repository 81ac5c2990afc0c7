package api

import (
	"github.com/certifiedcode/memberguard/cli/pkg/client"
)

// Health is the readiness report of the server and its dependencies
type Health struct {
	Status       string            `json:"status"`
	Service      string            `json:"service"`
	Dependencies map[string]string `json:"dependencies"`
}

// GetHealth reads /health. A degraded server answers 503 with a full report,
// so the report is returned alongside the error.
func GetHealth() (*Health, error) {
	var out Health
	resp, err := client.GetClient().R().
		SetResult(&out).
		SetError(&out).
		Get("/health")
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return &out, &APIError{Code: "degraded", Message: "server reported " + out.Status, StatusCode: resp.StatusCode()}
	}
	return &out, nil
}
