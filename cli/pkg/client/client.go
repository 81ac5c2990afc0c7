package client

import (
	"time"

	"github.com/certifiedcode/memberguard/cli/pkg/config"
	"github.com/certifiedcode/memberguard/cli/pkg/logger"
	"github.com/certifiedcode/memberguard/internal/wix"
	"github.com/go-resty/resty/v2"
)

// Version is stamped at release time with -ldflags "-X ...client.Version=x.y.z"
var Version = "0.1.0"

var httpClient *resty.Client

// Init initializes the HTTP client from the loaded configuration
func Init() {
	httpClient = resty.New()

	baseURL := config.GetString("api.base_url")
	timeout := time.Duration(config.GetInt("api.timeout")) * time.Second

	httpClient.SetBaseURL(baseURL)
	httpClient.SetTimeout(timeout)
	httpClient.SetHeader("User-Agent", "MemberGuard-CLI/"+Version)

	httpClient.OnBeforeRequest(func(c *resty.Client, req *resty.Request) error {
		logger.Debug("HTTP Request", "method", req.Method, "url", req.URL)
		return nil
	})

	httpClient.OnAfterResponse(func(c *resty.Client, resp *resty.Response) error {
		logger.Debug("HTTP Response", "status", resp.StatusCode(), "duration", resp.Time())
		return nil
	})
}

// GetClient returns the HTTP client
func GetClient() *resty.Client {
	if httpClient == nil {
		Init()
	}
	return httpClient
}

// Reset drops the client so the next GetClient picks up changed configuration
func Reset() {
	httpClient = nil
}

// InstanceToken returns the credential identifying the site to the dashboard
// API. instance.token wins; otherwise, when instance.id and instance.dev_secret
// are configured, a signed instance is minted locally for development servers.
func InstanceToken() string {
	if token := config.GetString("instance.token"); token != "" {
		return token
	}
	id := config.GetString("instance.id")
	secret := config.GetString("instance.dev_secret")
	if id != "" && secret != "" {
		return wix.SignInstance(secret, id)
	}
	return ""
}

// Site returns a request scoped to the configured site
func Site() *resty.Request {
	req := GetClient().R()
	if token := InstanceToken(); token != "" {
		req.SetQueryParam("instance", token)
	}
	return req
}
