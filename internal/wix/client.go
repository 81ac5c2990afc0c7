// Package wix is a small REST client for the Wix platform APIs the guard uses:
// OAuth app tokens, Members, Media, Inbox, App Instance, and signed webhooks.
package wix

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/certifiedcode/memberguard/internal/telemetry"
	"github.com/go-resty/resty/v2"
	"github.com/golang-jwt/jwt/v5"
)

const DefaultBaseURL = "https://www.wixapis.com"

// Config identifies the app towards Wix
type Config struct {
	AppID     string
	AppSecret string
	// PublicKey is the PEM encoded RSA key webhooks are signed with
	PublicKey string
	BaseURL   string
	Timeout   time.Duration

	// MaxTokenSources caps the per-site token cache. Zero means DefaultMaxTokenSources.
	MaxTokenSources int
}

// DefaultMaxTokenSources bounds how many sites keep a cached app token
const DefaultMaxTokenSources = 1000

// InstanceAPI is everything the guard can do on behalf of one installed site
type InstanceAPI interface {
	GetMember(ctx context.Context, memberID string) (*Member, error)
	ListMembers(ctx context.Context, limit, offset int) ([]Member, error)
	ListAllMembers(ctx context.Context) ([]Member, error)
	UpdateMemberPhoto(ctx context.Context, memberID string, photo Photo) (*Member, error)
	BlockMember(ctx context.Context, memberID string) error
	ImportImage(ctx context.Context, url string) (*ImportedFile, error)
	SendMessage(ctx context.Context, conversationID, text string) error
	GetAppInstance(ctx context.Context) (*AppInstance, error)
}

// Platform is the app-level surface: who is calling, and a client per site
type Platform interface {
	ResolveInstance(ctx context.Context, token string) (string, error)
	ForInstance(instanceID string) InstanceAPI
}

// APIError is a non-2xx answer from a Wix endpoint
type APIError struct {
	Op      string
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("wix %s: %d %s", e.Op, e.Status, e.Message)
	}
	return fmt.Sprintf("wix %s: status %d", e.Op, e.Status)
}

type errorBody struct {
	Message string `json:"message"`
	Details struct {
		ApplicationError struct {
			Description string `json:"description"`
			Code        string `json:"code"`
		} `json:"applicationError"`
	} `json:"details"`
}

func (b *errorBody) text() string {
	if b == nil {
		return ""
	}
	if b.Message != "" {
		return b.Message
	}
	return b.Details.ApplicationError.Description
}

// Client talks to Wix as the app
type Client struct {
	cfg       Config
	http      *resty.Client
	publicKey *rsa.PublicKey

	mu      sync.Mutex
	sources map[string]*cachedSource
}

var _ Platform = (*Client)(nil)

// NewClient validates cfg and parses the webhook public key
func NewClient(cfg Config) (*Client, error) {
	if cfg.AppID == "" || cfg.AppSecret == "" {
		return nil, errors.New("wix: app id and secret are required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.MaxTokenSources <= 0 {
		cfg.MaxTokenSources = DefaultMaxTokenSources
	}

	c := &Client{
		cfg: cfg,
		http: telemetry.NewRestyClient(telemetry.HTTPClientConfig{
			ServiceName: "wix",
			BaseURL:     strings.TrimRight(cfg.BaseURL, "/"),
			Timeout:     cfg.Timeout,
		}),
		sources: make(map[string]*cachedSource),
	}

	if cfg.PublicKey != "" {
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(normalizePEM(cfg.PublicKey)))
		if err != nil {
			return nil, fmt.Errorf("wix: parse public key: %w", err)
		}
		c.publicKey = key
	}
	return c, nil
}

// normalizePEM restores newlines in keys passed through single-line env vars
func normalizePEM(pem string) string {
	return strings.ReplaceAll(strings.TrimSpace(pem), `\n`, "\n")
}

// ForInstance returns a client acting with an app token for instanceID
func (c *Client) ForInstance(instanceID string) InstanceAPI {
	return &instanceClient{
		app:        c,
		instanceID: instanceID,
		tokens:     c.tokenSource(instanceID),
	}
}

func checkResponse(op string, resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("wix %s: %w", op, err)
	}
	if resp.IsError() {
		apiErr := &APIError{Op: op, Status: resp.StatusCode()}
		if body, ok := resp.Error().(*errorBody); ok {
			apiErr.Message = body.text()
		}
		return apiErr
	}
	return nil
}
