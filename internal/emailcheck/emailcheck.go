// Package emailcheck asks isfakemail.com whether an email domain is disposable.
// Lookups fail open: any error yields a "not fake" verdict carrying the error text.
package emailcheck

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/certifiedcode/memberguard/internal/cache"
	"github.com/certifiedcode/memberguard/internal/logger"
	"github.com/certifiedcode/memberguard/internal/metrics"
	"github.com/certifiedcode/memberguard/internal/telemetry"
	"github.com/go-resty/resty/v2"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

var codec = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	DefaultBaseURL = "https://isfakemail.com"
	// VerdictTTL matches the Cache-Control max-age of the check-email endpoint
	VerdictTTL = 5 * time.Minute
)

// Result is the verdict for one email or domain
type Result struct {
	IsFake bool   `json:"isFake"`
	Domain string `json:"domain"`
	Email  string `json:"email,omitempty"`
	Error  string `json:"error,omitempty"`
}

type checkResponse struct {
	Domain           string   `json:"domain"`
	IsDisposable     bool     `json:"isDisposable"`
	IsPublicProvider bool     `json:"isPublicProvider"`
	MX               []string `json:"mx"`
	Source           string   `json:"source"`
}

// VerdictCache stores "true"/"false" per domain. Get must return cache.ErrMiss on a miss.
type VerdictCache interface {
	Get(ctx context.Context, key string) (string, error)
	SetEx(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// Checker performs domain reputation lookups
type Checker struct {
	http  *resty.Client
	cache VerdictCache
}

// NewChecker creates a checker. verdicts may be nil to disable caching.
func NewChecker(baseURL string, verdicts VerdictCache) *Checker {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Checker{
		http: telemetry.NewRestyClient(telemetry.HTTPClientConfig{
			ServiceName: "isfakemail",
			BaseURL:     strings.TrimRight(baseURL, "/"),
			Timeout:     10 * time.Second,
		}),
		cache: verdicts,
	}
}

// DomainOf returns the part after the first "@", or the input when there is none
func DomainOf(emailOrDomain string) string {
	parts := strings.Split(emailOrDomain, "@")
	if len(parts) > 1 {
		return parts[1]
	}
	return emailOrDomain
}

func cacheKey(domain string) string {
	return "emailcheck:" + strings.ToLower(domain)
}

// Check classifies emailOrDomain. It never returns IsFake on failure.
func (c *Checker) Check(ctx context.Context, emailOrDomain string) Result {
	emailOrDomain = strings.TrimSpace(emailOrDomain)
	domain := DomainOf(emailOrDomain)
	if domain == "" {
		return Result{Domain: emailOrDomain, Error: "Invalid email or domain format"}
	}

	email := ""
	if strings.Contains(emailOrDomain, "@") {
		email = emailOrDomain
	}

	if fake, ok := c.cached(ctx, domain); ok {
		return Result{IsFake: fake, Domain: domain, Email: email}
	}

	ctx, span := telemetry.TraceExternalCall(ctx, telemetry.ExternalServiceCallAttrs{
		Service:    "isfakemail",
		Operation:  "check",
		ResourceID: domain,
	})

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("url", domain).
		Get("/api/check")
	if err != nil {
		telemetry.EndExternalCall(span, 0, err)
		logger.Log.Warn("isfakemail lookup failed", zap.String("domain", domain), zap.Error(err))
		return Result{Domain: emailOrDomain, Error: err.Error()}
	}
	if !resp.IsSuccess() {
		err := fmt.Errorf("API request failed: %d", resp.StatusCode())
		telemetry.EndExternalCall(span, resp.StatusCode(), err)
		logger.Log.Warn("isfakemail returned error status",
			zap.String("domain", domain),
			logger.WithStatus(resp.StatusCode()),
		)
		return Result{Domain: domain, Error: err.Error()}
	}

	// isfakemail does not always label its JSON, so the body is decoded
	// regardless of Content-Type
	var out checkResponse
	if err := codec.Unmarshal(resp.Body(), &out); err != nil {
		err = fmt.Errorf("decode isfakemail response: %w", err)
		telemetry.EndExternalCall(span, resp.StatusCode(), err)
		logger.Log.Warn("isfakemail returned an unreadable body",
			zap.String("domain", domain),
			zap.String("content_type", resp.Header().Get("Content-Type")),
			zap.Error(err),
		)
		return Result{Domain: emailOrDomain, Error: err.Error()}
	}
	telemetry.EndExternalCall(span, resp.StatusCode(), nil)

	c.store(ctx, domain, out.IsDisposable)
	return Result{IsFake: out.IsDisposable, Domain: domain, Email: email}
}

func (c *Checker) cached(ctx context.Context, domain string) (fake bool, ok bool) {
	if c.cache == nil {
		return false, false
	}
	val, err := c.cache.Get(ctx, cacheKey(domain))
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			logger.Log.Debug("Verdict cache read failed", zap.Error(err))
		}
		metrics.RecordEmailCheckCache(false)
		return false, false
	}
	metrics.RecordEmailCheckCache(true)
	return val == "true", true
}

func (c *Checker) store(ctx context.Context, domain string, fake bool) {
	if c.cache == nil {
		return
	}
	val := "false"
	if fake {
		val = "true"
	}
	if err := c.cache.SetEx(ctx, cacheKey(domain), val, VerdictTTL); err != nil {
		logger.Log.Debug("Verdict cache write failed", zap.Error(err))
	}
}
