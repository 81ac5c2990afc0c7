package container

import (
	"github.com/certifiedcode/memberguard/internal/cache"
	"github.com/certifiedcode/memberguard/internal/config"
	"github.com/certifiedcode/memberguard/internal/emailcheck"
	"github.com/certifiedcode/memberguard/internal/guard"
	"github.com/certifiedcode/memberguard/internal/toggles"
	"github.com/certifiedcode/memberguard/internal/wix"
	"github.com/redis/go-redis/v9"
)

// MockContainer is a container designed for testing. It is pre-populated
// with the Wix mock and a Redis client at redisAddr (miniredis in tests).
type MockContainer struct {
	*Container
	Instance *wix.MockInstance
	Wix      *wix.MockPlatform
}

// NewMock creates a mock container. emailCheckURL points the disposable
// email lookup at a test server.
func NewMock(redisAddr, emailCheckURL string) *MockContainer {
	rc := cache.NewFromClient(redis.NewClient(&redis.Options{Addr: redisAddr}))
	instance := &wix.MockInstance{}
	platform := &wix.MockPlatform{Instance: instance}

	c := New(&config.Config{Environment: "test"})
	c.SetCache(rc).
		SetToggles(toggles.NewStore(rc)).
		SetEmailChecker(emailcheck.NewChecker(emailCheckURL, rc)).
		SetPlatform(platform)

	return &MockContainer{Container: c, Instance: instance, Wix: platform}
}

// WithWebhookParser sets the webhook verifier, usually a real wix.Client
// built around a test key pair
func (m *MockContainer) WithWebhookParser(p guard.WebhookParser) *MockContainer {
	m.SetWebhookParser(p)
	return m
}
