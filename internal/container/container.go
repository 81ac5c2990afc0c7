// Package container holds the wired services of the memberguard server and
// manages their shutdown.
package container

import (
	"context"
	"errors"
	"sync"

	"github.com/certifiedcode/memberguard/internal/alerts"
	"github.com/certifiedcode/memberguard/internal/cache"
	"github.com/certifiedcode/memberguard/internal/config"
	"github.com/certifiedcode/memberguard/internal/guard"
	"github.com/certifiedcode/memberguard/internal/logger"
	"github.com/certifiedcode/memberguard/internal/moderation"
	"github.com/certifiedcode/memberguard/internal/repository"
	"github.com/certifiedcode/memberguard/internal/toggles"
	"github.com/certifiedcode/memberguard/internal/wix"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Container holds all application dependencies and provides type-safe access.
type Container struct {
	cfg *config.Config

	// Core infrastructure
	db     *gorm.DB
	logger *zap.Logger
	cache  *cache.RedisClient

	// Wix
	platform wix.Platform
	webhooks guard.WebhookParser

	// Features
	toggles   *toggles.Store
	emails    guard.EmailChecker
	alerts    alerts.Sender
	moderator moderation.Moderator
	activity  repository.ActivityRepository
	guard     *guard.Guard

	// Lifecycle hooks
	cleanupFuncs []func(context.Context) error
	mu           sync.RWMutex
}

// New creates a new empty container.
// Services should be registered using Set* methods.
func New(cfg *config.Config) *Container {
	return &Container{
		cfg:          cfg,
		cleanupFuncs: make([]func(context.Context) error, 0),
	}
}

// Config returns the configuration the container was built from
func (c *Container) Config() *config.Config {
	return c.cfg
}

// SetDB registers the activity log database
func (c *Container) SetDB(db *gorm.DB) *Container {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.db = db
	return c
}

// DB returns the activity log database, nil when it is unavailable
func (c *Container) DB() *gorm.DB {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.db
}

func (c *Container) SetLogger(l *zap.Logger) *Container {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logger = l
	return c
}

// Logger returns the logger instance
func (c *Container) Logger() *zap.Logger {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.logger == nil {
		return logger.Log
	}
	return c.logger
}

// SetCache registers the Redis client
func (c *Container) SetCache(client *cache.RedisClient) *Container {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = client
	return c
}

func (c *Container) Cache() *cache.RedisClient {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cache
}

// SetPlatform registers the Wix platform client
func (c *Container) SetPlatform(p wix.Platform) *Container {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.platform = p
	return c
}

func (c *Container) Platform() wix.Platform {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.platform
}

// SetWebhookParser registers the webhook signature verifier
func (c *Container) SetWebhookParser(p guard.WebhookParser) *Container {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.webhooks = p
	return c
}

func (c *Container) WebhookParser() guard.WebhookParser {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.webhooks
}

func (c *Container) SetToggles(store *toggles.Store) *Container {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.toggles = store
	return c
}

// Toggles returns the per-site feature flag store
func (c *Container) Toggles() *toggles.Store {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.toggles
}

func (c *Container) SetEmailChecker(checker guard.EmailChecker) *Container {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.emails = checker
	return c
}

func (c *Container) EmailChecker() guard.EmailChecker {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.emails
}

// SetAlertSender registers the fake member alert provider
func (c *Container) SetAlertSender(sender alerts.Sender) *Container {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.alerts = sender
	return c
}

// AlertSender returns the alert provider, dropping alerts when none is set
func (c *Container) AlertSender() alerts.Sender {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.alerts == nil {
		return alerts.Noop{}
	}
	return c.alerts
}

func (c *Container) SetModerator(m moderation.Moderator) *Container {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.moderator = m
	return c
}

func (c *Container) Moderator() moderation.Moderator {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.moderator
}

// SetActivityRepository registers the activity log
func (c *Container) SetActivityRepository(repo repository.ActivityRepository) *Container {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.activity = repo
	return c
}

func (c *Container) ActivityRepository() repository.ActivityRepository {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.activity
}

// Guard returns the webhook pipelines, built on first use from the
// registered services.
func (c *Container) Guard() *guard.Guard {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.guard != nil {
		return c.guard
	}

	deps := guard.Deps{
		Platform:  c.platform,
		Webhooks:  c.webhooks,
		Toggles:   c.toggles,
		Emails:    c.emails,
		Alerts:    c.alerts,
		Moderator: c.moderator,
	}
	if c.activity != nil {
		deps.Activity = c.activity
	}
	if c.cfg != nil {
		deps.FallbackAlertEmail = c.cfg.Alerts.FallbackEmail
	}
	c.guard = guard.New(deps)
	return c.guard
}

// OnCleanup registers a cleanup function to be called during shutdown.
// Cleanup functions are called in LIFO order (last registered, first cleaned up).
func (c *Container) OnCleanup(fn func(context.Context) error) *Container {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cleanupFuncs = append(c.cleanupFuncs, fn)
	return c
}

// Cleanup performs graceful shutdown of all registered services. Hooks run
// once, newest first, and every failure is reported in the returned error.
func (c *Container) Cleanup(ctx context.Context) error {
	c.mu.Lock()
	funcs := c.cleanupFuncs
	c.cleanupFuncs = nil
	c.mu.Unlock()

	var errs []error
	for i := len(funcs) - 1; i >= 0; i-- {
		if err := funcs[i](ctx); err != nil {
			// keep going, later hooks may still release resources
			c.Logger().Error("Cleanup function failed", zap.Int("index", i), zap.Error(err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Validate checks that all required dependencies are registered.
// This should be called after initialization and before starting the server.
func (c *Container) Validate() error {
	c.mu.RLock()
	missingDeps := []string{}
	if c.platform == nil {
		missingDeps = append(missingDeps, "Wix platform client")
	}
	if c.webhooks == nil {
		missingDeps = append(missingDeps, "webhook parser")
	}
	if c.toggles == nil {
		missingDeps = append(missingDeps, "toggle store")
	}
	if c.emails == nil {
		missingDeps = append(missingDeps, "email checker")
	}
	noActivity := c.activity == nil
	noModerator := c.moderator == nil
	c.mu.RUnlock()

	if len(missingDeps) > 0 {
		return &InitializationError{MissingDeps: missingDeps}
	}

	// Optional but warn if missing
	if noActivity {
		c.Logger().Warn("Activity log disabled: no database")
	}
	if noModerator {
		c.Logger().Warn("Message moderation disabled: no moderator")
	}
	return nil
}
