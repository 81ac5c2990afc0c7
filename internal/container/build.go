package container

import (
	"context"
	"time"

	"github.com/certifiedcode/memberguard/internal/alerts"
	"github.com/certifiedcode/memberguard/internal/cache"
	"github.com/certifiedcode/memberguard/internal/config"
	"github.com/certifiedcode/memberguard/internal/database"
	"github.com/certifiedcode/memberguard/internal/emailcheck"
	"github.com/certifiedcode/memberguard/internal/logger"
	"github.com/certifiedcode/memberguard/internal/moderation"
	"github.com/certifiedcode/memberguard/internal/repository"
	"github.com/certifiedcode/memberguard/internal/telemetry"
	"github.com/certifiedcode/memberguard/internal/toggles"
	"github.com/certifiedcode/memberguard/internal/wix"
	"go.uber.org/zap"
)

// Build wires every service described by cfg. Redis and the Wix client are
// required; the database and optional providers degrade with a warning.
func Build(ctx context.Context, cfg *config.Config) (*Container, error) {
	c := New(cfg)
	log := c.Logger()

	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Config{
		ServiceName:  cfg.Telemetry.ServiceName,
		Environment:  cfg.Environment,
		OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
		Enabled:      cfg.Telemetry.Enabled,
		SamplingRate: cfg.Telemetry.SamplingRate,
		Secure:       cfg.Telemetry.Secure,
	})
	if err != nil {
		log.Warn("Tracing disabled", zap.Error(err))
	}
	c.OnCleanup(shutdownTracing)

	redisClient, err := cache.NewRedisClient(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password)
	if err != nil {
		_ = c.Cleanup(ctx)
		return nil, &InitializationError{Component: "redis", Err: err}
	}
	c.SetCache(redisClient).
		SetToggles(toggles.NewStore(redisClient)).
		SetEmailChecker(emailcheck.NewChecker(cfg.EmailCheck.BaseURL, redisClient)).
		OnCleanup(func(context.Context) error { return redisClient.Close() })

	if db, err := database.Open(cfg.Database, cfg.IsDevelopment()); err != nil {
		log.Warn("Activity log unavailable", zap.Error(err))
	} else if err := database.Migrate(db); err != nil {
		log.Warn("Activity log unavailable", zap.Error(err))
		_ = database.Close(db)
	} else {
		c.SetDB(db).
			SetActivityRepository(repository.NewActivityRepository(db)).
			OnCleanup(func(context.Context) error { return database.Close(db) })
	}

	wixClient, err := wix.NewClient(wix.Config{
		AppID:     cfg.Wix.AppID,
		AppSecret: cfg.Wix.AppSecret,
		PublicKey: cfg.Wix.PublicKey,
		BaseURL:   cfg.Wix.BaseURL,
		Timeout:   15 * time.Second,
	})
	if err != nil {
		_ = c.Cleanup(ctx)
		return nil, &InitializationError{Component: "wix client", Err: err}
	}
	c.SetPlatform(wixClient).SetWebhookParser(wixClient)

	sender, err := buildAlertSender(cfg.Alerts)
	if err != nil {
		log.Warn("Alert delivery disabled", zap.String("provider", cfg.Alerts.Provider), zap.Error(err))
		sender = alerts.Noop{}
	}
	c.SetAlertSender(alerts.Recorded(cfg.Alerts.Provider, sender))

	moderator, err := buildModerator(ctx, cfg.Moderation)
	if err != nil {
		log.Warn("Message moderation disabled", zap.Error(err))
	} else {
		c.SetModerator(moderator)
	}

	if err := c.Validate(); err != nil {
		_ = c.Cleanup(ctx)
		return nil, err
	}
	return c, nil
}

func buildAlertSender(cfg config.AlertConfig) (alerts.Sender, error) {
	from := alerts.From{Name: cfg.FromName, Email: cfg.FromEmail}
	switch cfg.Provider {
	case "sendpulse":
		return alerts.NewSendPulse(alerts.SendPulseConfig{
			BaseURL:      cfg.SendPulseBaseURL,
			ClientID:     cfg.SendPulseClientID,
			ClientSecret: cfg.SendPulseClientSecret,
			TemplateID:   cfg.SendPulseTemplateID,
			From:         from,
		})
	case "ses":
		return alerts.NewSES(cfg.AWSRegion, from)
	default:
		return alerts.Noop{}, nil
	}
}

// buildModerator always screens with the keyword list first, then with the
// configured API provider.
func buildModerator(ctx context.Context, cfg config.ModerationConfig) (moderation.Moderator, error) {
	keywords, err := moderation.LoadKeywords(cfg.KeywordsFile)
	if err != nil {
		return nil, err
	}

	var api moderation.Moderator
	switch cfg.Provider {
	case "openai":
		api, err = moderation.NewOpenAI(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel)
	case "gemini":
		api, err = moderation.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	}
	if err != nil {
		logger.Log.Warn("Moderation API unavailable, using keywords only",
			zap.String("provider", cfg.Provider),
			zap.Error(err),
		)
		return moderation.NewChain(keywords), nil
	}
	return moderation.NewChain(keywords, api), nil
}
