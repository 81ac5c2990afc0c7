package container

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/certifiedcode/memberguard/internal/config"
	"github.com/certifiedcode/memberguard/internal/wix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopParser struct{}

func (nopParser) ParseWebhook([]byte) (*wix.Event, error) { return &wix.Event{}, nil }

func TestValidateReportsMissingDeps(t *testing.T) {
	err := New(&config.Config{}).Validate()
	require.Error(t, err)

	var initErr *InitializationError
	require.True(t, errors.As(err, &initErr))
	assert.ElementsMatch(t, []string{"Wix platform client", "webhook parser", "toggle store", "email checker"}, initErr.MissingDeps)
}

func TestMockContainerValidates(t *testing.T) {
	mr := miniredis.RunT(t)
	m := NewMock(mr.Addr(), "http://127.0.0.1:1").WithWebhookParser(nopParser{})

	require.NoError(t, m.Validate())
	g := m.Guard()
	assert.NotNil(t, g)
	assert.Same(t, g, m.Guard())
}

func TestCleanupRunsInReverseOrder(t *testing.T) {
	c := New(nil)
	var order []int
	c.OnCleanup(func(context.Context) error { order = append(order, 1); return nil })
	c.OnCleanup(func(context.Context) error { order = append(order, 2); return errors.New("ignored") })
	c.OnCleanup(func(context.Context) error { order = append(order, 3); return nil })

	assert.EqualError(t, c.Cleanup(context.Background()), "ignored")
	assert.Equal(t, []int{3, 2, 1}, order)

	require.NoError(t, c.Cleanup(context.Background()))
	assert.Len(t, order, 3, "hooks run once")
}

func TestBuildWithoutRedisFails(t *testing.T) {
	cfg := &config.Config{Environment: "test"}
	cfg.Redis.Host = "127.0.0.1"
	cfg.Redis.Port = "1"

	_, err := Build(context.Background(), cfg)
	require.Error(t, err)

	var initErr *InitializationError
	require.True(t, errors.As(err, &initErr))
	assert.Equal(t, "redis", initErr.Component)
	assert.NotNil(t, errors.Unwrap(err))
}

func TestBuildWiresServices(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := &config.Config{Environment: "test"}
	cfg.Redis.Host = mr.Host()
	cfg.Redis.Port = mr.Port()
	cfg.Database.SQLitePath = filepath.Join(t.TempDir(), "activity.db")
	cfg.Wix.AppID = "app"
	cfg.Wix.AppSecret = "secret"
	cfg.Alerts.Provider = "none"
	cfg.Moderation.Provider = "keywords"

	c, err := Build(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Cleanup(context.Background()) })

	assert.NotNil(t, c.Cache())
	assert.NotNil(t, c.DB())
	assert.NotNil(t, c.ActivityRepository())
	assert.NotNil(t, c.Moderator())
	assert.NotNil(t, c.Guard())
	assert.Same(t, c.Platform(), c.Platform())
}

func TestBuildRejectsMissingWixCredentials(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := &config.Config{Environment: "test"}
	cfg.Redis.Host = mr.Host()
	cfg.Redis.Port = mr.Port()
	cfg.Database.SQLitePath = filepath.Join(t.TempDir(), "activity.db")

	_, err := Build(context.Background(), cfg)

	var initErr *InitializationError
	require.True(t, errors.As(err, &initErr))
	assert.Equal(t, "wix client", initErr.Component)
}

func TestBuildModeratorFallsBackToKeywords(t *testing.T) {
	m, err := buildModerator(context.Background(), config.ModerationConfig{Provider: "openai"})
	require.NoError(t, err)

	v, err := m.Moderate(context.Background(), "send the gift card codes")
	require.NoError(t, err)
	assert.True(t, v.Flagged)

	_, err = buildModerator(context.Background(), config.ModerationConfig{Provider: "keywords", KeywordsFile: "/does/not/exist.yaml"})
	assert.Error(t, err)
}

func TestBuildAlertSender(t *testing.T) {
	_, err := buildAlertSender(config.AlertConfig{Provider: "sendpulse"})
	assert.Error(t, err, "credentials are required")

	s, err := buildAlertSender(config.AlertConfig{Provider: "none"})
	require.NoError(t, err)
	sent, err := s.SendFakeMemberAlert(context.Background(), "a@b.c", "o@b.c")
	require.NoError(t, err)
	assert.False(t, sent)
}
