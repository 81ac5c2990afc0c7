// Package toggles stores the per-site on/off switches for each guard feature.
package toggles

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/certifiedcode/memberguard/internal/cache"
	"github.com/certifiedcode/memberguard/internal/logger"
	"go.uber.org/zap"
)

// Feature names a switchable behaviour
type Feature string

const (
	Gravatar          Feature = "gravatar"
	FakeEmailBlock    Feature = "fake-email-block"
	MessageModeration Feature = "message-moderation"
)

// ErrUnknownFeature is returned for feature names without a key prefix
var ErrUnknownFeature = errors.New("unknown feature")

// Key prefixes are shared with the dashboard and must not change.
var prefixes = map[Feature]string{
	Gravatar:          "gravatar-auto-populate-toggle:",
	FakeEmailBlock:    "block-fake-email-toggle:",
	MessageModeration: "message-moderation-toggle:",
}

// KV is the subset of the Redis client the store needs
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}) error
}

// Store reads and writes toggle flags
type Store struct {
	kv KV
}

// NewStore creates a toggle store over kv
func NewStore(kv KV) *Store {
	return &Store{kv: kv}
}

// ParseFeature maps a request value to a Feature. Empty means Gravatar.
func ParseFeature(name string) (Feature, error) {
	if name == "" {
		return Gravatar, nil
	}
	f := Feature(name)
	if _, ok := prefixes[f]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownFeature, name)
	}
	return f, nil
}

// Features lists every known feature
func Features() []Feature {
	return []Feature{Gravatar, FakeEmailBlock, MessageModeration}
}

// Key returns the storage key for a feature on one site
func Key(feature Feature, instanceID string) (string, error) {
	prefix, ok := prefixes[feature]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownFeature, feature)
	}
	return prefix + instanceID, nil
}

// Enabled reports whether the flag is stored as exactly "true"
func (s *Store) Enabled(ctx context.Context, feature Feature, instanceID string) (bool, error) {
	key, err := Key(feature, instanceID)
	if err != nil {
		return false, err
	}
	val, err := s.kv.Get(ctx, key)
	if errors.Is(err, cache.ErrMiss) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read toggle %s: %w", key, err)
	}
	return val == "true", nil
}

// Set persists the flag as "true" or "false"
func (s *Store) Set(ctx context.Context, feature Feature, instanceID string, enabled bool) error {
	key, err := Key(feature, instanceID)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, key, strconv.FormatBool(enabled)); err != nil {
		return fmt.Errorf("write toggle %s: %w", key, err)
	}
	return nil
}

// EnabledOrFalse is Enabled for webhook paths: a store failure counts as disabled
func (s *Store) EnabledOrFalse(ctx context.Context, feature Feature, instanceID string) bool {
	enabled, err := s.Enabled(ctx, feature, instanceID)
	if err != nil {
		logger.Log.Warn("Toggle lookup failed, treating as disabled",
			logger.WithInstanceID(instanceID),
			zap.String("feature", string(feature)),
			zap.Error(err),
		)
		return false
	}
	return enabled
}
