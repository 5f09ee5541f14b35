// Package token holds the anti-abuse token settings and the contract for the
// external challenge provider that issues tokens.
package token

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

const (
	// SupportedVersion is the only challenge version tokens are requested for.
	SupportedVersion = "v3"
	// FieldName is the payload field the token is attached as.
	FieldName = "recaptcha_token"
	// Action is the action name passed to the provider.
	Action = "submit"
)

// ErrUnavailable signals that no provider could issue a token.
var ErrUnavailable = errors.New("token: provider unavailable")

// Config carries the challenge settings.
type Config struct {
	Version string `yaml:"version" json:"version"`
	SiteKey string `yaml:"site_key" json:"site_key"`
}

// Normalize applies the version rules: numeric versions gain a "v" prefix,
// anything else is lowercased; an empty version defaults to v3. Unsupported
// versions and a missing site key are logged as warnings, never rejected.
func Normalize(cfg Config, logger *zap.Logger) Config {
	if logger == nil {
		logger = zap.NewNop()
	}

	version := strings.TrimSpace(cfg.Version)
	switch {
	case version == "":
		version = SupportedVersion
	case isNumeric(version):
		version = "v" + version
	default:
		version = strings.ToLower(version)
	}
	cfg.Version = version
	cfg.SiteKey = strings.TrimSpace(cfg.SiteKey)

	if cfg.Version != SupportedVersion {
		logger.Warn("only reCAPTCHA v3 is supported at this time", zap.String("version", cfg.Version))
	}
	if cfg.SiteKey == "" {
		logger.Warn("reCAPTCHA siteKey must be set")
	}
	return cfg
}

func isNumeric(s string) bool {
	n, err := strconv.Atoi(s)
	return err == nil && n != 0
}

// Provider issues tokens for a site key and action. Implementations may block
// until the challenge service is ready and must honour ctx.
type Provider interface {
	Token(ctx context.Context, siteKey, action string) (string, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, siteKey, action string) (string, error)

// Token implements Provider.
func (fn ProviderFunc) Token(ctx context.Context, siteKey, action string) (string, error) {
	return fn(ctx, siteKey, action)
}

// Static returns a provider that always yields value, useful for scripted
// runs against backends that accept a fixed test token.
func Static(value string) Provider {
	return ProviderFunc(func(ctx context.Context, _, _ string) (string, error) {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if value == "" {
			return "", ErrUnavailable
		}
		return value, nil
	})
}
