// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package config

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

func TestIsLocalhost(t *testing.T) {
	tests := []struct {
		host     string
		expected bool
	}{
		{"", true},
		{"localhost", true},
		{"127.0.0.1", true},
		{"::1", true},
		{"app.localhost", true},
		{"example.com", false},
		{"192.168.1.1", false},
		{"localhost.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsLocalhost(tt.host))
		})
	}
}

func TestShouldUseTLS(t *testing.T) {
	tests := []struct {
		name     string
		mode     string
		host     string
		expected bool
	}{
		{"off mode", "off", "example.com", false},
		{"acme mode", "acme", "localhost", true},
		{"manual mode", "manual", "localhost", true},
		{"auto mode with localhost", "auto", "localhost", false},
		{"auto mode with remote host", "auto", "example.com", true},
		{"empty mode with remote host", "", "example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, shouldUseTLS(tt.mode, tt.host))
		})
	}
}

func TestBuildBaseURL(t *testing.T) {
	tests := []struct {
		name     string
		cfg      *Config
		expected string
	}{
		{
			name: "localhost HTTP default port",
			cfg: &Config{
				Server: ServerConfig{Host: "localhost", Port: 80},
				TLS:    TLSConfig{Mode: "off"},
			},
			expected: "http://localhost",
		},
		{
			name: "localhost HTTP custom port",
			cfg: &Config{
				Server: ServerConfig{Host: "localhost", Port: 8080},
				TLS:    TLSConfig{Mode: "auto"},
			},
			expected: "http://localhost:8080",
		},
		{
			name: "remote host with auto TLS",
			cfg: &Config{
				Server: ServerConfig{Host: "example.com", Port: 443},
				TLS:    TLSConfig{Mode: "auto"},
			},
			expected: "https://example.com",
		},
		{
			name: "manual TLS custom port",
			cfg: &Config{
				Server: ServerConfig{Host: "example.com", Port: 8443},
				TLS:    TLSConfig{Mode: "manual"},
			},
			expected: "https://example.com:8443",
		},
		{
			name: "ACME mode forces port 443",
			cfg: &Config{
				Server: ServerConfig{Host: "example.com", Port: 8080},
				TLS:    TLSConfig{Mode: "acme"},
			},
			expected: "https://example.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, buildBaseURL(tt.cfg))
		})
	}
}

func TestApplyAuthDefaults(t *testing.T) {
	t.Run("derives activation URL from base URL", func(t *testing.T) {
		cfg := &Config{Server: ServerConfig{BaseURL: "https://example.com/"}}

		applyAuthDefaults(cfg)

		assert.Equal(t, "https://example.com/activate.html", cfg.Auth.ActivationURL)
		assert.Equal(t, "session_token", cfg.Auth.SessionCookieName)
	})

	t.Run("keeps explicit values", func(t *testing.T) {
		cfg := &Config{
			Server: ServerConfig{BaseURL: "https://example.com"},
			Auth: AuthConfig{
				ActivationURL:     "https://accounts.example.com/activate",
				SessionCookieName: "sid",
			},
		}

		applyAuthDefaults(cfg)

		assert.Equal(t, "https://accounts.example.com/activate", cfg.Auth.ActivationURL)
		assert.Equal(t, "sid", cfg.Auth.SessionCookieName)
	})
}

func validConfig() *Config {
	return &Config{
		Auth: AuthConfig{
			SessionDuration:  3 * time.Hour,
			ActivationWindow: time.Hour,
		},
		Captcha: CaptchaConfig{Secret: "secret"},
	}
}

func TestValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, validConfig().Validate())
	})

	t.Run("missing captcha secret", func(t *testing.T) {
		cfg := validConfig()
		cfg.Captcha.Secret = ""

		err := cfg.Validate()

		require.ErrorIs(t, err, ErrMissingBinding)
		assert.Contains(t, err.Error(), "CAPTCHA_SECRET")
	})

	t.Run("smtp host without sender", func(t *testing.T) {
		cfg := validConfig()
		cfg.SMTP.Host = "smtp.example.com"

		err := cfg.Validate()

		require.ErrorIs(t, err, ErrMissingBinding)
		assert.Contains(t, err.Error(), "SMTP_FROM")
	})

	t.Run("non-positive session duration", func(t *testing.T) {
		cfg := validConfig()
		cfg.Auth.SessionDuration = 0

		assert.Error(t, cfg.Validate())
	})
}

func TestSMTPConfigEnabled(t *testing.T) {
	assert.False(t, SMTPConfig{}.Enabled())
	assert.True(t, SMTPConfig{Host: "smtp.example.com"}.Enabled())
}

func TestFlags(t *testing.T) {
	flags := Flags()

	assert.NotEmpty(t, flags)

	flagNames := make(map[string]bool)
	for _, f := range flags {
		for _, name := range f.Names() {
			flagNames[name] = true
		}
	}

	for _, name := range []string{
		"host", "port", "base-url", "static-dir", "log-level", "database-dsn", "tls-mode",
		"session-cookie-name", "session-duration", "activation-window",
		"captcha-secret", "smtp-host", "comments-notify-to", "redis-addr",
	} {
		assert.True(t, flagNames[name], "should have %s flag", name)
	}
}

func TestNewFromCLI(t *testing.T) {
	app := &cli.Command{
		Name:  "test",
		Flags: Flags(),
		Action: func(_ context.Context, cmd *cli.Command) error {
			cfg := NewFromCLI(cmd)

			assert.NotNil(t, cfg)
			assert.Equal(t, "localhost", cfg.Server.Host)
			assert.Equal(t, 8080, cfg.Server.Port)
			assert.Equal(t, "static", cfg.Server.StaticDir)
			assert.Equal(t, "info", cfg.Log.Level)
			assert.Equal(t, "session_token", cfg.Auth.SessionCookieName)
			assert.Equal(t, 3*time.Hour, cfg.Auth.SessionDuration)
			assert.Equal(t, 60*time.Minute, cfg.Auth.ActivationWindow)
			assert.True(t, cfg.Auth.CookieSecure)
			assert.Equal(t, DefaultVerifyURL, cfg.Captcha.VerifyURL)
			assert.Equal(t, 5*time.Second, cfg.Captcha.Timeout)
			assert.Equal(t, 587, cfg.SMTP.Port)
			assert.Equal(t, 256, cfg.Comments.MaxLength)
			assert.Equal(t, time.Hour, cfg.Redis.DedupTTL)

			assert.Equal(t, "http://localhost:8080", cfg.Server.BaseURL)
			assert.Equal(t, "http://localhost:8080/activate.html", cfg.Auth.ActivationURL)

			return nil
		},
	}

	err := app.Run(context.Background(), []string{"test"})
	assert.NoError(t, err)
}

func TestNewFromCLI_WithCustomValues(t *testing.T) {
	app := &cli.Command{
		Name:  "test",
		Flags: Flags(),
		Action: func(_ context.Context, cmd *cli.Command) error {
			cfg := NewFromCLI(cmd)

			assert.Equal(t, "0.0.0.0", cfg.Server.Host)
			assert.Equal(t, 9000, cfg.Server.Port)
			assert.Equal(t, "https://example.com", cfg.Server.BaseURL)
			assert.Equal(t, "https://example.com/activate.html", cfg.Auth.ActivationURL)
			assert.Equal(t, 30*time.Minute, cfg.Auth.SessionDuration)
			assert.Equal(t, "s3cret", cfg.Captcha.Secret)
			assert.InDelta(t, 0.5, cfg.Captcha.MinScore, 0.0001)
			assert.Equal(t, "./data/test.db", cfg.Database.DSN)

			return nil
		},
	}

	args := []string{
		"test",
		"--host", "0.0.0.0",
		"--port", "9000",
		"--base-url", "https://example.com",
		"--session-duration", "30m",
		"--captcha-secret", "s3cret",
		"--captcha-min-score", "0.5",
		"--database-dsn", "./data/test.db",
	}
	err := app.Run(context.Background(), args)
	assert.NoError(t, err)
}
