// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	altsrc "github.com/urfave/cli-altsrc/v3"
	"github.com/urfave/cli-altsrc/v3/toml"
	"github.com/urfave/cli/v3"
)

var configFile = altsrc.StringSourcer("config.toml")

// ErrMissingBinding is returned by Validate when a required secret is absent.
var ErrMissingBinding = errors.New("missing required configuration")

// DefaultVerifyURL is the reCAPTCHA siteverify endpoint.
const DefaultVerifyURL = "https://www.google.com/recaptcha/api/siteverify"

type Config struct { //nolint:govet // fieldalignment not critical for config structs
	Server   ServerConfig
	Log      LogConfig
	Database DatabaseConfig
	TLS      TLSConfig
	Auth     AuthConfig
	Captcha  CaptchaConfig
	SMTP     SMTPConfig
	Comments CommentsConfig
	Redis    RedisConfig
}

type ServerConfig struct { //nolint:govet // fieldalignment not critical for config structs
	Host        string
	Port        int
	BaseURL     string
	StaticDir   string // served at /, empty disables
	MaxBodySize int    // in MB
}

type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // text, json
}

type DatabaseConfig struct {
	DSN string
}

type TLSConfig struct {
	Mode     string // auto, acme, manual, off
	CertDir  string
	Email    string // ACME email for Let's Encrypt
	CertFile string // manual mode
	KeyFile  string // manual mode
}

type AuthConfig struct { //nolint:govet // fieldalignment not critical
	SessionCookieName string
	SessionDuration   time.Duration
	ActivationWindow  time.Duration
	CookieSecure      bool
	ActivationURL     string // activation page; the token is appended as ?token=
}

type CaptchaConfig struct { //nolint:govet // fieldalignment not critical
	Secret           string
	VerifyURL        string
	Timeout          time.Duration
	MinScore         float64 // 0 disables the score check
	ExpectedHostname string
}

type SMTPConfig struct { //nolint:govet // fieldalignment not critical
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	TLS      bool
	Timeout  time.Duration
}

// Enabled reports whether outgoing mail is configured.
func (c SMTPConfig) Enabled() bool {
	return c.Host != ""
}

type CommentsConfig struct {
	NotifyTo  string
	MaxLength int
}

type RedisConfig struct { //nolint:govet // fieldalignment not critical
	Addr     string // empty disables the duplicate-comment guard
	DB       int
	DedupTTL time.Duration
}

func NewFromCLI(cmd *cli.Command) *Config {
	cfg := &Config{
		Server: ServerConfig{
			Host:        cmd.String("host"),
			Port:        int(cmd.Int("port")),
			BaseURL:     cmd.String("base-url"),
			StaticDir:   cmd.String("static-dir"),
			MaxBodySize: int(cmd.Int("max-body-size")),
		},
		Log: LogConfig{
			Level:  cmd.String("log-level"),
			Format: cmd.String("log-format"),
		},
		Database: DatabaseConfig{
			DSN: cmd.String("database-dsn"),
		},
		TLS: TLSConfig{
			Mode:     cmd.String("tls-mode"),
			CertDir:  cmd.String("tls-cert-dir"),
			Email:    cmd.String("tls-email"),
			CertFile: cmd.String("tls-cert-file"),
			KeyFile:  cmd.String("tls-key-file"),
		},
		Auth: AuthConfig{
			SessionCookieName: cmd.String("session-cookie-name"),
			SessionDuration:   cmd.Duration("session-duration"),
			ActivationWindow:  cmd.Duration("activation-window"),
			CookieSecure:      cmd.Bool("cookie-secure"),
			ActivationURL:     cmd.String("activation-url"),
		},
		Captcha: CaptchaConfig{
			Secret:           cmd.String("captcha-secret"),
			VerifyURL:        cmd.String("captcha-verify-url"),
			Timeout:          cmd.Duration("captcha-timeout"),
			MinScore:         cmd.Float("captcha-min-score"),
			ExpectedHostname: cmd.String("captcha-expected-hostname"),
		},
		SMTP: SMTPConfig{
			Host:     cmd.String("smtp-host"),
			Port:     int(cmd.Int("smtp-port")),
			Username: cmd.String("smtp-username"),
			Password: cmd.String("smtp-password"),
			From:     cmd.String("smtp-from"),
			FromName: cmd.String("smtp-from-name"),
			TLS:      cmd.Bool("smtp-tls"),
			Timeout:  cmd.Duration("smtp-timeout"),
		},
		Comments: CommentsConfig{
			NotifyTo:  cmd.String("comments-notify-to"),
			MaxLength: int(cmd.Int("comments-max-length")),
		},
		Redis: RedisConfig{
			Addr:     cmd.String("redis-addr"),
			DB:       int(cmd.Int("redis-db")),
			DedupTTL: cmd.Duration("redis-dedup-ttl"),
		},
	}

	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = buildBaseURL(cfg)
	}

	applyAuthDefaults(cfg)

	return cfg
}

// applyAuthDefaults derives values that depend on the resolved BaseURL.
func applyAuthDefaults(cfg *Config) {
	if cfg.Auth.ActivationURL == "" {
		cfg.Auth.ActivationURL = strings.TrimSuffix(cfg.Server.BaseURL, "/") + "/activate.html"
	}
	if cfg.Auth.SessionCookieName == "" {
		cfg.Auth.SessionCookieName = "session_token"
	}
}

// Validate checks that every binding the request flows depend on is present.
func (c *Config) Validate() error {
	if c.Captcha.Secret == "" {
		return fmt.Errorf("%w: captcha secret (CAPTCHA_SECRET)", ErrMissingBinding)
	}
	if c.SMTP.Enabled() && c.SMTP.From == "" {
		return fmt.Errorf("%w: smtp from address (SMTP_FROM)", ErrMissingBinding)
	}
	if c.Auth.SessionDuration <= 0 {
		return fmt.Errorf("session duration must be positive, got %s", c.Auth.SessionDuration)
	}
	if c.Auth.ActivationWindow <= 0 {
		return fmt.Errorf("activation window must be positive, got %s", c.Auth.ActivationWindow)
	}
	return nil
}

func buildBaseURL(cfg *Config) string {
	host := cfg.Server.Host
	port := cfg.Server.Port
	mode := strings.ToLower(cfg.TLS.Mode)

	useTLS := shouldUseTLS(mode, host)

	scheme := "http"
	if useTLS {
		scheme = "https"
	}

	// ACME always serves on 443
	if mode == "acme" {
		return fmt.Sprintf("https://%s", host)
	}

	if (scheme == "http" && port == 80) || (scheme == "https" && port == 443) {
		return fmt.Sprintf("%s://%s", scheme, host)
	}
	return fmt.Sprintf("%s://%s:%d", scheme, host, port)
}

func shouldUseTLS(mode, host string) bool {
	switch mode {
	case "off":
		return false
	case "acme", "manual":
		return true
	default: // "auto" or empty
		return !IsLocalhost(host)
	}
}

// IsLocalhost checks if the host is a localhost address.
func IsLocalhost(host string) bool {
	switch host {
	case "", "localhost", "127.0.0.1", "::1":
		return true
	}
	return strings.HasSuffix(host, ".localhost")
}

func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "host",
			Value:   "localhost",
			Usage:   "Host to bind to",
			Sources: cli.NewValueSourceChain(cli.EnvVar("HOST"), toml.TOML("server.host", configFile)),
		},
		&cli.IntFlag{
			Name:    "port",
			Value:   8080,
			Usage:   "Port to listen on",
			Sources: cli.NewValueSourceChain(cli.EnvVar("PORT"), toml.TOML("server.port", configFile)),
		},
		&cli.StringFlag{
			Name:    "base-url",
			Usage:   "Public base URL of the site",
			Sources: cli.NewValueSourceChain(cli.EnvVar("BASE_URL"), toml.TOML("server.base_url", configFile)),
		},
		&cli.StringFlag{
			Name:    "static-dir",
			Value:   "static",
			Usage:   "Directory with the static site, served at /",
			Sources: cli.NewValueSourceChain(cli.EnvVar("STATIC_DIR"), toml.TOML("server.static_dir", configFile)),
		},
		&cli.IntFlag{
			Name:    "max-body-size",
			Value:   1,
			Usage:   "Maximum request body size in MB",
			Sources: cli.NewValueSourceChain(cli.EnvVar("MAX_BODY_SIZE"), toml.TOML("server.max_body_size", configFile)),
		},
		&cli.StringFlag{
			Name:    "log-level",
			Value:   "info",
			Usage:   "Log level (debug, info, warn, error)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("LOG_LEVEL"), toml.TOML("log.level", configFile)),
		},
		&cli.StringFlag{
			Name:    "log-format",
			Value:   "text",
			Usage:   "Log format (text, json)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("LOG_FORMAT"), toml.TOML("log.format", configFile)),
		},
		&cli.StringFlag{
			Name:    "database-dsn",
			Value:   "./data/app.db",
			Usage:   "Database DSN",
			Sources: cli.NewValueSourceChain(cli.EnvVar("DATABASE_DSN"), toml.TOML("database.dsn", configFile)),
		},
		&cli.StringFlag{
			Name:    "tls-mode",
			Value:   "auto",
			Usage:   "TLS mode (auto, acme, manual, off)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("TLS_MODE"), toml.TOML("tls.mode", configFile)),
		},
		&cli.StringFlag{
			Name:    "tls-cert-dir",
			Value:   "./data/certs",
			Usage:   "Directory for ACME certificates",
			Sources: cli.NewValueSourceChain(cli.EnvVar("TLS_CERT_DIR"), toml.TOML("tls.cert_dir", configFile)),
		},
		&cli.StringFlag{
			Name:    "tls-email",
			Usage:   "Email for ACME/Let's Encrypt registration",
			Sources: cli.NewValueSourceChain(cli.EnvVar("TLS_EMAIL"), toml.TOML("tls.email", configFile)),
		},
		&cli.StringFlag{
			Name:    "tls-cert-file",
			Usage:   "Path to TLS certificate file (manual mode)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("TLS_CERT_FILE"), toml.TOML("tls.cert_file", configFile)),
		},
		&cli.StringFlag{
			Name:    "tls-key-file",
			Usage:   "Path to TLS private key file (manual mode)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("TLS_KEY_FILE"), toml.TOML("tls.key_file", configFile)),
		},
		// Auth flags
		&cli.StringFlag{
			Name:    "session-cookie-name",
			Value:   "session_token",
			Usage:   "Session cookie name",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SESSION_COOKIE_NAME"), toml.TOML("auth.session_cookie_name", configFile)),
		},
		&cli.DurationFlag{
			Name:    "session-duration",
			Value:   3 * time.Hour,
			Usage:   "Lifetime of a login session",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SESSION_DURATION"), toml.TOML("auth.session_duration", configFile)),
		},
		&cli.DurationFlag{
			Name:    "activation-window",
			Value:   60 * time.Minute,
			Usage:   "Validity of an activation link",
			Sources: cli.NewValueSourceChain(cli.EnvVar("ACTIVATION_WINDOW"), toml.TOML("auth.activation_window", configFile)),
		},
		&cli.BoolFlag{
			Name:    "cookie-secure",
			Value:   true,
			Usage:   "Mark the session cookie Secure",
			Sources: cli.NewValueSourceChain(cli.EnvVar("COOKIE_SECURE"), toml.TOML("auth.cookie_secure", configFile)),
		},
		&cli.StringFlag{
			Name:    "activation-url",
			Usage:   "Activation page URL (defaults to <base-url>/activate.html)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("ACTIVATION_URL"), toml.TOML("auth.activation_url", configFile)),
		},
		// Captcha flags
		&cli.StringFlag{
			Name:    "captcha-secret",
			Usage:   "reCAPTCHA secret key",
			Sources: cli.NewValueSourceChain(cli.EnvVar("CAPTCHA_SECRET"), toml.TOML("captcha.secret", configFile)),
		},
		&cli.StringFlag{
			Name:    "captcha-verify-url",
			Value:   DefaultVerifyURL,
			Usage:   "reCAPTCHA siteverify endpoint",
			Sources: cli.NewValueSourceChain(cli.EnvVar("CAPTCHA_VERIFY_URL"), toml.TOML("captcha.verify_url", configFile)),
		},
		&cli.DurationFlag{
			Name:    "captcha-timeout",
			Value:   5 * time.Second,
			Usage:   "Timeout for a verification request",
			Sources: cli.NewValueSourceChain(cli.EnvVar("CAPTCHA_TIMEOUT"), toml.TOML("captcha.timeout", configFile)),
		},
		&cli.FloatFlag{
			Name:    "captcha-min-score",
			Usage:   "Minimum reCAPTCHA v3 score (0 disables)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("CAPTCHA_MIN_SCORE"), toml.TOML("captcha.min_score", configFile)),
		},
		&cli.StringFlag{
			Name:    "captcha-expected-hostname",
			Usage:   "Reject verifications solved on another hostname",
			Sources: cli.NewValueSourceChain(cli.EnvVar("CAPTCHA_EXPECTED_HOSTNAME"), toml.TOML("captcha.expected_hostname", configFile)),
		},
		// SMTP flags
		&cli.StringFlag{
			Name:    "smtp-host",
			Usage:   "SMTP server host (empty logs mails instead of sending)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_HOST"), toml.TOML("smtp.host", configFile)),
		},
		&cli.IntFlag{
			Name:    "smtp-port",
			Value:   587,
			Usage:   "SMTP server port",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_PORT"), toml.TOML("smtp.port", configFile)),
		},
		&cli.StringFlag{
			Name:    "smtp-username",
			Usage:   "SMTP username",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_USERNAME"), toml.TOML("smtp.username", configFile)),
		},
		&cli.StringFlag{
			Name:    "smtp-password",
			Usage:   "SMTP password",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_PASSWORD"), toml.TOML("smtp.password", configFile)),
		},
		&cli.StringFlag{
			Name:    "smtp-from",
			Usage:   "Sender address",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_FROM"), toml.TOML("smtp.from", configFile)),
		},
		&cli.StringFlag{
			Name:    "smtp-from-name",
			Usage:   "Sender display name",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_FROM_NAME"), toml.TOML("smtp.from_name", configFile)),
		},
		&cli.BoolFlag{
			Name:    "smtp-tls",
			Value:   true,
			Usage:   "Require TLS (implicit on port 465, STARTTLS otherwise)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_TLS"), toml.TOML("smtp.tls", configFile)),
		},
		&cli.DurationFlag{
			Name:    "smtp-timeout",
			Value:   10 * time.Second,
			Usage:   "Timeout for delivering a single mail",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_TIMEOUT"), toml.TOML("smtp.timeout", configFile)),
		},
		// Comment flags
		&cli.StringFlag{
			Name:    "comments-notify-to",
			Usage:   "Address notified about new comments",
			Sources: cli.NewValueSourceChain(cli.EnvVar("COMMENTS_NOTIFY_TO"), toml.TOML("comments.notify_to", configFile)),
		},
		&cli.IntFlag{
			Name:    "comments-max-length",
			Value:   256,
			Usage:   "Maximum comment length in characters",
			Sources: cli.NewValueSourceChain(cli.EnvVar("COMMENTS_MAX_LENGTH"), toml.TOML("comments.max_length", configFile)),
		},
		// Redis flags
		&cli.StringFlag{
			Name:    "redis-addr",
			Usage:   "Redis address for the duplicate-comment guard (empty disables)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("REDIS_ADDR"), toml.TOML("redis.addr", configFile)),
		},
		&cli.IntFlag{
			Name:    "redis-db",
			Usage:   "Redis database number",
			Sources: cli.NewValueSourceChain(cli.EnvVar("REDIS_DB"), toml.TOML("redis.db", configFile)),
		},
		&cli.DurationFlag{
			Name:    "redis-dedup-ttl",
			Value:   time.Hour,
			Usage:   "How long an identical comment is rejected",
			Sources: cli.NewValueSourceChain(cli.EnvVar("REDIS_DEDUP_TTL"), toml.TOML("redis.dedup_ttl", configFile)),
		},
	}
}
