// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package captcha verifies bot-protection tokens against a reCAPTCHA
// compatible siteverify endpoint.
package captcha

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"codeberg.org/oliverandrich/website/internal/config"
	"codeberg.org/oliverandrich/website/internal/i18n"
)

// Result is the outcome of a verification. Every failure, including
// transport errors, yields Success == false.
type Result struct {
	Message    string
	MessageID  string
	Action     string
	Hostname   string
	ErrorCodes []string
	Score      float64
	StatusCode int
	Success    bool
}

// Reason returns the translatable explanation of the result.
func (r Result) Reason() i18n.Message {
	if r.Message == "" {
		return i18n.Message{ID: msgFailed, Default: "reCAPTCHA verification failed."}
	}
	return i18n.Message{ID: r.MessageID, Default: r.Message, Data: map[string]any{"Status": r.StatusCode}}
}

const (
	msgMissing       = "captcha_missing"
	msgNotConfigured = "captcha_not_configured"
	msgNetwork       = "captcha_network_error"
	msgServerError   = "captcha_server_error"
	msgFailed        = "captcha_failed"
	msgBadOrigin     = "captcha_bad_origin"
	msgVerified      = "captcha_verified"
)

func failure(id, message string) Result {
	return Result{MessageID: id, Message: message}
}

type siteverifyResponse struct {
	Action     string   `json:"action"`
	Hostname   string   `json:"hostname"`
	ErrorCodes []string `json:"error-codes"`
	Score      float64  `json:"score"`
	Success    bool     `json:"success"`
}

// Client talks to the siteverify endpoint.
type Client struct {
	httpClient *http.Client
	secret     string
	verifyURL  string
	hostname   string
	minScore   float64
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client used for verification.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a verification client.
func NewClient(cfg *config.CaptchaConfig, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	verifyURL := cfg.VerifyURL
	if verifyURL == "" {
		verifyURL = config.DefaultVerifyURL
	}

	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		secret:     cfg.Secret,
		verifyURL:  verifyURL,
		hostname:   cfg.ExpectedHostname,
		minScore:   cfg.MinScore,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Verify checks token with the siteverify endpoint. remoteIP is optional.
func (c *Client) Verify(ctx context.Context, token, remoteIP string) Result {
	if token == "" {
		return failure(msgMissing, "reCAPTCHA token missing.")
	}
	if c.secret == "" {
		slog.Error("captcha_not_configured")
		return failure(msgNotConfigured, "Server configuration error [recaptcha].")
	}

	form := url.Values{}
	form.Set("secret", c.secret)
	form.Set("response", token)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		slog.Error("captcha_request_failed", "error", err)
		return failure(msgNetwork, "Network error during reCAPTCHA verification.")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Warn("captcha_request_failed", "error", err)
		return failure(msgNetwork, "Network error during reCAPTCHA verification.")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		slog.Warn("captcha_bad_status", "status", resp.StatusCode)
		result := failure(msgServerError, fmt.Sprintf("reCAPTCHA server error (%d)", resp.StatusCode))
		result.StatusCode = resp.StatusCode
		return result
	}

	var body siteverifyResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body); err != nil {
		slog.Warn("captcha_decode_failed", "error", err)
		return failure(msgNetwork, "Network error during reCAPTCHA verification.")
	}

	result := Result{
		Success:    body.Success,
		Score:      body.Score,
		Action:     body.Action,
		Hostname:   body.Hostname,
		ErrorCodes: body.ErrorCodes,
		StatusCode: resp.StatusCode,
	}

	switch {
	case !body.Success:
		result.MessageID, result.Message = msgFailed, "reCAPTCHA verification failed."
		slog.Info("captcha_rejected", "error_codes", body.ErrorCodes)
	case c.minScore > 0 && body.Score < c.minScore:
		result.Success = false
		result.MessageID, result.Message = msgFailed, "reCAPTCHA verification failed."
		slog.Info("captcha_low_score", "score", body.Score, "min_score", c.minScore, "action", body.Action)
	case c.hostname != "" && !strings.EqualFold(body.Hostname, c.hostname):
		result.Success = false
		result.MessageID, result.Message = msgBadOrigin, "Invalid request origin."
		slog.Warn("captcha_hostname_mismatch", "hostname", body.Hostname, "expected", c.hostname)
	default:
		result.MessageID, result.Message = msgVerified, "reCAPTCHA verified."
	}

	return result
}
