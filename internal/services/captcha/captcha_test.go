// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package captcha_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"codeberg.org/oliverandrich/website/internal/config"
	"codeberg.org/oliverandrich/website/internal/services/captcha"
	"github.com/stretchr/testify/assert"
)

func newServer(t *testing.T, status int, body string) (*httptest.Server, *url.Values) {
	t.Helper()
	var captured url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err == nil {
			captured = r.PostForm
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &captured
}

func newClient(verifyURL string, mutate ...func(*config.CaptchaConfig)) *captcha.Client {
	cfg := &config.CaptchaConfig{
		Secret:    "test-secret",
		VerifyURL: verifyURL,
		Timeout:   time.Second,
	}
	for _, m := range mutate {
		m(cfg)
	}
	return captcha.NewClient(cfg)
}

func TestVerify_Success(t *testing.T) {
	srv, captured := newServer(t, http.StatusOK, `{"success":true,"score":0.9,"action":"login","hostname":"example.com"}`)
	client := newClient(srv.URL)

	result := client.Verify(context.Background(), "token-1", "203.0.113.7")

	assert.True(t, result.Success)
	assert.InDelta(t, 0.9, result.Score, 0.0001)
	assert.Equal(t, "login", result.Action)
	assert.Equal(t, "example.com", result.Hostname)
	assert.Equal(t, "test-secret", captured.Get("secret"))
	assert.Equal(t, "token-1", captured.Get("response"))
	assert.Equal(t, "203.0.113.7", captured.Get("remoteip"))
}

func TestVerify_OmitsEmptyRemoteIP(t *testing.T) {
	srv, captured := newServer(t, http.StatusOK, `{"success":true}`)
	client := newClient(srv.URL)

	result := client.Verify(context.Background(), "token-1", "")

	assert.True(t, result.Success)
	_, present := (*captured)["remoteip"]
	assert.False(t, present)
}

func TestVerify_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		mutate  func(*config.CaptchaConfig)
		message string
	}{
		{"rejected", http.StatusOK, `{"success":false,"error-codes":["invalid-input-response"]}`, nil, "reCAPTCHA verification failed."},
		{"server error", http.StatusBadGateway, `oops`, nil, "reCAPTCHA server error (502)"},
		{"bad json", http.StatusOK, `not json`, nil, "Network error during reCAPTCHA verification."},
		{
			"low score", http.StatusOK, `{"success":true,"score":0.2}`,
			func(c *config.CaptchaConfig) { c.MinScore = 0.5 },
			"reCAPTCHA verification failed.",
		},
		{
			"hostname mismatch", http.StatusOK, `{"success":true,"hostname":"evil.example"}`,
			func(c *config.CaptchaConfig) { c.ExpectedHostname = "example.com" },
			"Invalid request origin.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newServer(t, tt.status, tt.body)
			var mutate []func(*config.CaptchaConfig)
			if tt.mutate != nil {
				mutate = append(mutate, tt.mutate)
			}
			client := newClient(srv.URL, mutate...)

			result := client.Verify(context.Background(), "token", "")

			assert.False(t, result.Success)
			assert.Equal(t, tt.message, result.Message)
		})
	}
}

func TestVerify_ErrorCodesReported(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK, `{"success":false,"error-codes":["timeout-or-duplicate"]}`)

	result := newClient(srv.URL).Verify(context.Background(), "token", "")

	assert.Equal(t, []string{"timeout-or-duplicate"}, result.ErrorCodes)
}

func TestVerify_MissingToken(t *testing.T) {
	client := newClient("http://127.0.0.1:0")

	result := client.Verify(context.Background(), "", "")

	assert.False(t, result.Success)
	assert.Equal(t, "reCAPTCHA token missing.", result.Message)
}

func TestVerify_MissingSecret(t *testing.T) {
	client := newClient("http://127.0.0.1:0", func(c *config.CaptchaConfig) { c.Secret = "" })

	result := client.Verify(context.Background(), "token", "")

	assert.False(t, result.Success)
}

func TestVerify_NetworkErrorIsFailure(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK, `{"success":true}`)
	verifyURL := srv.URL
	srv.Close()

	result := newClient(verifyURL).Verify(context.Background(), "token", "")

	assert.False(t, result.Success)
	assert.Equal(t, "Network error during reCAPTCHA verification.", result.Message)
}

func TestVerify_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	client := newClient(srv.URL, func(c *config.CaptchaConfig) { c.Timeout = 50 * time.Millisecond })

	result := client.Verify(context.Background(), "token", "")

	assert.False(t, result.Success)
}

func TestVerify_CanceledContext(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK, `{"success":true}`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := newClient(srv.URL).Verify(ctx, "token", "")

	assert.False(t, result.Success)
}

func TestWithHTTPClient(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK, `{"success":true}`)
	client := captcha.NewClient(&config.CaptchaConfig{Secret: "s", VerifyURL: srv.URL}, captcha.WithHTTPClient(srv.Client()))

	assert.True(t, client.Verify(context.Background(), "token", "").Success)
}

func TestResult_Reason(t *testing.T) {
	srv, _ := newServer(t, http.StatusBadGateway, `oops`)

	reason := newClient(srv.URL).Verify(context.Background(), "token", "").Reason()

	assert.Equal(t, "captcha_server_error", reason.ID)
	assert.Equal(t, "reCAPTCHA server error (502)", reason.Default)
	assert.Equal(t, http.StatusBadGateway, reason.Data["Status"])

	assert.Equal(t, "captcha_failed", captcha.Result{}.Reason().ID)
}
