// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package testutil

import (
	"context"
	"sync"
	"time"

	"codeberg.org/oliverandrich/website/internal/services/captcha"
	"codeberg.org/oliverandrich/website/internal/services/email"
)

// FakeVerifier answers bot verification without network access.
type FakeVerifier struct {
	mu     sync.Mutex
	result captcha.Result
	tokens []string
}

// NewFakeVerifier returns a verifier that accepts or rejects every token.
func NewFakeVerifier(accept bool) *FakeVerifier {
	if accept {
		return &FakeVerifier{result: captcha.Result{Success: true, Message: "reCAPTCHA verified."}}
	}
	return &FakeVerifier{result: captcha.Result{MessageID: "captcha_failed", Message: "reCAPTCHA verification failed."}}
}

// Verify records the token and returns the configured result.
func (f *FakeVerifier) Verify(_ context.Context, token, _ string) captcha.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = append(f.tokens, token)
	return f.result
}

// Calls returns the number of Verify calls.
func (f *FakeVerifier) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tokens)
}

// FakeNotifier records notices instead of sending mail.
type FakeNotifier struct {
	mu          sync.Mutex
	Err         error
	activations []email.ActivationNotice
	comments    []email.CommentNotice
}

func (f *FakeNotifier) SendActivation(_ context.Context, notice email.ActivationNotice) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	f.activations = append(f.activations, notice)
	return nil
}

func (f *FakeNotifier) SendCommentNotification(_ context.Context, notice email.CommentNotice) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	f.comments = append(f.comments, notice)
	return nil
}

// Activations returns the recorded activation notices.
func (f *FakeNotifier) Activations() []email.ActivationNotice {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]email.ActivationNotice(nil), f.activations...)
}

// Comments returns the recorded comment notices.
func (f *FakeNotifier) Comments() []email.CommentNotice {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]email.CommentNotice(nil), f.comments...)
}

// Clock is a manually advanced time source.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock returns a clock stopped at t.
func NewClock(t time.Time) *Clock {
	return &Clock{now: t}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
