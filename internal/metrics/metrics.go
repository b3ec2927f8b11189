// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package metrics defines the Prometheus counters for the account and
// comment flows. All metrics register with the default registry on import
// and are served by the /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "website"

// Result label values shared by the flow counters.
const (
	ResultSuccess  = "success"
	ResultInvalid  = "invalid"
	ResultCaptcha  = "captcha_failed"
	ResultConflict = "conflict"
	ResultError    = "error"
)

// RegistrationsTotal counts registration attempts.
// Label result: success, invalid, captcha_failed, conflict, error.
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registration attempts by outcome.",
	},
	[]string{"result"},
)

// ActivationsTotal counts activation attempts.
// Label result: success, already_active, expired, not_found, invalid, error.
var ActivationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "activations_total",
		Help:      "Total number of account activation attempts by outcome.",
	},
	[]string{"result"},
)

// LoginsTotal counts login attempts.
// Label result: success, invalid, captcha_failed, rejected, error.
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts by outcome.",
	},
	[]string{"result"},
)

// LogoutsTotal counts logouts.
// Label result: success (row deleted), no_session, error.
var LogoutsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logouts_total",
		Help:      "Total number of logouts by server-side cleanup outcome.",
	},
	[]string{"result"},
)

// CommentsTotal counts comment submissions.
// Label result: success, invalid, captcha_failed, conflict, error.
var CommentsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "comments_total",
		Help:      "Total number of comment submissions by outcome.",
	},
	[]string{"result"},
)

// NotificationsTotal counts outgoing notifications.
// Labels kind: activation, comment; result: sent, failed.
var NotificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Total number of outgoing notifications by kind and outcome.",
	},
	[]string{"kind", "result"},
)
