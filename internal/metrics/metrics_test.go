// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package metrics_test

import (
	"testing"

	"codeberg.org/oliverandrich/website/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(metrics.RegistrationsTotal.WithLabelValues(metrics.ResultSuccess))

	metrics.RegistrationsTotal.WithLabelValues(metrics.ResultSuccess).Inc()

	after := testutil.ToFloat64(metrics.RegistrationsTotal.WithLabelValues(metrics.ResultSuccess))
	assert.InDelta(t, before+1, after, 0.0001)
}

func TestNotificationsLabels(t *testing.T) {
	counter := metrics.NotificationsTotal.WithLabelValues("activation", "failed")
	before := testutil.ToFloat64(counter)

	counter.Inc()

	assert.InDelta(t, before+1, testutil.ToFloat64(counter), 0.0001)
}
