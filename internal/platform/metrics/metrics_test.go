// Copyright (c) 2026 LMS. All rights reserved.
// Author: Nikhilrai1

package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/Nikhilrai1/lms/internal/platform/metrics"
)

/*
TestMetrics_Counters checks that observations land on the right series.
*/
func TestMetrics_Counters(t *testing.T) {
	m := metrics.New()

	m.ObserveCache("course", true)
	m.ObserveCache("course", false)
	m.ObserveCache("course", false)
	m.ObserveLogin(true)
	m.ObserveRequest("/api/v1/login", http.MethodPost, http.StatusOK, 10*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("course", metrics.CacheHit)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("course", metrics.CacheMiss)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LoginAttempts.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("/api/v1/login", "POST", "200")))
}

/*
TestMetrics_NilSafe lets callers run without a collector.
*/
func TestMetrics_NilSafe(t *testing.T) {
	var m *metrics.Metrics
	assert.NotPanics(t, func() {
		m.ObserveCache("course", true)
		m.ObserveLogin(false)
		m.IncrementRegistrations()
		m.IncrementActivations()
		m.ObserveRequest("/", "GET", 200, time.Millisecond)
	})
}

/*
TestMetrics_Handler exposes the private registry.
*/
func TestMetrics_Handler(t *testing.T) {
	m := metrics.New()
	m.IncrementActivations()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "lms_users_activated_total 1")
}
