// Copyright (c) 2026 LMS. All rights reserved.
// Author: Nikhilrai1

// Package metrics holds the Prometheus collectors of the LMS API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Cache outcome labels.
const (
	CacheHit  = "hit"
	CacheMiss = "miss"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	CacheLookups        *prometheus.CounterVec
	UsersRegistered     prometheus.Counter
	UsersActivated      prometheus.Counter
	LoginAttempts       *prometheus.CounterVec
}

// New creates a private registry and registers every collector on it.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "lms_http_requests_total",
			Help: "Total number of HTTP requests by route pattern, method and status",
		}, []string{"route", "method", "status"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lms_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "lms_cache_lookups_total",
			Help: "Cache lookups by cache name and outcome",
		}, []string{"cache", "result"}),
		UsersRegistered: factory.NewCounter(prometheus.CounterOpts{
			Name: "lms_users_registration_started_total",
			Help: "Total number of activation mails sent",
		}),
		UsersActivated: factory.NewCounter(prometheus.CounterOpts{
			Name: "lms_users_activated_total",
			Help: "Total number of accounts created through activation or social auth",
		}),
		LoginAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "lms_login_attempts_total",
			Help: "Login attempts by outcome",
		}, []string{"result"}),
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRequest records one finished HTTP request.
func (m *Metrics) ObserveRequest(route, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// ObserveCache records a cache lookup outcome.
func (m *Metrics) ObserveCache(cache string, hit bool) {
	if m == nil {
		return
	}
	result := CacheMiss
	if hit {
		result = CacheHit
	}
	m.CacheLookups.WithLabelValues(cache, result).Inc()
}

// IncrementRegistrations counts a sent activation mail.
func (m *Metrics) IncrementRegistrations() {
	if m == nil {
		return
	}
	m.UsersRegistered.Inc()
}

// IncrementActivations counts a created account.
func (m *Metrics) IncrementActivations() {
	if m == nil {
		return
	}
	m.UsersActivated.Inc()
}

// ObserveLogin records a login outcome ("success" or "failure").
func (m *Metrics) ObserveLogin(success bool) {
	if m == nil {
		return
	}
	result := "failure"
	if success {
		result = "success"
	}
	m.LoginAttempts.WithLabelValues(result).Inc()
}
