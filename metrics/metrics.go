// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package metrics exposes Prometheus counters for HTTP traffic and voting.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry = prometheus.NewRegistry()

	requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "polls",
		Name:      "http_requests_total",
		Help:      "HTTP requests by route, method and status code.",
	}, []string{"route", "method", "code"})

	requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "polls",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})

	votesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "polls",
		Name:      "votes_total",
		Help:      "Votes recorded, split into first votes and changed votes.",
	}, []string{"kind"})

	rejectedVotesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "polls",
		Name:      "rejected_votes_total",
		Help:      "Vote submissions turned away, by reason.",
	}, []string{"reason"})
)

// Rejection reasons
const (
	ReasonNoChoice = "no_choice"
	ReasonClosed   = "closed"
)

func init() {
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		requestsTotal,
		requestDuration,
		votesTotal,
		rejectedVotesTotal,
	)
}

// Handler serves the metrics in the Prometheus text format
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

func ObserveRequest(route, method string, code int, d time.Duration) {
	requestsTotal.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	requestDuration.WithLabelValues(route).Observe(d.Seconds())
}

func VoteRecorded(changed bool) {
	kind := "new"
	if changed {
		kind = "changed"
	}
	votesTotal.WithLabelValues(kind).Inc()
}

func VoteRejected(reason string) {
	rejectedVotesTotal.WithLabelValues(reason).Inc()
}
