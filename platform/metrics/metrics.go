// Package metrics holds the Prometheus collectors shared across modules.
// This is part of the platform layer and contains no business logic.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	VerificationChecks = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "verification_checks_total", Help: "Anti-bot check outcomes"},
		[]string{"check", "result"},
	)
	VerificationResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "verification_results_total", Help: "Overall verification decisions"},
		[]string{"mode", "result"},
	)
	CaptchaLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "captcha_verify_latency_seconds", Help: "CAPTCHA provider siteverify latency"},
		[]string{"provider"},
	)
	Submissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "intake_submissions_total", Help: "Form submissions by outcome"},
		[]string{"type", "outcome"},
	)
	Enqueues = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "notification_enqueue_total", Help: "Notification job enqueue results"},
		[]string{"kind", "result"},
	)
	Deliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "notification_deliveries_total", Help: "Notification delivery outcomes"},
		[]string{"kind", "result"},
	)
)

var registerOnce sync.Once

// Register adds every collector to reg. Repeated calls are no-ops.
func Register(reg prometheus.Registerer) {
	registerOnce.Do(func() {
		reg.MustRegister(VerificationChecks, VerificationResults, CaptchaLatency, Submissions, Enqueues, Deliveries)
	})
}

// Result maps a boolean outcome to the label value used by the counters.
func Result(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
