// Package telemetry adapts admin telemetry events to Prometheus and slog.
package telemetry

import (
	"context"
	"log/slog"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder matches the Telemetry interfaces of the admin, cards and command
// packages.
type Recorder interface {
	Record(ctx context.Context, event string, payload map[string]any)
}

// Prometheus counts events by name and resource.
type Prometheus struct {
	events *prometheus.CounterVec
	next   Recorder
}

// PrometheusOptions configures the counter.
type PrometheusOptions struct {
	Namespace  string
	Registerer prometheus.Registerer
	// Next receives every event after it is counted.
	Next Recorder
}

// NewPrometheus registers an events counter on opts.Registerer.
func NewPrometheus(opts PrometheusOptions) (*Prometheus, error) {
	if opts.Namespace == "" {
		opts.Namespace = "inkhub"
	}
	if opts.Registerer == nil {
		opts.Registerer = prometheus.DefaultRegisterer
	}
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: opts.Namespace,
		Name:      "events_total",
		Help:      "Admin events recorded, by event name and resource.",
	}, []string{"event", "resource"})
	if err := opts.Registerer.Register(events); err != nil {
		are, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			return nil, err
		}
		events = are.ExistingCollector.(*prometheus.CounterVec)
	}
	return &Prometheus{events: events, next: opts.Next}, nil
}

// Record increments the counter of event.
func (p *Prometheus) Record(ctx context.Context, event string, payload map[string]any) {
	resource, _ := payload["resource"].(string)
	p.events.WithLabelValues(event, resource).Inc()
	if p.next != nil {
		p.next.Record(ctx, event, payload)
	}
}

// Counter exposes the underlying vector.
func (p *Prometheus) Counter() *prometheus.CounterVec {
	return p.events
}

// Logger writes events as debug records.
type Logger struct {
	log *slog.Logger
}

// NewLogger wraps log, slog.Default when nil.
func NewLogger(log *slog.Logger) *Logger {
	if log == nil {
		log = slog.Default()
	}
	return &Logger{log: log}
}

// Record logs event with its payload as attributes.
func (l *Logger) Record(ctx context.Context, event string, payload map[string]any) {
	attrs := make([]slog.Attr, 0, len(payload))
	for k, v := range payload {
		attrs = append(attrs, slog.Any(strings.ToLower(k), v))
	}
	l.log.LogAttrs(ctx, slog.LevelDebug, "telemetry "+event, attrs...)
}
