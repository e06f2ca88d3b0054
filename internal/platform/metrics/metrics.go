package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// LibraryStats is the point-in-time circulation state reported as gauges.
type LibraryStats struct {
	ActiveLoans     int64
	OverdueLoans    int64
	AvailableCopies int64
}

// Collector supplies LibraryStats on every scrape.
type Collector interface {
	LibraryStats(ctx context.Context) (LibraryStats, error)
}

// Exporter records HTTP metrics and library gauges with OpenTelemetry and
// serves them in Prometheus format.
type Exporter struct {
	meterProvider *sdkmetric.MeterProvider
	registry      *promclient.Registry
	collector     Collector

	meter            metric.Meter
	requestCounter   metric.Int64Counter
	requestDuration  metric.Float64Histogram
	activeLoansGauge metric.Int64ObservableGauge
	overdueGauge     metric.Int64ObservableGauge
	availableGauge   metric.Int64ObservableGauge
}

// NewExporter creates an exporter. collector may be nil, in which case no
// library gauges are registered.
func NewExporter(collector Collector) (*Exporter, error) {
	registry := promclient.NewRegistry()

	exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("creating prometheus exporter: %w", err)
	}

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
	)

	meter := meterProvider.Meter(
		"libralink",
		metric.WithInstrumentationVersion("1.0.0"),
	)

	e := &Exporter{
		meterProvider: meterProvider,
		registry:      registry,
		collector:     collector,
		meter:         meter,
	}

	if err := e.registerInstruments(); err != nil {
		return nil, fmt.Errorf("registering instruments: %w", err)
	}
	return e, nil
}

func (e *Exporter) registerInstruments() error {
	var err error

	e.requestCounter, err = e.meter.Int64Counter(
		"http.server.requests",
		metric.WithDescription("Number of HTTP requests served"),
		metric.WithUnit("{requests}"),
	)
	if err != nil {
		return fmt.Errorf("creating request counter: %w", err)
	}

	e.requestDuration, err = e.meter.Float64Histogram(
		"http.server.duration",
		metric.WithDescription("HTTP request latency"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return fmt.Errorf("creating request histogram: %w", err)
	}

	if e.collector == nil {
		return nil
	}

	e.activeLoansGauge, err = e.meter.Int64ObservableGauge(
		"library.loans.active",
		metric.WithDescription("Number of books currently issued"),
		metric.WithUnit("{loans}"),
	)
	if err != nil {
		return fmt.Errorf("creating active loans gauge: %w", err)
	}

	e.overdueGauge, err = e.meter.Int64ObservableGauge(
		"library.loans.overdue",
		metric.WithDescription("Number of issued books past their due date"),
		metric.WithUnit("{loans}"),
	)
	if err != nil {
		return fmt.Errorf("creating overdue loans gauge: %w", err)
	}

	e.availableGauge, err = e.meter.Int64ObservableGauge(
		"library.copies.available",
		metric.WithDescription("Number of copies on the shelf"),
		metric.WithUnit("{copies}"),
	)
	if err != nil {
		return fmt.Errorf("creating available copies gauge: %w", err)
	}

	_, err = e.meter.RegisterCallback(e.observeLibrary, e.activeLoansGauge, e.overdueGauge, e.availableGauge)
	if err != nil {
		return fmt.Errorf("registering library callback: %w", err)
	}
	return nil
}

// observeLibrary queries the collector once per collection for all three gauges.
func (e *Exporter) observeLibrary(ctx context.Context, o metric.Observer) error {
	stats, err := e.collector.LibraryStats(ctx)
	if err != nil {
		return err
	}
	o.ObserveInt64(e.activeLoansGauge, stats.ActiveLoans)
	o.ObserveInt64(e.overdueGauge, stats.OverdueLoans)
	o.ObserveInt64(e.availableGauge, stats.AvailableCopies)
	return nil
}

// RecordRequest implements httpx.RequestRecorder.
func (e *Exporter) RecordRequest(ctx context.Context, method, route string, status int, d time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.route", route),
		attribute.Int("http.status_code", status),
	)
	e.requestCounter.Add(ctx, 1, attrs)
	e.requestDuration.Record(ctx, float64(d.Microseconds())/1000, attrs)
}

// Handler serves the Prometheus text exposition.
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}

// Shutdown gracefully shuts down the meter provider
func (e *Exporter) Shutdown(ctx context.Context) error {
	if e.meterProvider != nil {
		return e.meterProvider.Shutdown(ctx)
	}
	return nil
}
