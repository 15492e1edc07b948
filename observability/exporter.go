package observability

// https://opentelemetry.io/docs/languages/go/exporters/

import (
	"context"
	"fmt"
	"io"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/multierr"
)

type MetricsExporterType string

const (
	NoneMetrics       MetricsExporterType = "none"
	StdoutMetrics     MetricsExporterType = "stdout"
	PrometheusMetrics MetricsExporterType = "prometheus"
)

// MetricsExporterTypes lists the accepted --metrics values.
func MetricsExporterTypes() []string {
	return []string{string(NoneMetrics), string(StdoutMetrics), string(PrometheusMetrics)}
}

// ShutdownFunc flushes the pending metrics and releases the provider.
type ShutdownFunc func(ctx context.Context) error

func noopShutdown(context.Context) error { return nil }

// NewMetricsExporter installs the global meter provider for typ. Metrics are
// written into w, never into the directive output stream.
func NewMetricsExporter(typ MetricsExporterType, w io.Writer) (ShutdownFunc, error) {
	switch typ {
	case NoneMetrics, "":
		return noopShutdown, nil
	case StdoutMetrics:
		return newConsoleMetricsExporter(w, time.Minute, 5*time.Second)
	case PrometheusMetrics:
		return newPrometheusMetricsExporter(w)
	default:
	}
	return nil, fmt.Errorf("[observability] unknown metrics exporter %q", typ)
}

// Serves for test/dev environment. The periodic reader exports once more on
// shutdown, so a short session still gets one report.
func newConsoleMetricsExporter(w io.Writer, interval, timeout time.Duration) (ShutdownFunc, error) {
	exporter, err := stdoutmetric.New(
		stdoutmetric.WithWriter(w),
		stdoutmetric.WithoutTimestamps(),
	)
	if err != nil {
		return nil, err
	}
	mp := metric.NewMeterProvider(metric.WithReader(metric.NewPeriodicReader(
		exporter,
		metric.WithInterval(interval),
		metric.WithTimeout(timeout),
	)))
	otel.SetMeterProvider(mp)
	return mp.Shutdown, nil
}

// There is no HTTP endpoint to scrape, the registry is written out in the
// text exposition format on shutdown.
func newPrometheusMetricsExporter(w io.Writer) (ShutdownFunc, error) {
	registry := promclient.NewRegistry()
	exporter, err := prometheus.New(
		prometheus.WithRegisterer(registry),
		prometheus.WithoutScopeInfo(),
	)
	if err != nil {
		return nil, err
	}
	mp := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(mp)
	return func(ctx context.Context) (err error) {
		families, gatherErr := registry.Gather()
		err = multierr.Append(err, gatherErr)
		for _, family := range families {
			_, writeErr := expfmt.MetricFamilyToText(w, family)
			err = multierr.Append(err, writeErr)
		}
		return multierr.Append(err, mp.Shutdown(ctx))
	}, nil
}
