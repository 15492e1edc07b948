package observability

import (
	"context"
	"runtime"
	"strings"
	"sync"

	"github.com/samber/lo"
	otelruntime "go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	AppStatsName       = "xrbt/app"
	DirectiveStatsName = "xrbt/directive"
)

var (
	once sync.Once
	app  *appStats
)

func statsName(prefix, name string) string {
	builder := &strings.Builder{}
	builder.WriteString(prefix)
	builder.WriteString("/")
	if len(strings.TrimSpace(name)) > 0 {
		builder.WriteString(name)
	} else {
		builder.WriteString("default")
	}
	return builder.String()
}

type appStats struct {
	goroutines metric.Int64ObservableUpDownCounter
	processes  metric.Int64ObservableUpDownCounter
}

// InitAppStats registers the process gauges and the Go runtime
// instrumentation against the global meter provider, once per process.
func InitAppStats(name string) (err error) {
	once.Do(func() {
		meter := otel.Meter(
			statsName(AppStatsName, name),
			metric.WithInstrumentationVersion(otelruntime.Version()),
		)
		app = &appStats{
			goroutines: lo.Must[metric.Int64ObservableUpDownCounter](meter.Int64ObservableUpDownCounter(
				"app.core.goroutines",
				metric.WithDescription(`The application goroutines' info.`),
				metric.WithInt64Callback(func(ctx context.Context, ob metric.Int64Observer) error {
					ob.Observe(int64(runtime.NumGoroutine()))
					return nil
				}),
			)),
			processes: lo.Must[metric.Int64ObservableUpDownCounter](meter.Int64ObservableUpDownCounter(
				"app.core.processes",
				metric.WithDescription(`The application processes' info.`),
				metric.WithInt64Callback(func(ctx context.Context, ob metric.Int64Observer) error {
					ob.Observe(int64(runtime.GOMAXPROCS(0)))
					return nil
				}),
			)),
		}
		err = otelruntime.Start()
	})
	return err
}

// DirectiveStats counts the executed directives per verb. Methods are safe
// on a nil receiver.
type DirectiveStats struct {
	directiveCount metric.Int64Counter
	invalidCount   metric.Int64Counter
}

func (stats *DirectiveStats) RecordDirective(verb string) {
	if stats == nil {
		return
	}
	stats.directiveCount.Add(context.Background(), 1,
		metric.WithAttributeSet(attribute.NewSet(attribute.String("directive.verb", verb))),
	)
}

func (stats *DirectiveStats) RecordInvalid(verb string) {
	if stats == nil {
		return
	}
	stats.invalidCount.Add(context.Background(), 1,
		metric.WithAttributeSet(attribute.NewSet(attribute.String("directive.verb", verb))),
	)
}

func NewDirectiveStats(name string) *DirectiveStats {
	meter := otel.Meter(statsName(DirectiveStatsName, name))
	return &DirectiveStats{
		directiveCount: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"directive.count",
			metric.WithDescription("The number of directives read from the input."),
		)),
		invalidCount: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"directive.invalid.count",
			metric.WithDescription("The number of directives answered with Invalid Operation."),
		)),
	}
}
