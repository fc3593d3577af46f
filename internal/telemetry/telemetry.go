// Package telemetry sets up OpenTelemetry metrics for sfbilling.
package telemetry

import (
	"context"
	"fmt"
	"net/http"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

const meterName = "github.com/sfbilling/sfbilling"

// Config controls whether and how telemetry is set up.
type Config struct {
	ServiceName string
	Enabled     bool
}

// Providers holds the initialized telemetry providers.
// When telemetry is disabled, Meter is a no-op meter and Handler serves nothing useful.
type Providers struct {
	Meter metric.Meter

	serviceName   string
	enabled       bool
	meterProvider *sdkmetric.MeterProvider
	registry      *prom.Registry
}

// Init initializes the metrics pipeline: an OpenTelemetry meter provider that exports
// to a dedicated Prometheus registry.
func Init(_ context.Context, c *Config) (*Providers, error) {
	p := &Providers{
		serviceName: c.ServiceName,
		enabled:     c.Enabled,
	}
	if !c.Enabled {
		p.Meter = noop.NewMeterProvider().Meter(meterName)
		return p, nil
	}

	p.registry = prom.NewRegistry()
	exporter, err := otelprom.New(otelprom.WithRegisterer(p.registry))
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	res := resource.NewSchemaless(attribute.String("service.name", c.ServiceName))
	p.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
		sdkmetric.WithResource(res),
	)
	p.Meter = p.meterProvider.Meter(meterName)

	return p, nil
}

// IsEnabled returns true if telemetry was initialized with real providers.
func (p *Providers) IsEnabled() bool {
	return p != nil && p.enabled
}

// ServiceName returns the service name telemetry is reported under.
func (p *Providers) ServiceName() string {
	return p.serviceName
}

// Handler returns the HTTP handler that serves the Prometheus metrics.
func (p *Providers) Handler() http.Handler {
	if p.registry == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// Shutdown flushes and stops the providers.
func (p *Providers) Shutdown(ctx context.Context) error {
	if p == nil || p.meterProvider == nil {
		return nil
	}
	return p.meterProvider.Shutdown(ctx)
}
