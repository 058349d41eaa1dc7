package signoff

import (
	"github.com/signoffhq/signoff/extension"
	"github.com/signoffhq/signoff/service/approval"
	"github.com/signoffhq/signoff/service/event"
	"github.com/signoffhq/signoff/service/history"
	"github.com/signoffhq/signoff/service/messaging"
	"github.com/signoffhq/signoff/tracing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Option customises the façade service.
type Option func(s *Service)

// WithConfig supplies the full configuration.
func WithConfig(config *Config) Option {
	return func(s *Service) { s.config = config }
}

// WithApprovalService replaces the default in-memory coordinator.
func WithApprovalService(svc approval.Service) Option {
	return func(s *Service) { s.coordinator = svc }
}

// WithHistoryService replaces the default history store.
func WithHistoryService(svc *history.Service) Option {
	return func(s *Service) { s.history = svc }
}

// WithEventService replaces the default typed notification service.
func WithEventService(service *event.Service) Option {
	return func(s *Service) { s.events = service }
}

// WithQueueVendor selects the notification queue vendor.
func WithQueueVendor(vendor messaging.Vendor) Option {
	return func(s *Service) { s.queueVendor = vendor }
}

// WithClassifiers registers category classifiers ahead of the built-in
// keyword classifier fallback.
func WithClassifiers(classifiers ...extension.Classifier) Option {
	return func(s *Service) { s.classifiers = append(s.classifiers, classifiers...) }
}

// WithTracing configures OpenTelemetry tracing for the service. If outputFile
// is empty the stdout exporter is used; otherwise traces are written to the
// supplied file path. Safe to call multiple times; the first successful
// initialisation wins.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		_ = tracing.Init(serviceName, serviceVersion, outputFile)
	}
}

// WithTracingExporter configures OpenTelemetry tracing using a custom
// SpanExporter, for example OTLP, Jaeger or Zipkin.
func WithTracingExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		_ = tracing.InitWithExporter(serviceName, serviceVersion, exporter)
	}
}
