package telemetry

import (
	"context"
	"net/http"
	"time"

	"github.com/certifiedcode/memberguard/internal/logger"
	"github.com/certifiedcode/memberguard/internal/metrics"
	"github.com/go-resty/resty/v2"
	jsoniter "github.com/json-iterator/go"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// HTTPClientConfig holds configuration for an instrumented HTTP client
type HTTPClientConfig struct {
	ServiceName string        // external service label, e.g. "wix", "isfakemail"
	BaseURL     string        // only used by NewRestyClient
	Timeout     time.Duration // defaults to 30s
}

// NewInstrumentedHTTPClient creates an HTTP client whose requests are traced
func NewInstrumentedHTTPClient(cfg HTTPClientConfig) *http.Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &http.Client{
		Timeout: cfg.Timeout,
		Transport: otelhttp.NewTransport(
			http.DefaultTransport,
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				return cfg.ServiceName + " " + r.Method + " " + r.URL.Path
			}),
			otelhttp.WithSpanOptions(trace.WithSpanKind(trace.SpanKindClient)),
		),
	}
}

// NewRestyClient wraps an instrumented client in resty and records
// per-service call counts and latency.
func NewRestyClient(cfg HTTPClientConfig) *resty.Client {
	return NewRestyClientWith(NewInstrumentedHTTPClient(cfg), cfg)
}

// NewRestyClientWith is NewRestyClient over a caller supplied client,
// e.g. one whose transport injects OAuth2 tokens.
func NewRestyClientWith(hc *http.Client, cfg HTTPClientConfig) *resty.Client {
	service := cfg.ServiceName
	client := resty.NewWithClient(hc).
		SetHeader("Accept", "application/json").
		SetJSONMarshaler(jsoniter.Marshal).
		SetJSONUnmarshaler(jsoniter.Unmarshal)
	if cfg.BaseURL != "" {
		client.SetBaseURL(cfg.BaseURL)
	}

	client.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		metrics.RecordExternalCall(service, resp.StatusCode(), resp.Time())
		return nil
	})
	client.OnError(func(req *resty.Request, err error) {
		if resp, ok := err.(*resty.ResponseError); ok && resp.Response != nil {
			return
		}
		metrics.RecordExternalCall(service, 0, time.Since(req.Time))
		logger.Log.Debug("External call failed",
			zap.String("service", service),
			zap.String("url", req.URL),
			zap.Error(err),
		)
	})
	return client
}

// ExternalServiceCallAttrs holds attributes for external service calls
type ExternalServiceCallAttrs struct {
	Service    string // wix, isfakemail, sendpulse, openai, gemini, ses
	Operation  string
	InstanceID string
	ResourceID string
}

// TraceExternalCall creates a span for an external service call with standard attributes
func TraceExternalCall(ctx context.Context, attrs ExternalServiceCallAttrs) (context.Context, trace.Span) {
	ctx, span := otel.Tracer("external-api").Start(ctx, attrs.Service+"."+attrs.Operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("external.service", attrs.Service),
			attribute.String("external.operation", attrs.Operation),
		),
	)

	if attrs.InstanceID != "" {
		span.SetAttributes(attribute.String("wix.instance_id", attrs.InstanceID))
	}
	if attrs.ResourceID != "" {
		span.SetAttributes(attribute.String("external.resource_id", attrs.ResourceID))
	}
	return ctx, span
}

// EndExternalCall records the outcome on span and ends it
func EndExternalCall(span trace.Span, statusCode int, err error) {
	if statusCode > 0 {
		span.SetAttributes(attribute.Int("http.status_code", statusCode))
	}
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
