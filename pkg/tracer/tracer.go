// Copyright (c) 2026 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package tracer

import (
	"context"
	"strconv"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/sdk/resource"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const (
	_service = "pollrush"
)

type (
	// Config is the config for tracer
	Config struct {
		// ServiceName is the name of tracer service
		ServiceName string `yaml:"serviceName"`
		// EndPoint the jaeger collector endpoint, tracing is off when empty
		EndPoint string `yaml:"endpoint"`
		// InstanceID MUST be unique for each instance of the same service.namespace,service.name pair.
		InstanceID string `yaml:"instanceID"`
		// SamplingRatio takes a value in [0, 1]
		SamplingRatio string `yaml:"samplingRatio"`
	}

	// Option sets a field of Config
	Option func(*Config) error
)

// WithServiceName defines service name
func WithServiceName(name string) Option {
	return func(cfg *Config) error {
		cfg.ServiceName = name
		return nil
	}
}

// WithEndpoint defines the full URL to the jaeger collector
func WithEndpoint(endpoint string) Option {
	return func(cfg *Config) error {
		cfg.EndPoint = endpoint
		return nil
	}
}

// WithInstanceID defines the instance id
func WithInstanceID(id string) Option {
	return func(cfg *Config) error {
		cfg.InstanceID = id
		return nil
	}
}

// WithSamplingRatio defines the sampling ratio
func WithSamplingRatio(ratio string) Option {
	return func(cfg *Config) error {
		cfg.SamplingRatio = ratio
		return nil
	}
}

// NewProvider creates a tracer provider and installs it globally, it returns nil when no endpoint
// is configured
func NewProvider(opts ...Option) (*tracesdk.TracerProvider, error) {
	cfg := Config{ServiceName: _service}
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	if cfg.EndPoint == "" {
		return nil, nil
	}

	sampler := tracesdk.AlwaysSample()
	if cfg.SamplingRatio != "" {
		ratio, err := strconv.ParseFloat(cfg.SamplingRatio, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid sampling ratio %s", cfg.SamplingRatio)
		}
		sampler = tracesdk.ParentBased(tracesdk.TraceIDRatioBased(ratio))
	}
	exp, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(cfg.EndPoint)))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create jaeger exporter")
	}
	attrs := []attribute.KeyValue{attribute.String("service.name", cfg.ServiceName)}
	if cfg.InstanceID != "" {
		attrs = append(attrs, attribute.String("service.instance.id", cfg.InstanceID))
	}
	tp := tracesdk.NewTracerProvider(
		tracesdk.WithBatcher(exp),
		tracesdk.WithSampler(sampler),
		tracesdk.WithResource(resource.NewSchemaless(attrs...)),
	)
	otel.SetTracerProvider(tp)
	return tp, nil
}

// NewSpan starts a span from the global tracer provider
func NewSpan(ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return otel.Tracer(_service).Start(ctx, spanName, opts...)
}

// SpanFromContext returns the current span of ctx
func SpanFromContext(ctx context.Context) trace.Span {
	return trace.SpanFromContext(ctx)
}
