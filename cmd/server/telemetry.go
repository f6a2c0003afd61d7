package main

import (
	"context"

	otelpyroscope "github.com/grafana/otel-profiling-go"
	"github.com/linnemanlabs/go-core/log"
	"github.com/linnemanlabs/go-core/otelx"
	"github.com/linnemanlabs/go-core/prof"
	v "github.com/linnemanlabs/go-core/version"
	"go.opentelemetry.io/otel"
)

// telemetry holds the stop hooks for profiling and tracing.
type telemetry struct {
	stopProf  func()
	stopTrace func(context.Context) error
	profiling bool
}

// startTelemetry starts pyroscope and otel. Failures are logged and the
// service keeps running without them.
func startTelemetry(ctx context.Context, L log.Logger, s *settings, profileTags map[string]string) *telemetry {
	t := &telemetry{}

	profOpts := s.prof.ToOptions()
	profOpts.AppName = v.AppName
	profOpts.Tags = profileTags
	stopProf, err := prof.Start(ctx, profOpts)
	if err != nil {
		L.Error(ctx, err, "pyroscope start failed", "pyro_server", s.prof.PyroServer)
	}
	t.stopProf = stopProf
	t.profiling = err == nil && s.prof.EnablePyroscope

	traceOpts := s.trace.ToOptions()
	traceOpts.Service = v.AppName
	traceOpts.Component = v.Component
	traceOpts.Version = v.Version
	stopTrace, err := otelx.Init(ctx, traceOpts)
	if err != nil {
		L.Error(ctx, err, "otel init failed")
	}
	t.stopTrace = stopTrace

	// span ids become pyroscope labels, traces link to flame graphs
	if t.profiling {
		otel.SetTracerProvider(otelpyroscope.NewTracerProvider(otel.GetTracerProvider()))
	}
	return t
}

func (t *telemetry) shutdownTracing(ctx context.Context) error {
	if t.stopTrace == nil {
		return nil
	}
	return t.stopTrace(ctx)
}

func (t *telemetry) stopProfiling() {
	if t.stopProf != nil {
		t.stopProf()
	}
}
