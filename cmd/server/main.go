// Tanggap is a citizen complaint intake and triage service.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"
	_ "time/tzdata" // Asia/Jakarta on minimal images

	"github.com/go-chi/chi/v5"
	"github.com/linnemanlabs/go-core/health"
	"github.com/linnemanlabs/go-core/httpserver"
	"github.com/linnemanlabs/go-core/log"
	"github.com/linnemanlabs/go-core/metrics"
	"github.com/linnemanlabs/go-core/opshttp"
	v "github.com/linnemanlabs/go-core/version"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/linnemanlabs/tanggap/internal/complaint"
	"github.com/linnemanlabs/tanggap/internal/complaintapi"
	"github.com/linnemanlabs/tanggap/internal/notify"
	"github.com/linnemanlabs/tanggap/internal/postgres"
)

const appName = "tanggap"
const component = "server"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "fatal error:", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	v.AppName = appName
	v.Component = component
	vi := v.Get()

	s, err := loadSettings(flag.CommandLine, os.Args[1:], os.Stderr)
	if err != nil {
		return err
	}
	if s.showVersion {
		fmt.Printf(
			"%s (%s) %s (commit=%s, commit_date=%s, build_id=%s, build_date=%s, go=%s, dirty=%v)\n",
			vi.AppName, vi.Component, vi.Version, vi.Commit, vi.CommitDate, vi.BuildId, vi.BuildDate, vi.GoVersion,
			vi.VCSDirty != nil && *vi.VCSDirty,
		)
		return nil
	}

	lg, err := log.New(s.log.ToOptions(v.AppName))
	if err != nil {
		return fmt.Errorf("logger init: %w", err)
	}
	defer func() { _ = lg.Sync() }()

	L := lg.With("component", vi.Component)
	ctx = log.WithContext(ctx, L)

	L.Info(ctx, "initializing application",
		"version", vi.Version,
		"commit", vi.Commit,
		"build_id", vi.BuildId,
		"build_date", vi.BuildDate,
		"go_version", vi.GoVersion,
		"api_port", s.app.APIPort,
		"ops_port", s.ops.Port,
		"classifier", s.app.Classifier,
		"time_zone", s.app.TimeZone,
		"enable_pyroscope", s.prof.EnablePyroscope,
		"enable_tracing", s.trace.EnableTracing,
		"trace_sample", s.trace.TraceSample,
		"otlp_endpoint", s.trace.OTLPEndpoint,
		"trusted_proxy_hops", s.mw.TrustedProxyHops,
	)

	// Components append themselves here as they start and are stopped in
	// reverse on the way out, whichever way run returns.
	var stoppers []stopper
	tel := startTelemetry(ctx, L, s, map[string]string{
		"app":       v.AppName,
		"component": v.Component,
		"version":   vi.Version,
		"commit":    vi.Commit,
		"build_id":  vi.BuildId,
		"source":    "lmlabs-go-agent",
	})
	stoppers = append(stoppers, stopper{"otel", tel.shutdownTracing})
	defer func() {
		slices.Reverse(stoppers)
		stopAll(L, time.Duration(s.app.ShutdownBudgetSeconds)*time.Second, stoppers)
		tel.stopProfiling()
		L.Info(context.Background(), "shutdown complete")
	}()

	m := metrics.New()
	m.SetBuildInfoFromVersion(v.AppName, component, &vi)
	m.SetProfilingActive(tel.profiling)

	complaintMetrics := complaint.NewMetrics(m.Registry())
	notifyMetrics := notify.NewMetrics(m.Registry())

	dbQueryDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tanggap_db_query_duration_seconds",
		Help:    "Duration of individual database queries.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "outcome"})
	m.Registry().MustRegister(dbQueryDuration)
	postgres.SetQueryObserver(postgres.QueryObserverFunc(
		func(_ context.Context, method, route, outcome string, dur time.Duration) {
			dbQueryDuration.WithLabelValues(method, route, outcome).Observe(dur.Seconds())
		},
	))

	store, closeStore, err := buildStore(ctx, &s.app)
	if err != nil {
		return err
	}
	stoppers = append(stoppers, stopper{"complaint store", func(context.Context) error {
		closeStore()
		return nil
	}})
	if s.app.DatabaseURL != "" {
		L.Info(ctx, "using postgres store")
	} else {
		L.Warn(ctx, "using in-memory store, complaints are lost on restart")
	}

	classifier, err := buildClassifier(&s.app, L)
	if err != nil {
		return err
	}

	notifier := buildNotifier(&s.app, L, notifyMetrics)
	if s.app.FonnteToken == "" {
		L.Warn(ctx, "fonnte token not configured, reporter notifications will fail")
	}
	if s.app.SlackWebhookURL != "" {
		L.Info(ctx, "slack mirror enabled")
	}

	loc, err := s.app.Location()
	if err != nil {
		return err
	}
	svc := complaint.NewService(store, classifier, notifier, L, complaintMetrics,
		complaint.WithLocation(loc), complaint.WithCountryCode(s.app.CountryCode))

	// readiness fails once shutdown starts so the load balancer drains us
	var gate health.ShutdownGate
	readiness := health.All(gate.Probe())
	liveness := health.Fixed(true, "")

	opsOpts := s.ops.ToOptions()
	opsOpts.Metrics = m.Handler()
	opsOpts.Health = liveness
	opsOpts.Readiness = readiness
	opsOpts.UseRecoverMW = true
	opsOpts.OnPanic = m.IncHttpPanic

	// ops listener is for internal monitoring only, opshttp refuses public
	// client ips and forwarded requests
	opsStop, err := opshttp.Start(ctx, L, opsOpts)
	if err != nil {
		L.Error(ctx, err, "failed to start ops http listener")
		return err
	}
	stoppers = append(stoppers, stopper{"ops http server", opsStop})

	api := complaintapi.New(L, svc, complaintapi.WithAdminToken(s.app.AdminToken))
	if s.app.AdminToken == "" {
		L.Warn(ctx, "admin routes are unauthenticated (no admin-token configured)")
	}
	h := newAPIHandler(L, apiHandlerOptions{
		mount: func(r chi.Router) {
			r.Get(healthyPath, health.HealthzHandler(liveness))
			r.Get(readyPath, health.ReadyzHandler(readiness))
			api.RegisterRoutes(r)
		},
		instrument:       m.Middleware,
		trustedProxyHops: s.mw.TrustedProxyHops,
	})

	apiOpts, err := s.http.ToOptions()
	if err != nil {
		L.Error(ctx, err, "invalid http config")
		return err
	}
	apiStop, err := httpserver.Start(ctx, fmt.Sprintf(":%d", s.app.APIPort), h, L, apiOpts)
	if err != nil {
		L.Error(ctx, err, "failed to start complaint api http listener")
		return err
	}
	stoppers = append(stoppers, stopper{"complaint api http server", apiStop})

	if err := notifySystemd(); err != nil {
		// not fatal, systemd times the unit out if it really needed this
		L.Warn(ctx, "failed to notify systemd of readiness", "error", err)
	}

	<-ctx.Done()
	L.Info(context.Background(), "shutdown signal received")

	gate.Set("draining")
	drain(L, time.Duration(s.app.DrainSeconds)*time.Second)
	return nil
}
