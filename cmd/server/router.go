package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/linnemanlabs/go-core/httpmw"
	"github.com/linnemanlabs/go-core/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/linnemanlabs/tanggap/internal/postgres"
)

const (
	healthyPath = "/-/healthy"
	readyPath   = "/-/ready"

	// complaint payloads are small, photos are not accepted
	maxRequestBody = 64 << 10
)

// apiHandlerOptions are the pieces of the public handler chain owned by run.
type apiHandlerOptions struct {
	// mount registers health and complaint routes on the router.
	mount func(chi.Router)
	// instrument wraps the handler with prometheus http metrics.
	instrument       func(http.Handler) http.Handler
	trustedProxyHops int
}

// newAPIHandler builds the router and the middleware chain for the public
// listener. Wrappers added later see the request first.
func newAPIHandler(L log.Logger, o apiHandlerOptions) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Compress(5, "application/json"))
	r.Use(httpmw.AnnotateHTTPRoute)
	r.Use(tagHTTPMethod)
	r.Use(httpmw.AccessLog())
	r.Use(httpmw.MaxBody(maxRequestBody))
	o.mount(r)

	var h http.Handler = r
	h = httpmw.WithLogger(L)(h)
	h = httpmw.TraceResponseHeaders("X-Trace-Id", "X-Span-Id")(h)
	h = otelhttp.NewHandler(h, "http.server",
		otelhttp.WithFilter(func(r *http.Request) bool {
			return r.URL.Path != healthyPath && r.URL.Path != readyPath
		}),
		// renamed to the chi route pattern by AnnotateHTTPRoute
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
		otelhttp.WithPublicEndpointFn(func(_ *http.Request) bool { return true }),
	)
	if o.instrument != nil {
		h = o.instrument(h)
	}
	h = httpmw.ClientIPWithOptions(httpmw.ClientIPOptions{
		TrustedHops: o.trustedProxyHops,
	})(h)
	h = httpmw.RequestID("X-Request-Id")(h)
	h = httpmw.Recover(L, nil)(h)
	h = httpmw.SecurityHeaders(h)
	return h
}

// tagHTTPMethod stores the request method for the db query histogram.
func tagHTTPMethod(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(postgres.WithHTTPMethod(r.Context(), r.Method)))
	})
}
