package canopy

import (
	"context"
	"log/slog"

	"github.com/aretw0/canopy/internal/logging"
	"github.com/aretw0/canopy/internal/metrics"
	"github.com/aretw0/canopy/internal/runtime"
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
)

// ErrNoResolver is returned by the props operations when no module resolver was configured.
var ErrNoResolver = runtime.ErrNoResolver

// Engine is the high-level entry point for the canopy library.
// It wraps the internal runtime and provides a simplified API for consumers.
type Engine struct {
	runtime        *runtime.Engine
	resolver       ports.ModuleResolver
	hooks          domain.LifecycleHooks
	logger         *slog.Logger
	tracerProvider trace.TracerProvider
	maxConcurrency int
	registerer     prometheus.Registerer
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithResolver sets how component names map to their loaders.
func WithResolver(r ports.ModuleResolver) Option {
	return func(e *Engine) {
		e.resolver = r
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithMaxConcurrency bounds the loaders in flight per props call. Zero means unbounded.
func WithMaxConcurrency(n int) Option {
	return func(e *Engine) {
		e.maxConcurrency = n
	}
}

// WithTracerProvider records a span per loader call on tp.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(e *Engine) {
		e.tracerProvider = tp
	}
}

// WithMetrics registers loader and personalization metrics with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(e *Engine) {
		e.registerer = reg
	}
}

// New creates an Engine.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logging.NewNop()
	}

	hooks := e.hooks
	if e.registerer != nil {
		collectors, err := metrics.New(e.registerer)
		if err != nil {
			return nil, err
		}
		hooks = collectors.Hooks(hooks)
	}

	runtimeOpts := []runtime.EngineOption{
		runtime.WithLogger(e.logger),
		runtime.WithLifecycleHooks(hooks),
		runtime.WithMaxConcurrency(e.maxConcurrency),
	}
	if e.tracerProvider != nil {
		runtimeOpts = append(runtimeOpts, runtime.WithTracerProvider(e.tracerProvider))
	}
	e.runtime = runtime.NewEngine(runtimeOpts...)
	return e, nil
}

// Resolver returns the configured module resolver, or nil.
func (e *Engine) Resolver() ports.ModuleResolver {
	return e.resolver
}

// FetchServerSideProps runs the server-side loader of every rendering in layout
// concurrently and returns their results keyed by rendering uid. reqCtx is handed to
// each loader unchanged. A failed loader yields a domain.ComponentPropsError under its
// uid rather than an error from this call.
func (e *Engine) FetchServerSideProps(ctx context.Context, layout *domain.LayoutServiceData, reqCtx any) (domain.ComponentPropsCollection, error) {
	return e.fetch(ctx, ports.LoaderServerSide, layout, reqCtx)
}

// FetchStaticProps is FetchServerSideProps for build-time loaders.
func (e *Engine) FetchStaticProps(ctx context.Context, layout *domain.LayoutServiceData, buildCtx any) (domain.ComponentPropsCollection, error) {
	return e.fetch(ctx, ports.LoaderStatic, layout, buildCtx)
}

func (e *Engine) fetch(ctx context.Context, kind ports.LoaderKind, layout *domain.LayoutServiceData, lctx any) (domain.ComponentPropsCollection, error) {
	return e.runtime.FetchComponentProps(ctx, runtime.FetchRequest{
		Kind:     kind,
		Resolver: e.resolver,
		Context:  lctx,
		Layout:   layout,
	})
}

// Personalize rewrites layout in place for segment: renderings hidden for the segment
// are removed, renderings with a variant for it are replaced, and the rest are kept.
// Use layout.Clone first to keep the original.
func (e *Engine) Personalize(layout *domain.LayoutServiceData, segment string) {
	e.runtime.Personalize(layout, segment)
}
