package runtime

import (
	"context"
	"sync"
	"time"

	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/ports"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// FetchRequest describes one props aggregation.
type FetchRequest struct {
	Kind     ports.LoaderKind
	Resolver ports.ModuleResolver
	// Context is handed to every loader untouched (request handles, build options...).
	Context any
	Layout  *domain.LayoutServiceData
}

// FetchComponentProps invokes the loader of every rendering that has a uid and whose
// component exposes a loader of the requested kind, and collects the results by uid.
//
// All loaders are started without waiting on each other and the call returns once every
// one of them has settled. A failing (or panicking) loader is recorded as a
// domain.ComponentPropsError under its uid and never stops the others. Results are merged
// in completion order, so duplicate uids keep whichever loader finished last.
//
// The layout is only read.
func (e *Engine) FetchComponentProps(ctx context.Context, req FetchRequest) (domain.ComponentPropsCollection, error) {
	if req.Resolver == nil {
		return nil, ErrNoResolver
	}

	props := make(domain.ComponentPropsCollection)
	placeholders := req.Layout.Placeholders()
	if placeholders.Len() == 0 {
		return props, nil
	}

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	if e.maxConcurrency > 0 {
		g.SetLimit(e.maxConcurrency)
	}

	dispatched := 0
	WalkPlaceholders(placeholders, func(c *domain.ComponentRendering) (*domain.ComponentRendering, bool) {
		if c.UID == "" {
			return c, true
		}
		module, _ := req.Resolver.Module(c.ComponentName)
		load := module.Loader(req.Kind)
		if load == nil {
			return c, true
		}

		dispatched++
		g.Go(func() error {
			value := e.invokeLoader(ctx, req, c, load)

			mu.Lock()
			props[c.UID] = value
			mu.Unlock()
			return nil
		})
		return c, true
	})

	// Tasks never return an error; failures are part of the collection.
	_ = g.Wait()

	e.logger.Debug("component props fetched",
		"kind", req.Kind,
		"loaders", dispatched,
		"results", len(props),
	)
	return props, nil
}

// invokeLoader runs one loader and returns either its value or the shaped failure.
func (e *Engine) invokeLoader(ctx context.Context, req FetchRequest, c *domain.ComponentRendering, load ports.Loader) any {
	ctx, span := e.tracer.Start(ctx, "canopy.loader",
		trace.WithAttributes(
			attribute.String("canopy.uid", c.UID),
			attribute.String("canopy.component", c.ComponentName),
			attribute.String("canopy.kind", string(req.Kind)),
		),
	)
	defer span.End()

	start := time.Now()
	if e.hooks.OnLoaderCall != nil {
		e.hooks.OnLoaderCall(ctx, &domain.LoaderEvent{
			EventBase:     domain.EventBase{Timestamp: start, Type: domain.EventLoaderCall},
			UID:           c.UID,
			ComponentName: c.ComponentName,
			Kind:          string(req.Kind),
		})
	}

	data, err := callLoader(ctx, load, c, req.Context, req.Layout)

	event := &domain.LoaderEvent{
		EventBase:     domain.EventBase{Timestamp: time.Now(), Type: domain.EventLoaderReturn},
		UID:           c.UID,
		ComponentName: c.ComponentName,
		Kind:          string(req.Kind),
		Duration:      time.Since(start),
	}

	var result any = data
	if err != nil {
		msg := FormatLoaderError(c.UID, err)
		result = domain.ComponentPropsError{Error: msg}

		event.IsError = true
		event.Error = msg
		span.RecordError(err)
		span.SetStatus(codes.Error, msg)
		e.logger.Warn("component props loader failed",
			"uid", c.UID,
			"component", c.ComponentName,
			"kind", req.Kind,
			"error", err,
		)
	}

	if e.hooks.OnLoaderReturn != nil {
		e.hooks.OnLoaderReturn(ctx, event)
	}
	return result
}

// callLoader turns a loader panic into an error so it stays local to its rendering.
func callLoader(ctx context.Context, load ports.Loader, c *domain.ComponentRendering, lctx any, layout *domain.LayoutServiceData) (data any, err error) {
	defer func() {
		if r := recover(); r != nil {
			data = nil
			err = &LoaderPanicError{Value: r}
		}
	}()
	return load(ctx, c, lctx, layout)
}
