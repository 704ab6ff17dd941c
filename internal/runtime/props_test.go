package runtime

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/dsl"
	"github.com/aretw0/canopy/pkg/ports"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/goleak"
)

func propsModules(kind ports.LoaderKind) map[string]*ports.ComponentModule {
	module := func(l ports.Loader) *ports.ComponentModule {
		if kind == ports.LoaderStatic {
			return &ports.ComponentModule{GetStaticProps: l}
		}
		return &ports.ComponentModule{GetServerSideProps: l}
	}
	return map[string]*ports.ComponentModule{
		"namex11":           module(resolved("x11Data")),
		"namex14":           module(rejected(errors.New("whoops"))),
		"MyCustomComponent": module(resolved("myCustomComponentData")),
		"namex24":           module(resolved("x24Data")),
		"namex23":           module(resolved("unused")),
	}
}

func expectedProps() domain.ComponentPropsCollection {
	return domain.ComponentPropsCollection{
		"x11":  "x11Data",
		"x14":  domain.ComponentPropsError{Error: "Error during preload data for component x14: whoops"},
		"x16":  "myCustomComponentData",
		"x161": "myCustomComponentData",
		"x23":  "myCustomComponentData",
		"x24":  "x24Data",
	}
}

func TestFetchComponentProps_CollectsByUID(t *testing.T) {
	defer goleak.VerifyNone(t)

	for _, kind := range []ports.LoaderKind{ports.LoaderServerSide, ports.LoaderStatic} {
		t.Run(string(kind), func(t *testing.T) {
			engine := NewEngine()
			props, err := engine.FetchComponentProps(context.Background(), FetchRequest{
				Kind:     kind,
				Resolver: resolverOf(propsModules(kind)),
				Layout:   propsLayout(),
			})
			require.NoError(t, err)
			if diff := cmp.Diff(expectedProps(), props); diff != "" {
				t.Errorf("props mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFetchComponentProps_IgnoresOtherKind(t *testing.T) {
	engine := NewEngine()
	props, err := engine.FetchComponentProps(context.Background(), FetchRequest{
		Kind:     ports.LoaderStatic,
		Resolver: resolverOf(propsModules(ports.LoaderServerSide)),
		Layout:   propsLayout(),
	})
	require.NoError(t, err)
	assert.Empty(t, props)
}

func TestFetchComponentProps_EmptyInputs(t *testing.T) {
	engine := NewEngine()
	resolver := resolverOf(propsModules(ports.LoaderServerSide))

	for name, layout := range map[string]*domain.LayoutServiceData{
		"nil layout":      nil,
		"no route":        {},
		"no placeholders": {Sitecore: domain.LayoutServiceContextData{Route: &domain.RouteData{Name: "r"}}},
	} {
		t.Run(name, func(t *testing.T) {
			props, err := engine.FetchComponentProps(context.Background(), FetchRequest{
				Kind:     ports.LoaderServerSide,
				Resolver: resolver,
				Layout:   layout,
			})
			require.NoError(t, err)
			assert.NotNil(t, props)
			assert.Empty(t, props)
		})
	}
}

func TestFetchComponentProps_RequiresResolver(t *testing.T) {
	_, err := NewEngine().FetchComponentProps(context.Background(), FetchRequest{
		Kind:   ports.LoaderServerSide,
		Layout: propsLayout(),
	})
	assert.ErrorIs(t, err, ErrNoResolver)
}

func TestFetchComponentProps_SkipsRenderingsWithoutUID(t *testing.T) {
	var calls atomic.Int32
	modules := map[string]*ports.ComponentModule{
		"MyCustomComponent": {GetServerSideProps: func(ctx context.Context, c *domain.ComponentRendering, _ any, _ *domain.LayoutServiceData) (any, error) {
			calls.Add(1)
			assert.NotEmpty(t, c.UID)
			return c.UID, nil
		}},
	}

	props, err := NewEngine().FetchComponentProps(context.Background(), FetchRequest{
		Kind:     ports.LoaderServerSide,
		Resolver: resolverOf(modules),
		Layout:   propsLayout(),
	})
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
	assert.Len(t, props, 3)
}

func TestFetchComponentProps_PassesContextAndLayout(t *testing.T) {
	layout := propsLayout()
	type buildContext struct{ preview bool }
	lctx := &buildContext{preview: true}

	modules := map[string]*ports.ComponentModule{
		"namex11": {GetServerSideProps: func(ctx context.Context, c *domain.ComponentRendering, got any, gotLayout *domain.LayoutServiceData) (any, error) {
			assert.Same(t, lctx, got)
			assert.Same(t, layout, gotLayout)
			return "ok", nil
		}},
	}

	props, err := NewEngine().FetchComponentProps(context.Background(), FetchRequest{
		Kind:     ports.LoaderServerSide,
		Resolver: resolverOf(modules),
		Context:  lctx,
		Layout:   layout,
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", props["x11"])
}

func TestFetchComponentProps_PanicIsLocal(t *testing.T) {
	modules := map[string]*ports.ComponentModule{
		"namex11": {GetServerSideProps: func(context.Context, *domain.ComponentRendering, any, *domain.LayoutServiceData) (any, error) {
			panic("kaboom")
		}},
		"namex24": {GetServerSideProps: resolved("x24Data")},
	}

	props, err := NewEngine().FetchComponentProps(context.Background(), FetchRequest{
		Kind:     ports.LoaderServerSide,
		Resolver: resolverOf(modules),
		Layout:   propsLayout(),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ComponentPropsError{Error: "Error during preload data for component x11: kaboom"}, props["x11"])
	assert.Equal(t, "x24Data", props["x24"])
}

func TestFetchComponentProps_LeavesLayoutUntouched(t *testing.T) {
	layout := propsLayout()
	before := toJSON(t, layout)

	_, err := NewEngine().FetchComponentProps(context.Background(), FetchRequest{
		Kind:     ports.LoaderServerSide,
		Resolver: resolverOf(propsModules(ports.LoaderServerSide)),
		Layout:   layout,
	})
	require.NoError(t, err)
	assert.Equal(t, before, toJSON(t, layout))
}

func TestFetchComponentProps_LoadersRunConcurrently(t *testing.T) {
	const loaders = 6 // x11, x14, x16, x161, x23, x24

	var started sync.WaitGroup
	started.Add(loaders)
	allStarted := make(chan struct{})
	go func() {
		started.Wait()
		close(allStarted)
	}()

	barrier := func(ctx context.Context, c *domain.ComponentRendering, _ any, _ *domain.LayoutServiceData) (any, error) {
		started.Done()
		select {
		case <-allStarted:
			return c.UID, nil
		case <-time.After(2 * time.Second):
			return nil, errors.New("loaders were serialized")
		}
	}
	modules := map[string]*ports.ComponentModule{}
	for name := range propsModules(ports.LoaderServerSide) {
		modules[name] = &ports.ComponentModule{GetServerSideProps: barrier}
	}

	props, err := NewEngine().FetchComponentProps(context.Background(), FetchRequest{
		Kind:     ports.LoaderServerSide,
		Resolver: resolverOf(modules),
		Layout:   propsLayout(),
	})
	require.NoError(t, err)
	require.Len(t, props, loaders)
	for uid, v := range props {
		assert.Equal(t, uid, v)
	}
}

func TestFetchComponentProps_MaxConcurrency(t *testing.T) {
	var inFlight, peak atomic.Int32
	slow := func(ctx context.Context, c *domain.ComponentRendering, _ any, _ *domain.LayoutServiceData) (any, error) {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		return c.UID, nil
	}
	modules := map[string]*ports.ComponentModule{}
	for name := range propsModules(ports.LoaderServerSide) {
		modules[name] = &ports.ComponentModule{GetServerSideProps: slow}
	}

	props, err := NewEngine(WithMaxConcurrency(2)).FetchComponentProps(context.Background(), FetchRequest{
		Kind:     ports.LoaderServerSide,
		Resolver: resolverOf(modules),
		Layout:   propsLayout(),
	})
	require.NoError(t, err)
	assert.Len(t, props, 6)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestFetchComponentProps_HooksAndSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	var (
		mu      sync.Mutex
		calls   []string
		returns = map[string]*domain.LoaderEvent{}
	)
	hooks := domain.LifecycleHooks{
		OnLoaderCall: func(_ context.Context, e *domain.LoaderEvent) {
			mu.Lock()
			defer mu.Unlock()
			calls = append(calls, e.UID)
		},
		OnLoaderReturn: func(_ context.Context, e *domain.LoaderEvent) {
			mu.Lock()
			defer mu.Unlock()
			returns[e.UID] = e
		},
	}

	engine := NewEngine(WithTracerProvider(tp), WithLifecycleHooks(hooks))
	_, err := engine.FetchComponentProps(context.Background(), FetchRequest{
		Kind:     ports.LoaderServerSide,
		Resolver: resolverOf(propsModules(ports.LoaderServerSide)),
		Layout:   propsLayout(),
	})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"x11", "x14", "x16", "x161", "x23", "x24"}, calls)
	require.Len(t, returns, 6)
	assert.True(t, returns["x14"].IsError)
	assert.Equal(t, "Error during preload data for component x14: whoops", returns["x14"].Error)
	assert.False(t, returns["x11"].IsError)
	assert.Equal(t, domain.EventLoaderReturn, returns["x11"].Type)

	spans := recorder.Ended()
	require.Len(t, spans, 6)
	failed := 0
	for _, s := range spans {
		assert.Equal(t, "canopy.loader", s.Name())
		if s.Status().Code == codes.Error {
			failed++
		}
	}
	assert.Equal(t, 1, failed)
}

func TestFetchComponentProps_DuplicateUIDLastWriteWins(t *testing.T) {
	b := dsl.New("home")
	b.Placeholder("main").
		Add(dsl.Component("First").UID("dup")).
		Add(dsl.Component("Second").UID("dup"))

	echoName := func(ctx context.Context, c *domain.ComponentRendering, _ any, _ *domain.LayoutServiceData) (any, error) {
		return c.ComponentName, nil
	}
	props, err := NewEngine().FetchComponentProps(context.Background(), FetchRequest{
		Kind: ports.LoaderServerSide,
		Resolver: resolverOf(map[string]*ports.ComponentModule{
			"First":  {GetServerSideProps: echoName},
			"Second": {GetServerSideProps: echoName},
		}),
		Layout: b.MustBuild(),
	})
	require.NoError(t, err)
	require.Len(t, props, 1)
	assert.Contains(t, []any{"First", "Second"}, props["dup"])
}

func TestFormatLoaderError(t *testing.T) {
	tests := []struct {
		name    string
		failure any
		want    string
	}{
		{"error", errors.New("whoops"), "Error during preload data for component x1: whoops"},
		{"string", "plain", "Error during preload data for component x1: plain"},
		{"number", 42, "Error during preload data for component x1: 42"},
		{"stringer", fmtStringer("described"), "Error during preload data for component x1: described"},
		{"panic", &LoaderPanicError{Value: errors.New("inner")}, "Error during preload data for component x1: inner"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatLoaderError("x1", tt.failure))
		})
	}
}

type fmtStringer string

func (s fmtStringer) String() string { return string(s) }
