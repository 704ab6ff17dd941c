// Package editing moves editing snapshots between the editor host and the preview
// renderer through the editing data API.
package editing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"github.com/aretw0/canopy/internal/logging"
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/ports"
	"github.com/google/uuid"
)

const (
	// DefaultAPIRoute is where the editing data API is mounted. [key] is replaced per snapshot.
	DefaultAPIRoute = "/api/editing/data/[key]"
	// QueryParamEditingSecret carries the shared secret on every API call.
	QueryParamEditingSecret = "secret"
	// SecretEnv is read when no secret was configured.
	SecretEnv = "JSS_EDITING_SECRET"

	keyPlaceholder = "[key]"
)

var (
	// ErrInvalidAPIRoute is returned when the API route has no [key] segment.
	ErrInvalidAPIRoute = errors.New("editing data api route must contain [key]")
	// ErrMissingSecret is returned when no editing secret is configured.
	ErrMissingSecret = errors.New("editing secret is not configured")
)

// Service stores and retrieves editing snapshots through the editing data API.
type Service struct {
	fetcher  ports.DataFetcher
	apiRoute string
	secret   string
	keyGen   ports.KeyGenerator
	logger   *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithDataFetcher sets the HTTP client. Defaults to an HTTPFetcher.
func WithDataFetcher(f ports.DataFetcher) Option {
	return func(s *Service) {
		s.fetcher = f
	}
}

// WithAPIRoute sets the API route template; it must contain [key].
func WithAPIRoute(route string) Option {
	return func(s *Service) {
		s.apiRoute = route
	}
}

// WithSecret sets the shared secret. Without it, JSS_EDITING_SECRET is read on every call.
func WithSecret(secret string) Option {
	return func(s *Service) {
		s.secret = secret
	}
}

// WithKeyGenerator replaces the snapshot key generator.
func WithKeyGenerator(gen ports.KeyGenerator) Option {
	return func(s *Service) {
		s.keyGen = gen
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService creates a Service.
func NewService(opts ...Option) (*Service, error) {
	s := &Service{
		apiRoute: DefaultAPIRoute,
		keyGen:   GenerateKey,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if !strings.Contains(s.apiRoute, keyPlaceholder) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAPIRoute, s.apiRoute)
	}
	if s.fetcher == nil {
		s.fetcher = NewHTTPFetcher(nil)
	}
	return s, nil
}

// GenerateKey returns a unique key for the snapshot: the route item id followed by a
// random suffix, or only the suffix when the snapshot has no route.
func GenerateKey(data *domain.EditingData) string {
	suffix := uuid.NewString()
	if id := data.ItemID(); id != "" {
		return id + "-" + suffix
	}
	return suffix
}

// SetEditingData stores data through the API on serverURL and returns where to find it.
func (s *Service) SetEditingData(ctx context.Context, data *domain.EditingData, serverURL string) (domain.PreviewData, error) {
	key := s.keyGen(data)
	target, err := s.requestURL(serverURL, key)
	if err != nil {
		return domain.PreviewData{}, err
	}

	s.logger.Debug("storing editing data", "key", key, "server", serverURL)
	if err := s.fetcher.Put(ctx, target, data); err != nil {
		return domain.PreviewData{}, fmt.Errorf("failed to store editing data %s: %w", key, err)
	}
	return domain.PreviewData{Key: key, ServerURL: serverURL}, nil
}

// GetEditingData retrieves the snapshot that preview points to.
func (s *Service) GetEditingData(ctx context.Context, preview domain.PreviewData) (*domain.EditingData, error) {
	target, err := s.requestURL(preview.ServerURL, preview.Key)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("fetching editing data", "key", preview.Key, "server", preview.ServerURL)
	body, err := s.fetcher.Get(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch editing data %s: %w", preview.Key, err)
	}

	var data domain.EditingData
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("failed to decode editing data %s: %w", preview.Key, err)
	}
	return &data, nil
}

func (s *Service) requestURL(serverURL, key string) (string, error) {
	secret, err := s.editingSecret()
	if err != nil {
		return "", err
	}
	route := strings.ReplaceAll(s.apiRoute, keyPlaceholder, url.PathEscape(key))
	return serverURL + route + "?" + QueryParamEditingSecret + "=" + url.QueryEscape(secret), nil
}

func (s *Service) editingSecret() (string, error) {
	if s.secret != "" {
		return s.secret, nil
	}
	if secret := os.Getenv(SecretEnv); secret != "" {
		return secret, nil
	}
	return "", ErrMissingSecret
}
