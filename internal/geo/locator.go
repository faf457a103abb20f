package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrUnsupported is returned when no geolocation provider is configured.
	ErrUnsupported = errors.New("geolocation is not supported in this environment")
	// ErrDeniedOrUnavailable is returned when the provider denies, fails or
	// times out. The caller decides whether to re-invoke; there is no
	// internal retry.
	ErrDeniedOrUnavailable = errors.New("unable to acquire location")
)

// Coordinates is a detected latitude/longitude pair.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Locator acquires the caller's position. One outstanding request at a time
// from the caller's perspective; implementations do not queue.
type Locator interface {
	Acquire(ctx context.Context) (Coordinates, error)
}

// HTTPLocator resolves coordinates through an external geolocation provider
// over HTTP. An empty provider URL means the capability is absent.
type HTTPLocator struct {
	providerURL string
	client      *http.Client
	logger      *zap.Logger
}

// NewHTTPLocator builds a locator for the given provider endpoint.
func NewHTTPLocator(providerURL string, timeout time.Duration, logger *zap.Logger) *HTTPLocator {
	return &HTTPLocator{
		providerURL: providerURL,
		client:      &http.Client{Timeout: timeout},
		logger:      logger,
	}
}

// Acquire issues one position request. It fails immediately with
// ErrUnsupported when no provider is configured and with
// ErrDeniedOrUnavailable on any provider failure.
func (l *HTTPLocator) Acquire(ctx context.Context) (Coordinates, error) {
	if l.providerURL == "" {
		return Coordinates{}, ErrUnsupported
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.providerURL, nil)
	if err != nil {
		return Coordinates{}, fmt.Errorf("failed to build location request: %w", err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		l.logger.Debug("Location provider request failed", zap.Error(err))
		return Coordinates{}, ErrDeniedOrUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		l.logger.Debug("Location provider rejected request",
			zap.Int("status", resp.StatusCode),
		)
		return Coordinates{}, ErrDeniedOrUnavailable
	}

	var coords Coordinates
	if err := json.NewDecoder(resp.Body).Decode(&coords); err != nil {
		l.logger.Debug("Location provider returned malformed payload", zap.Error(err))
		return Coordinates{}, ErrDeniedOrUnavailable
	}

	return coords, nil
}
