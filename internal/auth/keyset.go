package auth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/MicahParks/jwkset"
	"github.com/MicahParks/keyfunc/v3"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// KeySetOptions configures the provider's remote signing key set.
type KeySetOptions struct {
	URL string
	// RefreshInterval is how often the whole set is refetched in the background.
	RefreshInterval time.Duration
	// UnknownKIDInterval bounds refetches triggered by tokens whose kid is not
	// in the set to one per interval. Tokens over the limit are rejected.
	UnknownKIDInterval time.Duration
	HTTPTimeout        time.Duration
}

// NewKeySet starts a key set that refreshes until ctx is cancelled. A failed
// first fetch is logged, not returned, so the service can start while the
// provider is unreachable.
func NewKeySet(ctx context.Context, opts KeySetOptions, logger zerolog.Logger) (keyfunc.Keyfunc, error) {
	if opts.HTTPTimeout <= 0 {
		opts.HTTPTimeout = 10 * time.Second
	}
	if opts.UnknownKIDInterval <= 0 {
		opts.UnknownKIDInterval = 5 * time.Minute
	}
	log := logger.With().Str("component", "jwks").Logger()

	remote, err := jwkset.NewStorageFromHTTP(opts.URL, jwkset.HTTPClientStorageOptions{
		Client:                    &http.Client{Timeout: opts.HTTPTimeout},
		Ctx:                       ctx,
		HTTPTimeout:               opts.HTTPTimeout,
		NoErrorReturnFirstHTTPReq: true,
		RefreshInterval:           opts.RefreshInterval,
		RefreshErrorHandler: func(_ context.Context, err error) {
			log.Warn().Err(err).Str("url", opts.URL).Msg("Failed to refresh signing keys")
		},
	})
	if err != nil {
		return nil, fmt.Errorf("creating jwks storage: %w", err)
	}

	client, err := jwkset.NewHTTPClient(jwkset.HTTPClientOptions{
		HTTPURLs:          map[string]jwkset.Storage{opts.URL: remote},
		RateLimitWaitMax:  time.Second,
		RefreshUnknownKID: rate.NewLimiter(rate.Every(opts.UnknownKIDInterval), 1),
	})
	if err != nil {
		return nil, fmt.Errorf("creating jwks client: %w", err)
	}

	k, err := keyfunc.New(keyfunc.Options{Ctx: ctx, Storage: client})
	if err != nil {
		return nil, fmt.Errorf("creating keyfunc: %w", err)
	}
	return k, nil
}
