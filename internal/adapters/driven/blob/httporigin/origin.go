// Package httporigin downloads stored files from the blob origin over HTTP.
package httporigin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/sitesearch/internal/core/domain"
	"github.com/custodia-labs/sitesearch/internal/core/ports/driven"
	"github.com/custodia-labs/sitesearch/internal/logger"
)

// MaxBlobBytes caps the size of a single download.
const MaxBlobBytes = 64 << 20

// Ensure Origin implements the interface.
var _ driven.BlobOrigin = (*Origin)(nil)

// Origin resolves references against a fixed base URL.
type Origin struct {
	base    *url.URL
	client  *http.Client
	limiter *rate.Limiter
}

// New creates an origin from the blob settings. A zero rate limit disables
// throttling.
func New(cfg domain.BlobSettings) (*Origin, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: blob base url is empty", domain.ErrInvalidInput)
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%w: blob base url %q", domain.ErrInvalidInput, cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = domain.DefaultBlobTimeout
	}

	o := &Origin{
		base:   base,
		client: &http.Client{Timeout: timeout},
	}
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		o.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	return o, nil
}

// URL returns the absolute URL a reference resolves to. The reference is
// appended as stored, so existing escapes and query strings are kept.
func (o *Origin) URL(reference string) string {
	base := *o.base
	base.RawQuery, base.Fragment = "", ""
	joined := strings.TrimRight(base.String(), "/") + "/" + strings.TrimLeft(reference, "/")
	if u, err := url.Parse(joined); err == nil {
		return u.String()
	}

	// Not a valid URL reference: treat it as a plain path.
	base.Path = strings.TrimRight(base.Path, "/") + "/" + strings.TrimLeft(reference, "/")
	base.RawPath = ""
	return base.String()
}

// Download fetches the blob for reference. Non-success statuses, timeouts
// and oversized bodies fail with domain.ErrFetch.
func (o *Origin) Download(ctx context.Context, reference string) (*domain.Blob, error) {
	if strings.TrimSpace(reference) == "" {
		return nil, fmt.Errorf("%w: empty reference", domain.ErrInvalidInput)
	}

	if o.limiter != nil {
		if err := o.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", domain.ErrFetch, reference, err)
		}
	}

	target := o.URL(reference)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrFetch, reference, err)
	}

	start := time.Now()
	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrFetch, reference, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s: status %d", domain.ErrFetch, reference, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxBlobBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: read body: %w", domain.ErrFetch, reference, err)
	}
	if len(data) > MaxBlobBytes {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrFetch, reference, errTooLarge)
	}

	logger.Debug("downloaded %s (%d bytes) in %s", target, len(data), time.Since(start))
	return &domain.Blob{
		Reference:   reference,
		ContentType: resp.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

var errTooLarge = errors.New("blob exceeds size limit")
