package evidence

import (
	"context"
	"io"
	"net/http"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/htc-global/pu-observatory/internal/core/domain"
)

const (
	defaultValidateTimeout = 8 * time.Second
	defaultValidateRPS     = 4

	validationCacheTTL     = 30 * time.Minute
	validationCacheCleanup = 10 * time.Minute

	validatorUserAgent = "Mozilla/5.0 (compatible; PU-Observatory/2.0)"
)

// Verdict is the outcome of validating one URL.
type Verdict struct {
	Status     string // domain.Validation* value
	HTTPStatus int
}

// URLValidator checks that a candidate URL actually resolves. HEAD
// first, GET on failure; the verdict classifies the response so the
// normalizer can keep only verified-live links. Verdicts are cached
// per canonical URL so duplicates across connectors are probed once.
type URLValidator struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      *gocache.Cache
	timeout    time.Duration
}

// NewURLValidator creates a validator. A nil client gets a default one
// with the validation timeout.
func NewURLValidator(client *http.Client, timeout time.Duration, rps float64) *URLValidator {
	if timeout <= 0 {
		timeout = defaultValidateTimeout
	}

	if client == nil {
		// Redirects are classified, not followed: a 3xx is already a
		// verdict and chasing it would hide the original status.
		client = &http.Client{
			Timeout: timeout,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		}
	}

	if rps <= 0 {
		rps = defaultValidateRPS
	}

	return &URLValidator{
		httpClient: client,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		cache:      gocache.New(validationCacheTTL, validationCacheCleanup),
		timeout:    timeout,
	}
}

// Validate probes the URL and classifies the result. The cache key is
// the raw URL as given; callers pass the canonical form.
func (v *URLValidator) Validate(ctx context.Context, rawURL string) Verdict {
	if !IsAbsoluteHTTP(rawURL) {
		return Verdict{Status: domain.ValidationErrorOther}
	}

	if cached, ok := v.cache.Get(rawURL); ok {
		return cached.(Verdict)
	}

	if err := v.limiter.Wait(ctx); err != nil {
		return Verdict{Status: domain.ValidationErrorOther}
	}

	verdict, retryWithGet := v.probe(ctx, http.MethodHead, rawURL)
	if retryWithGet {
		verdict, _ = v.probe(ctx, http.MethodGet, rawURL)
	}

	v.cache.SetDefault(rawURL, verdict)

	return verdict
}

// probe issues one request. The second return value asks for a GET
// retry: some servers reject HEAD outright (405s, resets) while
// serving GET fine.
func (v *URLValidator) probe(ctx context.Context, method, rawURL string) (Verdict, bool) {
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return Verdict{Status: domain.ValidationErrorOther}, false
	}

	req.Header.Set("User-Agent", validatorUserAgent)

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return Verdict{Status: domain.ValidationErrorOther}, method == http.MethodHead
	}

	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))
		_ = resp.Body.Close()
	}()

	verdict := classify(resp.StatusCode)

	// HEAD-hostile servers answer 4xx/5xx; give GET a chance except
	// for 403, which is a deliberate answer either way.
	if method == http.MethodHead && verdict.Status == domain.ValidationErrorOther {
		return verdict, true
	}

	return verdict, false
}

func classify(code int) Verdict {
	switch {
	case code >= 200 && code < 300:
		return Verdict{Status: domain.ValidationValid2xx, HTTPStatus: code}
	case code >= 300 && code < 400:
		return Verdict{Status: domain.ValidationValid3xx, HTTPStatus: code}
	case code == http.StatusForbidden:
		return Verdict{Status: domain.ValidationRestricted403, HTTPStatus: code}
	default:
		return Verdict{Status: domain.ValidationErrorOther, HTTPStatus: code}
	}
}
