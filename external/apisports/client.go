package apisports

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/match"
	"github.com/rogeliolopezcamara/quiniela-app/internal/platform/logging"
	"github.com/rogeliolopezcamara/quiniela-app/internal/platform/resilience"
	"github.com/rogeliolopezcamara/quiniela-app/internal/usecase"
	"github.com/valyala/fasthttp"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL     = "https://v3.football.api-sports.io"
	defaultTimeout     = 20 * time.Second
	keyHeader          = "x-apisports-key"
	maxResponseBytes   = 8 << 20
	defaultRatePerMin  = 10
	defaultBackoffUnit = time.Second
)

var (
	errTransient = crerr.New("api-sports transient failure")
	errProvider  = crerr.New("api-sports rejected request")
)

type ClientConfig struct {
	BaseURL           string
	Key               string
	Timeout           time.Duration
	MaxRetries        int
	RequestsPerMinute int
	CircuitBreaker    resilience.CircuitBreakerConfig
	Logger            *logging.Logger
	// HTTPClient overrides the fasthttp client, mostly for tests.
	HTTPClient *fasthttp.Client
}

// Client reads fixtures from api-sports v3. It implements
// usecase.FixtureProvider.
type Client struct {
	http       *fasthttp.Client
	baseURL    string
	key        string
	timeout    time.Duration
	maxRetries int
	backoff    time.Duration
	limiter    *rate.Limiter
	breaker    *resilience.CircuitBreaker
	flight     resilience.SingleFlight
	logger     *logging.Logger
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	perMinute := cfg.RequestsPerMinute
	if perMinute <= 0 {
		perMinute = defaultRatePerMin
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &fasthttp.Client{
			Name:                "quiniela-api",
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxResponseBodySize: maxResponseBytes,
		}
	}

	return &Client{
		http:       httpClient,
		baseURL:    baseURL,
		key:        strings.TrimSpace(cfg.Key),
		timeout:    timeout,
		maxRetries: max(cfg.MaxRetries, 0),
		backoff:    defaultBackoffUnit,
		limiter:    rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1),
		breaker:    resilience.BreakerFromConfig("apisports", cfg.CircuitBreaker),
		logger:     logger.Named("apisports"),
	}
}

func (c *Client) FetchFixtures(ctx context.Context, leagueID int64, season int) ([]match.Match, error) {
	if leagueID <= 0 || season <= 0 {
		return nil, fmt.Errorf("%w: league and season must be positive", usecase.ErrInvalidInput)
	}

	query := url.Values{}
	query.Set("league", strconv.FormatInt(leagueID, 10))
	query.Set("season", strconv.Itoa(season))

	var env fixturesEnvelope
	if err := c.getJSON(ctx, "/fixtures", query, &env); err != nil {
		return nil, fmt.Errorf("fetch fixtures league=%d season=%d: %w", leagueID, season, err)
	}
	if msg := env.errorMessage(); msg != "" {
		return nil, fmt.Errorf("%w: %s", errProvider, c.redact(msg))
	}

	out := make([]match.Match, 0, len(env.Response))
	for _, item := range env.Response {
		m, ok := item.toDomain()
		if !ok {
			continue
		}
		out = append(out, m)
	}
	c.logger.InfoContext(ctx, "fixtures fetched", "league_id", leagueID, "season", season, "count", len(out))
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, target any) error {
	if err := c.breaker.Allow(); err != nil {
		c.logger.WarnContext(ctx, "api-sports circuit breaker rejected request", "state", string(c.breaker.State()))
		return fmt.Errorf("%w: football data provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
	}

	fullURL := c.baseURL + path
	if encoded := query.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	raw, _, err := resilience.Collapse(&c.flight, fullURL, func() ([]byte, error) {
		body, reqErr := c.executeRequest(ctx, fullURL)
		if reqErr != nil && crerr.Is(reqErr, errTransient) {
			c.breaker.RecordFailure()
		} else {
			c.breaker.RecordSuccess()
		}
		return body, reqErr
	})
	if err != nil {
		return err
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return crerr.Wrap(err, "decode api-sports payload")
	}
	return nil
}

// executeRequest retries transport errors, 429 and 5xx with linear backoff.
func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		raw, status, err := c.do(fullURL)
		switch {
		case err != nil:
			lastErr = fmt.Errorf("%w: send request: %s", errTransient, c.redact(err.Error()))
		case status >= 200 && status < 300:
			return raw, nil
		case isRetryableStatus(status):
			lastErr = fmt.Errorf("%w: provider status=%d body=%s", errTransient, status, abbreviateBody(c.redact(string(raw))))
		default:
			return nil, fmt.Errorf("%w: provider status=%d body=%s", errProvider, status, abbreviateBody(c.redact(string(raw))))
		}

		if attempt == c.maxRetries {
			break
		}
		timer := time.NewTimer(time.Duration(attempt+1) * c.backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	c.logger.WarnContext(ctx, "api-sports request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func (c *Client) do(fullURL string) ([]byte, int, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.SetRequestURI(fullURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")
	req.Header.Set(keyHeader, c.key)

	if err := c.http.DoTimeout(req, resp, c.timeout); err != nil {
		return nil, 0, err
	}
	body := append([]byte(nil), resp.Body()...)
	return body, resp.StatusCode(), nil
}

func (c *Client) redact(value string) string {
	if c.key == "" {
		return value
	}
	return strings.ReplaceAll(value, c.key, "REDACTED")
}

func isRetryableStatus(code int) bool {
	return code == fasthttp.StatusTooManyRequests || code >= 500
}

func abbreviateBody(body string) string {
	body = strings.TrimSpace(body)
	if len(body) > 512 {
		return body[:512] + "..."
	}
	return body
}
