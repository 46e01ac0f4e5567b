package webpush

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	webpushgo "github.com/SherClockHolmes/webpush-go"
	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/pushsubscription"
	"github.com/rogeliolopezcamara/quiniela-app/internal/platform/logging"
	"github.com/rogeliolopezcamara/quiniela-app/internal/platform/resilience"
	"github.com/rogeliolopezcamara/quiniela-app/internal/usecase"
	"github.com/valyala/bytebufferpool"
)

const (
	defaultTTL     = time.Hour
	defaultTimeout = 10 * time.Second
)

var errTransient = crerr.New("web push transient failure")

type Config struct {
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	Subscriber      string
	TTL             time.Duration
	Timeout         time.Duration
	CircuitBreaker  resilience.CircuitBreakerConfig
	Logger          *logging.Logger
	// HTTPClient overrides the transport, mostly for tests.
	HTTPClient webpushgo.HTTPClient
}

// Sender delivers encrypted web push messages signed with the VAPID identity.
type Sender struct {
	publicKey  string
	privateKey string
	subscriber string
	ttl        time.Duration
	client     webpushgo.HTTPClient
	breaker    *resilience.CircuitBreaker
	logger     *logging.Logger
}

func NewSender(cfg Config) (*Sender, error) {
	if strings.TrimSpace(cfg.VAPIDPublicKey) == "" || strings.TrimSpace(cfg.VAPIDPrivateKey) == "" {
		return nil, crerr.New("vapid public and private keys are required")
	}
	if strings.TrimSpace(cfg.Subscriber) == "" {
		return nil, crerr.New("vapid subscriber is required")
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	return &Sender{
		publicKey:  strings.TrimSpace(cfg.VAPIDPublicKey),
		privateKey: strings.TrimSpace(cfg.VAPIDPrivateKey),
		subscriber: strings.TrimSpace(cfg.Subscriber),
		ttl:        ttl,
		client:     client,
		breaker:    resilience.BreakerFromConfig("webpush", cfg.CircuitBreaker),
		logger:     logger.Named("webpush"),
	}, nil
}

func (s *Sender) Send(ctx context.Context, sub pushsubscription.Subscription, msg usecase.PushMessage) error {
	if err := s.breaker.Allow(); err != nil {
		return fmt.Errorf("%w: push service is temporarily unavailable", usecase.ErrDependencyUnavailable)
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if err := sonic.ConfigDefault.NewEncoder(buf).Encode(msg); err != nil {
		return crerr.Wrap(err, "encode push payload")
	}

	resp, err := webpushgo.SendNotificationWithContext(ctx, buf.Bytes(), &webpushgo.Subscription{
		Endpoint: sub.Endpoint,
		Keys:     webpushgo.Keys{Auth: sub.Auth, P256dh: sub.P256dh},
	}, &webpushgo.Options{
		HTTPClient:      s.client,
		Subscriber:      s.subscriber,
		VAPIDPublicKey:  s.publicKey,
		VAPIDPrivateKey: s.privateKey,
		TTL:             int(s.ttl / time.Second),
		Urgency:         webpushgo.UrgencyHigh,
	})
	if err != nil {
		callErr := fmt.Errorf("%w: send push: %v", errTransient, err)
		s.record(callErr)
		return callErr
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	callErr := classifyStatus(resp)
	s.record(callErr)
	if callErr != nil {
		s.logger.DebugContext(ctx, "push delivery rejected", "user_id", sub.UserID, "status", resp.StatusCode, "error", callErr)
	}
	return callErr
}

func (s *Sender) record(err error) {
	if err != nil && crerr.Is(err, errTransient) {
		s.breaker.RecordFailure()
		return
	}
	s.breaker.RecordSuccess()
}

func classifyStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return usecase.ErrSubscriptionGone
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	body := strings.TrimSpace(string(raw))
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return fmt.Errorf("%w: push service status=%d body=%s", errTransient, resp.StatusCode, body)
	}
	return fmt.Errorf("push service status=%d body=%s", resp.StatusCode, body)
}

// LogSender stands in when delivery is disabled in development. It logs the
// message and reports success.
type LogSender struct {
	logger *logging.Logger
}

func NewLogSender(logger *logging.Logger) *LogSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &LogSender{logger: logger.Named("webpush")}
}

func (s *LogSender) Send(ctx context.Context, sub pushsubscription.Subscription, msg usecase.PushMessage) error {
	s.logger.InfoContext(ctx, "push delivery skipped (webpush disabled)",
		"user_id", sub.UserID, "match_id", msg.MatchID, "window", msg.Window, "title", msg.Title)
	return nil
}
