package usecase

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/pushsubscription"
)

type SubscribeInput struct {
	UserID   int64
	Endpoint string
	P256dh   string
	Auth     string
}

type PushService struct {
	subs pushsubscription.Repository
	now  func() time.Time
}

func NewPushService(subs pushsubscription.Repository) *PushService {
	return &PushService{subs: subs, now: time.Now}
}

// Subscribe registers a browser endpoint, refreshing keys if the user already
// registered it.
func (s *PushService) Subscribe(ctx context.Context, input SubscribeInput) (pushsubscription.Subscription, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PushService.Subscribe")
	defer span.End()

	input.Endpoint = strings.TrimSpace(input.Endpoint)
	input.P256dh = strings.TrimSpace(input.P256dh)
	input.Auth = strings.TrimSpace(input.Auth)
	if input.UserID <= 0 {
		return pushsubscription.Subscription{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	endpoint, err := url.Parse(input.Endpoint)
	if err != nil || endpoint.Scheme != "https" || endpoint.Host == "" {
		return pushsubscription.Subscription{}, fmt.Errorf("%w: endpoint must be an https url", ErrInvalidInput)
	}
	if input.P256dh == "" || input.Auth == "" {
		return pushsubscription.Subscription{}, fmt.Errorf("%w: subscription keys are required", ErrInvalidInput)
	}

	now := s.now().UTC()
	saved, err := s.subs.Upsert(ctx, pushsubscription.Subscription{
		UserID:    input.UserID,
		Endpoint:  input.Endpoint,
		P256dh:    input.P256dh,
		Auth:      input.Auth,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		recordSpanError(span, err)
		return pushsubscription.Subscription{}, fmt.Errorf("upsert push subscription: %w", err)
	}
	return saved, nil
}
