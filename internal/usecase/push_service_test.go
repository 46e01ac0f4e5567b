package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/pushsubscription"
	pushsubscriptionmock "github.com/rogeliolopezcamara/quiniela-app/internal/mocks/domain/pushsubscription"
	"github.com/stretchr/testify/mock"
)

func TestPushService_SubscribeUpsertsByEndpoint(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repos := newMemoryRepos()
	svc := NewPushService(repos.subs)
	u := repos.mustUser("ana")

	first, err := svc.Subscribe(ctx, SubscribeInput{UserID: u.ID, Endpoint: "https://fcm.googleapis.com/fcm/send/abc", P256dh: "key-1", Auth: "auth-1"})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	second, err := svc.Subscribe(ctx, SubscribeInput{UserID: u.ID, Endpoint: "https://fcm.googleapis.com/fcm/send/abc", P256dh: "key-2", Auth: "auth-2"})
	if err != nil {
		t.Fatalf("subscribe again: %v", err)
	}
	if first.ID != second.ID || second.P256dh != "key-2" {
		t.Fatalf("expected keys refreshed on the same row, got first=%+v second=%+v", first, second)
	}
}

func TestPushService_SubscribeValidation(t *testing.T) {
	t.Parallel()

	svc := NewPushService(newMemoryRepos().subs)
	cases := []SubscribeInput{
		{UserID: 1, Endpoint: "http://insecure.example/push", P256dh: "k", Auth: "a"},
		{UserID: 1, Endpoint: "not a url", P256dh: "k", Auth: "a"},
		{UserID: 1, Endpoint: "https://push.example/1", P256dh: "", Auth: "a"},
		{UserID: 0, Endpoint: "https://push.example/1", P256dh: "k", Auth: "a"},
	}
	for _, input := range cases {
		if _, err := svc.Subscribe(context.Background(), input); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput for %+v, got %v", input, err)
		}
	}
}

func TestPushService_SubscribeTrimsAndStampsUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	subs := pushsubscriptionmock.NewRepository(t)
	svc := NewPushService(subs)
	svc.now = fixedClock

	subs.
		On("Upsert", mock.Anything, mock.MatchedBy(func(s pushsubscription.Subscription) bool {
			return s.UserID == 3 &&
				s.Endpoint == "https://push.example/abc" &&
				s.P256dh == "key" &&
				s.Auth == "auth" &&
				s.CreatedAt.Equal(testNow)
		})).
		Return(pushsubscription.Subscription{ID: 11, UserID: 3, Endpoint: "https://push.example/abc"}, nil).
		Once()

	got, err := svc.Subscribe(ctx, SubscribeInput{UserID: 3, Endpoint: " https://push.example/abc ", P256dh: " key ", Auth: "auth "})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if got.ID != 11 {
		t.Fatalf("unexpected subscription id: got=%d want=%d", got.ID, 11)
	}
}

func TestPushService_SubscribeRejectsPlainHTTPWithoutStorage(t *testing.T) {
	t.Parallel()

	subs := pushsubscriptionmock.NewRepository(t)
	svc := NewPushService(subs)

	_, err := svc.Subscribe(context.Background(), SubscribeInput{UserID: 3, Endpoint: "http://push.example/abc", P256dh: "key", Auth: "auth"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("unexpected error: got=%v want=%v", err, ErrInvalidInput)
	}
	subs.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}
