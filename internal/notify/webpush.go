package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dukerupert/chime/internal/model"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/sethvargo/go-retry"
)

// ErrExpired is returned when a push subscription is no longer valid (410 Gone).
var ErrExpired = errors.New("push subscription expired")

// Sender delivers fired schedules to browsers over Web Push.
type Sender struct {
	publicKey  string
	privateKey string
}

// NewSender creates a push sender with VAPID keys.
func NewSender(publicKey, privateKey string) *Sender {
	return &Sender{
		publicKey:  publicKey,
		privateKey: privateKey,
	}
}

// VAPIDPublicKey returns the public key for client-side subscription.
func (s *Sender) VAPIDPublicKey() string {
	return s.publicKey
}

// Send pushes the payload to one subscription.
func (s *Sender) Send(sub *model.PushSubscription, payload Payload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	resp, err := webpush.SendNotification(data, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dhKey,
			Auth:   sub.AuthKey,
		},
	}, &webpush.Options{
		VAPIDPublicKey:  s.publicKey,
		VAPIDPrivateKey: s.privateKey,
		Subscriber:      "mailto:noreply@chime.local",
		TTL:             300,
	})
	if err != nil {
		return fmt.Errorf("send push: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusGone {
		return ErrExpired
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("push service returned %d", resp.StatusCode)
	}
	return nil
}

// SendWithRetry retries transient push failures with exponential backoff.
// An expired subscription is permanent and returned immediately.
func (s *Sender) SendWithRetry(ctx context.Context, sub *model.PushSubscription, payload Payload) error {
	backoff := retry.WithMaxRetries(3, retry.NewExponential(500*time.Millisecond))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := s.Send(sub, payload)
		if err == nil || errors.Is(err, ErrExpired) {
			return err
		}
		return retry.RetryableError(err)
	})
}
