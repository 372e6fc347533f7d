package push

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"
)

// Sender delivers one notification to one subscription.
type Sender interface {
	Send(ctx context.Context, sub Subscription, n Notification) error
}

// VAPIDConfig identifies this application server to push services.
type VAPIDConfig struct {
	PublicKey  string
	PrivateKey string
	// Subject is a mailto: address or https URL for the operator.
	Subject string
	// TTL is how long, in seconds, the push service keeps undelivered messages.
	TTL int
}

// WebPushSender sends encrypted Web Push messages signed with VAPID.
type WebPushSender struct {
	cfg  VAPIDConfig
	http webpush.HTTPClient
}

// NewWebPushSender creates a WebPushSender. A nil httpClient uses
// http.DefaultClient.
func NewWebPushSender(cfg VAPIDConfig, httpClient webpush.HTTPClient) *WebPushSender {
	if cfg.TTL <= 0 {
		cfg.TTL = 60
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &WebPushSender{cfg: cfg, http: httpClient}
}

func (s *WebPushSender) Send(ctx context.Context, sub Subscription, n Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encoding notification: %w", err)
	}

	resp, err := webpush.SendNotificationWithContext(ctx, payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys:     webpush.Keys{Auth: sub.Keys.Auth, P256dh: sub.Keys.P256dh},
	}, &webpush.Options{
		HTTPClient:      s.http,
		Subscriber:      s.cfg.Subject,
		VAPIDPublicKey:  s.cfg.PublicKey,
		VAPIDPrivateKey: s.cfg.PrivateKey,
		TTL:             s.cfg.TTL,
	})
	if err != nil {
		return fmt.Errorf("sending push: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return ErrGone
	case resp.StatusCode >= 400:
		return fmt.Errorf("push service returned status %d", resp.StatusCode)
	}
	return nil
}

// GenerateVAPIDKeys returns a new base64url-encoded key pair.
func GenerateVAPIDKeys() (privateKey, publicKey string, err error) {
	return webpush.GenerateVAPIDKeys()
}
