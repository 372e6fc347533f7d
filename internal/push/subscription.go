// Package push manages browser push subscriptions and broadcasts
// notifications to them.
package push

import (
	"errors"
	"net/url"
	"strings"
	"time"
)

var (
	// ErrInvalidSubscription indicates a subscription without a usable endpoint.
	ErrInvalidSubscription = errors.New("invalid push subscription")

	// ErrNotFound indicates no subscription exists for an endpoint.
	ErrNotFound = errors.New("push subscription not found")

	// ErrGone indicates the push service reported the subscription expired.
	ErrGone = errors.New("push subscription gone")
)

// Keys are the client's encryption keys from PushSubscription.toJSON().
type Keys struct {
	P256dh string `json:"p256dh"`
	Auth   string `json:"auth"`
}

// Subscription is one browser registration. The endpoint URL is its identity.
type Subscription struct {
	ID        string    `json:"id,omitempty"`
	Endpoint  string    `json:"endpoint"`
	Keys      Keys      `json:"keys"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// Validate checks that the endpoint is an absolute http(s) URL.
func (s Subscription) Validate() error {
	ep := strings.TrimSpace(s.Endpoint)
	if ep == "" {
		return errors.Join(ErrInvalidSubscription, errors.New("endpoint is required"))
	}
	u, err := url.Parse(ep)
	if err != nil || u.Host == "" || (u.Scheme != "https" && u.Scheme != "http") {
		return errors.Join(ErrInvalidSubscription, errors.New("endpoint must be an absolute http(s) url"))
	}
	return nil
}

// Notification is the payload delivered to the service worker.
type Notification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// BroadcastResult counts delivery outcomes.
type BroadcastResult struct {
	Sent    int `json:"sent"`
	Failed  int `json:"failed"`
	Removed int `json:"removed"`
}
