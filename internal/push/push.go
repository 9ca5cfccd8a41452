package push

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jabumarket/jabumarket/internal/model"
	"github.com/jabumarket/jabumarket/internal/store"

	webpush "github.com/SherClockHolmes/webpush-go"
)

// ErrExpired is returned when a push subscription is no longer valid (410 Gone).
var ErrExpired = errors.New("push subscription expired")

// Payload is the JSON sent to the push service.
type Payload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url,omitempty"`
	Tag   string `json:"tag,omitempty"`
}

// VerificationDecision builds the payload for a vendor verification outcome.
func VerificationDecision(status string) Payload {
	p := Payload{Title: "Verification update", Tag: model.NotifVerificationDecision, URL: "/vendor/profile"}
	switch status {
	case model.VerificationVerified:
		p.Body = "Your vendor profile is now verified."
	case model.VerificationRejected:
		p.Body = "Your verification request was not approved."
	default:
		p.Body = "Your verification status changed to " + status + "."
	}
	return p
}

// MaterialDecision builds the payload for a study material moderation outcome.
func MaterialDecision(title string, approved bool) Payload {
	p := Payload{Title: "Study material review", Tag: model.NotifMaterialDecision, URL: "/materials/mine"}
	if approved {
		p.Body = fmt.Sprintf("%q was approved and is now public.", title)
	} else {
		p.Body = fmt.Sprintf("%q was rejected.", title)
	}
	return p
}

// Service sends web push notifications with VAPID keys.
type Service struct {
	publicKey  string
	privateKey string
	subscriber string
	subs       *store.PushStore
	logger     *slog.Logger
}

func NewService(publicKey, privateKey, subscriber string, subs *store.PushStore, logger *slog.Logger) *Service {
	return &Service{
		publicKey:  publicKey,
		privateKey: privateKey,
		subscriber: subscriber,
		subs:       subs,
		logger:     logger.With("component", "push"),
	}
}

// Enabled reports whether VAPID keys are configured.
func (s *Service) Enabled() bool {
	return s.publicKey != "" && s.privateKey != ""
}

// VAPIDPublicKey returns the VAPID public key for client-side subscription.
func (s *Service) VAPIDPublicKey() string {
	return s.publicKey
}

// Send delivers a payload to one subscription.
func (s *Service) Send(sub *model.PushSubscription, payload Payload) error {
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
		Subscriber:      s.subscriber,
		TTL:             86400,
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

// NotifyUser sends the payload to every device the user subscribed, pruning
// subscriptions the push service reports gone. Failures are logged, not
// returned, so a dead endpoint never blocks the admin action behind it.
func (s *Service) NotifyUser(userID string, payload Payload) {
	if !s.Enabled() {
		return
	}
	subs, err := s.subs.ListByUser(userID)
	if err != nil {
		s.logger.Error("list subscriptions", "user_id", userID, "error", err)
		return
	}
	for i := range subs {
		err := s.Send(&subs[i], payload)
		if errors.Is(err, ErrExpired) {
			if err := s.subs.DeleteByEndpoint(subs[i].Endpoint); err != nil {
				s.logger.Error("prune subscription", "error", err)
			}
			continue
		}
		if err != nil {
			s.logger.Warn("push delivery failed", "user_id", userID, "error", err)
		}
	}
}
