package provider

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"
)

// EventCheckoutCompleted is the only Stripe event type this service acts
// on; every other verified event is acknowledged and dropped.
const EventCheckoutCompleted = "checkout.session.completed"

var ErrInvalidSignature = errors.New("invalid stripe signature")

type StripeWebhookConfig struct {
	WebhookSecret             string
	SignatureToleranceSeconds int64
}

// StripeWebhook verifies and decodes signed webhook payloads. Payloads
// are never parsed before the signature checks out.
type StripeWebhook struct {
	cfg StripeWebhookConfig
}

func NewStripeWebhook(cfg StripeWebhookConfig) *StripeWebhook {
	if cfg.SignatureToleranceSeconds <= 0 {
		cfg.SignatureToleranceSeconds = 300
	}
	return &StripeWebhook{cfg: cfg}
}

type CheckoutEvent struct {
	ID                string
	Type              string
	ClientReferenceID string
}

// VerifyAndParseEvent checks the Stripe-Signature header against the
// shared webhook secret and decodes the event. The correlation token
// rides in the checkout session's client_reference_id.
func (w *StripeWebhook) VerifyAndParseEvent(payload []byte, signatureHeader string) (*CheckoutEvent, error) {
	if strings.TrimSpace(w.cfg.WebhookSecret) == "" {
		return nil, errors.New("stripe webhook secret is not configured")
	}
	if !verifyStripeSignature(payload, signatureHeader, w.cfg.WebhookSecret, w.cfg.SignatureToleranceSeconds) {
		return nil, ErrInvalidSignature
	}

	var event struct {
		ID   string `json:"id"`
		Type string `json:"type"`
		Data struct {
			Object struct {
				ClientReferenceID string `json:"client_reference_id"`
			} `json:"object"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, err
	}

	return &CheckoutEvent{
		ID:                strings.TrimSpace(event.ID),
		Type:              event.Type,
		ClientReferenceID: strings.TrimSpace(event.Data.Object.ClientReferenceID),
	}, nil
}

// verifyStripeSignature checks the "t=<unix>,v1=<hex hmac>" header
// scheme: the signed payload is "<t>.<body>", keyed with the webhook
// secret, and the timestamp must fall within the tolerance window.
func verifyStripeSignature(payload []byte, signatureHeader, webhookSecret string, toleranceSeconds int64) bool {
	signatureHeader = strings.TrimSpace(signatureHeader)
	if signatureHeader == "" {
		return false
	}

	var ts string
	candidates := make([]string, 0, 1)
	for _, part := range strings.Split(signatureHeader, ",") {
		part = strings.TrimSpace(part)
		if strings.HasPrefix(part, "t=") {
			ts = strings.TrimPrefix(part, "t=")
		}
		if strings.HasPrefix(part, "v1=") {
			candidates = append(candidates, strings.TrimPrefix(part, "v1="))
		}
	}
	if ts == "" || len(candidates) == 0 {
		return false
	}

	tsUnix, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return false
	}
	now := time.Now().Unix()
	if now-tsUnix > toleranceSeconds || tsUnix-now > toleranceSeconds {
		return false
	}

	mac := hmac.New(sha256.New, []byte(webhookSecret))
	_, _ = mac.Write([]byte(ts + "."))
	_, _ = mac.Write(payload)
	expected := mac.Sum(nil)

	for _, candidate := range candidates {
		decoded, err := hex.DecodeString(candidate)
		if err != nil {
			continue
		}
		if hmac.Equal(decoded, expected) {
			return true
		}
	}
	return false
}
