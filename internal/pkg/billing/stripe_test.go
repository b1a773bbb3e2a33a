package billing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"testing"
	"time"
)

func signPayload(t *testing.T, payload []byte, secret string, ts time.Time) string {
	t.Helper()
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(fmt.Sprintf("%d.%s", ts.Unix(), payload)))
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func TestParseWebhookEventValidSignature(t *testing.T) {
	payload := []byte(`{"id":"evt_1","object":"event","api_version":"2023-10-16","type":"customer.subscription.updated","data":{"object":{"id":"sub_1"}}}`)
	secret := "whsec_test"

	header := signPayload(t, payload, secret, time.Now())
	event, err := ParseWebhookEvent(payload, header, secret)
	if err != nil {
		t.Fatalf("ParseWebhookEvent: %v", err)
	}
	if event.ID != "evt_1" {
		t.Fatalf("event id = %s, want evt_1", event.ID)
	}
	if string(event.Type) != EventSubscriptionUpdated {
		t.Fatalf("event type = %s", event.Type)
	}
}

func TestParseWebhookEventBadSignature(t *testing.T) {
	payload := []byte(`{"id":"evt_1","object":"event","api_version":"2023-10-16","type":"invoice.payment_succeeded","data":{"object":{}}}`)

	header := signPayload(t, payload, "whsec_wrong", time.Now())
	_, err := ParseWebhookEvent(payload, header, "whsec_test")
	if !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("expected ErrSignatureInvalid, got %v", err)
	}
}

func TestParseWebhookEventTamperedPayload(t *testing.T) {
	payload := []byte(`{"id":"evt_1","object":"event","api_version":"2023-10-16","type":"invoice.payment_succeeded","data":{"object":{}}}`)
	secret := "whsec_test"

	header := signPayload(t, payload, secret, time.Now())
	tampered := []byte(`{"id":"evt_2","object":"event","api_version":"2023-10-16","type":"invoice.payment_succeeded","data":{"object":{}}}`)
	_, err := ParseWebhookEvent(tampered, header, secret)
	if !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("expected ErrSignatureInvalid for tampered payload, got %v", err)
	}
}

func TestParseWebhookEventStaleTimestamp(t *testing.T) {
	payload := []byte(`{"id":"evt_1","object":"event","api_version":"2023-10-16","type":"invoice.payment_succeeded","data":{"object":{}}}`)
	secret := "whsec_test"

	header := signPayload(t, payload, secret, time.Now().Add(-time.Hour))
	_, err := ParseWebhookEvent(payload, header, secret)
	if !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("expected ErrSignatureInvalid for stale timestamp, got %v", err)
	}
}
