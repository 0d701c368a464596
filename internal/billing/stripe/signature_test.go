package stripe

import (
	"errors"
	"testing"
	"time"
)

const testSecret = "whsec_test"

func TestVerifySignature_Valid(t *testing.T) {
	payload := []byte(`{"type":"customer.subscription.created"}`)
	now := time.Now()
	header := SignPayload(payload, testSecret, now)

	if err := verifySignatureAt(payload, header, testSecret, DefaultTolerance, now); err != nil {
		t.Fatalf("expected valid signature, got %v", err)
	}
}

func TestVerifySignature_WrongSecret(t *testing.T) {
	payload := []byte(`{}`)
	now := time.Now()
	header := SignPayload(payload, "whsec_other", now)

	err := verifySignatureAt(payload, header, testSecret, DefaultTolerance, now)
	if !errors.Is(err, ErrNoValidSignature) {
		t.Fatalf("expected no valid signature, got %v", err)
	}
}

func TestVerifySignature_TamperedPayload(t *testing.T) {
	now := time.Now()
	header := SignPayload([]byte(`{"a":1}`), testSecret, now)

	err := verifySignatureAt([]byte(`{"a":2}`), header, testSecret, DefaultTolerance, now)
	if !errors.Is(err, ErrNoValidSignature) {
		t.Fatalf("expected no valid signature, got %v", err)
	}
}

func TestVerifySignature_StaleTimestamp(t *testing.T) {
	payload := []byte(`{}`)
	signedAt := time.Now().Add(-10 * time.Minute)
	header := SignPayload(payload, testSecret, signedAt)

	err := verifySignatureAt(payload, header, testSecret, DefaultTolerance, time.Now())
	if !errors.Is(err, ErrTimestampOutsideTolerance) {
		t.Fatalf("expected tolerance error, got %v", err)
	}
}

func TestVerifySignature_GarbageHeader(t *testing.T) {
	for _, header := range []string{"", "nonsense", "t=abc,v1=00", "v1=deadbeef"} {
		err := verifySignatureAt([]byte(`{}`), header, testSecret, DefaultTolerance, time.Now())
		if !errors.Is(err, ErrInvalidSignatureHeader) {
			t.Fatalf("expected invalid header for %q, got %v", header, err)
		}
	}
}

func TestVerifySignature_SecondSignatureAccepted(t *testing.T) {
	payload := []byte(`{}`)
	now := time.Now()
	good := SignPayload(payload, testSecret, now)

	// An extra bogus v1 value must not break verification.
	combined := good + ",v1=00ff00ff"
	if err := verifySignatureAt(payload, combined, testSecret, DefaultTolerance, now); err != nil {
		t.Fatalf("expected valid signature among multiple, got %v", err)
	}
}
