package stripe

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultTolerance bounds how old a webhook timestamp may be.
const DefaultTolerance = 5 * time.Minute

var (
	// ErrInvalidSignatureHeader means the Stripe-Signature header could not
	// be parsed.
	ErrInvalidSignatureHeader = errors.New("invalid signature header")
	// ErrNoValidSignature means no v1 signature matched the payload.
	ErrNoValidSignature = errors.New("no valid signature")
	// ErrTimestampOutsideTolerance means the signed timestamp is too old or
	// too far in the future.
	ErrTimestampOutsideTolerance = errors.New("timestamp outside tolerance")
)

// VerifySignature checks a Stripe webhook signature header against the raw
// payload. The header carries a unix timestamp and one or more v1 signatures;
// each v1 value is an HMAC-SHA256 of "<timestamp>.<payload>" keyed with the
// endpoint secret.
func VerifySignature(payload []byte, header, secret string, tolerance time.Duration) error {
	return verifySignatureAt(payload, header, secret, tolerance, time.Now())
}

func verifySignatureAt(payload []byte, header, secret string, tolerance time.Duration, now time.Time) error {
	var timestamp int64
	var signatures [][]byte

	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			ts, err := strconv.ParseInt(kv[1], 10, 64)
			if err != nil {
				return ErrInvalidSignatureHeader
			}
			timestamp = ts
		case "v1":
			sig, err := hex.DecodeString(kv[1])
			if err != nil {
				continue
			}
			signatures = append(signatures, sig)
		}
	}

	if timestamp == 0 || len(signatures) == 0 {
		return ErrInvalidSignatureHeader
	}

	if tolerance > 0 {
		age := now.Sub(time.Unix(timestamp, 0))
		if age > tolerance || age < -tolerance {
			return ErrTimestampOutsideTolerance
		}
	}

	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", timestamp)
	mac.Write(payload)
	expected := mac.Sum(nil)

	for _, sig := range signatures {
		if hmac.Equal(expected, sig) {
			return nil
		}
	}
	return ErrNoValidSignature
}

// SignPayload produces a Stripe-Signature header value for a payload. Used by
// tests and local tooling.
func SignPayload(payload []byte, secret string, at time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", at.Unix())
	mac.Write(payload)
	return fmt.Sprintf("t=%d,v1=%s", at.Unix(), hex.EncodeToString(mac.Sum(nil)))
}
