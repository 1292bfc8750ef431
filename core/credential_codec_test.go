package core

import (
	"testing"
	"time"
)

func TestJSONStateCodec_RoundTrip(t *testing.T) {
	codec := JSONStateCodec{}
	expires := time.Date(2015, time.March, 10, 15, 0, 0, 0, time.UTC)
	state := CredentialState{
		StateConsumerKey:      "consumer-key",
		StateConsumerSecret:   "consumer-secret",
		StateVerified:         true,
		StateOAuthToken:       "token",
		StateOAuthTokenSecret: "token-secret",
		StateSessionHandle:    "session-handle",
		StateExpiresAt:        expires,
	}

	payload, err := codec.Encode(state)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := codec.Decode(payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if decoded[StateConsumerKey] != "consumer-key" {
		t.Fatalf("expected consumer key preserved, got %v", decoded[StateConsumerKey])
	}
	if decoded[StateVerified] != true {
		t.Fatalf("expected verified flag preserved, got %v", decoded[StateVerified])
	}
	ts, ok := decoded[StateExpiresAt].(time.Time)
	if !ok {
		t.Fatalf("expected %s decoded as time.Time, got %T", StateExpiresAt, decoded[StateExpiresAt])
	}
	if !ts.Equal(expires) {
		t.Fatalf("expected %v, got %v", expires, ts)
	}
}

func TestJSONStateCodec_RejectsEmptyInput(t *testing.T) {
	codec := JSONStateCodec{}
	if _, err := codec.Encode(nil); err == nil {
		t.Fatalf("expected an error for empty state")
	}
	if _, err := codec.Decode(nil); err == nil {
		t.Fatalf("expected an error for empty payload")
	}
}

func TestJSONStateCodec_FormatAndVersion(t *testing.T) {
	codec := JSONStateCodec{}
	if codec.Format() != CredentialPayloadFormatJSONV1 {
		t.Fatalf("unexpected format %q", codec.Format())
	}
	if codec.Version() != CredentialPayloadVersionV1 {
		t.Fatalf("unexpected version %d", codec.Version())
	}
}
