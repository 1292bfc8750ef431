package core

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	CredentialPayloadFormatJSONV1 = "credential_state_json"
	CredentialPayloadVersionV1    = 1
)

// CredentialStateCodec serializes credential-state snapshots for storage.
type CredentialStateCodec interface {
	Format() string
	Version() int
	Encode(state CredentialState) ([]byte, error)
	Decode(payload []byte) (CredentialState, error)
}

// JSONStateCodec stores state snapshots as JSON, with timestamps rendered in
// RFC 3339 so payloads stay portable across drivers.
type JSONStateCodec struct{}

func (JSONStateCodec) Format() string {
	return CredentialPayloadFormatJSONV1
}

func (JSONStateCodec) Version() int {
	return CredentialPayloadVersionV1
}

func (JSONStateCodec) Encode(state CredentialState) ([]byte, error) {
	if len(state) == 0 {
		return nil, fmt.Errorf("core: credential state is empty")
	}
	normalized := make(map[string]any, len(state))
	for key, value := range state {
		if ts, ok := value.(time.Time); ok {
			normalized[key] = ts.UTC().Format(time.RFC3339)
			continue
		}
		normalized[key] = value
	}
	encoded, err := json.Marshal(normalized)
	if err != nil {
		return nil, fmt.Errorf("core: encode credential state: %w", err)
	}
	return encoded, nil
}

func (JSONStateCodec) Decode(payload []byte) (CredentialState, error) {
	if len(payload) == 0 {
		return nil, fmt.Errorf("core: credential state payload is empty")
	}
	decoded := map[string]any{}
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return nil, fmt.Errorf("core: decode credential state: %w", err)
	}
	for _, key := range []string{StateExpiresAt, StateAuthorizationExpiresAt} {
		raw, ok := decoded[key].(string)
		if !ok {
			continue
		}
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, fmt.Errorf("core: decode credential state %s: %w", key, err)
		}
		decoded[key] = ts
	}
	return decoded, nil
}
