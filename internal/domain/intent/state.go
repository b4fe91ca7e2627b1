package intent

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Pending says what a clarification dialogue is waiting for.
type Pending string

const (
	PendingRouting    Pending = "ROUTING"
	PendingParameters Pending = "PARAMETERS"
)

// ConversationState carries a clarification dialogue between turns.
// Callers hold it as an opaque token.
type ConversationState struct {
	Pending       Pending                `json:"pending"`
	WorkerID      string                 `json:"workerId,omitempty"`
	Params        map[string]interface{} `json:"params,omitempty"`
	Missing       []string               `json:"missing,omitempty"`
	Candidates    []string               `json:"candidates,omitempty"`
	OriginalText  string                 `json:"originalText"`
	LastMessageID string                 `json:"lastMessageId,omitempty"`
	Turn          int                    `json:"turn"`
	IssuedAt      time.Time              `json:"issuedAt"`
}

var ErrInvalidState = errors.New("invalid conversation state")

// StateCodec turns ConversationState into tokens and back.
// With a key, tokens carry an HMAC-SHA256 signature.
type StateCodec struct {
	key []byte
}

func NewStateCodec(key []byte) *StateCodec {
	return &StateCodec{key: key}
}

// Encode serializes st into a token.
func (c *StateCodec) Encode(st *ConversationState) (string, error) {
	data, err := json.Marshal(st)
	if err != nil {
		return "", fmt.Errorf("failed to serialize conversation state: %w", err)
	}
	body := base64.RawURLEncoding.EncodeToString(data)
	if len(c.key) == 0 {
		return body, nil
	}
	return body + "." + c.sign(body), nil
}

// Decode parses and verifies a token. An empty token yields nil.
func (c *StateCodec) Decode(token string) (*ConversationState, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, nil
	}
	body, sig, signed := strings.Cut(token, ".")
	if len(c.key) > 0 {
		if !signed || !c.verify(body, sig) {
			return nil, fmt.Errorf("%w: signature mismatch", ErrInvalidState)
		}
	}
	data, err := base64.RawURLEncoding.DecodeString(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	var st ConversationState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	switch st.Pending {
	case PendingRouting:
	case PendingParameters:
		if st.WorkerID == "" {
			return nil, fmt.Errorf("%w: parameter dialogue without worker", ErrInvalidState)
		}
	default:
		return nil, fmt.Errorf("%w: unknown pending %q", ErrInvalidState, st.Pending)
	}
	return &st, nil
}

func (c *StateCodec) sign(body string) string {
	mac := hmac.New(sha256.New, c.key)
	mac.Write([]byte(body))
	return hex.EncodeToString(mac.Sum(nil))
}

func (c *StateCodec) verify(body, sig string) bool {
	sigBytes, err := hex.DecodeString(sig)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, c.key)
	mac.Write([]byte(body))
	return hmac.Equal(sigBytes, mac.Sum(nil))
}
