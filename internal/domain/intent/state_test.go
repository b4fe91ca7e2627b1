package intent

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleState() *ConversationState {
	return &ConversationState{
		Pending:      PendingParameters,
		WorkerID:     "citation_manager",
		Params:       map[string]interface{}{"source_type": "book"},
		Missing:      []string{"style"},
		OriginalText: "make a citation",
		Turn:         1,
		IssuedAt:     time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestStateCodec_Unsigned(t *testing.T) {
	codec := NewStateCodec(nil)

	token, err := codec.Encode(sampleState())
	require.NoError(t, err)
	assert.NotContains(t, token, ".")

	st, err := codec.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, "citation_manager", st.WorkerID)
	assert.Equal(t, []string{"style"}, st.Missing)
	assert.Equal(t, "book", st.Params["source_type"])
}

func TestStateCodec_Signed(t *testing.T) {
	codec := NewStateCodec([]byte("0123456789abcdef"))

	token, err := codec.Encode(sampleState())
	require.NoError(t, err)

	t.Run("round trip", func(t *testing.T) {
		st, err := codec.Decode(token)
		require.NoError(t, err)
		assert.Equal(t, PendingParameters, st.Pending)
	})

	t.Run("tampered body", func(t *testing.T) {
		body, sig, _ := strings.Cut(token, ".")
		tampered := strings.ToUpper(body[:4]) + body[4:] + "." + sig
		_, err := codec.Decode(tampered)
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("unsigned token rejected", func(t *testing.T) {
		body, _, _ := strings.Cut(token, ".")
		_, err := codec.Decode(body)
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("other key rejected", func(t *testing.T) {
		_, err := NewStateCodec([]byte("another-key")).Decode(token)
		assert.ErrorIs(t, err, ErrInvalidState)
	})
}

func TestStateCodec_DecodeInvalid(t *testing.T) {
	codec := NewStateCodec(nil)

	st, err := codec.Decode("   ")
	require.NoError(t, err)
	assert.Nil(t, st)

	_, err = codec.Decode("%%%")
	assert.ErrorIs(t, err, ErrInvalidState)

	noWorker := sampleState()
	noWorker.WorkerID = ""
	token, err := codec.Encode(noWorker)
	require.NoError(t, err)
	_, err = codec.Decode(token)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestMergeParams(t *testing.T) {
	base := map[string]interface{}{"style": "APA", "year": 2020}
	merged := MergeParams(base, map[string]interface{}{"style": "", "source_type": "book", "year": 2021})

	assert.Equal(t, "APA", merged["style"])
	assert.Equal(t, "book", merged["source_type"])
	assert.Equal(t, 2021, merged["year"])
	assert.Equal(t, "APA", base["style"])
	assert.NotContains(t, base, "source_type")
}

func TestClampConfidence(t *testing.T) {
	assert.Equal(t, 0.0, ClampConfidence(-1))
	assert.Equal(t, 1.0, ClampConfidence(7))
	assert.Equal(t, 0.4, ClampConfidence(0.4))
}
