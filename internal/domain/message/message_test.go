package message

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTaskEnvelope(t *testing.T) {
	a := NewTaskEnvelope("supervisor", "citation_manager", "format_citation", nil)
	b := NewTaskEnvelope("supervisor", "citation_manager", "format_citation", nil)

	require.NotNil(t, a)
	assert.NotEmpty(t, a.MessageID)
	assert.NotEqual(t, a.MessageID, b.MessageID)
	assert.Equal(t, "supervisor", a.Sender)
	assert.Equal(t, "citation_manager", a.Recipient)
	assert.Equal(t, "format_citation", a.Task.Name)
	assert.NotNil(t, a.Task.Parameters)
	assert.Empty(t, a.RelatedMessageID)

	a.SetRelated(b.MessageID)
	assert.Equal(t, b.MessageID, a.RelatedMessageID)
}

func TestParseStatus(t *testing.T) {
	cases := map[string]Status{
		"SUCCESS":              StatusSuccess,
		"completed":            StatusSuccess,
		" ok ":                 StatusSuccess,
		"FAILURE":              StatusFailure,
		"failed":               StatusFailure,
		"NEEDS_INFO":           StatusNeedsInfo,
		"clarification_needed": StatusNeedsInfo,
	}
	for in, want := range cases {
		got, err := ParseStatus(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseStatus("pending")
	assert.ErrorIs(t, err, ErrUnknownStatus)
}

func TestCompletionReport_CheckCorrelation(t *testing.T) {
	env := NewTaskEnvelope("supervisor", "w1", "task", nil)

	t.Run("matching id", func(t *testing.T) {
		r := &CompletionReport{RelatedMessageID: env.MessageID}
		assert.NoError(t, r.CheckCorrelation(env, false))
	})

	t.Run("mismatch is rejected even when lenient", func(t *testing.T) {
		r := &CompletionReport{RelatedMessageID: "other"}
		assert.ErrorIs(t, r.CheckCorrelation(env, true), ErrCorrelationMismatch)
	})

	t.Run("missing id strict", func(t *testing.T) {
		r := &CompletionReport{}
		assert.ErrorIs(t, r.CheckCorrelation(env, false), ErrCorrelationMissing)
	})

	t.Run("missing id lenient is filled", func(t *testing.T) {
		r := &CompletionReport{}
		require.NoError(t, r.CheckCorrelation(env, true))
		assert.Equal(t, env.MessageID, r.RelatedMessageID)
	})
}

func TestCompletionReport_ErrorDetail(t *testing.T) {
	msg := "boom"
	assert.Equal(t, "boom", (&CompletionReport{Error: &msg}).ErrorDetail())
	assert.Equal(t, "models loading", (&CompletionReport{Results: map[string]interface{}{"error": "models loading"}}).ErrorDetail())
	assert.Equal(t, "worker reported failure", (&CompletionReport{}).ErrorDetail())
}

func TestCompletionReport_Questions(t *testing.T) {
	r := &CompletionReport{Results: map[string]interface{}{
		"clarifying_questions": []interface{}{"Which year?", "", "Which author?"},
	}}
	assert.Equal(t, []string{"Which year?", "Which author?"}, r.Questions())

	r = &CompletionReport{Results: map[string]interface{}{"output": "Please provide the text."}}
	assert.Equal(t, []string{"Please provide the text."}, r.Questions())

	assert.Nil(t, (&CompletionReport{}).Questions())
}
