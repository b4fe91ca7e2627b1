package formatter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/execution-hub/supervisor/internal/domain/worker"
	"github.com/execution-hub/supervisor/internal/infrastructure/memory"
)

func newFormatter(t *testing.T) *Formatter {
	t.Helper()
	reg := memory.NewRegistry()
	for _, w := range []worker.Descriptor{
		{
			ID:       "citation_manager",
			BaseURL:  "http://citation",
			TaskName: "format_citation",
			Payload: worker.PayloadSpec{
				Kind:      worker.ShapeStructured,
				TextField: "raw_text",
				FieldMap:  map[string]string{"author": "metadata.author", "year": "metadata.year"},
			},
		},
		{
			ID:      "quiz_master",
			BaseURL: "http://quiz",
			Payload: worker.PayloadSpec{
				Kind:      worker.ShapeStructured,
				AgentName: "adaptive_quiz_master_agent",
				Intent:    "generate_quiz",
			},
		},
		{
			ID:      "plagiarism",
			BaseURL: "http://plagiarism",
			Payload: worker.PayloadSpec{
				Kind:      worker.ShapeSimple,
				TextField: "text",
				FieldMap:  map[string]string{"document": "text"},
			},
		},
		{ID: "scheduler", BaseURL: "http://scheduler"},
	} {
		require.NoError(t, reg.Register(w))
	}
	return NewFormatter(reg)
}

func TestFormat_Structured(t *testing.T) {
	f := newFormatter(t)

	got := f.Format("citation_manager", map[string]interface{}{
		"style":  "APA",
		"author": "Smith",
		"year":   "2020",
	}, "Generate APA citation for Smith 2020")

	assert.Equal(t, map[string]interface{}{
		"agent_name": "citation_manager",
		"intent":     "format_citation",
		"payload": map[string]interface{}{
			"raw_text": "Generate APA citation for Smith 2020",
			"style":    "APA",
			"metadata": map[string]interface{}{"author": "Smith", "year": "2020"},
		},
	}, got)
}

func TestFormat_StructuredExplicitNames(t *testing.T) {
	f := newFormatter(t)

	got := f.Format("quiz_master", map[string]interface{}{"topic": "algebra"}, "quiz me on algebra")

	assert.Equal(t, "adaptive_quiz_master_agent", got["agent_name"])
	assert.Equal(t, "generate_quiz", got["intent"])
	assert.Equal(t, map[string]interface{}{"topic": "algebra"}, got["payload"])
}

func TestFormat_SimpleParamOverridesText(t *testing.T) {
	f := newFormatter(t)

	got := f.Format("plagiarism", map[string]interface{}{"document": "essay body"}, "check my essay")

	assert.Equal(t, map[string]interface{}{
		"request": "check my essay",
		"data":    map[string]interface{}{"text": "essay body"},
	}, got)

	got = f.Format("plagiarism", nil, "check my essay")
	assert.Equal(t, map[string]interface{}{"text": "check my essay"}, got["data"])
}

func TestFormat_DefaultForUnshapedAndUnknown(t *testing.T) {
	f := newFormatter(t)
	params := map[string]interface{}{"days": 5}

	for _, id := range []string{"scheduler", "not_registered"} {
		got := f.Format(id, params, "plan my week")
		assert.Equal(t, map[string]interface{}{
			"request":    "plan my week",
			"parameters": map[string]interface{}{"days": 5},
		}, got, id)
	}
	assert.Equal(t, worker.ShapeDefault, f.Shape("not_registered").Kind())
}

func TestFormat_Deterministic(t *testing.T) {
	f := newFormatter(t)
	params := map[string]interface{}{"style": "MLA", "author": "Lee"}

	first := f.Format("citation_manager", params, "cite")
	second := f.Format("citation_manager", params, "cite")

	assert.Equal(t, first, second)
	assert.Len(t, params, 2)
}
