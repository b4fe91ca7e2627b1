package validator

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/execution-hub/supervisor/internal/domain/worker"
	workerMocks "github.com/execution-hub/supervisor/internal/domain/worker/mocks"
	"github.com/execution-hub/supervisor/internal/infrastructure/memory"
)

func newValidator(t *testing.T, ws ...worker.Descriptor) *Validator {
	t.Helper()
	reg := memory.NewRegistry()
	for _, w := range ws {
		require.NoError(t, reg.Register(w))
	}
	return NewValidator(reg, zerolog.Nop())
}

var citation = worker.Descriptor{
	ID:             "citation_manager",
	BaseURL:        "http://citation",
	RequiredParams: []string{"style", "raw_text"},
	OptionalParams: []string{"source_type"},
	Questions:      map[string]string{"raw_text": "Which source should I cite?"},
	ParamRules:     map[string]string{"style": `value == 'APA' || value == 'MLA' || value == 'Chicago'`},
}

var research = worker.Descriptor{
	ID:             "research_scout",
	BaseURL:        "http://research",
	RequiredParams: []string{"query"},
	OptionalParams: []string{"max_results"},
	ParamRules:     map[string]string{"max_results": `max_results > 0 && max_results <= 50`},
}

func TestValidate_MissingInDeclaredOrder(t *testing.T) {
	v := newValidator(t, citation)

	res, err := v.Validate("citation_manager", map[string]interface{}{})

	require.NoError(t, err)
	assert.False(t, res.Complete())
	assert.Equal(t, []string{"style", "raw_text"}, res.Missing)
	assert.Equal(t, []string{"What style would you like?", "Which source should I cite?"}, res.ClarifyingQuestions)
}

func TestValidate_EmptyValuesCountAsMissing(t *testing.T) {
	v := newValidator(t, citation)

	res, err := v.Validate("citation_manager", map[string]interface{}{"style": "  ", "raw_text": "Smith 2020"})

	require.NoError(t, err)
	assert.Equal(t, []string{"style"}, res.Missing)
}

func TestValidate_Idempotent(t *testing.T) {
	v := newValidator(t, citation)
	params := map[string]interface{}{"style": "APA", "raw_text": "Smith, J. (2020) Go."}

	for i := 0; i < 3; i++ {
		res, err := v.Validate("citation_manager", params)
		require.NoError(t, err)
		assert.Empty(t, res.Missing)
		assert.True(t, res.Complete())
	}
	assert.Len(t, params, 2)
}

func TestValidate_RuleRejectsValue(t *testing.T) {
	v := newValidator(t, citation)

	res, err := v.Validate("citation_manager", map[string]interface{}{"style": "Klingon", "raw_text": "x"})

	require.NoError(t, err)
	assert.Equal(t, []string{"style"}, res.Missing)
	assert.Equal(t, "The style you gave is not valid. What style would you like?", res.ClarifyingQuestions[0])
}

func TestValidate_OptionalRuleWithNumericText(t *testing.T) {
	v := newValidator(t, research)

	cases := []struct {
		name    string
		value   interface{}
		missing []string
	}{
		{"string number", "10", []string{}},
		{"int", 5, []string{}},
		{"float", 12.0, []string{}},
		{"too many", "500", []string{"max_results"}},
		{"not a number", "lots", []string{"max_results"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := v.Validate("research_scout", map[string]interface{}{"query": "go", "max_results": tc.value})
			require.NoError(t, err)
			assert.Equal(t, tc.missing, res.Missing)
		})
	}
}

func TestValidate_OptionalAbsentIsFine(t *testing.T) {
	v := newValidator(t, research)

	res, err := v.Validate("research_scout", map[string]interface{}{"query": "graph neural networks"})

	require.NoError(t, err)
	assert.True(t, res.Complete())
}

func TestValidate_UnknownWorker(t *testing.T) {
	ctrl := gomock.NewController(t)
	reg := workerMocks.NewMockRegistry(ctrl)
	reg.EXPECT().Lookup("ghost").Return(worker.Descriptor{}, worker.ErrNotFound)
	v := NewValidator(reg, zerolog.Nop())

	_, err := v.Validate("ghost", nil)

	assert.ErrorIs(t, err, worker.ErrNotFound)
}

func TestEvaluateRule(t *testing.T) {
	ok, err := EvaluateRule("", "x", nil)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = EvaluateRule(`[options.count] >= 2`, 3, map[string]interface{}{
		"options": map[string]interface{}{"count": "3"},
	})
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = EvaluateRule(`value +`, 1, nil)
	assert.Error(t, err)

	_, err = EvaluateRule(`value + 1`, 1, nil)
	assert.Error(t, err)
}

func TestQuestionHumanizesParam(t *testing.T) {
	assert.Equal(t, "What source type would you like?", Question(worker.Descriptor{}, "source_type"))
}
