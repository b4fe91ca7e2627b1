package memory

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/execution-hub/supervisor/internal/domain/intent"
	"github.com/execution-hub/supervisor/internal/domain/worker"
)

func newTestRegistry(t *testing.T, descs ...worker.Descriptor) *Registry {
	t.Helper()
	r := NewRegistry()
	for _, d := range descs {
		require.NoError(t, r.Register(d))
	}
	return r
}

func citationWorker() worker.Descriptor {
	return worker.Descriptor{
		ID:             "citation_manager",
		DisplayName:    "Citation Manager",
		BaseURL:        "http://localhost:5011",
		Keywords:       []string{"citation", "bibliography", "reference"},
		Capabilities:   []string{"format citations"},
		RequiredParams: []string{"style"},
	}
}

func TestRegistry_RegisterAndLookup(t *testing.T) {
	r := newTestRegistry(t, citationWorker())

	got, err := r.Lookup("citation_manager")
	require.NoError(t, err)
	assert.Equal(t, "Citation Manager", got.DisplayName)
	assert.Equal(t, worker.HealthUnknown, got.Health)
	assert.Nil(t, got.LastChecked)

	_, err = r.Lookup("missing")
	assert.ErrorIs(t, err, worker.ErrNotFound)

	err = r.Register(citationWorker())
	assert.ErrorIs(t, err, worker.ErrDuplicate)

	err = r.Register(worker.Descriptor{ID: "no_url"})
	assert.ErrorIs(t, err, worker.ErrInvalid)
}

func TestRegistry_LookupReturnsCopy(t *testing.T) {
	r := newTestRegistry(t, citationWorker())

	got, err := r.Lookup("citation_manager")
	require.NoError(t, err)
	got.Keywords[0] = "mutated"
	got.RequiredParams = append(got.RequiredParams, "extra")

	again, err := r.Lookup("citation_manager")
	require.NoError(t, err)
	assert.Equal(t, citationWorker().Keywords, again.Keywords)
	assert.Equal(t, []string{"style"}, again.RequiredParams)
}

func TestRegistry_AllKeepsRegistrationOrder(t *testing.T) {
	a := citationWorker()
	b := worker.Descriptor{ID: "quiz_master", BaseURL: "http://localhost:5012"}
	c := worker.Descriptor{ID: "flashcards", BaseURL: "http://localhost:5013"}
	r := newTestRegistry(t, b, a, c)

	all := r.All()
	require.Len(t, all, 3)
	assert.Equal(t, "quiz_master", all[0].ID)
	assert.Equal(t, "citation_manager", all[1].ID)
	assert.Equal(t, "flashcards", all[2].ID)
}

func TestRegistry_UpdateHealthOverwrites(t *testing.T) {
	r := newTestRegistry(t, citationWorker())
	first := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	second := first.Add(time.Minute)

	require.NoError(t, r.UpdateHealth("citation_manager", worker.HealthOffline, first))
	got, _ := r.Lookup("citation_manager")
	assert.Equal(t, worker.HealthOffline, got.Health)
	require.NotNil(t, got.LastChecked)
	assert.Equal(t, first, *got.LastChecked)

	require.NoError(t, r.UpdateHealth("citation_manager", worker.HealthHealthy, second))
	got, _ = r.Lookup("citation_manager")
	assert.Equal(t, worker.HealthHealthy, got.Health)
	assert.Equal(t, second, *got.LastChecked)

	assert.ErrorIs(t, r.UpdateHealth("missing", worker.HealthHealthy, second), worker.ErrNotFound)
}

func TestRegistry_MatchByKeyword(t *testing.T) {
	quiz := worker.Descriptor{
		ID:       "quiz_master",
		BaseURL:  "http://localhost:5012",
		Keywords: []string{"quiz", "multiple choice", "question"},
	}
	r := newTestRegistry(t, citationWorker(), quiz)

	matches := r.MatchByKeyword(intent.Tokenize("Create a multiple choice quiz with 10 questions"))
	require.Len(t, matches, 1)
	assert.Equal(t, "quiz_master", matches[0].Worker.ID)
	assert.Equal(t, 3, matches[0].Score)

	matches = r.MatchByKeyword(intent.Tokenize("format my citations and references"))
	require.Len(t, matches, 1)
	assert.Equal(t, "citation_manager", matches[0].Worker.ID)
	assert.Equal(t, 3, matches[0].Score)

	assert.Empty(t, r.MatchByKeyword(intent.Tokenize("translate to French")))
}

func TestRegistry_MatchByKeywordTiesKeepRegistrationOrder(t *testing.T) {
	first := worker.Descriptor{ID: "first", BaseURL: "http://a", Keywords: []string{"notes"}}
	second := worker.Descriptor{ID: "second", BaseURL: "http://b", Keywords: []string{"notes"}}
	r := newTestRegistry(t, first, second)

	for i := 0; i < 10; i++ {
		matches := r.MatchByKeyword(intent.Tokenize("notes"))
		require.Len(t, matches, 2)
		assert.Equal(t, "first", matches[0].Worker.ID)
		assert.Equal(t, "second", matches[1].Worker.ID)
	}
}

func TestRegistry_ConcurrentHealthUpdates(t *testing.T) {
	r := NewRegistry()
	for i := 0; i < 4; i++ {
		require.NoError(t, r.Register(worker.Descriptor{ID: fmt.Sprintf("w%d", i), BaseURL: "http://x"}))
	}
	base := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("w%d", i%4)
			h := worker.HealthHealthy
			if i%2 == 0 {
				h = worker.HealthOffline
			}
			_ = r.UpdateHealth(id, h, base.Add(time.Duration(i)*time.Millisecond))
			_, _ = r.Lookup(id)
			_ = r.All()
		}(i)
	}
	wg.Wait()

	for _, d := range r.All() {
		assert.Contains(t, []worker.Health{worker.HealthHealthy, worker.HealthOffline}, d.Health)
		assert.NotNil(t, d.LastChecked)
	}
}
