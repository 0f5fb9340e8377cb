package slugs

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"simple title", "Heart Failure", "heart-failure"},
		{"mixed case", "Chronic Obstructive Pulmonary Disease", "chronic-obstructive-pulmonary-disease"},
		{"punctuation stripped", "Crohn's Disease (Regional Enteritis)", "crohns-disease-regional-enteritis"},
		{"whitespace runs", "Heart   \t Failure", "heart-failure"},
		{"hyphen runs collapse", "Beta--Blockers", "beta-blockers"},
		{"leading and trailing trimmed", "  -Heart Failure- ", "heart-failure"},
		{"only symbols falls back", "!!!", "concept"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.title))
		})
	}
}

func TestGenerate_CleanStrategy(t *testing.T) {
	registry := NewRegistry(nil)

	slug, strategy := Generate("Heart Failure", "Acute heart failure requires rapid assessment.", registry)

	assert.Equal(t, "heart-failure", slug)
	assert.Equal(t, StrategyClean, strategy)
	assert.True(t, registry.Has("heart-failure"))
}

func TestGenerate_ContextualStrategy(t *testing.T) {
	registry := NewRegistry([]string{"heart-failure"})

	slug, strategy := Generate("Heart Failure", "Chronic heart failure management focuses on adherence.", registry)

	assert.Equal(t, "heart-failure-chronic", slug)
	assert.Equal(t, StrategyContextual, strategy)
}

func TestGenerate_SequentialStrategy(t *testing.T) {
	registry := NewRegistry([]string{"heart-failure", "heart-failure-chronic"})

	slug, strategy := Generate("Heart Failure", "No qualifying terms appear in this text.", registry)

	assert.Equal(t, "heart-failure-2", slug)
	assert.Equal(t, StrategySequential, strategy)
}

func TestGenerate_SequentialSkipsTakenNumbers(t *testing.T) {
	registry := NewRegistry([]string{"heart-failure", "heart-failure-2", "heart-failure-3"})

	slug, strategy := Generate("Heart Failure", "", registry)

	assert.Equal(t, "heart-failure-4", slug)
	assert.Equal(t, StrategySequential, strategy)
}

func TestGenerate_CategoryPriority(t *testing.T) {
	t.Run("acuity beats population", func(t *testing.T) {
		registry := NewRegistry([]string{"asthma"})
		slug, _ := Generate("Asthma", "Pediatric clients with severe asthma need escalation.", registry)
		assert.Equal(t, "asthma-severe", slug)
	})

	t.Run("population when no acuity term", func(t *testing.T) {
		registry := NewRegistry([]string{"asthma"})
		slug, _ := Generate("Asthma", "Pediatric asthma presents with wheezing.", registry)
		assert.Equal(t, "asthma-pediatric", slug)
	})

	t.Run("taken contextual candidate falls to sequential", func(t *testing.T) {
		registry := NewRegistry([]string{"asthma", "asthma-severe"})
		// "pediatric" is available but acuity matched first; no second category scan.
		slug, strategy := Generate("Asthma", "Severe pediatric asthma requires escalation.", registry)
		assert.Equal(t, "asthma-2", slug)
		assert.Equal(t, StrategySequential, strategy)
	})
}

func TestGenerate_ManyCollisions(t *testing.T) {
	for _, n := range []int{10, 1000} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			registry := NewRegistry(nil)
			seen := make(map[string]struct{}, n)

			for i := 0; i < n; i++ {
				slug, _ := Generate("Heart Failure", "", registry)
				_, duplicate := seen[slug]
				require.False(t, duplicate, "duplicate slug %q at iteration %d", slug, i)
				seen[slug] = struct{}{}
			}

			assert.Len(t, seen, n)
		})
	}
}

func TestGenerate_ConcurrentCallersNeverCollide(t *testing.T) {
	registry := NewRegistry(nil)

	const workers = 50
	results := make(chan string, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			slug, _ := Generate("Heart Failure", "Acute presentation.", registry)
			results <- slug
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[string]struct{})
	for slug := range results {
		_, duplicate := seen[slug]
		require.False(t, duplicate, "duplicate slug %q", slug)
		seen[slug] = struct{}{}
	}
	assert.Len(t, seen, workers)
}

func TestRegenerate_SkipsCleanAttempt(t *testing.T) {
	// Base slug free in the registry, but a stored row holds it; the
	// retry path must not hand the base slug out again.
	registry := NewRegistry(nil)

	slug, strategy := Regenerate("Heart Failure", "Chronic presentation.", registry)

	assert.Equal(t, "heart-failure-chronic", slug)
	assert.Equal(t, StrategyContextual, strategy)
	assert.False(t, registry.Has("heart-failure"))
}

func TestRegistry_Reserve(t *testing.T) {
	registry := NewRegistry([]string{"taken"})

	assert.False(t, registry.Reserve("taken"))
	assert.True(t, registry.Reserve("free"))
	assert.False(t, registry.Reserve("free"))
	assert.Equal(t, 2, registry.Len())
}
