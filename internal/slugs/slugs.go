// Package slugs generates globally-unique, human-readable slugs for
// concept titles that repeat across the corpus.
//
// Three strategies are tried in order: the clean normalized title, a
// contextual variant qualified by a medical term found in the surrounding
// text, and finally sequential numbering.
package slugs

import (
	"fmt"
	"regexp"
	"strings"
)

// Strategy names which tier produced a slug.
type Strategy string

const (
	StrategyClean      Strategy = "clean"
	StrategyContextual Strategy = "contextual"
	StrategySequential Strategy = "sequential"
)

var (
	// Characters that never appear in a slug
	invalidSlugChars = regexp.MustCompile(`[^a-z0-9\s-]`)
	// Whitespace runs become single hyphens
	whitespaceRuns = regexp.MustCompile(`\s+`)
	// Repeated hyphens collapse
	hyphenRuns = regexp.MustCompile(`-{2,}`)
)

// contextCategories are evaluated in fixed priority order; the first
// category with a term present in the context text wins and the rest are
// never consulted.
var contextCategories = []struct {
	name    string
	pattern *regexp.Regexp
}{
	{"acuity", regexp.MustCompile(`\b(acute|chronic|severe|mild|critical|moderate)\b`)},
	{"population", regexp.MustCompile(`\b(pediatric|adult|geriatric|neonatal|adolescent)\b`)},
	{"body-system", regexp.MustCompile(`\b(cardiac|pulmonary|renal|hepatic|neurologic)\b`)},
	{"domain", regexp.MustCompile(`\b(medication|surgery|therapy|assessment|prevention)\b`)},
	{"care-type", regexp.MustCompile(`\b(surgical|diagnostic|therapeutic)\b`)},
}

// Normalize converts a title into its base slug: lowercase, restricted to
// [a-z0-9-], whitespace runs collapsed to single hyphens, no leading,
// trailing or repeated hyphens.
func Normalize(title string) string {
	slug := strings.ToLower(title)
	slug = invalidSlugChars.ReplaceAllString(slug, "")
	slug = whitespaceRuns.ReplaceAllString(slug, "-")
	slug = hyphenRuns.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "concept"
	}
	return slug
}

// Generate produces a slug for the title that is unique within the
// registry, reserving it before returning.
func Generate(title, contextText string, registry *Registry) (string, Strategy) {
	base := Normalize(title)

	if registry.Reserve(base) {
		return base, StrategyClean
	}

	return disambiguate(base, contextText, registry)
}

// Regenerate skips the clean attempt. It is used when a stored row already
// holds the base slug and the registry was stale, so only the contextual
// and sequential tiers make sense.
func Regenerate(title, contextText string, registry *Registry) (string, Strategy) {
	return disambiguate(Normalize(title), contextText, registry)
}

func disambiguate(base, contextText string, registry *Registry) (string, Strategy) {
	if term, ok := contextTerm(contextText); ok {
		candidate := base + "-" + term
		// A taken contextual candidate falls straight through to
		// sequential numbering; other categories are not consulted.
		if registry.Reserve(candidate) {
			return candidate, StrategyContextual
		}
	}

	return sequential(base, registry), StrategySequential
}

// contextTerm scans the context text against the ordered categories and
// returns the first matching term of the first matching category.
func contextTerm(contextText string) (string, bool) {
	lowered := strings.ToLower(contextText)
	for _, category := range contextCategories {
		if term := category.pattern.FindString(lowered); term != "" {
			return term, true
		}
	}
	return "", false
}

// sequential finds the lowest unused integer suffix >= 2 against the full
// registry. Collisions are sparse in practice, so the loop stays short.
func sequential(base string, registry *Registry) string {
	for counter := 2; ; counter++ {
		candidate := fmt.Sprintf("%s-%d", base, counter)
		if registry.Reserve(candidate) {
			return candidate
		}
	}
}
