package graphqlpipeline

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/shreyasgm/atlas-router/internal/catalog"
	"github.com/shreyasgm/atlas-router/internal/modelclient"
)

// ResolvedEntity is the outcome of resolve_ids for one entity slot (spec.md
// §4.6 node 4).
type ResolvedEntity struct {
	ID    int
	Name  string
	Found bool
}

func nameField(e any) string { return e.(resolvable).EntityName() }

// resolveEntity resolves an entity against the combined candidate set from
// an exact code/index lookup (Step A) and a name substring search (Step B),
// deduplicated by identity; an exact case-insensitive name match anywhere
// in that combined set wins without asking the Model, so a correct name
// guess can override a wrong code guess (spec.md §4.6 node 4). Only when
// more than one candidate survives and none matches the name exactly does
// the Model arbitrate, and an unusable Model reply falls back to the first
// candidate rather than leaving the entity unresolved. kind labels the
// entity in notes and in the prompt shown to the Model ("country",
// "partner", "product", "group").
func (p *Pipeline) resolveEntity(ctx context.Context, cache *catalog.Cache, kind, codeGuess, nameGuess string, notes *[]string) ResolvedEntity {
	if codeGuess == "" && nameGuess == "" {
		return ResolvedEntity{}
	}

	var candidates []any
	seen := make(map[any]bool)

	// Step A: exact code/index lookup.
	if codeGuess != "" {
		entry, err := cache.Lookup(ctx, "code", codeGuess)
		if err != nil {
			*notes = append(*notes, fmt.Sprintf("%s lookup failed: %v", kind, err))
		} else if entry != nil {
			candidates = append(candidates, entry)
			seen[entry] = true
		}
	}

	// Step B: name substring search, limit 5, deduplicated against Step A.
	if nameGuess != "" {
		results, err := cache.Search(ctx, nameField, nameGuess, 5)
		if err != nil {
			*notes = append(*notes, fmt.Sprintf("%s search failed: %v", kind, err))
		}
		for _, r := range results {
			if !seen[r] {
				candidates = append(candidates, r)
				seen[r] = true
			}
		}
	}

	switch len(candidates) {
	case 0:
		*notes = append(*notes, fmt.Sprintf("could not resolve %s %q", kind, firstNonEmpty(nameGuess, codeGuess)))
		return ResolvedEntity{}
	case 1:
		r := candidates[0].(resolvable)
		return ResolvedEntity{ID: r.EntityID(), Name: r.EntityName(), Found: true}
	}

	// Exact case-insensitive name match, fast path, no Model call needed.
	if nameGuess != "" {
		for _, c := range candidates {
			r := c.(resolvable)
			if strings.EqualFold(r.EntityName(), nameGuess) {
				return ResolvedEntity{ID: r.EntityID(), Name: r.EntityName(), Found: true}
			}
		}
	}

	idx, err := p.pickByIndex(ctx, kind, firstNonEmpty(nameGuess, codeGuess), candidates)
	if err != nil {
		*notes = append(*notes, fmt.Sprintf("ambiguous %s %q, falling back to first candidate: %v", kind, firstNonEmpty(nameGuess, codeGuess), err))
		idx = 0
	}
	r := candidates[idx].(resolvable)
	return ResolvedEntity{ID: r.EntityID(), Name: r.EntityName(), Found: true}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// pickByIndex asks the Model to choose among ambiguous name-search
// candidates by 1-based index, returning the 0-based slice index.
func (p *Pipeline) pickByIndex(ctx context.Context, kind, nameGuess string, candidates []any) (int, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Several %s entries match %q. Reply with only the number of the correct one.\n", kind, nameGuess)
	for i, c := range candidates {
		fmt.Fprintf(&b, "%d. %s\n", i+1, c.(resolvable).EntityName())
	}

	resp, err := p.model.Invoke(ctx, modelclient.Request{
		SystemPrompt: "You disambiguate a catalog entity by replying with a single number and nothing else.",
		Messages:     []modelclient.RequestMessage{{Role: "human", Content: b.String()}},
	})
	if err != nil {
		return 0, fmt.Errorf("disambiguation model call: %w", err)
	}

	n, err := strconv.Atoi(strings.TrimSpace(resp.Content))
	if err != nil || n < 1 || n > len(candidates) {
		return 0, fmt.Errorf("model returned an unusable selection %q", resp.Content)
	}
	return n - 1, nil
}

// resolveProduct resolves a product, retrying in the services catalog when
// the goods catalog misses entirely (spec.md §4.6 node 4 "If product
// resolution misses, retry in the services catalog").
func (p *Pipeline) resolveProduct(ctx context.Context, codeGuess, nameGuess string, notes *[]string) ResolvedEntity {
	result := p.resolveEntity(ctx, p.products, "product", codeGuess, nameGuess, notes)
	if result.Found || p.services == nil {
		return result
	}
	return p.resolveEntity(ctx, p.services, "product", codeGuess, nameGuess, notes)
}
