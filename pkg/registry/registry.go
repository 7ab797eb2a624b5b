package registry

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"factnet/pkg/common"
)

// Registry resolves raw entity names to their canonical spelling with a
// single map lookup. It is built once per snapshot from the alias table and
// is read-only afterwards, so it may be shared across goroutines.
type Registry struct {
	canonical map[string]string
	reverse   map[string][]string
}

// ChainError reports alias rows whose canonical name is itself an alias of a
// different name. Chains are a data-integrity problem: resolution is defined
// as exactly one hop, so they must be fixed upstream, never walked.
type ChainError struct {
	Chains []string
}

func (e *ChainError) Error() string {
	return fmt.Sprintf("alias chains detected: %s", strings.Join(e.Chains, "; "))
}

// New builds a registry from alias rows. Rows whose canonical name points at
// another alias produce a ChainError; the registry is not usable in that case.
func New(rows []common.AliasRecord) (*Registry, error) {
	canonical := make(map[string]string, len(rows))
	for _, row := range rows {
		canonical[row.OriginalName] = row.CanonicalName
	}

	var chains []string
	for _, row := range rows {
		next, ok := canonical[row.CanonicalName]
		if ok && next != row.CanonicalName {
			chains = append(chains, fmt.Sprintf("%s -> %s -> %s", row.OriginalName, row.CanonicalName, next))
		}
	}
	if len(chains) > 0 {
		sort.Strings(chains)
		return nil, &ChainError{Chains: chains}
	}

	reverse := make(map[string][]string)
	for original, canon := range canonical {
		if original == canon {
			continue
		}
		reverse[canon] = append(reverse[canon], original)
	}
	for _, originals := range reverse {
		sort.Strings(originals)
	}

	return &Registry{
		canonical: canonical,
		reverse:   reverse,
	}, nil
}

// Resolve returns the canonical name for the given raw name. Names without an
// alias row resolve to themselves, so Resolve is total and idempotent.
func (r *Registry) Resolve(name string) string {
	if canon, ok := r.canonical[name]; ok {
		return canon
	}
	return name
}

// AliasSet returns the full equivalence class of a name: every original name
// whose canonical equals Resolve(name), plus the canonical itself. The result
// is sorted for deterministic output.
func (r *Registry) AliasSet(name string) []string {
	canon := r.Resolve(name)
	set := make([]string, 0, len(r.reverse[canon])+1)
	set = append(set, canon)
	set = append(set, r.reverse[canon]...)
	sort.Strings(set)
	return set
}

// Backfill returns the self-referencing rows missing for canonical names that
// only appear on the right-hand side of the table. Persisting them keeps the
// invariant that every name ever queried has exactly one registry row.
func (r *Registry) Backfill(createdBy string, now time.Time) []common.AliasRecord {
	var missing []common.AliasRecord
	for _, canon := range r.canonical {
		if _, ok := r.canonical[canon]; !ok {
			missing = append(missing, common.AliasRecord{
				OriginalName:  canon,
				CanonicalName: canon,
				Reasoning:     "self-reference backfill",
				CreatedBy:     createdBy,
				CreatedAt:     now,
			})
		}
	}
	sort.Slice(missing, func(i, j int) bool {
		return missing[i].OriginalName < missing[j].OriginalName
	})
	return dedupeBackfill(missing)
}

func dedupeBackfill(rows []common.AliasRecord) []common.AliasRecord {
	out := rows[:0]
	var last string
	for _, row := range rows {
		if row.OriginalName == last && len(out) > 0 {
			continue
		}
		out = append(out, row)
		last = row.OriginalName
	}
	return out
}

// Size returns the number of alias rows the registry was built from.
func (r *Registry) Size() int {
	return len(r.canonical)
}
