package query

import (
	"sort"
	"strings"

	"factnet/pkg/common"
	"factnet/pkg/snapshot"
)

// Result is the output of a query: a bounded, ordered fact list plus the
// pre-truncation and pre-filter counts, so a caller can tell "nothing
// matched" apart from "too much matched, truncated".
type Result struct {
	Facts                 []common.Fact `json:"facts"`
	CountBeforeTruncation int           `json:"count_before_truncation"`
	CountBeforeFilter     int           `json:"count_before_filter"`
}

// ActorResult is the actor-scoped output. The view is complete by contract,
// so there is no truncation count to report.
type ActorResult struct {
	Facts             []common.Fact `json:"facts"`
	CountBeforeFilter int           `json:"count_before_filter"`
}

// Pipeline turns a raw fact set into a bounded, relevance-ordered result:
// filter, score against the snapshot's distance index, order, truncate. Every
// stage narrows or reorders; none re-expands.
type Pipeline struct {
	// ScanCeiling bounds the number of rows considered per query. Exceeding
	// it truncates the scan rather than erroring.
	ScanCeiling int
}

type scoredFact struct {
	fact common.Fact
	key  int
}

// Run executes the full pipeline. The input facts are assumed deduplicated
// (the store guarantees that) and ordered by ID.
func (p Pipeline) Run(facts []common.Fact, spec Spec, snap *snapshot.Snapshot) Result {
	if p.ScanCeiling > 0 && len(facts) > p.ScanCeiling {
		facts = facts[:p.ScanCeiling]
	}

	keep := buildPredicate(spec, snap)

	scored := make([]scoredFact, 0, len(facts))
	for _, f := range facts {
		if !keep(f) {
			continue
		}
		key := snap.RelevanceKey(f)
		if spec.MaxHops >= 0 && key > spec.MaxHops {
			continue
		}
		scored = append(scored, scoredFact{fact: f, key: key})
	}

	// Ascending by relevance key; ties broken by fact ID so identical queries
	// against the same snapshot return identical order.
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].key != scored[j].key {
			return scored[i].key < scored[j].key
		}
		return scored[i].fact.ID < scored[j].fact.ID
	})

	countBeforeTruncation := len(scored)
	if spec.Limit > 0 && len(scored) > spec.Limit {
		scored = scored[:spec.Limit]
	}

	out := make([]common.Fact, len(scored))
	for i, s := range scored {
		out[i] = s.fact
	}

	return Result{
		Facts:                 out,
		CountBeforeTruncation: countBeforeTruncation,
		CountBeforeFilter:     len(facts),
	}
}

// FilterOnly applies the filter stages without scoring or truncation, for the
// actor-scoped view, which is complete by contract. Output is ordered by fact
// ID.
func (p Pipeline) FilterOnly(facts []common.Fact, spec Spec, snap *snapshot.Snapshot) Result {
	if p.ScanCeiling > 0 && len(facts) > p.ScanCeiling {
		facts = facts[:p.ScanCeiling]
	}

	keep := buildPredicate(spec, snap)

	out := make([]common.Fact, 0, len(facts))
	for _, f := range facts {
		if keep(f) {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return Result{
		Facts:                 out,
		CountBeforeTruncation: len(out),
		CountBeforeFilter:     len(facts),
	}
}

// buildPredicate combines the cluster, category, date-range, and keyword
// filters into one AND-ed predicate. Unrecognized cluster ids contribute
// nothing rather than erroring.
func buildPredicate(spec Spec, snap *snapshot.Snapshot) func(common.Fact) bool {
	var clusterTags map[string]struct{}
	if len(spec.Clusters) > 0 {
		clusterTags = make(map[string]struct{})
		for _, id := range spec.Clusters {
			for _, tag := range snap.Clusters[id] {
				clusterTags[tag] = struct{}{}
			}
		}
	}

	var categories map[string]struct{}
	if len(spec.Categories) > 0 {
		categories = make(map[string]struct{}, len(spec.Categories))
		for _, c := range spec.Categories {
			categories[c] = struct{}{}
		}
	}

	keywords := make([]string, 0, len(spec.Keywords))
	for _, k := range spec.Keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			keywords = append(keywords, k)
		}
	}

	return func(f common.Fact) bool {
		if clusterTags != nil && !tagsIntersect(f.Tags, clusterTags) {
			return false
		}
		if categories != nil {
			if _, ok := categories[f.Category]; !ok {
				return false
			}
		}
		if spec.hasDateFilter() && !dateInRange(f, spec) {
			return false
		}
		if len(keywords) > 0 && !matchesKeywords(f, keywords) {
			return false
		}
		return true
	}
}

func tagsIntersect(tags []string, wanted map[string]struct{}) bool {
	for _, t := range tags {
		if _, ok := wanted[t]; ok {
			return true
		}
	}
	return false
}

func dateInRange(f common.Fact, spec Spec) bool {
	if f.Timestamp == nil {
		return spec.IncludeUndated
	}
	year := f.Timestamp.UTC().Year()
	if spec.YearMin != 0 && year < spec.YearMin {
		return false
	}
	if spec.YearMax != 0 && year > spec.YearMax {
		return false
	}
	return true
}

func matchesKeywords(f common.Fact, keywords []string) bool {
	haystack := strings.ToLower(f.Actor + " " + f.Action + " " + f.Target + " " + f.Location)
	for _, k := range keywords {
		if strings.Contains(haystack, k) {
			return true
		}
	}
	return false
}
