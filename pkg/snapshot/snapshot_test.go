package snapshot

import (
	"reflect"
	"testing"
	"time"

	"factnet/pkg/common"
)

var testConfig = Config{Principal: "P", Sentinel: 1000}

func ts(year int) *time.Time {
	t := time.Date(year, 6, 1, 12, 0, 0, 0, time.UTC)
	return &t
}

func TestDedupeFacts(t *testing.T) {
	tests := []struct {
		name    string
		facts   []common.Fact
		wantIDs []int64
	}{
		{
			name: "exact duplicates collapse to lowest id",
			facts: []common.Fact{
				{ID: 7, DocID: "d1", Actor: "A", Action: "met", Target: "B"},
				{ID: 3, DocID: "d1", Actor: "A", Action: "met", Target: "B"},
			},
			wantIDs: []int64{3},
		},
		{
			name: "different action is not a duplicate",
			facts: []common.Fact{
				{ID: 1, DocID: "d1", Actor: "A", Action: "met", Target: "B"},
				{ID: 2, DocID: "d1", Actor: "A", Action: "called", Target: "B"},
			},
			wantIDs: []int64{1, 2},
		},
		{
			name: "different timestamp is not a duplicate",
			facts: []common.Fact{
				{ID: 1, DocID: "d1", Timestamp: ts(1995), Actor: "A", Action: "met", Target: "B"},
				{ID: 2, DocID: "d1", Timestamp: ts(1996), Actor: "A", Action: "met", Target: "B"},
			},
			wantIDs: []int64{1, 2},
		},
		{
			name: "undated duplicates collapse",
			facts: []common.Fact{
				{ID: 9, DocID: "d1", Actor: "A", Action: "met", Target: "B", Location: "NYC"},
				{ID: 4, DocID: "d1", Actor: "A", Action: "met", Target: "B", Location: "NYC"},
				{ID: 5, DocID: "d1", Actor: "A", Action: "met", Target: "B"}, // different location survives
			},
			wantIDs: []int64{4, 5},
		},
		{
			name:    "empty input",
			facts:   nil,
			wantIDs: []int64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DedupeFacts(tt.facts)
			gotIDs := make([]int64, 0, len(got))
			for _, f := range got {
				gotIDs = append(gotIDs, f.ID)
			}
			if !reflect.DeepEqual(gotIDs, tt.wantIDs) {
				t.Fatalf("DedupeFacts() ids = %v, want %v", gotIDs, tt.wantIDs)
			}
		})
	}
}

func TestDedupeKeyUniqueness(t *testing.T) {
	facts := []common.Fact{
		{ID: 1, DocID: "d1", Actor: "A", Action: "met", Target: "B"},
		{ID: 2, DocID: "d1", Actor: "A", Action: "met", Target: "B"},
		{ID: 3, DocID: "d2", Actor: "A", Action: "met", Target: "B"},
		{ID: 4, DocID: "d2", Actor: "A", Action: "met", Target: "B", Location: "Palm Beach"},
	}

	seen := make(map[string]bool)
	for _, f := range DedupeFacts(facts) {
		key := f.DedupeKey()
		if seen[key] {
			t.Fatalf("duplicate key %q survived dedupe", key)
		}
		seen[key] = true
	}
}

func TestBuild(t *testing.T) {
	facts := []common.Fact{
		{ID: 1, DocID: "d1", Actor: "P", Action: "met", Target: "A"},
		{ID: 2, DocID: "d1", Actor: "A", Action: "met", Target: "B"},
		{ID: 3, DocID: "d1", Actor: "P", Action: "met", Target: "C"},
		{ID: 4, DocID: "d1", Actor: "P", Action: "met", Target: "A"}, // duplicate of 1
	}
	aliases := []common.AliasRecord{
		{OriginalName: "A", CanonicalName: "A", CreatedBy: "test"},
	}
	clusters := []common.TagCluster{
		{ClusterID: "finance", Tags: []string{"money", "bank"}},
	}

	snap, err := Build(facts, aliases, clusters, testConfig)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if snap.EntityCount != 4 {
		t.Fatalf("EntityCount = %d, want 4", snap.EntityCount)
	}
	if snap.EdgeCount != 3 {
		t.Fatalf("EdgeCount = %d, want 3", snap.EdgeCount)
	}
	if !snap.Distances.PrincipalFound {
		t.Fatal("expected principal in graph")
	}
	if got := snap.Distances.Distance("B"); got != 2 {
		t.Fatalf("Distance(B) = %d, want 2", got)
	}
	if got := snap.Clusters["finance"]; !reflect.DeepEqual(got, []string{"money", "bank"}) {
		t.Fatalf("cluster lookup not carried into snapshot: %v", got)
	}
}

func TestBuildRejectsAliasChain(t *testing.T) {
	aliases := []common.AliasRecord{
		{OriginalName: "A", CanonicalName: "B", CreatedBy: "test"},
		{OriginalName: "B", CanonicalName: "C", CreatedBy: "test"},
	}
	if _, err := Build(nil, aliases, nil, testConfig); err == nil {
		t.Fatal("expected integrity error for alias chain")
	}
}

func TestRelevanceKey(t *testing.T) {
	facts := []common.Fact{
		{ID: 1, DocID: "d1", Actor: "P", Action: "met", Target: "A"},
		{ID: 2, DocID: "d1", Actor: "A", Action: "met", Target: "B"},
	}
	aliases := []common.AliasRecord{
		{OriginalName: "Bee", CanonicalName: "B", CreatedBy: "test"},
	}
	snap, err := Build(facts, aliases, nil, testConfig)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	tests := []struct {
		name string
		fact common.Fact
		want int
	}{
		{name: "principal endpoint wins", fact: common.Fact{Actor: "P", Target: "B"}, want: 0},
		{name: "min of both endpoints", fact: common.Fact{Actor: "A", Target: "B"}, want: 1},
		{name: "alias resolves before lookup", fact: common.Fact{Actor: "Bee", Target: "Bee"}, want: 2},
		{name: "unknown entities get sentinel", fact: common.Fact{Actor: "X", Target: "Y"}, want: 1000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := snap.RelevanceKey(tt.fact); got != tt.want {
				t.Fatalf("RelevanceKey() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestHandleSwap(t *testing.T) {
	empty := Empty(testConfig)
	h := NewHandle(empty)

	if h.Load() != empty {
		t.Fatal("handle did not return the initial snapshot")
	}
	if h.Version() != 0 {
		t.Fatalf("initial version = %d, want 0", h.Version())
	}

	next, err := Build([]common.Fact{{ID: 1, DocID: "d1", Actor: "P", Action: "met", Target: "A"}}, nil, nil, testConfig)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	next.Version = 7

	h.Store(next)
	if h.Load() != next || h.Version() != 7 {
		t.Fatal("swap did not publish the new snapshot")
	}
}

func TestEmptySnapshotServesQueries(t *testing.T) {
	snap := Empty(testConfig)
	if snap.Distances.PrincipalFound {
		t.Fatal("empty snapshot must report principal missing")
	}
	key := snap.RelevanceKey(common.Fact{Actor: "A", Target: "B"})
	if key != testConfig.Sentinel {
		t.Fatalf("RelevanceKey on empty snapshot = %d, want sentinel", key)
	}
}
