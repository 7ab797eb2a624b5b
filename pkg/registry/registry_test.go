package registry

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"factnet/pkg/common"
)

func aliasRows(pairs ...[2]string) []common.AliasRecord {
	rows := make([]common.AliasRecord, 0, len(pairs))
	for _, p := range pairs {
		rows = append(rows, common.AliasRecord{OriginalName: p[0], CanonicalName: p[1], CreatedBy: "test"})
	}
	return rows
}

func TestResolve(t *testing.T) {
	reg, err := New(aliasRows(
		[2]string{"Jeff E.", "Jeffrey Epstein"},
		[2]string{"J. Epstein", "Jeffrey Epstein"},
		[2]string{"Jeffrey Epstein", "Jeffrey Epstein"},
	))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "alias resolves to canonical", in: "Jeff E.", want: "Jeffrey Epstein"},
		{name: "canonical resolves to itself", in: "Jeffrey Epstein", want: "Jeffrey Epstein"},
		{name: "unknown name resolves to itself", in: "Ghislaine Maxwell", want: "Ghislaine Maxwell"},
		{name: "empty name resolves to itself", in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := reg.Resolve(tt.in); got != tt.want {
				t.Fatalf("Resolve(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestResolveIdempotent(t *testing.T) {
	reg, err := New(aliasRows(
		[2]string{"Jeff E.", "Jeffrey Epstein"},
		[2]string{"GM", "Ghislaine Maxwell"},
	))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	for _, n := range []string{"Jeff E.", "Jeffrey Epstein", "GM", "Ghislaine Maxwell", "Unknown Person"} {
		once := reg.Resolve(n)
		twice := reg.Resolve(once)
		if once != twice {
			t.Fatalf("Resolve not idempotent for %q: %q != %q", n, once, twice)
		}
	}
}

func TestNewRejectsChains(t *testing.T) {
	_, err := New(aliasRows(
		[2]string{"A", "B"},
		[2]string{"B", "C"},
		[2]string{"C", "C"},
	))
	if err == nil {
		t.Fatal("expected chain error, got nil")
	}
	var chainErr *ChainError
	if !errors.As(err, &chainErr) {
		t.Fatalf("expected *ChainError, got %T", err)
	}
	if len(chainErr.Chains) != 1 {
		t.Fatalf("expected 1 chain, got %v", chainErr.Chains)
	}
	if chainErr.Chains[0] != "A -> B -> C" {
		t.Fatalf("unexpected chain description %q", chainErr.Chains[0])
	}
}

func TestAliasSet(t *testing.T) {
	reg, err := New(aliasRows(
		[2]string{"Jeff E.", "Jeffrey Epstein"},
		[2]string{"J. Epstein", "Jeffrey Epstein"},
		[2]string{"Jeffrey Epstein", "Jeffrey Epstein"},
	))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	want := []string{"J. Epstein", "Jeff E.", "Jeffrey Epstein"}

	// Expansion must be identical whether started from an alias or the canonical.
	for _, start := range []string{"Jeff E.", "Jeffrey Epstein", "J. Epstein"} {
		got := reg.AliasSet(start)
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("AliasSet(%q) = %v, want %v", start, got, want)
		}
	}

	if got := reg.AliasSet("Nobody"); !reflect.DeepEqual(got, []string{"Nobody"}) {
		t.Fatalf("AliasSet(unknown) = %v, want just the name", got)
	}
}

func TestBackfill(t *testing.T) {
	reg, err := New(aliasRows(
		[2]string{"Jeff E.", "Jeffrey Epstein"},
		[2]string{"GM", "Ghislaine Maxwell"},
		[2]string{"Ghislaine Maxwell", "Ghislaine Maxwell"},
	))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	rows := reg.Backfill("backfill-job", now)

	if len(rows) != 1 {
		t.Fatalf("expected 1 backfill row, got %d: %v", len(rows), rows)
	}
	row := rows[0]
	if row.OriginalName != "Jeffrey Epstein" || row.CanonicalName != "Jeffrey Epstein" {
		t.Fatalf("unexpected backfill row %+v", row)
	}
	if row.CreatedBy != "backfill-job" || !row.CreatedAt.Equal(now) {
		t.Fatalf("backfill provenance not set: %+v", row)
	}
}
