package ingest

import (
	"testing"
)

func TestParseDrop(t *testing.T) {
	data := []byte(`{"doc_id":"d1","actor":"A","action":"met","target":"B"}
{"doc_id":"d1","actor":"B","action":"called","target":"C","location":"Paris","tags":["travel"]}
`)

	facts, skipped, err := ParseDrop(data)
	if err != nil {
		t.Fatalf("ParseDrop() error = %v", err)
	}
	if skipped != 0 {
		t.Fatalf("skipped = %d, want 0", skipped)
	}
	if len(facts) != 2 {
		t.Fatalf("got %d facts, want 2", len(facts))
	}
	if facts[0].PublicID == "" || facts[1].PublicID == "" {
		t.Fatal("facts missing public ids")
	}
	if facts[0].PublicID == facts[1].PublicID {
		t.Fatal("public ids not unique")
	}
	if facts[1].Location != "Paris" {
		t.Fatalf("location = %q, want Paris", facts[1].Location)
	}
}

func TestParseDropRepairsMalformedLines(t *testing.T) {
	// Unquoted keys and a trailing comma, typical machine-written sloppiness.
	data := []byte(`{doc_id: "d1", actor: "A", action: "met", target: "B",}`)

	facts, skipped, err := ParseDrop(data)
	if err != nil {
		t.Fatalf("ParseDrop() error = %v", err)
	}
	if skipped != 0 {
		t.Fatalf("skipped = %d, want 0", skipped)
	}
	if len(facts) != 1 {
		t.Fatalf("got %d facts, want 1", len(facts))
	}
	if facts[0].Actor != "A" || facts[0].Target != "B" {
		t.Fatalf("unexpected fact: %+v", facts[0])
	}
}

func TestParseDropSkipsInvalidRecords(t *testing.T) {
	data := []byte(`{"doc_id":"d1","actor":"A","action":"met","target":"B"}
{"doc_id":"d1","actor":"A","action":"met"}
not even close to json """
{"doc_id":"d1","actor":"C","action":"met","target":"D"}`)

	facts, skipped, err := ParseDrop(data)
	if err != nil {
		t.Fatalf("ParseDrop() error = %v", err)
	}
	if len(facts) != 2 {
		t.Fatalf("got %d facts, want 2", len(facts))
	}
	if skipped != 2 {
		t.Fatalf("skipped = %d, want 2", skipped)
	}
}

func TestParseDropTrimsNames(t *testing.T) {
	data := []byte(`{"doc_id":"d1","actor":"  A ","action":" met","target":"B  "}`)

	facts, _, err := ParseDrop(data)
	if err != nil {
		t.Fatalf("ParseDrop() error = %v", err)
	}
	if facts[0].Actor != "A" || facts[0].Action != "met" || facts[0].Target != "B" {
		t.Fatalf("names not trimmed: %+v", facts[0])
	}
}

func TestParseDropEmptyInput(t *testing.T) {
	facts, skipped, err := ParseDrop([]byte("\n\n"))
	if err != nil {
		t.Fatalf("ParseDrop() error = %v", err)
	}
	if len(facts) != 0 || skipped != 0 {
		t.Fatalf("expected empty result, got %d facts %d skipped", len(facts), skipped)
	}
}
