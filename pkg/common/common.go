package common

import "time"

// Fact is one subject-action-object statement extracted from a document.
// Facts are immutable once ingested. Actor and Target hold the raw names as
// they appeared in the source text; canonicalization happens at query and
// rebuild time through the alias registry.
type Fact struct {
	ID            int64      `json:"id"`
	PublicID      string     `json:"public_id"`
	DocID         string     `json:"doc_id"`
	Timestamp     *time.Time `json:"timestamp,omitempty"`
	Actor         string     `json:"actor"`
	Action        string     `json:"action"`
	Target        string     `json:"target"`
	Location      string     `json:"location,omitempty"`
	Category      string     `json:"category,omitempty"`
	Tags          []string   `json:"tags,omitempty"`
	SequenceOrder int        `json:"sequence_order"`
}

// DedupeKey identifies duplicate facts. Two facts with the same key describe
// the same statement and are collapsed to the one with the lowest ID.
func (f Fact) DedupeKey() string {
	ts := ""
	if f.Timestamp != nil {
		ts = f.Timestamp.UTC().Format(time.RFC3339)
	}
	return f.DocID + "\x1f" + ts + "\x1f" + f.Actor + "\x1f" + f.Action + "\x1f" + f.Target + "\x1f" + f.Location
}

// FactRecord is the wire format produced by the external extraction service
// and accepted by the ingest endpoints.
type FactRecord struct {
	DocID         string     `json:"doc_id" validate:"required"`
	Timestamp     *time.Time `json:"timestamp,omitempty"`
	Actor         string     `json:"actor" validate:"required"`
	Action        string     `json:"action" validate:"required"`
	Target        string     `json:"target" validate:"required"`
	Location      string     `json:"location,omitempty"`
	Category      string     `json:"category,omitempty"`
	Tags          []string   `json:"tags,omitempty"`
	SequenceOrder int        `json:"sequence_order,omitempty"`
}

// AliasRecord maps one raw entity name to its canonical spelling. A name that
// is itself canonical carries a self-referencing row, so resolution is always
// exactly one lookup.
type AliasRecord struct {
	OriginalName  string    `json:"original_name"`
	CanonicalName string    `json:"canonical_name"`
	Reasoning     string    `json:"reasoning,omitempty"`
	CreatedBy     string    `json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`
}

// TagCluster is one row of the externally produced cluster lookup table.
type TagCluster struct {
	ClusterID string   `json:"cluster_id"`
	Tags      []string `json:"tags"`
}
