package query

import "fmt"

// Spec is a parsed, validated query. Empty filter lists mean "no constraint"
// for that dimension; MaxHops below zero means unbounded.
type Spec struct {
	Limit          int
	Clusters       []string
	Categories     []string
	YearMin        int
	YearMax        int
	IncludeUndated bool
	Keywords       []string
	MaxHops        int
}

// maxFilterTerms bounds every comma-list filter; oversized lists are rejected
// at the boundary instead of being scanned.
const maxFilterTerms = 100

// NewSpec returns a spec with the defaults the HTTP layer starts from:
// undated facts included, hop distance unbounded.
func NewSpec(limit int) Spec {
	return Spec{
		Limit:          limit,
		IncludeUndated: true,
		MaxHops:        -1,
	}
}

// ValidationError is an input problem reported back to the caller with a
// specific reason. It never reaches the pipeline.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid query: " + e.Reason
}

func invalidf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// Validate rejects specs the pipeline must never see. The limit is checked
// against zero here; capping at the configured maximum happens in the
// service, since an over-large limit is clamped rather than rejected.
func (s Spec) Validate() error {
	if s.Limit <= 0 {
		return invalidf("limit must be positive, got %d", s.Limit)
	}
	if len(s.Clusters) > maxFilterTerms {
		return invalidf("too many cluster ids (%d > %d)", len(s.Clusters), maxFilterTerms)
	}
	if len(s.Categories) > maxFilterTerms {
		return invalidf("too many categories (%d > %d)", len(s.Categories), maxFilterTerms)
	}
	if len(s.Keywords) > maxFilterTerms {
		return invalidf("too many keywords (%d > %d)", len(s.Keywords), maxFilterTerms)
	}
	if s.YearMin != 0 && s.YearMax != 0 && s.YearMin > s.YearMax {
		return invalidf("yearMin %d is after yearMax %d", s.YearMin, s.YearMax)
	}
	return nil
}

func (s Spec) hasDateFilter() bool {
	return s.YearMin != 0 || s.YearMax != 0
}
