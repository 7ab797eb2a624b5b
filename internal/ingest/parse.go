// Package ingest turns extraction drops into storable facts. Drops are JSONL
// files produced by the external extraction service; lines may be malformed
// in the usual ways machine-written JSON is, so parsing repairs before it
// rejects.
package ingest

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator"
	"github.com/kaptinlin/jsonrepair"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"factnet/pkg/common"
	"factnet/pkg/logger"
)

var validate = validator.New()

// ParseDrop parses one JSONL extraction drop into facts ready for insertion.
// Lines that cannot be parsed or fail validation are skipped and counted, not
// fatal: one bad record must not sink the rest of the drop.
func ParseDrop(data []byte) ([]common.Fact, int, error) {
	lines := strings.Split(string(data), "\n")

	var facts []common.Fact
	skipped := 0
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var record common.FactRecord
		if err := unmarshalFlexible(line, &record); err != nil {
			logger.Warn("[Ingest] Skipping unparseable line", "line", i+1, "err", err)
			skipped++
			continue
		}
		if err := validate.Struct(record); err != nil {
			logger.Warn("[Ingest] Skipping invalid record", "line", i+1, "err", err)
			skipped++
			continue
		}

		publicID, err := gonanoid.New()
		if err != nil {
			return nil, 0, fmt.Errorf("failed to generate fact id: %w", err)
		}

		facts = append(facts, common.Fact{
			PublicID:      publicID,
			DocID:         record.DocID,
			Timestamp:     record.Timestamp,
			Actor:         strings.TrimSpace(record.Actor),
			Action:        strings.TrimSpace(record.Action),
			Target:        strings.TrimSpace(record.Target),
			Location:      strings.TrimSpace(record.Location),
			Category:      record.Category,
			Tags:          record.Tags,
			SequenceOrder: record.SequenceOrder,
		})
	}

	return facts, skipped, nil
}

// unmarshalFlexible tries standard unmarshaling, then double-encoded strings,
// then a repair pass over the malformed input.
func unmarshalFlexible(input string, out any) error {
	input = strings.TrimSpace(input)

	if err := json.Unmarshal([]byte(input), out); err == nil {
		return nil
	}

	var asString string
	if err := json.Unmarshal([]byte(input), &asString); err == nil {
		asString = strings.TrimSpace(asString)
		if err := json.Unmarshal([]byte(asString), out); err == nil {
			return nil
		}
		input = asString
	}

	repaired, err := jsonrepair.JSONRepair(input)
	if err != nil {
		return fmt.Errorf("json repair failed: %w", err)
	}

	if err := json.Unmarshal([]byte(repaired), out); err != nil {
		return fmt.Errorf("unmarshal failed after repair: %w", err)
	}
	return nil
}
