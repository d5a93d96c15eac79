package extraction

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"

	"github.com/kmarankit/Money-Stories-Final/pkg/contracts/domain"
)

// errNotArray marks model output that parsed as JSON but was not a list.
var errNotArray = errors.New("model output is not a JSON array")

// DecodeResult describes how model output was turned into records.
type DecodeResult struct {
	Records []domain.Record
	// Repaired is set when the raw text needed json-repair to parse.
	Repaired bool
	// Skipped counts array elements that were not objects.
	Skipped int
}

// DecodeRecords parses a JSON array of objects, keeping each object's key
// order. Malformed output is passed through json-repair once before giving up.
func DecodeRecords(raw string) (DecodeResult, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DecodeResult{Records: []domain.Record{}}, nil
	}

	res, err := decodeArray([]byte(raw))
	if err == nil {
		return res, nil
	}
	if errors.Is(err, errNotArray) {
		return DecodeResult{}, err
	}

	repaired, repairErr := jsonrepair.RepairJSON(raw)
	if repairErr != nil {
		return DecodeResult{}, fmt.Errorf("repair model output: %w (decode: %v)", repairErr, err)
	}
	res, err = decodeArray([]byte(repaired))
	if err != nil {
		return DecodeResult{}, fmt.Errorf("decode repaired output: %w", err)
	}
	res.Repaired = true
	return res, nil
}

func decodeArray(data []byte) (DecodeResult, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] != '[' {
		if json.Valid(data) {
			return DecodeResult{}, errNotArray
		}
		return DecodeResult{}, fmt.Errorf("invalid JSON")
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return DecodeResult{}, err
	}

	res := DecodeResult{Records: make([]domain.Record, 0, len(items))}
	for _, item := range items {
		item = bytes.TrimSpace(item)
		if len(item) == 0 || item[0] != '{' {
			res.Skipped++
			continue
		}
		var rec domain.Record
		if err := json.Unmarshal(item, &rec); err != nil {
			return DecodeResult{}, err
		}
		res.Records = append(res.Records, rec)
	}
	return res, nil
}
