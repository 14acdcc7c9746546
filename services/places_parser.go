package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"go-places/models"
	"go-places/utils/logger"
	"go-places/utils/metrics"
)

var ErrMissingResults = errors.New("places payload has no results collection")

// ParseResult holds the valid records in payload order and how many entries
// were skipped.
type ParseResult struct {
	Records []models.POIRecord
	Dropped int
}

// ParsePlaces validates a nearby-search payload. A payload without a results
// array fails as a whole; an entry missing any required field is skipped.
func ParsePlaces(payload []byte) (ParseResult, error) {
	// The results array is required; anything else at the top level is ignored
	var top map[string]json.RawMessage
	if err := json.Unmarshal(payload, &top); err != nil {
		return ParseResult{}, fmt.Errorf("decode places payload: %w", err)
	}
	raw, ok := top["results"]
	if !ok || string(raw) == "null" {
		return ParseResult{}, ErrMissingResults
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return ParseResult{}, fmt.Errorf("%w: %v", ErrMissingResults, err)
	}

	// Validate entries one by one, keeping payload order
	result := ParseResult{Records: make([]models.POIRecord, 0, len(entries))}
	for i, entry := range entries {
		record, missing := parsePlace(entry)
		if missing != "" {
			result.Dropped++
			metrics.RecordsDroppedTotal.WithLabelValues(missing).Inc()
			logger.L().Debug("skipping malformed place", "index", i, "field", missing)
			continue
		}
		result.Records = append(result.Records, record)
	}
	return result, nil
}

// parsePlace returns the record, or the name of the first field that is
// missing or of the wrong type.
func parsePlace(raw json.RawMessage) (models.POIRecord, string) {
	var entry map[string]any
	if err := json.Unmarshal(raw, &entry); err != nil || entry == nil {
		return models.POIRecord{}, "entry"
	}
	lat, ok := numberAt(entry, "geometry", "location", "lat")
	if !ok {
		return models.POIRecord{}, "lat"
	}
	lng, ok := numberAt(entry, "geometry", "location", "lng")
	if !ok {
		return models.POIRecord{}, "lng"
	}
	reference, ok := firstString(entry, "reference", "place_id")
	if !ok {
		return models.POIRecord{}, "reference"
	}
	name, ok := stringAt(entry, "name")
	if !ok {
		return models.POIRecord{}, "name"
	}
	address, ok := firstString(entry, "vicinity", "formatted_address")
	if !ok {
		return models.POIRecord{}, "address"
	}
	record, err := models.NewPOIRecord(models.Coordinate{Latitude: lat, Longitude: lng}, reference, name, address)
	if err != nil {
		return models.POIRecord{}, "coordinate"
	}
	return record, ""
}

func valueAt(entry map[string]any, path ...string) (any, bool) {
	var cur any = entry
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = m[key]; !ok {
			return nil, false
		}
	}
	return cur, true
}

func numberAt(entry map[string]any, path ...string) (float64, bool) {
	v, ok := valueAt(entry, path...)
	if !ok {
		return 0, false
	}
	f, ok := v.(float64)
	return f, ok
}

func stringAt(entry map[string]any, path ...string) (string, bool) {
	v, ok := valueAt(entry, path...)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func firstString(entry map[string]any, keys ...string) (string, bool) {
	for _, key := range keys {
		if s, ok := stringAt(entry, key); ok {
			return s, true
		}
	}
	return "", false
}
