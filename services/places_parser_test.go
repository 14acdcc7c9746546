package services

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go-places/models"
	"testing"
)

const threePlacesOneNameless = `{
  "status": "OK",
  "results": [
    {"geometry": {"location": {"lat": 1.2834, "lng": 103.8591}}, "reference": "ref-a", "name": "Marina Bay Sands", "vicinity": "10 Bayfront Ave"},
    {"geometry": {"location": {"lat": 1.2816, "lng": 103.8636}}, "reference": "ref-b", "vicinity": "18 Marina Gardens Dr"},
    {"geometry": {"location": {"lat": 1.2868, "lng": 103.8545}}, "reference": "ref-c", "name": "Merlion Park", "vicinity": ""}
  ]
}`

func TestParsePlacesSkipsEntryMissingName(t *testing.T) {
	result, err := ParsePlaces([]byte(threePlacesOneNameless))
	require.NoError(t, err)

	require.Len(t, result.Records, 2)
	assert.Equal(t, 1, result.Dropped)
	assert.Equal(t, "Marina Bay Sands", result.Records[0].Name())
	assert.Equal(t, "ref-a", result.Records[0].ExternalReference())
	assert.Equal(t, "10 Bayfront Ave", result.Records[0].Address())
	assert.Equal(t, models.Coordinate{Latitude: 1.2834, Longitude: 103.8591}, result.Records[0].Coordinate())
	assert.Equal(t, "Merlion Park", result.Records[1].Name())
	assert.Equal(t, "", result.Records[1].Address())
}

func TestParsePlacesDropsEachKindOfMalformedEntry(t *testing.T) {
	payload := `{"results": [
	  {"geometry": {"location": {"lng": 1}}, "reference": "r", "name": "no lat", "vicinity": ""},
	  {"geometry": {"location": {"lat": 1}}, "reference": "r", "name": "no lng", "vicinity": ""},
	  {"geometry": {"location": {"lat": "1", "lng": 1}}, "reference": "r", "name": "string lat", "vicinity": ""},
	  {"geometry": {"location": {"lat": 1, "lng": 1}}, "name": "no reference", "vicinity": ""},
	  {"geometry": {"location": {"lat": 1, "lng": 1}}, "reference": "r", "name": 7, "vicinity": ""},
	  {"geometry": {"location": {"lat": 1, "lng": 1}}, "reference": "r", "name": "no address"},
	  {"geometry": {"location": {"lat": 95, "lng": 1}}, "reference": "r", "name": "bad lat", "vicinity": ""},
	  "not an object",
	  {"geometry": "flat", "reference": "r", "name": "flat geometry", "vicinity": ""}
	]}`
	result, err := ParsePlaces([]byte(payload))
	require.NoError(t, err)
	assert.Empty(t, result.Records)
	assert.Equal(t, 9, result.Dropped)
}

func TestParsePlacesAcceptsAlternateFields(t *testing.T) {
	payload := `{"results": [
	  {"geometry": {"location": {"lat": 1, "lng": 2}}, "place_id": "pid", "name": "Alt", "formatted_address": "1 Street"}
	]}`
	result, err := ParsePlaces([]byte(payload))
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	assert.Equal(t, "pid", result.Records[0].ExternalReference())
	assert.Equal(t, "1 Street", result.Records[0].Address())
}

func TestParsePlacesKeepsOrderAndDuplicates(t *testing.T) {
	payload := `{"results": [
	  {"geometry": {"location": {"lat": 1, "lng": 1}}, "reference": "dup", "name": "First", "vicinity": ""},
	  {"geometry": {"location": {"lat": 2, "lng": 2}}, "reference": "dup", "name": "Second", "vicinity": ""},
	  {"geometry": {"location": {"lat": 3, "lng": 3}}, "reference": "other", "name": "Third", "vicinity": ""}
	]}`
	result, err := ParsePlaces([]byte(payload))
	require.NoError(t, err)
	require.Len(t, result.Records, 3)
	assert.Equal(t, []string{"First", "Second", "Third"}, []string{
		result.Records[0].Name(), result.Records[1].Name(), result.Records[2].Name(),
	})
}

func TestParsePlacesRequiresResults(t *testing.T) {
	for _, payload := range []string{
		`{"status": "REQUEST_DENIED"}`,
		`{"results": null}`,
		`{"results": {"a": 1}}`,
	} {
		_, err := ParsePlaces([]byte(payload))
		assert.ErrorIs(t, err, ErrMissingResults, payload)
	}
}

func TestParsePlacesRejectsInvalidJSON(t *testing.T) {
	_, err := ParsePlaces([]byte(`<html>`))
	assert.Error(t, err)
	_, err = ParsePlaces([]byte(`[1, 2]`))
	assert.Error(t, err)
}

func TestParsePlacesEmptyResults(t *testing.T) {
	result, err := ParsePlaces([]byte(`{"status": "ZERO_RESULTS", "results": []}`))
	require.NoError(t, err)
	assert.Empty(t, result.Records)
	assert.Zero(t, result.Dropped)
}
