package models

// LocationSample is one report from the device location service.
type LocationSample struct {
	Coordinate Coordinate `json:"coordinate"`
	// HorizontalAccuracy is the radius of uncertainty in meters. Negative
	// values mark an invalid fix.
	HorizontalAccuracy float64 `json:"horizontal_accuracy"`
	// Heading is degrees clockwise from true north, negative when unknown.
	Heading float64 `json:"heading"`
}
