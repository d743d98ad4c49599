package domain

import "encoding/json"

// RawItem is one feed entry as scraped from the source, before normalization.
// All fields are the trimmed cell text of the item's description table.
type RawItem struct {
	Magnitude string // numeric part of e.g. "ML 2.5"
	Region    string
	DateTime  string // "2024-03-01 10:00:00.0 UTC"
	Location  string // e.g. "38.12 N ; 26.45 E"
	Depth     string // e.g. "10 km"

	// Raw is the original item markup, kept for diagnostics.
	Raw string
}

// EarthquakeEvent is the normalized record published for every new event.
// The JSON field names are the wire contract shared with subscribers.
type EarthquakeEvent struct {
	Magnitude      float64 `json:"Magnitude"`
	MagnitudeScale string  `json:"Magnitude Scale"`
	Region         string  `json:"Region"`
	DateTime       string  `json:"Date time"`
	Location       string  `json:"Location"`
	Depth          string  `json:"Depth"`
}

// idSeparator joins the identity fields of an event.
const idSeparator = "_"

// EventID derives the deduplication key for an event from its formatted
// report time and location. Two reports with the same rounded time and
// location text collapse into one event.
func EventID(e EarthquakeEvent) string {
	return e.DateTime + idSeparator + e.Location
}

// MarshalPayload serializes an event into the published JSON payload.
func MarshalPayload(e EarthquakeEvent) ([]byte, error) {
	return json.Marshal(e)
}

// ParsePayload decodes a published payload back into an event.
func ParsePayload(data []byte) (EarthquakeEvent, error) {
	var e EarthquakeEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return EarthquakeEvent{}, err
	}
	return e, nil
}
