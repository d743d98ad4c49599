package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	// Embed the zone database so conversion works in scratch images.
	_ "time/tzdata"
)

const (
	// DefaultTimezone is the civil zone report times are displayed in.
	DefaultTimezone = "America/New_York"

	// sourceTimeLayout matches "2024-03-01 10:00:00.000000 UTC". Fractional
	// seconds are accepted on parse even though the layout omits them.
	sourceTimeLayout = "2006-01-02 15:04:05 UTC"

	// DisplayTimeLayout is the canonical DateTime format, e.g. "2024-03-01 05:00:00 EST".
	DisplayTimeLayout = "2006-01-02 15:04:05 MST"
)

// Normalize converts a raw feed item into an EarthquakeEvent, converting the
// UTC report time into loc. Errors wrap ErrParse.
func Normalize(raw RawItem, loc *time.Location) (EarthquakeEvent, error) {
	magnitude, err := parseMagnitude(raw.Magnitude)
	if err != nil {
		return EarthquakeEvent{}, err
	}

	dateTime, err := convertReportTime(raw.DateTime, loc)
	if err != nil {
		return EarthquakeEvent{}, err
	}

	region := strings.TrimSpace(raw.Region)
	if region == "" {
		return EarthquakeEvent{}, fmt.Errorf("%w: region is empty", ErrParse)
	}
	location := strings.TrimSpace(raw.Location)
	if location == "" {
		return EarthquakeEvent{}, fmt.Errorf("%w: location is empty", ErrParse)
	}

	return EarthquakeEvent{
		Magnitude:      magnitude,
		MagnitudeScale: ClassifyMagnitude(magnitude),
		Region:         region,
		DateTime:       dateTime,
		Location:       location,
		Depth:          strings.TrimSpace(raw.Depth),
	}, nil
}

func parseMagnitude(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: magnitude is empty", ErrParse)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: magnitude %q is not numeric", ErrParse, s)
	}
	return v, nil
}

// convertReportTime parses a UTC report time and formats it in loc.
// Sub-second precision is dropped.
func convertReportTime(s string, loc *time.Location) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%w: date time is empty", ErrParse)
	}
	t, err := time.Parse(sourceTimeLayout, s)
	if err != nil {
		return "", fmt.Errorf("%w: date time %q: %v", ErrParse, s, err)
	}
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DisplayTimeLayout), nil
}
