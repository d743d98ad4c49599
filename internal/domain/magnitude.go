package domain

// Magnitude scale labels.
const (
	ScaleMicro       = "Micro"
	ScaleMinor       = "Minor"
	ScaleLight       = "Light"
	ScaleModerate    = "Moderate"
	ScaleStrong      = "Strong"
	ScaleMajor       = "Major"
	ScaleGreat       = "Great"
	ScaleExceptional = "Exceptional"
	ScaleUnknown     = "Unknown"
)

type magnitudeBucket struct {
	low, high float64
	label     string
}

// magnitudeBuckets are inclusive on both ends and checked in order.
// Values that fall between buckets (e.g. 1.95) are Unknown.
var magnitudeBuckets = []magnitudeBucket{
	{0, 1.9, ScaleMicro},
	{2, 2.9, ScaleMinor},
	{3, 3.9, ScaleLight},
	{4, 4.9, ScaleModerate},
	{5, 5.9, ScaleStrong},
	{6, 6.9, ScaleMajor},
	{7, 7.9, ScaleGreat},
	{8, 10, ScaleExceptional},
}

// ClassifyMagnitude maps a magnitude to its descriptive scale label.
// Negative values, values above 10 and NaN return ScaleUnknown.
func ClassifyMagnitude(m float64) string {
	for _, b := range magnitudeBuckets {
		if b.low <= m && m <= b.high {
			return b.label
		}
	}
	return ScaleUnknown
}
