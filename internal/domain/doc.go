// Package domain models EMSC earthquake reports.
//
// # Data Source
//
// Reports come from the European-Mediterranean Seismological Centre (EMSC) RSS
// feed at https://www.emsc-csem.org/service/rss/rss.php?typ=emsc. Each item's
// description is an HTML table; the cells of class "point2" hold, in order,
// magnitude, region, report time, location and depth. Scraping lives in the
// emsc adapter; this package only sees the extracted cell text as a [RawItem].
//
// # Feed Conventions
//
// Magnitude:
//
//	"<type> <value>", e.g. "ML 2.5" or "mb 4.6". Only the numeric value is kept.
//	Negative magnitudes occur for tiny local events and are valid input.
//
// Report time:
//
//	"YYYY-MM-DD HH:MM:SS.ffffff UTC", e.g. "2024-03-01 10:00:00.000000 UTC".
//	Converted to a civil zone (US Eastern by default) through the IANA
//	database and rendered as "2024-03-01 05:00:00 EST". Daylight-saving
//	abbreviations follow the instant ("EDT" in summer).
//
// Location and depth:
//
//	Free text such as "38.12 N ; 26.45 E" and "10 km". Passed through trimmed.
//
// # Magnitude Scale
//
//	[0,1.9] Micro | [2,2.9] Minor | [3,3.9] Light | [4,4.9] Moderate |
//	[5,5.9] Strong | [6,6.9] Major | [7,7.9] Great | [8,10] Exceptional
//
// Bounds are inclusive; anything outside them is "Unknown". See [ClassifyMagnitude].
//
// # Identity
//
// An event is identified by its formatted report time and location text joined
// with "_" (see [EventID]). Distinct events sharing both values are treated as
// one; this is an accepted approximation of the upstream data.
package domain
