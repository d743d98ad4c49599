package emsc

import "fmt"

func description(mag, region, when, location, depth string) string {
	return fmt.Sprintf(`<table>
<tr><td class="point">Magnitude</td><td class="point2">%s</td></tr>
<tr><td class="point">Region</td><td class="point2">%s</td></tr>
<tr><td class="point">Date time</td><td class="point2">%s</td></tr>
<tr><td class="point">Location</td><td class="point2">%s</td></tr>
<tr><td class="point">Depth</td><td class="point2">%s</td></tr>
</table>`, mag, region, when, location, depth)
}

func feed(descriptions ...string) string {
	body := `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>EMSC</title>`
	for i, d := range descriptions {
		body += fmt.Sprintf("<item><title>item %d</title><description><![CDATA[%s]]></description></item>", i, d)
	}
	return body + "</channel></rss>"
}
