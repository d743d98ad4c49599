package emsc

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/couchcryptid/quake-feed-publisher/internal/domain"
)

// detailClass marks the value cells of an item's description table.
const detailClass = "point2"

// Value cell positions within the description table.
const (
	cellMagnitude = iota
	cellRegion
	cellDateTime
	cellLocation
	cellDepth
)

type rss struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Description string `xml:"description"`
}

// ParseFeed decodes an EMSC RSS document into raw items. Items whose
// description lacks some cells are still returned, with those fields empty,
// so the caller can count them as malformed.
func ParseFeed(r io.Reader) ([]domain.RawItem, error) {
	var doc rss
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode rss: %w", err)
	}

	items := make([]domain.RawItem, 0, len(doc.Channel.Items))
	for _, it := range doc.Channel.Items {
		items = append(items, parseItem(it.Description))
	}
	return items, nil
}

func parseItem(description string) domain.RawItem {
	item := domain.RawItem{Raw: description}

	cells, err := detailCells(description)
	if err != nil {
		return item
	}

	cell := func(i int) string {
		if i < len(cells) {
			return cells[i]
		}
		return ""
	}

	item.Magnitude = magnitudeValue(cell(cellMagnitude))
	item.Region = cell(cellRegion)
	item.DateTime = cell(cellDateTime)
	item.Location = cell(cellLocation)
	item.Depth = cell(cellDepth)
	return item
}

// magnitudeValue drops the magnitude type prefix, "ML 2.5" -> "2.5".
func magnitudeValue(s string) string {
	fields := strings.Fields(s)
	switch len(fields) {
	case 0:
		return ""
	case 1:
		return fields[0]
	default:
		return fields[1]
	}
}

func detailCells(fragment string) ([]string, error) {
	// Bare rows outside a table are dropped by the HTML parser.
	if !strings.Contains(strings.ToLower(fragment), "<table") {
		fragment = "<table>" + fragment + "</table>"
	}
	root, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return nil, err
	}

	var cells []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "td" && hasClass(n, detailClass) {
			cells = append(cells, strings.TrimSpace(textContent(n)))
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return cells, nil
}

func hasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Key != "class" {
			continue
		}
		for _, f := range strings.Fields(a.Val) {
			if f == class {
				return true
			}
		}
	}
	return false
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
