package coinguide

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"price-desk/internal/domain"
	"price-desk/internal/providers/scrape"
)

// ParseOutcome tags which extraction strategy produced the data.
type ParseOutcome int

const (
	OutcomeNone ParseOutcome = iota
	OutcomeStructured
	OutcomeHeuristic
)

// ParsedItem is the normalized result of one detail page, whichever strategy
// found it.
type ParsedItem struct {
	Outcome    ParseOutcome
	Name       string
	Raw        *domain.PriceRange
	Graded     map[string]domain.PriceRange
	Sales      []domain.LastSale
	Population int
}

// itemDataMarker precedes the embedded JSON pricing block in page scripts.
const itemDataMarker = "var itemData"

// ExtractJSONBlock locates marker in page and returns the balanced JSON
// object that follows it. The scan is string- and escape-aware so a '}'
// inside a quoted value does not terminate it early.
func ExtractJSONBlock(page []byte, marker string) ([]byte, bool) {
	idx := bytes.Index(page, []byte(marker))
	if idx < 0 {
		return nil, false
	}
	open := bytes.IndexByte(page[idx:], '{')
	if open < 0 {
		return nil, false
	}
	start := idx + open

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(page); i++ {
		ch := page[i]
		if escaped {
			escaped = false
			continue
		}
		switch ch {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return page[start : i+1], true
				}
			}
		}
	}
	return nil, false
}

type structuredItem struct {
	Name       string `json:"name"`
	Population int    `json:"population"`
	Prices     []struct {
		Grade string  `json:"grade"`
		CAC   bool    `json:"cac"`
		Low   float64 `json:"low"`
		Mid   float64 `json:"mid"`
		High  float64 `json:"high"`
	} `json:"prices"`
	Sales []struct {
		Date  string  `json:"date"`
		Price float64 `json:"price"`
		Venue string  `json:"venue"`
	} `json:"sales"`
}

// ParseItemPage tries the embedded structured block first (the reliable
// path), then heuristic table scanning. The outcome tag tells the caller
// which one, if any, succeeded.
func ParseItemPage(page []byte) ParsedItem {
	if block, ok := ExtractJSONBlock(page, itemDataMarker); ok {
		if item, ok := parseStructured(block); ok {
			return item
		}
	}
	return parseHeuristic(page)
}

func parseStructured(block []byte) (ParsedItem, bool) {
	var si structuredItem
	if err := json.Unmarshal(block, &si); err != nil {
		return ParsedItem{}, false
	}
	if len(si.Prices) == 0 && len(si.Sales) == 0 {
		return ParsedItem{}, false
	}

	item := ParsedItem{
		Outcome:    OutcomeStructured,
		Name:       si.Name,
		Graded:     make(map[string]domain.PriceRange),
		Population: si.Population,
	}
	for _, p := range si.Prices {
		r := domain.PriceRange{Low: p.Low, Mid: p.Mid, High: p.High}
		if !r.Valid() {
			continue
		}
		grade := scrape.NormalizeGradeCode(p.Grade)
		if p.CAC {
			grade += " CAC"
		}
		if grade == "" || strings.EqualFold(grade, "RAW") {
			raw := r
			item.Raw = &raw
			continue
		}
		item.Graded[grade] = r
	}
	for _, s := range si.Sales {
		date := s.Date
		if t, ok := scrape.ParseDate(s.Date); ok {
			date = t.Format("2006-01-02")
		}
		item.Sales = append(item.Sales, domain.LastSale{Price: s.Price, Date: date, Venue: s.Venue})
	}
	return item, true
}

// parseHeuristic scans every table for rows whose first cell is a grade code.
// Column assignment strategy (deterministic, documented): header-text matching
// when the table has headers, else positional low/mid/high over the numeric
// cells. A boolean CAC column right after the grade shifts assignments by one.
func parseHeuristic(page []byte) ParsedItem {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return ParsedItem{Outcome: OutcomeNone}
	}

	item := ParsedItem{
		Outcome: OutcomeNone,
		Graded:  make(map[string]domain.PriceRange),
	}
	if title := strings.TrimSpace(doc.Find("h1").First().Text()); title != "" {
		item.Name = title
	}

	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		headers := tableHeaders(table)
		if isSalesTable(headers) {
			item.Sales = append(item.Sales, parseSalesTable(table)...)
			return
		}

		table.Find("tr").Each(func(_ int, row *goquery.Selection) {
			cells := row.Find("td").Map(func(_ int, c *goquery.Selection) string {
				return strings.TrimSpace(c.Text())
			})
			if len(cells) < 2 || !scrape.IsCoinGradeCode(cells[0]) {
				return
			}

			grade := scrape.NormalizeGradeCode(cells[0])
			rest := cells[1:]
			headerRest := headers
			if len(headerRest) > 0 {
				headerRest = headerRest[1:]
			}

			// CAC indicator column shifts everything after it by one
			if len(rest) > 0 && isBoolCell(rest[0]) {
				if strings.EqualFold(rest[0], "yes") || rest[0] == "✓" {
					grade += " CAC"
				}
				rest = rest[1:]
				if len(headerRest) > 0 {
					headerRest = headerRest[1:]
				}
			}

			r, ok := assignPriceColumns(rest, headerRest)
			if !ok {
				return
			}
			item.Graded[grade] = r
		})
	})

	// sales sections occasionally render without a real table
	if len(item.Sales) == 0 {
		item.Sales = parseSalesText(doc)
	}

	if len(item.Graded) > 0 || item.Raw != nil {
		item.Outcome = OutcomeHeuristic
	} else if len(item.Sales) > 0 {
		item.Outcome = OutcomeHeuristic
	}
	return item
}

func tableHeaders(table *goquery.Selection) []string {
	return table.Find("th").Map(func(_ int, th *goquery.Selection) string {
		return strings.ToLower(strings.TrimSpace(th.Text()))
	})
}

func isSalesTable(headers []string) bool {
	var hasDate, hasPrice bool
	for _, h := range headers {
		if strings.Contains(h, "date") {
			hasDate = true
		}
		if strings.Contains(h, "price") || strings.Contains(h, "amount") {
			hasPrice = true
		}
	}
	return hasDate && hasPrice
}

func isBoolCell(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "no", "✓", "✗", "y", "n":
		return true
	}
	return false
}

// assignPriceColumns maps cells to a low/mid/high range. With headers, cells
// land where their header says; without, numeric cells are taken positionally.
func assignPriceColumns(cells, headers []string) (domain.PriceRange, bool) {
	if len(headers) >= len(cells) && len(headers) > 0 {
		var r domain.PriceRange
		var low, mid, high bool
		for i, cell := range cells {
			v, ok := scrape.ParsePrice(cell)
			if !ok {
				continue
			}
			switch h := headers[i]; {
			case strings.Contains(h, "low") || strings.Contains(h, "bid"):
				r.Low, low = v, true
			case strings.Contains(h, "high") || strings.Contains(h, "ask") || strings.Contains(h, "retail"):
				r.High, high = v, true
			case strings.Contains(h, "mid") || strings.Contains(h, "avg") || strings.Contains(h, "value") || strings.Contains(h, "price"):
				r.Mid, mid = v, true
			}
		}
		return fillRange(r, low, mid, high)
	}

	var vals []float64
	for _, cell := range cells {
		if v, ok := scrape.ParsePrice(cell); ok {
			vals = append(vals, v)
		}
	}
	switch len(vals) {
	case 0:
		return domain.PriceRange{}, false
	case 1:
		return domain.PriceRange{Low: vals[0], Mid: vals[0], High: vals[0]}, true
	case 2:
		return domain.PriceRange{Low: vals[0], Mid: (vals[0] + vals[1]) / 2, High: vals[1]}, true
	default:
		r := domain.PriceRange{Low: vals[0], Mid: vals[1], High: vals[2]}
		if !r.Valid() {
			return domain.PriceRange{}, false
		}
		return r, true
	}
}

func fillRange(r domain.PriceRange, low, mid, high bool) (domain.PriceRange, bool) {
	if !low && !mid && !high {
		return domain.PriceRange{}, false
	}
	if !mid {
		switch {
		case low && high:
			r.Mid = (r.Low + r.High) / 2
		case low:
			r.Mid = r.Low
		default:
			r.Mid = r.High
		}
	}
	if !low {
		r.Low = r.Mid
	}
	if !high {
		r.High = r.Mid
	}
	if !r.Valid() {
		return domain.PriceRange{}, false
	}
	return r, true
}

func parseSalesTable(table *goquery.Selection) []domain.LastSale {
	var sales []domain.LastSale
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td").Map(func(_ int, c *goquery.Selection) string {
			return strings.TrimSpace(c.Text())
		})
		if len(cells) < 2 {
			return
		}

		var sale domain.LastSale
		var hasDate, hasPrice bool
		for _, cell := range cells {
			if !hasDate {
				if d, ok := scrape.FindDate(cell); ok {
					sale.Date = d
					if t, ok := scrape.ParseDate(d); ok {
						sale.Date = t.Format("2006-01-02")
					}
					hasDate = true
					continue
				}
			}
			if !hasPrice {
				if v, ok := scrape.ParsePrice(cell); ok {
					sale.Price = v
					hasPrice = true
					continue
				}
			}
			if sale.Venue == "" && cell != "" {
				sale.Venue = cell
			}
		}
		if hasDate && hasPrice {
			sales = append(sales, sale)
		}
	})
	return sales
}

// parseSalesText scrapes a "Recent Sales" section that is rendered as list
// items instead of a table.
func parseSalesText(doc *goquery.Document) []domain.LastSale {
	var sales []domain.LastSale
	doc.Find("div, section").Each(func(_ int, sec *goquery.Selection) {
		heading := strings.ToLower(sec.Find("h2, h3").First().Text())
		if !strings.Contains(heading, "sale") && !strings.Contains(heading, "auction") {
			return
		}
		sec.Find("li").Each(func(_ int, li *goquery.Selection) {
			text := li.Text()
			d, okDate := scrape.FindDate(text)
			v, okPrice := scrape.ParsePrice(text)
			if !okDate || !okPrice {
				return
			}
			date := d
			if t, ok := scrape.ParseDate(d); ok {
				date = t.Format("2006-01-02")
			}
			sales = append(sales, domain.LastSale{Price: v, Date: date})
		})
	})
	return sales
}
