package scrape

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// GuideItem is one listing scraped from a multi-category price guide: an
// ungraded price plus zero or more grade-labeled prices.
type GuideItem struct {
	ID       string
	Name     string
	URL      string
	Ungraded float64
	HasRaw   bool
	Grades   map[string]float64
}

// ParseGuideTable scrapes search-result tables where each row links to an
// item (href containing linkSubstr) and price columns are labeled by header:
// "Ungraded"/"Loose" for the raw price, service grades ("PSA 10") for the
// rest. Tables without usable headers fall back to treating the first price
// column as ungraded.
func ParseGuideTable(page []byte, linkSubstr string) []GuideItem {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil
	}

	var items []GuideItem
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		headers := table.Find("th").Map(func(_ int, th *goquery.Selection) string {
			return strings.TrimSpace(th.Text())
		})

		table.Find("tr").Each(func(_ int, row *goquery.Selection) {
			link := row.Find(`a[href*="` + linkSubstr + `"]`).First()
			href, ok := link.Attr("href")
			if !ok {
				return
			}
			name := strings.TrimSpace(link.Text())
			if name == "" {
				return
			}

			item := GuideItem{
				ID:     itemIDFromHref(href, linkSubstr),
				Name:   name,
				URL:    href,
				Grades: make(map[string]float64),
			}

			row.Find("td").Each(func(i int, cell *goquery.Selection) {
				if cell.Find("a").Length() > 0 {
					return
				}
				v, ok := ParsePrice(cell.Text())
				if !ok {
					return
				}
				label := ""
				if i < len(headers) {
					label = headers[i]
				}
				switch {
				case isUngradedLabel(label):
					item.Ungraded, item.HasRaw = v, true
				default:
					if g, ok := ServiceGrade(label); ok {
						item.Grades[g] = v
					} else if !item.HasRaw {
						// headerless tables: first price column is the raw price
						item.Ungraded, item.HasRaw = v, true
					}
				}
			})

			if item.HasRaw || len(item.Grades) > 0 {
				items = append(items, item)
			}
		})
	})
	return items
}

// ParseGradeList scrapes a detail page where grades are rows, not columns:
// one "Ungraded" row and one row per grade label.
func ParseGradeList(page []byte) (ungraded float64, hasRaw bool, grades map[string]float64) {
	grades = make(map[string]float64)
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return 0, false, grades
	}

	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td").Map(func(_ int, c *goquery.Selection) string {
			return strings.TrimSpace(c.Text())
		})
		if len(cells) < 2 {
			return
		}
		v, ok := ParsePrice(cells[1])
		if !ok {
			return
		}
		switch {
		case isUngradedLabel(cells[0]):
			ungraded, hasRaw = v, true
		default:
			if g, ok := ServiceGrade(cells[0]); ok {
				grades[g] = v
			}
		}
	})
	return ungraded, hasRaw, grades
}

func isUngradedLabel(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "ungraded" || s == "loose" || s == "raw"
}

func itemIDFromHref(href, linkSubstr string) string {
	idx := strings.Index(href, linkSubstr)
	if idx < 0 {
		return href
	}
	id := href[idx+len(linkSubstr):]
	return strings.Trim(id, "/")
}
