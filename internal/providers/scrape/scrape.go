// Package scrape holds the heuristics shared by the HTML price-guide
// adapters: price/grade/date parsing and category detection.
package scrape

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"price-desk/internal/domain"
)

var (
	// service grades like "PSA 10", "BGS 9.5", "CGC 9.8"
	serviceGradeRe = regexp.MustCompile(`\b(PSA|BGS|CGC|SGC|CSG|TAG)\s+(10|[0-9](?:\.5)?)\b`)

	// coin-style grade codes: letter prefix + number, optional hyphen/space
	// and +/* suffix ("MS65", "MS-65", "AU 58", "PR70+")
	coinGradeRe = regexp.MustCompile(`^[A-Z]{1,4}[- ]?\d{1,2}[+*]?$`)

	priceRe = regexp.MustCompile(`\$?\s*([0-9][0-9,]*(?:\.[0-9]{1,2})?)`)

	dateRe = regexp.MustCompile(`\b(?:\d{1,2}[/-]\d{1,2}[/-]\d{2,4}|\d{4}-\d{2}-\d{2}|[A-Z][a-z]{2,8}\.?\s+\d{1,2},?\s+\d{4})\b`)
)

// ServiceGrade extracts a grading-service label ("PSA 10") from text.
func ServiceGrade(s string) (string, bool) {
	m := serviceGradeRe.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	return m[1] + " " + m[2], true
}

// IsCoinGradeCode reports whether a table cell looks like a coin grade code.
func IsCoinGradeCode(s string) bool {
	return coinGradeRe.MatchString(strings.TrimSpace(s))
}

// NormalizeGradeCode strips separators so "MS-65" and "MS 65" key identically.
func NormalizeGradeCode(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "-", "")
	// keep the space in service grades ("PSA 10"), drop it in coin codes
	if coinGradeRe.MatchString(s) {
		s = strings.ReplaceAll(s, " ", "")
	}
	return s
}

// ParsePrice pulls the first monetary value out of a cell. Dashes and
// placeholders count as "no price".
func ParsePrice(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" || s == "—" || strings.EqualFold(s, "n/a") {
		return 0, false
	}
	m := priceRe.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

// FindDate returns the first date-looking token in text.
func FindDate(s string) (string, bool) {
	m := dateRe.FindString(s)
	return m, m != ""
}

var dateLayouts = []string{
	"1/2/2006",
	"1/2/06",
	"1-2-2006",
	"2006-01-02",
	"Jan 2, 2006",
	"Jan. 2, 2006",
	"January 2, 2006",
	"Jan 2 2006",
}

// ParseDate tries the formats providers actually emit. The second return is
// false when none matched; callers keep the raw string in that case.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// category keyword heuristics, checked in order: the first bucket with a hit
// wins. Name text is checked before URL path.
var categoryKeywords = []struct {
	cat   domain.Category
	words []string
}{
	{domain.CategoryTradingCard, []string{"pokemon", "pokémon", "charizard", "pikachu", "magic the gathering", "mtg", "yugioh", "yu-gi-oh", "tcg"}},
	{domain.CategorySportsCard, []string{"topps", "panini", "bowman", "upper deck", "fleer", "donruss", "rookie card", "baseball card", "basketball card", "football card"}},
	// funko before comic: Funko listings usually name a comic character too
	{domain.CategoryFunko, []string{"funko", "pop!", "pop vinyl"}},
	{domain.CategoryComic, []string{"comic", "marvel", "dc ", "spider-man", "x-men", "batman", "superman", "amazing fantasy"}},
	{domain.CategoryCoin, []string{"coin", "cent", "nickel", "dime", "quarter", "dollar", "morgan", "eagle", "mint", "penny"}},
}

// DetectCategory guesses the category from an item name and its source URL.
func DetectCategory(name, url string) domain.Category {
	for _, probe := range []string{strings.ToLower(name), strings.ToLower(url)} {
		if probe == "" {
			continue
		}
		for _, bucket := range categoryKeywords {
			for _, w := range bucket.words {
				if strings.Contains(probe, w) {
					return bucket.cat
				}
			}
		}
	}
	return domain.CategoryOther
}
