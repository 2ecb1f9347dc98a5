package scrape

import (
	"testing"

	"price-desk/internal/domain"
)

func TestServiceGrade(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
		ok       bool
	}{
		{"PSA 10 Gem Mint", "PSA 10", true},
		{"Charizard BGS 9.5", "BGS 9.5", true},
		{"CGC 9.8 White Pages", "CGC 9.8", true},
		{"Ungraded", "", false},
		{"PSA10", "", false},
	}

	for _, tc := range testCases {
		got, ok := ServiceGrade(tc.input)
		if ok != tc.ok || got != tc.expected {
			t.Errorf("ServiceGrade(%q) = %q,%v; expected %q,%v", tc.input, got, ok, tc.expected, tc.ok)
		}
	}
}

func TestIsCoinGradeCode(t *testing.T) {
	valid := []string{"MS65", "MS-65", "AU 58", "PR70+", "VF20", "XF45", "G4", "MS63*"}
	for _, s := range valid {
		if !IsCoinGradeCode(s) {
			t.Errorf("Expected %q to be a grade code", s)
		}
	}

	invalid := []string{"Grade", "1948", "MS", "$120", "MS656", "hello65"}
	for _, s := range invalid {
		if IsCoinGradeCode(s) {
			t.Errorf("Expected %q to not be a grade code", s)
		}
	}
}

func TestNormalizeGradeCode(t *testing.T) {
	testCases := []struct{ in, out string }{
		{"MS-65", "MS65"},
		{"AU 58", "AU58"},
		{"MS65", "MS65"},
		{"PSA 10", "PSA 10"},
	}
	for _, tc := range testCases {
		if got := NormalizeGradeCode(tc.in); got != tc.out {
			t.Errorf("NormalizeGradeCode(%q) = %q, expected %q", tc.in, got, tc.out)
		}
	}
}

func TestParsePrice(t *testing.T) {
	testCases := []struct {
		input    string
		expected float64
		ok       bool
	}{
		{"$1,250.00", 1250, true},
		{"1250", 1250, true},
		{"$ 12.50", 12.5, true},
		{"  $3.99 ", 3.99, true},
		{"-", 0, false},
		{"—", 0, false},
		{"N/A", 0, false},
		{"", 0, false},
		{"call for price", 0, false},
	}

	for _, tc := range testCases {
		got, ok := ParsePrice(tc.input)
		if ok != tc.ok || got != tc.expected {
			t.Errorf("ParsePrice(%q) = %v,%v; expected %v,%v", tc.input, got, ok, tc.expected, tc.ok)
		}
	}
}

func TestParseDateFormats(t *testing.T) {
	inputs := []string{
		"3/15/2024",
		"2024-03-15",
		"Mar 15, 2024",
		"March 15, 2024",
	}
	for _, in := range inputs {
		d, ok := ParseDate(in)
		if !ok {
			t.Errorf("Expected ParseDate(%q) to parse", in)
			continue
		}
		if d.Year() != 2024 || int(d.Month()) != 3 || d.Day() != 15 {
			t.Errorf("ParseDate(%q) = %v, expected 2024-03-15", in, d)
		}
	}

	if _, ok := ParseDate("sometime last week"); ok {
		t.Error("Expected unparseable date to report false")
	}
}

func TestDetectCategory(t *testing.T) {
	testCases := []struct {
		name, url string
		expected  domain.Category
	}{
		{"Charizard Holo 1st Edition", "", domain.CategoryTradingCard},
		{"1986 Fleer Michael Jordan Rookie Card", "", domain.CategorySportsCard},
		{"Amazing Fantasy #15", "", domain.CategoryComic},
		{"Funko Pop! Batman", "", domain.CategoryFunko},
		{"1921 Morgan Dollar", "", domain.CategoryCoin},
		{"Mystery item", "https://guide.example.com/pokemon/base-set/4", domain.CategoryTradingCard},
		{"Something else", "", domain.CategoryOther},
	}

	for _, tc := range testCases {
		if got := DetectCategory(tc.name, tc.url); got != tc.expected {
			t.Errorf("DetectCategory(%q, %q) = %q, expected %q", tc.name, tc.url, got, tc.expected)
		}
	}
}
