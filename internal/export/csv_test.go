package export

import (
	"bytes"
	"encoding/csv"
	"encoding/xml"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"price-desk/internal/domain"
)

func sampleRecord() domain.MarketPriceRecord {
	return domain.MarketPriceRecord{
		ItemID:    "morgan-1921",
		Name:      "1921 Morgan Dollar",
		Category:  domain.CategoryCoin,
		Source:    "coinguide",
		SourceURL: "/coin/morgan-1921",
		Prices: domain.Prices{
			Raw: &domain.PriceRange{Low: 32, Mid: 38.5, High: 45},
			Graded: map[string]domain.PriceRange{
				"MS65": {Low: 170, Mid: 180, High: 195},
				"MS63": {Low: 70, Mid: 78, High: 85},
			},
		},
		LastSale:    &domain.LastSale{Price: 182.5, Date: "2026-03-15", Venue: "Heritage"},
		Population:  1450,
		LastUpdated: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
	}
}

func TestWriteRecordsCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteRecordsCSV(&buf, []domain.MarketPriceRecord{sampleRecord()}); err != nil {
		t.Fatalf("WriteRecordsCSV: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected header + 1 row, got %d rows", len(rows))
	}
	if rows[0][0] != "ITEM_ID" || len(rows[0]) != len(recordHeader) {
		t.Errorf("Unexpected header: %v", rows[0])
	}

	row := rows[1]
	if row[0] != "morgan-1921" || row[2] != "coin" {
		t.Errorf("Unexpected identity columns: %v", row)
	}
	if row[6] != "38.50" {
		t.Errorf("Expected RAW_MID 38.50, got %s", row[6])
	}
	// grade map flattened in sorted order
	if row[8] != "MS63=78.00 | MS65=180.00" {
		t.Errorf("Unexpected graded summary: %s", row[8])
	}
	if row[9] != "182.50" || row[11] != "Heritage" {
		t.Errorf("Unexpected sale columns: %v", row)
	}
}

func TestWriteRecordsCSVSparseRecord(t *testing.T) {
	var buf bytes.Buffer
	rec := domain.MarketPriceRecord{ItemID: "x", Name: "Bare Item", Source: "chartprice"}
	if err := WriteRecordsCSV(&buf, []domain.MarketPriceRecord{rec}); err != nil {
		t.Fatalf("WriteRecordsCSV: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	row := rows[1]
	for _, i := range []int{5, 6, 7, 8, 9, 12, 13} {
		if row[i] != "" {
			t.Errorf("Expected empty column %d, got %q", i, row[i])
		}
	}
}

func TestWriteStatusCSV(t *testing.T) {
	refresh := time.Date(2026, 8, 29, 6, 0, 0, 0, time.UTC)
	statuses := []domain.ProviderStatus{
		{Name: "coinguide", Available: true, LastCheck: refresh, LastRefresh: &refresh, ItemCount: 40},
		{Name: "dealersheet", Available: false, LastCheck: refresh, Error: "missing session cookie"},
	}

	var buf bytes.Buffer
	if err := WriteStatusCSV(&buf, statuses); err != nil {
		t.Fatalf("WriteStatusCSV: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("Expected header + 2 rows, got %d", len(rows))
	}
	if rows[1][1] != "true" || rows[1][4] != "40" {
		t.Errorf("Unexpected available row: %v", rows[1])
	}
	if rows[2][1] != "false" || rows[2][5] != "missing session cookie" {
		t.Errorf("Unexpected unavailable row: %v", rows[2])
	}
}

func TestSnapshotFileName(t *testing.T) {
	s := NewSnapshot("morgan", nil)
	if s.ID == "" {
		t.Fatal("Expected a generated snapshot id")
	}
	name := s.FileName()
	if !strings.HasPrefix(name, "prices-") || !strings.HasSuffix(name, s.ID+".csv") {
		t.Errorf("Unexpected file name: %s", name)
	}

	other := NewSnapshot("morgan", nil)
	if other.ID == s.ID {
		t.Error("Expected unique ids per snapshot")
	}
}

func TestWriteValuationXML(t *testing.T) {
	res := &domain.EvaluationResult{
		SuggestedPrice:   236.07,
		ClientPayout:     150,
		MarginPercent:    36.46,
		Recommendation:   domain.RecommendAccept,
		Reasoning:        "suggested price 236.07",
		Risks:            []string{"high supply"},
		MarketConfidence: domain.ConfidenceHigh,
	}

	path := filepath.Join(t.TempDir(), "report.xml")
	if err := WriteValuationXML(path, "1921 Morgan Dollar", res); err != nil {
		t.Fatalf("WriteValuationXML: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading report: %v", err)
	}

	var got valuationReport
	if err := xml.Unmarshal(b, &got); err != nil {
		t.Fatalf("parsing report: %v", err)
	}
	if got.Item != "1921 Morgan Dollar" || got.Recommendation != "accept" {
		t.Errorf("Unexpected report fields: %+v", got)
	}
	if got.SuggestedPrice != "236.07" || got.MarginPercent != "36.5" {
		t.Errorf("Unexpected numeric formatting: %+v", got)
	}
	if got.RiskList == nil || len(got.RiskList.Risks) != 1 {
		t.Errorf("Expected one risk, got %+v", got.RiskList)
	}
}
