package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"price-desk/internal/domain"
)

// Keep header order EXACT; downstream spreadsheets key on position.
var recordHeader = []string{
	"ITEM_ID",
	"NAME",
	"CATEGORY",
	"SOURCE",
	"SOURCE_URL",
	"RAW_LOW",
	"RAW_MID",
	"RAW_HIGH",
	"GRADED_PRICES",
	"LAST_SALE_PRICE",
	"LAST_SALE_DATE",
	"LAST_SALE_VENUE",
	"POPULATION",
	"LAST_UPDATED",
}

var statusHeader = []string{
	"PROVIDER",
	"AVAILABLE",
	"LAST_CHECK",
	"LAST_REFRESH",
	"ITEM_COUNT",
	"ERROR",
}

// Snapshot is one export run: the query that produced the records plus a
// unique id so repeated exports never overwrite each other.
type Snapshot struct {
	ID        string
	Query     string
	CreatedAt time.Time
	Records   []domain.MarketPriceRecord
}

func NewSnapshot(query string, records []domain.MarketPriceRecord) Snapshot {
	return Snapshot{
		ID:        uuid.NewString(),
		Query:     query,
		CreatedAt: time.Now(),
		Records:   records,
	}
}

// FileName is the canonical name for the snapshot's CSV file.
func (s Snapshot) FileName() string {
	return fmt.Sprintf("prices-%s-%s.csv", s.CreatedAt.Format("20060102"), s.ID)
}

// WriteRecordsCSV writes market price records in the desk's import format.
// Non-mapped columns stay empty.
func WriteRecordsCSV(w io.Writer, records []domain.MarketPriceRecord) error {
	cw := csv.NewWriter(w)
	// match typical spreadsheet templates
	cw.UseCRLF = true

	if err := cw.Write(recordHeader); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write(toRecordRow(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func toRecordRow(r domain.MarketPriceRecord) []string {
	var rawLow, rawMid, rawHigh string
	if r.Prices.Raw != nil {
		rawLow = money(r.Prices.Raw.Low)
		rawMid = money(r.Prices.Raw.Mid)
		rawHigh = money(r.Prices.Raw.High)
	}

	var salePrice, saleDate, saleVenue string
	if r.LastSale != nil {
		salePrice = money(r.LastSale.Price)
		saleDate = r.LastSale.Date
		saleVenue = r.LastSale.Venue
	}

	population := ""
	if r.Population > 0 {
		population = strconv.Itoa(r.Population)
	}

	updated := ""
	if !r.LastUpdated.IsZero() {
		updated = r.LastUpdated.Format(time.RFC3339)
	}

	return []string{
		r.ItemID,
		r.Name,
		string(r.Category),
		r.Source,
		r.SourceURL,
		rawLow,
		rawMid,
		rawHigh,
		gradedSummary(r.Prices.Graded),
		salePrice,
		saleDate,
		saleVenue,
		population,
		updated,
	}
}

// gradedSummary flattens the grade map into "PSA 10=312.50 | MS65=180.00",
// sorted so the column is stable across runs.
func gradedSummary(graded map[string]domain.PriceRange) string {
	if len(graded) == 0 {
		return ""
	}
	grades := make([]string, 0, len(graded))
	for g := range graded {
		grades = append(grades, g)
	}
	sort.Strings(grades)

	parts := make([]string, 0, len(grades))
	for _, g := range grades {
		parts = append(parts, g+"="+money(graded[g].Mid))
	}
	return strings.Join(parts, " | ")
}

// WriteStatusCSV writes the provider health table.
func WriteStatusCSV(w io.Writer, statuses []domain.ProviderStatus) error {
	cw := csv.NewWriter(w)
	cw.UseCRLF = true

	if err := cw.Write(statusHeader); err != nil {
		return err
	}
	for _, st := range statuses {
		refresh := ""
		if st.LastRefresh != nil {
			refresh = st.LastRefresh.Format(time.RFC3339)
		}
		check := ""
		if !st.LastCheck.IsZero() {
			check = st.LastCheck.Format(time.RFC3339)
		}
		count := ""
		if st.ItemCount > 0 {
			count = strconv.Itoa(st.ItemCount)
		}
		row := []string{
			st.Name,
			strconv.FormatBool(st.Available),
			check,
			refresh,
			count,
			st.Error,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
