package coinguide

import (
	"testing"
)

func TestExtractJSONBlock(t *testing.T) {
	page := []byte(`<html><script>
		var itemData = {"name":"1948 Lincoln Cent","note":"has a } inside and a \" quote","prices":[{"grade":"MS65","low":10,"mid":12,"high":15}]};
	</script></html>`)

	block, ok := ExtractJSONBlock(page, itemDataMarker)
	if !ok {
		t.Fatal("Expected to find JSON block")
	}
	want := `{"name":"1948 Lincoln Cent","note":"has a } inside and a \" quote","prices":[{"grade":"MS65","low":10,"mid":12,"high":15}]}`
	if string(block) != want {
		t.Errorf("Extracted block mismatch:\n got %s\nwant %s", block, want)
	}
}

func TestExtractJSONBlockMissing(t *testing.T) {
	if _, ok := ExtractJSONBlock([]byte("<html>no script here</html>"), itemDataMarker); ok {
		t.Error("Expected no block in plain page")
	}

	// unbalanced block never closes
	if _, ok := ExtractJSONBlock([]byte(`var itemData = {"name":"x"`), itemDataMarker); ok {
		t.Error("Expected no block for unterminated JSON")
	}
}

func TestParseItemPageStructured(t *testing.T) {
	page := []byte(`<html><script>
		var itemData = {
			"name": "1948 Lincoln Cent",
			"population": 3250,
			"prices": [
				{"grade": "RAW", "low": 0.5, "mid": 1, "high": 2},
				{"grade": "MS-65", "low": 10, "mid": 12, "high": 15},
				{"grade": "MS66", "cac": true, "low": 40, "mid": 55, "high": 70}
			],
			"sales": [
				{"date": "3/15/2024", "price": 54, "venue": "Heritage"},
				{"date": "whenever", "price": 48, "venue": "eBay"}
			]
		};
	</script></html>`)

	item := ParseItemPage(page)
	if item.Outcome != OutcomeStructured {
		t.Fatalf("Expected structured outcome, got %v", item.Outcome)
	}
	if item.Name != "1948 Lincoln Cent" {
		t.Errorf("Name = %q", item.Name)
	}
	if item.Population != 3250 {
		t.Errorf("Population = %d", item.Population)
	}
	if item.Raw == nil || item.Raw.Mid != 1 {
		t.Errorf("Expected raw range with mid 1, got %+v", item.Raw)
	}
	if r, ok := item.Graded["MS65"]; !ok || r.Mid != 12 {
		t.Errorf("Expected normalized MS65 grade, got %+v", item.Graded)
	}
	if r, ok := item.Graded["MS66 CAC"]; !ok || r.High != 70 {
		t.Errorf("Expected MS66 CAC grade, got %+v", item.Graded)
	}
	if len(item.Sales) != 2 {
		t.Fatalf("Expected 2 sales, got %d", len(item.Sales))
	}
	if item.Sales[0].Date != "2024-03-15" {
		t.Errorf("Expected normalized sale date, got %q", item.Sales[0].Date)
	}
	// unparseable dates keep the raw string
	if item.Sales[1].Date != "whenever" {
		t.Errorf("Expected raw date string, got %q", item.Sales[1].Date)
	}
}

func TestParseItemPageHeuristicWithHeaders(t *testing.T) {
	page := []byte(`<html><h1>1921 Morgan Dollar</h1>
	<table>
		<tr><th>Grade</th><th>Low</th><th>Value</th><th>High</th></tr>
		<tr><td>MS63</td><td>$45</td><td>$52</td><td>$60</td></tr>
		<tr><td>MS65</td><td>$150</td><td>$185</td><td>$220</td></tr>
		<tr><td>Total</td><td>$195</td><td>$237</td><td>$280</td></tr>
	</table></html>`)

	item := ParseItemPage(page)
	if item.Outcome != OutcomeHeuristic {
		t.Fatalf("Expected heuristic outcome, got %v", item.Outcome)
	}
	if item.Name != "1921 Morgan Dollar" {
		t.Errorf("Name = %q", item.Name)
	}
	if len(item.Graded) != 2 {
		t.Fatalf("Expected 2 grade rows (non-grade rows skipped), got %d", len(item.Graded))
	}
	r := item.Graded["MS65"]
	if r.Low != 150 || r.Mid != 185 || r.High != 220 {
		t.Errorf("MS65 = %+v", r)
	}
}

func TestParseItemPageHeuristicCACShift(t *testing.T) {
	page := []byte(`<html>
	<table>
		<tr><th>Grade</th><th>CAC</th><th>Low</th><th>Value</th><th>High</th></tr>
		<tr><td>MS65</td><td>Yes</td><td>$200</td><td>$240</td><td>$290</td></tr>
		<tr><td>MS65</td><td>No</td><td>$150</td><td>$185</td><td>$220</td></tr>
	</table></html>`)

	item := ParseItemPage(page)
	if item.Outcome != OutcomeHeuristic {
		t.Fatalf("Expected heuristic outcome, got %v", item.Outcome)
	}

	cac, ok := item.Graded["MS65 CAC"]
	if !ok {
		t.Fatalf("Expected MS65 CAC entry, got %+v", item.Graded)
	}
	if cac.Low != 200 || cac.Mid != 240 || cac.High != 290 {
		t.Errorf("MS65 CAC = %+v, column shift mishandled", cac)
	}

	plain, ok := item.Graded["MS65"]
	if !ok || plain.Mid != 185 {
		t.Errorf("MS65 = %+v", plain)
	}
}

func TestParseItemPageHeuristicPositional(t *testing.T) {
	// no headers at all: numeric cells assigned positionally low/mid/high
	page := []byte(`<html><table>
		<tr><td>AU58</td><td>$30</td><td>$35</td><td>$42</td></tr>
		<tr><td>MS64</td><td>$80</td></tr>
	</table></html>`)

	item := ParseItemPage(page)
	if item.Outcome != OutcomeHeuristic {
		t.Fatalf("Expected heuristic outcome, got %v", item.Outcome)
	}
	if r := item.Graded["AU58"]; r.Low != 30 || r.Mid != 35 || r.High != 42 {
		t.Errorf("AU58 = %+v", r)
	}
	// single numeric cell fills the whole range
	if r := item.Graded["MS64"]; r.Low != 80 || r.Mid != 80 || r.High != 80 {
		t.Errorf("MS64 = %+v", r)
	}
}

func TestParseItemPageSalesTable(t *testing.T) {
	page := []byte(`<html>
	<table>
		<tr><th>Grade</th><th>Value</th></tr>
		<tr><td>MS65</td><td>$185</td></tr>
	</table>
	<table>
		<tr><th>Date</th><th>Price</th><th>Venue</th></tr>
		<tr><td>3/15/2024</td><td>$182.50</td><td>Heritage</td></tr>
		<tr><td>Feb 2, 2024</td><td>$175</td><td>GreatCollections</td></tr>
	</table></html>`)

	item := ParseItemPage(page)
	if len(item.Sales) != 2 {
		t.Fatalf("Expected 2 sales, got %d", len(item.Sales))
	}
	if item.Sales[0].Date != "2024-03-15" || item.Sales[0].Price != 182.5 || item.Sales[0].Venue != "Heritage" {
		t.Errorf("Sale[0] = %+v", item.Sales[0])
	}
	if item.Sales[1].Date != "2024-02-02" {
		t.Errorf("Sale[1] date = %q", item.Sales[1].Date)
	}
}

func TestParseItemPageNothingFound(t *testing.T) {
	item := ParseItemPage([]byte(`<html><p>We moved! New site design.</p></html>`))
	if item.Outcome != OutcomeNone {
		t.Errorf("Expected OutcomeNone, got %v", item.Outcome)
	}
}
