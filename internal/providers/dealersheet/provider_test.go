package dealersheet

import (
	"context"
	"testing"
	"time"

	"price-desk/internal/cache"
	"price-desk/internal/domain"
	"price-desk/internal/fetch"
	"price-desk/internal/providers"
)

const guidePage = `<html><table>
	<tr><th>Item</th><th>Ungraded</th><th>PSA 10</th></tr>
	<tr><td><a href="/guide/item/1921-morgan-dollar">1921 Morgan Dollar</a></td><td>$48.00</td><td>-</td></tr>
</table></html>`

// fakeNavigator stands in for headless Chrome in tests.
type fakeNavigator struct {
	body  string
	calls int
}

func (f *fakeNavigator) Navigate(ctx context.Context, url string) ([]byte, error) {
	f.calls++
	return []byte(f.body), nil
}

func newTestProvider(t *testing.T, body string, cookie fetch.CredentialProvider) (*Provider, *fakeNavigator) {
	t.Helper()
	nav := &fakeNavigator{body: body}
	fc := fetch.New(fetch.Config{
		Provider:   Name,
		BaseURL:    "https://dealersheet.example",
		UseBrowser: true,
		CacheTTL:   time.Minute,
	}, cache.New(cache.Config{}, nil), fetch.WithNavigator(nav), fetch.WithCredentials(cookie))
	return New(fc, cookie, nil), nav
}

func TestSearchViaBrowser(t *testing.T) {
	p, nav := newTestProvider(t, guidePage, fetch.StaticCookie("session=abc123"))

	records, err := p.Search(context.Background(), "morgan dollar", providers.SearchOptions{Limit: 5})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
	if nav.calls != 1 {
		t.Errorf("Expected 1 browser navigation, got %d", nav.calls)
	}

	rec := records[0]
	if rec.Source != Name {
		t.Errorf("Source = %q", rec.Source)
	}
	if rec.Category != domain.CategoryCoin {
		t.Errorf("Category = %q", rec.Category)
	}
	if rec.Prices.Raw == nil || rec.Prices.Raw.Mid != 48 {
		t.Errorf("Raw = %+v", rec.Prices.Raw)
	}
}

func TestMissingCookieMeansUnavailable(t *testing.T) {
	p, nav := newTestProvider(t, guidePage, fetch.StaticCookie(""))

	if p.IsAvailable(context.Background()) {
		t.Error("Expected provider without cookie to be unavailable")
	}

	records, err := p.Search(context.Background(), "morgan", providers.SearchOptions{})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Expected no records without credentials, got %d", len(records))
	}
	if nav.calls != 0 {
		t.Errorf("Expected no navigation without credentials, got %d", nav.calls)
	}
}

func TestNilCredentialProvider(t *testing.T) {
	p, _ := newTestProvider(t, guidePage, nil)
	if p.IsAvailable(context.Background()) {
		t.Error("Expected nil credentials to mean unavailable")
	}
}

func TestGetPriceCachesSecondCall(t *testing.T) {
	page := `<html><table>
		<tr><td>Ungraded</td><td>$48.00</td></tr>
		<tr><td>PSA 10</td><td>$310.00</td></tr>
	</table></html>`
	p, nav := newTestProvider(t, page, fetch.StaticCookie("session=abc123"))
	ctx := context.Background()

	rec, err := p.GetPrice(ctx, "1921-morgan-dollar")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec == nil || rec.Prices.Raw == nil || rec.Prices.Raw.Mid != 48 {
		t.Fatalf("Unexpected record: %+v", rec)
	}
	if r := rec.Prices.Graded["PSA 10"]; r.Mid != 310 {
		t.Errorf("PSA 10 = %+v", r)
	}

	if _, err := p.GetPrice(ctx, "1921-morgan-dollar"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if nav.calls != 1 {
		t.Errorf("Expected second call to come from cache, navigations = %d", nav.calls)
	}
}
