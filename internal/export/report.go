package export

import (
	"encoding/xml"
	"fmt"
	"os"
	"time"

	"price-desk/internal/domain"
)

/*
Valuation report layout:

<Valuation_Report>
  <item>1921 Morgan Dollar</item>
  <generated_ts>2026-08-31T10:00:00Z</generated_ts>
  <suggested_price>236.07</suggested_price>
  <client_payout>150.00</client_payout>
  <margin_percent>36.5</margin_percent>
  <recommendation>accept</recommendation>
  <market_confidence>high</market_confidence>
  <risk_list>
    <risk>thin margin</risk>
  </risk_list>
  <reasoning>...</reasoning>
</Valuation_Report>
*/

type valuationReport struct {
	XMLName          xml.Name  `xml:"Valuation_Report"`
	Item             string    `xml:"item"`
	GeneratedTS      string    `xml:"generated_ts"`
	SuggestedPrice   string    `xml:"suggested_price"`
	ClientPayout     string    `xml:"client_payout"`
	MarginPercent    string    `xml:"margin_percent"`
	Recommendation   string    `xml:"recommendation"`
	MarketConfidence string    `xml:"market_confidence"`
	RiskList         *riskList `xml:"risk_list,omitempty"`
	Reasoning        string    `xml:"reasoning,omitempty"`
}

type riskList struct {
	Risks []string `xml:"risk"`
}

// WriteValuationXML writes one evaluation as a standalone report file.
func WriteValuationXML(outPath, itemName string, res *domain.EvaluationResult) error {
	report := valuationReport{
		Item:             itemName,
		GeneratedTS:      time.Now().UTC().Format(time.RFC3339),
		SuggestedPrice:   money(res.SuggestedPrice),
		ClientPayout:     money(res.ClientPayout),
		MarginPercent:    fmt.Sprintf("%.1f", res.MarginPercent),
		Recommendation:   string(res.Recommendation),
		MarketConfidence: string(res.MarketConfidence),
		Reasoning:        res.Reasoning,
	}
	if len(res.Risks) > 0 {
		report.RiskList = &riskList{Risks: res.Risks}
	}

	b, err := xml.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("export: marshal xml: %w", err)
	}
	if err := os.WriteFile(outPath, append([]byte(xml.Header), b...), 0o644); err != nil {
		return fmt.Errorf("export: write xml: %w", err)
	}
	return nil
}
