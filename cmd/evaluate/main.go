package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"price-desk/internal/app"
	"price-desk/internal/domain"
	"price-desk/internal/evaluate"
	"price-desk/internal/export"
	"price-desk/internal/providers"
)

func main() {
	var (
		payout    = flag.Float64("payout", -1, "proposed client payout (required)")
		value     = flag.Float64("value", 0, "estimated value for a quick margin-only evaluation")
		query     = flag.String("query", "", "gather market data by searching all providers for this item")
		category  = flag.String("category", "", "restrict the market search to one category")
		grade     = flag.String("grade", "", "grade label from the identification step (e.g. \"PSA 9\")")
		gradeConf = flag.Float64("grade-confidence", 1, "confidence of the grade estimate, 0..1")
		report    = flag.String("report", "", "also write an XML valuation report to this path")
	)
	flag.Parse()

	if *payout < 0 {
		log.Fatal("evaluate: -payout is required and must not be negative")
	}
	if *value <= 0 && strings.TrimSpace(*query) == "" {
		log.Fatal("evaluate: provide -value for a quick check or -query to gather market data")
	}

	a, err := app.New()
	if err != nil {
		log.Fatal(err)
	}

	var (
		res      *domain.EvaluationResult
		itemName string
	)
	if *value > 0 {
		itemName = "quick estimate"
		res, err = a.Eval.QuickEvaluate(*payout, *value)
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		records := a.Agg.Search(ctx, *query, providers.SearchOptions{
			Category: domain.Category(*category),
		})
		itemName = *query
		if len(records) > 0 {
			itemName = records[0].Name
		}

		in := evaluate.Input{
			ClientPayout: *payout,
			Market:       evaluate.MarketDataFromRecords(records, app.SourceRoles()),
		}
		if *grade != "" {
			in.Grade = &domain.GradeEstimate{Grade: *grade, Confidence: *gradeConf}
		}
		res, err = a.Eval.Evaluate(in)
	}
	if err != nil {
		log.Fatal(err)
	}

	printResult(itemName, res)

	if *report != "" {
		if err := export.WriteValuationXML(*report, itemName, res); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("\nreport written to %s\n", *report)
	}
}

func printResult(itemName string, res *domain.EvaluationResult) {
	fmt.Printf("item:            %s\n", itemName)
	fmt.Printf("suggested price: %.2f\n", res.SuggestedPrice)
	fmt.Printf("client payout:   %.2f\n", res.ClientPayout)
	fmt.Printf("margin:          %.2f (%.1f%%)\n", res.Margin, res.MarginPercent)
	fmt.Printf("confidence:      %s\n", res.MarketConfidence)
	fmt.Printf("recommendation:  %s\n", res.Recommendation)
	if len(res.Risks) > 0 {
		fmt.Printf("risks:           %s\n", strings.Join(res.Risks, "; "))
	}
	fmt.Printf("reasoning:       %s\n", res.Reasoning)
}
