package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"price-desk/internal/app"
	"price-desk/internal/domain"
	"price-desk/internal/providers"
)

func main() {
	var (
		category = flag.String("category", "", "restrict to one category (coin, sports-card, trading-card, comic, funko)")
		limit    = flag.Int("limit", 0, "max merged results (0 = default)")
		asJSON   = flag.Bool("json", false, "print results as JSON")
	)
	flag.Parse()

	query := strings.TrimSpace(strings.Join(flag.Args(), " "))
	if query == "" {
		fmt.Fprintln(os.Stderr, "usage: search [flags] <query>")
		os.Exit(1)
	}

	a, err := app.New()
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	records := a.Agg.Search(ctx, query, providers.SearchOptions{
		Limit:    *limit,
		Category: domain.Category(*category),
	})

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(records); err != nil {
			log.Fatal(err)
		}
		return
	}

	if len(records) == 0 {
		fmt.Println("no results")
		for _, st := range a.Agg.Status().All() {
			if !st.Available {
				fmt.Printf("provider %s unavailable: %s\n", st.Name, st.Error)
			}
		}
		return
	}
	printRecords(os.Stdout, records)
}

func printRecords(w io.Writer, records []domain.MarketPriceRecord) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SOURCE\tITEM\tNAME\tCATEGORY\tRAW\tGRADES")
	for _, r := range records {
		raw := "-"
		if r.Prices.Raw != nil {
			raw = fmt.Sprintf("%.2f", r.Prices.Raw.Mid)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\n",
			r.Source, r.ItemID, r.Name, r.Category, raw, len(r.Prices.Graded))
	}
	tw.Flush()
}
