package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"price-desk/internal/app"
)

func main() {
	a, err := app.New()
	if err != nil {
		log.Fatal(err)
	}

	// refreshes re-scrape behind each provider's rate limit; give them room
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	statuses := a.Agg.RefreshAll(ctx)

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PROVIDER\tAVAILABLE\tLAST REFRESH\tITEMS\tERROR")
	for _, st := range statuses {
		refresh := "-"
		if st.LastRefresh != nil {
			refresh = st.LastRefresh.Format(time.RFC3339)
		}
		fmt.Fprintf(tw, "%s\t%v\t%s\t%d\t%s\n",
			st.Name, st.Available, refresh, st.ItemCount, st.Error)
	}
	tw.Flush()
}
