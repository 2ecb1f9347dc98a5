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

// status prints the persisted provider table from the last check or refresh;
// it never touches the network itself.
func main() {
	a, err := app.New()
	if err != nil {
		log.Fatal(err)
	}

	statuses := a.Agg.Status().All()
	if len(statuses) == 0 {
		fmt.Println("no provider status recorded yet; run check first")
		return
	}

	health := a.Cache.Health(context.Background())
	fmt.Printf("cache backend: %s (available=%v, entries=%d)\n\n",
		health.Backend, health.Available, health.Size)

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PROVIDER\tAVAILABLE\tLAST CHECK\tLAST REFRESH\tITEMS\tERROR")
	for _, st := range statuses {
		refresh := "-"
		if st.LastRefresh != nil {
			refresh = st.LastRefresh.Format(time.RFC3339)
		}
		fmt.Fprintf(tw, "%s\t%v\t%s\t%s\t%d\t%s\n",
			st.Name, st.Available, st.LastCheck.Format(time.RFC3339), refresh, st.ItemCount, st.Error)
	}
	tw.Flush()
}
