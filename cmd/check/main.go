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

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	statuses := a.Agg.CheckProviders(ctx)

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PROVIDER\tAVAILABLE\tLAST CHECK\tERROR")
	for _, st := range statuses {
		fmt.Fprintf(tw, "%s\t%v\t%s\t%s\n",
			st.Name, st.Available, st.LastCheck.Format(time.RFC3339), st.Error)
	}
	tw.Flush()
}
