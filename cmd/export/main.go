package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"price-desk/internal/app"
	"price-desk/internal/config"
	"price-desk/internal/domain"
	"price-desk/internal/export"
	"price-desk/internal/pricediff"
	"price-desk/internal/providers"
	"price-desk/internal/recordstore"
	"price-desk/internal/sftpclient"
)

func main() {
	var (
		query      = flag.String("query", "", "search query to snapshot (required unless -status-only)")
		category   = flag.String("category", "", "restrict to one category")
		limit      = flag.Int("limit", 100, "max records in the snapshot")
		outDir     = flag.String("out", ".", "output directory")
		statusOnly = flag.Bool("status-only", false, "export only the provider status table")
		uploadSFTP = flag.Bool("sftp", false, "upload the generated files via SFTP")
	)
	flag.Parse()

	if !*statusOnly && strings.TrimSpace(*query) == "" {
		log.Fatal("export: -query is required (or pass -status-only)")
	}

	a, err := app.New()
	if err != nil {
		log.Fatal(err)
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatal(err)
	}

	rootCtx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	var outputs []string

	if !*statusOnly {
		records := a.Agg.Search(rootCtx, *query, providers.SearchOptions{
			Limit:    *limit,
			Category: domain.Category(*category),
		})
		snap := export.NewSnapshot(*query, records)

		reportMovement(a.Records, *query, records)

		path := filepath.Join(*outDir, snap.FileName())
		f, err := os.Create(path)
		if err != nil {
			log.Fatal(err)
		}
		if err := export.WriteRecordsCSV(f, snap.Records); err != nil {
			f.Close()
			log.Fatal(err)
		}
		if err := f.Close(); err != nil {
			log.Fatal(err)
		}
		log.Printf("wrote %d records to %s", len(snap.Records), path)
		outputs = append(outputs, path)
	}

	statusPath := filepath.Join(*outDir, "provider-status.csv")
	sf, err := os.Create(statusPath)
	if err != nil {
		log.Fatal(err)
	}
	if err := export.WriteStatusCSV(sf, a.Agg.Status().All()); err != nil {
		sf.Close()
		log.Fatal(err)
	}
	if err := sf.Close(); err != nil {
		log.Fatal(err)
	}
	log.Printf("wrote provider status to %s", statusPath)
	outputs = append(outputs, statusPath)

	if *uploadSFTP {
		upload(rootCtx, a.Cfg, outputs)
	}
}

// reportMovement diffs the fresh records against the last exported baseline
// for the same query, then stores the new baseline.
func reportMovement(store recordstore.Store, query string, records []domain.MarketPriceRecord) {
	baselineKey := "baseline-" + strings.ToLower(strings.ReplaceAll(strings.TrimSpace(query), " ", "-"))

	var previous []domain.MarketPriceRecord
	if err := store.Load(baselineKey, &previous); err == nil {
		added, changed, removed := pricediff.Diff(previous, records)
		log.Printf("movement since last export: %d new, %d moved, %d dropped",
			len(added), len(changed), len(removed))
		for _, c := range changed {
			log.Printf("  %s/%s: %.2f -> %.2f (%+.1f%%)",
				c.Record.Source, c.Record.ItemID, c.OldPrice, c.NewPrice, c.PercentMove())
		}
	}

	if err := store.Save(baselineKey, records); err != nil {
		log.Printf("WARN: could not store export baseline: %v", err)
	}
}

func upload(ctx context.Context, cfg config.Config, outputs []string) {
	upCfg := sftpclient.Config{
		Host:                  cfg.SFTPHost,
		Port:                  cfg.SFTPPort,
		User:                  cfg.SFTPUser,
		Pass:                  cfg.SFTPPass,
		RemoteDir:             cfg.SFTPDir,
		InsecureIgnoreHostKey: cfg.SFTPInsecureIgnoreHostKey,
	}
	for _, path := range outputs {
		upCtx, upCancel := context.WithTimeout(ctx, 5*time.Minute)
		err := sftpclient.UploadFile(upCtx, upCfg, path, filepath.Base(path))
		upCancel()
		if err != nil {
			log.Fatal(err)
		}
		log.Printf("uploaded to sftp://%s:%d%s/%s",
			upCfg.Host, upCfg.Port, upCfg.RemoteDir, filepath.Base(path))
	}
}
