package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/joho/godotenv"

	"github.com/mannaalive/import-api/internal/db"
	"github.com/mannaalive/import-api/internal/eval"
)

func main() {
	limit := flag.Int("limit", 100, "Max products to include")
	statusFilter := flag.String("status", "", "Only show one status (ready | needs_simulation | needs_market | needs_costs)")
	withScore := flag.Bool("score", true, "Compute viability scores")
	showAlerts := flag.Bool("alerts", false, "Print per-product alerts after the table")
	flag.Parse()

	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.Connect(ctx)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	cfg, err := eval.LoadConfig(os.Getenv("EVAL_CONFIG"))
	if err != nil {
		log.Fatal(err)
	}
	engine := eval.NewEngine(cfg)

	store := db.NewStore(pool)
	products, err := store.ListProducts(ctx, *limit)
	if err != nil {
		log.Fatal(err)
	}
	markets, err := store.MarketDataMap(ctx)
	if err != nil {
		log.Fatal(err)
	}
	sims, err := store.LatestSimulations(ctx)
	if err != nil {
		log.Fatal(err)
	}

	entries := engine.BuildTriage(eval.TriageInput{
		Products:          products,
		LatestSimulations: sims,
		MarketData:        markets,
		IncludeScore:      *withScore,
	})

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Product", "Status", "Score", "Class", "Next Action", "Created"})

	shown := 0
	for _, e := range entries {
		if *statusFilter != "" && string(e.Status) != *statusFilter {
			continue
		}

		score, class := "-", "-"
		if e.Score != nil {
			score = fmt.Sprintf("%d", e.Score.TotalScore)
			class = e.Score.Classification
		}

		t.AppendRow(table.Row{
			truncate(e.ProductName, 40),
			string(e.Status),
			score,
			class,
			truncate(e.NextAction, 50),
			e.CreatedAt.Format("2006-01-02"),
		})
		shown++
	}
	t.Render()
	fmt.Printf("%d of %d products shown\n", shown, len(entries))

	if *showAlerts {
		for _, e := range entries {
			if *statusFilter != "" && string(e.Status) != *statusFilter {
				continue
			}
			if len(e.Alerts) == 0 {
				continue
			}
			fmt.Printf("\n%s:\n  %s\n", e.ProductName, strings.Join(e.Alerts, "\n  "))
		}
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}
