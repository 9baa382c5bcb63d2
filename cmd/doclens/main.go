package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/cognicore/doclens/internal/docload"
	"github.com/cognicore/doclens/pkg/doclens"
	"github.com/cognicore/doclens/pkg/doclens/config"
	"github.com/cognicore/doclens/pkg/doclens/pipeline"
	"github.com/cognicore/doclens/pkg/doclens/store"
	"github.com/cognicore/doclens/pkg/doclens/store/sqlite"
)

func main() {
	var (
		input      = flag.String("input", "", "Path to a text file to analyze")
		jsonl      = flag.String("jsonl", "", "Path to a JSONL batch file (one document per line)")
		configPath = flag.String("config", "", "Optional: path to a YAML config file")
		dbPath     = flag.String("db", "", "Optional: SQLite database for run and report history")
		timeout    = flag.Duration("timeout", 0, "Per-run timeout override (e.g. 10s)")
		language   = flag.String("language", "", "Document language hint (default en)")
		html       = flag.Bool("html", false, "Treat input as HTML and extract visible text")
		showRun    = flag.Bool("show-run", false, "Print per-stage run results alongside the report")
	)
	flag.Parse()

	if *input == "" && *jsonl == "" {
		log.Fatal("--input or --jsonl required")
	}
	if *input != "" && *jsonl != "" {
		log.Fatal("--input and --jsonl are mutually exclusive")
	}

	ctx := context.Background()

	loader := config.Loader{Path: *configPath}
	cfg, err := loader.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	var st store.Store
	if *dbPath != "" {
		st, err = sqlite.Open(ctx, *dbPath)
		if err != nil {
			log.Fatalf("Failed to open database %s: %v", *dbPath, err)
		}
		defer st.Close()
	}

	analyzer, err := doclens.New(doclens.Options{Config: cfg, Store: st})
	if err != nil {
		log.Fatalf("Failed to create analyzer: %v", err)
	}

	if *jsonl != "" {
		runBatch(ctx, analyzer, *jsonl, *timeout, *language, *showRun)
		return
	}

	data, err := os.ReadFile(*input)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", *input, err)
	}

	rep, run, err := analyzer.Analyze(ctx, doclens.Input{
		Text:     string(data),
		Language: *language,
		HTML:     *html,
		Timeout:  *timeout,
	})
	if err != nil {
		if run != nil {
			printRun(run)
		}
		log.Fatalf("Analysis failed: %v", err)
	}

	if *showRun {
		printRun(run)
	}
	printJSON(rep)
}

func runBatch(ctx context.Context, analyzer *doclens.Analyzer, path string, timeout time.Duration, language string, showRun bool) {
	items, err := docload.LoadFromJSONL(path)
	if err != nil {
		log.Fatalf("Failed to load batch: %v", err)
	}
	log.Printf("Loaded %d documents from %s", len(items), path)

	failures := 0
	for _, item := range items {
		lang := item.Language
		if lang == "" {
			lang = language
		}
		rep, run, err := analyzer.Analyze(ctx, doclens.Input{
			Text:     item.Text,
			Language: lang,
			HTML:     item.HTML,
			Timeout:  timeout,
		})
		if err != nil {
			failures++
			log.Printf("Warning: document %s failed: %v", itemLabel(item), err)
			continue
		}
		fmt.Printf("=== %s ===\n", itemLabel(item))
		if showRun {
			printRun(run)
		}
		printJSON(rep)
	}

	if failures > 0 {
		log.Printf("Completed with %d of %d documents failed", failures, len(items))
	}
}

func itemLabel(item docload.Item) string {
	if item.ID != "" {
		return item.ID
	}
	if item.Title != "" {
		return item.Title
	}
	return "(untitled)"
}

func printRun(run *pipeline.Run) {
	fmt.Printf("run %s: %s (%s)\n", run.ID(), run.Status(), run.Elapsed().Round(time.Millisecond))
	for _, res := range run.Results() {
		line := fmt.Sprintf("  %-20s %s", res.Stage, res.Status)
		if res.Reason != "" {
			line += " (" + res.Reason + ")"
		}
		fmt.Println(line)
	}
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode output: %v", err)
	}
	fmt.Println(string(out))
}
