// Package main is the entry point for the Wave Compare Engine.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/makhin/gedsync/internal/api"
	"github.com/makhin/gedsync/internal/config"
	"github.com/makhin/gedsync/internal/engine"
	"github.com/makhin/gedsync/internal/export"
	"github.com/makhin/gedsync/internal/fuzzy"
	"github.com/makhin/gedsync/internal/gedcomload"
	"github.com/makhin/gedsync/internal/photo"
	"github.com/makhin/gedsync/internal/report"
	"github.com/makhin/gedsync/internal/store"
	"github.com/makhin/gedsync/internal/store/postgres"
	"github.com/makhin/gedsync/internal/store/sqlite"
)

// Build-time variables injected by goreleaser.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "compare":
		runCompare(os.Args[2:])
	case "serve":
		runServer()
	case "version":
		fmt.Printf("wavecompare %s (commit: %s, built: %s)\n", version, commit, date)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Wave Compare Engine - reconcile two genealogical trees

Usage:
  wavecompare <command> [flags]

Commands:
  compare   Run one comparison between two GEDCOM files
  serve     Start the HTTP server
  version   Show version information
  help      Show this help message

Environment Variables (used by both commands):
  DATABASE_URL             PostgreSQL connection string for the confirmed-mappings store
  SQLITE_PATH              SQLite database path for the confirmed-mappings store
  WAVE_CONFIRMED_STORE_DSN File path for the default file-backed store (default: ./confirmed-mappings.json)
  PORT                     HTTP server port (default: 8080)
  LOG_LEVEL                Log level: debug, info, warn, error (default: info)
  LOG_FORMAT               Log format: text, json (default: text)
  WAVE_MAX_LEVEL            Maximum BFS level, 0 = unbounded (default: 0)
  WAVE_THRESHOLD_STRATEGY   fixed, adaptive, aggressive, conservative (default: adaptive)
  WAVE_BASE_THRESHOLD       Base acceptance score (default: 50)
  WAVE_RESOLVE_CONFLICTS    Run the conflict resolver once the BFS completes (default: true)
  WAVE_INTERACTIVE          Prompt for low-confidence candidates (default: false)
  WAVE_LOW_CONFIDENCE       Auto-accept threshold (default: 85)
  WAVE_MIN_CONFIDENCE       Auto-reject threshold (default: 60)
  WAVE_MAX_CANDIDATES       Candidates shown per adjudication (default: 3)`)
}

func runCompare(args []string) {
	fs := flag.NewFlagSet("compare", flag.ExitOnError)
	sourcePath := fs.String("source", "", "path to the source GEDCOM file")
	destPath := fs.String("dest", "", "path to the destination GEDCOM file")
	anchorSource := fs.String("anchor-source", "", "source tree anchor person xref (as it appears in the GEDCOM file)")
	anchorDest := fs.String("anchor-dest", "", "destination tree anchor person xref")
	outFormat := fs.String("format", "json", "report output format: json or csv")
	outPath := fs.String("out", "", "report output path (default: stdout)")
	fs.Parse(args)

	if *sourcePath == "" || *destPath == "" || *anchorSource == "" || *anchorDest == "" {
		fmt.Fprintln(os.Stderr, "compare requires -source, -dest, -anchor-source, and -anchor-dest")
		fs.Usage()
		os.Exit(1)
	}

	cfg := config.Load()
	loader := gedcomload.New()

	srcFile, err := os.Open(*sourcePath)
	if err != nil {
		log.Fatalf("opening source tree: %v", err)
	}
	defer srcFile.Close()
	srcTree, err := loader.Load(srcFile)
	if err != nil {
		log.Fatalf("loading source tree: %v", err)
	}

	destFile, err := os.Open(*destPath)
	if err != nil {
		log.Fatalf("opening destination tree: %v", err)
	}
	defer destFile.Close()
	destTree, err := loader.Load(destFile)
	if err != nil {
		log.Fatalf("loading destination tree: %v", err)
	}

	anchorSourceID, ok := srcTree.IDByXRef[*anchorSource]
	if !ok {
		log.Fatalf("anchor-source xref %q not found in source tree", *anchorSource)
	}
	anchorDestID, ok := destTree.IDByXRef[*anchorDest]
	if !ok {
		log.Fatalf("anchor-dest xref %q not found in destination tree", *anchorDest)
	}

	opts := cfg.CompareOptions()
	confirmedStore, err := openConfirmedStore(cfg, opts.ConfirmedMappingsPath)
	if err != nil {
		log.Fatalf("opening confirmed-mappings store: %v", err)
	}

	eng := engine.New(srcTree.Graph, destTree.Graph, opts, fuzzy.NewMatcher())
	eng.Store = confirmedStore

	result, err := eng.Run(context.Background(), anchorSourceID, anchorDestID)
	if err != nil {
		log.Fatalf("compare failed: %v", err)
	}

	builder := report.NewBuilder(srcTree.Graph, destTree.Graph, photo.NewComparator(), opts.LowConfidenceThreshold)
	highConfidence := builder.Build(result.Mappings)

	out := os.Stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			log.Fatalf("creating output file: %v", err)
		}
		defer f.Close()
		out = f
	}

	exporter := export.NewReportExporter()
	exportResult, err := exporter.Export(out, highConfidence, export.ExportOptions{Format: export.Format(*outFormat)})
	if err != nil {
		log.Fatalf("exporting report: %v", err)
	}

	log.Printf("compared %d mappings across %d levels: %d updates, %d additions (%d bytes written)",
		result.TotalMappings(), len(result.LevelStats), exportResult.UpdatesExported, exportResult.AddsExported, exportResult.BytesWritten)
}

func runServer() {
	cfg := config.Load()

	log.Printf("Starting Wave Compare Engine server on port %d", cfg.Port)
	if cfg.UsePostgreSQL() {
		log.Printf("Confirmed-mappings store: PostgreSQL")
	} else if cfg.UseSQLite() {
		log.Printf("Confirmed-mappings store: SQLite (%s)", cfg.SQLitePath)
	} else {
		log.Printf("Confirmed-mappings store: file (%s)", cfg.ConfirmedStoreDSN)
	}

	server := api.NewServer(cfg, func(confirmedMappingsPath string) (store.ConfirmedMappingsStore, error) {
		return openConfirmedStore(cfg, confirmedMappingsPath)
	})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down server...")
		if err := server.Shutdown(); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	}()

	if err := server.Start(); err != nil {
		log.Printf("Server stopped: %v", err)
	}
}

// openConfirmedStore selects a ConfirmedMappingsStore backend the same way
// for both the compare subcommand and the server: Postgres and SQLite are
// opted into by setting DATABASE_URL / SQLITE_PATH, otherwise confirmedPath
// (file store) is used directly.
func openConfirmedStore(cfg *config.Config, confirmedPath string) (store.ConfirmedMappingsStore, error) {
	switch {
	case cfg.UsePostgreSQL():
		db, err := postgres.OpenDB(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return postgres.NewStore(db, "source", "destination")
	case cfg.UseSQLite():
		db, err := sqlite.OpenDB(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return sqlite.NewStore(db, "source", "destination")
	default:
		return store.NewFileStore(confirmedPath, "source", "destination"), nil
	}
}
