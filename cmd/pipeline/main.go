// Command pipeline runs one batch pass: ingest a listings file, build the
// index, answer a query and print the answer as JSON.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/kailas-cloud/estaterag/internal/app"
	"github.com/kailas-cloud/estaterag/internal/config"
	"github.com/kailas-cloud/estaterag/internal/domain"
	domanswer "github.com/kailas-cloud/estaterag/internal/domain/answer"
	domlisting "github.com/kailas-cloud/estaterag/internal/domain/listing"
	logpkg "github.com/kailas-cloud/estaterag/internal/logger"
	"github.com/kailas-cloud/estaterag/internal/version"
)

type options struct {
	configPath string
	dataPath   string
	query      string
	k          int
	reset      bool
	version    bool
}

func main() {
	_ = godotenv.Load()

	var opts options
	flag.StringVar(&opts.configPath, "config", "", "config file (default: config/<ENV>.yaml)")
	flag.StringVar(&opts.dataPath, "data", "", `listings JSON file: {"listings":[...]} or a bare array`)
	flag.StringVar(&opts.query, "query", "", "natural-language query to answer after ingest")
	flag.IntVar(&opts.k, "k", domanswer.DefaultK, "number of listings to retrieve")
	flag.BoolVar(&opts.reset, "reset", false, "drop stored listings and the index before ingest")
	flag.BoolVar(&opts.version, "version", false, "print the build version and exit")
	flag.Parse()

	if opts.version {
		fmt.Println("pipeline", version.String())
		return
	}
	if opts.dataPath == "" && opts.query == "" {
		fmt.Fprintln(os.Stderr, "pipeline: at least one of -data or -query is required")
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "pipeline:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, out io.Writer) error {
	env := config.GetEnv()
	var (
		cfg config.Config
		err error
	)
	if opts.configPath != "" {
		cfg, err = config.LoadFile(opts.configPath)
	} else {
		cfg, err = config.Load(env)
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	store, err := app.OpenStore(ctx, &cfg)
	if err != nil {
		return err
	}
	a := app.New(&cfg, store, logger)
	defer a.Close()

	if opts.reset {
		if err := a.Listings.Reset(ctx); err != nil {
			return err
		}
	}

	if opts.dataPath != "" {
		records, err := readListings(opts.dataPath)
		if err != nil {
			return err
		}
		report := a.Listings.Ingest(ctx, records)
		logger.Info("Ingested listings file",
			zap.String("path", opts.dataPath),
			zap.Int("added", report.Added),
			zap.Int("skipped", report.Skipped),
			zap.Int("failed", report.Failed),
		)

		if err := a.Listings.BuildIndex(ctx); err != nil && !errors.Is(err, domain.ErrIndexBuild) {
			return err
		}
	}

	if opts.query == "" {
		return nil
	}
	ans, err := a.Answers.Query(ctx, opts.query, opts.k)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ans); err != nil {
		return fmt.Errorf("write answer: %w", err)
	}
	return nil
}

// readListings accepts {"listings":[...]} or a bare JSON array.
func readListings(path string) ([]domlisting.RawRecord, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the operator
	if err != nil {
		return nil, fmt.Errorf("read listings: %w", err)
	}
	return parseListings(data)
}

func parseListings(data []byte) ([]domlisting.RawRecord, error) {
	var wrapped struct {
		Listings []domlisting.RawRecord `json:"listings"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.Listings != nil {
		return wrapped.Listings, nil
	}
	var bare []domlisting.RawRecord
	if err := json.Unmarshal(data, &bare); err != nil {
		return nil, fmt.Errorf("parse listings: expected {\"listings\":[...]} or an array: %w", err)
	}
	return bare, nil
}
