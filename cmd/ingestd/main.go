// Copyright 2025 James Ross
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/self-sensored/batch-ingest/internal/batch"
	"github.com/self-sensored/batch-ingest/internal/config"
	"github.com/self-sensored/batch-ingest/internal/model"
	"github.com/self-sensored/batch-ingest/internal/obs"
	"github.com/self-sensored/batch-ingest/internal/storage"
)

var version = "dev"

func main() {
	var batchConfigPath string
	var validationConfigPath string
	var dsn string
	var inputPath string
	var userID string
	var logLevel string
	var showVersion bool
	var explainConfig bool

	fs := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	fs.StringVar(&batchConfigPath, "batch-config", "", "Path to batch config YAML (optional; defaults + env apply otherwise)")
	fs.StringVar(&validationConfigPath, "validation-config", "", "Path to validation config YAML (optional)")
	fs.StringVar(&dsn, "dsn", "", "PostgreSQL data source name")
	fs.StringVar(&inputPath, "input", "-", "Path to an IngestPayload JSON file, or - for stdin")
	fs.StringVar(&userID, "user", "", "UUID of the owning user")
	fs.StringVar(&logLevel, "log-level", "info", "Log level: debug|info|warn|error")
	fs.BoolVar(&showVersion, "version", false, "Print version and exit")
	fs.BoolVar(&explainConfig, "explain-config", false, "Print the batch config tuning report and exit")
	_ = fs.Parse(os.Args[1:])

	if showVersion {
		fmt.Println(version)
		return
	}

	batchCfg, err := config.LoadBatchConfig(batchConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load batch config: %v\n", err)
		os.Exit(1)
	}

	if explainConfig {
		fmt.Print(batchCfg.PerformanceBenchmark())
		return
	}

	logger, err := obs.NewLogger(logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	valCfg, err := config.LoadValidationConfig(validationConfigPath)
	if err != nil {
		logger.Fatal("failed to load validation config", obs.Err(err))
	}

	if dsn == "" {
		dsn = os.Getenv("INGESTD_DSN")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		logger.Fatal("failed to open database", obs.Err(err))
	}
	defer db.Close()

	store := storage.NewPostgresStore(db)
	processor, err := batch.NewWithConfig(store, batchCfg, valCfg, logger)
	if err != nil {
		logger.Fatal("failed to construct batch processor", obs.Err(err))
	}

	payload, uid, err := readPayload(inputPath, userID)
	if err != nil {
		logger.Fatal("failed to read payload", obs.Err(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("signal received, cancelling batch", obs.String("signal", sig.String()))
		cancel()
		select {
		case sig2 := <-sigCh:
			logger.Warn("second signal received, exiting immediately", obs.String("signal", sig2.String()))
			os.Exit(1)
		case <-time.After(5 * time.Second):
		}
	}()

	logger.Info("starting batch", obs.Int("total_records", payload.Total()))
	result := processor.ProcessBatch(ctx, uid, payload)
	logger.Info("batch complete",
		obs.Int("processed", result.ProcessedCount),
		obs.Int("failed", result.FailedCount),
		obs.Bool("cancelled", result.Cancelled))

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		logger.Fatal("failed to encode result", obs.Err(err))
	}
}

// readPayload decodes an IngestPayload from path (or stdin when path is
// "-") and parses userID as a UUID.
func readPayload(path, userID string) (*model.IngestPayload, uuid.UUID, error) {
	var r io.Reader
	if path == "-" || path == "" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, uuid.UUID{}, fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		r = f
	}

	var payload model.IngestPayload
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return nil, uuid.UUID{}, fmt.Errorf("decode payload: %w", err)
	}

	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, uuid.UUID{}, fmt.Errorf("parse user id: %w", err)
	}

	return &payload, uid, nil
}
