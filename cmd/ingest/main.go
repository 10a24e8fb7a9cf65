package main

import (
	"context"
	"flag"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/umamilabs/gurume/internal/catalog"
	"github.com/umamilabs/gurume/internal/config"
	"github.com/umamilabs/gurume/internal/driver"
	"github.com/umamilabs/gurume/internal/ingest"
	"github.com/umamilabs/gurume/internal/llm"
)

// Loads scraped directory CSV exports into the store, then backfills
// embeddings for whatever records still lack one:
//
//	ingest -config config/config.toml data/shinjuku.csv data/roppongi.csv
func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	if err := godotenv.Load(); err != nil {
		logger.Info().Msg("no .env file found, using environment as-is")
	}

	cfgPath := flag.String("config", "config/config.toml", "path to TOML config")
	skipEmbed := flag.Bool("skip-embed", false, "load rows only, skip the embedding backfill")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		logger.Warn().Err(err).Str("path", *cfgPath).Msg("config file not loaded, using defaults")
		cfg = config.Default()
	}
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = "ollama"
		if cfg.LLM.BaseURL == "" {
			cfg.LLM.BaseURL = "http://localhost:11434"
		}
	}

	ctx := context.Background()

	d, err := driver.NewNeo4jDriver(cfg.Neo4j.URI, cfg.Neo4j.User, cfg.Neo4j.Password, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to store")
	}
	defer d.Close(ctx)

	if err := d.BuildIndices(ctx); err != nil {
		logger.Warn().Err(err).Msg("index build failed, continuing")
	}

	embedder, err := llm.NewEmbedder(ctx, cfg.LLM)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize embedding client")
	}

	loader := ingest.NewLoader(catalog.New(d, embedder, logger), logger)

	for _, path := range flag.Args() {
		f, err := os.Open(path)
		if err != nil {
			logger.Fatal().Err(err).Str("path", path).Msg("cannot open CSV")
		}
		n, err := loader.LoadCSV(ctx, f)
		f.Close()
		if err != nil {
			logger.Fatal().Err(err).Str("path", path).Msg("CSV load failed")
		}
		logger.Info().Str("path", path).Int("rows", n).Msg("loaded")
	}

	if *skipEmbed {
		return
	}

	total := 0
	for {
		n, err := loader.BackfillEmbeddings(ctx, cfg.Concurrency.IngestBatch)
		if err != nil {
			logger.Fatal().Err(err).Msg("embedding backfill failed")
		}
		if n == 0 {
			break
		}
		total += n
	}
	logger.Info().Int("embedded", total).Msg("backfill complete")
}
