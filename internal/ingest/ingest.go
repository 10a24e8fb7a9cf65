package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/umamilabs/gurume/internal/catalog"
)

// Loader drives the two ingestion stages: CSV rows into the store, then an
// embedding backfill for records the pipeline has not reached yet. The
// stages are separable so a failed embedding run never blocks re-ingestion.
type Loader struct {
	catalog *catalog.Catalog
	logger  zerolog.Logger
}

func NewLoader(c *catalog.Catalog, logger zerolog.Logger) *Loader {
	return &Loader{
		catalog: c,
		logger:  logger.With().Str("component", "ingest").Logger(),
	}
}

// LoadCSV upserts every parseable row of a scraped directory export. Rows
// that cannot be parsed are logged and skipped; one bad row must not abort a
// multi-thousand-row load. Returns the number of rows stored.
func (l *Loader) LoadCSV(ctx context.Context, r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("failed to read CSV header: %w", err)
	}

	loaded := 0
	for line := 2; ; line++ {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			l.logger.Warn().Err(err).Int("line", line).Msg("skipping malformed row")
			continue
		}

		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(fields) {
				row[col] = fields[i]
			}
		}

		rec, err := RecordFromRow(row)
		if err != nil {
			l.logger.Warn().Err(err).Int("line", line).Msg("skipping unparseable row")
			continue
		}
		if err := l.catalog.Upsert(ctx, rec); err != nil {
			return loaded, fmt.Errorf("upsert failed at line %d: %w", line, err)
		}
		loaded++
	}

	l.logger.Info().Int("loaded", loaded).Msg("CSV load complete")
	return loaded, nil
}

// BackfillEmbeddings embeds the names of records that have none yet, in one
// batched provider call per invocation, bounded to batchSize rows. Returns
// the number of records embedded; call repeatedly until it reports zero.
func (l *Loader) BackfillEmbeddings(ctx context.Context, batchSize int) (int, error) {
	pending, err := l.catalog.MissingEmbeddings(ctx, batchSize)
	if err != nil {
		return 0, err
	}

	ids := make([]string, 0, len(pending))
	texts := make([]string, 0, len(pending))
	for id, name := range pending {
		if name == "" {
			continue
		}
		ids = append(ids, id)
		texts = append(texts, name)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	vecs, err := l.catalog.Embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("batch embedding failed: %w", err)
	}
	if len(vecs) != len(ids) {
		return 0, fmt.Errorf("embedding count mismatch: %d texts, %d vectors", len(ids), len(vecs))
	}

	done := 0
	for i, id := range ids {
		if err := l.catalog.SetEmbedding(ctx, id, vecs[i]); err != nil {
			return done, err
		}
		done++
	}

	l.logger.Info().Int("embedded", done).Msg("embedding backfill batch complete")
	return done, nil
}
