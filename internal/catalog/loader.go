package catalog

import (
	"bufio"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"supply-desk/internal/model"

	"github.com/rs/zerolog"
)

// Loader fetches a full product snapshot.
type Loader interface {
	Load(ctx context.Context) ([]model.ProductBrief, error)
}

// fileLoader implements Loader for gzipped JSON-lines snapshots on disk.
type fileLoader struct {
	path   string
	logger zerolog.Logger
}

// NewFileLoader creates a loader that reads the snapshot at path.
func NewFileLoader(path string, logger zerolog.Logger) Loader {
	return &fileLoader{
		path:   path,
		logger: logger.With().Str("component", "catalog-file-loader").Logger(),
	}
}

// Load reads a gzipped file with one JSON product per line.
func (l *fileLoader) Load(ctx context.Context) ([]model.ProductBrief, error) {
	l.logger.Info().Str("file", l.path).Msg("loading catalog snapshot")

	file, err := os.Open(l.path)
	if err != nil {
		l.logger.Error().Err(err).Str("file", l.path).Msg("failed to open catalog file")
		return nil, fmt.Errorf("failed to open catalog file %s: %w", l.path, err)
	}
	defer file.Close()

	products, err := readSnapshot(ctx, file)
	if err != nil {
		l.logger.Error().Err(err).Str("file", l.path).Msg("failed to read catalog file")
		return nil, fmt.Errorf("catalog file %s: %w", l.path, err)
	}

	l.logger.Info().
		Str("file", l.path).
		Int("products_loaded", len(products)).
		Msg("catalog snapshot loaded")

	return products, nil
}

// readSnapshot decodes a gzipped JSON-lines stream. Blank lines are skipped.
func readSnapshot(ctx context.Context, r io.Reader) ([]model.ProductBrief, error) {
	gzipReader, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gzipReader.Close()

	scanner := bufio.NewScanner(gzipReader)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var products []model.ProductBrief
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if lineNo%10_000 == 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var p model.ProductBrief
		if err := json.Unmarshal([]byte(line), &p); err != nil {
			return nil, fmt.Errorf("invalid product on line %d: %w", lineNo, err)
		}
		products = append(products, p)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading snapshot: %w", err)
	}

	return products, nil
}

// fallbackLoader tries each loader in turn and returns the first success.
type fallbackLoader struct {
	loaders []Loader
	logger  zerolog.Logger
}

// NewFallbackLoader creates a loader that falls through loaders in order.
// Nil loaders are skipped.
func NewFallbackLoader(logger zerolog.Logger, loaders ...Loader) Loader {
	active := make([]Loader, 0, len(loaders))
	for _, l := range loaders {
		if l != nil {
			active = append(active, l)
		}
	}
	return &fallbackLoader{
		loaders: active,
		logger:  logger.With().Str("component", "catalog-fallback-loader").Logger(),
	}
}

func (l *fallbackLoader) Load(ctx context.Context) ([]model.ProductBrief, error) {
	if len(l.loaders) == 0 {
		return nil, fmt.Errorf("no catalog loader configured")
	}

	var lastErr error
	for i, loader := range l.loaders {
		products, err := loader.Load(ctx)
		if err == nil {
			if i > 0 {
				l.logger.Info().Int("source", i).Msg("catalog loaded from fallback source")
			}
			return products, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		l.logger.Warn().Err(err).Int("source", i).Msg("catalog source failed, trying next")
		lastErr = err
	}

	return nil, fmt.Errorf("all catalog sources failed: %w", lastErr)
}
