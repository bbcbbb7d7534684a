package importer

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/kosarica/insight-service/internal/stores"
)

// StoreFile loads the store catalogue from a CSV or XLSX file. Rows that fail
// validation are logged and skipped.
type StoreFile struct {
	Path string
}

// LoadStores implements stores.Source.
func (f StoreFile) LoadStores(ctx context.Context) ([]stores.Store, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	format, err := FormatFromFilename(f.Path)
	if err != nil {
		return nil, err
	}
	content, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read store file: %w", err)
	}
	result, err := ParseStores(content, format)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", f.Path, err)
	}

	logger := log.With().Str("component", "importer").Str("file", f.Path).Logger()
	for _, rowErr := range result.Errors {
		logger.Warn().Int("row", rowErr.Row).Str("field", rowErr.Field).Str("value", rowErr.Value).Msg(rowErr.Message)
	}
	if len(result.Rows) == 0 {
		return nil, fmt.Errorf("no valid stores in %s (%d rows rejected)", f.Path, len(result.Errors))
	}
	logger.Info().Int("stores", len(result.Rows)).Int("rejected", len(result.Errors)).Msg("Store file loaded")
	return result.Rows, nil
}
