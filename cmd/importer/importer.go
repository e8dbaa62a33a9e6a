package importer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	logger "github.com/sirupsen/logrus"

	"github.com/discord7/stocky/src/connectors"
	"github.com/discord7/stocky/src/database"
	"github.com/discord7/stocky/src/enrich"
	"github.com/discord7/stocky/src/ingest"
	"github.com/discord7/stocky/src/repository"
)

// Importer runs the ingestion pipeline once against a local broker export.
type Importer struct{}

func (i *Importer) Start(path string) error {
	if err := database.InitMainDB(); err != nil {
		return fmt.Errorf("init database: %w", err)
	}

	src, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}

	// The pipeline deletes its input when done, so feed it a staged copy and
	// leave the operator's file alone.
	staged, err := ingest.StageFile(src)
	src.Close()
	if err != nil {
		return err
	}

	cfg := connectors.GetConfig()
	client := connectors.NewMarketDataClient(cfg.BaseURL, cfg.APIKey, cfg.Timeout)
	svc := ingest.NewService(repository.NewUploadRepository(), enrich.NewEnricher(client))

	result, err := svc.IngestFile(context.Background(), staged, filepath.Base(path))
	if err != nil {
		return err
	}

	logger.WithFields(map[string]interface{}{
		"upload_id": result.UploadID,
		"accepted":  len(result.Positions),
		"skipped":   result.Skipped,
	}).Info("Import completed")

	return nil
}
