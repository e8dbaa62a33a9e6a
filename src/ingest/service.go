package ingest

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	logger "github.com/sirupsen/logrus"

	"github.com/discord7/stocky/src/model"
	"github.com/discord7/stocky/src/valuation"
)

// UploadPersister writes one upload snapshot atomically.
type UploadPersister interface {
	Create(ctx context.Context, upload *model.Upload) error
}

// PositionEnricher fills current prices and quote metrics into a batch,
// returning only once every fetch has settled.
type PositionEnricher interface {
	Enrich(ctx context.Context, positions []*model.Position)
}

// Result is the outcome of one ingested file.
type Result struct {
	UploadID  uint
	Positions []model.Position
	Skipped   int
}

// Service runs the whole ingestion pipeline: parse, normalize, reconcile cost
// basis, enrich with live quotes, finalize valuation, persist.
type Service struct {
	repo       UploadPersister
	enricher   PositionEnricher
	normalizer *Normalizer
}

func NewService(repo UploadPersister, enricher PositionEnricher) *Service {
	cfg := GetConfig()
	return &Service{
		repo:       repo,
		enricher:   enricher,
		normalizer: NewNormalizer(cfg.CashTickerPrefixes),
	}
}

// IngestFile processes one uploaded CSV at path. The file is a scoped
// resource: it is removed on every exit path, success or failure. sourceName
// is the filename reported by the uploader, recorded on the snapshot.
func (s *Service) IngestFile(ctx context.Context, path, sourceName string) (*Result, error) {
	defer func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logger.WithError(err).WithField("path", path).Warn("Failed to remove ingested file")
		}
	}()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open upload file: %w", err)
	}
	defer f.Close()

	reader, err := NewRowReader(f)
	if err != nil {
		return nil, err
	}

	var positions []*model.Position
	skipped := 0

	for {
		row, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Structural failure aborts the whole upload before any network
			// or database work begins.
			return nil, err
		}

		draft := s.normalizer.Normalize(row)
		if draft == nil {
			skipped++
			continue
		}

		valuation.ReconcileCostBasis(draft.Position, draft.CostBasisInput)
		positions = append(positions, draft.Position)
	}

	asOf := time.Now().UTC()
	s.enricher.Enrich(ctx, positions)

	upload := &model.Upload{
		SourceFilename: sourceName,
		UploadedAt:     asOf,
		Positions:      make([]model.Position, 0, len(positions)),
	}
	for _, p := range positions {
		valuation.Finalize(p, asOf)
		upload.Positions = append(upload.Positions, *p)
	}

	if err := s.repo.Create(ctx, upload); err != nil {
		return nil, fmt.Errorf("persist upload: %w", err)
	}

	logger.WithFields(map[string]interface{}{
		"upload_id": upload.ID,
		"source":    sourceName,
		"accepted":  len(upload.Positions),
		"skipped":   skipped,
	}).Info("Upload ingested")

	return &Result{
		UploadID:  upload.ID,
		Positions: upload.Positions,
		Skipped:   skipped,
	}, nil
}

// StageFile copies an incoming upload stream to a uniquely named temp file and
// returns its path. The caller hands the path to IngestFile, which owns its
// removal from then on.
func StageFile(src io.Reader) (string, error) {
	path := filepath.Join(os.TempDir(), fmt.Sprintf("stocky-upload-%s.csv", uuid.NewString()))

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create temp upload file: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(path)
		return "", fmt.Errorf("write temp upload file: %w", err)
	}

	if err := dst.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close temp upload file: %w", err)
	}

	return path, nil
}
