package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	logger "github.com/sirupsen/logrus"

	"github.com/discord7/stocky/src/connectors"
	"github.com/discord7/stocky/src/enrich"
	"github.com/discord7/stocky/src/ingest"
	"github.com/discord7/stocky/src/model"
	"github.com/discord7/stocky/src/repository"
)

// 32 MB, same ceiling net/http uses for in-memory multipart parts.
const maxUploadMemory = 32 << 20

type ingester interface {
	IngestFile(ctx context.Context, path, sourceName string) (*ingest.Result, error)
}

type uploadResponse struct {
	UploadID uint             `json:"uploadId"`
	Count    int              `json:"count"`
	Skipped  int              `json:"skipped"`
	Data     []model.Position `json:"data"`
}

// UploadHandler accepts a multipart portfolio CSV in the "file" field, runs
// the ingestion pipeline on it, and returns the persisted snapshot. A
// structurally broken CSV is a client error; everything past parsing that
// fails is a server error. The staged temp file is removed either way.
func UploadHandler(svc ingester) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
			http.Error(w, "invalid multipart form", http.StatusBadRequest)
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "missing file field", http.StatusBadRequest)
			return
		}
		defer file.Close()

		path, err := ingest.StageFile(file)
		if err != nil {
			logger.WithError(err).Error("failed to stage uploaded file")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		result, err := svc.IngestFile(r.Context(), path, header.Filename)
		if err != nil {
			if errors.Is(err, ingest.ErrMalformedInput) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}

			logger.WithError(err).WithField("filename", header.Filename).Error("failed to ingest upload")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(uploadResponse{
			UploadID: result.UploadID,
			Count:    len(result.Positions),
			Skipped:  result.Skipped,
			Data:     result.Positions,
		}); err != nil {
			logger.WithError(err).Error("failed to encode upload response")
		}
	}
}

// DefaultUploadHandler wires the handler to the production pipeline.
func DefaultUploadHandler() http.HandlerFunc {
	cfg := connectors.GetConfig()
	client := connectors.NewMarketDataClient(cfg.BaseURL, cfg.APIKey, cfg.Timeout)
	svc := ingest.NewService(repository.NewUploadRepository(), enrich.NewEnricher(client))
	return UploadHandler(svc)
}
