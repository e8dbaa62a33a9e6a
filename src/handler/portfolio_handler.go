package handler

import (
	"context"
	"encoding/json"
	"net/http"

	logger "github.com/sirupsen/logrus"

	"github.com/discord7/stocky/src/model"
	"github.com/discord7/stocky/src/repository"
)

type latestFinder interface {
	FindLatest(ctx context.Context) (*model.Upload, error)
}

type portfolioResponse struct {
	UploadID  uint             `json:"uploadId"`
	Count     int              `json:"count"`
	Positions []model.Position `json:"positions"`
}

// PortfolioHandler returns the current portfolio: the positions of the most
// recent upload, ticker-ordered. 404 until the first upload lands.
func PortfolioHandler(repo latestFinder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		upload, err := repo.FindLatest(r.Context())
		if err != nil {
			logger.WithError(err).Error("failed to fetch latest upload")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		if upload == nil {
			http.Error(w, "no uploads yet", http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(portfolioResponse{
			UploadID:  upload.ID,
			Count:     len(upload.Positions),
			Positions: upload.Positions,
		}); err != nil {
			logger.WithError(err).Error("failed to encode portfolio response")
		}
	}
}

// DefaultPortfolioHandler wires the handler to the production repository.
func DefaultPortfolioHandler() http.HandlerFunc {
	return PortfolioHandler(repository.NewUploadRepository())
}
