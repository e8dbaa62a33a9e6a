package handler

import (
	"context"
	"encoding/json"
	"net/http"

	logger "github.com/sirupsen/logrus"

	"github.com/discord7/stocky/src/model"
	"github.com/discord7/stocky/src/repository"
)

type uploadLister interface {
	List(ctx context.Context) ([]model.Upload, error)
}

// ListUploadsHandler returns every historical snapshot, newest first.
func ListUploadsHandler(repo uploadLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uploads, err := repo.List(r.Context())
		if err != nil {
			logger.WithError(err).Error("failed to list uploads")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		if uploads == nil {
			uploads = []model.Upload{}
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(uploads); err != nil {
			logger.WithError(err).Error("failed to encode uploads response")
		}
	}
}

// DefaultListUploadsHandler wires the handler to the production repository.
func DefaultListUploadsHandler() http.HandlerFunc {
	return ListUploadsHandler(repository.NewUploadRepository())
}
