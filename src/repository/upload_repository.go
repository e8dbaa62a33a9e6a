package repository

import (
	"context"
	"errors"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/discord7/stocky/src/database"
	"github.com/discord7/stocky/src/model"
)

// UploadRepository handles read/write operations for uploads and their positions.
type UploadRepository struct {
	db *gorm.DB
}

// NewUploadRepository creates a new repository instance using the main read/write database.
func NewUploadRepository() *UploadRepository {
	return &UploadRepository{
		db: database.MainDB,
	}
}

// WithDB allows overriding the underlying *gorm.DB instance.
// Useful for tests or when using a specific session/transaction.
func (r *UploadRepository) WithDB(db *gorm.DB) *UploadRepository {
	return &UploadRepository{db: db}
}

// Create persists one upload together with all of its positions in a single
// transaction. Either the whole snapshot commits or none of it does — an
// upload must never become visible with a partial position set.
func (r *UploadRepository) Create(
	ctx context.Context,
	upload *model.Upload,
) error {

	logger.WithFields(map[string]interface{}{
		"repo":      "UploadRepository",
		"op":        "Create",
		"filename":  upload.SourceFilename,
		"positions": len(upload.Positions),
	}).Debug("Creating upload snapshot")

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(upload).Error
	})
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "UploadRepository",
			"op":   "Create",
		}).WithError(err).Error("Failed to create upload snapshot")

		return err
	}

	logger.WithFields(map[string]interface{}{
		"repo":      "UploadRepository",
		"op":        "Create",
		"upload_id": upload.ID,
		"positions": len(upload.Positions),
	}).Info("Upload snapshot created")

	return nil
}

// FindLatest returns the most recent upload with its positions ordered by
// ticker ascending. Returns (nil, nil) when no upload exists yet.
func (r *UploadRepository) FindLatest(
	ctx context.Context,
) (*model.Upload, error) {

	logger.WithFields(map[string]interface{}{
		"repo": "UploadRepository",
		"op":   "FindLatest",
	}).Debug("Fetching latest upload")

	var upload model.Upload

	err := r.db.WithContext(ctx).
		Preload("Positions", func(db *gorm.DB) *gorm.DB {
			return db.Order("positions.ticker ASC")
		}).
		Order("uploaded_at DESC").
		First(&upload).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.WithFields(map[string]interface{}{
				"repo": "UploadRepository",
				"op":   "FindLatest",
			}).Info("No uploads yet")

			return nil, nil
		}

		logger.WithFields(map[string]interface{}{
			"repo": "UploadRepository",
			"op":   "FindLatest",
		}).WithError(err).Error("Failed to fetch latest upload")

		return nil, err
	}

	return &upload, nil
}

// List returns all uploads ordered from newest to oldest, without positions.
func (r *UploadRepository) List(
	ctx context.Context,
) ([]model.Upload, error) {

	logger.WithFields(map[string]interface{}{
		"repo": "UploadRepository",
		"op":   "List",
	}).Debug("Listing uploads")

	var uploads []model.Upload

	err := r.db.WithContext(ctx).
		Order("uploaded_at DESC").
		Find(&uploads).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "UploadRepository",
			"op":   "List",
		}).WithError(err).Error("Failed to list uploads")

		return nil, err
	}

	return uploads, nil
}
