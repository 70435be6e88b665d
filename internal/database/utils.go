package database

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func UpdateGenerationJobStatus(ctx context.Context, txn *gorm.DB, jobId uuid.UUID, status string) error {
	updates := map[string]any{"status": status}
	if status == JobCompleted || status == JobFailed {
		updates["completion_time"] = time.Now().UTC()
	}

	if err := txn.WithContext(ctx).Model(&GenerationJob{Id: jobId}).Updates(updates).Error; err != nil {
		slog.Error("error updating generation job status", "job_id", jobId, "status", status, "error", err)
		return err
	}
	return nil
}

func CountImages(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	if err := db.WithContext(ctx).Model(&GeneratedImage{}).Count(&total).Error; err != nil {
		slog.Error("error counting images", "error", err)
		return 0, err
	}
	return total, nil
}
