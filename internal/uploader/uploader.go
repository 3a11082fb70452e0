// Package uploader ships export run directories to cloud storage.
package uploader

import (
	"context"

	"domgen/internal/config"
	"domgen/internal/util"
)

// Uploader uploads a run directory and returns its remote location.
type Uploader interface {
	Enabled() bool
	UploadDir(ctx context.Context, dir string) (string, error)
}

// Noop is the uploader used when no cloud backend is configured.
type Noop struct{}

// Enabled reports false; nothing is uploaded.
func (Noop) Enabled() bool { return false }

// UploadDir does nothing.
func (Noop) UploadDir(context.Context, string) (string, error) { return "", nil }

// ForConfig picks the first enabled backend, preferring S3 over GCS. A
// backend that fails to initialize is logged and skipped rather than
// failing the run; uploads are best-effort.
func ForConfig(cfg config.StorageConfig) Uploader {
	if cfg.S3.Enabled {
		up, err := NewS3(cfg.S3)
		if err == nil {
			return up
		}
		util.Warnf("s3 uploader unavailable: %v", err)
	}
	if cfg.GCS.Enabled {
		up, err := NewGCS(cfg.GCS)
		if err == nil {
			return up
		}
		util.Warnf("gcs uploader unavailable: %v", err)
	}
	return Noop{}
}
