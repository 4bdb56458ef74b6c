// Package storage mirrors cover art into a MinIO bucket so the API can keep
// serving covers after the catalog's CDN URLs expire. Mirroring is optional:
// with no endpoint configured every call is a no-op.
package storage

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"time"

	"tracktide/config"
	"tracktide/logger"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var minioClient *minio.Client

// InitMinio initializes the MinIO client and ensures the bucket exists.
func InitMinio(cfg *config.Config) error {
	if cfg.MinioEndpoint == "" {
		logger.Info("[Storage] MinIO endpoint not configured, cover mirroring disabled")
		return nil
	}

	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
		Region: cfg.MinioRegion,
	})
	if err != nil {
		return fmt.Errorf("failed to create MinIO client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{Region: cfg.MinioRegion}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
		logger.Info("[Storage] bucket created", logger.String("bucket", cfg.MinioBucket))
	}

	minioClient = client
	logger.Info("[Storage] MinIO connected", logger.String("endpoint", cfg.MinioEndpoint))
	return nil
}

// GetMinioClient returns the shared client, or nil when mirroring is
// disabled.
func GetMinioClient() *minio.Client {
	return minioClient
}

// MirrorCover downloads the cover image and stores it under
// covers/<songID>. Errors are logged only; a failed mirror never blocks the
// operation that triggered it.
func MirrorCover(ctx context.Context, cfg *config.Config, songID, coverURL string) {
	if minioClient == nil || coverURL == "" {
		return
	}

	objectPath := path.Join("covers", songID)

	// Skip when already mirrored.
	if _, err := minioClient.StatObject(ctx, cfg.MinioBucket, objectPath, minio.StatObjectOptions{}); err == nil {
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, coverURL, nil)
	if err != nil {
		logger.Warn("[Storage] cover request failed", logger.String("songId", songID), logger.ErrorField(err))
		return
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		logger.Warn("[Storage] cover download failed", logger.String("songId", songID), logger.ErrorField(err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Warn("[Storage] cover download bad status",
			logger.String("songId", songID), logger.Int("status", resp.StatusCode))
		return
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}

	_, err = minioClient.PutObject(ctx, cfg.MinioBucket, objectPath, resp.Body, resp.ContentLength,
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		logger.Warn("[Storage] cover upload failed", logger.String("songId", songID), logger.ErrorField(err))
		return
	}

	logger.Debug("[Storage] cover mirrored", logger.String("songId", songID))
}
