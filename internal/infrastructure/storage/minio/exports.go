package minio

import (
	"context"
	"io"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/turtacn/TextCoder/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/TextCoder/pkg/errors"
)

const csvContentType = "text/csv; charset=utf-8"

// UploadResult describes a stored export.
type UploadResult struct {
	Bucket     string
	ObjectKey  string
	ETag       string
	Size       int64
	UploadedAt time.Time
}

// ExportKey returns the object key of a coded CSV export: a date prefix and
// the local file name.
func ExportKey(localPath string, at time.Time) string {
	at = at.UTC()
	return path.Join("coded", at.Format("2006/01/02"), at.Format("150405")+"_"+filepath.Base(localPath))
}

// Upload stores size bytes from r under key.
func (c *Client) Upload(ctx context.Context, key string, r io.Reader, size int64, metadata map[string]string) (*UploadResult, error) {
	if c.isClosed() {
		return nil, ErrClientClosed
	}
	if key == "" {
		return nil, errors.New(errors.ErrCodeValidation, "object key required")
	}
	info, err := c.api.PutObject(ctx, c.config.Bucket, key, r, size, minio.PutObjectOptions{
		ContentType:  csvContentType,
		UserMetadata: metadata,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeExportFailed, "upload of "+key+" failed")
	}
	c.logger.Info("export uploaded",
		logging.String("bucket", c.config.Bucket),
		logging.String("key", key),
		logging.Int64("size", info.Size))
	return &UploadResult{
		Bucket:     c.config.Bucket,
		ObjectKey:  key,
		ETag:       info.ETag,
		Size:       info.Size,
		UploadedAt: time.Now().UTC(),
	}, nil
}

// UploadFile stores the local file at localPath under key.
func (c *Client) UploadFile(ctx context.Context, localPath, key string, metadata map[string]string) (*UploadResult, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeExportFailed, "cannot open export")
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeExportFailed, "cannot stat export")
	}
	return c.Upload(ctx, key, f, st.Size(), metadata)
}

// PresignedGetURL returns a time-limited download URL for key. A zero expiry
// uses the configured default.
func (c *Client) PresignedGetURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	if c.isClosed() {
		return "", ErrClientClosed
	}
	if expiry <= 0 {
		expiry = c.config.PresignExpiry
	}
	u, err := c.api.PresignedGetObject(ctx, c.config.Bucket, key, expiry, nil)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeStorageError, "failed to presign "+key)
	}
	return u.String(), nil
}

// Exists reports whether key is stored.
func (c *Client) Exists(ctx context.Context, key string) (bool, error) {
	_, err := c.api.StatObject(ctx, c.config.Bucket, key, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return false, nil
	}
	return false, errors.Wrap(err, errors.ErrCodeStorageError, "failed to stat "+key)
}

// Delete removes key.
func (c *Client) Delete(ctx context.Context, key string) error {
	if err := c.api.RemoveObject(ctx, c.config.Bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageError, "failed to delete "+key)
	}
	return nil
}

//Personal.AI order the ending
