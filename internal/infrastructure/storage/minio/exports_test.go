package minio

import (
	"context"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	apperrors "github.com/turtacn/TextCoder/pkg/errors"
)

func TestExportKey(t *testing.T) {
	at := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	assert.Equal(t, "coded/2026/03/04/050607_coded_survey.csv", ExportKey("data/processed/coded_survey.csv", at))
}

func TestUploadFile(t *testing.T) {
	api := new(MockMinIOAPI)
	c := NewClientWithAPI(api, Config{}, nil)
	ctx := context.Background()

	local := filepath.Join(t.TempDir(), "coded_x.csv")
	require.NoError(t, os.WriteFile(local, []byte("row,text\n0,hi\n"), 0o644))

	api.On("PutObject", ctx, "exports", "coded/k.csv", mock.Anything, int64(14),
		mock.MatchedBy(func(o minio.PutObjectOptions) bool {
			return o.ContentType == csvContentType && o.UserMetadata["preset"] == "demo@1"
		})).
		Return(minio.UploadInfo{ETag: "abc", Size: 14}, nil)

	res, err := c.UploadFile(ctx, local, "coded/k.csv", map[string]string{"preset": "demo@1"})
	require.NoError(t, err)
	assert.Equal(t, "exports", res.Bucket)
	assert.Equal(t, "abc", res.ETag)
	assert.Equal(t, int64(14), res.Size)
	api.AssertExpectations(t)
}

func TestUpload_Failure(t *testing.T) {
	api := new(MockMinIOAPI)
	c := NewClientWithAPI(api, Config{}, nil)
	ctx := context.Background()

	api.On("PutObject", ctx, "exports", "k", mock.Anything, int64(0), mock.Anything).
		Return(minio.UploadInfo{}, errors.New("denied"))

	_, err := c.Upload(ctx, "k", nil, 0, nil)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeExportFailed))

	_, err = c.Upload(ctx, "", nil, 0, nil)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeValidation))
}

func TestUploadFile_Missing(t *testing.T) {
	c := NewClientWithAPI(new(MockMinIOAPI), Config{}, nil)
	_, err := c.UploadFile(context.Background(), filepath.Join(t.TempDir(), "nope.csv"), "k", nil)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeExportFailed))
}

func TestPresignedGetURL(t *testing.T) {
	api := new(MockMinIOAPI)
	c := NewClientWithAPI(api, Config{PresignExpiry: 15 * time.Minute}, nil)
	ctx := context.Background()

	u, _ := url.Parse("http://minio:9000/exports/k?X-Amz-Signature=x")
	api.On("PresignedGetObject", ctx, "exports", "k", 15*time.Minute, url.Values(nil)).Return(u, nil)

	got, err := c.PresignedGetURL(ctx, "k", 0)
	require.NoError(t, err)
	assert.Equal(t, u.String(), got)

	api.On("PresignedGetObject", ctx, "exports", "bad", time.Minute, url.Values(nil)).Return(nil, errors.New("x"))
	_, err = c.PresignedGetURL(ctx, "bad", time.Minute)
	assert.Error(t, err)
}

func TestExistsAndDelete(t *testing.T) {
	api := new(MockMinIOAPI)
	c := NewClientWithAPI(api, Config{}, nil)
	ctx := context.Background()

	api.On("StatObject", ctx, "exports", "here", minio.StatObjectOptions{}).Return(minio.ObjectInfo{Key: "here"}, nil)
	api.On("StatObject", ctx, "exports", "gone", minio.StatObjectOptions{}).
		Return(minio.ObjectInfo{}, minio.ErrorResponse{Code: "NoSuchKey"})
	api.On("RemoveObject", ctx, "exports", "here", minio.RemoveObjectOptions{}).Return(nil)

	ok, err := c.Exists(ctx, "here")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.Exists(ctx, "gone")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, c.Delete(ctx, "here"))
}

//Personal.AI order the ending
