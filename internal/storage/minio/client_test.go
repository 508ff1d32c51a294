package minio

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	minioLib "github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMinio implements minioAPI for testing without network.
type fakeMinio struct {
	bucketExists    bool
	bucketExistsErr error
	makeBucketErr   error
	madeBucket      bool
	policy          string

	putErr         error
	putKey         string
	putSize        int64
	putContentType string

	removeErr error

	statErr error
}

func (f *fakeMinio) BucketExists(_ context.Context, _ string) (bool, error) {
	return f.bucketExists, f.bucketExistsErr
}
func (f *fakeMinio) MakeBucket(_ context.Context, _ string, _ minioLib.MakeBucketOptions) error {
	f.madeBucket = true
	return f.makeBucketErr
}
func (f *fakeMinio) SetBucketPolicy(_ context.Context, _ string, policy string) error {
	f.policy = policy
	return nil
}
func (f *fakeMinio) PutObject(_ context.Context, _ string, key string, r io.Reader, size int64, opts minioLib.PutObjectOptions) (minioLib.UploadInfo, error) {
	f.putKey, f.putSize, f.putContentType = key, size, opts.ContentType
	_, _ = io.Copy(io.Discard, r)
	return minioLib.UploadInfo{Key: key}, f.putErr
}
func (f *fakeMinio) RemoveObject(_ context.Context, _ string, _ string, _ minioLib.RemoveObjectOptions) error {
	return f.removeErr
}
func (f *fakeMinio) StatObject(_ context.Context, _ string, _ string, _ minioLib.StatObjectOptions) (minioLib.ObjectInfo, error) {
	return minioLib.ObjectInfo{}, f.statErr
}

func TestNewClientWithAPI_BucketExists(t *testing.T) {
	api := &fakeMinio{bucketExists: true}
	c, err := NewClientWithAPI(context.Background(), api, "images", "http://localhost:9000/")
	require.NoError(t, err)
	assert.Equal(t, "images", c.bucket)
	assert.False(t, api.madeBucket)
}

func TestNewClientWithAPI_CreatesPublicBucket(t *testing.T) {
	api := &fakeMinio{}
	_, err := NewClientWithAPI(context.Background(), api, "images", "http://localhost:9000")
	require.NoError(t, err)
	assert.True(t, api.madeBucket)
	assert.Contains(t, api.policy, "arn:aws:s3:::images/*")
}

func TestNewClientWithAPI_Errors(t *testing.T) {
	_, err := NewClientWithAPI(context.Background(), &fakeMinio{bucketExistsErr: errors.New("down")}, "b", "")
	require.Error(t, err)

	_, err = NewClientWithAPI(context.Background(), &fakeMinio{makeBucketErr: errors.New("denied")}, "b", "")
	require.Error(t, err)
}

func TestClient_Upload(t *testing.T) {
	api := &fakeMinio{bucketExists: true}
	c, err := NewClientWithAPI(context.Background(), api, "images", "http://localhost:9000")
	require.NoError(t, err)

	err = c.Upload(context.Background(), "mit/abc-desk.jpg", bytes.NewReader([]byte("jpeg")), 4, "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "mit/abc-desk.jpg", api.putKey)
	assert.Equal(t, int64(4), api.putSize)
	assert.Equal(t, "image/jpeg", api.putContentType)

	api.putErr = errors.New("quota")
	require.Error(t, c.Upload(context.Background(), "k", bytes.NewReader(nil), 0, ""))
}

func TestClient_Exists(t *testing.T) {
	api := &fakeMinio{bucketExists: true}
	c, err := NewClientWithAPI(context.Background(), api, "images", "http://localhost:9000")
	require.NoError(t, err)

	ok, err := c.Exists(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, ok)

	api.statErr = minioLib.ErrorResponse{Code: "NoSuchKey"}
	ok, err = c.Exists(context.Background(), "k")
	require.NoError(t, err)
	assert.False(t, ok)

	api.statErr = errors.New("boom")
	_, err = c.Exists(context.Background(), "k")
	require.Error(t, err)
}

func TestClient_URLRoundtrip(t *testing.T) {
	c, err := NewClientWithAPI(context.Background(), &fakeMinio{bucketExists: true}, "images", "http://localhost:9000/")
	require.NoError(t, err)

	url := c.URL("mit/abc-desk.jpg")
	assert.Equal(t, "http://localhost:9000/images/mit/abc-desk.jpg", url)

	key, ok := c.KeyFromURL(url)
	require.True(t, ok)
	assert.Equal(t, "mit/abc-desk.jpg", key)

	_, ok = c.KeyFromURL("https://elsewhere.example/images/x.jpg")
	assert.False(t, ok)
	_, ok = c.KeyFromURL("http://localhost:9000/images/")
	assert.False(t, ok)
}

func TestClient_Delete(t *testing.T) {
	api := &fakeMinio{bucketExists: true}
	c, err := NewClientWithAPI(context.Background(), api, "images", "")
	require.NoError(t, err)

	require.NoError(t, c.Delete(context.Background(), "k"))
	api.removeErr = errors.New("gone")
	require.Error(t, c.Delete(context.Background(), "k"))
}
