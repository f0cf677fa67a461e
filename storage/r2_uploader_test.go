package storage

import (
	"bytes"
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObjectStore struct {
	put     *s3.PutObjectInput
	deleted string
	err     error
}

func (f *fakeObjectStore) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.put = in
	return &s3.PutObjectOutput{ETag: aws.String(`"abc123"`)}, nil
}

func (f *fakeObjectStore) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.deleted = aws.ToString(in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func newTestUploader(t *testing.T, base string) (*r2Uploader, *fakeObjectStore) {
	t.Helper()
	u, err := url.Parse(base)
	require.NoError(t, err)
	store := &fakeObjectStore{}
	return &r2Uploader{client: store, bucketName: "avatars", publicBase: u}, store
}

func TestR2Uploader_UploadAndDelete(t *testing.T) {
	up, store := newTestUploader(t, "https://cdn.example.com/")
	ctx := context.Background()

	res, err := up.Upload(ctx, "avatars/1/a.png", "image/png", bytes.NewReader([]byte("png")))
	require.NoError(t, err)
	assert.Equal(t, "abc123", res.ETag)
	assert.Equal(t, "https://cdn.example.com/avatars/1/a.png", res.Location)
	assert.Equal(t, "avatars", aws.ToString(store.put.Bucket))
	assert.Equal(t, "image/png", aws.ToString(store.put.ContentType))

	require.NoError(t, up.Delete(ctx, "avatars/1/a.png"))
	assert.Equal(t, "avatars/1/a.png", store.deleted)

	store.err = errors.New("access denied")
	_, err = up.Upload(ctx, "k", "image/png", bytes.NewReader(nil))
	assert.ErrorContains(t, err, "access denied")
}

func TestR2Uploader_GetPublicURL(t *testing.T) {
	up, _ := newTestUploader(t, "https://cdn.example.com/media/")
	assert.Equal(t, "https://cdn.example.com/media/avatars/2/x.webp", up.GetPublicURL("/avatars/2/x.webp"))
	assert.Equal(t, "", up.GetPublicURL(""))
}

func TestNewR2Uploader_RequiresConfig(t *testing.T) {
	_, err := NewR2Uploader(context.Background(), R2Config{AccountID: "acc"})
	assert.Error(t, err)
	assert.False(t, R2Config{}.Enabled())
}
