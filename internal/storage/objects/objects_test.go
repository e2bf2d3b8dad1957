package objects

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNewKey(t *testing.T) {
	now := time.UnixMilli(1700000000123)

	tests := []struct {
		name     string
		prefix   string
		original string
		want     string
	}{
		{"plain", "projects", "cat.png", `^projects/1700000000123-[0-9a-f]{8}-cat\.png$`},
		{"spaces and unicode", "projects/", "my photo é.jpg", `^projects/1700000000123-[0-9a-f]{8}-my-photo-.jpg$`},
		{"path traversal", "projects", "../../etc/passwd", `^projects/1700000000123-[0-9a-f]{8}-etc-passwd$`},
		{"empty name", "projects", "", `^projects/1700000000123-[0-9a-f]{8}-image$`},
		{"no prefix", "", "a.png", `^1700000000123-[0-9a-f]{8}-a\.png$`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Regexp(t, regexp.MustCompile(tt.want), NewKey(tt.prefix, tt.original, now))
		})
	}
}

func TestNewKey_Unique(t *testing.T) {
	now := time.Now()
	assert.NotEqual(t, NewKey("p", "a.png", now), NewKey("p", "a.png", now))
}

func TestURLBase(t *testing.T) {
	b := newURLBase("https://storage.googleapis.com/bucket/")
	u := b.url("projects/1-abc-a.png")
	assert.Equal(t, "https://storage.googleapis.com/bucket/projects/1-abc-a.png", u)

	key, err := b.key(u)
	require.NoError(t, err)
	assert.Equal(t, "projects/1-abc-a.png", key)

	_, err = b.key("https://example.com/a.png")
	assert.ErrorIs(t, err, ErrForeignObject)
	_, err = b.key("https://storage.googleapis.com/bucket/")
	assert.ErrorIs(t, err, ErrForeignObject)
}

type mockS3 struct {
	mock.Mock
}

func (m *mockS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, in)
	return &s3.PutObjectOutput{}, args.Error(0)
}

func (m *mockS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	args := m.Called(ctx, in)
	return &s3.DeleteObjectOutput{}, args.Error(0)
}

func TestS3Store_PutAndDelete(t *testing.T) {
	api := new(mockS3)
	store := NewS3StoreWithAPI(api, S3Options{Bucket: "images", Region: "eu-west-1"})
	ctx := context.Background()

	api.On("PutObject", ctx, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		return aws.ToString(in.Bucket) == "images" &&
			aws.ToString(in.Key) == "projects/k.png" &&
			aws.ToString(in.ContentType) == "image/png" &&
			aws.ToInt64(in.ContentLength) == 3
	})).Return(nil).Once()

	u, err := store.Put(ctx, "projects/k.png", "image/png", []byte("png"))
	require.NoError(t, err)
	assert.Equal(t, "https://images.s3.eu-west-1.amazonaws.com/projects/k.png", u)

	api.On("DeleteObject", ctx, mock.MatchedBy(func(in *s3.DeleteObjectInput) bool {
		return aws.ToString(in.Key) == "projects/k.png"
	})).Return(nil).Once()

	require.NoError(t, store.Delete(ctx, u))
	api.AssertExpectations(t)
}

func TestS3Store_ForeignURLNeverReachesBucket(t *testing.T) {
	api := new(mockS3)
	store := NewS3StoreWithAPI(api, S3Options{Bucket: "images", Endpoint: "http://minio:9000"})

	err := store.Delete(context.Background(), "https://cdn.example.com/cat.png")
	assert.ErrorIs(t, err, ErrForeignObject)
	api.AssertNotCalled(t, "DeleteObject", mock.Anything, mock.Anything)
}

func TestS3Store_PutError(t *testing.T) {
	api := new(mockS3)
	store := NewS3StoreWithAPI(api, S3Options{Bucket: "images", PublicBase: "https://cdn.example.com"})
	api.On("PutObject", mock.Anything, mock.Anything).Return(errors.New("denied"))

	_, err := store.Put(context.Background(), "k", "image/png", nil)
	assert.ErrorContains(t, err, "denied")
}
