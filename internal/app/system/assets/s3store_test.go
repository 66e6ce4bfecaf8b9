package assets

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeS3 struct {
	objects map[string]string
	puts    []*s3.PutObjectInput
	putErr  error
	delErr  error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	b, _ := io.ReadAll(in.Body)
	f.objects[aws.ToString(in.Key)] = string(b)
	f.puts = append(f.puts, in)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if f.delErr != nil {
		return nil, f.delErr
	}
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func newFakeStore(cfg S3Config) (*S3Store, *fakeS3) {
	fake := &fakeS3{objects: map[string]string{}}
	return newS3Store(fake, cfg, zap.NewNop()), fake
}

func TestUpload_KeyAndURL(t *testing.T) {
	store, fake := newFakeStore(S3Config{
		Bucket:        "listings",
		Prefix:        "/properties/",
		PublicBaseURL: "https://cdn.example.com/",
	})

	asset, err := store.Upload(context.Background(), Upload{
		Filename:    "Front Door.JPG",
		ContentType: "image/jpeg",
		Size:        5,
		Body:        strings.NewReader("bytes"),
	})
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(asset.ID, ".jpg"))
	assert.True(t, ValidAssetID(asset.ID))
	assert.Equal(t, "https://cdn.example.com/properties/"+asset.ID, asset.URL)
	assert.Equal(t, "bytes", fake.objects["properties/"+asset.ID])

	require.Len(t, fake.puts, 1)
	assert.Equal(t, "image/jpeg", aws.ToString(fake.puts[0].ContentType))
	assert.Equal(t, "listings", aws.ToString(fake.puts[0].Bucket))
}

func TestUpload_DefaultBaseURL(t *testing.T) {
	awsStore, _ := newFakeStore(S3Config{Bucket: "b", Region: "us-east-1"})
	a, err := awsStore.Upload(context.Background(), Upload{Filename: "x.png", Body: strings.NewReader("")})
	require.NoError(t, err)
	assert.Equal(t, "https://b.s3.us-east-1.amazonaws.com/"+a.ID, a.URL)

	minio, _ := newFakeStore(S3Config{Bucket: "b", Endpoint: "http://localhost:9000/", Prefix: "img"})
	a, err = minio.Upload(context.Background(), Upload{Filename: "x.png", Body: strings.NewReader("")})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000/b/img/"+a.ID, a.URL)
}

func TestUpload_Error(t *testing.T) {
	store, fake := newFakeStore(S3Config{Bucket: "b"})
	fake.putErr = errors.New("access denied")

	_, err := store.Upload(context.Background(), Upload{Filename: "x.png", Body: strings.NewReader("")})
	assert.ErrorIs(t, err, fake.putErr)
}

func TestDestroy(t *testing.T) {
	store, fake := newFakeStore(S3Config{Bucket: "b", Prefix: "p"})
	fake.objects["p/abc.png"] = "data"

	require.NoError(t, store.Destroy(context.Background(), "abc.png"))
	assert.NotContains(t, fake.objects, "p/abc.png")
}

func TestDestroy_RejectsBadIDs(t *testing.T) {
	store, _ := newFakeStore(S3Config{Bucket: "b"})

	for _, id := range []string{"", "..", "a/b", `a\b`} {
		assert.ErrorIs(t, store.Destroy(context.Background(), id), ErrBadAssetID, "id %q", id)
	}
}

func TestNewAssetID_Extension(t *testing.T) {
	tests := map[string]string{
		"photo.PNG":        ".png",
		"archive.tar.gz":   ".gz",
		"noext":            "",
		"weird.p$g":        "",
		"long.abcdefghijk": "",
		"../../etc/passwd": "",
	}
	for name, want := range tests {
		id := NewAssetID(name)
		if want == "" {
			assert.Len(t, id, 36, "name %q", name)
			continue
		}
		assert.True(t, strings.HasSuffix(id, want), "name %q -> %q", name, id)
	}
}
