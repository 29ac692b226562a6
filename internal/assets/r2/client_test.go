package r2

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

	"github.com/petermazzocco/interior-admin/models"
)

type fakeAPI struct {
	puts    map[string][]byte
	types   map[string]string
	deleted []string
	err     error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{puts: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeAPI) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, _ := io.ReadAll(in.Body)
	f.puts[aws.ToString(in.Key)] = body
	f.types[aws.ToString(in.Key)] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{ETag: aws.String(`"etag"`)}, nil
}

func (f *fakeAPI) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.deleted = append(f.deleted, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestStore_Upload(t *testing.T) {
	t.Run("Should store the object and build the public url", func(t *testing.T) {
		api := newFakeAPI()
		store := New(api, "images", "https://cdn.studio.test/%s")

		ref, err := store.Upload(context.Background(), models.Upload{Filename: "navy kitchen.jpg", ContentType: "image/jpeg", Data: []byte("jpeg")})

		require.NoError(t, err)
		require.True(t, strings.HasPrefix(ref.DeletionToken, "images/"))
		assert.True(t, strings.HasSuffix(ref.DeletionToken, "_navy kitchen.jpg"))
		assert.Equal(t, []byte("jpeg"), api.puts[ref.DeletionToken])
		assert.Equal(t, "image/jpeg", api.types[ref.DeletionToken])
		assert.True(t, strings.HasPrefix(ref.DisplayURL, "https://cdn.studio.test/images/"))
		assert.NotContains(t, ref.DisplayURL, " ")
	})

	t.Run("Should join a base url", func(t *testing.T) {
		store := New(newFakeAPI(), "images", "https://cdn.studio.test/")

		ref, err := store.Upload(context.Background(), models.Upload{Filename: "a.png", Data: []byte("png")})

		require.NoError(t, err)
		assert.Equal(t, "https://cdn.studio.test/"+ref.DeletionToken, ref.DisplayURL)
	})

	t.Run("Should classify failures as upload errors", func(t *testing.T) {
		api := newFakeAPI()
		api.err = errors.New("access denied")

		_, err := New(api, "images", "https://cdn.studio.test/%s").Upload(context.Background(), models.Upload{Filename: "a.png", Data: []byte("png")})

		require.ErrorIs(t, err, models.ErrUpload)
	})
}

func TestStore_Delete(t *testing.T) {
	api := newFakeAPI()
	store := New(api, "images", "https://cdn.studio.test/%s")

	require.NoError(t, store.Delete(context.Background(), "images/abc_a.png"))
	assert.Equal(t, []string{"images/abc_a.png"}, api.deleted)

	api.err = errors.New("timeout")
	assert.Error(t, store.Delete(context.Background(), "images/abc_a.png"))
}

func TestCleanURL(t *testing.T) {
	assert.Equal(t, "https://cdn.studio.test/images/a%20b.jpg", CleanURL("https://cdn.studio.test/images/a b.jpg"))
}
