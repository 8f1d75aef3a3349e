package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	method      string
	path        string
	contentType string
	body        string
}

// fakeS3 answers PutObject and DeleteObject like an S3-compatible endpoint.
func fakeS3(t *testing.T) (*httptest.Server, func() []recordedRequest) {
	t.Helper()

	var (
		mu       sync.Mutex
		requests []recordedRequest
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		mu.Lock()
		requests = append(requests, recordedRequest{
			method:      r.Method,
			path:        r.URL.Path,
			contentType: r.Header.Get("Content-Type"),
			body:        string(body),
		})
		mu.Unlock()

		switch r.Method {
		case http.MethodPut:
			w.Header().Set("ETag", `"etag"`)
			w.WriteHeader(http.StatusOK)
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
	t.Cleanup(srv.Close)

	return srv, func() []recordedRequest {
		mu.Lock()
		defer mu.Unlock()
		return append([]recordedRequest(nil), requests...)
	}
}

func TestS3Client_UploadAndDelete(t *testing.T) {
	srv, requests := fakeS3(t)

	store, err := NewPhotoStore(context.Background(), ServiceConfig{
		S3BucketName:      "photos",
		S3Endpoint:        srv.URL,
		S3AccessKeyID:     "key",
		S3SecretAccessKey: "secret",
		PublicBaseURL:     "https://cdn.example.com/",
	})
	require.NoError(t, err)

	url, err := store.Upload(context.Background(), "avatars/u1/a.png", "image/png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/avatars/u1/a.png", url)

	require.NoError(t, store.Delete(context.Background(), "avatars/u1/a.png"))

	got := requests()
	require.Len(t, got, 2)
	assert.Equal(t, http.MethodPut, got[0].method)
	assert.Equal(t, "/photos/avatars/u1/a.png", got[0].path)
	assert.Equal(t, "image/png", got[0].contentType)
	assert.Contains(t, got[0].body, "png-bytes")
	assert.Equal(t, http.MethodDelete, got[1].method)
	assert.Equal(t, "/photos/avatars/u1/a.png", got[1].path)
}

func TestAvatarKey(t *testing.T) {
	t.Parallel()

	key := AvatarKey("u1", "PNG")
	assert.True(t, strings.HasPrefix(key, "avatars/u1/"), key)
	assert.True(t, strings.HasSuffix(key, ".png"), key)
	assert.NotEqual(t, key, AvatarKey("u1", ".png"))
}

func TestPublicURL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "https://cdn/x/y.png", PublicURL("https://cdn/", "/x/y.png"))
	assert.Equal(t, "https://cdn/x/y.png", PublicURL("https://cdn", "x/y.png"))
}
