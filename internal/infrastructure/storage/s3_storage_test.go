package storage

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/estatehub/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStorageConfig(endpoint string) *config.StorageConfig {
	return &config.StorageConfig{
		Enabled:         true,
		Bucket:          "listing-images",
		Region:          "eu-west-1",
		Endpoint:        endpoint,
		AccessKeyID:     "test-key",
		SecretAccessKey: "test-secret",
		UsePathStyle:    true,
		PresignTTL:      time.Hour,
	}
}

func TestNewS3ObjectStorage_Validation(t *testing.T) {
	ctx := context.Background()

	t.Run("nil config", func(t *testing.T) {
		_, err := NewS3ObjectStorage(ctx, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "configuration is required")
	})

	t.Run("missing bucket", func(t *testing.T) {
		cfg := testStorageConfig("")
		cfg.Bucket = ""
		_, err := NewS3ObjectStorage(ctx, cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bucket is required")
	})

	t.Run("valid config", func(t *testing.T) {
		s, err := NewS3ObjectStorage(ctx, testStorageConfig("localhost:9000"))
		require.NoError(t, err)
		assert.Equal(t, "listing-images", s.Bucket())
		assert.Equal(t, time.Hour, s.presignTTL)
	})

	t.Run("default presign ttl", func(t *testing.T) {
		cfg := testStorageConfig("")
		cfg.PresignTTL = 0
		s, err := NewS3ObjectStorage(ctx, cfg)
		require.NoError(t, err)
		assert.Equal(t, 24*time.Hour, s.presignTTL)
	})

	t.Run("option overrides ttl", func(t *testing.T) {
		s, err := NewS3ObjectStorage(ctx, testStorageConfig(""), WithPresignTTL(time.Minute))
		require.NoError(t, err)
		assert.Equal(t, time.Minute, s.presignTTL)
	})
}

func TestS3ObjectStorage_URL(t *testing.T) {
	ctx := context.Background()
	key := "properties/a/p/i.jpg"

	t.Run("public base url", func(t *testing.T) {
		cfg := testStorageConfig("")
		cfg.PublicBaseURL = "https://cdn.example.com/"
		s, err := NewS3ObjectStorage(ctx, cfg)
		require.NoError(t, err)

		u, err := s.URL(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example.com/"+key, u)
	})

	t.Run("presigned url", func(t *testing.T) {
		s, err := NewS3ObjectStorage(ctx, testStorageConfig("http://localhost:9000"))
		require.NoError(t, err)

		u, err := s.URL(ctx, key)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(u, "http://localhost:9000/listing-images/"+key), u)
		assert.Contains(t, u, "X-Amz-Signature=")
		assert.Contains(t, u, "X-Amz-Expires=3600")
	})

	t.Run("empty key", func(t *testing.T) {
		s, err := NewS3ObjectStorage(ctx, testStorageConfig(""))
		require.NoError(t, err)

		_, err = s.URL(ctx, "")
		assert.ErrorIs(t, err, ErrEmptyKey)
	})
}

// fakeS3 records the requests the SDK sends
type fakeS3 struct {
	mu       sync.Mutex
	requests []string
	bodies   map[string][]byte
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)
	if r.Method == http.MethodPut {
		f.bodies[r.URL.Path] = body
	}
	f.mu.Unlock()

	if r.Method == http.MethodDelete {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func TestS3ObjectStorage_PutAndDelete(t *testing.T) {
	fake := &fakeS3{bodies: map[string][]byte{}}
	server := httptest.NewServer(fake)
	defer server.Close()

	ctx := context.Background()
	s, err := NewS3ObjectStorage(ctx, testStorageConfig(server.URL))
	require.NoError(t, err)

	key := "properties/agency/property/image.png"
	data := []byte("png-bytes")
	require.NoError(t, s.Put(ctx, key, bytes.NewReader(data), int64(len(data)), "image/png"))
	require.NoError(t, s.Delete(ctx, key))

	fake.mu.Lock()
	defer fake.mu.Unlock()
	require.Len(t, fake.requests, 2)
	assert.Equal(t, "PUT /listing-images/"+key, fake.requests[0])
	assert.Equal(t, "DELETE /listing-images/"+key, fake.requests[1])

	assert.ErrorIs(t, s.Put(ctx, "", bytes.NewReader(nil), 0, "image/png"), ErrEmptyKey)
	assert.ErrorIs(t, s.Delete(ctx, ""), ErrEmptyKey)
}
