package storage_test

import (
	"context"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"testing"

	"medrec-verification/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestUpload(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/pin", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()

		assert.Equal(t, "scan.pdf", header.Filename)
		content, err := ioutil.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, []byte("%PDF-1.4 test"), content)

		_, _ = w.Write([]byte(`{"contentHash":"QmTestHash"}`))
	}))
	defer ts.Close()

	client := storage.NewClient(zap.NewNop(), ts.URL)

	contentHash, err := client.Upload(context.Background(), "scan.pdf", []byte("%PDF-1.4 test"))
	require.NoError(t, err)
	assert.Equal(t, "QmTestHash", contentHash)
}

func TestUploadRejectsEmptyContent(t *testing.T) {
	client := storage.NewClient(zap.NewNop(), "http://localhost:0")

	_, err := client.Upload(context.Background(), "empty.pdf", nil)
	assert.Error(t, err)
}

func TestUploadErrors(t *testing.T) {
	t.Run("http error status", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer ts.Close()

		client := storage.NewClient(zap.NewNop(), ts.URL)
		_, err := client.Upload(context.Background(), "scan.pdf", []byte("content"))
		assert.Error(t, err)
	})

	t.Run("missing content hash", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{}`))
		}))
		defer ts.Close()

		client := storage.NewClient(zap.NewNop(), ts.URL)
		_, err := client.Upload(context.Background(), "scan.pdf", []byte("content"))
		assert.Error(t, err)
	})
}
