package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crownsync/internal/utils/logger"
)

func TestHTTPClient_ListFiles(t *testing.T) {
	var gotQuery, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"objects": []map[string]any{
				{"key": "CrownRFEP/sessions/1/videos/2.mp4", "size": 5, "lastModifiedUtc": "2024-05-01T10:00:00Z"},
			},
			"isTruncated": true,
			"nextMarker":  "CrownRFEP/sessions/1/videos/2.mp4",
		})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "CrownRFEP/", logger.Discard())
	c.SetToken("abc")

	page, err := c.ListFiles(context.Background(), "sessions/", "m", 10)
	require.NoError(t, err)

	assert.Equal(t, "Bearer abc", gotAuth)
	assert.Equal(t, "marker=m&max=10&prefix=CrownRFEP%2Fsessions%2F", gotQuery)
	require.Len(t, page.Objects, 1)
	assert.Equal(t, int64(5), page.Objects[0].Size)
	assert.True(t, page.Objects[0].LastModified.Equal(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)))
	assert.True(t, page.IsTruncated)

	_, err = c.ListFiles(context.Background(), "CrownRFEP/sessions/", "", 0)
	require.NoError(t, err)
	assert.Equal(t, "prefix=CrownRFEP%2Fsessions%2F", gotQuery)
}

func TestHTTPClient_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"error":"Unauthorized"}`, wantErr: "unauthorized"},
		{name: "huma problem", status: http.StatusNotFound, body: `{"title":"Not Found","status":404,"detail":"object not found"}`, wantErr: "object not found"},
		{name: "plain status", status: http.StatusBadGateway, body: `oops`, wantErr: "статус 502"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewHTTPClient(srv.URL, "", logger.Discard()).GetSignedDownloadURL(context.Background(), "k", 5)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestHTTPClient_DeleteFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "sessions/1/videos/2.mp4", r.URL.Query().Get("key"))
		_, _ = w.Write([]byte(`{"deleted":true}`))
	}))
	defer srv.Close()

	deleted, err := NewHTTPClient(srv.URL, "", logger.Discard()).DeleteFile(context.Background(), "sessions/1/videos/2.mp4")
	require.NoError(t, err)
	assert.True(t, deleted)
}

func TestThumbnails_Remove(t *testing.T) {
	fs := afero.NewMemMapFs()
	thumbs, err := NewThumbnails(fs, "/thumbs")
	require.NoError(t, err)

	require.NoError(t, afero.WriteFile(fs, "/thumbs/10.jpg", []byte("jpg"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/elsewhere/11.jpg", []byte("jpg"), 0o644))

	require.NoError(t, thumbs.Remove("10.jpg"))
	require.NoError(t, thumbs.Remove("/elsewhere/11.jpg"))
	require.NoError(t, thumbs.Remove("10.jpg"))
	require.NoError(t, thumbs.Remove(""))

	for _, p := range []string{"/thumbs/10.jpg", "/elsewhere/11.jpg"} {
		exists, err := afero.Exists(fs, p)
		require.NoError(t, err)
		assert.False(t, exists, p)
	}
}
