package web

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"llm-chat/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAssetHandler_Embedded(t *testing.T) {
	h, err := NewAssetHandler(config.AssetsConfig{})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), `<script src="chat.js"></script>`)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/chat.js", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `fetch("/api/chat"`)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing.css", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNewAssetHandler_Dir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hello.txt"), []byte("from disk"), 0o644))

	h, err := NewAssetHandler(config.AssetsConfig{Dir: dir})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/hello.txt", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "from disk", rec.Body.String())
}

func TestNewAssetHandler_DirErrors(t *testing.T) {
	_, err := NewAssetHandler(config.AssetsConfig{Dir: filepath.Join(t.TempDir(), "nope")})
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	_, err = NewAssetHandler(config.AssetsConfig{Dir: file})
	assert.Error(t, err)
}

func TestNewAssetHandler_Origin(t *testing.T) {
	var gotPath, gotQuery string
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "text/css")
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, "body{}")
	}))
	defer origin.Close()

	h, err := NewAssetHandler(config.AssetsConfig{Origin: origin.URL})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/css/site.css?v=2", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/css", rec.Header().Get("Content-Type"))
	assert.Equal(t, "body{}", rec.Body.String())
	assert.Equal(t, "/css/site.css", gotPath)
	assert.Equal(t, "v=2", gotQuery)
}

func TestNewAssetHandler_InvalidOrigin(t *testing.T) {
	for _, origin := range []string{"not a url", "/relative/path", "://bad"} {
		_, err := NewAssetHandler(config.AssetsConfig{Origin: origin})
		assert.Error(t, err, origin)
	}
}
