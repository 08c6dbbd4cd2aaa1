package clients

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetURL_AbsoluteAndRelative(t *testing.T) {
	dir := t.TempDir()

	abs, err := NewLocalStorage(dir, "/files", "http://example.com:8060/")
	require.NoError(t, err)
	assert.Equal(t, "http://example.com:8060/files/a.xlsx", abs.GetURL("a.xlsx"))

	rel, err := NewLocalStorage(dir, "files/", "")
	require.NoError(t, err)
	assert.Equal(t, "/files/b.xlsx", rel.GetURL("b.xlsx"))
}

func TestPublishAndServeFile(t *testing.T) {
	c, err := NewLocalStorage(t.TempDir(), "/files", "")
	require.NoError(t, err)

	content := []byte("hello portfolio")
	url, err := c.Publish(context.Background(), "../portfolio 1.xlsx", content)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "/files/"))

	r := chi.NewRouter()
	r.Get("/files/{file}", c.ServeFile)
	ts := httptest.NewServer(r)
	defer ts.Close()

	resp, err := http.Get(ts.URL + url)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), `"portfolio 1.xlsx"`)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, content, body)

	missing, err := http.Get(ts.URL + "/files/nope.xlsx")
	require.NoError(t, err)
	missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestCleanupOlderThan(t *testing.T) {
	dir := t.TempDir()
	c, err := NewLocalStorage(dir, "", "")
	require.NoError(t, err)

	stale, err := c.Save(context.Background(), "old.xlsx", []byte("x"))
	require.NoError(t, err)
	fresh, err := c.Save(context.Background(), "new.xlsx", []byte("y"))
	require.NoError(t, err)

	past := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, stale), past, past))

	require.NoError(t, c.CleanupOlderThan(24*time.Hour))

	_, err = os.Stat(filepath.Join(dir, stale))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, fresh))
	assert.NoError(t, err)
}
