package clients

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// StorageClient keeps exported files on local disk and serves them under
// PublicPrefix.
type StorageClient struct {
	BaseDir      string
	PublicPrefix string
	// BaseURL, when set, makes GetURL return absolute URLs.
	BaseURL string
}

func NewLocalStorage(baseDir, publicPrefix, baseURL string) (*StorageClient, error) {
	if baseDir == "" {
		baseDir = "./exports"
	}
	if publicPrefix == "" {
		publicPrefix = "/files"
	}
	if !strings.HasPrefix(publicPrefix, "/") {
		publicPrefix = "/" + publicPrefix
	}

	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "storage: ensure dir %s", baseDir)
	}

	return &StorageClient{
		BaseDir:      baseDir,
		PublicPrefix: strings.TrimSuffix(publicPrefix, "/"),
		BaseURL:      strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// Save writes data under a random prefix and returns the stored name.
func (s *StorageClient) Save(ctx context.Context, fileName string, data []byte) (string, error) {
	fileName = filepath.Base(fileName)

	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return "", eris.Wrap(err, "storage: generate file name")
	}
	final := hex.EncodeToString(randBytes) + "_" + fileName

	path := filepath.Join(s.BaseDir, final)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", eris.Wrap(err, "storage: write file")
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", eris.Wrap(err, "storage: finalize file")
	}

	return final, nil
}

func (s *StorageClient) GetURL(fileName string) string {
	return fmt.Sprintf("%s%s/%s", s.BaseURL, s.PublicPrefix, fileName)
}

// Publish saves data and returns the URL it is served at.
func (s *StorageClient) Publish(ctx context.Context, fileName string, data []byte) (string, error) {
	stored, err := s.Save(ctx, fileName, data)
	if err != nil {
		return "", err
	}
	return s.GetURL(stored), nil
}

// originalName strips the random prefix added by Save.
func originalName(stored string) string {
	if idx := strings.IndexByte(stored, '_'); idx >= 0 {
		return stored[idx+1:]
	}
	return stored
}

// ServeFile is the chi handler for {PublicPrefix}/{file}.
func (s *StorageClient) ServeFile(w http.ResponseWriter, r *http.Request) {
	name := filepath.Base(chi.URLParam(r, "file"))
	if name == "." || name == "/" || strings.HasSuffix(name, ".tmp") {
		http.NotFound(w, r)
		return
	}

	path := filepath.Join(s.BaseDir, name)
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", originalName(name)))
	http.ServeFile(w, r, path)
}

// CleanupOlderThan removes files whose modification time is older than d.
func (s *StorageClient) CleanupOlderThan(d time.Duration) error {
	now := time.Now()
	return filepath.WalkDir(s.BaseDir, func(path string, de fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if de.IsDir() {
			return nil
		}
		info, err := de.Info()
		if err != nil {
			return nil
		}
		if now.Sub(info.ModTime()) > d {
			if err := os.Remove(path); err != nil {
				zap.L().Warn("storage cleanup", zap.String("path", path), zap.Error(err))
			}
		}
		return nil
	})
}
