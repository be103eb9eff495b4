package services

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/docuchat/server/models"
)

// allowedUploadExts are the file extensions accepted by the upload
// endpoints, mapped to the content kind their extraction path uses.
var allowedUploadExts = map[string]models.SourceKind{
	".pdf":  models.KindPDF,
	".png":  models.KindImage,
	".jpg":  models.KindImage,
	".jpeg": models.KindImage,
	".gif":  models.KindImage,
	".bmp":  models.KindImage,
	".tiff": models.KindImage,
}

// KindForFilename maps an uploaded filename to its content kind. The second
// return value is false for unsupported extensions.
func KindForFilename(filename string) (models.SourceKind, bool) {
	kind, ok := allowedUploadExts[strings.ToLower(filepath.Ext(filename))]
	return kind, ok
}

// UploadStore writes uploaded files into a scratch directory for the
// duration of one extraction, then removes them. Nothing here outlives a
// request.
type UploadStore struct {
	Dir string
}

func NewUploadStore() *UploadStore {
	return &UploadStore{Dir: os.TempDir()}
}

// sanitizeFilename strips any path component so that an uploaded name can
// never escape the scratch directory.
func (u *UploadStore) sanitizeFilename(sessionID, filename string) (string, error) {
	if _, ok := KindForFilename(filename); !ok {
		return "", fmt.Errorf("unsupported file extension: %s", filepath.Ext(filename))
	}
	cleanPath := filepath.Join(u.Dir, sessionID+"_"+filepath.Base(filename))
	if !strings.HasPrefix(cleanPath, u.Dir) {
		return "", fmt.Errorf("invalid filename, attempts to escape scratch directory")
	}
	return cleanPath, nil
}

// Save writes the uploaded content to the scratch directory and returns the
// path the extractors should read from.
func (u *UploadStore) Save(sessionID, filename string, src io.Reader) (string, error) {
	path, err := u.sanitizeFilename(sessionID, filename)
	if err != nil {
		return "", err
	}
	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create scratch file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write scratch file: %w", err)
	}
	return path, nil
}

// Remove deletes a scratch file once extraction is done.
func (u *UploadStore) Remove(path string) {
	_ = os.Remove(path)
}
