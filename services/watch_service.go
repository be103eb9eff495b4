package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/docuchat/server/models"

	"github.com/fsnotify/fsnotify"
)

// WatchService feeds a hot folder into a dedicated session: files dropped
// into the watched directory are normalized and appended to it, so the
// folder's contents become queryable like any other ingested content.
// Sessions are append-only, so edits to a watched file append its new
// content rather than replacing the old; removals are logged only.
type WatchService struct {
	rag RAGService

	// seen maps file path to content hash, guarding against re-ingesting
	// unchanged files on duplicate watcher events.
	seen      map[string]string
	sessionID string
}

func NewWatchService(rag RAGService) *WatchService {
	return &WatchService{
		rag:  rag,
		seen: make(map[string]string),
	}
}

// SessionID returns the watch session's token, empty until the first file
// has been ingested.
func (w *WatchService) SessionID() string {
	return w.sessionID
}

// Watch scans the directory once, then blocks handling change events until
// the context is cancelled.
func (w *WatchService) Watch(ctx context.Context, dirPath string) {
	w.scanDirectory(ctx, dirPath)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("WATCHER ERROR: Failed to create file watcher: %v", err)
		return
	}
	defer watcher.Close()

	if err := watcher.Add(dirPath); err != nil {
		log.Printf("WATCHER ERROR: Failed to add path to watcher: %v", err)
		return
	}
	log.Printf("WATCHER: Watching directory: %s", dirPath)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !isWatchableFile(event.Name) {
				continue
			}
			// Many editors write by creating a temp file and renaming, which
			// fires several events per save. Create and Write are handled the
			// same and the hash guard drops the duplicates.
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				w.ingestFile(ctx, event.Name)
			} else if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				log.Printf("WATCHER: File removed/renamed: %s. Sessions are append-only, content stays indexed.", event.Name)
				delete(w.seen, event.Name)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Printf("WATCHER ERROR: %v", err)

		case <-ctx.Done():
			log.Println("WATCHER: Context cancelled, shutting down watcher.")
			return
		}
	}
}

// scanDirectory ingests every supported file already present in the folder.
func (w *WatchService) scanDirectory(ctx context.Context, dirPath string) {
	err := filepath.Walk(dirPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && isWatchableFile(path) {
			w.ingestFile(ctx, path)
		}
		return nil
	})
	if err != nil {
		log.Printf("WATCHER ERROR: Error walking the path %s: %v", dirPath, err)
	}
}

func (w *WatchService) ingestFile(ctx context.Context, path string) {
	hash, err := fileHash(path)
	if err != nil {
		log.Printf("WATCHER WARN: Could not hash file %s: %v", path, err)
		return
	}
	if w.seen[path] == hash {
		return
	}

	kind, value, err := w.payloadFor(path)
	if err != nil {
		log.Printf("WATCHER WARN: Could not read file %s: %v", path, err)
		return
	}

	label := filepath.Base(path)
	if w.sessionID == "" {
		result, err := w.rag.Ingest(ctx, kind, value)
		if err != nil {
			log.Printf("WATCHER ERROR: Failed to ingest %s: %v", path, err)
			return
		}
		w.sessionID = result.SessionID
		log.Printf("WATCHER: Created watch session %s from %s", w.sessionID, label)
	} else {
		if _, err := w.rag.AddContext(ctx, w.sessionID, kind, value, label); err != nil {
			log.Printf("WATCHER ERROR: Failed to add %s to watch session: %v", path, err)
			return
		}
		log.Printf("WATCHER: Appended %s to watch session %s", label, w.sessionID)
	}
	w.seen[path] = hash
}

// payloadFor maps a file to the normalizer payload: PDFs go in by path,
// plain text files by literal content.
func (w *WatchService) payloadFor(path string) (models.SourceKind, string, error) {
	if strings.ToLower(filepath.Ext(path)) == ".pdf" {
		return models.KindPDF, path, nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return "", "", err
	}
	return models.KindText, string(content), nil
}

func isWatchableFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md", ".pdf":
		return true
	default:
		return false
	}
}

func fileHash(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()
	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}
