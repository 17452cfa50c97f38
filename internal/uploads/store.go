// Package uploads is a filesystem blob store with one directory per user.
// File identifiers are random, so two uploads can never collide, and every
// lookup is confined to the requesting user's directory.
package uploads

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("file not found")
	ErrUnsupportedType = errors.New("file type not allowed")
	ErrFileTooLarge    = errors.New("file too large")
)

// allowedExtensions is the upload allow-list: campaign documents and
// session recordings only.
var allowedExtensions = map[string]bool{
	".pdf": true,
	".mp3": true,
	".wav": true,
	".txt": true,
	".md":  true,
}

type Store struct {
	root    string
	maxSize int64
	logger  *slog.Logger
}

func NewStore(root string, maxSize int64, logger *slog.Logger) *Store {
	return &Store{root: root, maxSize: maxSize, logger: logger}
}

// MaxSize returns the configured per-file size limit in bytes.
func (s *Store) MaxSize() int64 {
	return s.maxSize
}

type FileInfo struct {
	FileID    string    `json:"file_id"`
	Size      int64     `json:"file_size"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Store) userDir(userID uuid.UUID) string {
	return filepath.Join(s.root, userID.String())
}

// Save writes the blob under a fresh random identifier and returns the id
// plus the byte count actually written. The original filename contributes
// only its extension.
func (s *Store) Save(userID uuid.UUID, filename string, r io.Reader) (*FileInfo, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		return nil, ErrUnsupportedType
	}

	dir := s.userDir(userID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload dir: %w", err)
	}

	fileID := uuid.New().String() + ext
	path := filepath.Join(dir, fileID)

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating upload file: %w", err)
	}

	// Copy one byte past the limit so an oversized stream is detected
	// without reading it to the end.
	written, err := io.Copy(f, io.LimitReader(r, s.maxSize+1))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("writing upload: %w", err)
	}
	if written > s.maxSize {
		os.Remove(path)
		return nil, ErrFileTooLarge
	}

	s.logger.Debug("stored upload", "user_id", userID, "file_id", fileID, "size", written)

	return &FileInfo{FileID: fileID, Size: written, CreatedAt: time.Now()}, nil
}

// validFileID rejects anything that could escape the user's directory.
func validFileID(fileID string) bool {
	return fileID != "" && fileID != "." && fileID != ".." &&
		fileID == filepath.Base(fileID) &&
		!strings.ContainsAny(fileID, `/\`)
}

// Open returns the blob for reading. The caller must close it.
func (s *Store) Open(userID uuid.UUID, fileID string) (*os.File, error) {
	if !validFileID(fileID) {
		return nil, ErrNotFound
	}

	f, err := os.Open(filepath.Join(s.userDir(userID), fileID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("opening upload: %w", err)
	}
	return f, nil
}

func (s *Store) Remove(userID uuid.UUID, fileID string) error {
	if !validFileID(fileID) {
		return ErrNotFound
	}

	err := os.Remove(filepath.Join(s.userDir(userID), fileID))
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("removing upload: %w", err)
	}
	return nil
}

// List returns the user's files. A user who has never uploaded gets an
// empty slice, not an error.
func (s *Store) List(userID uuid.UUID) ([]FileInfo, error) {
	entries, err := os.ReadDir(s.userDir(userID))
	if err != nil {
		if os.IsNotExist(err) {
			return []FileInfo{}, nil
		}
		return nil, fmt.Errorf("listing uploads: %w", err)
	}

	files := make([]FileInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			FileID:    entry.Name(),
			Size:      info.Size(),
			CreatedAt: info.ModTime(),
		})
	}
	return files, nil
}
