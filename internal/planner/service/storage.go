package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

var (
	ErrInvalidMetadata = errors.New("metadata must be a JSON document")
	ErrUnsafeName      = errors.New("unsafe path component")
	ErrNoMetadata      = errors.New("no metadata stored for room")
)

var (
	safeName = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	safeRef  = regexp.MustCompile(`^[A-Za-z0-9_-]+\.json$`)
)

// ============================================================
// File Storage
// ============================================================

// FileStorage keeps room metadata under <root>/metadata, keyed by room id
// rather than by canvas, so a reference survives save and load into any canvas.
type FileStorage struct {
	root string
}

func NewFileStorage(root string) *FileStorage {
	return &FileStorage{root: root}
}

func (s *FileStorage) Root() string {
	return s.root
}

func (s *FileStorage) MetadataDir() string {
	return filepath.Join(s.root, "metadata")
}

// MetadataName is the reference stored on a room for its attachment.
func MetadataName(roomID string) string {
	return roomID + ".json"
}

func (s *FileStorage) MetadataPath(ref string) string {
	return filepath.Join(s.MetadataDir(), ref)
}

func (s *FileStorage) EnsureMetadataDir() error {
	if err := os.MkdirAll(s.MetadataDir(), 0o755); err != nil {
		return fmt.Errorf("mkdir metadata dir: %w", err)
	}
	return nil
}

// SaveMetadata проверяет JSON и сохраняет его как файл комнаты.
// Возвращает имя файла для ссылки на комнате.
func (s *FileStorage) SaveMetadata(roomID string, data []byte) (string, error) {
	if !safeName.MatchString(roomID) {
		return "", ErrUnsafeName
	}
	if !json.Valid(data) {
		return "", ErrInvalidMetadata
	}
	if err := s.EnsureMetadataDir(); err != nil {
		return "", err
	}
	ref := MetadataName(roomID)
	if err := os.WriteFile(s.MetadataPath(ref), data, 0o644); err != nil {
		return "", fmt.Errorf("write metadata: %w", err)
	}
	return ref, nil
}

func (s *FileStorage) ReadMetadata(ref string) ([]byte, error) {
	if ref == "" {
		return nil, ErrNoMetadata
	}
	if !safeRef.MatchString(ref) {
		return nil, ErrUnsafeName
	}
	data, err := os.ReadFile(s.MetadataPath(ref))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoMetadata
		}
		return nil, fmt.Errorf("read metadata: %w", err)
	}
	return data, nil
}

// RemoveMetadata deletes a metadata file. A missing file is not an error.
func (s *FileStorage) RemoveMetadata(ref string) error {
	if !safeRef.MatchString(ref) {
		return ErrUnsafeName
	}
	if err := os.Remove(s.MetadataPath(ref)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove metadata: %w", err)
	}
	return nil
}
