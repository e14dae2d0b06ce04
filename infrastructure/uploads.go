package infrastructure

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LocalUploadStore keeps uploads in a directory on disk. Stored names
// get a random suffix so two candidates uploading "cv.pdf" never
// collide. Deletion is physical, unlike the soft-deleted database
// records.
type LocalUploadStore struct {
	dir string
}

func NewLocalUploadStore(dir string) (*LocalUploadStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalUploadStore{dir: dir}, nil
}

func (s *LocalUploadStore) Save(data []byte, suggestedName string) (string, error) {
	ext := filepath.Ext(suggestedName)
	base := strings.TrimSuffix(filepath.Base(suggestedName), ext)
	name := fmt.Sprintf("%s-%s%s", base, uuid.NewString(), ext)

	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	return name, nil
}

func (s *LocalUploadStore) Exists(fileName string) bool {
	_, err := os.Stat(s.path(fileName))
	return err == nil
}

func (s *LocalUploadStore) Read(fileName string) ([]byte, error) {
	return os.ReadFile(s.path(fileName))
}

func (s *LocalUploadStore) Delete(fileName string) error {
	return os.Remove(s.path(fileName))
}

// path confines lookups to the upload directory regardless of what
// name the client sends.
func (s *LocalUploadStore) path(fileName string) string {
	return filepath.Join(s.dir, filepath.Base(fileName))
}
