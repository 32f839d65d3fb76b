package media

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// URLPrefix is the public path prefix under which stored files are served.
const URLPrefix = "/uploads"

// StagedFile describes an uploaded file already written to the store,
// before the service layer links it to a row.
type StagedFile struct {
	Name string // generated filename
	Path string // location on disk
	URL  string // public path recorded in the database
}

// Store is the filesystem-backed home for uploaded image binaries.
type Store struct {
	dir string
}

func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) Dir() string {
	return s.dir
}

// Filename returns a unique name for a new file: unix-millisecond timestamp
// plus a random component, keeping the original extension.
func (s *Store) Filename(ext string) string {
	return fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), uuid.New().String(), strings.ToLower(ext))
}

func (s *Store) DiskPath(name string) string {
	return filepath.Join(s.dir, name)
}

func (s *Store) URLPath(name string) string {
	return URLPrefix + "/" + name
}

// Remove deletes the backing file for a stored URL path. Missing files are
// not an error: deletion is best-effort and a file may already be gone.
func (s *Store) Remove(urlPath string) error {
	name := filepath.Base(urlPath)
	if name == "." || name == "/" || name == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
