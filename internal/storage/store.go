// Package storage persists the chat configuration and conversation history as two
// independent JSON documents under a per-user directory.
//
// Writes overwrite the whole file and take no lock: concurrent invocations against the
// same directory race and the last writer wins.
package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"chatgpt/internal/logger"
	"chatgpt/pkg/chattypes"
)

// Storage layout under the home directory.
const (
	DirName         = ".chatgpt"
	ConfigFileName  = "config.json"
	HistoryFileName = "history.json"
)

const (
	dirPerm  fs.FileMode = 0o700
	filePerm fs.FileMode = 0o600
)

// Paths locates the storage directory and its two documents.
type Paths struct {
	Dir         string
	ConfigFile  string
	HistoryFile string
}

// ResolvePaths builds the storage layout rooted at home.
func ResolvePaths(home string) Paths {
	dir := filepath.Join(home, DirName)
	return Paths{
		Dir:         dir,
		ConfigFile:  filepath.Join(dir, ConfigFileName),
		HistoryFile: filepath.Join(dir, HistoryFileName),
	}
}

// DefaultPaths resolves the storage layout from the current user's home directory.
func DefaultPaths() (Paths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Paths{}, fmt.Errorf("%w: %v", chattypes.ErrConfigResolution, err)
	}
	if home == "" {
		return Paths{}, chattypes.ErrConfigResolution
	}
	return ResolvePaths(home), nil
}

// Store owns the on-disk configuration and history documents.
type Store struct {
	paths Paths
}

// NewStore creates a store over the given paths.
func NewStore(paths Paths) *Store {
	return &Store{paths: paths}
}

// Paths returns the layout the store operates on.
func (s *Store) Paths() Paths {
	return s.paths
}

// EnsureInitialized creates the storage directory and writes default documents for any
// that are missing. Existing documents are left untouched.
func (s *Store) EnsureInitialized() error {
	if err := os.MkdirAll(s.paths.Dir, dirPerm); err != nil {
		return fmt.Errorf("%w: create %s: %v", chattypes.ErrStorage, s.paths.Dir, err)
	}
	if err := initDocument(s.paths.ConfigFile, chattypes.DefaultConfig()); err != nil {
		return err
	}
	return initDocument(s.paths.HistoryFile, chattypes.DefaultHistory())
}

// LoadConfig reads config.json.
func (s *Store) LoadConfig() (chattypes.Config, error) {
	return Load[chattypes.Config](s.paths.ConfigFile)
}

// LoadHistory reads history.json.
func (s *Store) LoadHistory() (chattypes.History, error) {
	h, err := Load[chattypes.History](s.paths.HistoryFile)
	if err != nil {
		return h, err
	}
	if h.History == nil {
		h.History = []chattypes.Message{}
	}
	return h, nil
}

// SaveHistory overwrites history.json.
func (s *Store) SaveHistory(h chattypes.History) error {
	return Save(s.paths.HistoryFile, h)
}

// ResetHistory replaces history.json with the empty history. config.json is not touched.
func (s *Store) ResetHistory() error {
	return Reset(s.paths.HistoryFile, chattypes.DefaultHistory())
}

// Load reads the JSON document at path into a T.
func Load[T any](path string) (T, error) {
	var v T

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return v, fmt.Errorf("%w: %s", chattypes.ErrNotFound, path)
		}
		return v, fmt.Errorf("%w: read %s: %v", chattypes.ErrIO, path, err)
	}

	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("%w: %s: %v", chattypes.ErrDecode, path, err)
	}

	logger.StoreOperation("load", path, "bytes", len(data))
	return v, nil
}

// Save writes v to path as indented JSON, replacing any previous content.
func Save[T any](path string, v T) error {
	data, err := marshal(v)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", chattypes.ErrIO, path, err)
	}
	if err := os.WriteFile(path, data, filePerm); err != nil {
		return fmt.Errorf("%w: write %s: %v", chattypes.ErrIO, path, err)
	}

	logger.StoreOperation("save", path, "bytes", len(data))
	return nil
}

// Reset removes the document at path, if any, and writes def in its place.
func Reset[T any](path string, def T) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: remove %s: %v", chattypes.ErrStorage, path, err)
	}
	logger.StoreOperation("reset", path)
	return initDocument(path, def)
}

// initDocument writes def to path unless the file already exists.
func initDocument[T any](path string, def T) error {
	data, err := marshal(def)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", chattypes.ErrStorage, path, err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, filePerm)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil
		}
		return fmt.Errorf("%w: create %s: %v", chattypes.ErrStorage, path, err)
	}

	_, werr := f.Write(data)
	cerr := f.Close()
	if werr != nil {
		return fmt.Errorf("%w: write %s: %v", chattypes.ErrStorage, path, werr)
	}
	if cerr != nil {
		return fmt.Errorf("%w: close %s: %v", chattypes.ErrStorage, path, cerr)
	}

	logger.StoreOperation("init", path, "bytes", len(data))
	return nil
}

func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
