package history

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	filePrefix = "conversation_"
	fileSuffix = ".json"
)

// FileStore keeps transcripts as JSON files in one directory.
type FileStore struct {
	dir string
}

// NewFileStore creates the directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("history directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Save implements the Store interface.
func (s *FileStore) Save(_ context.Context, transcript Transcript) (string, error) {
	name := filePrefix + time.Now().Format(timestampLayout) + fileSuffix

	data, err := json.MarshalIndent(transcript, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode transcript: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write transcript: %w", err)
	}
	return name, nil
}

// List implements the Store interface, newest first by modification
// time.
func (s *FileStore) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read history directory: %w", err)
	}

	type candidate struct {
		name    string
		modTime time.Time
	}
	var files []candidate
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, candidate{name: name, modTime: info.ModTime()})
	}

	sort.SliceStable(files, func(i, j int) bool {
		return files[i].modTime.After(files[j].modTime)
	})

	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.name
	}
	return names, nil
}

// LoadByIndex implements the Store interface.
func (s *FileStore) LoadByIndex(ctx context.Context, index int) (*Transcript, error) {
	names, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	if index < 1 || index > len(names) {
		return nil, ErrNotFound
	}

	data, err := os.ReadFile(filepath.Join(s.dir, names[index-1]))
	if err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}

	var transcript Transcript
	if err := json.Unmarshal(data, &transcript); err != nil {
		return nil, fmt.Errorf("decode transcript: %w", err)
	}
	return &transcript, nil
}
