package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// FileStore is an in-memory file backend for the file tools.
type FileStore struct {
	mu    sync.RWMutex
	files map[string]string
}

// NewFileStore creates a file store seeded with the given path→content map.
func NewFileStore(seed map[string]string) *FileStore {
	files := make(map[string]string, len(seed))
	for path, content := range seed {
		files[path] = content
	}
	return &FileStore{files: files}
}

// DefaultFileSeed returns the demo filesystem contents.
func DefaultFileSeed() map[string]string {
	return map[string]string{
		"/configs/app.yaml": "feature_flag: false\nowner: team-a\n",
		"/docs/readme.md":   "Welcome!\n",
	}
}

// Read returns the contents of a file.
func (s *FileStore) Read(path string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	content, ok := s.files[path]
	if !ok {
		return "", fmt.Errorf("file not found: %s", path)
	}
	return content, nil
}

// Search returns all paths containing the query, case-insensitive.
func (s *FileStore) Search(query string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q := strings.ToLower(query)
	matches := []string{}
	for path := range s.files {
		if strings.Contains(strings.ToLower(path), q) {
			matches = append(matches, path)
		}
	}
	sort.Strings(matches)
	return matches
}

// Delete removes a file.
func (s *FileStore) Delete(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.files[path]; !ok {
		return fmt.Errorf("file not found: %s", path)
	}
	delete(s.files, path)
	return nil
}

// ReadFileTool reads a file from the file store.
type ReadFileTool struct {
	store *FileStore
}

// NewReadFileTool creates the read_file tool.
func NewReadFileTool(store *FileStore) *ReadFileTool {
	return &ReadFileTool{store: store}
}

func (t *ReadFileTool) Name() string { return "read_file" }
func (t *ReadFileTool) Tier() int    { return TierReadOnly }

func (t *ReadFileTool) Description() string {
	return "Read the contents of a file at the specified path."
}

func (t *ReadFileTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"path": map[string]any{
				"type":        "string",
				"description": "The path to the file to read",
			},
		},
		"required": []string{"path"},
	}
}

func (t *ReadFileTool) Execute(ctx context.Context, args map[string]any) (any, error) {
	path := GetString(args, "path", "")
	if path == "" {
		return nil, fmt.Errorf("path is required")
	}
	return t.store.Read(path)
}

// SearchFilesTool searches file paths by substring.
type SearchFilesTool struct {
	store *FileStore
}

// NewSearchFilesTool creates the search_files tool.
func NewSearchFilesTool(store *FileStore) *SearchFilesTool {
	return &SearchFilesTool{store: store}
}

func (t *SearchFilesTool) Name() string { return "search_files" }
func (t *SearchFilesTool) Tier() int    { return TierReadOnly }

func (t *SearchFilesTool) Description() string {
	return "Search for files whose path contains the query, case-insensitive."
}

func (t *SearchFilesTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{
				"type":        "string",
				"description": "Substring to match against file paths",
			},
		},
		"required": []string{"query"},
	}
}

func (t *SearchFilesTool) Execute(ctx context.Context, args map[string]any) (any, error) {
	query := GetString(args, "query", "")
	return t.store.Search(query), nil
}

// DeleteFileTool deletes a file from the file store. Destructive.
type DeleteFileTool struct {
	store *FileStore
}

// NewDeleteFileTool creates the delete_file tool.
func NewDeleteFileTool(store *FileStore) *DeleteFileTool {
	return &DeleteFileTool{store: store}
}

func (t *DeleteFileTool) Name() string { return "delete_file" }
func (t *DeleteFileTool) Tier() int    { return TierDestructive }

func (t *DeleteFileTool) Description() string {
	return "Delete the file at the specified path. Requires human approval."
}

func (t *DeleteFileTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"path": map[string]any{
				"type":        "string",
				"description": "The path to the file to delete",
			},
		},
		"required": []string{"path"},
	}
}

func (t *DeleteFileTool) Execute(ctx context.Context, args map[string]any) (any, error) {
	path := GetString(args, "path", "")
	if path == "" {
		return nil, fmt.Errorf("path is required")
	}
	if err := t.store.Delete(path); err != nil {
		return nil, err
	}
	return "deleted", nil
}
