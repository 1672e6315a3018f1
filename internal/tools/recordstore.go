package tools

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// RecordStore is a sqlite-backed key/document backend for the record tools.
type RecordStore struct {
	db *sql.DB
}

// NewRecordStore opens (or creates) the record database at dbPath and seeds
// it with the given records if their keys are not present yet.
func NewRecordStore(dbPath string, seed map[string]map[string]any) (*RecordStore, error) {
	db, err := sql.Open("sqlite", "file:"+dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open record db: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS records (
		key TEXT PRIMARY KEY,
		doc TEXT NOT NULL,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	s := &RecordStore{db: db}
	for key, doc := range seed {
		raw, err := json.Marshal(doc)
		if err != nil {
			continue
		}
		_, _ = db.Exec(`INSERT OR IGNORE INTO records (key, doc) VALUES (?, ?)`, key, string(raw))
	}
	return s, nil
}

// DefaultRecordSeed returns the demo record contents.
func DefaultRecordSeed() map[string]map[string]any {
	return map[string]map[string]any{
		"user:123":  {"status": "active", "plan": "pro"},
		"order:999": {"state": "shipped"},
	}
}

// Close closes the underlying database.
func (s *RecordStore) Close() error {
	return s.db.Close()
}

// Get returns the document stored under key.
func (s *RecordStore) Get(key string) (map[string]any, error) {
	var raw string
	err := s.db.QueryRow(`SELECT doc FROM records WHERE key = ?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("record not found: %s", key)
	}
	if err != nil {
		return nil, fmt.Errorf("record lookup failed: %w", err)
	}
	var doc map[string]any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("record %s is corrupt: %w", key, err)
	}
	return doc, nil
}

// Update applies a patch to the document stored under key and returns the
// updated document.
func (s *RecordStore) Update(key string, patch map[string]any) (map[string]any, error) {
	doc, err := s.Get(key)
	if err != nil {
		return nil, err
	}
	for field, value := range patch {
		doc[field] = value
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("record %s marshal failed: %w", key, err)
	}
	if _, err := s.db.Exec(`UPDATE records SET doc = ?, updated_at = CURRENT_TIMESTAMP WHERE key = ?`, string(raw), key); err != nil {
		return nil, fmt.Errorf("record update failed: %w", err)
	}
	return doc, nil
}

// GetRecordTool fetches a record by key.
type GetRecordTool struct {
	store *RecordStore
}

// NewGetRecordTool creates the get_record tool.
func NewGetRecordTool(store *RecordStore) *GetRecordTool {
	return &GetRecordTool{store: store}
}

func (t *GetRecordTool) Name() string { return "get_record" }
func (t *GetRecordTool) Tier() int    { return TierReadOnly }

func (t *GetRecordTool) Description() string {
	return "Fetch the record stored under the given key."
}

func (t *GetRecordTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"key": map[string]any{
				"type":        "string",
				"description": "The record key, e.g. user:123",
			},
		},
		"required": []string{"key"},
	}
}

func (t *GetRecordTool) Execute(ctx context.Context, args map[string]any) (any, error) {
	key := GetString(args, "key", "")
	if key == "" {
		return nil, fmt.Errorf("key is required")
	}
	return t.store.Get(key)
}

// UpdateRecordTool patches a record. Destructive.
type UpdateRecordTool struct {
	store *RecordStore
}

// NewUpdateRecordTool creates the update_record tool.
func NewUpdateRecordTool(store *RecordStore) *UpdateRecordTool {
	return &UpdateRecordTool{store: store}
}

func (t *UpdateRecordTool) Name() string { return "update_record" }
func (t *UpdateRecordTool) Tier() int    { return TierDestructive }

func (t *UpdateRecordTool) Description() string {
	return "Apply a field patch to the record stored under the given key. Requires human approval."
}

func (t *UpdateRecordTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"key": map[string]any{
				"type":        "string",
				"description": "The record key, e.g. user:123",
			},
			"patch": map[string]any{
				"type":        "object",
				"description": "Field/value pairs to set on the record",
			},
		},
		"required": []string{"key", "patch"},
	}
}

func (t *UpdateRecordTool) Execute(ctx context.Context, args map[string]any) (any, error) {
	key := GetString(args, "key", "")
	if key == "" {
		return nil, fmt.Errorf("key is required")
	}
	patch := GetMap(args, "patch")
	if len(patch) == 0 {
		return nil, fmt.Errorf("patch is required")
	}
	return t.store.Update(key, patch)
}
