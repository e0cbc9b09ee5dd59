package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/hoosh-sh/hoosh/pkg/agent"
)

const indexFile = "index.json"

// indexEntry is the lightweight per-session record kept in index.json,
// so List() does not need to open and parse every session's
// metadata.json on every call.
type indexEntry struct {
	ID        string `json:"id"`
	CWD       string `json:"cwd"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// sessionIndex maintains index.json: the full session list sorted by
// UpdatedAt descending, so List() is a single file read instead of a
// directory scan plus one metadata.json read per session.
type sessionIndex struct {
	mu   sync.Mutex
	path string
}

func newSessionIndex(baseDir string) *sessionIndex {
	return &sessionIndex{path: filepath.Join(baseDir, indexFile)}
}

func (idx *sessionIndex) load() ([]indexEntry, error) {
	data, err := os.ReadFile(idx.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var entries []indexEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (idx *sessionIndex) save(entries []indexEntry) error {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].UpdatedAt > entries[j].UpdatedAt
	})
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(idx.path), 0755); err != nil {
		return err
	}
	tmp := idx.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, idx.path)
}

// upsert adds or replaces a session's entry and rewrites index.json.
func (idx *sessionIndex) upsert(meta agent.SessionMetadata) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	entries, err := idx.load()
	if err != nil {
		return err
	}
	entry := indexEntry{
		ID:        meta.ID,
		CWD:       meta.CWD,
		CreatedAt: meta.CreatedAt.Format(timeLayout),
		UpdatedAt: meta.UpdatedAt.Format(timeLayout),
	}
	replaced := false
	for i, e := range entries {
		if e.ID == meta.ID {
			entries[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		entries = append(entries, entry)
	}
	return idx.save(entries)
}

// remove deletes a session's entry from index.json, if present.
func (idx *sessionIndex) remove(sessionID string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	entries, err := idx.load()
	if err != nil {
		return err
	}
	out := entries[:0]
	for _, e := range entries {
		if e.ID != sessionID {
			out = append(out, e)
		}
	}
	return idx.save(out)
}

// ids returns every indexed session ID, most recently updated first, or
// (nil, false) if index.json does not exist yet (caller should fall back
// to a directory scan).
func (idx *sessionIndex) ids() ([]string, bool, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if _, err := os.Stat(idx.path); os.IsNotExist(err) {
		return nil, false, nil
	}
	entries, err := idx.load()
	if err != nil {
		return nil, false, err
	}
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	return ids, true, nil
}

const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
