// Package registry owns the set of named boards and the API keys bound to
// them, and persists that binding (plus each board's size cap) to a JSON
// journal file so the service comes back up the way it was left.
//
// Per-board entry data lives under internal/board and internal/persist;
// this package only tracks which boards exist, what caps they carry, and
// which API keys may read or write which board.
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/edirooss/leaderboard/internal/board"
	"github.com/edirooss/leaderboard/internal/persist"
)

// KeyBinding is what an API key grants: access to one named board, with or
// without write permission.
type KeyBinding struct {
	Board string
	Write bool
}

// journalUser mirrors a key's JSON shape inside a board's entry.
type journalUser struct {
	Write bool `json:"write"`
}

// journalBoard mirrors one board's JSON shape: the keys bound to it, and
// its optional size cap.
type journalBoard struct {
	Keys map[string]journalUser `json:"keys"`
	Cap  *int                   `json:"cap,omitempty"`
}

type journal map[string]journalBoard

// Registry holds every board and API key the service knows about, and
// mirrors that state to a JSON journal on every mutation.
type Registry struct {
	log *zap.Logger

	mu      sync.RWMutex
	boards  map[string]*board.Board
	apiKeys map[string]KeyBinding

	savesDir    string
	journalPath string
}

// Load builds a Registry from a journal file and a saves directory. If the
// journal file is absent or empty, it is read as an empty journal; the file
// is first written by the next registry mutation. Each
// board named in the journal is loaded from its <name>.board file if
// present (recovering a stray <name>_saving.part left by a crash mid-save),
// or starts empty otherwise.
func Load(journalPath, savesDir string, log *zap.Logger) (*Registry, error) {
	if log == nil {
		log = zap.NewNop()
	}

	r := &Registry{
		log:         log.Named("registry"),
		boards:      make(map[string]*board.Board),
		apiKeys:     make(map[string]KeyBinding),
		savesDir:    savesDir,
		journalPath: journalPath,
	}

	if err := os.MkdirAll(savesDir, 0o755); err != nil {
		return nil, fmt.Errorf("registry: create saves dir: %w", err)
	}

	j, err := readJournal(journalPath)
	if err != nil {
		return nil, err
	}

	for name, jb := range j {
		b, err := r.loadBoardFromDisk(name)
		if err != nil {
			return nil, err
		}
		if jb.Cap != nil {
			b.SetCap(*jb.Cap)
		}
		r.boards[name] = b

		for key, ju := range jb.Keys {
			r.apiKeys[key] = KeyBinding{Board: name, Write: ju.Write}
		}
	}

	return r, nil
}

func readJournal(path string) (journal, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return journal{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("registry: read journal: %w", err)
	}
	if len(data) == 0 {
		return journal{}, nil
	}
	var j journal
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("registry: parse journal %s: %w", path, err)
	}
	return j, nil
}

func (r *Registry) loadBoardFromDisk(name string) (*board.Board, error) {
	savePath := filepath.Join(r.savesDir, name+".board")
	partPath := filepath.Join(r.savesDir, name+"_saving.part")

	if _, err := os.Stat(savePath); os.IsNotExist(err) {
		if _, err := os.Stat(partPath); err == nil {
			if err := os.Rename(partPath, savePath); err != nil {
				return nil, fmt.Errorf("registry: recover crashed save for %q: %w", name, err)
			}
			r.log.Warn("recovered board save left mid-write by a crash", zap.String("board", name))
		}
	}

	f, err := os.Open(savePath)
	if os.IsNotExist(err) {
		r.log.Warn("no save file for board, starting empty", zap.String("board", name))
		return board.New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("registry: open save for %q: %w", name, err)
	}
	defer f.Close()

	b, err := persist.LoadBoard(f)
	if err != nil {
		return nil, fmt.Errorf("registry: decode save for %q: %w", name, err)
	}
	return b, nil
}

// writeJournalLocked rewrites the journal file in place from current
// boards/apiKeys state. Caller must hold r.mu (read or write lock).
func (r *Registry) writeJournalLocked() error {
	j := make(journal, len(r.boards))
	for name, b := range r.boards {
		jb := journalBoard{Keys: make(map[string]journalUser)}
		if capVal, ok := b.GetCap(); ok {
			jb.Cap = &capVal
		}
		j[name] = jb
	}
	for key, kb := range r.apiKeys {
		jb, ok := j[kb.Board]
		if !ok {
			continue
		}
		jb.Keys[key] = journalUser{Write: kb.Write}
		j[kb.Board] = jb
	}

	data, err := json.MarshalIndent(j, "", "  ")
	if err != nil {
		return fmt.Errorf("registry: marshal journal: %w", err)
	}
	if err := os.WriteFile(r.journalPath, data, 0o644); err != nil {
		return fmt.Errorf("registry: write journal: %w", err)
	}
	return nil
}

// Board returns the named board.
func (r *Registry) Board(name string) (*board.Board, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.boards[name]
	return b, ok
}

// Boards returns every board name currently registered.
func (r *Registry) Boards() map[string]*board.Board {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]*board.Board, len(r.boards))
	for k, v := range r.boards {
		out[k] = v
	}
	return out
}

// ResolveKey returns the binding for an API key.
func (r *Registry) ResolveKey(apiKey string) (KeyBinding, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kb, ok := r.apiKeys[apiKey]
	return kb, ok
}

// CreateBoard registers a new, empty (or disk-recovered) board under name.
// Reports false if name is already taken.
func (r *Registry) CreateBoard(name string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.boards[name]; exists {
		return false, nil
	}
	b, err := r.loadBoardFromDisk(name)
	if err != nil {
		return false, err
	}
	r.boards[name] = b
	return true, r.writeJournalLocked()
}

// DeleteBoard removes a board, every API key bound to it, and its save
// file on disk.
func (r *Registry) DeleteBoard(name string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.boards[name]; !exists {
		return false, nil
	}
	delete(r.boards, name)
	for key, kb := range r.apiKeys {
		if kb.Board == name {
			delete(r.apiKeys, key)
		}
	}

	savePath := filepath.Join(r.savesDir, name+".board")
	if err := os.Remove(savePath); err != nil && !os.IsNotExist(err) {
		r.log.Warn("failed to remove board save file", zap.String("board", name), zap.Error(err))
	}

	return true, r.writeJournalLocked()
}

// SetBoardCap sets name's size cap.
func (r *Registry) SetBoardCap(name string, capacity int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.boards[name]
	if !ok {
		return false, nil
	}
	b.SetCap(capacity)
	return true, r.writeJournalLocked()
}

// RemoveBoardCap lifts name's size cap.
func (r *Registry) RemoveBoardCap(name string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.boards[name]
	if !ok {
		return false, nil
	}
	b.RemoveCap()
	return true, r.writeJournalLocked()
}

// CreateKey binds a new API key to a board. Reports false if the key
// already exists.
func (r *Registry) CreateKey(apiKey, boardName string, write bool) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.apiKeys[apiKey]; exists {
		return false, nil
	}
	r.apiKeys[apiKey] = KeyBinding{Board: boardName, Write: write}
	return true, r.writeJournalLocked()
}

// DeleteKey revokes an API key.
func (r *Registry) DeleteKey(apiKey string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.apiKeys[apiKey]; !exists {
		return false, nil
	}
	delete(r.apiKeys, apiKey)
	return true, r.writeJournalLocked()
}

// SetKeyWrite updates an API key's write permission.
func (r *Registry) SetKeyWrite(apiKey string, write bool) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kb, exists := r.apiKeys[apiKey]
	if !exists {
		return false, nil
	}
	kb.Write = write
	r.apiKeys[apiKey] = kb
	return true, r.writeJournalLocked()
}
