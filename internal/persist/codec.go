// Package persist handles durable, on-disk storage of boards: encoding a
// board's tree to its save file and decoding it back on startup, plus the
// periodic and on-shutdown save loop that keeps those files current.
package persist

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/edirooss/leaderboard/internal/board"
	"github.com/edirooss/leaderboard/internal/entry"
	"github.com/edirooss/leaderboard/internal/tree"
)

// LoadBoard decodes a board previously written by SaveBoard.
func LoadBoard(r io.Reader) (*board.Board, error) {
	t, err := tree.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("persist: decode board: %w", err)
	}
	return board.FromTree(t), nil
}

// SaveBoard writes a consistent snapshot of b to a temp file beside path
// and atomically renames it into place, so a crash mid-write never
// corrupts the previous good save. For a path "<dir>/<name>.board" the temp
// file is "<dir>/<name>_saving.part", which is what registry.Load recovers
// from if found without a matching save file.
func SaveBoard(b *board.Board, path string) error {
	snap := b.SnapshotForSave()

	var buf bytes.Buffer
	if err := encodeSnapshot(&buf, snap.Entries()); err != nil {
		return fmt.Errorf("persist: encode board: %w", err)
	}

	partPath := strings.TrimSuffix(path, ".board") + "_saving.part"
	f, err := os.Create(partPath)
	if err != nil {
		return fmt.Errorf("persist: create temp save file: %w", err)
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		f.Close()
		return fmt.Errorf("persist: write temp save file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("persist: sync temp save file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("persist: close temp save file: %w", err)
	}
	if err := os.Rename(partPath, path); err != nil {
		return fmt.Errorf("persist: rename temp save file into place: %w", err)
	}
	return nil
}

// encodeSnapshot writes the snapshot by rebuilding a fresh balanced tree
// from its ascending-order entries (a simple, always-balanced bulk load)
// and delegating to the tree's own preorder encoding.
func encodeSnapshot(w io.Writer, entries []entry.Entry) error {
	t := tree.New()
	for _, e := range entries {
		t.Insert(e)
	}
	return t.EncodeTo(w)
}
