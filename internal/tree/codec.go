package tree

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/edirooss/leaderboard/internal/entry"
)

// Wire format: a single presence byte (0 = empty tree, 1 = has a root),
// followed, if present, by the root's subtree in preorder. Each node is
// written as its 24-byte entry (key, score, timestamp, all fixed-width),
// then a left-child presence byte (and subtree if present), then a
// right-child presence byte (and subtree if present). Decoding rebuilds
// size/height bottom-up as each subtree completes, so the result needs no
// separate rebalancing pass — the stored shape is reproduced exactly.
const (
	absent byte = 0
	present byte = 1
)

// EncodeTo writes the tree in preorder to w.
func (t *Tree) EncodeTo(w io.Writer) error {
	if t.isEmpty() {
		_, err := w.Write([]byte{absent})
		return err
	}
	if _, err := w.Write([]byte{present}); err != nil {
		return err
	}
	return encodeNode(w, t.sentinel.right)
}

func encodeNode(w io.Writer, n *node) error {
	if err := encodeEntry(w, n.value); err != nil {
		return err
	}
	if err := encodeChild(w, n.left); err != nil {
		return err
	}
	return encodeChild(w, n.right)
}

func encodeChild(w io.Writer, child *node) error {
	if child == nil {
		_, err := w.Write([]byte{absent})
		return err
	}
	if _, err := w.Write([]byte{present}); err != nil {
		return err
	}
	return encodeNode(w, child)
}

func encodeEntry(w io.Writer, e entry.Entry) error {
	var buf [24]byte
	binary.LittleEndian.PutUint64(buf[0:8], uint64(e.Key))
	binary.LittleEndian.PutUint64(buf[8:16], math.Float64bits(e.Score))
	binary.LittleEndian.PutUint64(buf[16:24], math.Float64bits(e.Timestamp))
	_, err := w.Write(buf[:])
	return err
}

// Decode reads a tree previously written by EncodeTo.
func Decode(r io.Reader) (*Tree, error) {
	var flag [1]byte
	if _, err := io.ReadFull(r, flag[:]); err != nil {
		return nil, fmt.Errorf("tree: decode root flag: %w", err)
	}
	sentinel := &node{}
	if flag[0] == absent {
		return &Tree{sentinel: sentinel}, nil
	}
	root, err := decodeNode(r, sentinel, false)
	if err != nil {
		return nil, err
	}
	sentinel.right = root
	return &Tree{sentinel: sentinel}, nil
}

func decodeNode(r io.Reader, parent *node, isLeft bool) (*node, error) {
	val, err := decodeEntry(r)
	if err != nil {
		return nil, err
	}
	n := &node{value: val, parent: parent, isLeftChild: isLeft}

	left, err := decodeChild(r, n, true)
	if err != nil {
		return nil, err
	}
	n.left = left

	right, err := decodeChild(r, n, false)
	if err != nil {
		return nil, err
	}
	n.right = right

	fix(n)
	return n, nil
}

func decodeChild(r io.Reader, parent *node, isLeft bool) (*node, error) {
	var flag [1]byte
	if _, err := io.ReadFull(r, flag[:]); err != nil {
		return nil, fmt.Errorf("tree: decode child flag: %w", err)
	}
	if flag[0] == absent {
		return nil, nil
	}
	return decodeNode(r, parent, isLeft)
}

func decodeEntry(r io.Reader) (entry.Entry, error) {
	var buf [24]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return entry.Entry{}, fmt.Errorf("tree: decode entry: %w", err)
	}
	return entry.Entry{
		Key:       int64(binary.LittleEndian.Uint64(buf[0:8])),
		Score:     math.Float64frombits(binary.LittleEndian.Uint64(buf[8:16])),
		Timestamp: math.Float64frombits(binary.LittleEndian.Uint64(buf[16:24])),
	}, nil
}
