// Package dispatcher is the single entry point adapters (HTTP, CLI) call
// into: it validates a request payload, enforces per-key write capability,
// and invokes the matching Board operation, returning a uniform result
// envelope. It mirrors original_source/src/backend.rs's execute_action /
// ActionType dispatch, expanded to the full action set the wire protocol
// names.
package dispatcher

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/edirooss/leaderboard/internal/apperr"
	"github.com/edirooss/leaderboard/internal/board"
	"github.com/edirooss/leaderboard/internal/entry"
	"github.com/edirooss/leaderboard/internal/registry"
)

// Action names one of the operations a caller can invoke, matching the
// endpoint names of the wire protocol.
type Action string

const (
	ActionUpdate Action = "update"
	ActionRemove Action = "remove"
	ActionGet    Action = "get"
	ActionInfo   Action = "info"
	ActionBoard  Action = "board"
	ActionAtRank Action = "atrank"
	ActionTop    Action = "top"
	ActionBottom Action = "bottom"
	ActionAfter  Action = "after"
	ActionBefore Action = "before"
	ActionAround Action = "around"
	ActionRange  Action = "range"
)

// Code is the wire-level outcome classifier: 0 success, 1 success with a
// notable condition (added vs updated, "already absent" on remove), -1
// target not found (or otherwise not fulfilled, e.g. a capacity reject).
type Code int

const (
	CodeOK       Code = 0
	CodeNotable  Code = 1
	CodeNotFound Code = -1
)

// RankedEntry pairs an entry with its 1-based rank, the shape the
// list-returning endpoints (/top, /bottom, /range) emit.
type RankedEntry struct {
	Rank  int         `json:"rank"`
	Entry entry.Entry `json:"entry"`
}

// Result is the uniform envelope returned by the single-entry operations.
type Result struct {
	Code    Code          `json:"code"`
	Message string        `json:"message"`
	Entry   *entry.Entry  `json:"entry,omitempty"`
	Rank    *int          `json:"rank,omitempty"`
	Entries []RankedEntry `json:"entries,omitempty"`
}

// BoardInfo is the /board response: the board's cap (if any), current
// size, and worst-ranked entry (if non-empty).
type BoardInfo struct {
	Cap  *int         `json:"cap,omitempty"`
	Size int          `json:"size"`
	Min  *entry.Entry `json:"min,omitempty"`
}

// Principal is what an adapter resolved from the caller's credentials: the
// board they're scoped to and whether they may perform write operations.
type Principal struct {
	Board string
	Write bool
}

// Dispatcher validates and executes operations against a Registry's boards
// on behalf of an authenticated Principal.
type Dispatcher struct {
	log      *zap.Logger
	reg      *registry.Registry
	validate *validator.Validate
}

// New returns a Dispatcher backed by reg.
func New(reg *registry.Registry, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{log: log.Named("dispatcher"), reg: reg, validate: validator.New()}
}

func (d *Dispatcher) board(p Principal) (*board.Board, error) {
	b, ok := d.reg.Board(p.Board)
	if !ok {
		return nil, apperr.ErrUnknownBoard
	}
	return b, nil
}

func (d *Dispatcher) requireWrite(p Principal) error {
	if !p.Write {
		return apperr.ErrAuth
	}
	return nil
}

func (d *Dispatcher) validatePayload(req any) error {
	if err := d.validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %s", apperr.ErrMalformed, err)
	}
	return nil
}

// rankify resolves each entry's current rank on b. Ranks are looked up
// individually rather than derived from list position, so a result stays
// correct even if describing entries gathered by rank (/range) rather
// than walked by cursor (/after, /before, /around).
func rankify(b *board.Board, es []entry.Entry) []RankedEntry {
	out := make([]RankedEntry, 0, len(es))
	for _, e := range es {
		rank, ok := b.RankOf(e.Key)
		if !ok {
			continue
		}
		out = append(out, RankedEntry{Rank: rank, Entry: e})
	}
	return out
}

// UpdateRequest is the /update payload.
type UpdateRequest struct {
	ID    int64   `json:"id" validate:"required"`
	Value float64 `json:"value"`
}

// Update inserts ID at Value if absent, or moves it to Value if present.
func (d *Dispatcher) Update(p Principal, req UpdateRequest) (Result, error) {
	if err := d.validatePayload(req); err != nil {
		return Result{}, err
	}
	if err := d.requireWrite(p); err != nil {
		return Result{}, err
	}
	b, err := d.board(p)
	if err != nil {
		return Result{}, err
	}

	existed, err := b.Update(req.ID, req.Value, nil)
	if errors.Is(err, apperr.ErrCapReject) {
		return Result{Code: CodeNotFound, Message: fmt.Sprintf("rejected %d: board at capacity", req.ID)}, nil
	}
	if err != nil {
		return Result{}, err
	}
	if existed {
		return Result{Code: CodeOK, Message: fmt.Sprintf("Successfully updated %d.", req.ID)}, nil
	}
	return Result{Code: CodeNotable, Message: fmt.Sprintf("Added player %d and updated.", req.ID)}, nil
}

// RemoveRequest is the /remove payload.
type RemoveRequest struct {
	ID int64 `json:"id" validate:"required"`
}

// Remove deletes ID, reporting "already absent" rather than failing if it
// wasn't present — removal of an absent key is treated as idempotent
// success.
func (d *Dispatcher) Remove(p Principal, req RemoveRequest) (Result, error) {
	if err := d.validatePayload(req); err != nil {
		return Result{}, err
	}
	if err := d.requireWrite(p); err != nil {
		return Result{}, err
	}
	b, err := d.board(p)
	if err != nil {
		return Result{}, err
	}

	e, ok := b.Remove(req.ID)
	if !ok {
		return Result{Code: CodeNotable, Message: fmt.Sprintf("%d already absent.", req.ID)}, nil
	}
	return Result{Code: CodeOK, Message: fmt.Sprintf("Removed %d.", req.ID), Entry: &e}, nil
}

// GetRequest is the /get payload.
type GetRequest struct {
	ID int64 `json:"id" validate:"required"`
}

// Get returns ID's entry.
func (d *Dispatcher) Get(p Principal, req GetRequest) (Result, error) {
	if err := d.validatePayload(req); err != nil {
		return Result{}, err
	}
	b, err := d.board(p)
	if err != nil {
		return Result{}, err
	}

	e, ok := b.Get(req.ID)
	if !ok {
		return Result{Code: CodeNotFound, Message: "not found"}, nil
	}
	return Result{Code: CodeOK, Message: "ok", Entry: &e}, nil
}

// InfoRequest is the /info payload.
type InfoRequest struct {
	ID int64 `json:"id" validate:"required"`
}

// Info returns ID's entry together with its current rank.
func (d *Dispatcher) Info(p Principal, req InfoRequest) (Result, error) {
	if err := d.validatePayload(req); err != nil {
		return Result{}, err
	}
	b, err := d.board(p)
	if err != nil {
		return Result{}, err
	}

	e, rank, ok := b.EntryAndRank(req.ID)
	if !ok {
		return Result{Code: CodeNotFound, Message: "not found"}, nil
	}
	return Result{Code: CodeOK, Message: "ok", Entry: &e, Rank: &rank}, nil
}

// Board returns the board's cap, size, and worst entry.
func (d *Dispatcher) Board(p Principal) (BoardInfo, error) {
	b, err := d.board(p)
	if err != nil {
		return BoardInfo{}, err
	}

	info := BoardInfo{Size: b.Len()}
	if capVal, ok := b.GetCap(); ok {
		info.Cap = &capVal
	}
	if min := b.Bottom(1); len(min) == 1 {
		info.Min = &min[0]
	}
	return info, nil
}

// AtRankRequest is the /atrank payload.
type AtRankRequest struct {
	Rank int `json:"rank" validate:"required,min=1"`
}

// AtRank returns the entry at a 1-based rank.
func (d *Dispatcher) AtRank(p Principal, req AtRankRequest) (Result, error) {
	if err := d.validatePayload(req); err != nil {
		return Result{}, err
	}
	b, err := d.board(p)
	if err != nil {
		return Result{}, err
	}

	e, ok := b.AtRank(req.Rank)
	if !ok {
		return Result{Code: CodeNotFound, Message: "not found"}, nil
	}
	rank := req.Rank
	return Result{Code: CodeOK, Message: "ok", Entry: &e, Rank: &rank}, nil
}

// CountRequest is the /top and /bottom payload. NoCache is accepted for
// wire compatibility; this implementation has no read cache to bypass.
type CountRequest struct {
	Count   int  `json:"count" validate:"required,min=1"`
	NoCache bool `json:"no_cache"`
}

// Top returns up to Count entries starting at rank 1, best-first.
func (d *Dispatcher) Top(p Principal, req CountRequest) ([]RankedEntry, error) {
	if err := d.validatePayload(req); err != nil {
		return nil, err
	}
	b, err := d.board(p)
	if err != nil {
		return nil, err
	}
	return rankify(b, b.Top(req.Count)), nil
}

// Bottom returns up to Count entries starting at the worst rank,
// worst-first.
func (d *Dispatcher) Bottom(p Principal, req CountRequest) ([]RankedEntry, error) {
	if err := d.validatePayload(req); err != nil {
		return nil, err
	}
	b, err := d.board(p)
	if err != nil {
		return nil, err
	}
	return rankify(b, b.Bottom(req.Count)), nil
}

// NeighborRequest is the /after and /before payload.
type NeighborRequest struct {
	ID    int64 `json:"id" validate:"required"`
	Count int   `json:"count" validate:"required,min=1"`
}

// After returns up to Count worse-ranked neighbors of ID, nearest first.
func (d *Dispatcher) After(p Principal, req NeighborRequest) (Result, error) {
	if err := d.validatePayload(req); err != nil {
		return Result{}, err
	}
	b, err := d.board(p)
	if err != nil {
		return Result{}, err
	}

	es, ok := b.After(req.ID, req.Count)
	if !ok {
		return Result{Code: CodeNotFound, Message: "not found"}, nil
	}
	return Result{Code: CodeOK, Message: "ok", Entries: rankify(b, es)}, nil
}

// Before returns up to Count better-ranked neighbors of ID, nearest first.
func (d *Dispatcher) Before(p Principal, req NeighborRequest) (Result, error) {
	if err := d.validatePayload(req); err != nil {
		return Result{}, err
	}
	b, err := d.board(p)
	if err != nil {
		return Result{}, err
	}

	es, ok := b.Before(req.ID, req.Count)
	if !ok {
		return Result{Code: CodeNotFound, Message: "not found"}, nil
	}
	return Result{Code: CodeOK, Message: "ok", Entries: rankify(b, es)}, nil
}

// AroundRequest is the /around payload.
type AroundRequest struct {
	ID     int64 `json:"id" validate:"required"`
	Before int   `json:"before" validate:"min=0"`
	After  int   `json:"after" validate:"min=0"`
}

// Around returns up to Before better-ranked entries, ID itself, and up to
// After worse-ranked entries, in ascending rank order.
func (d *Dispatcher) Around(p Principal, req AroundRequest) (Result, error) {
	if err := d.validatePayload(req); err != nil {
		return Result{}, err
	}
	b, err := d.board(p)
	if err != nil {
		return Result{}, err
	}

	es, ok := b.Around(req.ID, req.Before, req.After)
	if !ok {
		return Result{Code: CodeNotFound, Message: "not found"}, nil
	}
	return Result{Code: CodeOK, Message: "ok", Entries: rankify(b, es)}, nil
}

// RangeRequest is the /range payload.
type RangeRequest struct {
	Start int `json:"start" validate:"required,min=1"`
	End   int `json:"end" validate:"required,min=1"`
}

// Range returns the entries whose 1-based rank falls in [Start, End].
func (d *Dispatcher) Range(p Principal, req RangeRequest) ([]RankedEntry, error) {
	if err := d.validatePayload(req); err != nil {
		return nil, err
	}
	b, err := d.board(p)
	if err != nil {
		return nil, err
	}
	return rankify(b, b.Range(req.Start, req.End)), nil
}

// BatchItem is one element of a /batch request: an action tag paired with
// its JSON-encoded payload.
type BatchItem struct {
	ReqType Action          `json:"req_type"`
	Payload json.RawMessage `json:"payload"`
}

// Dispatch decodes raw into the request type ReqType expects and invokes
// the matching operation, returning whichever result shape that operation
// produces (Result, BoardInfo, or []RankedEntry) as an untyped value for
// the adapter to marshal. This is what /batch loops over per item; the
// single-endpoint HTTP handlers call the typed methods directly.
func (d *Dispatcher) Dispatch(p Principal, action Action, raw json.RawMessage) (any, error) {
	switch action {
	case ActionUpdate:
		var req UpdateRequest
		if err := unmarshalPayload(raw, &req); err != nil {
			return nil, err
		}
		return d.Update(p, req)
	case ActionRemove:
		var req RemoveRequest
		if err := unmarshalPayload(raw, &req); err != nil {
			return nil, err
		}
		return d.Remove(p, req)
	case ActionGet:
		var req GetRequest
		if err := unmarshalPayload(raw, &req); err != nil {
			return nil, err
		}
		return d.Get(p, req)
	case ActionInfo:
		var req InfoRequest
		if err := unmarshalPayload(raw, &req); err != nil {
			return nil, err
		}
		return d.Info(p, req)
	case ActionBoard:
		return d.Board(p)
	case ActionAtRank:
		var req AtRankRequest
		if err := unmarshalPayload(raw, &req); err != nil {
			return nil, err
		}
		return d.AtRank(p, req)
	case ActionTop:
		var req CountRequest
		if err := unmarshalPayload(raw, &req); err != nil {
			return nil, err
		}
		return d.Top(p, req)
	case ActionBottom:
		var req CountRequest
		if err := unmarshalPayload(raw, &req); err != nil {
			return nil, err
		}
		return d.Bottom(p, req)
	case ActionAfter:
		var req NeighborRequest
		if err := unmarshalPayload(raw, &req); err != nil {
			return nil, err
		}
		return d.After(p, req)
	case ActionBefore:
		var req NeighborRequest
		if err := unmarshalPayload(raw, &req); err != nil {
			return nil, err
		}
		return d.Before(p, req)
	case ActionAround:
		var req AroundRequest
		if err := unmarshalPayload(raw, &req); err != nil {
			return nil, err
		}
		return d.Around(p, req)
	case ActionRange:
		var req RangeRequest
		if err := unmarshalPayload(raw, &req); err != nil {
			return nil, err
		}
		return d.Range(p, req)
	default:
		return nil, fmt.Errorf("%w: unknown action %q", apperr.ErrMalformed, action)
	}
}

func unmarshalPayload(raw json.RawMessage, v any) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %s", apperr.ErrMalformed, err)
	}
	return nil
}
