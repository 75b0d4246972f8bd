package dispatcher

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/edirooss/leaderboard/internal/apperr"
	"github.com/edirooss/leaderboard/internal/registry"
)

func newTestDispatcher(t *testing.T) *Dispatcher {
	t.Helper()
	dir := t.TempDir()
	reg, err := registry.Load(filepath.Join(dir, "boards.json"), dir, nil)
	require.NoError(t, err)

	ok, err := reg.CreateBoard("main")
	require.NoError(t, err)
	require.True(t, ok)

	return New(reg, nil)
}

func writer() Principal { return Principal{Board: "main", Write: true} }
func reader() Principal { return Principal{Board: "main", Write: false} }

func TestUpdateInsertsThenReportsUpdated(t *testing.T) {
	d := newTestDispatcher(t)

	res, err := d.Update(writer(), UpdateRequest{ID: 1, Value: 10})
	require.NoError(t, err)
	require.Equal(t, CodeNotable, res.Code)

	res, err = d.Update(writer(), UpdateRequest{ID: 1, Value: 20})
	require.NoError(t, err)
	require.Equal(t, CodeOK, res.Code)
}

func TestUpdateRejectsReadOnlyKey(t *testing.T) {
	d := newTestDispatcher(t)

	_, err := d.Update(reader(), UpdateRequest{ID: 1, Value: 10})
	require.ErrorIs(t, err, apperr.ErrAuth)
}

func TestUpdateRejectsMalformedPayload(t *testing.T) {
	d := newTestDispatcher(t)

	_, err := d.Update(writer(), UpdateRequest{ID: 0, Value: 10})
	require.ErrorIs(t, err, apperr.ErrMalformed)
}

func TestUpdateUnknownBoard(t *testing.T) {
	d := newTestDispatcher(t)

	_, err := d.Update(Principal{Board: "nope", Write: true}, UpdateRequest{ID: 1, Value: 10})
	require.ErrorIs(t, err, apperr.ErrUnknownBoard)
}

func TestRemoveAbsentKeyIsNotableNotFailure(t *testing.T) {
	d := newTestDispatcher(t)

	res, err := d.Remove(writer(), RemoveRequest{ID: 99})
	require.NoError(t, err)
	require.Equal(t, CodeNotable, res.Code)
}

func TestRemoveRejectsReadOnlyKey(t *testing.T) {
	d := newTestDispatcher(t)
	_, err := d.Update(writer(), UpdateRequest{ID: 1, Value: 10})
	require.NoError(t, err)

	_, err = d.Remove(reader(), RemoveRequest{ID: 1})
	require.ErrorIs(t, err, apperr.ErrAuth)
}

func TestGetAndInfo(t *testing.T) {
	d := newTestDispatcher(t)
	_, err := d.Update(writer(), UpdateRequest{ID: 1, Value: 10})
	require.NoError(t, err)

	res, err := d.Get(reader(), GetRequest{ID: 1})
	require.NoError(t, err)
	require.Equal(t, CodeOK, res.Code)
	require.Equal(t, float64(10), res.Entry.Score)

	res, err = d.Info(reader(), InfoRequest{ID: 1})
	require.NoError(t, err)
	require.Equal(t, CodeOK, res.Code)
	require.Equal(t, 1, *res.Rank)

	res, err = d.Get(reader(), GetRequest{ID: 404})
	require.NoError(t, err)
	require.Equal(t, CodeNotFound, res.Code)
}

func TestBoardInfo(t *testing.T) {
	d := newTestDispatcher(t)
	for i := int64(1); i <= 3; i++ {
		_, err := d.Update(writer(), UpdateRequest{ID: i, Value: float64(i * 10)})
		require.NoError(t, err)
	}

	info, err := d.Board(reader())
	require.NoError(t, err)
	require.Equal(t, 3, info.Size)
	require.Nil(t, info.Cap)
	require.NotNil(t, info.Min)
	require.Equal(t, int64(1), info.Min.Key)
}

func TestAtRankTopBottomRange(t *testing.T) {
	d := newTestDispatcher(t)
	for i := int64(1); i <= 5; i++ {
		_, err := d.Update(writer(), UpdateRequest{ID: i, Value: float64(i * 10)})
		require.NoError(t, err)
	}

	res, err := d.AtRank(reader(), AtRankRequest{Rank: 1})
	require.NoError(t, err)
	require.Equal(t, int64(5), res.Entry.Key)

	top, err := d.Top(reader(), CountRequest{Count: 2})
	require.NoError(t, err)
	require.Equal(t, []int64{5, 4}, rankedKeys(top))

	bottom, err := d.Bottom(reader(), CountRequest{Count: 2})
	require.NoError(t, err)
	require.Equal(t, []int64{1, 2}, rankedKeys(bottom))

	rng, err := d.Range(reader(), RangeRequest{Start: 2, End: 4})
	require.NoError(t, err)
	require.Equal(t, []int64{4, 3, 2}, rankedKeys(rng))
}

func TestAfterBeforeAround(t *testing.T) {
	d := newTestDispatcher(t)
	for i := int64(1); i <= 5; i++ {
		_, err := d.Update(writer(), UpdateRequest{ID: i, Value: float64(i * 10)})
		require.NoError(t, err)
	}

	res, err := d.After(reader(), NeighborRequest{ID: 3, Count: 2})
	require.NoError(t, err)
	require.Equal(t, []int64{2, 1}, rankedKeys(res.Entries))

	res, err = d.Before(reader(), NeighborRequest{ID: 3, Count: 2})
	require.NoError(t, err)
	require.Equal(t, []int64{4, 5}, rankedKeys(res.Entries))

	res, err = d.Around(reader(), AroundRequest{ID: 3, Before: 1, After: 1})
	require.NoError(t, err)
	require.Equal(t, []int64{4, 3, 2}, rankedKeys(res.Entries))
}

func TestDispatchBatchLikeUsage(t *testing.T) {
	d := newTestDispatcher(t)

	out, err := d.Dispatch(writer(), ActionUpdate, []byte(`{"id":1,"value":10}`))
	require.NoError(t, err)
	res, ok := out.(Result)
	require.True(t, ok)
	require.Equal(t, CodeNotable, res.Code)

	out, err = d.Dispatch(reader(), ActionGet, []byte(`{"id":1}`))
	require.NoError(t, err)
	res, ok = out.(Result)
	require.True(t, ok)
	require.Equal(t, CodeOK, res.Code)

	_, err = d.Dispatch(writer(), "bogus", []byte(`{}`))
	require.ErrorIs(t, err, apperr.ErrMalformed)
}

func rankedKeys(es []RankedEntry) []int64 {
	out := make([]int64, len(es))
	for i, e := range es {
		out[i] = e.Entry.Key
	}
	return out
}
