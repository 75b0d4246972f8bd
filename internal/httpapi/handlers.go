package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edirooss/leaderboard/internal/apperr"
	"github.com/edirooss/leaderboard/internal/dispatcher"
	"github.com/edirooss/leaderboard/internal/httpapi/middleware"
)

// writeError maps a core error to the HTTP status the wire protocol
// names: malformed payloads 400, insufficient write capability 403,
// anything else 500. apperr.ErrUnknownBoard (a key bound to a board the
// registry no longer has) is an internal consistency failure, not a
// caller mistake, so it falls through to 500 too.
func writeError(c *gin.Context, err error) {
	_ = c.Error(err)
	switch {
	case errors.Is(err, apperr.ErrMalformed):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
	case errors.Is(err, apperr.ErrAuth):
		c.JSON(http.StatusForbidden, gin.H{"message": "write access required"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
	}
}

func bind[T any](c *gin.Context) (T, bool) {
	var req T
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, errors.Join(apperr.ErrMalformed, err))
		return req, false
	}
	return req, true
}

func handleUpdate(d *dispatcher.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, ok := bind[dispatcher.UpdateRequest](c)
		if !ok {
			return
		}
		res, err := d.Update(middleware.Principal(c), req)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

func handleRemove(d *dispatcher.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, ok := bind[dispatcher.RemoveRequest](c)
		if !ok {
			return
		}
		res, err := d.Remove(middleware.Principal(c), req)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

func handleGet(d *dispatcher.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, ok := bind[dispatcher.GetRequest](c)
		if !ok {
			return
		}
		res, err := d.Get(middleware.Principal(c), req)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

func handleInfo(d *dispatcher.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, ok := bind[dispatcher.InfoRequest](c)
		if !ok {
			return
		}
		res, err := d.Info(middleware.Principal(c), req)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

func handleBoard(d *dispatcher.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		info, err := d.Board(middleware.Principal(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, info)
	}
}

func handleAtRank(d *dispatcher.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, ok := bind[dispatcher.AtRankRequest](c)
		if !ok {
			return
		}
		res, err := d.AtRank(middleware.Principal(c), req)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

func handleTop(d *dispatcher.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, ok := bind[dispatcher.CountRequest](c)
		if !ok {
			return
		}
		entries, err := d.Top(middleware.Principal(c), req)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, entries)
	}
}

func handleBottom(d *dispatcher.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, ok := bind[dispatcher.CountRequest](c)
		if !ok {
			return
		}
		entries, err := d.Bottom(middleware.Principal(c), req)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, entries)
	}
}

func handleAfter(d *dispatcher.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, ok := bind[dispatcher.NeighborRequest](c)
		if !ok {
			return
		}
		res, err := d.After(middleware.Principal(c), req)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

func handleBefore(d *dispatcher.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, ok := bind[dispatcher.NeighborRequest](c)
		if !ok {
			return
		}
		res, err := d.Before(middleware.Principal(c), req)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

func handleAround(d *dispatcher.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, ok := bind[dispatcher.AroundRequest](c)
		if !ok {
			return
		}
		res, err := d.Around(middleware.Principal(c), req)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

func handleRange(d *dispatcher.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, ok := bind[dispatcher.RangeRequest](c)
		if !ok {
			return
		}
		entries, err := d.Range(middleware.Principal(c), req)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, entries)
	}
}

// handleBatch runs each item of a /batch request through Dispatch in
// order, collecting one response per item — a client-side loop over the
// other actions, not a Board/Dispatcher operation of its own.
func handleBatch(d *dispatcher.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, ok := bind[[]dispatcher.BatchItem](c)
		if !ok {
			return
		}

		p := middleware.Principal(c)
		out := make([]any, len(items))
		for i, item := range items {
			res, err := d.Dispatch(p, item.ReqType, item.Payload)
			if err != nil {
				out[i] = gin.H{"message": err.Error()}
				continue
			}
			out[i] = res
		}
		c.JSON(http.StatusOK, out)
	}
}
