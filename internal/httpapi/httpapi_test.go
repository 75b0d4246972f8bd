package httpapi_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/edirooss/leaderboard/internal/dispatcher"
	"github.com/edirooss/leaderboard/internal/httpapi"
	"github.com/edirooss/leaderboard/internal/registry"
)

func newTestEngine(t *testing.T) (http.Handler, string) {
	t.Helper()
	dir := t.TempDir()
	reg, err := registry.Load(filepath.Join(dir, "boards.json"), dir, nil)
	require.NoError(t, err)

	ok, err := reg.CreateBoard("main")
	require.NoError(t, err)
	require.True(t, ok)
	_, err = reg.CreateKey("writer-key", "main", true)
	require.NoError(t, err)
	_, err = reg.CreateKey("reader-key", "main", false)
	require.NoError(t, err)

	d := dispatcher.New(reg, nil)
	return httpapi.NewEngine(d, reg, zap.NewNop()), "writer-key"
}

func post(t *testing.T, h http.Handler, path, apiKey string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("x-api-key", apiKey)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestUpdateThenGetViaHTTP(t *testing.T) {
	h, key := newTestEngine(t)

	rec := post(t, h, "/update", key, map[string]any{"id": 1, "value": 10})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = post(t, h, "/get", key, map[string]any{"id": 1})
	require.Equal(t, http.StatusOK, rec.Code)

	var res dispatcher.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Equal(t, dispatcher.CodeOK, res.Code)
	require.Equal(t, float64(10), res.Entry.Score)
}

func TestMissingAPIKeyIs400(t *testing.T) {
	h, _ := newTestEngine(t)
	rec := post(t, h, "/get", "", map[string]any{"id": 1})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnknownAPIKeyIs401(t *testing.T) {
	h, _ := newTestEngine(t)
	rec := post(t, h, "/get", "does-not-exist", map[string]any{"id": 1})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestWriteOnReadOnlyKeyIs403(t *testing.T) {
	h, _ := newTestEngine(t)
	rec := post(t, h, "/update", "reader-key", map[string]any{"id": 1, "value": 10})
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestMalformedPayloadIs400(t *testing.T) {
	h, key := newTestEngine(t)
	req := httptest.NewRequest(http.MethodPost, "/update", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", key)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBatch(t *testing.T) {
	h, key := newTestEngine(t)

	batch := []dispatcher.BatchItem{
		{ReqType: dispatcher.ActionUpdate, Payload: json.RawMessage(`{"id":1,"value":10}`)},
		{ReqType: dispatcher.ActionGet, Payload: json.RawMessage(`{"id":1}`)},
	}
	rec := post(t, h, "/batch", key, batch)
	require.Equal(t, http.StatusOK, rec.Code)

	var out []json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out, 2)
}
