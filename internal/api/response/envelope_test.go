package response_test

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bizdesk/bizdesk/internal/api/response"
)

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestSuccess(t *testing.T) {
	w := httptest.NewRecorder()
	response.Success(w, 200, map[string]string{"hello": "world"}, "req-1")

	assert.Equal(t, 200, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	body := decode(t, w)
	assert.Equal(t, map[string]any{"hello": "world"}, body["data"])
	assert.Nil(t, body["error"])

	meta := body["meta"].(map[string]any)
	assert.Equal(t, "req-1", meta["requestId"])
	assert.NotEmpty(t, meta["timestamp"])
}

func TestSuccessList(t *testing.T) {
	w := httptest.NewRecorder()
	response.SuccessList(w, 200, []string{"a", "b"}, 2, "req-1")

	body := decode(t, w)
	assert.Equal(t, []any{"a", "b"}, body["data"])

	meta := body["meta"].(map[string]any)
	assert.Equal(t, float64(2), meta["total"])
}

func TestErr(t *testing.T) {
	w := httptest.NewRecorder()
	response.Err(w, 404, "NOT_FOUND", "contact not found", "req-1")

	assert.Equal(t, 404, w.Code)

	body := decode(t, w)
	assert.Nil(t, body["data"])

	errObj := body["error"].(map[string]any)
	assert.Equal(t, "NOT_FOUND", errObj["code"])
	assert.Equal(t, "contact not found", errObj["message"])
	assert.NotContains(t, errObj, "details")
}

func TestErrWithDetails(t *testing.T) {
	w := httptest.NewRecorder()
	details := []map[string]string{{"field": "email", "message": "required"}}
	response.ErrWithDetails(w, 400, "VALIDATION_ERROR", "invalid request", details, "req-1")

	body := decode(t, w)
	errObj := body["error"].(map[string]any)
	assert.Equal(t, "VALIDATION_ERROR", errObj["code"])
	assert.Len(t, errObj["details"], 1)
}

func TestNewMeta_GeneratesRequestID(t *testing.T) {
	meta := response.NewMeta("")
	assert.NotEmpty(t, meta.RequestID)
}

func TestNoContent(t *testing.T) {
	w := httptest.NewRecorder()
	response.NoContent(w)

	assert.Equal(t, 204, w.Code)
	assert.Empty(t, w.Body.Bytes())
}
