package resp

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phonebook/internal/pkg/errs"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRespondSuccess(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	RespondSuccess(rec, httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"status": "ok"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	body := decode(t, rec)
	assert.EqualValues(t, 0, body["code"])
	assert.Equal(t, "success", body["message"])
	assert.Equal(t, map[string]any{"status": "ok"}, body["data"])
}

func TestRespondError_UsesStatusAndCode(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	RespondError(rec, httptest.NewRequest(http.MethodGet, "/", nil), errs.NewError(errs.ErrContactNotFound))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decode(t, rec)
	assert.EqualValues(t, errs.ErrContactNotFound, body["code"])
	assert.NotContains(t, body, "data")
}

func TestRespondError_IncludesFields(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	err := errs.NewError(errs.ErrValidationFailed).WithFields(map[string]string{"name": "Name is required"})
	RespondError(rec, httptest.NewRequest(http.MethodPost, "/", nil), err)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, map[string]any{"fields": map[string]any{"name": "Name is required"}}, body["data"])
}

func TestRespondError_NilIsUnknown(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	RespondError(rec, httptest.NewRequest(http.MethodGet, "/", nil), nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.EqualValues(t, errs.ErrUnknown, decode(t, rec)["code"])
}
