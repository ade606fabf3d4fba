package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/vitrinaapp/vitrina-store/internal/errors"
)

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestJSON_SuccessFlagFollowsStatus(t *testing.T) {
	tests := []struct {
		status  int
		success bool
	}{
		{http.StatusOK, true},
		{http.StatusAccepted, true},
		{http.StatusNotFound, false},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		JSON(w, tt.status, map[string]string{"k": "v"}, nil)

		assert.Equal(t, tt.status, w.Code)
		assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
		env := decodeEnvelope(t, w)
		assert.Equal(t, tt.success, env.Success)
		assert.NotNil(t, env.Data)
	}
}

func TestHandleError_DomainErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", domainerrors.ValidationWithDetails("validation failed", map[string]string{"title": "is required"}), http.StatusBadRequest, "VALIDATION"},
		{"not found", domainerrors.NotFound("unknown action"), http.StatusNotFound, "NOT_FOUND"},
		{"not authenticated", domainerrors.NotAuthenticated("sign in"), http.StatusUnauthorized, "NOT_AUTHENTICATED"},
		{"backend", domainerrors.BackendRejected(errors.New("502"), "create collection"), http.StatusBadGateway, "BACKEND_REJECTED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			HandleError(w, tt.err, nil)

			assert.Equal(t, tt.status, w.Code)
			env := decodeEnvelope(t, w)
			assert.False(t, env.Success)
			assert.Equal(t, tt.code, env.Code)
			assert.NotEmpty(t, env.Error)
		})
	}
}

func TestHandleError_UnknownIsInternal(t *testing.T) {
	w := httptest.NewRecorder()

	HandleError(w, errors.New("disk on fire"), nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, "internal error", env.Error)
}

func TestError_Helpers(t *testing.T) {
	w := httptest.NewRecorder()
	Unauthorized(w, "missing token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "missing token", decodeEnvelope(t, w).Error)

	w = httptest.NewRecorder()
	NotFound(w, "nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
