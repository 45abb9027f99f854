package httpx

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-study/internal/apperr"
)

type createReq struct {
	Title    string `json:"title" validate:"required"`
	Subject  string `json:"subject" validate:"required"`
	Duration *int   `json:"duration" validate:"omitempty,gt=0"`
}

func newJSONRequest(body, contentType string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(body))
	if contentType != "" {
		r.Header.Set("Content-Type", contentType)
	}
	return r
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		ct       string
		wantKind error
		wantMsg  string
	}{
		{"ok", `{"title":"Essay","subject":"History"}`, "application/json", nil, ""},
		{"ok charset", `{"title":"Essay","subject":"History"}`, "application/json; charset=utf-8", nil, ""},
		{"ok without content type", `{"title":"Essay","subject":"History"}`, "", nil, ""},
		{"form body", `title=Essay`, "application/x-www-form-urlencoded", apperr.ErrUnsupportedMedia, "Expected JSON data"},
		{"broken json", `{"title":`, "application/json", apperr.ErrValidation, "Invalid JSON payload"},
		{"missing fields", `{"title":""}`, "application/json", apperr.ErrValidation, "Missing required fields: title, subject"},
		{"non positive", `{"title":"a","subject":"b","duration":0}`, "application/json", apperr.ErrValidation, "duration must be greater than 0"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var dst createReq
			err := DecodeJSON(newJSONRequest(tc.body, tc.ct), &dst)
			if tc.wantKind == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tc.wantKind)
			assert.Equal(t, tc.wantMsg, err.Error())
		})
	}
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, StatusFor(apperr.Validation("x")))
	assert.Equal(t, http.StatusUnsupportedMediaType, StatusFor(apperr.New(apperr.ErrUnsupportedMedia, "x")))
	assert.Equal(t, http.StatusUnauthorized, StatusFor(apperr.Unauthorized("x")))
	assert.Equal(t, http.StatusNotFound, StatusFor(apperr.NotFound("x")))
	assert.Equal(t, http.StatusConflict, StatusFor(apperr.Conflict("x")))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(apperr.Upstream("x")))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(errors.New("pq: boom")))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(apperr.Internal("select tasks", errors.New("pq: boom"))))
}

func TestWriteError_HidesInternalDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, zap.NewNop().Sugar(), errors.New("pq: connection refused"), "Failed to create goal")

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Failed to create goal", body.Error)
}

func TestWriteError_ClassifiedMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, zap.NewNop().Sugar(), apperr.NotFound("Task not found"), "fallback")

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Task not found"}`, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestWriteError_UpstreamKeepsMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, zap.NewNop().Sugar(), apperr.Upstream("Failed to fetch categories"), "fallback")

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to fetch categories"}`, rec.Body.String())
}

func TestPathID(t *testing.T) {
	mux := http.NewServeMux()
	var got int64
	var ok bool
	mux.HandleFunc("GET /task/{id}", func(w http.ResponseWriter, r *http.Request) {
		got, ok = PathID(r, "id")
	})

	mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/task/42", nil))
	assert.True(t, ok)
	assert.Equal(t, int64(42), got)

	mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/task/abc", nil))
	assert.False(t, ok)

	mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/task/-3", nil))
	assert.False(t, ok)
}

func TestWriteError_InternalUsesFallback(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, zap.NewNop().Sugar(), apperr.Internal("insert session", errors.New("pq: integer out of range")), "Failed to record session")

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to record session"}`, rec.Body.String())
}
