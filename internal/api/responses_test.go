package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"crypto-trader/backend/internal/apperrors"
)

// newObservedLogger returns a logger whose output is captured for assertions.
func newObservedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, recorded := observer.New(zapcore.DebugLevel)
	return zap.New(core), recorded
}

// Every category must map to its exact status code, body shape and log
// severity. The body fields are a client compatibility contract.
func TestRespondWithErrorCategories(t *testing.T) {
	cases := []struct {
		name       string
		err        *apperrors.Error
		wantStatus int
		wantLevel  zapcore.Level
		wantBody   string
	}{
		{
			name:       "database",
			err:        apperrors.NewDatabase("connection pool exhausted", nil),
			wantStatus: http.StatusInternalServerError,
			wantLevel:  zapcore.ErrorLevel,
			wantBody:   `{"error":"Database error","message":"connection pool exhausted","details":null}`,
		},
		{
			name:       "authentication",
			err:        apperrors.NewAuthentication("token expired", nil),
			wantStatus: http.StatusUnauthorized,
			wantLevel:  zapcore.WarnLevel,
			wantBody:   `{"error":"Authentication error","message":"token expired","details":null}`,
		},
		{
			name:       "validation",
			err:        apperrors.NewValidation("bad field", nil),
			wantStatus: http.StatusUnprocessableEntity,
			wantLevel:  zapcore.InfoLevel,
			wantBody:   `{"error":"Validation error","message":"bad field","details":null}`,
		},
		{
			name:       "external service",
			err:        apperrors.NewExternalService("supabase", "timeout", nil),
			wantStatus: http.StatusServiceUnavailable,
			wantLevel:  zapcore.ErrorLevel,
			wantBody:   `{"error":"External service error","service":"supabase","message":"timeout","details":null}`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			logger, recorded := newObservedLogger()
			rr := httptest.NewRecorder()

			respondWithError(rr, logger, tc.err)

			assert.Equal(t, tc.wantStatus, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			assert.JSONEq(t, tc.wantBody, rr.Body.String())

			entries := recorded.All()
			require.Len(t, entries, 1)
			assert.Equal(t, tc.wantLevel, entries[0].Level)
		})
	}
}

func TestRespondWithErrorIncludesDetails(t *testing.T) {
	logger, _ := newObservedLogger()
	rr := httptest.NewRecorder()

	respondWithError(rr, logger, apperrors.NewValidation("bad field", map[string]any{"field": "amount"}))

	assert.JSONEq(t, `{"error":"Validation error","message":"bad field","details":{"field":"amount"}}`, rr.Body.String())
}

func TestRespondWithErrorUnwrapsErrors(t *testing.T) {
	logger, _ := newObservedLogger()
	rr := httptest.NewRecorder()

	wrapped := errors.Join(errors.New("outer"), apperrors.NewAuthentication("inner", nil))
	respondWithError(rr, logger, wrapped)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

// Unclassified faults produce the generic body. The underlying error must
// appear in the log, never in the response.
func TestRespondWithErrorFallback(t *testing.T) {
	logger, recorded := newObservedLogger()
	rr := httptest.NewRecorder()

	respondWithError(rr, logger, errors.New("pq: relation \"accounts\" does not exist"))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"Server error","message":"An unexpected error occurred"}`, rr.Body.String())
	assert.NotContains(t, rr.Body.String(), "accounts")

	entries := recorded.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Contains(t, fmt.Sprint(entries[0].ContextMap()["error"]), "accounts")
}

func TestRespondWithJSON(t *testing.T) {
	logger, _ := newObservedLogger()
	rr := httptest.NewRecorder()

	respondWithJSON(rr, logger, http.StatusCreated, StatusResponse{Status: "ok"})

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestRespondWithJSONMarshalFailure(t *testing.T) {
	logger, recorded := newObservedLogger()
	rr := httptest.NewRecorder()

	respondWithJSON(rr, logger, http.StatusOK, map[string]any{"bad": make(chan int)})

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	require.Len(t, recorded.All(), 1)
}
