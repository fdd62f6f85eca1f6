package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/phrazzld/vocab-api/internal/api/shared"
	"github.com/phrazzld/vocab-api/internal/domain"
	"github.com/phrazzld/vocab-api/internal/service/study"
	"github.com/phrazzld/vocab-api/internal/store"
	"github.com/phrazzld/vocab-api/internal/validation"
	"github.com/stretchr/testify/assert"
)

func TestMapErrorToStatusCode(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation unavailable", fmt.Errorf("%w: judge", validation.ErrValidationUnavailable), http.StatusServiceUnavailable},
		{"store unavailable", store.NewStoreError("review_state", "get", "failed", store.ErrUnavailable), http.StatusServiceUnavailable},
		{"card not found", study.ErrCardNotFound, http.StatusNotFound},
		{"store card not found", store.ErrCardNotFound, http.StatusNotFound},
		{"duplicate", store.NewStoreError("review_state", "upsert", "failed", store.ErrDuplicate), http.StatusConflict},
		{"invalid attempt", fmt.Errorf("%w: confidence", study.ErrInvalidAttempt), http.StatusBadRequest},
		{"invalid level", fmt.Errorf("%w: Z9", domain.ErrInvalidLevel), http.StatusBadRequest},
		{"empty body", shared.ErrEmptyBody, http.StatusBadRequest},
		{"bad request", errBadRequest, http.StatusBadRequest},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
		{"transaction failed", store.ErrTransactionFailed, http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.status, MapErrorToStatusCode(tc.err))
		})
	}
}

func TestGetSafeErrorMessageDoesNotLeak(t *testing.T) {
	err := errors.New("pq: password authentication failed for user vocab at db.internal:5432")
	msg := GetSafeErrorMessage(err)
	assert.Equal(t, "An unexpected error occurred", msg)
	assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(nil))

	dup := store.NewStoreError("review_state", "upsert", `duplicate key value violates unique constraint "card_review_states_pkey"`, store.ErrDuplicate)
	assert.Equal(t, "Resource already exists", GetSafeErrorMessage(dup))
}

func TestSanitizeValidationError(t *testing.T) {
	err := shared.ValidateRequest(&RecordAttemptRequest{})
	assert.Equal(t, "Invalid is_correct: required field", SanitizeValidationError(err))
	assert.Equal(t, "Validation error", SanitizeValidationError(errors.New("plain")))
}
