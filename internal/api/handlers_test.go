package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/vocab-api/internal/api/shared"
	"github.com/phrazzld/vocab-api/internal/domain"
	"github.com/phrazzld/vocab-api/internal/domain/srs"
	"github.com/phrazzld/vocab-api/internal/platform/logger"
	"github.com/phrazzld/vocab-api/internal/service/study"
	"github.com/phrazzld/vocab-api/internal/store"
	"github.com/phrazzld/vocab-api/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeValidator struct {
	fn  func(vc domain.ValidationContext) (domain.Verdict, error)
	got domain.ValidationContext
}

func (f *fakeValidator) Validate(_ context.Context, vc domain.ValidationContext) (domain.Verdict, error) {
	f.got = vc
	return f.fn(vc)
}

type fakeStudy struct {
	recordFn func(learnerID, cardID uuid.UUID, a srs.Attempt) (*domain.CardReviewState, error)
	selectFn func(learnerID uuid.UUID, size int, f domain.SessionFilters) (domain.SessionSelection, error)
}

func (f *fakeStudy) RecordAttempt(
	_ context.Context,
	learnerID, cardID uuid.UUID,
	a srs.Attempt,
) (*domain.CardReviewState, error) {
	return f.recordFn(learnerID, cardID, a)
}

func (f *fakeStudy) SelectSession(
	_ context.Context,
	learnerID uuid.UUID,
	size int,
	filters domain.SessionFilters,
) (domain.SessionSelection, error) {
	return f.selectFn(learnerID, size, filters)
}

type fakeCache struct {
	stats      validation.Stats
	statsErr   error
	purgeAge   *time.Duration
	purgeCalls int
	removed    int64
	purgeErr   error
	auditSize  int
	report     validation.QualityReport
	auditErr   error
}

func (f *fakeCache) Stats(context.Context) (validation.Stats, error) { return f.stats, f.statsErr }

func (f *fakeCache) Purge(_ context.Context, olderThan *time.Duration) (int64, error) {
	f.purgeCalls++
	f.purgeAge = olderThan
	return f.removed, f.purgeErr
}

func (f *fakeCache) Audit(_ context.Context, n int) (validation.QualityReport, error) {
	f.auditSize = n
	return f.report, f.auditErr
}

func newTestRouter(t *testing.T, v AnswerValidator, s StudyService, c CacheManager) http.Handler {
	t.Helper()
	log, _ := logger.GetTestLogger(t)

	r := chi.NewRouter()
	if v != nil {
		r.Post("/api/validate", NewValidationHandler(v, log).Validate)
	}
	if s != nil {
		h := NewStudyHandler(s, log)
		r.Post("/api/learners/{learnerID}/cards/{cardID}/attempts", h.RecordAttempt)
		r.Get("/api/learners/{learnerID}/session", h.SelectSession)
	}
	if c != nil {
		h := NewCacheHandler(c, log)
		r.Get("/api/cache/stats", h.Stats)
		r.Post("/api/cache/purge", h.Purge)
		r.Post("/api/cache/audit", h.Audit)
	}
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body shared.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error
}

func TestValidateHandler(t *testing.T) {
	t.Run("returns verdict", func(t *testing.T) {
		v := &fakeValidator{fn: func(domain.ValidationContext) (domain.Verdict, error) {
			return domain.Verdict{IsCorrect: true, Confidence: 1, IsMeaningful: true, Source: domain.VerdictSourceExact}, nil
		}}
		w := do(t, newTestRouter(t, v, nil, nil), http.MethodPost, "/api/validate",
			`{"learner_answer":"Fast","reference_answer":"fast","question_kind":"definition","study_mode":"recall","word":"quick","context":"a quick fox"}`)

		require.Equal(t, http.StatusOK, w.Code)
		var verdict domain.Verdict
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &verdict))
		assert.True(t, verdict.IsCorrect)
		assert.Equal(t, string(domain.VerdictSourceExact), w.Header().Get(VerdictSourceHeader))
		assert.NotContains(t, w.Body.String(), `"source"`)
		assert.Equal(t, domain.ValidationContext{
			LearnerAnswer:   "Fast",
			ReferenceAnswer: "fast",
			QuestionKind:    "definition",
			StudyMode:       "recall",
			Word:            "quick",
			FreeTextContext: "a quick fox",
		}, v.got)
	})

	t.Run("judge unavailable", func(t *testing.T) {
		v := &fakeValidator{fn: func(domain.ValidationContext) (domain.Verdict, error) {
			return domain.Verdict{}, fmt.Errorf("%w: judge failed after 3 attempts", validation.ErrValidationUnavailable)
		}}
		w := do(t, newTestRouter(t, v, nil, nil), http.MethodPost, "/api/validate",
			`{"learner_answer":"swift","reference_answer":"fast"}`)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "Answer validation is temporarily unavailable", errorBody(t, w))
	})

	t.Run("bad bodies", func(t *testing.T) {
		v := &fakeValidator{fn: func(domain.ValidationContext) (domain.Verdict, error) {
			t.Fatal("validator must not be called")
			return domain.Verdict{}, nil
		}}
		h := newTestRouter(t, v, nil, nil)

		tests := []struct {
			name string
			body string
			msg  string
		}{
			{"empty", "", "Request body is required"},
			{"malformed", `{"learner_answer":`, "Invalid request"},
			{"unknown field", `{"answer":"x"}`, "Invalid request"},
			{"too long", `{"question_kind":"` + strings.Repeat("k", 65) + `"}`, "Invalid question_kind: too large"},
		}
		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				w := do(t, h, http.MethodPost, "/api/validate", tc.body)
				assert.Equal(t, http.StatusBadRequest, w.Code)
				assert.Equal(t, tc.msg, errorBody(t, w))
			})
		}
	})
}

func TestRecordAttemptHandler(t *testing.T) {
	learnerID := uuid.New()
	cardID := uuid.New()
	path := fmt.Sprintf("/api/learners/%s/cards/%s/attempts", learnerID, cardID)
	now := time.Date(2026, 4, 10, 9, 0, 0, 0, time.UTC)

	t.Run("records attempt", func(t *testing.T) {
		var got srs.Attempt
		s := &fakeStudy{recordFn: func(l, c uuid.UUID, a srs.Attempt) (*domain.CardReviewState, error) {
			assert.Equal(t, learnerID, l)
			assert.Equal(t, cardID, c)
			got = a
			return &domain.CardReviewState{
				LearnerID:    l,
				CardID:       c,
				ReviewCount:  1,
				Difficulty:   domain.DifficultyEasy,
				MasteryLevel: 0.1,
				NextReviewAt: now.Add(24 * time.Hour),
				CreatedAt:    now,
				UpdatedAt:    now,
			}, nil
		}}
		w := do(t, newTestRouter(t, nil, s, nil), http.MethodPost, path,
			`{"is_correct":true,"confidence":1,"hints_used":0,"response_time_ms":1500,"user_confidence":4}`)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, srs.Attempt{
			IsCorrect:      true,
			Confidence:     1,
			ResponseTime:   1500 * time.Millisecond,
			UserConfidence: 4,
		}, got)

		var state domain.CardReviewState
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
		assert.Equal(t, 1, state.ReviewCount)
		assert.Equal(t, domain.DifficultyEasy, state.Difficulty)

		var body struct {
			LearningState domain.LearningState `json:"learning_state"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, domain.StateLearning, body.LearningState)
	})

	tests := []struct {
		name   string
		path   string
		body   string
		err    error
		status int
	}{
		{"invalid learner id", "/api/learners/nope/cards/" + cardID.String() + "/attempts", `{"is_correct":true,"confidence":1}`, nil, http.StatusBadRequest},
		{"nil card id", fmt.Sprintf("/api/learners/%s/cards/%s/attempts", learnerID, uuid.Nil), `{"is_correct":true,"confidence":1}`, nil, http.StatusBadRequest},
		{"missing is_correct", path, `{"confidence":1}`, nil, http.StatusBadRequest},
		{"confidence out of range", path, `{"is_correct":true,"confidence":1.5}`, nil, http.StatusBadRequest},
		{"negative response time", path, `{"is_correct":true,"confidence":1,"response_time_ms":-1}`, nil, http.StatusBadRequest},
		{"response time beyond a day", path, `{"is_correct":true,"confidence":1,"response_time_ms":86400001}`, nil, http.StatusBadRequest},
		{"response time overflowing a duration", path, `{"is_correct":true,"confidence":1,"response_time_ms":9223372036854775807}`, nil, http.StatusBadRequest},
		{"too many hints", path, `{"is_correct":true,"confidence":1,"hints_used":1001}`, nil, http.StatusBadRequest},
		{"user confidence out of range", path, `{"is_correct":true,"confidence":1,"user_confidence":6}`, nil, http.StatusBadRequest},
		{"unknown card", path, `{"is_correct":true,"confidence":1}`, study.ErrCardNotFound, http.StatusNotFound},
		{"invalid attempt", path, `{"is_correct":true,"confidence":1}`, study.ErrInvalidAttempt, http.StatusBadRequest},
		{"store down", path, `{"is_correct":true,"confidence":1}`, study.NewRecordAttemptError("failed", store.ErrUnavailable), http.StatusServiceUnavailable},
		{"internal", path, `{"is_correct":true,"confidence":1}`, errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := &fakeStudy{recordFn: func(uuid.UUID, uuid.UUID, srs.Attempt) (*domain.CardReviewState, error) {
				if tc.err == nil {
					t.Fatal("service must not be called")
				}
				return nil, tc.err
			}}
			w := do(t, newTestRouter(t, nil, s, nil), http.MethodPost, tc.path, tc.body)
			assert.Equal(t, tc.status, w.Code)
		})
	}
}

func TestSelectSessionHandler(t *testing.T) {
	learnerID := uuid.New()
	base := fmt.Sprintf("/api/learners/%s/session", learnerID)

	t.Run("defaults and filters", func(t *testing.T) {
		var gotSize int
		var gotFilters domain.SessionFilters
		s := &fakeStudy{selectFn: func(l uuid.UUID, size int, f domain.SessionFilters) (domain.SessionSelection, error) {
			gotSize, gotFilters = size, f
			return domain.SessionSelection{TargetSize: size, Source: domain.SessionSourcePool}, nil
		}}
		h := newTestRouter(t, nil, s, nil)

		w := do(t, h, http.MethodGet, base, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, DefaultSessionSize, gotSize)
		assert.Equal(t, domain.SessionFilters{}, gotFilters)
		assert.Contains(t, w.Body.String(), `"cards":[]`)

		w = do(t, h, http.MethodGet, base+"?size=5&topic=%20Travel%20&level=b1", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 5, gotSize)
		assert.Equal(t, domain.SessionFilters{Topic: "Travel", Level: domain.LevelB1}, gotFilters)
	})

	t.Run("bad query", func(t *testing.T) {
		s := &fakeStudy{selectFn: func(uuid.UUID, int, domain.SessionFilters) (domain.SessionSelection, error) {
			t.Fatal("service must not be called")
			return domain.SessionSelection{}, nil
		}}
		h := newTestRouter(t, nil, s, nil)

		assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, base+"?size=many", "").Code)
		w := do(t, h, http.MethodGet, base+"?level=Z9", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, errorBody(t, w), "Invalid level")
	})

	t.Run("service error", func(t *testing.T) {
		s := &fakeStudy{selectFn: func(uuid.UUID, int, domain.SessionFilters) (domain.SessionSelection, error) {
			return domain.SessionSelection{}, study.NewSelectSessionError("failed to list candidates", errors.New("db"))
		}}
		w := do(t, newTestRouter(t, nil, s, nil), http.MethodGet, base, "")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "An unexpected error occurred", errorBody(t, w))
	})
}

func TestCacheHandlers(t *testing.T) {
	t.Run("stats", func(t *testing.T) {
		c := &fakeCache{stats: validation.Stats{TotalRequests: 4, ExactMatches: 1, DurableCacheSize: 9}}
		w := do(t, newTestRouter(t, nil, nil, c), http.MethodGet, "/api/cache/stats", "")

		require.Equal(t, http.StatusOK, w.Code)
		var got validation.Stats
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, c.stats, got)
	})

	t.Run("stats store down", func(t *testing.T) {
		c := &fakeCache{statsErr: store.NewStoreError("validation_cache", "count", "failed", store.ErrUnavailable)}
		w := do(t, newTestRouter(t, nil, nil, c), http.MethodGet, "/api/cache/stats", "")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("purge all", func(t *testing.T) {
		c := &fakeCache{removed: 7}
		w := do(t, newTestRouter(t, nil, nil, c), http.MethodPost, "/api/cache/purge", "")

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"removed":7}`, w.Body.String())
		assert.Nil(t, c.purgeAge)
	})

	t.Run("purge older than", func(t *testing.T) {
		c := &fakeCache{removed: 2}
		w := do(t, newTestRouter(t, nil, nil, c), http.MethodPost, "/api/cache/purge", `{"older_than_hours":1.5}`)

		require.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, c.purgeAge)
		assert.Equal(t, 90*time.Minute, *c.purgeAge)
	})

	purgeBounds := []struct {
		name   string
		body   string
		status int
	}{
		{"negative age", `{"older_than_hours":-1}`, http.StatusBadRequest},
		{"age beyond ten years", `{"older_than_hours":87600.5}`, http.StatusBadRequest},
		{"age overflowing a duration", `{"older_than_hours":1e300}`, http.StatusBadRequest},
		{"ten years", `{"older_than_hours":87600}`, http.StatusOK},
	}
	for _, tc := range purgeBounds {
		t.Run("purge "+tc.name, func(t *testing.T) {
			c := &fakeCache{}
			w := do(t, newTestRouter(t, nil, nil, c), http.MethodPost, "/api/cache/purge", tc.body)
			assert.Equal(t, tc.status, w.Code)
			if tc.status != http.StatusOK {
				assert.Zero(t, c.purgeCalls)
				return
			}
			require.NotNil(t, c.purgeAge)
			assert.Equal(t, 87600*time.Hour, *c.purgeAge)
		})
	}

	t.Run("audit", func(t *testing.T) {
		c := &fakeCache{report: validation.QualityReport{EntriesChecked: 12, Score: 0.8, Recommendations: []string{}}}
		h := newTestRouter(t, nil, nil, c)

		w := do(t, h, http.MethodPost, "/api/cache/audit", `{"sample_size":12}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 12, c.auditSize)
		var got validation.QualityReport
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, c.report, got)

		w = do(t, h, http.MethodPost, "/api/cache/audit", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, DefaultAuditSampleSize, c.auditSize)

		w = do(t, h, http.MethodPost, "/api/cache/audit", `{"sample_size":20000}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

type fakePinger struct{ err error }

func (f fakePinger) PingContext(context.Context) error { return f.err }

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name   string
		db     Pinger
		status int
		body   string
	}{
		{"no db", nil, http.StatusOK, `{"status":"ok"}`},
		{"db up", fakePinger{}, http.StatusOK, `{"status":"ok"}`},
		{"db down", fakePinger{err: errors.New("refused")}, http.StatusServiceUnavailable, `{"status":"unavailable"}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			NewHealthHandler(tc.db, nil).Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))
			assert.Equal(t, tc.status, w.Code)
			assert.JSONEq(t, tc.body, w.Body.String())
		})
	}
}

func TestConstructorsPanicOnNil(t *testing.T) {
	assert.Panics(t, func() { NewValidationHandler(nil, nil) })
	assert.Panics(t, func() { NewStudyHandler(nil, nil) })
	assert.Panics(t, func() { NewCacheHandler(nil, nil) })
}
