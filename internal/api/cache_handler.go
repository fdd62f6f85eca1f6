package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/vocab-api/internal/api/shared"
	"github.com/phrazzld/vocab-api/internal/platform/logger"
	"github.com/phrazzld/vocab-api/internal/validation"
)

// CacheManager exposes the validation cache maintenance operations.
// validation.Service implements it.
type CacheManager interface {
	Stats(ctx context.Context) (validation.Stats, error)
	Purge(ctx context.Context, olderThan *time.Duration) (int64, error)
	Audit(ctx context.Context, sampleSize int) (validation.QualityReport, error)
}

// CacheHandler serves cache statistics, purge and audit.
type CacheHandler struct {
	cache  CacheManager
	logger *slog.Logger
}

// NewCacheHandler creates a CacheHandler.
func NewCacheHandler(cache CacheManager, logger *slog.Logger) *CacheHandler {
	if cache == nil {
		panic("cache manager cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CacheHandler{
		cache:  cache,
		logger: logger.With(slog.String("component", "cache_handler")),
	}
}

// Stats handles GET /api/cache/stats.
func (h *CacheHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.cache.Stats(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, stats)
}

// Purge handles POST /api/cache/purge. An empty body purges everything.
func (h *CacheHandler) Purge(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req PurgeRequest
	if err := decodeAndValidate(w, r, &req); err != nil && !errors.Is(err, shared.ErrEmptyBody) {
		HandleAPIError(w, r, err, "")
		return
	}

	removed, err := h.cache.Purge(r.Context(), req.OlderThan())
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Info("validation cache purged",
		slog.Bool("all", req.OlderThanHours == nil),
		slog.Int64("removed", removed))
	shared.RespondWithJSON(w, r, http.StatusOK, PurgeResponse{Removed: removed})
}

// Audit handles POST /api/cache/audit. An empty body or a zero sample size
// audits DefaultAuditSampleSize entries.
func (h *CacheHandler) Audit(w http.ResponseWriter, r *http.Request) {
	var req AuditRequest
	if err := decodeAndValidate(w, r, &req); err != nil && !errors.Is(err, shared.ErrEmptyBody) {
		HandleAPIError(w, r, err, "")
		return
	}
	if req.SampleSize == 0 {
		req.SampleSize = DefaultAuditSampleSize
	}

	report, err := h.cache.Audit(r.Context(), req.SampleSize)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, report)
}
