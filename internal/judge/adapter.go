package judge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/phrazzld/vocab-api/internal/domain"
	"github.com/phrazzld/vocab-api/internal/platform/logger"
	"github.com/sethvargo/go-retry"
)

// AdapterConfig holds the retry and verdict policy of an Adapter.
type AdapterConfig struct {
	// MaxAttempts is the total number of judge calls per evaluation, including the first.
	MaxAttempts int
	// BaseBackoff is the delay before the first retry; it doubles on each retry.
	BaseBackoff time.Duration
	// AttemptTimeout bounds each individual judge call.
	AttemptTimeout time.Duration
	// OverrideThreshold is the confidence at or above which a meaningful answer
	// judged incorrect is accepted anyway.
	OverrideThreshold float64
}

// DefaultAdapterConfig returns the standard policy: 3 attempts starting at 500ms
// backoff, 20s per attempt, override at 0.55.
func DefaultAdapterConfig() AdapterConfig {
	return AdapterConfig{
		MaxAttempts:       3,
		BaseBackoff:       500 * time.Millisecond,
		AttemptTimeout:    20 * time.Second,
		OverrideThreshold: 0.55,
	}
}

func (c AdapterConfig) withDefaults() AdapterConfig {
	d := DefaultAdapterConfig()
	if c.MaxAttempts < 1 {
		c.MaxAttempts = d.MaxAttempts
	}
	if c.BaseBackoff <= 0 {
		c.BaseBackoff = d.BaseBackoff
	}
	if c.AttemptTimeout <= 0 {
		c.AttemptTimeout = d.AttemptTimeout
	}
	if c.OverrideThreshold <= 0 || c.OverrideThreshold > 1 {
		c.OverrideThreshold = d.OverrideThreshold
	}
	return c
}

// Adapter turns raw judge results into verdicts.
type Adapter struct {
	judge  Judge
	config AdapterConfig
	logger *slog.Logger
}

// NewAdapter creates an Adapter around j. Zero config fields take their defaults.
func NewAdapter(j Judge, config AdapterConfig, logger *slog.Logger) *Adapter {
	if j == nil {
		panic("judge cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{
		judge:  j,
		config: config.withDefaults(),
		logger: logger.With(slog.String("component", "judge_adapter")),
	}
}

// Evaluate judges the context and applies the override policy.
//
// Transient failures are retried with jittered exponential backoff until
// MaxAttempts is reached; the error then wraps ErrUnavailable. Malformed output
// and refusals fail immediately with ErrInvalidResponse or ErrContentBlocked.
// Cancelling ctx stops the evaluation with an error wrapping ErrUnavailable.
func (a *Adapter) Evaluate(
	ctx context.Context,
	vc domain.ValidationContext,
	hints []string,
) (domain.Verdict, error) {
	log := logger.FromContextOrDefault(ctx, a.logger)

	backoff := retry.NewExponential(a.config.BaseBackoff)
	backoff = retry.WithJitterPercent(20, backoff)
	backoff = retry.WithMaxRetries(uint64(a.config.MaxAttempts-1), backoff)

	attempt := 0
	result, err := retry.DoValue(ctx, backoff, func(ctx context.Context) (*Result, error) {
		attempt++
		res, err := a.callOnce(ctx, vc, hints)
		if err == nil {
			judgeCallsTotal.WithLabelValues(outcomeSuccess).Inc()
			return res, nil
		}

		if IsPermanent(err) {
			judgeCallsTotal.WithLabelValues(outcomeInvalid).Inc()
			log.WarnContext(ctx, "judge returned a permanent failure",
				slog.Int("attempt", attempt),
				slog.String("error", err.Error()))
			return nil, err
		}

		judgeCallsTotal.WithLabelValues(outcomeTransient).Inc()
		log.WarnContext(ctx, "judge call failed",
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", a.config.MaxAttempts),
			slog.String("error", err.Error()))

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, retry.RetryableError(err)
	})

	switch {
	case err == nil:
	case IsPermanent(err):
		return domain.Verdict{}, err
	case ctx.Err() != nil:
		return domain.Verdict{}, fmt.Errorf("%w: %w", ErrUnavailable, ctx.Err())
	default:
		log.ErrorContext(ctx, "judge unavailable after retries",
			slog.Int("attempts", attempt),
			slog.String("error", err.Error()))
		return domain.Verdict{}, fmt.Errorf("%w after %d attempts: %w", ErrUnavailable, attempt, err)
	}

	verdict := a.applyPolicy(result)
	if verdict.IsCorrect && !result.IsCorrect {
		judgeOverridesTotal.Inc()
		log.InfoContext(ctx, "judge verdict overridden",
			slog.Float64("confidence", result.Confidence))
	}
	return verdict, nil
}

// callOnce performs one judge call under the per-attempt timeout and validates its output.
func (a *Adapter) callOnce(
	ctx context.Context,
	vc domain.ValidationContext,
	hints []string,
) (*Result, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, a.config.AttemptTimeout)
	defer cancel()

	start := time.Now()
	res, err := a.judge.Judge(attemptCtx, vc, hints)
	judgeLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, fmt.Errorf("%w: attempt timed out after %s", ErrTransientFailure, a.config.AttemptTimeout)
		}
		return nil, err
	}
	if err := res.Validate(); err != nil {
		return nil, err
	}
	return res, nil
}

// applyPolicy converts a raw result into a verdict, applying the threshold override.
func (a *Adapter) applyPolicy(res *Result) domain.Verdict {
	v := domain.Verdict{
		IsCorrect:           res.IsCorrect,
		Confidence:          res.Confidence,
		Reasoning:           res.Reasoning,
		SemanticSimilarity:  res.SemanticSimilarity,
		IsMeaningful:        res.IsMeaningful,
		SuggestedCorrection: res.SuggestedCorrection,
		Feedback:            res.Feedback,
		Encouragement:       res.Encouragement,
		Source:              domain.VerdictSourceJudge,
	}

	if !res.IsCorrect && res.IsMeaningful && res.Confidence >= a.config.OverrideThreshold {
		v.IsCorrect = true
		note := fmt.Sprintf(
			"[override: judged incorrect but confidence %.2f ≥ %.2f and answer is meaningful]",
			res.Confidence, a.config.OverrideThreshold,
		)
		v.Reasoning = strings.TrimSpace(res.Reasoning + " " + note)
	}

	return v
}
