// Package validation decides whether a learner's free-text answer is correct.
//
// A Service runs every answer through a cheap pre-filter (exact and
// token-overlap matches), then a bounded in-memory LRU tier, then the durable
// store.ValidationCacheStore tier, and only on a full miss asks an Evaluator.
// Judged verdicts are written through to both tiers. Durable entries are never
// expired on read; they are removed by Purge.
package validation
