// Package store defines interfaces for data persistence operations.
// These interfaces abstract the underlying data storage mechanism from
// the application's core logic: the validation cache's durable tier,
// per-learner review states and the card content pool.
package store
