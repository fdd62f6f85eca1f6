// Package task runs background cache maintenance.
//
// A Runner enqueues purge and audit tasks on fixed intervals into a bounded
// TaskQueue, and a WorkerPool executes them. Tasks are idempotent and are not
// persisted: a task lost to a restart simply runs again on the next tick.
package task
