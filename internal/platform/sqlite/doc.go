// Package sqlite provides a SQLite-backed durable tier for the validation
// cache, for single-node deployments that do not want the cache in Postgres.
package sqlite
