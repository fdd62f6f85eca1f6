// Package rediscache provides a Redis-backed durable tier for the validation
// cache. Entries are stored as JSON documents and indexed by creation time in a
// sorted set, which serves age-based purges, sampling and counting.
package rediscache
