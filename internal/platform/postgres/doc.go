// Package postgres implements the store interfaces on PostgreSQL through the
// pgx database/sql driver: the durable validation cache, learner review
// states and the card content pool.
package postgres
