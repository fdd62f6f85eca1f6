// Package study records learner attempts and assembles study sessions.
//
// It is the transactional shell around the pure scheduling engine in
// internal/domain/srs: attempts are applied under a row lock on the review
// state, and sessions fall back to the content pool when a learner has no
// review history that matches the requested filters.
package study
