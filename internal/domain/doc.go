// Package domain contains the core entities of the vocabulary learner:
// validation contexts and verdicts, cached validation entries, per-card
// review state and the card references a study session is built from.
// It has no knowledge of storage, transport or the semantic judge.
package domain
